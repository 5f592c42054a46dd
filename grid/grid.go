package grid

import (
	"fmt"
	"math"
	"strings"

	"github.com/katalvlaran/lvgrid/field"
)

// Coord is a cell coordinate in array index order, one component per axis.
type Coord []int

// String renders the coordinate as "(a,b[,c])".
func (c Coord) String() string {
	parts := make([]string, len(c))
	for i, v := range c {
		parts[i] = fmt.Sprint(v)
	}

	return "(" + strings.Join(parts, ",") + ")"
}

// Grid is an immutable 2D or 3D occupancy grid.
type Grid struct {
	shape   []int
	strides []int
	solid   []bool
	labels  []float64
	nSolid  int
}

// New builds a grid from a row-major value buffer.
// A cell is solid iff its value is > 0; values are deep-copied.
//
// Errors (checked in order): ErrInvalidDimension if len(shape) is not 2 or 3,
// ErrEmptyGrid if any extent is <= 0, ErrShapeMismatch if len(values) differs
// from the cell count, ErrNaNInf for a non-finite value.
// Complexity: O(n).
func New(shape []int, values []float64) (*Grid, error) {
	if len(shape) != 2 && len(shape) != 3 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDimension, len(shape))
	}
	n := 1
	for axis, d := range shape {
		if d <= 0 {
			return nil, fmt.Errorf("%w: axis %d has extent %d", ErrEmptyGrid, axis, d)
		}
		n *= d
	}
	if len(values) != n {
		return nil, fmt.Errorf("%w: %d values for shape %v", ErrShapeMismatch, len(values), shape)
	}

	g := newEmpty(shape)
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: at %v", ErrNaNInf, g.Coord(i))
		}
		if v > 0 {
			g.solid[i] = true
			g.labels[i] = v
			g.nSolid++
		}
	}

	return g, nil
}

// From2D builds a 2D grid from rows of values.
// Returns ErrEmptyGrid for no rows or no columns and ErrNonRectangular for ragged rows.
func From2D(rows [][]float64) (*Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmptyGrid
	}
	w := len(rows[0])
	flat := make([]float64, 0, len(rows)*w)
	for _, row := range rows {
		if len(row) != w {
			return nil, ErrNonRectangular
		}
		flat = append(flat, row...)
	}

	return New([]int{len(rows), w}, flat)
}

// From3D builds a 3D grid from values indexed [x][y][z].
func From3D(vox [][][]float64) (*Grid, error) {
	if len(vox) == 0 || len(vox[0]) == 0 || len(vox[0][0]) == 0 {
		return nil, ErrEmptyGrid
	}
	ny, nz := len(vox[0]), len(vox[0][0])
	flat := make([]float64, 0, len(vox)*ny*nz)
	for _, plane := range vox {
		if len(plane) != ny {
			return nil, ErrNonRectangular
		}
		for _, col := range plane {
			if len(col) != nz {
				return nil, ErrNonRectangular
			}
			flat = append(flat, col...)
		}
	}

	return New([]int{len(vox), ny, nz}, flat)
}

// FromField builds a grid from a dense field of rank 2 or 3.
func FromField(f *field.Field) (*Grid, error) {
	return New(f.Shape(), f.Data())
}

func newEmpty(shape []int) *Grid {
	n := 1
	for _, d := range shape {
		n *= d
	}
	strides := make([]int, len(shape))
	acc := 1
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = acc
		acc *= shape[i]
	}

	return &Grid{
		shape:   append([]int(nil), shape...),
		strides: strides,
		solid:   make([]bool, n),
		labels:  make([]float64, n),
	}
}

// Shape returns a copy of the extents.
func (g *Grid) Shape() []int { return append([]int(nil), g.shape...) }

// Dims returns 2 or 3.
func (g *Grid) Dims() int { return len(g.shape) }

// Len returns the total cell count.
func (g *Grid) Len() int { return len(g.solid) }

// SolidCount returns the number of solid cells.
func (g *Grid) SolidCount() int { return g.nSolid }

// FreeCount returns the number of void cells.
func (g *Grid) FreeCount() int { return len(g.solid) - g.nSolid }

// InBounds reports whether c has one component per axis, each in range.
func (g *Grid) InBounds(c Coord) bool {
	if len(c) != len(g.shape) {
		return false
	}
	for i, v := range c {
		if v < 0 || v >= g.shape[i] {
			return false
		}
	}

	return true
}

// Index returns the row-major flat index of c, or ErrOutOfBounds.
func (g *Grid) Index(c Coord) (int, error) {
	if !g.InBounds(c) {
		return 0, fmt.Errorf("%w: %v in shape %v", ErrOutOfBounds, c, g.shape)
	}
	off := 0
	for i, v := range c {
		off += v * g.strides[i]
	}

	return off, nil
}

// Coord converts a flat index back to a coordinate. idx must be in [0, Len()).
func (g *Grid) Coord(idx int) Coord {
	c := make(Coord, len(g.shape))
	for i, s := range g.strides {
		c[i] = idx / s
		idx %= s
	}

	return c
}

// IsSolid reports whether c is a solid cell. Out-of-bounds coordinates are not solid.
func (g *Grid) IsSolid(c Coord) bool {
	i, err := g.Index(c)
	if err != nil {
		return false
	}

	return g.solid[i]
}

// SolidAt reports whether flat index idx is solid. idx must be in [0, Len()).
func (g *Grid) SolidAt(idx int) bool { return g.solid[idx] }

// Label returns the original value of the solid cell at c, 0 for void or out-of-bounds.
func (g *Grid) Label(c Coord) float64 {
	i, err := g.Index(c)
	if err != nil {
		return 0
	}

	return g.labels[i]
}

// LabelAt returns the label at flat index idx.
func (g *Grid) LabelAt(idx int) float64 { return g.labels[idx] }

// Occupancy returns a field with 1 on solid cells and 0 elsewhere.
func (g *Grid) Occupancy() *field.Field {
	f, _ := field.New(g.shape...)
	data := f.Data()
	for i, s := range g.solid {
		if s {
			data[i] = 1
		}
	}

	return f
}

// Labels returns a field holding the label of every cell.
func (g *Grid) Labels() *field.Field {
	f, _ := field.FromData(g.shape, g.labels)

	return f
}

// Layer cuts the 2D plan at depth z out of a 3D volume.
// Returns ErrInvalidDimension for 2D grids and ErrOutOfBounds for bad z.
func (g *Grid) Layer(z int) (*Grid, error) {
	if len(g.shape) != 3 {
		return nil, fmt.Errorf("%w: Layer needs a 3D grid", ErrInvalidDimension)
	}
	nz := g.shape[2]
	if z < 0 || z >= nz {
		return nil, fmt.Errorf("%w: layer %d of %d", ErrOutOfBounds, z, nz)
	}
	out := newEmpty(g.shape[:2])
	for i := range out.solid {
		src := i*nz + z
		if g.solid[src] {
			out.solid[i] = true
			out.labels[i] = g.labels[src]
			out.nSolid++
		}
	}

	return out, nil
}

// Lift wraps a 2D plan into a volume with a single z layer. 3D grids are returned as a clone.
func (g *Grid) Lift() *Grid {
	if len(g.shape) == 3 {
		return g.Clone()
	}
	out := g.Clone()
	out.shape = append(out.shape, 1)
	out.strides = []int{g.shape[1], 1, 1}

	return out
}

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid {
	return &Grid{
		shape:   append([]int(nil), g.shape...),
		strides: append([]int(nil), g.strides...),
		solid:   append([]bool(nil), g.solid...),
		labels:  append([]float64(nil), g.labels...),
		nSolid:  g.nSolid,
	}
}

// String draws solid cells as '#' and void cells as '.', one line per run of
// the last axis.
func (g *Grid) String() string {
	var b strings.Builder
	width := g.shape[len(g.shape)-1]
	for i, s := range g.solid {
		if s {
			b.WriteByte('#')
		} else {
			b.WriteByte('.')
		}
		if (i+1)%width == 0 {
			b.WriteByte('\n')
		}
	}

	return b.String()
}
