package isovist

import (
	"fmt"

	"github.com/katalvlaran/lvgrid/field"
	"github.com/katalvlaran/lvgrid/grid"
	"github.com/katalvlaran/lvgrid/internal/workpool"
)

// FromPoint returns the visibility canvas seen from origin.
//
// Errors: grid.ErrInvalidDimension for non-2D grids, grid.ErrOutOfBounds for
// an origin outside the grid, ErrInvalidOrigin for a solid origin,
// ErrOptionViolation for bad options, or the context error.
func FromPoint(g *grid.Grid, origin grid.Coord, opts ...Option) (*field.Field, error) {
	cfg, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	c, err := newCaster(g)
	if err != nil {
		return nil, err
	}
	o, err := g.Index(origin)
	if err != nil {
		return nil, err
	}
	if g.SolidAt(o) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOrigin, origin)
	}

	out := obstacleCanvas(g)
	data := out.Data()
	if err = c.cast(cfg, o, noMask, data); err != nil {
		return nil, err
	}
	if cfg.MarkOrigin {
		data[o] = Observer
	}

	return out, nil
}

// noMask disables the masked cell of caster.cast.
const noMask = -1

// caster shoots Bresenham rays over one 2D grid.
type caster struct {
	g          *grid.Grid
	rows, cols int
	ring       []int // flat indices of the boundary ring, in casting order
}

func newCaster(g *grid.Grid) (*caster, error) {
	if g.Dims() != 2 {
		return nil, fmt.Errorf("%w: isovist needs a 2D grid, got %dD", grid.ErrInvalidDimension, g.Dims())
	}
	shape := g.Shape()
	c := &caster{g: g, rows: shape[0], cols: shape[1]}
	c.ring = boundaryRing(c.rows, c.cols)

	return c, nil
}

// boundaryRing lists the border cells clockwise from the top-left corner.
// Single-row and single-column grids yield each cell once.
func boundaryRing(rows, cols int) []int {
	switch {
	case rows == 1:
		ring := make([]int, cols)
		for q := range ring {
			ring[q] = q
		}
		return ring
	case cols == 1:
		ring := make([]int, rows)
		for r := range ring {
			ring[r] = r
		}
		return ring
	}

	ring := make([]int, 0, 2*(rows+cols)-4)
	for q := 0; q < cols-1; q++ { // top, left to right
		ring = append(ring, q)
	}
	for r := 0; r < rows-1; r++ { // right, top to bottom
		ring = append(ring, r*cols+cols-1)
	}
	for q := cols - 1; q >= 0; q-- { // bottom, right to left
		ring = append(ring, (rows-1)*cols+q)
	}
	for r := rows - 2; r > 0; r-- { // left, bottom to top
		ring = append(ring, r*cols)
	}

	return ring
}

// cast shoots one ray per ring cell from origin and writes Visible into
// canvas. The masked cell, if any, is treated as free.
func (c *caster) cast(cfg Options, origin, masked int, canvas []float64) error {
	r0, c0 := origin/c.cols, origin%c.cols
	for _, end := range c.ring {
		if err := workpool.Alive(cfg.Ctx); err != nil {
			return err
		}
		c.ray(r0, c0, end/c.cols, end%c.cols, masked, canvas)
	}

	return nil
}

// ray walks the integer Bresenham line from (r0,c0) to (r1,c1) inclusive,
// stepping along the axis with the larger delta.
func (c *caster) ray(r0, c0, r1, c1, masked int, canvas []float64) {
	dr, dc := abs(r1-r0), abs(c1-c0)
	sr, sc := step(r0, r1), step(c0, c1)
	r, q := r0, c0

	if dc > dr {
		e := dc / 2
		for i := 0; i <= dc; i++ {
			if !c.mark(r, q, masked, canvas) {
				return
			}
			e -= dr
			if e < 0 {
				r += sr
				e += dc
			}
			q += sc
		}
		return
	}

	e := dr / 2
	for i := 0; i <= dr; i++ {
		if !c.mark(r, q, masked, canvas) {
			return
		}
		e -= dc
		if e < 0 {
			q += sc
			e += dr
		}
		r += sr
	}
}

// mark flags (r,q) visible and reports whether the ray may continue.
func (c *caster) mark(r, q, masked int, canvas []float64) bool {
	if r < 0 || r >= c.rows || q < 0 || q >= c.cols {
		return false
	}
	idx := r*c.cols + q
	if idx != masked && c.g.SolidAt(idx) {
		return false
	}
	canvas[idx] = Visible

	return true
}

// obstacleCanvas returns a field with Solid on solid cells and Hidden elsewhere.
func obstacleCanvas(g *grid.Grid) *field.Field {
	f, _ := field.New(g.Shape()...)
	data := f.Data()
	for i := range data {
		if g.SolidAt(i) {
			data[i] = Solid
		}
	}

	return f
}

func abs(x int) int {
	if x < 0 {
		return -x
	}

	return x
}

func step(from, to int) int {
	if from < to {
		return 1
	}

	return -1
}
