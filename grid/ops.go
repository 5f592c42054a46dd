package grid

import (
	"fmt"

	"github.com/katalvlaran/lvgrid/field"
)

// Union returns a grid that is solid wherever a or b is solid.
// Labels are taken from a where a is solid, otherwise from b.
func Union(a, b *Grid) (*Grid, error) {
	return combine(a, b, func(sa, sb bool) bool { return sa || sb })
}

// Intersection returns a grid that is solid where both a and b are solid.
// Labels are taken from a.
func Intersection(a, b *Grid) (*Grid, error) {
	return combine(a, b, func(sa, sb bool) bool { return sa && sb })
}

// Difference returns a grid that is solid where a is solid and b is not.
func Difference(a, b *Grid) (*Grid, error) {
	return combine(a, b, func(sa, sb bool) bool { return sa && !sb })
}

func combine(a, b *Grid, op func(sa, sb bool) bool) (*Grid, error) {
	if !sameShape(a.shape, b.shape) {
		return nil, fmt.Errorf("%w: %v vs %v", ErrShapeMismatch, a.shape, b.shape)
	}
	out := newEmpty(a.shape)
	for i := range out.solid {
		if !op(a.solid[i], b.solid[i]) {
			continue
		}
		out.solid[i] = true
		out.nSolid++
		if a.solid[i] {
			out.labels[i] = a.labels[i]
		} else {
			out.labels[i] = b.labels[i]
		}
	}

	return out, nil
}

// Shift translates g cyclically: the cell at c moves to (c + offset) mod shape
// on every axis. Cells pushed past an edge wrap around to the opposite edge.
// Returns ErrInvalidDimension if len(offset) differs from g.Dims().
func Shift(g *Grid, offset ...int) (*Grid, error) {
	if len(offset) != len(g.shape) {
		return nil, fmt.Errorf("%w: offset has %d components for a %dD grid", ErrInvalidDimension, len(offset), len(g.shape))
	}
	out := newEmpty(g.shape)
	out.nSolid = g.nSolid
	for i := range g.solid {
		c := g.Coord(i)
		dst := 0
		for axis, v := range c {
			d := g.shape[axis]
			p := ((v+offset[axis])%d + d) % d
			dst += p * g.strides[axis]
		}
		out.solid[dst] = g.solid[i]
		out.labels[dst] = g.labels[i]
	}

	return out, nil
}

// FacadeMap counts, for every solid cell, its faces exposed to void or to the
// grid border within its own z layer (4-neighborhood). Void cells hold 0.
func FacadeMap(g *Grid) *field.Field {
	f, _ := field.New(g.shape...)
	data := f.Data()
	rows, cols := g.shape[0], g.shape[1]
	for i, s := range g.solid {
		if !s {
			continue
		}
		c := g.Coord(i)
		exposed := 0
		for _, d := range [4][2]int{{-1, 0}, {0, 1}, {1, 0}, {0, -1}} {
			r, q := c[0]+d[0], c[1]+d[1]
			if r < 0 || r >= rows || q < 0 || q >= cols {
				exposed++
				continue
			}
			if !g.solid[i+d[0]*g.strides[0]+d[1]*g.strides[1]] {
				exposed++
			}
		}
		data[i] = float64(exposed)
	}

	return f
}

// FacadeCount returns the total number of exposed solid faces over all layers.
func FacadeCount(g *Grid) int {
	total := 0
	for _, v := range FacadeMap(g).Data() {
		total += int(v)
	}

	return total
}

// Compactness returns solid cell count divided by facade count, or 0 when
// there are no facades.
func Compactness(g *Grid) float64 {
	perimeter := FacadeCount(g)
	if perimeter == 0 {
		return 0
	}

	return float64(g.nSolid) / float64(perimeter)
}

func sameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}
