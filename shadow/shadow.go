package shadow

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/katalvlaran/lvgrid/field"
	"github.com/katalvlaran/lvgrid/grid"
	"github.com/katalvlaran/lvgrid/internal/workpool"
)

// Field returns the mask of solid voxels shadowed by other solid voxels under light.
//
// Errors: grid.ErrInvalidDimension for non-3D grids, ErrInvalidLight,
// ErrOptionViolation, or the context error.
func Field(g *grid.Grid, light Light, opts ...Option) (*field.Mask, error) {
	cfg, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	t, err := newTracer(g, light)
	if err != nil {
		return nil, err
	}

	return t.cast(cfg.Ctx, workpool.NewProgress(g.SolidCount(), cfg.Progress))
}

// Map returns, per voxel, the number of lights under which it is shadowed.
func Map(g *grid.Grid, lights []Light, opts ...Option) (*field.Field, error) {
	cfg, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	if g.Dims() != 3 {
		return nil, fmt.Errorf("%w: shadow needs a 3D grid, got %dD", grid.ErrInvalidDimension, g.Dims())
	}
	tracers := make([]*tracer, len(lights))
	for i, l := range lights {
		if tracers[i], err = newTracer(g, l); err != nil {
			return nil, fmt.Errorf("light %d: %w", i, err)
		}
	}

	chunks := workpool.Chunks(len(lights), cfg.Workers)
	partial := make([][]float64, chunks)
	progress := workpool.NewProgress(len(lights), cfg.Progress)

	err = workpool.Run(cfg.Ctx, len(lights), cfg.Workers, func(ctx context.Context, w, lo, hi int) error {
		acc := make([]float64, g.Len())
		for _, t := range tracers[lo:hi] {
			m, err := t.cast(ctx, nil)
			if err != nil {
				return err
			}
			for i, s := range m.Data() {
				if s {
					acc[i]++
				}
			}
			progress.Step()
		}
		partial[w] = acc
		return nil
	})
	if err != nil {
		return nil, err
	}

	out, _ := field.New(g.Shape()...)
	data := out.Data()
	for _, acc := range partial {
		for i, v := range acc {
			data[i] += v
		}
	}

	return out, nil
}

// tracer walks discrete rays along one light through one volume.
type tracer struct {
	g       *grid.Grid
	light   Light
	shape   [3]int
	strides [3]int
	drive   int        // axis advancing every step
	minor   [2]int     // the two other axes
	sign    [3]int     // step direction per axis
	derr    [2]float64 // per-step error increment of the minor axes
}

func newTracer(g *grid.Grid, light Light) (*tracer, error) {
	if g.Dims() != 3 {
		return nil, fmt.Errorf("%w: shadow needs a 3D grid, got %dD", grid.ErrInvalidDimension, g.Dims())
	}
	for _, c := range light {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidLight, light)
		}
	}

	a := [3]float64{math.Abs(light[0]), math.Abs(light[1]), math.Abs(light[2])}
	var d int
	if a[0] > a[1] {
		if a[0] > a[2] {
			d = 0
		} else {
			d = 2
		}
	} else {
		if a[1] > a[2] {
			d = 1
		} else {
			d = 2
		}
	}
	if a[d] == 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLight, light)
	}

	shape := g.Shape()
	t := &tracer{
		g:       g,
		light:   light,
		shape:   [3]int{shape[0], shape[1], shape[2]},
		strides: [3]int{shape[1] * shape[2], shape[2], 1},
		drive:   d,
	}
	k := 0
	for axis := 0; axis < 3; axis++ {
		t.sign[axis] = -1
		if light[axis] > 0 {
			t.sign[axis] = 1
		}
		if axis == d {
			continue
		}
		t.minor[k] = axis
		t.derr[k] = a[axis] / a[d]
		k++
	}

	return t, nil
}

// cast runs the sorted reduction over all solid voxels for one light.
func (t *tracer) cast(ctx context.Context, progress *workpool.Progress) (*field.Mask, error) {
	order := t.sorted()
	canvas, _ := field.NewMask(t.shape[:]...)
	marked := canvas.Data()
	for _, idx := range order {
		if err := workpool.Alive(ctx); err != nil {
			return nil, err
		}
		if !marked[idx] {
			t.trace(t.g.Coord(idx), marked)
		}
		progress.Step()
	}
	for i := range marked {
		marked[i] = marked[i] && t.g.SolidAt(i)
	}

	return canvas, nil
}

// sorted returns the solid voxel indices ordered by their projection onto
// the light; equal projections keep row-major order.
func (t *tracer) sorted() []int {
	idx := make([]int, 0, t.g.SolidCount())
	for i := 0; i < t.g.Len(); i++ {
		if t.g.SolidAt(i) {
			idx = append(idx, i)
		}
	}
	dots := make([]float64, t.g.Len())
	for _, i := range idx {
		c := t.g.Coord(i)
		dots[i] = float64(c[0])*t.light[0] + float64(c[1])*t.light[1] + float64(c[2])*t.light[2]
	}
	slices.SortStableFunc(idx, func(a, b int) int { return cmp.Compare(dots[a], dots[b]) })

	return idx
}

// trace marks every voxel on the ray from start, excluding start itself,
// until the ray leaves the volume.
func (t *tracer) trace(start grid.Coord, marked []bool) {
	p := [3]int{start[0], start[1], start[2]}
	var e [2]float64
	first := true
	for t.inside(p) {
		if first {
			first = false
		} else {
			marked[p[0]*t.strides[0]+p[1]*t.strides[1]+p[2]] = true
		}
		for k, axis := range t.minor {
			e[k] += t.derr[k]
			if e[k] >= 0.5 {
				p[axis] += t.sign[axis]
				e[k]--
			}
		}
		p[t.drive] += t.sign[t.drive]
	}
}

func (t *tracer) inside(p [3]int) bool {
	for i, v := range p {
		if v < 0 || v >= t.shape[i] {
			return false
		}
	}

	return true
}
