package isovist

import (
	"context"
	"fmt"

	"github.com/katalvlaran/lvgrid/field"
	"github.com/katalvlaran/lvgrid/grid"
	"github.com/katalvlaran/lvgrid/internal/workpool"
)

// Map returns, for every free cell, the percentage of free cells visible
// from it. Solid cells hold Solid.
func Map(g *grid.Grid, opts ...Option) (*field.Field, error) {
	cfg, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	c, err := newCaster(g)
	if err != nil {
		return nil, err
	}

	origins := cellsWhere(g, false)
	out := obstacleCanvas(g)
	if err = c.sweep(cfg, origins, false, g.FreeCount(), out.Data()); err != nil {
		return nil, err
	}

	return out, nil
}

// CollisionMap returns, for every solid cell, the number of cells visible
// from it (with only that cell treated as free) as a percentage of the solid
// cell count. Free cells hold 0. Values may exceed 100.
func CollisionMap(g *grid.Grid, opts ...Option) (*field.Field, error) {
	cfg, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	c, err := newCaster(g)
	if err != nil {
		return nil, err
	}

	origins := cellsWhere(g, true)
	out, _ := field.New(g.Shape()...)
	if err = c.sweep(cfg, origins, true, g.SolidCount(), out.Data()); err != nil {
		return nil, err
	}

	return out, nil
}

// Aggregate sums FromPoint canvases over points. A free cell ends up with
// the number of points that see it; a solid cell with -len(points).
func Aggregate(g *grid.Grid, points []grid.Coord, opts ...Option) (*field.Field, error) {
	cfg, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	if _, err = newCaster(g); err != nil {
		return nil, err
	}

	sum, _ := field.New(g.Shape()...)
	progress := workpool.NewProgress(len(points), cfg.Progress)
	for _, p := range points {
		canvas, err := FromPoint(g, p, WithContext(cfg.Ctx))
		if err != nil {
			return nil, err
		}
		if err = sum.Add(canvas); err != nil {
			return nil, fmt.Errorf("isovist: aggregate %v: %w", p, err)
		}
		progress.Step()
	}

	return sum, nil
}

// sweep casts from every origin and writes count/norm*100 into out[origin].
// With masked set, each origin is treated as free for its own cast.
func (c *caster) sweep(cfg Options, origins []int, masked bool, norm int, out []float64) error {
	if len(origins) == 0 || norm == 0 {
		return nil
	}
	progress := workpool.NewProgress(len(origins), cfg.Progress)

	return workpool.Run(cfg.Ctx, len(origins), cfg.Workers, func(ctx context.Context, _, lo, hi int) error {
		local := cfg
		local.Ctx = ctx
		canvas := make([]float64, len(out))
		for _, o := range origins[lo:hi] {
			clear(canvas)
			m := noMask
			if masked {
				m = o
			}
			if err := c.cast(local, o, m, canvas); err != nil {
				return err
			}
			out[o] = float64(countVisible(canvas)) / float64(norm) * 100
			progress.Step()
		}
		return nil
	})
}

func cellsWhere(g *grid.Grid, solid bool) []int {
	var idx []int
	for i := 0; i < g.Len(); i++ {
		if g.SolidAt(i) == solid {
			idx = append(idx, i)
		}
	}

	return idx
}

func countVisible(canvas []float64) int {
	n := 0
	for _, v := range canvas {
		if v == Visible {
			n++
		}
	}

	return n
}
