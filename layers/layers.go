// Package layers runs 2D analyses over the z layers of a 3D volume.
//
// The engines in isovist and gridgraph only accept 2D plans. Each slices a
// volume into its z layers, runs the analysis once per layer and stacks the
// per-layer fields back into a field of the volume's shape. A 2D grid is
// passed through with a single call.
package layers

import (
	"context"
	"fmt"

	"github.com/katalvlaran/lvgrid/field"
	"github.com/katalvlaran/lvgrid/grid"
	"github.com/katalvlaran/lvgrid/internal/workpool"
)

// Func is a 2D analysis producing a field of the plan's shape.
type Func func(plan *grid.Grid) (*field.Field, error)

// Each applies fn to every z layer of g and stacks the results.
// The context is checked between layers.
func Each(ctx context.Context, g *grid.Grid, fn Func) (*field.Field, error) {
	if g.Dims() == 2 {
		return fn(g)
	}

	out, err := field.New(g.Shape()...)
	if err != nil {
		return nil, err
	}
	depth := g.Shape()[2]
	for z := 0; z < depth; z++ {
		if err = workpool.Alive(ctx); err != nil {
			return nil, err
		}
		plan, err := g.Layer(z)
		if err != nil {
			return nil, err
		}
		f, err := fn(plan)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", z, err)
		}
		if err = out.SetSlice(z, f); err != nil {
			return nil, fmt.Errorf("layer %d: %w", z, err)
		}
	}

	return out, nil
}
