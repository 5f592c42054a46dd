package gridgraph

import (
	"context"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/lvgrid/field"
	"github.com/katalvlaran/lvgrid/grid"
	"github.com/katalvlaran/lvgrid/internal/workpool"
)

// Route mask values.
const (
	RouteSolid = -1.0
	RouteFree  = 0.0
	RoutePath  = 1.0
)

// ShortestPath returns a mask of the route from source to target:
// RouteSolid on solid cells, RoutePath on every cell of the route (both ends
// included) and RouteFree elsewhere.
// Returns ErrUnreachable if target is solid or not connected to source.
func ShortestPath(g *grid.Grid, source, target grid.Coord, opts ...Option) (*field.Field, error) {
	t, err := ShortestPaths(g, source, opts...)
	if err != nil {
		return nil, err
	}
	path, err := t.PathTo(target)
	if err != nil {
		return nil, err
	}

	out, _ := field.New(g.Shape()...)
	data := out.Data()
	for i := range data {
		if g.SolidAt(i) {
			data[i] = RouteSolid
		}
	}
	for _, i := range path {
		data[i] = RoutePath
	}

	return out, nil
}

// Centrality returns, for every free cell, the mean distance to every cell it
// reaches (the cell itself excluded). Cells that reach nothing and solid
// cells hold 0. Lower values mean a more central cell.
//
// Complexity: one ShortestPaths per free cell, O(F²·d) or worse.
func Centrality(g *grid.Grid, opts ...Option) (*field.Field, error) {
	cfg, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	e, err := newEngine(g, cfg)
	if err != nil {
		return nil, err
	}

	out, _ := field.New(g.Shape()...)
	data := out.Data()
	origins := freeCells(g)
	progress := workpool.NewProgress(len(origins), cfg.Progress)

	err = workpool.Run(cfg.Ctx, len(origins), cfg.Workers, func(ctx context.Context, _, lo, hi int) error {
		dist := make([]float64, g.Len())
		pred := make([]int, g.Len())
		reached := make([]float64, 0, len(origins))
		for _, o := range origins[lo:hi] {
			if err := e.solve(ctx, o, dist, pred); err != nil {
				return err
			}
			reached = reached[:0]
			for _, d := range dist {
				if d > 0 && !math.IsInf(d, 1) {
					reached = append(reached, d)
				}
			}
			if len(reached) > 0 {
				data[o] = floats.Sum(reached) / float64(len(reached))
			}
			progress.Step()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// Traffic returns, for every cell, the number of shortest paths that pass
// through it, counted over every ordered pair (origin, target) of distinct
// connected free cells. Both ends of a path count. Solid cells hold 0.
//
// A cell x other than the origin lies on the path to every target in its
// subtree of the origin's shortest-path tree, so each origin contributes the
// subtree size of every reached cell (minus one for the origin itself).
func Traffic(g *grid.Grid, opts ...Option) (*field.Field, error) {
	cfg, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	e, err := newEngine(g, cfg)
	if err != nil {
		return nil, err
	}

	origins := freeCells(g)
	chunks := workpool.Chunks(len(origins), cfg.Workers)
	partial := make([][]float64, chunks)
	progress := workpool.NewProgress(len(origins), cfg.Progress)

	err = workpool.Run(cfg.Ctx, len(origins), cfg.Workers, func(ctx context.Context, w, lo, hi int) error {
		acc := make([]float64, g.Len())
		dist := make([]float64, g.Len())
		pred := make([]int, g.Len())
		size := make([]float64, g.Len())
		order := make([]int, 0, len(origins))
		for _, o := range origins[lo:hi] {
			if err := e.solve(ctx, o, dist, pred); err != nil {
				return err
			}
			order = order[:0]
			for _, v := range origins {
				if pred[v] != NoPredecessor {
					order = append(order, v)
					size[v] = 1
				}
			}
			// children are strictly farther than their parent
			slices.SortFunc(order, func(a, b int) int {
				switch {
				case dist[a] > dist[b]:
					return -1
				case dist[a] < dist[b]:
					return 1
				}
				return 0
			})
			for _, v := range order {
				if v == o {
					acc[v] += size[v] - 1
					continue
				}
				acc[v] += size[v]
				size[pred[v]] += size[v]
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
		if acc == nil {
			continue
		}
		floats.Add(data, acc)
	}

	return out, nil
}

// Components returns the connected regions of free space. Each region lists
// flat cell indices in BFS order; regions are ordered by their first cell in
// row-major order.
func Components(g *grid.Grid, opts ...Option) ([][]int, error) {
	cfg, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	e, err := newEngine(g, cfg)
	if err != nil {
		return nil, err
	}

	seen := make([]bool, g.Len())
	var comps [][]int
	for i0 := 0; i0 < g.Len(); i0++ {
		if g.SolidAt(i0) || seen[i0] {
			continue
		}
		if err = workpool.Alive(cfg.Ctx); err != nil {
			return nil, err
		}
		// BFS to collect component
		queue := []int{i0}
		seen[i0] = true
		for qi := 0; qi < len(queue); qi++ {
			e.neighbors(queue[qi], func(v int, _ float64) {
				if !seen[v] {
					seen[v] = true
					queue = append(queue, v)
				}
			})
		}
		comps = append(comps, queue)
	}

	return comps, nil
}

func freeCells(g *grid.Grid) []int {
	idx := make([]int, 0, g.FreeCount())
	for i := 0; i < g.Len(); i++ {
		if !g.SolidAt(i) {
			idx = append(idx, i)
		}
	}

	return idx
}

// checkTarget validates a target coordinate.
func checkTarget(g *grid.Grid, c grid.Coord) (int, error) {
	i, err := g.Index(c)
	if err != nil {
		return 0, err
	}
	if g.SolidAt(i) {
		return 0, fmt.Errorf("%w: target %v is solid", ErrUnreachable, c)
	}

	return i, nil
}
