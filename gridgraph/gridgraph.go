package gridgraph

import (
	"context"
	"fmt"
	"math"

	"github.com/katalvlaran/lvgrid/field"
	"github.com/katalvlaran/lvgrid/grid"
	"github.com/katalvlaran/lvgrid/internal/workpool"
)

// Tree is a single-source shortest-path result.
//
// Dist holds the distance of every cell from Source, Unreached (-1) for
// solid and unreached cells. Pred holds the flat index of each cell's parent
// on the tree; Pred[Source] == Source and unreached cells hold NoPredecessor.
type Tree struct {
	Source int
	Dist   *field.Field
	Pred   []int

	g *grid.Grid
}

// DistanceAt returns the distance of c from the source, Unreached if c is not reached.
func (t *Tree) DistanceAt(c grid.Coord) (float64, error) {
	i, err := t.g.Index(c)
	if err != nil {
		return 0, err
	}

	return t.Dist.Data()[i], nil
}

// PathTo returns the flat indices of the path from the source to c, both ends included.
// Returns ErrUnreachable if c is solid or not reached.
func (t *Tree) PathTo(c grid.Coord) ([]int, error) {
	i, err := t.g.Index(c)
	if err != nil {
		return nil, err
	}
	path := pathTo(t.Pred, t.Source, i)
	if path == nil {
		return nil, fmt.Errorf("%w: %v from %v", ErrUnreachable, c, t.g.Coord(t.Source))
	}

	return path, nil
}

// pathTo walks Pred from target back to source and returns the path in
// source-to-target order, or nil if target is not on the tree.
func pathTo(pred []int, source, target int) []int {
	if pred[target] == NoPredecessor {
		return nil
	}
	var rev []int
	for at := target; ; at = pred[at] {
		rev = append(rev, at)
		if at == source {
			break
		}
		if len(rev) > len(pred) {
			return nil
		}
	}
	path := make([]int, len(rev))
	for i, v := range rev {
		path[len(rev)-1-i] = v
	}

	return path
}

// ShortestPaths computes distances and predecessors from source to every cell.
//
// Errors: grid.ErrInvalidDimension, grid.ErrOutOfBounds, ErrInvalidSource,
// ErrOptionViolation, or the context error.
func ShortestPaths(g *grid.Grid, source grid.Coord, opts ...Option) (*Tree, error) {
	cfg, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	e, err := newEngine(g, cfg)
	if err != nil {
		return nil, err
	}
	src, err := e.source(source)
	if err != nil {
		return nil, err
	}

	dist := make([]float64, g.Len())
	pred := make([]int, g.Len())
	if err = e.solve(cfg.Ctx, src, dist, pred); err != nil {
		return nil, err
	}
	finishDist(dist)
	f, _ := field.FromData(g.Shape(), dist)

	return &Tree{Source: src, Dist: f, Pred: pred, g: g}, nil
}

// finishDist replaces +Inf with Unreached.
func finishDist(dist []float64) {
	for i, d := range dist {
		if math.IsInf(d, 1) {
			dist[i] = Unreached
		}
	}
}

// engine holds the per-grid state shared by all solves on one grid.
type engine struct {
	g          *grid.Grid
	rows, cols int
	moves      []move
	solver     Solver
}

func newEngine(g *grid.Grid, cfg Options) (*engine, error) {
	if g.Dims() != 2 {
		return nil, fmt.Errorf("%w: gridgraph needs a 2D grid, got %dD", grid.ErrInvalidDimension, g.Dims())
	}
	shape := g.Shape()

	return &engine{
		g:      g,
		rows:   shape[0],
		cols:   shape[1],
		moves:  cfg.Conn.moves(),
		solver: cfg.Solver,
	}, nil
}

// source validates a source coordinate and returns its flat index.
func (e *engine) source(c grid.Coord) (int, error) {
	i, err := e.g.Index(c)
	if err != nil {
		return 0, err
	}
	if e.g.SolidAt(i) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidSource, c)
	}

	return i, nil
}

// neighbors calls fn for every free in-bounds neighbor of u, in move order.
func (e *engine) neighbors(u int, fn func(v int, w float64)) {
	r, c := u/e.cols, u%e.cols
	for _, m := range e.moves {
		nr, nc := r+m.dr, c+m.dc
		if nr < 0 || nr >= e.rows || nc < 0 || nc >= e.cols {
			continue
		}
		v := nr*e.cols + nc
		if e.g.SolidAt(v) {
			continue
		}
		fn(v, m.w)
	}
}

// solve fills dist (+Inf when unreached) and pred from src. Buffers are
// overwritten completely and may be reused between calls.
func (e *engine) solve(ctx context.Context, src int, dist []float64, pred []int) error {
	for i := range dist {
		dist[i] = math.Inf(1)
		pred[i] = NoPredecessor
	}
	dist[src] = 0
	pred[src] = src

	if e.solver == SolverHeap {
		return e.solveHeap(ctx, src, dist, pred)
	}

	return e.solveFrontier(ctx, src, dist, pred)
}

// solveFrontier relaxes the cells improved in the previous wave until a wave
// improves nothing. Improvements are visible to later cells of the same wave.
func (e *engine) solveFrontier(ctx context.Context, src int, dist []float64, pred []int) error {
	queued := make([]bool, len(dist))
	frontier := []int{src}
	var next []int
	for len(frontier) > 0 {
		if err := workpool.Alive(ctx); err != nil {
			return err
		}
		next = next[:0]
		for _, u := range frontier {
			du := dist[u]
			e.neighbors(u, func(v int, w float64) {
				nd := du + w
				if nd >= dist[v] {
					return
				}
				dist[v] = nd
				pred[v] = u
				if !queued[v] {
					queued[v] = true
					next = append(next, v)
				}
			})
		}
		for _, v := range next {
			queued[v] = false
		}
		frontier, next = next, frontier
	}

	return nil
}
