package gridgraph_test

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/katalvlaran/lvgrid/grid"
	"github.com/katalvlaran/lvgrid/gridgraph"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

func mustGrid(t testing.TB, rows [][]float64) *grid.Grid {
	t.Helper()
	g, err := grid.From2D(rows)
	require.NoError(t, err)
	return g
}

func randomGrid(t testing.TB, rows, cols int, density float64, seed int64) *grid.Grid {
	t.Helper()
	rnd := rand.New(rand.NewSource(seed))
	vals := make([]float64, rows*cols)
	for i := range vals {
		if rnd.Float64() < density {
			vals[i] = 1
		}
	}
	g, err := grid.New([]int{rows, cols}, vals)
	require.NoError(t, err)
	return g
}

var ring = [][]float64{
	{0, 0, 0},
	{0, 1, 0},
	{0, 0, 0},
}

//----------------------------------------------------------------------------//
// ShortestPaths
//----------------------------------------------------------------------------//

// TestShortestPaths_Ring: around a solid centre the corner-to-corner route
// takes two orthogonal steps and one diagonal step.
func TestShortestPaths_Ring(t *testing.T) {
	g := mustGrid(t, ring)
	for _, s := range []gridgraph.Solver{gridgraph.SolverFrontier, gridgraph.SolverHeap} {
		tree, err := gridgraph.ShortestPaths(g, grid.Coord{0, 0}, gridgraph.WithSolver(s))
		require.NoError(t, err)

		d, err := tree.DistanceAt(grid.Coord{2, 2})
		require.NoError(t, err)
		require.InDelta(t, 2+math.Sqrt2, d, eps)

		d, _ = tree.DistanceAt(grid.Coord{1, 1})
		require.Equal(t, gridgraph.Unreached, d)
		require.Equal(t, gridgraph.NoPredecessor, tree.Pred[4])
		require.Equal(t, 0, tree.Pred[0])
	}
}

// TestShortestPaths_Open checks the full field of an open 3×3 room.
func TestShortestPaths_Open(t *testing.T) {
	g := mustGrid(t, [][]float64{{0, 0, 0}, {0, 0, 0}, {0, 0, 0}})
	r2 := math.Sqrt2
	want8 := []float64{0, 1, 2, 1, r2, 1 + r2, 2, 1 + r2, 2 * r2}
	want4 := []float64{0, 1, 2, 1, 2, 3, 2, 3, 4}

	tree, err := gridgraph.ShortestPaths(g, grid.Coord{0, 0})
	require.NoError(t, err)
	require.InDeltaSlice(t, want8, tree.Dist.Data(), eps)

	tree, err = gridgraph.ShortestPaths(g, grid.Coord{0, 0}, gridgraph.WithConnectivity(gridgraph.Conn4))
	require.NoError(t, err)
	require.Equal(t, want4, tree.Dist.Data())
}

// TestShortestPaths_Errors covers source, rank and option validation.
func TestShortestPaths_Errors(t *testing.T) {
	g := mustGrid(t, ring)
	cases := []struct {
		name   string
		source grid.Coord
		opts   []gridgraph.Option
		err    error
	}{
		{"SolidSource", grid.Coord{1, 1}, nil, gridgraph.ErrInvalidSource},
		{"OutOfBounds", grid.Coord{3, 0}, nil, grid.ErrOutOfBounds},
		{"BadWorkers", grid.Coord{0, 0}, []gridgraph.Option{gridgraph.WithWorkers(0)}, gridgraph.ErrOptionViolation},
		{"BadSolver", grid.Coord{0, 0}, []gridgraph.Option{gridgraph.WithSolver(7)}, gridgraph.ErrOptionViolation},
		{"BadConn", grid.Coord{0, 0}, []gridgraph.Option{gridgraph.WithConnectivity(9)}, gridgraph.ErrOptionViolation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := gridgraph.ShortestPaths(g, tc.source, tc.opts...)
			require.ErrorIs(t, err, tc.err)
		})
	}

	vol, err := grid.New([]int{2, 2, 2}, make([]float64, 8))
	require.NoError(t, err)
	_, err = gridgraph.ShortestPaths(vol, grid.Coord{0, 0, 0})
	require.ErrorIs(t, err, grid.ErrInvalidDimension)
}

// TestShortestPaths_Unreachable: a wall splits the plan.
func TestShortestPaths_Unreachable(t *testing.T) {
	g := mustGrid(t, [][]float64{{0, 1, 0}, {0, 1, 0}})
	tree, err := gridgraph.ShortestPaths(g, grid.Coord{0, 0})
	require.NoError(t, err)

	d, err := tree.DistanceAt(grid.Coord{1, 2})
	require.NoError(t, err)
	require.Equal(t, gridgraph.Unreached, d)

	_, err = tree.PathTo(grid.Coord{1, 2})
	require.ErrorIs(t, err, gridgraph.ErrUnreachable)
	_, err = gridgraph.ShortestPath(g, grid.Coord{0, 0}, grid.Coord{0, 2})
	require.ErrorIs(t, err, gridgraph.ErrUnreachable)
	_, err = gridgraph.ShortestPath(g, grid.Coord{0, 0}, grid.Coord{0, 1})
	require.ErrorIs(t, err, gridgraph.ErrUnreachable)
}

// TestShortestPaths_Cancel stops on a cancelled context for both solvers.
func TestShortestPaths_Cancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := mustGrid(t, ring)
	for _, s := range []gridgraph.Solver{gridgraph.SolverFrontier, gridgraph.SolverHeap} {
		_, err := gridgraph.ShortestPaths(g, grid.Coord{0, 0}, gridgraph.WithContext(ctx), gridgraph.WithSolver(s))
		require.ErrorIs(t, err, context.Canceled)
	}
}

// TestSolversAgree compares the frontier and heap solvers on random plans.
func TestSolversAgree(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		g := randomGrid(t, 15, 12, 0.3, seed)
		for src := 0; src < g.Len(); src += 7 {
			if g.SolidAt(src) {
				continue
			}
			a, err := gridgraph.ShortestPaths(g, g.Coord(src))
			require.NoError(t, err)
			b, err := gridgraph.ShortestPaths(g, g.Coord(src), gridgraph.WithSolver(gridgraph.SolverHeap))
			require.NoError(t, err)
			require.InDeltaSlice(t, a.Dist.Data(), b.Dist.Data(), eps, "seed=%d src=%d", seed, src)
		}
	}
}

// TestDistanceProperties checks symmetry, the triangle inequality, and that
// the reconstructed path length equals the distance.
func TestDistanceProperties(t *testing.T) {
	g := randomGrid(t, 10, 10, 0.25, 42)
	var free []int
	for i := 0; i < g.Len(); i++ {
		if !g.SolidAt(i) {
			free = append(free, i)
		}
	}
	trees := make(map[int]*gridgraph.Tree, len(free))
	for _, i := range free {
		tr, err := gridgraph.ShortestPaths(g, g.Coord(i))
		require.NoError(t, err)
		trees[i] = tr
	}

	for _, a := range free {
		da := trees[a].Dist.Data()
		for _, b := range free {
			db := trees[b].Dist.Data()
			require.InDelta(t, da[b], db[a], eps, "symmetry %d-%d", a, b)
			if da[b] < 0 {
				continue
			}
			for _, c := range free {
				if da[c] < 0 {
					continue
				}
				require.LessOrEqual(t, da[c], da[b]+db[c]+eps, "triangle %d-%d-%d", a, b, c)
			}

			path, err := trees[a].PathTo(g.Coord(b))
			require.NoError(t, err)
			require.Equal(t, a, path[0])
			require.Equal(t, b, path[len(path)-1])
			require.InDelta(t, da[b], pathLength(g, path), eps)
		}
	}
}

func pathLength(g *grid.Grid, path []int) float64 {
	total := 0.0
	for i := 1; i < len(path); i++ {
		p, q := g.Coord(path[i-1]), g.Coord(path[i])
		if p[0] != q[0] && p[1] != q[1] {
			total += math.Sqrt2
		} else {
			total++
		}
	}
	return total
}

//----------------------------------------------------------------------------//
// ShortestPath
//----------------------------------------------------------------------------//

// TestShortestPath_Mask draws the route around the ring's solid centre.
func TestShortestPath_Mask(t *testing.T) {
	g := mustGrid(t, ring)
	mask, err := gridgraph.ShortestPath(g, grid.Coord{0, 0}, grid.Coord{2, 2})
	require.NoError(t, err)
	require.Equal(t, []float64{
		1, 1, 0,
		0, -1, 1,
		0, 0, 1,
	}, mask.Data())

	self, err := gridgraph.ShortestPath(g, grid.Coord{0, 0}, grid.Coord{0, 0})
	require.NoError(t, err)
	require.Equal(t, []float64{1, 0, 0, 0, -1, 0, 0, 0, 0}, self.Data())
}
