package shadow_test

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/katalvlaran/lvgrid/grid"
	"github.com/katalvlaran/lvgrid/shadow"
	"github.com/stretchr/testify/require"
)

func volume(t testing.TB, shape []int, solids ...grid.Coord) *grid.Grid {
	t.Helper()
	n := shape[0] * shape[1] * shape[2]
	vals := make([]float64, n)
	for _, c := range solids {
		vals[(c[0]*shape[1]+c[1])*shape[2]+c[2]] = 1
	}
	g, err := grid.New(shape, vals)
	require.NoError(t, err)
	return g
}

func randomVolume(t testing.TB, n int, density float64, seed int64) *grid.Grid {
	t.Helper()
	rnd := rand.New(rand.NewSource(seed))
	vals := make([]float64, n*n*n)
	for i := range vals {
		if rnd.Float64() < density {
			vals[i] = 1
		}
	}
	g, err := grid.New([]int{n, n, n}, vals)
	require.NoError(t, err)
	return g
}

func shadowed(t testing.TB, g *grid.Grid, l shadow.Light, c grid.Coord) bool {
	t.Helper()
	m, err := shadow.Field(g, l)
	require.NoError(t, err)
	v, err := m.At(c...)
	require.NoError(t, err)
	return v
}

// TestField_BehindAlongX: the rear voxel on the light axis is shadowed, the front one is lit.
func TestField_BehindAlongX(t *testing.T) {
	g := volume(t, []int{3, 3, 3}, grid.Coord{0, 0, 0}, grid.Coord{2, 0, 0})
	m, err := shadow.Field(g, shadow.Light{1, 0, 0})
	require.NoError(t, err)

	back, _ := m.At(2, 0, 0)
	front, _ := m.At(0, 0, 0)
	require.True(t, back)
	require.False(t, front)
	require.Equal(t, 1, m.Count())
}

// TestField_Column stacks voxels along z under both vertical directions.
func TestField_Column(t *testing.T) {
	g := volume(t, []int{3, 3, 3}, grid.Coord{1, 1, 0}, grid.Coord{1, 1, 1}, grid.Coord{1, 1, 2})

	up := shadow.Light{0, 0, 1}
	require.False(t, shadowed(t, g, up, grid.Coord{1, 1, 0}))
	require.True(t, shadowed(t, g, up, grid.Coord{1, 1, 1}))
	require.True(t, shadowed(t, g, up, grid.Coord{1, 1, 2}))

	down := shadow.Light{0, 0, -1}
	require.True(t, shadowed(t, g, down, grid.Coord{1, 1, 0}))
	require.True(t, shadowed(t, g, down, grid.Coord{1, 1, 1}))
	require.False(t, shadowed(t, g, down, grid.Coord{1, 1, 2}))
}

// TestField_Diagonal follows a 45° ray in the xy plane.
func TestField_Diagonal(t *testing.T) {
	g := volume(t, []int{3, 3, 1}, grid.Coord{0, 0, 0}, grid.Coord{1, 1, 0}, grid.Coord{2, 2, 0})
	m, err := shadow.Field(g, shadow.Light{1, 1, 0})
	require.NoError(t, err)
	require.Equal(t, []bool{false, false, false, false, true, false, false, false, true}, m.Data())

	// Off the diagonal nothing is hit.
	off := volume(t, []int{3, 3, 1}, grid.Coord{0, 0, 0}, grid.Coord{0, 2, 0})
	m, err = shadow.Field(off, shadow.Light{1, 1, 0})
	require.NoError(t, err)
	require.Equal(t, 0, m.Count())
}

// TestField_Errors covers rank, light and option validation.
func TestField_Errors(t *testing.T) {
	g := volume(t, []int{2, 2, 2}, grid.Coord{0, 0, 0})
	_, err := shadow.Field(g, shadow.Light{0, 0, 0})
	require.ErrorIs(t, err, shadow.ErrInvalidLight)
	_, err = shadow.Field(g, shadow.Light{math.NaN(), 1, 0})
	require.ErrorIs(t, err, shadow.ErrInvalidLight)
	_, err = shadow.Field(g, shadow.Light{0, math.Inf(1), 0})
	require.ErrorIs(t, err, shadow.ErrInvalidLight)
	_, err = shadow.Field(g, shadow.Light{1, 0, 0}, shadow.WithWorkers(-1))
	require.ErrorIs(t, err, shadow.ErrOptionViolation)

	plan, err := grid.From2D([][]float64{{1, 0}})
	require.NoError(t, err)
	_, err = shadow.Field(plan, shadow.Light{1, 0, 0})
	require.ErrorIs(t, err, grid.ErrInvalidDimension)
	_, err = shadow.Map(plan, nil)
	require.ErrorIs(t, err, grid.ErrInvalidDimension)

	lifted := plan.Lift()
	_, err = shadow.Field(lifted, shadow.Light{0, 1, 0})
	require.NoError(t, err)
}

// TestField_Invariants: only solid voxels are shadowed and the voxels
// nearest the light source are always lit.
func TestField_Invariants(t *testing.T) {
	lights := []shadow.Light{{1, 0, 0}, {1, 1, 1}, {-0.3, 0.5, 2}, {0, -1, 0.2}}
	for seed := int64(1); seed <= 3; seed++ {
		g := randomVolume(t, 6, 0.3, seed)
		for _, l := range lights {
			m, err := shadow.Field(g, l)
			require.NoError(t, err)

			minDot := math.Inf(1)
			for i := 0; i < g.Len(); i++ {
				if g.SolidAt(i) {
					minDot = math.Min(minDot, dot(g.Coord(i), l))
				}
			}
			for i, s := range m.Data() {
				if !s {
					continue
				}
				require.True(t, g.SolidAt(i), "void voxel %v shadowed", g.Coord(i))
				require.Greater(t, dot(g.Coord(i), l), minDot)
			}
		}
	}
}

func dot(c grid.Coord, l shadow.Light) float64 {
	return float64(c[0])*l[0] + float64(c[1])*l[1] + float64(c[2])*l[2]
}

// TestMap sums opposite lights and matches across worker counts.
func TestMap(t *testing.T) {
	g := volume(t, []int{3, 3, 3}, grid.Coord{0, 0, 0}, grid.Coord{2, 0, 0})
	m, err := shadow.Map(g, []shadow.Light{{1, 0, 0}, {-1, 0, 0}})
	require.NoError(t, err)
	a, _ := m.At(0, 0, 0)
	b, _ := m.At(2, 0, 0)
	require.Equal(t, 1.0, a)
	require.Equal(t, 1.0, b)

	_, err = shadow.Map(g, []shadow.Light{{1, 0, 0}, {0, 0, 0}})
	require.ErrorIs(t, err, shadow.ErrInvalidLight)

	rv := randomVolume(t, 7, 0.25, 9)
	lights := []shadow.Light{{1, 0, 0}, {0, 1, 0}, {1, 1, 1}, {0.2, -1, 0.5}, {-1, -1, 2}}
	seq, err := shadow.Map(rv, lights)
	require.NoError(t, err)
	par, err := shadow.Map(rv, lights, shadow.WithWorkers(3))
	require.NoError(t, err)
	require.Equal(t, seq.Data(), par.Data())

	// Each light contributes its own Field.
	want := make([]float64, rv.Len())
	for _, l := range lights {
		f, err := shadow.Field(rv, l)
		require.NoError(t, err)
		for i, s := range f.Data() {
			if s {
				want[i]++
			}
		}
	}
	require.Equal(t, want, seq.Data())
}

// TestField_Cancel stops on a cancelled context.
func TestField_Cancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := volume(t, []int{2, 2, 2}, grid.Coord{0, 0, 0})
	_, err := shadow.Field(g, shadow.Light{1, 0, 0}, shadow.WithContext(ctx))
	require.ErrorIs(t, err, context.Canceled)
}
