package proximity_test

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/katalvlaran/lvgrid/grid"
	"github.com/katalvlaran/lvgrid/proximity"
	"github.com/stretchr/testify/require"
)

var indexes = []proximity.Index{proximity.IndexKDTree, proximity.IndexBruteForce}

func randomLabeled(t testing.TB, shape []int, density float64, seed int64) *grid.Grid {
	t.Helper()
	rnd := rand.New(rand.NewSource(seed))
	n := 1
	for _, d := range shape {
		n *= d
	}
	vals := make([]float64, n)
	for i := range vals {
		if rnd.Float64() < density {
			vals[i] = float64(1 + rnd.Intn(4))
		}
	}
	g, err := grid.New(shape, vals)
	require.NoError(t, err)
	return g
}

// TestDistanceField_LShape: the void cell diagonal to the L's outer corner is √2 away.
func TestDistanceField_LShape(t *testing.T) {
	g, err := grid.From2D([][]float64{
		{0, 0, 1, 0},
		{0, 0, 1, 0},
		{1, 1, 1, 0},
		{0, 0, 0, 0},
	})
	require.NoError(t, err)

	for _, ix := range indexes {
		f, err := proximity.DistanceField(g, proximity.WithIndex(ix))
		require.NoError(t, err)
		v, _ := f.At(3, 3)
		require.Equal(t, math.Sqrt2, v)
		v, _ = f.At(2, 2)
		require.Equal(t, 0.0, v)
		v, _ = f.At(0, 0)
		require.Equal(t, 2.0, v)
	}
}

// TestVoronoiField_Ties: equidistant sites resolve to the first in row-major order.
func TestVoronoiField_Ties(t *testing.T) {
	g, err := grid.From2D([][]float64{{5, 0, 7}})
	require.NoError(t, err)
	for _, ix := range indexes {
		dist, labels, err := proximity.Fields(g, proximity.WithIndex(ix))
		require.NoError(t, err)
		require.Equal(t, []float64{0, 1, 0}, dist.Data())
		require.Equal(t, []float64{5, 5, 7}, labels.Data())
	}

	square, err := grid.From2D([][]float64{{2, 0, 0}, {0, 0, 0}, {0, 0, 3}})
	require.NoError(t, err)
	labels, err := proximity.VoronoiField(square)
	require.NoError(t, err)
	// The centre and the two free corners are equidistant; (0,0) comes first.
	require.Equal(t, []float64{2, 2, 2, 2, 2, 3, 2, 3, 3}, labels.Data())
}

// TestNoSolids fills the sentinels.
func TestNoSolids(t *testing.T) {
	g, err := grid.From2D([][]float64{{0, 0}, {0, -3}})
	require.NoError(t, err)
	dist, labels, err := proximity.Fields(g)
	require.NoError(t, err)
	require.Equal(t, []float64{-1, -1, -1, -1}, dist.Data())
	require.Equal(t, []float64{0, 0, 0, 0}, labels.Data())
}

// TestVolume checks a 3D grid.
func TestVolume(t *testing.T) {
	vals := make([]float64, 27)
	vals[0] = 4 // (0,0,0)
	g, err := grid.New([]int{3, 3, 3}, vals)
	require.NoError(t, err)

	for _, ix := range indexes {
		dist, labels, err := proximity.Fields(g, proximity.WithIndex(ix))
		require.NoError(t, err)
		v, _ := dist.At(2, 2, 2)
		require.Equal(t, math.Sqrt(12), v)
		l, _ := labels.At(1, 2, 0)
		require.Equal(t, 4.0, l)
	}
}

// TestIndexesAgree: k-d tree and brute force are bit-identical.
func TestIndexesAgree(t *testing.T) {
	shapes := [][]int{{17, 13}, {9, 8, 7}, {1, 30}}
	for s, shape := range shapes {
		for seed := int64(1); seed <= 4; seed++ {
			g := randomLabeled(t, shape, 0.08, seed+int64(10*s))
			kd, kl, err := proximity.Fields(g)
			require.NoError(t, err)
			bd, bl, err := proximity.Fields(g, proximity.WithIndex(proximity.IndexBruteForce))
			require.NoError(t, err)
			require.Equal(t, bd.Data(), kd.Data(), "shape %v seed %d", shape, seed)
			require.Equal(t, bl.Data(), kl.Data(), "shape %v seed %d", shape, seed)
		}
	}
}

// TestFieldsConsistent: each cell's label belongs to a site at exactly its distance.
func TestFieldsConsistent(t *testing.T) {
	g := randomLabeled(t, []int{12, 12}, 0.1, 99)
	dist, labels, err := proximity.Fields(g)
	require.NoError(t, err)

	for i := 0; i < g.Len(); i++ {
		if g.SolidAt(i) {
			continue
		}
		c := g.Coord(i)
		found := false
		for j := 0; j < g.Len(); j++ {
			if !g.SolidAt(j) {
				continue
			}
			s := g.Coord(j)
			d := math.Hypot(float64(c[0]-s[0]), float64(c[1]-s[1]))
			require.GreaterOrEqual(t, d+1e-12, dist.Data()[i])
			if math.Abs(d-dist.Data()[i]) < 1e-12 && g.LabelAt(j) == labels.Data()[i] {
				found = true
			}
		}
		require.True(t, found, "cell %v", c)
	}
}

// TestParallel matches the sequential result and honours cancellation.
func TestParallel(t *testing.T) {
	g := randomLabeled(t, []int{20, 20}, 0.05, 5)
	d1, l1, err := proximity.Fields(g)
	require.NoError(t, err)
	d4, l4, err := proximity.Fields(g, proximity.WithWorkers(4))
	require.NoError(t, err)
	require.Equal(t, d1.Data(), d4.Data())
	require.Equal(t, l1.Data(), l4.Data())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = proximity.DistanceField(g, proximity.WithContext(ctx))
	require.ErrorIs(t, err, context.Canceled)

	_, err = proximity.DistanceField(g, proximity.WithIndex(5))
	require.ErrorIs(t, err, proximity.ErrOptionViolation)
}

// TestVoronoiField_SolidKeepsLabel: solid cells carry their own label at distance 0.
func TestVoronoiField_SolidKeepsLabel(t *testing.T) {
	g, err := grid.From2D([][]float64{{3, 0, 0, 5}})
	require.NoError(t, err)

	for _, ix := range indexes {
		dist, labels, err := proximity.Fields(g, proximity.WithIndex(ix))
		require.NoError(t, err)
		require.Equal(t, []float64{3, 3, 5, 5}, labels.Data())
		require.Equal(t, 0.0, dist.Data()[0])
		require.Equal(t, 0.0, dist.Data()[3])
	}
}
