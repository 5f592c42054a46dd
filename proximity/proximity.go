package proximity

import (
	"context"
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/katalvlaran/lvgrid/field"
	"github.com/katalvlaran/lvgrid/grid"
	"github.com/katalvlaran/lvgrid/internal/workpool"
)

// DistanceField returns the Euclidean distance from every cell to its nearest solid cell.
func DistanceField(g *grid.Grid, opts ...Option) (*field.Field, error) {
	dist, _, err := Fields(g, opts...)

	return dist, err
}

// VoronoiField returns the label of every cell's nearest solid cell.
// A solid cell is its own nearest site at distance 0, so it holds its own
// label rather than 0; this keeps labels consistent with DistanceField.
func VoronoiField(g *grid.Grid, opts ...Option) (*field.Field, error) {
	_, labels, err := Fields(g, opts...)

	return labels, err
}

// Fields computes the distance and Voronoi fields in one pass.
func Fields(g *grid.Grid, opts ...Option) (dist, labels *field.Field, err error) {
	cfg, err := buildOptions(opts)
	if err != nil {
		return nil, nil, err
	}
	dist, _ = field.New(g.Shape()...)
	labels, _ = field.New(g.Shape()...)
	dd, ld := dist.Data(), labels.Data()

	if g.SolidCount() == 0 {
		dist.Fill(NoSite)
		return dist, labels, nil
	}

	var voids []int
	for i := 0; i < g.Len(); i++ {
		if g.SolidAt(i) {
			ld[i] = g.LabelAt(i)
			continue
		}
		voids = append(voids, i)
	}

	ix := newIndex(g, cfg.Index)
	progress := workpool.NewProgress(len(voids), cfg.Progress)
	err = workpool.Run(cfg.Ctx, len(voids), cfg.Workers, func(ctx context.Context, _, lo, hi int) error {
		q := make(kdtree.Point, g.Dims())
		for _, v := range voids[lo:hi] {
			if err := workpool.Alive(ctx); err != nil {
				return err
			}
			coordInto(g, v, q)
			site, d2 := ix.nearest(q)
			dd[v] = math.Sqrt(d2)
			ld[v] = g.LabelAt(site)
			progress.Step()
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return dist, labels, nil
}

// nearestIndex answers "which solid cell is nearest to q, and at what
// squared distance"; ties resolve to the lowest flat index.
type nearestIndex interface {
	nearest(q kdtree.Point) (site int, d2 float64)
}

func newIndex(g *grid.Grid, kind Index) nearestIndex {
	sites := make([]int, 0, g.SolidCount())
	for i := 0; i < g.Len(); i++ {
		if g.SolidAt(i) {
			sites = append(sites, i)
		}
	}
	if kind == IndexBruteForce {
		return &bruteForce{g: g, sites: sites}
	}

	pts := make(kdtree.Points, len(sites))
	for k, s := range sites {
		pts[k] = make(kdtree.Point, g.Dims())
		coordInto(g, s, pts[k])
	}

	return &kdIndex{g: g, strides: strides(g.Shape()), tree: kdtree.New(pts, false)}
}

// bruteForce scans sites in row-major order; the strict comparison keeps the first minimum.
type bruteForce struct {
	g     *grid.Grid
	sites []int
}

func (b *bruteForce) nearest(q kdtree.Point) (int, float64) {
	best, bestD := -1, math.Inf(1)
	p := make(kdtree.Point, len(q))
	for _, s := range b.sites {
		coordInto(b.g, s, p)
		if d := q.Distance(p); d < bestD {
			best, bestD = s, d
		}
	}

	return best, bestD
}

// kdIndex wraps a k-d tree over the solid cell coordinates.
type kdIndex struct {
	g       *grid.Grid
	strides []int
	tree    *kdtree.Tree
}

func (k *kdIndex) nearest(q kdtree.Point) (int, float64) {
	_, d2 := k.tree.Nearest(q)
	keep := kdtree.NewDistKeeper(d2)
	k.tree.NearestSet(keep, q)

	best := -1
	for _, cd := range keep.Heap {
		if cd.Comparable == nil {
			continue
		}
		idx := k.index(cd.Comparable.(kdtree.Point))
		if best < 0 || idx < best {
			best = idx
		}
	}

	return best, d2
}

func (k *kdIndex) index(p kdtree.Point) int {
	off := 0
	for i, v := range p {
		off += int(v) * k.strides[i]
	}

	return off
}

func coordInto(g *grid.Grid, idx int, p kdtree.Point) {
	for i, c := range g.Coord(idx) {
		p[i] = float64(c)
	}
}

func strides(shape []int) []int {
	s := make([]int, len(shape))
	acc := 1
	for i := len(shape) - 1; i >= 0; i-- {
		s[i] = acc
		acc *= shape[i]
	}

	return s
}
