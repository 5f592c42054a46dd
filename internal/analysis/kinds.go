package analysis

import (
	"context"
	"fmt"

	"github.com/katalvlaran/lvgrid/field"
	"github.com/katalvlaran/lvgrid/grid"
	"github.com/katalvlaran/lvgrid/gridgraph"
	"github.com/katalvlaran/lvgrid/isovist"
	"github.com/katalvlaran/lvgrid/layers"
	"github.com/katalvlaran/lvgrid/proximity"
	"github.com/katalvlaran/lvgrid/shadow"
)

// job is one validated request on its way to an engine.
type job struct {
	ctx context.Context
	req *Request
	g   *grid.Grid
	p   Params
}

var handlers = map[Kind]func(*job) (*Result, error){
	KindIsovist:          runIsovist,
	KindIsovistMap:       planKind(isovistField(isovist.Map)),
	KindIsovistCollision: planKind(isovistField(isovist.CollisionMap)),
	KindIsovistAggregate: runAggregate,
	KindDistances:        runDistances,
	KindPath:             runPath,
	KindBridge:           runBridge,
	KindCentrality:       planKind(graphField(gridgraph.Centrality)),
	KindTraffic:          planKind(graphField(gridgraph.Traffic)),
	KindComponents:       runComponents,
	KindShadow:           runShadow,
	KindShadowMap:        runShadowMap,
	KindDistance:         runProximity(proximity.DistanceField),
	KindVoronoi:          runProximity(proximity.VoronoiField),
	KindFacades:          runFacades,
}

// ---------- option translation ----------

func (j *job) isovistOpts() []isovist.Option {
	opts := []isovist.Option{isovist.WithContext(j.ctx), isovist.WithWorkers(j.p.Workers)}
	if j.req.Progress != nil {
		opts = append(opts, isovist.WithProgress(j.req.Progress))
	}
	if j.p.MarkOrigin {
		opts = append(opts, isovist.WithMarkOrigin())
	}

	return opts
}

func (j *job) graphOpts() ([]gridgraph.Option, error) {
	opts := []gridgraph.Option{gridgraph.WithContext(j.ctx), gridgraph.WithWorkers(j.p.Workers)}
	if j.req.Progress != nil {
		opts = append(opts, gridgraph.WithProgress(j.req.Progress))
	}
	switch j.p.Connectivity {
	case 0, 8:
	case 4:
		opts = append(opts, gridgraph.WithConnectivity(gridgraph.Conn4))
	default:
		return nil, fmt.Errorf("%w: connectivity %d", ErrOptionViolation, j.p.Connectivity)
	}
	switch j.p.Solver {
	case "", "frontier":
	case "heap":
		opts = append(opts, gridgraph.WithSolver(gridgraph.SolverHeap))
	default:
		return nil, fmt.Errorf("%w: solver %q", ErrOptionViolation, j.p.Solver)
	}

	return opts, nil
}

func (j *job) proximityOpts() ([]proximity.Option, error) {
	opts := []proximity.Option{proximity.WithContext(j.ctx), proximity.WithWorkers(j.p.Workers)}
	if j.req.Progress != nil {
		opts = append(opts, proximity.WithProgress(j.req.Progress))
	}
	switch j.p.Index {
	case "", "kdtree":
	case "brute":
		opts = append(opts, proximity.WithIndex(proximity.IndexBruteForce))
	default:
		return nil, fmt.Errorf("%w: index %q", ErrOptionViolation, j.p.Index)
	}

	return opts, nil
}

func (j *job) shadowOpts() []shadow.Option {
	opts := []shadow.Option{shadow.WithContext(j.ctx), shadow.WithWorkers(j.p.Workers)}
	if j.req.Progress != nil {
		opts = append(opts, shadow.WithProgress(j.req.Progress))
	}

	return opts
}

// ---------- plan kinds ----------

// planFunc computes a 2D field for one plan of the job's grid.
type planFunc func(j *job, plan *grid.Grid) (*field.Field, error)

// planKind runs fn on a plan, or once per z layer of a volume.
func planKind(fn planFunc) func(*job) (*Result, error) {
	return func(j *job) (*Result, error) {
		f, err := layers.Each(j.ctx, j.g, func(plan *grid.Grid) (*field.Field, error) {
			return fn(j, plan)
		})
		if err != nil {
			return nil, err
		}

		return &Result{Field: f}, nil
	}
}

func isovistField(fn func(*grid.Grid, ...isovist.Option) (*field.Field, error)) planFunc {
	return func(j *job, plan *grid.Grid) (*field.Field, error) {
		return fn(plan, j.isovistOpts()...)
	}
}

func graphField(fn func(*grid.Grid, ...gridgraph.Option) (*field.Field, error)) planFunc {
	return func(j *job, plan *grid.Grid) (*field.Field, error) {
		opts, err := j.graphOpts()
		if err != nil {
			return nil, err
		}
		return fn(plan, opts...)
	}
}

func runIsovist(j *job) (*Result, error) {
	if j.req.Origin == nil {
		return nil, fmt.Errorf("%w: origin", ErrMissingInput)
	}

	return planKind(func(j *job, plan *grid.Grid) (*field.Field, error) {
		return isovist.FromPoint(plan, j.req.Origin, j.isovistOpts()...)
	})(j)
}

func runAggregate(j *job) (*Result, error) {
	if len(j.req.Points) == 0 {
		return nil, fmt.Errorf("%w: points", ErrMissingInput)
	}

	return planKind(func(j *job, plan *grid.Grid) (*field.Field, error) {
		return isovist.Aggregate(plan, j.req.Points, j.isovistOpts()...)
	})(j)
}

func runDistances(j *job) (*Result, error) {
	if j.req.Origin == nil {
		return nil, fmt.Errorf("%w: origin", ErrMissingInput)
	}

	return planKind(func(j *job, plan *grid.Grid) (*field.Field, error) {
		opts, err := j.graphOpts()
		if err != nil {
			return nil, err
		}
		t, err := gridgraph.ShortestPaths(plan, j.req.Origin, opts...)
		if err != nil {
			return nil, err
		}
		return t.Dist, nil
	})(j)
}

func runPath(j *job) (*Result, error) {
	if j.req.Origin == nil || j.req.Target == nil {
		return nil, fmt.Errorf("%w: origin and target", ErrMissingInput)
	}

	return planKind(func(j *job, plan *grid.Grid) (*field.Field, error) {
		opts, err := j.graphOpts()
		if err != nil {
			return nil, err
		}
		return gridgraph.ShortestPath(plan, j.req.Origin, j.req.Target, opts...)
	})(j)
}

// runBridge works on plans only; the route mask marks opened solid cells as path.
func runBridge(j *job) (*Result, error) {
	if j.req.Origin == nil || j.req.Target == nil {
		return nil, fmt.Errorf("%w: origin and target", ErrMissingInput)
	}
	opts, err := j.graphOpts()
	if err != nil {
		return nil, err
	}
	path, cost, err := gridgraph.Bridge(j.g, j.req.Origin, j.req.Target, opts...)
	if err != nil {
		return nil, err
	}

	f, _ := field.New(j.g.Shape()...)
	data := f.Data()
	for i := range data {
		if j.g.SolidAt(i) {
			data[i] = gridgraph.RouteSolid
		}
	}
	for _, i := range path {
		data[i] = gridgraph.RoutePath
	}

	return &Result{Field: f, Path: path, Scalars: map[string]float64{"cost": float64(cost)}}, nil
}

// runComponents labels free cells with their 1-based region number per
// plan; solid cells hold 0. Region lists are returned for plans only.
func runComponents(j *job) (*Result, error) {
	opts, err := j.graphOpts()
	if err != nil {
		return nil, err
	}
	res := &Result{}
	res.Field, err = layers.Each(j.ctx, j.g, func(plan *grid.Grid) (*field.Field, error) {
		comps, err := gridgraph.Components(plan, opts...)
		if err != nil {
			return nil, err
		}
		if j.g.Dims() == 2 {
			res.Components = comps
		}
		f, _ := field.New(plan.Shape()...)
		data := f.Data()
		for k, comp := range comps {
			for _, i := range comp {
				data[i] = float64(k + 1)
			}
		}
		return f, nil
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

// ---------- volume kinds ----------

// volume lifts a plan to a single-layer volume; back undoes it on a result.
func (j *job) volume() (vol *grid.Grid, back func(*field.Field) (*field.Field, error)) {
	if j.g.Dims() == 3 {
		return j.g, func(f *field.Field) (*field.Field, error) { return f, nil }
	}

	return j.g.Lift(), func(f *field.Field) (*field.Field, error) { return f.Slice(0) }
}

func runShadow(j *job) (*Result, error) {
	if len(j.req.Lights) == 0 {
		return nil, fmt.Errorf("%w: light", ErrMissingInput)
	}
	vol, back := j.volume()
	m, err := shadow.Field(vol, j.req.Lights[0], j.shadowOpts()...)
	if err != nil {
		return nil, err
	}
	f, err := back(m.Field())
	if err != nil {
		return nil, err
	}

	return &Result{Field: f, Scalars: map[string]float64{"shadowed": float64(m.Count())}}, nil
}

func runShadowMap(j *job) (*Result, error) {
	if len(j.req.Lights) == 0 {
		return nil, fmt.Errorf("%w: lights", ErrMissingInput)
	}
	vol, back := j.volume()
	f, err := shadow.Map(vol, j.req.Lights, j.shadowOpts()...)
	if err != nil {
		return nil, err
	}
	if f, err = back(f); err != nil {
		return nil, err
	}

	return &Result{Field: f}, nil
}

func runProximity(fn func(*grid.Grid, ...proximity.Option) (*field.Field, error)) func(*job) (*Result, error) {
	return func(j *job) (*Result, error) {
		opts, err := j.proximityOpts()
		if err != nil {
			return nil, err
		}
		f, err := fn(j.g, opts...)
		if err != nil {
			return nil, err
		}

		return &Result{Field: f}, nil
	}
}

func runFacades(j *job) (*Result, error) {
	return &Result{
		Field: grid.FacadeMap(j.g),
		Scalars: map[string]float64{
			"facades":     float64(grid.FacadeCount(j.g)),
			"compactness": grid.Compactness(j.g),
		},
	}, nil
}
