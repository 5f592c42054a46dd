// Package analysis dispatches a named analysis request to the engine that
// computes it.
//
// A Request carries the occupancy grid as a dense field together with the
// inputs the kind needs (origin, target, view points, lights). Kinds whose
// engine only accepts 2D plans run once per z layer when handed a volume.
// The same Request type is the JSON body of the HTTP service and the job
// file of the CLI.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/katalvlaran/lvgrid/field"
	"github.com/katalvlaran/lvgrid/grid"
	"github.com/katalvlaran/lvgrid/internal/config"
	"github.com/katalvlaran/lvgrid/shadow"
)

// Kind names one analysis.
type Kind string

// Supported kinds.
const (
	KindIsovist          Kind = "isovist"
	KindIsovistMap       Kind = "isovist-map"
	KindIsovistCollision Kind = "isovist-collision"
	KindIsovistAggregate Kind = "isovist-aggregate"
	KindDistances        Kind = "distances"
	KindPath             Kind = "path"
	KindBridge           Kind = "bridge"
	KindCentrality       Kind = "centrality"
	KindTraffic          Kind = "traffic"
	KindComponents       Kind = "components"
	KindShadow           Kind = "shadow"
	KindShadowMap        Kind = "shadow-map"
	KindDistance         Kind = "distance"
	KindVoronoi          Kind = "voronoi"
	KindFacades          Kind = "facades"
)

// Kinds lists every supported kind in a stable order.
func Kinds() []Kind {
	return []Kind{
		KindIsovist, KindIsovistMap, KindIsovistCollision, KindIsovistAggregate,
		KindDistances, KindPath, KindBridge, KindCentrality, KindTraffic, KindComponents,
		KindShadow, KindShadowMap, KindDistance, KindVoronoi, KindFacades,
	}
}

// Sentinel errors for request validation.
var (
	// ErrUnknownKind indicates an unsupported Request.Kind.
	ErrUnknownKind = errors.New("analysis: unknown kind")
	// ErrMissingInput indicates that the kind needs an input the request lacks.
	ErrMissingInput = errors.New("analysis: missing input")
	// ErrTooLarge indicates a request beyond the configured limits.
	ErrTooLarge = errors.New("analysis: request exceeds limits")
	// ErrOptionViolation indicates an unrecognized Params value.
	ErrOptionViolation = errors.New("analysis: invalid option supplied")
)

// Params are the engine options a request may set. Zero values select the
// engine defaults.
type Params struct {
	Workers      int    `json:"workers,omitempty"`
	Connectivity int    `json:"connectivity,omitempty"` // 4 or 8
	Solver       string `json:"solver,omitempty"`       // "frontier" or "heap"
	Index        string `json:"index,omitempty"`        // "kdtree" or "brute"
	MarkOrigin   bool   `json:"markOrigin,omitempty"`
}

// Request describes one analysis.
type Request struct {
	Kind    Kind           `json:"kind"`
	Grid    *field.Field   `json:"grid"`
	Origin  grid.Coord     `json:"origin,omitempty"`
	Target  grid.Coord     `json:"target,omitempty"`
	Points  []grid.Coord   `json:"points,omitempty"`
	Lights  []shadow.Light `json:"lights,omitempty"`
	Options Params         `json:"options"`

	// Progress, if set, receives the engine's progress. For per-layer kinds
	// the count restarts on every layer.
	Progress func(done, total int) `json:"-"`
}

// Result is the output of one analysis.
type Result struct {
	Kind  Kind         `json:"kind"`
	Field *field.Field `json:"field"`
	// Components lists free regions as flat indices (2D components only).
	Components [][]int `json:"components,omitempty"`
	// Path is the bridge route as flat indices.
	Path []int `json:"path,omitempty"`
	// Scalars carries summary numbers such as bridge cost or facade count.
	Scalars map[string]float64 `json:"scalars,omitempty"`
	Elapsed time.Duration      `json:"elapsedNs"`
}

// Runner executes requests under a set of limits.
type Runner struct {
	limits config.Limits
}

// NewRunner returns a Runner enforcing l.
func NewRunner(l config.Limits) *Runner {
	return &Runner{limits: l}
}

// Run executes req with the default limits.
func Run(ctx context.Context, req *Request) (*Result, error) {
	return NewRunner(config.DefaultLimits()).Run(ctx, req)
}

// Run validates req, builds the grid and dispatches to the engine.
func (r *Runner) Run(ctx context.Context, req *Request) (*Result, error) {
	start := time.Now()
	if err := r.check(req); err != nil {
		return nil, err
	}
	run, ok := handlers[req.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, req.Kind)
	}
	g, err := grid.FromField(req.Grid)
	if err != nil {
		return nil, err
	}
	p := req.Options
	if r.limits.MaxWorkers > 0 && p.Workers > r.limits.MaxWorkers {
		p.Workers = r.limits.MaxWorkers
	}
	if p.Workers < 1 {
		p.Workers = 1
	}

	res, err := run(&job{ctx: ctx, req: req, g: g, p: p})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", req.Kind, err)
	}
	res.Kind = req.Kind
	res.Elapsed = time.Since(start)

	return res, nil
}

func (r *Runner) check(req *Request) error {
	if req.Grid == nil {
		return fmt.Errorf("%w: grid", ErrMissingInput)
	}
	l := r.limits
	if l.MaxCells > 0 && req.Grid.Len() > l.MaxCells {
		return fmt.Errorf("%w: %d cells, limit %d", ErrTooLarge, req.Grid.Len(), l.MaxCells)
	}
	if l.MaxLights > 0 && len(req.Lights) > l.MaxLights {
		return fmt.Errorf("%w: %d lights, limit %d", ErrTooLarge, len(req.Lights), l.MaxLights)
	}
	if l.MaxPoints > 0 && len(req.Points) > l.MaxPoints {
		return fmt.Errorf("%w: %d points, limit %d", ErrTooLarge, len(req.Points), l.MaxPoints)
	}

	return nil
}
