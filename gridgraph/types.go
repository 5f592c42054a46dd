package gridgraph

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// Sentinel errors for gridgraph operations.
var (
	// ErrInvalidSource indicates a solid source cell.
	ErrInvalidSource = errors.New("gridgraph: source is a solid cell")
	// ErrUnreachable indicates that no path joins source and target.
	ErrUnreachable = errors.New("gridgraph: target unreachable from source")
	// ErrOptionViolation is returned when an invalid Option is supplied.
	ErrOptionViolation = errors.New("gridgraph: invalid option supplied")
)

// NoPredecessor marks unreached and solid cells in Tree.Pred.
const NoPredecessor = -1

// Unreached is the distance stored for unreached and solid cells.
const Unreached = -1.0

// Connectivity selects neighbor connectivity: orthogonal (Conn4) or including diagonals (Conn8).
type Connectivity int

const (
	// Conn4 uses 4-directional connectivity: N, E, S, W.
	Conn4 Connectivity = iota
	// Conn8 uses 8-directional connectivity: NW, N, NE, E, SE, S, SW, W.
	Conn8
)

// Solver selects the single-source shortest-path algorithm.
type Solver int

const (
	// SolverFrontier relaxes improved cells in waves until nothing changes.
	SolverFrontier Solver = iota
	// SolverHeap runs Dijkstra with a binary min-heap.
	SolverHeap
)

// move is one neighbor offset with its edge weight.
type move struct {
	dr, dc int
	w      float64
}

var (
	moves8 = []move{
		{-1, -1, math.Sqrt2}, {-1, 0, 1}, {-1, 1, math.Sqrt2}, {0, 1, 1},
		{1, 1, math.Sqrt2}, {1, 0, 1}, {1, -1, math.Sqrt2}, {0, -1, 1},
	}
	moves4 = []move{{-1, 0, 1}, {0, 1, 1}, {1, 0, 1}, {0, -1, 1}}
)

func (c Connectivity) moves() []move {
	if c == Conn4 {
		return moves4
	}

	return moves8
}

// Option configures gridgraph execution.
// Invalid values are recorded and surfaced as ErrOptionViolation when the
// computation starts.
type Option func(*Options)

// Options holds parameters for gridgraph computations.
type Options struct {
	// Ctx allows cancellation and deadlines.
	Ctx context.Context

	// Workers is the number of goroutines used by Centrality and Traffic.
	Workers int

	// Progress, if set, is called once per finished origin by Centrality and
	// Traffic. Calls never overlap.
	Progress func(done, total int)

	// Solver selects the shortest-path algorithm.
	Solver Solver

	// Conn selects 4- or 8-connectivity.
	Conn Connectivity

	err error
}

// DefaultOptions returns background context, one worker, SolverFrontier and Conn8.
func DefaultOptions() Options {
	return Options{
		Ctx:     context.Background(),
		Workers: 1,
		Solver:  SolverFrontier,
		Conn:    Conn8,
	}
}

// WithContext sets a custom context for cancellation.
func WithContext(ctx context.Context) Option {
	return func(o *Options) {
		if ctx != nil {
			o.Ctx = ctx
		}
	}
}

// WithWorkers sets the number of goroutines; n must be >= 1.
func WithWorkers(n int) Option {
	return func(o *Options) {
		if n < 1 {
			o.err = fmt.Errorf("%w: workers must be >= 1, got %d", ErrOptionViolation, n)
			return
		}
		o.Workers = n
	}
}

// WithProgress installs a progress callback.
func WithProgress(fn func(done, total int)) Option {
	return func(o *Options) {
		o.Progress = fn
	}
}

// WithSolver selects the shortest-path algorithm.
func WithSolver(s Solver) Option {
	return func(o *Options) {
		if s != SolverFrontier && s != SolverHeap {
			o.err = fmt.Errorf("%w: unknown solver %d", ErrOptionViolation, s)
			return
		}
		o.Solver = s
	}
}

// WithConnectivity selects Conn4 or Conn8.
func WithConnectivity(c Connectivity) Option {
	return func(o *Options) {
		if c != Conn4 && c != Conn8 {
			o.err = fmt.Errorf("%w: unknown connectivity %d", ErrOptionViolation, c)
			return
		}
		o.Conn = c
	}
}

func buildOptions(opts []Option) (Options, error) {
	cfg := DefaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg, cfg.err
}
