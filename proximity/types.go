package proximity

import (
	"context"
	"errors"
	"fmt"
)

// NoSite is the distance stored everywhere when the grid has no solid cells.
const NoSite = -1.0

// Index selects the nearest-site search structure.
type Index int

const (
	// IndexKDTree queries a k-d tree built over the solid cells.
	IndexKDTree Index = iota
	// IndexBruteForce scans every solid cell per query.
	IndexBruteForce
)

// ErrOptionViolation is returned when an invalid Option is supplied.
var ErrOptionViolation = errors.New("proximity: invalid option supplied")

// Option configures a proximity computation.
type Option func(*Options)

// Options holds parameters for proximity computations.
type Options struct {
	// Ctx allows cancellation and deadlines; checked once per void cell.
	Ctx context.Context

	// Workers is the number of goroutines sharing the void cells.
	Workers int

	// Progress, if set, is called once per finished void cell. Calls never overlap.
	Progress func(done, total int)

	// Index selects the search structure.
	Index Index

	err error
}

// DefaultOptions returns background context, one worker and IndexKDTree.
func DefaultOptions() Options {
	return Options{
		Ctx:     context.Background(),
		Workers: 1,
		Index:   IndexKDTree,
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

// WithIndex selects the search structure.
func WithIndex(ix Index) Option {
	return func(o *Options) {
		if ix != IndexKDTree && ix != IndexBruteForce {
			o.err = fmt.Errorf("%w: unknown index %d", ErrOptionViolation, ix)
			return
		}
		o.Index = ix
	}
}

func buildOptions(opts []Option) (Options, error) {
	cfg := DefaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg, cfg.err
}
