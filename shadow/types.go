package shadow

import (
	"context"
	"errors"
	"fmt"
)

// Light is a direction vector in grid index space (x, y, z).
type Light [3]float64

// Sentinel errors for shadow execution.
var (
	// ErrInvalidLight indicates a zero or non-finite light vector.
	ErrInvalidLight = errors.New("shadow: light vector must be finite and non-zero")

	// ErrOptionViolation is returned when an invalid Option is supplied.
	ErrOptionViolation = errors.New("shadow: invalid option supplied")
)

// Option configures a shadow computation.
type Option func(*Options)

// Options holds parameters for shadow computations.
type Options struct {
	// Ctx allows cancellation and deadlines; checked once per sorted voxel.
	Ctx context.Context

	// Workers is the number of goroutines used by Map.
	Workers int

	// Progress, if set, is called once per finished light by Map and once
	// per sorted voxel by Field. Calls never overlap.
	Progress func(done, total int)

	err error
}

// DefaultOptions returns background context, one worker and no progress hook.
func DefaultOptions() Options {
	return Options{
		Ctx:     context.Background(),
		Workers: 1,
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

func buildOptions(opts []Option) (Options, error) {
	cfg := DefaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg, cfg.err
}
