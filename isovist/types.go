package isovist

import (
	"context"
	"errors"
	"fmt"
)

// Canvas values.
const (
	Solid    = -1.0
	Hidden   = 0.0
	Visible  = 1.0
	Observer = -2.0
)

// Sentinel errors for isovist execution.
var (
	// ErrInvalidOrigin is returned when the observer cell is solid.
	ErrInvalidOrigin = errors.New("isovist: origin is a solid cell")

	// ErrOptionViolation is returned when an invalid Option is supplied.
	ErrOptionViolation = errors.New("isovist: invalid option supplied")
)

// Option configures an isovist computation.
// Invalid values are recorded and surfaced as ErrOptionViolation when the
// computation starts.
type Option func(*Options)

// Options holds the parameters of an isovist computation.
type Options struct {
	// Ctx allows cancellation and deadlines.
	Ctx context.Context

	// Workers is the number of goroutines used by Map and CollisionMap.
	Workers int

	// Progress, if set, is called once per finished origin with the number
	// of finished origins and the total. Calls never overlap.
	Progress func(done, total int)

	// MarkOrigin makes FromPoint write Observer at the origin cell.
	MarkOrigin bool

	err error
}

// DefaultOptions returns background context, one worker, no progress hook
// and no origin marker.
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

// WithMarkOrigin writes the Observer value at the origin of FromPoint.
func WithMarkOrigin() Option {
	return func(o *Options) {
		o.MarkOrigin = true
	}
}

func buildOptions(opts []Option) (Options, error) {
	cfg := DefaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg, cfg.err
}
