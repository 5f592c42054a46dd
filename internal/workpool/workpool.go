// Package workpool runs independent index ranges on a bounded set of goroutines.
//
// Engines hand it a range [0, n) of independent work items (origins, sources,
// void cells, lights). The range is cut into contiguous chunks, one per
// worker, so each worker writes a disjoint slice of the output. A single
// worker runs inline on the caller's goroutine.
package workpool

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Func processes items [lo, hi) on behalf of worker w.
type Func func(ctx context.Context, w, lo, hi int) error

// Chunks returns the number of chunks Run will use for n items and the
// requested worker count. It is always in [1, max(n,1)].
func Chunks(n, workers int) int {
	if workers < 1 {
		workers = 1
	}
	if n < 1 {
		return 1
	}
	if workers > n {
		return n
	}

	return workers
}

// Run calls fn over [0, n) split into Chunks(n, workers) contiguous ranges.
// The first error cancels the context seen by the remaining chunks and is
// returned.
func Run(ctx context.Context, n, workers int, fn Func) error {
	k := Chunks(n, workers)
	if k == 1 {
		return fn(ctx, 0, 0, n)
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(k)
	size := (n + k - 1) / k
	for w := 0; w < k; w++ {
		lo := w * size
		hi := min(lo+size, n)
		if lo >= hi {
			break
		}
		w := w // per-iteration copy; go.mod targets 1.21 loop semantics
		eg.Go(func() error { return fn(egCtx, w, lo, hi) })
	}

	return eg.Wait()
}

// Alive returns ctx.Err() without blocking.
func Alive(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// Progress serializes progress callbacks coming from several workers.
type Progress struct {
	mu    sync.Mutex
	done  int
	total int
	fn    func(done, total int)
}

// NewProgress reports against total. A nil fn makes Step a no-op.
func NewProgress(total int, fn func(done, total int)) *Progress {
	return &Progress{total: total, fn: fn}
}

// Step records one finished item and invokes the callback.
func (p *Progress) Step() {
	if p == nil || p.fn == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done++
	p.fn(p.done, p.total)
}
