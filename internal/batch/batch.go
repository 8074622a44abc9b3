// Package batch runs work over a slice in fixed-width concurrent batches.
package batch

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultSize is the number of items processed concurrently per batch.
const DefaultSize = 20

// Reporter receives progress as batches complete. Implementations must be
// safe to call from the goroutine that runs Run.
type Reporter interface {
	Start(total int)
	Advance(n int)
	Finish()
}

// Run calls fn for every item, size items at a time. All items of a batch run
// concurrently; the next batch starts only after the whole batch has returned.
// Results keep the order of items.
//
// An error from fn cancels the remaining work in its batch and is returned;
// per-item failures that should not abort the run must be handled inside fn.
// Cancelling ctx stops Run between batches.
func Run[T, R any](ctx context.Context, items []T, size int, reporter Reporter, fn func(ctx context.Context, item T) (R, error)) ([]R, error) {
	if size <= 0 {
		size = DefaultSize
	}
	results := make([]R, len(items))

	if reporter != nil {
		reporter.Start(len(items))
		defer reporter.Finish()
	}

	for start := 0; start < len(items); start += size {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := min(start+size, len(items))

		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			g.Go(func() error {
				r, err := fn(gctx, items[i])
				if err != nil {
					return err
				}
				results[i] = r
				return nil
			})
		}
		// Barrier between batches
		if err := g.Wait(); err != nil {
			return nil, err
		}

		if reporter != nil {
			reporter.Advance(end - start)
		}
	}

	return results, nil
}
