// Package batch runs a set of independent items with bounded concurrency
// and collects a per-item outcome. One failing item never aborts the rest;
// cancelling the context stops new items from starting but keeps the
// results of items that already ran.
package batch

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Result is the outcome of a single item, in input order.
type Result[O any] struct {
	Index int
	Value O
	Err   error
}

// Run applies fn to every item, at most limit at a time (limit <= 0 means
// unbounded). Results are positional: results[i] belongs to items[i].
func Run[I, O any](ctx context.Context, limit int, items []I, fn func(ctx context.Context, index int, item I) (O, error)) []Result[O] {
	results := make([]Result[O], len(items))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, item := range items {
		// Stop issuing new work once the caller cancelled. Items not yet
		// started are reported with the cancellation error; items already
		// running finish and keep their result.
		if err := ctx.Err(); err != nil {
			results[i] = Result[O]{Index: i, Err: err}
			continue
		}

		i, item := i, item
		g.Go(func() error {
			v, err := fn(ctx, i, item)
			results[i] = Result[O]{Index: i, Value: v, Err: err}
			return nil
		})
	}

	_ = g.Wait()
	return results
}
