package asyncx

import (
	"context"
	"sync"
)

// Result holds the outcome of a single settled async operation.
type Result[T any] struct {
	Value T
	Err   error
}

// OK reports whether the result carries no error.
func (r Result[T]) OK() bool { return r.Err == nil }

// Do fires fn in a goroutine and forgets it (fire-and-forget).
func Do(fn func()) {
	go fn()
}

// AllSettled runs all fns concurrently and waits for every one to finish.
// It never short-circuits: it always returns one Result per fn, in order.
func AllSettled[T any](ctx context.Context, fns ...func(context.Context) (T, error)) []Result[T] {
	results := make([]Result[T], len(fns))
	var wg sync.WaitGroup
	wg.Add(len(fns))

	for i, fn := range fns {
		i, fn := i, fn
		go func() {
			defer wg.Done()
			v, err := fn(ctx)
			results[i] = Result[T]{Value: v, Err: err}
		}()
	}
	wg.Wait()
	return results
}

// PoolSettled processes items using at most workers goroutines and returns
// one Result per item in the original order. Unlike a short-circuiting pool
// it always runs every item to completion; callers decide what a partial
// failure means.
//
// Use this when the number of items is unbounded and full concurrency would
// be harmful (e.g. parallel uploads against a rate-limited backend).
func PoolSettled[T any, R any](
	ctx context.Context,
	workers int,
	items []T,
	fn func(context.Context, T) (R, error),
) []Result[R] {
	if workers <= 0 {
		workers = 1
	}

	type indexed struct {
		i    int
		item T
	}

	work := make(chan indexed, len(items))
	for i, item := range items {
		work <- indexed{i: i, item: item}
	}
	close(work)

	results := make([]Result[R], len(items))

	var wg sync.WaitGroup
	wg.Add(workers)

	for n := 0; n < workers; n++ {
		go func() {
			defer wg.Done()
			for w := range work {
				select {
				case <-ctx.Done():
					results[w.i] = Result[R]{Err: ctx.Err()}
				default:
					v, err := fn(ctx, w.item)
					results[w.i] = Result[R]{Value: v, Err: err}
				}
			}
		}()
	}
	wg.Wait()

	return results
}
