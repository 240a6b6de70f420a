package core

import "context"

// Task is the unit of deferred work: it runs when a component schedules it
// and resolves to a value or an error.
type Task[R any] func(ctx context.Context) (R, error)

// ProcessorFunc transforms a single item. BatchProcessor invokes it once per
// item, possibly concurrently with other items of the same batch.
type ProcessorFunc[T, R any] func(ctx context.Context, item T) (R, error)

// FetchFunc produces a value from an external source.
type FetchFunc[R any] func(ctx context.Context) (R, error)

// Result is the captured outcome of one task: either a value or the error
// the task returned. Capturing errors as values lets sibling tasks finish
// even when one of them fails.
type Result[R any] struct {
	Value R
	Err   error
}

// Failed reports whether the task resolved to an error.
func (r Result[R]) Failed() bool {
	return r.Err != nil
}

// Values unwraps a result slice, substituting the zero value for failed
// slots. Use it when per-item errors have already been inspected or do not
// matter.
func Values[R any](results []Result[R]) []R {
	out := make([]R, len(results))
	for i, r := range results {
		if r.Err == nil {
			out[i] = r.Value
		}
	}
	return out
}
