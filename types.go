package reqproc

import (
	"context"

	"github.com/strisk/go-reqproc/core"
)

// Re-export commonly used types from core for convenience. Most programs
// only need to import the reqproc package.

// Task is the unit of deferred work.
type Task[R any] = core.Task[R]

// Result is the captured outcome of one task.
type Result[R any] = core.Result[R]

// ProcessorFunc transforms a single batch item.
type ProcessorFunc[T, R any] = core.ProcessorFunc[T, R]

// FetchFunc produces a value from an external source.
type FetchFunc[R any] = core.FetchFunc[R]

// TaskQueue runs tasks under a fixed concurrency limit.
type TaskQueue[R any] = core.TaskQueue[R]

// BatchProcessor processes item slices batch by batch.
type BatchProcessor[T, R any] = core.BatchProcessor[T, R]

// Fetcher fans out independent fetches with bounded concurrency.
type Fetcher[R any] = core.Fetcher[R]

// RequestMetrics tracks request outcomes and latency percentiles.
type RequestMetrics = core.RequestMetrics

// QueueStats is a snapshot of a TaskQueue.
type QueueStats = core.QueueStats

// RequestStats is a summary of tracked requests.
type RequestStats = core.RequestStats

// Logger is the structured logging interface used across the module.
type Logger = core.Logger

// Field is a key-value pair attached to a log message.
type Field = core.Field

// RetryPolicy defines retry behavior for IO operations.
type RetryPolicy = core.RetryPolicy

// Option configures a core component.
type Option = core.Option

// Constructors and option helpers, re-exported from core.
var (
	NewRequestMetrics = core.NewRequestMetrics
	NewDefaultLogger  = core.NewDefaultLogger
	NewNoOpLogger     = core.NewNoOpLogger
	F                 = core.F

	WithName           = core.WithName
	WithLogger         = core.WithLogger
	WithMetrics        = core.WithMetrics
	WithBatchTimeout   = core.WithBatchTimeout
	WithSampleCapacity = core.WithSampleCapacity

	DefaultRetryPolicy = core.DefaultRetryPolicy
	NoRetry            = core.NoRetry
)

// NewTaskQueue creates a TaskQueue allowing at most maxConcurrent tasks to
// execute simultaneously.
func NewTaskQueue[R any](maxConcurrent int, opts ...Option) *TaskQueue[R] {
	return core.NewTaskQueue[R](maxConcurrent, opts...)
}

// NewBatchProcessor creates a BatchProcessor with the given batch size and
// per-batch concurrency limit.
func NewBatchProcessor[T, R any](batchSize, maxConcurrent int, opts ...Option) *BatchProcessor[T, R] {
	return core.NewBatchProcessor[T, R](batchSize, maxConcurrent, opts...)
}

// NewFetcher creates a Fetcher running at most maxConcurrent fetches at
// once.
func NewFetcher[R any](maxConcurrent int, opts ...Option) *Fetcher[R] {
	return core.NewFetcher[R](maxConcurrent, opts...)
}

// TrackResult tracks one task's outcome and latency in m.
func TrackResult[R any](m *RequestMetrics, ctx context.Context, task Task[R]) (R, error) {
	return core.TrackResult(m, ctx, task)
}

// Values extracts the values from results, zero-valued where a task failed.
func Values[R any](results []Result[R]) []R {
	return core.Values(results)
}
