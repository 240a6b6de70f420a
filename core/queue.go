package core

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const defaultQueueName = "task_queue"

// QueueStats is a point-in-time snapshot of a TaskQueue.
type QueueStats struct {
	MaxConcurrent int
	InFlight      int
	Completed     int64
	Failed        int64
	SuccessRate   float64
}

// TaskQueue executes tasks under a fixed concurrency limit and counts
// outcomes. Counters are monotonically non-decreasing for the lifetime of
// the queue; there is no reset.
//
// Error policy: a task's error always goes to whoever asked for that task.
// Run returns it directly; RunAll captures it in the task's Result slot so
// sibling tasks are unaffected. Counters behave identically on both paths.
type TaskQueue[R any] struct {
	slots     *slotPool
	completed atomic.Int64
	failed    atomic.Int64
	cfg       componentConfig
}

// NewTaskQueue creates a TaskQueue allowing at most maxConcurrent tasks to
// execute simultaneously. Panics if maxConcurrent < 1.
func NewTaskQueue[R any](maxConcurrent int, opts ...Option) *TaskQueue[R] {
	if maxConcurrent < 1 {
		panic(fmt.Sprintf("TaskQueue: maxConcurrent must be at least 1, got %d", maxConcurrent))
	}

	cfg := defaultComponentConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &TaskQueue[R]{
		slots: newSlotPool(maxConcurrent),
		cfg:   cfg,
	}
}

// MaxConcurrent returns the concurrency limit.
func (q *TaskQueue[R]) MaxConcurrent() int {
	return q.slots.capacity()
}

// Run executes one task as soon as a slot is free and returns its outcome.
// If ctx ends before a slot is acquired, the task never runs, no counter is
// touched, and the context error is returned.
func (q *TaskQueue[R]) Run(ctx context.Context, task Task[R]) (R, error) {
	var zero R

	release, ok := q.slots.acquire(ctx)
	if !ok {
		return zero, fmt.Errorf("task queue %q: %w", q.name(), ctx.Err())
	}
	defer release()

	q.cfg.metrics.RecordInFlight(q.name(), q.slots.inUse())

	start := time.Now()
	value, err := task(ctx)
	q.cfg.metrics.RecordTaskDuration(q.name(), time.Since(start))

	if err != nil {
		q.failed.Add(1)
		q.cfg.metrics.RecordTaskFailure(q.name())
		q.cfg.logger.Error("task failed", F("queue", q.name()), F("error", err))
		return zero, err
	}

	q.completed.Add(1)
	return value, nil
}

// RunAll executes every task concurrently, bounded by the queue's limit, and
// collects all outcomes. The result at index i belongs to tasks[i]; errors
// are captured in their slot and never abort siblings.
func (q *TaskQueue[R]) RunAll(ctx context.Context, tasks []Task[R]) []Result[R] {
	results := make([]Result[R], len(tasks))

	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task Task[R]) {
			defer wg.Done()
			value, err := q.Run(ctx, task)
			results[i] = Result[R]{Value: value, Err: err}
		}(i, task)
	}
	wg.Wait()

	return results
}

// Stats returns current counters. SuccessRate is 0 when nothing has finished
// yet.
func (q *TaskQueue[R]) Stats() QueueStats {
	completed := q.completed.Load()
	failed := q.failed.Load()

	var rate float64
	if total := completed + failed; total > 0 {
		rate = float64(completed) / float64(total)
	}

	return QueueStats{
		MaxConcurrent: q.slots.capacity(),
		InFlight:      q.slots.inUse(),
		Completed:     completed,
		Failed:        failed,
		SuccessRate:   rate,
	}
}

func (q *TaskQueue[R]) name() string {
	return q.cfg.componentName(defaultQueueName)
}
