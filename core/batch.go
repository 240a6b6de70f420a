package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

const (
	defaultBatchName = "batch_processor"

	// DefaultBatchTimeout is the per-batch deadline when none is configured.
	DefaultBatchTimeout = 5 * time.Minute
)

// BatchProcessor splits an item slice into fixed-size batches and processes
// them one batch at a time. Items within a batch run concurrently, bounded
// by the configured limit; batches never overlap each other.
//
// Failure semantics:
//   - A per-item error is captured in that item's Result slot and does not
//     affect siblings.
//   - A batch missing its deadline fails the entire Process call with an
//     error wrapping context.DeadlineExceeded. Results of earlier batches
//     are discarded; the caller gets no partial data.
type BatchProcessor[T, R any] struct {
	batchSize int
	timeout   time.Duration
	slots     *slotPool
	cfg       componentConfig
}

// NewBatchProcessor creates a BatchProcessor. Panics if batchSize or
// maxConcurrent is below 1. The per-batch deadline defaults to
// DefaultBatchTimeout and can be changed with WithBatchTimeout.
func NewBatchProcessor[T, R any](batchSize, maxConcurrent int, opts ...Option) *BatchProcessor[T, R] {
	if batchSize < 1 {
		panic(fmt.Sprintf("BatchProcessor: batchSize must be at least 1, got %d", batchSize))
	}
	if maxConcurrent < 1 {
		panic(fmt.Sprintf("BatchProcessor: maxConcurrent must be at least 1, got %d", maxConcurrent))
	}

	cfg := defaultComponentConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &BatchProcessor[T, R]{
		batchSize: batchSize,
		timeout:   cfg.batchTimeout,
		slots:     newSlotPool(maxConcurrent),
		cfg:       cfg,
	}
}

// BatchSize returns the configured batch size.
func (p *BatchProcessor[T, R]) BatchSize() int {
	return p.batchSize
}

// MaxConcurrent returns the per-batch concurrency limit.
func (p *BatchProcessor[T, R]) MaxConcurrent() int {
	return p.slots.capacity()
}

// Timeout returns the per-batch deadline.
func (p *BatchProcessor[T, R]) Timeout() time.Duration {
	return p.timeout
}

// Process runs fn over every item. On success the returned slice has exactly
// one Result per input item, in input order. On a batch timeout (or a
// cancelled ctx) it returns nil and the corresponding error.
func (p *BatchProcessor[T, R]) Process(ctx context.Context, items []T, fn ProcessorFunc[T, R]) ([]Result[R], error) {
	if len(items) == 0 {
		return nil, nil
	}

	batches := partition(items, p.batchSize)
	p.cfg.logger.Info("processing items",
		F("processor", p.name()), F("items", len(items)), F("batches", len(batches)))

	results := make([]Result[R], 0, len(items))
	for i, batch := range batches {
		batchResults, err := p.processBatch(ctx, batch, fn)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				p.cfg.metrics.RecordTimeout(p.name())
				p.cfg.logger.Error("batch timed out",
					F("processor", p.name()), F("batch", i+1), F("timeout", p.timeout))
				return nil, fmt.Errorf("batch %d/%d timed out after %s: %w",
					i+1, len(batches), p.timeout, context.DeadlineExceeded)
			}
			return nil, err
		}
		results = append(results, batchResults...)
		p.cfg.logger.Debug("batch completed", F("batch", i+1), F("of", len(batches)))
	}

	return results, nil
}

// processBatch runs one batch under the semaphore with a fresh deadline.
func (p *BatchProcessor[T, R]) processBatch(ctx context.Context, batch []T, fn ProcessorFunc[T, R]) ([]Result[R], error) {
	batchCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	results := make([]Result[R], len(batch))

	var wg sync.WaitGroup
	for i, item := range batch {
		wg.Add(1)
		go func(i int, item T) {
			defer wg.Done()

			release, ok := p.slots.acquire(batchCtx)
			if !ok {
				results[i] = Result[R]{Err: batchCtx.Err()}
				return
			}
			defer release()

			p.cfg.metrics.RecordInFlight(p.name(), p.slots.inUse())

			start := time.Now()
			value, err := fn(batchCtx, item)
			p.cfg.metrics.RecordTaskDuration(p.name(), time.Since(start))
			if err != nil {
				p.cfg.metrics.RecordTaskFailure(p.name())
			}

			results[i] = Result[R]{Value: value, Err: err}
		}(i, item)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return results, nil
	case <-batchCtx.Done():
		// In-flight items are abandoned; their goroutines drain on their own
		// once fn observes the cancelled context.
		return nil, batchCtx.Err()
	}
}

// partition splits items into consecutive slices of at most size elements.
func partition[T any](items []T, size int) [][]T {
	batches := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		batches = append(batches, items[start:end])
	}
	return batches
}

func (p *BatchProcessor[T, R]) name() string {
	return p.cfg.componentName(defaultBatchName)
}
