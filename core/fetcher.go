package core

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const defaultFetcherName = "fetcher"

// Fetcher fans out independent fetch functions with bounded concurrency.
//
// Fetch failures are deliberately lossy: a failing function yields the zero
// value in its slot, the error is logged and counted, and nothing propagates
// to the caller. Callers cannot distinguish "fetched a zero value" from
// "fetch failed"; use pointer or wrapper result types when that distinction
// matters.
type Fetcher[R any] struct {
	slots *slotPool
	cfg   componentConfig
}

// NewFetcher creates a Fetcher running at most maxConcurrent fetches at
// once. Panics if maxConcurrent < 1.
func NewFetcher[R any](maxConcurrent int, opts ...Option) *Fetcher[R] {
	if maxConcurrent < 1 {
		panic(fmt.Sprintf("Fetcher: maxConcurrent must be at least 1, got %d", maxConcurrent))
	}

	cfg := defaultComponentConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Fetcher[R]{
		slots: newSlotPool(maxConcurrent),
		cfg:   cfg,
	}
}

// MaxConcurrent returns the concurrency limit.
func (f *Fetcher[R]) MaxConcurrent() int {
	return f.slots.capacity()
}

// FetchMultiple runs every fetch function concurrently under the limit and
// returns one value per function, in input order. Slots of failed or
// skipped fetches hold the zero value.
func (f *Fetcher[R]) FetchMultiple(ctx context.Context, fns []FetchFunc[R]) []R {
	out := make([]R, len(fns))

	var wg sync.WaitGroup
	for i, fn := range fns {
		wg.Add(1)
		go func(i int, fn FetchFunc[R]) {
			defer wg.Done()

			release, ok := f.slots.acquire(ctx)
			if !ok {
				f.cfg.logger.Warn("fetch skipped",
					F("fetcher", f.name()), F("index", i), F("error", ctx.Err()))
				return
			}
			defer release()

			start := time.Now()
			value, err := fn(ctx)
			f.cfg.metrics.RecordTaskDuration(f.name(), time.Since(start))

			if err != nil {
				f.cfg.metrics.RecordTaskFailure(f.name())
				f.cfg.logger.Error("fetch failed",
					F("fetcher", f.name()), F("index", i), F("error", err))
				return
			}
			out[i] = value
		}(i, fn)
	}
	wg.Wait()

	return out
}

func (f *Fetcher[R]) name() string {
	return f.cfg.componentName(defaultFetcherName)
}
