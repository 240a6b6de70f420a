package core_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/strisk/go-reqproc/core"
)

// TestFetcher_FetchMultiple verifies order preservation
// Given: Three fetch functions
// When: FetchMultiple runs them
// Then: Each value lands in its input slot
func TestFetcher_FetchMultiple(t *testing.T) {
	fetcher := core.NewFetcher[string](5)

	fns := []core.FetchFunc[string]{
		func(ctx context.Context) (string, error) { return "metrics", nil },
		func(ctx context.Context) (string, error) { return "events", nil },
		func(ctx context.Context) (string, error) { return "alerts", nil },
	}

	got := fetcher.FetchMultiple(context.Background(), fns)

	want := []string{"metrics", "events", "alerts"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

// TestFetcher_FailureYieldsZeroValue verifies the lossy fan-out contract
// Given: A fetch function that fails
// When: FetchMultiple runs
// Then: Its slot holds the zero value, siblings are unaffected, no error
// surfaces
func TestFetcher_FailureYieldsZeroValue(t *testing.T) {
	fetcher := core.NewFetcher[string](5)

	fns := []core.FetchFunc[string]{
		func(ctx context.Context) (string, error) { return "ok", nil },
		func(ctx context.Context) (string, error) { return "ignored", errors.New("backend down") },
		func(ctx context.Context) (string, error) { return "also ok", nil },
	}

	got := fetcher.FetchMultiple(context.Background(), fns)

	if got[0] != "ok" || got[2] != "also ok" {
		t.Errorf("sibling slots = %q, %q, want untouched values", got[0], got[2])
	}
	if got[1] != "" {
		t.Errorf("failed slot = %q, want zero value", got[1])
	}
}

// TestFetcher_ConcurrencyBound verifies the semaphore
func TestFetcher_ConcurrencyBound(t *testing.T) {
	const limit = 2
	fetcher := core.NewFetcher[int](limit)

	var inFlight, peak atomic.Int32

	fns := make([]core.FetchFunc[int], 10)
	for i := range fns {
		fns[i] = func(ctx context.Context) (int, error) {
			cur := inFlight.Add(1)
			for {
				old := peak.Load()
				if cur <= old || peak.CompareAndSwap(old, cur) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			inFlight.Add(-1)
			return i, nil
		}
	}

	fetcher.FetchMultiple(context.Background(), fns)

	if got := peak.Load(); got > limit {
		t.Errorf("peak concurrency = %d, want <= %d", got, limit)
	}
}

// TestFetcher_CancelledContext verifies that remaining fetches are skipped
// once the context ends
func TestFetcher_CancelledContext(t *testing.T) {
	fetcher := core.NewFetcher[int](1)

	ctx, cancel := context.WithCancel(context.Background())

	fns := []core.FetchFunc[int]{
		func(ctx context.Context) (int, error) {
			cancel()
			time.Sleep(10 * time.Millisecond)
			return 1, nil
		},
		func(ctx context.Context) (int, error) { return 2, nil },
	}

	got := fetcher.FetchMultiple(ctx, fns)

	// One of the two slots lost the race for the single slot and was
	// skipped after cancellation; the fetcher still returns a full slice.
	if len(got) != 2 {
		t.Fatalf("len(got) = %d, want 2", len(got))
	}
}
