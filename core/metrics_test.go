package core_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/strisk/go-reqproc/core"
)

// TestRequestMetrics_EmptyStats verifies the no-samples contract
func TestRequestMetrics_EmptyStats(t *testing.T) {
	m := core.NewRequestMetrics()

	if _, ok := m.Stats(); ok {
		t.Fatal("Stats() ok = true, want false before any request")
	}
}

// TestRequestMetrics_Track verifies bookkeeping on success and failure
// Given: One succeeding and one failing operation
// When: Track runs both
// Then: Counters split 1/1, errors propagate unchanged, both latencies count
func TestRequestMetrics_Track(t *testing.T) {
	m := core.NewRequestMetrics()
	boom := errors.New("boom")

	if err := m.Track(context.Background(), func(ctx context.Context) error {
		return nil
	}); err != nil {
		t.Fatalf("Track() error = %v", err)
	}

	err := m.Track(context.Background(), func(ctx context.Context) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Track() error = %v, want %v", err, boom)
	}

	stats, ok := m.Stats()
	if !ok {
		t.Fatal("Stats() ok = false, want true")
	}
	if stats.TotalRequests != 2 || stats.Completed != 1 || stats.Failed != 1 {
		t.Errorf("counters = %d/%d/%d, want 2/1/1",
			stats.TotalRequests, stats.Completed, stats.Failed)
	}
	if stats.Samples != 2 {
		t.Errorf("Samples = %d, want 2 (failures record latency too)", stats.Samples)
	}
	if stats.SuccessRate != 0.5 {
		t.Errorf("SuccessRate = %v, want 0.5", stats.SuccessRate)
	}
}

// TestRequestMetrics_TrackResult verifies the generic variant
func TestRequestMetrics_TrackResult(t *testing.T) {
	m := core.NewRequestMetrics()

	got, err := core.TrackResult(m, context.Background(), func(ctx context.Context) (int, error) {
		return 7, nil
	})
	if err != nil {
		t.Fatalf("TrackResult() error = %v", err)
	}
	if got != 7 {
		t.Errorf("TrackResult() = %d, want 7", got)
	}
}

// TestRequestMetrics_Percentiles verifies the summary ordering. Exact
// latencies are not asserted, only the structural invariants between them.
func TestRequestMetrics_Percentiles(t *testing.T) {
	m := core.NewRequestMetrics()

	for range 20 {
		if err := m.Track(context.Background(), func(ctx context.Context) error {
			time.Sleep(time.Millisecond)
			return nil
		}); err != nil {
			t.Fatalf("Track() error = %v", err)
		}
	}

	stats, ok := m.Stats()
	if !ok {
		t.Fatal("Stats() ok = false, want true")
	}
	if stats.MedianTime <= 0 {
		t.Errorf("MedianTime = %v, want > 0", stats.MedianTime)
	}
	if stats.P95Time < stats.MedianTime {
		t.Errorf("P95Time = %v < MedianTime = %v", stats.P95Time, stats.MedianTime)
	}
	if stats.P99Time < stats.P95Time {
		t.Errorf("P99Time = %v < P95Time = %v", stats.P99Time, stats.P95Time)
	}
	if stats.AvgTime <= 0 {
		t.Errorf("AvgTime = %v, want > 0", stats.AvgTime)
	}
}

// TestRequestMetrics_SampleWindowBounded verifies the ring buffer contract
// Given: A metrics tracker with capacity 8
// When: 50 requests are tracked
// Then: Lifetime counters keep counting while the sample window stays at 8
func TestRequestMetrics_SampleWindowBounded(t *testing.T) {
	m := core.NewRequestMetrics(core.WithSampleCapacity(8))

	for range 50 {
		m.Track(context.Background(), func(ctx context.Context) error { return nil })
	}

	stats, ok := m.Stats()
	if !ok {
		t.Fatal("Stats() ok = false, want true")
	}
	if stats.TotalRequests != 50 {
		t.Errorf("TotalRequests = %d, want 50", stats.TotalRequests)
	}
	if stats.Samples != 8 {
		t.Errorf("Samples = %d, want 8 (window bounded)", stats.Samples)
	}
}
