package core

import (
	"context"
	"slices"
	"sync"
	"time"
)

// DefaultSampleCapacity bounds the latency sample window of RequestMetrics.
const DefaultSampleCapacity = 10240

// RequestStats is a summary of tracked requests. Percentiles are computed
// over the retained sample window; counters and AvgTime cover the full
// process lifetime.
type RequestStats struct {
	TotalRequests int64
	Completed     int64
	Failed        int64
	SuccessRate   float64
	Samples       int
	AvgTime       time.Duration
	MedianTime    time.Duration
	P95Time       time.Duration
	P99Time       time.Duration
}

// RequestMetrics tracks request outcomes and latency. Latency samples live
// in a fixed-capacity ring buffer so memory stays bounded no matter how long
// the process runs; once the ring is full, each new sample evicts the oldest
// one. Lifetime counters and cumulative time remain exact.
type RequestMetrics struct {
	mu        sync.Mutex
	total     int64
	completed int64
	failed    int64
	totalTime time.Duration

	samples []time.Duration
	head    int
	count   int
}

// NewRequestMetrics creates a RequestMetrics. The sample window defaults to
// DefaultSampleCapacity and can be changed with WithSampleCapacity.
func NewRequestMetrics(opts ...Option) *RequestMetrics {
	cfg := defaultComponentConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &RequestMetrics{
		samples: make([]time.Duration, cfg.sampleCapacity),
	}
}

// Track executes op, records its outcome and elapsed wall-clock time, and
// returns op's error unchanged. Elapsed time is recorded for failures too.
func (m *RequestMetrics) Track(ctx context.Context, op func(ctx context.Context) error) error {
	m.mu.Lock()
	m.total++
	m.mu.Unlock()

	start := time.Now()
	err := op(ctx)
	elapsed := time.Since(start)

	m.mu.Lock()
	m.totalTime += elapsed
	m.record(elapsed)
	if err != nil {
		m.failed++
	} else {
		m.completed++
	}
	m.mu.Unlock()

	return err
}

// TrackResult is the generic variant of RequestMetrics.Track for operations
// that produce a value.
func TrackResult[R any](m *RequestMetrics, ctx context.Context, task Task[R]) (R, error) {
	var value R
	err := m.Track(ctx, func(ctx context.Context) error {
		v, err := task(ctx)
		if err != nil {
			return err
		}
		value = v
		return nil
	})
	return value, err
}

// Stats returns the current summary. The second return value is false when
// no request has been tracked yet.
func (m *RequestMetrics) Stats() (RequestStats, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.count == 0 {
		return RequestStats{}, false
	}

	sorted := make([]time.Duration, m.count)
	for i := range m.count {
		sorted[i] = m.samples[(m.head-m.count+i+len(m.samples))%len(m.samples)]
	}
	slices.Sort(sorted)

	stats := RequestStats{
		TotalRequests: m.total,
		Completed:     m.completed,
		Failed:        m.failed,
		Samples:       m.count,
		AvgTime:       m.totalTime / time.Duration(m.total),
		MedianTime:    sorted[len(sorted)/2],
		P95Time:       percentile(sorted, 0.95),
		P99Time:       percentile(sorted, 0.99),
	}
	if m.total > 0 {
		stats.SuccessRate = float64(m.completed) / float64(m.total)
	}

	return stats, true
}

// record appends a sample to the ring. Caller must hold mu.
func (m *RequestMetrics) record(elapsed time.Duration) {
	m.samples[m.head] = elapsed
	m.head = (m.head + 1) % len(m.samples)
	if m.count < len(m.samples) {
		m.count++
	}
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	idx := int(float64(len(sorted)) * p)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
