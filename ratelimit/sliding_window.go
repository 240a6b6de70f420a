package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DefaultPollInterval is how often Wait retries admission.
const DefaultPollInterval = 100 * time.Millisecond

// Stats is a point-in-time snapshot of a Limiter.
type Stats struct {
	MaxRequests int
	Window      time.Duration
	InWindow    int
}

// Limiter admits at most maxRequests callers inside any trailing window.
// Admission timestamps are kept in order and pruned on every check, so the
// recorded sequence never exceeds maxRequests entries after a successful
// admission.
type Limiter struct {
	mu           sync.Mutex
	maxRequests  int
	window       time.Duration
	pollInterval time.Duration
	admissions   []time.Time
	now          func() time.Time
}

// LimiterOption configures a Limiter.
type LimiterOption func(*Limiter)

// WithPollInterval sets the retry interval used by Wait.
func WithPollInterval(d time.Duration) LimiterOption {
	return func(l *Limiter) {
		if d > 0 {
			l.pollInterval = d
		}
	}
}

// WithClock replaces the time source, for tests.
func WithClock(now func() time.Time) LimiterOption {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// New creates a sliding-window Limiter. Panics if maxRequests < 1 or
// window <= 0.
func New(maxRequests int, window time.Duration, opts ...LimiterOption) *Limiter {
	if maxRequests < 1 {
		panic(fmt.Sprintf("ratelimit: maxRequests must be at least 1, got %d", maxRequests))
	}
	if window <= 0 {
		panic(fmt.Sprintf("ratelimit: window must be positive, got %s", window))
	}

	l := &Limiter{
		maxRequests:  maxRequests,
		window:       window,
		pollInterval: DefaultPollInterval,
		admissions:   make([]time.Time, 0, maxRequests),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow reports whether the caller is admitted right now. Admission records
// the current timestamp; denial records nothing. Entries older than the
// window are pruned on every call.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.pruneLocked(now)

	if len(l.admissions) < l.maxRequests {
		l.admissions = append(l.admissions, now)
		return true
	}
	return false
}

// Wait polls Allow until admitted or ctx ends. There is no queueing and no
// fairness guarantee: a caller can starve if the window never has room when
// its poll fires.
func (l *Limiter) Wait(ctx context.Context) error {
	if l.Allow() {
		return nil
	}

	ticker := time.NewTicker(l.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("ratelimit: %w", ctx.Err())
		case <-ticker.C:
			if l.Allow() {
				return nil
			}
		}
	}
}

// Stats returns the current in-window admission count and configuration.
func (l *Limiter) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.pruneLocked(l.now())
	return Stats{
		MaxRequests: l.maxRequests,
		Window:      l.window,
		InWindow:    len(l.admissions),
	}
}

// pruneLocked drops admissions older than the window. Caller must hold mu.
// Admissions are ordered, so the first fresh entry bounds the stale prefix.
func (l *Limiter) pruneLocked(now time.Time) {
	cutoff := now.Add(-l.window)

	stale := 0
	for stale < len(l.admissions) && !l.admissions[stale].After(cutoff) {
		stale++
	}
	if stale > 0 {
		l.admissions = append(l.admissions[:0], l.admissions[stale:]...)
	}
}
