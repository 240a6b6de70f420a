package ratelimit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/strisk/go-reqproc/ratelimit"
)

// TestLimiter_Allow verifies the basic admission contract
// Given: A limiter allowing 2 requests per minute
// When: Three requests arrive back to back
// Then: The first two are admitted and the third is denied
func TestLimiter_Allow(t *testing.T) {
	l := ratelimit.New(2, time.Minute)

	if !l.Allow() {
		t.Fatal("first Allow() = false, want true")
	}
	if !l.Allow() {
		t.Fatal("second Allow() = false, want true")
	}
	if l.Allow() {
		t.Fatal("third Allow() = true, want false")
	}

	stats := l.Stats()
	if stats.InWindow != 2 {
		t.Errorf("InWindow = %d, want 2", stats.InWindow)
	}
}

// TestLimiter_WindowSlides verifies pruning with an injected clock
// Given: A limiter allowing 2 requests per second, saturated at t0
// When: The clock advances past the window
// Then: Admissions resume and the stale entries are gone
func TestLimiter_WindowSlides(t *testing.T) {
	now := time.Now()
	l := ratelimit.New(2, time.Second, ratelimit.WithClock(func() time.Time {
		return now
	}))

	l.Allow()
	l.Allow()
	if l.Allow() {
		t.Fatal("Allow() = true with a saturated window")
	}

	now = now.Add(1100 * time.Millisecond)

	if !l.Allow() {
		t.Fatal("Allow() = false after the window slid past both admissions")
	}
	if stats := l.Stats(); stats.InWindow != 1 {
		t.Errorf("InWindow = %d, want 1 after pruning", stats.InWindow)
	}
}

// TestLimiter_PartialExpiry verifies the trailing-window semantics: entries
// expire individually, not as a batch.
func TestLimiter_PartialExpiry(t *testing.T) {
	now := time.Now()
	l := ratelimit.New(2, time.Second, ratelimit.WithClock(func() time.Time {
		return now
	}))

	l.Allow()
	now = now.Add(600 * time.Millisecond)
	l.Allow()

	// 500ms later the first admission is stale, the second is not.
	now = now.Add(500 * time.Millisecond)
	if !l.Allow() {
		t.Fatal("Allow() = false, want true with one slot freed")
	}
	if l.Allow() {
		t.Fatal("Allow() = true, want false with the window full again")
	}
}

// TestLimiter_Wait verifies blocking admission
func TestLimiter_Wait(t *testing.T) {
	l := ratelimit.New(1, 50*time.Millisecond,
		ratelimit.WithPollInterval(5*time.Millisecond))

	l.Allow()

	start := time.Now()
	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("Wait() returned after %s, want at least ~window", elapsed)
	}
}

// TestLimiter_WaitCancelled verifies that Wait honors the context
func TestLimiter_WaitCancelled(t *testing.T) {
	l := ratelimit.New(1, time.Hour,
		ratelimit.WithPollInterval(5*time.Millisecond))
	l.Allow()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := l.Wait(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Wait() error = %v, want context.DeadlineExceeded", err)
	}
}

// TestLimiter_BadArgs verifies constructor validation
func TestLimiter_BadArgs(t *testing.T) {
	for name, fn := range map[string]func(){
		"zero max":    func() { ratelimit.New(0, time.Second) },
		"zero window": func() { ratelimit.New(1, 0) },
	} {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic, got none")
				}
			}()
			fn()
		})
	}
}
