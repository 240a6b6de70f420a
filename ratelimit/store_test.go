package ratelimit_test

import (
	"testing"
	"time"

	"github.com/strisk/go-reqproc/ratelimit"
)

// TestStore_PerKeyIsolation verifies that keys carry independent budgets
// Given: A store admitting 1 rps with burst 1
// When: Two distinct keys each make a request
// Then: Both are admitted, and a second request on either key is denied
func TestStore_PerKeyIsolation(t *testing.T) {
	s := ratelimit.NewStore(1, 1)

	if !s.Allow("client-a") {
		t.Fatal(`Allow("client-a") = false, want true`)
	}
	if !s.Allow("client-b") {
		t.Fatal(`Allow("client-b") = false, want true`)
	}
	if s.Allow("client-a") {
		t.Fatal(`second Allow("client-a") = true, want false`)
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
}

// TestStore_GetReusesLimiter verifies that the same key maps to one limiter
func TestStore_GetReusesLimiter(t *testing.T) {
	s := ratelimit.NewStore(10, 5)

	if s.Get("k") != s.Get("k") {
		t.Fatal("Get() returned distinct limiters for the same key")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

// TestStore_Cleanup verifies idle eviction
func TestStore_Cleanup(t *testing.T) {
	s := ratelimit.NewStore(10, 5, ratelimit.WithIdleTTL(10*time.Millisecond))

	s.Allow("stale")
	time.Sleep(25 * time.Millisecond)
	s.Allow("fresh")

	s.Cleanup()

	if s.Len() != 1 {
		t.Fatalf("Len() = %d after cleanup, want 1", s.Len())
	}
	if !s.Allow("fresh") {
		t.Error(`Allow("fresh") = false, want true (burst refilled by elapsed time)`)
	}
}
