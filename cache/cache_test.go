package cache_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/strisk/go-reqproc/cache"
)

type riskScore struct {
	Region string  `json:"region"`
	Score  float64 `json:"score"`
}

// TestMemoryCache_RoundTrip verifies the basic set/get contract
// Given: An empty in-memory cache
// When: A struct is stored and read back
// Then: The value round-trips through JSON unchanged
func TestMemoryCache_RoundTrip(t *testing.T) {
	c := cache.NewMemoryCache()
	ctx := context.Background()
	want := riskScore{Region: "eu-west", Score: 0.73}

	if err := c.Set(ctx, "risk:eu-west", want, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var got riskScore
	hit, err := c.Get(ctx, "risk:eu-west", &got)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !hit {
		t.Fatal("Get() hit = false, want true")
	}
	if got != want {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}
}

// TestMemoryCache_Miss verifies that a missing key is not an error
func TestMemoryCache_Miss(t *testing.T) {
	c := cache.NewMemoryCache()

	var got riskScore
	hit, err := c.Get(context.Background(), "absent", &got)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if hit {
		t.Fatal("Get() hit = true for an absent key")
	}
}

// TestMemoryCache_Expiry verifies TTL handling with an injected clock
// Given: An entry stored with a 1-minute TTL
// When: The clock advances past the TTL
// Then: Get misses, and Cleanup drops the dead entry
func TestMemoryCache_Expiry(t *testing.T) {
	now := time.Now()
	c := cache.NewMemoryCache(cache.WithMemoryClock(func() time.Time {
		return now
	}))
	ctx := context.Background()

	c.Set(ctx, "k", riskScore{Score: 1}, time.Minute)

	now = now.Add(2 * time.Minute)

	var got riskScore
	if hit, _ := c.Get(ctx, "k", &got); hit {
		t.Fatal("Get() hit = true after expiry")
	}

	c.Set(ctx, "other", riskScore{Score: 2}, time.Hour)
	c.Cleanup()
	if c.Len() != 1 {
		t.Errorf("Len() = %d after cleanup, want 1", c.Len())
	}
}

// TestMemoryCache_DefaultTTL verifies that a zero TTL falls back to the
// configured default.
func TestMemoryCache_DefaultTTL(t *testing.T) {
	now := time.Now()
	c := cache.NewMemoryCache(
		cache.WithMemoryDefaultTTL(time.Minute),
		cache.WithMemoryClock(func() time.Time { return now }),
	)
	ctx := context.Background()

	c.Set(ctx, "k", 42, 0)

	now = now.Add(30 * time.Second)
	var got int
	if hit, _ := c.Get(ctx, "k", &got); !hit {
		t.Fatal("Get() hit = false inside the default TTL")
	}

	now = now.Add(time.Minute)
	if hit, _ := c.Get(ctx, "k", &got); hit {
		t.Fatal("Get() hit = true past the default TTL")
	}
}

// TestMemoryCache_DeletePattern verifies glob invalidation
func TestMemoryCache_DeletePattern(t *testing.T) {
	c := cache.NewMemoryCache()
	ctx := context.Background()

	c.Set(ctx, "risk:eu-west", 1, time.Hour)
	c.Set(ctx, "risk:us-east", 2, time.Hour)
	c.Set(ctx, "weather:eu-west", 3, time.Hour)

	removed, err := c.DeletePattern(ctx, "risk:*")
	if err != nil {
		t.Fatalf("DeletePattern() error = %v", err)
	}
	if removed != 2 {
		t.Errorf("DeletePattern() removed = %d, want 2", removed)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

// TestKey verifies the deterministic key scheme
func TestKey(t *testing.T) {
	a := cache.Key("risk", "assess", "eu-west", 48.85, 2.35)
	b := cache.Key("risk", "assess", "eu-west", 48.85, 2.35)
	if a != b {
		t.Errorf("Key() not deterministic: %q vs %q", a, b)
	}
	if !strings.HasPrefix(a, "risk:assess:") {
		t.Errorf("Key() = %q, want risk:assess: prefix", a)
	}

	if a == cache.Key("risk", "assess", "us-east", 48.85, 2.35) {
		t.Error("Key() collides across different arguments")
	}
	if a == cache.Key("risk", "forecast", "eu-west", 48.85, 2.35) {
		t.Error("Key() collides across different operations")
	}
}
