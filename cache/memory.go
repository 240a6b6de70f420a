package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sync"
	"time"
)

// MemoryCache is an in-process Cache with per-entry expiry. Entries are
// stored as marshaled JSON so Get/Set round-trip exactly like RedisCache.
// Expired entries are dropped lazily on access and by Cleanup.
type MemoryCache struct {
	mu         sync.Mutex
	entries    map[string]memoryEntry
	defaultTTL time.Duration
	now        func() time.Time
}

type memoryEntry struct {
	data    []byte
	expires time.Time
}

// MemoryOption configures a MemoryCache.
type MemoryOption func(*MemoryCache)

// WithMemoryDefaultTTL sets the TTL used when Set receives a zero TTL.
func WithMemoryDefaultTTL(d time.Duration) MemoryOption {
	return func(c *MemoryCache) {
		if d > 0 {
			c.defaultTTL = d
		}
	}
}

// WithMemoryClock replaces the time source, for tests.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(c *MemoryCache) {
		if now != nil {
			c.now = now
		}
	}
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	c := &MemoryCache{
		entries:    make(map[string]memoryEntry),
		defaultTTL: DefaultTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *MemoryCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	ent, ok := c.entries[key]
	if ok && c.now().After(ent.expires) {
		delete(c.entries, key)
		ok = false
	}
	c.mu.Unlock()

	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(ent.data, dest); err != nil {
		return false, nil
	}
	return true, nil
}

func (c *MemoryCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: marshal %q: %w", key, err)
	}

	c.mu.Lock()
	c.entries[key] = memoryEntry{data: data, expires: c.now().Add(ttl)}
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) DeletePattern(ctx context.Context, pattern string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		matched, err := path.Match(pattern, key)
		if err != nil {
			return removed, fmt.Errorf("cache: bad pattern %q: %w", pattern, err)
		}
		if matched {
			delete(c.entries, key)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of entries, including not-yet-collected expired
// ones.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Cleanup drops expired entries.
func (c *MemoryCache) Cleanup() {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	for key, ent := range c.entries {
		if now.After(ent.expires) {
			delete(c.entries, key)
		}
	}
}

// StartJanitor runs Cleanup every interval until ctx ends.
func (c *MemoryCache) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.Cleanup()
			}
		}
	}()
}

var _ Cache = (*MemoryCache)(nil)
