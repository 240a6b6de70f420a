package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/strisk/go-reqproc/core"
)

// RedisCache implements Cache on a Redis backend. Values are stored as JSON.
type RedisCache struct {
	rdb        *redis.Client
	defaultTTL time.Duration
	logger     core.Logger
}

// RedisOption configures a RedisCache.
type RedisOption func(*RedisCache)

// WithDefaultTTL sets the TTL used when Set receives a zero TTL.
func WithDefaultTTL(d time.Duration) RedisOption {
	return func(c *RedisCache) {
		if d > 0 {
			c.defaultTTL = d
		}
	}
}

// WithRedisLogger sets the logger for degraded-mode warnings.
func WithRedisLogger(l core.Logger) RedisOption {
	return func(c *RedisCache) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewRedisCache wraps an existing Redis client. The client's lifecycle stays
// with the caller.
func NewRedisCache(rdb *redis.Client, opts ...RedisOption) *RedisCache {
	c := &RedisCache{
		rdb:        rdb,
		defaultTTL: DefaultTTL,
		logger:     core.NewNoOpLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ping verifies connectivity.
func (c *RedisCache) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache: redis ping: %w", err)
	}
	return nil
}

// Get fetches and unmarshals key into dest. Backend errors are logged and
// reported as a miss alongside the error, so callers can treat any failure
// as "not cached".
func (c *RedisCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		c.logger.Warn("cache get failed", core.F("key", key), core.F("error", err))
		return false, fmt.Errorf("cache: get %q: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		// A corrupt entry behaves like a miss; drop it so it is not read again.
		c.logger.Warn("cache entry corrupt, evicting", core.F("key", key), core.F("error", err))
		c.rdb.Del(ctx, key)
		return false, nil
	}
	return true, nil
}

// Set stores value under key with the given TTL (or the default for zero).
func (c *RedisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: marshal %q: %w", key, err)
	}

	if err := c.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		c.logger.Warn("cache set failed", core.F("key", key), core.F("error", err))
		return fmt.Errorf("cache: set %q: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("cache: delete %q: %w", key, err)
	}
	return nil
}

// DeletePattern removes all keys matching pattern using SCAN, which keeps
// Redis responsive on large keyspaces (KEYS would block).
func (c *RedisCache) DeletePattern(ctx context.Context, pattern string) (int, error) {
	var removed int

	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return removed, fmt.Errorf("cache: delete %q: %w", iter.Val(), err)
		}
		removed++
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("cache: scan %q: %w", pattern, err)
	}

	if removed > 0 {
		c.logger.Info("cleared cache keys", core.F("pattern", pattern), core.F("count", removed))
	}
	return removed, nil
}

var _ Cache = (*RedisCache)(nil)
