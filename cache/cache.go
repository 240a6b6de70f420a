package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// DefaultTTL applies when Set is called with a zero TTL.
const DefaultTTL = time.Hour

// Cache stores JSON-serializable values under string keys with a TTL.
type Cache interface {
	// Get unmarshals the cached value for key into dest. The boolean is
	// false on a miss (including expired or unreadable entries).
	Get(ctx context.Context, key string, dest any) (bool, error)

	// Set stores value under key. A zero ttl means the backend's default.
	Set(ctx context.Context, key string, value any, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// DeletePattern removes all keys matching a glob pattern (e.g. "risk:*")
	// and returns how many were removed.
	DeletePattern(ctx context.Context, pattern string) (int, error)
}

// Key builds a deterministic cache key from an operation name and its
// arguments: prefix:op:<hex digest>. Arguments are serialized as JSON, so
// two calls with equal arguments map to the same key.
func Key(prefix, op string, args ...any) string {
	h := sha256.New()
	h.Write([]byte(op))
	for _, arg := range args {
		// Encoding errors only occur for unsupported types; fold the type
		// name in so those still produce a stable key.
		data, err := json.Marshal(arg)
		if err != nil {
			data = []byte(fmt.Sprintf("%T", arg))
		}
		h.Write([]byte{0})
		h.Write(data)
	}

	digest := hex.EncodeToString(h.Sum(nil))[:16]
	if prefix == "" {
		return op + ":" + digest
	}
	return prefix + ":" + op + ":" + digest
}
