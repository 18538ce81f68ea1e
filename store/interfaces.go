package store

import (
	"context"
	"time"
)

// Store is a thin client for an external key/value store with atomic
// counters and key expiry. Implementations must be thread-safe and must
// apply a short per-operation timeout.
type Store interface {
	// Get retrieves the string value at key.
	// Returns ErrNotFound if the key does not exist.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value at key. A positive ttl sets the key's expiry;
	// zero stores the key without expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Incr atomically increments the integer counter at key and returns
	// the post-increment value. A missing key counts from zero.
	Incr(ctx context.Context, key string) (int64, error)

	// IncrByFloat atomically adds delta to the float counter at key and
	// returns the post-increment value. A missing key counts from zero.
	IncrByFloat(ctx context.Context, key string, delta float64) (float64, error)

	// Expire sets the remaining lifetime of key.
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// TTL reports the remaining lifetime of key. A negative duration means
	// the key has no expiry or does not exist.
	TTL(ctx context.Context, key string) (time.Duration, error)

	// CountKeys reports the number of keys matching a glob pattern.
	// Intended for status reporting only.
	CountKeys(ctx context.Context, pattern string) (int, error)

	// Ping verifies connectivity to the store.
	Ping(ctx context.Context) error

	// Close releases the client's resources.
	Close() error
}
