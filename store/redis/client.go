package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/poiesic/faqcore/store"
)

const defaultOpTimeout = 2 * time.Second

// Client implements store.Store against a Redis server.
// Every operation runs under a bounded timeout so a degraded server
// surfaces as an error instead of stalling the caller.
type Client struct {
	rdb       *goredis.Client
	opTimeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithOpTimeout sets the per-operation timeout.
// Default is 2 seconds.
func WithOpTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.opTimeout = d
		}
	}
}

// New creates a Redis-backed coordination store client from a Redis URL
// (e.g. "redis://localhost:6379/0").
//
// Returns store.Store interface to enforce abstraction.
func New(url string, opts ...Option) (store.Store, error) {
	parsed, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return NewFromOptions(parsed, opts...), nil
}

// NewFromOptions creates a client from prepared go-redis options.
// Used by tests that point the client at an in-process server.
func NewFromOptions(redisOpts *goredis.Options, opts ...Option) store.Store {
	c := &Client{
		rdb:       goredis.NewClient(redisOpts),
		opTimeout: defaultOpTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.opTimeout)
}

// Get retrieves the string value at key.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	tctx, cancel := c.withTimeout(ctx)
	defer cancel()

	val, err := c.rdb.Get(tctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", store.ErrNotFound
	}
	return val, err
}

// Set stores value at key with an optional expiry.
func (c *Client) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	tctx, cancel := c.withTimeout(ctx)
	defer cancel()

	return c.rdb.Set(tctx, key, value, ttl).Err()
}

// Incr atomically increments the counter at key.
func (c *Client) Incr(ctx context.Context, key string) (int64, error) {
	tctx, cancel := c.withTimeout(ctx)
	defer cancel()

	return c.rdb.Incr(tctx, key).Result()
}

// IncrByFloat atomically adds delta to the float counter at key.
func (c *Client) IncrByFloat(ctx context.Context, key string, delta float64) (float64, error) {
	tctx, cancel := c.withTimeout(ctx)
	defer cancel()

	return c.rdb.IncrByFloat(tctx, key, delta).Result()
}

// Expire sets the remaining lifetime of key.
func (c *Client) Expire(ctx context.Context, key string, ttl time.Duration) error {
	tctx, cancel := c.withTimeout(ctx)
	defer cancel()

	return c.rdb.Expire(tctx, key, ttl).Err()
}

// TTL reports the remaining lifetime of key. Redis reports -1 for a key
// without expiry and -2 for a missing key; both come back negative.
func (c *Client) TTL(ctx context.Context, key string) (time.Duration, error) {
	tctx, cancel := c.withTimeout(ctx)
	defer cancel()

	return c.rdb.TTL(tctx, key).Result()
}

// CountKeys reports the number of keys matching pattern.
func (c *Client) CountKeys(ctx context.Context, pattern string) (int, error) {
	tctx, cancel := c.withTimeout(ctx)
	defer cancel()

	keys, err := c.rdb.Keys(tctx, pattern).Result()
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

// Ping verifies connectivity to the server.
func (c *Client) Ping(ctx context.Context) error {
	tctx, cancel := c.withTimeout(ctx)
	defer cancel()

	return c.rdb.Ping(tctx).Err()
}

// Close releases the client's resources.
func (c *Client) Close() error {
	return c.rdb.Close()
}
