package embedding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/faqcore/ai"
	"github.com/poiesic/faqcore/core"
	"github.com/poiesic/faqcore/store"
)

const (
	keyPrefix        = "embedding-cache:"
	defaultTTL       = 24 * time.Hour
	defaultBatchSize = 100
)

// Cache is the fail-closed embedding cache. See the package documentation
// for the failure policy.
type Cache struct {
	store     store.Store
	embedder  ai.Embedder
	ttl       time.Duration
	batchSize int
	pool      *ants.Pool
	logger    *slog.Logger

	mu  sync.Mutex
	dim int // detected at first successful embedding, 0 until then
}

// Option configures a Cache.
type Option func(*Cache) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// WithTTL sets the cached vector lifetime.
// Default is 24 hours.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) error {
		if ttl > 0 {
			c.ttl = ttl
		}
		return nil
	}
}

// WithBatchSize sets the number of texts per provider call during batch
// embedding. Default is 100.
func WithBatchSize(size int) Option {
	return func(c *Cache) error {
		if size > 0 {
			c.batchSize = size
		}
		return nil
	}
}

// WithPoolSize sets the worker pool size for concurrent batch embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(c *Cache) error {
		if size < 1 {
			size = 1
		}

		if c.pool != nil {
			c.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		c.pool = pool
		return nil
	}
}

// NewCache creates an embedding cache. st may be nil when no coordination
// store is configured; every lookup then reports absent, which keeps the
// provider idle.
func NewCache(st store.Store, embedder ai.Embedder, opts ...Option) (*Cache, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	size := runtime.NumCPU() / 2
	if size < 1 {
		size = 1
	}
	pool, err := ants.NewPool(size)
	if err != nil {
		return nil, err
	}

	c := &Cache{
		store:     st,
		embedder:  embedder,
		ttl:       defaultTTL,
		batchSize: defaultBatchSize,
		pool:      pool,
		logger:    slog.Default().With("component", "embedding-cache"),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			pool.Release()
			return nil, err
		}
	}
	return c, nil
}

// Close releases the worker pool.
func (c *Cache) Close() error {
	c.pool.Release()
	return nil
}

// Dim returns the embedding dimension detected at the first successful
// embedding call, or 0 if none has happened yet.
func (c *Cache) Dim() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dim
}

// GetOrEmbed returns the embedding for text, from cache when possible.
// A (nil, nil) return means the embedding is unavailable right now; the
// caller must fall back to lexical-only behavior. That happens when no
// store is configured or the store is unreachable; in both cases the
// provider is NOT called, so spend cannot run away while the cache is
// unable to absorb repeat queries.
func (c *Cache) GetOrEmbed(ctx context.Context, text string) ([]float32, error) {
	if c.store == nil {
		c.logger.Warn("no coordination store, skipping embedding")
		return nil, nil
	}

	key := keyPrefix + core.CacheKey(text)
	payload, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		vec, decErr := DecodeVector(payload)
		if decErr == nil {
			return vec, nil
		}
		// Corrupt entry: the store is reachable, so re-embedding is safe.
		c.logger.Warn("discarding corrupt cached embedding", "key", key, "err", decErr)
	case errors.Is(err, store.ErrNotFound):
		// Confirmed miss, safe to call the provider.
	default:
		c.logger.Warn("embedding cache unreachable, skipping embedding", "err", err)
		return nil, nil
	}

	vec, err := c.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed text: %w", err)
	}
	if err := c.recordDim(len(vec)); err != nil {
		return nil, err
	}

	if err := c.store.Set(ctx, key, EncodeVector(vec), c.ttl); err != nil {
		// Write-through is best effort; we already have the vector.
		c.logger.Warn("embedding cache write failed", "err", err)
	}
	return vec, nil
}

// EmbedBatch embeds many texts directly against the provider, bypassing the
// cache. Texts are chunked and the chunks embedded concurrently on the
// worker pool; the returned matrix preserves input order. Returns the
// vectors and the detected dimension.
func (c *Cache) EmbedBatch(ctx context.Context, texts []string) ([][]float32, int, error) {
	if len(texts) == 0 {
		return nil, 0, nil
	}

	vectors := make([][]float32, len(texts))
	var (
		wg       sync.WaitGroup
		errMu    sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		errMu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		errMu.Unlock()
	}

	for start := 0; start < len(texts); start += c.batchSize {
		end := min(start+c.batchSize, len(texts))
		wg.Add(1)
		task := func() {
			defer wg.Done()
			got, err := c.embedder.EmbedTexts(ctx, texts[start:end])
			if err != nil {
				fail(fmt.Errorf("embed batch [%d:%d]: %w", start, end, err))
				return
			}
			if len(got) != end-start {
				fail(fmt.Errorf("embed batch [%d:%d]: got %d vectors", start, end, len(got)))
				return
			}
			// Each task writes a disjoint range; no locking needed.
			copy(vectors[start:end], got)
		}
		if err := c.pool.Submit(task); err != nil {
			wg.Done()
			fail(err)
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, 0, firstErr
	}

	dim := len(vectors[0])
	for _, vec := range vectors {
		if len(vec) != dim {
			return nil, 0, ErrDimensionMismatch
		}
	}
	if err := c.recordDim(dim); err != nil {
		return nil, 0, err
	}
	return vectors, dim, nil
}

// recordDim fixes the embedding dimension at the first successful call and
// rejects later disagreement, which would indicate a model change mid-run.
func (c *Cache) recordDim(dim int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dim == 0 {
		c.dim = dim
		c.logger.Info("detected embedding dimension", "dim", dim)
		return nil
	}
	if dim != c.dim {
		return fmt.Errorf("%w: got %d, index uses %d", ErrDimensionMismatch, dim, c.dim)
	}
	return nil
}
