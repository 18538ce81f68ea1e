package vector

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sort"
	"sync/atomic"
	"time"

	"github.com/poiesic/faqcore/core"
	"github.com/poiesic/faqcore/embedding"
)

// Generation is one fully-built index: normalized vectors, the records they
// embed, and the embedding metadata. A Generation is immutable once
// published.
type Generation struct {
	Vectors [][]float32
	Docs    []core.QARecord
	Dim     int
	ModelID string
	BuiltAt time.Time
}

// Index is the nearest-neighbor index with atomic generation handoff.
type Index struct {
	cache    *embedding.Cache
	blobPath string
	metaPath string
	modelID  string
	logger   *slog.Logger

	gen atomic.Pointer[Generation]
}

// Option configures an Index.
type Option func(*Index) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(i *Index) error {
		if logger == nil {
			logger = slog.Default()
		}
		i.logger = logger
		return nil
	}
}

// NewIndex creates an index that embeds through cache, persists its blob at
// blobPath, and stamps generations with modelID.
func NewIndex(cache *embedding.Cache, blobPath, modelID string, opts ...Option) (*Index, error) {
	if cache == nil {
		return nil, ErrCacheRequired
	}
	if blobPath == "" {
		return nil, ErrPathRequired
	}

	i := &Index{
		cache:    cache,
		blobPath: blobPath,
		metaPath: sidecarPath(blobPath),
		modelID:  modelID,
		logger:   slog.Default().With("component", "vector-index"),
	}
	for _, opt := range opts {
		if err := opt(i); err != nil {
			return nil, err
		}
	}
	return i, nil
}

// Ready reports whether an active generation is available for search.
func (i *Index) Ready() bool {
	return i.gen.Load() != nil
}

// Size returns the number of indexed records in the active generation.
func (i *Index) Size() int {
	gen := i.gen.Load()
	if gen == nil {
		return 0
	}
	return len(gen.Docs)
}

// Active returns the active generation, or nil if none is published.
// The returned generation must not be modified.
func (i *Index) Active() *Generation {
	return i.gen.Load()
}

// Build embeds the records' question text, normalizes the vectors, and
// publishes the result as the new active generation. The swap happens only
// after the generation is complete, so concurrent searches keep running
// against the previous generation until the very last moment. The new
// generation is persisted best-effort; a persistence failure is logged but
// does not fail the build.
func (i *Index) Build(ctx context.Context, records []core.QARecord) error {
	if len(records) == 0 {
		return ErrNoRecords
	}

	texts := make([]string, len(records))
	for n := range records {
		texts[n] = records[n].EmbedText()
	}

	i.logger.Info("building vector index", "records", len(records))
	vectors, dim, err := i.cache.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed records: %w", err)
	}

	for _, vec := range vectors {
		normalizeL2(vec)
	}

	gen := &Generation{
		Vectors: vectors,
		Docs:    slices.Clone(records),
		Dim:     dim,
		ModelID: i.modelID,
		BuiltAt: time.Now(),
	}
	i.gen.Store(gen)
	i.logger.Info("vector index built", "vectors", len(vectors), "dim", dim)

	if err := i.save(gen); err != nil {
		i.logger.Warn("failed to persist vector index", "err", err)
	}
	return nil
}

// Search embeds the query through the embedding cache and returns the k
// nearest records with similarity clamped to [0, 1] and 1-based ranks.
// Returns an empty result when no generation is active or when the
// embedding is unavailable; in the latter case the caller falls back to
// lexical-only search, matching the embedding cache's fail-closed policy.
func (i *Index) Search(ctx context.Context, query string, k int) ([]core.VectorMatch, error) {
	gen := i.gen.Load()
	if gen == nil || k <= 0 {
		return nil, nil
	}

	vec, err := i.cache.GetOrEmbed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if vec == nil {
		i.logger.Info("vector search skipped, embedding unavailable")
		return nil, nil
	}
	if len(vec) != gen.Dim {
		return nil, fmt.Errorf("%w: query dim %d, index dim %d", embedding.ErrDimensionMismatch, len(vec), gen.Dim)
	}

	q := slices.Clone(vec)
	normalizeL2(q)

	type scored struct {
		doc   int
		score float64
	}
	candidates := make([]scored, 0, len(gen.Vectors))
	for n, row := range gen.Vectors {
		candidates = append(candidates, scored{doc: n, score: dot(q, row)})
	}
	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].score > candidates[b].score
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}

	matches := make([]core.VectorMatch, 0, len(candidates))
	for rank, c := range candidates {
		doc := gen.Docs[c.doc]
		matches = append(matches, core.VectorMatch{
			Question: doc.Question,
			Answer:   doc.Answer,
			Score:    clamp01(c.score),
			Rank:     rank + 1,
		})
	}
	return matches, nil
}

func dot(a, b []float32) float64 {
	var sum float64
	for n := range a {
		sum += float64(a[n]) * float64(b[n])
	}
	return sum
}

func normalizeL2(vec []float32) {
	var sum float64
	for _, f := range vec {
		sum += float64(f) * float64(f)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for n := range vec {
		vec[n] /= norm
	}
}

func clamp01(f float64) float64 {
	return math.Max(0, math.Min(1, f))
}
