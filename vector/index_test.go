package vector

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/faqcore/ai/mock"
	"github.com/poiesic/faqcore/core"
	"github.com/poiesic/faqcore/embedding"
	storeredis "github.com/poiesic/faqcore/store/redis"
)

func testRecords() []core.QARecord {
	return []core.QARecord{
		{Question: "What are your hours?", Answer: "We are open 9 to 5."},
		{Question: "Where is your office?", Answer: "Downtown, 5th street."},
		{Question: "Do you ship overseas?", Answer: "Yes, worldwide."},
	}
}

func newTestIndex(t *testing.T) (*Index, *mock.MockEmbedder, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	st := storeredis.NewFromOptions(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { st.Close() })

	embedder := mock.NewMockEmbedder()
	cache, err := embedding.NewCache(st, embedder)
	require.NoError(t, err)

	idx, err := NewIndex(cache, filepath.Join(t.TempDir(), "index.vec"), "test-model")
	require.NoError(t, err)
	return idx, embedder, srv
}

func TestNewIndex(t *testing.T) {
	t.Run("requires cache", func(t *testing.T) {
		_, err := NewIndex(nil, "index.vec", "m")
		assert.ErrorIs(t, err, ErrCacheRequired)
	})

	t.Run("requires path", func(t *testing.T) {
		srv := miniredis.RunT(t)
		st := storeredis.NewFromOptions(&goredis.Options{Addr: srv.Addr()})
		defer st.Close()
		cache, err := embedding.NewCache(st, mock.NewMockEmbedder())
		require.NoError(t, err)

		_, err = NewIndex(cache, "", "m")
		assert.ErrorIs(t, err, ErrPathRequired)
	})
}

func TestIndexBuildAndSearch(t *testing.T) {
	idx, _, _ := newTestIndex(t)
	ctx := context.Background()

	require.False(t, idx.Ready())
	require.Zero(t, idx.Size())

	err := idx.Build(ctx, testRecords())
	require.NoError(t, err)
	require.True(t, idx.Ready())
	require.Equal(t, 3, idx.Size())

	matches, err := idx.Search(ctx, "What are your hours?", 3)
	require.NoError(t, err)
	require.Len(t, matches, 3)

	// The deterministic mock embeds identical text identically, so the
	// matching record must rank first with near-perfect similarity.
	assert.Equal(t, "What are your hours?", matches[0].Question)
	assert.Equal(t, "We are open 9 to 5.", matches[0].Answer)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-6)

	for i, m := range matches {
		assert.Equal(t, i+1, m.Rank)
		assert.GreaterOrEqual(t, m.Score, 0.0)
		assert.LessOrEqual(t, m.Score, 1.0)
		if i > 0 {
			assert.LessOrEqual(t, m.Score, matches[i-1].Score)
		}
	}
}

func TestIndexSearchTruncatesToK(t *testing.T) {
	idx, _, _ := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Build(ctx, testRecords()))

	matches, err := idx.Search(ctx, "shipping question", 2)
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	matches, err = idx.Search(ctx, "shipping question", 0)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestIndexBuildRequiresRecords(t *testing.T) {
	idx, _, _ := newTestIndex(t)
	err := idx.Build(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoRecords)
}

func TestIndexSearchWithoutGeneration(t *testing.T) {
	idx, embedder, _ := newTestIndex(t)

	matches, err := idx.Search(context.Background(), "anything", 3)
	require.NoError(t, err)
	assert.Empty(t, matches)
	assert.Zero(t, embedder.CallCount())
}

func TestIndexSearchFailsClosedWhenStoreDown(t *testing.T) {
	idx, embedder, srv := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Build(ctx, testRecords()))
	before := embedder.CallCount()

	srv.Close()

	matches, err := idx.Search(ctx, "What are your hours?", 3)
	require.NoError(t, err)
	assert.Empty(t, matches)
	assert.Equal(t, before, embedder.CallCount())
}

func TestIndexGenerationSwap(t *testing.T) {
	idx, _, _ := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Build(ctx, testRecords()))
	first := idx.Active()
	require.NotNil(t, first)

	replacement := []core.QARecord{
		{Question: "What payment methods do you take?", Answer: "Card and bank transfer."},
	}
	require.NoError(t, idx.Build(ctx, replacement))

	second := idx.Active()
	require.NotSame(t, first, second)
	assert.Equal(t, 1, idx.Size())

	matches, err := idx.Search(ctx, "What payment methods do you take?", 3)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Card and bank transfer.", matches[0].Answer)
}

func TestNormalizeL2(t *testing.T) {
	vec := []float32{3, 4}
	normalizeL2(vec)
	assert.InDelta(t, 0.6, vec[0], 1e-6)
	assert.InDelta(t, 0.8, vec[1], 1e-6)

	zero := []float32{0, 0}
	normalizeL2(zero)
	assert.Equal(t, []float32{0, 0}, zero)
}
