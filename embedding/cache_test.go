package embedding

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/faqcore/ai/mock"
	"github.com/poiesic/faqcore/store"
	"github.com/poiesic/faqcore/store/redis"
)

func newTestStore(t *testing.T) (*miniredis.Miniredis, store.Store) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewFromOptions(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })
	return srv, client
}

func TestNewCache(t *testing.T) {
	_, st := newTestStore(t)

	t.Run("embedder required", func(t *testing.T) {
		_, err := NewCache(st, nil)
		assert.Equal(t, ErrEmbedderRequired, err)
	})

	t.Run("nil store allowed", func(t *testing.T) {
		cache, err := NewCache(nil, mock.NewMockEmbedder())
		require.NoError(t, err)
		defer cache.Close()
	})
}

func TestGetOrEmbed(t *testing.T) {
	ctx := context.Background()

	t.Run("miss embeds and writes through", func(t *testing.T) {
		_, st := newTestStore(t)
		embedder := mock.NewMockEmbedder()
		cache, err := NewCache(st, embedder)
		require.NoError(t, err)
		defer cache.Close()

		vec, err := cache.GetOrEmbed(ctx, "What are your hours?")
		require.NoError(t, err)
		require.NotNil(t, vec)
		assert.Len(t, vec, mock.DefaultDimension)
		assert.Equal(t, 1, embedder.CallCount())
		assert.Equal(t, mock.DefaultDimension, cache.Dim())

		// Second lookup must hit the cache, not the provider.
		again, err := cache.GetOrEmbed(ctx, "What are your hours?")
		require.NoError(t, err)
		assert.Equal(t, vec, again)
		assert.Equal(t, 1, embedder.CallCount())
	})

	t.Run("normalized text shares one entry", func(t *testing.T) {
		_, st := newTestStore(t)
		embedder := mock.NewMockEmbedder()
		cache, err := NewCache(st, embedder)
		require.NoError(t, err)
		defer cache.Close()

		_, err = cache.GetOrEmbed(ctx, "Hello World")
		require.NoError(t, err)
		_, err = cache.GetOrEmbed(ctx, "  hello world  ")
		require.NoError(t, err)
		assert.Equal(t, 1, embedder.CallCount())
	})

	t.Run("store down returns absent without calling provider", func(t *testing.T) {
		srv, st := newTestStore(t)
		embedder := mock.NewMockEmbedder()
		cache, err := NewCache(st, embedder)
		require.NoError(t, err)
		defer cache.Close()

		srv.Close()

		vec, err := cache.GetOrEmbed(ctx, "anything")
		require.NoError(t, err)
		assert.Nil(t, vec)
		assert.Zero(t, embedder.CallCount())
	})

	t.Run("nil store returns absent without calling provider", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		cache, err := NewCache(nil, embedder)
		require.NoError(t, err)
		defer cache.Close()

		vec, err := cache.GetOrEmbed(ctx, "anything")
		require.NoError(t, err)
		assert.Nil(t, vec)
		assert.Zero(t, embedder.CallCount())
	})

	t.Run("corrupt cache entry re-embeds", func(t *testing.T) {
		srv, st := newTestStore(t)
		embedder := mock.NewMockEmbedder()
		cache, err := NewCache(st, embedder)
		require.NoError(t, err)
		defer cache.Close()

		// Seed garbage at the key the cache will read.
		_, err = cache.GetOrEmbed(ctx, "probe")
		require.NoError(t, err)
		for _, key := range srv.Keys() {
			srv.Set(key, "not base64!!!")
		}

		vec, err := cache.GetOrEmbed(ctx, "probe")
		require.NoError(t, err)
		assert.NotNil(t, vec)
		assert.Equal(t, 2, embedder.CallCount())
	})

	t.Run("cached vectors expire", func(t *testing.T) {
		srv, st := newTestStore(t)
		embedder := mock.NewMockEmbedder()
		cache, err := NewCache(st, embedder, WithTTL(time.Hour))
		require.NoError(t, err)
		defer cache.Close()

		_, err = cache.GetOrEmbed(ctx, "ephemeral")
		require.NoError(t, err)
		srv.FastForward(2 * time.Hour)

		_, err = cache.GetOrEmbed(ctx, "ephemeral")
		require.NoError(t, err)
		assert.Equal(t, 2, embedder.CallCount())
	})
}

func TestEmbedBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("preserves order across chunks", func(t *testing.T) {
		_, st := newTestStore(t)
		embedder := mock.NewMockEmbedder()
		cache, err := NewCache(st, embedder, WithBatchSize(2), WithPoolSize(4))
		require.NoError(t, err)
		defer cache.Close()

		texts := []string{"a", "b", "c", "d", "e"}
		vectors, dim, err := cache.EmbedBatch(ctx, texts)
		require.NoError(t, err)
		assert.Equal(t, mock.DefaultDimension, dim)
		require.Len(t, vectors, len(texts))
		for i, text := range texts {
			assert.Equal(t, mock.DeterministicVector(text, mock.DefaultDimension), vectors[i])
		}
	})

	t.Run("bypasses the cache", func(t *testing.T) {
		srv, st := newTestStore(t)
		embedder := mock.NewMockEmbedder()
		cache, err := NewCache(st, embedder)
		require.NoError(t, err)
		defer cache.Close()

		_, _, err = cache.EmbedBatch(ctx, []string{"x", "y"})
		require.NoError(t, err)
		assert.Empty(t, srv.Keys())
	})

	t.Run("empty input", func(t *testing.T) {
		cache, err := NewCache(nil, mock.NewMockEmbedder())
		require.NoError(t, err)
		defer cache.Close()

		vectors, dim, err := cache.EmbedBatch(ctx, nil)
		require.NoError(t, err)
		assert.Nil(t, vectors)
		assert.Zero(t, dim)
	})

	t.Run("fails after close", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		cache, err := NewCache(nil, embedder)
		require.NoError(t, err)
		require.NoError(t, cache.Close())

		_, _, err = cache.EmbedBatch(ctx, []string{"x"})
		assert.Error(t, err)
		assert.Zero(t, embedder.CallCount())
	})
}

func TestVectorCodec(t *testing.T) {
	t.Run("roundtrip", func(t *testing.T) {
		vec := []float32{0.5, -1.25, 3.75, 0}
		decoded, err := DecodeVector(EncodeVector(vec))
		require.NoError(t, err)
		assert.Equal(t, vec, decoded)
	})

	t.Run("rejects bad base64", func(t *testing.T) {
		_, err := DecodeVector("not base64!!!")
		assert.Error(t, err)
	})

	t.Run("rejects truncated payload", func(t *testing.T) {
		_, err := DecodeVector("AAAA")
		assert.ErrorIs(t, err, ErrMalformedVector)
	})
}
