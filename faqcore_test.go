package faqcore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/faqcore/ai/mock"
	"github.com/poiesic/faqcore/config"
	"github.com/poiesic/faqcore/service"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	srv := miniredis.RunT(t)
	cfg, err := config.Load()
	require.NoError(t, err)

	dir := t.TempDir()
	kbPath := filepath.Join(dir, "knowledge.json")
	payload := map[string]any{
		"qa": []map[string]any{
			{"q": "What are your hours?", "a": "9-5 Mon-Fri", "keywords": []string{"businesshours"}},
		},
		"company_info": map[string]string{"name": "Acme"},
	}
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(kbPath, data, 0o644))

	cfg.Store.URL = "redis://" + srv.Addr()
	cfg.Knowledge.Path = kbPath
	cfg.Knowledge.IndexPath = filepath.Join(dir, "index.vec")
	return cfg
}

func TestNewCoreEndToEnd(t *testing.T) {
	cfg := testConfig(t)

	c, err := New(cfg, WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	defer c.Close()

	// No persisted index yet; searches run lexical-only until a rebuild.
	require.False(t, c.Index().Ready())

	count, err := c.Service().RebuildIndex(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.Eventually(t, c.Index().Ready, 5*time.Second, 10*time.Millisecond)

	resp, err := c.Service().Ask(context.Background(), service.Request{
		Question: "What are your hours?",
		ClientIP: "10.0.0.1",
	})
	require.NoError(t, err)
	assert.Equal(t, "9-5 Mon-Fri", resp.Answer)
	assert.Equal(t, "What are your hours?", resp.Source)
	assert.False(t, resp.UsedLLM)
}

func TestNewCoreWithoutProvider(t *testing.T) {
	cfg := testConfig(t)
	cfg.Provider.APIKey = ""

	c, err := New(cfg)
	require.NoError(t, err)
	defer c.Close()

	status := c.Service().StatusFor(context.Background(), "10.0.0.1")
	assert.False(t, status.LLMAvailable)

	// Lexical retrieval still answers exact questions.
	resp, err := c.Service().Ask(context.Background(), service.Request{
		Question: "What are your hours?",
		ClientIP: "10.0.0.1",
	})
	require.NoError(t, err)
	assert.Equal(t, "9-5 Mon-Fri", resp.Answer)
}

func TestNewCoreBudgetCapApplied(t *testing.T) {
	cfg := testConfig(t)
	cfg.Budget.DailyCap = 0.00000001

	c, err := New(cfg, WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	defer c.Close()

	first, err := c.Service().Ask(context.Background(), service.Request{
		Question: "tell me about dragons",
		ClientIP: "10.0.0.1",
	})
	require.NoError(t, err)
	assert.True(t, first.UsedLLM)

	// The first call's cost already exceeds the configured cap, so the
	// next generation is refused.
	second, err := c.Service().Ask(context.Background(), service.Request{
		Question: "tell me about unicorns",
		ClientIP: "10.0.0.1",
	})
	require.NoError(t, err)
	assert.False(t, second.UsedLLM)
	assert.Equal(t, "Sorry, no related information found.", second.Answer)
}

func TestNewCoreCacheTTLApplied(t *testing.T) {
	srv := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.Store.URL = "redis://" + srv.Addr()
	cfg.Cache.UngroundedTTL = time.Second

	c, err := New(cfg, WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	defer c.Close()

	ask := func() *service.Response {
		resp, err := c.Service().Ask(context.Background(), service.Request{
			Question: "tell me about dragons",
			ClientIP: "10.0.0.1",
		})
		require.NoError(t, err)
		return resp
	}

	assert.False(t, ask().Cached)
	assert.True(t, ask().Cached)

	srv.FastForward(2 * time.Second)
	assert.False(t, ask().Cached)
}

func TestCoreCloseReleasesEmbeddingPool(t *testing.T) {
	cfg := testConfig(t)

	c, err := New(cfg, WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	require.NoError(t, c.Close())

	// A rebuild started after shutdown cannot embed; the worker pool is
	// released, so no generation is ever published.
	_, err = c.Service().RebuildIndex(context.Background())
	require.NoError(t, err)
	assert.Never(t, c.Index().Ready, 500*time.Millisecond, 50*time.Millisecond)
}

func TestNewCoreReloadPersistedIndex(t *testing.T) {
	cfg := testConfig(t)

	first, err := New(cfg, WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	_, err = first.Service().RebuildIndex(context.Background())
	require.NoError(t, err)
	require.Eventually(t, first.Index().Ready, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, first.Close())

	// A new core over the same paths restores the persisted generation.
	second, err := New(cfg, WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	defer second.Close()
	assert.True(t, second.Index().Ready())
	assert.Equal(t, 1, second.Index().Size())
}
