package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "redis://localhost:6379/0", cfg.Store.URL)
	assert.Equal(t, 2*time.Second, cfg.Store.OpTimeout)
	assert.Equal(t, "text-embedding-3-small", cfg.Provider.EmbeddingModel)
	assert.Equal(t, 1536, cfg.Provider.EmbeddingDim)
	assert.Equal(t, 30*time.Second, cfg.Provider.LLMTimeout)
	assert.Equal(t, 500, cfg.Provider.MaxTokens)
	assert.Equal(t, 0.7, cfg.Search.Threshold)
	assert.Equal(t, 3, cfg.Search.MaxResults)
	assert.Equal(t, 20, cfg.Limits.PerMinute)
	assert.Equal(t, 100, cfg.Limits.PerDay)
	assert.Equal(t, 200, cfg.Limits.GlobalPerMinute)
	assert.Equal(t, 200, cfg.Limits.MaxQuestionLength)
	assert.Equal(t, 10.0, cfg.Budget.DailyCap)
	assert.Equal(t, time.Hour, cfg.Cache.GroundedTTL)
	assert.Equal(t, 5*time.Minute, cfg.Cache.UngroundedTTL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://cache:6380/1")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "5")
	t.Setenv("SCORE_THRESHOLD", "0.85")
	t.Setenv("LLM_TIMEOUT_SECONDS", "10")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "redis://cache:6380/1", cfg.Store.URL)
	assert.Equal(t, 5, cfg.Limits.PerMinute)
	assert.Equal(t, 0.85, cfg.Search.Threshold)
	assert.Equal(t, 10*time.Second, cfg.Provider.LLMTimeout)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("RATE_LIMIT_PER_MINUTE", "not-a-number")
	t.Setenv("SCORE_THRESHOLD", "high")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.Limits.PerMinute)
	assert.Equal(t, 0.7, cfg.Search.Threshold)
}
