// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package faqcore answers FAQ questions from a curated knowledge base with
// hybrid lexical/vector retrieval, governed generation, rate limiting, and
// daily budget enforcement, coordinated through a shared Redis store.
package faqcore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/faqcore/ai"
	"github.com/poiesic/faqcore/ai/openai"
	"github.com/poiesic/faqcore/budget"
	"github.com/poiesic/faqcore/config"
	"github.com/poiesic/faqcore/embedding"
	"github.com/poiesic/faqcore/knowledge"
	"github.com/poiesic/faqcore/ratelimit"
	"github.com/poiesic/faqcore/search"
	"github.com/poiesic/faqcore/service"
	"github.com/poiesic/faqcore/store"
	"github.com/poiesic/faqcore/store/redis"
	"github.com/poiesic/faqcore/vector"
)

// Core owns the wired component graph for one deployment.
type Core struct {
	store    store.Store
	kb       *knowledge.Store
	cache    *embedding.Cache
	index    *vector.Index
	engine   *search.Engine
	svc      *service.Service
	provider ai.Provider
	logger   *slog.Logger
}

// Option configures Core construction.
type Option func(*coreOptions)

type coreOptions struct {
	provider ai.Provider
}

// WithProvider injects a pre-built AI provider, replacing the one that would
// be constructed from the configuration. Useful for tests.
func WithProvider(p ai.Provider) Option {
	return func(o *coreOptions) {
		o.provider = p
	}
}

// New wires the full component graph from configuration: coordination
// store, knowledge base, embedding cache, vector index, hybrid engine, and
// the question service. Without a provider API key the core runs
// retrieval-only; generation paths fall back to lexical answers.
func New(cfg *config.Config, opts ...Option) (*Core, error) {
	options := &coreOptions{}
	for _, opt := range opts {
		opt(options)
	}

	st, err := redis.New(cfg.Store.URL, redis.WithOpTimeout(cfg.Store.OpTimeout))
	if err != nil {
		return nil, fmt.Errorf("open coordination store: %w", err)
	}

	logger := slog.Default().With("component", "faqcore")

	kb, err := knowledge.NewStore(cfg.Knowledge.Path,
		knowledge.WithThreshold(cfg.Search.Threshold),
		knowledge.WithMaxResults(cfg.Search.MaxResults),
	)
	if err != nil {
		st.Close()
		return nil, err
	}
	if err := kb.Load(true); err != nil {
		// The store serves an empty snapshot until the file is fixed.
		logger.Warn("knowledge file unavailable at startup", "err", err)
	}

	provider := options.provider
	if provider == nil && cfg.Provider.APIKey != "" {
		aiCfg := ai.NewConfig(
			ai.WithHost(cfg.Provider.Host),
			ai.WithToken(cfg.Provider.APIKey),
			ai.WithEmbeddingModel(cfg.Provider.EmbeddingModel),
			ai.WithChatModel(cfg.Provider.ChatModel),
		)
		if provider, err = openai.NewProvider(aiCfg); err != nil {
			st.Close()
			return nil, fmt.Errorf("create provider: %w", err)
		}
	}

	var embedder ai.Embedder = unavailableEmbedder{}
	if provider != nil {
		embedder = provider.Embedder()
	}
	cache, err := embedding.NewCache(st, embedder)
	if err != nil {
		st.Close()
		return nil, err
	}

	index, err := vector.NewIndex(cache, cfg.Knowledge.IndexPath, cfg.Provider.EmbeddingModel)
	if err != nil {
		st.Close()
		return nil, err
	}
	if err := index.Load(); err != nil {
		if !errors.Is(err, vector.ErrNotPersisted) {
			logger.Warn("persisted index unusable, awaiting rebuild", "err", err)
		}
	}

	engine, err := search.NewEngine(kb, index,
		search.WithThreshold(cfg.Search.Threshold),
		search.WithMaxResults(cfg.Search.MaxResults),
		search.WithWeights(cfg.Search.VectorWeight, cfg.Search.LexicalWeight),
	)
	if err != nil {
		st.Close()
		return nil, err
	}

	limiter, err := ratelimit.NewLimiter(st,
		ratelimit.WithLimits(cfg.Limits.PerMinute, cfg.Limits.PerDay, cfg.Limits.GlobalPerMinute))
	if err != nil {
		st.Close()
		return nil, err
	}

	ledger, err := budget.NewLedger(st,
		budget.WithDailyCap(cfg.Budget.DailyCap),
		budget.WithRates(cfg.Budget.InputRate, cfg.Budget.OutputRate))
	if err != nil {
		st.Close()
		return nil, err
	}

	svcOpts := []service.Option{
		service.WithLimiter(limiter),
		service.WithLedger(ledger),
		service.WithQuestionLimits(cfg.Limits.MaxQuestionLength, cfg.Limits.MaxEmoji),
		service.WithLLMTimeout(cfg.Provider.LLMTimeout),
		service.WithMaxTokens(cfg.Provider.MaxTokens),
		service.WithCacheTTLs(cfg.Cache.GroundedTTL, cfg.Cache.UngroundedTTL),
	}
	if provider != nil {
		svcOpts = append(svcOpts, service.WithCompleter(provider.Completer(), cfg.Provider.ChatModel))
	}
	svc, err := service.New(st, kb, index, engine, svcOpts...)
	if err != nil {
		st.Close()
		return nil, err
	}

	return &Core{
		store:    st,
		kb:       kb,
		cache:    cache,
		index:    index,
		engine:   engine,
		svc:      svc,
		provider: provider,
		logger:   logger,
	}, nil
}

// Service returns the question answering service.
func (c *Core) Service() *service.Service {
	return c.svc
}

// Engine returns the hybrid search engine.
func (c *Core) Engine() *search.Engine {
	return c.engine
}

// Knowledge returns the knowledge store.
func (c *Core) Knowledge() *knowledge.Store {
	return c.kb
}

// Index returns the vector index.
func (c *Core) Index() *vector.Index {
	return c.index
}

// Close releases the provider, the embedding cache's worker pool, and the
// coordination store connection.
func (c *Core) Close() error {
	if c.provider != nil {
		if err := c.provider.Close(); err != nil {
			c.logger.Error("error closing AI provider", "err", err)
		}
	}
	if err := c.cache.Close(); err != nil {
		c.logger.Error("error closing embedding cache", "err", err)
	}
	if err := c.store.Close(); err != nil {
		c.logger.Error("error closing coordination store", "err", err)
		return err
	}
	return nil
}

// unavailableEmbedder stands in when no provider is configured. The
// embedding cache treats its error as an embed failure, so vector search
// degrades to lexical-only exactly as when the store is down.
type unavailableEmbedder struct{}

func (unavailableEmbedder) EmbedText(context.Context, string) ([]float32, error) {
	return nil, ErrNoProvider
}

func (unavailableEmbedder) EmbedTexts(context.Context, []string) ([][]float32, error) {
	return nil, ErrNoProvider
}

// ErrNoProvider is returned by embedding operations when no AI provider is
// configured.
var ErrNoProvider = errors.New("faqcore: no AI provider configured")
