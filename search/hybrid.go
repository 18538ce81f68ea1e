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


package search

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/poiesic/faqcore/core"
	"github.com/poiesic/faqcore/knowledge"
	"github.com/poiesic/faqcore/vector"
)

// Fusion constants. K dampens rank-1 dominance per standard reciprocal rank
// fusion practice; the scale factor stretches RRF contributions out of their
// narrow numeric band before blending with raw similarity.
const (
	defaultRRFK          = 60
	defaultScale         = 30.0
	defaultVectorWeight  = 0.7
	defaultLexicalWeight = 0.3
	defaultThreshold     = 0.7
	defaultMaxResults    = 3
)

// Engine runs lexical and vector retrieval and fuses the two rankings.
type Engine struct {
	kb     *knowledge.Store
	index  *vector.Index
	logger *slog.Logger

	rrfK          int
	scale         float64
	vectorWeight  float64
	lexicalWeight float64
	threshold     float64
	maxResults    int
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithThreshold sets the base similarity threshold used by the direct-answer
// and context gates.
func WithThreshold(threshold float64) Option {
	return func(e *Engine) error {
		if threshold < 0 || threshold > 1 {
			return fmt.Errorf("search: threshold must be in [0, 1], got %f", threshold)
		}
		e.threshold = threshold
		return nil
	}
}

// WithMaxResults sets the default result count for DirectAnswer and
// ContextForLLM.
func WithMaxResults(n int) Option {
	return func(e *Engine) error {
		if n < 1 {
			return fmt.Errorf("search: max results must be positive, got %d", n)
		}
		e.maxResults = n
		return nil
	}
}

// WithWeights sets the vector and lexical fusion weights.
func WithWeights(vectorWeight, lexicalWeight float64) Option {
	return func(e *Engine) error {
		if vectorWeight < 0 || lexicalWeight < 0 {
			return fmt.Errorf("search: fusion weights must be non-negative")
		}
		e.vectorWeight = vectorWeight
		e.lexicalWeight = lexicalWeight
		return nil
	}
}

// NewEngine creates a hybrid engine over the given knowledge store and
// vector index.
func NewEngine(kb *knowledge.Store, index *vector.Index, opts ...Option) (*Engine, error) {
	if kb == nil {
		return nil, ErrKnowledgeStoreRequired
	}
	if index == nil {
		return nil, ErrVectorIndexRequired
	}

	e := &Engine{
		kb:            kb,
		index:         index,
		logger:        slog.Default().With("component", "hybrid-search"),
		rrfK:          defaultRRFK,
		scale:         defaultScale,
		vectorWeight:  defaultVectorWeight,
		lexicalWeight: defaultLexicalWeight,
		threshold:     defaultThreshold,
		maxResults:    defaultMaxResults,
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Weights returns the configured vector and lexical fusion weights.
func (e *Engine) Weights() (vectorWeight, lexicalWeight float64) {
	return e.vectorWeight, e.lexicalWeight
}

// candidate accumulates one question's signals from both sub-rankings.
type candidate struct {
	answer   string
	rawLex   float64
	rawVec   float64
	rrfLex   float64
	rrfVec   float64
	exact    bool
}

// Search runs both sub-searches concurrently and returns at most k fused
// results, deduplicated by question and sorted by fused score descending.
// A vector-side failure degrades to lexical-only results.
func (e *Engine) Search(ctx context.Context, query string, k int) ([]core.FusedResult, error) {
	if k <= 0 {
		return nil, nil
	}

	var (
		lexical []core.LexicalResult
		matches []core.VectorMatch
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lexical = e.kb.Search(query)
		return nil
	})
	g.Go(func() error {
		// Over-fetch so lexical-only candidates still compete after fusion.
		var err error
		matches, err = e.index.Search(gctx, query, 2*k)
		return err
	})
	if err := g.Wait(); err != nil {
		e.logger.Warn("vector search failed, using lexical results only", "err", err)
		matches = nil
	}

	fused := e.fuse(lexical, matches)
	if len(fused) > k {
		fused = fused[:k]
	}
	return fused, nil
}

// fuse combines the two sub-rankings with reciprocal rank fusion blended
// against the best raw similarity. Candidates absent from one sub-ranking
// get zero contribution from that side.
func (e *Engine) fuse(lexical []core.LexicalResult, matches []core.VectorMatch) []core.FusedResult {
	byQuestion := make(map[string]*candidate)
	order := make([]string, 0, len(lexical)+len(matches))

	get := func(question, answer string) *candidate {
		c, ok := byQuestion[question]
		if !ok {
			c = &candidate{answer: answer}
			byQuestion[question] = c
			order = append(order, question)
		}
		return c
	}

	for i, lr := range lexical {
		c := get(lr.Question, lr.Answer)
		c.rawLex = lr.Score
		c.rrfLex = 1.0 / float64(e.rrfK+i+1)
		c.exact = c.exact || lr.Exact
	}
	for _, m := range matches {
		c := get(m.Question, m.Answer)
		c.rawVec = m.Score
		c.rrfVec = 1.0 / float64(e.rrfK+m.Rank)
	}

	results := make([]core.FusedResult, 0, len(order))
	for _, q := range order {
		c := byQuestion[q]
		weighted := e.vectorWeight*c.rrfVec + e.lexicalWeight*c.rrfLex
		final := 0.5*(weighted*e.scale) + 0.5*math.Max(c.rawVec, c.rawLex)
		results = append(results, core.FusedResult{
			Question:     q,
			Answer:       c.answer,
			LexicalScore: c.rawLex,
			VectorScore:  c.rawVec,
			FusedScore:   math.Max(0, math.Min(1, final)),
			Exact:        c.exact,
		})
	}
	sort.SliceStable(results, func(a, b int) bool {
		return results[a].FusedScore > results[b].FusedScore
	})
	return results
}

// DirectAnswer returns the top fused result as an authoritative answer when
// it clears the high-confidence gate or was an exact lexical match. Returns
// nil when no result qualifies.
func (e *Engine) DirectAnswer(ctx context.Context, query string) (*core.DirectAnswer, error) {
	results, err := e.Search(ctx, query, e.maxResults)
	if err != nil || len(results) == 0 {
		return nil, err
	}

	top := results[0]
	gate := math.Max(0.5, e.threshold)
	if !top.Exact && top.FusedScore < gate {
		return nil, nil
	}
	return &core.DirectAnswer{
		Answer: top.Answer,
		Source: top.Question,
		Score:  top.FusedScore,
	}, nil
}

// ContextForLLM returns the concatenated Q/A text of all fused results
// clearing the grounding gate, for use as generation context. Returns the
// empty string when none qualify.
func (e *Engine) ContextForLLM(ctx context.Context, query string) (string, error) {
	results, err := e.Search(ctx, query, e.maxResults)
	if err != nil {
		return "", err
	}

	gate := math.Max(0.4, e.threshold)
	parts := make([]string, 0, len(results))
	for _, r := range results {
		if r.FusedScore < gate {
			continue
		}
		parts = append(parts, fmt.Sprintf("Q: %s\nA: %s", r.Question, r.Answer))
	}
	if len(parts) == 0 {
		return "", nil
	}
	return strings.Join(parts, "\n\n"), nil
}
