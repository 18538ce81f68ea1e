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


package service

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/poiesic/faqcore/ai"
	"github.com/poiesic/faqcore/budget"
	"github.com/poiesic/faqcore/core"
	"github.com/poiesic/faqcore/knowledge"
	"github.com/poiesic/faqcore/ratelimit"
	"github.com/poiesic/faqcore/respcache"
	"github.com/poiesic/faqcore/search"
	"github.com/poiesic/faqcore/store"
	"github.com/poiesic/faqcore/vector"
)

// User-facing fallback messages.
const (
	msgGreeting     = "Hi! How can I help you?"
	msgNoResults    = "Sorry, no information found."
	msgNoRelated    = "Sorry, no related information found."
	msgApology      = "Sorry, please try again."
)

const (
	defaultMaxQuestionLength = 200
	defaultMaxEmoji          = 3
	defaultLLMTimeout        = 30 * time.Second
	defaultMaxTokens         = 500

	defaultGroundedCacheTTL   = time.Hour
	defaultUngroundedCacheTTL = 5 * time.Minute
	contextPrefixRunes        = 200
)

// Request is one incoming question with its caller identity.
type Request struct {
	Question string
	ClientIP string
	Meta     ratelimit.Meta
}

// Response is the answer and how it was produced.
type Response struct {
	Answer  string
	Source  string
	UsedLLM bool
	Cached  bool
	Score   float64
}

// Status is the operational snapshot reported to admins.
type Status struct {
	Rate          ratelimit.Remaining
	Budget        budget.Status
	CachedAnswers int
	LLMAvailable  bool
	LLMEnabled    bool
	Model         string
	IndexReady    bool
	IndexSize     int
	VectorWeight  float64
	LexicalWeight float64
}

// Service answers questions through the full governance pipeline.
type Service struct {
	kb        *knowledge.Store
	index     *vector.Index
	engine    *search.Engine
	completer ai.Completer
	limiter   *ratelimit.Limiter
	ledger    *budget.Ledger
	llmCache  *respcache.Cache
	freeCache *respcache.Cache
	logger    *slog.Logger

	chatModel         string
	maxQuestionLength int
	maxEmoji          int
	llmTimeout        time.Duration
	maxTokens         int
	groundedTTL       time.Duration
	ungroundedTTL     time.Duration

	rebuilding atomic.Bool
}

// Option configures a Service.
type Option func(*Service) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithCompleter enables the generation paths. Without one, the service runs
// retrieval-only and falls back to lexical answers.
func WithCompleter(completer ai.Completer, model string) Option {
	return func(s *Service) error {
		s.completer = completer
		s.chatModel = model
		return nil
	}
}

// WithLimiter replaces the default rate limiter.
func WithLimiter(limiter *ratelimit.Limiter) Option {
	return func(s *Service) error {
		if limiter == nil {
			return ErrLimiterRequired
		}
		s.limiter = limiter
		return nil
	}
}

// WithLedger replaces the default budget ledger.
func WithLedger(ledger *budget.Ledger) Option {
	return func(s *Service) error {
		if ledger == nil {
			return ErrLedgerRequired
		}
		s.ledger = ledger
		return nil
	}
}

// WithQuestionLimits sets the validation bounds for incoming questions.
func WithQuestionLimits(maxLength, maxEmoji int) Option {
	return func(s *Service) error {
		s.maxQuestionLength = maxLength
		s.maxEmoji = maxEmoji
		return nil
	}
}

// WithLLMTimeout bounds each generation call.
func WithLLMTimeout(timeout time.Duration) Option {
	return func(s *Service) error {
		s.llmTimeout = timeout
		return nil
	}
}

// WithMaxTokens caps grounded generation length.
func WithMaxTokens(n int) Option {
	return func(s *Service) error {
		s.maxTokens = n
		return nil
	}
}

// WithCacheTTLs sets the lifetimes of the grounded and ungrounded answer
// caches.
func WithCacheTTLs(grounded, ungrounded time.Duration) Option {
	return func(s *Service) error {
		s.groundedTTL = grounded
		s.ungroundedTTL = ungrounded
		return nil
	}
}

// New wires a service over the coordination store, knowledge base, vector
// index, and hybrid engine. The rate limiter, budget ledger, and both
// response caches are built on the store unless replaced via options.
func New(st store.Store, kb *knowledge.Store, index *vector.Index, engine *search.Engine, opts ...Option) (*Service, error) {
	if st == nil {
		return nil, ErrStoreRequired
	}
	if kb == nil {
		return nil, ErrKnowledgeRequired
	}
	if index == nil {
		return nil, ErrIndexRequired
	}
	if engine == nil {
		return nil, ErrEngineRequired
	}

	s := &Service{
		kb:                kb,
		index:             index,
		engine:            engine,
		logger:            slog.Default().With("component", "service"),
		maxQuestionLength: defaultMaxQuestionLength,
		maxEmoji:          defaultMaxEmoji,
		llmTimeout:        defaultLLMTimeout,
		maxTokens:         defaultMaxTokens,
		groundedTTL:       defaultGroundedCacheTTL,
		ungroundedTTL:     defaultUngroundedCacheTTL,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	var err error
	if s.limiter == nil {
		if s.limiter, err = ratelimit.NewLimiter(st); err != nil {
			return nil, err
		}
	}
	if s.ledger == nil {
		if s.ledger, err = budget.NewLedger(st); err != nil {
			return nil, err
		}
	}
	if s.llmCache, err = respcache.New(st, "llm-cache", s.groundedTTL,
		respcache.WithContextPrefix(contextPrefixRunes)); err != nil {
		return nil, err
	}
	if s.freeCache, err = respcache.New(st, "freechat-cache", s.ungroundedTTL); err != nil {
		return nil, err
	}
	return s, nil
}

// Ask answers one question. Validation failures and rate-limit denials come
// back as errors (*Refusal for policy denials); every other degradation
// resolves to a fallback answer instead of an error.
func (s *Service) Ask(ctx context.Context, req Request) (*Response, error) {
	question := strings.TrimSpace(req.Question)
	if err := core.ValidateQuestion(question, s.maxQuestionLength, s.maxEmoji); err != nil {
		return nil, err
	}
	if core.IsInjectionAttempt(question) {
		s.logger.Info("possible prompt injection", "ip", req.ClientIP)
	}

	if allowed, reason := s.limiter.Check(ctx, req.ClientIP, req.Meta); !allowed {
		return nil, &Refusal{Message: reason}
	}

	if answer, ok := smallTalk[strings.ToLower(question)]; ok {
		return &Response{Answer: answer}, nil
	}
	if utf8.RuneCountInString(question) < 4 {
		return &Response{Answer: msgGreeting}, nil
	}

	direct, err := s.engine.DirectAnswer(ctx, question)
	if err != nil {
		return nil, err
	}
	if direct != nil {
		return &Response{
			Answer: direct.Answer,
			Source: direct.Source,
			Score:  direct.Score,
		}, nil
	}

	contextText, err := s.engine.ContextForLLM(ctx, question)
	if err != nil {
		return nil, err
	}
	if contextText == "" {
		return s.freeChat(ctx, question), nil
	}
	return s.summarize(ctx, question, contextText), nil
}

// summarize answers a question grounded in knowledge base context, going
// through the long-TTL cache and the budget gate.
func (s *Service) summarize(ctx context.Context, question, contextText string) *Response {
	if s.completer == nil {
		return s.lexicalFallback(question, msgNoResults)
	}

	if answer, ok := s.llmCache.Get(ctx, question, contextText); ok {
		s.logger.Info("answer served from cache", "path", "summarize")
		return &Response{Answer: answer, UsedLLM: true, Cached: true}
	}

	if s.ledger.Exceeded(ctx) {
		return s.lexicalFallback(question, msgNoRelated)
	}

	system := summarizeSystemPrompt(s.kb.CompanyInfo()["name"])
	user := summarizeUserPrompt(question, contextText)

	start := time.Now()
	cctx, cancel := context.WithTimeout(ctx, s.llmTimeout)
	defer cancel()
	answer, usage, err := s.completer.Complete(cctx, system, user, s.maxTokens, summarizeTemperature)
	if err != nil {
		s.logger.Error("grounded generation failed", "err", err)
		return &Response{Answer: msgApology}
	}

	cost, err := s.ledger.AddCost(ctx, usage)
	if err != nil {
		s.logger.Warn("failed to record generation cost", "err", err)
	}
	s.llmCache.Set(ctx, question, contextText, answer)

	s.logger.Info("answer generated",
		"path", "summarize",
		"input_tokens", usage.InputTokens,
		"output_tokens", usage.OutputTokens,
		"latency", time.Since(start),
		"cost", cost)
	return &Response{Answer: answer, UsedLLM: true}
}

// freeChat answers without grounding context, under the short-TTL cache.
// Unavailable or over-budget generation yields the no-information fallback
// rather than an ungrounded guess.
func (s *Service) freeChat(ctx context.Context, question string) *Response {
	if s.completer == nil || s.ledger.Exceeded(ctx) {
		return &Response{Answer: msgNoRelated}
	}

	if answer, ok := s.freeCache.Get(ctx, question, ""); ok {
		s.logger.Info("answer served from cache", "path", "free_chat")
		return &Response{Answer: answer, UsedLLM: true, Cached: true}
	}

	start := time.Now()
	cctx, cancel := context.WithTimeout(ctx, s.llmTimeout)
	defer cancel()
	answer, usage, err := s.completer.Complete(cctx, freeChatSystemPrompt, question, freeChatMaxTokens, freeChatTemperature)
	if err != nil {
		s.logger.Error("free chat generation failed", "err", err)
		return &Response{Answer: msgApology}
	}

	cost, err := s.ledger.AddCost(ctx, usage)
	if err != nil {
		s.logger.Warn("failed to record generation cost", "err", err)
	}
	s.freeCache.Set(ctx, question, "", answer)

	s.logger.Info("answer generated",
		"path", "free_chat",
		"input_tokens", usage.InputTokens,
		"output_tokens", usage.OutputTokens,
		"latency", time.Since(start),
		"cost", cost)
	return &Response{Answer: answer, UsedLLM: true}
}

// lexicalFallback serves the best lexical hit when generation is off the
// table, or the given message when nothing matches.
func (s *Service) lexicalFallback(question, empty string) *Response {
	results := s.kb.Search(question)
	if len(results) == 0 {
		return &Response{Answer: empty}
	}
	return &Response{
		Answer: results[0].Answer,
		Source: results[0].Question,
		Score:  results[0].Score,
	}
}

// ReloadKnowledge force-reloads the knowledge file and returns the record
// count.
func (s *Service) ReloadKnowledge() (int, error) {
	if err := s.kb.Load(true); err != nil {
		return 0, err
	}
	return len(s.kb.Snapshot().Records), nil
}

// RebuildIndex starts a background index rebuild from a freshly loaded
// knowledge base. Single-flight: a second call while one is running returns
// ErrRebuildInProgress. Searches keep using the previous generation until
// the new one is published. Returns the number of records being indexed.
func (s *Service) RebuildIndex(ctx context.Context) (int, error) {
	if !s.rebuilding.CompareAndSwap(false, true) {
		return 0, ErrRebuildInProgress
	}

	if err := s.kb.Load(true); err != nil {
		s.rebuilding.Store(false)
		return 0, err
	}
	records := s.kb.Snapshot().Records
	if len(records) == 0 {
		s.rebuilding.Store(false)
		return 0, ErrNoKnowledge
	}

	go func() {
		defer s.rebuilding.Store(false)
		// Detached from the request context; the rebuild outlives it.
		if err := s.index.Build(context.Background(), records); err != nil {
			s.logger.Error("index rebuild failed", "err", err)
			return
		}
		s.logger.Info("index rebuild complete", "vectors", s.index.Size())
	}()
	return len(records), nil
}

// StatusFor reports the operational snapshot for one caller.
func (s *Service) StatusFor(ctx context.Context, ip string) Status {
	budgetStatus := s.ledger.StatusNow(ctx)
	available := s.completer != nil
	vw, lw := s.engine.Weights()

	st := Status{
		Rate:          s.limiter.RemainingFor(ctx, ip),
		Budget:        budgetStatus,
		CachedAnswers: s.llmCache.Count(ctx),
		LLMAvailable:  available,
		LLMEnabled:    available && !budgetStatus.Exceeded,
		IndexReady:    s.index.Ready(),
		IndexSize:     s.index.Size(),
		VectorWeight:  vw,
		LexicalWeight: lw,
	}
	if available {
		st.Model = s.chatModel
	}
	return st
}
