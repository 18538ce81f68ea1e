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


package respcache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/faqcore/core"
	"github.com/poiesic/faqcore/store"
)

// Cache is a best-effort answer cache keyed by question content, optionally
// mixed with a prefix of the grounding context.
type Cache struct {
	store  store.Store
	prefix string
	ttl    time.Duration
	logger *slog.Logger

	// contextPrefixRunes bounds how much grounding context participates in
	// the key. Zero disables context keying entirely.
	contextPrefixRunes int
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

// WithContextPrefix sets how many leading runes of the grounding context are
// mixed into the key.
func WithContextPrefix(runes int) Option {
	return func(c *Cache) error {
		if runes < 0 {
			return fmt.Errorf("respcache: context prefix must be non-negative, got %d", runes)
		}
		c.contextPrefixRunes = runes
		return nil
	}
}

// New creates a cache writing keys under the given prefix with the given
// TTL. A nil store yields a cache that always misses.
func New(st store.Store, prefix string, ttl time.Duration, opts ...Option) (*Cache, error) {
	if prefix == "" {
		return nil, ErrPrefixRequired
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("respcache: ttl must be positive, got %s", ttl)
	}

	c := &Cache{
		store:  st,
		prefix: prefix,
		ttl:    ttl,
		logger: slog.Default().With("component", "respcache", "cache", prefix),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Get returns the cached answer for the question/context pair. Any store
// failure reads as a miss.
func (c *Cache) Get(ctx context.Context, question, contextText string) (string, bool) {
	if c.store == nil {
		return "", false
	}

	answer, err := c.store.Get(ctx, c.key(question, contextText))
	if err != nil {
		return "", false
	}
	return answer, true
}

// Set stores the answer. Best effort; failures are logged and swallowed.
func (c *Cache) Set(ctx context.Context, question, contextText, answer string) {
	if c.store == nil {
		return
	}

	if err := c.store.Set(ctx, c.key(question, contextText), answer, c.ttl); err != nil {
		c.logger.Warn("cache write failed", "err", err)
	}
}

// Count returns the number of live entries, for status reporting. Zero on
// store error.
func (c *Cache) Count(ctx context.Context) int {
	if c.store == nil {
		return 0
	}

	n, err := c.store.CountKeys(ctx, c.prefix+":*")
	if err != nil {
		return 0
	}
	return n
}

func (c *Cache) key(question, contextText string) string {
	material := core.Normalize(question)
	if c.contextPrefixRunes > 0 && contextText != "" {
		material += "|" + core.Normalize(truncateRunes(contextText, c.contextPrefixRunes))
	}
	return c.prefix + ":" + core.KeyFromContent(material)
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
