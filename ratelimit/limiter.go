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


package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/poiesic/faqcore/core"
	"github.com/poiesic/faqcore/store"
)

// Denial reasons shown to the caller. Deliberately vague about which layer
// tripped.
const (
	ReasonMinute      = "Please wait a moment and try again."
	ReasonDay         = "Daily limit reached. Please try again tomorrow."
	ReasonBusy        = "Service is busy. Please try again shortly."
	ReasonUnavailable = "Service temporarily unavailable."
)

const (
	defaultPerMinute       = 20
	defaultPerDay          = 100
	defaultGlobalPerMinute = 200

	minuteWindow = time.Minute
	dayWindow    = 24 * time.Hour
)

// Meta carries the client-supplied headers used for fingerprinting. A
// zero-value Meta disables the fingerprint layer for that request.
type Meta struct {
	UserAgent      string
	AcceptLanguage string
}

// Remaining is the per-window headroom for one caller.
type Remaining struct {
	MinuteUsed int
	MinuteMax  int
	DayUsed    int
	DayMax     int
}

// Limiter applies layered fixed-window limits.
type Limiter struct {
	store  store.Store
	logger *slog.Logger

	perMinute       int
	perDay          int
	globalPerMinute int

	now func() time.Time
}

// Option configures a Limiter.
type Option func(*Limiter) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Limiter) error {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger
		return nil
	}
}

// WithLimits sets the per-address minute and day limits and the global
// minute limit.
func WithLimits(perMinute, perDay, globalPerMinute int) Option {
	return func(l *Limiter) error {
		if perMinute < 1 || perDay < 1 || globalPerMinute < 1 {
			return fmt.Errorf("ratelimit: limits must be positive")
		}
		l.perMinute = perMinute
		l.perDay = perDay
		l.globalPerMinute = globalPerMinute
		return nil
	}
}

// WithClock overrides the time source. Used by tests to cross window
// boundaries deterministically.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) error {
		if now == nil {
			return fmt.Errorf("ratelimit: clock must not be nil")
		}
		l.now = now
		return nil
	}
}

// NewLimiter creates a limiter over the given coordination store.
func NewLimiter(st store.Store, opts ...Option) (*Limiter, error) {
	if st == nil {
		return nil, ErrStoreRequired
	}

	l := &Limiter{
		store:           st,
		logger:          slog.Default().With("component", "ratelimit"),
		perMinute:       defaultPerMinute,
		perDay:          defaultPerDay,
		globalPerMinute: defaultGlobalPerMinute,
		now:             time.Now,
	}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Fingerprint derives a short stable identifier from client-supplied
// headers. Secondary signal only; it catches address rotation, nothing more.
func Fingerprint(m Meta) string {
	return core.KeyFromContent(m.UserAgent + ":" + m.AcceptLanguage)[:12]
}

// Check applies all layers in order and returns whether the request is
// allowed, with a caller-facing reason on denial. Each layer increments its
// counter before comparing, so the request that crosses a limit is itself
// denied. Store failures deny.
func (l *Limiter) Check(ctx context.Context, ip string, meta Meta) (bool, string) {
	layers := []struct {
		scope    string
		identity string
		window   time.Duration
		limit    int
		reason   string
	}{
		{"ip-minute", ip, minuteWindow, l.perMinute, ReasonMinute},
		{"ip-day", ip, dayWindow, l.perDay, ReasonDay},
		{"fingerprint-minute", "", minuteWindow, 2 * l.perMinute, ReasonMinute},
		{"global-minute", "global", minuteWindow, l.globalPerMinute, ReasonBusy},
	}
	if meta != (Meta{}) {
		layers[2].identity = Fingerprint(meta)
	}

	for _, layer := range layers {
		if layer.identity == "" {
			continue
		}
		count, err := l.bump(ctx, layer.scope, layer.identity, layer.window)
		if err != nil {
			l.logger.Warn("rate limit check failed, denying", "scope", layer.scope, "err", err)
			return false, ReasonUnavailable
		}
		if count > int64(layer.limit) {
			l.logger.Info("rate limit exceeded",
				"scope", layer.scope, "identity", layer.identity, "count", count, "limit", layer.limit)
			return false, layer.reason
		}
	}
	return true, ""
}

// RemainingFor reports the caller's used/max counts per window. Display
// only: on store error it reports zero used rather than failing.
func (l *Limiter) RemainingFor(ctx context.Context, ip string) Remaining {
	r := Remaining{MinuteMax: l.perMinute, DayMax: l.perDay}
	r.MinuteUsed = l.peek(ctx, "ip-minute", ip, minuteWindow)
	r.DayUsed = l.peek(ctx, "ip-day", ip, dayWindow)
	return r
}

// bump increments a window counter, stamping the window's expiry on the
// first increment so abandoned windows clean themselves up.
func (l *Limiter) bump(ctx context.Context, scope, identity string, window time.Duration) (int64, error) {
	key := l.key(scope, identity, window)
	count, err := l.store.Incr(ctx, key)
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := l.store.Expire(ctx, key, window); err != nil {
			return 0, err
		}
	}
	return count, nil
}

func (l *Limiter) peek(ctx context.Context, scope, identity string, window time.Duration) int {
	val, err := l.store.Get(ctx, l.key(scope, identity, window))
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return n
}

func (l *Limiter) key(scope, identity string, window time.Duration) string {
	windowIndex := l.now().Unix() / int64(window/time.Second)
	return fmt.Sprintf("ratelimit:%s:%s:%d", scope, identity, windowIndex)
}
