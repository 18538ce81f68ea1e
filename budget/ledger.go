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


package budget

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/poiesic/faqcore/core"
	"github.com/poiesic/faqcore/store"
)

const (
	defaultDailyCap = 10.0

	// Per-million-token rates for the default generation model.
	defaultInputRate  = 0.15
	defaultOutputRate = 0.60

	keyTTL = 24 * time.Hour
)

// Status is a point-in-time view of today's spend.
type Status struct {
	TodayCost float64
	DailyCap  float64
	Remaining float64
	Exceeded  bool
}

// Ledger accumulates generation cost in the coordination store.
type Ledger struct {
	store  store.Store
	logger *slog.Logger

	dailyCap   float64
	inputRate  float64
	outputRate float64

	now func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) error {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger
		return nil
	}
}

// WithDailyCap sets the daily spend cap in dollars.
func WithDailyCap(dollars float64) Option {
	return func(l *Ledger) error {
		if dollars <= 0 {
			return fmt.Errorf("budget: daily cap must be positive, got %f", dollars)
		}
		l.dailyCap = dollars
		return nil
	}
}

// WithRates sets the per-million-token input and output rates in dollars.
func WithRates(inputRate, outputRate float64) Option {
	return func(l *Ledger) error {
		if inputRate < 0 || outputRate < 0 {
			return fmt.Errorf("budget: rates must be non-negative")
		}
		l.inputRate = inputRate
		l.outputRate = outputRate
		return nil
	}
}

// WithClock overrides the time source used to pick the ledger date.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) error {
		if now == nil {
			return fmt.Errorf("budget: clock must not be nil")
		}
		l.now = now
		return nil
	}
}

// NewLedger creates a ledger over the given coordination store.
func NewLedger(st store.Store, opts ...Option) (*Ledger, error) {
	if st == nil {
		return nil, ErrStoreRequired
	}

	l := &Ledger{
		store:      st,
		logger:     slog.Default().With("component", "budget"),
		dailyCap:   defaultDailyCap,
		inputRate:  defaultInputRate,
		outputRate: defaultOutputRate,
		now:        time.Now,
	}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Cost converts token usage to dollars at the configured rates.
func (l *Ledger) Cost(usage core.Usage) float64 {
	return float64(usage.InputTokens)/1e6*l.inputRate +
		float64(usage.OutputTokens)/1e6*l.outputRate
}

// AddCost converts usage to dollars and adds it to today's counter, stamping
// a 24-hour expiry when the key is first created. Returns the cost added.
func (l *Ledger) AddCost(ctx context.Context, usage core.Usage) (float64, error) {
	cost := l.Cost(usage)
	if cost == 0 {
		return 0, nil
	}

	key := l.todayKey()
	if _, err := l.store.IncrByFloat(ctx, key, cost); err != nil {
		return 0, fmt.Errorf("add cost: %w", err)
	}

	ttl, err := l.store.TTL(ctx, key)
	if err == nil && ttl < 0 {
		if err := l.store.Expire(ctx, key, keyTTL); err != nil {
			l.logger.Warn("failed to set budget key expiry", "key", key, "err", err)
		}
	}
	return cost, nil
}

// TodayCost returns today's accumulated spend. A missing key reads as zero.
func (l *Ledger) TodayCost(ctx context.Context) (float64, error) {
	val, err := l.store.Get(ctx, l.todayKey())
	if errors.Is(err, store.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read budget: %w", err)
	}

	cost, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("parse budget %q: %w", val, err)
	}
	return cost, nil
}

// Exceeded reports whether today's spend has reached the cap. Fails closed:
// any store error reads as exceeded.
func (l *Ledger) Exceeded(ctx context.Context) bool {
	cost, err := l.TodayCost(ctx)
	if err != nil {
		l.logger.Warn("budget check failed, treating as exceeded", "err", err)
		return true
	}
	return cost >= l.dailyCap
}

// StatusNow reports today's spend and headroom. On store error it reports a
// conservative exceeded status.
func (l *Ledger) StatusNow(ctx context.Context) Status {
	cost, err := l.TodayCost(ctx)
	if err != nil {
		l.logger.Warn("budget status unavailable", "err", err)
		return Status{DailyCap: l.dailyCap, Exceeded: true}
	}
	return Status{
		TodayCost: cost,
		DailyCap:  l.dailyCap,
		Remaining: math.Max(0, l.dailyCap-cost),
		Exceeded:  cost >= l.dailyCap,
	}
}

func (l *Ledger) todayKey() string {
	return "budget:" + l.now().Format("2006-01-02")
}
