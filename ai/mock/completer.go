package mock

import (
	"context"
	"sync"

	"github.com/poiesic/faqcore/core"
)

// MockCompleter is a test double for ai.Completer.
// It allows custom behavior injection via a function field.
type MockCompleter struct {
	// CompleteFunc is called by Complete if set.
	// If nil, returns a canned answer with fixed usage.
	CompleteFunc func(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, core.Usage, error)

	mu        sync.Mutex
	callCount int
}

// NewMockCompleter creates a mock completer with default canned behavior.
// Note: Returns concrete type to allow test assertions on call counts.
func NewMockCompleter() *MockCompleter {
	return &MockCompleter{}
}

// Complete returns a canned answer unless CompleteFunc is set.
func (m *MockCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, core.Usage, error) {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, systemPrompt, userPrompt, maxTokens, temperature)
	}

	return "mock answer", core.Usage{InputTokens: 100, OutputTokens: 50}, nil
}

// CallCount returns the number of times Complete was called.
func (m *MockCompleter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}
