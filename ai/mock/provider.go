package mock

import "github.com/poiesic/faqcore/ai"

// MockProvider is a test double for ai.Provider aggregating the mock
// services.
type MockProvider struct {
	MockEmbedder  *MockEmbedder
	MockCompleter *MockCompleter
}

// NewMockProvider creates a provider with default mock services.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		MockEmbedder:  NewMockEmbedder(),
		MockCompleter: NewMockCompleter(),
	}
}

// Embedder returns the mock embedding service.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.MockEmbedder
}

// Completer returns the mock generation service.
func (p *MockProvider) Completer() ai.Completer {
	return p.MockCompleter
}

// Close is a no-op.
func (p *MockProvider) Close() error {
	return nil
}
