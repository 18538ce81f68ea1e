package ai

import (
	"context"

	"github.com/poiesic/faqcore/core"
)

// Embedder generates vector embeddings from text for semantic similarity
// search. Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The embedding dimension is provider/model-determined.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in
	// one provider call. The returned slice matches the input order.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Completer generates an answer from a system and user prompt.
// Implementations must be thread-safe for concurrent use.
type Completer interface {
	// Complete invokes the generation provider and returns the answer text
	// along with the token usage that feeds budget accounting.
	Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, core.Usage, error)
}

// Provider aggregates the AI services for convenient initialization and
// lifecycle management.
type Provider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Completer returns the text generation service.
	Completer() Completer

	// Close releases resources held by the provider and its services.
	Close() error
}
