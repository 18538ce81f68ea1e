package openai

import (
	"context"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/poiesic/faqcore/ai"
	"github.com/poiesic/faqcore/core"
)

// Completer implements ai.Completer using OpenAI-compatible chat APIs.
type Completer struct {
	client llms.Model
	logger *slog.Logger
}

// newCompleter is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newCompleter(config *ai.Config) (*Completer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	clientOpts := []openai.Option{
		openai.WithToken(config.Token),
		openai.WithModel(config.ChatModel),
	}
	if config.Host != "" {
		clientOpts = append(clientOpts, openai.WithBaseURL(config.Host))
	}
	client, err := openai.New(clientOpts...)
	if err != nil {
		return nil, err
	}

	return &Completer{
		client: client,
		logger: slog.Default().With("component", "openai-completer"),
	}, nil
}

// NewCompleter creates a new completer using the provided configuration.
//
// Returns ai.Completer interface to enforce abstraction.
func NewCompleter(config *ai.Config) (ai.Completer, error) {
	return newCompleter(config)
}

// Complete sends the prompts to the chat model and returns the answer text
// with its token usage.
func (c *Completer) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, core.Usage, error) {
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(systemPrompt),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(userPrompt),
			},
		},
	}

	response, err := c.client.GenerateContent(ctx, content,
		llms.WithMaxTokens(maxTokens),
		llms.WithTemperature(temperature),
	)
	if err != nil {
		c.logger.Error("failed to generate content", "err", err)
		return "", core.Usage{}, err
	}

	if len(response.Choices) < 1 {
		c.logger.Warn("no choices returned from model")
		return "", core.Usage{}, ErrNoChoices
	}

	choice := response.Choices[0]
	return strings.TrimSpace(choice.Content), usageFromInfo(choice.GenerationInfo), nil
}

// usageFromInfo extracts token counts from the generation metadata reported
// by langchaingo's OpenAI backend.
func usageFromInfo(info map[string]any) core.Usage {
	var usage core.Usage
	if v, ok := info["PromptTokens"].(int); ok {
		usage.InputTokens = v
	}
	if v, ok := info["CompletionTokens"].(int); ok {
		usage.OutputTokens = v
	}
	return usage
}
