// Package openai implements the ai provider interfaces against
// OpenAI-compatible APIs (OpenAI, Ollama, vLLM, LocalAI) via langchaingo.
package openai
