package service

import "context"

// GenerateOptions bounds a single generative call.
type GenerateOptions struct {
	MaxTokens   int32
	Temperature float32
}

// LLM defines the interface for language model interactions. Call sites are
// expected to catch failures and substitute a deterministic fallback rather
// than propagate them.
type LLM interface {
	GenerateResponse(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

// Embedder converts text into a vector embedding. It mirrors
// vector.Embedder so any implementation can back the vector store directly.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
