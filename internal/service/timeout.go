package service

import (
	"context"
	"time"
)

// boundedLLM enforces a per-call deadline on the wrapped backend so a
// stalled generative call surfaces as a context error instead of blocking
// its caller indefinitely.
type boundedLLM struct {
	llm     LLM
	timeout time.Duration
}

// NewBoundedLLM wraps llm so every GenerateResponse call carries a deadline.
// A non-positive timeout returns llm unchanged.
func NewBoundedLLM(llm LLM, timeout time.Duration) LLM {
	if timeout <= 0 {
		return llm
	}
	return &boundedLLM{llm: llm, timeout: timeout}
}

func (b *boundedLLM) GenerateResponse(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	return b.llm.GenerateResponse(ctx, prompt, opts)
}

// boundedEmbedder is the same deadline guard for the embedding backend.
type boundedEmbedder struct {
	embedder Embedder
	timeout  time.Duration
}

// NewBoundedEmbedder wraps embedder so every Embed call carries a deadline.
// A non-positive timeout returns embedder unchanged.
func NewBoundedEmbedder(embedder Embedder, timeout time.Duration) Embedder {
	if timeout <= 0 {
		return embedder
	}
	return &boundedEmbedder{embedder: embedder, timeout: timeout}
}

func (b *boundedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	return b.embedder.Embed(ctx, text)
}
