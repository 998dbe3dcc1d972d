package service

import "context"

type dummyEmbedder struct{}

func (d dummyEmbedder) Embed(context.Context, string) ([]float32, error) {
	return make([]float32, 768), nil
}

// NewDummyEmbedder returns an embedder that yields zero vectors. Useful for
// wiring the server without GCP credentials.
func NewDummyEmbedder() Embedder {
	return dummyEmbedder{}
}

type dummyLLM struct{}

func (d dummyLLM) GenerateResponse(context.Context, string, GenerateOptions) (string, error) {
	return "<placeholder answer>", nil
}

// NewDummyLLM returns an LLM that yields a fixed placeholder response.
func NewDummyLLM() LLM {
	return dummyLLM{}
}
