package service

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
)

// fakeLLM counts calls, records prompts and can be switched into a failure
// mode; the reply can be a fixed string or derived from the prompt.
type fakeLLM struct {
	mu      sync.Mutex
	calls   int
	prompts []string
	fail    bool
	reply   string
}

func (f *fakeLLM) GenerateResponse(_ context.Context, prompt string, _ GenerateOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if f.fail {
		return "", errors.New("generative backend unavailable")
	}
	if f.reply != "" {
		return f.reply, nil
	}
	return "generated text", nil
}

func (f *fakeLLM) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeLLM) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

func (f *fakeLLM) setFail(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = fail
}

// fakeEmbedder hashes text into a small deterministic vector so similarity
// ordering is stable across runs.
type fakeEmbedder struct{}

func (fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, 8)
	for i := range vec {
		h := fnv.New32a()
		h.Write([]byte{byte(i)})
		h.Write([]byte(text))
		vec[i] = float32(h.Sum32()%1000) / 1000
	}
	return vec, nil
}
