package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"devcompass/internal/models"
)

func TestSummarize_UsesGeneratedText(t *testing.T) {
	llm := &fakeLLM{reply: "This file implements the widget renderer."}
	s := NewSummarizer(llm)

	got := s.Summarize(context.Background(), "def render():\n    pass", "widget.py", []models.CodeElement{{Name: "render"}}, nil)

	assert.Equal(t, "This file implements the widget renderer.", got)
	assert.Contains(t, llm.lastPrompt(), "widget.py")
	assert.Contains(t, llm.lastPrompt(), "render")
}

func TestSummarize_FallbackOnFailure(t *testing.T) {
	llm := &fakeLLM{fail: true}
	s := NewSummarizer(llm)

	content := strings.Repeat("x", 300)
	got := s.Summarize(context.Background(), content, "big.py", nil, nil)

	assert.Contains(t, got, "big.py")
	assert.Contains(t, got, strings.Repeat("x", 200))
	assert.NotContains(t, got, strings.Repeat("x", 201))
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestSummarize_FallbackIsDeterministic(t *testing.T) {
	llm := &fakeLLM{fail: true}
	s := NewSummarizer(llm)

	first := s.Summarize(context.Background(), "print('hi')", "app.py", nil, nil)
	second := s.Summarize(context.Background(), "print('hi')", "app.py", nil, nil)

	assert.Equal(t, first, second)
}

func TestSummarize_TruncatesPromptInput(t *testing.T) {
	llm := &fakeLLM{}
	s := NewSummarizer(llm)

	// 2000-char cap: the tail of an oversized file never reaches the model.
	content := strings.Repeat("a", 2000) + "TAIL"
	s.Summarize(context.Background(), content, "long.py", nil, nil)

	assert.NotContains(t, llm.lastPrompt(), "TAIL")
	assert.Contains(t, llm.lastPrompt(), strings.Repeat("a", 2000))
}
