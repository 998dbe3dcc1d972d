package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"devcompass/internal/models"
)

const (
	// summaryInputLimit caps how much file content is embedded in the
	// generative request; truncation is silent.
	summaryInputLimit = 2000

	// fallbackPreviewLimit is how much raw content the deterministic
	// fallback summary carries.
	fallbackPreviewLimit = 200
)

// Summarizer produces a natural-language description of one source file.
type Summarizer struct {
	llm LLM
}

// NewSummarizer wires the generative backend.
func NewSummarizer(llm LLM) *Summarizer {
	return &Summarizer{llm: llm}
}

// Summarize describes the file in natural language. It never fails: any
// error from the generative call degrades to a deterministic raw-content
// preview embedding the file path.
func (s *Summarizer) Summarize(ctx context.Context, content, filePath string, functions, classes []models.CodeElement) string {
	prompt := fmt.Sprintf(`Analyze this code file and provide a comprehensive summary:

File: %s

Functions found: %s
Classes found: %s

Code:
`+"```"+`
%s
`+"```"+`

Please provide:
1. A brief description of what this file does
2. Key functions and their purposes
3. Key classes and their purposes
4. Dependencies and imports
5. Overall architecture/design patterns used

Keep the summary concise but informative.`,
		filePath,
		elementNames(functions),
		elementNames(classes),
		truncate(content, summaryInputLimit))

	summary, err := s.llm.GenerateResponse(ctx, prompt, GenerateOptions{
		MaxTokens:   1000,
		Temperature: 0.3,
	})
	if err != nil {
		log.Printf("[Summarizer] generation failed for %s: %v", filePath, err)
		return fmt.Sprintf("File: %s\nContent preview: %s...", filePath, truncate(content, fallbackPreviewLimit))
	}
	return summary
}

// elementNames joins the names of extracted declarations.
func elementNames(elements []models.CodeElement) string {
	names := make([]string, len(elements))
	for i, e := range elements {
		names[i] = e.Name
	}
	return strings.Join(names, ", ")
}

// truncate keeps the first n bytes of s.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
