package service

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/option"
)

// VertexLLM implements the LLM interface using Google's Vertex AI.
type VertexLLM struct {
	client    *genai.Client
	modelName string
}

// NewVertexLLM creates a new Vertex AI LLM client.
func NewVertexLLM(projectID, location, modelName string) (*VertexLLM, error) {
	ctx := context.Background()

	// Get credentials from environment or service account file
	var opts []option.ClientOption
	if creds := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); creds != "" {
		opts = append(opts, option.WithCredentialsFile(creds))
	}

	client, err := genai.NewClient(ctx, projectID, location, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vertex AI client: %w", err)
	}

	if modelName == "" {
		modelName = "gemini-2.0-flash-lite-001"
	}

	return &VertexLLM{
		client:    client,
		modelName: modelName,
	}, nil
}

// GenerateResponse generates a response using the Vertex AI model, bounded
// by the caller's token and temperature options.
func (l *VertexLLM) GenerateResponse(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	model := l.client.GenerativeModel(l.modelName)
	if opts.MaxTokens > 0 {
		model.SetMaxOutputTokens(opts.MaxTokens)
	}
	model.SetTemperature(opts.Temperature)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response generated")
	}

	// Convert the response to string
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response type")
	}
	return string(text), nil
}

// Close closes the Vertex AI client.
func (l *VertexLLM) Close() error {
	return l.client.Close()
}
