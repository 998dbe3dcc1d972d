package service

import (
	"context"
	"fmt"

	aiplatform "cloud.google.com/go/aiplatform/apiv1"
	"cloud.google.com/go/aiplatform/apiv1/aiplatformpb"
	"google.golang.org/protobuf/types/known/structpb"
)

// VertexEmbedder uses Google's text-embedding-005 model to generate embeddings.
type VertexEmbedder struct {
	client    *aiplatform.PredictionClient
	modelName string
}

// NewVertexEmbedder creates a new embedder backed by the Vertex AI
// prediction endpoint for the configured project and location.
func NewVertexEmbedder(projectID, location string) (*VertexEmbedder, error) {
	ctx := context.Background()

	client, err := aiplatform.NewPredictionClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vertex AI client: %w", err)
	}

	if location == "" {
		location = "us-central1"
	}
	modelName := fmt.Sprintf("projects/%s/locations/%s/publishers/google/models/text-embedding-005", projectID, location)

	return &VertexEmbedder{
		client:    client,
		modelName: modelName,
	}, nil
}

// Embed generates a 768‑dimensional embedding vector for the input text
// using task_type = "RETRIEVAL_QUERY" so it aligns with document embeddings.
func (v *VertexEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	// Create instance with content and explicit task type for semantic search
	instance, err := structpb.NewStruct(map[string]interface{}{
		"content":   text,
		"task_type": "RETRIEVAL_QUERY",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create instance: %w", err)
	}

	// Create prediction request
	req := &aiplatformpb.PredictRequest{
		Endpoint:  v.modelName,
		Instances: []*structpb.Value{structpb.NewStructValue(instance)},
	}

	// Get prediction
	resp, err := v.client.Predict(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}

	// Extract embeddings from response
	if len(resp.Predictions) == 0 {
		return nil, fmt.Errorf("no predictions returned")
	}

	prediction := resp.Predictions[0].GetStructValue()
	embeddings := prediction.GetFields()["embeddings"].GetStructValue()
	values := embeddings.GetFields()["values"].GetListValue().GetValues()

	// Convert to float32 slice
	result := make([]float32, len(values))
	for i, v := range values {
		result[i] = float32(v.GetNumberValue())
	}

	return result, nil
}

// Close releases the Vertex AI client resources.
func (v *VertexEmbedder) Close() error {
	return v.client.Close()
}
