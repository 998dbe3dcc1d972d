// Package vector provides the per-repository embedding/retrieval store: a
// named collection per repository, free-text documents with flat metadata,
// similarity queries and raw dumps. Collections never co-mingle.
package vector

import "context"

// Document is the unit stored and retrieved: free text plus a flat metadata
// map (file path, repo URL, repo id, document type). ID is a stable
// composite key so that re-ingesting a repository replaces documents
// instead of appending near-identical duplicates.
type Document struct {
	ID       string         `bson:"_id" json:"id"`
	Text     string         `bson:"text" json:"text"`
	Metadata map[string]any `bson:"metadata" json:"metadata"`
	Score    float64        `bson:"score,omitempty" json:"score,omitempty"`
}

// Embedder converts text into an embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Store is the embedding/retrieval store, scoped by collection name.
type Store interface {
	// Add embeds each document's text and upserts it (keyed by Document.ID)
	// into the named collection.
	Add(ctx context.Context, collection string, docs []Document) error

	// Query returns the k stored documents most similar to question,
	// restricted to the named collection.
	Query(ctx context.Context, collection, question string, k int) ([]Document, error)

	// Dump returns every document in the collection without ranking; used
	// by callers that need the whole corpus rather than a relevant subset.
	Dump(ctx context.Context, collection string) ([]Document, error)

	// DeleteCollection removes all documents for a collection. A missing
	// collection is not an error: the durable repository record, not the
	// vector store, is the authoritative existence check.
	DeleteCollection(ctx context.Context, collection string) error
}
