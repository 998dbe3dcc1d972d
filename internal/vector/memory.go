package vector

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// MemoryStore is an in-process Store used in tests and local development.
// Collections are plain maps guarded by a RWMutex; similarity is cosine
// distance over the embedder's vectors.
type MemoryStore struct {
	mu          sync.RWMutex
	embedder    Embedder
	collections map[string]map[string]memoryDoc
}

type memoryDoc struct {
	doc Document
	vec []float32
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore(embedder Embedder) *MemoryStore {
	return &MemoryStore{
		embedder:    embedder,
		collections: make(map[string]map[string]memoryDoc),
	}
}

func (s *MemoryStore) Add(ctx context.Context, collection string, docs []Document) error {
	for _, doc := range docs {
		vec, err := s.embedder.Embed(ctx, doc.Text)
		if err != nil {
			return fmt.Errorf("embed %s: %w", doc.ID, err)
		}
		s.mu.Lock()
		col, ok := s.collections[collection]
		if !ok {
			col = make(map[string]memoryDoc)
			s.collections[collection] = col
		}
		col[doc.ID] = memoryDoc{doc: doc, vec: vec}
		s.mu.Unlock()
	}
	return nil
}

func (s *MemoryStore) Query(ctx context.Context, collection, question string, k int) ([]Document, error) {
	queryVec, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	col := s.collections[collection]
	scored := make([]Document, 0, len(col))
	for _, md := range col {
		doc := md.doc
		doc.Score = cosine(queryVec, md.vec)
		scored = append(scored, doc)
	}
	sort.Slice(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

func (s *MemoryStore) Dump(ctx context.Context, collection string) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col := s.collections[collection]
	docs := make([]Document, 0, len(col))
	for _, md := range col {
		docs = append(docs, md.doc)
	}
	// Stable order keeps callers (and tests) deterministic.
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

func (s *MemoryStore) DeleteCollection(ctx context.Context, collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, collection)
	return nil
}

// Count reports how many documents a collection holds. Test helper.
func (s *MemoryStore) Count(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections[collection])
}

// HasCollection reports whether the collection exists. Test helper.
func (s *MemoryStore) HasCollection(collection string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.collections[collection]
	return ok
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
