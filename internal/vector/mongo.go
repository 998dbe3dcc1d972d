package vector

import (
	"context"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore keeps one Mongo collection per repository collection name, each
// carrying an Atlas Vector Search index over the "embedding" field.
type MongoStore struct {
	db        *mongo.Database
	embedder  Embedder
	vectorIdx string
}

// storedDoc is the persisted shape: the document plus its embedding.
type storedDoc struct {
	ID        string         `bson:"_id"`
	Text      string         `bson:"text"`
	Metadata  map[string]any `bson:"metadata"`
	Embedding []float32      `bson:"embedding"`
}

// NewMongoStore wires the database handle and the embedder used for both
// document and query embeddings.
func NewMongoStore(db *mongo.Database, embedder Embedder) *MongoStore {
	return &MongoStore{
		db:        db,
		embedder:  embedder,
		vectorIdx: "vector_index",
	}
}

// Add embeds and upserts each document, keyed by its stable ID.
func (s *MongoStore) Add(ctx context.Context, collection string, docs []Document) error {
	col := s.db.Collection(collection)
	for _, doc := range docs {
		vec, err := s.embedder.Embed(ctx, doc.Text)
		if err != nil {
			return fmt.Errorf("embed %s: %w", doc.ID, err)
		}
		_, err = col.ReplaceOne(
			ctx,
			bson.M{"_id": doc.ID},
			storedDoc{ID: doc.ID, Text: doc.Text, Metadata: doc.Metadata, Embedding: vec},
			options.Replace().SetUpsert(true),
		)
		if err != nil {
			return fmt.Errorf("upsert %s: %w", doc.ID, err)
		}
	}
	return nil
}

// Query performs a K‑NN search over the collection's embeddings.
func (s *MongoStore) Query(ctx context.Context, collection, question string, k int) ([]Document, error) {
	queryVec, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$vectorSearch", Value: bson.D{
			{Key: "index", Value: s.vectorIdx},
			{Key: "queryVector", Value: queryVec},
			{Key: "path", Value: "embedding"},
			{Key: "numCandidates", Value: k * 10},
			{Key: "limit", Value: k},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "text", Value: 1},
			{Key: "metadata", Value: 1},
			{Key: "score", Value: bson.M{"$meta": "vectorSearchScore"}},
		}}},
	}

	cur, err := s.db.Collection(collection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []Document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// Dump returns all documents in the collection, embeddings omitted.
func (s *MongoStore) Dump(ctx context.Context, collection string) ([]Document, error) {
	cur, err := s.db.Collection(collection).Find(
		ctx,
		bson.M{},
		options.Find().SetProjection(bson.M{"embedding": 0}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []Document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// DeleteCollection drops the collection. Dropping a collection that does
// not exist is a no-op in Mongo, which matches the soft-fail contract.
func (s *MongoStore) DeleteCollection(ctx context.Context, collection string) error {
	if err := s.db.Collection(collection).Drop(ctx); err != nil {
		log.Printf("[VectorStore] could not drop collection %q: %v", collection, err)
		return nil
	}
	return nil
}
