package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NewMongo connects to the deployment that backs the vector store and
// verifies it with a ping. timeout bounds connection establishment and
// server selection; the returned context and cancel func carry the same
// deadline for the caller's deferred Disconnect.
func NewMongo(uri string, timeout time.Duration) (*mongo.Client, context.Context, context.CancelFunc, error) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	clientOpts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, ctx, cancel, err
	}

	// A ping catches bad URIs and unreachable deployments at startup,
	// before the first collection write would.
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, ctx, cancel, err
	}

	return client, ctx, cancel, nil
}
