// Package mongo holds the MongoDB repositories backing the projection store
// and the reports collection.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// defaultTimeout bounds every repository operation; repositories wrap the
// caller context with it so a stalled replica set cannot block the consumer.
const defaultTimeout = 10 * time.Second

// Config carries the connection settings for the interaction database.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect builds the client, proves connectivity with a ping, and returns the
// client together with the selected database handle. Server selection shares
// the same timeout so an unreachable cluster fails fast at startup instead of
// hanging the first repository call.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, client.Database(cfg.Database), nil
}
