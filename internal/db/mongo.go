// Package db owns the MongoDB client for the process. Connection setup is
// memoized so concurrent callers during warm-up share a single dial
// instead of racing to create duplicate clients.
package db

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var (
	once       sync.Once
	client     *mongo.Client
	connectErr error
)

// Connect dials MongoDB exactly once per process and returns the shared
// client on every subsequent call, including the original error if the
// first attempt failed.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	once.Do(func() {
		c, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
		if err != nil {
			connectErr = fmt.Errorf("mongo connect: %w", err)
			return
		}
		if err := c.Ping(ctx, readpref.Primary()); err != nil {
			connectErr = fmt.Errorf("mongo ping: %w", err)
			return
		}
		client = c
	})
	return client, connectErr
}

// Disconnect closes the shared client. Safe to call when Connect failed.
func Disconnect(ctx context.Context) error {
	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}
