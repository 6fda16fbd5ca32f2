package db

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// Operation is a single store write. It must regenerate any client-side id on each call.
type Operation func() error

// RetryPredicate decides whether a failed Operation may be attempted again.
type RetryPredicate func(err error) bool

const DefaultMaxRetries = 3

// Try runs an insert, retrying only on duplicate key errors (an ObjectID collision or a
// duplicate _id supplied by the caller). Any other error is returned immediately.
func Try(ctx context.Context, op Operation) error {
	return WithRetries(ctx, op, DefaultMaxRetries, IsMongoDuplicateKeyError)
}

// WithRetries attempts op up to maxRetries+1 times, backing off 50ms * attempt between tries.
func WithRetries(ctx context.Context, op Operation, maxRetries int, retryable RetryPredicate) error {
	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if attempt == maxRetries || !retryable(err) {
			return err
		}

		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-time.After(time.Duration(50*(attempt+1)) * time.Millisecond):
		}
	}
	return err
}

// IsMongoDuplicateKeyError checks if an error from MongoDB is a duplicate key error (code 11000).
func IsMongoDuplicateKeyError(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
