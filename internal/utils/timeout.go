package utils

import (
	"context"
	"time"
)

// StorageTimeout bounds a single repository call against Postgres or Mongo.
const StorageTimeout = 5 * time.Second

func WithDBTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < StorageTimeout {
		// the caller's deadline is already tighter
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, StorageTimeout)
}
