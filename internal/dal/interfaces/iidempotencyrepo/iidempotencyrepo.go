package iidempotencyrepo

import (
	"context"
	"errors"
	"time"
)

// ErrInProgress means another request holds the key and has not finished yet.
var ErrInProgress = errors.New("idempotency key is in progress")

// IIdempotencyRepository remembers which order a create request produced.
type IIdempotencyRepository interface {
	// Reserve claims the key. It returns the stored order id when the key was
	// already completed, ErrInProgress when it is still pending, or "" when the
	// caller now owns the key.
	Reserve(ctx context.Context, key string, ttl time.Duration) (string, error)
	Complete(ctx context.Context, key, orderID string, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}
