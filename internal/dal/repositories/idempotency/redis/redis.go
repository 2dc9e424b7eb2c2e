package redisrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/corray333/storefront-order/internal/dal/interfaces/iidempotencyrepo"
	goredis "github.com/redis/go-redis/v9"
)

const (
	keyPrefix    = "order-svc:idempotency:"
	pendingValue = "pending"
)

// IdempotencyRepository stores create-order idempotency keys in Redis.
type IdempotencyRepository struct {
	rdb *goredis.Client
}

// NewIdempotencyRepository creates a new Redis idempotency repository.
func NewIdempotencyRepository(rdb *goredis.Client) *IdempotencyRepository {
	return &IdempotencyRepository{
		rdb: rdb,
	}
}

// Reserve claims key with SET NX. An existing key yields its order id or ErrInProgress.
func (r *IdempotencyRepository) Reserve(ctx context.Context, key string, ttl time.Duration) (string, error) {
	ok, err := r.rdb.SetNX(ctx, keyPrefix+key, pendingValue, ttl).Result()
	if err != nil {
		return "", fmt.Errorf("failed to reserve idempotency key: %w", err)
	}
	if ok {
		return "", nil
	}

	value, err := r.rdb.Get(ctx, keyPrefix+key).Result()
	if errors.Is(err, goredis.Nil) {
		// expired between SETNX and GET, try once more
		return r.Reserve(ctx, key, ttl)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read idempotency key: %w", err)
	}

	if value == pendingValue {
		return "", iidempotencyrepo.ErrInProgress
	}

	return value, nil
}

// Complete binds the key to the created order.
func (r *IdempotencyRepository) Complete(ctx context.Context, key, orderID string, ttl time.Duration) error {
	if err := r.rdb.Set(ctx, keyPrefix+key, orderID, ttl).Err(); err != nil {
		return fmt.Errorf("failed to complete idempotency key: %w", err)
	}

	return nil
}

// Release frees the key after a failed create so the client may retry.
func (r *IdempotencyRepository) Release(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}

	return nil
}
