package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/uniedit/fintoc-gateway/internal/port/outbound"
)

const lockSuffix = ":lock"

// idempotencyStore implements outbound.IdempotencyStorePort.
type idempotencyStore struct {
	client redis.UniversalClient
}

// NewIdempotencyStore creates a Redis idempotency store.
func NewIdempotencyStore(client redis.UniversalClient) outbound.IdempotencyStorePort {
	return &idempotencyStore{client: client}
}

func (s *idempotencyStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get idempotency entry: %w", err)
	}
	return data, nil
}

func (s *idempotencyStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("set idempotency entry: %w", err)
	}
	return nil
}

func (s *idempotencyStore) Lock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, key+lockSuffix, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire idempotency lock: %w", err)
	}
	return ok, nil
}

func (s *idempotencyStore) Unlock(ctx context.Context, key string) error {
	return s.client.Del(ctx, key+lockSuffix).Err()
}

// Compile-time check
var _ outbound.IdempotencyStorePort = (*idempotencyStore)(nil)
