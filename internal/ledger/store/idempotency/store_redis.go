package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"mintbank/internal/ledger/models"
	"mintbank/pkg/platform/sentinel"
)

// keyPrefix namespaces idempotency records in a shared Redis instance.
const keyPrefix = "mintbank:idem:"

// RedisStore retains receipts in Redis with a TTL, so deduplication survives
// process restarts and is shared across engine replicas.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis constructs a Redis-backed idempotency store.
func NewRedis(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

// Get returns the receipt recorded under key, or sentinel.ErrNotFound.
func (s *RedisStore) Get(ctx context.Context, key string) (*models.Receipt, error) {
	raw, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get idempotency record: %w", errors.Join(sentinel.ErrUnavailable, err))
	}
	var receipt models.Receipt
	if err := json.Unmarshal(raw, &receipt); err != nil {
		return nil, fmt.Errorf("decode idempotency record: %w", err)
	}
	return &receipt, nil
}

// Put records a committed receipt under key. SetNX keeps the first commit's
// receipt authoritative if two writers race on the same key.
func (s *RedisStore) Put(ctx context.Context, key string, receipt *models.Receipt) error {
	raw, err := json.Marshal(receipt)
	if err != nil {
		return fmt.Errorf("encode idempotency record: %w", err)
	}
	if err := s.client.SetNX(ctx, keyPrefix+key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("put idempotency record: %w", errors.Join(sentinel.ErrUnavailable, err))
	}
	return nil
}
