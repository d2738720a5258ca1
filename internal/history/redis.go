package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/shanehull/filinglens/internal/types"
)

const redisKeyPrefix = "filinglens:annotation:"

// RedisStore is a Store backed by Redis string keys with an optional TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(addr, password string, db int, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db}),
		ttl:    ttl,
	}
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) Get(ctx context.Context, key Key) (types.AnnotationResult, bool, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+key.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return types.AnnotationResult{}, false, nil
	}
	if err != nil {
		return types.AnnotationResult{}, false, fmt.Errorf("redis get: %w", err)
	}

	var result types.AnnotationResult
	if err := json.Unmarshal(data, &result); err != nil {
		return types.AnnotationResult{}, false, fmt.Errorf("failed to unmarshal cached annotation: %w", err)
	}
	return result, true, nil
}

func (s *RedisStore) Put(ctx context.Context, key Key, result types.AnnotationResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal annotation: %w", err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+key.String(), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
