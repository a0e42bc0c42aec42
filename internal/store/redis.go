package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces task store keys inside a shared Redis database.
const DefaultRedisPrefix = "taskflow:"

// RedisStore implements the Store interface on top of Redis string values.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore wraps client. Keys are stored as prefix+key.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if client == nil {
		panic("store.NewRedisStore: client is nil")
	}
	return &RedisStore{client: client, prefix: prefix}
}

// GetItem loads the value stored under key into dst.
func (s *RedisStore) GetItem(ctx context.Context, key string, dst any) (bool, error) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("%w: get %s: %v", ErrPersistence, key, err)
	}

	if err := decodeValue(key, data, dst); err != nil {
		return false, err
	}

	return true, nil
}

// SetItem stores value under key without expiry.
func (s *RedisStore) SetItem(ctx context.Context, key string, value any) error {
	data, err := encodeValue(key, value)
	if err != nil {
		return err
	}

	if err := s.client.Set(ctx, s.prefix+key, data, 0).Err(); err != nil {
		return fmt.Errorf("%w: set %s: %v", ErrPersistence, key, err)
	}

	return nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
