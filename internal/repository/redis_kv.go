package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces every key written by RedisKVStore.
const DefaultRedisPrefix = "kanbantree:"

// RedisKVStore implements KVStore on plain Redis string keys.
type RedisKVStore struct {
	client redis.Cmdable
	prefix string
}

// NewRedisKVStore creates a store that prefixes every key with prefix.
func NewRedisKVStore(client redis.Cmdable, prefix string) *RedisKVStore {
	return &RedisKVStore{client: client, prefix: prefix}
}

func (s *RedisKVStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", fmt.Errorf("redis key %q: %w", key, ErrNotFound)
		}
		return "", fmt.Errorf("reading redis key %q: %w", key, err)
	}
	return v, nil
}

func (s *RedisKVStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("writing redis key %q: %w", key, err)
	}
	return nil
}

func (s *RedisKVStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("deleting redis key %q: %w", key, err)
	}
	return nil
}
