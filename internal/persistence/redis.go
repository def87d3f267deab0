package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	pkgredis "github.com/angelmondragon/scancart-backend/pkg/redis"
)

type redisKV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CartKey(name string) string
}

// RedisStore keeps blobs as plain redis strings without expiry.
type RedisStore struct {
	kv redisKV
}

func NewRedisStore(kv redisKV) (*RedisStore, error) {
	if kv == nil {
		return nil, fmt.Errorf("redis client required")
	}
	return &RedisStore{kv: kv}, nil
}

func (r *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.kv.Get(ctx, r.kv.CartKey(key))
	if errors.Is(err, pkgredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return v, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := r.kv.Set(ctx, r.kv.CartKey(key), value, 0); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
