package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// redisKV stores each key as a plain Redis string, namespaced by prefix.
type redisKV struct {
	client redis.Cmdable
	prefix string
}

// NewRedisKV constructs a KV on top of a Redis client. prefix is prepended to
// every key (e.g. "tripplanner:") so several deployments can share a database.
func NewRedisKV(client redis.Cmdable, prefix string) KV {
	return &redisKV{client: client, prefix: prefix}
}

func (r *redisKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("repo.redisKV.Get: %w", err)
	}
	return b, true, nil
}

func (r *redisKV) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("repo.redisKV.Set: %w", err)
	}
	return nil
}

func (r *redisKV) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("repo.redisKV.Delete: %w", err)
	}
	return nil
}
