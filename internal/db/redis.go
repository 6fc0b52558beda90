package db

import (
	"context"
	"errors"
	"strings"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores each record as a plain string key under a prefix.
type RedisBackend struct {
	client *redis.Client
	prefix string
}

// NewRedisBackend connects to redisURL and verifies the connection.
func NewRedisBackend(ctx context.Context, redisURL, prefix string) (*RedisBackend, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &RedisBackend{client: client, prefix: prefix}, nil
}

// recordKey returns the namespaced key for a record.
func (r *RedisBackend) recordKey(key string) string {
	return r.prefix + key
}

func (r *RedisBackend) Read(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, r.recordKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (r *RedisBackend) Write(ctx context.Context, key, value string) error {
	err := r.client.Set(ctx, r.recordKey(key), value, 0).Err()
	// maxmemory with noeviction policy rejects writes with an OOM error
	if err != nil && strings.HasPrefix(err.Error(), "OOM") {
		return errors.Join(ErrQuotaExceeded, err)
	}
	return err
}

func (r *RedisBackend) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.recordKey(key)).Err()
}

func (r *RedisBackend) Close(context.Context) error {
	return r.client.Close()
}
