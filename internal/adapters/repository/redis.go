package repository

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisBlob stores values as Redis strings under a key prefix.
type RedisBlob struct {
	client redis.Cmdable
	prefix string
}

// NewRedisBlob wraps client. The caller owns the client's lifetime.
func NewRedisBlob(client redis.Cmdable, prefix string) *RedisBlob {
	return &RedisBlob{client: client, prefix: prefix}
}

// ConnectRedis builds a client for addr; an empty addr returns nil.
func ConnectRedis(addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func (r *RedisBlob) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return v, err
}

func (r *RedisBlob) Put(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, r.prefix+key, value, 0).Err()
}

func (r *RedisBlob) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}

func (r *RedisBlob) Name() string { return "redis" }
