package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/pkg/database"
)

// RedisKV stores each collection as a string key. Reads and writes both
// refresh the TTL, so state expires only after ttl of inactivity.
type RedisKV struct {
	client *redis.Client
	ttl    time.Duration
	tracer database.QueryTracer
}

// NewRedisKV creates a Redis-backed substrate.
func NewRedisKV(client *redis.Client, ttl time.Duration, tracer database.QueryTracer) *RedisKV {
	tracer.System = "redis"
	return &RedisKV{client: client, ttl: ttl, tracer: tracer}
}

func (r *RedisKV) Get(ctx context.Context, key string) (data []byte, err error) {
	ctx, end := r.tracer.Start(ctx, "Get", "GETEX "+key)
	defer func() { end(err) }()

	data, err = r.client.GetEx(ctx, key, r.ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, notFound(key)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, nil
}

func (r *RedisKV) Set(ctx context.Context, key string, value []byte) (err error) {
	ctx, end := r.tracer.Start(ctx, "Set", "SET "+key)
	defer func() { end(err) }()

	if err = r.client.Set(ctx, key, value, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *RedisKV) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
