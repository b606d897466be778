package store

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

var ErrMiss = errors.New("cache miss")

// KV is the shared cache used by the scan gatekeeper. It is mutated only
// through two key patterns: "ratelimit:<origin>" windowed counters and
// "dedup:<origin>:<vehicle>" presence flags.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	// SetIfAbsent marks key atomically; returns false when it already
	// existed. The check-and-mark must be a single cache operation: a plain
	// get-then-set would let two concurrent scans both pass.
	SetIfAbsent(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
	// IncrWindow increments a fixed-window counter, starting the window on
	// the first increment.
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}

type RedisKV struct {
	c *redis.Client
}

func NewRedisKV(c *redis.Client) *RedisKV { return &RedisKV{c: c} }

func (r *RedisKV) Get(ctx context.Context, key string) (string, error) {
	val, err := r.c.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", ErrMiss
		}
		return "", err
	}
	return val, nil
}

func (r *RedisKV) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.c.Set(ctx, key, value, ttl).Err()
}

func (r *RedisKV) SetIfAbsent(ctx context.Context, key string, value string, ttl time.Duration) (bool, error) {
	return r.c.SetNX(ctx, key, value, ttl).Result()
}

func (r *RedisKV) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	n, err := r.c.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	// First hit in the window owns setting the expiry.
	if n == 1 {
		if err := r.c.Expire(ctx, key, window).Err(); err != nil {
			return n, err
		}
	}
	return n, nil
}
