package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "primefit:session:"

// Redis stores each session as a hash whose expiry is pushed back on every
// access.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis creates a Redis storage from a redis:// URL. ttl <= 0 means DefaultTTL.
// PRE: url is a valid Redis URL
// POST: Returns a storage whose client has not been pinged
func NewRedis(url string, ttl time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return NewRedisWithClient(redis.NewClient(opts), ttl), nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, ttl: ttl}
}

// Ping checks connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Get returns a value from the session hash and refreshes its expiry.
func (r *Redis) Get(ctx context.Context, sessionID, key string) (string, bool, error) {
	k := redisKeyPrefix + sessionID
	v, err := r.client.HGet(ctx, k, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("session get %s: %w", key, err)
	}
	if err := r.client.Expire(ctx, k, r.ttl).Err(); err != nil {
		return "", false, fmt.Errorf("session touch: %w", err)
	}
	return v, true, nil
}

// Set writes a value and the session expiry in one pipeline.
func (r *Redis) Set(ctx context.Context, sessionID, key, value string) error {
	k := redisKeyPrefix + sessionID
	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, k, key, value)
	pipe.Expire(ctx, k, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("session set %s: %w", key, err)
	}
	return nil
}

// Delete removes fields from the session hash. Redis drops empty hashes.
func (r *Redis) Delete(ctx context.Context, sessionID string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.HDel(ctx, redisKeyPrefix+sessionID, keys...).Err(); err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (r *Redis) Close() error {
	return r.client.Close()
}
