package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
)

// RedisStore is a Redis-backed key-value store shared by every server instance
type RedisStore struct {
	client *redis.Client
}

// Ensure RedisStore implements KeyValueStoreInterface
var _ KeyValueStoreInterface = (*RedisStore)(nil)

// NewRedisStore accepts either a redis:// URL or a plain "host:port" address
func NewRedisStore(addr string) *RedisStore {
	opts, err := redis.ParseURL(addr)
	if err != nil {
		opts = &redis.Options{
			Addr:         addr,
			MinIdleConns: 1,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolSize:     10,
		}
	}
	client := redis.NewClient(opts)
	client.AddHook(redisotel.NewTracingHook())
	return &RedisStore{client: client}
}

// Ping checks that Redis answers
func (r *RedisStore) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := r.client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}

// Close closes the client connection pool
func (r *RedisStore) Close() error {
	return r.client.Close()
}

// Get returns the stored value or ErrNotFound
func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis GET error: %w", err)
	}
	return val, nil
}

// Set stores value under key; Redis expires it after ttl when ttl > 0
func (r *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis SET error: %w", err)
	}
	return nil
}

// Delete removes key
func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis DEL error: %w", err)
	}
	return nil
}
