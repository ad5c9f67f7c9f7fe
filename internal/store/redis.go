package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "fishka"

// Redis backs the store contract with a redis instance; TTLs map onto
// key expiry.
type Redis struct {
	client *redis.Client
	ttls   TTLConfig
	logger *slog.Logger
}

func NewRedis(addr, password string, db int, ttls TTLConfig) *Redis {
	return &Redis{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		ttls:   ttls,
		logger: slog.Default().With("component", "store"),
	}
}

func redisKey(ns Namespace, key string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, ns, key)
}

func (r *Redis) Get(ctx context.Context, ns Namespace, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, redisKey(ns, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s/%s: %w", ns, key, err)
	}
	return data, nil
}

func (r *Redis) Set(ctx context.Context, ns Namespace, key string, value []byte) error {
	if err := r.client.Set(ctx, redisKey(ns, key), value, r.ttls.For(ns)).Err(); err != nil {
		return fmt.Errorf("redis set %s/%s: %w", ns, key, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, ns Namespace, key string) error {
	if err := r.client.Del(ctx, redisKey(ns, key)).Err(); err != nil {
		return fmt.Errorf("redis del %s/%s: %w", ns, key, err)
	}
	return nil
}

func (r *Redis) Refresh(ctx context.Context, ns Namespace, key string) error {
	if err := r.client.Expire(ctx, redisKey(ns, key), r.ttls.For(ns)).Err(); err != nil {
		return fmt.Errorf("redis expire %s/%s: %w", ns, key, err)
	}
	return nil
}

// Ping verifies connectivity at startup.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
