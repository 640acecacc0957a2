package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/spotcheck/spotfeed/pkg/config"
	"github.com/spotcheck/spotfeed/pkg/logging"
)

const namespace = "spotfeed:"

// Redis implements Cache over a Redis client.
type Redis struct {
	client *redis.Client
}

// NewRedis creates a new Redis cache client
func NewRedis(cfg *config.RedisConfig) (*Redis, error) {
	if !cfg.Enabled {
		logging.GetLogger().Info("Redis cache disabled")
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logging.GetLogger().Info("Redis connection established")

	return &Redis{client: client}, nil
}

// Get retrieves a value from cache
func (c *Redis) Get(ctx context.Context, key string) (string, error) {
	if c == nil || c.client == nil {
		return "", ErrCacheDisabled
	}
	val, err := c.client.Get(ctx, namespace+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrMiss
		}
		return "", err
	}
	return val, nil
}

// Set sets a value in cache with TTL
func (c *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if c == nil || c.client == nil {
		return ErrCacheDisabled
	}
	return c.client.Set(ctx, namespace+key, value, ttl).Err()
}

// Delete removes a key from cache
func (c *Redis) Delete(ctx context.Context, key string) error {
	if c == nil || c.client == nil {
		return ErrCacheDisabled
	}
	return c.client.Del(ctx, namespace+key).Err()
}

// Clear removes every key in the cache namespace.
func (c *Redis) Clear(ctx context.Context) error {
	if c == nil || c.client == nil {
		return ErrCacheDisabled
	}
	iter := c.client.Scan(ctx, 0, namespace+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// Close closes the Redis connection
func (c *Redis) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Health checks Redis health
func (c *Redis) Health(ctx context.Context) error {
	if c == nil || c.client == nil {
		return ErrCacheDisabled
	}
	return c.client.Ping(ctx).Err()
}
