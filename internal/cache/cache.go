package cache

import (
	"context"
	"errors"
	"time"
)

// Errors returned by Cache implementations.
var (
	// ErrMiss is returned when the key is absent or expired.
	ErrMiss = errors.New("cache: miss")
	// ErrCacheDisabled is returned when cache operations are attempted but cache is disabled
	ErrCacheDisabled = errors.New("cache: disabled")
)

// Cache is a key-value memo over hydrated read models and reference lookups.
// It is never a source of truth: a value served from cache must equal one
// freshly computed, and writers invalidate affected keys explicitly.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// PostKey is the cache key for a hydrated post.
func PostKey(id string) string {
	return "post:" + id
}

// CatalogKey is the fixed cache key for the exercise catalog.
const CatalogKey = "exercise-catalog"
