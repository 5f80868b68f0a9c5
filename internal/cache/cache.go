// Package cache provides the TTL caches that sit in front of market data,
// news and language-model calls.
package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"stock-analysis-agent/internal/logger"
)

var ErrCacheMiss = errors.New("cache: key not found")

// Cache stores JSON-encodable values under string keys.
type Cache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// Key joins parts with ':' after trimming and lower-casing them.
func Key(parts ...string) string {
	clean := make([]string, len(parts))
	for i, p := range parts {
		clean[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return strings.Join(clean, ":")
}

// HashKey shortens arbitrary text (prompts, queries) into a stable key part.
func HashKey(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// GetOrLoad returns the cached value for key, or calls load and stores its
// result. Cache failures other than a miss are logged and bypassed.
func GetOrLoad[T any](ctx context.Context, c Cache, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var v T
	if c == nil {
		return load(ctx)
	}

	err := c.Get(ctx, key, &v)
	if err == nil {
		logger.Debug(ctx, "Cache hit", "key", key)
		return v, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		logger.Warn(ctx, "Cache read failed", "key", key, "error", err)
	}

	v, err = load(ctx)
	if err != nil {
		return v, err
	}
	if err := c.Set(ctx, key, v, ttl); err != nil {
		logger.Warn(ctx, "Cache write failed", "key", key, "error", err)
	}
	return v, nil
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string, any) error { return ErrCacheMiss }
func (Nop) Set(context.Context, string, any, time.Duration) error { return nil }
func (Nop) Delete(context.Context, ...string) error { return nil }
func (Nop) Close() error { return nil }

const (
	BackendMemory  = "MEMORY"
	BackendRedis   = "REDIS"
	BackendLayered = "LAYERED"
	BackendNone    = "NONE"
)

// New builds the cache for backend. Redis-backed caches ping the server and
// fail if it is unreachable.
func New(backend string, redisCfg RedisConfig) (Cache, error) {
	switch backend {
	case BackendNone:
		return Nop{}, nil
	case BackendMemory, "":
		return NewMemoryCache(), nil
	case BackendRedis:
		return NewRedisCache(redisCfg)
	case BackendLayered:
		rc, err := NewRedisCache(redisCfg)
		if err != nil {
			return nil, err
		}
		return NewLayeredCache(NewMemoryCache(), rc), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", backend)
	}
}
