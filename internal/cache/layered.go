package cache

import (
	"context"
	"errors"
	"time"
)

// l1TTL bounds how long a value promoted from L2 stays in memory, since the
// remaining L2 TTL is unknown.
const l1TTL = 5 * time.Minute

// LayeredCache reads memory first, then the shared backend, and writes through both.
type LayeredCache struct {
	l1 Cache
	l2 Cache
}

func NewLayeredCache(l1, l2 Cache) *LayeredCache {
	return &LayeredCache{l1: l1, l2: l2}
}

func (lc *LayeredCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if err := lc.l2.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	_ = lc.l1.Set(ctx, key, value, minTTL(ttl, l1TTL))
	return nil
}

func (lc *LayeredCache) Get(ctx context.Context, key string, dest any) error {
	if err := lc.l1.Get(ctx, key, dest); err == nil {
		return nil
	}
	if err := lc.l2.Get(ctx, key, dest); err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return ErrCacheMiss
		}
		return err
	}
	_ = lc.l1.Set(ctx, key, dest, l1TTL)
	return nil
}

func (lc *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	_ = lc.l1.Delete(ctx, keys...)
	return lc.l2.Delete(ctx, keys...)
}

func (lc *LayeredCache) Close() error {
	_ = lc.l1.Close()
	return lc.l2.Close()
}

func minTTL(a, b time.Duration) time.Duration {
	if a > 0 && a < b {
		return a
	}
	return b
}
