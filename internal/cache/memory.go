package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

type memoryItem struct {
	data     []byte
	expireAt time.Time
	access   time.Time
}

func (m *memoryItem) expired(now time.Time) bool {
	return now.After(m.expireAt)
}

type MemoryOption func(*MemoryCache)

func WithMaxSize(n int) MemoryOption {
	return func(mc *MemoryCache) {
		if n > 0 {
			mc.maxSize = n
		}
	}
}

func WithCleanupInterval(d time.Duration) MemoryOption {
	return func(mc *MemoryCache) {
		if d > 0 {
			mc.cleanupInterval = d
		}
	}
}

// MemoryCache keeps JSON-encoded values in process with least-recently-used
// eviction once maxSize entries are held.
type MemoryCache struct {
	items           map[string]*memoryItem
	mu              sync.Mutex
	maxSize         int
	cleanupInterval time.Duration
	stop            chan struct{}
	closeOnce       sync.Once
	now             func() time.Time
}

func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	mc := &MemoryCache{
		items:           make(map[string]*memoryItem),
		maxSize:         1000,
		cleanupInterval: 5 * time.Minute,
		stop:            make(chan struct{}),
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(mc)
	}

	go mc.cleanupLoop()
	return mc
}

func (mc *MemoryCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	now := mc.now()
	if _, exists := mc.items[key]; !exists && len(mc.items) >= mc.maxSize {
		mc.evictLRU()
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	mc.items[key] = &memoryItem{data: data, expireAt: now.Add(ttl), access: now}
	return nil
}

func (mc *MemoryCache) Get(_ context.Context, key string, dest any) error {
	mc.mu.Lock()
	item, ok := mc.items[key]
	now := mc.now()
	if !ok || item.expired(now) {
		if ok {
			delete(mc.items, key)
		}
		mc.mu.Unlock()
		return ErrCacheMiss
	}
	item.access = now
	data := item.data
	mc.mu.Unlock()

	return json.Unmarshal(data, dest)
}

func (mc *MemoryCache) Delete(_ context.Context, keys ...string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	for _, key := range keys {
		delete(mc.items, key)
	}
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (mc *MemoryCache) Len() int {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return len(mc.items)
}

func (mc *MemoryCache) evictLRU() {
	var oldestKey string
	var oldest time.Time
	for key, item := range mc.items {
		if oldestKey == "" || item.access.Before(oldest) {
			oldestKey, oldest = key, item.access
		}
	}
	if oldestKey != "" {
		delete(mc.items, oldestKey)
	}
}

func (mc *MemoryCache) purgeExpired() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	now := mc.now()
	for key, item := range mc.items {
		if item.expired(now) {
			delete(mc.items, key)
		}
	}
}

func (mc *MemoryCache) cleanupLoop() {
	ticker := time.NewTicker(mc.cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-mc.stop:
			return
		case <-ticker.C:
			mc.purgeExpired()
		}
	}
}

// Close stops the cleanup goroutine.
func (mc *MemoryCache) Close() error {
	mc.closeOnce.Do(func() { close(mc.stop) })
	return nil
}
