package cache

import (
	"context"
	"sync"
	"time"
)

type memoryItem struct {
	data     []byte
	expireAt time.Time
}

func (m memoryItem) expired(now time.Time) bool {
	return !m.expireAt.IsZero() && now.After(m.expireAt)
}

// MemoryCache implements Service in process. Values are stored encoded so Get
// decodes into any destination type, matching RedisCache.
type MemoryCache struct {
	mu         sync.Mutex
	data       map[string]memoryItem
	maxSize int
	now     func() time.Time
}

func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	cfg := &MemoryConfig{MaxSize: 1000}
	for _, opt := range opts {
		opt(cfg)
	}
	return &MemoryCache{
		data:    make(map[string]memoryItem),
		maxSize: cfg.MaxSize,
		now:     time.Now,
	}
}

func (mc *MemoryCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := encode(value)
	if err != nil {
		return err
	}
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if _, ok := mc.data[key]; !ok && len(mc.data) >= mc.maxSize {
		mc.evictLocked()
	}
	mc.data[key] = memoryItem{data: append([]byte(nil), data...), expireAt: mc.expiry(expiration)}
	return nil
}

func (mc *MemoryCache) Get(_ context.Context, key string, dest interface{}) error {
	mc.mu.Lock()
	item, ok := mc.lookupLocked(key)
	mc.mu.Unlock()
	if !ok {
		return ErrCacheMiss
	}
	return decode(item.data, dest)
}

func (mc *MemoryCache) Delete(_ context.Context, keys ...string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	for _, k := range keys {
		delete(mc.data, k)
	}
	return nil
}

func (mc *MemoryCache) Exists(_ context.Context, keys ...string) (bool, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	for _, k := range keys {
		if _, ok := mc.lookupLocked(k); ok {
			return true, nil
		}
	}
	return false, nil
}

func (mc *MemoryCache) TryLock(_ context.Context, key, token string, ttl time.Duration) (bool, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if _, ok := mc.lookupLocked(key); ok {
		return false, nil
	}
	mc.data[key] = memoryItem{data: []byte(token), expireAt: mc.expiry(ttl)}
	return true, nil
}

func (mc *MemoryCache) Unlock(_ context.Context, key, token string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	item, ok := mc.lookupLocked(key)
	if !ok || string(item.data) != token {
		return ErrLockNotHeld
	}
	delete(mc.data, key)
	return nil
}

func (mc *MemoryCache) Ping(context.Context) error { return nil }

func (mc *MemoryCache) Close() error { return nil }

func (mc *MemoryCache) expiry(d time.Duration) time.Time {
	if d <= 0 {
		return time.Time{}
	}
	return mc.now().Add(d)
}

func (mc *MemoryCache) lookupLocked(key string) (memoryItem, bool) {
	item, ok := mc.data[key]
	if !ok {
		return memoryItem{}, false
	}
	if item.expired(mc.now()) {
		delete(mc.data, key)
		return memoryItem{}, false
	}
	return item, true
}

// evictLocked drops expired entries, then the entry closest to expiry.
func (mc *MemoryCache) evictLocked() {
	now := mc.now()
	var victim string
	var soonest time.Time
	for k, it := range mc.data {
		if it.expired(now) {
			delete(mc.data, k)
			continue
		}
		if victim == "" || (!it.expireAt.IsZero() && (soonest.IsZero() || it.expireAt.Before(soonest))) {
			victim, soonest = k, it.expireAt
		}
	}
	if len(mc.data) >= mc.maxSize && victim != "" {
		delete(mc.data, victim)
	}
}
