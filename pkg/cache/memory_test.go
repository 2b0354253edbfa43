package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type payload struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

func TestMemoryCacheRoundTripsStructs(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	if err := c.Set(ctx, GenerateKey("report", "p1"), payload{ID: "p1", Score: 0.54}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	var got payload
	if err := c.Get(ctx, "report:p1", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != "p1" || got.Score != 0.54 {
		t.Fatalf("unexpected value: %+v", got)
	}
	if err := c.Get(ctx, "report:missing", &got); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss, got %v", err)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }

	_ = c.Set(ctx, "k", "v", time.Second)
	clock = clock.Add(2 * time.Second)
	if ok, _ := c.Exists(ctx, "k"); ok {
		t.Fatalf("expected key to expire")
	}
}

func TestMemoryCacheLockOwnership(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	ok, err := c.TryLock(ctx, "lock:p1", "a", time.Minute)
	if err != nil || !ok {
		t.Fatalf("expected first lock to succeed: %v", err)
	}
	if ok, _ := c.TryLock(ctx, "lock:p1", "b", time.Minute); ok {
		t.Fatalf("second lock must fail while held")
	}
	if err := c.Unlock(ctx, "lock:p1", "b"); !errors.Is(err, ErrLockNotHeld) {
		t.Fatalf("foreign token must not unlock, got %v", err)
	}
	if err := c.Unlock(ctx, "lock:p1", "a"); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if ok, _ := c.TryLock(ctx, "lock:p1", "b", time.Minute); !ok {
		t.Fatalf("lock must be free after unlock")
	}
}

func TestMemoryCacheEvictsAtCapacity(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(WithMemoryMaxSize(2))
	_ = c.Set(ctx, "a", 1, time.Minute)
	_ = c.Set(ctx, "b", 2, time.Hour)
	_ = c.Set(ctx, "c", 3, time.Hour)
	if ok, _ := c.Exists(ctx, "a"); ok {
		t.Fatalf("expected soonest-expiring key to be evicted")
	}
	if ok, _ := c.Exists(ctx, "b", "c"); !ok {
		t.Fatalf("expected newer keys to remain")
	}
}
