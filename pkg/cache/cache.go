package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrCacheMiss = errors.New("cache: key not found")
	// ErrLockNotHeld is returned by Unlock when the token no longer owns the lock.
	ErrLockNotHeld = errors.New("cache: lock not held")
)

// Service is a JSON key/value store with expiring owner-token locks.
type Service interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, keys ...string) (bool, error)
	TryLock(ctx context.Context, key string, token string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string, token string) error
	Ping(ctx context.Context) error
	Close() error
}

// GenerateKey joins key parts with ':'.
func GenerateKey(prefix string, parts ...interface{}) string {
	key := prefix
	for _, p := range parts {
		key = fmt.Sprintf("%s:%v", key, p)
	}
	return key
}
