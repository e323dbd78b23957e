package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Get and GetDel when the key is absent or expired.
var ErrCacheMiss = errors.New("cache: key not found")

type Cache interface {
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	// GetDel atomically reads and removes a key. Backs one-time-use
	// values such as anti-forgery state tokens.
	GetDel(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, key string) error
}
