package authflow

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"socialauth/pkg/cache"
)

// ErrStateNotFound means the state token is unknown, expired, or was
// already consumed by an earlier callback.
var ErrStateNotFound = errors.New("authflow: state not found")

// StateStore persists one-time anti-forgery state between the request
// and callback phases. The two phases may be served by different
// processes, so the store must be external in multi-instance
// deployments; the Redis-backed cache covers that.
type StateStore interface {
	Save(ctx context.Context, state string, ttl time.Duration) error
	// Consume validates and deletes in one step so a state token can
	// authorize at most one callback.
	Consume(ctx context.Context, state string) error
}

type cacheStateStore struct {
	cache  cache.Cache
	prefix string
}

func NewStateStore(c cache.Cache) StateStore {
	return &cacheStateStore{cache: c, prefix: "authflow:state:"}
}

func (s *cacheStateStore) Save(ctx context.Context, state string, ttl time.Duration) error {
	return s.cache.Set(ctx, s.prefix+state, "1", ttl)
}

func (s *cacheStateStore) Consume(ctx context.Context, state string) error {
	_, err := s.cache.GetDel(ctx, s.prefix+state)
	if errors.Is(err, cache.ErrCacheMiss) {
		return ErrStateNotFound
	}
	return err
}

// generateToken returns a crypto-random URL-safe token, used for state
// values and session IDs.
func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
