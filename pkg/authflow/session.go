package authflow

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"socialauth/pkg/cache"
)

var ErrSessionNotFound = errors.New("authflow: session not found")

// Session is the post-authentication summary the host keeps. Tokens are
// deliberately absent: credentials live only for the callback request.
type Session struct {
	ID        string    `json:"id"`
	Provider  string    `json:"provider"`
	UID       string    `json:"uid"`
	Name      string    `json:"name"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type SessionStore interface {
	Create(ctx context.Context, provider string, identity *Identity, ttl time.Duration) (*Session, error)
	Get(ctx context.Context, sessionID string) (*Session, error)
	Delete(ctx context.Context, sessionID string) error
}

type cacheSessionStore struct {
	cache  cache.Cache
	prefix string
}

func NewSessionStore(c cache.Cache) SessionStore {
	return &cacheSessionStore{cache: c, prefix: "authflow:session:"}
}

func (s *cacheSessionStore) Create(ctx context.Context, provider string, identity *Identity, ttl time.Duration) (*Session, error) {
	id, err := generateToken()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session := &Session{
		ID:        id,
		Provider:  provider,
		UID:       identity.UID,
		Name:      identity.Info["name"],
		Image:     identity.Info["image"],
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, s.prefix+id, string(payload), ttl); err != nil {
		return nil, err
	}

	return session, nil
}

func (s *cacheSessionStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	payload, err := s.cache.Get(ctx, s.prefix+sessionID)
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	var session Session
	if err := json.Unmarshal([]byte(payload), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *cacheSessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.cache.Del(ctx, s.prefix+sessionID)
}
