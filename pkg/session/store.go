package session

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrymomot/bulkmail/pkg/cache"
)

// Store defines the interface for session persistence.
type Store interface {
	// Create persists a new session.
	Create(ctx context.Context, s *Session) error

	// Get retrieves a session by its token.
	// Returns ErrNotFound if the session doesn't exist.
	// Returns ErrExpired if the session has expired.
	Get(ctx context.Context, token string) (*Session, error)

	// Update saves changes to an existing session.
	Update(ctx context.Context, s *Session) error

	// Delete removes a session by its token.
	Delete(ctx context.Context, token string) error
}

// CacheStore keeps sessions in a cache.Cache keyed by token.
// Sessions are copied on the way in and out, so callers never share state.
type CacheStore struct {
	cache cache.Cache[Session]
}

// NewCacheStore creates a store backed by c.
func NewCacheStore(c cache.Cache[Session]) *CacheStore {
	return &CacheStore{cache: c}
}

// Create implements Store.
func (s *CacheStore) Create(ctx context.Context, sess *Session) error {
	return s.put(ctx, sess)
}

// Get implements Store.
func (s *CacheStore) Get(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	v, err := s.cache.Get(ctx, token)
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	sess := v.Clone()
	if sess.IsExpired() {
		_ = s.cache.Delete(ctx, token)
		return nil, ErrExpired
	}
	return sess, nil
}

// Update implements Store.
func (s *CacheStore) Update(ctx context.Context, sess *Session) error {
	return s.put(ctx, sess)
}

// Delete implements Store.
func (s *CacheStore) Delete(ctx context.Context, token string) error {
	return s.cache.Delete(ctx, token)
}

func (s *CacheStore) put(ctx context.Context, sess *Session) error {
	if sess.Token == "" {
		return ErrInvalidToken
	}

	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return ErrExpired
	}

	c := sess.Clone()
	c.ClearDirty()
	c.ClearNew()
	return s.cache.Set(ctx, sess.Token, *c, ttl)
}
