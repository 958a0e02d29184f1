package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/bulkmail/pkg/cookie"
	"github.com/dmitrymomot/bulkmail/pkg/id"
	"github.com/dmitrymomot/bulkmail/pkg/logger"
	"github.com/dmitrymomot/bulkmail/pkg/session"
)

// Default session configuration.
const (
	defaultSessionCookieName = "__sid"
	defaultSessionTTL        = 24 * time.Hour
	sessionTokenBytes        = 32
)

// SessionManager handles session lifecycle and the session cookie.
// The token cookie is signed when the cookie manager has a secret.
type SessionManager struct {
	store      session.Store
	cookies    *cookie.Manager
	logger     *slog.Logger
	cookieName string
	ttl        time.Duration
}

// SessionOption configures the SessionManager.
type SessionOption func(*SessionManager)

// NewSessionManager creates a new SessionManager with the given store and options.
func NewSessionManager(store session.Store, opts ...SessionOption) *SessionManager {
	sm := &SessionManager{
		store:      store,
		cookies:    cookie.New(),
		logger:     logger.NewNope(),
		cookieName: defaultSessionCookieName,
		ttl:        defaultSessionTTL,
	}

	for _, opt := range opts {
		opt(sm)
	}

	return sm
}

// WithSessionCookieName sets the session cookie name.
func WithSessionCookieName(name string) SessionOption {
	return func(sm *SessionManager) {
		if name != "" {
			sm.cookieName = name
		}
	}
}

// WithSessionTTL sets how long an idle session lives.
func WithSessionTTL(ttl time.Duration) SessionOption {
	return func(sm *SessionManager) {
		if ttl > 0 {
			sm.ttl = ttl
		}
	}
}

// SetLogger sets the logger for session events. Called by App after initialization.
func (sm *SessionManager) SetLogger(l *slog.Logger) {
	if l != nil {
		sm.logger = l
	}
}

// SetCookies sets the cookie manager for the session cookie. Called by App after initialization.
func (sm *SessionManager) SetCookies(m *cookie.Manager) {
	if m != nil {
		sm.cookies = m
	}
}

// LoadSession loads the session referenced by the request cookie.
// Returns nil, nil when there is no usable cookie or the session is gone,
// so callers can start a fresh one.
func (sm *SessionManager) LoadSession(ctx context.Context, r *http.Request) (*session.Session, error) {
	token, err := sm.readToken(r)
	if err != nil {
		if !errors.Is(err, cookie.ErrNotFound) {
			sm.logger.WarnContext(ctx, "rejected session cookie", slog.String("error", err.Error()))
		}
		return nil, nil
	}

	sess, err := sm.store.Get(ctx, token)
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrExpired):
		return nil, nil
	case err != nil:
		return nil, err
	}

	return sess, nil
}

// CreateSession creates and stores a new empty session.
func (sm *SessionManager) CreateSession(ctx context.Context) (*session.Session, error) {
	token, err := id.NewToken(sessionTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}

	sess := session.New(id.NewULID(), token, time.Now().Add(sm.ttl))
	if err := sm.store.Create(ctx, sess); err != nil {
		return nil, err
	}

	sess.ClearNew()
	sess.ClearDirty()

	sm.logger.DebugContext(ctx, "session created", slog.String("session_id", sess.ID))
	return sess, nil
}

// Save extends the session lifetime and persists it.
func (sm *SessionManager) Save(ctx context.Context, sess *session.Session) error {
	now := time.Now()
	sess.LastActiveAt = now
	sess.ExpiresAt = now.Add(sm.ttl)
	if err := sm.store.Update(ctx, sess); err != nil {
		return err
	}
	sess.ClearDirty()
	return nil
}

// SaveSession writes the session cookie to the response.
func (sm *SessionManager) SaveSession(w http.ResponseWriter, sess *session.Session) {
	maxAge := int(sm.ttl / time.Second)
	if sm.cookies.CanSign() {
		// SetSigned only fails without a secret.
		_ = sm.cookies.SetSigned(w, sm.cookieName, sess.Token, maxAge)
		return
	}
	sm.cookies.Set(w, sm.cookieName, sess.Token, maxAge)
}

// DeleteSession clears the session cookie.
func (sm *SessionManager) DeleteSession(w http.ResponseWriter) {
	sm.cookies.Delete(w, sm.cookieName)
}

// Store returns the underlying session store.
func (sm *SessionManager) Store() session.Store {
	return sm.store
}

func (sm *SessionManager) readToken(r *http.Request) (string, error) {
	if sm.cookies.CanSign() {
		return sm.cookies.GetSigned(r, sm.cookieName)
	}
	return sm.cookies.Get(r, sm.cookieName)
}
