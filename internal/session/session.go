// Package session persists the authenticated staff identity and bearer token
// between terminal restarts, and fans a logout out to every consumer when the
// API reports the session dead.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kopisenja/pos-client/pkg/logger"
	"github.com/kopisenja/pos-client/pkg/storage"
)

const authKey = "session:auth"

// User is the staff identity shown in the terminal header.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type authBlob struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Session holds the persisted auth state.
type Session struct {
	mu    sync.Mutex
	blob  authBlob
	store storage.Store
	logg  *logger.Logger

	onLogout []func()
}

// New hydrates the session from storage; a missing or corrupt blob starts
// logged out.
func New(ctx context.Context, store storage.Store, logg *logger.Logger) (*Session, error) {
	if store == nil {
		return nil, fmt.Errorf("storage adapter required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}

	s := &Session{store: store, logg: logg}
	raw, err := store.Get(ctx, authKey)
	if err == nil {
		if err := json.Unmarshal(raw, &s.blob); err != nil {
			logg.Warn(ctx, "auth blob corrupt; starting logged out")
			s.blob = authBlob{}
		}
	} else if !errors.Is(err, storage.ErrNotFound) {
		logg.Error(ctx, "auth blob unreadable; starting logged out", err)
	}
	return s, nil
}

// SetAuth stores the token and user after a successful login.
func (s *Session) SetAuth(ctx context.Context, token string, user User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.blob = authBlob{Token: token, User: user}
	raw, err := json.Marshal(s.blob)
	if err != nil {
		return fmt.Errorf("serialize auth blob: %w", err)
	}
	return s.store.Set(ctx, authKey, raw)
}

// Token returns the stored bearer token, empty when logged out.
func (s *Session) Token(ctx context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blob.Token
}

// User returns the stored staff identity.
func (s *Session) User() User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blob.User
}

// LoggedIn reports whether a token is present.
func (s *Session) LoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blob.Token != ""
}

// TokenExpiry parses the stored JWT without verifying its signature — the
// client only needs the exp claim for display and pre-emptive re-login; the
// server remains the authority on validity.
func (s *Session) TokenExpiry() (time.Time, bool) {
	s.mu.Lock()
	token := s.blob.Token
	s.mu.Unlock()

	if token == "" {
		return time.Time{}, false
	}
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// SetOnLogout registers a callback fired when the session ends.
func (s *Session) SetOnLogout(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLogout = append(s.onLogout, fn)
}

// Logout clears the persisted auth state and notifies every consumer. Wired
// as the API client's 401 hook.
func (s *Session) Logout(ctx context.Context) {
	s.mu.Lock()
	s.blob = authBlob{}
	hooks := make([]func(), len(s.onLogout))
	copy(hooks, s.onLogout)
	s.mu.Unlock()

	if err := s.store.Delete(ctx, authKey); err != nil {
		s.logg.Error(ctx, "clearing auth blob failed", err)
	}
	s.logg.Info(ctx, "session logged out")
	for _, hook := range hooks {
		hook()
	}
}
