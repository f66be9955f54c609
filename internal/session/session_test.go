package session

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/kopisenja/pos-client/pkg/logger"
	"github.com/kopisenja/pos-client/pkg/storage/memory"
)

func newTestSession(t *testing.T, backing *memory.Store) *Session {
	t.Helper()
	s, err := New(context.Background(), backing,
		logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s
}

func TestAuthPersistsAcrossRestart(t *testing.T) {
	ctx := context.Background()
	backing := memory.New()

	first := newTestSession(t, backing)
	if err := first.SetAuth(ctx, "tok-abc", User{ID: "u1", Name: "Sari", Role: "cashier"}); err != nil {
		t.Fatalf("set auth: %v", err)
	}

	second := newTestSession(t, backing)
	if second.Token(ctx) != "tok-abc" {
		t.Fatalf("expected token to survive restart, got %q", second.Token(ctx))
	}
	if second.User().Name != "Sari" {
		t.Fatalf("expected user to survive restart, got %+v", second.User())
	}
	if !second.LoggedIn() {
		t.Fatal("expected logged-in state")
	}
}

func TestLogoutClearsAndNotifies(t *testing.T) {
	ctx := context.Background()
	backing := memory.New()

	s := newTestSession(t, backing)
	s.SetAuth(ctx, "tok-abc", User{ID: "u1"})

	var notified int
	s.SetOnLogout(func() { notified++ })
	s.Logout(ctx)

	if s.LoggedIn() {
		t.Fatal("expected logged-out state")
	}
	if notified != 1 {
		t.Fatalf("expected one logout notification, got %d", notified)
	}

	restarted := newTestSession(t, backing)
	if restarted.LoggedIn() {
		t.Fatal("logout must clear the persisted blob")
	}
}

func TestCorruptBlobStartsLoggedOut(t *testing.T) {
	ctx := context.Background()
	backing := memory.New()
	backing.Set(ctx, "session:auth", []byte("{nope"))

	s := newTestSession(t, backing)
	if s.LoggedIn() {
		t.Fatal("corrupt blob must start logged out")
	}
}

func TestTokenExpiry(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, memory.New())

	exp := time.Now().Add(time.Hour).Unix()
	s.SetAuth(ctx, unsignedJWT(t, exp), User{})

	got, ok := s.TokenExpiry()
	if !ok {
		t.Fatal("expected expiry from token")
	}
	if got.Unix() != exp {
		t.Fatalf("expected exp %d, got %d", exp, got.Unix())
	}

	s.SetAuth(ctx, "not-a-jwt", User{})
	if _, ok := s.TokenExpiry(); ok {
		t.Fatal("expected no expiry from malformed token")
	}
}

// unsignedJWT builds a header.payload.signature token without a real
// signature; parsing is unverified so the shape is all that matters.
func unsignedJWT(t *testing.T, exp int64) string {
	t.Helper()
	encode := func(v any) string {
		raw, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal claim: %v", err)
		}
		return base64.RawURLEncoding.EncodeToString(raw)
	}
	header := encode(map[string]string{"alg": "HS256", "typ": "JWT"})
	claims := encode(map[string]any{"sub": "u1", "exp": exp})
	return fmt.Sprintf("%s.%s.%s", header, claims, base64.RawURLEncoding.EncodeToString([]byte("sig")))
}
