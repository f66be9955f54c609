package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/kopisenja/pos-client/pkg/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "profile.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSetGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	if err := store.Set(ctx, "cart:state", []byte(`{"items":[]}`)); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	value, err := store.Get(ctx, "cart:state")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(value) != `{"items":[]}` {
		t.Fatalf("unexpected value %q", value)
	}

	if err := store.Set(ctx, "cart:state", []byte(`{"items":[1]}`)); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	value, err = store.Get(ctx, "cart:state")
	if err != nil {
		t.Fatalf("get after overwrite failed: %v", err)
	}
	if string(value) != `{"items":[1]}` {
		t.Fatalf("expected overwritten value, got %q", value)
	}
}

func TestGetMissingKey(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	if err := store.Set(ctx, "session:auth", []byte("tok")); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := store.Delete(ctx, "session:auth"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := store.Delete(ctx, "session:auth"); err != nil {
		t.Fatalf("second delete should not fail: %v", err)
	}
	if _, err := store.Get(ctx, "session:auth"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestKeysByPrefix(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	seed := map[string]string{
		"cache:menu":    "a",
		"cache:reports": "b",
		"cart:state":    "c",
	}
	for key, value := range seed {
		if err := store.Set(ctx, key, []byte(value)); err != nil {
			t.Fatalf("seed %s: %v", key, err)
		}
	}

	keys, err := store.Keys(ctx, "cache:")
	if err != nil {
		t.Fatalf("keys failed: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 cache keys, got %v", keys)
	}
	for _, key := range keys {
		if key != "cache:menu" && key != "cache:reports" {
			t.Fatalf("unexpected key %q", key)
		}
	}
}
