package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/kopisenja/pos-client/pkg/storage"
)

func TestStoreIsolation(t *testing.T) {
	ctx := context.Background()
	store := New()

	payload := []byte(`{"a":1}`)
	if err := store.Set(ctx, "k", payload); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	payload[0] = 'X'

	value, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(value) != `{"a":1}` {
		t.Fatalf("stored value should not alias caller buffer, got %q", value)
	}
}

func TestMissingAndPrefix(t *testing.T) {
	ctx := context.Background()
	store := New()

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	store.Set(ctx, "cache:a", []byte("1"))
	store.Set(ctx, "queue:orders", []byte("2"))

	keys, err := store.Keys(ctx, "cache:")
	if err != nil {
		t.Fatalf("keys failed: %v", err)
	}
	if len(keys) != 1 || keys[0] != "cache:a" {
		t.Fatalf("unexpected keys %v", keys)
	}
}
