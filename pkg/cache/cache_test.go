package cache

import (
	"context"
	"io"
	"testing"
	"time"

	pkgerrors "github.com/kopisenja/pos-client/pkg/errors"
	"github.com/kopisenja/pos-client/pkg/logger"
	"github.com/kopisenja/pos-client/pkg/storage"
	"github.com/kopisenja/pos-client/pkg/storage/memory"
)

func newTestCache(store storage.Store) *Cache {
	return New(store, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
}

func TestGetMissesWhenExpired(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(memory.New())

	now := time.Now()
	cache.now = func() time.Time { return now }
	cache.Set(ctx, "menu", []string{"latte"}, time.Minute)

	var got []string
	if !cache.Get(ctx, "menu", &got) {
		t.Fatal("expected fresh entry to hit")
	}
	if len(got) != 1 || got[0] != "latte" {
		t.Fatalf("unexpected cached value %v", got)
	}

	cache.now = func() time.Time { return now.Add(61 * time.Second) }
	if cache.Get(ctx, "menu", &got) {
		t.Fatal("expected expired entry to miss")
	}
}

func TestGetMissesOnCorruptEntry(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	cache := newTestCache(store)

	store.Set(ctx, "cache:menu", []byte("{not json"))

	var got []string
	if cache.Get(ctx, "menu", &got) {
		t.Fatal("expected corrupt entry to miss")
	}
	if _, err := store.Get(ctx, "cache:menu"); err != storage.ErrNotFound {
		t.Fatalf("expected corrupt entry to be removed, got %v", err)
	}
}

// fullStore rejects a configurable number of writes with the quota code.
type fullStore struct {
	*memory.Store
	failures int
}

func (f *fullStore) Set(ctx context.Context, key string, value []byte) error {
	if f.failures > 0 {
		f.failures--
		return pkgerrors.New(pkgerrors.CodeStorageFull, "write key")
	}
	return f.Store.Set(ctx, key, value)
}

func TestSetWipesAndRetriesOnceWhenFull(t *testing.T) {
	ctx := context.Background()
	store := &fullStore{Store: memory.New(), failures: 1}
	cache := newTestCache(store)

	cache.Set(ctx, "stale", "old", time.Hour)
	// Seeded through the underlying store so the wipe has something to remove.
	var sentinel string
	if !cache.Get(ctx, "stale", &sentinel) {
		t.Fatal("expected seeded entry before quota failure")
	}

	store.failures = 1
	cache.Set(ctx, "reports", "fresh", time.Minute)

	var got string
	if !cache.Get(ctx, "reports", &got) || got != "fresh" {
		t.Fatalf("expected retried write to land, got %q", got)
	}
	if cache.Get(ctx, "stale", &sentinel) {
		t.Fatal("expected wipe to remove other cache entries")
	}
}
