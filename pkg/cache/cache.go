// Package cache layers short-TTL read caching for menu, order, and report
// fetches on top of the storage adapter. Expired or unreadable entries behave
// as misses; cache failures never surface to callers as fetch errors.
package cache

import (
	"context"
	"encoding/json"
	"time"

	pkgerrors "github.com/kopisenja/pos-client/pkg/errors"
	"github.com/kopisenja/pos-client/pkg/logger"
	"github.com/kopisenja/pos-client/pkg/storage"
)

const keyPrefix = "cache:"

type entry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	TTL       time.Duration   `json:"ttl"`
}

// Cache reads and writes TTL-stamped entries.
type Cache struct {
	store storage.Store
	logg  *logger.Logger
	now   func() time.Time
}

func New(store storage.Store, logg *logger.Logger) *Cache {
	return &Cache{store: store, logg: logg, now: time.Now}
}

// Get unmarshals the cached value for name into dest and reports whether a
// fresh entry was found.
func (c *Cache) Get(ctx context.Context, name string, dest any) bool {
	raw, err := c.store.Get(ctx, keyPrefix+name)
	if err != nil {
		return false
	}

	var ent entry
	if err := json.Unmarshal(raw, &ent); err != nil {
		// Corrupt blob: drop it so the next write starts clean.
		_ = c.store.Delete(ctx, keyPrefix+name)
		return false
	}
	if c.now().Sub(ent.Timestamp) > ent.TTL {
		return false
	}
	if err := json.Unmarshal(ent.Data, dest); err != nil {
		return false
	}
	return true
}

// Set stores value under name with the given TTL. A full store triggers one
// wipe of the whole cache namespace followed by a single retry.
func (c *Cache) Set(ctx context.Context, name string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logg.Warn(ctx, "cache value not serializable")
		return
	}
	raw, err := json.Marshal(entry{Data: data, Timestamp: c.now(), TTL: ttl})
	if err != nil {
		c.logg.Warn(ctx, "cache entry not serializable")
		return
	}

	err = c.store.Set(ctx, keyPrefix+name, raw)
	if err == nil {
		return
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStorageFull {
		c.logg.Error(ctx, "cache write failed", err)
		return
	}

	c.logg.Warn(ctx, "cache storage full; wiping cache namespace")
	c.Wipe(ctx)
	if err := c.store.Set(ctx, keyPrefix+name, raw); err != nil {
		c.logg.Error(ctx, "cache write failed after wipe", err)
	}
}

// Invalidate removes a single entry.
func (c *Cache) Invalidate(ctx context.Context, name string) {
	_ = c.store.Delete(ctx, keyPrefix+name)
}

// Wipe removes every cache entry.
func (c *Cache) Wipe(ctx context.Context) {
	keys, err := c.store.Keys(ctx, keyPrefix)
	if err != nil {
		c.logg.Error(ctx, "cache wipe failed", err)
		return
	}
	for _, key := range keys {
		_ = c.store.Delete(ctx, key)
	}
}
