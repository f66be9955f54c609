// Package queue stages order submissions in local storage so checkout can
// succeed without connectivity; a sync pass replays them against the API.
// The queue and the cart store are deliberately uncoordinated singletons.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kopisenja/pos-client/pkg/logger"
	"github.com/kopisenja/pos-client/pkg/storage"
)

const queueKey = "queue:orders"

// Entry is one staged order submission. Data is opaque to the queue except
// for the id/clientOrderId fields probed at Add time.
type Entry struct {
	ID        string          `json:"id"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	Attempts  int             `json:"attempts"`
}

// payloadProbe extracts the identity fields the de-duplication needs.
type payloadProbe struct {
	ID            string `json:"id"`
	ClientOrderID string `json:"clientOrderId"`
}

// Queue is the persisted FIFO of pending order submissions.
type Queue struct {
	mu    sync.Mutex
	store storage.Store
	logg  *logger.Logger
	now   func() time.Time
	newID func() string

	// processing serializes sync passes; rerun marks a trigger that arrived
	// while a pass was in flight.
	processing sync.Mutex
	rerunMu    sync.Mutex
	rerun      bool
}

// New builds a queue over the given storage adapter.
func New(store storage.Store, logg *logger.Logger) (*Queue, error) {
	if store == nil {
		return nil, fmt.Errorf("storage adapter required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Queue{
		store: store,
		logg:  logg,
		now:   time.Now,
		newID: uuid.NewString,
	}, nil
}

// Add stages data for submission and returns the entry id. A payload whose
// clientOrderId already sits in the queue replaces that entry's data and
// resets its attempt count, so edits to an unsynced draft never produce a
// second submission.
func (q *Queue) Add(ctx context.Context, data json.RawMessage) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var probe payloadProbe
	if err := json.Unmarshal(data, &probe); err != nil {
		return "", fmt.Errorf("order payload is not an object: %w", err)
	}

	entries := q.read(ctx)
	now := q.now().UTC()

	if probe.ClientOrderID != "" {
		for i := range entries {
			if sameClientOrder(entries[i].Data, probe.ClientOrderID) {
				entries[i].Data = data
				entries[i].Timestamp = now
				entries[i].Attempts = 0
				return entries[i].ID, q.write(ctx, entries)
			}
		}
	}

	id := probe.ID
	if id == "" {
		id = q.newID()
	}
	entries = append(entries, Entry{ID: id, Data: data, Timestamp: now})
	return id, q.write(ctx, entries)
}

// List returns the staged entries in insertion order. An absent or corrupt
// blob reads as an empty queue.
func (q *Queue) List(ctx context.Context) []Entry {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.read(ctx)
}

// Len reports how many entries are waiting.
func (q *Queue) Len(ctx context.Context) int {
	return len(q.List(ctx))
}

// Remove deletes the entry with id and persists the queue.
func (q *Queue) Remove(ctx context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.removeLocked(ctx, id)
}

// Clear wipes the persisted queue entirely.
func (q *Queue) Clear(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.store.Delete(ctx, queueKey)
}

func (q *Queue) removeLocked(ctx context.Context, id string) error {
	entries := q.read(ctx)
	kept := entries[:0]
	for _, entry := range entries {
		if entry.ID != id {
			kept = append(kept, entry)
		}
	}
	return q.write(ctx, kept)
}

func (q *Queue) read(ctx context.Context) []Entry {
	raw, err := q.store.Get(ctx, queueKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		q.logg.Error(ctx, "offline queue unreadable; treating as empty", err)
		return nil
	}
	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		q.logg.Error(ctx, "offline queue corrupt; treating as empty", err)
		return nil
	}
	return entries
}

func (q *Queue) write(ctx context.Context, entries []Entry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("serialize queue: %w", err)
	}
	return q.store.Set(ctx, queueKey, raw)
}

func sameClientOrder(data json.RawMessage, clientOrderID string) bool {
	var probe payloadProbe
	if err := json.Unmarshal(data, &probe); err != nil {
		return false
	}
	return probe.ClientOrderID == clientOrderID
}
