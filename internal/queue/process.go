package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/multierr"

	pkgerrors "github.com/kopisenja/pos-client/pkg/errors"
)

// SubmitFunc posts one staged payload to the API.
type SubmitFunc func(ctx context.Context, data json.RawMessage) error

// ErrPassInFlight signals that another processing pass currently holds the
// queue; the trigger has been remembered and the running pass will go again.
var ErrPassInFlight = errors.New("queue: processing pass already in flight")

// Process replays the queue in insertion order, one entry at a time. Each
// attempt is counted and persisted before the submit call; a successful
// submit removes the entry. A failure that is not transient stops the pass —
// retrying the rest in a tight loop would just mask the real error. Only one
// pass runs at a time; triggers arriving mid-pass schedule one rerun.
func (q *Queue) Process(ctx context.Context, submit SubmitFunc) error {
	if submit == nil {
		return fmt.Errorf("submit function required")
	}
	if !q.processing.TryLock() {
		q.markRerun()
		return ErrPassInFlight
	}
	defer q.processing.Unlock()

	var err error
	for {
		err = q.runPass(ctx, submit)
		if !q.consumeRerun() {
			return err
		}
	}
}

func (q *Queue) runPass(ctx context.Context, submit SubmitFunc) error {
	entries := q.List(ctx)
	if len(entries) == 0 {
		return nil
	}

	passCtx := q.logg.WithComponent(ctx, "offline-queue")
	q.logg.Info(passCtx, fmt.Sprintf("processing %d staged orders", len(entries)))

	var errs []error
	for _, entry := range entries {
		live, ok := q.bumpAttempts(ctx, entry.ID)
		if !ok {
			// Removed by a concurrent actor since the pass started.
			continue
		}

		submitErr := submit(ctx, live.Data)
		if submitErr == nil {
			if err := q.Remove(ctx, live.ID); err != nil {
				errs = append(errs, fmt.Errorf("remove submitted entry %s: %w", live.ID, err))
			}
			continue
		}

		errs = append(errs, fmt.Errorf("submit entry %s (attempt %d): %w", live.ID, live.Attempts, submitErr))
		if !pkgerrors.Retryable(submitErr) {
			q.logg.Warn(passCtx, fmt.Sprintf("non-transient failure on entry %s; stopping pass", live.ID))
			break
		}
	}
	return multierr.Combine(errs...)
}

// bumpAttempts increments and persists the attempt count on the live entry,
// returning the refreshed entry so the submit uses any concurrently updated
// payload.
func (q *Queue) bumpAttempts(ctx context.Context, id string) (Entry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	entries := q.read(ctx)
	for i := range entries {
		if entries[i].ID == id {
			entries[i].Attempts++
			if err := q.write(ctx, entries); err != nil {
				q.logg.Error(ctx, "persisting attempt count failed", err)
			}
			return entries[i], true
		}
	}
	return Entry{}, false
}

func (q *Queue) markRerun() {
	q.rerunMu.Lock()
	q.rerun = true
	q.rerunMu.Unlock()
}

func (q *Queue) consumeRerun() bool {
	q.rerunMu.Lock()
	defer q.rerunMu.Unlock()
	marked := q.rerun
	q.rerun = false
	return marked
}
