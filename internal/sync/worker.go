package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/kopisenja/pos-client/internal/queue"
	"github.com/kopisenja/pos-client/pkg/config"
	"github.com/kopisenja/pos-client/pkg/logger"
	"github.com/kopisenja/pos-client/pkg/metrics"
)

const (
	defaultInterval      = 2 * time.Minute
	defaultProbeInterval = 15 * time.Second
)

// Trigger labels recorded on sync metrics and log lines.
const (
	TriggerStartup   = "startup"
	TriggerManual    = "manual"
	TriggerReconnect = "reconnect"
	TriggerInterval  = "interval"
)

// Probe reports whether the ordering API is currently reachable.
type Probe interface {
	Online(ctx context.Context) bool
}

// HTTPProbe checks reachability with a HEAD request against a single
// endpoint. Any response counts as online; only transport failures and
// server errors count as offline.
type HTTPProbe struct {
	endpoint string
	client   *http.Client
}

// NewHTTPProbe builds a probe for the given endpoint. A nil client gets a
// short-timeout default so a dead network cannot stall the probe loop.
func NewHTTPProbe(endpoint string, client *http.Client) *HTTPProbe {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &HTTPProbe{endpoint: endpoint, client: client}
}

func (p *HTTPProbe) Online(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.endpoint, nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < http.StatusInternalServerError
}

// WorkerParams configure the sync worker.
type WorkerParams struct {
	Logger  *logger.Logger
	Queue   *queue.Queue
	Submit  queue.SubmitFunc
	Probe   Probe
	Metrics *metrics.SyncMetrics
	Config  config.SyncConfig
}

// Worker drains the offline order queue. Three triggers funnel into the same
// processing pass: explicit Notify calls, connectivity regained edges from
// the probe, and a periodic ticker that only fires work when the queue has
// staged entries.
type Worker struct {
	logg          *logger.Logger
	queue         *queue.Queue
	submit        queue.SubmitFunc
	probe         Probe
	metrics       *metrics.SyncMetrics
	interval      time.Duration
	probeInterval time.Duration
	notify        chan struct{}
}

// NewWorker builds a sync worker.
func NewWorker(params WorkerParams) (*Worker, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Queue == nil {
		return nil, fmt.Errorf("queue required")
	}
	if params.Submit == nil {
		return nil, fmt.Errorf("submit function required")
	}
	interval := params.Config.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	probeInterval := params.Config.ProbeInterval
	if probeInterval <= 0 {
		probeInterval = defaultProbeInterval
	}
	return &Worker{
		logg:          params.Logger,
		queue:         params.Queue,
		submit:        params.Submit,
		probe:         params.Probe,
		metrics:       params.Metrics,
		interval:      interval,
		probeInterval: probeInterval,
		notify:        make(chan struct{}, 1),
	}, nil
}

// Notify requests a processing pass. The request never blocks; if a pass is
// already pending the extra signal collapses into it.
func (w *Worker) Notify() {
	select {
	case w.notify <- struct{}{}:
	default:
	}
}

// Run drives the worker until the context is canceled. Entries staged while
// the terminal was offline are drained once on startup when the API is
// reachable.
func (w *Worker) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	var probeTick <-chan time.Time
	online := true
	if w.probe != nil {
		probeTicker := time.NewTicker(w.probeInterval)
		defer probeTicker.Stop()
		probeTick = probeTicker.C
		online = w.probe.Online(ctx)
	}

	w.metrics.SetQueueDepth(w.queue.Len(ctx))
	if online && w.queue.Len(ctx) > 0 {
		w.process(ctx, TriggerStartup)
	}

	for {
		select {
		case <-ctx.Done():
			w.logg.Info(ctx, "sync worker context canceled")
			return ctx.Err()
		case <-w.notify:
			w.process(ctx, TriggerManual)
		case <-probeTick:
			was := online
			online = w.probe.Online(ctx)
			if !was && online {
				w.logg.Info(ctx, "connectivity regained")
				w.process(ctx, TriggerReconnect)
			}
		case <-ticker.C:
			if w.queue.Len(ctx) == 0 {
				continue
			}
			w.process(ctx, TriggerInterval)
		}
	}
}

func (w *Worker) process(ctx context.Context, trigger string) {
	passCtx := w.logg.WithComponent(ctx, "sync-worker")
	passCtx = w.logg.WithField(passCtx, "trigger", trigger)

	start := time.Now()
	err := w.queue.Process(passCtx, w.countingSubmit(trigger))
	w.metrics.ObserveDuration(trigger, time.Since(start))
	w.metrics.SetQueueDepth(w.queue.Len(ctx))

	switch {
	case err == nil:
		w.logg.Info(passCtx, "sync pass complete")
	case errors.Is(err, queue.ErrPassInFlight):
		w.logg.Debug(passCtx, "pass already in flight; rerun scheduled")
	default:
		w.logg.Error(passCtx, "sync pass finished with errors", err)
	}
}

// countingSubmit wraps the submit function so per-entry outcomes land on the
// counters under the trigger that started the pass.
func (w *Worker) countingSubmit(trigger string) queue.SubmitFunc {
	return func(ctx context.Context, data json.RawMessage) error {
		err := w.submit(ctx, data)
		if err != nil {
			w.metrics.IncFailed(trigger)
			return err
		}
		w.metrics.IncSubmitted(trigger)
		return nil
	}
}
