package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SyncMetrics records offline-queue sync passes.
type SyncMetrics struct {
	duration  *prometheus.HistogramVec
	submitted *prometheus.CounterVec
	failed    *prometheus.CounterVec
	depth     prometheus.Gauge
}

// NewSyncMetrics registers the sync metrics on the provided registerer.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	if reg == nil {
		return &SyncMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sync_pass_duration_seconds",
		Help:    "Duration of offline queue sync passes in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"trigger"})
	submitted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_orders_submitted",
		Help: "Queue entries successfully submitted.",
	}, []string{"trigger"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_orders_failed",
		Help: "Queue entry submissions that failed.",
	}, []string{"trigger"})
	depth := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sync_queue_depth",
		Help: "Entries waiting in the offline order queue.",
	})
	reg.MustRegister(duration, submitted, failed, depth)
	return &SyncMetrics{
		duration:  duration,
		submitted: submitted,
		failed:    failed,
		depth:     depth,
	}
}

// ObserveDuration records the duration of a pass started by trigger.
func (s *SyncMetrics) ObserveDuration(trigger string, duration time.Duration) {
	if s == nil || s.duration == nil {
		return
	}
	s.duration.WithLabelValues(normalizeLabel(trigger)).Observe(duration.Seconds())
}

// IncSubmitted counts a successful queue entry submission.
func (s *SyncMetrics) IncSubmitted(trigger string) {
	if s == nil || s.submitted == nil {
		return
	}
	s.submitted.WithLabelValues(normalizeLabel(trigger)).Inc()
}

// IncFailed counts a failed queue entry submission.
func (s *SyncMetrics) IncFailed(trigger string) {
	if s == nil || s.failed == nil {
		return
	}
	s.failed.WithLabelValues(normalizeLabel(trigger)).Inc()
}

// SetQueueDepth reports the current queue length.
func (s *SyncMetrics) SetQueueDepth(n int) {
	if s == nil || s.depth == nil {
		return
	}
	s.depth.Set(float64(n))
}

func normalizeLabel(trigger string) string {
	if trigger == "" {
		return "unknown"
	}
	return trigger
}
