package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestSyncMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSyncMetrics(reg)

	m.ObserveDuration("interval", 120*time.Millisecond)
	m.IncSubmitted("interval")
	m.IncSubmitted("interval")
	m.IncFailed("")
	m.SetQueueDepth(3)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}

	byName := map[string]*dto.MetricFamily{}
	for _, fam := range families {
		byName[fam.GetName()] = fam
	}

	submitted := byName["sync_orders_submitted"]
	if submitted == nil || submitted.Metric[0].GetCounter().GetValue() != 2 {
		t.Fatalf("expected submitted counter 2, got %+v", submitted)
	}
	failed := byName["sync_orders_failed"]
	if failed == nil || failed.Metric[0].GetLabel()[0].GetValue() != "unknown" {
		t.Fatalf("expected empty trigger normalized to unknown, got %+v", failed)
	}
	depth := byName["sync_queue_depth"]
	if depth == nil || depth.Metric[0].GetGauge().GetValue() != 3 {
		t.Fatalf("expected depth 3, got %+v", depth)
	}
}

func TestSyncMetricsNilSafe(t *testing.T) {
	var m *SyncMetrics
	m.ObserveDuration("interval", time.Second)
	m.IncSubmitted("interval")
	m.IncFailed("interval")
	m.SetQueueDepth(1)

	unregistered := NewSyncMetrics(nil)
	unregistered.IncSubmitted("interval")
}
