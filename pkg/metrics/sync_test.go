package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestSyncMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewSyncMetrics(reg)

	metrics.ObserveDuration("asset", 250*time.Millisecond)
	metrics.IncWrite("created")
	metrics.IncWrite("created")
	metrics.IncFailure("asset")
	metrics.AddSuggestions(3)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "presence_sync_writes_total", "op", "created"); err != nil {
		t.Fatalf("fetch writes: %v", err)
	} else if got != 2 {
		t.Fatalf("expected writes=2, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "presence_sync_failures_total", "pass", "asset"); err != nil {
		t.Fatalf("fetch failures: %v", err)
	} else if got != 1 {
		t.Fatalf("expected failures=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "presence_sync_duration_seconds", "pass", "asset"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}

	suggestions := findMetricFamily(mfs, "location_interpolation_suggestions_total")
	if suggestions == nil || len(suggestions.GetMetric()) == 0 {
		t.Fatal("expected suggestions counter family")
	}
	if got := suggestions.GetMetric()[0].GetCounter().GetValue(); got != 3 {
		t.Fatalf("expected suggestions=3, got %f", got)
	}
}

func TestSyncMetricsNilSafe(t *testing.T) {
	var metrics *SyncMetrics
	metrics.IncWrite("created")
	metrics.IncFailure("asset")
	metrics.AddSuggestions(1)
	metrics.ObserveDuration("asset", time.Second)

	empty := NewSyncMetrics(nil)
	empty.IncWrite("updated")
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
