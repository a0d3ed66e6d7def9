package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SyncMetrics records the writes and failures of presence synchronization
// passes plus interpolation batch output.
type SyncMetrics struct {
	duration    *prometheus.HistogramVec
	writes      *prometheus.CounterVec
	failures    *prometheus.CounterVec
	suggestions prometheus.Counter
}

// NewSyncMetrics registers the engine metrics on the provided registerer.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	if reg == nil {
		return &SyncMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "presence_sync_duration_seconds",
		Help:    "Duration of presence synchronization passes in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"pass"})
	writes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "presence_sync_writes_total",
		Help: "Presence rows created, updated, or deleted by synchronization.",
	}, []string{"op"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "presence_sync_failures_total",
		Help: "Synchronization passes that failed and were swallowed.",
	}, []string{"pass"})
	suggestions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "location_interpolation_suggestions_total",
		Help: "Interpolated location suggestions emitted.",
	})
	reg.MustRegister(duration, writes, failures, suggestions)
	return &SyncMetrics{
		duration:    duration,
		writes:      writes,
		failures:    failures,
		suggestions: suggestions,
	}
}

// ObserveDuration records how long the named pass took.
func (s *SyncMetrics) ObserveDuration(pass string, duration time.Duration) {
	if s == nil || s.duration == nil {
		return
	}
	s.duration.WithLabelValues(normalizeLabel(pass)).Observe(duration.Seconds())
}

// IncWrite increments the write counter for the named operation
// (created/updated/deleted).
func (s *SyncMetrics) IncWrite(op string) {
	if s == nil || s.writes == nil {
		return
	}
	s.writes.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncFailure increments the swallowed-failure counter for the named pass.
func (s *SyncMetrics) IncFailure(pass string) {
	if s == nil || s.failures == nil {
		return
	}
	s.failures.WithLabelValues(normalizeLabel(pass)).Inc()
}

// AddSuggestions counts suggestions produced by an interpolation batch.
func (s *SyncMetrics) AddSuggestions(n int) {
	if s == nil || s.suggestions == nil || n <= 0 {
		return
	}
	s.suggestions.Add(float64(n))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
