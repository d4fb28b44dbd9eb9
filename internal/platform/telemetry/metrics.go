package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SyncMetrics holds the counters exported for synchronization and provider calls.
// A nil *SyncMetrics is valid and records nothing.
type SyncMetrics struct {
	// Passes by outcome (success, failed)
	SyncPassesTotal *prometheus.CounterVec
	// Pairs by result (stored, failed)
	SyncPairsTotal     *prometheus.CounterVec
	SyncPassDuration   prometheus.Histogram
	LastSyncTimestamp  prometheus.Gauge
	FetchAttemptsTotal *prometheus.CounterVec
}

// NewSyncMetrics registers the synchronization metrics on reg.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	factory := promauto.With(reg)
	return &SyncMetrics{
		SyncPassesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxrate_sync_passes_total",
				Help: "Number of synchronization passes by outcome",
			},
			[]string{"outcome"},
		),
		SyncPairsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxrate_sync_pairs_total",
				Help: "Number of currency pairs attempted by result",
			},
			[]string{"result"},
		),
		SyncPassDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "fxrate_sync_pass_duration_seconds",
				Help:    "Duration of synchronization passes",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
		),
		LastSyncTimestamp: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "fxrate_last_sync_timestamp_seconds",
				Help: "Unix time of the last committed synchronization pass",
			},
		),
		FetchAttemptsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxrate_fetch_attempts_total",
				Help: "Number of rate provider requests by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
	}
}

// ObservePass records the outcome of one pass.
func (m *SyncMetrics) ObservePass(ok bool, startedAt time.Time, duration time.Duration, stored, failed int) {
	if m == nil {
		return
	}
	outcome := "success"
	if !ok {
		outcome = "failed"
	}
	m.SyncPassesTotal.WithLabelValues(outcome).Inc()
	m.SyncPassDuration.Observe(duration.Seconds())
	m.SyncPairsTotal.WithLabelValues("stored").Add(float64(stored))
	m.SyncPairsTotal.WithLabelValues("failed").Add(float64(failed))
	if ok {
		m.LastSyncTimestamp.Set(float64(startedAt.Unix()))
	}
}

// ObserveFetch records one provider request.
func (m *SyncMetrics) ObserveFetch(provider string, ok bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if !ok {
		outcome = "error"
	}
	m.FetchAttemptsTotal.WithLabelValues(provider, outcome).Inc()
}

// Handler exposes the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
