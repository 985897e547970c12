// Package metrics exposes Prometheus collectors for the collector service.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	postsFoundTotal       *prometheus.CounterVec
	postsNewTotal         *prometheus.CounterVec
	runsTotal             *prometheus.CounterVec
	sourceDurationSeconds *prometheus.HistogramVec
	activeCollections     prometheus.Gauge

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		postsFoundTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pulse_posts_found_total",
				Help: "Total number of posts returned by adapters, labeled by source.",
			},
			[]string{"source"},
		)

		postsNewTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pulse_posts_new_total",
				Help: "Total number of genuinely new posts persisted, labeled by source.",
			},
			[]string{"source"},
		)

		runsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pulse_runs_total",
				Help: "Total number of per-source collection runs, labeled by source and status.",
			},
			[]string{"source", "status"},
		)

		sourceDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pulse_source_duration_seconds",
				Help:    "Histogram of per-source collection durations.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"source"},
		)

		activeCollections = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "pulse_active_collections",
				Help: "Number of collection passes currently in flight.",
			},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveRun records the outcome of one source's collection run.
func ObserveRun(source, status string, found, newPosts int, duration time.Duration) {
	runsTotal.WithLabelValues(source, status).Inc()
	if found > 0 {
		postsFoundTotal.WithLabelValues(source).Add(float64(found))
	}
	if newPosts > 0 {
		postsNewTotal.WithLabelValues(source).Add(float64(newPosts))
	}
	sourceDurationSeconds.WithLabelValues(source).Observe(duration.Seconds())
}

// IncActiveCollections increments the in-flight collection gauge.
func IncActiveCollections() {
	activeCollections.Inc()
}

// DecActiveCollections decrements the in-flight collection gauge.
func DecActiveCollections() {
	activeCollections.Dec()
}
