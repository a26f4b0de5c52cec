// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HttpRequestsTotal counts HTTP requests by route, method and status code.
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of http requests handled by the service.",
		},
		[]string{"path", "method", "code"},
	)

	// PassesTotal counts distribution passes by status (success/failed/skipped).
	PassesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "distributor_passes_total",
			Help: "Total number of distribution passes.",
		},
		[]string{"status"},
	)

	// ItemsTotal counts resolved work items by outcome.
	ItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "distributor_items_total",
			Help: "Total number of work items resolved, by outcome.",
		},
		[]string{"outcome"},
	)

	// PassDuration observes how long a pass takes.
	PassDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "distributor_pass_duration_seconds",
			Help:    "Duration of distribution passes in seconds.",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
	)

	// SchedulerEnabled is 1 while periodic passes are enabled.
	SchedulerEnabled = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "distributor_scheduler_enabled",
			Help: "Whether periodic distribution passes are enabled. 1 if enabled, 0 otherwise.",
		},
	)
)
