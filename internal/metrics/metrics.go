// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Calculations counts engine computations by operation and outcome.
	Calculations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finance_tracker_calculations_total",
			Help: "Number of projection engine computations",
		},
		[]string{"operation", "status"},
	)

	// CappedSchedules counts amortization schedules that hit the iteration cap.
	CappedSchedules = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "finance_tracker_capped_schedules_total",
			Help: "Number of amortization schedules that never paid off the loan",
		},
	)

	// StoreOperations counts repository calls by operation and outcome.
	StoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finance_tracker_store_operations_total",
			Help: "Number of entity store operations",
		},
		[]string{"operation", "status"},
	)

	// HTTPRequests counts API requests by route and status code.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finance_tracker_http_requests_total",
			Help: "Number of HTTP API requests",
		},
		[]string{"route", "code"},
	)

	// HTTPDuration observes API latency by route.
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "finance_tracker_http_request_duration_seconds",
			Help:    "HTTP API request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)

// Status labels used across collectors.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusEmpty   = "empty"
)

// Outcome maps an error to a status label.
func Outcome(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusSuccess
}
