// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "overlay_http_requests_total",
			Help: "HTTP requests by method, route pattern and status code",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "overlay_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	OverlayOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "overlay_operations_total",
			Help: "Overlay service operations by name and outcome (ok, not_found, invalid, error)",
		},
		[]string{"operation", "outcome"},
	)

	StoreDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "overlay_store_duration_seconds",
			Help:    "Latency of overlay store calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// RecordRequest records one finished HTTP request.
func RecordRequest(method, route, status string, took time.Duration) {
	HTTPRequests.WithLabelValues(method, route, status).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(took.Seconds())
}

// RecordOperation counts one overlay service call.
func RecordOperation(operation, outcome string) {
	OverlayOperations.WithLabelValues(operation, outcome).Inc()
}

// ObserveStore records the latency of one store call.
func ObserveStore(operation string, took time.Duration) {
	StoreDuration.WithLabelValues(operation).Observe(took.Seconds())
}
