package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Search backend Prometheus metrics.
var (
	BackendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "poisearch",
			Name:      "backend_requests_total",
			Help:      "Total number of search backend requests",
		},
		[]string{"index", "status"},
	)

	BackendRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "poisearch",
			Name:      "backend_request_duration_seconds",
			Help:      "Search backend request duration in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"index"},
	)

	BackendErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "poisearch",
			Name:      "backend_errors_total",
			Help:      "Total search backend errors by kind",
		},
		[]string{"index", "kind"},
	)
)

var registerBackendOnce sync.Once

// RegisterBackendMetrics registers the backend metrics on the default registry.
// Safe to call more than once.
func RegisterBackendMetrics() {
	registerBackendOnce.Do(func() {
		prometheus.MustRegister(BackendRequestsTotal)
		prometheus.MustRegister(BackendRequestDuration)
		prometheus.MustRegister(BackendErrorsTotal)
	})
}
