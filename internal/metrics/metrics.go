// Package metrics holds the prometheus collectors exported on the metrics endpoint.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Diagnostic run outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeTimeout = "timeout"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "netdiag",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "netdiag",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	rateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "netdiag",
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the per-client rate limiter.",
		},
		[]string{"path"},
	)
	diagnosticRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "netdiag",
			Subsystem: "diagnostics",
			Name:      "runs_total",
			Help:      "Diagnostic command runs by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)
	diagnosticDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "netdiag",
			Subsystem: "diagnostics",
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of diagnostic command runs.",
			Buckets:   []float64{0.5, 1, 2, 4, 8, 15, 30, 45, 60, 90},
		},
		[]string{"operation"},
	)
)

// RegisterMetrics registers all collectors with the default registry. Safe to call repeatedly.
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, rateLimited, diagnosticRuns, diagnosticDuration)
	})
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}

func RecordRateLimited(path string) {
	RegisterMetrics()
	rateLimited.WithLabelValues(path).Inc()
}

func RecordDiagnosticRun(operation, outcome string, duration time.Duration) {
	RegisterMetrics()
	diagnosticRuns.WithLabelValues(operation, outcome).Inc()
	diagnosticDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
