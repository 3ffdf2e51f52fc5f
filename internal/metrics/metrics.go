package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestDuration tracks inbound request latency in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "emailwriter_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		},
		[]string{"method", "route", "status"},
	)

	// UpstreamCallLatency tracks outbound API latency in milliseconds
	UpstreamCallLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "emailwriter_upstream_call_latency_ms",
			Help:    "Generative and translation API call latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(50, 2, 10), // 50ms to ~25s
		},
		[]string{"upstream", "status"},
	)

	// RateLimitedCount counts requests rejected by the rate limiter
	RateLimitedCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "emailwriter_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)
)

// RecordHTTPRequestDuration records an inbound request. route is the mux
// pattern, never the raw path.
func RecordHTTPRequestDuration(method, route string, status int, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}

// RecordUpstreamCall records an outbound call. status is the HTTP status
// code as text, or "error" when no response was received.
func RecordUpstreamCall(upstream, status string, duration time.Duration) {
	UpstreamCallLatency.WithLabelValues(upstream, status).Observe(float64(duration.Milliseconds()))
}

// IncrementRateLimited counts a rejected request
func IncrementRateLimited() {
	RateLimitedCount.Inc()
}
