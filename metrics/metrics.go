// Package metrics provides Prometheus metrics collection for the
// medical translation API. HTTP metrics track server performance,
// translation metrics track the pipeline itself:
//   - http_request_total: Counter with method, path, and status labels
//   - http_request_duration_seconds: Histogram with method and path labels
//   - http_request_in_flight: Gauge for concurrent requests
//   - translation_requests_total: Counter with language pair and outcome labels
//   - translation_duration_seconds: Histogram of end-to-end translation time
//   - safety_violations_total: Counter by violation code
//   - lexicon_entries: Gauge of names currently in the lexicon
//
// All metrics are registered with the Prometheus default registry
// during package initialization and exposed on /metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Total number of rate limiter buckets (IPs seen in last ~5 minutes)",
		},
	)

	TranslationRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "translation_requests_total",
			Help: "Translation requests by language pair and outcome",
		},
		[]string{"source_lang", "target_lang", "outcome"},
	)

	// Neural translation is slow compared to serving, hence the wide buckets
	TranslationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "translation_duration_seconds",
			Help:    "End-to-end translation latency including safety checks",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	SafetyViolationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "safety_violations_total",
			Help: "Rejected translations by safety violation code",
		},
		[]string{"code"},
	)

	LexiconEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "lexicon_entries",
			Help: "Medication names currently in the lexicon",
		},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(RateLimiterBucketsTotal)
	prometheus.MustRegister(TranslationRequestsTotal)
	prometheus.MustRegister(TranslationDuration)
	prometheus.MustRegister(SafetyViolationsTotal)
	prometheus.MustRegister(LexiconEntries)
}
