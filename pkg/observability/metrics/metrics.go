// Package metrics exposes Prometheus collectors for the gateway: a
// promauto-based Metrics struct adapted from rate-limit/budget counters to
// chat-completion request, credential-pool, and upstream-dispatch counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the gateway's Prometheus collectors.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	upstreamCallsTotal *prometheus.CounterVec
	upstreamDuration   *prometheus.HistogramVec

	poolKeyStatus  *prometheus.GaugeVec
	poolKeySelects *prometheus.CounterVec

	streamChunksTotal prometheus.Counter
}

// New registers a fresh set of collectors against the default Prometheus
// registry. Call once at startup.
func New() *Metrics {
	return &Metrics{
		requestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_http_requests_total",
				Help: "Total number of HTTP requests handled, by route and status class",
			},
			[]string{"route", "status_class"},
		),
		requestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gateway_http_request_duration_seconds",
				Help:    "HTTP request handling latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		upstreamCallsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_upstream_calls_total",
				Help: "Total number of upstream Gemini API calls, by outcome",
			},
			[]string{"outcome"},
		),
		upstreamDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gateway_upstream_call_duration_seconds",
				Help:    "Upstream Gemini API call latency in seconds",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
			},
			[]string{"model"},
		),
		poolKeyStatus: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gateway_pool_keys",
				Help: "Current number of credential pool keys, by status",
			},
			[]string{"status"},
		),
		poolKeySelects: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_pool_key_selections_total",
				Help: "Total number of times a credential pool key was selected for a request",
			},
			[]string{"key_id"},
		),
		streamChunksTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "gateway_stream_chunks_total",
				Help: "Total number of SSE chunks written to streaming clients",
			},
		),
	}
}

// RecordRequest records one completed HTTP request.
func (m *Metrics) RecordRequest(route string, statusCode int, durationSeconds float64) {
	class := "2xx"
	switch {
	case statusCode >= 500:
		class = "5xx"
	case statusCode >= 400:
		class = "4xx"
	case statusCode >= 300:
		class = "3xx"
	}
	m.requestsTotal.WithLabelValues(route, class).Inc()
	m.requestDuration.WithLabelValues(route).Observe(durationSeconds)
}

// RecordUpstreamCall records one upstream Gemini call.
func (m *Metrics) RecordUpstreamCall(model, outcome string, durationSeconds float64) {
	m.upstreamCallsTotal.WithLabelValues(outcome).Inc()
	m.upstreamDuration.WithLabelValues(model).Observe(durationSeconds)
}

// SetPoolKeyCount reports the current count of keys in a given status.
func (m *Metrics) SetPoolKeyCount(status string, count int) {
	m.poolKeyStatus.WithLabelValues(status).Set(float64(count))
}

// RecordKeySelection records a credential pool key being chosen for a
// request, keyed on its redacted form.
func (m *Metrics) RecordKeySelection(keyID string) {
	m.poolKeySelects.WithLabelValues(keyID).Inc()
}

// RecordStreamChunk records one SSE chunk written to a client.
func (m *Metrics) RecordStreamChunk() {
	m.streamChunksTotal.Inc()
}
