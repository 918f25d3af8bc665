package middleware

import (
	"net/http"
	"time"
)

// RequestRecorder is the subset of *metrics.Metrics the metrics middleware
// needs, kept narrow so pkg/httpapi/middleware does not import
// pkg/observability/metrics directly.
type RequestRecorder interface {
	RecordRequest(route string, statusCode int, durationSeconds float64)
}

// MetricsMiddleware records each request's route, status, and latency via
// recorder. routeLabel derives the low-cardinality route label from a
// request (e.g. stripping path parameters) so per-key or per-ID paths don't
// explode the metric's cardinality.
func MetricsMiddleware(recorder RequestRecorder, routeLabel func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newResponseWriter(w)

			next.ServeHTTP(rw, r)

			if recorder != nil {
				route := r.URL.Path
				if routeLabel != nil {
					route = routeLabel(r)
				}
				recorder.RecordRequest(route, rw.statusCode, time.Since(start).Seconds())
			}
		})
	}
}
