package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"gemini-gateway/pkg/httpapi/types"
)

// TimeoutMiddleware bounds request processing with context.WithTimeout,
// returning a 503 if the deadline is hit. Streaming handlers should not be
// wrapped with this: GEMINI_REQUEST_TIMEOUT already bounds each upstream
// call, and a blanket handler timeout would cut off an otherwise-healthy
// long-lived SSE stream.
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			done := make(chan struct{})
			go func() {
				defer close(done)
				next.ServeHTTP(w, r.WithContext(ctx))
			}()

			select {
			case <-done:
				return
			case <-ctx.Done():
				if ctx.Err() == context.DeadlineExceeded {
					errResp := types.NewServiceUnavailableError("request timed out")
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusServiceUnavailable)
					_ = json.NewEncoder(w).Encode(errResp)
				}
			}
		})
	}
}
