// Package httpapi wires the gateway's OpenAI-compatible HTTP surface: chat
// completions (streaming and non-streaming), model listing, health/stats,
// and the admin credential-pool endpoints. response.go, request.go, and
// errors.go split along response writing, request parsing, and error
// mapping respectively.
package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"gemini-gateway/pkg/httpapi/types"
)

// WriteJSONResponse writes data as JSON with the given status code.
func WriteJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("encode JSON response: %w", err)
	}
	return nil
}

// WriteErrorResponse writes an OpenAI-compatible error envelope, deriving
// the HTTP status from the error's type.
func WriteErrorResponse(w http.ResponseWriter, errResp *types.ErrorResponse) error {
	return WriteJSONResponse(w, errResp.Error.HTTPStatusCode(), errResp)
}

// SetSSEHeaders sets the headers required for a Server-Sent Events
// response, matching the headers original_source's /v1/chat/completions
// sets on its StreamingResponse.
func SetSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
}

// WriteSSEChunk writes one "data: <json>\n\n" line and flushes it.
func WriteSSEChunk(w http.ResponseWriter, chunk interface{}) error {
	data, err := json.Marshal(chunk)
	if err != nil {
		return fmt.Errorf("marshal SSE chunk: %w", err)
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("write SSE chunk: %w", err)
	}
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
	return nil
}

// WriteSSEDone writes the terminal "[DONE]" marker.
func WriteSSEDone(w http.ResponseWriter) error {
	if _, err := fmt.Fprint(w, "data: [DONE]\n\n"); err != nil {
		return fmt.Errorf("write SSE done marker: %w", err)
	}
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
	return nil
}

// WriteSSEError writes an error envelope mid-stream, used when dispatch
// fails after the stream has already been opened.
func WriteSSEError(w http.ResponseWriter, errResp *types.ErrorResponse) error {
	data, err := json.Marshal(errResp)
	if err != nil {
		return fmt.Errorf("marshal SSE error: %w", err)
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("write SSE error: %w", err)
	}
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
	return nil
}
