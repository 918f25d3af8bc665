// Package handlers implements the gateway's HTTP endpoints. ChatHandler
// follows a request-parse/dispatch/respond shape, adapted from
// multi-provider routing down to the single Gemini dispatcher.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"gemini-gateway/pkg/apierrors"
	"gemini-gateway/pkg/dispatch"
	"gemini-gateway/pkg/httpapi"
	"gemini-gateway/pkg/httpapi/middleware"
	"gemini-gateway/pkg/observability/evidence"
	"gemini-gateway/pkg/schema"

	"github.com/google/uuid"
)

// Dispatcher is the subset of *dispatch.Dispatcher the chat handler needs.
type Dispatcher interface {
	Serve(ctx context.Context, req *schema.PublicChatRequest) (*schema.PublicChatResponse, error)
	ServeStream(ctx context.Context, req *schema.PublicChatRequest) (<-chan dispatch.StreamResult, error)
}

// EvidenceRecorder persists one dispatch outcome. Optional: a nil recorder
// disables evidence logging entirely.
type EvidenceRecorder interface {
	Record(r *evidence.Record) error
}

// ChatHandler serves POST /v1/chat/completions, both streaming and
// non-streaming.
type ChatHandler struct {
	dispatcher Dispatcher
	logger     *slog.Logger
	evidence   EvidenceRecorder
}

// NewChatHandler builds a ChatHandler.
func NewChatHandler(d Dispatcher, logger *slog.Logger) *ChatHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatHandler{dispatcher: d, logger: logger}
}

// WithEvidence attaches an EvidenceRecorder, returning the handler for
// chaining at construction time.
func (h *ChatHandler) WithEvidence(r EvidenceRecorder) *ChatHandler {
	h.evidence = r
	return h
}

func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	if r.Method != http.MethodPost {
		errResp := httpapi.HandleError(&httpapi.RequestError{Message: "method not allowed, use POST", Code: "method_not_allowed", Param: "method"})
		_ = httpapi.WriteErrorResponse(w, errResp)
		return
	}

	req, err := httpapi.ParseChatCompletionRequest(r)
	if err != nil {
		h.logger.WarnContext(ctx, "request parse failed", "request_id", requestID, "error", err)
		_ = httpapi.WriteErrorResponse(w, httpapi.HandleError(err))
		return
	}

	if req.Stream {
		h.serveStream(w, r, req)
		return
	}

	start := time.Now()
	resp, err := h.dispatcher.Serve(ctx, req)
	latency := time.Since(start)
	if err != nil {
		h.logger.ErrorContext(ctx, "dispatch failed", "request_id", requestID, "model", req.Model, "error", err)
		h.recordEvidence(requestID, req.Model, "upstream_error", latency, 0, 0, err)
		_ = httpapi.WriteErrorResponse(w, httpapi.HandleError(err))
		return
	}

	h.logger.InfoContext(ctx, "chat completion successful",
		"request_id", requestID,
		"model", req.Model,
		"latency_ms", latency.Milliseconds(),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
	)
	h.recordEvidence(requestID, req.Model, "success", latency, resp.Usage.PromptTokens, resp.Usage.CompletionTokens, nil)

	_ = httpapi.WriteJSONResponse(w, http.StatusOK, resp)
}

// recordEvidence persists a dispatch outcome if an EvidenceRecorder is
// attached; failures to record are logged but never affect the response.
func (h *ChatHandler) recordEvidence(requestID, model, status string, latency time.Duration, promptTokens, completionTokens int, err error) {
	if h.evidence == nil {
		return
	}
	rec := &evidence.Record{
		ID:               uuid.NewString(),
		RequestID:        requestID,
		Timestamp:        time.Now(),
		Model:            model,
		Status:           status,
		LatencyMillis:    latency.Milliseconds(),
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
	}
	if err != nil {
		rec.Error = err.Error()
	}
	if recErr := h.evidence.Record(rec); recErr != nil {
		h.logger.Warn("failed to record evidence", "request_id", requestID, "error", recErr)
	}
}

func (h *ChatHandler) serveStream(w http.ResponseWriter, r *http.Request, req *schema.PublicChatRequest) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	start := time.Now()

	results, err := h.dispatcher.ServeStream(ctx, req)
	if err != nil {
		h.logger.ErrorContext(ctx, "stream open failed", "request_id", requestID, "model", req.Model, "error", err)
		h.recordEvidence(requestID, req.Model, "upstream_error", time.Since(start), 0, 0, err)
		_ = httpapi.WriteErrorResponse(w, httpapi.HandleError(err))
		return
	}

	httpapi.SetSSEHeaders(w)
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	chunkCount := 0
	status := "success"
	var streamErr error
	for result := range results {
		if result.Err != nil {
			var disconnect *apierrors.ClientDisconnect
			if errors.As(result.Err, &disconnect) {
				h.logger.WarnContext(ctx, "client disconnected mid-stream", "request_id", requestID, "chunks_sent", chunkCount)
				h.recordEvidence(requestID, req.Model, "client_disconnect", time.Since(start), 0, 0, nil)
				return
			}
			h.logger.ErrorContext(ctx, "stream failed mid-flight", "request_id", requestID, "chunks_sent", chunkCount, "error", result.Err)
			_ = httpapi.WriteSSEError(w, httpapi.HandleError(result.Err))
			status = "upstream_error"
			streamErr = result.Err
			break
		}

		if result.Chunk != nil {
			if err := httpapi.WriteSSEChunk(w, result.Chunk); err != nil {
				h.logger.ErrorContext(ctx, "failed writing SSE chunk", "request_id", requestID, "error", err)
				return
			}
			chunkCount++
		}
	}

	_ = httpapi.WriteSSEDone(w)
	h.logger.InfoContext(ctx, "streaming chat completion finished", "request_id", requestID, "chunks_sent", chunkCount)
	h.recordEvidence(requestID, req.Model, status, time.Since(start), 0, 0, streamErr)
}
