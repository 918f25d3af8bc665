package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gemini-gateway/pkg/apierrors"
	"gemini-gateway/pkg/dispatch"
	"gemini-gateway/pkg/httpapi/middleware"
	"gemini-gateway/pkg/observability/evidence"
	"gemini-gateway/pkg/schema"
)

type fakeDispatcher struct {
	serveResp   *schema.PublicChatResponse
	serveErr    error
	streamItems []dispatch.StreamResult
	streamErr   error
}

func (f *fakeDispatcher) Serve(ctx context.Context, req *schema.PublicChatRequest) (*schema.PublicChatResponse, error) {
	return f.serveResp, f.serveErr
}

func (f *fakeDispatcher) ServeStream(ctx context.Context, req *schema.PublicChatRequest) (<-chan dispatch.StreamResult, error) {
	if f.streamErr != nil {
		return nil, f.streamErr
	}
	ch := make(chan dispatch.StreamResult, len(f.streamItems))
	for _, it := range f.streamItems {
		ch <- it
	}
	close(ch)
	return ch, nil
}

type fakeEvidence struct {
	records []*evidence.Record
}

func (f *fakeEvidence) Record(r *evidence.Record) error {
	f.records = append(f.records, r)
	return nil
}

func chatRequestBody() string {
	return `{"model":"gpt-4","messages":[{"role":"user","content":"hi"}]}`
}

func TestChatHandler_NonStreamingSuccess(t *testing.T) {
	d := &fakeDispatcher{serveResp: &schema.PublicChatResponse{Model: "gpt-4"}}
	ev := &fakeEvidence{}
	h := NewChatHandler(d, nil).WithEvidence(ev)

	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", bytes.NewBufferString(chatRequestBody()))
	req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "req-1"))
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, ev.records, 1)
	assert.Equal(t, "success", ev.records[0].Status)
}

func TestChatHandler_NonStreamingDispatchError(t *testing.T) {
	d := &fakeDispatcher{serveErr: &apierrors.PoolEmpty{}}
	h := NewChatHandler(d, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", bytes.NewBufferString(chatRequestBody()))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestChatHandler_RejectsNonPost(t *testing.T) {
	h := NewChatHandler(&fakeDispatcher{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/v1/chat/completions", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.NotEqual(t, http.StatusOK, w.Code)
}

func TestChatHandler_InvalidBodyReturnsError(t *testing.T) {
	h := NewChatHandler(&fakeDispatcher{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", bytes.NewBufferString("not json"))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatHandler_StreamingDeliversChunksAndDone(t *testing.T) {
	d := &fakeDispatcher{
		streamItems: []dispatch.StreamResult{
			{Chunk: &schema.PublicStreamChunk{ID: "1"}},
			{Chunk: &schema.PublicStreamChunk{ID: "2"}},
		},
	}
	h := NewChatHandler(d, nil)

	body := `{"model":"gpt-4","stream":true,"messages":[{"role":"user","content":"hi"}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "[DONE]")
}

func TestChatHandler_StreamOpenErrorReturnsErrorEnvelope(t *testing.T) {
	d := &fakeDispatcher{streamErr: &apierrors.PoolEmpty{}}
	h := NewChatHandler(d, nil)

	body := `{"model":"gpt-4","stream":true,"messages":[{"role":"user","content":"hi"}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestChatHandler_StreamMidFlightErrorWritesSSEErrorThenDone(t *testing.T) {
	d := &fakeDispatcher{
		streamItems: []dispatch.StreamResult{
			{Chunk: &schema.PublicStreamChunk{ID: "1"}},
			{Err: &apierrors.UpstreamTransient{}},
		},
	}
	h := NewChatHandler(d, nil)

	body := `{"model":"gpt-4","stream":true,"messages":[{"role":"user","content":"hi"}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Contains(t, w.Body.String(), "[DONE]")
}

func TestChatHandler_StreamClientDisconnectStopsWithoutDoneMarker(t *testing.T) {
	d := &fakeDispatcher{
		streamItems: []dispatch.StreamResult{
			{Err: &apierrors.ClientDisconnect{}},
		},
	}
	h := NewChatHandler(d, nil)

	body := `{"model":"gpt-4","stream":true,"messages":[{"role":"user","content":"hi"}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.NotContains(t, w.Body.String(), "[DONE]")
}
