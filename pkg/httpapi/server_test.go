package httpapi

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gemini-gateway/pkg/config"
	"gemini-gateway/pkg/dispatch"
	"gemini-gateway/pkg/httpapi/handlers"
	"gemini-gateway/pkg/pool"
	"gemini-gateway/pkg/schema"
	"gemini-gateway/pkg/security/auth"
)

type fakeDispatcher struct{}

func (fakeDispatcher) Serve(ctx context.Context, req *schema.PublicChatRequest) (*schema.PublicChatResponse, error) {
	return &schema.PublicChatResponse{Model: req.Model}, nil
}

func (fakeDispatcher) ServeStream(ctx context.Context, req *schema.PublicChatRequest) (<-chan dispatch.StreamResult, error) {
	ch := make(chan dispatch.StreamResult)
	close(ch)
	return ch, nil
}

type fakeAdminPoolStats struct{}

func (fakeAdminPoolStats) Add(key string) bool                          { return true }
func (fakeAdminPoolStats) Remove(key string) bool                       { return true }
func (fakeAdminPoolStats) SetStatus(key string, status pool.Status) bool { return true }
func (fakeAdminPoolStats) ResolvePrefix(prefix string) (string, error)  { return prefix, nil }
func (fakeAdminPoolStats) Summary() pool.Summary                        { return pool.Summary{Total: 1, Active: 1} }
func (fakeAdminPoolStats) Detailed() pool.Detailed                      { return pool.Detailed{} }

func testServer() *Server {
	cfg := &config.Config{GeminiRequestTimeout: 5_000_000_000, ServiceCORSOrigins: []string{"*"}}
	return NewServer(Deps{
		Config:     cfg,
		Dispatcher: fakeDispatcher{},
		Pool:       fakeAdminPoolStats{},
		ClientAuth: auth.NewAPIKeyValidator(auth.TierClient, []string{"client-secret"}),
		AdminAuth:  auth.NewAPIKeyValidator(auth.TierAdmin, []string{"admin-secret"}),
	})
}

func TestServer_HealthIsUnauthenticated(t *testing.T) {
	s := testServer()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_ChatCompletionsRequiresClientKey(t *testing.T) {
	s := testServer()
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions",
		bytes.NewBufferString(`{"model":"gpt-4","messages":[{"role":"user","content":"hi"}]}`))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestServer_ChatCompletionsSucceedsWithValidKey(t *testing.T) {
	s := testServer()
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions",
		bytes.NewBufferString(`{"model":"gpt-4","messages":[{"role":"user","content":"hi"}]}`))
	req.Header.Set("X-API-Key", "client-secret")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_AdminRouteRequiresAdminKey(t *testing.T) {
	s := testServer()
	req := httptest.NewRequest(http.MethodPost, "/admin/keys", bytes.NewBufferString(`{"key_to_add":"sk-a"}`))
	req.Header.Set("X-API-Key", "client-secret") // a valid client key, not an admin key
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestServer_AdminRouteSucceedsWithAdminKey(t *testing.T) {
	s := testServer()
	req := httptest.NewRequest(http.MethodPost, "/admin/keys", bytes.NewBufferString(`{"key_to_add":"sk-a"}`))
	req.Header.Set("X-API-Key", "admin-secret")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestServer_IsRunningFalseBeforeStart(t *testing.T) {
	s := testServer()
	assert.False(t, s.IsRunning())
}

func TestRouteLabel_CollapsesAdminKeyPath(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/admin/keys/sk-abc123", nil)
	assert.Equal(t, "/admin/keys/{key_id}", routeLabel(req))

	req2 := httptest.NewRequest(http.MethodGet, "/v1/models", nil)
	assert.Equal(t, "/v1/models", routeLabel(req2))
}

var _ = handlers.Dispatcher(fakeDispatcher{})
var _ = require.NoError
