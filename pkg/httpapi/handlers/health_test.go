package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"gemini-gateway/pkg/pool"
)

type fakePoolStats struct {
	summary  pool.Summary
	detailed pool.Detailed
}

func (f *fakePoolStats) Summary() pool.Summary   { return f.summary }
func (f *fakePoolStats) Detailed() pool.Detailed { return f.detailed }

func TestHealthHandler_HealthyWhenAnyKeyActive(t *testing.T) {
	h := NewHealthHandler(&fakePoolStats{summary: pool.Summary{Total: 2, Active: 1}}, time.Now(), "1.0.0")
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
}

func TestHealthHandler_DegradedWhenNoActiveKeys(t *testing.T) {
	h := NewHealthHandler(&fakePoolStats{summary: pool.Summary{Total: 2, Active: 0, Failed: 2}}, time.Now(), "1.0.0")
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"degraded"`)
}

func TestHealthHandler_RejectsNonGet(t *testing.T) {
	h := NewHealthHandler(&fakePoolStats{}, time.Now(), "1.0.0")
	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestStatsHandler_ReturnsDetailed(t *testing.T) {
	h := NewStatsHandler(&fakePoolStats{detailed: pool.Detailed{Summary: pool.Summary{Total: 3}}})
	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "key_management_stats")
}
