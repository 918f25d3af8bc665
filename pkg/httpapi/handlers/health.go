package handlers

import (
	"net/http"
	"time"

	"gemini-gateway/pkg/httpapi"
	"gemini-gateway/pkg/pool"
)

// PoolStats is the subset of *pool.Pool the health/stats handlers need.
type PoolStats interface {
	Summary() pool.Summary
	Detailed() pool.Detailed
}

// HealthHandler serves GET /health: a liveness/readiness check keyed on
// whether any pool key is currently ACTIVE, mirroring health_check in
// original_source/src/main.py.
type HealthHandler struct {
	pool      PoolStats
	startedAt time.Time
	version   string
}

// NewHealthHandler builds a HealthHandler. startedAt is used to report
// uptime.
func NewHealthHandler(p PoolStats, startedAt time.Time, version string) *HealthHandler {
	return &HealthHandler{pool: p, startedAt: startedAt, version: version}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	summary := h.pool.Summary()
	detailed := h.pool.Detailed()
	healthy := summary.Active > 0

	status := "healthy"
	statusCode := http.StatusOK
	message := "All systems operational"
	if !healthy {
		status = "degraded"
		statusCode = http.StatusServiceUnavailable
		message = "Some API keys unavailable"
	}

	_ = httpapi.WriteJSONResponse(w, statusCode, map[string]any{
		"status":      status,
		"timestamp":   time.Now().Unix(),
		"service":     "gemini-openai-gateway",
		"version":     h.version,
		"key_summary": summary,
		"performance": detailed.Performance,
		"uptime":      time.Since(h.startedAt).Seconds(),
		"message":     message,
	})
}

// StatsHandler serves GET /stats: detailed per-key and performance
// statistics behind client authentication, mirroring get_stats.
type StatsHandler struct {
	pool PoolStats
}

// NewStatsHandler builds a StatsHandler.
func NewStatsHandler(p PoolStats) *StatsHandler { return &StatsHandler{pool: p} }

func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	detailed := h.pool.Detailed()
	_ = httpapi.WriteJSONResponse(w, http.StatusOK, map[string]any{
		"key_management_stats": detailed,
	})
}
