package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"gemini-gateway/pkg/httpapi"
	"gemini-gateway/pkg/pool"
)

// AdminPool is the subset of *pool.Pool the admin handlers need.
type AdminPool interface {
	Add(key string) bool
	Remove(key string) bool
	SetStatus(key string, status pool.Status) bool
	ResolvePrefix(prefix string) (string, error)
}

// AdminKeysHandler serves POST and DELETE on /admin/keys, mirroring
// add_gemini_key/remove_gemini_key in original_source/src/main.py.
type AdminKeysHandler struct {
	pool AdminPool
}

// NewAdminKeysHandler builds an AdminKeysHandler.
func NewAdminKeysHandler(p AdminPool) *AdminKeysHandler { return &AdminKeysHandler{pool: p} }

type keyBody struct {
	Key string `json:"key_to_add"`
}

type keyRemoveBody struct {
	Key string `json:"key_to_remove"`
}

func (h *AdminKeysHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.add(w, r)
	case http.MethodDelete:
		h.remove(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *AdminKeysHandler) add(w http.ResponseWriter, r *http.Request) {
	var body keyBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Key == "" {
		_ = httpapi.WriteErrorResponse(w, httpapi.HandleError(&httpapi.RequestError{Message: "key_to_add is required", Code: "missing_field", Param: "key_to_add"}))
		return
	}

	if !h.pool.Add(body.Key) {
		http.Error(w, "API key already exists", http.StatusConflict)
		return
	}

	_ = httpapi.WriteJSONResponse(w, http.StatusCreated, map[string]string{
		"status":  "success",
		"message": fmt.Sprintf("API key starting with %s added.", safePrefix(body.Key)),
	})
}

func (h *AdminKeysHandler) remove(w http.ResponseWriter, r *http.Request) {
	var body keyRemoveBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Key == "" {
		_ = httpapi.WriteErrorResponse(w, httpapi.HandleError(&httpapi.RequestError{Message: "key_to_remove is required", Code: "missing_field", Param: "key_to_remove"}))
		return
	}

	if !h.pool.Remove(body.Key) {
		http.Error(w, "API key not found", http.StatusNotFound)
		return
	}

	_ = httpapi.WriteJSONResponse(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": fmt.Sprintf("API key starting with %s removed.", safePrefix(body.Key)),
	})
}

// AdminKeyStatusHandler serves PUT /admin/keys/{key_id}, mirroring
// update_gemini_key_status: key_id may be a prefix of the full key.
type AdminKeyStatusHandler struct {
	pool AdminPool
}

// NewAdminKeyStatusHandler builds an AdminKeyStatusHandler.
func NewAdminKeyStatusHandler(p AdminPool) *AdminKeyStatusHandler {
	return &AdminKeyStatusHandler{pool: p}
}

type statusBody struct {
	Status string `json:"status"`
}

// ServeHTTP expects keyID as a path parameter the caller has already
// extracted from the URL (e.g. via http.ServeMux's {key_id} wildcard).
func (h *AdminKeyStatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	keyID := r.PathValue("key_id")
	if keyID == "" {
		_ = httpapi.WriteErrorResponse(w, httpapi.HandleError(&httpapi.RequestError{Message: "key_id is required", Code: "missing_field", Param: "key_id"}))
		return
	}

	var body statusBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		_ = httpapi.WriteErrorResponse(w, httpapi.HandleError(&httpapi.RequestError{Message: "invalid JSON body", Code: "invalid_json", Param: "body"}))
		return
	}

	status, ok := parseStatus(body.Status)
	if !ok {
		_ = httpapi.WriteErrorResponse(w, httpapi.HandleError(&httpapi.RequestError{Message: "status must be one of active, cooling, failed", Code: "invalid_value", Param: "status"}))
		return
	}

	fullKey, err := h.pool.ResolvePrefix(keyID)
	if err != nil {
		http.Error(w, fmt.Sprintf("no key found matching '%s'", keyID), http.StatusNotFound)
		return
	}

	if !h.pool.SetStatus(fullKey, status) {
		http.Error(w, "API key not found for status update", http.StatusNotFound)
		return
	}

	_ = httpapi.WriteJSONResponse(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": fmt.Sprintf("Status of key %s updated to %s.", safePrefix(fullKey), status),
	})
}

func parseStatus(raw string) (pool.Status, bool) {
	switch strings.ToLower(raw) {
	case "active":
		return pool.StatusActive, true
	case "cooling":
		return pool.StatusCooling, true
	case "failed":
		return pool.StatusFailed, true
	default:
		return "", false
	}
}

func safePrefix(key string) string {
	if len(key) <= 8 {
		return key
	}
	return key[:8]
}
