package handlers

import (
	"net/http"
	"time"

	"gemini-gateway/pkg/httpapi"
)

// modelEntry describes one entry in GET /v1/models, matching the fields
// original_source/src/main.py's list_models hand-builds for each model.
type modelEntry struct {
	ID             string   `json:"id"`
	Object         string   `json:"object"`
	Created        int64    `json:"created"`
	OwnedBy        string   `json:"owned_by"`
	Permission     []any    `json:"permission"`
	Root           string   `json:"root"`
	Parent         *string  `json:"parent"`
	ContextWindow  int      `json:"context_window"`
	MaxTokens      int      `json:"max_tokens"`
	Capabilities   []string `json:"capabilities"`
}

var modelCapabilities = []string{"chat", "tools", "streaming", "json_mode", "vision"}

var modelIDs = []string{"gpt-4o", "gpt-4-turbo", "gpt-4o-mini", "gpt-3.5-turbo"}

// ModelsHandler serves GET /v1/models.
type ModelsHandler struct{}

// NewModelsHandler builds a ModelsHandler.
func NewModelsHandler() *ModelsHandler { return &ModelsHandler{} }

func (h *ModelsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	now := time.Now().Unix()
	data := make([]modelEntry, 0, len(modelIDs))
	for _, id := range modelIDs {
		data = append(data, modelEntry{
			ID:            id,
			Object:        "model",
			Created:       now,
			OwnedBy:       "openai-emulated",
			Permission:    []any{},
			Root:          id,
			Parent:        nil,
			ContextWindow: 1048576,
			MaxTokens:     8192,
			Capabilities:  modelCapabilities,
		})
	}

	_ = httpapi.WriteJSONResponse(w, http.StatusOK, map[string]any{
		"object": "list",
		"data":   data,
	})
}
