package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

// APIKeyMiddleware is HTTP middleware for API key authentication for one
// tier (client or admin), adapted from a single-tier per-key metadata
// lookup to the gateway's two-tier flat-set model with an insecure-mode
// fallback for the client tier.
type APIKeyMiddleware struct {
	validator *APIKeyValidator
	sources   []APIKeySource
	logger    *slog.Logger
}

// NewAPIKeyMiddleware builds middleware for one validator. A nil sources
// slice falls back to DefaultSources.
func NewAPIKeyMiddleware(validator *APIKeyValidator, sources []APIKeySource, logger *slog.Logger) *APIKeyMiddleware {
	if sources == nil {
		sources = DefaultSources()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &APIKeyMiddleware{validator: validator, sources: sources, logger: logger}
}

// Handle wraps an HTTP handler with API key authentication.
func (m *APIKeyMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := m.extractAPIKey(r)

		result, err := m.validator.Validate(key)
		if err != nil {
			status := statusFor(err)
			m.logger.Warn("API key rejected",
				"error", err,
				"remote_addr", r.RemoteAddr,
				"path", r.URL.Path,
				"status", status,
			)
			http.Error(w, err.Error(), status)
			return
		}

		if result.Insecure {
			m.logger.Warn("running in insecure mode, no keys configured for this tier",
				"path", r.URL.Path,
			)
		}

		ctx := context.WithValue(r.Context(), keyIDContextKey, result.KeyID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrAdminNotConfigured):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidAdminKey):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidClientKey):
		return http.StatusUnauthorized
	default:
		return http.StatusUnauthorized
	}
}

// extractAPIKey tries each configured source in order and returns the
// first non-empty credential found, or "" if none match.
func (m *APIKeyMiddleware) extractAPIKey(r *http.Request) string {
	for _, source := range m.sources {
		switch source.Type {
		case "header":
			value := r.Header.Get(source.Name)
			if value == "" {
				continue
			}
			if source.Scheme == "" {
				return value
			}
			prefix := source.Scheme + " "
			if strings.HasPrefix(value, prefix) {
				return strings.TrimPrefix(value, prefix)
			}
		case "query":
			if value := r.URL.Query().Get(source.Name); value != "" {
				return value
			}
		}
	}
	return ""
}

type contextKey string

const keyIDContextKey contextKey = "auth_key_id"

// KeyID retrieves the authenticated key's identifier from request
// context. Returns "insecure_mode" when the request was admitted under an
// unconfigured client tier.
func KeyID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(keyIDContextKey).(string)
	return id, ok
}
