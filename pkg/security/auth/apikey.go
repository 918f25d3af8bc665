package auth

import (
	"fmt"
	"sync"
)

// Result is what a successful Validate call reports back to the
// middleware: the identifier to attach to the request context, and
// whether the request was let through only because insecure mode is
// active (no keys configured for this tier).
type Result struct {
	KeyID    string
	Insecure bool
}

// APIKeyValidator validates bearer credentials against one configured set
// of keys — either the client-facing set or the admin set, never both.
type APIKeyValidator struct {
	mu   sync.RWMutex
	tier KeyTier
	keys map[string]bool
}

// NewAPIKeyValidator builds a validator for one tier from a flat key list.
// An empty keys slice is valid: TierClient falls back to insecure mode,
// TierAdmin rejects every request.
func NewAPIKeyValidator(tier KeyTier, keys []string) *APIKeyValidator {
	keySet := make(map[string]bool, len(keys))
	for _, k := range keys {
		if k != "" {
			keySet[k] = true
		}
	}
	return &APIKeyValidator{tier: tier, keys: keySet}
}

// Validate checks key against the configured set. With zero keys
// configured, TierClient accepts any request in insecure mode while
// TierAdmin always rejects with ErrAdminNotConfigured.
func (v *APIKeyValidator) Validate(key string) (Result, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if len(v.keys) == 0 {
		if v.tier == TierAdmin {
			return Result{}, ErrAdminNotConfigured
		}
		return Result{KeyID: "insecure_mode", Insecure: true}, nil
	}

	if key != "" && v.keys[key] {
		return Result{KeyID: key}, nil
	}

	if v.tier == TierAdmin {
		return Result{}, ErrInvalidAdminKey
	}
	return Result{}, ErrInvalidClientKey
}

// ErrAdminNotConfigured, ErrInvalidAdminKey, and ErrInvalidClientKey are
// the three rejection reasons the middleware maps to HTTP status codes.
var (
	ErrAdminNotConfigured = fmt.Errorf("admin API keys not configured")
	ErrInvalidAdminKey    = fmt.Errorf("invalid admin API key")
	ErrInvalidClientKey   = fmt.Errorf("invalid API key or bearer token")
)

// Add registers key into the validator's set, for runtime key rotation.
func (v *APIKeyValidator) Add(key string) {
	if key == "" {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.keys[key] = true
}

// Remove deletes key from the validator's set.
func (v *APIKeyValidator) Remove(key string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.keys, key)
}

// Configured reports whether any keys are loaded for this tier.
func (v *APIKeyValidator) Configured() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.keys) > 0
}
