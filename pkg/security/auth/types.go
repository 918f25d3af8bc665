package auth

// KeyTier distinguishes the client-facing key set (SECURITY_ADAPTER_API_KEYS)
// from the admin key set (SECURITY_ADMIN_API_KEYS). Each gets its own
// APIKeyValidator and middleware instance rather than sharing one pool.
type KeyTier int

const (
	// TierClient validates keys presented by ordinary chat completion
	// callers. An empty configured set falls back to insecure mode,
	// mirroring verify_api_key's "no keys configured" branch.
	TierClient KeyTier = iota
	// TierAdmin validates keys presented against /admin endpoints. An
	// empty configured set is always rejected with 403 — there is no
	// insecure fallback for admin access, mirroring verify_admin_key.
	TierAdmin
)

// APIKeySource defines where to extract an API key from an incoming
// request. Sources are tried in order; the first match wins.
type APIKeySource struct {
	Type   string // "header" or "query"
	Name   string // header name or query parameter name
	Scheme string // optional prefix to strip, e.g. "Bearer"
}

// DefaultSources mirrors the two ways original_source/src/main.py's
// api_key_header and bearer_scheme dependencies accept a credential: the
// X-API-Key header, or an Authorization: Bearer header.
func DefaultSources() []APIKeySource {
	return []APIKeySource{
		{Type: "header", Name: "X-API-Key"},
		{Type: "header", Name: "Authorization", Scheme: "Bearer"},
	}
}
