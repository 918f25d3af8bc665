// Package apierrors defines the tagged error taxonomy dispatched with
// errors.As across the translator, pool, dispatcher and HTTP surface,
// shaped after a ProviderError/AuthError/RateLimitError/TimeoutError split.
package apierrors

import "fmt"

// BadRequest signals a client-supplied request that cannot be serviced
// regardless of which credential or upstream is used (validation failure,
// untranslatable schema, tool_choice referencing an unknown tool).
type BadRequest struct {
	Message string
}

func (e *BadRequest) Error() string { return e.Message }

// Unauthorized signals a missing or invalid client API key.
type Unauthorized struct {
	Message string
}

func (e *Unauthorized) Error() string { return e.Message }

// Forbidden signals a missing or invalid admin API key, or an admin
// endpoint reachable with no admin keys configured at all.
type Forbidden struct {
	Message string
}

func (e *Forbidden) Error() string { return e.Message }

// PoolEmpty signals that no credential pool key was ACTIVE at acquire time.
type PoolEmpty struct{}

func (e *PoolEmpty) Error() string { return "no active credential pool keys available" }

// UpstreamPermanent wraps an upstream error classified as permanent
// (invalid credential, invalid argument): the pool key is failed and the
// dispatcher does not retry with a different key for argument errors.
type UpstreamPermanent struct {
	Cause      error
	StatusCode int // the upstream HTTP status, when known
}

func (e *UpstreamPermanent) Error() string {
	return fmt.Sprintf("upstream permanent error (status %d): %v", e.StatusCode, e.Cause)
}

func (e *UpstreamPermanent) Unwrap() error { return e.Cause }

// UpstreamQuota wraps an upstream rate-limit/quota exhaustion error: the
// pool key is put into extended cooling and the dispatcher retries with
// another key.
type UpstreamQuota struct {
	Cause error
}

func (e *UpstreamQuota) Error() string {
	return fmt.Sprintf("upstream quota exhausted: %v", e.Cause)
}

func (e *UpstreamQuota) Unwrap() error { return e.Cause }

// UpstreamTransient wraps any other upstream failure (timeout, 5xx,
// connection reset): the pool key enters exponential-backoff cooling and
// the dispatcher retries with another key.
type UpstreamTransient struct {
	Cause error
}

func (e *UpstreamTransient) Error() string {
	return fmt.Sprintf("upstream transient error: %v", e.Cause)
}

func (e *UpstreamTransient) Unwrap() error { return e.Cause }

// ClientDisconnect signals the requesting client closed the connection
// before a (possibly streaming) response finished; no pool state changes.
type ClientDisconnect struct{}

func (e *ClientDisconnect) Error() string { return "client disconnected" }
