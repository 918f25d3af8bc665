// Package types holds the wire-level HTTP envelope types for the gateway's
// HTTP surface: the OpenAI-compatible error envelope and the admin-facing
// response shapes.
package types

// ErrorResponse is the OpenAI-compatible error envelope returned for every
// error condition, so existing OpenAI SDKs and tooling parse it correctly.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the human- and machine-readable description of one
// error.
type ErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Param   string `json:"param,omitempty"`
	Code    string `json:"code,omitempty"`
}

// Error type constants matching the OpenAI API's error taxonomy.
const (
	ErrorTypeInvalidRequest     = "invalid_request_error"
	ErrorTypeAuthentication     = "authentication_error"
	ErrorTypePermissionDenied   = "permission_denied"
	ErrorTypeNotFound           = "not_found"
	ErrorTypeRateLimitExceeded  = "rate_limit_exceeded"
	ErrorTypeServerError        = "server_error"
	ErrorTypeBadGateway         = "bad_gateway"
	ErrorTypeServiceUnavailable = "service_unavailable"
)

// Error code constants for common scenarios this gateway raises.
const (
	CodeInvalidValue       = "invalid_value"
	CodeInvalidJSON        = "invalid_json"
	CodeRequestTooLarge    = "request_too_large"
	CodeInternalError      = "internal_error"
	CodePoolExhausted      = "pool_exhausted"
	CodeUpstreamQuota      = "upstream_quota_exceeded"
	CodeUpstreamRejected   = "upstream_rejected_request"
	CodeServiceUnavailable = "service_unavailable"
)

// NewErrorResponse builds an error envelope from its parts.
func NewErrorResponse(message, errorType, param, code string) *ErrorResponse {
	return &ErrorResponse{Error: ErrorDetail{Message: message, Type: errorType, Param: param, Code: code}}
}

// NewInvalidRequestError builds a 400 error envelope.
func NewInvalidRequestError(message, param, code string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeInvalidRequest, param, code)
}

// NewServerError builds a 500 error envelope.
func NewServerError(message string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeServerError, "", CodeInternalError)
}

// NewBadGatewayError builds a 502 error envelope, used when every upstream
// credential was rejected or failed transiently.
func NewBadGatewayError(message string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeBadGateway, "", CodeUpstreamRejected)
}

// NewServiceUnavailableError builds a 503 error envelope, used when the
// credential pool has no key to offer.
func NewServiceUnavailableError(message string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeServiceUnavailable, "", CodePoolExhausted)
}

// HTTPStatusCode returns the HTTP status code implied by the error type.
func (e *ErrorDetail) HTTPStatusCode() int {
	switch e.Type {
	case ErrorTypeInvalidRequest:
		return 400
	case ErrorTypeAuthentication:
		return 401
	case ErrorTypePermissionDenied:
		return 403
	case ErrorTypeNotFound:
		return 404
	case ErrorTypeRateLimitExceeded:
		return 429
	case ErrorTypeServerError:
		return 500
	case ErrorTypeBadGateway:
		return 502
	case ErrorTypeServiceUnavailable:
		return 503
	default:
		return 500
	}
}
