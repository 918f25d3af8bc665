package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"gemini-gateway/pkg/httpapi/types"
	"gemini-gateway/pkg/schema"
)

// MaxRequestBodySize caps a chat completion request body.
const MaxRequestBodySize = 10 * 1024 * 1024

// ParseChatCompletionRequest decodes and validates an incoming chat
// completion request body.
func ParseChatCompletionRequest(r *http.Request) (*schema.PublicChatRequest, error) {
	limited := io.LimitReader(r.Body, MaxRequestBodySize+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}
	if len(body) > MaxRequestBodySize {
		return nil, &RequestError{
			Message: fmt.Sprintf("request body exceeds maximum size of %d bytes", MaxRequestBodySize),
			Code:    types.CodeRequestTooLarge,
			Param:   "body",
		}
	}

	var req schema.PublicChatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, &RequestError{
			Message: fmt.Sprintf("invalid JSON: %v", err),
			Code:    types.CodeInvalidJSON,
			Param:   "body",
		}
	}

	if err := req.Validate(); err != nil {
		if valErr, ok := err.(*schema.ValidationError); ok {
			return nil, &RequestError{Message: valErr.Message, Code: types.CodeInvalidValue, Param: valErr.Field}
		}
		return nil, err
	}

	return &req, nil
}

// RequestError is a client-facing request parsing/validation failure.
type RequestError struct {
	Message string
	Code    string
	Param   string
}

func (e *RequestError) Error() string { return e.Message }

// ToErrorResponse converts a RequestError into the OpenAI error envelope.
func (e *RequestError) ToErrorResponse() *types.ErrorResponse {
	return types.NewInvalidRequestError(e.Message, e.Param, e.Code)
}
