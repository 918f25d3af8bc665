package httpapi

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gemini-gateway/pkg/httpapi/types"
)

func newJSONRequest(t *testing.T, body string) *http.Request {
	t.Helper()
	return httptest.NewRequest(http.MethodPost, "/v1/chat/completions", bytes.NewBufferString(body))
}

func TestParseChatCompletionRequest_Valid(t *testing.T) {
	req := newJSONRequest(t, `{"model":"gpt-4","messages":[{"role":"user","content":"hi"}]}`)
	out, err := ParseChatCompletionRequest(req)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4", out.Model)
}

func TestParseChatCompletionRequest_InvalidJSON(t *testing.T) {
	req := newJSONRequest(t, `not json`)
	_, err := ParseChatCompletionRequest(req)
	require.Error(t, err)
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, types.CodeInvalidJSON, reqErr.Code)
}

func TestParseChatCompletionRequest_FailsValidation(t *testing.T) {
	req := newJSONRequest(t, `{"model":"gpt-4","messages":[]}`)
	_, err := ParseChatCompletionRequest(req)
	require.Error(t, err)
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, types.CodeInvalidValue, reqErr.Code)
}

func TestParseChatCompletionRequest_BodyTooLarge(t *testing.T) {
	huge := strings.Repeat("a", MaxRequestBodySize+2)
	req := newJSONRequest(t, `{"model":"gpt-4","messages":[{"role":"user","content":"`+huge+`"}]}`)
	_, err := ParseChatCompletionRequest(req)
	require.Error(t, err)
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, types.CodeRequestTooLarge, reqErr.Code)
}

func TestRequestError_ToErrorResponse(t *testing.T) {
	e := &RequestError{Message: "bad", Code: types.CodeInvalidValue, Param: "model"}
	resp := e.ToErrorResponse()
	assert.Equal(t, "bad", resp.Error.Message)
	assert.Equal(t, "model", resp.Error.Param)
	assert.Equal(t, types.ErrorTypeInvalidRequest, resp.Error.Type)
}
