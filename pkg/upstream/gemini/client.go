// Package gemini is the upstream HTTP client for Google's Gemini
// generateContent / streamGenerateContent APIs. It performs exactly one
// attempt per call — retrying across credentials is the dispatcher's job,
// grounded on HTTPProvider.DoRequest in
// pkg/providers/http_provider.go, simplified to single-attempt since this
// gateway's retry loop already spans keys, not just requests.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"gemini-gateway/pkg/apierrors"
	"gemini-gateway/pkg/schema"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Client issues generateContent/streamGenerateContent calls against one
// Gemini-compatible endpoint. It carries no credential of its own — the
// API key is supplied per call, since the dispatcher selects a different
// one on each retry.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New builds a Client with the given per-request timeout.
func New(timeout time.Duration) *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// WithBaseURL overrides the endpoint, for tests pointed at an
// httptest.Server stub.
func (c *Client) WithBaseURL(url string) *Client {
	c.baseURL = url
	return c
}

// Generate performs a non-streaming generateContent call.
func (c *Client) Generate(ctx context.Context, apiKey, model string, req *schema.UpstreamRequest) (*schema.UpstreamResponse, error) {
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, model, apiKey)

	body, err := json.Marshal(req)
	if err != nil {
		return nil, &apierrors.BadRequest{Message: fmt.Sprintf("encode upstream request: %v", err)}
	}

	resp, err := c.do(ctx, url, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &apierrors.UpstreamTransient{Cause: fmt.Errorf("read response body: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(resp.StatusCode, raw)
	}

	var out schema.UpstreamResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &apierrors.UpstreamTransient{Cause: fmt.Errorf("decode upstream response: %w", err)}
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, url string, body []byte) (*http.Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &apierrors.UpstreamTransient{Cause: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &apierrors.ClientDisconnect{}
		}
		return nil, &apierrors.UpstreamTransient{Cause: err}
	}
	return resp, nil
}

// classifyStatus maps an upstream HTTP status to the tagged error taxonomy,
// mirroring mark_key_failed's isinstance cascade: 400 (invalid argument)
// and 401/403 are permanent, 429 is quota, everything else is transient.
func classifyStatus(status int, body []byte) error {
	msg := extractUpstreamMessage(body)
	switch status {
	case http.StatusBadRequest:
		return &apierrors.UpstreamPermanent{Cause: fmt.Errorf("invalid argument: %s", msg), StatusCode: status}
	case http.StatusUnauthorized, http.StatusForbidden:
		return &apierrors.UpstreamPermanent{Cause: fmt.Errorf("authentication failed: %s", msg), StatusCode: status}
	case http.StatusTooManyRequests:
		return &apierrors.UpstreamQuota{Cause: fmt.Errorf("resource exhausted: %s", msg)}
	default:
		return &apierrors.UpstreamTransient{Cause: fmt.Errorf("upstream status %d: %s", status, msg)}
	}
}

func extractUpstreamMessage(body []byte) string {
	var wrapped struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Error.Message != "" {
		return wrapped.Error.Message
	}
	if len(body) > 256 {
		return string(body[:256])
	}
	return string(body)
}
