package gemini

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"gemini-gateway/pkg/apierrors"
	"gemini-gateway/pkg/schema"
)

// StreamEvent is one item produced by a Stream call: either a decoded chunk
// or a terminal error. Exactly one field is populated.
type StreamEvent struct {
	Chunk *schema.UpstreamStreamChunk
	Err   error
}

// Stream opens a streamGenerateContent call in SSE mode and returns a
// channel of cumulative chunks. The connection is opened synchronously so
// a rejected request (bad key, bad model) surfaces as a returned error
// rather than the first channel event — mirroring
// newStreamReader, which calls DoRequest before any Read loop starts. The
// returned channel is closed when the stream ends, whether cleanly or via
// error; the last event before close may be an error.
func (c *Client) Stream(ctx context.Context, apiKey, model string, req *schema.UpstreamRequest) (<-chan StreamEvent, error) {
	url := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse&key=%s", c.baseURL, model, apiKey)

	body, err := json.Marshal(req)
	if err != nil {
		return nil, &apierrors.BadRequest{Message: fmt.Sprintf("encode upstream request: %v", err)}
	}

	resp, err := c.do(ctx, url, body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, classifyStatus(resp.StatusCode, raw)
	}

	events := make(chan StreamEvent)
	go runStreamReader(ctx, resp.Body, events)
	return events, nil
}

func runStreamReader(ctx context.Context, body io.ReadCloser, events chan<- StreamEvent) {
	defer close(events)
	defer body.Close()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			events <- StreamEvent{Err: &apierrors.ClientDisconnect{}}
			return
		default:
		}

		line := scanner.Text()
		if line == "" || !strings.HasPrefix(line, "data: ") {
			continue
		}
		payload := strings.TrimPrefix(line, "data: ")
		if payload == "[DONE]" {
			return
		}

		var chunk schema.UpstreamStreamChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			events <- StreamEvent{Err: &apierrors.UpstreamTransient{Cause: fmt.Errorf("decode stream chunk: %w", err)}}
			return
		}
		events <- StreamEvent{Chunk: &chunk}
	}

	if err := scanner.Err(); err != nil {
		events <- StreamEvent{Err: &apierrors.UpstreamTransient{Cause: fmt.Errorf("read stream: %w", err)}}
	}
}
