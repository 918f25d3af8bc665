package dispatch

import (
	"context"
	"errors"

	"gemini-gateway/pkg/apierrors"
	"gemini-gateway/pkg/pool"
	"gemini-gateway/pkg/schema"
	"gemini-gateway/pkg/translate"
	"gemini-gateway/pkg/upstream/gemini"
)

// StreamResult is one item of a ServeStream output channel: either a
// translated public chunk or a terminal error. The channel is always
// closed by the dispatcher: callers range over it rather than checking for
// nil.
type StreamResult struct {
	Chunk *schema.PublicStreamChunk
	Err   error
}

// ServeStream opens a streaming dispatch: it retries opening the upstream
// stream across keys exactly like Serve retries generateContent, but once
// a stream is successfully opened no further retry happens — content may
// already be flowing to the client, so a mid-stream failure is reported as
// a terminal error on the output channel instead of silently switching
// keys. Success is marked only after the upstream stream ends cleanly;
// mirrors wrapped_stream in the original adapter.
func (d *Dispatcher) ServeStream(ctx context.Context, req *schema.PublicChatRequest) (<-chan StreamResult, error) {
	upstreamReq, err := translate.ToUpstream(req)
	if err != nil {
		return nil, &apierrors.BadRequest{Message: err.Error()}
	}
	model := translate.MapModel(req.Model)

	budget := d.attemptBudget()
	var lastErr error

	for attempt := 0; attempt < budget; attempt++ {
		key, ok := d.pool.Acquire()
		if !ok {
			if attempt < budget-1 {
				if !sleep(ctx, waitForKey(attempt)) {
					return nil, &apierrors.ClientDisconnect{}
				}
				continue
			}
			return nil, terminalError(lastErr, &apierrors.PoolEmpty{})
		}

		d.logger.Info("dispatch stream attempt", "attempt", attempt+1, "budget", budget, "model", model)

		events, err := d.client.Stream(ctx, key, model, upstreamReq)
		if err == nil {
			out := make(chan StreamResult)
			go d.pumpStream(ctx, key, req.Model, events, out)
			return out, nil
		}

		lastErr = err
		if !d.recordFailureAndDecideRetry(key, err, attempt, budget) {
			return nil, terminalError(err, nil)
		}
		if attempt < budget-1 {
			if !sleep(ctx, retryBackoff(attempt)) {
				return nil, &apierrors.ClientDisconnect{}
			}
		}
	}

	return nil, terminalError(lastErr, nil)
}

// pumpStream translates each upstream event and forwards it, marking the
// key's outcome once the upstream stream ends. It owns out and always
// closes it on return.
func (d *Dispatcher) pumpStream(ctx context.Context, key, requestedModel string, events <-chan gemini.StreamEvent, out chan<- StreamResult) {
	defer close(out)

	translator := translate.NewStreamTranslator(requestedModel)

	for event := range events {
		if ctx.Err() != nil {
			out <- StreamResult{Err: &apierrors.ClientDisconnect{}}
			return
		}

		if event.Err != nil {
			var disconnect *apierrors.ClientDisconnect
			if errors.As(event.Err, &disconnect) {
				out <- StreamResult{Err: event.Err}
				return
			}
			d.recordFailureAndDecideRetry(key, event.Err, 0, 1)
			out <- StreamResult{Err: terminalError(event.Err, nil)}
			return
		}

		chunks, err := translator.Translate(event.Chunk)
		if err != nil {
			d.pool.MarkFailure(key, pool.FailureTransient, err)
			out <- StreamResult{Err: &apierrors.UpstreamTransient{Cause: err}}
			return
		}
		for i := range chunks {
			out <- StreamResult{Chunk: &chunks[i]}
		}
	}

	d.pool.MarkSuccess(key)
}
