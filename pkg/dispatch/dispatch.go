// Package dispatch implements the request dispatcher: the per-request retry
// loop that acquires a credential pool key, calls the upstream Gemini
// client, and classifies the outcome back into the pool, grounded on
// OAIStyleGeminiAdapter.process_chat_completion in
// original_source/src/main.py.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"gemini-gateway/pkg/apierrors"
	"gemini-gateway/pkg/pool"
	"gemini-gateway/pkg/schema"
	"gemini-gateway/pkg/translate"
	"gemini-gateway/pkg/upstream/gemini"
)

// Pool is the subset of *pool.Pool the dispatcher depends on, so tests can
// substitute a fake.
type Pool interface {
	Acquire() (string, bool)
	MarkSuccess(key string)
	MarkFailure(key string, kind pool.FailureKind, cause error)
	Size() int
}

// UpstreamClient is the subset of *gemini.Client the dispatcher depends on.
type UpstreamClient interface {
	Generate(ctx context.Context, apiKey, model string, req *schema.UpstreamRequest) (*schema.UpstreamResponse, error)
	Stream(ctx context.Context, apiKey, model string, req *schema.UpstreamRequest) (<-chan gemini.StreamEvent, error)
}

// Dispatcher runs the retry loop described in spec §4.3.
type Dispatcher struct {
	pool       Pool
	client     UpstreamClient
	maxRetries int
	logger     *slog.Logger
}

// New builds a Dispatcher. maxRetries is GEMINI_MAX_RETRIES from config; the
// actual attempt budget for a given call is capped by the pool's size, since
// retrying beyond the number of available keys cannot help.
func New(p Pool, client UpstreamClient, maxRetries int, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{pool: p, client: client, maxRetries: maxRetries, logger: logger}
}

func (d *Dispatcher) attemptBudget() int {
	budget := d.maxRetries + 1
	if size := d.pool.Size(); size < budget {
		budget = size
	}
	if budget < 1 {
		budget = 1
	}
	return budget
}

// Serve runs the non-streaming dispatch loop: translate the request once,
// then retry generateContent across keys until one succeeds or the budget
// is exhausted. A translation failure is a client error and short-circuits
// before any key is acquired — retrying across keys cannot fix a malformed
// request.
func (d *Dispatcher) Serve(ctx context.Context, req *schema.PublicChatRequest) (*schema.PublicChatResponse, error) {
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

		d.logger.Info("dispatch attempt", "attempt", attempt+1, "budget", budget, "model", model)

		resp, err := d.client.Generate(ctx, key, model, upstreamReq)
		if err == nil {
			d.pool.MarkSuccess(key)
			return translate.FromUpstream(resp, req.Model)
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

// recordFailureAndDecideRetry classifies err into the pool's failure kind,
// records it, and reports whether the dispatcher should try another key —
// false for a permanent (argument) error, which is a property of the
// request itself and not worth repeating against a different credential.
func (d *Dispatcher) recordFailureAndDecideRetry(key string, err error, attempt, budget int) bool {
	var permanent *apierrors.UpstreamPermanent
	var quota *apierrors.UpstreamQuota
	var transient *apierrors.UpstreamTransient

	switch {
	case errors.As(err, &permanent):
		d.pool.MarkFailure(key, pool.FailurePermanent, err)
		// A 400 from upstream means the request itself is invalid; any key
		// will reject it the same way, so don't burn the retry budget.
		if permanent.StatusCode == 400 {
			return false
		}
		return attempt < budget-1
	case errors.As(err, &quota):
		d.pool.MarkFailure(key, pool.FailureQuota, err)
		return attempt < budget-1
	case errors.As(err, &transient):
		d.pool.MarkFailure(key, pool.FailureTransient, err)
		return attempt < budget-1
	default:
		d.pool.MarkFailure(key, pool.FailureTransient, err)
		return attempt < budget-1
	}
}

// terminalError maps the last error seen (and an optional override, used
// when the pool itself is empty) to the final error the HTTP surface will
// render, mirroring process_chat_completion's closing isinstance cascade.
func terminalError(lastErr, override error) error {
	if override != nil {
		return override
	}
	if lastErr == nil {
		return fmt.Errorf("dispatch: exhausted retry budget with no recorded error")
	}

	var quota *apierrors.UpstreamQuota
	var permanent *apierrors.UpstreamPermanent
	switch {
	case errors.As(lastErr, &quota):
		return &apierrors.UpstreamQuota{Cause: fmt.Errorf("all API keys have reached their quota limits: %w", quota.Cause)}
	case errors.As(lastErr, &permanent):
		return &apierrors.UpstreamPermanent{Cause: fmt.Errorf("all API keys rejected the request: %w", permanent.Cause), StatusCode: permanent.StatusCode}
	default:
		return &apierrors.UpstreamTransient{Cause: fmt.Errorf("all attempts failed: %w", lastErr)}
	}
}

// waitForKey mirrors min(5*(attempt+1), 30) from the original adapter's
// pool-exhaustion backoff.
func waitForKey(attempt int) time.Duration {
	seconds := math.Min(float64(5*(attempt+1)), 30)
	return time.Duration(seconds) * time.Second
}

// retryBackoff mirrors min(2**attempt, 30) from the original adapter's
// per-attempt retry backoff: applied after a key-acquired call to upstream
// fails and before the next key is acquired, distinct from waitForKey's
// pool-exhaustion wait.
func retryBackoff(attempt int) time.Duration {
	seconds := math.Min(math.Pow(2, float64(attempt)), 30)
	return time.Duration(seconds) * time.Second
}

func sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
