// Package pool implements the credential pool: a set of upstream API keys
// cycled through ACTIVE, COOLING and FAILED states, selected with a
// fairness-first round-robin policy. It is grounded on
// GeminiKeyManager in original_source/src/main.py, reimplemented with a
// single sync.Mutex guarding all KeyRecord state in place of the Python
// asyncio.Lock.
package pool

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Status is a KeyRecord's lifecycle state.
type Status string

// Status values.
const (
	StatusActive  Status = "active"
	StatusCooling Status = "cooling"
	StatusFailed  Status = "failed"
)

// KeyRecord tracks one upstream API key's health and usage.
type KeyRecord struct {
	Key                string
	Status             Status
	FailureCount       int
	CoolingUntil       time.Time
	LastUsed           time.Time
	TotalRequests      int
	SuccessfulRequests int
}

// FailureKind classifies an upstream error for markFailure's state
// transition, mirroring mark_key_failed's isinstance checks.
type FailureKind int

// Failure kinds.
const (
	FailureTransient FailureKind = iota
	FailureQuota
	FailurePermanent
)

// Pool is the credential pool. The zero value is not usable; use New.
type Pool struct {
	mu             sync.Mutex
	keys           map[string]*KeyRecord
	order          []string // stable iteration order, insertion order
	lastUsedIndex  int
	coolingPeriod  time.Duration
	maxRetries     int
	logger         *slog.Logger
}

// Config carries the tunables spec §6.1 exposes as environment variables.
type Config struct {
	CoolingPeriod time.Duration
	MaxRetries    int
}

// New builds a Pool from an initial set of keys. It returns an error if no
// keys are provided, mirroring "No valid GEMINI_API_KEYS provided."
func New(keys []string, cfg Config, logger *slog.Logger) (*Pool, error) {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pool{
		keys:          make(map[string]*KeyRecord),
		lastUsedIndex: -1,
		coolingPeriod: cfg.CoolingPeriod,
		maxRetries:    cfg.MaxRetries,
		logger:        logger,
	}
	for _, k := range keys {
		if k == "" {
			continue
		}
		p.addLocked(k)
	}
	if len(p.keys) == 0 {
		return nil, fmt.Errorf("pool: no valid API keys provided")
	}
	logger.Info("credential pool initialized", "key_count", len(p.keys))
	return p, nil
}

// Size returns the number of keys currently known to the pool, regardless
// of status. The dispatcher uses this to bound its retry budget.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.keys)
}

// Acquire selects an available key using the fairness-first round-robin
// policy: recover due COOLING keys, prefer a never-used key, otherwise
// advance the round-robin cursor among ACTIVE keys in insertion order. It
// returns false if no ACTIVE key exists.
func (p *Pool) Acquire() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.recoverLocked()

	var active []*KeyRecord
	for _, id := range p.order {
		k := p.keys[id]
		if k.Status == StatusActive {
			active = append(active, k)
		}
	}
	if len(active) == 0 {
		p.logger.Warn("no active credential pool keys available")
		return "", false
	}

	var selected *KeyRecord
	for _, k := range active {
		if k.LastUsed.IsZero() {
			selected = k
			break
		}
	}
	if selected == nil {
		p.lastUsedIndex = (p.lastUsedIndex + 1) % len(active)
		selected = active[p.lastUsedIndex]
	}

	selected.LastUsed = time.Now()
	selected.TotalRequests++

	p.logger.Debug("credential pool key selected", "key_id", redact(selected.Key), "total_requests", selected.TotalRequests)
	return selected.Key, true
}

// recoverLocked transitions COOLING keys whose cooldown has elapsed back to
// ACTIVE. Caller must hold p.mu.
func (p *Pool) recoverLocked() {
	now := time.Now()
	recovered := 0
	for _, id := range p.order {
		k := p.keys[id]
		if k.Status == StatusCooling && !k.CoolingUntil.IsZero() && now.After(k.CoolingUntil) {
			k.Status = StatusActive
			k.CoolingUntil = time.Time{}
			recovered++
			p.logger.Info("credential pool key recovered", "key_id", redact(k.Key))
		}
	}
	if recovered > 0 {
		p.logger.Info("credential pool recovery sweep", "recovered_count", recovered)
	}
}

// MarkSuccess records a successful call on key and partially forgives past
// failures, mirroring mark_key_success's "decrement failure_count by one".
func (p *Pool) MarkSuccess(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	k, ok := p.keys[key]
	if !ok {
		return
	}
	k.SuccessfulRequests++
	if k.FailureCount > 0 {
		k.FailureCount--
	}
}

// MarkFailure records a failed call on key and transitions its status
// according to kind, mirroring mark_key_failed's three branches:
// permanent errors fail the key immediately; quota errors cool it for 3x
// the base cooling period; anything else cools it for an exponentially
// growing period (capped at one hour), or fails it once failure_count
// reaches maxRetries.
func (p *Pool) MarkFailure(key string, kind FailureKind, cause error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	k, ok := p.keys[key]
	if !ok {
		p.logger.Warn("mark failure on unknown key", "key_id", redact(key))
		return
	}

	k.FailureCount++

	switch {
	case kind == FailurePermanent:
		k.Status = StatusFailed
		p.logger.Warn("credential pool key permanently failed", "key_id", redact(k.Key), "failure_count", k.FailureCount, "cause", errString(cause))
	case kind == FailureQuota:
		k.Status = StatusCooling
		cooling := p.coolingPeriod * 3
		k.CoolingUntil = time.Now().Add(cooling)
		p.logger.Warn("credential pool key cooling (quota)", "key_id", redact(k.Key), "cooling_seconds", cooling.Seconds(), "cause", errString(cause))
	case k.FailureCount >= p.maxRetries:
		k.Status = StatusFailed
		p.logger.Warn("credential pool key permanently failed (max retries)", "key_id", redact(k.Key), "failure_count", k.FailureCount, "cause", errString(cause))
	default:
		k.Status = StatusCooling
		backoff := p.coolingPeriod * time.Duration(1<<uint(k.FailureCount-1))
		if backoff > time.Hour {
			backoff = time.Hour
		}
		k.CoolingUntil = time.Now().Add(backoff)
		p.logger.Warn("credential pool key cooling", "key_id", redact(k.Key), "cooling_seconds", backoff.Seconds(), "failure_count", k.FailureCount, "cause", errString(cause))
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// redact shortens a key to its first 8 and last 4 characters for logging,
// matching key[:8] + "..." + key[-4:] from the original key manager.
func redact(key string) string {
	if len(key) <= 12 {
		return strings.Repeat("*", len(key))
	}
	return key[:8] + "..." + key[len(key)-4:]
}
