// Package schedule runs the credential pool's periodic observability sweep
// on a cron schedule, using robfig/cron/v3 the way an evidence-retention
// pruning job would, adapted here to a pool-status gauge refresh: COOLING
// keys recover lazily on every Acquire already, so this sweep exists purely
// to keep gateway_pool_keys current and to log a periodic snapshot, not to
// drive correctness.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"gemini-gateway/pkg/observability/metrics"
	"gemini-gateway/pkg/pool"
)

// PoolStats is the subset of *pool.Pool the sweep needs.
type PoolStats interface {
	Summary() pool.Summary
}

// Sweeper periodically snapshots the credential pool's status counts into
// Prometheus gauges.
type Sweeper struct {
	pool    PoolStats
	metrics *metrics.Metrics
	cron    *cron.Cron
	logger  *slog.Logger
	mu      sync.Mutex
	running bool
}

// NewSweeper builds a Sweeper. The cron schedule (e.g. "@every 1m") is
// passed to Start.
func NewSweeper(p PoolStats, m *metrics.Metrics, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		pool:    p,
		metrics: m,
		cron:    cron.New(),
		logger:  logger,
	}
}

// Start schedules the sweep. An empty schedule disables it.
func (s *Sweeper) Start(ctx context.Context, schedule string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if schedule == "" {
		s.logger.Info("pool sweep schedule not configured, skipping")
		return nil
	}

	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("schedule: invalid cron expression %q: %w", schedule, err)
	}

	if _, err := s.cron.AddFunc(schedule, s.runSweep); err != nil {
		return fmt.Errorf("schedule: failed to register sweep: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("pool sweep scheduler started", "schedule", schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

func (s *Sweeper) runSweep() {
	summary := s.pool.Summary()
	if s.metrics != nil {
		s.metrics.SetPoolKeyCount("active", summary.Active)
		s.metrics.SetPoolKeyCount("cooling", summary.Cooling)
		s.metrics.SetPoolKeyCount("failed", summary.Failed)
	}
	s.logger.Debug("pool sweep", "active", summary.Active, "cooling", summary.Cooling, "failed", summary.Failed)
}

// Stop stops the scheduler and waits for any running job to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil && s.running {
		stopCtx := s.cron.Stop()
		<-stopCtx.Done()
		s.running = false
		s.logger.Info("pool sweep scheduler stopped")
	}
}
