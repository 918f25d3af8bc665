package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gemini-gateway/pkg/observability/metrics"
	"gemini-gateway/pkg/pool"
)

type fakePoolStats struct {
	summary pool.Summary
}

func (f fakePoolStats) Summary() pool.Summary { return f.summary }

// gaugeValue reads gateway_pool_keys{status=label} off the default
// registry, since metrics.New registers its collectors there and the
// gauge itself is unexported.
func gaugeValue(t *testing.T, label string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, fam := range families {
		if fam.GetName() != "gateway_pool_keys" {
			continue
		}
		for _, m := range fam.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "status" && lp.GetValue() == label {
					return m.GetGauge().GetValue()
				}
			}
		}
	}
	return 0
}

func TestSweeper_StartWithEmptyScheduleIsNoOp(t *testing.T) {
	s := NewSweeper(fakePoolStats{}, nil, nil)
	require.NoError(t, s.Start(context.Background(), ""))
	assert.False(t, s.running)
}

func TestSweeper_StartRejectsInvalidCronExpression(t *testing.T) {
	s := NewSweeper(fakePoolStats{}, nil, nil)
	err := s.Start(context.Background(), "not a cron expression")
	assert.Error(t, err)
}

// TestSweeper shares one *metrics.Metrics across subtests: metrics.New
// registers against the default Prometheus registry, so a second call
// would panic on duplicate registration.
func TestSweeper(t *testing.T) {
	m := metrics.New()

	t.Run("runSweep updates gauges from the pool summary", func(t *testing.T) {
		s := NewSweeper(fakePoolStats{summary: pool.Summary{Total: 5, Active: 3, Cooling: 1, Failed: 1}}, m, nil)
		s.runSweep()

		assert.Equal(t, float64(3), gaugeValue(t, "active"))
		assert.Equal(t, float64(1), gaugeValue(t, "cooling"))
		assert.Equal(t, float64(1), gaugeValue(t, "failed"))
	})

	t.Run("runSweep tolerates nil metrics", func(t *testing.T) {
		s := NewSweeper(fakePoolStats{summary: pool.Summary{Active: 1}}, nil, nil)
		assert.NotPanics(t, func() { s.runSweep() })
	})

	t.Run("Start actually fires the sweep on schedule", func(t *testing.T) {
		stats := fakePoolStats{summary: pool.Summary{Active: 9}}
		s := NewSweeper(stats, m, nil)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		require.NoError(t, s.Start(ctx, "@every 1s"))
		defer s.Stop()

		deadline := time.Now().Add(3 * time.Second)
		for time.Now().Before(deadline) {
			if gaugeValue(t, "active") == 9 {
				return
			}
			time.Sleep(50 * time.Millisecond)
		}
		t.Fatal("sweep did not run within the deadline")
	})
}

func TestSweeper_StopIsSafeWhenNeverStarted(t *testing.T) {
	s := NewSweeper(fakePoolStats{}, nil, nil)
	assert.NotPanics(t, func() { s.Stop() })
}
