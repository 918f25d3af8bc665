package pool

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPool(t *testing.T, keys []string, cfg Config) *Pool {
	t.Helper()
	p, err := New(keys, cfg, nil)
	require.NoError(t, err)
	return p
}

func TestNew_NoKeysErrors(t *testing.T) {
	_, err := New(nil, Config{}, nil)
	assert.Error(t, err)

	_, err = New([]string{"", ""}, Config{}, nil)
	assert.Error(t, err)
}

func TestNew_SkipsEmptyKeys(t *testing.T) {
	p := newTestPool(t, []string{"key-a", "", "key-b"}, Config{})
	assert.Equal(t, 2, p.Size())
}

func TestAcquire_RoundRobinPrefersNeverUsed(t *testing.T) {
	p := newTestPool(t, []string{"key-a", "key-b", "key-c"}, Config{})

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		k, ok := p.Acquire()
		require.True(t, ok)
		seen[k] = true
	}
	assert.Len(t, seen, 3, "each never-used key should be selected once before any repeats")
}

func TestAcquire_EmptyPoolReturnsFalse(t *testing.T) {
	p := newTestPool(t, []string{"key-a"}, Config{})
	p.MarkFailure("key-a", FailurePermanent, errors.New("boom"))

	_, ok := p.Acquire()
	assert.False(t, ok)
}

func TestMarkFailure_Permanent(t *testing.T) {
	p := newTestPool(t, []string{"key-a"}, Config{CoolingPeriod: time.Second, MaxRetries: 5})
	p.MarkFailure("key-a", FailurePermanent, errors.New("invalid key"))

	detail := p.Detailed()
	require.Len(t, detail.Keys, 1)
	assert.Equal(t, StatusFailed, detail.Keys[0].Status)
}

func TestMarkFailure_QuotaCoolsThreeX(t *testing.T) {
	p := newTestPool(t, []string{"key-a"}, Config{CoolingPeriod: time.Second, MaxRetries: 5})
	before := time.Now()
	p.MarkFailure("key-a", FailureQuota, errors.New("rate limited"))

	p.mu.Lock()
	rec := p.keys["key-a"]
	p.mu.Unlock()

	assert.Equal(t, StatusCooling, rec.Status)
	assert.WithinDuration(t, before.Add(3*time.Second), rec.CoolingUntil, 200*time.Millisecond)
}

func TestMarkFailure_TransientExponentialBackoffCappedAtOneHour(t *testing.T) {
	p := newTestPool(t, []string{"key-a"}, Config{CoolingPeriod: time.Minute, MaxRetries: 100})

	for i := 0; i < 10; i++ {
		p.MarkFailure("key-a", FailureTransient, errors.New("transient"))
	}

	p.mu.Lock()
	rec := p.keys["key-a"]
	p.mu.Unlock()

	assert.Equal(t, StatusCooling, rec.Status)
	assert.LessOrEqual(t, time.Until(rec.CoolingUntil), time.Hour+time.Second)
}

func TestMarkFailure_FailsAfterMaxRetries(t *testing.T) {
	p := newTestPool(t, []string{"key-a"}, Config{CoolingPeriod: time.Millisecond, MaxRetries: 2})
	p.MarkFailure("key-a", FailureTransient, errors.New("e1"))
	p.MarkFailure("key-a", FailureTransient, errors.New("e2"))

	detail := p.Detailed()
	assert.Equal(t, StatusFailed, detail.Keys[0].Status)
}

func TestMarkSuccess_ForgivesOneFailure(t *testing.T) {
	p := newTestPool(t, []string{"key-a"}, Config{CoolingPeriod: time.Hour, MaxRetries: 5})
	p.MarkFailure("key-a", FailureTransient, errors.New("e1"))

	p.mu.Lock()
	failuresBefore := p.keys["key-a"].FailureCount
	p.mu.Unlock()
	require.Equal(t, 1, failuresBefore)

	p.MarkSuccess("key-a")

	p.mu.Lock()
	failuresAfter := p.keys["key-a"].FailureCount
	p.mu.Unlock()
	assert.Equal(t, 0, failuresAfter)
}

func TestRecoverLocked_CoolingKeyRecoversAfterDeadline(t *testing.T) {
	p := newTestPool(t, []string{"key-a", "key-b"}, Config{CoolingPeriod: time.Millisecond, MaxRetries: 5})
	p.MarkFailure("key-a", FailureTransient, errors.New("e1"))

	time.Sleep(10 * time.Millisecond)

	k, ok := p.Acquire()
	require.True(t, ok)
	assert.Contains(t, []string{"key-a", "key-b"}, k)

	summary := p.Summary()
	assert.Equal(t, 0, summary.Cooling, "both keys should have recovered by now")
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "*****", redact("short"))
	assert.Equal(t, "abcdefgh...wxyz", redact("abcdefghijklmnopqrstuvwxyz"))
}
