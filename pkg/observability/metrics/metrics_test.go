package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

// New registers against the default Prometheus registry, so every
// collector exercised here must share one instance to avoid a
// duplicate-registration panic across test functions.
func TestMetrics(t *testing.T) {
	m := New()

	t.Run("RecordRequest buckets by status class", func(t *testing.T) {
		m.RecordRequest("/v1/chat/completions", 200, 0.05)
		m.RecordRequest("/v1/chat/completions", 404, 0.01)
		m.RecordRequest("/v1/chat/completions", 503, 1.2)

		assert.Equal(t, float64(1), testutil.ToFloat64(m.requestsTotal.WithLabelValues("/v1/chat/completions", "2xx")))
		assert.Equal(t, float64(1), testutil.ToFloat64(m.requestsTotal.WithLabelValues("/v1/chat/completions", "4xx")))
		assert.Equal(t, float64(1), testutil.ToFloat64(m.requestsTotal.WithLabelValues("/v1/chat/completions", "5xx")))
	})

	t.Run("RecordUpstreamCall tracks outcome and model", func(t *testing.T) {
		m.RecordUpstreamCall("gemini-1.5-pro", "success", 0.3)
		m.RecordUpstreamCall("gemini-1.5-pro", "quota_exceeded", 0.1)

		assert.Equal(t, float64(1), testutil.ToFloat64(m.upstreamCallsTotal.WithLabelValues("success")))
		assert.Equal(t, float64(1), testutil.ToFloat64(m.upstreamCallsTotal.WithLabelValues("quota_exceeded")))
	})

	t.Run("SetPoolKeyCount is a gauge, not a counter", func(t *testing.T) {
		m.SetPoolKeyCount("active", 5)
		m.SetPoolKeyCount("active", 3)

		assert.Equal(t, float64(3), testutil.ToFloat64(m.poolKeyStatus.WithLabelValues("active")))
	})

	t.Run("RecordKeySelection increments per key", func(t *testing.T) {
		m.RecordKeySelection("sk-a***")
		m.RecordKeySelection("sk-a***")
		m.RecordKeySelection("sk-b***")

		assert.Equal(t, float64(2), testutil.ToFloat64(m.poolKeySelects.WithLabelValues("sk-a***")))
		assert.Equal(t, float64(1), testutil.ToFloat64(m.poolKeySelects.WithLabelValues("sk-b***")))
	})

	t.Run("RecordStreamChunk increments the bare counter", func(t *testing.T) {
		before := testutil.ToFloat64(m.streamChunksTotal)
		m.RecordStreamChunk()
		m.RecordStreamChunk()
		assert.Equal(t, before+2, testutil.ToFloat64(m.streamChunksTotal))
	})
}
