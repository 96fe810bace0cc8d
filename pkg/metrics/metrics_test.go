package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestMetrics(t *testing.T) {
	m := NewMetrics("test", prometheus.NewRegistry())
	m.IncCallAttempt("seqno")
	m.IncCallAttempt("seqno")
	m.IncCallFailure("seqno")
	m.AddHarvested(10, 1)
	m.SetProcessedBlock(77)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.callAttemptsCounter.WithLabelValues("seqno")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.callFailuresCounter.WithLabelValues("seqno")))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.harvestedTxCounter))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.skippedShardsCounter))
	assert.Equal(t, 77.0, testutil.ToFloat64(m.lastIndexedSeqnoGauge))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncCallAttempt("seqno")
		m.AddHarvested(1, 0)
		m.SetProcessedBlock(1)
		m.AddDelivered(1)
	})
}
