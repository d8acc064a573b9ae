package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaimedvw/stellar-simulator/internal/metrics"
)

func counterValue(t *testing.T, c prometheus.Collector) float64 {
	t.Helper()
	ch := make(chan prometheus.Metric, 1)
	c.Collect(ch)
	m := &dto.Metric{}
	require.NoError(t, (<-ch).Write(m))
	return m.GetCounter().GetValue()
}

func TestRecordExternalizeIncrementsCounterAndGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.RecordExternalize("node-a", 1)
	m.RecordExternalize("node-a", 2)

	got := counterValue(t, m.ExternalizedSlots.WithLabelValues("node-a"))
	assert.Equal(t, float64(2), got)
}

func TestObserveRoundDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.ObserveRoundDuration(0.25)

	ch := make(chan prometheus.Metric, 1)
	m.RoundDuration.Collect(ch)
	out := &dto.Metric{}
	require.NoError(t, (<-ch).Write(out))
	assert.Equal(t, uint64(1), out.GetHistogram().GetSampleCount())
}

func TestRecordThresholdMet(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.RecordThresholdMet("node-a", "nomination")

	got := counterValue(t, m.QuorumThresholdMet.WithLabelValues("node-a", "nomination"))
	assert.Equal(t, float64(1), got)
}
