package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaimedvw/stellar-simulator/internal/consensus"
	"github.com/jaimedvw/stellar-simulator/internal/metrics"
	"github.com/jaimedvw/stellar-simulator/internal/sim"
)

func TestCollectorRecordsExternalizeEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	c := metrics.NewCollector(m)

	v := consensus.NewValue(consensus.NewTransaction([]byte("a")))
	rec := consensus.ExternalizeRecord{From: "node-a", Slot: 7, Ballot: consensus.NewBallot(1, v)}
	c.On("node-a", 1.0, sim.SlotExternalizedEvent{Record: rec})

	got := counterValue(t, m.ExternalizedSlots.WithLabelValues("node-a"))
	assert.Equal(t, float64(1), got)
}

func TestCollectorIgnoresOtherEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	c := metrics.NewCollector(m)

	c.On("node-a", 1.0, sim.NominationStartedEvent{Round: 2})

	ch := make(chan prometheus.Metric, 8)
	m.ExternalizedSlots.Collect(ch)
	close(ch)
	require.Empty(t, ch)
}

var _ sim.Collector = (*metrics.Collector)(nil)
