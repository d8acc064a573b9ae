package metrics

import "github.com/jaimedvw/stellar-simulator/internal/sim"

// Collector adapts Metrics to sim.Collector, translating simulation events
// into Prometheus observations as a run progresses.
type Collector struct {
	metrics *Metrics

	lastRoundStart map[string]float64
}

// NewCollector wraps m as a sim.Collector.
func NewCollector(m *Metrics) *Collector {
	return &Collector{metrics: m, lastRoundStart: map[string]float64{}}
}

// On implements sim.Collector.
func (c *Collector) On(peer string, when float64, event sim.Event) {
	switch e := event.(type) {
	case sim.NominationStartedEvent:
		if start, ok := c.lastRoundStart[peer]; ok {
			c.metrics.ObserveRoundDuration(when - start)
		}
		c.lastRoundStart[peer] = when
	case sim.BallotPreparedEvent:
		c.metrics.RecordThresholdMet(peer, "nominate")
	case sim.BallotCommittedEvent:
		c.metrics.RecordThresholdMet(peer, "prepare")
	case sim.SlotExternalizedEvent:
		c.metrics.RecordThresholdMet(peer, "commit")
		c.metrics.RecordExternalize(peer, e.Record.Slot)
	}
}

var _ sim.Collector = (*Collector)(nil)
