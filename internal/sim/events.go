// Package sim orchestrates a discrete-event run of many consensus engines:
// a per-tick dispatch loop, observability collectors, and the driver that
// wires engines, mempools, ledgers and the simulated network together.
package sim

import "github.com/jaimedvw/stellar-simulator/internal/consensus"

// Event is a notable state transition emitted by one node during a run,
// for collection and post-hoc analysis.
type Event interface{ isEvent() }

// NominationStartedEvent fires when a node begins a nomination round.
type NominationStartedEvent struct {
	Round uint32
}

func (NominationStartedEvent) isEvent() {}

// BallotPreparedEvent fires when a node (re)broadcasts a Prepare ballot.
type BallotPreparedEvent struct {
	Ballot consensus.Ballot
}

func (BallotPreparedEvent) isEvent() {}

// BallotCommittedEvent fires when a node (re)broadcasts a Commit ballot.
type BallotCommittedEvent struct {
	Ballot consensus.Ballot
}

func (BallotCommittedEvent) isEvent() {}

// SlotExternalizedEvent fires when a node finalises a slot.
type SlotExternalizedEvent struct {
	Record consensus.ExternalizeRecord
}

func (SlotExternalizedEvent) isEvent() {}

// Collector receives events as the simulation runs.
type Collector interface {
	On(peer string, when float64, event Event)
}

// CollectorFunc adapts a function to Collector.
type CollectorFunc func(peer string, when float64, event Event)

func (f CollectorFunc) On(peer string, when float64, event Event) { f(peer, when, event) }

// Collectors fans events out to every registered Collector.
type Collectors struct {
	collectors []Collector
}

// NewCollectors creates an empty fan-out.
func NewCollectors() *Collectors { return &Collectors{} }

// Add registers a collector.
func (c *Collectors) Add(collector Collector) { c.collectors = append(c.collectors, collector) }

// On implements Collector, dispatching to every registered collector.
func (c *Collectors) On(peer string, when float64, event Event) {
	for _, collector := range c.collectors {
		collector.On(peer, when, event)
	}
}

// ExternalizeLatencyCollector tracks, per slot, the spread between the
// first and last node to externalize it -- a direct measure of how far
// apart nodes drift before the network converges.
type ExternalizeLatencyCollector struct {
	first map[uint64]float64
	last  map[uint64]float64
}

// NewExternalizeLatencyCollector creates an empty collector.
func NewExternalizeLatencyCollector() *ExternalizeLatencyCollector {
	return &ExternalizeLatencyCollector{first: map[uint64]float64{}, last: map[uint64]float64{}}
}

func (c *ExternalizeLatencyCollector) On(peer string, when float64, event Event) {
	e, ok := event.(SlotExternalizedEvent)
	if !ok {
		return
	}
	slot := e.Record.Slot
	if t, seen := c.first[slot]; !seen || when < t {
		c.first[slot] = when
	}
	if t, seen := c.last[slot]; !seen || when > t {
		c.last[slot] = when
	}
}

// Spread returns the externalize-time spread for a slot, or false if the
// slot has not been observed.
func (c *ExternalizeLatencyCollector) Spread(slot uint64) (float64, bool) {
	first, ok := c.first[slot]
	if !ok {
		return 0, false
	}
	return c.last[slot] - first, true
}
