// Package metrics exposes a small Prometheus surface over a running
// simulation: how many slots have externalized, how long nomination
// rounds take, and how often quorum thresholds are met. None of this is
// read by the consensus engine -- it is a sim.Collector observing the
// engine's events from the outside, grounded in the pack's
// github.com/luxfi/consensus metrics.Metrics wrapper pattern.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds every Prometheus collector this simulator registers.
type Metrics struct {
	registry prometheus.Registerer

	ExternalizedSlots  *prometheus.CounterVec
	RoundDuration      prometheus.Histogram
	QuorumThresholdMet *prometheus.CounterVec
	LedgerHeight       *prometheus.GaugeVec
}

// New creates a Metrics bound to reg and registers every collector it
// owns. Passing prometheus.NewRegistry() keeps a simulation run's metrics
// isolated from the default global registry, which matters when a process
// runs more than one simulation in the same lifetime (e.g. in tests).
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		registry: reg,
		ExternalizedSlots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scpsim",
			Name:      "externalized_slots_total",
			Help:      "Number of slots externalized, per node.",
		}, []string{"node"}),
		RoundDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "scpsim",
			Name:      "nomination_round_duration_seconds",
			Help:      "Observed duration of completed nomination rounds.",
			Buckets:   prometheus.DefBuckets,
		}),
		QuorumThresholdMet: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scpsim",
			Name:      "quorum_threshold_met_total",
			Help:      "Number of times a quorum threshold check passed, per node and phase.",
		}, []string{"node", "phase"}),
		LedgerHeight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "scpsim",
			Name:      "ledger_height",
			Help:      "Highest externalized slot index observed, per node.",
		}, []string{"node"}),
	}

	for _, c := range []prometheus.Collector{m.ExternalizedSlots, m.RoundDuration, m.QuorumThresholdMet, m.LedgerHeight} {
		reg.MustRegister(c)
	}
	return m
}

// ObserveRoundDuration records how long a completed nomination round
// lasted, in simulated seconds.
func (m *Metrics) ObserveRoundDuration(seconds float64) {
	m.RoundDuration.Observe(seconds)
}

// RecordThresholdMet increments the quorum-threshold-met counter for a
// node/phase pair.
func (m *Metrics) RecordThresholdMet(node, phase string) {
	m.QuorumThresholdMet.WithLabelValues(node, phase).Inc()
}

// RecordExternalize records one externalized slot for a node and updates
// its ledger-height gauge.
func (m *Metrics) RecordExternalize(node string, slot uint64) {
	m.ExternalizedSlots.WithLabelValues(node).Inc()
	m.LedgerHeight.WithLabelValues(node).Set(float64(slot))
}
