package network

import (
	"sync"

	"github.com/jaimedvw/stellar-simulator/internal/consensus"
)

// PeerID names a node in the simulated transport. It matches the engine's
// own stable string name, never a pointer -- peers reference each other by
// name through the Directory, which is the single place that resolves a
// name to a live handle.
type PeerID = string

// Link records a one-directional network edge with a fixed delivery delay.
type Link struct {
	Delay       SimDuration
	Established SimTime
}

// Links is a simulated peer-to-peer network: bidirectional edges with
// configurable delay. It only governs *reachability and latency* of
// message delivery; the actual pull-based exchange of envelopes is still
// driven by the consensus engine through PeerView, not pushed over this
// network.
type Links struct {
	mu        sync.RWMutex
	scheduler *Scheduler
	edges     map[PeerID]map[PeerID]*Link
}

// NewLinks creates a transport bound to the given scheduler.
func NewLinks(scheduler *Scheduler) *Links {
	return &Links{scheduler: scheduler, edges: make(map[PeerID]map[PeerID]*Link)}
}

// Connect establishes a bidirectional link between two peers with the
// given delay. Returns false if already connected or if from == to.
func (n *Links) Connect(from, to PeerID, delay SimDuration) bool {
	if from == to {
		return false
	}
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.edges[from] != nil && n.edges[from][to] != nil {
		return false
	}
	now := n.scheduler.Now()

	if n.edges[from] == nil {
		n.edges[from] = make(map[PeerID]*Link)
	}
	n.edges[from][to] = &Link{Delay: delay, Established: now}

	if n.edges[to] == nil {
		n.edges[to] = make(map[PeerID]*Link)
	}
	n.edges[to][from] = &Link{Delay: delay, Established: now}

	return true
}

// Disconnect removes the link between two peers.
func (n *Links) Disconnect(from, to PeerID) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.edges[from] == nil || n.edges[from][to] == nil {
		return false
	}
	delete(n.edges[from], to)
	if n.edges[to] != nil {
		delete(n.edges[to], from)
	}
	return true
}

// Connected reports whether from can reach to directly.
func (n *Links) Connected(from, to PeerID) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.edges[from] != nil && n.edges[from][to] != nil
}

// Neighbors returns every peer directly reachable from id.
func (n *Links) Neighbors(id PeerID) []PeerID {
	n.mu.RLock()
	defer n.mu.RUnlock()

	edges := n.edges[id]
	out := make([]PeerID, 0, len(edges))
	for peer := range edges {
		out = append(out, peer)
	}
	return out
}

// Deliver schedules handler to run after the from->to link's delay, and
// only if the link is still up at delivery time. Returns false if the
// peers are not connected.
func (n *Links) Deliver(from, to PeerID, handler func()) bool {
	n.mu.RLock()
	link := n.edges[from][to]
	n.mu.RUnlock()
	if link == nil {
		return false
	}

	n.scheduler.In(link.Delay, func() {
		if n.Connected(from, to) {
			handler()
		}
	})
	return true
}

// DeliverNominateWire round-trips env through WireCodec before scheduling
// delivery, modelling the serialization cost a real transport would pay
// per message even though the consensus engine itself only ever pulls
// PeerView outboxes in-process.
func (n *Links) DeliverNominateWire(codec *WireCodec, from, to PeerID, env consensus.NominateEnvelope, handler func(consensus.NominateEnvelope)) (bool, error) {
	encoded, err := codec.EncodeNominate(env)
	if err != nil {
		return false, err
	}
	ok := n.Deliver(from, to, func() {
		decoded, err := codec.DecodeNominate(encoded)
		if err != nil {
			return
		}
		handler(decoded)
	})
	return ok, nil
}
