package consensus

import (
	"math/rand"
	"sort"
)

// MaxSlotTransactions is MAX_SLOT_TXS: the cap on transactions carried by
// any single Value during nomination.
const MaxSlotTransactions = 200

// Mempool is the external collaborator supplying candidate transactions
// and accepting removal of finalised ones. Implementations must make
// Remove idempotent: removing an absent transaction is a no-op, not an
// error.
type Mempool interface {
	GetTransaction() (Transaction, bool)
	GetAllTransactions() []Transaction
	Remove(tx Transaction)
}

// Ledger is the external collaborator holding this node's append-only
// slot -> Externalize mapping. A slot, once written, is never mutated
// again.
type Ledger interface {
	AddSlot(slot uint64, rec ExternalizeRecord)
	GetSlot(slot uint64) (ExternalizeRecord, bool)
	HasSlot(slot uint64) bool
}

// Clock is the external collaborator supplying simulated wall-clock time.
// The engine never reads a process-global clock directly.
type Clock interface {
	Now() float64
}

// PeerView is the narrow surface of another node that the engine needs in
// order to pull unseen broadcasts from it. An engine never holds a typed
// *Engine pointer to a peer: it resolves PeerView handles by name, on
// demand, through a PeerDirectory, so node lifetimes are not coupled to
// each other (see the design note on cyclic peer references).
type PeerView interface {
	Name() string
	NominateOutbox() []NominateEnvelope
	PrepareOutbox() []PrepareEnvelope
	CommitOutbox() []CommitEnvelope
	ExternalizeOutbox() []ExternalizeRecord
}

// PeerDirectory resolves stable peer names to PeerView handles, gated by
// the caller's identity: a caller can only resolve a target it is actually
// linked to under the simulated topology. It is the network-wide registry
// the design notes call for: nodes and quorum sets reference peers by
// name, never by owned pointer.
type PeerDirectory interface {
	Peer(caller, target string) (PeerView, bool)
}

// nominationState holds the voted/accepted/confirmed Value lists for the
// nomination phase. Per the data model, each list holds at most one
// merged Value after reduction.
type nominationState struct {
	voted     *Value
	accepted  *Value
	confirmed *Value
}

func (s *nominationState) clear() {
	s.voted, s.accepted, s.confirmed = nil, nil, nil
}

// ballotState holds the voted/accepted/confirmed/aborted ballot maps for
// the prepare phase, keyed by value hash.
type ballotState struct {
	voted     map[ValueHash]Ballot
	accepted  map[ValueHash]Ballot
	confirmed map[ValueHash]Ballot
	aborted   map[ValueHash]Ballot
}

func newBallotStateMap() ballotState {
	return ballotState{
		voted:     map[ValueHash]Ballot{},
		accepted:  map[ValueHash]Ballot{},
		confirmed: map[ValueHash]Ballot{},
		aborted:   map[ValueHash]Ballot{},
	}
}

// commitState holds the voted/accepted/confirmed ballot maps for the
// commit phase.
type commitState struct {
	voted     map[ValueHash]Ballot
	accepted  map[ValueHash]Ballot
	confirmed map[ValueHash]Ballot
}

func newCommitStateMap() commitState {
	return commitState{
		voted:     map[ValueHash]Ballot{},
		accepted:  map[ValueHash]Ballot{},
		confirmed: map[ValueHash]Ballot{},
	}
}

// Engine is the per-node SCP state machine. It drives nomination,
// prepare, commit and externalize for one slot at a time, consuming only
// the Mempool, Ledger, Clock and PeerDirectory interfaces -- never the
// concrete implementations the driver wires up.
type Engine struct {
	name      string
	slot      uint64
	quorumSet *QuorumSet

	mempool Mempool
	ledger  Ledger
	clock   Clock
	peers   PeerDirectory
	rng     *rand.Rand

	// Nomination phase
	nomRound             uint32
	lastNominationStart  float64
	priorityList         map[string]struct{}
	nomState             nominationState
	nomCounters          *StatementCounters
	nomBroadcast         []NominateEnvelope
	receivedNomination   map[string]map[EnvelopeID]struct{}
	pendingTxQueue       []Transaction
	pendingTxSeen        map[TxHash]struct{}

	// Prepare phase
	ballotState     ballotState
	prepCounters    *StatementCounters
	preparedBallots map[ValueHash]PrepareRecord
	prepBroadcast   []PrepareEnvelope
	receivedPrepare map[string]map[EnvelopeID]struct{}

	// Commit phase
	commitStateV     commitState
	commitCounters   *StatementCounters
	commitBroadcast  []CommitEnvelope
	receivedCommit   map[string]map[EnvelopeID]struct{}

	// Externalize phase
	externalizeBroadcast []ExternalizeRecord
	externalizedSlots    map[uint64]struct{}
	finalisedTxs         map[TxHash]struct{}
}

// NewEngine constructs an Engine for a node named `name`. The quorum set
// must be configured (via QuorumSet.Set) before any consensus operation is
// invoked.
func NewEngine(name string, quorumSet *QuorumSet, mempool Mempool, ledger Ledger, clock Clock, peers PeerDirectory, rng *rand.Rand) *Engine {
	return &Engine{
		name:      name,
		slot:      1,
		quorumSet: quorumSet,
		mempool:   mempool,
		ledger:    ledger,
		clock:     clock,
		peers:     peers,
		rng:       rng,

		nomRound:           1,
		priorityList:       map[string]struct{}{},
		nomCounters:        NewStatementCounters(),
		receivedNomination: map[string]map[EnvelopeID]struct{}{},
		pendingTxSeen:      map[TxHash]struct{}{},

		ballotState:     newBallotStateMap(),
		prepCounters:    NewStatementCounters(),
		preparedBallots: map[ValueHash]PrepareRecord{},
		receivedPrepare: map[string]map[EnvelopeID]struct{}{},

		commitStateV:   newCommitStateMap(),
		commitCounters: NewStatementCounters(),
		receivedCommit: map[string]map[EnvelopeID]struct{}{},

		externalizedSlots: map[uint64]struct{}{},
		finalisedTxs:      map[TxHash]struct{}{},
	}
}

// Name returns the node's stable identifier.
func (e *Engine) Name() string { return e.name }

// Slot returns the node's current slot index.
func (e *Engine) Slot() uint64 { return e.slot }

// NominationRound returns the node's current nomination round.
func (e *Engine) NominationRound() uint32 { return e.nomRound }

// QuorumSet returns the node's quorum set.
func (e *Engine) QuorumSet() *QuorumSet { return e.quorumSet }

// NominateOutbox implements PeerView: the node's latest broadcast
// Nominate envelope(s), for peers to pull from.
func (e *Engine) NominateOutbox() []NominateEnvelope {
	return append([]NominateEnvelope(nil), e.nomBroadcast...)
}

// PrepareOutbox implements PeerView.
func (e *Engine) PrepareOutbox() []PrepareEnvelope {
	return append([]PrepareEnvelope(nil), e.prepBroadcast...)
}

// CommitOutbox implements PeerView.
func (e *Engine) CommitOutbox() []CommitEnvelope {
	return append([]CommitEnvelope(nil), e.commitBroadcast...)
}

// ExternalizeOutbox implements PeerView.
func (e *Engine) ExternalizeOutbox() []ExternalizeRecord {
	return append([]ExternalizeRecord(nil), e.externalizeBroadcast...)
}

// checkUpdateNominationRound advances the nomination round by one and
// recomputes the priority list once more than 1+r seconds (r being the
// current round) have passed since nomination for the current slot
// started. That start time is reset only when a slot is finalised, and a
// single call advances at most one round. This is checked before every
// nominate/receive action.
func (e *Engine) checkUpdateNominationRound() {
	now := e.clock.Now()
	roundLen := float64(1 + e.nomRound)
	if now > e.lastNominationStart+roundLen {
		e.nomRound++
		e.recomputePriorityList()
	}
}

// recomputePriorityList rebuilds the set of priority neighbors for the
// current slot/round: self is always included (weight(self)=1), and every
// validator/inner-set peer whose G(1,round,name) < 2^256*weight(peer) is
// added. Matches the source's accumulate-don't-reset behaviour is
// intentionally NOT reproduced here: each recompute yields a fresh list
// scoped to the current round, since stale priority entries from a prior
// round have no protocol meaning once the round advances.
func (e *Engine) recomputePriorityList() {
	e.priorityList = map[string]struct{}{e.name: {}}
	if e.quorumSet == nil {
		return
	}
	for _, name := range e.quorumSet.FlattenDistinct() {
		if name == e.name {
			continue
		}
		w := e.quorumSet.Weight(name)
		if NeighborOf(e.slot, e.nomRound, name, w) {
			e.priorityList[name] = struct{}{}
		}
	}
}

// InPriorityList reports whether a peer is currently a priority neighbor.
func (e *Engine) InPriorityList(name string) bool {
	_, ok := e.priorityList[name]
	return ok
}

// highestPriorityNeighbor returns the priority-list member (excluding self
// unless self is the only member) maximising Priority(slot,round,name).
func (e *Engine) highestPriorityNeighbor() (string, bool) {
	candidates := make([]string, 0, len(e.priorityList))
	for name := range e.priorityList {
		if name != e.name {
			candidates = append(candidates, name)
		}
	}
	if len(candidates) == 0 {
		for name := range e.priorityList {
			candidates = append(candidates, name)
		}
	}
	if len(candidates) == 0 {
		return "", false
	}
	sort.Strings(candidates) // deterministic tie-break ordering before max-scan
	best := candidates[0]
	bestPriority := Priority(e.slot, e.nomRound, best)
	for _, name := range candidates[1:] {
		p := Priority(e.slot, e.nomRound, name)
		if p.Cmp(bestPriority) > 0 {
			best = name
			bestPriority = p
		}
	}
	return best, true
}

func (e *Engine) resolvePeer(name string) (PeerView, bool) {
	if e.peers == nil {
		return nil, false
	}
	return e.peers.Peer(e.name, name)
}

// FinalisedTransactions returns the set of transaction hashes finalised so
// far at this node, for test and diagnostic use.
func (e *Engine) FinalisedTransactions() map[TxHash]struct{} {
	out := make(map[TxHash]struct{}, len(e.finalisedTxs))
	for h := range e.finalisedTxs {
		out[h] = struct{}{}
	}
	return out
}

func valueContainsAny(v Value, hashes map[TxHash]struct{}) bool {
	for h := range hashes {
		if v.Contains(h) {
			return true
		}
	}
	return false
}
