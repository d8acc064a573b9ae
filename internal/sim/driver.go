package sim

import (
	"context"
	"math/rand"

	"golang.org/x/sync/errgroup"

	"github.com/jaimedvw/stellar-simulator/internal/consensus"
	"github.com/jaimedvw/stellar-simulator/internal/network"
)

// clockAdapter exposes a *network.Scheduler as consensus.Clock, converting
// simulated time to the float64 seconds the engine's round-timing math
// expects.
type clockAdapter struct{ scheduler *network.Scheduler }

func (c clockAdapter) Now() float64 {
	return float64(c.scheduler.Now()) / float64(1_000_000_000)
}

// Node bundles one engine with the collaborators its driver tick needs.
type Node struct {
	Engine  *consensus.Engine
	Mempool interface {
		Submit(consensus.Transaction)
	}
}

// Driver runs every node's consensus tick once per simulated round,
// dispatching the wave of per-node ticks concurrently through an
// errgroup.Group: each goroutine owns exactly one node for the duration of
// its tick, and the wave barrier (g.Wait()) guarantees no two ticks for
// the same node overlap and that one round is fully applied before the
// next begins.
type Driver struct {
	scheduler  *network.Scheduler
	directory  *network.Directory
	links      *network.Links
	wireCodec  *network.WireCodec
	nodes      map[string]*consensus.Engine
	order      []string
	collectors *Collectors
}

// NewDriver creates a Driver bound to the given scheduler, directory and
// links. links may be nil, in which case a round's Nominate broadcast is
// never pushed over the simulated wire -- used by tests that only care
// about consensus state transitions, not transport cost.
func NewDriver(scheduler *network.Scheduler, directory *network.Directory, links *network.Links) *Driver {
	return &Driver{
		scheduler:  scheduler,
		directory:  directory,
		links:      links,
		wireCodec:  network.NewWireCodec(),
		nodes:      make(map[string]*consensus.Engine),
		collectors: NewCollectors(),
	}
}

// Clock returns a consensus.Clock view of the driver's scheduler, for
// constructing engines before they are added to the driver.
func (d *Driver) Clock() consensus.Clock { return clockAdapter{d.scheduler} }

// AddNode registers an already-constructed engine and exposes it through
// the directory under its own name.
func (d *Driver) AddNode(e *consensus.Engine) {
	d.nodes[e.Name()] = e
	d.order = append(d.order, e.Name())
	d.directory.Register(e.Name(), e)
}

// Collectors returns the fan-out collectors observe the run through.
func (d *Driver) Collectors() *Collectors { return d.collectors }

// Tick runs one full round for every registered node: for nomination,
// prepare and commit in turn, each node pulls unseen envelopes from its
// priority neighbors and quorum peers and then attempts to advance its own
// state in that phase, and it finishes by pulling Externalize records.
// Node ticks run concurrently; round
// ordering across nodes is intentionally not guaranteed, matching the
// asynchronous, pull-based delivery discipline the engine is built on.
func (d *Driver) Tick(ctx context.Context) error {
	g, _ := errgroup.WithContext(ctx)

	for _, name := range d.order {
		e := d.nodes[name]
		g.Go(func() error {
			d.tickNode(e)
			return nil
		})
	}

	return g.Wait()
}

func (d *Driver) tickNode(e *consensus.Engine) {
	slotBefore := e.Slot()
	roundBefore := e.NominationRound()
	prepBefore, havePrepBefore := lastPrepareBallot(e)
	commitBefore, haveCommitBefore := lastCommitBallot(e)

	e.ReceiveNomination()
	e.Nominate()
	e.ReceivePrepare()
	e.PrepareBallotMsg()
	e.ReceiveCommit()
	e.PrepareCommitMsg()
	e.ReceiveExternalize()

	now := d.Clock().Now()

	if roundAfter := e.NominationRound(); roundAfter != roundBefore {
		d.collectors.On(e.Name(), now, NominationStartedEvent{Round: roundAfter})
	}

	if prepAfter, ok := lastPrepareBallot(e); ok && (!havePrepBefore || !prepAfter.Equal(prepBefore)) {
		d.collectors.On(e.Name(), now, BallotPreparedEvent{Ballot: prepAfter})
	}

	if commitAfter, ok := lastCommitBallot(e); ok && (!haveCommitBefore || !commitAfter.Equal(commitBefore)) {
		d.collectors.On(e.Name(), now, BallotCommittedEvent{Ballot: commitAfter})
	}

	if slotAfter := e.Slot(); slotAfter != slotBefore {
		for _, rec := range e.ExternalizeOutbox() {
			if rec.Slot >= slotBefore && rec.Slot < slotAfter {
				d.collectors.On(e.Name(), rec.Timestamp, SlotExternalizedEvent{Record: rec})
			}
		}
	}

	d.pushNominateOverWire(e)
}

// pushNominateOverWire round-trips the node's latest Nominate broadcast
// through WireCodec and hands it to every directly linked neighbor,
// modelling the serialization and transport delay a real gossip push would
// pay even though the engine itself only ever pulls PeerView outboxes
// in-process. A nil Links (as in tests that don't configure one) disables
// this entirely.
func (d *Driver) pushNominateOverWire(e *consensus.Engine) {
	if d.links == nil {
		return
	}
	outbox := e.NominateOutbox()
	if len(outbox) == 0 {
		return
	}
	latest := outbox[len(outbox)-1]
	for _, peer := range d.links.Neighbors(e.Name()) {
		_, _ = d.links.DeliverNominateWire(d.wireCodec, e.Name(), peer, latest, func(consensus.NominateEnvelope) {})
	}
}

// lastPrepareBallot returns the most recently broadcast Prepare ballot, if
// any -- the engine appends each new Prepare envelope after dropping one
// for an identical ballot, so the last entry is the latest broadcast and
// comparing it (not the outbox length) is what signals a new one.
func lastPrepareBallot(e *consensus.Engine) (consensus.Ballot, bool) {
	out := e.PrepareOutbox()
	if len(out) == 0 {
		return consensus.Ballot{}, false
	}
	return out[len(out)-1].Ballot, true
}

// lastCommitBallot returns the most recently broadcast Commit ballot, if
// any: the last entry of the append-only Commit outbox.
func lastCommitBallot(e *consensus.Engine) (consensus.Ballot, bool) {
	out := e.CommitOutbox()
	if len(out) == 0 {
		return consensus.Ballot{}, false
	}
	return out[len(out)-1].Ballot, true
}

// RunTicks runs n rounds in sequence, advancing the scheduler between
// rounds so round-timing windows (see checkUpdateNominationRound) elapse.
func (d *Driver) RunTicks(ctx context.Context, n int, roundDuration network.SimDuration) error {
	for i := 0; i < n; i++ {
		if err := d.Tick(ctx); err != nil {
			return err
		}
		d.scheduler.StepFor(roundDuration)
	}
	return nil
}

// NewRNG returns a per-node deterministic RNG seeded from a base seed and
// the node's name, so a whole run is reproducible from one seed while
// still giving every node an independent random stream.
func NewRNG(seed int64, name string) *rand.Rand {
	h := int64(0)
	for _, r := range name {
		h = h*31 + int64(r)
	}
	return rand.New(rand.NewSource(seed ^ h))
}
