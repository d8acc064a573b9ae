package consensus

// PrepareExternalize is triggered once commit_state.confirmed becomes
// non-empty. It draws a confirmed commit ballot, appends an Externalize
// record to the ledger at the current slot, and then runs the full
// per-phase finalisation purge before advancing the slot counter.
func (e *Engine) PrepareExternalize() {
	if len(e.commitStateV.confirmed) == 0 {
		return
	}
	bf, ok := e.randomBallotFrom(e.commitStateV.confirmed)
	if !ok {
		return
	}

	rec := ExternalizeRecord{
		From:      e.name,
		Slot:      e.slot,
		Ballot:    bf,
		HCounter:  bf.Counter,
		Timestamp: e.clock.Now(),
	}

	e.ledger.AddSlot(e.slot, rec)
	e.externalizeBroadcast = append(e.externalizeBroadcast, rec)
	e.externalizedSlots[e.slot] = struct{}{}

	e.finalise(rec)
}

// finalise runs the atomic finalisation purge and slot advancement shared
// by PrepareExternalize and ReceiveExternalize.
func (e *Engine) finalise(rec ExternalizeRecord) {
	e.resetNominationState()
	e.resetPrepareBallotPhase(rec.Ballot)
	e.resetCommitPhaseState(rec.Ballot)
	e.removeTxsFromMempool(rec.Ballot.Value)

	e.lastNominationStart = e.clock.Now()
	e.slot++
	e.priorityList = map[string]struct{}{}
	e.nomRound = 1
}

func (e *Engine) resetNominationState() {
	e.nomState.clear()
	e.nomRound = 1
}

// resetPrepareBallotPhase removes every entry in ballot_state/prep_ctr/
// prepared_ballots/prepare broadcast flags whose value hash equals the
// finalised ballot's value hash. The per-peer received-Prepare sets are
// not purged: they hold envelope IDs only, and those stay marked as seen.
func (e *Engine) resetPrepareBallotPhase(finalized Ballot) {
	fh := finalized.Value.Hash()

	for _, m := range []map[ValueHash]Ballot{e.ballotState.voted, e.ballotState.accepted, e.ballotState.confirmed, e.ballotState.aborted} {
		for h := range m {
			if h == fh {
				delete(m, h)
			}
		}
	}

	e.prepCounters.PurgePrepare(fh)
	delete(e.preparedBallots, fh)

	filtered := e.prepBroadcast[:0]
	for _, env := range e.prepBroadcast {
		if env.Ballot.Value.Hash() != fh {
			filtered = append(filtered, env)
		}
	}
	e.prepBroadcast = filtered
}

// resetCommitPhaseState removes every commit-state entry or statement
// counter whose value contains any transaction finalised by the given
// ballot.
func (e *Engine) resetCommitPhaseState(finalized Ballot) {
	finalizedHashes := make(map[TxHash]struct{})
	for _, tx := range finalized.Value.Transactions() {
		finalizedHashes[tx.Hash()] = struct{}{}
	}
	containsFinalized := func(h ValueHash) bool {
		for _, m := range []map[ValueHash]Ballot{e.commitStateV.voted, e.commitStateV.accepted, e.commitStateV.confirmed} {
			if b, ok := m[h]; ok {
				return valueContainsAny(b.Value, finalizedHashes)
			}
		}
		return false
	}

	e.commitCounters.PurgeCommit(containsFinalized)

	for _, m := range []map[ValueHash]Ballot{e.commitStateV.voted, e.commitStateV.accepted, e.commitStateV.confirmed} {
		for h, b := range m {
			if valueContainsAny(b.Value, finalizedHashes) {
				delete(m, h)
			}
		}
	}

	filtered := e.commitBroadcast[:0]
	for _, env := range e.commitBroadcast {
		if !valueContainsAny(env.Ballot.Value, finalizedHashes) {
			filtered = append(filtered, env)
		}
	}
	e.commitBroadcast = filtered
}

// removeTxsFromMempool deletes each transaction in v from the shared
// mempool and marks it finalised locally, so future nominations never
// reintroduce it. Idempotent: removing an already-finalised transaction
// is a no-op.
func (e *Engine) removeTxsFromMempool(v Value) {
	for _, tx := range v.Transactions() {
		e.finalisedTxs[tx.Hash()] = struct{}{}
		e.mempool.Remove(tx)
	}
}

func (e *Engine) purgePrepareForBallot(b Ballot) { e.resetPrepareBallotPhase(b) }
func (e *Engine) purgeCommitForBallot(b Ballot)  { e.resetCommitPhaseState(b) }

// ReceiveExternalize samples a quorum peer and pulls one (slot,
// Externalize) pair from it. A slot already present in the ledger is
// discarded (monotonicity); a slot that does not match this node's
// current slot is discarded too -- deliberately, there is no catch-up
// semantics in the core (see design notes open question).
func (e *Engine) ReceiveExternalize() {
	if e.quorumSet == nil {
		return
	}
	peerName, ok := e.quorumSet.RetrieveRandomPeer(e.name, e.rng)
	if !ok {
		return
	}
	peer, ok := e.resolvePeer(peerName)
	if !ok {
		return
	}

	outbox := peer.ExternalizeOutbox()
	if len(outbox) == 0 {
		return
	}
	rec := outbox[e.rng.Intn(len(outbox))]

	if e.ledger.HasSlot(rec.Slot) {
		return
	}
	if rec.Slot != e.slot {
		return
	}

	e.ledger.AddSlot(rec.Slot, rec)
	e.externalizeBroadcast = append(e.externalizeBroadcast, rec)
	e.externalizedSlots[rec.Slot] = struct{}{}

	e.finalise(rec)
}
