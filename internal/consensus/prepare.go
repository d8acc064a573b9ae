package consensus

// PrepareBallotMsg is triggered once nom_state.confirmed becomes non-empty.
// It draws the confirmed value, advances (or creates) the corresponding
// ballot, and (re)broadcasts a Prepare envelope for it.
func (e *Engine) PrepareBallotMsg() {
	if e.nomState.confirmed == nil {
		return
	}
	vc := *e.nomState.confirmed

	if e.isFinalised(vc) {
		e.nomState.confirmed = nil
		return
	}
	if _, aborted := e.ballotState.aborted[vc.Hash()]; aborted {
		return
	}

	var ballot Ballot
	if existing, ok := e.ballotState.voted[vc.Hash()]; ok {
		ballot = NewBallot(existing.Counter+1, vc)
	} else {
		ballot = NewBallot(1, vc)
	}
	e.ballotState.voted[vc.Hash()] = ballot

	rec := e.preparedBallots[vc.Hash()] // zero value (0,0,0) if absent
	e.replacePrepareBroadcast(PrepareEnvelope{
		From:     e.name,
		Ballot:   ballot,
		ACounter: rec.ACounter,
		CCounter: rec.CCounter,
		HCounter: rec.HCounter,
	})

	e.prepCounters.SeedPrepare(vc, e.name)
}

func (e *Engine) replacePrepareBroadcast(env PrepareEnvelope) {
	out := e.prepBroadcast[:0]
	for _, existing := range e.prepBroadcast {
		if !existing.Ballot.Equal(env.Ballot) {
			out = append(out, existing)
		}
	}
	e.prepBroadcast = append(out, env)
}

func (e *Engine) isFinalised(v Value) bool {
	for slot := range e.externalizedSlots {
		rec, ok := e.ledger.GetSlot(slot)
		if ok && rec.Ballot.Value.Equal(v) {
			return true
		}
	}
	return false
}

func (e *Engine) isBallotFinalised(b Ballot) bool {
	for slot := range e.externalizedSlots {
		rec, ok := e.ledger.GetSlot(slot)
		if ok && rec.Ballot.Equal(b) {
			return true
		}
	}
	return false
}

// ReceivePrepare samples one quorum peer and processes every unseen
// Prepare envelope from it, applying the four-case state transition,
// promoting on quorum, and aborting superseded ballots on v-blocking.
func (e *Engine) ReceivePrepare() {
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

	seen, ok := e.receivedPrepare[peerName]
	if !ok {
		seen = map[EnvelopeID]struct{}{}
		e.receivedPrepare[peerName] = seen
	}

	for _, msg := range peer.PrepareOutbox() {
		if _, already := seen[msg.ID()]; already {
			continue
		}
		seen[msg.ID()] = struct{}{}

		if e.isFinalised(msg.Ballot.Value) {
			continue
		}

		e.processPrepareBallotMessage(msg)

		b := msg.Ballot
		bh := b.Value.Hash()

		if _, voted := e.ballotState.voted[bh]; voted && e.checkPrepareQuorumThreshold(b) {
			e.promotePrepare(b, "voted")
		} else if _, accepted := e.ballotState.accepted[bh]; accepted && e.checkPrepareQuorumThreshold(b) {
			e.promotePrepare(b, "accepted")
		}

		for oldHash, oldBallot := range e.ballotState.voted {
			if oldHash != bh && e.isVBlockingPrepare(b) {
				e.abortBallots(b)
				if _, stillVoted := e.ballotState.voted[bh]; !stillVoted {
					e.ballotState.voted[bh] = b
				}
				_ = oldBallot
				break
			}
		}
	}
}

// processPrepareBallotMessage applies the four-case reconciliation between
// a received Prepare ballot and local voted state for the same value.
func (e *Engine) processPrepareBallotMessage(msg PrepareEnvelope) {
	b := msg.Ballot
	bh := b.Value.Hash()

	if localVoted, ok := e.ballotState.voted[bh]; ok {
		if b.Counter > localVoted.Counter {
			e.ballotState.voted[bh] = b
			e.prepCounters.RecordPrepare(b.Value, msg.From, "voted")
			e.prepCounters.RecordPrepare(b.Value, msg.From, "accepted")
		} else {
			e.prepCounters.RecordPrepare(b.Value, msg.From, "voted")
		}
		return
	}

	higherThanAnyVoted := false
	for _, local := range e.ballotState.voted {
		if b.Counter > local.Counter {
			higherThanAnyVoted = true
			break
		}
	}

	if higherThanAnyVoted {
		e.abortBallots(b)
		e.ballotState.voted[bh] = b
		e.prepCounters.RecordPrepare(b.Value, msg.From, "voted")
		return
	}

	e.ballotState.aborted[bh] = b
	e.prepCounters.RecordPrepare(b.Value, msg.From, "aborted")
}

// abortBallots moves every locally voted/accepted ballot with a smaller
// counter and a different value than received into aborted.
func (e *Engine) abortBallots(received Ballot) {
	for h, b := range e.ballotState.voted {
		if h != received.Value.Hash() && b.Counter < received.Counter {
			e.ballotState.aborted[h] = b
			delete(e.ballotState.voted, h)
		}
	}
	for h, b := range e.ballotState.accepted {
		if h != received.Value.Hash() && b.Counter < received.Counter {
			e.ballotState.aborted[h] = b
			delete(e.ballotState.accepted, h)
		}
	}
}

// checkPrepareQuorumThreshold requires the ballot's value to already be in
// local voted or accepted, then counts each quorum peer at most once
// across prep_ctr's voted and accepted sets.
func (e *Engine) checkPrepareQuorumThreshold(b Ballot) bool {
	if e.quorumSet == nil {
		return false
	}
	h := b.Value.Hash()
	_, voted := e.ballotState.voted[h]
	_, accepted := e.ballotState.accepted[h]
	if !voted && !accepted {
		return false
	}
	entry := e.prepCounters.PrepareEntry(h)
	return e.quorumSet.CheckThreshold(entry, e.quorumSet.MinimumQuorum())
}

// isVBlockingPrepare reports whether the set of peers that have signed
// other_ballot.value in prep_ctr is v-blocking: count > size - minimum.
func (e *Engine) isVBlockingPrepare(otherBallot Ballot) bool {
	if e.quorumSet == nil {
		return false
	}
	n := e.quorumSet.Size()
	k := e.quorumSet.MinimumQuorum()
	entry := e.prepCounters.PrepareEntry(otherBallot.Value.Hash())

	seen := make(map[string]struct{})
	count := 0
	for _, p := range e.quorumSet.FlattenDistinct() {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		_, voted := entry.Voted[p]
		_, accepted := entry.Accepted[p]
		if voted || accepted {
			count++
		}
	}
	return count > n-k
}

func (e *Engine) promotePrepare(b Ballot, from string) {
	h := b.Value.Hash()
	switch from {
	case "voted":
		if _, already := e.ballotState.accepted[h]; already {
			return
		}
		e.ballotState.accepted[h] = b
		delete(e.ballotState.voted, h)
	case "accepted":
		if _, already := e.ballotState.confirmed[h]; already {
			return
		}
		e.ballotState.confirmed[h] = b
		delete(e.ballotState.accepted, h)
	}
}
