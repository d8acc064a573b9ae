package consensus

// PrepareCommitMsg is triggered once ballot_state.confirmed becomes
// non-empty. It draws a confirmed prepare ballot and (re)broadcasts a
// Commit envelope for it.
func (e *Engine) PrepareCommitMsg() {
	if len(e.ballotState.confirmed) == 0 {
		return
	}
	b, ok := e.randomBallotFrom(e.ballotState.confirmed)
	if !ok {
		return
	}

	if e.isBallotFinalised(b) {
		e.purgePrepareForBallot(b)
		e.purgeCommitForBallot(b)
		return
	}

	e.commitBroadcast = append(e.commitBroadcast, CommitEnvelope{
		From:            e.name,
		Ballot:          b,
		PreparedCounter: b.Counter,
	})
	e.commitStateV.voted[b.Value.Hash()] = b
	e.commitCounters.SeedCommit(b.Value, e.name)
}

func (e *Engine) randomBallotFrom(m map[ValueHash]Ballot) (Ballot, bool) {
	if len(m) == 0 {
		return Ballot{}, false
	}
	keys := make([]ValueHash, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return m[keys[e.rng.Intn(len(keys))]], true
}

// ReceiveCommit samples one quorum peer and processes every unseen Commit
// envelope from it, promoting on quorum and purging superseded ballots on
// commit-v-blocking.
func (e *Engine) ReceiveCommit() {
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

	seen, ok := e.receivedCommit[peerName]
	if !ok {
		seen = map[EnvelopeID]struct{}{}
		e.receivedCommit[peerName] = seen
	}

	for _, msg := range peer.CommitOutbox() {
		if _, already := seen[msg.ID()]; already {
			continue
		}
		seen[msg.ID()] = struct{}{}

		b := msg.Ballot
		if e.isBallotFinalised(b) {
			e.purgePrepareForBallot(b)
			e.purgeCommitForBallot(b)
			continue
		}

		e.simpleProcessCommitBallotMessage(msg)

		bh := b.Value.Hash()
		if _, accepted := e.commitStateV.accepted[bh]; accepted && e.checkCommitQuorumThreshold(b) {
			e.promoteCommit(b, "accepted")
			e.PrepareExternalize()
		} else if _, voted := e.commitStateV.voted[bh]; voted && e.checkCommitQuorumThreshold(b) {
			e.promoteCommit(b, "voted")
		}

		for oldHash := range e.commitStateV.voted {
			if oldHash != bh && e.isVBlockingCommit(b) {
				if old, ok := e.commitStateV.voted[oldHash]; ok {
					e.purgeCommitForBallot(old)
				}
				if _, stillVoted := e.commitStateV.voted[bh]; !stillVoted {
					e.commitStateV.voted[bh] = b
				}
				break
			}
		}
	}
}

func (e *Engine) simpleProcessCommitBallotMessage(msg CommitEnvelope) {
	b := msg.Ballot
	h := b.Value.Hash()
	if _, ok := e.commitStateV.voted[h]; !ok {
		e.commitStateV.voted[h] = b
	}
	e.commitCounters.RecordCommit(b.Value, msg.From, "voted")
}

// checkCommitQuorumThreshold requires the ballot's value to already be in
// local voted or accepted commit state, then counts quorum peers (plus
// self) signed in commit_ctr against minimum_quorum.
func (e *Engine) checkCommitQuorumThreshold(b Ballot) bool {
	if e.quorumSet == nil {
		return false
	}
	h := b.Value.Hash()
	_, voted := e.commitStateV.voted[h]
	_, accepted := e.commitStateV.accepted[h]
	if !voted && !accepted {
		return false
	}

	entry := e.commitCounters.CommitEntry(h)
	quorum := append(e.quorumSet.FlattenDistinct(), e.name)
	seen := make(map[string]struct{})
	signed := 0
	for _, p := range quorum {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		if p == e.name {
			signed++
			continue
		}
		_, v := entry.Voted[p]
		_, a := entry.Accepted[p]
		if v || a {
			signed++
		}
	}
	return signed >= e.quorumSet.MinimumQuorum()
}

// isVBlockingCommit reports whether the set of peers that have signed
// other_ballot.value in commit_ctr is v-blocking.
func (e *Engine) isVBlockingCommit(otherBallot Ballot) bool {
	if e.quorumSet == nil {
		return false
	}
	n := e.quorumSet.Size()
	k := e.quorumSet.MinimumQuorum()
	entry := e.commitCounters.CommitEntry(otherBallot.Value.Hash())

	seen := make(map[string]struct{})
	count := 0
	for _, p := range e.quorumSet.FlattenDistinct() {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		_, v := entry.Voted[p]
		_, a := entry.Accepted[p]
		if v || a {
			count++
		}
	}
	return count > n-k
}

func (e *Engine) promoteCommit(b Ballot, from string) {
	h := b.Value.Hash()
	switch from {
	case "voted":
		if _, already := e.commitStateV.accepted[h]; already {
			return
		}
		e.commitStateV.accepted[h] = b
		delete(e.commitStateV.voted, h)
	case "accepted":
		if _, already := e.commitStateV.confirmed[h]; already {
			return
		}
		e.commitStateV.confirmed[h] = b
		delete(e.commitStateV.accepted, h)
	}
}
