package consensus

// Nominate drains pending mempool transactions into a candidate Value and
// broadcasts it, promoting voted/accepted values already at quorum. It is
// a no-op (not an error) if the node is not in its own priority list, if
// the mempool has nothing new to offer, or if the resulting Value is
// already present in nomination state.
func (e *Engine) Nominate() {
	e.checkUpdateNominationRound()

	if len(e.priorityList) == 0 {
		e.recomputePriorityList()
	}
	if !e.InPriorityList(e.name) {
		return
	}

	e.fillPendingQueue()
	batch := e.drainPendingQueue(MaxSlotTransactions)
	batch = e.pruneFinalised(batch)
	if len(batch) == 0 {
		return
	}

	v := NewValue(batch...)
	if e.valueInNominationState(v) {
		return
	}

	merged := v
	if e.nomState.voted != nil {
		merged = Combine(*e.nomState.voted, v)
	}
	merged = merged.Capped(MaxSlotTransactions)
	e.nomState.voted = &merged

	e.nomCounters.RecordNomination(merged, e.name, "voted")

	e.nomBroadcast = []NominateEnvelope{e.currentNominateEnvelope()}

	if e.nomState.accepted != nil && e.checkQuorumThresholdNomination(*e.nomState.accepted) {
		e.promoteNomination(*e.nomState.accepted, "accepted")
	}
	if e.checkQuorumThresholdNomination(merged) {
		e.promoteNomination(merged, "voted")
	}
}

func (e *Engine) fillPendingQueue() {
	for {
		tx, ok := e.mempool.GetTransaction()
		if !ok {
			return
		}
		if _, seen := e.pendingTxSeen[tx.Hash()]; seen {
			continue
		}
		e.pendingTxSeen[tx.Hash()] = struct{}{}
		e.pendingTxQueue = append(e.pendingTxQueue, tx)
	}
}

func (e *Engine) drainPendingQueue(max int) []Transaction {
	if len(e.pendingTxQueue) == 0 {
		return nil
	}
	n := max
	if n > len(e.pendingTxQueue) {
		n = len(e.pendingTxQueue)
	}
	batch := append([]Transaction(nil), e.pendingTxQueue[:n]...)
	e.pendingTxQueue = e.pendingTxQueue[n:]
	return batch
}

func (e *Engine) pruneFinalised(txs []Transaction) []Transaction {
	if len(e.finalisedTxs) == 0 {
		return txs
	}
	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if _, done := e.finalisedTxs[tx.Hash()]; !done {
			out = append(out, tx)
		}
	}
	return out
}

func (e *Engine) valueInNominationState(v Value) bool {
	for _, existing := range []*Value{e.nomState.voted, e.nomState.accepted, e.nomState.confirmed} {
		if existing != nil && existing.Equal(v) {
			return true
		}
	}
	return false
}

func (e *Engine) currentNominateEnvelope() NominateEnvelope {
	env := NominateEnvelope{From: e.name}
	if e.nomState.voted != nil {
		env.Voted = []Value{*e.nomState.voted}
	}
	if e.nomState.accepted != nil {
		env.Accepted = []Value{*e.nomState.accepted}
	}
	if e.nomState.confirmed != nil {
		env.Confirmed = []Value{*e.nomState.confirmed}
	}
	return env
}

// checkQuorumThresholdNomination implements the nomination quorum
// predicate: Q = distinct validators+inner-sets plus self; signed =
// |{p in Q : p==self (only if self already has v) OR peer-name in
// nom_ctr[v.hash].voted/accepted}|; return signed >= minimum_quorum.
func (e *Engine) checkQuorumThresholdNomination(v Value) bool {
	if e.quorumSet == nil {
		return false
	}
	entry := e.nomCounters.NominationEntry(v.Hash())
	selfHasValue := e.valueInNominationState(v)

	quorum := append(e.quorumSet.FlattenDistinct(), e.name)
	seen := make(map[string]struct{})
	signed := 0
	for _, p := range quorum {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		if p == e.name {
			if selfHasValue {
				signed++
			}
			continue
		}
		if _, voted := entry.Voted[p]; voted {
			signed++
			continue
		}
		if _, accepted := entry.Accepted[p]; accepted {
			signed++
		}
	}
	return signed >= e.quorumSet.MinimumQuorum()
}

// checkBlockingThresholdNomination implements the nomination v-blocking
// predicate: n = |Q|, k = minimum_quorum; count distinct signing peers
// (including inner-set blocking contributions); return count > n-k.
func (e *Engine) checkBlockingThresholdNomination(v Value) bool {
	if e.quorumSet == nil {
		return false
	}
	entry := e.nomCounters.NominationEntry(v.Hash())
	n := e.quorumSet.Size()
	k := e.quorumSet.MinimumQuorum()

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

func (e *Engine) promoteNomination(v Value, from string) {
	switch from {
	case "voted":
		if e.nomState.accepted != nil && e.nomState.accepted.Equal(v) {
			return
		}
		e.nomState.accepted = valuePtr(v)
		if e.nomState.voted != nil && e.nomState.voted.Equal(v) {
			e.nomState.voted = nil
		}
	case "accepted":
		if e.nomState.confirmed != nil && e.nomState.confirmed.Equal(v) {
			return
		}
		e.nomState.confirmed = valuePtr(v)
		if e.nomState.accepted != nil && e.nomState.accepted.Equal(v) {
			e.nomState.accepted = nil
		}
	}
}

func valuePtr(v Value) *Value { return &v }

// ReceiveNomination pulls one unseen Nominate envelope from each priority
// neighbor in turn and merges/promotes its voted/accepted values into
// local nomination state. The blocking threshold is evaluated for voted
// values but never forces a promotion on its own -- this preserves the source's
// observed (SCP-rule-deviating) behaviour per the open question in the
// design notes; only quorum threshold ever promotes.
func (e *Engine) ReceiveNomination() {
	e.checkUpdateNominationRound()

	for peerName := range e.priorityList {
		if peerName == e.name {
			continue
		}
		peer, ok := e.resolvePeer(peerName)
		if !ok {
			continue
		}
		env, ok := e.pullUnseenNomination(peer)
		if !ok {
			continue
		}
		e.processNominateEnvelope(env)
	}
}

func (e *Engine) pullUnseenNomination(peer PeerView) (NominateEnvelope, bool) {
	outbox := peer.NominateOutbox()
	if len(outbox) == 0 {
		return NominateEnvelope{}, false
	}
	seen, ok := e.receivedNomination[peer.Name()]
	if !ok {
		seen = map[EnvelopeID]struct{}{}
		e.receivedNomination[peer.Name()] = seen
	}
	for _, env := range outbox {
		if _, already := seen[env.ID()]; !already {
			seen[env.ID()] = struct{}{}
			return env, true
		}
	}
	return NominateEnvelope{}, false
}

func (e *Engine) processNominateEnvelope(env NominateEnvelope) {
	for _, v := range env.Voted {
		e.absorbNominationValue(v, "voted", env.From)
	}
	for _, v := range env.Accepted {
		e.absorbNominationValue(v, "accepted", env.From)
	}
}

func (e *Engine) absorbNominationValue(v Value, state, from string) {
	v = v.WithoutHashes(e.finalisedTxs)
	if v.IsEmpty() {
		return
	}

	var target **Value
	switch state {
	case "voted":
		target = &e.nomState.voted
	case "accepted":
		target = &e.nomState.accepted
	default:
		return
	}

	merged := v
	if *target != nil {
		merged = Combine(**target, v)
	}
	merged = merged.Capped(MaxSlotTransactions)
	*target = &merged

	e.nomCounters.RecordNomination(merged, from, state)

	if e.checkQuorumThresholdNomination(merged) {
		e.promoteNomination(merged, state)
	}

	if state == "voted" && e.checkBlockingThresholdNomination(merged) {
		// Blocking threshold observed: the source logs this but does not
		// force a voted->accepted promotion from blocking alone. Preserved
		// verbatim per the design notes' open question.
		_ = merged
	}
}
