package consensus

// StatementCounters records, per statement subject, which peers have
// signed which state. Nomination is keyed by ValueHash (storing peer
// names); prepare and commit are keyed by ValueHash too -- per the design
// note unifying ballot-counter identity on stable hash rather than on
// Value object identity, which removes the identity-vs-equality ambiguity
// observed in the source's Value-keyed maps.
type StatementCounters struct {
	nomination map[ValueHash]*nomEntry
	prepare    map[ValueHash]*ballotEntry
	commit     map[ValueHash]*ballotEntry
}

type nomEntry struct {
	Voted    map[string]struct{}
	Accepted map[string]struct{}
}

type ballotEntry struct {
	Voted     map[string]struct{}
	Accepted  map[string]struct{}
	Confirmed map[string]struct{}
	Aborted   map[string]struct{}
}

func newBallotEntry() *ballotEntry {
	return &ballotEntry{
		Voted:     map[string]struct{}{},
		Accepted:  map[string]struct{}{},
		Confirmed: map[string]struct{}{},
		Aborted:   map[string]struct{}{},
	}
}

// NewStatementCounters returns an empty set of statement counters.
func NewStatementCounters() *StatementCounters {
	return &StatementCounters{
		nomination: make(map[ValueHash]*nomEntry),
		prepare:    make(map[ValueHash]*ballotEntry),
		commit:     make(map[ValueHash]*ballotEntry),
	}
}

// RecordNomination idempotently records that peer has signed value v in
// the given state ("voted" or "accepted") during nomination.
func (c *StatementCounters) RecordNomination(v Value, peer string, state string) {
	h := v.Hash()
	e, ok := c.nomination[h]
	if !ok {
		e = &nomEntry{Voted: map[string]struct{}{}, Accepted: map[string]struct{}{}}
		c.nomination[h] = e
	}
	switch state {
	case "voted":
		e.Voted[peer] = struct{}{}
	case "accepted":
		e.Accepted[peer] = struct{}{}
	}
}

// NominationEntry returns the signed-set view of the nomination counter
// for a value hash, or an empty set if the value has never been observed.
func (c *StatementCounters) NominationEntry(h ValueHash) signedSet {
	e, ok := c.nomination[h]
	if !ok {
		return emptySignedSet()
	}
	return signedSet{Voted: e.Voted, Accepted: e.Accepted}
}

// SeedPrepare seeds prep_ctr[value] with self in voted and accepted, as
// prepare_ballot_msg does on first preparing a value.
func (c *StatementCounters) SeedPrepare(v Value, self string) {
	h := v.Hash()
	if _, ok := c.prepare[h]; ok {
		return
	}
	e := newBallotEntry()
	e.Voted[self] = struct{}{}
	e.Accepted[self] = struct{}{}
	c.prepare[h] = e
}

// RecordPrepare idempotently records that peer has signed value v in the
// given prepare state.
func (c *StatementCounters) RecordPrepare(v Value, peer string, state string) {
	h := v.Hash()
	e, ok := c.prepare[h]
	if !ok {
		e = newBallotEntry()
		c.prepare[h] = e
	}
	recordState(e, peer, state)
}

// PrepareEntry returns the signed-set view of the prepare counter for a
// value hash.
func (c *StatementCounters) PrepareEntry(h ValueHash) signedSet {
	e, ok := c.prepare[h]
	if !ok {
		return emptySignedSet()
	}
	return signedSet{Voted: e.Voted, Accepted: e.Accepted}
}

// SeedCommit seeds commit_ctr[value] with self in voted, as
// prepare_commit_msg does when first committing a ballot's value.
func (c *StatementCounters) SeedCommit(v Value, self string) {
	h := v.Hash()
	if _, ok := c.commit[h]; ok {
		return
	}
	e := newBallotEntry()
	e.Voted[self] = struct{}{}
	c.commit[h] = e
}

// RecordCommit idempotently records that peer has signed value v in the
// given commit state.
func (c *StatementCounters) RecordCommit(v Value, peer string, state string) {
	h := v.Hash()
	e, ok := c.commit[h]
	if !ok {
		e = newBallotEntry()
		c.commit[h] = e
	}
	recordState(e, peer, state)
}

// CommitEntry returns the signed-set view of the commit counter for a
// value hash.
func (c *StatementCounters) CommitEntry(h ValueHash) signedSet {
	e, ok := c.commit[h]
	if !ok {
		return emptySignedSet()
	}
	return signedSet{Voted: e.Voted, Accepted: e.Accepted}
}

func recordState(e *ballotEntry, peer, state string) {
	switch state {
	case "voted":
		e.Voted[peer] = struct{}{}
	case "accepted":
		e.Accepted[peer] = struct{}{}
	case "confirmed":
		e.Confirmed[peer] = struct{}{}
	case "aborted":
		e.Aborted[peer] = struct{}{}
	}
}

// PurgePrepare removes every prepare-counter entry whose value hash equals
// the finalised value's hash, as part of the prepare-phase finalisation
// purge.
func (c *StatementCounters) PurgePrepare(finalizedHash ValueHash) {
	delete(c.prepare, finalizedHash)
}

// PurgeCommit removes every commit-counter entry whose value shares any
// transaction with the finalised value.
func (c *StatementCounters) PurgeCommit(containsFinalized func(ValueHash) bool) {
	for h := range c.commit {
		if containsFinalized(h) {
			delete(c.commit, h)
		}
	}
}
