package consensus

import "fmt"

// Ballot is an immutable (counter, value) pair used in the Prepare and
// Commit phases. Ballots are totally ordered by counter first, then by
// value hash, matching SCP's ballot comparison rule.
type Ballot struct {
	Counter uint32
	Value   Value
}

// NewBallot constructs a Ballot. Counter must be >= 1; the engine never
// constructs a zero-counter ballot.
func NewBallot(counter uint32, value Value) Ballot {
	return Ballot{Counter: counter, Value: value}
}

// Less reports whether b sorts before other: lower counter first, then
// lower value hash.
func (b Ballot) Less(other Ballot) bool {
	if b.Counter != other.Counter {
		return b.Counter < other.Counter
	}
	bh, oh := b.Value.Hash(), other.Value.Hash()
	for i := range bh {
		if bh[i] != oh[i] {
			return bh[i] < oh[i]
		}
	}
	return false
}

// Equal reports whether two ballots have the same counter and value.
func (b Ballot) Equal(other Ballot) bool {
	return b.Counter == other.Counter && b.Value.Equal(other.Value)
}

// SameValue reports whether two ballots carry the same value, irrespective
// of counter.
func (b Ballot) SameValue(other Ballot) bool {
	return b.Value.Equal(other.Value)
}

func (b Ballot) String() string {
	return fmt.Sprintf("Ballot(%d, %s)", b.Counter, b.Value.Hash())
}

func (h ValueHash) String() string {
	return fmt.Sprintf("%x", h[:8])
}

// PrepareRecord tracks the aCounter/cCounter/hCounter triple a node has
// previously broadcast for a given value, so a later Prepare envelope for
// the same value preserves them instead of resetting to zero.
type PrepareRecord struct {
	ACounter uint32
	CCounter uint32
	HCounter uint32
}
