package network

import "github.com/jaimedvw/stellar-simulator/internal/consensus"

// QuorumIntersectionRisk reports whether two nodes' quorum sets fail to
// share enough common membership to guarantee they cannot both finalise
// conflicting values -- the structural precondition federated Byzantine
// agreement depends on. It is a diagnostic for simulation setup, not
// something the engine itself checks at runtime.
func QuorumIntersectionRisk(a, b *consensus.QuorumSet) bool {
	if a == nil || b == nil {
		return true
	}

	aMembers := make(map[string]struct{})
	for _, name := range a.FlattenDistinct() {
		aMembers[name] = struct{}{}
	}

	overlap := 0
	for _, name := range b.FlattenDistinct() {
		if _, ok := aMembers[name]; ok {
			overlap++
		}
	}

	maxSize := a.Size()
	if b.Size() > maxSize {
		maxSize = b.Size()
	}
	if maxSize == 0 {
		return false
	}

	// Mirrors the classic UNL-overlap fork condition: a quorum drawn from
	// each set is only guaranteed to share a member when the shared
	// membership exceeds the members the two sets can leave out of a
	// quorum between them, (|A| - kA) + (|B| - kB).
	slack := (a.Size() - a.MinimumQuorum()) + (b.Size() - b.MinimumQuorum())
	return overlap <= slack
}
