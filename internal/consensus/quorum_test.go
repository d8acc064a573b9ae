package consensus_test

import (
	"math/rand"
	"testing"

	"github.com/jaimedvw/stellar-simulator/internal/consensus"
)

func TestMinimumQuorumCeilsDefaultThreshold(t *testing.T) {
	qs := consensus.NewQuorumSet("self")
	qs.Set([]string{"a", "b", "c", "d", "e"}, nil, consensus.DefaultThresholdPercent)

	if got, want := qs.Size(), 5; got != want {
		t.Fatalf("Size() = %d, want %d", got, want)
	}
	if got, want := qs.MinimumQuorum(), 3; got != want {
		t.Errorf("MinimumQuorum() = %d, want %d (ceil(5*0.55))", got, want)
	}
}

func TestMinimumQuorumAcceptsFractionalThreshold(t *testing.T) {
	qs := consensus.NewQuorumSet("self")
	qs.Set([]string{"a", "b", "c", "d"}, nil, 0.5)
	if got, want := qs.MinimumQuorum(), 2; got != want {
		t.Errorf("MinimumQuorum() = %d, want %d", got, want)
	}
}

func TestSizeIncludesFlattenedInnerSets(t *testing.T) {
	inner := consensus.NewQuorumSet("self")
	inner.Set([]string{"x", "y"}, nil, 100)

	qs := consensus.NewQuorumSet("self")
	qs.Set([]string{"a"}, []*consensus.QuorumSet{inner}, 100)

	if got, want := qs.Size(), 3; got != want {
		t.Errorf("Size() = %d, want %d (1 validator + 2 nested)", got, want)
	}
}

func TestWeightOwnerIsAlwaysOne(t *testing.T) {
	qs := consensus.NewQuorumSet("self")
	qs.Set([]string{"a"}, nil, 100)
	if got := qs.Weight("self"); got != 1.0 {
		t.Errorf("Weight(owner) = %v, want 1.0", got)
	}
}

func TestWeightFractionOfTopLevelSlices(t *testing.T) {
	inner := consensus.NewQuorumSet("self")
	inner.Set([]string{"b"}, nil, 100)

	qs := consensus.NewQuorumSet("self")
	qs.Set([]string{"a"}, []*consensus.QuorumSet{inner}, 100)

	if got, want := qs.Weight("a"), 0.5; got != want {
		t.Errorf("Weight(a) = %v, want %v (1 of 2 top-level slices)", got, want)
	}
	if got, want := qs.Weight("b"), 0.5; got != want {
		t.Errorf("Weight(b) = %v, want %v (inner set counts as 1 slice)", got, want)
	}
	if got := qs.Weight("nobody"); got != 0 {
		t.Errorf("Weight(absent peer) = %v, want 0", got)
	}
}

func TestFlattenDistinctDedupesAcrossSlices(t *testing.T) {
	inner := consensus.NewQuorumSet("self")
	inner.Set([]string{"a"}, nil, 100)

	qs := consensus.NewQuorumSet("self")
	qs.Set([]string{"a", "b"}, []*consensus.QuorumSet{inner}, 100)

	flat := qs.FlattenDistinct()
	seen := map[string]int{}
	for _, name := range flat {
		seen[name]++
	}
	if seen["a"] != 1 {
		t.Errorf("expected FlattenDistinct to report 'a' exactly once, got %d", seen["a"])
	}
	if len(flat) != 2 {
		t.Errorf("expected 2 distinct peers, got %d (%v)", len(flat), flat)
	}
}

func TestCheckThresholdCountsDistinctSigners(t *testing.T) {
	qs := consensus.NewQuorumSet("self")
	qs.Set([]string{"a", "b", "c"}, nil, 100)

	entry := consensus.NewStatementCounters()
	v := consensus.NewValue(tx("x"))
	entry.RecordNomination(v, "a", "voted")
	entry.RecordNomination(v, "b", "accepted")

	signed := qs.CheckThreshold(entry.NominationEntry(v.Hash()), 2)
	if !signed {
		t.Errorf("expected threshold of 2 to be met by 2 distinct signers")
	}
	if qs.CheckThreshold(entry.NominationEntry(v.Hash()), 3) {
		t.Errorf("expected threshold of 3 not to be met by 2 signers")
	}
}

func TestCheckInnerSetBlockingThresholdExcludesCaller(t *testing.T) {
	inner := consensus.NewQuorumSet("self")
	inner.Set([]string{"a", "b", "self"}, nil, 100)

	entry := consensus.NewStatementCounters()
	v := consensus.NewValue(tx("x"))
	entry.RecordNomination(v, "a", "voted")
	entry.RecordNomination(v, "self", "voted")

	count := consensus.CheckInnerSetBlockingThreshold("self", entry.NominationEntry(v.Hash()), inner)
	if count != 1 {
		t.Errorf("expected caller's own signature to be excluded, got count %d", count)
	}
}

func TestRetrieveRandomPeerExcludesCaller(t *testing.T) {
	qs := consensus.NewQuorumSet("self")
	qs.Set([]string{"self", "a"}, nil, 100)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		peer, ok := qs.RetrieveRandomPeer("self", rng)
		if !ok {
			t.Fatalf("expected a candidate peer to be available")
		}
		if peer == "self" {
			t.Errorf("expected RetrieveRandomPeer never to return the caller")
		}
	}
}

func TestRetrieveRandomPeerNoCandidates(t *testing.T) {
	qs := consensus.NewQuorumSet("self")
	qs.Set([]string{"self"}, nil, 100)
	rng := rand.New(rand.NewSource(1))
	if _, ok := qs.RetrieveRandomPeer("self", rng); ok {
		t.Errorf("expected no candidate when the only member is the caller")
	}
}
