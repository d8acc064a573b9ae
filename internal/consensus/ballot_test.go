package consensus_test

import (
	"testing"

	"github.com/jaimedvw/stellar-simulator/internal/consensus"
)

func TestBallotLessOrdersByCounterThenValueHash(t *testing.T) {
	low := consensus.NewBallot(1, consensus.NewValue(tx("a")))
	high := consensus.NewBallot(2, consensus.NewValue(tx("a")))
	if !low.Less(high) {
		t.Errorf("expected lower counter to sort first")
	}
	if high.Less(low) {
		t.Errorf("expected higher counter not to sort before lower")
	}
}

func TestBallotLessTieBreaksOnValueHash(t *testing.T) {
	a := consensus.NewBallot(1, consensus.NewValue(tx("a")))
	b := consensus.NewBallot(1, consensus.NewValue(tx("b")))
	if a.Less(b) == b.Less(a) {
		t.Errorf("expected exactly one ordering direction between distinct values at equal counter")
	}
}

func TestBallotEqual(t *testing.T) {
	v := consensus.NewValue(tx("a"))
	a := consensus.NewBallot(3, v)
	b := consensus.NewBallot(3, v)
	if !a.Equal(b) {
		t.Errorf("expected identical counter/value ballots to be equal")
	}
	c := consensus.NewBallot(4, v)
	if a.Equal(c) {
		t.Errorf("expected different counters to be unequal")
	}
}

func TestBallotSameValueIgnoresCounter(t *testing.T) {
	v := consensus.NewValue(tx("a"))
	a := consensus.NewBallot(1, v)
	b := consensus.NewBallot(9, v)
	if !a.SameValue(b) {
		t.Errorf("expected SameValue to ignore the counter")
	}
}

func TestTxHashLessTotalOrder(t *testing.T) {
	a, b := tx("a").Hash(), tx("b").Hash()
	if a.Less(b) == b.Less(a) {
		t.Errorf("expected exactly one ordering direction for distinct hashes")
	}
	if a.Less(a) {
		t.Errorf("expected a hash not to be less than itself")
	}
}

func TestTransactionIdentityIsContentDerived(t *testing.T) {
	a := consensus.NewTransaction([]byte("payload"))
	b := consensus.NewTransaction([]byte("payload"))
	if a.Hash() != b.Hash() {
		t.Errorf("expected identical payloads to produce identical hashes")
	}
	c := consensus.NewTransaction([]byte("other"))
	if a.Hash() == c.Hash() {
		t.Errorf("expected different payloads to produce different hashes")
	}
}
