package consensus_test

import (
	"testing"

	"github.com/jaimedvw/stellar-simulator/internal/consensus"
)

func tx(payload string) consensus.Transaction {
	return consensus.NewTransaction([]byte(payload))
}

func TestValueEqualityIsSetBased(t *testing.T) {
	v1 := consensus.NewValue(tx("a"), tx("b"))
	v2 := consensus.NewValue(tx("b"), tx("a"))
	if !v1.Equal(v2) {
		t.Errorf("expected order-independent equality, got different hashes")
	}
}

func TestValueInequalityOnDifferentSets(t *testing.T) {
	v1 := consensus.NewValue(tx("a"))
	v2 := consensus.NewValue(tx("b"))
	if v1.Equal(v2) {
		t.Errorf("expected different transaction sets to be unequal")
	}
}

func TestCombineSingleValueIsIdempotent(t *testing.T) {
	v := consensus.NewValue(tx("a"), tx("b"))
	combined := consensus.Combine(v)
	if !combined.Equal(v) {
		t.Errorf("Combine of a single value should equal the original")
	}
}

func TestCombineUnionsTransactions(t *testing.T) {
	v1 := consensus.NewValue(tx("a"))
	v2 := consensus.NewValue(tx("b"))
	combined := consensus.Combine(v1, v2)
	if combined.Len() != 2 {
		t.Fatalf("expected combined value to hold 2 transactions, got %d", combined.Len())
	}
	if !combined.Contains(tx("a").Hash()) || !combined.Contains(tx("b").Hash()) {
		t.Errorf("expected combined value to contain both source transactions")
	}
}

func TestCappedRetainsLowestHashes(t *testing.T) {
	txs := make([]consensus.Transaction, 0, 201)
	for i := 0; i < 201; i++ {
		txs = append(txs, tx(string(rune('A'+i%26))+string(rune(i))))
	}
	v := consensus.NewValue(txs...)
	capped := v.Capped(200)

	if capped.Len() != 200 {
		t.Fatalf("expected capped value to hold exactly 200 transactions, got %d", capped.Len())
	}

	sorted := v.Transactions()
	want := make(map[consensus.TxHash]struct{}, 200)
	for _, t := range sorted[:200] {
		want[t.Hash()] = struct{}{}
	}
	for _, got := range capped.Transactions() {
		if _, ok := want[got.Hash()]; !ok {
			t.Errorf("capped value kept a transaction outside the lowest-200 by hash")
		}
	}
}

func TestCappedBelowLimitIsNoop(t *testing.T) {
	v := consensus.NewValue(tx("a"), tx("b"))
	capped := v.Capped(200)
	if !capped.Equal(v) {
		t.Errorf("expected Capped to be a no-op when already below the limit")
	}
}

func TestWithoutHashesPrunesAndRehashes(t *testing.T) {
	a, b := tx("a"), tx("b")
	v := consensus.NewValue(a, b)
	pruned := v.WithoutHashes(map[consensus.TxHash]struct{}{a.Hash(): {}})

	if pruned.Len() != 1 || pruned.Contains(a.Hash()) || !pruned.Contains(b.Hash()) {
		t.Errorf("expected WithoutHashes to drop only the excluded transaction")
	}
	if pruned.Equal(v) {
		t.Errorf("expected pruning to change the derived hash")
	}
}

func TestWithoutHashesEmptyExcludeIsNoop(t *testing.T) {
	v := consensus.NewValue(tx("a"))
	pruned := v.WithoutHashes(nil)
	if !pruned.Equal(v) {
		t.Errorf("expected empty exclude set to leave the value unchanged")
	}
}

func TestIsEmpty(t *testing.T) {
	if !consensus.NewValue().IsEmpty() {
		t.Errorf("expected a Value with no transactions to report empty")
	}
	if consensus.NewValue(tx("a")).IsEmpty() {
		t.Errorf("expected a Value with a transaction not to report empty")
	}
}

func TestWithStateDoesNotAffectEquality(t *testing.T) {
	v := consensus.NewValue(tx("a"))
	tagged := v.WithState(consensus.ValueConfirmed)
	if !tagged.Equal(v) {
		t.Errorf("expected lifecycle state to be purely informational")
	}
	if tagged.State() != consensus.ValueConfirmed {
		t.Errorf("expected WithState to set the lifecycle tag")
	}
}
