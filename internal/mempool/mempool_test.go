package mempool_test

import (
	"testing"

	"github.com/jaimedvw/stellar-simulator/internal/consensus"
	"github.com/jaimedvw/stellar-simulator/internal/mempool"
)

func TestSubmitDedupesByHash(t *testing.T) {
	m := mempool.New()
	tx := consensus.NewTransaction([]byte("a"))
	m.Submit(tx)
	m.Submit(tx)
	if got := m.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1 after submitting the same transaction twice", got)
	}
}

func TestGetTransactionIsFIFO(t *testing.T) {
	m := mempool.New()
	first := consensus.NewTransaction([]byte("a"))
	second := consensus.NewTransaction([]byte("b"))
	m.Submit(first)
	m.Submit(second)

	got, ok := m.GetTransaction()
	if !ok || got.Hash() != first.Hash() {
		t.Errorf("expected GetTransaction to pop the oldest submitted transaction first")
	}
	got, ok = m.GetTransaction()
	if !ok || got.Hash() != second.Hash() {
		t.Errorf("expected GetTransaction to pop the second transaction next")
	}
	if _, ok := m.GetTransaction(); ok {
		t.Errorf("expected GetTransaction to report false once the pool is drained")
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	m := mempool.New()
	tx := consensus.NewTransaction([]byte("a"))
	m.Submit(tx)
	m.Remove(tx)
	m.Remove(tx) // must not panic or error
	if got := m.Len(); got != 0 {
		t.Errorf("Len() = %d, want 0 after removal", got)
	}
}

func TestGetAllTransactionsSkipsRemoved(t *testing.T) {
	m := mempool.New()
	keep := consensus.NewTransaction([]byte("keep"))
	drop := consensus.NewTransaction([]byte("drop"))
	m.Submit(keep)
	m.Submit(drop)
	m.Remove(drop)

	all := m.GetAllTransactions()
	if len(all) != 1 || all[0].Hash() != keep.Hash() {
		t.Errorf("expected GetAllTransactions to exclude removed transactions, got %v", all)
	}
}
