package ledgerstore_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaimedvw/stellar-simulator/internal/consensus"
	"github.com/jaimedvw/stellar-simulator/internal/storage/ledgerstore"
)

func openStore(t *testing.T, compressor string) *ledgerstore.Store {
	t.Helper()
	cfg := ledgerstore.DefaultConfig(filepath.Join(t.TempDir(), "ledger"))
	cfg.Compressor = compressor
	store, err := ledgerstore.Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreAddAndGetSlotRoundTrips(t *testing.T) {
	store := openStore(t, "lz4")

	v := consensus.NewValue(consensus.NewTransaction([]byte("a")), consensus.NewTransaction([]byte("b")))
	rec := consensus.ExternalizeRecord{From: "n0", Slot: 1, Ballot: consensus.NewBallot(3, v), HCounter: 3, Timestamp: 42.0}
	store.AddSlot(1, rec)

	got, ok := store.GetSlot(1)
	require.True(t, ok)
	assert.Equal(t, rec.From, got.From)
	assert.Equal(t, rec.Slot, got.Slot)
	assert.Equal(t, rec.Ballot.Counter, got.Ballot.Counter)
	assert.True(t, rec.Ballot.Value.Equal(got.Ballot.Value))
	assert.Equal(t, rec.Timestamp, got.Timestamp)
}

func TestStoreAddSlotIsWriteOnce(t *testing.T) {
	store := openStore(t, "none")

	v := consensus.NewValue(consensus.NewTransaction([]byte("a")))
	first := consensus.ExternalizeRecord{Slot: 1, Ballot: consensus.NewBallot(1, v)}
	second := consensus.ExternalizeRecord{Slot: 1, Ballot: consensus.NewBallot(9, v)}
	store.AddSlot(1, first)
	store.AddSlot(1, second)

	got, ok := store.GetSlot(1)
	require.True(t, ok)
	assert.Equal(t, uint32(1), got.Ballot.Counter)
}

func TestStoreHasSlotAndHeight(t *testing.T) {
	store := openStore(t, "lz4")
	assert.False(t, store.HasSlot(1))
	assert.Equal(t, 0, store.Height())

	v := consensus.NewValue(consensus.NewTransaction([]byte("a")))
	store.AddSlot(1, consensus.ExternalizeRecord{Slot: 1, Ballot: consensus.NewBallot(1, v)})

	assert.True(t, store.HasSlot(1))
	assert.Equal(t, 1, store.Height())
}

func TestStoreGetSlotUnknown(t *testing.T) {
	store := openStore(t, "lz4")
	_, ok := store.GetSlot(123)
	assert.False(t, ok)
}
