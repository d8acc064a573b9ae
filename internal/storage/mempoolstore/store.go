// Package mempoolstore provides a goleveldb-backed durability snapshot for
// pending transactions, so a node's unconfirmed backlog survives a process
// restart between simulation runs.
package mempoolstore

import (
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/jaimedvw/stellar-simulator/internal/consensus"
)

// Store persists pending transaction payloads keyed by their hash.
type Store struct {
	db *leveldb.DB
}

// Open opens (creating if necessary) a Store rooted at path.
func Open(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("mempoolstore: open %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying LevelDB handle.
func (s *Store) Close() error { return s.db.Close() }

// Put snapshots a pending transaction.
func (s *Store) Put(tx consensus.Transaction) error {
	h := tx.Hash()
	if err := s.db.Put(h[:], tx.Payload(), nil); err != nil {
		return fmt.Errorf("mempoolstore: put %s: %w", tx.String(), err)
	}
	return nil
}

// Delete removes a transaction snapshot once it has been finalised.
// Deleting an absent key is a no-op, matching Mempool.Remove's idempotence.
func (s *Store) Delete(tx consensus.Transaction) error {
	h := tx.Hash()
	if err := s.db.Delete(h[:], nil); err != nil {
		return fmt.Errorf("mempoolstore: delete %s: %w", tx.String(), err)
	}
	return nil
}

// LoadAll replays every snapshotted transaction, for warming a fresh
// in-memory Mempool on startup.
func (s *Store) LoadAll() ([]consensus.Transaction, error) {
	iter := s.db.NewIterator(nil, nil)
	defer iter.Release()

	var txs []consensus.Transaction
	for iter.Next() {
		payload := append([]byte(nil), iter.Value()...)
		txs = append(txs, consensus.NewTransaction(payload))
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("mempoolstore: iterate: %w", err)
	}
	return txs, nil
}
