// Package mempool provides the in-memory transaction pool each node's
// consensus engine draws candidate transactions from.
package mempool

import (
	"sync"

	"github.com/jaimedvw/stellar-simulator/internal/consensus"
)

// Mempool is a FIFO-ordered, hash-deduplicated set of pending transactions.
// It satisfies consensus.Mempool.
type Mempool struct {
	mu    sync.Mutex
	order []consensus.TxHash
	byTx  map[consensus.TxHash]consensus.Transaction
}

// New creates an empty Mempool.
func New() *Mempool {
	return &Mempool{byTx: make(map[consensus.TxHash]consensus.Transaction)}
}

// Submit adds a transaction to the pool. Submitting a hash already present
// is a no-op.
func (m *Mempool) Submit(tx consensus.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()

	h := tx.Hash()
	if _, ok := m.byTx[h]; ok {
		return
	}
	m.byTx[h] = tx
	m.order = append(m.order, h)
}

// GetTransaction implements consensus.Mempool: pops the oldest still-present
// transaction.
func (m *Mempool) GetTransaction() (consensus.Transaction, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for len(m.order) > 0 {
		h := m.order[0]
		m.order = m.order[1:]
		if tx, ok := m.byTx[h]; ok {
			return tx, true
		}
	}
	return consensus.Transaction{}, false
}

// GetAllTransactions implements consensus.Mempool.
func (m *Mempool) GetAllTransactions() []consensus.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()

	txs := make([]consensus.Transaction, 0, len(m.order))
	for _, h := range m.order {
		if tx, ok := m.byTx[h]; ok {
			txs = append(txs, tx)
		}
	}
	return txs
}

// Remove implements consensus.Mempool. Removing an absent transaction is a
// no-op.
func (m *Mempool) Remove(tx consensus.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byTx, tx.Hash())
}

// Len returns the number of transactions still tracked (pulled-but-pending
// ones included, since they remain in byTx until Remove).
func (m *Mempool) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byTx)
}
