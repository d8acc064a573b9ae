package consensus

import (
	"crypto/sha256"
	"sort"
)

// ValueState is an informational lifecycle tag carried on a Value; it plays
// no role in equality, hashing, or threshold evaluation.
type ValueState int

const (
	ValueInit ValueState = iota
	ValueNominated
	ValueAccepted
	ValueConfirmed
)

func (s ValueState) String() string {
	switch s {
	case ValueInit:
		return "init"
	case ValueNominated:
		return "nominated"
	case ValueAccepted:
		return "accepted"
	case ValueConfirmed:
		return "confirmed"
	default:
		return "unknown"
	}
}

// ValueHash identifies a Value by the order-independent hash of its
// transaction set.
type ValueHash [sha256.Size]byte

// Value is an unordered set of transactions proposed for a slot. Two Values
// are equal iff they contain the same transaction set; the derived hash is
// order-independent so that combining the same transactions in any order
// yields the same identity.
type Value struct {
	transactions map[TxHash]Transaction
	hash         ValueHash
	state        ValueState
}

// NewValue builds a Value from a slice of transactions, deduplicating by
// hash and computing the derived hash immediately.
func NewValue(txs ...Transaction) Value {
	v := Value{transactions: make(map[TxHash]Transaction, len(txs)), state: ValueInit}
	for _, tx := range txs {
		v.transactions[tx.Hash()] = tx
	}
	v.recomputeHash()
	return v
}

func (v *Value) recomputeHash() {
	v.hash = hashTransactionSet(v.transactions)
}

func hashTransactionSet(txs map[TxHash]Transaction) ValueHash {
	hashes := make([]TxHash, 0, len(txs))
	for h := range txs {
		hashes = append(hashes, h)
	}
	sort.Slice(hashes, func(i, j int) bool { return hashes[i].Less(hashes[j]) })

	h := sha256.New()
	for _, th := range hashes {
		h.Write(th[:])
	}
	var out ValueHash
	copy(out[:], h.Sum(nil))
	return out
}

// Hash returns the Value's order-independent derived hash.
func (v Value) Hash() ValueHash { return v.hash }

// State returns the Value's informational lifecycle tag.
func (v Value) State() ValueState { return v.state }

// WithState returns a copy of v tagged with the given lifecycle state. The
// state never participates in Equal or Hash.
func (v Value) WithState(s ValueState) Value {
	v.state = s
	return v
}

// Transactions returns the Value's transactions sorted by ascending hash,
// so callers get a deterministic ordering without depending on map order.
func (v Value) Transactions() []Transaction {
	out := make([]Transaction, 0, len(v.transactions))
	for _, tx := range v.transactions {
		out = append(out, tx)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hash().Less(out[j].Hash()) })
	return out
}

// Len returns the number of transactions in the Value.
func (v Value) Len() int { return len(v.transactions) }

// Contains reports whether the Value contains a transaction with the given
// hash.
func (v Value) Contains(h TxHash) bool {
	_, ok := v.transactions[h]
	return ok
}

// Equal reports whether two Values contain the same transaction set.
func (v Value) Equal(other Value) bool {
	return v.hash == other.hash
}

// IsEmpty reports whether the Value has no transactions.
func (v Value) IsEmpty() bool { return len(v.transactions) == 0 }

// Combine returns a Value whose transactions are the union of every input
// Value's transactions. Combine of a single value returns an equal value.
func Combine(values ...Value) Value {
	merged := make(map[TxHash]Transaction)
	for _, val := range values {
		for h, tx := range val.transactions {
			merged[h] = tx
		}
	}
	v := Value{transactions: merged, state: ValueInit}
	v.recomputeHash()
	return v
}

// WithoutHashes returns a copy of v with every transaction whose hash is in
// exclude removed. Used to prune finalised transactions out of a Value
// before merging it into local phase state.
func (v Value) WithoutHashes(exclude map[TxHash]struct{}) Value {
	if len(exclude) == 0 {
		return v
	}
	kept := make(map[TxHash]Transaction, len(v.transactions))
	for h, tx := range v.transactions {
		if _, drop := exclude[h]; !drop {
			kept[h] = tx
		}
	}
	out := Value{transactions: kept, state: v.state}
	out.recomputeHash()
	return out
}

// Capped returns a copy of v retaining only the first n transactions by
// ascending hash, used to enforce MaxSlotTransactions after a merge.
func (v Value) Capped(n int) Value {
	if len(v.transactions) <= n {
		return v
	}
	sorted := v.Transactions()
	kept := make(map[TxHash]Transaction, n)
	for _, tx := range sorted[:n] {
		kept[tx.Hash()] = tx
	}
	out := Value{transactions: kept, state: v.state}
	out.recomputeHash()
	return out
}
