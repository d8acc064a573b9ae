package consensus

import (
	"crypto/sha256"
	"encoding/binary"
)

// EnvelopeID identifies an envelope for idempotent-pull "seen" tracking.
// Two structurally identical envelopes (same sender, same payload) yield
// the same ID, so re-pulling the same broadcast is a no-op set-insert.
type EnvelopeID [sha256.Size]byte

// NominateEnvelope carries a node's current nomination position.
type NominateEnvelope struct {
	From     string
	Voted    []Value
	Accepted []Value
	Confirmed []Value
}

// ID computes the envelope's dedup identity.
func (e NominateEnvelope) ID() EnvelopeID {
	h := sha256.New()
	h.Write([]byte(e.From))
	for _, v := range e.Voted {
		hv := v.Hash()
		h.Write(hv[:])
	}
	h.Write([]byte{0})
	for _, v := range e.Accepted {
		hv := v.Hash()
		h.Write(hv[:])
	}
	h.Write([]byte{0})
	for _, v := range e.Confirmed {
		hv := v.Hash()
		h.Write(hv[:])
	}
	var id EnvelopeID
	copy(id[:], h.Sum(nil))
	return id
}

// PrepareEnvelope carries a node's SCPPrepare statement: a ballot plus the
// prepared/confirmed/high watermarks it has previously broadcast for that
// ballot's value.
type PrepareEnvelope struct {
	From     string
	Ballot   Ballot
	ACounter uint32
	CCounter uint32
	HCounter uint32
}

// ID computes the envelope's dedup identity.
func (e PrepareEnvelope) ID() EnvelopeID {
	h := sha256.New()
	h.Write([]byte(e.From))
	hv := e.Ballot.Value.Hash()
	h.Write(hv[:])
	var buf [16]byte
	binary.BigEndian.PutUint32(buf[0:4], e.Ballot.Counter)
	binary.BigEndian.PutUint32(buf[4:8], e.ACounter)
	binary.BigEndian.PutUint32(buf[8:12], e.CCounter)
	binary.BigEndian.PutUint32(buf[12:16], e.HCounter)
	h.Write(buf[:])
	var id EnvelopeID
	copy(id[:], h.Sum(nil))
	return id
}

// CommitEnvelope carries a node's SCPCommit statement.
type CommitEnvelope struct {
	From            string
	Ballot          Ballot
	PreparedCounter uint32
}

// ID computes the envelope's dedup identity.
func (e CommitEnvelope) ID() EnvelopeID {
	h := sha256.New()
	h.Write([]byte(e.From))
	hv := e.Ballot.Value.Hash()
	h.Write(hv[:])
	var buf [8]byte
	binary.BigEndian.PutUint32(buf[0:4], e.Ballot.Counter)
	binary.BigEndian.PutUint32(buf[4:8], e.PreparedCounter)
	h.Write(buf[:])
	var id EnvelopeID
	copy(id[:], h.Sum(nil))
	return id
}

// ExternalizeRecord is the write-once record appended to a node's ledger
// when a slot finalises, and the wire form broadcast to peers for that
// slot.
type ExternalizeRecord struct {
	From      string
	Slot      uint64
	Ballot    Ballot
	HCounter  uint32
	Timestamp float64
}

// ID computes the record's dedup identity.
func (e ExternalizeRecord) ID() EnvelopeID {
	h := sha256.New()
	h.Write([]byte(e.From))
	hv := e.Ballot.Value.Hash()
	h.Write(hv[:])
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[0:8], e.Slot)
	binary.BigEndian.PutUint32(buf[8:12], e.Ballot.Counter)
	binary.BigEndian.PutUint32(buf[12:16], e.HCounter)
	h.Write(buf[:])
	var id EnvelopeID
	copy(id[:], h.Sum(nil))
	return id
}
