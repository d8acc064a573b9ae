package network

import (
	"fmt"

	"github.com/pierrec/lz4"
	"github.com/ugorji/go/codec"

	"github.com/jaimedvw/stellar-simulator/internal/consensus"
)

// WireCodec serializes envelopes into the bytes a real transport would put
// on the wire: a CBOR encoding of a flat DTO, lz4-compressed. Nothing in
// the consensus engine calls this -- PeerView delivery stays in-process and
// pull-based per the design notes -- but Links.DeliverNominateWire exercises it to
// model the cost a non-simulated transport would actually pay per message.
type WireCodec struct {
	handle codec.CborHandle
}

// NewWireCodec creates a codec ready for immediate use.
func NewWireCodec() *WireCodec { return &WireCodec{} }

type txDTO struct {
	Payload []byte `codec:"p"`
}

type valueDTO struct {
	Txs []txDTO `codec:"t"`
}

type ballotDTO struct {
	Counter uint32   `codec:"c"`
	Value   valueDTO `codec:"v"`
}

type nominateDTO struct {
	From      string     `codec:"f"`
	Voted     []valueDTO `codec:"vo"`
	Accepted  []valueDTO `codec:"ac"`
	Confirmed []valueDTO `codec:"cf"`
}

type prepareDTO struct {
	From     string    `codec:"f"`
	Ballot   ballotDTO `codec:"b"`
	ACounter uint32    `codec:"a"`
	CCounter uint32    `codec:"c"`
	HCounter uint32    `codec:"h"`
}

type commitDTO struct {
	From            string    `codec:"f"`
	Ballot          ballotDTO `codec:"b"`
	PreparedCounter uint32    `codec:"p"`
}

type externalizeDTO struct {
	From      string    `codec:"f"`
	Slot      uint64    `codec:"s"`
	Ballot    ballotDTO `codec:"b"`
	HCounter  uint32    `codec:"h"`
	Timestamp float64   `codec:"t"`
}

func toValueDTO(v consensus.Value) valueDTO {
	txs := v.Transactions()
	out := valueDTO{Txs: make([]txDTO, 0, len(txs))}
	for _, tx := range txs {
		out.Txs = append(out.Txs, txDTO{Payload: tx.Payload()})
	}
	return out
}

func fromValueDTO(d valueDTO) consensus.Value {
	txs := make([]consensus.Transaction, 0, len(d.Txs))
	for _, t := range d.Txs {
		txs = append(txs, consensus.NewTransaction(t.Payload))
	}
	return consensus.NewValue(txs...)
}

func toBallotDTO(b consensus.Ballot) ballotDTO {
	return ballotDTO{Counter: b.Counter, Value: toValueDTO(b.Value)}
}

func fromBallotDTO(d ballotDTO) consensus.Ballot {
	return consensus.NewBallot(d.Counter, fromValueDTO(d.Value))
}

// EncodeNominate serializes a NominateEnvelope to compressed CBOR bytes.
func (c *WireCodec) EncodeNominate(env consensus.NominateEnvelope) ([]byte, error) {
	dto := nominateDTO{From: env.From}
	for _, v := range env.Voted {
		dto.Voted = append(dto.Voted, toValueDTO(v))
	}
	for _, v := range env.Accepted {
		dto.Accepted = append(dto.Accepted, toValueDTO(v))
	}
	for _, v := range env.Confirmed {
		dto.Confirmed = append(dto.Confirmed, toValueDTO(v))
	}
	return c.encode(dto)
}

// DecodeNominate reverses EncodeNominate.
func (c *WireCodec) DecodeNominate(data []byte) (consensus.NominateEnvelope, error) {
	var dto nominateDTO
	if err := c.decode(data, &dto); err != nil {
		return consensus.NominateEnvelope{}, err
	}
	env := consensus.NominateEnvelope{From: dto.From}
	for _, v := range dto.Voted {
		env.Voted = append(env.Voted, fromValueDTO(v))
	}
	for _, v := range dto.Accepted {
		env.Accepted = append(env.Accepted, fromValueDTO(v))
	}
	for _, v := range dto.Confirmed {
		env.Confirmed = append(env.Confirmed, fromValueDTO(v))
	}
	return env, nil
}

// EncodePrepare serializes a PrepareEnvelope to compressed CBOR bytes.
func (c *WireCodec) EncodePrepare(env consensus.PrepareEnvelope) ([]byte, error) {
	return c.encode(prepareDTO{
		From:     env.From,
		Ballot:   toBallotDTO(env.Ballot),
		ACounter: env.ACounter,
		CCounter: env.CCounter,
		HCounter: env.HCounter,
	})
}

// DecodePrepare reverses EncodePrepare.
func (c *WireCodec) DecodePrepare(data []byte) (consensus.PrepareEnvelope, error) {
	var dto prepareDTO
	if err := c.decode(data, &dto); err != nil {
		return consensus.PrepareEnvelope{}, err
	}
	return consensus.PrepareEnvelope{
		From:     dto.From,
		Ballot:   fromBallotDTO(dto.Ballot),
		ACounter: dto.ACounter,
		CCounter: dto.CCounter,
		HCounter: dto.HCounter,
	}, nil
}

// EncodeCommit serializes a CommitEnvelope to compressed CBOR bytes.
func (c *WireCodec) EncodeCommit(env consensus.CommitEnvelope) ([]byte, error) {
	return c.encode(commitDTO{
		From:            env.From,
		Ballot:          toBallotDTO(env.Ballot),
		PreparedCounter: env.PreparedCounter,
	})
}

// DecodeCommit reverses EncodeCommit.
func (c *WireCodec) DecodeCommit(data []byte) (consensus.CommitEnvelope, error) {
	var dto commitDTO
	if err := c.decode(data, &dto); err != nil {
		return consensus.CommitEnvelope{}, err
	}
	return consensus.CommitEnvelope{
		From:            dto.From,
		Ballot:          fromBallotDTO(dto.Ballot),
		PreparedCounter: dto.PreparedCounter,
	}, nil
}

// EncodeExternalize serializes an ExternalizeRecord to compressed CBOR bytes.
func (c *WireCodec) EncodeExternalize(rec consensus.ExternalizeRecord) ([]byte, error) {
	return c.encode(externalizeDTO{
		From:      rec.From,
		Slot:      rec.Slot,
		Ballot:    toBallotDTO(rec.Ballot),
		HCounter:  rec.HCounter,
		Timestamp: rec.Timestamp,
	})
}

// DecodeExternalize reverses EncodeExternalize.
func (c *WireCodec) DecodeExternalize(data []byte) (consensus.ExternalizeRecord, error) {
	var dto externalizeDTO
	if err := c.decode(data, &dto); err != nil {
		return consensus.ExternalizeRecord{}, err
	}
	return consensus.ExternalizeRecord{
		From:      dto.From,
		Slot:      dto.Slot,
		Ballot:    fromBallotDTO(dto.Ballot),
		HCounter:  dto.HCounter,
		Timestamp: dto.Timestamp,
	}, nil
}

func (c *WireCodec) encode(v interface{}) ([]byte, error) {
	var buf []byte
	enc := codec.NewEncoderBytes(&buf, &c.handle)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("wire: cbor encode: %w", err)
	}
	compressed := make([]byte, lz4.CompressBlockBound(len(buf)))
	n, err := lz4.CompressBlock(buf, compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("wire: lz4 compress: %w", err)
	}
	if n == 0 {
		return append([]byte{0}, buf...), nil
	}
	out := make([]byte, 0, n+9)
	out = append(out, 1)
	out = appendUvarint(out, uint64(len(buf)))
	return append(out, compressed[:n]...), nil
}

func (c *WireCodec) decode(data []byte, v interface{}) error {
	if len(data) < 1 {
		return fmt.Errorf("wire: empty payload")
	}
	compressed, rest := data[0] == 1, data[1:]
	payload := rest
	if compressed {
		origLen, n := readUvarint(rest)
		if n <= 0 {
			return fmt.Errorf("wire: malformed length prefix")
		}
		decompressed := make([]byte, origLen)
		dn, err := lz4.UncompressBlock(rest[n:], decompressed)
		if err != nil {
			return fmt.Errorf("wire: lz4 decompress: %w", err)
		}
		payload = decompressed[:dn]
	}
	dec := codec.NewDecoderBytes(payload, &c.handle)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("wire: cbor decode: %w", err)
	}
	return nil
}

func appendUvarint(buf []byte, v uint64) []byte {
	for v >= 0x80 {
		buf = append(buf, byte(v)|0x80)
		v >>= 7
	}
	return append(buf, byte(v))
}

func readUvarint(buf []byte) (uint64, int) {
	var x uint64
	var s uint
	for i, b := range buf {
		if b < 0x80 {
			return x | uint64(b)<<s, i + 1
		}
		x |= uint64(b&0x7f) << s
		s += 7
	}
	return 0, 0
}
