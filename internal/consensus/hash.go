package consensus

import (
	"crypto/sha256"
	"encoding/binary"
	"math/big"
)

// xdrPacker accumulates an XDR-style byte stream: integers are written as
// fixed 4-byte big-endian values with no prefix, and byte strings as a
// big-endian uint32 length followed by the raw bytes, zero-padded to a
// multiple of four bytes. This mirrors the framing the
// original implementation produces with xdrlib's Packer so that G's SHA-256
// input is bit-exact across reimplementations.
type xdrPacker struct {
	buf []byte
}

func (p *xdrPacker) packInt32(v int32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	p.buf = append(p.buf, b[:]...)
}

func (p *xdrPacker) packBytes(b []byte) {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(b)))
	p.buf = append(p.buf, lenBuf[:]...)
	p.buf = append(p.buf, b...)
	if pad := (4 - len(b)%4) % 4; pad != 0 {
		p.buf = append(p.buf, make([]byte, pad)...)
	}
}

// GHash computes G(i, round, name) for the given slot: a SHA-256 digest
// over the XDR encoding of (slot, i, round, name), interpreted as a
// big-endian 256-bit integer. i=1 selects priority-neighbor eligibility,
// i=2 selects priority ranking; see NeighborOf and Priority.
func GHash(slot uint64, i int32, round uint32, name string) *big.Int {
	p := &xdrPacker{}
	p.packInt32(int32(slot))
	p.packInt32(i)
	p.packInt32(int32(round))
	p.packBytes([]byte(name))

	sum := sha256.Sum256(p.buf)
	return new(big.Int).SetBytes(sum[:])
}

// maxUint256 is 2^256, used as the modulus against which GHash(1,...) is
// compared to weight(v) for priority-neighbor eligibility.
var maxUint256 = new(big.Int).Lsh(big.NewInt(1), 256)

// NeighborOf reports whether peer named `name` with the given weight is a
// priority neighbor for the given slot/round: G(1, round, name) < 2^256 *
// weight.
func NeighborOf(slot uint64, round uint32, name string, weight float64) bool {
	g := GHash(slot, 1, round, name)
	threshold := weightedThreshold(weight)
	return g.Cmp(threshold) < 0
}

// Priority returns G(2, round, name), used to rank neighbors: the
// highest-priority neighbor is the one maximising this value.
func Priority(slot uint64, round uint32, name string) *big.Int {
	return GHash(slot, 2, round, name)
}

func weightedThreshold(weight float64) *big.Int {
	if weight <= 0 {
		return big.NewInt(0)
	}
	if weight >= 1 {
		return maxUint256
	}
	f := new(big.Float).SetPrec(256).Mul(new(big.Float).SetPrec(256).SetInt(maxUint256), big.NewFloat(weight))
	out, _ := f.Int(nil)
	return out
}
