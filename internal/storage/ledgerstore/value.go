package ledgerstore

import (
	"encoding/binary"

	"github.com/jaimedvw/stellar-simulator/internal/consensus"
)

// encodeValue flattens a Value's transaction payloads into a single
// length-prefixed blob so the CBOR record stays a flat struct.
func encodeValue(v consensus.Value) []byte {
	txs := v.Transactions()
	var buf []byte
	header := make([]byte, 4)
	binary.BigEndian.PutUint32(header, uint32(len(txs)))
	buf = append(buf, header...)

	for _, tx := range txs {
		payload := tx.Payload()
		lenBuf := make([]byte, 4)
		binary.BigEndian.PutUint32(lenBuf, uint32(len(payload)))
		buf = append(buf, lenBuf...)
		buf = append(buf, payload...)
	}
	return buf
}

func decodeValue(blob []byte) (consensus.Value, error) {
	if len(blob) < 4 {
		return consensus.NewValue(), nil
	}
	count := binary.BigEndian.Uint32(blob[:4])
	offset := 4

	txs := make([]consensus.Transaction, 0, count)
	for i := uint32(0); i < count; i++ {
		if offset+4 > len(blob) {
			break
		}
		n := int(binary.BigEndian.Uint32(blob[offset : offset+4]))
		offset += 4
		if offset+n > len(blob) {
			break
		}
		txs = append(txs, consensus.NewTransaction(blob[offset:offset+n]))
		offset += n
	}
	return consensus.NewValue(txs...), nil
}
