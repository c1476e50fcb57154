package rowcodec

import (
	"encoding/binary"

	"rubin.dev/query/chainhash"
)

// TxInRow is the reverse index from an outpoint to the transaction
// spending it: (prev txid, prev vout) -> short txid prefix of the spender.
type TxInRow struct {
	PrevTxid   chainhash.Hash256
	PrevVout   uint32
	TxidPrefix chainhash.Prefix
}

// EncodeTxInRow returns the (key, value) pair for r. value is always nil.
func EncodeTxInRow(r TxInRow) (key, value []byte) {
	key = make([]byte, 0, 1+hashLen+voutFieldLen+prefixLen)
	key = append(key, tagTxInRow)
	key = append(key, r.PrevTxid[:]...)
	key = binary.LittleEndian.AppendUint32(key, r.PrevVout)
	key = append(key, r.TxidPrefix[:]...)
	return key, nil
}

// DecodeTxInRow reconstructs a TxInRow from its persisted key.
func DecodeTxInRow(key, _ []byte) (TxInRow, error) {
	const want = 1 + hashLen + voutFieldLen + prefixLen
	if len(key) != want {
		return TxInRow{}, corrupt("TxInRow: key length %d", len(key))
	}
	if key[0] != tagTxInRow {
		return TxInRow{}, corrupt("TxInRow: wrong tag %q", key[0])
	}
	var r TxInRow
	copy(r.PrevTxid[:], key[1:1+hashLen])
	r.PrevVout = binary.LittleEndian.Uint32(key[1+hashLen : 1+hashLen+voutFieldLen])
	copy(r.TxidPrefix[:], key[1+hashLen+voutFieldLen:])
	return r, nil
}

// TxInRowFilter returns the scan prefix for every TxInRow spending the
// given outpoint.
func TxInRowFilter(prevTxid chainhash.Hash256, prevVout uint32) []byte {
	key := make([]byte, 0, 1+hashLen+voutFieldLen)
	key = append(key, tagTxInRow)
	key = append(key, prevTxid[:]...)
	key = binary.LittleEndian.AppendUint32(key, prevVout)
	return key
}
