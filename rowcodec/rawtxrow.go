package rowcodec

import "rubin.dev/query/chainhash"

// RawTxRow holds the full serialized bytes of a confirmed transaction,
// keyed directly by its full txid (no prefix collisions possible here: the
// key carries the whole hash).
type RawTxRow struct {
	Txid  chainhash.Hash256
	RawTx []byte
}

// EncodeRawTxRow returns the (key, value) pair for r.
func EncodeRawTxRow(r RawTxRow) (key, value []byte) {
	key = make([]byte, 0, 1+hashLen)
	key = append(key, tagRawTxRow)
	key = append(key, r.Txid[:]...)
	return key, r.RawTx
}

// DecodeRawTxRow reconstructs a RawTxRow from its persisted key and value.
func DecodeRawTxRow(key, value []byte) (RawTxRow, error) {
	if len(key) != 1+hashLen {
		return RawTxRow{}, corrupt("RawTxRow: key length %d", len(key))
	}
	if key[0] != tagRawTxRow {
		return RawTxRow{}, corrupt("RawTxRow: wrong tag %q", key[0])
	}
	var r RawTxRow
	copy(r.Txid[:], key[1:])
	r.RawTx = append([]byte(nil), value...)
	return r, nil
}

// RawTxRowKey returns the exact key for a point lookup by full txid.
func RawTxRowKey(txid chainhash.Hash256) []byte {
	key := make([]byte, 0, 1+hashLen)
	key = append(key, tagRawTxRow)
	key = append(key, txid[:]...)
	return key
}
