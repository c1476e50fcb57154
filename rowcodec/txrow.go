package rowcodec

import (
	"encoding/binary"

	"rubin.dev/query/chainhash"
)

// TxRow anchors a confirmed transaction: which block it is in, at what
// height, keyed by a short prefix of its txid so funding/spending scans
// (which only have a prefix) can resolve candidates.
type TxRow struct {
	TxidPrefix chainhash.Prefix
	Height     uint32
	BlockHash  chainhash.Hash256
	Txid       chainhash.Hash256
}

// EncodeTxRow returns the (key, value) pair for r.
func EncodeTxRow(r TxRow) (key, value []byte) {
	key = make([]byte, 0, 1+prefixLen+heightFieldLen)
	key = append(key, tagTxRow)
	key = append(key, r.TxidPrefix[:]...)
	key = binary.BigEndian.AppendUint32(key, r.Height)

	value = make([]byte, 0, hashLen*2)
	value = append(value, r.BlockHash[:]...)
	value = append(value, r.Txid[:]...)
	return key, value
}

// DecodeTxRow reconstructs a TxRow from its persisted key and value.
func DecodeTxRow(key, value []byte) (TxRow, error) {
	if len(key) != 1+prefixLen+heightFieldLen {
		return TxRow{}, corrupt("TxRow: key length %d", len(key))
	}
	if key[0] != tagTxRow {
		return TxRow{}, corrupt("TxRow: wrong tag %q", key[0])
	}
	if len(value) != hashLen*2 {
		return TxRow{}, corrupt("TxRow: value length %d", len(value))
	}
	var r TxRow
	copy(r.TxidPrefix[:], key[1:1+prefixLen])
	r.Height = binary.BigEndian.Uint32(key[1+prefixLen:])
	copy(r.BlockHash[:], value[:hashLen])
	copy(r.Txid[:], value[hashLen:])
	return r, nil
}

// TxRowFilterPrefix returns the scan prefix for every TxRow anchored under
// the given short txid prefix, across all heights.
func TxRowFilterPrefix(p chainhash.Prefix) []byte {
	key := make([]byte, 0, 1+prefixLen)
	key = append(key, tagTxRow)
	key = append(key, p[:]...)
	return key
}

// TxRowFilterFull returns the scan prefix to use when the caller holds a
// full txid and wants to resolve it to its TxRow: this is the same prefix
// scan as TxRowFilterPrefix (the key only carries the short prefix), with
// the exact match left to the caller. Scanning may turn up prefix
// collisions that must be filtered by comparing the decoded row's Txid
// field against the full id.
func TxRowFilterFull(txid chainhash.Hash256) []byte {
	return TxRowFilterPrefix(chainhash.PrefixOf(txid))
}
