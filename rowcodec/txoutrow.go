package rowcodec

import "rubin.dev/query/chainhash"

// TxOutRow is the reverse index from a script hash to the transactions
// funding it: script hash -> short txid prefix. The value is always empty;
// all information needed to resolve a candidate lives in the key.
type TxOutRow struct {
	ScriptHash chainhash.ScriptHash
	TxidPrefix chainhash.Prefix
}

// EncodeTxOutRow returns the (key, value) pair for r. value is always nil.
func EncodeTxOutRow(r TxOutRow) (key, value []byte) {
	key = make([]byte, 0, 1+hashLen+prefixLen)
	key = append(key, tagTxOutRow)
	key = append(key, r.ScriptHash[:]...)
	key = append(key, r.TxidPrefix[:]...)
	return key, nil
}

// DecodeTxOutRow reconstructs a TxOutRow from its persisted key.
func DecodeTxOutRow(key, _ []byte) (TxOutRow, error) {
	if len(key) != 1+hashLen+prefixLen {
		return TxOutRow{}, corrupt("TxOutRow: key length %d", len(key))
	}
	if key[0] != tagTxOutRow {
		return TxOutRow{}, corrupt("TxOutRow: wrong tag %q", key[0])
	}
	var r TxOutRow
	copy(r.ScriptHash[:], key[1:1+hashLen])
	copy(r.TxidPrefix[:], key[1+hashLen:])
	return r, nil
}

// TxOutRowFilter returns the scan prefix for every TxOutRow funding the
// given script hash.
func TxOutRowFilter(scriptHash chainhash.ScriptHash) []byte {
	key := make([]byte, 0, 1+hashLen)
	key = append(key, tagTxOutRow)
	key = append(key, scriptHash[:]...)
	return key
}
