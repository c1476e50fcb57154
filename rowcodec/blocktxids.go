package rowcodec

import (
	"rubin.dev/query/chainhash"
	"rubin.dev/query/txformat"
)

// EncodeBlockTxids returns the (key, value) pair mapping a block hash to the
// ordered list of full txids it contains, as needed to reconstruct a merkle
// proof without re-fetching the block from the daemon.
func EncodeBlockTxids(blockHash chainhash.Hash256, txids []chainhash.Hash256) (key, value []byte) {
	key = BlockTxidsKey(blockHash)

	value = txformat.AppendCompactSize(nil, uint64(len(txids)))
	for _, txid := range txids {
		value = append(value, txid[:]...)
	}
	return key, value
}

// DecodeBlockTxids reconstructs the ordered txid list from its persisted key
// and value.
func DecodeBlockTxids(key, value []byte) (chainhash.Hash256, []chainhash.Hash256, error) {
	var blockHash chainhash.Hash256
	if len(key) != 1+hashLen {
		return blockHash, nil, corrupt("BlockTxids: key length %d", len(key))
	}
	if key[0] != tagBlockTxids {
		return blockHash, nil, corrupt("BlockTxids: wrong tag %q", key[0])
	}
	copy(blockHash[:], key[1:])

	count, off, err := txformat.ReadCompactSize(value, 0)
	if err != nil {
		return blockHash, nil, corrupt("BlockTxids: count: %v", err)
	}
	want := off + int(count)*hashLen
	if want < off || len(value) != want {
		return blockHash, nil, corrupt("BlockTxids: value length %d, want %d", len(value), want)
	}
	txids := make([]chainhash.Hash256, count)
	for i := range txids {
		copy(txids[i][:], value[off:off+hashLen])
		off += hashLen
	}
	return blockHash, txids, nil
}

// BlockTxidsKey returns the exact key for a point lookup by block hash.
func BlockTxidsKey(blockHash chainhash.Hash256) []byte {
	key := make([]byte, 0, 1+hashLen)
	key = append(key, tagBlockTxids)
	key = append(key, blockHash[:]...)
	return key
}
