package rowcodec

import (
	"encoding/binary"

	"rubin.dev/query/chainhash"
)

// BlockMeta carries the summary fields clients ask about a block without
// fetching the full body from the daemon.
type BlockMeta struct {
	Size       uint32
	Weight     uint32
	TxCount    uint32
	MedianTime uint64
}

// EncodeBlockMeta returns the (key, value) pair for the given block hash
// and metadata.
func EncodeBlockMeta(blockHash chainhash.Hash256, m BlockMeta) (key, value []byte) {
	key = make([]byte, 0, 1+hashLen)
	key = append(key, tagBlockMeta)
	key = append(key, blockHash[:]...)

	value = make([]byte, 0, 4+4+4+8)
	value = binary.LittleEndian.AppendUint32(value, m.Size)
	value = binary.LittleEndian.AppendUint32(value, m.Weight)
	value = binary.LittleEndian.AppendUint32(value, m.TxCount)
	value = binary.LittleEndian.AppendUint64(value, m.MedianTime)
	return key, value
}

// DecodeBlockMeta reconstructs a BlockMeta from its persisted key and value.
func DecodeBlockMeta(key, value []byte) (chainhash.Hash256, BlockMeta, error) {
	var blockHash chainhash.Hash256
	if len(key) != 1+hashLen {
		return blockHash, BlockMeta{}, corrupt("BlockMeta: key length %d", len(key))
	}
	if key[0] != tagBlockMeta {
		return blockHash, BlockMeta{}, corrupt("BlockMeta: wrong tag %q", key[0])
	}
	copy(blockHash[:], key[1:])
	if len(value) != 20 {
		return blockHash, BlockMeta{}, corrupt("BlockMeta: value length %d", len(value))
	}
	m := BlockMeta{
		Size:       binary.LittleEndian.Uint32(value[0:4]),
		Weight:     binary.LittleEndian.Uint32(value[4:8]),
		TxCount:    binary.LittleEndian.Uint32(value[8:12]),
		MedianTime: binary.LittleEndian.Uint64(value[12:20]),
	}
	return blockHash, m, nil
}

// BlockMetaKey returns the exact key for a point lookup by block hash.
func BlockMetaKey(blockHash chainhash.Hash256) []byte {
	key := make([]byte, 0, 1+hashLen)
	key = append(key, tagBlockMeta)
	key = append(key, blockHash[:]...)
	return key
}
