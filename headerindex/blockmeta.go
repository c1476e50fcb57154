package headerindex

import (
	"rubin.dev/query/chainhash"
	"rubin.dev/query/kvstore"
	"rubin.dev/query/queryerr"
	"rubin.dev/query/rowcodec"
)

// HeaderWithMeta joins a best-chain header with the block metadata the
// indexer stored for it.
type HeaderWithMeta struct {
	Header Header
	Meta   rowcodec.BlockMeta
}

// GetBlockHeaderWithMeta joins GetHeaderByHash with the BlockMeta row from
// store; both are required.
func (ix *Index) GetBlockHeaderWithMeta(store kvstore.ReadStore, hash chainhash.Hash256) (HeaderWithMeta, error) {
	h, ok := ix.GetHeaderByHash(hash)
	if !ok {
		return HeaderWithMeta{}, queryerr.New(queryerr.MissingHeader, "no header for block hash "+hash.String())
	}
	value, ok, err := store.Get(rowcodec.BlockMetaKey(hash))
	if err != nil {
		return HeaderWithMeta{}, err
	}
	if !ok {
		return HeaderWithMeta{}, queryerr.New(queryerr.MissingBlockMeta, "no BlockMeta for block hash "+hash.String())
	}
	_, meta, err := rowcodec.DecodeBlockMeta(rowcodec.BlockMetaKey(hash), value)
	if err != nil {
		return HeaderWithMeta{}, err
	}
	return HeaderWithMeta{Header: h, Meta: meta}, nil
}
