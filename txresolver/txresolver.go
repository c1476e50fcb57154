// Package txresolver answers questions about individual transactions:
// fetching them (confirmed or mempool), resolving their confirming block,
// and reporting confirmation status with reorg-awareness.
package txresolver

import (
	"context"
	"encoding/json"

	"rubin.dev/query/chainhash"
	"rubin.dev/query/daemonrpc"
	"rubin.dev/query/headerindex"
	"rubin.dev/query/kvstore"
	"rubin.dev/query/mempool"
	"rubin.dev/query/queryerr"
	"rubin.dev/query/rowcodec"
	"rubin.dev/query/txformat"
)

// TransactionStatus is the confirmation status of a transaction.
type TransactionStatus struct {
	Confirmed bool
	Height    uint32
	BlockHash chainhash.Hash256
	Summary   headerindex.Summary
}

// Resolver combines the confirmed store, the mempool view and the header
// index to answer per-transaction questions. It never re-validates a
// block; it trusts the header index as the single source of truth for
// best-chain membership, re-checking row data (which may be reorg-stale)
// against it on every call.
type Resolver struct {
	Confirmed kvstore.ReadStore
	Mempool   *mempool.Tracker
	Headers   *headerindex.Index
	Daemon    daemonrpc.Client
}

// New returns a Resolver wired to its collaborators.
func New(confirmed kvstore.ReadStore, mp *mempool.Tracker, headers *headerindex.Index, daemon daemonrpc.Client) *Resolver {
	return &Resolver{Confirmed: confirmed, Mempool: mp, Headers: headers, Daemon: daemon}
}

// TxGet looks up RawTxRow by full txid; if present, deserializes and
// returns it. Otherwise consults the mempool. Returns (nil, nil) if neither
// holds it.
func (r *Resolver) TxGet(txid chainhash.Hash256) (*txformat.Transaction, error) {
	value, ok, err := r.Confirmed.Get(rowcodec.RawTxRowKey(txid))
	if err != nil {
		return nil, err
	}
	if ok {
		row, err := rowcodec.DecodeRawTxRow(rowcodec.RawTxRowKey(txid), value)
		if err != nil {
			return nil, err
		}
		tx, err := txformat.Deserialize(row.RawTx)
		if err != nil {
			return nil, queryerr.Wrap(queryerr.Corruption, "deserializing RawTxRow", err)
		}
		return tx, nil
	}
	if tx, ok := r.Mempool.GetTxn(txid); ok {
		return tx, nil
	}
	return nil, nil
}

// TxGetRaw returns the raw serialized bytes of txid, re-serializing a
// mempool transaction if only the parsed form is held.
func (r *Resolver) TxGetRaw(txid chainhash.Hash256) ([]byte, error) {
	value, ok, err := r.Confirmed.Get(rowcodec.RawTxRowKey(txid))
	if err != nil {
		return nil, err
	}
	if ok {
		row, err := rowcodec.DecodeRawTxRow(rowcodec.RawTxRowKey(txid), value)
		if err != nil {
			return nil, err
		}
		return row.RawTx, nil
	}
	if raw, ok := r.Mempool.GetRaw(txid); ok {
		return raw, nil
	}
	if tx, ok := r.Mempool.GetTxn(txid); ok {
		return tx.Serialize(), nil
	}
	return nil, nil
}

// LookupConfirmedBlockHash resolves txid's confirming block hash via the
// header index, deliberately ignoring whatever blockhash TxRow recorded:
// after a reorg TxRow may still be present but the header at that height
// has changed. hintHeight, if non-nil, skips the TxRow lookup.
func (r *Resolver) LookupConfirmedBlockHash(txid chainhash.Hash256, hintHeight *uint32) (chainhash.Hash256, error) {
	if _, ok := r.Mempool.GetTxn(txid); ok {
		return chainhash.Hash256{}, nil // unconfirmed
	}

	height, err := r.resolveHeight(txid, hintHeight)
	if err != nil {
		return chainhash.Hash256{}, err
	}

	header, ok := r.Headers.GetHeader(height)
	if !ok {
		return chainhash.Hash256{}, queryerr.New(queryerr.MissingHeader, "no header at height for confirmed tx")
	}
	return header.Hash, nil
}

func (r *Resolver) resolveHeight(txid chainhash.Hash256, hintHeight *uint32) (uint32, error) {
	if hintHeight != nil {
		return *hintHeight, nil
	}
	row, err := r.lookupTxRow(txid)
	if err != nil {
		return 0, err
	}
	if row == nil {
		return 0, queryerr.New(queryerr.NotIndexed, "txid not indexed")
	}
	return row.Height, nil
}

func (r *Resolver) lookupTxRow(txid chainhash.Hash256) (*rowcodec.TxRow, error) {
	seq, err := r.Confirmed.Scan(rowcodec.TxRowFilterFull(txid))
	if err != nil {
		return nil, err
	}
	for k, v := range seq {
		row, err := rowcodec.DecodeTxRow(k, v)
		if err != nil {
			return nil, queryerr.Wrap(queryerr.Corruption, "decoding TxRow", err)
		}
		if row.Txid == txid {
			return &row, nil
		}
	}
	return nil, nil
}

// GetTransaction computes the confirming blockhash as LookupConfirmedBlockHash
// does, then delegates to the daemon for the authoritative result.
func (r *Resolver) GetTransaction(ctx context.Context, txid chainhash.Hash256, verbose bool) (*txformat.Transaction, json.RawMessage, error) {
	blockHash, err := r.LookupConfirmedBlockHash(txid, nil)
	if err != nil && !queryerr.Is(err, queryerr.NotIndexed) {
		return nil, nil, err
	}
	var hashPtr *chainhash.Hash256
	if !blockHash.IsZero() {
		hashPtr = &blockHash
	}

	if verbose {
		raw, err := r.Daemon.GetTransactionVerbose(ctx, txid, hashPtr)
		return nil, raw, err
	}
	tx, err := r.Daemon.GetTransaction(ctx, txid, hashPtr)
	return tx, nil, err
}

// GetTxStatus looks up TxRow for txid; if absent, Unconfirmed. Otherwise
// fetches the header at that row's recorded height; if its hash differs
// from TxRow's blockhash, the tx was reorg-evicted and reports Unconfirmed.
func (r *Resolver) GetTxStatus(txid chainhash.Hash256) (TransactionStatus, error) {
	row, err := r.lookupTxRow(txid)
	if err != nil {
		return TransactionStatus{}, err
	}
	if row == nil {
		return TransactionStatus{Confirmed: false}, nil
	}
	header, ok := r.Headers.GetHeader(row.Height)
	if !ok || header.Hash != row.BlockHash {
		return TransactionStatus{Confirmed: false}, nil
	}
	return TransactionStatus{
		Confirmed: true,
		Height:    row.Height,
		BlockHash: header.Hash,
		Summary:   headerindex.Summarize(header),
	}, nil
}
