// Package queryd composes every component package into the single exported
// Query facade client code depends on. It contains no business logic beyond
// wiring and per-operation latency timing; every method delegates straight
// to the package that owns the concern.
package queryd

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"

	"rubin.dev/query/chainhash"
	"rubin.dev/query/daemonrpc"
	"rubin.dev/query/feeest"
	"rubin.dev/query/headerindex"
	"rubin.dev/query/kvstore"
	"rubin.dev/query/mempool"
	"rubin.dev/query/merkleproof"
	"rubin.dev/query/metrics"
	"rubin.dev/query/queryerr"
	"rubin.dev/query/rowcodec"
	"rubin.dev/query/status"
	"rubin.dev/query/txformat"
	"rubin.dev/query/txresolver"
)

// Query is the single exported type client code depends on.
type Query struct {
	confirmed kvstore.ReadStore
	mempool   *mempool.Tracker
	headers   *headerindex.Index
	daemon    daemonrpc.Client
	latency   *metrics.Latency
	log       *logrus.Logger

	status *status.Engine
	txs    *txresolver.Resolver
}

// New wires a Query facade from its collaborators.
func New(confirmed kvstore.ReadStore, mp *mempool.Tracker, headers *headerindex.Index, daemon daemonrpc.Client, latency *metrics.Latency, log *logrus.Logger) *Query {
	if log == nil {
		log = logrus.New()
	}
	txs := txresolver.New(confirmed, mp, headers, daemon)
	eng := status.New(confirmed, mp.Index(), txs, log)
	return &Query{
		confirmed: confirmed,
		mempool:   mp,
		headers:   headers,
		daemon:    daemon,
		latency:   latency,
		log:       log,
		status:    eng,
		txs:       txs,
	}
}

// Status answers the central script-hash status operation.
func (q *Query) Status(scriptHash chainhash.ScriptHash) (status.Status, error) {
	var out status.Status
	err := q.time("status", func() error {
		var err error
		out, err = q.status.Status(scriptHash)
		return err
	})
	return out, err
}

// ConfirmedBalance is a thin wrapper around Status + Status.ConfirmedBalance.
func (q *Query) ConfirmedBalance(scriptHash chainhash.ScriptHash) (int64, error) {
	st, err := q.Status(scriptHash)
	if err != nil {
		return 0, err
	}
	return st.ConfirmedBalance(q.log), nil
}

// MempoolBalance is a thin wrapper around Status + Status.MempoolBalance.
func (q *Query) MempoolBalance(scriptHash chainhash.ScriptHash) (int64, error) {
	st, err := q.Status(scriptHash)
	if err != nil {
		return 0, err
	}
	return st.MempoolBalance(q.log), nil
}

// TotalReceived is a thin wrapper around Status + Status.TotalReceived.
func (q *Query) TotalReceived(scriptHash chainhash.ScriptHash) (int64, error) {
	st, err := q.Status(scriptHash)
	if err != nil {
		return 0, err
	}
	return st.TotalReceived(), nil
}

// History is a thin wrapper around Status + Status.History.
func (q *Query) History(scriptHash chainhash.ScriptHash) ([]status.HistoryEntry, error) {
	st, err := q.Status(scriptHash)
	if err != nil {
		return nil, err
	}
	return st.History(), nil
}

// HistoryTxs is a thin wrapper around Status + Status.HistoryTxs.
func (q *Query) HistoryTxs(scriptHash chainhash.ScriptHash) ([]status.TxnHeight, error) {
	st, err := q.Status(scriptHash)
	if err != nil {
		return nil, err
	}
	return st.HistoryTxs(), nil
}

// Unspent is a thin wrapper around Status + Status.Unspent.
func (q *Query) Unspent(scriptHash chainhash.ScriptHash) ([]status.FundingOutput, error) {
	st, err := q.Status(scriptHash)
	if err != nil {
		return nil, err
	}
	return st.Unspent(q.log), nil
}

// TxGet resolves a transaction by txid, confirmed or mempool.
func (q *Query) TxGet(txid chainhash.Hash256) (*txformat.Transaction, error) {
	var out *txformat.Transaction
	err := q.time("tx_get", func() error {
		var err error
		out, err = q.txs.TxGet(txid)
		return err
	})
	return out, err
}

// TxGetRaw resolves the raw bytes of a transaction by txid.
func (q *Query) TxGetRaw(txid chainhash.Hash256) ([]byte, error) {
	var out []byte
	err := q.time("tx_get_raw", func() error {
		var err error
		out, err = q.txs.TxGetRaw(txid)
		return err
	})
	return out, err
}

// GetTransaction delegates to the daemon for the authoritative result.
func (q *Query) GetTransaction(ctx context.Context, txid chainhash.Hash256, verbose bool) (*txformat.Transaction, json.RawMessage, error) {
	var tx *txformat.Transaction
	var raw json.RawMessage
	err := q.time("get_transaction", func() error {
		var err error
		tx, raw, err = q.txs.GetTransaction(ctx, txid, verbose)
		return err
	})
	return tx, raw, err
}

// GetTxStatus reports confirmation status with reorg awareness.
func (q *Query) GetTxStatus(txid chainhash.Hash256) (txresolver.TransactionStatus, error) {
	var out txresolver.TransactionStatus
	err := q.time("get_tx_status", func() error {
		var err error
		out, err = q.txs.GetTxStatus(txid)
		return err
	})
	return out, err
}

// FindSpendingByOutpoint probes the confirmed spending-input index first,
// then the mempool's.
func (q *Query) FindSpendingByOutpoint(outpoint txformat.OutPoint) (*status.SpendingInput, error) {
	var out *status.SpendingInput
	err := q.time("find_spending_by_outpoint", func() error {
		var err error
		out, err = q.status.FindSpendingByOutpoint(outpoint)
		return err
	})
	return out, err
}

// FindSpendingForFundingTx probes every output of tx for a spender,
// positions aligned with tx.Outputs.
func (q *Query) FindSpendingForFundingTx(txid chainhash.Hash256, tx *txformat.Transaction) ([]*status.SpendingInput, error) {
	var out []*status.SpendingInput
	err := q.time("find_spending_for_funding_tx", func() error {
		var err error
		out, err = q.status.FindSpendingForFundingTx(txid, tx)
		return err
	})
	return out, err
}

// GetHeader returns the best-chain header at height.
func (q *Query) GetHeader(height uint32) (headerindex.Header, bool) {
	return q.headers.GetHeader(height)
}

// GetHeaderByHash resolves a header by hash, with the index's intrinsic
// reorg-safety re-check.
func (q *Query) GetHeaderByHash(hash chainhash.Hash256) (headerindex.Header, bool) {
	return q.headers.GetHeaderByHash(hash)
}

// BestHeader returns the highest header in the best chain.
func (q *Query) BestHeader() (headerindex.Header, bool) { return q.headers.BestHeader() }

// BestHeight returns the height of the best header.
func (q *Query) BestHeight() (uint32, bool) { return q.headers.BestHeight() }

// BestHeaderHash returns the hash of the best header.
func (q *Query) BestHeaderHash() (chainhash.Hash256, bool) { return q.headers.BestHeaderHash() }

// GetBlockStatus reports best-chain membership for a block hash.
func (q *Query) GetBlockStatus(hash chainhash.Hash256) headerindex.BlockStatus {
	var out headerindex.BlockStatus
	q.time("get_block_status", func() error {
		out = q.headers.GetBlockStatus(hash)
		return nil
	})
	return out
}

// LookupConfirmedBlockHash resolves the block hash confirming txid via the
// header index; the zero hash means unconfirmed.
func (q *Query) LookupConfirmedBlockHash(txid chainhash.Hash256, hintHeight *uint32) (chainhash.Hash256, error) {
	var out chainhash.Hash256
	err := q.time("lookup_confirmed_blockhash", func() error {
		var err error
		out, err = q.txs.LookupConfirmedBlockHash(txid, hintHeight)
		return err
	})
	return out, err
}

// GetBlockHeaderWithMeta joins the header index with the BlockMeta row.
func (q *Query) GetBlockHeaderWithMeta(hash chainhash.Hash256) (headerindex.HeaderWithMeta, error) {
	var out headerindex.HeaderWithMeta
	err := q.time("get_block_header_with_meta", func() error {
		var err error
		out, err = q.headers.GetBlockHeaderWithMeta(q.confirmed, hash)
		return err
	})
	return out, err
}

// GetBlock delegates to the daemon; full block bodies are never persisted.
func (q *Query) GetBlock(ctx context.Context, hash chainhash.Hash256) (*daemonrpc.Block, error) {
	var out *daemonrpc.Block
	err := q.time("get_block", func() error {
		var err error
		out, err = q.daemon.GetBlock(ctx, hash)
		return err
	})
	return out, err
}

// Broadcast forwards a raw transaction to the daemon.
func (q *Query) Broadcast(ctx context.Context, raw []byte) (chainhash.Hash256, error) {
	var out chainhash.Hash256
	err := q.time("broadcast", func() error {
		var err error
		out, err = q.daemon.Broadcast(ctx, raw)
		return err
	})
	return out, err
}

// EstimateFee answers a block-target fee estimate from the mempool's fee
// histogram.
func (q *Query) EstimateFee(blocks int) float64 {
	var out float64
	q.time("estimate_fee", func() error {
		out = feeest.EstimateFee(q.mempool.FeeHistogram(), blocks)
		return nil
	})
	return out
}

// GetFeeHistogram returns the mempool's fee-rate histogram unchanged.
func (q *Query) GetFeeHistogram() []mempool.FeeBucket {
	var out []mempool.FeeBucket
	q.time("get_fee_histogram", func() error {
		out = feeest.GetFeeHistogram(q.mempool.FeeHistogram())
		return nil
	})
	return out
}

// MerkleProof reconstructs the inclusion proof for txHash within blockHash.
func (q *Query) MerkleProof(txHash, blockHash chainhash.Hash256) (merkleproof.Proof, error) {
	var out merkleproof.Proof
	err := q.time("merkle_proof", func() error {
		value, ok, err := q.confirmed.Get(rowcodec.BlockTxidsKey(blockHash))
		if err != nil {
			return err
		}
		if !ok {
			return queryerr.New(queryerr.MissingBlockTxids, "no BlockTxids for block hash "+blockHash.String())
		}
		_, txids, err := rowcodec.DecodeBlockTxids(rowcodec.BlockTxidsKey(blockHash), value)
		if err != nil {
			return err
		}
		out, err = merkleproof.Build(txids, txHash)
		return err
	})
	return out, err
}

// UpdateMempool refreshes the mempool tracker from the daemon. This is the
// mutation path's single entry point into the read-serving components.
func (q *Query) UpdateMempool(ctx context.Context) error {
	return q.mempool.Update(ctx, q.daemon)
}

func (q *Query) time(operation string, fn func() error) error {
	if q.latency == nil {
		return fn()
	}
	return q.latency.Observe(operation, fn)
}
