package status

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"rubin.dev/query/chainhash"
	"rubin.dev/query/kvstore"
	"rubin.dev/query/queryerr"
	"rubin.dev/query/rowcodec"
	"rubin.dev/query/txformat"
)

// FundingTxnLimit bounds the number of funding transactions a single
// status() call will resolve for one script hash: it protects against
// denial-of-service through dust flooding of an address.
const FundingTxnLimit = 100

// TxGetter resolves a full txid to its parsed transaction, consulting both
// the confirmed index and the mempool; txresolver.Resolver implements it.
type TxGetter interface {
	TxGet(txid chainhash.Hash256) (*txformat.Transaction, error)
}

// Engine is the script-hash status engine: confirmed store, mempool index
// and a tx resolver wired together.
type Engine struct {
	Confirmed kvstore.ReadStore
	Mempool   kvstore.ReadStore
	Txs       TxGetter
	Log       *logrus.Logger
}

// New returns a status Engine. log may be nil, in which case a default
// logrus logger is used.
func New(confirmed, mempoolIndex kvstore.ReadStore, txs TxGetter, log *logrus.Logger) *Engine {
	if log == nil {
		log = logrus.New()
	}
	return &Engine{Confirmed: confirmed, Mempool: mempoolIndex, Txs: txs, Log: log}
}

// Status runs the full seven-step algorithm for scriptHash.
func (e *Engine) Status(scriptHash chainhash.ScriptHash) (Status, error) {
	confirmedFunding, err := e.scanFunding(e.Confirmed, scriptHash, FundingTxnLimit, confirmedHeight)
	if err != nil {
		return Status{}, err
	}

	confirmedSpending, err := e.scanSpendingConfirmed(confirmedFunding)
	if err != nil {
		return Status{}, err
	}

	mempoolFunding, err := e.scanFunding(e.Mempool, scriptHash, FundingTxnLimit, mempoolHeight)
	if err != nil {
		return Status{}, err
	}

	mempoolSpending, err := e.scanSpendingMempool(append(append([]FundingOutput{}, confirmedFunding...), mempoolFunding...))
	if err != nil {
		return Status{}, err
	}

	return Status{
		Confirmed: View{Funding: confirmedFunding, Spending: confirmedSpending},
		Mempool:   View{Funding: mempoolFunding, Spending: mempoolSpending},
	}, nil
}

// heightFn extracts the height to attach to a funding output resolved from
// a given store; confirmed rows carry their real height, mempool rows
// always carry the sentinel.
type heightFn func(rowcodec.TxRow) uint32

func confirmedHeight(r rowcodec.TxRow) uint32 { return r.Height }
func mempoolHeight(rowcodec.TxRow) uint32     { return HeightMempool }

// scanFunding implements steps 1-3 (or 5 when given the mempool store):
// scan TxOutRow for scriptHash, resolve each candidate prefix to full
// transactions via TxRow, and keep only outputs that truly hash to
// scriptHash.
func (e *Engine) scanFunding(store kvstore.ReadStore, scriptHash chainhash.ScriptHash, limit int, height heightFn) ([]FundingOutput, error) {
	seq, err := store.Scan(rowcodec.TxOutRowFilter(scriptHash))
	if err != nil {
		return nil, err
	}

	var prefixes []chainhash.Prefix
	for k, v := range seq {
		row, err := rowcodec.DecodeTxOutRow(k, v)
		if err != nil {
			return nil, queryerr.Wrap(queryerr.Corruption, "decoding TxOutRow", err)
		}
		prefixes = append(prefixes, row.TxidPrefix)
		if len(prefixes) > limit {
			return nil, queryerr.New(queryerr.TooManyTxs, fmt.Sprintf("script hash has more than %d funding txs", limit))
		}
	}

	var out []FundingOutput
	for _, prefix := range prefixes {
		candidates, err := e.resolveTxRowCandidates(store, prefix)
		if err != nil {
			return nil, err
		}
		for _, cand := range candidates {
			tx, err := e.Txs.TxGet(cand.Txid)
			if err != nil {
				return nil, err
			}
			if tx == nil {
				continue
			}
			for i, out2 := range tx.Outputs {
				if chainhash.ScriptHashOf(out2.PkScript) != scriptHash {
					continue // prefix false-positive; not actually funding this script
				}
				out = append(out, FundingOutput{
					Txid:        cand.Txid,
					OutputIndex: uint32(i),
					Height:      height(cand),
					Value:       out2.Value,
					Tx:          tx,
				})
			}
		}
	}
	return out, nil
}

// resolveTxRowCandidates scans TxRow for every row matching prefix,
// returning every candidate (there may be more than one under collision).
func (e *Engine) resolveTxRowCandidates(store kvstore.ReadStore, prefix chainhash.Prefix) ([]rowcodec.TxRow, error) {
	seq, err := store.Scan(rowcodec.TxRowFilterPrefix(prefix))
	if err != nil {
		return nil, err
	}
	var out []rowcodec.TxRow
	for k, v := range seq {
		row, err := rowcodec.DecodeTxRow(k, v)
		if err != nil {
			return nil, queryerr.Wrap(queryerr.Corruption, "decoding TxRow", err)
		}
		out = append(out, row)
	}
	return out, nil
}

// scanSpendingConfirmed implements step 4: for each confirmed funding
// output, scan the confirmed TxInRow index for its spender.
func (e *Engine) scanSpendingConfirmed(funding []FundingOutput) ([]SpendingInput, error) {
	var out []SpendingInput
	for _, f := range funding {
		spenders, err := e.findSpenders(e.Confirmed, f, confirmedHeight)
		if err != nil {
			return nil, err
		}
		if len(spenders) > 1 {
			return nil, queryerr.New(queryerr.Corruption, fmt.Sprintf("multiple confirmed spenders for outpoint %s:%d", f.Txid, f.OutputIndex))
		}
		out = append(out, spenders...)
	}
	return out, nil
}

// scanSpendingMempool implements step 6: scan the mempool TxInRow index for
// every funding output of this script hash, confirmed and mempool alike.
func (e *Engine) scanSpendingMempool(allFunding []FundingOutput) ([]SpendingInput, error) {
	var out []SpendingInput
	for _, f := range allFunding {
		spenders, err := e.findSpenders(e.Mempool, f, mempoolHeight)
		if err != nil {
			return nil, err
		}
		out = append(out, spenders...)
	}
	return out, nil
}

func (e *Engine) findSpenders(store kvstore.ReadStore, f FundingOutput, height heightFn) ([]SpendingInput, error) {
	seq, err := store.Scan(rowcodec.TxInRowFilter(f.Txid, f.OutputIndex))
	if err != nil {
		return nil, err
	}

	var prefixes []chainhash.Prefix
	for k, v := range seq {
		row, err := rowcodec.DecodeTxInRow(k, v)
		if err != nil {
			return nil, queryerr.Wrap(queryerr.Corruption, "decoding TxInRow", err)
		}
		prefixes = append(prefixes, row.TxidPrefix)
	}

	var out []SpendingInput
	for _, prefix := range prefixes {
		candidates, err := e.resolveTxRowCandidates(store, prefix)
		if err != nil {
			return nil, err
		}
		for _, cand := range candidates {
			tx, err := e.Txs.TxGet(cand.Txid)
			if err != nil {
				return nil, err
			}
			if tx == nil {
				continue
			}
			for i, in := range tx.Inputs {
				if in.PrevOut.Hash != f.Txid || in.PrevOut.Index != f.OutputIndex {
					continue
				}
				out = append(out, SpendingInput{
					Txid:            cand.Txid,
					InputIndex:      uint32(i),
					FundingOutpoint: in.PrevOut,
					Height:          height(cand),
					Value:           f.Value,
					Tx:              tx,
				})
			}
		}
	}
	return out, nil
}
