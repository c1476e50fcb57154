package status

import (
	"rubin.dev/query/chainhash"
	"rubin.dev/query/txformat"
)

// FindSpendingByOutpoint probes the confirmed spending-input index first;
// if a spender is found, returns it. Otherwise probes the mempool's
// spending-input index. Returns nil if neither has a spender.
func (e *Engine) FindSpendingByOutpoint(outpoint txformat.OutPoint) (*SpendingInput, error) {
	f := FundingOutput{Txid: outpoint.Hash, OutputIndex: outpoint.Index}

	confirmedSpenders, err := e.findSpenders(e.Confirmed, f, confirmedHeight)
	if err != nil {
		return nil, err
	}
	if len(confirmedSpenders) > 0 {
		return &confirmedSpenders[0], nil
	}

	mempoolSpenders, err := e.findSpenders(e.Mempool, f, mempoolHeight)
	if err != nil {
		return nil, err
	}
	if len(mempoolSpenders) > 0 {
		return &mempoolSpenders[0], nil
	}
	return nil, nil
}

// FindSpendingForFundingTx runs FindSpendingByOutpoint for every output of
// tx, skipping provably-unspendable outputs (which always report nil).
// Result length equals len(tx.Outputs); positions align.
func (e *Engine) FindSpendingForFundingTx(txid chainhash.Hash256, tx *txformat.Transaction) ([]*SpendingInput, error) {
	out := make([]*SpendingInput, len(tx.Outputs))
	for i, o := range tx.Outputs {
		if o.IsProvablyUnspendable() {
			continue
		}
		spender, err := e.FindSpendingByOutpoint(txformat.OutPoint{Hash: txid, Index: uint32(i)})
		if err != nil {
			return nil, err
		}
		out[i] = spender
	}
	return out, nil
}
