// Package status implements the script-hash status engine: the central
// operation that combines the confirmed KV index and the mempool view into
// a single funding/spending picture for a script hash, and the derived
// balance/history/UTXO queries built on top of it.
package status

import (
	"rubin.dev/query/chainhash"
	"rubin.dev/query/txformat"
)

// HeightMempool is the sentinel height carried by every mempool-sourced
// entry; it sorts after all confirmed heights. Callers should use IsMempool
// rather than comparing against this constant directly.
const HeightMempool = ^uint32(0)

// FundingOutput is a tx output credited to the queried script hash.
type FundingOutput struct {
	Txid        chainhash.Hash256
	OutputIndex uint32
	Height      uint32
	Value       int64
	Tx          *txformat.Transaction // optional; present when resolved alongside the output
}

// IsMempool reports whether this funding output is unconfirmed.
func (f FundingOutput) IsMempool() bool { return f.Height == HeightMempool }

// SpendingInput is a tx input that spends a FundingOutput.
type SpendingInput struct {
	Txid            chainhash.Hash256
	InputIndex      uint32
	FundingOutpoint txformat.OutPoint
	Height          uint32
	Value           int64
	Tx              *txformat.Transaction
}

// IsMempool reports whether this spending input is unconfirmed.
func (s SpendingInput) IsMempool() bool { return s.Height == HeightMempool }

// View is one half (confirmed or mempool) of a Status.
type View struct {
	Funding  []FundingOutput
	Spending []SpendingInput
}

// Status is the combined confirmed+mempool funding/spending picture for a
// script hash.
type Status struct {
	Confirmed View
	Mempool   View
}

// TxnHeight pairs a resolved transaction with its confirmation height and
// block hash.
type TxnHeight struct {
	Tx        *txformat.Transaction
	Height    uint32
	BlockHash chainhash.Hash256
}
