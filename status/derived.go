package status

import (
	"sort"

	"rubin.dev/query/chainhash"
	"rubin.dev/query/txformat"
)

// ConfirmedBalance returns the confirmed funding minus confirmed spending,
// signed. A negative result indicates inconsistent indexing (partial
// accounting); callers treat it as a bug, not a user-facing condition.
func (s Status) ConfirmedBalance(log interface{ Warnf(string, ...any) }) int64 {
	balance := sumFunding(s.Confirmed.Funding) - sumSpending(s.Confirmed.Spending)
	if balance < 0 && log != nil {
		log.Warnf("status: negative confirmed balance %d", balance)
	}
	return balance
}

// MempoolBalance returns the mempool-only funding minus spending, signed.
func (s Status) MempoolBalance(log interface{ Warnf(string, ...any) }) int64 {
	balance := sumFunding(s.Mempool.Funding) - sumSpending(s.Mempool.Spending)
	if balance < 0 && log != nil {
		log.Warnf("status: negative mempool balance %d", balance)
	}
	return balance
}

// TotalReceived sums funding value across both confirmed and mempool views.
func (s Status) TotalReceived() int64 {
	return sumFunding(s.Confirmed.Funding) + sumFunding(s.Mempool.Funding)
}

func sumFunding(fs []FundingOutput) int64 {
	var total int64
	for _, f := range fs {
		total += f.Value
	}
	return total
}

func sumSpending(ss []SpendingInput) int64 {
	var total int64
	for _, s := range ss {
		total += s.Value
	}
	return total
}

// HistoryEntry is one (height, txid) pair in a script hash's history.
type HistoryEntry struct {
	Height uint32
	Txid   chainhash.Hash256
}

// History returns the set of (height, txid) pairs touching this script
// hash, de-duplicated by txid, sorted ascending by (height, txid).
func (s Status) History() []HistoryEntry {
	seen := make(map[chainhash.Hash256]HistoryEntry)
	add := func(txid chainhash.Hash256, height uint32) {
		if existing, ok := seen[txid]; !ok || height < existing.Height {
			seen[txid] = HistoryEntry{Height: height, Txid: txid}
		}
	}
	for _, f := range s.Confirmed.Funding {
		add(f.Txid, f.Height)
	}
	for _, sp := range s.Confirmed.Spending {
		add(sp.Txid, sp.Height)
	}
	for _, f := range s.Mempool.Funding {
		add(f.Txid, f.Height)
	}
	for _, sp := range s.Mempool.Spending {
		add(sp.Txid, sp.Height)
	}

	out := make([]HistoryEntry, 0, len(seen))
	for _, e := range seen {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Height != out[j].Height {
			return out[i].Height < out[j].Height
		}
		return lessHash(out[i].Txid, out[j].Txid)
	})
	return out
}

// HistoryTxs returns full-tx handles ordered by height descending; mempool
// entries sort first because they carry the height sentinel. The returned
// entries carry Tx and Height only; BlockHash is left zero.
func (s Status) HistoryTxs() []TxnHeight {
	entries := s.History()
	out := make([]TxnHeight, 0, len(entries))
	txByID := make(map[chainhash.Hash256]*txformat.Transaction)
	for _, f := range s.Confirmed.Funding {
		txByID[f.Txid] = f.Tx
	}
	for _, sp := range s.Confirmed.Spending {
		txByID[sp.Txid] = sp.Tx
	}
	for _, f := range s.Mempool.Funding {
		txByID[f.Txid] = f.Tx
	}
	for _, sp := range s.Mempool.Spending {
		txByID[sp.Txid] = sp.Tx
	}

	for _, e := range entries {
		out = append(out, TxnHeight{Tx: txByID[e.Txid], Height: e.Height})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Height > out[j].Height })
	return out
}

// Unspent builds the UTXO set for this status: the union funding list minus
// any output matched by a spending input, sorted ascending by height.
func (s Status) Unspent(log interface{ Warnf(string, ...any) }) []FundingOutput {
	type key struct {
		txid chainhash.Hash256
		vout uint32
	}
	byOutpoint := make(map[key]FundingOutput)
	add := func(f FundingOutput) { byOutpoint[key{f.Txid, f.OutputIndex}] = f }
	for _, f := range s.Confirmed.Funding {
		add(f)
	}
	for _, f := range s.Mempool.Funding {
		add(f)
	}

	remove := func(outpoint txformat.OutPoint) {
		k := key{outpoint.Hash, outpoint.Index}
		if _, ok := byOutpoint[k]; !ok {
			if log != nil {
				log.Warnf("status: spending input references unknown funding outpoint %s:%d", outpoint.Hash, outpoint.Index)
			}
			return
		}
		delete(byOutpoint, k)
	}
	for _, sp := range s.Confirmed.Spending {
		remove(sp.FundingOutpoint)
	}
	for _, sp := range s.Mempool.Spending {
		remove(sp.FundingOutpoint)
	}

	out := make([]FundingOutput, 0, len(byOutpoint))
	for _, f := range byOutpoint {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Height < out[j].Height })
	return out
}

func lessHash(a, b chainhash.Hash256) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
