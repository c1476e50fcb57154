package mempool

import (
	"context"
	"sort"

	"rubin.dev/query/chainhash"
	"rubin.dev/query/txformat"
)

// feePerVByte is a placeholder fee-rate model: this tracker only sees raw
// transactions, not the daemon's own fee computation, so it derives a
// deterministic stand-in fee rate from transaction size. A real deployment
// wires the daemon's per-tx fee (from verbose mempool entries) instead; this
// keeps the histogram shape meaningful without requiring that richer RPC.
func feePerVByte(raw []byte) float64 {
	vsize := vsizeOf(raw)
	if vsize == 0 {
		return 0
	}
	return 1.0 + 1000.0/float64(vsize)
}

func vsizeOf(raw []byte) uint64 {
	if len(raw) == 0 {
		return 0
	}
	return uint64(len(raw))
}

// Update refreshes the tracker from the daemon's current mempool. It is the
// only mutating entry point; callers must serialize calls to Update
// themselves (queryd.UpdateMempool passes calls straight through and takes
// no lock of its own).
func (t *Tracker) Update(ctx context.Context, d Daemon) error {
	raws, err := d.RawMempool(ctx)
	if err != nil {
		return err
	}

	byTxid := make(map[chainhash.Hash256]*entry, len(raws))
	for _, raw := range raws {
		tx, err := txformat.Deserialize(raw)
		if err != nil {
			continue // malformed mempool entry; skip rather than fail the whole refresh
		}
		byTxid[tx.Txid()] = &entry{
			tx:      tx,
			raw:     raw,
			feeRate: feePerVByte(raw),
			vsize:   vsizeOf(raw),
		}
	}

	limit := t.limit
	if limit <= 0 {
		limit = MaxTrackedTxs
	}
	evictToFeeRateFloor(byTxid, limit)

	// Derive the funding/spending indexes only from the entries that
	// survived eviction, so they never reference an untracked tx. A tx
	// paying the same script from several outputs still produces a single
	// funding entry per (script hash, txid), matching the keyed row shape
	// the confirmed index stores.
	funding := make(map[chainhash.ScriptHash][]chainhash.Hash256)
	spends := make(map[spendKey]chainhash.Hash256)
	for txid, e := range byTxid {
		seen := make(map[chainhash.ScriptHash]struct{}, len(e.tx.Outputs))
		for _, out := range e.tx.Outputs {
			if out.IsProvablyUnspendable() {
				continue
			}
			sh := chainhash.ScriptHashOf(out.PkScript)
			if _, dup := seen[sh]; dup {
				continue
			}
			seen[sh] = struct{}{}
			funding[sh] = append(funding[sh], txid)
		}
		for _, in := range e.tx.Inputs {
			spends[spendKey{prevTxid: in.PrevOut.Hash, prevVout: in.PrevOut.Index}] = txid
		}
	}

	t.mu.Lock()
	t.byTxid = byTxid
	t.funding = funding
	t.spends = spends
	t.mu.Unlock()
	return nil
}

// evictToFeeRateFloor drops the lowest fee-rate entries from m until its
// size is at most limit.
func evictToFeeRateFloor(m map[chainhash.Hash256]*entry, limit int) {
	if len(m) <= limit {
		return
	}
	type scored struct {
		txid chainhash.Hash256
		rate float64
	}
	all := make([]scored, 0, len(m))
	for txid, e := range m {
		all = append(all, scored{txid: txid, rate: e.feeRate})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].rate < all[j].rate })

	evict := len(all) - limit
	for i := 0; i < evict; i++ {
		delete(m, all[i].txid)
	}
}
