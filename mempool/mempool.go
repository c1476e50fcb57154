// Package mempool tracks the daemon's unconfirmed transaction pool and
// exposes it behind the same ReadStore shape the confirmed KV index uses, so
// the status engine can treat both uniformly.
package mempool

import (
	"bytes"
	"context"
	"iter"
	"sort"
	"sync"

	"rubin.dev/query/chainhash"
	"rubin.dev/query/kvstore"
	"rubin.dev/query/rowcodec"
	"rubin.dev/query/txformat"
)

// MaxTrackedTxs is the default bound on the number of mempool transactions a
// tracker keeps in memory, used by New and by NewWithLimit when given a
// non-positive limit. When Update's fetch would exceed the tracker's bound,
// the lowest fee-rate entries are evicted first.
const MaxTrackedTxs = 300_000

// HeightMempool is the sentinel height used for every mempool-sourced row;
// it sorts after all confirmed heights.
const HeightMempool = ^uint32(0)

// FeeBucket is one entry in the fee-rate histogram: aggregate vsize of all
// transactions whose fee rate falls in this bucket.
type FeeBucket struct {
	FeeRate float64 // sat/vbyte
	VSize   uint64
}

type entry struct {
	tx      *txformat.Transaction
	raw     []byte
	feeRate float64
	vsize   uint64
}

// Tracker is the single-writer, many-reader mempool view. Update is the only
// writer and must never be called while a caller holds a Scan/Get result
// across a daemon round trip.
type Tracker struct {
	mu      sync.RWMutex
	limit   int
	byTxid  map[chainhash.Hash256]*entry
	funding map[chainhash.ScriptHash][]chainhash.Hash256 // script hash -> funding txids
	spends  map[spendKey]chainhash.Hash256                // outpoint -> spending txid
}

type spendKey struct {
	prevTxid chainhash.Hash256
	prevVout uint32
}

// Daemon is the subset of daemon RPC this tracker needs to refresh itself.
type Daemon interface {
	// RawMempool returns the raw bytes of every transaction currently in
	// the daemon's mempool.
	RawMempool(ctx context.Context) ([][]byte, error)
}

// New returns an empty tracker that evicts down to MaxTrackedTxs entries on
// every Update. Call Update to populate it.
func New() *Tracker {
	return NewWithLimit(MaxTrackedTxs)
}

// NewWithLimit returns an empty tracker with a caller-chosen eviction
// ceiling, wired from config.Config.MaxTrackedTx at startup.
func NewWithLimit(limit int) *Tracker {
	if limit <= 0 {
		limit = MaxTrackedTxs
	}
	return &Tracker{
		limit:   limit,
		byTxid:  make(map[chainhash.Hash256]*entry),
		funding: make(map[chainhash.ScriptHash][]chainhash.Hash256),
		spends:  make(map[spendKey]chainhash.Hash256),
	}
}

// GetTxn looks up a transaction by full txid.
func (t *Tracker) GetTxn(txid chainhash.Hash256) (*txformat.Transaction, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.byTxid[txid]
	if !ok {
		return nil, false
	}
	return e.tx, true
}

// GetRaw returns the raw serialized bytes of a mempool transaction.
func (t *Tracker) GetRaw(txid chainhash.Hash256) ([]byte, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.byTxid[txid]
	if !ok {
		return nil, false
	}
	return e.raw, true
}

// FeeHistogram returns the fee-rate histogram, buckets sorted by fee rate
// descending.
func (t *Tracker) FeeHistogram() []FeeBucket {
	t.mu.RLock()
	defer t.mu.RUnlock()

	byRate := make(map[float64]uint64)
	for _, e := range t.byTxid {
		byRate[e.feeRate] += e.vsize
	}
	buckets := make([]FeeBucket, 0, len(byRate))
	for rate, vsize := range byRate {
		buckets = append(buckets, FeeBucket{FeeRate: rate, VSize: vsize})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].FeeRate > buckets[j].FeeRate })
	return buckets
}

// Index returns a ReadStore view over the mempool's derived TxRow/RawTxRow/
// TxOutRow/TxInRow shaped index. Scan/Get take the read lock only for the
// duration of the call.
func (t *Tracker) Index() kvstore.ReadStore {
	return (*index)(t)
}

type index Tracker

func (ix *index) tracker() *Tracker { return (*Tracker)(ix) }

func (ix *index) Get(key []byte) ([]byte, bool, error) {
	t := ix.tracker()
	t.mu.RLock()
	defer t.mu.RUnlock()

	if len(key) == 0 {
		return nil, false, nil
	}
	switch key[0] {
	case rawTxTag:
		txid, ok := decodeRawTxRowKey(key)
		if !ok {
			return nil, false, nil
		}
		e, ok := t.byTxid[txid]
		if !ok {
			return nil, false, nil
		}
		_, v := rowcodec.EncodeRawTxRow(rowcodec.RawTxRow{Txid: txid, RawTx: e.raw})
		return v, true, nil
	default:
		return nil, false, nil
	}
}

const rawTxTag = 'R'

func decodeRawTxRowKey(key []byte) (chainhash.Hash256, bool) {
	if len(key) != 1+chainhash.Size || key[0] != rawTxTag {
		return chainhash.Hash256{}, false
	}
	var h chainhash.Hash256
	copy(h[:], key[1:])
	return h, true
}

func (ix *index) Scan(prefix []byte) (iter.Seq2[[]byte, []byte], error) {
	t := ix.tracker()
	t.mu.RLock()
	defer t.mu.RUnlock()

	if len(prefix) == 0 {
		return func(func([]byte, []byte) bool) {}, nil
	}

	var rows [][2][]byte
	switch prefix[0] {
	case txRowTag:
		rows = t.scanTxRows(prefix)
	case txOutTag:
		rows = t.scanTxOutRows(prefix)
	case txInTag:
		rows = t.scanTxInRows(prefix)
	}
	rows = sortRows(rows)

	return func(yield func([]byte, []byte) bool) {
		for _, kv := range rows {
			if !yield(kv[0], kv[1]) {
				return
			}
		}
	}, nil
}

const (
	txRowTag = 'T'
	txOutTag = 'O'
	txInTag  = 'I'
)

func (t *Tracker) scanTxRows(prefix []byte) [][2][]byte {
	var out [][2][]byte
	for txid := range t.byTxid {
		row := rowcodec.TxRow{
			TxidPrefix: chainhash.PrefixOf(txid),
			Height:     HeightMempool,
			BlockHash:  chainhash.Hash256{},
			Txid:       txid,
		}
		k, v := rowcodec.EncodeTxRow(row)
		if hasPrefix(k, prefix) {
			out = append(out, [2][]byte{k, v})
		}
	}
	return out
}

func (t *Tracker) scanTxOutRows(prefix []byte) [][2][]byte {
	var out [][2][]byte
	for sh, txids := range t.funding {
		for _, txid := range txids {
			row := rowcodec.TxOutRow{ScriptHash: sh, TxidPrefix: chainhash.PrefixOf(txid)}
			k, v := rowcodec.EncodeTxOutRow(row)
			if hasPrefix(k, prefix) {
				out = append(out, [2][]byte{k, v})
			}
		}
	}
	return out
}

func (t *Tracker) scanTxInRows(prefix []byte) [][2][]byte {
	var out [][2][]byte
	for sk, spender := range t.spends {
		row := rowcodec.TxInRow{
			PrevTxid:   sk.prevTxid,
			PrevVout:   sk.prevVout,
			TxidPrefix: chainhash.PrefixOf(spender),
		}
		k, v := rowcodec.EncodeTxInRow(row)
		if hasPrefix(k, prefix) {
			out = append(out, [2][]byte{k, v})
		}
	}
	return out
}

// sortRows puts generated rows in ascending key order and drops exact
// duplicates, so the view honors the same ordering contract as the
// persistent store. Rows sharing a key but carrying distinct values (txid
// prefix collisions) are all kept.
func sortRows(rows [][2][]byte) [][2][]byte {
	sort.Slice(rows, func(i, j int) bool {
		if c := bytes.Compare(rows[i][0], rows[j][0]); c != 0 {
			return c < 0
		}
		return bytes.Compare(rows[i][1], rows[j][1]) < 0
	})
	out := rows[:0]
	for i, kv := range rows {
		if i > 0 && bytes.Equal(kv[0], rows[i-1][0]) && bytes.Equal(kv[1], rows[i-1][1]) {
			continue
		}
		out = append(out, kv)
	}
	return out
}

func hasPrefix(k, prefix []byte) bool {
	if len(k) < len(prefix) {
		return false
	}
	for i := range prefix {
		if k[i] != prefix[i] {
			return false
		}
	}
	return true
}
