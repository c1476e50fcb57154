package status

import (
	"iter"
	"sort"
	"testing"

	"rubin.dev/query/chainhash"
	"rubin.dev/query/queryerr"
	"rubin.dev/query/rowcodec"
	"rubin.dev/query/txformat"
)

// memStore is a trivial in-memory ReadStore used to drive the status engine
// in tests without a real bbolt file.
type memStore struct {
	rows map[string][]byte
}

func newMemStore() *memStore { return &memStore{rows: make(map[string][]byte)} }

func (m *memStore) put(key, value []byte) { m.rows[string(key)] = value }

func (m *memStore) Get(key []byte) ([]byte, bool, error) {
	v, ok := m.rows[string(key)]
	return v, ok, nil
}

func (m *memStore) Scan(prefix []byte) (iter.Seq2[[]byte, []byte], error) {
	var keys []string
	for k := range m.rows {
		if len(k) >= len(prefix) && k[:len(prefix)] == string(prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return func(yield func([]byte, []byte) bool) {
		for _, k := range keys {
			if !yield([]byte(k), m.rows[k]) {
				return
			}
		}
	}, nil
}

// memTxs resolves txids from an in-memory map, standing in for txresolver.
type memTxs struct {
	byTxid map[chainhash.Hash256]*txformat.Transaction
}

func (m *memTxs) TxGet(txid chainhash.Hash256) (*txformat.Transaction, error) {
	return m.byTxid[txid], nil
}

func hashFromByte(b byte) chainhash.Hash256 {
	var h chainhash.Hash256
	h[0] = b
	return h
}

func buildFundingTx(t *testing.T, script []byte) *txformat.Transaction {
	t.Helper()
	return &txformat.Transaction{
		Version: 1,
		Inputs: []txformat.TxIn{
			{PrevOut: txformat.OutPoint{Hash: hashFromByte(0xee), Index: 0}, SignatureScript: []byte{0x01}, Sequence: 0xffffffff},
		},
		Outputs:  []txformat.TxOut{{Value: 1000, PkScript: script}},
		LockTime: 0,
	}
}

func index(confirmed *memStore, txA *txformat.Transaction, height uint32, blockHash chainhash.Hash256) {
	txid := txA.Txid()
	sh := chainhash.ScriptHashOf(txA.Outputs[0].PkScript)

	outKey, outVal := rowcodec.EncodeTxOutRow(rowcodec.TxOutRow{ScriptHash: sh, TxidPrefix: chainhash.PrefixOf(txid)})
	confirmed.put(outKey, outVal)

	rowKey, rowVal := rowcodec.EncodeTxRow(rowcodec.TxRow{TxidPrefix: chainhash.PrefixOf(txid), Height: height, BlockHash: blockHash, Txid: txid})
	confirmed.put(rowKey, rowVal)
}

// TestStatusS1SimpleFunding is scenario S1: one confirmed funding tx, no
// spenders.
func TestStatusS1SimpleFunding(t *testing.T) {
	script := []byte{0x76, 0xa9, 0x14}
	sh := chainhash.ScriptHashOf(script)
	txA := buildFundingTx(t, script)

	confirmed := newMemStore()
	index(confirmed, txA, 100, hashFromByte(0x01))

	eng := &Engine{
		Confirmed: confirmed,
		Mempool:   newMemStore(),
		Txs:       &memTxs{byTxid: map[chainhash.Hash256]*txformat.Transaction{txA.Txid(): txA}},
	}

	st, err := eng.Status(sh)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if len(st.Confirmed.Funding) != 1 || len(st.Confirmed.Spending) != 0 {
		t.Fatalf("unexpected status: %+v", st)
	}
	if st.ConfirmedBalance(nil) != 1000 {
		t.Fatalf("ConfirmedBalance = %d, want 1000", st.ConfirmedBalance(nil))
	}
	if len(st.Unspent(nil)) != 1 {
		t.Fatalf("Unspent: expected 1 entry")
	}
}

// TestStatusS2MempoolSpendsConfirmed is scenario S2/S3: txA funds the
// script hash confirmed; txC, in the mempool, spends txA:0.
func TestStatusS2MempoolSpendsConfirmed(t *testing.T) {
	script := []byte{0x76, 0xa9, 0x14}
	sh := chainhash.ScriptHashOf(script)
	txA := buildFundingTx(t, script)
	txAid := txA.Txid()

	confirmed := newMemStore()
	index(confirmed, txA, 100, hashFromByte(0x01))

	txC := &txformat.Transaction{
		Version: 1,
		Inputs: []txformat.TxIn{
			{PrevOut: txformat.OutPoint{Hash: txAid, Index: 0}, SignatureScript: []byte{0x02}, Sequence: 0xffffffff},
		},
		Outputs:  []txformat.TxOut{{Value: 900, PkScript: []byte{0x51}}},
		LockTime: 0,
	}
	txCid := txC.Txid()

	mp := newMemStore()
	inKey, inVal := rowcodec.EncodeTxInRow(rowcodec.TxInRow{PrevTxid: txAid, PrevVout: 0, TxidPrefix: chainhash.PrefixOf(txCid)})
	mp.put(inKey, inVal)
	rowKey, rowVal := rowcodec.EncodeTxRow(rowcodec.TxRow{TxidPrefix: chainhash.PrefixOf(txCid), Height: HeightMempool, Txid: txCid})
	mp.put(rowKey, rowVal)

	eng := &Engine{
		Confirmed: confirmed,
		Mempool:   mp,
		Txs: &memTxs{byTxid: map[chainhash.Hash256]*txformat.Transaction{
			txAid: txA,
			txCid: txC,
		}},
	}

	st, err := eng.Status(sh)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if len(st.Confirmed.Funding) != 1 {
		t.Fatalf("expected 1 confirmed funding, got %d", len(st.Confirmed.Funding))
	}
	if len(st.Mempool.Spending) != 1 {
		t.Fatalf("expected 1 mempool spending, got %d: %+v", len(st.Mempool.Spending), st.Mempool.Spending)
	}
	if got := st.MempoolBalance(nil); got != -1000 {
		t.Fatalf("MempoolBalance = %d, want -1000", got)
	}
	if len(st.Unspent(nil)) != 0 {
		t.Fatalf("Unspent should be empty once the confirmed output is mempool-spent, got %d", len(st.Unspent(nil)))
	}
}

func TestStatusTooManyTxs(t *testing.T) {
	script := []byte{0x76, 0xa9, 0x14}
	sh := chainhash.ScriptHashOf(script)

	confirmed := newMemStore()
	txs := map[chainhash.Hash256]*txformat.Transaction{}
	for i := 0; i < FundingTxnLimit+5; i++ {
		tx := &txformat.Transaction{
			Version: 1,
			Inputs: []txformat.TxIn{
				{PrevOut: txformat.OutPoint{Hash: hashFromByte(byte(i)), Index: 0}, SignatureScript: []byte{byte(i)}, Sequence: 1},
			},
			Outputs: []txformat.TxOut{{Value: 1, PkScript: script}},
		}
		index(confirmed, tx, uint32(i), hashFromByte(0x01))
		txs[tx.Txid()] = tx
	}

	eng := &Engine{Confirmed: confirmed, Mempool: newMemStore(), Txs: &memTxs{byTxid: txs}}
	_, err := eng.Status(sh)
	if !queryerr.Is(err, queryerr.TooManyTxs) {
		t.Fatalf("expected TooManyTxs, got %v", err)
	}
}

// TestStatusTooManyMempoolTxs floods the mempool view with more funding
// rows than the limit allows: the bound holds for mempool-sourced funding
// just as it does for confirmed, since unconfirmed dust is the cheaper
// flooding vector.
func TestStatusTooManyMempoolTxs(t *testing.T) {
	script := []byte{0x76, 0xa9, 0x14}
	sh := chainhash.ScriptHashOf(script)

	mp := newMemStore()
	txs := map[chainhash.Hash256]*txformat.Transaction{}
	for i := 0; i < FundingTxnLimit+5; i++ {
		tx := &txformat.Transaction{
			Version: 1,
			Inputs: []txformat.TxIn{
				{PrevOut: txformat.OutPoint{Hash: hashFromByte(byte(i)), Index: uint32(i)}, SignatureScript: []byte{byte(i), byte(i >> 8)}, Sequence: 1},
			},
			Outputs: []txformat.TxOut{{Value: 1, PkScript: script}},
		}
		index(mp, tx, HeightMempool, chainhash.Hash256{})
		txs[tx.Txid()] = tx
	}

	eng := &Engine{Confirmed: newMemStore(), Mempool: mp, Txs: &memTxs{byTxid: txs}}
	_, err := eng.Status(sh)
	if !queryerr.Is(err, queryerr.TooManyTxs) {
		t.Fatalf("expected TooManyTxs for mempool dust flood, got %v", err)
	}
}

// TestStatusPrefixCollisionFiltersAlien seeds two TxRow candidates under
// one txid prefix: one funding the queried script hash, one funding a
// different script. Only the true funder may appear in the result.
func TestStatusPrefixCollisionFiltersAlien(t *testing.T) {
	script := []byte{0x76, 0xa9, 0x14}
	alienScript := []byte{0x00, 0x14}
	sh := chainhash.ScriptHashOf(script)

	txP1 := buildFundingTx(t, script)
	txP2 := buildFundingTx(t, alienScript)

	// fabricate colliding txids: identical in the prefix window, distinct
	// beyond it.
	txidP1 := hashFromByte(0x40)
	txidP2 := txidP1
	txidP2[31] ^= 0x01
	prefix := chainhash.PrefixOf(txidP1)

	confirmed := newMemStore()
	outKey, outVal := rowcodec.EncodeTxOutRow(rowcodec.TxOutRow{ScriptHash: sh, TxidPrefix: prefix})
	confirmed.put(outKey, outVal)
	k1, v1 := rowcodec.EncodeTxRow(rowcodec.TxRow{TxidPrefix: prefix, Height: 100, BlockHash: hashFromByte(0x01), Txid: txidP1})
	confirmed.put(k1, v1)
	k2, v2 := rowcodec.EncodeTxRow(rowcodec.TxRow{TxidPrefix: prefix, Height: 101, BlockHash: hashFromByte(0x02), Txid: txidP2})
	confirmed.put(k2, v2)

	eng := &Engine{
		Confirmed: confirmed,
		Mempool:   newMemStore(),
		Txs: &memTxs{byTxid: map[chainhash.Hash256]*txformat.Transaction{
			txidP1: txP1,
			txidP2: txP2,
		}},
	}

	st, err := eng.Status(sh)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if len(st.Confirmed.Funding) != 1 {
		t.Fatalf("expected exactly 1 funding output after collision filtering, got %d", len(st.Confirmed.Funding))
	}
	if st.Confirmed.Funding[0].Txid != txidP1 {
		t.Fatalf("alien tx survived collision filtering: %+v", st.Confirmed.Funding[0])
	}
}

func TestStatusExactlyAtFundingLimit(t *testing.T) {
	script := []byte{0x76, 0xa9, 0x14}
	sh := chainhash.ScriptHashOf(script)

	confirmed := newMemStore()
	txs := map[chainhash.Hash256]*txformat.Transaction{}
	for i := 0; i < FundingTxnLimit; i++ {
		tx := &txformat.Transaction{
			Version: 1,
			Inputs: []txformat.TxIn{
				{PrevOut: txformat.OutPoint{Hash: hashFromByte(byte(i)), Index: uint32(i)}, SignatureScript: []byte{byte(i), byte(i >> 8)}, Sequence: 1},
			},
			Outputs: []txformat.TxOut{{Value: 1, PkScript: script}},
		}
		index(confirmed, tx, uint32(i), hashFromByte(0x01))
		txs[tx.Txid()] = tx
	}

	eng := &Engine{Confirmed: confirmed, Mempool: newMemStore(), Txs: &memTxs{byTxid: txs}}
	st, err := eng.Status(sh)
	if err != nil {
		t.Fatalf("Status at exactly the funding limit should succeed: %v", err)
	}
	if len(st.Confirmed.Funding) != FundingTxnLimit {
		t.Fatalf("expected %d funding outputs, got %d", FundingTxnLimit, len(st.Confirmed.Funding))
	}
}

func TestFindSpendingForFundingTxSkipsOpReturn(t *testing.T) {
	tx := &txformat.Transaction{
		Version: 1,
		Inputs: []txformat.TxIn{
			{PrevOut: txformat.OutPoint{Hash: hashFromByte(0xee), Index: 0}, SignatureScript: []byte{0x01}, Sequence: 1},
		},
		Outputs: []txformat.TxOut{
			{Value: 1000, PkScript: []byte{0x76, 0xa9, 0x14}},
			{Value: 0, PkScript: []byte{0x6a, 0x02, 0xbe, 0xef}},
		},
	}
	eng := &Engine{Confirmed: newMemStore(), Mempool: newMemStore(), Txs: &memTxs{byTxid: nil}}

	spenders, err := eng.FindSpendingForFundingTx(tx.Txid(), tx)
	if err != nil {
		t.Fatalf("FindSpendingForFundingTx: %v", err)
	}
	if len(spenders) != len(tx.Outputs) {
		t.Fatalf("result length %d != output count %d", len(spenders), len(tx.Outputs))
	}
	if spenders[0] != nil {
		t.Fatalf("unspent output should report nil spender")
	}
	if spenders[1] != nil {
		t.Fatalf("OP_RETURN output should report nil without consulting the stores")
	}
}

func TestStatusHistoryOrdering(t *testing.T) {
	script := []byte{0x76, 0xa9, 0x14}
	sh := chainhash.ScriptHashOf(script)
	txA := buildFundingTx(t, script)

	txB := buildFundingTx(t, script)
	txB.Inputs[0].SignatureScript = []byte{0x02}

	confirmed := newMemStore()
	index(confirmed, txA, 100, hashFromByte(0x01))
	mp := newMemStore()
	index(mp, txB, HeightMempool, chainhash.Hash256{})

	eng := &Engine{
		Confirmed: confirmed,
		Mempool:   mp,
		Txs: &memTxs{byTxid: map[chainhash.Hash256]*txformat.Transaction{
			txA.Txid(): txA,
			txB.Txid(): txB,
		}},
	}
	st, err := eng.Status(sh)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	txs := st.HistoryTxs()
	if len(txs) != 2 || txs[0].Height != HeightMempool || txs[1].Height != 100 {
		t.Fatalf("unexpected HistoryTxs: %+v", txs)
	}
}
