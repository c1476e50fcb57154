package txresolver

import (
	"iter"
	"testing"

	"rubin.dev/query/chainhash"
	"rubin.dev/query/headerindex"
	"rubin.dev/query/mempool"
	"rubin.dev/query/rowcodec"
	"rubin.dev/query/txformat"
)

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
	return func(yield func([]byte, []byte) bool) {
		for k, v := range m.rows {
			if len(k) >= len(prefix) && k[:len(prefix)] == string(prefix) {
				if !yield([]byte(k), v) {
					return
				}
			}
		}
	}, nil
}

func headersUpTo(height uint32, hashAtHeight chainhash.Hash256) []headerindex.Header {
	out := make([]headerindex.Header, height+1)
	for i := range out {
		out[i] = headerindex.Header{Hash: chainhash.Hash256{byte(i + 1)}, Height: uint32(i)}
	}
	out[height].Hash = hashAtHeight
	return out
}

func sampleTx(t *testing.T) *txformat.Transaction {
	t.Helper()
	return &txformat.Transaction{
		Version: 1,
		Inputs: []txformat.TxIn{
			{PrevOut: txformat.OutPoint{Hash: chainhash.Hash256{}, Index: 0}, SignatureScript: []byte{0x01}, Sequence: 1},
		},
		Outputs:  []txformat.TxOut{{Value: 500, PkScript: []byte{0x51}}},
		LockTime: 0,
	}
}

func TestTxGetConfirmed(t *testing.T) {
	tx := sampleTx(t)
	txid := tx.Txid()
	raw := tx.Serialize()

	confirmed := newMemStore()
	key, value := rowcodec.EncodeRawTxRow(rowcodec.RawTxRow{Txid: txid, RawTx: raw})
	confirmed.put(key, value)

	r := &Resolver{Confirmed: confirmed, Mempool: mempool.New(), Headers: headerindex.New()}
	got, err := r.TxGet(txid)
	if err != nil {
		t.Fatalf("TxGet: %v", err)
	}
	if got == nil || got.Txid() != txid {
		t.Fatalf("TxGet mismatch: %+v", got)
	}
}

func TestTxGetMissing(t *testing.T) {
	r := &Resolver{Confirmed: newMemStore(), Mempool: mempool.New(), Headers: headerindex.New()}
	got, err := r.TxGet(chainhash.Hash256{0xaa})
	if err != nil {
		t.Fatalf("TxGet: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for unknown txid, got %+v", got)
	}
}

func TestGetTxStatusUnconfirmed(t *testing.T) {
	r := &Resolver{Confirmed: newMemStore(), Mempool: mempool.New(), Headers: headerindex.New()}
	status, err := r.GetTxStatus(chainhash.Hash256{0xbb})
	if err != nil {
		t.Fatalf("GetTxStatus: %v", err)
	}
	if status.Confirmed {
		t.Fatalf("expected unconfirmed, got %+v", status)
	}
}

func TestGetTxStatusReorgEvicted(t *testing.T) {
	tx := sampleTx(t)
	txid := tx.Txid()

	confirmed := newMemStore()
	blockHashAtIndexTime := chainhash.Hash256{0x01}
	k, v := rowcodec.EncodeTxRow(rowcodec.TxRow{TxidPrefix: chainhash.PrefixOf(txid), Height: 10, BlockHash: blockHashAtIndexTime, Txid: txid})
	confirmed.put(k, v)

	headers := headerindex.New()
	headers.Reset(headersUpTo(10, chainhash.Hash256{0x02})) // different hash at height 10: reorg

	r := &Resolver{Confirmed: confirmed, Mempool: mempool.New(), Headers: headers}
	status, err := r.GetTxStatus(txid)
	if err != nil {
		t.Fatalf("GetTxStatus: %v", err)
	}
	if status.Confirmed {
		t.Fatalf("expected reorg-evicted tx to report unconfirmed, got %+v", status)
	}
}

func TestGetTxStatusConfirmed(t *testing.T) {
	tx := sampleTx(t)
	txid := tx.Txid()

	confirmed := newMemStore()
	blockHash := chainhash.Hash256{0x01}
	k, v := rowcodec.EncodeTxRow(rowcodec.TxRow{TxidPrefix: chainhash.PrefixOf(txid), Height: 10, BlockHash: blockHash, Txid: txid})
	confirmed.put(k, v)

	headers := headerindex.New()
	headers.Reset(headersUpTo(10, blockHash))

	r := &Resolver{Confirmed: confirmed, Mempool: mempool.New(), Headers: headers}
	status, err := r.GetTxStatus(txid)
	if err != nil {
		t.Fatalf("GetTxStatus: %v", err)
	}
	if !status.Confirmed || status.Height != 10 || status.BlockHash != blockHash {
		t.Fatalf("unexpected status: %+v", status)
	}
}
