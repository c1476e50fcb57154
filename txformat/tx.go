// Package txformat implements the legacy Bitcoin transaction wire format:
// parsing, serialization and txid computation. It is the one piece of wire
// format this repo must own outright, since the query core both decodes
// RawTxRow values and re-serializes mempool transactions on demand.
package txformat

import (
	"fmt"

	"rubin.dev/query/chainhash"
)

const (
	maxTxInputs  = 1_000_000
	maxTxOutputs = 1_000_000
)

// opReturn is the script opcode that marks an output provably unspendable.
const opReturn = 0x6a

// OutPoint identifies a transaction output being spent: the funding
// transaction's hash and the output index within it.
type OutPoint struct {
	Hash  chainhash.Hash256
	Index uint32
}

// TxIn is one transaction input.
type TxIn struct {
	PrevOut         OutPoint
	SignatureScript []byte
	Sequence        uint32
}

// TxOut is one transaction output.
type TxOut struct {
	Value    int64
	PkScript []byte
}

// IsProvablyUnspendable reports whether this output's script can never be
// spent, e.g. because it starts with OP_RETURN.
func (o TxOut) IsProvablyUnspendable() bool {
	return len(o.PkScript) > 0 && o.PkScript[0] == opReturn
}

// Transaction is a parsed legacy (non-segwit) Bitcoin transaction.
type Transaction struct {
	Version  int32
	Inputs   []TxIn
	Outputs  []TxOut
	LockTime uint32
}

// Txid computes the transaction id: SHA256d of the serialized transaction.
func (tx *Transaction) Txid() chainhash.Hash256 {
	return chainhash.SHA256d(tx.Serialize())
}

// Serialize encodes tx in wire format.
func (tx *Transaction) Serialize() []byte {
	out := make([]byte, 0, 64+32*len(tx.Inputs)+16*len(tx.Outputs))
	out = AppendU32le(out, uint32(tx.Version))
	out = AppendCompactSize(out, uint64(len(tx.Inputs)))
	for _, in := range tx.Inputs {
		out = append(out, in.PrevOut.Hash[:]...)
		out = AppendU32le(out, in.PrevOut.Index)
		out = AppendCompactSize(out, uint64(len(in.SignatureScript)))
		out = append(out, in.SignatureScript...)
		out = AppendU32le(out, in.Sequence)
	}
	out = AppendCompactSize(out, uint64(len(tx.Outputs)))
	for _, o := range tx.Outputs {
		out = AppendU64le(out, uint64(o.Value))
		out = AppendCompactSize(out, uint64(len(o.PkScript)))
		out = append(out, o.PkScript...)
	}
	out = AppendU32le(out, tx.LockTime)
	return out
}

// Deserialize parses a legacy transaction from its wire bytes.
func Deserialize(b []byte) (*Transaction, error) {
	off := 0
	version, err := readU32le(b, &off)
	if err != nil {
		return nil, fmt.Errorf("txformat: version: %w", err)
	}
	inCount, err := readCompactSize(b, &off)
	if err != nil {
		return nil, fmt.Errorf("txformat: input count: %w", err)
	}
	if inCount > maxTxInputs {
		return nil, fmt.Errorf("txformat: input count overflow")
	}
	inputs := make([]TxIn, 0, inCount)
	for i := uint64(0); i < inCount; i++ {
		hash, err := readHash(b, &off)
		if err != nil {
			return nil, fmt.Errorf("txformat: input %d prevout hash: %w", i, err)
		}
		index, err := readU32le(b, &off)
		if err != nil {
			return nil, fmt.Errorf("txformat: input %d prevout index: %w", i, err)
		}
		scriptLen, err := readCompactSize(b, &off)
		if err != nil {
			return nil, fmt.Errorf("txformat: input %d script length: %w", i, err)
		}
		script, err := readBytes(b, &off, int(scriptLen))
		if err != nil {
			return nil, fmt.Errorf("txformat: input %d script: %w", i, err)
		}
		seq, err := readU32le(b, &off)
		if err != nil {
			return nil, fmt.Errorf("txformat: input %d sequence: %w", i, err)
		}
		inputs = append(inputs, TxIn{
			PrevOut:         OutPoint{Hash: chainhash.Hash256(hash), Index: index},
			SignatureScript: append([]byte(nil), script...),
			Sequence:        seq,
		})
	}

	outCount, err := readCompactSize(b, &off)
	if err != nil {
		return nil, fmt.Errorf("txformat: output count: %w", err)
	}
	if outCount > maxTxOutputs {
		return nil, fmt.Errorf("txformat: output count overflow")
	}
	outputs := make([]TxOut, 0, outCount)
	for i := uint64(0); i < outCount; i++ {
		value, err := readI64le(b, &off)
		if err != nil {
			return nil, fmt.Errorf("txformat: output %d value: %w", i, err)
		}
		scriptLen, err := readCompactSize(b, &off)
		if err != nil {
			return nil, fmt.Errorf("txformat: output %d script length: %w", i, err)
		}
		script, err := readBytes(b, &off, int(scriptLen))
		if err != nil {
			return nil, fmt.Errorf("txformat: output %d script: %w", i, err)
		}
		outputs = append(outputs, TxOut{Value: value, PkScript: append([]byte(nil), script...)})
	}

	lockTime, err := readU32le(b, &off)
	if err != nil {
		return nil, fmt.Errorf("txformat: locktime: %w", err)
	}
	if off != len(b) {
		return nil, fmt.Errorf("txformat: %d trailing bytes", len(b)-off)
	}

	return &Transaction{
		Version:  int32(version),
		Inputs:   inputs,
		Outputs:  outputs,
		LockTime: lockTime,
	}, nil
}
