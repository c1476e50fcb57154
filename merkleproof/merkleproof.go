// Package merkleproof builds and verifies Bitcoin merkle proofs against the
// canonical duplicate-last-leaf rule.
package merkleproof

import (
	"fmt"

	"rubin.dev/query/chainhash"
)

// Proof is the sibling path and original position needed to fold a leaf
// hash up to a merkle root.
type Proof struct {
	Path          []chainhash.Hash256
	OriginalIndex int
}

// Build returns the merkle proof for txHash within the ordered txid list of
// a block.
func Build(txids []chainhash.Hash256, txHash chainhash.Hash256) (Proof, error) {
	pos := indexOf(txids, txHash)
	if pos < 0 {
		return Proof{}, fmt.Errorf("merkleproof: txid not in block")
	}

	level := append([]chainhash.Hash256(nil), txids...)
	index := pos
	var path []chainhash.Hash256

	for len(level) > 1 {
		if len(level)%2 == 1 {
			level = append(level, level[len(level)-1])
		}
		sibling := index ^ 1
		path = append(path, level[sibling])

		next := make([]chainhash.Hash256, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			next[i/2] = pairHash(level[i], level[i+1])
		}
		level = next
		index /= 2
	}

	return Proof{Path: path, OriginalIndex: pos}, nil
}

// Verify folds proof against leaf using the same pairing order Build used,
// and reports whether the result equals root.
func Verify(leaf chainhash.Hash256, proof Proof, root chainhash.Hash256) bool {
	current := leaf
	index := proof.OriginalIndex
	for _, sibling := range proof.Path {
		if index%2 == 0 {
			current = pairHash(current, sibling)
		} else {
			current = pairHash(sibling, current)
		}
		index /= 2
	}
	return current == root
}

func pairHash(left, right chainhash.Hash256) chainhash.Hash256 {
	buf := make([]byte, 0, chainhash.Size*2)
	buf = append(buf, left[:]...)
	buf = append(buf, right[:]...)
	return chainhash.SHA256d(buf)
}

func indexOf(txids []chainhash.Hash256, target chainhash.Hash256) int {
	for i, h := range txids {
		if h == target {
			return i
		}
	}
	return -1
}
