// Package chainhash defines the hash and short-prefix types shared by every
// row codec and component in the query core.
package chainhash

import "crypto/sha256"

// PrefixLen is the number of leading bytes of a Hash256 carried in secondary
// index keys (TxOutRow, TxInRow). Must match whatever the indexer writes;
// kept as a single named constant per the persisted-row compatibility contract.
const PrefixLen = 8

// Size is the length in bytes of a Hash256 or ScriptHash digest.
const Size = 32

// Hash256 is a double-SHA256 digest, stored in network byte order.
type Hash256 [Size]byte

// ScriptHash is a single-SHA256 digest of a script's raw bytes.
type ScriptHash [Size]byte

// Prefix is the first PrefixLen bytes of a Hash256, used for compact
// secondary keys at the cost of rare collisions.
type Prefix [PrefixLen]byte

// PrefixOf returns the HashPrefix of h.
func PrefixOf(h Hash256) Prefix {
	var p Prefix
	copy(p[:], h[:PrefixLen])
	return p
}

// SHA256d computes the double-SHA256 digest used for txids, block hashes and
// merkle nodes.
func SHA256d(b []byte) Hash256 {
	first := sha256.Sum256(b)
	second := sha256.Sum256(first[:])
	return Hash256(second)
}

// ScriptHashOf computes the single-SHA256 script hash used as the
// address-like identifier for a script's raw bytes.
func ScriptHashOf(script []byte) ScriptHash {
	return ScriptHash(sha256.Sum256(script))
}

// IsZero reports whether h is the all-zero hash.
func (h Hash256) IsZero() bool {
	return h == Hash256{}
}
