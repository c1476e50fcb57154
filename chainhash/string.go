package chainhash

import "encoding/hex"

// String renders h as reversed-byte-order hex, matching the convention
// Bitcoin tooling uses when printing txids and block hashes.
func (h Hash256) String() string {
	var rev [Size]byte
	for i, b := range h {
		rev[Size-1-i] = b
	}
	return hex.EncodeToString(rev[:])
}

func (s ScriptHash) String() string {
	return hex.EncodeToString(s[:])
}

func (p Prefix) String() string {
	return hex.EncodeToString(p[:])
}
