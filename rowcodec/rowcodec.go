// Package rowcodec encodes and decodes the key-value rows the indexing
// subsystem writes and the query core reads: TxRow, RawTxRow, TxOutRow,
// TxInRow, BlockMeta and BlockTxids. Every row type is a pure
// encode/decode/filter triple with no dependency on the store that holds it.
//
// Keys are lexicographically ordered byte strings; multi-field keys are
// fixed-width concatenations so a prefix scan recovers exactly the intended
// grouping. Heights are big-endian so key order matches height order;
// output indices are little-endian to match the transaction wire format.
//
// decode treats a malformed value as a programming error: the indexer is
// assumed to only ever write well-formed rows. Decode returns an error
// wrapping ErrCorruptRow rather than panicking, so a single bad row degrades
// one request instead of the process.
package rowcodec

import (
	"errors"
	"fmt"

	"rubin.dev/query/chainhash"
)

// ErrCorruptRow is wrapped by every decode error; callers that want to
// distinguish "not present" from "corrupt" can errors.Is against it.
var ErrCorruptRow = errors.New("rowcodec: corrupt row")

// Row tag bytes. Stable and pairwise disjoint, per the persisted-row
// compatibility contract with the indexer writer.
const (
	tagTxRow       = 'T'
	tagRawTxRow    = 'R'
	tagTxOutRow    = 'O'
	tagTxInRow     = 'I'
	tagBlockMeta   = 'M'
	tagBlockTxids  = 'X'
	prefixLen      = chainhash.PrefixLen
	hashLen        = chainhash.Size
	heightFieldLen = 4
	voutFieldLen   = 4
)

func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorruptRow, fmt.Sprintf(format, args...))
}
