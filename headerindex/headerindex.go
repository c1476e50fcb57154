// Package headerindex is the query core's view of the best-chain header
// sequence. It never validates or extends the chain itself (that is the
// indexing subsystem's job); it only exposes the already-maintained
// sequence for height/hash lookups and reorg-safety checks.
package headerindex

import (
	"sync"

	"golang.org/x/crypto/sha3"

	"rubin.dev/query/chainhash"
)

// Header is one entry in the best-chain header sequence.
type Header struct {
	Hash      chainhash.Hash256
	Height    uint32
	RawHeader []byte
}

// Summary is a compact fingerprint of a header, used when logging or
// comparing in-memory Header values while tracing reorg behavior. It is
// not a consensus hash; SHA256d remains the only authoritative block hash.
type Summary [32]byte

// Summarize derives a Summary from a header's identity fields.
func Summarize(h Header) Summary {
	buf := make([]byte, 0, chainhash.Size+4)
	buf = append(buf, h.Hash[:]...)
	buf = append(buf, byte(h.Height), byte(h.Height>>8), byte(h.Height>>16), byte(h.Height>>24))
	return Summary(sha3.Sum256(buf))
}

// BlockStatus answers "is this hash part of the best chain right now?".
type BlockStatus struct {
	InBestChain  bool
	Height       *uint32
	NextBestHash *chainhash.Hash256
}

// Index is the in-memory header chain view: a sequence of headers by
// height, plus a hash->height map for reverse lookup. It is maintained
// externally (the indexing subsystem appends/truncates as it follows the
// daemon's chain tip); this package only reads.
type Index struct {
	mu        sync.RWMutex
	byHeight  []Header // byHeight[i] is the header at height i
	hashToHgt map[chainhash.Hash256]uint32
}

// New returns an empty index.
func New() *Index {
	return &Index{hashToHgt: make(map[chainhash.Hash256]uint32)}
}

// Reset replaces the entire header sequence. Called by the collaborator
// that maintains this index as the chain advances or reorgs; the query core
// itself never calls this.
func (ix *Index) Reset(headers []Header) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.byHeight = append([]Header(nil), headers...)
	ix.hashToHgt = make(map[chainhash.Hash256]uint32, len(headers))
	for _, h := range headers {
		ix.hashToHgt[h.Hash] = h.Height
	}
}

// GetHeader returns the header at height, if the sequence reaches that far.
func (ix *Index) GetHeader(height uint32) (Header, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if int(height) >= len(ix.byHeight) {
		return Header{}, false
	}
	return ix.byHeight[height], true
}

// GetHeaderByHash resolves hash via the hash->height map, then re-reads by
// height and returns false if that height no longer holds this hash, the
// index's intrinsic reorg-safety check. A hash that was once on the best
// chain but has since been superseded silently disappears here rather than
// returning stale data.
func (ix *Index) GetHeaderByHash(hash chainhash.Hash256) (Header, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	height, ok := ix.hashToHgt[hash]
	if !ok {
		return Header{}, false
	}
	if int(height) >= len(ix.byHeight) {
		return Header{}, false
	}
	h := ix.byHeight[height]
	if h.Hash != hash {
		return Header{}, false
	}
	return h, true
}

// BestHeader returns the highest header in the sequence.
func (ix *Index) BestHeader() (Header, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if len(ix.byHeight) == 0 {
		return Header{}, false
	}
	return ix.byHeight[len(ix.byHeight)-1], true
}

// BestHeight returns the height of the best header.
func (ix *Index) BestHeight() (uint32, bool) {
	h, ok := ix.BestHeader()
	if !ok {
		return 0, false
	}
	return h.Height, true
}

// BestHeaderHash returns the hash of the best header.
func (ix *Index) BestHeaderHash() (chainhash.Hash256, bool) {
	h, ok := ix.BestHeader()
	if !ok {
		return chainhash.Hash256{}, false
	}
	return h.Hash, true
}

// GetBlockStatus reports whether hash is currently part of the best chain.
func (ix *Index) GetBlockStatus(hash chainhash.Hash256) BlockStatus {
	h, ok := ix.GetHeaderByHash(hash)
	if !ok {
		return BlockStatus{InBestChain: false}
	}
	status := BlockStatus{InBestChain: true}
	height := h.Height
	status.Height = &height
	if next, ok := ix.GetHeader(height + 1); ok {
		nh := next.Hash
		status.NextBestHash = &nh
	}
	return status
}
