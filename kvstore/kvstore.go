// Package kvstore adapts the row index the indexing subsystem writes to an
// ordered byte store queries can scan. The query core only ever reads; all
// writes happen out-of-process in whatever indexer produced the rows this
// package serves.
package kvstore

import "iter"

// ReadStore is the ordered byte store every component in this repo scans
// over: the confirmed row index (bbolt-backed, see Store) and the mempool's
// derived row index (in-memory, see the mempool package) both implement it.
type ReadStore interface {
	// Get returns the value for key, or ok=false if key is absent.
	Get(key []byte) ([]byte, bool, error)
	// Scan returns an iterator over every key/value pair whose key starts
	// with prefix, in ascending key order.
	Scan(prefix []byte) (iter.Seq2[[]byte, []byte], error)
}
