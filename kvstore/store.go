package kvstore

import (
	"bytes"
	"fmt"
	"iter"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketRows = []byte("rows")

// Store is the bbolt-backed ReadStore over the row index an external
// indexing process has already written. It always opens read-only: this
// process never writes a row itself.
type Store struct {
	db   *bolt.DB
	path string
}

// Open opens the bbolt database at path in read-only mode.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("kvstore: path required")
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{
		Timeout:  1 * time.Second,
		ReadOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("kvstore: open %s: %w", path, err)
	}
	return &Store{db: db, path: path}, nil
}

// Close releases the underlying bbolt file lock.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get implements ReadStore.
func (s *Store) Get(key []byte) ([]byte, bool, error) {
	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRows)
		if b == nil {
			return nil
		}
		v := b.Get(key)
		if v == nil {
			return nil
		}
		out = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if out == nil {
		return nil, false, nil
	}
	return out, true, nil
}

// Scan implements ReadStore. The returned iterator is a snapshot taken
// inside a single bbolt read transaction; the transaction stays open for the
// iterator's lifetime, so callers must fully drain or break out of it
// promptly rather than holding it across unrelated work.
func (s *Store) Scan(prefix []byte) (iter.Seq2[[]byte, []byte], error) {
	tx, err := s.db.Begin(false)
	if err != nil {
		return nil, fmt.Errorf("kvstore: begin scan: %w", err)
	}
	return func(yield func([]byte, []byte) bool) {
		defer tx.Rollback()
		b := tx.Bucket(bucketRows)
		if b == nil {
			return
		}
		c := b.Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			if !yield(append([]byte(nil), k...), append([]byte(nil), v...)) {
				return
			}
		}
	}, nil
}
