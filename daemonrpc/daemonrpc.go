// Package daemonrpc is the thin client surface the query core uses to reach
// the full node. Block downloading, chain tracking and the indexing
// subsystem itself all live in other processes; this package exposes only
// the handful of calls the core actually makes: fetching a transaction,
// fetching a block, and broadcasting.
package daemonrpc

import (
	"context"
	"encoding/json"

	"rubin.dev/query/chainhash"
	"rubin.dev/query/txformat"
)

// Block is the subset of a full block body the core needs when a caller
// asks for raw block bytes directly (block bodies are not persisted; every
// request is served live from the daemon).
type Block struct {
	Hash   chainhash.Hash256
	Height uint32
	Raw    []byte
}

// Client is the node daemon surface this repo consumes. Every call is
// independent and may block on network I/O; callers must never invoke these
// while holding the mempool lock.
type Client interface {
	// GetTransaction fetches and deserializes a transaction. blockHash, if
	// non-nil, is a locating hint for daemons that require it (pruned
	// nodes, txindex-less nodes); it is not itself trusted for confirmation
	// status.
	GetTransaction(ctx context.Context, txid chainhash.Hash256, blockHash *chainhash.Hash256) (*txformat.Transaction, error)

	// GetTransactionVerbose returns the daemon's verbose JSON view of a
	// transaction, including confirmation count.
	GetTransactionVerbose(ctx context.Context, txid chainhash.Hash256, blockHash *chainhash.Hash256) (json.RawMessage, error)

	// GetBlock fetches a full block body by hash.
	GetBlock(ctx context.Context, hash chainhash.Hash256) (*Block, error)

	// Broadcast submits a raw transaction and returns the resulting txid.
	Broadcast(ctx context.Context, raw []byte) (chainhash.Hash256, error)

	// RawMempool returns the raw bytes of every transaction currently in
	// the daemon's mempool, satisfying mempool.Daemon.
	RawMempool(ctx context.Context) ([][]byte, error)
}
