// Package collaborators declares the narrow interfaces this module
// consumes from its host node: chain/block access, Merkle-proof
// production, and UTXO lookup. Grounded on spec.md §1's "Deliberately
// excluded" list, which names these as external responsibilities the
// core only calls into — never implements.
package collaborators

import (
	"context"

	"github.com/bitcoin-sv/minerid-node/primitives"
)

// ChainReader is the block-index/mempool collaborator: it answers block
// heights and parent links by block hash, the current tip height and the
// block hash at a height, and returns the raw transaction bytes for any
// txid the core needs to inspect (the coinbase, a referenced miner-info
// txn, a dataref txn).
type ChainReader interface {
	BlockHeight(ctx context.Context, blockHash primitives.Hash256) (primitives.Height, bool, error)
	PreviousBlockHash(ctx context.Context, blockHash primitives.Hash256) (primitives.Hash256, bool, error)
	Transaction(ctx context.Context, txid primitives.Hash256) ([]byte, bool, error)

	// TipHeight returns the current best-chain height, consumed by
	// update_to_tip's max(0, tip_height-N)..tip scan (spec.md §4.I).
	TipHeight(ctx context.Context) (primitives.Height, error)

	// BlockHash returns the best-chain block hash at height, or false if
	// height is beyond the current tip or before genesis.
	BlockHash(ctx context.Context, height primitives.Height) (primitives.Hash256, bool, error)
}

// MerkleProofProvider produces a Merkle proof binding a transaction to a
// block, consumed when ingesting miner-info/dataref transactions into the
// DataRef database (spec.md §4.H).
type MerkleProofProvider interface {
	MerkleProof(ctx context.Context, blockHash, txid primitives.Hash256) ([]byte, bool, error)
}

// UTXOLookup resolves an outpoint to its spending status, used by the RPC
// surface when assembling a miner-info or dataref transaction that must
// spend an existing funding output (spec.md §6.6).
type UTXOLookup interface {
	IsUnspent(ctx context.Context, outpoint primitives.Outpoint) (bool, error)
}
