package dataref

import (
	"context"

	"github.com/bitcoin-sv/minerid-node/collaborators"
	"github.com/bitcoin-sv/minerid-node/errors"
	"github.com/bitcoin-sv/minerid-node/primitives"
)

// IngestBlock implements §4.H's block-ingestion rule: for the miner-info
// txn referenced by the coinbase (if any) and for each dataref txn listed
// in that document, fetch the raw transaction and its Merkle proof from
// the chain collaborator and store them. A missing Merkle proof fails
// only that one entry — it never aborts ingestion of the rest.
func (db *DB) IngestBlock(
	ctx context.Context,
	blockHash primitives.Hash256,
	minerInfoTxID *primitives.Hash256,
	dataRefTxIDs []primitives.Hash256,
	chain collaborators.ChainReader,
	proofs collaborators.MerkleProofProvider,
) []*errors.Error {
	guard := db.Access()
	defer guard.Release()

	var failures []*errors.Error

	ingestOne := func(family Family, txid primitives.Hash256) *errors.Error {
		raw, found, err := chain.Transaction(ctx, txid)
		if err != nil {
			return errors.NewProcessingError("failed to fetch transaction %s", txid, err)
		}
		if !found {
			return errors.NewNotFoundError("transaction %s not found", txid)
		}
		proof, found, err := proofs.MerkleProof(ctx, blockHash, txid)
		if err != nil {
			return errors.NewProcessingError("failed to fetch merkle proof for %s", txid, err)
		}
		if !found {
			return errors.NewNotFoundError("no merkle proof for transaction %s in block %s", txid, blockHash)
		}
		return guard.AddEntry(family, Entry{TxID: txid, Tx: raw, Block: blockHash, Proof: proof})
	}

	if minerInfoTxID != nil {
		if err := ingestOne(FamilyMinerInfoTxn, *minerInfoTxID); err != nil {
			failures = append(failures, err)
		}
	}
	for _, txid := range dataRefTxIDs {
		if err := ingestOne(FamilyDataRefTxn, txid); err != nil {
			failures = append(failures, err)
		}
	}

	return failures
}
