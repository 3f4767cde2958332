package dataref

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitcoin-sv/minerid-node/primitives"
)

type fakeChainReader struct {
	txs map[primitives.Hash256][]byte
}

func (f *fakeChainReader) BlockHeight(ctx context.Context, blockHash primitives.Hash256) (primitives.Height, bool, error) {
	return 0, false, nil
}

func (f *fakeChainReader) PreviousBlockHash(ctx context.Context, blockHash primitives.Hash256) (primitives.Hash256, bool, error) {
	return primitives.Hash256{}, false, nil
}

func (f *fakeChainReader) Transaction(ctx context.Context, id primitives.Hash256) ([]byte, bool, error) {
	tx, ok := f.txs[id]
	return tx, ok, nil
}

func (f *fakeChainReader) TipHeight(ctx context.Context) (primitives.Height, error) {
	return 0, nil
}

func (f *fakeChainReader) BlockHash(ctx context.Context, height primitives.Height) (primitives.Hash256, bool, error) {
	return primitives.Hash256{}, false, nil
}

type fakeProofProvider struct {
	proofs map[primitives.Hash256][]byte
}

func (f *fakeProofProvider) MerkleProof(ctx context.Context, blockHash, txid primitives.Hash256) ([]byte, bool, error) {
	p, ok := f.proofs[txid]
	return p, ok, nil
}

func TestIngestBlockStoresEveryEntry(t *testing.T) {
	db := newTestDB(t)

	minerInfoID := txid(1)
	dataRefID := txid(2)
	blockHash := txid(100)

	chain := &fakeChainReader{txs: map[primitives.Hash256][]byte{
		minerInfoID: []byte("miner info tx"),
		dataRefID:   []byte("dataref tx"),
	}}
	proofs := &fakeProofProvider{proofs: map[primitives.Hash256][]byte{
		minerInfoID: []byte("proof1"),
		dataRefID:   []byte("proof2"),
	}}

	failures := db.IngestBlock(context.Background(), blockHash, &minerInfoID, []primitives.Hash256{dataRefID}, chain, proofs)
	assert.Empty(t, failures)

	guard := db.Access()
	defer guard.Release()

	_, found, err := guard.LookupEntry(FamilyMinerInfoTxn, minerInfoID)
	require.Nil(t, err)
	assert.True(t, found)

	_, found, err = guard.LookupEntry(FamilyDataRefTxn, dataRefID)
	require.Nil(t, err)
	assert.True(t, found)
}

func TestIngestBlockMissingTransactionFailsOnlyThatEntry(t *testing.T) {
	db := newTestDB(t)

	presentID := txid(1)
	missingID := txid(2)
	blockHash := txid(100)

	chain := &fakeChainReader{txs: map[primitives.Hash256][]byte{
		presentID: []byte("present tx"),
	}}
	proofs := &fakeProofProvider{proofs: map[primitives.Hash256][]byte{
		presentID: []byte("proof"),
	}}

	failures := db.IngestBlock(context.Background(), blockHash, nil, []primitives.Hash256{presentID, missingID}, chain, proofs)
	require.Len(t, failures, 1)

	guard := db.Access()
	defer guard.Release()

	_, found, err := guard.LookupEntry(FamilyDataRefTxn, presentID)
	require.Nil(t, err)
	assert.True(t, found, "entries that do resolve must still be stored despite a sibling failure")

	_, found, err = guard.LookupEntry(FamilyDataRefTxn, missingID)
	require.Nil(t, err)
	assert.False(t, found)
}

func TestIngestBlockMissingMerkleProofFailsOnlyThatEntry(t *testing.T) {
	db := newTestDB(t)

	id := txid(1)
	blockHash := txid(100)

	chain := &fakeChainReader{txs: map[primitives.Hash256][]byte{id: []byte("tx")}}
	proofs := &fakeProofProvider{proofs: map[primitives.Hash256][]byte{}} // no proof available

	failures := db.IngestBlock(context.Background(), blockHash, nil, []primitives.Hash256{id}, chain, proofs)
	require.Len(t, failures, 1)

	guard := db.Access()
	defer guard.Release()

	_, found, err := guard.LookupEntry(FamilyDataRefTxn, id)
	require.Nil(t, err)
	assert.False(t, found)
}
