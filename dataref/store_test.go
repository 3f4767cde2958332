package dataref

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitcoin-sv/minerid-node/kvstore"
	"github.com/bitcoin-sv/minerid-node/primitives"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	store, err := kvstore.Open(t.TempDir())
	require.Nil(t, err)
	t.Cleanup(func() { store.Close() })
	return NewDB(store)
}

func txid(b byte) primitives.Hash256 {
	var h primitives.Hash256
	h[0] = b
	return h
}

func TestAddAndLookupEntry(t *testing.T) {
	db := newTestDB(t)
	guard := db.Access()
	defer guard.Release()

	entry := Entry{TxID: txid(1), Tx: []byte("raw tx"), Block: txid(2), Proof: []byte("proof")}
	require.Nil(t, guard.AddEntry(FamilyDataRefTxn, entry))

	got, found, err := guard.LookupEntry(FamilyDataRefTxn, txid(1))
	require.Nil(t, err)
	require.True(t, found)
	assert.Equal(t, entry, got)

	exists, err := guard.EntryExists(FamilyDataRefTxn, txid(1))
	require.Nil(t, err)
	assert.True(t, exists)

	existsOtherFamily, err := guard.EntryExists(FamilyMinerInfoTxn, txid(1))
	require.Nil(t, err)
	assert.False(t, existsOtherFamily)
}

func TestLookupEntryMissing(t *testing.T) {
	db := newTestDB(t)
	guard := db.Access()
	defer guard.Release()

	_, found, err := guard.LookupEntry(FamilyDataRefTxn, txid(9))
	require.Nil(t, err)
	assert.False(t, found)
}

func TestDeleteEntry(t *testing.T) {
	db := newTestDB(t)
	guard := db.Access()
	defer guard.Release()

	require.Nil(t, guard.AddEntry(FamilyMinerInfoTxn, Entry{TxID: txid(3)}))
	require.Nil(t, guard.DeleteEntry(FamilyMinerInfoTxn, txid(3)))

	exists, err := guard.EntryExists(FamilyMinerInfoTxn, txid(3))
	require.Nil(t, err)
	assert.False(t, exists)
}

func TestAllEntriesAndDumpJSON(t *testing.T) {
	db := newTestDB(t)
	guard := db.Access()
	defer guard.Release()

	require.Nil(t, guard.AddEntry(FamilyDataRefTxn, Entry{TxID: txid(1), Block: txid(100)}))
	require.Nil(t, guard.AddEntry(FamilyDataRefTxn, Entry{TxID: txid(2), Block: txid(100)}))
	require.Nil(t, guard.AddEntry(FamilyMinerInfoTxn, Entry{TxID: txid(3), Block: txid(100)}))

	refs, err := guard.AllEntries(FamilyDataRefTxn)
	require.Nil(t, err)
	assert.Len(t, refs, 2)

	summary, err := guard.DumpJSON()
	require.Nil(t, err)
	assert.Len(t, summary, 3)
}

func TestDiskUsageAccumulates(t *testing.T) {
	db := newTestDB(t)
	guard := db.Access()
	defer guard.Release()

	before, err := guard.DiskUsage()
	require.Nil(t, err)
	assert.Equal(t, uint64(0), before)

	require.Nil(t, guard.AddEntry(FamilyDataRefTxn, Entry{TxID: txid(1), Tx: []byte("abc")}))
	after1, err := guard.DiskUsage()
	require.Nil(t, err)
	assert.Greater(t, after1, before)

	require.Nil(t, guard.AddEntry(FamilyDataRefTxn, Entry{TxID: txid(2), Tx: []byte("abcdef")}))
	after2, err := guard.DiskUsage()
	require.Nil(t, err)
	assert.Greater(t, after2, after1)
}

func TestGuardReleaseIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	guard := db.Access()
	guard.Release()
	assert.NotPanics(t, func() { guard.Release() })
}
