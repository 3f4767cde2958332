package minerid

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
	cfg := ReputationConfig{WindowN: 10, BaselineM: 0, MScale: 2.0}
	return NewDB(store, cfg)
}

func key(prefix, fill byte) primitives.CompressedPubKey {
	k, _ := primitives.NewCompressedPubKey(samplePubKeyBytes(prefix, fill))
	return k
}

func hashByte(b byte) primitives.Hash256 {
	var h primitives.Hash256
	h[0] = b
	return h
}

func TestBlockConnectedContinuationThenRotation(t *testing.T) {
	db := newTestDB(t)

	key1 := key(0x02, 0x01)
	key2 := key(0x03, 0x02)
	revKey := key(0x02, 0x09)

	doc1 := &CoinbaseDocument{
		Version: "0.3",
		Height:  1,
		MinerID: KeySet{Key: key1, PrevKey: key1},
		HasRevocationKeys: true,
		RevocationKeys:    KeySet{Key: revKey, PrevKey: revKey},
	}
	require.Nil(t, db.BlockConnected(hashByte(1), 1, doc1))

	good, err := db.CheckReputation(key1)
	require.Nil(t, err)
	assert.True(t, good)

	doc2 := &CoinbaseDocument{
		Version: "0.3",
		Height:  2,
		MinerID: KeySet{Key: key2, PrevKey: key1},
		HasRevocationKeys: true,
		RevocationKeys:    KeySet{Key: revKey, PrevKey: revKey},
	}
	require.Nil(t, db.BlockConnected(hashByte(2), 2, doc2))

	oldEntry, found, err := db.getMinerIDEntry(key1)
	require.Nil(t, err)
	require.True(t, found)
	assert.Equal(t, StateRotated, oldEntry.State)

	newEntry, found, err := db.getMinerIDEntry(key2)
	require.Nil(t, err)
	require.True(t, found)
	assert.Equal(t, StateCurrent, newEntry.State)
	assert.Equal(t, oldEntry.UUID, newEntry.UUID)

	good, err = db.CheckReputation(key2)
	require.Nil(t, err)
	assert.True(t, good)
}

func TestBlockConnectedRotationRejectsUnknownPrevKey(t *testing.T) {
	db := newTestDB(t)
	key1 := key(0x02, 0x01)
	key2 := key(0x03, 0x02)

	doc := &CoinbaseDocument{
		Version: "0.1",
		Height:  1,
		MinerID: KeySet{Key: key2, PrevKey: key1},
	}
	err := db.BlockConnected(hashByte(1), 1, doc)
	require.NotNil(t, err)
}

func TestBlockDisconnectedKeepsDBEntries(t *testing.T) {
	db := newTestDB(t)
	key1 := key(0x02, 0x01)

	doc := &CoinbaseDocument{
		Version: "0.1",
		Height:  1,
		MinerID: KeySet{Key: key1, PrevKey: key1},
	}
	require.Nil(t, db.BlockConnected(hashByte(1), 1, doc))
	db.BlockDisconnected(hashByte(1))

	_, found, err := db.getMinerIDEntry(key1)
	require.Nil(t, err)
	assert.True(t, found)
	assert.Equal(t, 0, db.numRecentBlocksForMinerNL(mustUUID(t, db, key1)))
}

func mustUUID(t *testing.T, db *DB, k primitives.CompressedPubKey) MinerUUID {
	t.Helper()
	e, found, err := db.getMinerIDEntry(k)
	require.Nil(t, err)
	require.True(t, found)
	return e.UUID
}

func TestInvalidBlockVoidsReputation(t *testing.T) {
	db := newTestDB(t)
	key1 := key(0x02, 0x01)

	doc := &CoinbaseDocument{
		Version: "0.1",
		Height:  1,
		MinerID: KeySet{Key: key1, PrevKey: key1},
	}
	require.Nil(t, db.BlockConnected(hashByte(1), 1, doc))

	require.Nil(t, db.InvalidBlock(hashByte(1), &key1))

	good, err := db.CheckReputation(key1)
	require.Nil(t, err)
	assert.False(t, good)
}

func TestProcessRevokeMidRejectsBadSignature(t *testing.T) {
	db := newTestDB(t)

	key1 := key(0x02, 0x01)
	key2 := key(0x03, 0x02)
	revKey := key(0x02, 0x09)

	doc1 := &CoinbaseDocument{
		Version: "0.3",
		Height:  1,
		MinerID: KeySet{Key: key1, PrevKey: key1},
		HasRevocationKeys: true,
		RevocationKeys:    KeySet{Key: revKey, PrevKey: revKey},
	}
	require.Nil(t, db.BlockConnected(hashByte(1), 1, doc1))

	doc2 := &CoinbaseDocument{
		Version: "0.3",
		Height:  2,
		MinerID: KeySet{Key: key2, PrevKey: key1},
		HasRevocationKeys: true,
		RevocationKeys:    KeySet{Key: revKey, PrevKey: revKey},
	}
	require.Nil(t, db.BlockConnected(hashByte(2), 2, doc2))

	msg := &RevokeMid{
		RevocationKey:     revKey,
		MinerID:           key2,
		RevocationMessage: key1,
		Sig1:              derShaped(69),
		Sig2:              derShaped(69),
	}

	err := db.ProcessRevokeMid(msg)
	require.NotNil(t, err, "garbage signatures must fail VerifySignatures")
}

func TestApplyRevocationNLStandaloneRevokesOnlyAncestor(t *testing.T) {
	db := newTestDB(t)

	key1 := key(0x02, 0x01)
	key2 := key(0x03, 0x02)
	revKey := key(0x02, 0x09)

	doc1 := &CoinbaseDocument{
		Version: "0.3",
		Height:  1,
		MinerID: KeySet{Key: key1, PrevKey: key1},
		HasRevocationKeys: true,
		RevocationKeys:    KeySet{Key: revKey, PrevKey: revKey},
	}
	require.Nil(t, db.BlockConnected(hashByte(1), 1, doc1))

	doc2 := &CoinbaseDocument{
		Version: "0.3",
		Height:  2,
		MinerID: KeySet{Key: key2, PrevKey: key1},
		HasRevocationKeys: true,
		RevocationKeys:    KeySet{Key: revKey, PrevKey: revKey},
	}
	require.Nil(t, db.BlockConnected(hashByte(2), 2, doc2))

	db.mu.Lock()
	standaloneDoc := doc2
	standaloneDoc.MinerID.PrevKey = key2 // no rotation: target the now-current key2
	standaloneDoc.RevocationMessage = &RevocationMessage{CompromisedMinerID: key1}
	applyErr := db.applyRevocationNL(hashByte(0), 0, standaloneDoc, false)
	db.mu.Unlock()
	require.Nil(t, applyErr)

	revokedEntry, found, err := db.getMinerIDEntry(key1)
	require.Nil(t, err)
	require.True(t, found)
	assert.Equal(t, StateRevoked, revokedEntry.State)

	stillCurrent, found, err := db.getMinerIDEntry(key2)
	require.Nil(t, err)
	require.True(t, found)
	assert.Equal(t, StateCurrent, stillCurrent.State)
}

func TestApplyRevocationNLFullRevocationDropsNewKey(t *testing.T) {
	db := newTestDB(t)

	key1 := key(0x02, 0x01)
	key2 := key(0x03, 0x02)
	key3 := key(0x02, 0x03)
	revKey := key(0x02, 0x09)

	doc1 := &CoinbaseDocument{
		Version: "0.3",
		Height:  1,
		MinerID: KeySet{Key: key1, PrevKey: key1},
		HasRevocationKeys: true,
		RevocationKeys:    KeySet{Key: revKey, PrevKey: revKey},
	}
	require.Nil(t, db.BlockConnected(hashByte(1), 1, doc1))

	doc2 := &CoinbaseDocument{
		Version: "0.3",
		Height:  2,
		MinerID: KeySet{Key: key2, PrevKey: key1},
		HasRevocationKeys: true,
		RevocationKeys:    KeySet{Key: revKey, PrevKey: revKey},
	}
	require.Nil(t, db.BlockConnected(hashByte(2), 2, doc2))

	doc3 := &CoinbaseDocument{
		Version:           "0.3",
		Height:            3,
		MinerID:           KeySet{Key: key3, PrevKey: key2},
		HasRevocationKeys: true,
		RevocationKeys:    KeySet{Key: revKey, PrevKey: revKey},
		RevocationMessage: &RevocationMessage{CompromisedMinerID: key1},
	}
	require.Nil(t, db.BlockConnected(hashByte(3), 3, doc3))

	e1, found, err := db.getMinerIDEntry(key1)
	require.Nil(t, err)
	require.True(t, found)
	assert.Equal(t, StateRevoked, e1.State)

	e2, found, err := db.getMinerIDEntry(key2)
	require.Nil(t, err)
	require.True(t, found)
	assert.Equal(t, StateRevoked, e2.State)

	_, found, err = db.getMinerIDEntry(key3)
	require.Nil(t, err)
	assert.False(t, found, "fully-revoked miner's new key must never be persisted")

	good, err := db.CheckReputation(key2)
	require.Nil(t, err)
	assert.False(t, good)
}
