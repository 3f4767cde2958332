package minerid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitcoin-sv/minerid-node/primitives"
)

func pushData(b []byte) []byte {
	return append([]byte{byte(len(b))}, b...)
}

func TestParseMinerInfoRefRoundTrip(t *testing.T) {
	txid := make([]byte, 32)
	for i := range txid {
		txid[i] = byte(i)
	}
	hash := make([]byte, 32)
	for i := range hash {
		hash[i] = byte(i + 1)
	}
	sig := derShaped(69)

	script := append([]byte{}, pushData(txid)...)
	script = append(script, pushData(hash)...)
	script = append(script, pushData(sig)...)

	ref, err := ParseMinerInfoRef(primitives.NewInstructionIterator(script))
	require.Nil(t, err)
	assert.Equal(t, txid, ref.TxID[:])
	assert.Equal(t, hash, ref.BlockBind.MmrPbhHash[:])
	assert.Equal(t, sig, []byte(ref.BlockBind.Sig))
}

func TestParseMinerInfoRefBadTxidLen(t *testing.T) {
	script := pushData(make([]byte, 10))
	_, err := ParseMinerInfoRef(primitives.NewInstructionIterator(script))
	require.NotNil(t, err)
}

func TestParseMinerInfoRefTruncatedAfterTxid(t *testing.T) {
	script := pushData(make([]byte, 32))
	_, err := ParseMinerInfoRef(primitives.NewInstructionIterator(script))
	require.NotNil(t, err)
}

func TestParseMinerInfoRefNonDERSig(t *testing.T) {
	txid := make([]byte, 32)
	hash := make([]byte, 32)
	sig := []byte{0x01, 0x02, 0x03}

	script := append([]byte{}, pushData(txid)...)
	script = append(script, pushData(hash)...)
	script = append(script, pushData(sig)...)

	_, err := ParseMinerInfoRef(primitives.NewInstructionIterator(script))
	require.NotNil(t, err)
}

func TestComputeModifiedMerkleRootSingleLeaf(t *testing.T) {
	var txid primitives.Hash256
	txid[0] = 0xAB

	root := ComputeModifiedMerkleRoot(txid, nil)
	assert.Equal(t, txid, root)
}

func TestComputeModifiedMerkleRootDeterministic(t *testing.T) {
	var a, b, c primitives.Hash256
	a[0], b[0], c[0] = 1, 2, 3

	root1 := ComputeModifiedMerkleRoot(a, []primitives.Hash256{b, c})
	root2 := ComputeModifiedMerkleRoot(a, []primitives.Hash256{b, c})
	assert.Equal(t, root1, root2)

	rootDifferentOrder := ComputeModifiedMerkleRoot(a, []primitives.Hash256{c, b})
	assert.NotEqual(t, root1, rootDifferentOrder)
}

func TestEncodeMinerInfoRefOutputRoundTrip(t *testing.T) {
	var ref MinerInfoRef
	for i := range ref.TxID {
		ref.TxID[i] = byte(i)
	}
	for i := range ref.BlockBind.MmrPbhHash {
		ref.BlockBind.MmrPbhHash[i] = byte(i + 1)
	}
	ref.BlockBind.Sig = derShaped(69)

	out := EncodeMinerInfoRefOutput(ref)

	require.Equal(t, byte(0x00), out[0])
	require.Equal(t, byte(0x6a), out[1])
	require.Equal(t, byte(len(minerInfoProtocolID)), out[2])
	require.Equal(t, minerInfoProtocolID[:], out[3:7])
	require.Equal(t, byte(0x01), out[7])
	require.Equal(t, byte(0x00), out[8])

	decoded, err := ParseMinerInfoRef(primitives.NewInstructionIterator(out[9:]))
	require.Nil(t, err)
	assert.Equal(t, ref.TxID, decoded.TxID)
	assert.Equal(t, ref.BlockBind.MmrPbhHash, decoded.BlockBind.MmrPbhHash)
	assert.Equal(t, []byte(ref.BlockBind.Sig), []byte(decoded.BlockBind.Sig))
}

func TestVerifyBlockBindHashMismatch(t *testing.T) {
	var mmr, prevBlock primitives.Hash256
	mmr[0] = 1
	prevBlock[0] = 2

	bb := BlockBind{MmrPbhHash: primitives.Hash256{0xFF}, Sig: derShaped(8)}
	var key primitives.CompressedPubKey
	key[0] = 0x02

	err := VerifyBlockBind(bb, mmr, prevBlock, key)
	require.NotNil(t, err)
}
