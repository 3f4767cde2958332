package minerid

import (
	"crypto/sha256"

	"github.com/libsv/go-bt/v2/chainhash"

	"github.com/bitcoin-sv/minerid-node/errors"
	"github.com/bitcoin-sv/minerid-node/primitives"
)

// BlockBind proves a miner-info document pertains to one specific block: a
// signature by the current miner-id key over SHA256(modified merkle root ||
// prev block hash). Grounded on miner_info_ref.h's block_bind, simplified to
// carry the combined hash directly rather than its two components
// separately (the wire layout in §6.2 only ever needs mmr_pbh_hash).
type BlockBind struct {
	MmrPbhHash primitives.Hash256
	Sig        primitives.DerSignature
}

// MinerInfoRef is the parsed coinbase output referencing a miner-info
// transaction. Grounded on miner_info_ref.h's miner_info_ref.
type MinerInfoRef struct {
	TxID      primitives.Hash256
	BlockBind BlockBind
}

const (
	minerInfoRefTxidLen = 32
	minerInfoRefHashLen = 32
)

// ParseMinerInfoRef decodes a coinbase output's script instructions into a
// MinerInfoRef. ops is the instruction stream starting immediately after
// the 0x601DFACE 0x00 protocol-id-and-version prefix, i.e. at the txid push.
// Grounded on ParseMinerInfoRef in miner_info_ref.cpp.
func ParseMinerInfoRef(ops *primitives.InstructionIterator) (*MinerInfoRef, *errors.Error) {
	if !ops.Valid() {
		return nil, errors.New(errors.ERR_INVALID_INSTRUCTION, "expected miner-info-ref txid push")
	}
	txidOperand := ops.Current().Operand
	if len(txidOperand) != minerInfoRefTxidLen {
		return nil, errors.New(errors.ERR_INVALID_TXID_LEN, "miner-info-ref txid push has length %d, want %d", len(txidOperand), minerInfoRefTxidLen)
	}
	var txid primitives.Hash256
	copy(txid[:], txidOperand)

	ops.Next()
	if !ops.Valid() {
		return nil, errors.New(errors.ERR_INVALID_INSTRUCTION, "expected miner-info-ref mmr_pbh_hash push")
	}
	hashOperand := ops.Current().Operand
	if len(hashOperand) != minerInfoRefHashLen {
		return nil, errors.New(errors.ERR_INVALID_MMR_PBH_HASH_LEN, "miner-info-ref mmr_pbh_hash push has length %d, want %d", len(hashOperand), minerInfoRefHashLen)
	}
	var mmrPbhHash primitives.Hash256
	copy(mmrPbhHash[:], hashOperand)

	ops.Next()
	if !ops.Valid() {
		return nil, errors.New(errors.ERR_INVALID_INSTRUCTION, "expected miner-info-ref signature push")
	}
	sig := ops.Current().Operand
	if !primitives.IsDERSignature(sig) {
		return nil, errors.New(errors.ERR_INVALID_SIG_LEN, "miner-info-ref signature is not DER-shaped")
	}

	return &MinerInfoRef{
		TxID: txid,
		BlockBind: BlockBind{
			MmrPbhHash: mmrPbhHash,
			Sig:        primitives.DerSignature(append([]byte{}, sig...)),
		},
	}, nil
}

// CoinbaseShape is the minimal description of a block's coinbase transaction
// needed for block-bind verification. It carries only the coinbase txid.
type CoinbaseShape struct {
	TxID primitives.Hash256
}

// ComputeModifiedMerkleRoot computes the block's Merkle root with the
// coinbase leaf replaced by modifiedCoinbaseTxID, the already-computed txid
// of the modified coinbase (§4.G step 1), followed by otherTxIDs in block
// order; a level with an odd number of nodes duplicates its last one. It
// does not derive the modified coinbase txid itself: callers compute it
// from the raw coinbase transaction (see collaborators.ChainReader).
func ComputeModifiedMerkleRoot(modifiedCoinbaseTxID primitives.Hash256, otherTxIDs []primitives.Hash256) primitives.Hash256 {
	leaves := make([][]byte, 0, len(otherTxIDs)+1)
	leaves = append(leaves, append([]byte{}, modifiedCoinbaseTxID[:]...))
	for _, txid := range otherTxIDs {
		leaves = append(leaves, append([]byte{}, txid[:]...))
	}

	root := computeMerkleRoot(leaves)
	var out primitives.Hash256
	copy(out[:], root)
	return out
}

// computeMerkleRoot is the classic Bitcoin pairwise double-SHA256 tree,
// duplicating the final element of an odd-length level. Grounded on the
// ComputeFullMerkleRoot helper found in the pack's Stratum-pool work
// package, adapted to use chainhash's double-hash instead of a bespoke one.
func computeMerkleRoot(leaves [][]byte) []byte {
	if len(leaves) == 0 {
		return make([]byte, 32)
	}

	level := leaves
	for len(level) > 1 {
		if len(level)%2 != 0 {
			level = append(level, level[len(level)-1])
		}
		next := make([][]byte, 0, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			combined := append(append([]byte{}, level[i]...), level[i+1]...)
			h := chainhash.DoubleHashB(combined)
			next = append(next, h)
		}
		level = next
	}
	return level[0]
}

// VerifyBlockBind implements §4.G's block-bind verification: recompute
// h = SHA256(modifiedMerkleRoot || prevBlockHash), compare it against the
// claimed mmr_pbh_hash, then verify the signature under minerIdKey over h.
func VerifyBlockBind(bb BlockBind, modifiedMerkleRoot, prevBlockHash primitives.Hash256, minerIDKey primitives.CompressedPubKey) *errors.Error {
	payload := append(append([]byte{}, modifiedMerkleRoot[:]...), prevBlockHash[:]...)
	h := sha256.Sum256(payload)

	if !chainhash.Hash(h).IsEqual(&bb.MmrPbhHash) {
		return errors.New(errors.ERR_BLOCK_BIND_HASH_MISMATCH, "block-bind hash does not match modified merkle root / prev block hash")
	}

	if !primitives.VerifyDigest(h[:], minerIDKey, bb.Sig) {
		return errors.New(errors.ERR_BLOCK_BIND_SIG_VERIFICATION_FAILED, "block-bind signature verification failed")
	}

	return nil
}

// minerInfoProtocolID is the 4-byte protocol identifier at script offset 3,
// followed by a single protocol-version byte (always 0). Grounded on
// miner_info_ref.cpp's layout comment ("0 OP_FALSE (1) / 1 OP_RETURN (1) /
// 2 pushdata 4 (1) / 3 protocol-id (4) / 7 pushdata 1 (1) / 8
// protocol-id-version (1)").
var minerInfoProtocolID = [4]byte{0x60, 0x1D, 0xFA, 0xCE}

// pushOp encodes a direct data push: b must be no longer than 75 bytes, the
// range the single opcode-as-length encoding covers, which every field
// EncodeMinerInfoRefOutput pushes satisfies (32 and 69-72 bytes).
func pushOp(b []byte) []byte {
	return append([]byte{byte(len(b))}, b...)
}

// EncodeMinerInfoRefOutput builds the coinbase output script carrying a
// miner-info-ref, the wire layout fixed by §6.2: OP_FALSE OP_RETURN
// <push4 protocol-id> <push1 version=0> <push32 txid> <push32 mmr_pbh_hash>
// <push sig>.
func EncodeMinerInfoRefOutput(ref MinerInfoRef) []byte {
	out := make([]byte, 0, 2+5+34+34+2+len(ref.BlockBind.Sig))
	out = append(out, 0x00, 0x6a) // OP_FALSE, OP_RETURN
	out = append(out, pushOp(minerInfoProtocolID[:])...)
	out = append(out, pushOp([]byte{0x00})...)
	out = append(out, pushOp(ref.TxID[:])...)
	out = append(out, pushOp(ref.BlockBind.MmrPbhHash[:])...)
	out = append(out, pushOp(ref.BlockBind.Sig)...)
	return out
}
