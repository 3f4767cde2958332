package primitives

import (
	"crypto/sha256"

	"github.com/libsv/go-bk/bec"
)

// VerifySHA256 hashes payload with SHA-256 and checks sig against pubKey
// over that digest. This is the one signature-verification shape the whole
// miner-id document model uses — outer document signatures, key-rotation
// signatures, revocation signatures, and block-bind signatures are all a
// DER signature over SHA256(some byte payload) — mirrored from miner_id.cpp's
// local `verify(msg, pub_key, sig)` helper.
func VerifySHA256(payload []byte, pubKey CompressedPubKey, sig DerSignature) bool {
	digest := sha256.Sum256(payload)
	return VerifyDigest(digest[:], pubKey, sig)
}

// VerifyDigest checks sig against pubKey over an already-computed digest,
// with no further hashing. Used for block-bind verification, where the spec
// signs over h = SHA256(mm_root || prev_block_hash) directly rather than
// SHA-256 hashing the payload a second time.
func VerifyDigest(digest []byte, pubKey CompressedPubKey, sig DerSignature) bool {
	pk, err := bec.ParsePubKey(pubKey.Bytes(), bec.S256())
	if err != nil {
		return false
	}

	parsed, err := bec.ParseSignature(sig, bec.S256())
	if err != nil {
		return false
	}

	return parsed.Verify(digest, pk)
}
