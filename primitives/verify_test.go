package primitives

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifySHA256RejectsMalformedInputs(t *testing.T) {
	var garbageKey CompressedPubKey
	garbageKey[0] = 0x02 // shape-valid but not a point on the curve

	assert.False(t, VerifySHA256([]byte("payload"), garbageKey, DerSignature{0x30, 0x00}))
}

func TestVerifyDigestRejectsMalformedSignature(t *testing.T) {
	var garbageKey CompressedPubKey
	garbageKey[0] = 0x03

	digest := make([]byte, 32)
	assert.False(t, VerifyDigest(digest, garbageKey, nil))
	assert.False(t, VerifyDigest(digest, garbageKey, DerSignature{0x01, 0x02, 0x03}))
}
