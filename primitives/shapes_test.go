package primitives

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsCompressedKey(t *testing.T) {
	good02 := append([]byte{0x02}, make([]byte, 32)...)
	good03 := append([]byte{0x03}, make([]byte, 32)...)
	bad04 := append([]byte{0x04}, make([]byte, 32)...)
	short := append([]byte{0x02}, make([]byte, 10)...)

	assert.True(t, IsCompressedKey(good02))
	assert.True(t, IsCompressedKey(good03))
	assert.False(t, IsCompressedKey(bad04))
	assert.False(t, IsCompressedKey(short))
	assert.False(t, IsCompressedKey(nil))
}

func TestNewCompressedPubKey(t *testing.T) {
	good := append([]byte{0x02}, make([]byte, 32)...)
	k, ok := NewCompressedPubKey(good)
	assert.True(t, ok)
	assert.Equal(t, good, k.Bytes())

	_, ok = NewCompressedPubKey(good[:10])
	assert.False(t, ok)
}

// derSequence builds a well-shaped DER ECDSA signature (tag 0x30, a length
// byte matching the remaining bytes, two INTEGER TLVs for r and s) whose
// total length is sLen, real secp256k1 signatures' 69-72 byte range.
func derSequence(sLen int) []byte {
	rLen := (sLen - 6) / 2
	sValLen := sLen - 6 - rLen

	r := make([]byte, rLen)
	s := make([]byte, sValLen)
	for i := range r {
		r[i] = 0x01
	}
	for i := range s {
		s[i] = 0x02
	}

	var b []byte
	b = append(b, 0x02, byte(len(r)))
	b = append(b, r...)
	b = append(b, 0x02, byte(len(s)))
	b = append(b, s...)

	return append([]byte{0x30, byte(len(b))}, b...)
}

func TestIsDERSignature(t *testing.T) {
	sig := derSequence(69)
	require.Len(t, sig, 69)
	assert.True(t, IsDERSignature(sig))

	longest := derSequence(72)
	require.Len(t, longest, 72)
	assert.True(t, IsDERSignature(longest))

	tooShort := derSequence(68)
	assert.False(t, IsDERSignature(tooShort))

	tooLong := derSequence(73)
	assert.False(t, IsDERSignature(tooLong))

	wrongTag := append([]byte{0x31}, sig[1:]...)
	assert.False(t, IsDERSignature(wrongTag))

	wrongLen := append([]byte{}, sig...)
	wrongLen[1]++
	assert.False(t, IsDERSignature(wrongLen))
}

func TestCompressedPubKeyJSONRoundTrip(t *testing.T) {
	good := append([]byte{0x03}, make([]byte, 32)...)
	k, ok := NewCompressedPubKey(good)
	assert.True(t, ok)

	b, err := k.MarshalJSON()
	assert.NoError(t, err)

	var decoded CompressedPubKey
	assert.NoError(t, decoded.UnmarshalJSON(b))
	assert.Equal(t, k, decoded)
}
