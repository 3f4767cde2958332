package primitives

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompactSizeRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 0xfc, 0xfd, 0xfe, 0xffff, 0x10000, 0xffffffff, 0x100000000, ^uint64(0)}
	for _, v := range values {
		encoded := PutCompactSize(nil, v)
		require.Equal(t, CompactSizeLen(v), len(encoded))

		decoded, consumed, needed := ParseCompactSize(encoded)
		assert.Equal(t, 0, needed)
		assert.Equal(t, len(encoded), consumed)
		assert.Equal(t, v, decoded)
	}
}

func TestParseCompactSizeByteByByte(t *testing.T) {
	encoded := PutCompactSize(nil, 70000)
	for i := 0; i < len(encoded); i++ {
		_, consumed, needed := ParseCompactSize(encoded[:i])
		assert.Equal(t, 0, consumed)
		assert.Greater(t, needed, i)
	}

	value, consumed, needed := ParseCompactSize(encoded)
	assert.Equal(t, uint64(70000), value)
	assert.Equal(t, len(encoded), consumed)
	assert.Equal(t, 0, needed)
}

func TestParseCompactSizeEmpty(t *testing.T) {
	_, consumed, needed := ParseCompactSize(nil)
	assert.Equal(t, 0, consumed)
	assert.Equal(t, 1, needed)
}
