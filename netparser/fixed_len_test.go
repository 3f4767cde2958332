package netparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedLenParserFeedsAcrossMultipleCalls(t *testing.T) {
	p := NewFixedLenParser(4)

	read, reqd := p.Feed([]byte{0x01, 0x02})
	assert.Equal(t, 2, read)
	assert.Equal(t, 2, reqd)
	assert.Equal(t, 2, p.Size())
	assert.False(t, p.Empty())

	read, reqd = p.Feed([]byte{0x03, 0x04})
	assert.Equal(t, 2, read)
	assert.Equal(t, 0, reqd)
	assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, p.Bytes())
}

func TestFixedLenParserStopsAcceptingOnceFull(t *testing.T) {
	p := NewFixedLenParser(2)
	p.Feed([]byte{0xAA, 0xBB})

	read, reqd := p.Feed([]byte{0xCC})
	assert.Equal(t, 0, read)
	assert.Equal(t, 0, reqd)
	assert.Equal(t, []byte{0xAA, 0xBB}, p.Bytes())
}

func TestFixedLenParserClearResetsButKeepsCapacity(t *testing.T) {
	p := NewFixedLenParser(3)
	p.Feed([]byte{0x01, 0x02, 0x03})
	assert.Equal(t, 3, p.Size())

	p.Clear()
	assert.Equal(t, 0, p.Size())
	assert.True(t, p.Empty())

	read, reqd := p.Feed([]byte{0x09, 0x08, 0x07})
	assert.Equal(t, 3, read)
	assert.Equal(t, 0, reqd)
	assert.Equal(t, []byte{0x09, 0x08, 0x07}, p.Bytes())
}

func TestFixedLenParserSingleByteFeeds(t *testing.T) {
	p := NewFixedLenParser(3)
	want := []byte{0x11, 0x22, 0x33}
	for i, b := range want {
		read, reqd := p.Feed([]byte{b})
		assert.Equal(t, 1, read)
		if i == len(want)-1 {
			assert.Equal(t, 0, reqd)
		} else {
			assert.Equal(t, len(want)-i-1, reqd)
		}
	}
	assert.Equal(t, want, p.Bytes())
}
