package netparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildBlockMessage(txs ...[]byte) []byte {
	var b []byte
	b = append(b, make([]byte, blockHeaderLen)...)
	b = append(b, byte(len(txs)))
	for _, tx := range txs {
		b = append(b, tx...)
	}
	return b
}

func TestBlockParserFeedsWholeMessageAtOnce(t *testing.T) {
	wire := buildBlockMessage(minimalTxBytes(), txWithOneInputOneOutput())

	p := NewBlockParser()
	read, reqd := p.Feed(wire)
	require.Equal(t, len(wire), read)
	require.Equal(t, 0, reqd)
	assert.Equal(t, len(wire), p.Size())
	assert.False(t, p.Empty())

	dst := make([]byte, len(wire))
	n, err := p.Read(0, dst)
	require.NoError(t, err)
	assert.Equal(t, len(wire), n)
	assert.Equal(t, wire, dst)
}

func TestBlockParserFeedsHeaderThenBodySeparately(t *testing.T) {
	wire := buildBlockMessage(minimalTxBytes())

	p := NewBlockParser()
	read, reqd := p.Feed(wire[:blockHeaderLen-1])
	assert.Equal(t, blockHeaderLen-1, read)
	assert.Equal(t, 1, reqd)

	read, reqd = p.Feed(wire[blockHeaderLen-1:])
	assert.Equal(t, len(wire)-(blockHeaderLen-1), read)
	assert.Equal(t, 0, reqd)

	assert.Equal(t, len(wire), p.Size())
}

func TestBlockParserReadInChunksMatchesOriginal(t *testing.T) {
	wire := buildBlockMessage(minimalTxBytes(), minimalTxBytes(), txWithOneInputOneOutput())

	p := NewBlockParser()
	_, _ = p.Feed(wire)

	var got []byte
	pos := 0
	for pos < len(wire) {
		want := 11
		if remaining := len(wire) - pos; remaining < want {
			want = remaining
		}
		chunk := make([]byte, want)
		n, err := p.Read(pos, chunk)
		require.NoError(t, err)
		require.Greater(t, n, 0)
		got = append(got, chunk[:n]...)
		pos += n
	}

	assert.Equal(t, wire, got)
}

func TestBlockParserClearResetsForReuse(t *testing.T) {
	wire := buildBlockMessage(minimalTxBytes())

	p := NewBlockParser()
	p.Feed(wire)
	require.Equal(t, len(wire), p.Size())

	p.Clear()
	assert.Equal(t, 0, p.Size())
	assert.True(t, p.Empty())

	read, reqd := p.Feed(wire)
	assert.Equal(t, len(wire), read)
	assert.Equal(t, 0, reqd)
}
