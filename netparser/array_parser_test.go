package netparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArrayParserOfTxParsersFeedsWholeBufferAtOnce(t *testing.T) {
	tx1 := minimalTxBytes()
	tx2 := txWithOneInputOneOutput()

	var wire []byte
	wire = append(wire, 0x02) // 2 transactions
	wire = append(wire, tx1...)
	wire = append(wire, tx2...)

	p := NewArrayParser(func() *TxParser { return NewTxParser() })

	read, reqd := p.Feed(wire)
	require.Equal(t, len(wire), read)
	require.Equal(t, 0, reqd)

	assert.Equal(t, 3, p.SegmentCount()) // count prefix + 2 tx segments
	assert.Equal(t, len(wire), p.Size())
	assert.False(t, p.Empty())

	dst := make([]byte, len(wire))
	n, err := ReadSegments(p, 0, dst)
	require.NoError(t, err)
	assert.Equal(t, len(wire), n)
	assert.Equal(t, wire, dst)
}

func TestArrayParserOfTxParsersFeedsByteByByte(t *testing.T) {
	tx1 := minimalTxBytes()
	tx2 := minimalTxBytes()

	var wire []byte
	wire = append(wire, 0x02)
	wire = append(wire, tx1...)
	wire = append(wire, tx2...)

	p := NewArrayParser(func() *TxParser { return NewTxParser() })
	buf := NewParserBuffer(p)

	for _, b := range wire {
		buf.Feed([]byte{b})
	}
	assert.False(t, buf.Overflow())
	assert.Equal(t, len(wire), p.Size())

	dst := make([]byte, len(wire))
	n, err := ReadSegments(p, 0, dst)
	require.NoError(t, err)
	assert.Equal(t, len(wire), n)
	assert.Equal(t, wire, dst)
}

func TestArrayParserOfTxParsersEmptyArray(t *testing.T) {
	p := NewArrayParser(func() *TxParser { return NewTxParser() })

	read, reqd := p.Feed([]byte{0x00})
	assert.Equal(t, 1, read)
	assert.Equal(t, 0, reqd)
	assert.Equal(t, 1, p.SegmentCount())
	assert.Equal(t, 1, p.Size())
}

func TestArrayParserClearResetsForReuse(t *testing.T) {
	tx1 := minimalTxBytes()

	var wire []byte
	wire = append(wire, 0x01)
	wire = append(wire, tx1...)

	p := NewArrayParser(func() *TxParser { return NewTxParser() })
	p.Feed(wire)
	assert.Equal(t, len(wire), p.Size())

	p.Clear()
	assert.Equal(t, 0, p.Size())
	assert.True(t, p.Empty())

	read, reqd := p.Feed(wire)
	assert.Equal(t, len(wire), read)
	assert.Equal(t, 0, reqd)
}

func TestReadSegmentsPartialReadsInSequence(t *testing.T) {
	tx1 := minimalTxBytes()
	tx2 := txWithOneInputOneOutput()

	var wire []byte
	wire = append(wire, 0x02)
	wire = append(wire, tx1...)
	wire = append(wire, tx2...)

	p := NewArrayParser(func() *TxParser { return NewTxParser() })
	_, _ = p.Feed(wire)

	var got []byte
	pos := 0
	for pos < len(wire) {
		want := 7
		if remaining := len(wire) - pos; remaining < want {
			want = remaining
		}
		chunk := make([]byte, want)
		n, err := ReadSegments(p, pos, chunk)
		require.NoError(t, err)
		require.Greater(t, n, 0)
		got = append(got, chunk[:n]...)
		pos += n
	}

	assert.Equal(t, wire, got)
}
