package netparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// minimalTxBytes builds a legacy-wire-format transaction with no inputs or
// outputs: version(4) + ipCount(1, =0) + opCount(1, =0) + locktime(4).
func minimalTxBytes() []byte {
	return []byte{
		0x01, 0x00, 0x00, 0x00, // version
		0x00,                   // input count = 0
		0x00,                   // output count = 0
		0x00, 0x00, 0x00, 0x00, // locktime
	}
}

// txWithOneInputOneOutput builds a transaction carrying one input with an
// empty scriptSig and one output with an empty scriptPubKey.
func txWithOneInputOneOutput() []byte {
	var b []byte
	b = append(b, 0x02, 0x00, 0x00, 0x00) // version
	b = append(b, 0x01)                   // input count = 1
	b = append(b, make([]byte, 36)...)    // outpoint
	b = append(b, 0x00)                   // scriptSig len = 0
	b = append(b, 0x00, 0x00, 0x00, 0x00)  // sequence
	b = append(b, 0x01)                   // output count = 1
	b = append(b, make([]byte, 8)...)      // value
	b = append(b, 0x00)                   // scriptPubKey len = 0
	b = append(b, 0x00, 0x00, 0x00, 0x00)  // locktime
	return b
}

func TestTxParserFeedsMinimalTxInOneCall(t *testing.T) {
	wire := minimalTxBytes()
	p := NewTxParser()

	read, reqd := p.Feed(wire)
	assert.Equal(t, len(wire), read)
	assert.Equal(t, 0, reqd)
	assert.Equal(t, len(wire), p.Size())

	got := p.Buffer()
	assert.Equal(t, wire, got)
	assert.Equal(t, 0, p.Size(), "Buffer must reset the parser")
}

func TestTxParserFeedsByteByByte(t *testing.T) {
	wire := minimalTxBytes()
	p := NewTxParser()
	// TxParser takes whole fields only and answers (0, needed) for a partial
	// one, so single bytes go through a ParserBuffer that holds them.
	buf := NewParserBuffer(p)

	for _, b := range wire {
		buf.Feed([]byte{b})
	}
	assert.Equal(t, len(wire), p.Size())
	assert.Equal(t, wire, p.Buffer())
}

func TestTxParserOneInputOneOutputRoundTrip(t *testing.T) {
	wire := txWithOneInputOneOutput()
	p := NewTxParser()

	read, reqd := p.Feed(wire)
	require.Equal(t, len(wire), read)
	require.Equal(t, 0, reqd)

	assert.Equal(t, wire, p.Buffer())
}

func TestTxParserOneInputOneOutputByteByByte(t *testing.T) {
	wire := txWithOneInputOneOutput()
	p := NewTxParser()
	buf := NewParserBuffer(p)

	for _, b := range wire {
		buf.Feed([]byte{b})
	}
	assert.Equal(t, len(wire), p.Size())
	assert.Equal(t, wire, p.Buffer())
}

func TestTxParserReusableAfterBuffer(t *testing.T) {
	wire := minimalTxBytes()
	p := NewTxParser()

	p.Feed(wire)
	first := p.Buffer()
	assert.Equal(t, wire, first)

	p.Feed(wire)
	second := p.Buffer()
	assert.Equal(t, wire, second)
}

func TestTxParserClearResetsState(t *testing.T) {
	wire := minimalTxBytes()
	p := NewTxParser()

	p.Feed(wire[:5])
	assert.NotZero(t, p.Size())

	p.Clear()
	assert.Equal(t, 0, p.Size())
	assert.True(t, p.Empty())

	read, reqd := p.Feed(wire)
	assert.Equal(t, len(wire), read)
	assert.Equal(t, 0, reqd)
}
