package netparser

import "github.com/bitcoin-sv/minerid-node/primitives"

// PrefilledTxParser parses one PrefilledTransaction entry from a cmpctblock
// message's HeaderAndShortIDs: a compact-size index followed by a full
// transaction. Grounded on prefilled_tx_parser.h/.cpp.
type PrefilledTxParser struct {
	indexBuf []byte
	tx       TxParser
}

func (p *PrefilledTxParser) Feed(s []byte) (bytesRead, bytesReqd int) {
	if len(s) == 0 {
		return 0, 1
	}

	var total int

	if len(p.indexBuf) == 0 {
		_, consumed, needed := primitives.ParseCompactSize(s)
		total += consumed
		if consumed == 0 {
			return total, needed
		}

		p.indexBuf = append([]byte(nil), s[:consumed]...)
		s = s[consumed:]
	}

	read, reqd := p.tx.Feed(s)
	total += read
	return total, reqd
}

func (p *PrefilledTxParser) Size() int {
	return len(p.indexBuf) + p.tx.Size()
}

// Buffer concatenates the index prefix with the parsed transaction bytes
// and resets the parser, matching prefilled_tx_parser::buffer()&&.
func (p *PrefilledTxParser) Buffer() []byte {
	txBuf := p.tx.Buffer()
	out := make([]byte, 0, len(p.indexBuf)+len(txBuf))
	out = append(out, p.indexBuf...)
	out = append(out, txBuf...)
	p.indexBuf = nil
	return out
}

func (p *PrefilledTxParser) Clear() {
	p.indexBuf = nil
	p.tx.Clear()
}
