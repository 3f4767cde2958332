package netparser

const blocktxnHeaderLen = 32

// BlocktxnParser parses a p2p "blocktxn" message: a 32-byte header (the
// BlockTransactionsRequest/Response preamble) followed by the collection of
// requested transactions. Grounded on blocktxn_parser.h/.cpp.
type BlocktxnParser struct {
	header *FixedLenParser
	txs    *ArrayParser[*TxParser]
}

func NewBlocktxnParser() *BlocktxnParser {
	return &BlocktxnParser{
		header: NewFixedLenParser(blocktxnHeaderLen),
		txs:    NewArrayParser(func() *TxParser { return NewTxParser() }),
	}
}

func (p *BlocktxnParser) Feed(s []byte) (bytesRead, bytesReqd int) {
	hRead, hReqd := p.header.Feed(s)
	if hReqd != 0 {
		return hRead, hReqd
	}

	total := hRead
	read, reqd := p.txs.Feed(s[hRead:])
	total += read
	return total, reqd
}

func (p *BlocktxnParser) Size() int   { return p.header.Size() + p.txs.Size() }
func (p *BlocktxnParser) Empty() bool { return p.Size() == 0 }

func (p *BlocktxnParser) Read(readPos int, dst []byte) (int, error) {
	return readHeaderAndSegments(p.header, p.txs, readPos, dst)
}

func (p *BlocktxnParser) Clear() {
	p.header.Clear()
	p.txs.Clear()
}
