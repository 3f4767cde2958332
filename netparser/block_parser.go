package netparser

const blockHeaderLen = 80

// BlockParser parses a p2p "block" message into an 80-byte header and the
// collection of full transactions that follow it. Grounded on
// block_parser.h (the .cpp is inlined into the header in the original; its
// behaviour mirrors blocktxn_parser.cpp one-for-one with a different
// header length).
type BlockParser struct {
	header *FixedLenParser
	txs    *ArrayParser[*TxParser]
}

func NewBlockParser() *BlockParser {
	return &BlockParser{
		header: NewFixedLenParser(blockHeaderLen),
		txs:    NewArrayParser(func() *TxParser { return NewTxParser() }),
	}
}

func (p *BlockParser) Feed(s []byte) (bytesRead, bytesReqd int) {
	hRead, hReqd := p.header.Feed(s)
	if hReqd != 0 {
		return hRead, hReqd
	}

	total := hRead
	read, reqd := p.txs.Feed(s[hRead:])
	total += read
	return total, reqd
}

func (p *BlockParser) Size() int {
	return p.header.Size() + p.txs.Size()
}

func (p *BlockParser) Empty() bool { return p.Size() == 0 }

func (p *BlockParser) Read(readPos int, dst []byte) (int, error) {
	return readHeaderAndSegments(p.header, p.txs, readPos, dst)
}

func (p *BlockParser) Clear() {
	p.header.Clear()
	p.txs.Clear()
}
