package netparser

import "io"

const (
	cmpctblockNonceLen    = 8
	cmpctblockShortIDLen  = 6
	cmpctblockShortIDsPerSeg = 1000
)

// CmpctblockParser parses a p2p "cmpctblock" message: an 88-byte header
// (80-byte block header + 8-byte nonce), a collection of 6-byte short-IDs
// packed into 1000-entry segments, and a collection of prefilled
// transactions. Grounded on cmpctblock_parser.h/.cpp.
type CmpctblockParser struct {
	header  *FixedLenParser
	shortID *FixedLenMultiParser
	pftxs   *ArrayParser[*PrefilledTxParser]
}

func NewCmpctblockParser() *CmpctblockParser {
	return &CmpctblockParser{
		header:  NewFixedLenParser(blockHeaderLen + cmpctblockNonceLen),
		shortID: NewFixedLenMultiParser(cmpctblockShortIDLen, cmpctblockShortIDsPerSeg),
		pftxs:   NewArrayParser(func() *PrefilledTxParser { return &PrefilledTxParser{} }),
	}
}

func (p *CmpctblockParser) Feed(s []byte) (bytesRead, bytesReqd int) {
	var total int

	hRead, hReqd := p.header.Feed(s)
	total += hRead
	if hReqd != 0 {
		return total, hReqd
	}
	s = s[hRead:]

	sidRead, sidReqd := p.shortID.Feed(s)
	total += sidRead
	if sidReqd != 0 {
		return total, sidReqd
	}
	s = s[sidRead:]

	read, reqd := p.pftxs.Feed(s)
	total += read
	return total, reqd
}

func (p *CmpctblockParser) Size() int {
	return p.header.Size() + p.shortID.Size() + p.pftxs.Size()
}

func (p *CmpctblockParser) Empty() bool { return p.Size() == 0 }

func (p *CmpctblockParser) Read(readPos int, dst []byte) (int, error) {
	total := p.Size()
	if readPos >= total {
		return 0, io.ErrUnexpectedEOF
	}

	maxReadable := len(dst)
	if total < maxReadable {
		maxReadable = total
	}

	var read int
	for read < maxReadable {
		switch {
		case readPos < p.header.Size():
			n := len(dst) - read
			if p.header.Size()-readPos < n {
				n = p.header.Size() - readPos
			}
			copy(dst[read:read+n], p.header.Bytes()[readPos:readPos+n])
			readPos += n
			read += n

		case readPos < p.header.Size()+p.shortID.Size():
			n, err := ReadSegments(p.shortID, readPos-p.header.Size(), dst[read:])
			if err != nil {
				return read, err
			}
			readPos += n
			read += n
			if n == 0 {
				return read, nil
			}

		default:
			n, err := ReadSegments(p.pftxs, readPos-p.header.Size()-p.shortID.Size(), dst[read:])
			if err != nil {
				return read, err
			}
			readPos += n
			read += n
			if n == 0 {
				return read, nil
			}
		}
	}

	return read, nil
}

func (p *CmpctblockParser) Clear() {
	p.header.Clear()
	p.shortID.Clear()
	p.pftxs.Clear()
}
