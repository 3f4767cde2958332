package netparser

// FixedLenMultiParser parses a compact-size count followed by that many
// fixed-length items (e.g. the 6-byte short-IDs in a cmpctblock message),
// packing fixedLengthsPerSeg items into each segment to bound per-segment
// allocation size independent of the total count. Grounded on
// fixed_len_multi_parser.h/.cpp.
type FixedLenMultiParser struct {
	fixedLen           int
	fixedLengthsPerSeg int
	segSize            int

	haveCount bool
	n         uint64
	current   uint64

	buffer   []byte
	segments [][]byte
	size     int

	cumLengths []int
}

func NewFixedLenMultiParser(fixedLen, fixedLengthsPerSeg int) *FixedLenMultiParser {
	return &FixedLenMultiParser{
		fixedLen:           fixedLen,
		fixedLengthsPerSeg: fixedLengthsPerSeg,
		segSize:            fixedLen * fixedLengthsPerSeg,
	}
}

func (p *FixedLenMultiParser) parseCount(s []byte) (bytesRead, bytesReqd int) {
	prefix, val, needed := parseCompactSizePrefix(s)
	if prefix == nil {
		return 0, needed
	}
	p.segments = append(p.segments, append([]byte(nil), prefix...))
	p.size += len(prefix)
	p.n = val
	p.haveCount = true
	return len(prefix), 0
}

func (p *FixedLenMultiParser) Feed(s []byte) (bytesRead, bytesReqd int) {
	var total int

	if !p.haveCount {
		read, reqd := p.parseCount(s)
		total += read
		if reqd != 0 {
			return total, reqd
		}
		s = s[read:]
	}

	if p.current >= p.n {
		return total, 0
	}

	for len(s) >= p.fixedLen {
		fixedLensReqd := p.n - p.current
		bytesReqd := fixedLensReqd * uint64(p.fixedLen)

		segBytesReqd := p.segSize - len(p.buffer)
		minBytesReqd := segBytesReqd
		if bytesReqd < uint64(minBytesReqd) {
			minBytesReqd = int(bytesReqd)
		}

		nBytes := len(s)
		if minBytesReqd < nBytes {
			nBytes = minBytesReqd
		}

		quotient := (nBytes / p.fixedLen) * p.fixedLen

		p.buffer = append(p.buffer, s[:quotient]...)
		p.size += quotient
		p.current += uint64(quotient / p.fixedLen)
		total += quotient

		if len(p.buffer) == p.segSize || (p.current >= p.n && len(p.buffer) > 0) {
			p.segments = append(p.segments, p.buffer)
			p.buffer = make([]byte, 0, p.segSize)

			if p.current >= p.n {
				break
			}
		}

		s = s[quotient:]
	}

	fixedLensReqd := p.n - p.current
	bytesReqd := fixedLensReqd * uint64(p.fixedLen)
	return total, int(bytesReqd)
}

func (p *FixedLenMultiParser) Size() int   { return p.size }
func (p *FixedLenMultiParser) Empty() bool { return p.Size() == 0 }

func (p *FixedLenMultiParser) SegmentCount() int  { return len(p.segments) }
func (p *FixedLenMultiParser) Segment(i int) []byte { return p.segments[i] }
func (p *FixedLenMultiParser) ResetSegment(i int)   { p.segments[i] = nil }

func (p *FixedLenMultiParser) Read(readPos int, dst []byte) (int, error) {
	return ReadSegments(p, readPos, dst)
}

func (p *FixedLenMultiParser) SegOffset(readPos int) (segIdx int, byteOffset int) {
	if p.cumLengths == nil {
		p.initCumLengths()
	}

	if p.SegmentCount() == 1 {
		return 0, readPos
	}

	idx := lowerBound(p.cumLengths, readPos+1)
	prior := 0
	if idx > 0 {
		prior = p.cumLengths[idx-1]
	}
	return idx, readPos - prior
}

func (p *FixedLenMultiParser) initCumLengths() {
	p.cumLengths = make([]int, len(p.segments))
	sum := 0
	for i, seg := range p.segments {
		sum += len(seg)
		p.cumLengths[i] = sum
	}
}

func (p *FixedLenMultiParser) Clear() {
	p.segments = nil
	p.buffer = nil
	p.size = 0
	p.n = 0
	p.current = 0
	p.haveCount = false
	p.cumLengths = nil
}
