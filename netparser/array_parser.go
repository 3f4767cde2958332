package netparser

// BufferingParser is a Parser that also supports handing over its parsed
// content as a single contiguous buffer once complete, then resetting
// itself for reuse. TxParser and PrefilledTxParser both implement it.
type BufferingParser interface {
	Feed(s []byte) (bytesRead, bytesReqd int)
	Size() int
	Buffer() []byte
	Clear()
}

// ArrayParser parses a compact-size count followed by that many T-shaped
// items into a sequence of independently addressable segments — used for
// the tx list in a block/blocktxn message and the PrefilledTransaction list
// in a cmpctblock message. Go generics stand in for the original's template
// parameter. Grounded on array_parser.h.
type ArrayParser[T BufferingParser] struct {
	newItem func() T
	item    T

	haveCount bool
	n         uint64
	current   uint64

	segments [][]byte
	size     int

	cumLengths []int
}

// NewArrayParser builds an ArrayParser whose items are produced by newItem
// (called once up front, then reused via each item's own reset-on-Buffer
// behaviour).
func NewArrayParser[T BufferingParser](newItem func() T) *ArrayParser[T] {
	return &ArrayParser[T]{newItem: newItem, item: newItem()}
}

func (p *ArrayParser[T]) parseCount(s []byte) (bytesRead, bytesReqd int) {
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

func (p *ArrayParser[T]) Feed(s []byte) (bytesRead, bytesReqd int) {
	var total int

	if !p.haveCount {
		read, reqd := p.parseCount(s)
		total += read
		if reqd != 0 {
			return total, reqd
		}
		s = s[read:]
	}

	for p.current < p.n {
		read, reqd := p.item.Feed(s)
		total += read

		if read == 0 {
			return total, reqd
		}
		if reqd != 0 {
			return total, reqd
		}

		s = s[read:]
		p.size += p.item.Size()
		p.segments = append(p.segments, p.item.Buffer())
		p.current++
	}

	return total, 0
}

func (p *ArrayParser[T]) Size() int   { return p.size + p.item.Size() }
func (p *ArrayParser[T]) Empty() bool { return p.Size() == 0 }

func (p *ArrayParser[T]) SegmentCount() int { return len(p.segments) }
func (p *ArrayParser[T]) Segment(i int) []byte {
	return p.segments[i]
}

func (p *ArrayParser[T]) ResetSegment(i int) {
	p.segments[i] = nil
}

func (p *ArrayParser[T]) Read(readPos int, dst []byte) (int, error) {
	return ReadSegments(p, readPos, dst)
}

func (p *ArrayParser[T]) SegOffset(readPos int) (segIdx int, byteOffset int) {
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

func (p *ArrayParser[T]) initCumLengths() {
	p.cumLengths = make([]int, len(p.segments))
	sum := 0
	for i, seg := range p.segments {
		sum += len(seg)
		p.cumLengths[i] = sum
	}
}

func (p *ArrayParser[T]) Clear() {
	p.segments = nil
	p.size = 0
	p.n = 0
	p.current = 0
	p.haveCount = false
	p.cumLengths = nil
	p.item.Clear()
}

// lowerBound returns the index of the first element in sorted >= target.
func lowerBound(sorted []int, target int) int {
	lo, hi := 0, len(sorted)
	for lo < hi {
		mid := (lo + hi) / 2
		if sorted[mid] < target {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}
