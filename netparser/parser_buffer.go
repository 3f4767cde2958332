package netparser

// FeedClearer is the subset of Parser a ParserBuffer wraps: Feed plus the
// read-back and reset operations any of block/blocktxn/cmpctblock/single-seg
// parsers support.
type FeedClearer interface {
	Feed(s []byte) (bytesRead, bytesReqd int)
	Size() int
	Clear()
}

// Reader is implemented by parsers that support random-access read-back:
// the block, blocktxn, cmpctblock and single-segment parsers all do.
type Reader interface {
	Read(readPos int, dst []byte) (int, error)
}

// ParserBuffer buffers whatever bytes the wrapped parser can't yet consume,
// re-feeding them once enough has accumulated, and latches into a permanent
// overflow state the moment the wrapped parser reports (0, 0) — the signal
// that the message is malformed and nothing more should be handed to it.
// Grounded on msg_parser_buffer.h/.cpp.
type ParserBuffer struct {
	parser FeedClearer

	buffer        []byte
	bytesRead     int
	bufferSizeReqd int
	overflow      bool
}

func NewParserBuffer(parser FeedClearer) *ParserBuffer {
	return &ParserBuffer{parser: parser}
}

// Feed always consumes all of s, either passing it to the wrapped parser or
// holding it in the internal buffer.
func (b *ParserBuffer) Feed(s []byte) {
	if b.overflow {
		b.buffer = append(b.buffer, s...)
		return
	}

	if len(b.buffer) > 0 {
		for {
			reqd := b.bufferSizeReqd - len(b.buffer)
			if reqd > len(s) {
				reqd = len(s)
			}
			b.buffer = append(b.buffer, s[:reqd]...)
			s = s[reqd:]

			if len(b.buffer) < b.bufferSizeReqd {
				return
			}

			bytesRead, bytesReqd := b.parser.Feed(b.buffer)
			if bytesRead == len(b.buffer) {
				b.buffer = b.buffer[:0]
				b.bufferSizeReqd = 0
				if len(s) == 0 {
					return
				}
				break
			}

			if bytesRead == 0 && bytesReqd == 0 {
				b.overflow = true
				b.buffer = append(b.buffer, s...)
				b.bytesRead += len(s)
				return
			}

			b.bufferSizeReqd = bytesReqd
		}
	}

	bytesRead, bytesReqd := b.parser.Feed(s)
	if bytesRead == 0 && bytesReqd == 0 {
		b.overflow = true
		b.buffer = append(b.buffer, s...)
		b.bytesRead += len(s)
		return
	}

	b.bytesRead = bytesRead
	remaining := len(s) - bytesRead
	if bytesReqd != 0 {
		b.bufferSizeReqd = bytesReqd
	} else {
		b.bufferSizeReqd = remaining
	}
	if remaining > 0 {
		b.buffer = append(b.buffer, s[bytesRead:]...)
	}
}

// Overflow reports whether the wrapped parser has rejected further input —
// the caller should treat this as a protocol violation.
func (b *ParserBuffer) Overflow() bool { return b.overflow }

func (b *ParserBuffer) Read(readPos int, dst []byte) (int, error) {
	if r, ok := b.parser.(Reader); ok {
		return r.Read(readPos, dst)
	}
	return 0, nil
}

func (b *ParserBuffer) Size() int {
	return b.parser.Size() + len(b.buffer)
}

func (b *ParserBuffer) ParsedSize() int {
	return b.parser.Size()
}

func (b *ParserBuffer) Clear() {
	b.parser.Clear()
	b.buffer = b.buffer[:0]
	b.bufferSizeReqd = 0
	b.overflow = false
}
