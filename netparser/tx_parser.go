package netparser

import "github.com/bitcoin-sv/minerid-node/primitives"

// Fixed field lengths from the legacy transaction wire format, grounded on
// p2p_msg_lengths.h.
const (
	versionLen  = 4
	outpointLen = 36
	seqLen      = 4
	valueLen    = 8
	locktimeLen = 4
)

type txParserState int

const (
	txStateVersion txParserState = iota
	txStateIPCount
	txStateIPs
	txStateOPCount
	txStateOPs
	txStateLockTime
	txStateComplete
)

// TxParser parses a single transaction out of a byte stream across as many
// Feed calls as it takes, buffering each field separately and coalescing
// them into one contiguous buffer only once parsing completes. Grounded on
// tx_parser.h/.cpp.
type TxParser struct {
	state txParserState

	nIPs      uint64
	currentIP uint64
	nOPs      uint64
	currentOP uint64

	scriptLen    uint64
	haveScriptLen bool

	versionBuf  []byte
	ipCountBuf  []byte
	ipBufs      [][]byte
	opCountBuf  []byte
	opBufs      [][]byte
	locktimeBuf []byte

	buffer []byte
	size   int
}

func NewTxParser() *TxParser {
	return &TxParser{}
}

func (p *TxParser) parseVersion(s []byte) (bytesRead, bytesReqd int) {
	if len(s) < versionLen {
		return 0, versionLen
	}
	p.versionBuf = append([]byte(nil), s[:versionLen]...)
	return versionLen, 0
}

func (p *TxParser) parseIPCount(s []byte) (bytesRead, bytesReqd int) {
	val, consumed, needed := primitives.ParseCompactSize(s)
	if consumed == 0 {
		return 0, needed
	}
	p.nIPs = val
	p.ipCountBuf = append([]byte(nil), s[:consumed]...)
	return consumed, 0
}

func (p *TxParser) parseOPCount(s []byte) (bytesRead, bytesReqd int) {
	val, consumed, needed := primitives.ParseCompactSize(s)
	if consumed == 0 {
		return 0, needed
	}
	p.nOPs = val
	p.opCountBuf = append([]byte(nil), s[:consumed]...)
	return consumed, 0
}

// parseInput requires s starts at either the outpoint or the script length
// field of an input, depending on whether scriptLen has already been
// decoded in a previous Feed call.
func (p *TxParser) parseInput(s []byte) (bytesRead, bytesReqd int) {
	var total int

	if !p.haveScriptLen {
		if len(s) < outpointLen+1 {
			return 0, outpointLen + 1
		}
		total += outpointLen

		val, consumed, needed := primitives.ParseCompactSize(s[outpointLen:])
		if consumed == 0 {
			return 0, outpointLen + needed
		}

		p.scriptLen = val
		p.haveScriptLen = true
		total += consumed

		v := append([]byte(nil), s[:total]...)
		p.ipBufs = append(p.ipBufs, v)
		s = s[total:]
	}

	extraReqd := p.scriptLen + seqLen
	if uint64(len(s)) < extraReqd {
		return total, total + int(extraReqd)
	}

	p.haveScriptLen = false
	cur := &p.ipBufs[len(p.ipBufs)-1]
	*cur = append(*cur, s[:extraReqd]...)

	return total + int(extraReqd), 0
}

func (p *TxParser) parseOutput(s []byte) (bytesRead, bytesReqd int) {
	var total int

	if !p.haveScriptLen {
		if len(s) < valueLen+1 {
			return 0, valueLen + 1
		}
		total += valueLen

		val, consumed, needed := primitives.ParseCompactSize(s[valueLen:])
		if consumed == 0 {
			return 0, valueLen + needed
		}

		p.scriptLen = val
		p.haveScriptLen = true
		total += consumed

		v := append([]byte(nil), s[:total]...)
		p.opBufs = append(p.opBufs, v)
		s = s[total:]
	}

	extraReqd := p.scriptLen
	if uint64(len(s)) < extraReqd {
		return total, total + int(extraReqd)
	}

	p.haveScriptLen = false
	cur := &p.opBufs[len(p.opBufs)-1]
	*cur = append(*cur, s[:extraReqd]...)

	return total + int(extraReqd), 0
}

func (p *TxParser) parseInputs(s []byte) (bytesRead, bytesReqd int) {
	var total int
	for p.currentIP < p.nIPs {
		read, reqd := p.parseInput(s)
		if read > 0 {
			total += read
			s = s[read:]
		}
		if reqd > 0 {
			return total, reqd
		}
		p.currentIP++
	}
	return total, 0
}

func (p *TxParser) parseOutputs(s []byte) (bytesRead, bytesReqd int) {
	var total int
	for p.currentOP < p.nOPs {
		read, reqd := p.parseOutput(s)
		if read > 0 {
			total += read
			s = s[read:]
		}
		if reqd > 0 {
			return total, reqd
		}
		p.currentOP++
	}
	return total, 0
}

func (p *TxParser) parseLocktime(s []byte) (bytesRead, bytesReqd int) {
	if len(s) < locktimeLen {
		return 0, locktimeLen
	}
	p.locktimeBuf = append([]byte(nil), s[:locktimeLen]...)
	return locktimeLen, 0
}

// Feed implements Parser. The switch-with-fallthrough mirrors tx_parser's
// operator(): each state runs only once its predecessor has all the bytes
// it needs, falling straight into the next state in the same call when
// enough input is available.
func (p *TxParser) Feed(s []byte) (bytesRead, bytesReqd int) {
	var total int

	if p.state <= txStateVersion {
		read, reqd := p.parseVersion(s)
		total += read
		s = s[read:]
		if len(s) < reqd {
			return total, reqd
		}
		p.state = txStateIPCount
	}

	if p.state <= txStateIPCount {
		read, reqd := p.parseIPCount(s)
		total += read
		s = s[read:]
		if len(s) < reqd {
			return total, reqd
		}
		p.state = txStateIPs
	}

	if p.state <= txStateIPs {
		read, reqd := p.parseInputs(s)
		total += read
		s = s[read:]
		if len(s) < reqd {
			return total, reqd
		}
		p.state = txStateOPCount
	}

	if p.state <= txStateOPCount {
		read, reqd := p.parseOPCount(s)
		total += read
		s = s[read:]
		if len(s) < reqd {
			return total, reqd
		}
		p.state = txStateOPs
	}

	if p.state <= txStateOPs {
		read, reqd := p.parseOutputs(s)
		total += read
		s = s[read:]
		if len(s) < reqd {
			return total, reqd
		}
		p.state = txStateLockTime
	}

	if p.state <= txStateLockTime {
		read, reqd := p.parseLocktime(s)
		total += read
		s = s[read:]
		if len(s) < reqd {
			return total, reqd
		}
		p.coalesce()
		p.state = txStateComplete
	}

	// state == complete: reset per-field scratch, retaining the coalesced
	// buffer until the caller takes it via Buffer().
	p.currentIP = 0
	p.currentOP = 0
	p.versionBuf = nil
	p.ipCountBuf = nil
	p.ipBufs = nil
	p.opCountBuf = nil
	p.opBufs = nil
	p.locktimeBuf = nil

	return total, 0
}

func (p *TxParser) coalesce() {
	size := p.bufferSize()
	buf := make([]byte, 0, size)
	buf = append(buf, p.versionBuf...)
	buf = append(buf, p.ipCountBuf...)
	for _, b := range p.ipBufs {
		buf = append(buf, b...)
	}
	buf = append(buf, p.opCountBuf...)
	for _, b := range p.opBufs {
		buf = append(buf, b...)
	}
	buf = append(buf, p.locktimeBuf...)
	p.buffer = buf
	p.size += size
}

func (p *TxParser) bufferSize() int {
	size := len(p.versionBuf) + len(p.ipCountBuf) + len(p.opCountBuf) + len(p.locktimeBuf)
	for _, b := range p.ipBufs {
		size += len(b)
	}
	for _, b := range p.opBufs {
		size += len(b)
	}
	return size
}

// Size returns the total number of bytes parsed so far, including any
// in-progress (not-yet-coalesced) field buffers.
func (p *TxParser) Size() int {
	return p.size + p.bufferSize()
}

func (p *TxParser) Empty() bool { return p.Size() == 0 }

// Buffer hands the coalesced transaction bytes to the caller and resets the
// parser for reuse, matching tx_parser::buffer()'s move-out semantics.
func (p *TxParser) Buffer() []byte {
	out := p.buffer
	p.buffer = nil
	p.size = 0
	p.state = txStateVersion
	return out
}

func (p *TxParser) Clear() {
	*p = TxParser{}
}
