package primitives

import "github.com/libsv/go-bt/v2/bscript"

// Instruction is a single decoded script element: an opcode plus its
// operand, if the opcode pushes data. Grounded on instruction.h/
// instruction_iterator.h: most opcodes carry no operand, but 0x01-0x4b push
// that many bytes, and OP_PUSHDATAn pushes a length read from the n bytes
// that follow the opcode.
type Instruction struct {
	Opcode  byte
	Offset  int8 // bytes between the opcode and the start of Operand
	Operand []byte
}

// decodeInstruction mirrors decode_instruction: it reports whether s begins
// with a well-formed instruction, and if so its opcode/offset/operand
// length. A false status means s is too short to contain the data the
// opcode promises and the caller should treat it as script corruption.
func decodeInstruction(s []byte) (ok bool, opcode byte, offset int8, length int) {
	if len(s) == 0 {
		return false, byte(bscript.OpINVALIDOPCODE), 0, 0
	}

	opcode = s[0]
	if opcode > byte(bscript.OpPUSHDATA4) || opcode == 0 {
		return true, opcode, 0, 0
	}

	rest := s[1:]
	if len(rest) == 0 {
		return false, byte(bscript.OpINVALIDOPCODE), 0, 0
	}

	if opcode < byte(bscript.OpPUSHDATA1) {
		// opcodes 0x01-0x4b are themselves the push length
		if int(opcode) <= len(rest) {
			return true, opcode, 0, int(opcode)
		}
		return false, byte(bscript.OpINVALIDOPCODE), 0, 0
	}

	switch opcode {
	case byte(bscript.OpPUSHDATA1):
		if len(rest) < 1 {
			return false, byte(bscript.OpINVALIDOPCODE), 0, 0
		}
		n := int(rest[0])
		if n > len(rest)-1 {
			return false, byte(bscript.OpINVALIDOPCODE), 0, 0
		}
		return true, opcode, 1, n

	case byte(bscript.OpPUSHDATA2):
		if len(rest) < 2 {
			return false, byte(bscript.OpINVALIDOPCODE), 0, 0
		}
		n := int(uint16(rest[0]) | uint16(rest[1])<<8)
		if n > len(rest)-2 {
			return false, byte(bscript.OpINVALIDOPCODE), 0, 0
		}
		return true, opcode, 2, n

	case byte(bscript.OpPUSHDATA4):
		if len(rest) < 4 {
			return false, byte(bscript.OpINVALIDOPCODE), 0, 0
		}
		n := int(uint32(rest[0]) | uint32(rest[1])<<8 | uint32(rest[2])<<16 | uint32(rest[3])<<24)
		if n > len(rest)-4 {
			return false, byte(bscript.OpINVALIDOPCODE), 0, 0
		}
		return true, opcode, 4, n
	}

	return true, opcode, 0, 0
}

// InstructionIterator walks a script buffer one Instruction at a time,
// stopping (Valid() == false) as soon as it meets truncated push data —
// the same failure mode instruction_iterator signals by going "invalid"
// rather than panicking.
type InstructionIterator struct {
	remaining []byte
	valid     bool
	current   Instruction
}

// NewInstructionIterator builds an iterator positioned at the first
// instruction in s.
func NewInstructionIterator(s []byte) *InstructionIterator {
	it := &InstructionIterator{remaining: s}
	it.decodeCurrent()
	return it
}

func (it *InstructionIterator) decodeCurrent() {
	ok, opcode, offset, length := decodeInstruction(it.remaining)
	it.valid = ok
	if !ok {
		it.current = Instruction{}
		return
	}

	start := 1 + int(offset)
	var operand []byte
	if length > 0 {
		operand = it.remaining[start : start+length]
	}
	it.current = Instruction{Opcode: opcode, Offset: offset, Operand: operand}
}

// Valid reports whether the iterator is positioned at a well-formed
// instruction. Once invalid, it never recovers.
func (it *InstructionIterator) Valid() bool {
	return it.valid
}

// Current returns the instruction the iterator is positioned at. Only
// meaningful while Valid().
func (it *InstructionIterator) Current() Instruction {
	return it.current
}

// Next advances to the following instruction. Calling Next on an invalid
// iterator moves it to the end of the buffer.
func (it *InstructionIterator) Next() {
	if !it.valid {
		it.remaining = it.remaining[len(it.remaining):]
		return
	}

	delta := 1 + int(it.current.Offset) + len(it.current.Operand)
	it.remaining = it.remaining[delta:]
	it.decodeCurrent()
}

// Done reports whether the iterator has consumed the whole buffer.
func (it *InstructionIterator) Done() bool {
	return len(it.remaining) == 0
}
