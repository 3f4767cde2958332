package primitives

import "encoding/binary"

// compactSizeLen returns the total encoded length (prefix byte included) a
// compact-size value starting with lead is expected to occupy, mirroring
// cmpt_deser_size in the original implementation's net/cmpct_size.cpp.
func compactSizeLen(lead byte) int {
	switch {
	case lead < 0xfd:
		return 1
	case lead == 0xfd:
		return 3
	case lead == 0xfe:
		return 5
	default: // 0xff
		return 9
	}
}

// ParseCompactSize decodes a Bitcoin compact-size (varint) from the front of
// s. It returns the value and how many bytes were consumed. If s does not
// yet hold a complete encoding, consumed is 0 and needed is the number of
// bytes required to decode it — the same (bytes_read, bytes_reqd) contract
// as parse_compact_size in cmpct_size.cpp.
func ParseCompactSize(s []byte) (value uint64, consumed int, needed int) {
	if len(s) == 0 {
		return 0, 0, 1
	}

	length := compactSizeLen(s[0])
	if length > len(s) {
		return 0, 0, length
	}

	switch length {
	case 1:
		return uint64(s[0]), 1, 0
	case 3:
		return uint64(binary.LittleEndian.Uint16(s[1:3])), 3, 0
	case 5:
		return uint64(binary.LittleEndian.Uint32(s[1:5])), 5, 0
	case 9:
		return binary.LittleEndian.Uint64(s[1:9]), 9, 0
	}

	// unreachable: compactSizeLen only returns one of the above.
	return 0, 0, 0
}

// PutCompactSize appends the compact-size encoding of v to dst and returns
// the extended slice.
func PutCompactSize(dst []byte, v uint64) []byte {
	switch {
	case v < 0xfd:
		return append(dst, byte(v))
	case v <= 0xffff:
		buf := make([]byte, 2)
		binary.LittleEndian.PutUint16(buf, uint16(v))
		return append(append(dst, 0xfd), buf...)
	case v <= 0xffffffff:
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, uint32(v))
		return append(append(dst, 0xfe), buf...)
	default:
		buf := make([]byte, 8)
		binary.LittleEndian.PutUint64(buf, v)
		return append(append(dst, 0xff), buf...)
	}
}

// CompactSizeLen returns the number of bytes PutCompactSize would emit for v.
func CompactSizeLen(v uint64) int {
	switch {
	case v < 0xfd:
		return 1
	case v <= 0xffff:
		return 3
	case v <= 0xffffffff:
		return 5
	default:
		return 9
	}
}
