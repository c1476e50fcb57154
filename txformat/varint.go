package txformat

import (
	"encoding/binary"
	"fmt"
)

// AppendCompactSize encodes n as a Bitcoin-style CompactSize varint and
// appends it to dst.
func AppendCompactSize(dst []byte, n uint64) []byte {
	switch {
	case n < 0xfd:
		return append(dst, byte(n))
	case n <= 0xffff:
		var buf [2]byte
		binary.LittleEndian.PutUint16(buf[:], uint16(n))
		return append(append(dst, 0xfd), buf[:]...)
	case n <= 0xffff_ffff:
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], uint32(n))
		return append(append(dst, 0xfe), buf[:]...)
	default:
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], n)
		return append(append(dst, 0xff), buf[:]...)
	}
}

// ReadCompactSize decodes one CompactSize value starting at offset off and
// returns the value along with the offset just past it. Non-minimal
// encodings are rejected. Exported for callers outside this package (row
// codecs) that need to parse a CompactSize-prefixed list without duplicating
// the tag-byte rules.
func ReadCompactSize(b []byte, off int) (uint64, int, error) {
	n, err := readCompactSize(b, &off)
	if err != nil {
		return 0, 0, err
	}
	return n, off, nil
}

// readCompactSize decodes one CompactSize value starting at b[*off], advancing
// *off past it. Non-minimal encodings are rejected.
func readCompactSize(b []byte, off *int) (uint64, error) {
	tag, err := readU8(b, off)
	if err != nil {
		return 0, err
	}
	switch {
	case tag < 0xfd:
		return uint64(tag), nil
	case tag == 0xfd:
		v, err := readU16le(b, off)
		if err != nil {
			return 0, err
		}
		if v < 0xfd {
			return 0, fmt.Errorf("txformat: non-minimal CompactSize (0xfd)")
		}
		return uint64(v), nil
	case tag == 0xfe:
		v, err := readU32le(b, off)
		if err != nil {
			return 0, err
		}
		if v <= 0xffff {
			return 0, fmt.Errorf("txformat: non-minimal CompactSize (0xfe)")
		}
		return uint64(v), nil
	default:
		v, err := readU64le(b, off)
		if err != nil {
			return 0, err
		}
		if v <= 0xffff_ffff {
			return 0, fmt.Errorf("txformat: non-minimal CompactSize (0xff)")
		}
		return v, nil
	}
}
