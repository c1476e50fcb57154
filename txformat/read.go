package txformat

import (
	"encoding/binary"
	"fmt"
)

func readU8(b []byte, off *int) (uint8, error) {
	if *off+1 > len(b) {
		return 0, fmt.Errorf("txformat: unexpected EOF (u8)")
	}
	v := b[*off]
	*off++
	return v, nil
}

func readU16le(b []byte, off *int) (uint16, error) {
	if *off+2 > len(b) {
		return 0, fmt.Errorf("txformat: unexpected EOF (u16le)")
	}
	v := binary.LittleEndian.Uint16(b[*off : *off+2])
	*off += 2
	return v, nil
}

func readU32le(b []byte, off *int) (uint32, error) {
	if *off+4 > len(b) {
		return 0, fmt.Errorf("txformat: unexpected EOF (u32le)")
	}
	v := binary.LittleEndian.Uint32(b[*off : *off+4])
	*off += 4
	return v, nil
}

func readU64le(b []byte, off *int) (uint64, error) {
	if *off+8 > len(b) {
		return 0, fmt.Errorf("txformat: unexpected EOF (u64le)")
	}
	v := binary.LittleEndian.Uint64(b[*off : *off+8])
	*off += 8
	return v, nil
}

func readI64le(b []byte, off *int) (int64, error) {
	v, err := readU64le(b, off)
	return int64(v), err
}

func readBytes(b []byte, off *int, n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("txformat: negative length")
	}
	if *off+n > len(b) {
		return nil, fmt.Errorf("txformat: unexpected EOF (bytes)")
	}
	v := b[*off : *off+n]
	*off += n
	return v, nil
}

func readHash(b []byte, off *int) (h [32]byte, err error) {
	raw, err := readBytes(b, off, 32)
	if err != nil {
		return h, err
	}
	copy(h[:], raw)
	return h, nil
}
