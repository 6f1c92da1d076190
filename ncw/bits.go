package ncw

import "errors"

var errOutOfBits = errors.New("bit stream exhausted")

// bitReader reads little-endian bit fields, least significant bit first,
// matching how the block payloads are packed.
type bitReader struct {
	data []byte
	pos  int // in bits
}

func (b *bitReader) read(n int) (uint32, error) {
	if b.pos+n > len(b.data)*8 {
		return 0, errOutOfBits
	}
	var v uint32
	for i := 0; i < n; i++ {
		byteIndex := (b.pos + i) >> 3
		bitIndex := (b.pos + i) & 7
		if b.data[byteIndex]&(1<<bitIndex) != 0 {
			v |= 1 << i
		}
	}
	b.pos += n
	return v, nil
}

// signExtend interprets the low bits of v as a two's complement number.
func signExtend(v uint32, bits int) int {
	shift := 32 - bits
	return int(int32(v<<shift) >> shift)
}

type bitWriter struct {
	data []byte
	pos  int // in bits
}

func (b *bitWriter) write(v uint32, n int) {
	for i := 0; i < n; i++ {
		byteIndex := (b.pos + i) >> 3
		for byteIndex >= len(b.data) {
			b.data = append(b.data, 0)
		}
		if v&(1<<i) != 0 {
			b.data[byteIndex] |= 1 << ((b.pos + i) & 7)
		}
	}
	b.pos += n
}
