package nki

import (
	"fmt"
	"io"
)

// headerSize is the byte length of the fixed container header shared by the
// family.
const headerSize = 36

// header is the fixed-layout container header. Every multi-byte field is
// read and written with the variant's byte order; the order is configuration
// carried by the reader/writer instance, never inferred from file content.
type header struct {
	magic      [4]byte
	offset     uint32 // to the compressed metadata, from a variant-defined origin
	version    uint16
	flags      uint16
	reserved1  uint32
	reserved2  uint32
	reserved3  uint32
	timestamp  uint32 // Unix seconds
	sampleSize uint32 // total raw bytes of all referenced sample payloads
	reserved4  uint32
}

func readHeader(r io.Reader, spec *variantSpec) (header, error) {
	var buf [headerSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return header{}, fmt.Errorf("read container header: %w", err)
	}
	var h header
	copy(h.magic[:], buf[0:4])
	o := spec.order
	h.offset = o.Uint32(buf[4:8])
	h.version = o.Uint16(buf[8:10])
	h.flags = o.Uint16(buf[10:12])
	h.reserved1 = o.Uint32(buf[12:16])
	h.reserved2 = o.Uint32(buf[16:20])
	h.reserved3 = o.Uint32(buf[20:24])
	h.timestamp = o.Uint32(buf[24:28])
	h.sampleSize = o.Uint32(buf[28:32])
	h.reserved4 = o.Uint32(buf[32:36])
	return h, nil
}

func (h *header) write(w io.Writer, spec *variantSpec) error {
	var buf [headerSize]byte
	copy(buf[0:4], h.magic[:])
	o := spec.order
	o.PutUint32(buf[4:8], h.offset)
	o.PutUint16(buf[8:10], h.version)
	o.PutUint16(buf[10:12], h.flags)
	o.PutUint32(buf[12:16], h.reserved1)
	o.PutUint32(buf[16:20], h.reserved2)
	o.PutUint32(buf[20:24], h.reserved3)
	o.PutUint32(buf[24:28], h.timestamp)
	o.PutUint32(buf[28:32], h.sampleSize)
	o.PutUint32(buf[32:36], h.reserved4)
	if _, err := w.Write(buf[:]); err != nil {
		return fmt.Errorf("write container header: %w", err)
	}
	return nil
}

// metadataPosition returns the absolute file position of the compressed
// metadata block declared by the header.
func (h *header) metadataPosition(spec *variantSpec) int64 {
	if spec.offsetFromHeaderEnd {
		return headerSize + int64(h.offset)
	}
	return int64(h.offset)
}
