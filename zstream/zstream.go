// Package zstream packs and unpacks the zlib-wrapped metadata blocks
// embedded in the binary containers.
package zstream

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zlib"

	"github.com/aleksisuo/multisample"
)

// DefaultLevel is the fixed compression level the container writers use, for
// reproducible output.
const DefaultLevel = 6

// Decompress reads one zlib stream from r and returns the decompressed
// bytes. An invalid header or checksum surfaces as a CorruptedStreamError so
// the caller can fail just the affected file.
func Decompress(r io.Reader) ([]byte, error) {
	zr, err := zlib.NewReader(r)
	if err != nil {
		return nil, &multisample.CorruptedStreamError{Err: err}
	}
	defer zr.Close()
	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, &multisample.CorruptedStreamError{Err: err}
	}
	return data, nil
}

// Compress writes data to w as one zlib stream. Level runs from
// flate.NoCompression to flate.BestCompression; values outside that range
// fall back to DefaultLevel.
func Compress(w io.Writer, data []byte, level int) error {
	if level < flate.NoCompression || level > flate.BestCompression {
		level = DefaultLevel
	}
	zw, err := zlib.NewWriterLevel(w, level)
	if err != nil {
		return fmt.Errorf("zlib.NewWriterLevel: %w", err)
	}
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return fmt.Errorf("zlib write: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("zlib close: %w", err)
	}
	return nil
}
