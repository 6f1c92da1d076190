// Package ncw implements the compressed-PCM sub-codec embedded in the
// binary instrument containers. Audio is split into fixed-size blocks per
// channel; each block stores either bit-packed deltas from a base value,
// bit-truncated absolute values, or a constant fill. Stereo blocks may be
// mid/side encoded and are recombined to left/right on decode.
package ncw

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

const (
	// BlockFrames is the number of sample frames per channel block.
	BlockFrames = 512

	headerSize      = 120
	blockHeaderSize = 16

	flagMidSide = 0x0001
)

var (
	fileMagic  = [4]byte{0x01, 0xA8, 0x9E, 0xD6}
	blockMagic = [4]byte{0x16, 0x0C, 0x9A, 0x3E}
)

// Header describes one encoded payload. Bits is read from the payload
// header, never assumed; both 16 and 24-bit payloads occur in the wild.
type Header struct {
	Channels   int
	Bits       int
	SampleRate int
	NumFrames  int
}

type fileHeader struct {
	Magic          [4]byte
	Channels       uint16
	Bits           uint16
	SampleRate     uint32
	NumFrames      uint32
	BlockDefOffset uint32
	BlocksOffset   uint32
	BlocksSize     uint32
	Reserved       [headerSize - 28]byte
}

type blockHeader struct {
	Magic     [4]byte
	BaseValue int32
	BitCount  int16
	Flags     uint16
	Reserved  uint32
}

func readFileHeader(r io.Reader) (fileHeader, error) {
	var fh fileHeader
	if err := binary.Read(r, binary.LittleEndian, &fh); err != nil {
		return fileHeader{}, fmt.Errorf("binary.Read: %w", err)
	}
	if fh.Magic != fileMagic {
		return fileHeader{}, fmt.Errorf("bad signature % X", fh.Magic)
	}
	if fh.Bits != 16 && fh.Bits != 24 {
		return fileHeader{}, fmt.Errorf("unsupported bit depth %d", fh.Bits)
	}
	if fh.Channels < 1 || fh.Channels > 2 {
		return fileHeader{}, fmt.Errorf("unsupported channel count %d", fh.Channels)
	}
	return fh, nil
}

func (fh *fileHeader) header() Header {
	return Header{
		Channels:   int(fh.Channels),
		Bits:       int(fh.Bits),
		SampleRate: int(fh.SampleRate),
		NumFrames:  int(fh.NumFrames),
	}
}

// ReadHeader parses just the payload header, enough for audio metadata
// probing without decoding any blocks.
func ReadHeader(r io.Reader) (Header, error) {
	fh, err := readFileHeader(r)
	if err != nil {
		return Header{}, err
	}
	return fh.header(), nil
}

// Decode decodes a whole payload into interleaved linear PCM frames.
func Decode(data []byte) (Header, []int, error) {
	fh, err := readFileHeader(bytes.NewReader(data))
	if err != nil {
		return Header{}, nil, err
	}
	h := fh.header()
	if int(fh.BlocksOffset) > len(data) || fh.BlockDefOffset > fh.BlocksOffset {
		return Header{}, nil, fmt.Errorf("block table outside payload")
	}
	numBlocks := int(fh.BlocksOffset-fh.BlockDefOffset) / 4
	offsets := make([]uint32, numBlocks)
	ot := bytes.NewReader(data[fh.BlockDefOffset:fh.BlocksOffset])
	if err := binary.Read(ot, binary.LittleEndian, &offsets); err != nil {
		return Header{}, nil, fmt.Errorf("binary.Read: %w", err)
	}

	samples := make([]int, h.NumFrames*h.Channels)
	frame := 0
	channel := make([][BlockFrames]int, h.Channels)
	for _, off := range offsets {
		pos := int(fh.BlocksOffset) + int(off)
		midSide := false
		for c := 0; c < h.Channels; c++ {
			var bh blockHeader
			if pos+blockHeaderSize > len(data) {
				return Header{}, nil, fmt.Errorf("block header outside payload")
			}
			br := bytes.NewReader(data[pos : pos+blockHeaderSize])
			if err := binary.Read(br, binary.LittleEndian, &bh); err != nil {
				return Header{}, nil, fmt.Errorf("binary.Read: %w", err)
			}
			if bh.Magic != blockMagic {
				return Header{}, nil, fmt.Errorf("bad block signature % X at offset %d", bh.Magic, pos)
			}
			pos += blockHeaderSize
			bits := int(bh.BitCount)
			if bits < 0 {
				bits = -bits
			}
			dataLen := BlockFrames * bits / 8
			if pos+dataLen > len(data) {
				return Header{}, nil, fmt.Errorf("block data outside payload")
			}
			if err := decodeBlock(&bh, data[pos:pos+dataLen], &channel[c]); err != nil {
				return Header{}, nil, err
			}
			pos += dataLen
			if bh.Flags&flagMidSide != 0 {
				midSide = true
			}
		}
		if midSide && h.Channels == 2 {
			for i := 0; i < BlockFrames; i++ {
				mid, side := channel[0][i], channel[1][i]
				channel[0][i] = mid + side
				channel[1][i] = mid - side
			}
		}
		for i := 0; i < BlockFrames && frame < h.NumFrames; i++ {
			for c := 0; c < h.Channels; c++ {
				samples[frame*h.Channels+c] = channel[c][i]
			}
			frame++
		}
	}
	if frame < h.NumFrames {
		return Header{}, nil, fmt.Errorf("payload truncated: %d of %d frames", frame, h.NumFrames)
	}
	return h, samples, nil
}

func decodeBlock(bh *blockHeader, data []byte, out *[BlockFrames]int) error {
	switch {
	case bh.BitCount == 0:
		for i := range out {
			out[i] = int(bh.BaseValue)
		}
	case bh.BitCount > 0:
		// Bit-packed deltas; the base value is the first sample.
		r := bitReader{data: data}
		cur := int(bh.BaseValue)
		for i := range out {
			out[i] = cur
			v, err := r.read(int(bh.BitCount))
			if err != nil {
				return fmt.Errorf("delta block: %w", err)
			}
			cur += signExtend(v, int(bh.BitCount))
		}
	default:
		// Truncated absolute values.
		bits := int(-bh.BitCount)
		r := bitReader{data: data}
		for i := range out {
			v, err := r.read(bits)
			if err != nil {
				return fmt.Errorf("truncated block: %w", err)
			}
			out[i] = signExtend(v, bits)
		}
	}
	return nil
}

// Encode writes samples (interleaved, h.Channels wide) as an encoded
// payload. Each block picks whichever of delta or truncated representation
// needs fewer bits; constant runs collapse to a bare base value.
func Encode(w io.Writer, h Header, samples []int) error {
	if h.Bits != 16 && h.Bits != 24 {
		return fmt.Errorf("unsupported bit depth %d", h.Bits)
	}
	if len(samples) != h.NumFrames*h.Channels {
		return fmt.Errorf("sample count %d does not match %d frames x %d channels", len(samples), h.NumFrames, h.Channels)
	}
	numBlocks := (h.NumFrames + BlockFrames - 1) / BlockFrames
	offsets := make([]uint32, numBlocks)
	var blocks bytes.Buffer
	var chan0 [BlockFrames]int
	for b := 0; b < numBlocks; b++ {
		offsets[b] = uint32(blocks.Len())
		for c := 0; c < h.Channels; c++ {
			for i := 0; i < BlockFrames; i++ {
				frame := b*BlockFrames + i
				if frame < h.NumFrames {
					chan0[i] = samples[frame*h.Channels+c]
				} else {
					chan0[i] = 0
				}
			}
			if err := encodeBlock(&blocks, &chan0); err != nil {
				return err
			}
		}
	}
	fh := fileHeader{
		Magic:          fileMagic,
		Channels:       uint16(h.Channels),
		Bits:           uint16(h.Bits),
		SampleRate:     uint32(h.SampleRate),
		NumFrames:      uint32(h.NumFrames),
		BlockDefOffset: headerSize,
		BlocksOffset:   uint32(headerSize + 4*numBlocks),
		BlocksSize:     uint32(blocks.Len()),
	}
	if err := binary.Write(w, binary.LittleEndian, &fh); err != nil {
		return fmt.Errorf("binary.Write: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, offsets); err != nil {
		return fmt.Errorf("binary.Write: %w", err)
	}
	if _, err := w.Write(blocks.Bytes()); err != nil {
		return fmt.Errorf("write blocks: %w", err)
	}
	return nil
}

func encodeBlock(w *bytes.Buffer, samples *[BlockFrames]int) error {
	constant := true
	for _, s := range samples {
		if s != samples[0] {
			constant = false
			break
		}
	}
	bh := blockHeader{Magic: blockMagic, BaseValue: int32(samples[0])}
	if constant {
		return binary.Write(w, binary.LittleEndian, &bh)
	}
	deltaBits, absBits := 1, 1
	prev := samples[0]
	for i, s := range samples {
		if n := signedBits(s); n > absBits {
			absBits = n
		}
		if i > 0 {
			if n := signedBits(s - prev); n > deltaBits {
				deltaBits = n
			}
			prev = s
		}
	}
	// Pack to whole bytes so the block data length is well defined.
	deltaBits = (deltaBits + 7) &^ 7
	absBits = (absBits + 7) &^ 7
	var bw bitWriter
	if deltaBits <= absBits {
		bh.BitCount = int16(deltaBits)
		prev = samples[0]
		for i := 1; i < BlockFrames; i++ {
			bw.write(uint32(samples[i]-prev), deltaBits)
			prev = samples[i]
		}
		bw.write(0, deltaBits) // trailing delta beyond the block
	} else {
		bh.BitCount = int16(-absBits)
		for _, s := range samples {
			bw.write(uint32(s), absBits)
		}
	}
	if err := binary.Write(w, binary.LittleEndian, &bh); err != nil {
		return fmt.Errorf("binary.Write: %w", err)
	}
	if _, err := w.Write(bw.data); err != nil {
		return fmt.Errorf("write block data: %w", err)
	}
	return nil
}

// signedBits returns how many bits a two's complement representation of v
// needs.
func signedBits(v int) int {
	if v < 0 {
		v = ^v
	}
	n := 1
	for v != 0 {
		v >>= 1
		n++
	}
	return n
}
