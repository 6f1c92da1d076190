// Package nki reads and writes the versioned binary instrument container
// family: a fixed-layout header, a zlib-compressed XML metadata block, and
// in the monolith variant an embedded file table with compressed audio
// payloads. One reader/writer pair exists per historical format generation;
// Detect picks the generation from the leading signature bytes.
package nki

import (
	"bytes"
	"encoding/binary"

	"github.com/aleksisuo/multisample"
)

// Variant identifies one container format generation.
type Variant int

const (
	VariantUnknown Variant = iota
	Kontakt1
	Kontakt1BE
	Kontakt2
	Kontakt2Monolith
)

// SignatureLength is how many leading bytes Detect needs. Detection never
// reads past this region; full parsing is the selected reader's job.
const SignatureLength = 4

// variantSpec collects the per-generation constants. The header fields that
// are unknown but observed constant in the legacy files are emitted
// verbatim, never recomputed.
type variantSpec struct {
	name  string
	magic [4]byte
	order binary.ByteOrder
	// Metadata offset field: origin it is counted from (fromStart or
	// fromHeaderEnd) and the constant value written for non-monolith
	// variants, whose metadata directly follows the header.
	offsetFromHeaderEnd bool
	offsetField         uint32
	headerVersion       uint16
	flags               uint16
	reserved1           uint32
	reserved2           uint32
	reserved3           uint32
	reserved4           uint32
	tags                TagSet
	pan                 panScale
	monolith            bool
}

var variantSpecs = map[Variant]*variantSpec{
	Kontakt1: {
		name:          "Kontakt 1",
		magic:         [4]byte{0x5E, 0xE5, 0x6E, 0xB3},
		order:         binary.LittleEndian,
		offsetField:   headerSize,
		headerVersion: 0x50,
		flags:         0x01,
		reserved3:     0x01,
		tags:          nissTags{},
		pan:           gen1Pan,
	},
	Kontakt1BE: {
		name:          "Kontakt 1 (big-endian)",
		magic:         [4]byte{0xB3, 0x6E, 0xE5, 0x5E},
		order:         binary.BigEndian,
		offsetField:   headerSize,
		headerVersion: 0x50,
		flags:         0x01,
		reserved3:     0x01,
		tags:          nissTags{},
		pan:           gen1Pan,
	},
	Kontakt2: {
		name:                "Kontakt 2",
		magic:               [4]byte{0x7F, 0xA8, 0x90, 0x12},
		order:               binary.LittleEndian,
		offsetFromHeaderEnd: true,
		offsetField:         0,
		headerVersion:       0x0110,
		flags:               0x02,
		reserved3:           0x01,
		tags:                k2Tags{},
		pan:                 gen2Pan,
	},
	Kontakt2Monolith: {
		name:          "Kontakt 2 monolith",
		magic:         [4]byte{0x16, 0xCC, 0xF8, 0x0A},
		order:         binary.LittleEndian,
		headerVersion: 0x0110,
		flags:         0x03,
		reserved3:     0x01,
		tags:          k2Tags{},
		pan:           gen2Pan,
		monolith:      true,
	},
}

func (v Variant) String() string {
	if spec, ok := variantSpecs[v]; ok {
		return spec.name
	}
	return "unknown"
}

// Detect maps the leading signature bytes of a file to a container variant.
// Unknown signatures yield an UnsupportedVariantError carrying the attempted
// bytes; I/O problems are the caller's domain and never conflated with this.
func Detect(prefix []byte) (Variant, error) {
	if len(prefix) >= SignatureLength {
		for v, spec := range variantSpecs {
			if bytes.Equal(prefix[:SignatureLength], spec.magic[:]) {
				return v, nil
			}
		}
		prefix = prefix[:SignatureLength]
	}
	sig := make([]byte, len(prefix))
	copy(sig, prefix)
	return VariantUnknown, &multisample.UnsupportedVariantError{Signature: sig}
}
