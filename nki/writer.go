package nki

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/aleksisuo/multisample"
	"github.com/aleksisuo/multisample/zstream"
)

// Writer writes one container variant. The header constants that are merely
// observed in legacy files are emitted verbatim from the variant spec.
type Writer struct {
	variant Variant
	spec    *variantSpec

	// Now supplies the header timestamp; replaceable for reproducible
	// output.
	Now func() time.Time
	// Level is the zlib level of the metadata block.
	Level int
}

func NewWriter(v Variant) (*Writer, error) {
	spec, ok := variantSpecs[v]
	if !ok {
		return nil, fmt.Errorf("no writer for variant %d", int(v))
	}
	return &Writer{variant: v, spec: spec, Now: time.Now, Level: zstream.DefaultLevel}, nil
}

// Write emits one instrument as a container. sampleFolderName is the name of
// the sibling folder holding the external sample files; sizeOfSamples is the
// total raw byte count of all referenced sample payloads, supplied by the
// caller that wrote them.
func (w *Writer) Write(out io.Writer, instr *multisample.Instrument, sampleFolderName string, sizeOfSamples uint32, notifier multisample.Notifier) error {
	if w.spec.monolith {
		return w.WriteMonolith(out, []*multisample.Instrument{instr}, notifier)
	}
	metadata, err := w.compressMetadata(instr, sampleFolderName, notifier)
	if err != nil {
		return err
	}
	h := w.newHeader(w.spec.offsetField, sizeOfSamples)
	if err := h.write(out, w.spec); err != nil {
		return err
	}
	if _, err := out.Write(metadata); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

// WriteMonolith emits several instruments and their embedded payloads as one
// monolith container.
func (w *Writer) WriteMonolith(out io.Writer, instruments []*multisample.Instrument, notifier multisample.Notifier) error {
	if !w.spec.monolith {
		return fmt.Errorf("%v is not a monolith variant", w.spec.name)
	}
	layout, err := buildMonolithLayout(instruments, w.spec)
	if err != nil {
		return err
	}
	doc := buildDocument(instruments, w.spec, "", notifier)
	text, err := doc.WriteToBytes()
	if err != nil {
		return fmt.Errorf("serialize metadata: %w", err)
	}
	var compressed bytes.Buffer
	if err := zstream.Compress(&compressed, text, w.Level); err != nil {
		return err
	}
	h := w.newHeader(layout.metadataOffset(), uint32(layout.payloads.Len()))
	if err := h.write(out, w.spec); err != nil {
		return err
	}
	if _, err := out.Write(layout.table.Bytes()); err != nil {
		return fmt.Errorf("write file table: %w", err)
	}
	if _, err := out.Write(layout.payloads.Bytes()); err != nil {
		return fmt.Errorf("write payloads: %w", err)
	}
	if _, err := out.Write(compressed.Bytes()); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

func (w *Writer) newHeader(offset, sizeOfSamples uint32) header {
	return header{
		magic:      w.spec.magic,
		offset:     offset,
		version:    w.spec.headerVersion,
		flags:      w.spec.flags,
		reserved1:  w.spec.reserved1,
		reserved2:  w.spec.reserved2,
		reserved3:  w.spec.reserved3,
		timestamp:  uint32(w.Now().Unix()),
		sampleSize: sizeOfSamples,
		reserved4:  w.spec.reserved4,
	}
}

func (w *Writer) compressMetadata(instr *multisample.Instrument, sampleFolderName string, notifier multisample.Notifier) ([]byte, error) {
	doc := buildDocument([]*multisample.Instrument{instr}, w.spec, sampleFolderName, notifier)
	text, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("serialize metadata: %w", err)
	}
	var compressed bytes.Buffer
	if err := zstream.Compress(&compressed, text, w.Level); err != nil {
		return nil, err
	}
	return compressed.Bytes(), nil
}
