package nki

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"path"

	"github.com/aleksisuo/multisample"
	"github.com/aleksisuo/multisample/ncw"
)

// A monolith bundles several instruments and their audio in one file. Right
// after the fixed header it carries a file table; each entry names one
// sample and either points at an embedded payload (byte offset and length
// counted from the file start) or, with a zero offset, declares path hints
// for an external lookup. The compressed metadata block follows the payload
// regions and the header's offset field points at it.
//
// Table layout, all integers in the variant's byte order:
//
//	[4] entry count
//	per entry:
//	  [2] name length, name bytes
//	  [4] payload offset (0 = external reference)
//	  [4] payload length
//	  [1] hint count
//	  per hint: [2] length, path bytes ("/" separated, ".." allowed)
type monolithEntry struct {
	name   string
	offset int64
	length int64
	hints  []string
}

func (e *monolithEntry) embedded() bool {
	return e.offset > 0 && e.length > 0
}

func findEntry(table []monolithEntry, ref string) *monolithEntry {
	for i := range table {
		if table[i].name == ref || table[i].name == path.Base(ref) {
			return &table[i]
		}
	}
	return nil
}

func readMonolithTable(f io.ReadSeeker, spec *variantSpec, containerPath string, size int64) ([]monolithEntry, error) {
	corrupted := func(reason string) error {
		return &multisample.CorruptedContainerError{Path: containerPath, Reason: reason}
	}
	if _, err := f.Seek(headerSize, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek file table: %w", err)
	}
	var count uint32
	if err := binary.Read(f, spec.order, &count); err != nil {
		return nil, fmt.Errorf("binary.Read: %w", err)
	}
	if int64(count) > size {
		return nil, corrupted(fmt.Sprintf("implausible file table size %d", count))
	}
	table := make([]monolithEntry, 0, count)
	for i := uint32(0); i < count; i++ {
		name, err := readString16(f, spec.order)
		if err != nil {
			return nil, fmt.Errorf("file table entry %d: %w", i, err)
		}
		var offset, length uint32
		if err := binary.Read(f, spec.order, &offset); err != nil {
			return nil, fmt.Errorf("binary.Read: %w", err)
		}
		if err := binary.Read(f, spec.order, &length); err != nil {
			return nil, fmt.Errorf("binary.Read: %w", err)
		}
		if int64(offset)+int64(length) > size {
			return nil, corrupted(fmt.Sprintf("payload %v extends beyond file length", name))
		}
		var hintCount uint8
		if err := binary.Read(f, spec.order, &hintCount); err != nil {
			return nil, fmt.Errorf("binary.Read: %w", err)
		}
		entry := monolithEntry{name: name, offset: int64(offset), length: int64(length)}
		for h := uint8(0); h < hintCount; h++ {
			hint, err := readString16(f, spec.order)
			if err != nil {
				return nil, fmt.Errorf("file table entry %d hint %d: %w", i, h, err)
			}
			entry.hints = append(entry.hints, hint)
		}
		table = append(table, entry)
	}
	return table, nil
}

func readString16(r io.Reader, order binary.ByteOrder) (string, error) {
	var n uint16
	if err := binary.Read(r, order, &n); err != nil {
		return "", fmt.Errorf("binary.Read: %w", err)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("read string: %w", err)
	}
	return string(buf), nil
}

func writeString16(w io.Writer, order binary.ByteOrder, s string) error {
	if err := binary.Write(w, order, uint16(len(s))); err != nil {
		return fmt.Errorf("binary.Write: %w", err)
	}
	if _, err := w.Write([]byte(s)); err != nil {
		return fmt.Errorf("write string: %w", err)
	}
	return nil
}

// monolithLayout is the assembled table and payload area of a monolith
// being written.
type monolithLayout struct {
	table    bytes.Buffer
	payloads bytes.Buffer
}

// buildMonolithLayout collects every embedded payload of the instruments and
// assembles the file table. Zones whose data is not an encoded payload
// become external references with the zone's declared path as hint.
func buildMonolithLayout(instruments []*multisample.Instrument, spec *variantSpec) (*monolithLayout, error) {
	type pending struct {
		entry monolithEntry
		raw   []byte
	}
	var entries []pending
	seen := make(map[string]bool)
	for _, instr := range instruments {
		for gi := range instr.Groups {
			for zi := range instr.Groups[gi].Zones {
				zone := &instr.Groups[gi].Zones[zi]
				name := path.Base(zone.SamplePath)
				if name == "" || name == "." || seen[name] {
					continue
				}
				seen[name] = true
				if embedded, ok := zone.Data.(*ncw.SampleData); ok {
					entries = append(entries, pending{entry: monolithEntry{name: name}, raw: embedded.Raw})
				} else {
					entries = append(entries, pending{entry: monolithEntry{name: name, hints: hintsFor(zone.SamplePath)}})
				}
			}
		}
	}

	l := &monolithLayout{}
	// The table size must be known before payload offsets are, so size it
	// with zero offsets first and patch afterwards; entry sizes do not
	// depend on the offset values.
	tableSize := 4
	for _, p := range entries {
		tableSize += 2 + len(p.entry.name) + 4 + 4 + 1
		for _, h := range p.entry.hints {
			tableSize += 2 + len(h)
		}
	}
	payloadStart := int64(headerSize + tableSize)
	for i := range entries {
		if entries[i].raw != nil {
			entries[i].entry.offset = payloadStart + int64(l.payloads.Len())
			entries[i].entry.length = int64(len(entries[i].raw))
			l.payloads.Write(entries[i].raw)
		}
	}
	if err := binary.Write(&l.table, spec.order, uint32(len(entries))); err != nil {
		return nil, fmt.Errorf("binary.Write: %w", err)
	}
	for i := range entries {
		e := &entries[i].entry
		if err := writeString16(&l.table, spec.order, e.name); err != nil {
			return nil, err
		}
		if err := binary.Write(&l.table, spec.order, uint32(e.offset)); err != nil {
			return nil, fmt.Errorf("binary.Write: %w", err)
		}
		if err := binary.Write(&l.table, spec.order, uint32(e.length)); err != nil {
			return nil, fmt.Errorf("binary.Write: %w", err)
		}
		if err := binary.Write(&l.table, spec.order, uint8(len(e.hints))); err != nil {
			return nil, fmt.Errorf("binary.Write: %w", err)
		}
		for _, h := range e.hints {
			if err := writeString16(&l.table, spec.order, h); err != nil {
				return nil, err
			}
		}
	}
	if l.table.Len() != tableSize {
		return nil, fmt.Errorf("file table size %d does not match computed %d", l.table.Len(), tableSize)
	}
	return l, nil
}

// metadataOffset returns where the compressed metadata block starts,
// counted from the file start.
func (l *monolithLayout) metadataOffset() uint32 {
	return uint32(headerSize + l.table.Len() + l.payloads.Len())
}
