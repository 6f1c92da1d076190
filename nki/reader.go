package nki

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/aleksisuo/multisample"
	"github.com/aleksisuo/multisample/ncw"
	"github.com/aleksisuo/multisample/zstream"
)

// Reader reads one container variant. Get one from NewReader after Detect
// picked the variant; the reader carries the variant's byte order, tag set
// and panning scale so nothing version-specific leaks to callers.
type Reader struct {
	variant Variant
	spec    *variantSpec
}

func NewReader(v Variant) (*Reader, error) {
	spec, ok := variantSpecs[v]
	if !ok {
		return nil, fmt.Errorf("no reader for variant %d", int(v))
	}
	return &Reader{variant: v, spec: spec}, nil
}

// Read parses the container at path into instruments. Problems that affect
// only a single zone (unresolvable or undecodable samples) are reported to
// the notifier and the zone is dropped; a header or stream level problem
// fails the whole file.
func (r *Reader) Read(fs afero.Fs, path string, f io.ReadSeeker, notifier multisample.Notifier) ([]*multisample.Instrument, error) {
	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("seek: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek: %w", err)
	}
	h, err := readHeader(f, r.spec)
	if err != nil {
		return nil, err
	}
	if h.magic != r.spec.magic {
		return nil, &multisample.CorruptedContainerError{Path: path, Reason: fmt.Sprintf("signature % X does not match %v", h.magic, r.spec.name)}
	}
	metadataPos := h.metadataPosition(r.spec)
	if metadataPos < headerSize || metadataPos >= size {
		return nil, &multisample.CorruptedContainerError{Path: path, Reason: fmt.Sprintf("metadata offset %d outside file of %d bytes", metadataPos, size)}
	}

	var table []monolithEntry
	if r.spec.monolith {
		if table, err = readMonolithTable(f, r.spec, path, size); err != nil {
			return nil, err
		}
	}

	if _, err := f.Seek(metadataPos, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek metadata: %w", err)
	}
	metadata, err := zstream.Decompress(f)
	if err != nil {
		return nil, err
	}
	instruments, err := parsePrograms(metadata, r.spec)
	if err != nil {
		return nil, &multisample.CorruptedContainerError{Path: path, Reason: err.Error()}
	}

	resolver := &SampleResolver{FS: fs, BaseDir: filepath.Dir(path)}
	for _, instr := range instruments {
		r.resolveSamples(instr, f, table, resolver, notifier)
	}
	return instruments, nil
}

// resolveSamples binds every zone to its sample data: an embedded monolith
// payload when the file table has one, otherwise an external file lookup.
// Zones whose sample cannot be resolved or decoded are dropped with a
// warning.
func (r *Reader) resolveSamples(instr *multisample.Instrument, f io.ReadSeeker, table []monolithEntry, resolver *SampleResolver, notifier multisample.Notifier) {
	// Payloads referenced several times share one SampleData.
	shared := make(map[string]multisample.SampleData)
	for gi := range instr.Groups {
		group := &instr.Groups[gi]
		kept := group.Zones[:0]
		for zi := range group.Zones {
			zone := &group.Zones[zi]
			data, err := r.resolveZone(zone, f, table, resolver, shared)
			if err != nil {
				notifier.Warn("dropping zone %v: %v", zone.Name, err)
				continue
			}
			zone.Data = data
			kept = append(kept, *zone)
		}
		group.Zones = kept
	}
}

func (r *Reader) resolveZone(zone *multisample.Zone, f io.ReadSeeker, table []monolithEntry, resolver *SampleResolver, shared map[string]multisample.SampleData) (multisample.SampleData, error) {
	key := fmt.Sprintf("%v@%v+%v", zone.SamplePath, zone.SampleOffset, zone.SampleLength)
	if data, ok := shared[key]; ok {
		return data, nil
	}
	var data multisample.SampleData
	if entry := findEntry(table, zone.SamplePath); entry != nil {
		var err error
		if data, err = r.loadEntry(entry, zone, f, resolver); err != nil {
			return nil, err
		}
	} else {
		resolved, err := resolver.Resolve(zone.SamplePath, hintsFor(zone.SamplePath))
		if err != nil {
			return nil, err
		}
		data = multisample.NewFileSampleData(resolver.FS, resolved)
	}
	shared[key] = data
	return data, nil
}

func (r *Reader) loadEntry(entry *monolithEntry, zone *multisample.Zone, f io.ReadSeeker, resolver *SampleResolver) (multisample.SampleData, error) {
	if !entry.embedded() {
		resolved, err := resolver.Resolve(entry.name, entry.hints)
		if err != nil {
			return nil, err
		}
		return multisample.NewFileSampleData(resolver.FS, resolved), nil
	}
	if _, err := f.Seek(entry.offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek payload %v: %w", entry.name, err)
	}
	raw := make([]byte, entry.length)
	if _, err := io.ReadFull(f, raw); err != nil {
		return nil, fmt.Errorf("read payload %v: %w", entry.name, err)
	}
	// The zone may address a byte range inside the entry. The declared range
	// comes straight from the metadata, so it is validated like any other
	// untrusted input before slicing.
	if zone.SampleLength > 0 {
		if zone.SampleOffset < 0 || zone.SampleOffset+zone.SampleLength > int64(len(raw)) {
			return nil, &multisample.AudioDecodeError{Name: entry.name, Err: fmt.Errorf("byte range %d+%d outside payload", zone.SampleOffset, zone.SampleLength)}
		}
		raw = raw[zone.SampleOffset : zone.SampleOffset+zone.SampleLength]
	}
	// Reject undecodable payloads now so the zone is dropped instead of
	// failing later in a writer.
	if _, err := ncw.ReadHeader(bytes.NewReader(raw)); err != nil {
		return nil, &multisample.AudioDecodeError{Name: entry.name, Err: err}
	}
	return ncw.NewSampleData(entry.name, raw), nil
}
