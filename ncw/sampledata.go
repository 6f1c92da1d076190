package ncw

import (
	"bytes"
	"io"
	"sync"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/aleksisuo/multisample"
)

// SampleData is sample data embedded in a monolith container as an encoded
// payload. It satisfies multisample.SampleData; the payload is decoded on
// demand and emitted as plain WAV.
type SampleData struct {
	Name string
	Raw  []byte

	once sync.Once
	meta multisample.AudioMetadata
	err  error
}

func NewSampleData(name string, raw []byte) *SampleData {
	return &SampleData{Name: name, Raw: raw}
}

func (s *SampleData) AudioMetadata() (multisample.AudioMetadata, error) {
	s.once.Do(func() {
		h, err := ReadHeader(bytes.NewReader(s.Raw))
		if err != nil {
			s.err = &multisample.AudioDecodeError{Name: s.Name, Err: err}
			return
		}
		s.meta = multisample.AudioMetadata{
			SampleRate: h.SampleRate,
			BitDepth:   h.Bits,
			Channels:   h.Channels,
		}
	})
	return s.meta, s.err
}

func (s *SampleData) WriteSample(w io.WriteSeeker) error {
	h, samples, err := Decode(s.Raw)
	if err != nil {
		return &multisample.AudioDecodeError{Name: s.Name, Err: err}
	}
	enc := wav.NewEncoder(w, h.SampleRate, h.Bits, h.Channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: h.Channels, SampleRate: h.SampleRate},
		Data:           samples,
		SourceBitDepth: h.Bits,
	}
	if err := enc.Write(buf); err != nil {
		enc.Close()
		return &multisample.AudioDecodeError{Name: s.Name, Err: err}
	}
	if err := enc.Close(); err != nil {
		return &multisample.AudioDecodeError{Name: s.Name, Err: err}
	}
	return nil
}
