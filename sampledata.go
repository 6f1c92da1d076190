package multisample

import (
	"fmt"
	"io"
	"sync"

	"github.com/go-audio/wav"
	"github.com/spf13/afero"
)

// AudioMetadata is the resolved format of one sample payload.
type AudioMetadata struct {
	SampleRate int
	BitDepth   int
	Channels   int
}

// SampleData owns one raw audio payload. Implementations resolve the audio
// metadata lazily and cache the outcome, value or error, for their lifetime;
// several zones may share one SampleData read-only (a stereo pair, for
// instance), so resolution must be safe under concurrent access.
type SampleData interface {
	AudioMetadata() (AudioMetadata, error)
	// WriteSample emits the payload as a WAV file. The seeker is needed
	// because the RIFF chunk sizes are patched after the payload is known.
	WriteSample(w io.WriteSeeker) error
}

// FileSampleData is sample data backed by an external WAV file.
type FileSampleData struct {
	FS   afero.Fs
	Path string

	once sync.Once
	meta AudioMetadata
	err  error
}

func NewFileSampleData(fs afero.Fs, path string) *FileSampleData {
	return &FileSampleData{FS: fs, Path: path}
}

// AudioMetadata reads the WAV format chunk. The probe runs at most once; a
// failure is cached and reported again on later calls, it never aborts the
// conversion of the instrument as a whole.
func (s *FileSampleData) AudioMetadata() (AudioMetadata, error) {
	s.once.Do(func() {
		f, err := s.FS.Open(s.Path)
		if err != nil {
			s.err = fmt.Errorf("open sample %v: %w", s.Path, err)
			return
		}
		defer f.Close()
		d := wav.NewDecoder(f)
		d.ReadInfo()
		if err := d.Err(); err != nil {
			s.err = fmt.Errorf("read sample format %v: %w", s.Path, err)
			return
		}
		if d.NumChans == 0 || d.SampleRate == 0 {
			s.err = fmt.Errorf("sample %v has no format chunk", s.Path)
			return
		}
		s.meta = AudioMetadata{
			SampleRate: int(d.SampleRate),
			BitDepth:   int(d.BitDepth),
			Channels:   int(d.NumChans),
		}
	})
	return s.meta, s.err
}

func (s *FileSampleData) WriteSample(w io.WriteSeeker) error {
	f, err := s.FS.Open(s.Path)
	if err != nil {
		return fmt.Errorf("open sample %v: %w", s.Path, err)
	}
	defer f.Close()
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("copy sample %v: %w", s.Path, err)
	}
	return nil
}
