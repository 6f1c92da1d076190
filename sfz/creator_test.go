package sfz

import (
	"io"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleksisuo/multisample"
)

type stubSampleData struct {
	meta    multisample.AudioMetadata
	payload []byte
}

func (s *stubSampleData) AudioMetadata() (multisample.AudioMetadata, error) {
	return s.meta, nil
}

func (s *stubSampleData) WriteSample(w io.WriteSeeker) error {
	_, err := w.Write(s.payload)
	return err
}

func metadataFor(t *testing.T, zone multisample.Zone) string {
	t.Helper()
	instr := &multisample.Instrument{
		Name:   "Test",
		Groups: []multisample.Group{{Name: "g", Zones: []multisample.Zone{zone}}},
	}
	return createMetadata("Test Samples", instr, multisample.NopNotifier{})
}

func TestCreateWritesFileAndSamples(t *testing.T) {
	zone := multisample.NewZone("C4")
	zone.SamplePath = "stuff/C4.wav"
	zone.KeyRoot, zone.KeyLow, zone.KeyHigh = 60, 55, 65
	zone.Data = &stubSampleData{payload: []byte("rendered wav")}
	instr := &multisample.Instrument{
		Name:     "My: Piano",
		Metadata: multisample.Metadata{Creator: "Someone", Description: "line one\nline two"},
		Groups:   []multisample.Group{{Name: "main", Zones: []multisample.Zone{zone}}},
	}

	fs := afero.NewMemMapFs()
	c := Creator{}
	assert.Equal(t, "SFZ", c.Format())
	require.NoError(t, c.Create(fs, "/out", instr, multisample.NopNotifier{}))

	text, err := afero.ReadFile(fs, "/out/My_ Piano.sfz")
	require.NoError(t, err)
	s := string(text)
	assert.Contains(t, s, "//// Creator : Someone")
	assert.Contains(t, s, "//// line one\n//// line two")
	assert.Contains(t, s, "<global>\nglobal_label=My: Piano")
	assert.Contains(t, s, "group_label=main")
	assert.Contains(t, s, "sample=My_ Piano Samples/C4.wav")
	assert.Contains(t, s, "pitch_keycenter=60\nlokey=55 hikey=65\n")

	payload, err := afero.ReadFile(fs, "/out/My_ Piano Samples/C4.wav")
	require.NoError(t, err)
	assert.Equal(t, []byte("rendered wav"), payload)

	err = c.Create(fs, "/out", instr, multisample.NopNotifier{})
	assert.ErrorContains(t, err, "already exists")
}

func TestSingleKeyCollapses(t *testing.T) {
	zone := multisample.NewZone("z")
	zone.SamplePath = "a.wav"
	zone.KeyRoot, zone.KeyLow, zone.KeyHigh = 42, 42, 42
	s := metadataFor(t, zone)
	assert.Contains(t, s, "key=42\n")
	assert.NotContains(t, s, "pitch_keycenter")
	assert.NotContains(t, s, "lokey")
}

func TestVelocityOpcodesOnlyWhenNarrowed(t *testing.T) {
	zone := multisample.NewZone("z")
	zone.SamplePath = "a.wav"
	s := metadataFor(t, zone)
	assert.NotContains(t, s, "lovel")
	assert.NotContains(t, s, "hivel")

	zone.VelocityLow, zone.VelocityHigh = 20, 100
	s = metadataFor(t, zone)
	assert.Contains(t, s, "lovel=20 hivel=100\n")
}

func TestKeyAndVelocityCrossfadesClamp(t *testing.T) {
	zone := multisample.NewZone("z")
	zone.SamplePath = "a.wav"
	zone.KeyRoot, zone.KeyLow, zone.KeyHigh = 60, 2, 125
	zone.KeyCrossfadeLow, zone.KeyCrossfadeHigh = 5, 5
	zone.VelocityLow, zone.VelocityHigh = 3, 126
	zone.VelocityCrossfadeLow, zone.VelocityCrossfadeHigh = 10, 10
	s := metadataFor(t, zone)
	assert.Contains(t, s, "xfin_lokey=0 xfin_hikey=2")
	assert.Contains(t, s, "xfout_lokey=125 xfout_hikey=127")
	assert.Contains(t, s, "xfin_lovel=0 xfin_hivel=3")
	assert.Contains(t, s, "xfout_lovel=126 xfout_hivel=127")
}

func TestRoundRobinSequence(t *testing.T) {
	a := multisample.NewZone("a")
	a.SamplePath = "a.wav"
	a.PlayLogic = multisample.PlayRoundRobin
	b := multisample.NewZone("b")
	b.SamplePath = "b.wav"
	c := multisample.NewZone("c")
	c.SamplePath = "c.wav"
	c.PlayLogic = multisample.PlayRoundRobin

	instr := &multisample.Instrument{
		Name:   "RR",
		Groups: []multisample.Group{{Name: "g", Zones: []multisample.Zone{a, b, c}}},
	}
	s := createMetadata("RR Samples", instr, multisample.NopNotifier{})
	assert.Contains(t, s, "seq_length=2")
	// Only round-robin zones advance the sequence counter.
	assert.Contains(t, s, "sample=RR Samples/a.wav\nseq_position=1")
	assert.Contains(t, s, "sample=RR Samples/c.wav\nseq_position=2")
	assert.NotContains(t, s, "sample=RR Samples/b.wav\nseq_position")
}

func TestTriggerOpcode(t *testing.T) {
	zone := multisample.NewZone("z")
	zone.SamplePath = "a.wav"
	instr := &multisample.Instrument{
		Name:   "T",
		Groups: []multisample.Group{{Name: "g", Trigger: multisample.TriggerRelease, Zones: []multisample.Zone{zone}}},
	}
	s := createMetadata("T Samples", instr, multisample.NopNotifier{})
	assert.Contains(t, s, "trigger=release")
}

func TestLoopCrossfadeSeconds(t *testing.T) {
	zone := multisample.NewZone("z")
	zone.SamplePath = "a.wav"
	zone.Loops = []multisample.Loop{{Start: 1000, End: 45100, Crossfade: 0.5}}
	zone.Data = &stubSampleData{meta: multisample.AudioMetadata{SampleRate: 44100, BitDepth: 16, Channels: 1}}
	s := metadataFor(t, zone)
	// 0.5 * 44100 frames / 44100 Hz rounds to one second.
	assert.Contains(t, s, "loop_mode=loop_continuous loop_start=1000 loop_end=45100 loop_crossfade=1")
}

func TestLoopCrossfadeRoundsToZeroForShortLoops(t *testing.T) {
	zone := multisample.NewZone("z")
	zone.SamplePath = "a.wav"
	zone.Loops = []multisample.Loop{{Start: 1000, End: 5000, Crossfade: 0.1}}
	zone.Data = &stubSampleData{meta: multisample.AudioMetadata{SampleRate: 44100}}
	s := metadataFor(t, zone)
	assert.Contains(t, s, "loop_crossfade=0")
}

func TestLoopTypes(t *testing.T) {
	zone := multisample.NewZone("z")
	zone.SamplePath = "a.wav"
	s := metadataFor(t, zone)
	assert.Contains(t, s, "loop_mode=no_loop")

	zone.Loops = []multisample.Loop{{Type: multisample.LoopAlternating, Start: 10, End: 90}}
	s = metadataFor(t, zone)
	assert.Contains(t, s, "loop_mode=loop_continuous loop_type=alternate loop_start=10 loop_end=90")
}

func TestEnvelopeSkipsUnsetFields(t *testing.T) {
	zone := multisample.NewZone("z")
	zone.SamplePath = "a.wav"
	zone.AmplitudeModulator = multisample.Modulator{
		Depth: 1,
		Source: multisample.Envelope{
			Delay: -1, Attack: 0.25, Hold: -1, Decay: -1, Release: 1.5,
			StartLevel: 0.5, SustainLevel: 0.8,
		},
	}
	s := metadataFor(t, zone)
	assert.Contains(t, s, "ampeg_attack=0.25 ampeg_release=1.5 ampeg_start=50 ampeg_sustain=80\n")
	assert.NotContains(t, s, "ampeg_delay")
	assert.NotContains(t, s, "ampeg_hold")
	assert.NotContains(t, s, "ampeg_decay")
}

func TestFilterOpcodes(t *testing.T) {
	zone := multisample.NewZone("z")
	zone.SamplePath = "a.wav"
	zone.Filter = &multisample.Filter{
		Type:      multisample.FilterHighPass,
		Poles:     9,
		Cutoff:    1234.5,
		Resonance: 99,
		CutoffModulator: multisample.Modulator{
			Depth:  24,
			Source: multisample.Envelope{Delay: -1, Attack: -1, Hold: -1, Decay: 0.5, Release: -1, SustainLevel: 1},
		},
	}
	s := metadataFor(t, zone)
	assert.Contains(t, s, "fil_type=hpf_4p cutoff=1234.5 resonance=40")
	assert.Contains(t, s, "fileg_depth=24")
	assert.Contains(t, s, "fileg_decay=0.5 fileg_start=0 fileg_sustain=100\n")
}

func TestPitchOpcodes(t *testing.T) {
	zone := multisample.NewZone("z")
	zone.SamplePath = "a.wav"
	zone.TuneCents = 12.6
	zone.KeyTracking = 0.5
	zone.Panorama = -0.25
	zone.Gain = -6.5
	zone.BendUp, zone.BendDown = 200, 100
	zone.PitchModulator = multisample.Modulator{
		Depth:  1200,
		Source: multisample.Envelope{Delay: -1, Attack: -1, Hold: -1, Decay: 0.3, Release: -1, SustainLevel: 0},
	}
	s := metadataFor(t, zone)
	assert.Contains(t, s, "tune=13\n")
	assert.Contains(t, s, "pitch_keytrack=50\n")
	assert.Contains(t, s, "pan=-25\n")
	assert.Contains(t, s, "volume=-6.5\n")
	assert.Contains(t, s, "bend_up=200\n")
	assert.Contains(t, s, "bend_down=100\n")
	assert.Contains(t, s, "pitcheg_depth=1200\n")
	assert.Contains(t, s, "pitcheg_decay=0.3 pitcheg_start=0 pitcheg_sustain=0\n")
}

func TestSampleFileName(t *testing.T) {
	zone := multisample.NewZone("Zone Name")
	zone.SamplePath = "dir/take.ncw"
	assert.Equal(t, "take.wav", sampleFileName(&zone))
	zone.SamplePath = "dir/take.wav"
	assert.Equal(t, "take.wav", sampleFileName(&zone))
	zone.SamplePath = ""
	assert.Equal(t, "Zone Name.wav", sampleFileName(&zone))
}

func TestReversedAndOffsets(t *testing.T) {
	zone := multisample.NewZone("z")
	zone.SamplePath = "a.wav"
	zone.Reversed = true
	zone.Start, zone.Stop = 100, 40000
	s := metadataFor(t, zone)
	assert.Contains(t, s, "direction=reverse")
	assert.Contains(t, s, "offset=100 end=40000\n")
}

func TestWriteSamplesSkipsMissingData(t *testing.T) {
	withData := multisample.NewZone("a")
	withData.SamplePath = "a.wav"
	withData.Data = &stubSampleData{payload: []byte("x")}
	without := multisample.NewZone("b")
	without.SamplePath = "b.wav"

	instr := &multisample.Instrument{
		Name:   "S",
		Groups: []multisample.Group{{Name: "g", Zones: []multisample.Zone{withData, without}}},
	}
	fs := afero.NewMemMapFs()
	collector := &multisample.Collector{}
	require.NoError(t, Creator{}.Create(fs, "/out", instr, collector))

	exists, _ := afero.Exists(fs, "/out/S Samples/a.wav")
	assert.True(t, exists)
	exists, _ = afero.Exists(fs, "/out/S Samples/b.wav")
	assert.False(t, exists)
	assert.True(t, len(collector.Warnings) > 0)
	assert.True(t, strings.Contains(collector.Warnings[0], "no sample data"))
}
