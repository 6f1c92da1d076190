package nki

import (
	"io"

	"github.com/aleksisuo/multisample"
)

// fixtureInstrument exercises every serialized zone property with values
// that survive a write/parse cycle exactly.
func fixtureInstrument() *multisample.Instrument {
	low := multisample.NewZone("C2")
	low.SamplePath = "Grand Piano Samples/C2.wav"
	low.KeyRoot, low.KeyLow, low.KeyHigh = 36, 24, 47
	low.VelocityLow, low.VelocityHigh = 1, 100
	low.KeyCrossfadeLow, low.KeyCrossfadeHigh = 2, 3
	low.VelocityCrossfadeLow, low.VelocityCrossfadeHigh = 10, 20
	low.TuneCents = 12.5
	low.Panorama = -0.5
	low.Gain = -3.5
	low.BendUp, low.BendDown = 200, 100
	low.Start, low.Stop = 100, 40000
	low.Loops = []multisample.Loop{{Type: multisample.LoopForward, Start: 1000, End: 5000, Crossfade: 0.125}}
	low.Filter = &multisample.Filter{
		Type:      multisample.FilterLowPass,
		Poles:     2,
		Cutoff:    2000,
		Resonance: 5,
		CutoffModulator: multisample.Modulator{
			Depth: 0.75,
			Source: multisample.Envelope{
				Delay: -1, Attack: 0.01, Hold: -1, Decay: 0.25, Release: 0.5,
				SustainLevel: 0.5,
			},
		},
	}
	low.AmplitudeModulator = multisample.Modulator{
		Depth: 1,
		Source: multisample.Envelope{
			Delay: -1, Attack: 0.001, Hold: -1, Decay: -1, Release: 0.5,
			SustainLevel: 1,
		},
	}
	low.PitchModulator = multisample.Modulator{
		Depth: 12,
		Source: multisample.Envelope{
			Delay: -1, Attack: -1, Hold: -1, Decay: 0.5, Release: -1,
			StartLevel: 0.5, SustainLevel: 0,
		},
	}

	hit := multisample.NewZone("Snare RR1")
	hit.SamplePath = "Grand Piano Samples/snare_rr1.wav"
	hit.KeyRoot, hit.KeyLow, hit.KeyHigh = 60, 60, 60
	hit.Reversed = true
	hit.PlayLogic = multisample.PlayRoundRobin
	hit.SequencePosition = 1
	hit.KeyTracking = 0.5

	return &multisample.Instrument{
		Name: "Grand Piano",
		Metadata: multisample.Metadata{
			Creator:     "Fixture Works",
			Category:    "Piano",
			Description: "two-zone fixture",
		},
		Groups: []multisample.Group{
			{Name: "Sustain", Zones: []multisample.Zone{low}},
			{Name: "Release", Trigger: multisample.TriggerRelease, Zones: []multisample.Zone{hit}},
		},
	}
}

// clearSampleData strips the resolved payloads so a parsed instrument can be
// compared against the fixture field by field.
func clearSampleData(instr *multisample.Instrument) {
	for gi := range instr.Groups {
		for zi := range instr.Groups[gi].Zones {
			instr.Groups[gi].Zones[zi].Data = nil
		}
	}
}

// stubSampleData writes fixed bytes as its payload.
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
