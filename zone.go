package multisample

// PlayLogic tells how overlapping zones are chosen on successive triggers.
type PlayLogic int

const (
	PlayAlways PlayLogic = iota
	PlayRoundRobin
)

// Zone maps exactly one sample to a key/velocity region. The sample is
// referenced by a path relative to the container plus an optional byte range
// (monoliths address embedded payloads that way); Data carries the resolved
// payload and may be shared read-only between zones, e.g. for a stereo pair.
type Zone struct {
	Name         string
	SamplePath   string
	SampleOffset int64      `yaml:",omitempty"`
	SampleLength int64      `yaml:",omitempty"`
	Data         SampleData `yaml:"-"`

	KeyRoot, KeyLow, KeyHigh  int
	VelocityLow, VelocityHigh int
	KeyCrossfadeLow           int       `yaml:",omitempty"`
	KeyCrossfadeHigh          int       `yaml:",omitempty"`
	VelocityCrossfadeLow      int       `yaml:",omitempty"`
	VelocityCrossfadeHigh     int       `yaml:",omitempty"`
	Reversed                  bool      `yaml:",omitempty"`
	PlayLogic                 PlayLogic `yaml:",omitempty"`
	SequencePosition          int       `yaml:",omitempty"`
	TuneCents                 float64   `yaml:",omitempty"`
	KeyTracking               float64
	Panorama                  float64 `yaml:",omitempty"`
	Gain                      float64 `yaml:",omitempty"`
	BendUp, BendDown          int     `yaml:",omitempty"`
	Start, Stop               int

	Filter             *Filter `yaml:",omitempty"`
	AmplitudeModulator Modulator
	PitchModulator     Modulator
	Loops              []Loop `yaml:",omitempty"`
}

// NewZone returns a zone with the neutral defaults every reader starts from:
// full key and velocity range, unit key tracking, unset offsets and an unset
// amplitude envelope at full depth.
func NewZone(name string) Zone {
	return Zone{
		Name:               name,
		KeyLow:             0,
		KeyHigh:            127,
		VelocityLow:        1,
		VelocityHigh:       127,
		KeyTracking:        1,
		Start:              -1,
		Stop:               -1,
		AmplitudeModulator: Modulator{Depth: 1, Source: UnsetEnvelope()},
		PitchModulator:     Modulator{Depth: 0, Source: UnsetEnvelope()},
	}
}

func (z *Zone) Copy() Zone {
	ret := *z
	if z.Filter != nil {
		filter := *z.Filter
		ret.Filter = &filter
	}
	ret.Loops = make([]Loop, len(z.Loops))
	copy(ret.Loops, z.Loops)
	return ret
}

// HasSingleKey reports whether root, low and high key collapse to one value,
// in which case writers use the compact single-key form instead of a
// three-value range.
func (z *Zone) HasSingleKey() bool {
	return z.KeyRoot == z.KeyLow && z.KeyLow == z.KeyHigh
}

// LoopType tells the playback direction inside a loop.
type LoopType int

const (
	LoopForward LoopType = iota
	LoopBackward
	LoopAlternating
)

// LoopTypeNames maps loop types to their serialized names. Treat as
// read-only.
var LoopTypeNames = map[LoopType]string{
	LoopForward:     "forward",
	LoopBackward:    "backward",
	LoopAlternating: "alternating",
}

func ParseLoopType(name string) LoopType {
	for t, n := range LoopTypeNames {
		if n == name {
			return t
		}
	}
	return LoopForward
}

func (t LoopType) String() string { return LoopTypeNames[t] }

// Loop is one loop region of a zone. Crossfade is a fraction 0..1 of the
// loop length. The container formats can represent at most one loop per
// zone; writers honor only the first and warn about the rest.
type Loop struct {
	Type       LoopType `yaml:",omitempty"`
	Start, End int
	Crossfade  float64 `yaml:",omitempty"`
}

// Length returns the loop length in sample frames.
func (l *Loop) Length() int {
	return l.End - l.Start
}
