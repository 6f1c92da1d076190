package multisample

// FilterType is the filter response shape.
type FilterType int

const (
	FilterLowPass FilterType = iota
	FilterHighPass
	FilterBandPass
	FilterBandReject
)

// FilterTypeNames maps filter types to their serialized names. Treat as
// read-only.
var FilterTypeNames = map[FilterType]string{
	FilterLowPass:    "lowpass",
	FilterHighPass:   "highpass",
	FilterBandPass:   "bandpass",
	FilterBandReject: "bandreject",
}

func ParseFilterType(name string) FilterType {
	for t, n := range FilterTypeNames {
		if n == name {
			return t
		}
	}
	return FilterLowPass
}

func (t FilterType) String() string { return FilterTypeNames[t] }

// MaxResonance is the upper resonance bound of the formats that bound it.
const MaxResonance = 40.0

// Filter is the optional per-zone filter. Cutoff is in Hertz.
type Filter struct {
	Type            FilterType
	Poles           int
	Cutoff          float64
	Resonance       float64
	CutoffModulator Modulator `yaml:",omitempty"`
}

// ClampedPoles returns the pole count clamped to the representable 1..4.
func (f *Filter) ClampedPoles() int {
	if f.Poles < 1 {
		return 1
	}
	if f.Poles > 4 {
		return 4
	}
	return f.Poles
}

// BoundedResonance returns the resonance capped at MaxResonance.
func (f *Filter) BoundedResonance() float64 {
	if f.Resonance > MaxResonance {
		return MaxResonance
	}
	return f.Resonance
}
