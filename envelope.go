package multisample

// Envelope is a DAHDSR envelope. Time fields are in seconds; a negative
// value means unset, i.e. the target format uses its own default instead of
// a literal value. StartLevel and SustainLevel are fractions 0..1.
type Envelope struct {
	Delay, Attack, Hold, Decay, Release float64
	StartLevel                          float64 `yaml:",omitempty"`
	SustainLevel                        float64
}

// UnsetEnvelope returns an envelope with all time fields at the unset
// sentinel and full sustain.
func UnsetEnvelope() Envelope {
	return Envelope{Delay: -1, Attack: -1, Hold: -1, Decay: -1, Release: -1, SustainLevel: 1}
}

// IsUnset reports whether no field of the envelope carries a value.
func (e *Envelope) IsUnset() bool {
	return e.Delay < 0 && e.Attack < 0 && e.Hold < 0 && e.Decay < 0 && e.Release < 0 &&
		e.StartLevel == 0 && e.SustainLevel == 1
}

// Modulator routes an envelope to a target parameter with the given depth.
// The scale of Depth is format-defined. A modulator with depth <= 0
// contributes no envelope data to serialized output; its envelope stays
// reachable but inert.
type Modulator struct {
	Depth  float64
	Source Envelope
}

// Active reports whether the modulator contributes to serialized output.
func (m *Modulator) Active() bool {
	return m.Depth > 0
}
