// Package multisample holds the canonical representation of a multi-sample
// instrument: an instrument owns groups, groups own zones, and each zone maps
// one sample to a key/velocity region with its playback parameters. Format
// readers build this graph and format writers traverse it; the model itself
// does no I/O.
package multisample

import "strings"

// TriggerType tells when the zones of a group are played.
type TriggerType int

const (
	TriggerAttack TriggerType = iota
	TriggerRelease
	TriggerFirst
	TriggerLegato
)

// TriggerTypeNames maps trigger types to their serialized names. Treat as
// read-only.
var TriggerTypeNames = map[TriggerType]string{
	TriggerAttack:  "attack",
	TriggerRelease: "release",
	TriggerFirst:   "first",
	TriggerLegato:  "legato",
}

// ParseTriggerType is the inverse of TriggerTypeNames; unknown names fall
// back to TriggerAttack, the default trigger.
func ParseTriggerType(name string) TriggerType {
	for t, n := range TriggerTypeNames {
		if n == name {
			return t
		}
	}
	return TriggerAttack
}

func (t TriggerType) String() string { return TriggerTypeNames[t] }

// Metadata is the free-form instrument description carried by most formats.
type Metadata struct {
	Creator     string `yaml:",omitempty"`
	Category    string `yaml:",omitempty"`
	Description string `yaml:",omitempty"`
}

// Instrument is one multi-sample instrument with its ordered groups.
type Instrument struct {
	Name     string
	Metadata Metadata `yaml:",omitempty"`
	Groups   []Group
}

func (instr *Instrument) Copy() Instrument {
	groups := make([]Group, len(instr.Groups))
	for i, g := range instr.Groups {
		groups[i] = g.Copy()
	}
	return Instrument{Name: instr.Name, Metadata: instr.Metadata, Groups: groups}
}

// SafeName returns the instrument name with characters that are illegal in
// file names substituted by underscores. All output file and folder names
// derive from this.
func (instr *Instrument) SafeName() string {
	var sb strings.Builder
	for _, r := range strings.TrimSpace(instr.Name) {
		if r < 0x20 || strings.ContainsRune(`\/:*?"<>|`, r) {
			sb.WriteRune('_')
		} else {
			sb.WriteRune(r)
		}
	}
	if sb.Len() == 0 {
		return "Unnamed"
	}
	return sb.String()
}

// Group is an ordered set of zones sharing a trigger condition. A group with
// zero zones is omitted from any serialized output.
type Group struct {
	Name    string
	Trigger TriggerType `yaml:",omitempty"`
	Zones   []Zone
}

func (g *Group) Copy() Group {
	zones := make([]Zone, len(g.Zones))
	for i, z := range g.Zones {
		zones[i] = z.Copy()
	}
	return Group{Name: g.Name, Trigger: g.Trigger, Zones: zones}
}

// RoundRobinCount returns how many zones of the group play round-robin.
// Writers emit a sequence-length attribute only when this is non-zero.
func (g *Group) RoundRobinCount() int {
	count := 0
	for i := range g.Zones {
		if g.Zones[i].PlayLogic == PlayRoundRobin {
			count++
		}
	}
	return count
}
