package nki

// TagSet names the XML elements and value keys of one format generation.
// The metadata dialects share their structure but not their vocabulary, so
// readers and writers are written once against this interface and bound to a
// concrete tag set by the dispatcher.
type TagSet interface {
	RootContainer() string
	Program() string
	Group() string
	Zone() string
	Loop() string
	Filter() string
	Modulator() string
	Value() string
	// Attribute names of a value pair element.
	ValueNameAttribute() string
	ValueValueAttribute() string
	// Keys looked up in a modulator's value pairs.
	TargetParam() string
	IntensityParam() string
	// Target markers identifying what a modulator modulates.
	VolumeTarget() string
	PitchTarget() string
	CutoffTarget() string
}

// nissTags is the generation 1 dialect.
type nissTags struct{}

func (nissTags) RootContainer() string       { return "NiSS_Bank" }
func (nissTags) Program() string             { return "NiSS_Program" }
func (nissTags) Group() string               { return "NiSS_Group" }
func (nissTags) Zone() string                { return "NiSS_Zone" }
func (nissTags) Loop() string                { return "NiSS_Loop" }
func (nissTags) Filter() string              { return "NiSS_Filter" }
func (nissTags) Modulator() string           { return "NiSS_Modulator" }
func (nissTags) Value() string               { return "NiSS_Value" }
func (nissTags) ValueNameAttribute() string  { return "name" }
func (nissTags) ValueValueAttribute() string { return "value" }
func (nissTags) TargetParam() string         { return "targetParam" }
func (nissTags) IntensityParam() string      { return "intensity" }
func (nissTags) VolumeTarget() string        { return "volume" }
func (nissTags) PitchTarget() string         { return "pitch" }
func (nissTags) CutoffTarget() string        { return "cutoff" }

// k2Tags is the generation 2 dialect.
type k2Tags struct{}

func (k2Tags) RootContainer() string       { return "K2_Container" }
func (k2Tags) Program() string             { return "K2_Program" }
func (k2Tags) Group() string               { return "K2_Group" }
func (k2Tags) Zone() string                { return "K2_Zone" }
func (k2Tags) Loop() string                { return "K2_Loop" }
func (k2Tags) Filter() string              { return "K2_Filter" }
func (k2Tags) Modulator() string           { return "K2_Modulator" }
func (k2Tags) Value() string               { return "K2_Value" }
func (k2Tags) ValueNameAttribute() string  { return "name" }
func (k2Tags) ValueValueAttribute() string { return "value" }
func (k2Tags) TargetParam() string         { return "targetParameter" }
func (k2Tags) IntensityParam() string      { return "intensityValue" }
func (k2Tags) VolumeTarget() string        { return "volume" }
func (k2Tags) PitchTarget() string         { return "pitchValue" }
func (k2Tags) CutoffTarget() string        { return "cutoffValue" }
