package sfz

// Section headers.
const (
	headerGlobal = "global"
	headerGroup  = "group"
	headerRegion = "region"
)

// Opcodes, named after the SFZ specification.
const (
	opGlobalLabel    = "global_label"
	opGroupLabel     = "group_label"
	opRegionSample   = "sample"
	opTrigger        = "trigger"
	opDirection      = "direction"
	opSeqLength      = "seq_length"
	opSeqPosition    = "seq_position"
	opKey            = "key"
	opPitchKeyCenter = "pitch_keycenter"
	opLoKey          = "lokey"
	opHiKey          = "hikey"
	opXfInLoKey      = "xfin_lokey"
	opXfInHiKey      = "xfin_hikey"
	opXfOutLoKey     = "xfout_lokey"
	opXfOutHiKey     = "xfout_hikey"
	opLoVel          = "lovel"
	opHiVel          = "hivel"
	opXfInLoVel      = "xfin_lovel"
	opXfInHiVel      = "xfin_hivel"
	opXfOutLoVel     = "xfout_lovel"
	opXfOutHiVel     = "xfout_hivel"
	opOffset         = "offset"
	opEnd            = "end"
	opTune           = "tune"
	opPitchKeytrack  = "pitch_keytrack"
	opVolume         = "volume"
	opPan            = "pan"
	opBendUp         = "bend_up"
	opBendDown       = "bend_down"
	opLoopMode       = "loop_mode"
	opLoopType       = "loop_type"
	opLoopStart      = "loop_start"
	opLoopEnd        = "loop_end"
	opLoopCrossfade  = "loop_crossfade"
	opFilterType     = "fil_type"
	opCutoff         = "cutoff"
	opResonance      = "resonance"

	opAmpEgDelay   = "ampeg_delay"
	opAmpEgAttack  = "ampeg_attack"
	opAmpEgHold    = "ampeg_hold"
	opAmpEgDecay   = "ampeg_decay"
	opAmpEgRelease = "ampeg_release"
	opAmpEgStart   = "ampeg_start"
	opAmpEgSustain = "ampeg_sustain"

	opPitchEgDepth   = "pitcheg_depth"
	opPitchEgDelay   = "pitcheg_delay"
	opPitchEgAttack  = "pitcheg_attack"
	opPitchEgHold    = "pitcheg_hold"
	opPitchEgDecay   = "pitcheg_decay"
	opPitchEgRelease = "pitcheg_release"
	opPitchEgStart   = "pitcheg_start"
	opPitchEgSustain = "pitcheg_sustain"

	opFilEgDepth   = "fileg_depth"
	opFilEgDelay   = "fileg_delay"
	opFilEgAttack  = "fileg_attack"
	opFilEgHold    = "fileg_hold"
	opFilEgDecay   = "fileg_decay"
	opFilEgRelease = "fileg_release"
	opFilEgStart   = "fileg_start"
	opFilEgSustain = "fileg_sustain"
)
