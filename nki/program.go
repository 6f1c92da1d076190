package nki

import (
	"bytes"
	"fmt"
	"path"
	"strconv"

	"github.com/beevik/etree"

	"github.com/aleksisuo/multisample"
)

// Attribute names are shared by all generations; only the element names and
// value keys vary (see TagSet).
const (
	attrName       = "name"
	attrCreator    = "creator"
	attrCategory   = "category"
	attrComment    = "comment"
	attrTrigger    = "trigger"
	attrSeqLength  = "seqLength"
	attrFile       = "file"
	attrByteOffset = "offset"
	attrByteLength = "length"
	attrKey        = "key"
	attrRootKey    = "rootKey"
	attrLowKey     = "lowKey"
	attrHighKey    = "highKey"
	attrLowVel     = "lowVelocity"
	attrHighVel    = "highVelocity"
	attrFadeLowKey = "fadeLowKey"
	attrFadeHiKey  = "fadeHighKey"
	attrFadeLowVel = "fadeLowVelocity"
	attrFadeHiVel  = "fadeHighVelocity"
	attrReverse    = "reverse"
	attrSeqPos     = "seqPosition"
	attrTune       = "tune"
	attrKeyTrack   = "keyTracking"
	attrPan        = "pan"
	attrVolume     = "volume"
	attrBendUp     = "bendUp"
	attrBendDown   = "bendDown"
	attrStart      = "sampleStart"
	attrStop       = "sampleEnd"
	attrLoopMode   = "mode"
	attrLoopStart  = "start"
	attrLoopEnd    = "end"
	attrLoopXfade  = "crossfade"
	attrFilterType = "type"
	attrPoles      = "poles"
	attrCutoff     = "cutoff"
	attrResonance  = "resonance"
)

// Envelope fields inside a modulator's value pairs.
var envelopeKeys = [...]string{"delay", "attack", "hold", "decay", "release", "start", "sustain"}

// nameValue is one entry of the ordered (name,value) pair list a modulator
// element carries. Modulation routing is reconstructed by scanning these,
// never from fixed fields.
type nameValue struct {
	name, value string
}

func valuePairs(el *etree.Element, tags TagSet) []nameValue {
	var pairs []nameValue
	for _, v := range el.SelectElements(tags.Value()) {
		pairs = append(pairs, nameValue{
			name:  v.SelectAttrValue(tags.ValueNameAttribute(), ""),
			value: v.SelectAttrValue(tags.ValueValueAttribute(), ""),
		})
	}
	return pairs
}

// lookupValue finds the first pair with the given key. Absence is a normal
// outcome, not an error.
func lookupValue(pairs []nameValue, key string) (string, bool) {
	for _, p := range pairs {
		if p.name == key {
			return p.value, true
		}
	}
	return "", false
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// buildDocument serializes instruments to the variant's XML dialect: the
// root container element wraps one program element per instrument. Samples
// are referenced relative to sampleFolder; with an empty folder the zones'
// own paths are kept, which is what monoliths use for their entry names.
func buildDocument(instruments []*multisample.Instrument, spec *variantSpec, sampleFolder string, notifier multisample.Notifier) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement(spec.tags.RootContainer())
	for _, instr := range instruments {
		buildProgram(root, instr, spec, sampleFolder, notifier)
	}
	doc.Indent(2)
	return doc
}

func buildProgram(root *etree.Element, instr *multisample.Instrument, spec *variantSpec, sampleFolder string, notifier multisample.Notifier) {
	tags := spec.tags
	program := root.CreateElement(tags.Program())
	program.CreateAttr(attrName, instr.Name)
	if instr.Metadata.Creator != "" {
		program.CreateAttr(attrCreator, instr.Metadata.Creator)
	}
	if instr.Metadata.Category != "" {
		program.CreateAttr(attrCategory, instr.Metadata.Category)
	}
	if instr.Metadata.Description != "" {
		program.CreateAttr(attrComment, instr.Metadata.Description)
	}
	for gi := range instr.Groups {
		group := &instr.Groups[gi]
		if len(group.Zones) == 0 {
			continue
		}
		groupElement := program.CreateElement(tags.Group())
		groupElement.CreateAttr(attrName, group.Name)
		if group.Trigger != multisample.TriggerAttack {
			groupElement.CreateAttr(attrTrigger, group.Trigger.String())
		}
		if count := group.RoundRobinCount(); count > 0 {
			groupElement.CreateAttr(attrSeqLength, strconv.Itoa(count))
		}
		for zi := range group.Zones {
			buildZone(groupElement, &group.Zones[zi], spec, sampleFolder, notifier)
		}
	}
}

func buildZone(parent *etree.Element, zone *multisample.Zone, spec *variantSpec, sampleFolder string, notifier multisample.Notifier) {
	tags := spec.tags
	el := parent.CreateElement(tags.Zone())
	if zone.Name != "" {
		el.CreateAttr(attrName, zone.Name)
	}
	el.CreateAttr(attrFile, sampleReference(zone, sampleFolder))
	if zone.SampleOffset > 0 {
		el.CreateAttr(attrByteOffset, strconv.FormatInt(zone.SampleOffset, 10))
	}
	if zone.SampleLength > 0 {
		el.CreateAttr(attrByteLength, strconv.FormatInt(zone.SampleLength, 10))
	}
	if zone.HasSingleKey() {
		el.CreateAttr(attrKey, strconv.Itoa(zone.KeyRoot))
	} else {
		el.CreateAttr(attrRootKey, strconv.Itoa(zone.KeyRoot))
		el.CreateAttr(attrLowKey, strconv.Itoa(zone.KeyLow))
		el.CreateAttr(attrHighKey, strconv.Itoa(zone.KeyHigh))
	}
	el.CreateAttr(attrLowVel, strconv.Itoa(zone.VelocityLow))
	el.CreateAttr(attrHighVel, strconv.Itoa(zone.VelocityHigh))
	if zone.KeyCrossfadeLow > 0 {
		el.CreateAttr(attrFadeLowKey, strconv.Itoa(zone.KeyCrossfadeLow))
	}
	if zone.KeyCrossfadeHigh > 0 {
		el.CreateAttr(attrFadeHiKey, strconv.Itoa(zone.KeyCrossfadeHigh))
	}
	if zone.VelocityCrossfadeLow > 0 {
		el.CreateAttr(attrFadeLowVel, strconv.Itoa(zone.VelocityCrossfadeLow))
	}
	if zone.VelocityCrossfadeHigh > 0 {
		el.CreateAttr(attrFadeHiVel, strconv.Itoa(zone.VelocityCrossfadeHigh))
	}
	if zone.Reversed {
		el.CreateAttr(attrReverse, "yes")
	}
	if zone.PlayLogic == multisample.PlayRoundRobin {
		el.CreateAttr(attrSeqPos, strconv.Itoa(zone.SequencePosition))
	}
	if zone.TuneCents != 0 {
		el.CreateAttr(attrTune, formatFloat(zone.TuneCents))
	}
	if zone.KeyTracking != 1 {
		el.CreateAttr(attrKeyTrack, formatFloat(zone.KeyTracking))
	}
	if zone.Panorama != 0 {
		el.CreateAttr(attrPan, formatFloat(spec.pan.denormalize(zone.Panorama)))
	}
	if zone.Gain != 0 {
		el.CreateAttr(attrVolume, formatFloat(zone.Gain))
	}
	if zone.BendUp != 0 {
		el.CreateAttr(attrBendUp, strconv.Itoa(zone.BendUp))
	}
	if zone.BendDown != 0 {
		el.CreateAttr(attrBendDown, strconv.Itoa(zone.BendDown))
	}
	if zone.Start >= 0 {
		el.CreateAttr(attrStart, strconv.Itoa(zone.Start))
	}
	if zone.Stop >= 0 {
		el.CreateAttr(attrStop, strconv.Itoa(zone.Stop))
	}

	// Only the first loop is representable; dropping the rest is a
	// documented lossy boundary of the format, not an error.
	if len(zone.Loops) > 0 {
		if len(zone.Loops) > 1 {
			notifier.Warn("zone %v has %v loops, only the first is written", zone.Name, len(zone.Loops))
		}
		loop := &zone.Loops[0]
		loopElement := el.CreateElement(tags.Loop())
		loopElement.CreateAttr(attrLoopMode, loop.Type.String())
		loopElement.CreateAttr(attrLoopStart, strconv.Itoa(loop.Start))
		loopElement.CreateAttr(attrLoopEnd, strconv.Itoa(loop.End))
		if loop.Crossfade > 0 {
			loopElement.CreateAttr(attrLoopXfade, formatFloat(loop.Crossfade))
		}
	}

	if zone.Filter != nil {
		filterElement := el.CreateElement(tags.Filter())
		filterElement.CreateAttr(attrFilterType, zone.Filter.Type.String())
		filterElement.CreateAttr(attrPoles, strconv.Itoa(zone.Filter.ClampedPoles()))
		filterElement.CreateAttr(attrCutoff, formatFloat(zone.Filter.Cutoff))
		filterElement.CreateAttr(attrResonance, formatFloat(zone.Filter.BoundedResonance()))
	}

	buildModulator(el, &zone.AmplitudeModulator, tags.VolumeTarget(), tags)
	buildModulator(el, &zone.PitchModulator, tags.PitchTarget(), tags)
	if zone.Filter != nil && zone.Filter.CutoffModulator.Active() {
		buildModulator(el, &zone.Filter.CutoffModulator, tags.CutoffTarget(), tags)
	}
}

func sampleReference(zone *multisample.Zone, sampleFolder string) string {
	if sampleFolder == "" {
		return zone.SamplePath
	}
	return path.Join(sampleFolder, path.Base(zone.SamplePath))
}

func buildModulator(parent *etree.Element, mod *multisample.Modulator, target string, tags TagSet) {
	el := parent.CreateElement(tags.Modulator())
	addValue(el, tags, tags.TargetParam(), target)
	addValue(el, tags, tags.IntensityParam(), formatFloat(mod.Depth))
	if !mod.Active() {
		// An inert modulator contributes no envelope data.
		return
	}
	env := &mod.Source
	times := [...]float64{env.Delay, env.Attack, env.Hold, env.Decay, env.Release}
	for i, v := range times {
		if v >= 0 {
			addValue(el, tags, envelopeKeys[i], formatFloat(v))
		}
	}
	if env.StartLevel != 0 {
		addValue(el, tags, "start", formatFloat(env.StartLevel))
	}
	if env.SustainLevel != 1 {
		addValue(el, tags, "sustain", formatFloat(env.SustainLevel))
	}
}

func addValue(parent *etree.Element, tags TagSet, name, value string) {
	el := parent.CreateElement(tags.Value())
	el.CreateAttr(tags.ValueNameAttribute(), name)
	el.CreateAttr(tags.ValueValueAttribute(), value)
}

// utf8BOM may prefix the metadata text; strip it instead of failing the
// structural parse.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// parsePrograms parses the decompressed metadata text into instruments. The
// top level is either a single program element or a root container wrapping
// zero or more programs.
func parsePrograms(data []byte, spec *variantSpec) ([]*multisample.Instrument, error) {
	tags := spec.tags
	data = bytes.TrimPrefix(data, utf8BOM)
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("metadata has no root element")
	}
	var programs []*etree.Element
	switch root.Tag {
	case tags.Program():
		programs = []*etree.Element{root}
	case tags.RootContainer():
		programs = root.SelectElements(tags.Program())
	default:
		return nil, fmt.Errorf("unexpected top-level element %v", root.Tag)
	}
	instruments := make([]*multisample.Instrument, 0, len(programs))
	for _, p := range programs {
		instruments = append(instruments, parseProgram(p, spec))
	}
	return instruments, nil
}

func parseProgram(program *etree.Element, spec *variantSpec) *multisample.Instrument {
	tags := spec.tags
	instr := &multisample.Instrument{
		Name: program.SelectAttrValue(attrName, ""),
		Metadata: multisample.Metadata{
			Creator:     program.SelectAttrValue(attrCreator, ""),
			Category:    program.SelectAttrValue(attrCategory, ""),
			Description: program.SelectAttrValue(attrComment, ""),
		},
	}
	for _, groupElement := range program.SelectElements(tags.Group()) {
		group := multisample.Group{
			Name:    groupElement.SelectAttrValue(attrName, ""),
			Trigger: multisample.ParseTriggerType(groupElement.SelectAttrValue(attrTrigger, "")),
		}
		for _, zoneElement := range groupElement.SelectElements(tags.Zone()) {
			group.Zones = append(group.Zones, parseZone(zoneElement, spec))
		}
		instr.Groups = append(instr.Groups, group)
	}
	return instr
}

func parseZone(el *etree.Element, spec *variantSpec) multisample.Zone {
	tags := spec.tags
	zone := multisample.NewZone(el.SelectAttrValue(attrName, ""))
	zone.SamplePath = el.SelectAttrValue(attrFile, "")
	zone.SampleOffset = int64(attrInt(el, attrByteOffset, 0))
	zone.SampleLength = int64(attrInt(el, attrByteLength, 0))
	if key := el.SelectAttr(attrKey); key != nil {
		k := attrInt(el, attrKey, 0)
		zone.KeyRoot, zone.KeyLow, zone.KeyHigh = k, k, k
	} else {
		zone.KeyRoot = attrInt(el, attrRootKey, 60)
		zone.KeyLow = attrInt(el, attrLowKey, 0)
		zone.KeyHigh = attrInt(el, attrHighKey, 127)
	}
	zone.VelocityLow = attrInt(el, attrLowVel, 1)
	zone.VelocityHigh = attrInt(el, attrHighVel, 127)
	zone.KeyCrossfadeLow = attrInt(el, attrFadeLowKey, 0)
	zone.KeyCrossfadeHigh = attrInt(el, attrFadeHiKey, 0)
	zone.VelocityCrossfadeLow = attrInt(el, attrFadeLowVel, 0)
	zone.VelocityCrossfadeHigh = attrInt(el, attrFadeHiVel, 0)
	zone.Reversed = el.SelectAttrValue(attrReverse, "") == "yes"
	if seq := el.SelectAttr(attrSeqPos); seq != nil {
		zone.PlayLogic = multisample.PlayRoundRobin
		zone.SequencePosition = attrInt(el, attrSeqPos, 0)
	}
	zone.TuneCents = attrFloat(el, attrTune, 0)
	zone.KeyTracking = attrFloat(el, attrKeyTrack, 1)
	zone.Panorama = 0
	if pan := el.SelectAttr(attrPan); pan != nil {
		zone.Panorama = spec.pan.normalize(attrFloat(el, attrPan, 0))
	}
	zone.Gain = attrFloat(el, attrVolume, 0)
	zone.BendUp = attrInt(el, attrBendUp, 0)
	zone.BendDown = attrInt(el, attrBendDown, 0)
	zone.Start = attrInt(el, attrStart, -1)
	zone.Stop = attrInt(el, attrStop, -1)

	for _, loopElement := range el.SelectElements(tags.Loop()) {
		zone.Loops = append(zone.Loops, multisample.Loop{
			Type:      multisample.ParseLoopType(loopElement.SelectAttrValue(attrLoopMode, "")),
			Start:     attrInt(loopElement, attrLoopStart, 0),
			End:       attrInt(loopElement, attrLoopEnd, 0),
			Crossfade: attrFloat(loopElement, attrLoopXfade, 0),
		})
	}

	if filterElement := el.SelectElement(tags.Filter()); filterElement != nil {
		zone.Filter = &multisample.Filter{
			Type:            multisample.ParseFilterType(filterElement.SelectAttrValue(attrFilterType, "")),
			Poles:           attrInt(filterElement, attrPoles, 1),
			Cutoff:          attrFloat(filterElement, attrCutoff, 0),
			Resonance:       attrFloat(filterElement, attrResonance, 0),
			CutoffModulator: multisample.Modulator{Source: multisample.UnsetEnvelope()},
		}
	}

	for _, modElement := range el.SelectElements(tags.Modulator()) {
		pairs := valuePairs(modElement, tags)
		target, ok := lookupValue(pairs, tags.TargetParam())
		if !ok {
			// No target declared; missing modulation data is normal.
			continue
		}
		mod := parseModulator(pairs, tags)
		switch target {
		case tags.VolumeTarget():
			zone.AmplitudeModulator = mod
		case tags.PitchTarget():
			zone.PitchModulator = mod
		case tags.CutoffTarget():
			if zone.Filter != nil {
				zone.Filter.CutoffModulator = mod
			}
		}
	}
	return zone
}

func parseModulator(pairs []nameValue, tags TagSet) multisample.Modulator {
	mod := multisample.Modulator{Source: multisample.UnsetEnvelope()}
	if v, ok := lookupValue(pairs, tags.IntensityParam()); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			mod.Depth = f
		}
	}
	env := &mod.Source
	targets := [...]*float64{&env.Delay, &env.Attack, &env.Hold, &env.Decay, &env.Release, &env.StartLevel, &env.SustainLevel}
	for i, key := range envelopeKeys {
		if v, ok := lookupValue(pairs, key); ok {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				*targets[i] = f
			}
		}
	}
	return mod
}

func attrInt(el *etree.Element, name string, def int) int {
	if v := el.SelectAttrValue(name, ""); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func attrFloat(el *etree.Element, name string, def float64) float64 {
	if v := el.SelectAttrValue(name, ""); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
