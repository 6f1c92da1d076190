// Package sfz renders the canonical model as an SFZ opcode file with the
// samples stored in a sibling folder. It is one sink of the conversion
// driver; the opcode text mirrors what the instrument formats can express
// and documents the lossy spots (first loop only, clamped filter poles).
package sfz

import (
	"fmt"
	"math"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"github.com/aleksisuo/multisample"
	"github.com/aleksisuo/multisample/nki"
)

const fileHeader = "/////////////////////////////////////////////////////////////////////////////\n////\n"
const commentPrefix = "//// "

// Treat as read-only.
var (
	filterTypeOpcodes = map[multisample.FilterType]string{
		multisample.FilterLowPass:    "lpf",
		multisample.FilterHighPass:   "hpf",
		multisample.FilterBandPass:   "bpf",
		multisample.FilterBandReject: "brf",
	}
	loopTypeOpcodes = map[multisample.LoopType]string{
		multisample.LoopForward:     "forward",
		multisample.LoopBackward:    "backward",
		multisample.LoopAlternating: "alternate",
	}
)

// Creator writes `<name>.sfz` plus a `<name> Samples` folder.
type Creator struct{}

func (Creator) Format() string { return "SFZ" }

func (Creator) Create(fs afero.Fs, destDir string, instr *multisample.Instrument, notifier multisample.Notifier) error {
	safeName := instr.SafeName()
	sfzPath := filepath.Join(destDir, safeName+".sfz")
	if exists, _ := afero.Exists(fs, sfzPath); exists {
		return fmt.Errorf("%v already exists", sfzPath)
	}
	folderName := safeName + nki.SampleFolderPostfix
	metadata := createMetadata(folderName, instr, notifier)

	notifier.Info("storing %v", sfzPath)
	if err := afero.WriteFile(fs, sfzPath, []byte(metadata), 0o644); err != nil {
		return fmt.Errorf("write %v: %w", sfzPath, err)
	}

	sampleFolder := filepath.Join(destDir, folderName)
	if err := fs.MkdirAll(sampleFolder, 0o755); err != nil {
		return fmt.Errorf("create %v: %w", sampleFolder, err)
	}
	return writeSamples(fs, sampleFolder, instr, notifier)
}

func createMetadata(folderName string, instr *multisample.Instrument, notifier multisample.Notifier) string {
	var sb strings.Builder
	sb.WriteString(fileHeader)
	if c := instr.Metadata.Creator; c != "" {
		sb.WriteString(commentPrefix + "Creator : " + c + "\n")
	}
	if c := instr.Metadata.Category; c != "" {
		sb.WriteString(commentPrefix + "Category: " + c + "\n")
	}
	if d := instr.Metadata.Description; d != "" {
		sb.WriteString(commentPrefix + strings.ReplaceAll(d, "\n", "\n"+commentPrefix) + "\n")
	}
	sb.WriteString("\n<" + headerGlobal + ">\n")
	if instr.Name != "" {
		addOpcode(&sb, opGlobalLabel, instr.Name, true)
	}

	for gi := range instr.Groups {
		group := &instr.Groups[gi]
		if len(group.Zones) == 0 {
			continue
		}
		sb.WriteString("\n<" + headerGroup + ">\n")
		if group.Name != "" {
			addOpcode(&sb, opGroupLabel, group.Name, true)
		}
		if count := group.RoundRobinCount(); count > 0 {
			addIntOpcode(&sb, opSeqLength, count, true)
		}
		if group.Trigger != multisample.TriggerAttack {
			addOpcode(&sb, opTrigger, group.Trigger.String(), true)
		}
		sequence := 1
		for zi := range group.Zones {
			createRegion(&sb, folderName, &group.Zones[zi], sequence, notifier)
			if group.Zones[zi].PlayLogic == multisample.PlayRoundRobin {
				sequence++
			}
		}
	}
	return sb.String()
}

func createRegion(sb *strings.Builder, folderName string, zone *multisample.Zone, sequenceNumber int, notifier multisample.Notifier) {
	sb.WriteString("\n<" + headerRegion + ">\n")
	addOpcode(sb, opRegionSample, folderName+"/"+sampleFileName(zone), true)

	if zone.Reversed {
		addOpcode(sb, opDirection, "reverse", true)
	}
	if zone.PlayLogic == multisample.PlayRoundRobin {
		addIntOpcode(sb, opSeqPosition, sequenceNumber, true)
	}

	// Key range; the collapsed case uses the compact single-key opcode.
	if zone.HasSingleKey() {
		addIntOpcode(sb, opKey, zone.KeyRoot, true)
	} else {
		addIntOpcode(sb, opPitchKeyCenter, zone.KeyRoot, true)
		addIntOpcode(sb, opLoKey, zone.KeyLow, false)
		addIntOpcode(sb, opHiKey, zone.KeyHigh, true)
	}
	if xf := zone.KeyCrossfadeLow; xf > 0 {
		addIntOpcode(sb, opXfInLoKey, max(0, zone.KeyLow-xf), false)
		addIntOpcode(sb, opXfInHiKey, zone.KeyLow, true)
	}
	if xf := zone.KeyCrossfadeHigh; xf > 0 {
		addIntOpcode(sb, opXfOutLoKey, zone.KeyHigh, false)
		addIntOpcode(sb, opXfOutHiKey, min(127, zone.KeyHigh+xf), true)
	}

	if zone.VelocityLow > 1 {
		addIntOpcode(sb, opLoVel, zone.VelocityLow, zone.VelocityHigh == 127)
	}
	if zone.VelocityHigh > 0 && zone.VelocityHigh < 127 {
		addIntOpcode(sb, opHiVel, zone.VelocityHigh, true)
	}
	if xf := zone.VelocityCrossfadeLow; xf > 0 {
		addIntOpcode(sb, opXfInLoVel, max(0, zone.VelocityLow-xf), false)
		addIntOpcode(sb, opXfInHiVel, zone.VelocityLow, true)
	}
	if xf := zone.VelocityCrossfadeHigh; xf > 0 {
		addIntOpcode(sb, opXfOutLoVel, zone.VelocityHigh, false)
		addIntOpcode(sb, opXfOutHiVel, min(127, zone.VelocityHigh+xf), true)
	}

	if zone.Start >= 0 {
		addIntOpcode(sb, opOffset, zone.Start, false)
	}
	if zone.Stop >= 0 {
		addIntOpcode(sb, opEnd, zone.Stop, true)
	}
	if zone.TuneCents != 0 {
		addIntOpcode(sb, opTune, int(math.Round(zone.TuneCents)), true)
	}
	if keyTracking := int(math.Round(zone.KeyTracking * 100)); keyTracking != 100 {
		addIntOpcode(sb, opPitchKeytrack, keyTracking, true)
	}

	createVolume(sb, zone)

	if zone.BendUp != 0 {
		addIntOpcode(sb, opBendUp, zone.BendUp, true)
	}
	if zone.BendDown != 0 {
		addIntOpcode(sb, opBendDown, zone.BendDown, true)
	}
	if zone.PitchModulator.Active() {
		addIntOpcode(sb, opPitchEgDepth, int(zone.PitchModulator.Depth), true)
		addEnvelope(sb, &zone.PitchModulator.Source,
			opPitchEgDelay, opPitchEgAttack, opPitchEgHold, opPitchEgDecay, opPitchEgRelease, opPitchEgStart, opPitchEgSustain)
	}

	createLoop(sb, zone, notifier)
	createFilter(sb, zone)
}

func createVolume(sb *strings.Builder, zone *multisample.Zone) {
	if zone.Gain != 0 {
		addOpcode(sb, opVolume, formatFloat(zone.Gain), true)
	}
	if zone.Panorama != 0 {
		addIntOpcode(sb, opPan, int(math.Round(zone.Panorama*100)), true)
	}
	addEnvelope(sb, &zone.AmplitudeModulator.Source,
		opAmpEgDelay, opAmpEgAttack, opAmpEgHold, opAmpEgDecay, opAmpEgRelease, opAmpEgStart, opAmpEgSustain)
}

func createLoop(sb *strings.Builder, zone *multisample.Zone, notifier multisample.Notifier) {
	if len(zone.Loops) == 0 {
		addOpcode(sb, opLoopMode, "no_loop", false)
		sb.WriteString("\n")
		return
	}
	loop := &zone.Loops[0]
	addOpcode(sb, opLoopMode, "loop_continuous", false)
	if t := loopTypeOpcodes[loop.Type]; t != "forward" {
		addOpcode(sb, opLoopType, t, false)
	}
	addIntOpcode(sb, opLoopStart, loop.Start, false)
	sb.WriteString(opLoopEnd + "=" + strconv.Itoa(loop.End))

	// The crossfade is stored as a fraction of the loop length and SFZ
	// wants seconds.
	if loop.Crossfade > 0 && loop.Length() > 0 && zone.Data != nil {
		meta, err := zone.Data.AudioMetadata()
		if err != nil {
			notifier.Warn("no audio metadata for %v: %v", zone.Name, err)
		} else if meta.SampleRate > 0 {
			seconds := loop.Crossfade * float64(loop.Length()) / float64(meta.SampleRate)
			sb.WriteString(" " + opLoopCrossfade + "=" + strconv.Itoa(int(math.Round(seconds))))
		}
	}
	sb.WriteString("\n")
}

func createFilter(sb *strings.Builder, zone *multisample.Zone) {
	filter := zone.Filter
	if filter == nil {
		return
	}
	addOpcode(sb, opFilterType, fmt.Sprintf("%v_%vp", filterTypeOpcodes[filter.Type], filter.ClampedPoles()), false)
	addOpcode(sb, opCutoff, formatFloat(filter.Cutoff), false)
	addOpcode(sb, opResonance, formatFloat(filter.BoundedResonance()), true)
	if filter.CutoffModulator.Active() {
		addIntOpcode(sb, opFilEgDepth, int(filter.CutoffModulator.Depth), true)
		addEnvelope(sb, &filter.CutoffModulator.Source,
			opFilEgDelay, opFilEgAttack, opFilEgHold, opFilEgDecay, opFilEgRelease, opFilEgStart, opFilEgSustain)
	}
}

// addEnvelope emits the envelope opcodes on one line, skipping unset
// (negative) time fields so the player falls back to its own defaults.
// Start and sustain levels are emitted as percentages.
func addEnvelope(sb *strings.Builder, env *multisample.Envelope, delay, attack, hold, decay, release, start, sustain string) {
	var line []string
	add := func(opcode string, value float64) {
		if value < 0 {
			return
		}
		line = append(line, opcode+"="+strconv.FormatFloat(clamp(value, 0, 100), 'f', -1, 64))
	}
	add(delay, env.Delay)
	add(attack, env.Attack)
	add(hold, env.Hold)
	add(decay, env.Decay)
	add(release, env.Release)
	add(start, env.StartLevel*100)
	add(sustain, env.SustainLevel*100)
	if len(line) > 0 {
		sb.WriteString(strings.Join(line, " ") + "\n")
	}
}

func writeSamples(fs afero.Fs, folder string, instr *multisample.Instrument, notifier multisample.Notifier) error {
	written := make(map[string]bool)
	for gi := range instr.Groups {
		for zi := range instr.Groups[gi].Zones {
			zone := &instr.Groups[gi].Zones[zi]
			if zone.Data == nil {
				notifier.Warn("zone %v has no sample data, skipping its sample", zone.Name)
				continue
			}
			name := sampleFileName(zone)
			if written[name] {
				continue
			}
			written[name] = true
			target := filepath.Join(folder, name)
			f, err := fs.Create(target)
			if err != nil {
				return fmt.Errorf("create %v: %w", target, err)
			}
			if err := zone.Data.WriteSample(f); err != nil {
				f.Close()
				notifier.Warn("cannot store sample %v: %v", name, err)
				continue
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close %v: %w", target, err)
			}
		}
	}
	return nil
}

func sampleFileName(zone *multisample.Zone) string {
	if base := path.Base(zone.SamplePath); base != "" && base != "." {
		if strings.HasSuffix(base, ".wav") {
			return base
		}
		return strings.TrimSuffix(base, path.Ext(base)) + ".wav"
	}
	return zone.Name + ".wav"
}

func addOpcode(sb *strings.Builder, opcode, value string, lineFeed bool) {
	sb.WriteString(opcode + "=" + value)
	if lineFeed {
		sb.WriteString("\n")
	} else {
		sb.WriteString(" ")
	}
}

func addIntOpcode(sb *strings.Builder, opcode string, value int, lineFeed bool) {
	addOpcode(sb, opcode, strconv.Itoa(value), lineFeed)
}

// formatFloat renders with at most two decimals, trailing zeros trimmed.
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

func clamp(v, low, high float64) float64 {
	return math.Min(high, math.Max(low, v))
}
