package nki

import (
	"fmt"
	"path"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/aleksisuo/multisample"
)

// SampleFolderPostfix names the sibling folder holding the external sample
// files of a written container.
const SampleFolderPostfix = " Samples"

// Creator writes an instrument as a container file plus, for the variants
// that store samples externally, a `<name> Samples` sibling folder.
type Creator struct {
	Variant Variant
	// Level overrides the metadata compression level when non-zero.
	Level int
}

func (c *Creator) Format() string { return c.Variant.String() }

func (c *Creator) Create(fs afero.Fs, destDir string, instr *multisample.Instrument, notifier multisample.Notifier) error {
	w, err := NewWriter(c.Variant)
	if err != nil {
		return err
	}
	if c.Level != 0 {
		w.Level = c.Level
	}
	safeName := instr.SafeName()
	containerPath := filepath.Join(destDir, safeName+".nki")
	if exists, _ := afero.Exists(fs, containerPath); exists {
		return fmt.Errorf("%v already exists", containerPath)
	}

	out, err := fs.Create(containerPath)
	if err != nil {
		return fmt.Errorf("create %v: %w", containerPath, err)
	}
	defer out.Close()

	if w.spec.monolith {
		notifier.Info("storing %v", containerPath)
		return w.WriteMonolith(out, []*multisample.Instrument{instr}, notifier)
	}

	folderName := safeName + SampleFolderPostfix
	sampleFolder := filepath.Join(destDir, folderName)
	if err := fs.MkdirAll(sampleFolder, 0o755); err != nil {
		return fmt.Errorf("create %v: %w", sampleFolder, err)
	}
	sizeOfSamples, err := writeSampleFolder(fs, sampleFolder, instr, notifier)
	if err != nil {
		return err
	}
	notifier.Info("storing %v", containerPath)
	return w.Write(out, instr, folderName, sizeOfSamples, notifier)
}

// writeSampleFolder stores every referenced sample payload and returns the
// total byte count written, which the container header declares.
func writeSampleFolder(fs afero.Fs, folder string, instr *multisample.Instrument, notifier multisample.Notifier) (uint32, error) {
	var total uint32
	written := make(map[string]bool)
	for gi := range instr.Groups {
		for zi := range instr.Groups[gi].Zones {
			zone := &instr.Groups[gi].Zones[zi]
			if zone.Data == nil {
				notifier.Warn("zone %v has no sample data, skipping its sample", zone.Name)
				continue
			}
			name := path.Base(zone.SamplePath)
			if name == "" || name == "." {
				name = zone.Name + ".wav"
			}
			if written[name] {
				continue
			}
			written[name] = true
			target := filepath.Join(folder, name)
			f, err := fs.Create(target)
			if err != nil {
				return 0, fmt.Errorf("create %v: %w", target, err)
			}
			if err := zone.Data.WriteSample(f); err != nil {
				f.Close()
				notifier.Warn("cannot store sample %v: %v", name, err)
				continue
			}
			if err := f.Close(); err != nil {
				return 0, fmt.Errorf("close %v: %w", target, err)
			}
			if stat, err := fs.Stat(target); err == nil {
				total += uint32(stat.Size())
			}
		}
	}
	return total, nil
}
