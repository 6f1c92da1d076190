// Package convert drives one conversion unit: read a container into the
// canonical model, hand the model to a sink. Each unit is self-contained and
// synchronous with no shared mutable state, so a batch caller may run many
// units concurrently without coordination.
package convert

import (
	"fmt"
	"io"

	"github.com/spf13/afero"

	"github.com/aleksisuo/multisample"
	"github.com/aleksisuo/multisample/nki"
)

// Destination is any sink format writer.
type Destination interface {
	Format() string
	Create(fs afero.Fs, destDir string, instr *multisample.Instrument, notifier multisample.Notifier) error
}

// Result reports one converted file. Warnings carry the per-zone problems
// that were absorbed during the conversion.
type Result struct {
	Path        string
	Variant     nki.Variant
	Instruments []string
	Warnings    []string
}

// File converts one container file into dst under destDir. Errors scoped to
// single zones are downgraded to warnings on the result; a structural
// problem fails just this file and is returned as the error.
func File(fs afero.Fs, srcPath, destDir string, dst Destination, notifier multisample.Notifier) (*Result, error) {
	collector := &multisample.Collector{}
	tee := teeNotifier{a: notifier, b: collector}

	instruments, variant, err := read(fs, srcPath, tee)
	if err != nil {
		return nil, err
	}
	if err := fs.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("create %v: %w", destDir, err)
	}
	result := &Result{Path: srcPath, Variant: variant}
	for _, instr := range instruments {
		if err := dst.Create(fs, destDir, instr, tee); err != nil {
			return nil, fmt.Errorf("write %v as %v: %w", instr.Name, dst.Format(), err)
		}
		result.Instruments = append(result.Instruments, instr.Name)
	}
	result.Warnings = collector.Warnings
	return result, nil
}

func read(fs afero.Fs, srcPath string, notifier multisample.Notifier) ([]*multisample.Instrument, nki.Variant, error) {
	f, err := fs.Open(srcPath)
	if err != nil {
		return nil, nki.VariantUnknown, fmt.Errorf("open %v: %w", srcPath, err)
	}
	defer f.Close()

	prefix := make([]byte, nki.SignatureLength)
	if _, err := io.ReadFull(f, prefix); err != nil {
		return nil, nki.VariantUnknown, &multisample.CorruptedContainerError{Path: srcPath, Reason: "file shorter than a signature"}
	}
	variant, err := nki.Detect(prefix)
	if err != nil {
		return nil, nki.VariantUnknown, err
	}
	notifier.Info("%v: found %v", srcPath, variant)
	reader, err := nki.NewReader(variant)
	if err != nil {
		return nil, nki.VariantUnknown, err
	}
	instruments, err := reader.Read(fs, srcPath, f, notifier)
	if err != nil {
		return nil, variant, err
	}
	return instruments, variant, nil
}

// Inspect reads a container without writing anything, for dry runs and
// debugging dumps.
func Inspect(fs afero.Fs, srcPath string, notifier multisample.Notifier) ([]*multisample.Instrument, nki.Variant, error) {
	return read(fs, srcPath, notifier)
}

type teeNotifier struct {
	a, b multisample.Notifier
}

func (t teeNotifier) Info(format string, args ...interface{}) {
	t.a.Info(format, args...)
	t.b.Info(format, args...)
}

func (t teeNotifier) Warn(format string, args ...interface{}) {
	t.a.Warn(format, args...)
	t.b.Warn(format, args...)
}
