package multisample

import (
	"fmt"
	"strings"
)

// The error taxonomy separates failures that make a whole container
// unreadable (corrupted container/stream, unsupported variant) from failures
// scoped to one sample or zone (missing sample, audio decode). The former
// abort the conversion of that single file; the latter are downgraded to
// warnings and the affected zone is dropped. Nothing here ever terminates a
// batch.

// CorruptedContainerError reports inconsistent container header fields.
type CorruptedContainerError struct {
	Path   string
	Reason string
}

func (e *CorruptedContainerError) Error() string {
	return fmt.Sprintf("corrupted container %v: %v", e.Path, e.Reason)
}

// CorruptedStreamError reports a compressed block that fails to decompress.
type CorruptedStreamError struct {
	Err error
}

func (e *CorruptedStreamError) Error() string {
	return fmt.Sprintf("corrupted compressed stream: %v", e.Err)
}

func (e *CorruptedStreamError) Unwrap() error { return e.Err }

// UnsupportedVariantError reports leading signature bytes that match no
// known container variant. The attempted bytes are kept for diagnosis.
type UnsupportedVariantError struct {
	Signature []byte
}

func (e *UnsupportedVariantError) Error() string {
	return fmt.Sprintf("unsupported container format, signature % X", e.Signature)
}

// MissingSampleError reports a sample reference that no lookup strategy
// could resolve. Recoverable per zone.
type MissingSampleError struct {
	Name  string
	Tried []string
}

func (e *MissingSampleError) Error() string {
	return fmt.Sprintf("sample %v not found, tried: %v", e.Name, strings.Join(e.Tried, ", "))
}

// AudioDecodeError reports a sample payload the audio sub-codec could not
// decode. Recoverable per zone.
type AudioDecodeError struct {
	Name string
	Err  error
}

func (e *AudioDecodeError) Error() string {
	return fmt.Sprintf("cannot decode sample %v: %v", e.Name, e.Err)
}

func (e *AudioDecodeError) Unwrap() error { return e.Err }
