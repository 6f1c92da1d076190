package nki

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleksisuo/multisample"
)

func TestDetectKnownSignatures(t *testing.T) {
	for variant, spec := range variantSpecs {
		got, err := Detect(spec.magic[:])
		require.NoError(t, err, spec.name)
		assert.Equal(t, variant, got, spec.name)
	}
}

func TestDetectIgnoresTrailingBytes(t *testing.T) {
	prefix := append(variantSpecs[Kontakt2].magic[:], 0xDE, 0xAD)
	got, err := Detect(prefix)
	require.NoError(t, err)
	assert.Equal(t, Kontakt2, got)
}

func TestDetectUnknownSignature(t *testing.T) {
	sig := []byte{0x52, 0x49, 0x46, 0x46} // plain WAV
	_, err := Detect(sig)
	var unsupported *multisample.UnsupportedVariantError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, sig, unsupported.Signature)
}

func TestDetectShortPrefix(t *testing.T) {
	_, err := Detect([]byte{0x5E, 0xE5})
	var unsupported *multisample.UnsupportedVariantError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, []byte{0x5E, 0xE5}, unsupported.Signature)
}

func TestVariantString(t *testing.T) {
	assert.Equal(t, "Kontakt 1", Kontakt1.String())
	assert.Equal(t, "Kontakt 2 monolith", Kontakt2Monolith.String())
	assert.Equal(t, "unknown", VariantUnknown.String())
}

func TestNewReaderAndWriterRejectUnknown(t *testing.T) {
	_, err := NewReader(VariantUnknown)
	assert.Error(t, err)
	_, err = NewWriter(VariantUnknown)
	assert.Error(t, err)
}
