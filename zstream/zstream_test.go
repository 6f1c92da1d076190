package zstream_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleksisuo/multisample"
	"github.com/aleksisuo/multisample/zstream"
)

func TestRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte("<K2_Container></K2_Container>"), 100)
	var buf bytes.Buffer
	require.NoError(t, zstream.Compress(&buf, payload, zstream.DefaultLevel))
	assert.Less(t, buf.Len(), len(payload))

	got, err := zstream.Decompress(&buf)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestRoundTripEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, zstream.Compress(&buf, nil, zstream.DefaultLevel))
	got, err := zstream.Decompress(&buf)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDecompressGarbage(t *testing.T) {
	_, err := zstream.Decompress(bytes.NewReader([]byte{0xDE, 0xAD, 0xBE, 0xEF}))
	var streamErr *multisample.CorruptedStreamError
	assert.True(t, errors.As(err, &streamErr))
}

func TestDecompressTruncated(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, zstream.Compress(&buf, bytes.Repeat([]byte("payload "), 512), zstream.DefaultLevel))
	truncated := buf.Bytes()[:buf.Len()/2]

	_, err := zstream.Decompress(bytes.NewReader(truncated))
	var streamErr *multisample.CorruptedStreamError
	assert.True(t, errors.As(err, &streamErr))
}

func TestCompressLevelOutOfRangeFallsBack(t *testing.T) {
	payload := []byte("short payload")
	var buf bytes.Buffer
	require.NoError(t, zstream.Compress(&buf, payload, 42))
	got, err := zstream.Decompress(&buf)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}
