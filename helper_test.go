package multisample_test

import (
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// testWAV renders a short silent WAV file in memory.
func testWAV(t *testing.T, rate, depth, channels int) []byte {
	t.Helper()
	fs := afero.NewMemMapFs()
	f, err := fs.Create("/fixture.wav")
	require.NoError(t, err)
	enc := wav.NewEncoder(f, rate, depth, channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: rate},
		Data:           make([]int, 64*channels),
		SourceBitDepth: depth,
	}
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())
	data, err := afero.ReadFile(fs, "/fixture.wav")
	require.NoError(t, err)
	return data
}
