package nki

import (
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleksisuo/multisample"
)

// statFs records every path probed for existence.
type statFs struct {
	afero.Fs
	mu      sync.Mutex
	statted []string
}

func (s *statFs) Stat(name string) (os.FileInfo, error) {
	s.mu.Lock()
	s.statted = append(s.statted, name)
	s.mu.Unlock()
	return s.Fs.Stat(name)
}

func TestResolveAbsoluteHintWins(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/abs/kick.wav", nil, 0o644))
	require.NoError(t, afero.WriteFile(fs, "/lib/kick.wav", nil, 0o644))

	r := &SampleResolver{FS: fs, BaseDir: "/lib"}
	got, err := r.Resolve("kick.wav", []string{"other/kick.wav", "/abs/kick.wav"})
	require.NoError(t, err)
	assert.Equal(t, "/abs/kick.wav", got)
}

func TestResolveRelativeHintBeatsFallback(t *testing.T) {
	base := &statFs{Fs: afero.NewMemMapFs()}
	require.NoError(t, afero.WriteFile(base.Fs, "/lib/Samples/kick.wav", nil, 0o644))
	require.NoError(t, afero.WriteFile(base.Fs, "/lib/Instruments/kick.wav", nil, 0o644))

	r := &SampleResolver{FS: base, BaseDir: "/lib/Instruments"}
	got, err := r.Resolve("kick.wav", []string{"../Samples/kick.wav"})
	require.NoError(t, err)
	assert.Equal(t, "/lib/Samples/kick.wav", got)
	// The same-directory fallback must not even be probed once an earlier
	// strategy has hit.
	assert.NotContains(t, base.statted, "/lib/Instruments/kick.wav")
}

func TestResolveFallsBackToBaseDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/lib/kick.wav", nil, 0o644))

	r := &SampleResolver{FS: fs, BaseDir: "/lib"}
	got, err := r.Resolve("Old Path/kick.wav", []string{"/gone/kick.wav", "missing/kick.wav"})
	require.NoError(t, err)
	assert.Equal(t, "/lib/kick.wav", got)
}

func TestResolveMissingListsEveryTriedPath(t *testing.T) {
	r := &SampleResolver{FS: afero.NewMemMapFs(), BaseDir: "/lib"}
	_, err := r.Resolve("kick.wav", []string{"/abs/kick.wav", "rel/kick.wav"})
	var missing *multisample.MissingSampleError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "kick.wav", missing.Name)
	assert.Equal(t, []string{"/abs/kick.wav", "/lib/rel/kick.wav", "/lib/kick.wav"}, missing.Tried)
}

func TestHintsFor(t *testing.T) {
	assert.Nil(t, hintsFor(""))
	assert.Nil(t, hintsFor("   "))
	assert.Equal(t, []string{"../a/b.wav"}, hintsFor("../a/b.wav"))
}
