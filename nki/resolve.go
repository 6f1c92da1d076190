package nki

import (
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/aleksisuo/multisample"
)

// SampleResolver locates an externally referenced sample file. The declared
// hints are tried in a fixed priority order: absolute paths first, then
// relative paths including ".."-redirected parents, and last a plain
// same-directory lookup by file name. The first existing file wins and later
// strategies are not touched; running out of strategies is a per-sample
// failure, the instrument conversion continues without the zone.
type SampleResolver struct {
	FS      afero.Fs
	BaseDir string // directory of the container file
}

// Resolve returns the resolved path of name, or a MissingSampleError listing
// every path that was tried.
func (r *SampleResolver) Resolve(name string, hints []string) (string, error) {
	var tried []string
	for _, hint := range hints {
		if !filepath.IsAbs(hint) {
			continue
		}
		tried = append(tried, hint)
		if r.exists(hint) {
			return hint, nil
		}
	}
	for _, hint := range hints {
		if filepath.IsAbs(hint) {
			continue
		}
		p := filepath.Clean(filepath.Join(r.BaseDir, filepath.FromSlash(hint)))
		tried = append(tried, p)
		if r.exists(p) {
			return p, nil
		}
	}
	fallback := filepath.Join(r.BaseDir, filepath.Base(filepath.FromSlash(name)))
	tried = append(tried, fallback)
	if r.exists(fallback) {
		return fallback, nil
	}
	return "", &multisample.MissingSampleError{Name: name, Tried: tried}
}

func (r *SampleResolver) exists(p string) bool {
	_, err := r.FS.Stat(p)
	return err == nil
}

// hintsFor returns the lookup hints for a plain file reference: the declared
// path itself, which may be absolute, relative or ".."-redirected.
func hintsFor(ref string) []string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil
	}
	return []string{ref}
}
