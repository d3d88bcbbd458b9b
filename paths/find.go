// Package paths locates texture files in a list of search directories, or
// over HTTP, and opens them with any gzip or zstd wrapping removed.
package paths

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

var (
	searchDirs     []string
	searchDirsLock sync.Mutex
)

// SetSearchPath replaces the directories Find looks in, in order.
func SetSearchPath(dirs []string) {
	searchDirsLock.Lock()
	defer searchDirsLock.Unlock()
	searchDirs = append([]string(nil), dirs...)
}

// SearchPath returns the directories Find looks in. The current directory
// is always searched first.
func SearchPath() []string {
	searchDirsLock.Lock()
	defer searchDirsLock.Unlock()
	return append([]string{"."}, searchDirs...)
}

// suffixes are tried in order after the bare name.
var suffixes = []string{"", ".vtf", ".vtf.gz", ".vtf.zst"}

func getPossiblePaths(name string) []string {
	if filepath.IsAbs(name) {
		var out []string
		for _, s := range suffixes {
			out = append(out, name+s)
		}
		return out
	}
	var out []string
	for _, dir := range SearchPath() {
		for _, s := range suffixes {
			out = append(out, filepath.Join(dir, name+s))
		}
	}
	return out
}

// Find locates the passed texture name and returns a path to it, or an
// empty string if it cannot be found.
//
// For example, for "metal/floor01" it may return
// "/usr/share/textures/metal/floor01.vtf.gz".
func Find(name string) string {
	if isURL(name) {
		return name
	}
	for _, path := range getPossiblePaths(name) {
		if st, err := os.Stat(path); err == nil && st.Mode().IsRegular() {
			glog.V(2).Infof("paths.Find(%q)=%s", name, path)
			return path
		}
	}
	return ""
}

// Open locates the passed texture the way Find does and opens it. The
// returned reader yields the decompressed texture.
func Open(name string) (io.ReadCloser, error) {
	if isURL(name) {
		b, err := fetchHTTP(name)
		if err != nil {
			return nil, err
		}
		return decompress(name, io.NopCloser(bytes.NewReader(b)))
	}
	path := Find(name)
	if path == "" {
		return nil, errors.Wrapf(os.ErrNotExist, "paths.Open(%q): not found in %s", name, strings.Join(SearchPath(), string(filepath.ListSeparator)))
	}
	return NoFindOpen(path)
}

// NoFindOpen opens exactly the passed path, without searching.
func NoFindOpen(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "paths.NoFindOpen(%q)", path)
	}
	return decompress(path, f)
}

// ReadAll opens the passed texture and reads it into memory.
func ReadAll(name string) ([]byte, error) {
	r, err := Open(name)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "paths.ReadAll(%q)", name)
	}
	return b, nil
}

// Stat returns file info for the located texture. It fails for URLs.
func Stat(name string) (os.FileInfo, error) {
	path := Find(name)
	if path == "" || isURL(path) {
		return nil, errors.Wrapf(os.ErrNotExist, "paths.Stat(%q)", name)
	}
	return os.Stat(path)
}
