package paths

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/golang/glog"
)

// trimSuffix strips a recognized texture suffix from name. ok is false if
// name carries none.
func trimSuffix(name string) (string, bool) {
	for i := len(suffixes) - 1; i > 0; i-- {
		if strings.HasSuffix(name, suffixes[i]) {
			return strings.TrimSuffix(name, suffixes[i]), true
		}
	}
	return name, false
}

// List walks the search path and returns the names of all textures found,
// relative to their search directory, with slashes as separators and the
// file suffix removed. Names found in more than one directory are listed
// once.
func List() ([]string, error) {
	seen := map[string]bool{}
	for _, dir := range SearchPath() {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				glog.V(2).Infof("paths.List: skipping %s: %v", path, err)
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() || !d.Type().IsRegular() {
				return nil
			}
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return nil
			}
			if name, ok := trimSuffix(filepath.ToSlash(rel)); ok {
				seen[name] = true
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}
