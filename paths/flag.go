package paths

import (
	"flag"
	"path/filepath"
	"strings"
)

type searchPathFlag struct{}

func (searchPathFlag) String() string {
	return strings.Join(SearchPath()[1:], string(filepath.ListSeparator))
}

func (searchPathFlag) Set(s string) error {
	var dirs []string
	for _, d := range filepath.SplitList(s) {
		if d != "" {
			dirs = append(dirs, d)
		}
	}
	SetSearchPath(dirs)
	return nil
}

// SetupSearchPathFlag registers --texture_path, a list of directories
// separated like $PATH that Find searches after the current directory.
func SetupSearchPathFlag() {
	flag.Var(searchPathFlag{}, "texture_path", "List of directories to search for textures, separated like $PATH")
}
