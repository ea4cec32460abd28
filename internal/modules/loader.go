package modules

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/agayevhuseyn/seal-sub000/internal/config"
)

// Source is a module file found on the search path.
type Source struct {
	Path   string
	Native bool // a plugin rather than a script
}

// Loader locates module files on a search path.
type Loader struct {
	SearchPaths []string
}

func NewLoader(paths []string) *Loader {
	return &Loader{SearchPaths: paths}
}

// AddSearchPath appends dir unless it is already searched.
func (l *Loader) AddSearchPath(dir string) {
	for _, p := range l.SearchPaths {
		if filepath.Clean(p) == filepath.Clean(dir) {
			return
		}
	}
	l.SearchPaths = append(l.SearchPaths, dir)
}

// DefaultSearchPaths is the current directory followed by the user module
// directory.
func DefaultSearchPaths() []string {
	paths := []string{"."}
	if p := config.UserModulePath(); p != "" {
		paths = append(paths, p)
	}
	return paths
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Find looks for NAME.so in every search directory, then for NAME.seal.
func (l *Loader) Find(name string) (Source, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return Source{}, fmt.Errorf("invalid module name %q", name)
	}
	for _, dir := range l.SearchPaths {
		path := filepath.Join(dir, name+config.NativePluginExt)
		if isFile(path) {
			return Source{Path: path, Native: true}, nil
		}
	}
	for _, dir := range l.SearchPaths {
		path := filepath.Join(dir, name+config.SourceFileExt)
		if isFile(path) {
			return Source{Path: path}, nil
		}
	}
	return Source{}, fmt.Errorf("module %s not found (searched %s)", name, strings.Join(l.SearchPaths, ", "))
}
