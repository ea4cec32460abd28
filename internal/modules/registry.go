// Package modules resolves `include` statements to modules and caches them
// for the lifetime of a VM.
package modules

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/agayevhuseyn/seal-sub000/internal/stdlib"
	"github.com/agayevhuseyn/seal-sub000/internal/value"
)

// ScriptRunner compiles and executes the script at path and returns the
// resulting module, holding one reference.
type ScriptRunner func(name, path string) (*value.Module, error)

// Options configures a Registry.
type Options struct {
	// SearchPaths are searched in order; nil selects DefaultSearchPaths.
	SearchPaths []string

	// Natives are the compiled-in native modules; nil selects stdlib.Natives.
	Natives map[string]value.NativeInit

	Logger zerolog.Logger
	Runner ScriptRunner
}

// Registry is the module cache. A module is initialized at most once; later
// includes of the same name get the cached module.
type Registry struct {
	cache      map[string]*value.Module // one reference each, owned by the registry
	processing map[string]bool          // include cycle detection
	loader     *Loader
	natives    map[string]value.NativeInit
	runner     ScriptRunner
	logger     zerolog.Logger
}

func NewRegistry(opts Options) *Registry {
	if opts.Natives == nil {
		opts.Natives = stdlib.Natives()
	}
	if opts.SearchPaths == nil {
		opts.SearchPaths = DefaultSearchPaths()
	}
	return &Registry{
		cache:      make(map[string]*value.Module),
		processing: make(map[string]bool),
		loader:     NewLoader(opts.SearchPaths),
		natives:    opts.Natives,
		runner:     opts.Runner,
		logger:     opts.Logger,
	}
}

func (r *Registry) Loader() *Loader { return r.loader }

// Resolve returns the module called name, loading it on first use. The
// returned module is borrowed from the cache.
func (r *Registry) Resolve(name string) (*value.Module, error) {
	if mod, ok := r.cache[name]; ok {
		r.logger.Trace().Str("module", name).Msg("module cache hit")
		return mod, nil
	}
	if r.processing[name] {
		return nil, fmt.Errorf("include cycle detected: module %s", name)
	}
	r.processing[name] = true
	defer delete(r.processing, name)

	mod, err := r.load(name)
	if err != nil {
		return nil, err
	}
	r.cache[name] = mod
	return mod, nil
}

func (r *Registry) load(name string) (*value.Module, error) {
	if initFn, ok := r.natives[name]; ok {
		r.logger.Debug().Str("module", name).Msg("loading builtin native module")
		return initModule(name, initFn)
	}

	src, err := r.loader.Find(name)
	if err != nil {
		return nil, err
	}
	r.logger.Debug().Str("module", name).Str("path", src.Path).Bool("native", src.Native).Msg("loading module")

	if src.Native {
		initFn, err := OpenPlugin(src.Path)
		if err != nil {
			return nil, err
		}
		return initModule(name, initFn)
	}
	if r.runner == nil {
		return nil, fmt.Errorf("module %s: no script runner configured", name)
	}
	return r.runner(name, src.Path)
}

func initModule(name string, initFn value.NativeInit) (*value.Module, error) {
	mod := initFn()
	if mod == nil {
		return nil, fmt.Errorf("module %s: init returned no module", name)
	}
	return mod, nil
}

// Loaded reports whether name is in the cache.
func (r *Registry) Loaded(name string) bool {
	_, ok := r.cache[name]
	return ok
}

// Close releases every cached module.
func (r *Registry) Close() {
	for name, mod := range r.cache {
		mod.Value().Release()
		delete(r.cache, name)
	}
}
