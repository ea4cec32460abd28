package modules

import (
	"fmt"
	"plugin"

	"github.com/agayevhuseyn/seal-sub000/internal/config"
	"github.com/agayevhuseyn/seal-sub000/internal/value"
)

// OpenPlugin loads a native module plugin and returns its init entry point.
// The plugin must export `func SealInit() *value.Module`.
func OpenPlugin(path string) (value.NativeInit, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot load native module %s: %w", path, err)
	}
	sym, err := p.Lookup(config.NativeInitSymbol)
	if err != nil {
		return nil, fmt.Errorf("native module %s: %w", path, err)
	}
	switch fn := sym.(type) {
	case func() *value.Module:
		return fn, nil
	case *value.NativeInit:
		return *fn, nil
	}
	return nil, fmt.Errorf("native module %s: %s has type %T, want func() *value.Module", path, config.NativeInitSymbol, sym)
}
