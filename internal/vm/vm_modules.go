package vm

import (
	"os"

	"github.com/agayevhuseyn/seal-sub000/internal/value"
)

// runScriptModule compiles and runs a script module with a fresh global
// table. The table becomes the module namespace and the functions defined in
// it stay bound to it.
func (vm *VM) runScriptModule(name, path string) (*value.Module, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	proto, err := CompileSource(path, string(src), nil)
	if err != nil {
		return nil, err
	}

	mod := value.NewModule(name)
	vm.logger.Debug().Str("module", name).Str("path", path).Msg("running script module")
	if err := vm.runUnit(proto, mod.Globals); err != nil {
		mod.Value().Release()
		return nil, err
	}
	return mod, nil
}
