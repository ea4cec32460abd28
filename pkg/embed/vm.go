// Package seal embeds the SEAL runtime in Go programs.
package seal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"

	"github.com/rs/zerolog"

	"github.com/agayevhuseyn/seal-sub000/internal/modules"
	"github.com/agayevhuseyn/seal-sub000/internal/value"
	"github.com/agayevhuseyn/seal-sub000/internal/vm"
)

const evalFile = "<eval>"

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Options configures an embedded VM. Zero values select the defaults.
type Options struct {
	Stdout      io.Writer
	Stdin       io.Reader
	Args        []string
	SearchPaths []string
	Logger      *zerolog.Logger
}

// VM wraps the bytecode VM and provides a high-level embedding API.
type VM struct {
	machine    *vm.VM
	marshaller *Marshaller
}

// New creates a VM. Close it when done.
func New(opts Options) *VM {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	search := opts.SearchPaths
	if search == nil {
		search = modules.DefaultSearchPaths()
	}
	v := &VM{
		machine: vm.New(vm.Options{
			Stdout:      opts.Stdout,
			Stdin:       opts.Stdin,
			Args:        opts.Args,
			SearchPaths: search,
			Logger:      logger,
		}),
		marshaller: NewMarshaller(),
	}
	v.marshaller.wrap = v.wrapFunc
	return v
}

// Close releases every value the VM holds.
func (v *VM) Close() {
	v.machine.Close()
}

// wrapFunc makes fn callable from scripts. A trailing error result is
// returned as a runtime error; with two or more other results the script
// receives a list.
func (v *VM) wrapFunc(name string, fn reflect.Value) value.Value {
	t := fn.Type()
	arity := t.NumIn()
	if t.IsVariadic() {
		arity--
	}
	b := &value.Builtin{
		Name:     name,
		Arity:    arity,
		Variadic: t.IsVariadic(),
		Fn: func(_ value.Host, args []value.Value) (value.Value, error) {
			return v.hostCall(fn, args)
		},
	}
	return b.Value()
}

func (v *VM) hostCall(fn reflect.Value, args []value.Value) (value.Value, error) {
	t := fn.Type()
	numIn := t.NumIn()

	goArgs := make([]reflect.Value, len(args))
	for i, arg := range args {
		var target reflect.Type
		if t.IsVariadic() && i >= numIn-1 {
			target = t.In(numIn - 1).Elem()
		} else {
			target = t.In(i)
		}
		x, err := v.marshaller.FromValue(arg, target)
		if err != nil {
			return value.Null(), fmt.Errorf("argument %d: %w", i+1, err)
		}
		if x == nil {
			goArgs[i] = reflect.Zero(target)
		} else {
			goArgs[i] = reflect.ValueOf(x)
		}
	}

	results := fn.Call(goArgs)
	if n := len(results); n > 0 && t.Out(n-1) == errorType {
		if err, _ := results[n-1].Interface().(error); err != nil {
			return value.Null(), err
		}
		results = results[:n-1]
	}

	switch len(results) {
	case 0:
		return value.Null(), nil
	case 1:
		return v.marshaller.ToValue(results[0].Interface())
	}
	items := make([]value.Value, 0, len(results))
	for _, r := range results {
		item, err := v.marshaller.ToValue(r.Interface())
		if err != nil {
			value.ReleaseAll(items)
			return value.Null(), err
		}
		items = append(items, item)
	}
	return value.NewList(items), nil
}

// Bind makes a Go function or value available to scripts as a global.
func (v *VM) Bind(name string, val interface{}) error {
	if rv := reflect.ValueOf(val); rv.Kind() == reflect.Func && !rv.IsNil() {
		return v.machine.SetGlobal(name, v.wrapFunc(name, rv))
	}
	return v.Set(name, val)
}

// Set sets a global variable. Use Bind for functions.
func (v *VM) Set(name string, val interface{}) error {
	obj, err := v.marshaller.ToValue(val)
	if err != nil {
		return fmt.Errorf("set %s: %w", name, err)
	}
	return v.machine.SetGlobal(name, obj)
}

// Get retrieves a global variable converted to Go.
func (v *VM) Get(name string) (interface{}, error) {
	obj, ok := v.machine.GetGlobal(name)
	if !ok {
		return nil, fmt.Errorf("variable '%s' not found", name)
	}
	return v.marshaller.FromValue(obj, nil)
}

// Call calls a function defined in SEAL (or bound from Go) by name.
func (v *VM) Call(funcName string, args ...interface{}) (interface{}, error) {
	return v.CallContext(context.Background(), funcName, args...)
}

func (v *VM) CallContext(ctx context.Context, funcName string, args ...interface{}) (interface{}, error) {
	fn, ok := v.machine.GetGlobal(funcName)
	if !ok {
		return nil, fmt.Errorf("function '%s' not found", funcName)
	}

	sealArgs := make([]value.Value, 0, len(args))
	defer func() { value.ReleaseAll(sealArgs) }()
	for _, arg := range args {
		obj, err := v.marshaller.ToValue(arg)
		if err != nil {
			return nil, err
		}
		sealArgs = append(sealArgs, obj)
	}

	result, err := v.machine.Call(ctx, fn, sealArgs...)
	if err != nil {
		return nil, err
	}
	defer result.Release()
	return v.marshaller.FromValue(result, nil)
}

// Eval runs SEAL code with the current globals visible. Globals it defines
// stay available to later calls.
func (v *VM) Eval(code string) error {
	return v.EvalContext(context.Background(), code)
}

func (v *VM) EvalContext(ctx context.Context, code string) error {
	return v.machine.RunSource(ctx, evalFile, code)
}

// LoadFile runs a source file or bundle. Its directory is searched for
// modules it includes.
func (v *VM) LoadFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var proto *vm.Proto
	if vm.IsBundle(src) {
		proto, err = vm.DecodeProto(src)
	} else {
		proto, err = vm.CompileSource(path, string(src), v.machine.GlobalNames())
	}
	if err != nil {
		return err
	}
	v.machine.Modules().Loader().AddSearchPath(filepath.Dir(path))
	return v.machine.Run(context.Background(), proto)
}

// ExitCode reports the status passed to exit() when err came from it.
func ExitCode(err error) (int, bool) {
	var exit *vm.ExitError
	if errors.As(err, &exit) {
		return exit.Code, true
	}
	return 0, false
}
