package vm

import (
	"context"
	"fmt"
	"os"

	"github.com/agayevhuseyn/seal-sub000/internal/lexer"
	"github.com/agayevhuseyn/seal-sub000/internal/parser"
	"github.com/agayevhuseyn/seal-sub000/internal/pipeline"
	"github.com/agayevhuseyn/seal-sub000/internal/value"
)

// CompilerProcessor compiles the AST of a pipeline context to a *Proto.
type CompilerProcessor struct {
	// Globals are names the host defines before the unit runs.
	Globals []string
}

func (cp *CompilerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.AstRoot == nil || ctx.Failed() {
		return ctx
	}
	proto, err := Compile(ctx.AstRoot, CompileOptions{File: ctx.FilePath, Globals: cp.Globals})
	if err != nil {
		ctx.Errors = append(ctx.Errors, err)
		return ctx
	}
	ctx.BytecodeChunk = proto
	return ctx
}

// CompileSource runs the front end over src and compiles it.
func CompileSource(file, src string, globals []string) (*Proto, error) {
	ctx := pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&CompilerProcessor{Globals: globals},
	).Run(pipeline.NewContext(file, src))
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ctx.BytecodeChunk.(*Proto), nil
}

// CompileFile reads and compiles a source file. Bundles written by
// EncodeProto are decoded instead.
func CompileFile(path string) (*Proto, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if IsBundle(src) {
		return DecodeProto(src)
	}
	return CompileSource(path, string(src), nil)
}

// RunSource compiles src with the VM's current globals visible and runs it.
func (vm *VM) RunSource(ctx context.Context, file, src string) error {
	proto, err := CompileSource(file, src, vm.GlobalNames())
	if err != nil {
		return err
	}
	return vm.Run(ctx, proto)
}

// SetGlobal stores v in the global table, taking ownership.
func (vm *VM) SetGlobal(name string, v value.Value) error {
	if err := vm.globals.Set(name, v); err != nil {
		v.Release()
		return fmt.Errorf("set global %s: %w", name, err)
	}
	return nil
}

// GetGlobal returns a borrowed global value.
func (vm *VM) GetGlobal(name string) (value.Value, bool) {
	return vm.globals.Get(name)
}

// Call invokes a function value from the host. Arguments are borrowed and
// the result is owned by the caller.
func (vm *VM) Call(ctx context.Context, fn value.Value, args ...value.Value) (result value.Value, err error) {
	if fn.Kind != value.KindFunc {
		return value.Null(), fmt.Errorf("value of type %s is not callable", fn.TypeName())
	}
	if ctx == nil {
		ctx = context.Background()
	}
	vm.ctx = ctx

	base := vm.sp
	defer func() {
		if r := recover(); r != nil {
			if r != errStackOverflow {
				panic(r)
			}
			vm.unwind(base)
			result, err = value.Null(), vm.errorf(nil, "stack overflow")
		}
	}()

	vm.push(fn.Retain())
	for _, a := range args {
		vm.push(a.Retain())
	}
	result, err = vm.invoke(nil, fn, base+1, len(args))
	vm.unwind(base)
	if err != nil {
		return value.Null(), err
	}
	return result, nil
}
