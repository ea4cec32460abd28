package vm

import (
	"fmt"

	"github.com/agayevhuseyn/seal-sub000/internal/value"
)

// call invokes the callee below the top argc arguments and replaces callee
// and arguments with the result.
func (vm *VM) call(fr *frame, argc int) error {
	base := vm.sp - argc
	callee := vm.stack[base-1]

	result, err := vm.invoke(fr, callee, base, argc)
	if err != nil {
		return err
	}
	vm.pop().Release() // callee
	vm.push(result)
	return nil
}

// callMethod dispatches recv.name(args). A module member or a function
// stored in a map under name is called directly; otherwise the global
// function name is called with the receiver as its first argument.
func (vm *VM) callMethod(fr *frame, name string, argc int) error {
	base := vm.sp - argc
	recv := vm.stack[base-1]

	switch recv.Kind {
	case value.KindModule:
		mod := recv.AsModule()
		fn, ok := mod.Globals.Get(name)
		if !ok {
			return vm.errorf(fr, "module %s has no member '%s'", mod.Name, name)
		}
		vm.stack[base-1] = fn.Retain()
		recv.Release()
		return vm.call(fr, argc)

	case value.KindMap:
		if fn, ok := recv.AsMap().Get(name); ok && fn.Kind == value.KindFunc {
			vm.stack[base-1] = fn.Retain()
			recv.Release()
			return vm.call(fr, argc)
		}
	}

	fn, ok := lookupGlobal(fr.globals, name)
	if !ok || fn.Kind != value.KindFunc {
		return vm.errorf(fr, "%s has no method '%s'", recv.TypeName(), name)
	}
	// [recv, args...] -> [fn, recv, args...]
	vm.push(value.Null())
	copy(vm.stack[base:vm.sp], vm.stack[base-1:vm.sp-1])
	vm.stack[base-1] = fn.Retain()
	return vm.call(fr, argc+1)
}

func checkArity(name string, arity int, variadic bool, argc int) error {
	if variadic {
		if argc < arity {
			return fmt.Errorf("function %s expects at least %d arguments, got %d", name, arity, argc)
		}
		return nil
	}
	if argc != arity {
		return fmt.Errorf("function %s expects %d arguments, got %d", name, arity, argc)
	}
	return nil
}

// invoke calls callee with the arguments in stack[base:base+argc] and pops
// them. The result is owned by the caller.
func (vm *VM) invoke(fr *frame, callee value.Value, base, argc int) (value.Value, error) {
	if b := callee.AsBuiltin(); b != nil {
		if err := checkArity(b.Name, b.Arity, b.Variadic, argc); err != nil {
			return value.Null(), vm.wrap(fr, err)
		}
		result, err := b.Fn(vm, vm.stack[base:base+argc])
		vm.unwind(base)
		if err != nil {
			return value.Null(), vm.wrap(fr, err)
		}
		return result, nil
	}

	if fn := callee.AsFunction(); fn != nil {
		return vm.callFunction(fr, fn, base, argc)
	}
	return value.Null(), vm.errorf(fr, "value of type %s is not callable", callee.TypeName())
}

// callFunction runs a user function in a new frame. Arguments move from the
// stack into the first local slots; a variadic function collects the extra
// arguments into a list in its last parameter slot.
func (vm *VM) callFunction(caller *frame, fn *value.Function, base, argc int) (value.Value, error) {
	proto, ok := fn.Code.(*Proto)
	if !ok {
		return value.Null(), vm.errorf(caller, "function %s has no bytecode", fn.Code.FuncName())
	}
	fixed := proto.NumParams
	if proto.Variadic {
		fixed--
	}
	if err := checkArity(proto.Name, fixed, proto.Variadic, argc); err != nil {
		return value.Null(), vm.wrap(caller, err)
	}
	if len(vm.frames) >= vm.maxDepth {
		return value.Null(), vm.errorf(caller, "stack overflow")
	}

	locals := make([]value.Value, proto.NumLocals)
	copy(locals, vm.stack[base:base+fixed])
	if proto.Variadic {
		extra := make([]value.Value, argc-fixed)
		copy(extra, vm.stack[base+fixed:base+argc])
		locals[fixed] = value.NewList(extra)
	}
	vm.drop(argc)

	globals := fn.Globals
	if globals == nil {
		globals = vm.globals
		if caller != nil {
			globals = caller.globals
		}
	}
	callee := &frame{
		proto:   proto,
		chunk:   proto.Chunk,
		locals:  locals,
		globals: globals,
		base:    vm.sp,
	}

	vm.frames = append(vm.frames, callee)
	result, err := vm.run(callee)
	vm.frames = vm.frames[:len(vm.frames)-1]
	value.ReleaseAll(callee.locals)
	if err != nil {
		vm.unwind(callee.base)
		return value.Null(), err
	}
	return result, nil
}
