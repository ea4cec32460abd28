package vm

import (
	"fmt"

	"github.com/agayevhuseyn/seal-sub000/internal/value"
)

// iterLen is the exclusive upper bound of the cursor for an iterable.
func iterLen(it value.Value) int64 {
	switch it.Kind {
	case value.KindInt:
		return it.AsInt()
	case value.KindString:
		return int64(len(it.AsString()))
	case value.KindList:
		return int64(it.AsList().Len())
	}
	return 0
}

// iterElem returns the owned element at cursor i.
func iterElem(it value.Value, i int64) value.Value {
	switch it.Kind {
	case value.KindString:
		return value.NewString(it.AsString()[i : i+1])
	case value.KindList:
		return it.AsList().Get(int(i)).Retain()
	}
	return value.Int(i)
}

func bindLocal(fr *frame, slot int, v value.Value) {
	old := fr.locals[slot]
	fr.locals[slot] = v
	old.Release()
}

// forPrep validates [iterable, step] on the stack, pushes the cursor and
// binds the first element. It reports false, with the loop state dropped,
// when there is nothing to iterate.
func (vm *VM) forPrep(fr *frame, slot int) (bool, error) {
	it, step := vm.peek(1), vm.peek(0)
	switch it.Kind {
	case value.KindInt, value.KindString, value.KindList:
	default:
		vm.unwind(vm.sp - 2)
		return false, fmt.Errorf("cannot iterate over value of type %s", it.TypeName())
	}
	if !step.IsInt() || step.AsInt() == 0 {
		vm.unwind(vm.sp - 2)
		return false, fmt.Errorf("for step must be a non-zero int, got %s", step.Repr())
	}

	n := iterLen(it)
	var cursor int64
	if step.AsInt() < 0 {
		cursor = n - 1
	}
	vm.push(value.Int(cursor))
	if cursor < 0 || cursor >= n {
		vm.unwind(vm.sp - 3)
		return false, nil
	}
	bindLocal(fr, slot, iterElem(it, cursor))
	return true, nil
}

// forNext advances the cursor by step. The length is read again on every
// step since the body may grow or shrink a list.
func (vm *VM) forNext(fr *frame, slot int) bool {
	it, step := vm.peek(2), vm.peek(1)
	cursor := vm.peek(0).AsInt() + step.AsInt()
	vm.stack[vm.sp-1] = value.Int(cursor)
	if cursor < 0 || cursor >= iterLen(it) {
		vm.unwind(vm.sp - 3)
		return false
	}
	bindLocal(fr, slot, iterElem(it, cursor))
	return true
}
