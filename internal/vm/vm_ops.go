package vm

import (
	"errors"
	"fmt"

	"github.com/agayevhuseyn/seal-sub000/internal/value"
)

var errDivisionByZero = errors.New("division by zero")

// opSymbols maps binary opcodes back to their operator for diagnostics.
var opSymbols = func() map[Opcode]string {
	m := make(map[Opcode]string, len(binaryOpcodes))
	for sym, op := range binaryOpcodes {
		m[op] = sym
	}
	return m
}()

func unsupported(op Opcode, a, b value.Value) error {
	return fmt.Errorf("operator %s not supported for types %s and %s", opSymbols[op], a.TypeName(), b.TypeName())
}

// binaryOp applies a binary opcode to borrowed operands and returns an owned
// result.
func binaryOp(op Opcode, a, b value.Value) (value.Value, error) {
	switch op {
	case OP_ADD, OP_SUB, OP_MUL, OP_DIV, OP_MOD:
		return arith(op, a, b)
	case OP_BAND, OP_BOR, OP_BXOR, OP_SHL, OP_SHR:
		return bitwise(op, a, b)
	case OP_GT, OP_GE, OP_LT, OP_LE:
		return compare(op, a, b)
	case OP_EQ, OP_NE:
		eq, ok := value.Equal(a, b)
		if !ok {
			return value.Null(), unsupported(op, a, b)
		}
		return value.Bool(eq == (op == OP_EQ)), nil
	}
	return value.Null(), fmt.Errorf("unknown binary opcode %s", op)
}

func arith(op Opcode, a, b value.Value) (value.Value, error) {
	switch {
	case a.IsInt() && b.IsInt():
		x, y := a.AsInt(), b.AsInt()
		switch op {
		case OP_ADD:
			return value.Int(x + y), nil
		case OP_SUB:
			return value.Int(x - y), nil
		case OP_MUL:
			return value.Int(x * y), nil
		case OP_DIV:
			if y == 0 {
				return value.Null(), errDivisionByZero
			}
			return value.Int(x / y), nil
		case OP_MOD:
			if y == 0 {
				return value.Null(), errDivisionByZero
			}
			return value.Int(x % y), nil
		}

	case a.IsNumber() && b.IsNumber():
		x, y := a.Number(), b.Number()
		switch op {
		case OP_ADD:
			return value.Float(x + y), nil
		case OP_SUB:
			return value.Float(x - y), nil
		case OP_MUL:
			return value.Float(x * y), nil
		case OP_DIV:
			if y == 0 {
				return value.Null(), errDivisionByZero
			}
			return value.Float(x / y), nil
		}

	case a.IsString() && b.IsString() && op == OP_ADD:
		return value.NewString(a.AsString() + b.AsString()), nil
	}
	return value.Null(), unsupported(op, a, b)
}

func bitwise(op Opcode, a, b value.Value) (value.Value, error) {
	if !a.IsInt() || !b.IsInt() {
		return value.Null(), unsupported(op, a, b)
	}
	x, y := a.AsInt(), b.AsInt()
	switch op {
	case OP_BAND:
		return value.Int(x & y), nil
	case OP_BOR:
		return value.Int(x | y), nil
	case OP_BXOR:
		return value.Int(x ^ y), nil
	}
	if y < 0 {
		return value.Null(), fmt.Errorf("negative shift count %d", y)
	}
	if op == OP_SHL {
		return value.Int(x << uint64(y)), nil
	}
	return value.Int(x >> uint64(y)), nil
}

func compare(op Opcode, a, b value.Value) (value.Value, error) {
	if a.IsInt() && b.IsInt() {
		x, y := a.AsInt(), b.AsInt()
		switch op {
		case OP_GT:
			return value.Bool(x > y), nil
		case OP_GE:
			return value.Bool(x >= y), nil
		case OP_LT:
			return value.Bool(x < y), nil
		}
		return value.Bool(x <= y), nil
	}
	if !a.IsNumber() || !b.IsNumber() {
		return value.Null(), unsupported(op, a, b)
	}
	// every ordering involving NaN is false
	x, y := a.Number(), b.Number()
	switch op {
	case OP_GT:
		return value.Bool(x > y), nil
	case OP_GE:
		return value.Bool(x >= y), nil
	case OP_LT:
		return value.Bool(x < y), nil
	}
	return value.Bool(x <= y), nil
}

func unaryOp(op Opcode, a value.Value) (value.Value, error) {
	switch op {
	case OP_NOT:
		return value.Bool(!a.Truthy()), nil
	case OP_NEG:
		switch {
		case a.IsInt():
			return value.Int(-a.AsInt()), nil
		case a.IsFloat():
			return value.Float(-a.AsFloat()), nil
		}
		return value.Null(), fmt.Errorf("operator - not supported for type %s", a.TypeName())
	case OP_BNOT:
		if a.IsInt() {
			return value.Int(^a.AsInt()), nil
		}
		return value.Null(), fmt.Errorf("operator ~ not supported for type %s", a.TypeName())
	}
	return value.Null(), fmt.Errorf("unknown unary opcode %s", op)
}

// makeMap builds a map from the top 2n stack cells, alternating keys and
// values.
func (vm *VM) makeMap(n int) (value.Value, error) {
	base := vm.sp - 2*n
	m := value.NewMap()
	tbl := m.AsMap()
	for i := 0; i < n; i++ {
		key := vm.stack[base+2*i]
		v := vm.stack[base+2*i+1].Retain()
		if err := tbl.Set(key.AsString(), v); err != nil {
			v.Release()
			m.Release()
			vm.unwind(base)
			return value.Null(), err
		}
	}
	vm.unwind(base)
	return m, nil
}

// index validates an integer subscript against length n.
func index(obj, key value.Value, n int) (int, error) {
	if !key.IsInt() {
		return 0, fmt.Errorf("%s index must be int, got %s", obj.TypeName(), key.TypeName())
	}
	i := key.AsInt()
	if i < 0 || i >= int64(n) {
		return 0, fmt.Errorf("%s index %d out of range [0, %d)", obj.TypeName(), i, n)
	}
	return int(i), nil
}

// getField reads obj[key] from borrowed operands and returns an owned value.
// An absent map key reads as null; an absent module symbol is an error.
func getField(obj, key value.Value) (value.Value, error) {
	switch obj.Kind {
	case value.KindMap:
		if !key.IsString() {
			return value.Null(), fmt.Errorf("map key must be string, got %s", key.TypeName())
		}
		v, _ := obj.AsMap().Get(key.AsString())
		return v.Retain(), nil

	case value.KindModule:
		if !key.IsString() {
			return value.Null(), fmt.Errorf("module member must be string, got %s", key.TypeName())
		}
		mod := obj.AsModule()
		v, ok := mod.Globals.Get(key.AsString())
		if !ok {
			return value.Null(), fmt.Errorf("module %s has no member '%s'", mod.Name, key.AsString())
		}
		return v.Retain(), nil

	case value.KindString:
		s := obj.AsString()
		i, err := index(obj, key, len(s))
		if err != nil {
			return value.Null(), err
		}
		return value.NewString(s[i : i+1]), nil

	case value.KindList:
		l := obj.AsList()
		i, err := index(obj, key, l.Len())
		if err != nil {
			return value.Null(), err
		}
		return l.Get(i).Retain(), nil
	}
	return value.Null(), fmt.Errorf("cannot index value of type %s", obj.TypeName())
}

// setField stores v into obj[key], consuming v.
func setField(obj, key, v value.Value) error {
	var err error
	switch obj.Kind {
	case value.KindMap:
		if !key.IsString() {
			err = fmt.Errorf("map key must be string, got %s", key.TypeName())
			break
		}
		err = obj.AsMap().Set(key.AsString(), v)
		if err == nil {
			return nil
		}

	case value.KindList:
		l := obj.AsList()
		var i int
		if i, err = index(obj, key, l.Len()); err == nil {
			l.Set(i, v)
			return nil
		}

	case value.KindString, value.KindModule:
		err = fmt.Errorf("cannot assign to %s: %s is immutable", obj.TypeName(), obj.TypeName())

	default:
		err = fmt.Errorf("cannot index value of type %s", obj.TypeName())
	}
	v.Release()
	return err
}

// importSymbols copies the named members of mod into globals.
func importSymbols(mod *value.Module, globals *value.Table, names []string) error {
	if mod == nil {
		return errors.New("import from a value that is not a module")
	}
	for _, name := range names {
		v, ok := mod.Globals.Get(name)
		if !ok {
			return fmt.Errorf("module %s has no member '%s'", mod.Name, name)
		}
		if err := globals.Set(name, v.Retain()); err != nil {
			v.Release()
			return err
		}
	}
	return nil
}
