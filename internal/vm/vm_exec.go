package vm

import (
	"github.com/agayevhuseyn/seal-sub000/internal/value"
)

// cancelCheckInterval is how many instructions run between context polls.
const cancelCheckInterval = 1024

// run executes fr until RETURN or HALT. The operand stack overflow panic is
// turned into a runtime error of the innermost frame.
func (vm *VM) run(fr *frame) (result value.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if r != errStackOverflow {
				panic(r)
			}
			err = vm.errorf(fr, "stack overflow")
		}
	}()
	return vm.execute(fr)
}

func (vm *VM) readU16(fr *frame) int {
	v := fr.chunk.ReadU16(fr.ip)
	fr.ip += 2
	return v
}

func (vm *VM) readByte(fr *frame) int {
	b := fr.chunk.Code[fr.ip]
	fr.ip++
	return int(b)
}

func (vm *VM) jump(fr *frame, label int) {
	fr.ip = fr.chunk.Labels[label]
}

func (vm *VM) execute(fr *frame) (value.Value, error) {
	code := fr.chunk.Code
	consts := fr.chunk.Constants

	for {
		vm.ops++
		if vm.ops%cancelCheckInterval == 0 {
			if err := vm.ctx.Err(); err != nil {
				e := vm.errorf(fr, "execution interrupted: %v", err)
				e.Err = err
				return value.Null(), e
			}
		}

		fr.last = fr.ip
		op := Opcode(code[fr.ip])
		fr.ip++

		if vm.trace {
			vm.logger.Trace().Str("fn", fr.proto.Name).Int("ip", fr.last).
				Str("op", op.String()).Int("sp", vm.sp).Msg("exec")
		}

		switch op {
		case OP_PUSH_CONST:
			v := consts[vm.readU16(fr)]
			if fn := v.AsFunction(); fn != nil && fn.Globals != fr.globals {
				v = bindFunction(fn, fr)
			}
			vm.push(v.Retain())

		case OP_PUSH_INT:
			vm.push(value.Int(int64(int16(vm.readU16(fr)))))

		case OP_PUSH_NULL:
			vm.push(value.Null())

		case OP_PUSH_TRUE:
			vm.push(value.Bool(true))

		case OP_PUSH_FALSE:
			vm.push(value.Bool(false))

		case OP_POP:
			vm.pop().Release()

		case OP_DUP:
			vm.push(vm.peek(0).Retain())

		case OP_COPY:
			vm.push(vm.peek(vm.readByte(fr)).Retain())

		case OP_SWAP:
			n := vm.readByte(fr)
			top, other := vm.sp-1, vm.sp-1-n
			vm.stack[top], vm.stack[other] = vm.stack[other], vm.stack[top]

		case OP_ADD, OP_SUB, OP_MUL, OP_DIV, OP_MOD,
			OP_BAND, OP_BOR, OP_BXOR, OP_SHL, OP_SHR,
			OP_GT, OP_GE, OP_LT, OP_LE, OP_EQ, OP_NE:
			b := vm.pop()
			a := vm.pop()
			r, err := binaryOp(op, a, b)
			a.Release()
			b.Release()
			if err != nil {
				return value.Null(), vm.wrap(fr, err)
			}
			vm.push(r)

		case OP_NEG, OP_BNOT, OP_NOT:
			a := vm.pop()
			r, err := unaryOp(op, a)
			a.Release()
			if err != nil {
				return value.Null(), vm.wrap(fr, err)
			}
			vm.push(r)

		case OP_JUMP:
			vm.jump(fr, vm.readU16(fr))

		case OP_JUMP_FALSE, OP_JUMP_TRUE:
			label := vm.readU16(fr)
			cond := vm.pop()
			truthy := cond.Truthy()
			cond.Release()
			if truthy == (op == OP_JUMP_TRUE) {
				vm.jump(fr, label)
			}

		case OP_GET_GLOBAL:
			name := consts[vm.readU16(fr)].AsString()
			v, ok := lookupGlobal(fr.globals, name)
			if !ok {
				return value.Null(), vm.errorf(fr, "'%s' is not defined", name)
			}
			vm.push(v.Retain())

		case OP_SET_GLOBAL:
			name := consts[vm.readU16(fr)].AsString()
			v := vm.pop()
			if err := fr.globals.Set(name, v); err != nil {
				v.Release()
				return value.Null(), vm.errorf(fr, "cannot define '%s': %v", name, err)
			}

		case OP_GET_LOCAL:
			vm.push(fr.locals[vm.readByte(fr)].Retain())

		case OP_SET_LOCAL:
			slot := vm.readByte(fr)
			old := fr.locals[slot]
			fr.locals[slot] = vm.pop()
			old.Release()

		case OP_CALL:
			if err := vm.call(fr, vm.readByte(fr)); err != nil {
				return value.Null(), err
			}

		case OP_CALL_METHOD:
			name := consts[vm.readU16(fr)].AsString()
			if err := vm.callMethod(fr, name, vm.readByte(fr)); err != nil {
				return value.Null(), err
			}

		case OP_RETURN:
			result := vm.pop()
			vm.unwind(fr.base)
			return result, nil

		case OP_MAKE_LIST:
			n := vm.readU16(fr)
			items := make([]value.Value, n)
			copy(items, vm.stack[vm.sp-n:vm.sp])
			vm.drop(n)
			vm.push(value.NewList(items))

		case OP_MAKE_MAP:
			m, err := vm.makeMap(vm.readU16(fr))
			if err != nil {
				return value.Null(), vm.wrap(fr, err)
			}
			vm.push(m)

		case OP_GET_FIELD:
			key := vm.pop()
			obj := vm.pop()
			v, err := getField(obj, key)
			obj.Release()
			key.Release()
			if err != nil {
				return value.Null(), vm.wrap(fr, err)
			}
			vm.push(v)

		case OP_SET_FIELD:
			v := vm.pop()
			key := vm.pop()
			obj := vm.pop()
			err := setField(obj, key, v)
			obj.Release()
			key.Release()
			if err != nil {
				return value.Null(), vm.wrap(fr, err)
			}

		case OP_FOR_PREP:
			slot := vm.readByte(fr)
			exit := vm.readU16(fr)
			more, err := vm.forPrep(fr, slot)
			if err != nil {
				return value.Null(), vm.wrap(fr, err)
			}
			if !more {
				vm.jump(fr, exit)
			}

		case OP_FOR_NEXT:
			slot := vm.readByte(fr)
			body := vm.readU16(fr)
			if vm.forNext(fr, slot) {
				vm.jump(fr, body)
			}

		case OP_FOR_STOP:
			vm.unwind(vm.sp - 3)

		case OP_INCLUDE:
			name := vm.pop()
			mod, err := vm.modules.Resolve(name.AsString())
			name.Release()
			if err != nil {
				return value.Null(), vm.wrap(fr, err)
			}
			vm.push(mod.Value().Retain())

		case OP_IMPORT:
			n := vm.readByte(fr)
			names := make([]string, n)
			for i := range names {
				names[i] = consts[vm.readU16(fr)].AsString()
			}
			mod := vm.pop()
			err := importSymbols(mod.AsModule(), fr.globals, names)
			mod.Release()
			if err != nil {
				return value.Null(), vm.wrap(fr, err)
			}

		case OP_HALT:
			return value.Null(), nil

		default:
			return value.Null(), vm.errorf(fr, "unknown opcode %d", op)
		}
	}
}

// bindFunction attaches a function constant to the global table of the
// executing unit. A constant already bound elsewhere is copied.
func bindFunction(fn *value.Function, fr *frame) value.Value {
	if !fn.Bound() {
		fn.Globals = fr.globals
		return fn.Value()
	}
	return (&value.Function{Code: fn.Code, Globals: fr.globals}).Value()
}

// drop forgets the top n cells without releasing them; their references
// have moved elsewhere.
func (vm *VM) drop(n int) {
	for i := 0; i < n; i++ {
		vm.sp--
		vm.stack[vm.sp] = value.Value{}
	}
}
