package value

import (
	"bufio"
	"io"
)

// Host is what the runtime exposes to Go functions.
type Host interface {
	Output() io.Writer
	Input() *bufio.Reader
	Args() []string
}

// BuiltinFunc implements a function in Go. Arguments are borrowed; the result
// is owned by the caller.
type BuiltinFunc func(h Host, args []Value) (Value, error)

// Builtin is a Go function with a fixed arity. When Variadic is set, Arity is
// the minimum argument count.
type Builtin struct {
	Name     string
	Fn       BuiltinFunc
	Arity    int
	Variadic bool
}

func (b *Builtin) Value() Value {
	return Value{Kind: KindFunc, obj: b}
}

// Code is a compiled function body.
type Code interface {
	FuncName() string
	Arity() int
	IsVariadic() bool
}

// Function is a user-defined function. Globals is nil until the function is
// first loaded, then fixed to the global table of the loading module.
type Function struct {
	Code    Code
	Globals *Table
}

func NewFunction(code Code) Value {
	return Value{Kind: KindFunc, obj: &Function{Code: code}}
}

func (f *Function) Value() Value {
	return Value{Kind: KindFunc, obj: f}
}

// Bound reports whether the function is attached to a global table.
func (f *Function) Bound() bool { return f.Globals != nil }

// NativeInit is the entry point of a native module. It returns a module
// holding one reference, owned by the caller.
type NativeInit func() *Module
