package value

import (
	"math"

	"github.com/agayevhuseyn/seal-sub000/internal/config"
)

// Kind identifies the variant stored in a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindBool
	KindString
	KindList
	KindMap
	KindFunc
	KindModule
	KindPtr
)

// Value is a tagged union. Scalars live in data; strings, lists, maps and
// modules point at a reference-counted object, functions and pointers at an
// uncounted one.
type Value struct {
	Kind Kind
	data uint64
	obj  any
}

// Constructors. Values wrapping a new heap object hold one reference.

func Null() Value {
	return Value{Kind: KindNull}
}

func Int(i int64) Value {
	return Value{Kind: KindInt, data: uint64(i)}
}

func Float(f float64) Value {
	return Value{Kind: KindFloat, data: math.Float64bits(f)}
}

func Bool(b bool) Value {
	var data uint64
	if b {
		data = 1
	}
	return Value{Kind: KindBool, data: data}
}

// Accessors. The caller checks Kind first.

func (v Value) AsInt() int64     { return int64(v.data) }
func (v Value) AsFloat() float64 { return math.Float64frombits(v.data) }
func (v Value) AsBool() bool     { return v.data == 1 }

func (v Value) AsString() string {
	if s, ok := v.obj.(*String); ok {
		return s.s
	}
	return ""
}

func (v Value) StringObj() *String {
	s, _ := v.obj.(*String)
	return s
}

func (v Value) AsList() *List {
	l, _ := v.obj.(*List)
	return l
}

func (v Value) AsMap() *Map {
	m, _ := v.obj.(*Map)
	return m
}

func (v Value) AsModule() *Module {
	m, _ := v.obj.(*Module)
	return m
}

func (v Value) AsFunction() *Function {
	f, _ := v.obj.(*Function)
	return f
}

func (v Value) AsBuiltin() *Builtin {
	b, _ := v.obj.(*Builtin)
	return b
}

func (v Value) AsPtr() *Ptr {
	p, _ := v.obj.(*Ptr)
	return p
}

func (v Value) IsNull() bool   { return v.Kind == KindNull }
func (v Value) IsInt() bool    { return v.Kind == KindInt }
func (v Value) IsFloat() bool  { return v.Kind == KindFloat }
func (v Value) IsNumber() bool { return v.Kind == KindInt || v.Kind == KindFloat }
func (v Value) IsString() bool { return v.Kind == KindString }

// IsBuiltin reports whether v is a function implemented in Go.
func (v Value) IsBuiltin() bool {
	_, ok := v.obj.(*Builtin)
	return v.Kind == KindFunc && ok
}

// Number returns v as a float64, promoting ints.
func (v Value) Number() float64 {
	if v.Kind == KindInt {
		return float64(v.AsInt())
	}
	return v.AsFloat()
}

// TypeName is the name reported by type() and in diagnostics.
func (v Value) TypeName() string {
	switch v.Kind {
	case KindNull:
		return config.NullTypeName
	case KindInt:
		return config.IntTypeName
	case KindFloat:
		return config.FloatTypeName
	case KindBool:
		return config.BoolTypeName
	case KindString:
		return config.StringTypeName
	case KindList:
		return config.ListTypeName
	case KindMap:
		return config.MapTypeName
	case KindFunc:
		return config.FunctionTypeName
	case KindModule:
		return config.ModuleTypeName
	case KindPtr:
		return config.PtrTypeName
	}
	return "unknown"
}

// Truthy applies the universal truthiness rule.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindNull:
		return false
	case KindInt:
		return v.AsInt() != 0
	case KindFloat:
		return v.AsFloat() != 0
	case KindBool:
		return v.AsBool()
	case KindString:
		return len(v.AsString()) > 0
	case KindList:
		return v.AsList().Len() > 0
	case KindMap:
		return v.AsMap().Len() > 0
	case KindPtr:
		return v.AsPtr().Data != nil
	}
	return true
}

// Equal compares a and b. ok is false for pairings that have no equality.
func Equal(a, b Value) (eq bool, ok bool) {
	if a.Kind == KindNull || b.Kind == KindNull {
		return a.Kind == b.Kind, true
	}
	switch {
	case a.Kind == KindInt && b.Kind == KindInt:
		return a.AsInt() == b.AsInt(), true
	case a.IsNumber() && b.IsNumber():
		return a.Number() == b.Number(), true
	case a.Kind == KindString && b.Kind == KindString:
		return a.AsString() == b.AsString(), true
	case a.Kind == KindBool && b.Kind == KindBool:
		return a.AsBool() == b.AsBool(), true
	case a.Kind == KindMap && b.Kind == KindMap:
		return a.AsMap() == b.AsMap(), true
	}
	return false, false
}
