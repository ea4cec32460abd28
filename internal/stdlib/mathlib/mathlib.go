// Package mathlib is the native `math` module.
package mathlib

import (
	"fmt"
	"math"

	"github.com/agayevhuseyn/seal-sub000/internal/value"
)

const Name = "math"

// Init builds the module.
func Init() *value.Module {
	m := value.NewModule(Name)
	m.Register("sqrt", unary("sqrt", math.Sqrt), 1, false)
	m.Register("floor", rounding("floor", math.Floor), 1, false)
	m.Register("ceil", rounding("ceil", math.Ceil), 1, false)
	m.Register("abs", abs, 1, false)
	m.Register("pow", pow, 2, false)
	m.Register("min", extreme("min", func(a, b float64) bool { return a < b }), 1, true)
	m.Register("max", extreme("max", func(a, b float64) bool { return a > b }), 1, true)
	m.SetValue("pi", value.Float(math.Pi))
	m.SetValue("e", value.Float(math.E))
	return m
}

func number(fn string, v value.Value) (float64, error) {
	if !v.IsNumber() {
		return 0, fmt.Errorf("math.%s expects a number, got %s", fn, v.TypeName())
	}
	return v.Number(), nil
}

func unary(name string, f func(float64) float64) value.BuiltinFunc {
	return func(h value.Host, args []value.Value) (value.Value, error) {
		x, err := number(name, args[0])
		if err != nil {
			return value.Null(), err
		}
		if name == "sqrt" && x < 0 {
			return value.Null(), fmt.Errorf("math.sqrt of negative number %s", args[0].String())
		}
		return value.Float(f(x)), nil
	}
}

// rounding functions return ints.
func rounding(name string, f func(float64) float64) value.BuiltinFunc {
	return func(h value.Host, args []value.Value) (value.Value, error) {
		if args[0].IsInt() {
			return args[0], nil
		}
		x, err := number(name, args[0])
		if err != nil {
			return value.Null(), err
		}
		return value.Int(int64(f(x))), nil
	}
}

func abs(h value.Host, args []value.Value) (value.Value, error) {
	v := args[0]
	if v.IsInt() {
		if n := v.AsInt(); n < 0 {
			return value.Int(-n), nil
		}
		return v, nil
	}
	x, err := number("abs", v)
	if err != nil {
		return value.Null(), err
	}
	return value.Float(math.Abs(x)), nil
}

func pow(h value.Host, args []value.Value) (value.Value, error) {
	x, err := number("pow", args[0])
	if err != nil {
		return value.Null(), err
	}
	y, err := number("pow", args[1])
	if err != nil {
		return value.Null(), err
	}
	if args[0].IsInt() && args[1].IsInt() && y >= 0 {
		r := int64(1)
		for b, e := args[0].AsInt(), args[1].AsInt(); e > 0; e >>= 1 {
			if e&1 == 1 {
				r *= b
			}
			b *= b
		}
		return value.Int(r), nil
	}
	return value.Float(math.Pow(x, y)), nil
}

// extreme returns the argument that wins under better, keeping its type.
func extreme(name string, better func(a, b float64) bool) value.BuiltinFunc {
	return func(h value.Host, args []value.Value) (value.Value, error) {
		best := args[0]
		if _, err := number(name, best); err != nil {
			return value.Null(), err
		}
		for _, a := range args[1:] {
			x, err := number(name, a)
			if err != nil {
				return value.Null(), err
			}
			if better(x, best.Number()) {
				best = a
			}
		}
		return best, nil
	}
}
