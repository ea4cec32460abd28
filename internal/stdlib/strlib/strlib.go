// Package strlib is the native `strings` module.
package strlib

import (
	"fmt"
	"strings"

	"github.com/agayevhuseyn/seal-sub000/internal/value"
)

const Name = "strings"

func Init() *value.Module {
	m := value.NewModule(Name)
	m.Register("upper", mapString(strings.ToUpper), 1, false)
	m.Register("lower", mapString(strings.ToLower), 1, false)
	m.Register("trim", mapString(strings.TrimSpace), 1, false)
	m.Register("split", split, 2, false)
	m.Register("join", join, 2, false)
	m.Register("contains", contains, 2, false)
	m.Register("replace", replace, 3, false)
	m.Register("repeat", repeat, 2, false)
	m.Register("index", index, 2, false)
	return m
}

func str(fn string, args []value.Value, i int) (string, error) {
	if !args[i].IsString() {
		return "", fmt.Errorf("strings.%s expects a string for argument %d, got %s", fn, i+1, args[i].TypeName())
	}
	return args[i].AsString(), nil
}

func mapString(f func(string) string) value.BuiltinFunc {
	return func(h value.Host, args []value.Value) (value.Value, error) {
		if !args[0].IsString() {
			return value.Null(), fmt.Errorf("expected a string, got %s", args[0].TypeName())
		}
		return value.NewString(f(args[0].AsString())), nil
	}
}

func split(h value.Host, args []value.Value) (value.Value, error) {
	s, err := str("split", args, 0)
	if err != nil {
		return value.Null(), err
	}
	sep, err := str("split", args, 1)
	if err != nil {
		return value.Null(), err
	}
	parts := strings.Split(s, sep)
	items := make([]value.Value, len(parts))
	for i, p := range parts {
		items[i] = value.NewString(p)
	}
	return value.NewList(items), nil
}

// join concatenates the print forms of the list elements.
func join(h value.Host, args []value.Value) (value.Value, error) {
	if args[0].Kind != value.KindList {
		return value.Null(), fmt.Errorf("strings.join expects a list, got %s", args[0].TypeName())
	}
	sep, err := str("join", args, 1)
	if err != nil {
		return value.Null(), err
	}
	items := args[0].AsList().Items()
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = it.String()
	}
	return value.NewString(strings.Join(parts, sep)), nil
}

func contains(h value.Host, args []value.Value) (value.Value, error) {
	s, err := str("contains", args, 0)
	if err != nil {
		return value.Null(), err
	}
	sub, err := str("contains", args, 1)
	if err != nil {
		return value.Null(), err
	}
	return value.Bool(strings.Contains(s, sub)), nil
}

func replace(h value.Host, args []value.Value) (value.Value, error) {
	var s [3]string
	for i := range s {
		var err error
		if s[i], err = str("replace", args, i); err != nil {
			return value.Null(), err
		}
	}
	return value.NewString(strings.ReplaceAll(s[0], s[1], s[2])), nil
}

func repeat(h value.Host, args []value.Value) (value.Value, error) {
	s, err := str("repeat", args, 0)
	if err != nil {
		return value.Null(), err
	}
	if !args[1].IsInt() || args[1].AsInt() < 0 {
		return value.Null(), fmt.Errorf("strings.repeat count must be a non-negative int, got %s", args[1].Repr())
	}
	return value.NewString(strings.Repeat(s, int(args[1].AsInt()))), nil
}

// index returns the byte offset of the first occurrence, or -1.
func index(h value.Host, args []value.Value) (value.Value, error) {
	s, err := str("index", args, 0)
	if err != nil {
		return value.Null(), err
	}
	sub, err := str("index", args, 1)
	if err != nil {
		return value.Null(), err
	}
	return value.Int(int64(strings.Index(s, sub))), nil
}
