package vm

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/agayevhuseyn/seal-sub000/internal/config"
	"github.com/agayevhuseyn/seal-sub000/internal/value"
)

// builtins are installed in the VM's global table. Script module tables fall
// back to builtinTable instead, so a module namespace holds only what the
// script defined.
var builtins = []*value.Builtin{
	{Name: config.PrintFuncName, Fn: builtinPrint, Arity: 0, Variadic: true},
	{Name: config.ScanFuncName, Fn: builtinScan, Arity: 0, Variadic: true},
	{Name: config.ExitFuncName, Fn: builtinExit, Arity: 0, Variadic: true},
	{Name: config.LenFuncName, Fn: builtinLen, Arity: 1},
	{Name: config.IntFuncName, Fn: builtinInt, Arity: 1},
	{Name: config.FloatFuncName, Fn: builtinFloat, Arity: 1},
	{Name: config.StrFuncName, Fn: builtinStr, Arity: 1},
	{Name: config.BoolFuncName, Fn: builtinBool, Arity: 1},
	{Name: config.PushFuncName, Fn: builtinPush, Arity: 2},
	{Name: config.PopFuncName, Fn: builtinPop, Arity: 1},
	{Name: config.InsertFuncName, Fn: builtinInsert, Arity: 3},
	{Name: config.RemoveFuncName, Fn: builtinRemove, Arity: 2},
	{Name: config.SpanFuncName, Fn: builtinSpan, Arity: 1, Variadic: true},
	{Name: config.TypeFuncName, Fn: builtinType, Arity: 1},
	{Name: config.KeysFuncName, Fn: builtinKeys, Arity: 1},
	{Name: config.HasFuncName, Fn: builtinHas, Arity: 2},
}

var builtinTable = value.NewTable()

func init() {
	for _, b := range builtins {
		if builtinTable.Has(b.Name) {
			panic(fmt.Sprintf("builtin %q registered twice", b.Name))
		}
		installBuiltin(builtinTable, b)
	}
}

// lookupGlobal returns a borrowed global, falling back to the builtins.
func lookupGlobal(globals *value.Table, name string) (value.Value, bool) {
	if v, ok := globals.Get(name); ok {
		return v, true
	}
	return builtinTable.Get(name)
}

func builtinNames() []string {
	names := make([]string, len(builtins))
	for i, b := range builtins {
		names[i] = b.Name
	}
	return names
}

func installBuiltins(globals *value.Table) {
	for _, b := range builtins {
		installBuiltin(globals, b)
	}
}

func installBuiltin(globals *value.Table, b *value.Builtin) {
	if err := globals.Set(b.Name, b.Value()); err != nil {
		panic(err)
	}
}

func builtinPrint(h value.Host, args []value.Value) (value.Value, error) {
	var sb strings.Builder
	for i, arg := range args {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(arg.String())
	}
	sb.WriteByte('\n')
	if _, err := io.WriteString(h.Output(), sb.String()); err != nil {
		return value.Null(), fmt.Errorf("print: %w", err)
	}
	return value.Null(), nil
}

// scan([prompt]) reads one line without its terminator; null at end of input.
func builtinScan(h value.Host, args []value.Value) (value.Value, error) {
	if len(args) > 1 {
		return value.Null(), fmt.Errorf("function scan expects at most 1 argument, got %d", len(args))
	}
	if len(args) == 1 {
		if _, err := io.WriteString(h.Output(), args[0].String()); err != nil {
			return value.Null(), fmt.Errorf("scan: %w", err)
		}
	}
	line, err := h.Input().ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return value.Null(), fmt.Errorf("scan: %w", err)
		}
		if line == "" {
			return value.Null(), nil
		}
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return value.NewString(line), nil
}

func builtinExit(h value.Host, args []value.Value) (value.Value, error) {
	code := 0
	switch len(args) {
	case 0:
	case 1:
		if !args[0].IsInt() {
			return value.Null(), fmt.Errorf("exit code must be int, got %s", args[0].TypeName())
		}
		code = int(args[0].AsInt())
	default:
		return value.Null(), fmt.Errorf("function exit expects at most 1 argument, got %d", len(args))
	}
	return value.Null(), &ExitError{Code: code}
}

func builtinLen(h value.Host, args []value.Value) (value.Value, error) {
	v := args[0]
	switch v.Kind {
	case value.KindString:
		return value.Int(int64(len(v.AsString()))), nil
	case value.KindList:
		return value.Int(int64(v.AsList().Len())), nil
	case value.KindMap:
		return value.Int(int64(v.AsMap().Len())), nil
	case value.KindModule:
		return value.Int(int64(v.AsModule().Globals.Len())), nil
	}
	return value.Null(), fmt.Errorf("len not supported for type %s", v.TypeName())
}

func builtinInt(h value.Host, args []value.Value) (value.Value, error) {
	v := args[0]
	switch v.Kind {
	case value.KindInt:
		return v, nil
	case value.KindFloat:
		return value.Int(int64(v.AsFloat())), nil
	case value.KindBool:
		if v.AsBool() {
			return value.Int(1), nil
		}
		return value.Int(0), nil
	case value.KindString:
		n, err := strconv.ParseInt(strings.TrimSpace(v.AsString()), 10, 64)
		if err != nil {
			return value.Null(), fmt.Errorf("cannot convert %q to int", v.AsString())
		}
		return value.Int(n), nil
	}
	return value.Null(), fmt.Errorf("cannot convert %s to int", v.TypeName())
}

func builtinFloat(h value.Host, args []value.Value) (value.Value, error) {
	v := args[0]
	switch v.Kind {
	case value.KindInt:
		return value.Float(float64(v.AsInt())), nil
	case value.KindFloat:
		return v, nil
	case value.KindBool:
		if v.AsBool() {
			return value.Float(1), nil
		}
		return value.Float(0), nil
	case value.KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.AsString()), 64)
		if err != nil {
			return value.Null(), fmt.Errorf("cannot convert %q to float", v.AsString())
		}
		return value.Float(f), nil
	}
	return value.Null(), fmt.Errorf("cannot convert %s to float", v.TypeName())
}

func builtinStr(h value.Host, args []value.Value) (value.Value, error) {
	if args[0].IsString() {
		return args[0].Retain(), nil
	}
	return value.NewString(args[0].String()), nil
}

func builtinBool(h value.Host, args []value.Value) (value.Value, error) {
	return value.Bool(args[0].Truthy()), nil
}

func listArg(fn string, v value.Value) (*value.List, error) {
	if v.Kind != value.KindList {
		return nil, fmt.Errorf("%s expects a list, got %s", fn, v.TypeName())
	}
	return v.AsList(), nil
}

func builtinPush(h value.Host, args []value.Value) (value.Value, error) {
	l, err := listArg(config.PushFuncName, args[0])
	if err != nil {
		return value.Null(), err
	}
	l.Append(args[1].Retain())
	return value.Null(), nil
}

func builtinPop(h value.Host, args []value.Value) (value.Value, error) {
	l, err := listArg(config.PopFuncName, args[0])
	if err != nil {
		return value.Null(), err
	}
	if l.Len() == 0 {
		return value.Null(), errors.New("pop from empty list")
	}
	return l.Pop(), nil
}

func builtinInsert(h value.Host, args []value.Value) (value.Value, error) {
	l, err := listArg(config.InsertFuncName, args[0])
	if err != nil {
		return value.Null(), err
	}
	if !args[1].IsInt() {
		return value.Null(), fmt.Errorf("insert index must be int, got %s", args[1].TypeName())
	}
	i := args[1].AsInt()
	if i < 0 || i > int64(l.Len()) {
		return value.Null(), fmt.Errorf("insert index %d out of range [0, %d]", i, l.Len())
	}
	l.Insert(int(i), args[2].Retain())
	return value.Null(), nil
}

// remove(list, index) returns the removed element; remove(map, key) returns
// the removed value or null.
func builtinRemove(h value.Host, args []value.Value) (value.Value, error) {
	switch args[0].Kind {
	case value.KindList:
		l := args[0].AsList()
		i, err := index(args[0], args[1], l.Len())
		if err != nil {
			return value.Null(), err
		}
		return l.Remove(i), nil
	case value.KindMap:
		if !args[1].IsString() {
			return value.Null(), fmt.Errorf("map key must be string, got %s", args[1].TypeName())
		}
		m := args[0].AsMap()
		v, ok := m.Get(args[1].AsString())
		if !ok {
			return value.Null(), nil
		}
		v = v.Retain()
		m.Delete(args[1].AsString())
		return v, nil
	}
	return value.Null(), fmt.Errorf("remove expects a list or map, got %s", args[0].TypeName())
}

// span(end), span(start, end) or span(start, end, step) builds a list of ints.
func builtinSpan(h value.Host, args []value.Value) (value.Value, error) {
	if len(args) > 3 {
		return value.Null(), fmt.Errorf("function span expects at most 3 arguments, got %d", len(args))
	}
	for _, a := range args {
		if !a.IsInt() {
			return value.Null(), fmt.Errorf("span expects int arguments, got %s", a.TypeName())
		}
	}
	var start, end, step int64 = 0, args[0].AsInt(), 1
	if len(args) >= 2 {
		start, end = args[0].AsInt(), args[1].AsInt()
	}
	if len(args) == 3 {
		step = args[2].AsInt()
	}
	if step == 0 {
		return value.Null(), errors.New("span step must not be zero")
	}

	var items []value.Value
	for i := start; (step > 0 && i < end) || (step < 0 && i > end); i += step {
		items = append(items, value.Int(i))
		if (step > 0 && i > math.MaxInt64-step) || (step < 0 && i < math.MinInt64-step) {
			break
		}
	}
	return value.NewList(items), nil
}

func builtinType(h value.Host, args []value.Value) (value.Value, error) {
	return value.NewString(args[0].TypeName()), nil
}

func tableArg(fn string, v value.Value) (*value.Table, error) {
	switch v.Kind {
	case value.KindMap:
		return &v.AsMap().Table, nil
	case value.KindModule:
		return v.AsModule().Globals, nil
	}
	return nil, fmt.Errorf("%s expects a map or module, got %s", fn, v.TypeName())
}

func builtinKeys(h value.Host, args []value.Value) (value.Value, error) {
	t, err := tableArg(config.KeysFuncName, args[0])
	if err != nil {
		return value.Null(), err
	}
	keys := t.Keys()
	items := make([]value.Value, len(keys))
	for i, k := range keys {
		items[i] = value.NewString(k)
	}
	return value.NewList(items), nil
}

func builtinHas(h value.Host, args []value.Value) (value.Value, error) {
	t, err := tableArg(config.HasFuncName, args[0])
	if err != nil {
		return value.Null(), err
	}
	if !args[1].IsString() {
		return value.Null(), fmt.Errorf("has expects a string key, got %s", args[1].TypeName())
	}
	return value.Bool(t.Has(args[1].AsString())), nil
}
