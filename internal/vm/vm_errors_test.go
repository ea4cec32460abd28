package vm

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// runVMExpectError runs src and returns the runtime error it must fail with.
func runVMExpectError(t *testing.T, src string) (*RuntimeError, string) {
	t.Helper()
	var out bytes.Buffer
	m := New(Options{Stdout: &out, Stdin: strings.NewReader(""), Logger: zerolog.Nop(), MaxDepth: 200})
	defer m.Close()

	err := m.RunSource(context.Background(), "test.seal", src)
	if err == nil {
		t.Fatalf("expected a runtime error\nsource:\n%s", src)
	}
	var rt *RuntimeError
	if !errors.As(err, &rt) {
		t.Fatalf("expected *RuntimeError, got %T: %v", err, err)
	}
	return rt, out.String()
}

func TestRuntimeErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
		line int
	}{
		{"int_division_by_zero", "print(1 / 0)", "division by zero", 1},
		{"int_modulo_by_zero", "x = 0\nprint(1 % x)", "division by zero", 2},
		{"float_division_by_zero", "x = 1.5\nprint(x / 0)", "division by zero", 2},
		{"float_modulo", "print(5.0 % 2)", "operator % not supported for types float and int", 1},
		{"int_hex_prefix", "print(int(\"0x10\"))", "cannot convert \"0x10\" to int", 1},
		{"int_underscore", "print(int(\"1_000\"))", "cannot convert \"1_000\" to int", 1},
		{"mixed_types", "print(1 + \"a\")", "operator + not supported for types int and string", 1},
		{"string_minus", "print(\"a\" - \"b\")", "operator - not supported for types string and string", 1},
		{"negative_shift", "print(1 << -1)", "negative shift count", 1},
		{"compare_strings", "print(\"a\" < \"b\")", "operator < not supported", 1},
		{"runtime_arity", "f = define(a, b) do return a + b\nf(1)", "function <anonymous> expects 2 arguments, got 1", 2},
		{"builtin_arity", "len()", "function len expects 1 arguments, got 0", 1},
		{"variadic_builtin_arity", "push([1])", "function push expects 2 arguments, got 1", 1},
		{"not_defined_yet", "print(x)\nx = 1", "'x' is not defined", 1},
		{"list_index_range", "l = [1]\nprint(l[3])", "list index 3 out of range [0, 1)", 2},
		{"negative_index", "l = [1]\nprint(l[-1])", "list index -1 out of range", 2},
		{"string_index_range", "print(\"ab\"[2])", "string index 2 out of range [0, 2)", 1},
		{"list_assign_range", "l = []\nl[0] = 1", "list index 0 out of range [0, 0)", 2},
		{"string_immutable", "s = \"ab\"\ns[0] = \"x\"", "cannot assign to string", 2},
		{"map_key_type", "m = {}\nprint(m[1])", "map key must be string, got int", 2},
		{"not_callable", "x = 1\nx()", "value of type int is not callable", 2},
		{"no_method", "x = 1\nx.frobnicate()", "int has no method 'frobnicate'", 2},
		{"module_member_missing", "include math\nprint(math.nope)", "module math has no member 'nope'", 2},
		{"module_method_missing", "include math\nmath.nope()", "module math has no member 'nope'", 2},
		{"module_immutable", "include math\nmath.pi = 3", "cannot assign to module", 2},
		{"module_not_found", "include nosuchmodule_xyz", "module nosuchmodule_xyz not found", 1},
		{"import_missing_symbol", "include math (nope)", "module math has no member 'nope'", 1},
		{"zero_step", "for i in 3 step 0 do print(i)", "for step must be a non-zero int", 1},
		{"float_step", "for i in 3 step 1.5 do print(i)", "for step must be a non-zero int", 1},
		{"iterate_map", "for k in {} do print(k)", "cannot iterate over value of type map", 1},
		{"pop_empty", "pop([])", "pop from empty list", 1},
		{"native_error", "include math\nmath.sqrt(-1)", "sqrt", 2},
		{"stack_overflow", "define f(n) do return f(n + 1)\nf(0)", "stack overflow", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt, _ := runVMExpectError(t, tt.src)
			if !strings.Contains(rt.Msg, tt.msg) {
				t.Errorf("expected message containing %q, got %q", tt.msg, rt.Msg)
			}
			if rt.Line != tt.line {
				t.Errorf("expected line %d, got %d (%s)", tt.line, rt.Line, rt)
			}
			if rt.File != "test.seal" {
				t.Errorf("expected file test.seal, got %q", rt.File)
			}
		})
	}
}

func TestArityErrorHasNoPartialOutput(t *testing.T) {
	src := `add = define(a, b)
    print("inside")
    return a + b
end
add(1)`
	rt, out := runVMExpectError(t, src)
	if !strings.Contains(rt.Msg, "expects 2 arguments, got 1") {
		t.Errorf("unexpected message %q", rt.Msg)
	}
	if out != "" {
		t.Errorf("expected no output, got %q", out)
	}
}

func TestRuntimeErrorTrace(t *testing.T) {
	src := `define inner() do return 1 / 0
define outer()
    return inner()
end
outer()`
	rt, _ := runVMExpectError(t, src)
	want := []string{
		"inner (test.seal:1)",
		"outer (test.seal:3)",
		"<script> (test.seal:5)",
	}
	if len(rt.Trace) != len(want) {
		t.Fatalf("expected %d trace entries, got %v", len(want), rt.Trace)
	}
	for i := range want {
		if rt.Trace[i] != want[i] {
			t.Errorf("trace[%d] = %q, want %q", i, rt.Trace[i], want[i])
		}
	}
	if got := rt.StackTrace(); !strings.HasPrefix(got, "test.seal:1: division by zero\n  at inner") {
		t.Errorf("unexpected stack trace:\n%s", got)
	}
}

func TestRunCancelled(t *testing.T) {
	var out bytes.Buffer
	m := New(Options{Stdout: &out, Logger: zerolog.Nop()})
	defer m.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := m.RunSource(ctx, "loop.seal", "x = 0\nwhile true do x += 1")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if !strings.Contains(err.Error(), "execution interrupted") {
		t.Errorf("unexpected message %q", err)
	}

	// the VM stays usable after an interrupted run
	if err := m.RunSource(context.Background(), "after.seal", "print(x > 0)"); err != nil {
		t.Fatalf("run after cancel: %v", err)
	}
	if out.String() != "true\n" {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestOperandStackOverflow(t *testing.T) {
	var out bytes.Buffer
	m := New(Options{Stdout: &out, Logger: zerolog.Nop(), StackSize: 8})
	defer m.Close()

	err := m.RunSource(context.Background(), "deep.seal", "print([1, 2, 3, 4, 5, 6, 7, 8, 9, 10])")
	var rt *RuntimeError
	if !errors.As(err, &rt) || rt.Msg != "stack overflow" {
		t.Fatalf("expected stack overflow, got %v", err)
	}
}
