package vm

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/agayevhuseyn/seal-sub000/internal/value"
)

func newTestVM(out *bytes.Buffer, stdin string) *VM {
	return New(Options{
		Stdout: out,
		Stdin:  strings.NewReader(stdin),
		Logger: zerolog.Nop(),
	})
}

// runVM runs src on a fresh VM and returns everything it printed.
func runVM(t *testing.T, src string) string {
	t.Helper()
	var out bytes.Buffer
	m := newTestVM(&out, "")
	defer m.Close()
	if err := m.RunSource(context.Background(), "test.seal", src); err != nil {
		t.Fatalf("run failed: %v\nsource:\n%s", err, src)
	}
	return out.String()
}

func TestVMPrograms(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"arithmetic", `print(2 + 3 * 4)`, "14\n"},
		{"concat", `print("a" + "b")`, "ab\n"},
		{"span_loop", `for i in span(3) do print(i)`, "0\n1\n2\n"},
		{"int_loop", `for i in 3 do print(i)`, "0\n1\n2\n"},
		{"negative_step", `for c in "abc" step -1 do print(c)`, "c\nb\na\n"},
		{"list_step", "for x in [1, 2, 3, 4, 5] step 2 do print(x)", "1\n3\n5\n"},
		{"empty_loop", "for x in [] do print(x)\nprint(\"done\")", "done\n"},
		{"promotion", `print(1 + 2.5, 7 / 2, 7 / 2.0, 2 * 1.5)`, "3.5 3 3.5 3.0\n"},
		{"modulo", `print(7 % 3, -7 % 3)`, "1 -1\n"},
		{"bitwise", `print(6 & 3, 6 | 3, 6 ^ 3, 1 << 4, 32 >> 2, ~0)`, "2 7 5 16 8 -1\n"},
		{"nan_ordering", "n = float(\"nan\")\nprint(n > 1, n >= 1, n < 1, n <= 1, n == n, 1 >= n)", "false false false false false false\n"},
		{"int_parses_decimal", `print(int("010"), int(" -42 "), int("+7"))`, "10 -42 7\n"},
		{"span_stops_before_overflow", "print(span(9223372036854775806, 9223372036854775807, 5))", "[9223372036854775806]\n"},
		{"span_negative_overflow", "print(len(span(-9223372036854775807 + 2, -9223372036854775807 - 1, -5)))", "1\n"},
		{"comparison", `print(1 < 2, 2 <= 2.0, 3 > 4, "a" == "a", 1 != 1.0)`, "true true false true false\n"},
		{"logic", `print(true and false, null or 2, not 0)`, "false 2 true\n"},
		{"ternary", "x = 3\nprint(x > 2 ? \"big\" : \"small\")", "big\n"},
		{"push_pop", "l = [1, 2]\npush(l, 3)\nprint(pop(l), len(l))", "3 2\n"},
		{"method_call", "l = []\nl.push(4)\nl.push(5)\nprint(l, l.len())", "[4, 5] 2\n"},
		{"map_miss", "m = {a: 1}\nprint(m.b, m.a, m[\"a\"])", "null 1 1\n"},
		{"map_function_member", "m = {}\nm.twice = define(x) do return x * 2\nprint(m.twice(21))", "42\n"},
		{"field_compound", "m = {n: 1}\nm.n += 2\nprint(m.n)", "3\n"},
		{"list_index_assign", "l = [1, 2]\nl[0] = 9\nl[1] *= 5\nprint(l)", "[9, 10]\n"},
		{"string_index", "s = \"hey\"\nprint(s[1], len(s))", "e 3\n"},
		{"insert_remove", "l = [1, 3]\ninsert(l, 1, 2)\nprint(remove(l, 0), l)", "1 [2, 3]\n"},
		{"map_remove_keys", "m = {a: 1, b: 2}\nremove(m, \"a\")\nm.c = 3\nprint(keys(m), has(m, \"a\"))", "[\"b\", \"c\"] false\n"},
		{"conversions", `print(int("42") + 1, float(1), str(12) + "!", bool(""), type(1.5))`, "43 1.0 12! false float\n"},
		{"while_skip_stop", `i = 0
while true
    i += 1
    if i == 2 do skip
    if i > 4 do stop
    print(i)
end`, "1\n3\n4\n"},
		{"for_stop_skip", `for i in 10
    if i % 2 == 0 do skip
    if i > 6 do stop
    print(i)
end
print("after")`, "1\n3\n5\nafter\n"},
		{"do_while", "i = 0\ndo\n    i += 1\nend while i < 3\nprint(i)", "3\n"},
		{"if_elif_else", `define sign(n)
    if n < 0
        return "neg"
    elif n == 0
        return "zero"
    else
        return "pos"
    end
end
print(sign(-2), sign(0), sign(9))`, "neg zero pos\n"},
		{"recursion", `define fib(n)
    if n < 2 do return n
    return fib(n - 1) + fib(n - 2)
end
print(fib(15))`, "610\n"},
		{"variadic", "define f(a, rest...) do return len(rest)\nprint(f(1), f(1, 2, 3))", "0 2\n"},
		{"variadic_collects", "define f(rest...) do return rest\nprint(f(), f(1, \"x\"))", "[] [1, \"x\"]\n"},
		{"locals_shadow_globals", `x = 1
define f()
    x = 5
    return x
end
print(f(), x)`, "5 1\n"},
		{"global_assign_in_function", `count = 0
define inc()
    global count = count + 1
end
inc()
inc()
print(count)`, "2\n"},
		{"anonymous_function", "sq = define(x) do return x * x\nprint(sq(7))", "49\n"},
		{"function_returns_null", "define f() do x = 1\nprint(f())", "null\n"},
		{"nested_loops", `for i in 2
    for j in 2 do print(i * 10 + j)
end`, "0\n1\n10\n11\n"},
		{"loop_reads_length_each_step", `l = [1]
for x in l
    if x < 3 do push(l, x + 1)
    print(x)
end`, "1\n2\n3\n"},
		{"print_containers", `print([1, "a", null], {k: [true]})`, "[1, \"a\", null] {k: [true]}\n"},
		{"print_function", "define f() do return 1\nprint(f, print)", "<function f> <builtin print>\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := runVM(t, tt.src); got != tt.want {
				t.Errorf("output mismatch\nwant: %q\ngot:  %q", tt.want, got)
			}
		})
	}
}

func TestVMNativeModules(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"module_member", "include math\nprint(math.floor(2.7), math.abs(-3))", "2 3\n"},
		{"alias", "include strings as s\nprint(s.upper(\"ab\"))", "AB\n"},
		{"symbols", "include math (sqrt, max)\nprint(sqrt(16.0), max(1, 5, 3))", "4.0 5\n"},
		{"module_value", "include math\nprint(math, type(math))", "<module math> module\n"},
		{"uuid", "include uuid\nprint(uuid.valid(uuid.new()), uuid.valid(\"nope\"))", "true false\n"},
		{"yaml_roundtrip", "include yaml\nm = yaml.decode(\"b: 1\\na: [x, 2.5]\\n\")\nprint(m)", "{b: 1, a: [\"x\", 2.5]}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := runVM(t, tt.src); got != tt.want {
				t.Errorf("output mismatch\nwant: %q\ngot:  %q", tt.want, got)
			}
		})
	}
}

func TestScan(t *testing.T) {
	var out bytes.Buffer
	m := newTestVM(&out, "hello\nworld")
	defer m.Close()
	src := "print(scan())\nprint(scan(\"> \"))\nprint(scan())"
	if err := m.RunSource(context.Background(), "scan.seal", src); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if got, want := out.String(), "hello\n> world\nnull\n"; got != want {
		t.Errorf("want %q, got %q", want, got)
	}
}

func TestExit(t *testing.T) {
	var out bytes.Buffer
	m := newTestVM(&out, "")
	defer m.Close()
	err := m.RunSource(context.Background(), "exit.seal", "print(1)\nexit(3)\nprint(2)")
	var exit *ExitError
	if !errors.As(err, &exit) {
		t.Fatalf("expected *ExitError, got %v", err)
	}
	if exit.Code != 3 {
		t.Errorf("expected exit code 3, got %d", exit.Code)
	}
	if out.String() != "1\n" {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestGlobalsPersistAcrossRuns(t *testing.T) {
	var out bytes.Buffer
	m := newTestVM(&out, "")
	defer m.Close()
	ctx := context.Background()

	if err := m.RunSource(ctx, "<repl>", "x = 40\ndefine add(a, b) do return a + b"); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := m.RunSource(ctx, "<repl>", "print(add(x, 2))"); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if out.String() != "42\n" {
		t.Errorf("unexpected output %q", out.String())
	}

	if err := m.SetGlobal("greeting", value.NewString("hi")); err != nil {
		t.Fatal(err)
	}
	v, ok := m.GetGlobal("greeting")
	if !ok || v.AsString() != "hi" {
		t.Errorf("GetGlobal returned %v, %v", v, ok)
	}
}

func TestRefCountsBalanceAfterClose(t *testing.T) {
	base := value.LiveObjects()

	var out bytes.Buffer
	m := newTestVM(&out, "")
	src := `include math
include strings as s
l = []
for i in span(5) do push(l, str(i))
m = {items: l, name: "n" + "m"}
m.copy = [l, l]
define join_all(xs)
    acc = ""
    for x in xs do acc = acc + x
    return acc
end
print(join_all(l), s.upper(m.name), len(m.copy))
pop(l)
remove(m, "items")`
	if err := m.RunSource(context.Background(), "rc.seal", src); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if out.String() != "01234 NM 2\n" {
		t.Errorf("unexpected output %q", out.String())
	}
	m.Close()

	if live := value.LiveObjects() - base; live != 0 {
		t.Errorf("%d objects still alive after Close", live)
	}
}

func TestRefCountsBalanceAfterRuntimeError(t *testing.T) {
	base := value.LiveObjects()

	var out bytes.Buffer
	m := newTestVM(&out, "")
	src := `define f(xs, n)
    tmp = [xs, "s" + str(n)]
    return f([tmp], n + 1) + {}
end
f([], 0)`
	if err := m.RunSource(context.Background(), "rc.seal", src); err == nil {
		t.Fatal("expected an error")
	}
	m.Close()

	if live := value.LiveObjects() - base; live != 0 {
		t.Errorf("%d objects still alive after Close", live)
	}
}
