package seal_test

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	seal "github.com/agayevhuseyn/seal-sub000/pkg/embed"
)

// User is handed to scripts as an opaque host pointer.
type User struct {
	Name  string
	Score int
}

func newVM(t *testing.T, out *bytes.Buffer) *seal.VM {
	t.Helper()
	m := seal.New(seal.Options{Stdout: out, SearchPaths: []string{t.TempDir()}})
	t.Cleanup(m.Close)
	return m
}

func TestEmbedAPI(t *testing.T) {
	var out bytes.Buffer
	m := newVM(t, &out)

	if err := m.Bind("double", func(x int) int { return x * 2 }); err != nil {
		t.Fatal(err)
	}
	user := &User{Name: "Alice", Score: 10}
	if err := m.Bind("player", user); err != nil {
		t.Fatal(err)
	}
	if err := m.Bind("addScore", func(u *User, points int) { u.Score += points }); err != nil {
		t.Fatal(err)
	}
	if err := m.Bind("status", func(u *User) string {
		return fmt.Sprintf("User %s has %d points", u.Name, u.Score)
	}); err != nil {
		t.Fatal(err)
	}

	code := `doubled = double(21)
addScore(player, 5)
result = [doubled, status(player)]
print(player)`
	if err := m.Eval(code); err != nil {
		t.Fatalf("Eval failed: %v", err)
	}

	res, err := m.Get("result")
	if err != nil {
		t.Fatal(err)
	}
	want := []interface{}{int64(42), "User Alice has 15 points"}
	if !reflect.DeepEqual(res, want) {
		t.Errorf("result = %#v, want %#v", res, want)
	}
	if user.Score != 15 {
		t.Errorf("host object not updated, score %d", user.Score)
	}
	if out.String() != "<ptr host>\n" {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestSetAndGetConversions(t *testing.T) {
	m := newVM(t, &bytes.Buffer{})

	if err := m.Set("cfg", map[string]interface{}{
		"name":  "seal",
		"ports": []int{80, 443},
		"ratio": float32(0.5),
		"on":    true,
		"none":  nil,
	}); err != nil {
		t.Fatal(err)
	}
	if err := m.Eval(`keysSeen = keys(cfg)
total = cfg.ports[0] + cfg.ports[1]
label = cfg.name + "!"`); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		want interface{}
	}{
		{"keysSeen", []interface{}{"name", "none", "on", "ports", "ratio"}},
		{"total", int64(523)},
		{"label", "seal!"},
		{"cfg", map[string]interface{}{
			"name":  "seal",
			"ports": []interface{}{int64(80), int64(443)},
			"ratio": 0.5,
			"on":    true,
			"none":  nil,
		}},
	}
	for _, tt := range tests {
		got, err := m.Get(tt.name)
		if err != nil {
			t.Errorf("Get(%s): %v", tt.name, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Get(%s) = %#v, want %#v", tt.name, got, tt.want)
		}
	}

	if _, err := m.Get("missing"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not found error, got %v", err)
	}
	if err := m.Set("bad", map[int]string{1: "x"}); err == nil {
		t.Error("expected error for non-string map keys")
	}
}

func TestCallScriptFunction(t *testing.T) {
	m := newVM(t, &bytes.Buffer{})
	if err := m.Eval(`define add(a, b) do return a + b
define describe(xs...) do return {count: len(xs), first: xs[0]}`); err != nil {
		t.Fatal(err)
	}

	got, err := m.Call("add", 2, 40)
	if err != nil || got != int64(42) {
		t.Errorf("add(2, 40) = %v, %v", got, err)
	}
	got, err = m.Call("add", "se", "al")
	if err != nil || got != "seal" {
		t.Errorf("add strings = %v, %v", got, err)
	}
	got, err = m.Call("describe", 1.5, "x")
	want := map[string]interface{}{"count": int64(2), "first": 1.5}
	if err != nil || !reflect.DeepEqual(got, want) {
		t.Errorf("describe = %#v, %v", got, err)
	}

	if _, err := m.Call("add", 1); err == nil || !strings.Contains(err.Error(), "expects 2 arguments, got 1") {
		t.Errorf("expected arity error, got %v", err)
	}
	if _, err := m.Call("nope"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not found error, got %v", err)
	}
	if err := m.Set("n", 3); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Call("n"); err == nil || !strings.Contains(err.Error(), "not callable") {
		t.Errorf("expected not callable error, got %v", err)
	}
}

func TestCallBoundGoFunction(t *testing.T) {
	m := newVM(t, &bytes.Buffer{})
	if err := m.Bind("sum", func(xs ...float64) float64 {
		var s float64
		for _, x := range xs {
			s += x
		}
		return s
	}); err != nil {
		t.Fatal(err)
	}
	got, err := m.Call("sum", 1, 2.5, 3)
	if err != nil || got != 6.5 {
		t.Errorf("sum = %v, %v", got, err)
	}
}

func TestHostErrorsBecomeRuntimeErrors(t *testing.T) {
	m := newVM(t, &bytes.Buffer{})
	if err := m.Bind("check", func(n int) (int, error) {
		if n < 0 {
			return 0, errors.New("negative input")
		}
		return n, nil
	}); err != nil {
		t.Fatal(err)
	}
	if err := m.Bind("pair", func() (string, int) { return "a", 1 }); err != nil {
		t.Fatal(err)
	}

	if err := m.Eval("ok = check(3)\np = pair()"); err != nil {
		t.Fatal(err)
	}
	if got, _ := m.Get("p"); !reflect.DeepEqual(got, []interface{}{"a", int64(1)}) {
		t.Errorf("pair() = %#v", got)
	}

	err := m.Eval("x = 1\ncheck(-1)")
	if err == nil || !strings.Contains(err.Error(), "negative input") {
		t.Fatalf("expected host error, got %v", err)
	}
	if !strings.Contains(err.Error(), ":2") {
		t.Errorf("expected line 2 in %q", err.Error())
	}

	if err := m.Eval(`check("x")`); err == nil || !strings.Contains(err.Error(), "cannot use string as int") {
		t.Errorf("expected conversion error, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "util.seal"), []byte("define greet(n) do return \"hi \" + n\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "main.seal")
	if err := os.WriteFile(path, []byte("include util\nprint(util.greet(who))\nexit(3)\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	m := newVM(t, &out)
	if err := m.Set("who", "host"); err != nil {
		t.Fatal(err)
	}
	err := m.LoadFile(path)
	if code, ok := seal.ExitCode(err); !ok || code != 3 {
		t.Fatalf("expected exit 3, got %v", err)
	}
	if out.String() != "hi host\n" {
		t.Errorf("unexpected output %q", out.String())
	}
}
