package main

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/agayevhuseyn/seal-sub000/internal/config"
	"github.com/agayevhuseyn/seal-sub000/internal/vm"
)

func TestSplitHostFlags(t *testing.T) {
	tests := []struct {
		args  []string
		flags hostFlags
		rest  []string
		err   string
	}{
		{args: []string{"a.seal", "-debug"}, rest: []string{"a.seal", "-debug"}},
		{args: []string{"-debug", "a.seal", "x"}, flags: hostFlags{debug: true}, rest: []string{"a.seal", "x"}},
		{args: []string{"--trace", "-debug", "-c", "a.seal"}, flags: hostFlags{debug: true, trace: true}, rest: []string{"-c", "a.seal"}},
		{args: []string{"-debug"}, flags: hostFlags{debug: true}},
		{args: []string{"-log", "info", "-stack", "64", "-depth=9", "repl"}, flags: hostFlags{level: "info", stack: 64, depth: 9}, rest: []string{"repl"}},
		{args: []string{"--log=trace", "a.seal"}, flags: hostFlags{level: "trace"}, rest: []string{"a.seal"}},
		{args: []string{"-log", "loud", "a.seal"}, err: "invalid log level"},
		{args: []string{"-stack", "0", "a.seal"}, err: "positive integer"},
		{args: []string{"-depth", "x", "a.seal"}, err: "positive integer"},
		{args: []string{"-depth"}, err: "needs a value"},
	}
	for _, tt := range tests {
		flags, rest, err := splitHostFlags(tt.args)
		if tt.err != "" {
			if err == nil || !strings.Contains(err.Error(), tt.err) {
				t.Errorf("splitHostFlags(%v): expected error containing %q, got %v", tt.args, tt.err, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("splitHostFlags(%v): %v", tt.args, err)
			continue
		}
		if flags != tt.flags || !reflect.DeepEqual(rest, tt.rest) {
			t.Errorf("splitHostFlags(%v) = %+v, %v; want %+v, %v", tt.args, flags, rest, tt.flags, tt.rest)
		}
	}
}

func TestSearchPathOrder(t *testing.T) {
	t.Setenv(config.ModulePathEnv, "/opt/seal")
	proj := &config.Project{Dir: "/work", Paths: []string{"lib", "/abs"}}

	got := searchPaths("scripts", proj)
	want := []string{".", "scripts", "/opt/seal", "/work/lib", "/abs"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("searchPaths = %v, want %v", got, want)
	}
	if got := searchPaths(".", nil); !reflect.DeepEqual(got, []string{".", "/opt/seal"}) {
		t.Errorf("searchPaths without project = %v", got)
	}
}

func TestReportExitCodes(t *testing.T) {
	if code := report(&vm.ExitError{Code: 7}); code != 7 {
		t.Errorf("exit error mapped to %d", code)
	}
	if code := report(&vm.RuntimeError{File: "x.seal", Line: 1, Msg: "boom"}); code != 1 {
		t.Errorf("runtime error mapped to %d", code)
	}
}

func writeScript(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prog.seal")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunExitCodes(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code int
	}{
		{"ok", "x = 1 + 1", 0},
		{"exit", "exit(4)", 4},
		{"runtime_error", "x = 1 / 0", 1},
		{"compile_error", "print(y)", 1},
		{"syntax_error", "x = )", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code := run([]string{writeScript(t, tt.src)}); code != tt.code {
				t.Errorf("expected exit code %d, got %d", tt.code, code)
			}
		})
	}
}

func TestCompileAndRunBundle(t *testing.T) {
	path := writeScript(t, "define f(n) do return n * 2\nx = f(21)\nexit(x - 42)")
	if code := run([]string{"-c", path}); code != 0 {
		t.Fatalf("compile exit code %d", code)
	}
	bundle := path[:len(path)-len(config.SourceFileExt)] + config.BytecodeFileExt
	if _, err := os.Stat(bundle); err != nil {
		t.Fatalf("bundle not written: %v", err)
	}
	if code := run([]string{"-r", bundle}); code != 0 {
		t.Errorf("run bundle exit code %d", code)
	}
	// bundles are also accepted in place of source files
	if code := run([]string{bundle}); code != 0 {
		t.Errorf("run bundle as file exit code %d", code)
	}
	if code := run([]string{"-c", bundle}); code != 1 {
		t.Errorf("compiling a non-source file gave exit code %d", code)
	}
	if code := run([]string{"-disasm", path}); code != 0 {
		t.Errorf("disasm exit code %d", code)
	}
}

func TestProjectSearchPaths(t *testing.T) {
	dir := t.TempDir()
	libDir := filepath.Join(dir, "lib")
	if err := os.Mkdir(libDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, config.ProjectYAML), []byte("name: demo\npaths: [lib]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(libDir, "helper.seal"), []byte("define code() do return 5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	entry := filepath.Join(dir, "main.seal")
	if err := os.WriteFile(entry, []byte("include helper\nexit(helper.code())\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if code := run([]string{entry}); code != 5 {
		t.Errorf("expected exit code 5 from the project module, got %d", code)
	}
}

const deepScript = `define f(n)
    if n == 0 do return 0
    return f(n - 1)
end
exit(f(50))
`

func TestFlagsOverrideProject(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.ProjectYAML), []byte("max_depth: 10\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	entry := filepath.Join(dir, "deep.seal")
	if err := os.WriteFile(entry, []byte(deepScript), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		code int
	}{
		{"project_depth", []string{entry}, 1},
		{"flag_depth", []string{"-depth", "100", entry}, 0},
		{"flag_depth_small", []string{"-depth=5", entry}, 1},
		{"bad_flag_value", []string{"-stack", "none", entry}, 2},
		{"log_flag", []string{"-log", "error", entry}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code := run(tt.args); code != tt.code {
				t.Errorf("run(%v) = %d, want %d", tt.args, code, tt.code)
			}
		})
	}
}
