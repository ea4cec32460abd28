package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadProjectYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ProjectYAML), "name: demo\npaths: [lib, /abs/mods]\nstack_size: 4096\nlog_level: debug\n")

	p, err := LoadProject(dir)
	if err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	if p.Name != "demo" || p.StackSize != 4096 || p.LogLevel != "debug" {
		t.Errorf("unexpected project: %+v", p)
	}
	paths := p.SearchPaths()
	if len(paths) != 2 {
		t.Fatalf("expected 2 search paths, got %v", paths)
	}
	if paths[0] != filepath.Join(p.Dir, "lib") {
		t.Errorf("relative path not resolved: %s", paths[0])
	}
	if paths[1] != "/abs/mods" {
		t.Errorf("absolute path changed: %s", paths[1])
	}
}

func TestLoadProjectTOML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ProjectTOML), "name = \"demo\"\nmax_depth = 64\npaths = [\"mods\"]\n")

	p, err := LoadProject(dir)
	if err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	if p.Name != "demo" || p.MaxDepth != 64 {
		t.Errorf("unexpected project: %+v", p)
	}
}

func TestLoadProjectBadYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ProjectYAML), "name: [unclosed\n")
	if _, err := LoadProject(dir); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestFindProjectWalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ProjectYAML), "name: outer\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	p, err := FindProject(nested)
	if err != nil {
		t.Fatalf("FindProject: %v", err)
	}
	if p == nil || p.Name != "outer" {
		t.Fatalf("expected outer project, got %+v", p)
	}
}

func TestUserModulePathEnv(t *testing.T) {
	t.Setenv(ModulePathEnv, "/tmp/seal-mods")
	if got := UserModulePath(); got != "/tmp/seal-mods" {
		t.Errorf("got %q", got)
	}
}
