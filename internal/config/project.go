package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Project file names, in lookup order.
const (
	ProjectYAML = "seal.yaml"
	ProjectTOML = "seal.toml"
)

// Project represents a seal.yaml / seal.toml project configuration.
type Project struct {
	Name string `yaml:"name" toml:"name"`

	// Paths are extra module search directories, relative to Dir.
	Paths []string `yaml:"paths" toml:"paths"`

	// StackSize is the operand stack capacity in values (0 = default).
	StackSize int `yaml:"stack_size" toml:"stack_size"`

	// MaxDepth is the maximum number of nested call frames (0 = default).
	MaxDepth int `yaml:"max_depth" toml:"max_depth"`

	// LogLevel is a zerolog level name ("debug", "trace", ...).
	LogLevel string `yaml:"log_level" toml:"log_level"`

	// Dir is the directory containing the project file (set at load time).
	Dir string `yaml:"-" toml:"-"`
}

// LoadProject parses the project file in dir. seal.yaml wins over seal.toml.
func LoadProject(dir string) (*Project, error) {
	var p Project

	yamlPath := filepath.Join(dir, ProjectYAML)
	tomlPath := filepath.Join(dir, ProjectTOML)

	if data, err := os.ReadFile(yamlPath); err == nil {
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("parse error in %s: %w", yamlPath, err)
		}
	} else if data, err := os.ReadFile(tomlPath); err == nil {
		if err := toml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("parse error in %s: %w", tomlPath, err)
		}
	} else {
		return nil, fmt.Errorf("no %s or %s in %s", ProjectYAML, ProjectTOML, dir)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	p.Dir = abs
	return &p, nil
}

// FindProject walks up from startDir to the first directory holding a project
// file and loads it. Returns nil, nil if none is found.
func FindProject(startDir string) (*Project, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		for _, name := range []string{ProjectYAML, ProjectTOML} {
			if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
				return LoadProject(dir)
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// SearchPaths returns absolute paths for the configured module directories.
func (p *Project) SearchPaths() []string {
	var paths []string
	for _, d := range p.Paths {
		if filepath.IsAbs(d) {
			paths = append(paths, d)
			continue
		}
		paths = append(paths, filepath.Join(p.Dir, d))
	}
	return paths
}

// UserModulePath returns $SEAL_PATH, or ~/.seal/modules when unset.
func UserModulePath() string {
	if p := os.Getenv(ModulePathEnv); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, UserModuleDir)
}
