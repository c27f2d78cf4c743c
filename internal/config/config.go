// Package config implements the DUI (define/undefine/include) configuration
// surface (spec.md §6): a struct populated either from a YAML file or from
// CLI flags, the way the teacher's language/cpp.cppConfig is populated from
// gazelle directives (language/cpp/config.go).
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Config holds everything one translation-unit preprocessing run needs:
// user defines/undefines, include search paths, and the glob patterns used
// to discover rule files for internal/checks.
type Config struct {
	Defines         map[string]string `yaml:"defines"`
	Undefines       []string          `yaml:"undefines"`
	IncludePaths    []string          `yaml:"include_paths"`
	RulePatterns    []string          `yaml:"rule_patterns"`
	MaxIncludeDepth int               `yaml:"max_include_depth"`
}

// Default returns a Config with the same defaults simplecpp.cpp applies
// when a caller supplies nothing.
func Default() *Config {
	return &Config{
		Defines:         map[string]string{},
		IncludePaths:    nil,
		RulePatterns:    []string{"**/*.xml"},
		MaxIncludeDepth: 400,
	}
}

// Load reads a YAML config file at path and merges it onto Default().
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Clone returns a deep-enough copy of cfg so CLI flag overrides never
// mutate a shared default, mirroring cppConfig.clone() in the teacher.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Defines = make(map[string]string, len(c.Defines))
	for k, v := range c.Defines {
		clone.Defines[k] = v
	}
	clone.Undefines = append([]string(nil), c.Undefines...)
	clone.IncludePaths = append([]string(nil), c.IncludePaths...)
	clone.RulePatterns = append([]string(nil), c.RulePatterns...)
	return &clone
}

// ResolveRuleFiles expands RulePatterns (doublestar globs, supporting `**`)
// against root and returns the matching rule-file paths, used by
// internal/checks to discover library-function XML rule files.
func (c *Config) ResolveRuleFiles(root string) ([]string, error) {
	fsys := os.DirFS(root)
	var out []string
	for _, pattern := range c.RulePatterns {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("rule pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			out = append(out, filepath.Join(root, m))
		}
	}
	return out, nil
}
