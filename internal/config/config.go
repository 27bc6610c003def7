// Package config loads a project's .gritql.kdl file: the project root,
// library search paths, default target language, include/exclude
// globs, the default injected pattern limit, and the file-watch
// debounce the CLI's --watch flag uses.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Project identifies the root directory config-relative paths resolve
// against, and an optional display name.
type Project struct {
	Root string
	Name string
}

// Library is one `library "..."` entry: a directory scanned
// for *.grit pattern library files.
type Library struct {
	Path string
}

// Watch configures the CLI's --watch debounce.
type Watch struct {
	DebounceMs int
}

// Config is the parsed shape of a .gritql.kdl file, defaults included.
type Config struct {
	Project      Project
	Libraries    []Library
	Language     string
	Include      []string
	Exclude      []string
	PatternLimit int
	Watch        Watch
}

// defaultPatternLimit mirrors the injected_limit default spec.md's
// Concurrency & Resource Model section names for an unbounded-looking
// recursive pattern.
const defaultPatternLimit = 10000

// FileName is the config file this package looks for in a project root.
const FileName = ".gritql.kdl"

func defaults(root string) *Config {
	return &Config{
		Project:      Project{Root: root},
		PatternLimit: defaultPatternLimit,
		Watch:        Watch{DebounceMs: 100},
	}
}

// Load reads .gritql.kdl from projectRoot. A missing file is not an
// error: Load returns the default Config rooted at projectRoot, the
// same way a project with no config file runs with sane defaults.
func Load(projectRoot string) (*Config, error) {
	absRoot, err := filepath.Abs(projectRoot)
	if err != nil {
		absRoot = projectRoot
	}
	path := filepath.Join(absRoot, FileName)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return defaults(absRoot), nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	cfg, err := parseKDL(string(content), absRoot)
	if err != nil {
		return nil, err
	}

	if cfg.Project.Root == "" {
		cfg.Project.Root = absRoot
	} else if !filepath.IsAbs(cfg.Project.Root) {
		cfg.Project.Root = filepath.Clean(filepath.Join(absRoot, cfg.Project.Root))
	}
	for i, lib := range cfg.Libraries {
		if !filepath.IsAbs(lib.Path) {
			cfg.Libraries[i].Path = filepath.Clean(filepath.Join(cfg.Project.Root, lib.Path))
		}
	}

	return cfg, nil
}
