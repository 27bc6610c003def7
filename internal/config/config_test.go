package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWhenMissing(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PatternLimit != defaultPatternLimit {
		t.Fatalf("PatternLimit = %d, want %d", cfg.PatternLimit, defaultPatternLimit)
	}
	if cfg.Watch.DebounceMs != 100 {
		t.Fatalf("Watch.DebounceMs = %d, want 100", cfg.Watch.DebounceMs)
	}
}

func TestLoadParsesKDL(t *testing.T) {
	dir := t.TempDir()
	content := `
project {
    name "demo"
}
library "libs/refactors"
language "go"
include "**/*.go"
exclude "vendor/**"
exclude "**/*_test.go"
pattern_limit 5000
watch {
    debounce_ms 250
}
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Project.Name != "demo" {
		t.Fatalf("Project.Name = %q, want demo", cfg.Project.Name)
	}
	if len(cfg.Libraries) != 1 || cfg.Libraries[0].Path != filepath.Join(dir, "libs/refactors") {
		t.Fatalf("Libraries = %+v", cfg.Libraries)
	}
	if cfg.Language != "go" {
		t.Fatalf("Language = %q, want go", cfg.Language)
	}
	if len(cfg.Include) != 1 || cfg.Include[0] != "**/*.go" {
		t.Fatalf("Include = %v", cfg.Include)
	}
	if len(cfg.Exclude) != 2 {
		t.Fatalf("Exclude = %v", cfg.Exclude)
	}
	if cfg.PatternLimit != 5000 {
		t.Fatalf("PatternLimit = %d, want 5000", cfg.PatternLimit)
	}
	if cfg.Watch.DebounceMs != 250 {
		t.Fatalf("Watch.DebounceMs = %d, want 250", cfg.Watch.DebounceMs)
	}
}

func TestValidatorRejectsNegativePatternLimit(t *testing.T) {
	cfg := defaults("/tmp/project")
	cfg.PatternLimit = -1
	if err := NewValidator().Validate(cfg); err == nil {
		t.Fatal("expected an error for negative pattern_limit")
	}
}

func TestValidatorRejectsLibraryOutsideRoot(t *testing.T) {
	cfg := defaults("/tmp/project")
	cfg.Libraries = []Library{{Path: "/tmp/other/libs"}}
	if err := NewValidator().Validate(cfg); err == nil {
		t.Fatal("expected an error for a library path outside the project root")
	}
}

func TestValidatorAcceptsDefaults(t *testing.T) {
	cfg := defaults("/tmp/project")
	if err := NewValidator().Validate(cfg); err != nil {
		t.Fatalf("Validate() = %v, want nil for the default config", err)
	}
}
