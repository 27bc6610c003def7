package config

import (
	"path/filepath"
	"strconv"
	"strings"

	cfgerrors "github.com/standardbeagle/gritql/internal/errors"
)

// Validator rejects nonsensical configs before the façade ever compiles
// a pattern against them.
type Validator struct{}

// NewValidator builds a Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate runs every check and returns the first failure, wrapped as
// an errors.ConfigError naming the offending field.
func (v *Validator) Validate(cfg *Config) error {
	if err := v.validateProject(cfg); err != nil {
		return cfgerrors.NewConfigError("project.root", cfg.Project.Root, err)
	}
	if err := v.validateLibraries(cfg); err != nil {
		return cfgerrors.NewConfigError("library", "", err)
	}
	if err := v.validatePatternLimit(cfg); err != nil {
		return cfgerrors.NewConfigError("pattern_limit", strconv.Itoa(cfg.PatternLimit), err)
	}
	if err := v.validateWatch(cfg); err != nil {
		return cfgerrors.NewConfigError("watch.debounce_ms", strconv.Itoa(cfg.Watch.DebounceMs), err)
	}
	return nil
}

func (v *Validator) validateProject(cfg *Config) error {
	if cfg.Project.Root == "" {
		return errString("project root cannot be empty")
	}
	if !filepath.IsAbs(cfg.Project.Root) {
		return errString("project root must be resolved to an absolute path before validation")
	}
	return nil
}

func (v *Validator) validateLibraries(cfg *Config) error {
	seen := make(map[string]bool, len(cfg.Libraries))
	for _, lib := range cfg.Libraries {
		if lib.Path == "" {
			return errString("library path cannot be empty")
		}
		rel, err := filepath.Rel(cfg.Project.Root, lib.Path)
		if err != nil || strings.HasPrefix(rel, "..") {
			return errString("library path " + lib.Path + " is outside the project root")
		}
		if seen[lib.Path] {
			return errString("duplicate library path " + lib.Path)
		}
		seen[lib.Path] = true
	}
	return nil
}

func (v *Validator) validatePatternLimit(cfg *Config) error {
	if cfg.PatternLimit < 0 {
		return errString("pattern_limit cannot be negative")
	}
	return nil
}

func (v *Validator) validateWatch(cfg *Config) error {
	if cfg.Watch.DebounceMs < 0 {
		return errString("watch debounce_ms cannot be negative")
	}
	return nil
}

type errString string

func (e errString) Error() string { return string(e) }
