package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/gritql/internal/config"
	"github.com/standardbeagle/gritql/internal/lang"
	"github.com/standardbeagle/gritql/internal/problem"
)

// loadProjectConfig resolves --root and reads .gritql.kdl beneath it,
// applying --include/--exclude overrides the same way the teacher's CLI
// layers flag overrides on top of a loaded config. rootOverride, when
// non-empty, wins over --root (used by plumbing's stdin-carried
// root_path, which has no corresponding flag to set).
func loadProjectConfig(c *cli.Context, rootOverride ...string) (*config.Config, error) {
	root := c.String("root")
	if len(rootOverride) > 0 && rootOverride[0] != "" {
		root = rootOverride[0]
	}
	if root == "" {
		root = "."
	}
	cfg, err := config.Load(root)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if include := c.StringSlice("include"); len(include) > 0 {
		cfg.Include = include
	}
	if exclude := c.StringSlice("exclude"); len(exclude) > 0 {
		cfg.Exclude = append(cfg.Exclude, exclude...)
	}
	if err := config.NewValidator().Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolvePattern loads a pattern argument: a path to an existing .grit
// file, or literal QL source given directly on the command line.
func resolvePattern(arg string) (source, name string, err error) {
	candidates := []string{arg}
	if !strings.HasSuffix(arg, ".grit") {
		candidates = append(candidates, arg+".grit")
	}
	for _, path := range candidates {
		if content, err := os.ReadFile(path); err == nil {
			return string(content), path, nil
		}
	}
	return arg, "<pattern>", nil
}

// loadLibraries reads every *.grit file under each configured library
// path into a problem.Library keyed by its base name (without
// extension), the way the root program's `import` resolves them.
func loadLibraries(cfg *config.Config) ([]problem.Library, error) {
	var libs []problem.Library
	for _, l := range cfg.Libraries {
		matches, err := doublestar.FilepathGlob(filepath.Join(l.Path, "*.grit"))
		if err != nil {
			return nil, fmt.Errorf("globbing library %s: %w", l.Path, err)
		}
		for _, path := range matches {
			content, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("reading library %s: %w", path, err)
			}
			name := strings.TrimSuffix(filepath.Base(path), ".grit")
			libs = append(libs, problem.Library{Name: name, Source: string(content)})
		}
	}
	sort.Slice(libs, func(i, j int) bool { return libs[i].Name < libs[j].Name })
	return libs, nil
}

// resolveLanguage picks the TargetLanguage a file should be matched
// against: the --language flag if set, otherwise whatever the registry
// infers from the file's extension.
func resolveLanguage(c *cli.Context, path string) (lang.TargetLanguage, error) {
	if name := c.String("language"); name != "" {
		l, ok := languages.ForName(name)
		if !ok {
			return nil, fmt.Errorf("unknown language %q", name)
		}
		return l, nil
	}
	l, ok := languages.ForPath(path)
	if !ok {
		return nil, fmt.Errorf("no language registered for %s (pass --language)", path)
	}
	return l, nil
}

// resolvePaths expands paths (files or directories) against cfg's
// include/exclude globs, returning every matching regular file, in a
// stable, deduplicated, sorted order.
func resolvePaths(cfg *config.Config, paths []string) ([]string, error) {
	include := cfg.Include
	if len(include) == 0 {
		include = []string{"**/*"}
	}

	seen := make(map[string]bool)
	var out []string
	add := func(path string) error {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			return nil
		}
		if excluded(cfg.Exclude, path) {
			return nil
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		if !seen[abs] {
			seen[abs] = true
			out = append(out, path)
		}
		return nil
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			if err := add(p); err != nil {
				return nil, err
			}
			continue
		}
		for _, pattern := range include {
			matches, err := doublestar.FilepathGlob(filepath.Join(p, pattern))
			if err != nil {
				return nil, fmt.Errorf("globbing %s: %w", pattern, err)
			}
			for _, m := range matches {
				if err := add(m); err != nil {
					return nil, err
				}
			}
		}
	}

	sort.Strings(out)
	return out, nil
}

func excluded(patterns []string, path string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, filepath.ToSlash(path)); ok {
			return true
		}
	}
	return false
}
