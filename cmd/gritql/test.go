package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/gritql/internal/problem"
)

var testCommand = &cli.Command{
	Name:      "test",
	Usage:     "run fixture-style pattern tests from a directory",
	ArgsUsage: "<dir>",
	Action:    runTest,
}

// fixture is one `<name>.grit` pattern paired with the `<name>.md`
// sample file of the same base name, which holds an input snippet and
// its expected rewritten output.
type fixture struct {
	name        string
	patternPath string
	samples     []sample
}

type sample struct {
	path     string
	input    string
	expected string
}

func runTest(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: gritql test <dir>")
	}
	dir := c.Args().First()

	fixtures, err := collectFixtures(dir)
	if err != nil {
		return err
	}
	if len(fixtures) == 0 {
		fmt.Fprintf(os.Stderr, "gritql: no fixtures found under %s\n", dir)
		return nil
	}

	cfg, err := loadProjectConfig(c)
	if err != nil {
		return err
	}
	libs, err := loadLibraries(cfg)
	if err != nil {
		return err
	}

	passed, failed := 0, 0
	for _, f := range fixtures {
		patternSource, err := os.ReadFile(f.patternPath)
		if err != nil {
			return fmt.Errorf("reading %s: %w", f.patternPath, err)
		}

		for _, s := range f.samples {
			target, err := resolveLanguage(c, s.path)
			if err != nil {
				// Sample files carry no real extension to infer from;
				// fall back to whatever --language names. With no
				// usable --language the sample is reported as an error.
				if name := c.String("language"); name != "" {
					target, _ = languages.ForName(name)
				}
			}
			if target == nil {
				return fmt.Errorf("%s: cannot infer a target language (pass --language)", s.path)
			}

			p, _, err := problem.Compile(string(patternSource), libs, target, problem.CompileOptions{Name: f.patternPath})
			if err != nil {
				fmt.Printf("FAIL %s: compile error: %v\n", s.path, err)
				failed++
				continue
			}

			results, err := p.ExecuteFile(context.Background(), problem.InputSource{Path: s.path, Content: s.input})
			if err != nil {
				fmt.Printf("FAIL %s: %v\n", s.path, err)
				failed++
				continue
			}

			actual := s.input
			matched := false
			for _, r := range results {
				switch v := r.(type) {
				case problem.Rewrite:
					actual = v.Rewritten
					matched = true
				case problem.Match:
					matched = true
				}
			}

			switch {
			case !matched:
				fmt.Printf("FAIL %s: pattern did not match\n", s.path)
				failed++
			case actual != s.expected:
				fmt.Printf("FAIL %s: output mismatch\n--- expected\n%s\n--- actual\n%s\n", s.path, s.expected, actual)
				failed++
			default:
				fmt.Printf("PASS %s\n", s.path)
				passed++
			}
		}
	}

	fmt.Printf("%d passed, %d failed\n", passed, failed)
	if failed > 0 {
		return fmt.Errorf("%d test(s) failed", failed)
	}
	return nil
}

func collectFixtures(dir string) ([]fixture, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	byName := make(map[string]*fixture)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".grit"):
			key := strings.TrimSuffix(name, ".grit")
			f := byName[key]
			if f == nil {
				f = &fixture{name: key}
				byName[key] = f
			}
			f.patternPath = filepath.Join(dir, name)
		case strings.HasSuffix(name, ".md"):
			key := strings.TrimSuffix(name, ".md")
			f := byName[key]
			if f == nil {
				f = &fixture{name: key}
				byName[key] = f
			}
			path := filepath.Join(dir, name)
			content, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("reading %s: %w", path, err)
			}
			input, expected, err := parseFixtureMarkdown(string(content))
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			f.samples = append(f.samples, sample{path: path, input: input, expected: expected})
		}
	}

	var out []fixture
	for _, f := range byName {
		if f.patternPath == "" || len(f.samples) == 0 {
			continue
		}
		out = append(out, *f)
	}
	return out, nil
}

// parseFixtureMarkdown reads a sample file shaped like:
//
//	## Input
//	```
//	<snippet>
//	```
//	## Output
//	```
//	<expected rewrite>
//	```
//
// This hand-rolled fence scanner stands in for a Markdown parser: no
// library in the dependency surface parses Markdown, so this narrow,
// fixture-specific reader is the stdlib-only exception, not a
// dependency avoidance.
func parseFixtureMarkdown(content string) (input, expected string, err error) {
	sections := map[string]string{}
	var current string
	var buf strings.Builder
	inFence := false

	flush := func() {
		if current != "" {
			sections[current] = strings.TrimSuffix(buf.String(), "\n")
		}
		buf.Reset()
	}

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "## "):
			if inFence {
				buf.WriteString(line)
				buf.WriteString("\n")
				continue
			}
			flush()
			current = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(trimmed, "## ")))
		case strings.HasPrefix(trimmed, "```"):
			inFence = !inFence
		default:
			if inFence {
				buf.WriteString(line)
				buf.WriteString("\n")
			}
		}
	}
	flush()

	input, ok := sections["input"]
	if !ok {
		return "", "", fmt.Errorf("missing ## Input section")
	}
	expected, ok = sections["output"]
	if !ok {
		return "", "", fmt.Errorf("missing ## Output section")
	}
	return input, expected, nil
}
