package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/gritql/internal/problem"
)

var plumbingCommand = &cli.Command{
	Name:  "plumbing",
	Usage: "low-level, machine-readable entry points: one JSON object per line on stdout",
	Subcommands: []*cli.Command{
		{
			Name:   "parse",
			Usage:  "parse pattern_body and paths from stdin, apply, emit MatchResult JSON lines",
			Action: func(c *cli.Context) error { return runPlumbing(c, true) },
		},
		{
			Name:   "match",
			Usage:  "alias of parse; pattern_body + paths in, MatchResult JSON lines out",
			Action: func(c *cli.Context) error { return runPlumbing(c, true) },
		},
		{
			Name:   "check",
			Usage:  "paths in (+ previously compiled pattern_body), dry-run MatchResult JSON lines out",
			Action: func(c *cli.Context) error { return runPlumbing(c, false) },
		},
	},
}

type plumbingInput struct {
	PatternBody string   `json:"pattern_body"`
	Paths       []string `json:"paths"`
	RootPath    string   `json:"root_path"`
}

func runPlumbing(c *cli.Context, write bool) error {
	var in plumbingInput
	if err := json.NewDecoder(os.Stdin).Decode(&in); err != nil {
		return fmt.Errorf("reading plumbing input: %w", err)
	}
	if len(in.Paths) == 0 {
		return fmt.Errorf("plumbing input has no paths")
	}
	cfg, err := loadProjectConfig(c, in.RootPath)
	if err != nil {
		return err
	}
	libs, err := loadLibraries(cfg)
	if err != nil {
		return err
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	byLang := groupByLanguage(c, in.Paths)
	for target, paths := range byLang {
		p, _, err := problem.Compile(in.PatternBody, libs, target, problem.CompileOptions{Name: "<plumbing>"})
		if err != nil {
			return fmt.Errorf("compiling pattern: %w", err)
		}
		err = p.ExecutePathsStreaming(context.Background(), paths, problem.StreamOptions{Concurrency: 4}, func(r problem.MatchResult) error {
			if rw, ok := r.(problem.Rewrite); ok && write {
				if err := os.WriteFile(rw.File, []byte(rw.Rewritten), 0o644); err != nil {
					return err
				}
			}
			return emitPlumbingLine(out, r)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// emitPlumbingLine writes r as one JSON object, tagged with a
// __typename field naming its concrete MatchResult variant, so a
// machine reader can dispatch on it without Go-specific type
// information.
func emitPlumbingLine(w *bufio.Writer, r problem.MatchResult) error {
	typename := fmt.Sprintf("%T", r)
	if idx := lastDot(typename); idx >= 0 {
		typename = typename[idx+1:]
	}
	payload, err := json.Marshal(r)
	if err != nil {
		return err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return err
	}
	fields["__typename"] = json.RawMessage(fmt.Sprintf("%q", typename))
	tagged, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	if _, err := w.Write(tagged); err != nil {
		return err
	}
	if err := w.WriteByte('\n'); err != nil {
		return err
	}
	return w.Flush()
}

func lastDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return i
		}
	}
	return -1
}
