package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/gritql/internal/config"
	"github.com/standardbeagle/gritql/internal/lang"
	"github.com/standardbeagle/gritql/internal/problem"
)

var applyCommand = &cli.Command{
	Name:      "apply",
	Usage:     "apply a pattern to files, rewriting matches in place",
	ArgsUsage: "<pattern> [paths...]",
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "concurrency", Aliases: []string{"j"}, Usage: "max files matched concurrently", Value: 4},
		&cli.BoolFlag{Name: "watch", Usage: "re-run on file change"},
	},
	Action: func(c *cli.Context) error {
		return runApplyOrCheck(c, true)
	},
}

var checkCommand = &cli.Command{
	Name:      "check",
	Usage:     "report what apply would change, without writing anything",
	ArgsUsage: "<pattern> [paths...]",
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "concurrency", Aliases: []string{"j"}, Usage: "max files matched concurrently", Value: 4},
		&cli.BoolFlag{Name: "watch", Usage: "re-run on file change"},
	},
	Action: func(c *cli.Context) error {
		return runApplyOrCheck(c, false)
	},
}

func runApplyOrCheck(c *cli.Context, write bool) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: gritql %s <pattern> [paths...]", c.Command.Name)
	}
	patternArg := c.Args().First()
	rawPaths := c.Args().Tail()
	if len(rawPaths) == 0 {
		rawPaths = []string{"."}
	}

	cfg, err := loadProjectConfig(c)
	if err != nil {
		return err
	}

	run := func() error { return applyOnce(c, cfg, patternArg, rawPaths, write) }

	if c.Bool("watch") {
		return watchAndRun(c.Context, cfg, rawPaths, run)
	}
	return run()
}

func applyOnce(c *cli.Context, cfg *config.Config, patternArg string, rawPaths []string, write bool) error {
	source, name, err := resolvePattern(patternArg)
	if err != nil {
		return err
	}
	libs, err := loadLibraries(cfg)
	if err != nil {
		return err
	}
	paths, err := resolvePaths(cfg, rawPaths)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "gritql: no files matched")
		return nil
	}

	byLang := groupByLanguage(c, paths)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	var cancelFlag atomic.Bool
	go func() {
		<-ctx.Done()
		cancelFlag.Store(true)
	}()

	matched, rewritten := 0, 0
	for target, targetPaths := range byLang {
		p, logs, err := problem.Compile(source, libs, target, problem.CompileOptions{Name: name})
		for _, l := range logs {
			fmt.Fprintf(os.Stderr, "gritql: %s: %s\n", l.Level, l.Message)
		}
		if err != nil {
			return fmt.Errorf("compiling %s: %w", name, err)
		}

		err = p.ExecutePathsStreaming(ctx, targetPaths, problem.StreamOptions{
			Concurrency: c.Int("concurrency"),
			Cancel:      &cancelFlag,
		}, func(r problem.MatchResult) error {
			switch v := r.(type) {
			case problem.Match:
				matched++
				fmt.Printf("match: %s\n", v.File)
			case problem.Rewrite:
				matched++
				rewritten++
				if write {
					if err := os.WriteFile(v.File, []byte(v.Rewritten), 0o644); err != nil {
						return fmt.Errorf("writing %s: %w", v.File, err)
					}
					fmt.Printf("rewrote: %s\n", v.File)
				} else {
					fmt.Printf("would rewrite: %s\n", v.File)
				}
			case problem.AnalysisLogResult:
				fmt.Fprintf(os.Stderr, "gritql: %s: %s: %s\n", v.File, v.Log.Level, v.Log.Message)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	fmt.Printf("%d matched, %d rewritten\n", matched, rewritten)
	return nil
}

func groupByLanguage(c *cli.Context, paths []string) map[lang.TargetLanguage][]string {
	out := make(map[lang.TargetLanguage][]string)
	for _, p := range paths {
		l, err := resolveLanguage(c, p)
		if err != nil {
			fmt.Fprintf(os.Stderr, "gritql: skipping %s: %v\n", p, err)
			continue
		}
		out[l] = append(out[l], p)
	}
	return out
}
