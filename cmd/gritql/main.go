// Command gritql is the CLI front end over the Problem façade: compile
// a pattern once, then apply, check, test, or plumb it against a set of
// files, the way the engine's own command-line collaborator would.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/gritql/internal/lang"
	"github.com/standardbeagle/gritql/internal/version"
)

var languages = lang.NewRegistry()

func main() {
	app := &cli.App{
		Name:                   "gritql",
		Usage:                  "structural search and rewrite",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "project root (defaults to the current directory)",
			},
			&cli.StringFlag{
				Name:  "language",
				Usage: "target language (go, javascript, typescript, python, rust, java, csharp, cpp, php, zig); inferred per-file when unset",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "glob pattern to include (repeatable); overrides .gritql.kdl",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "glob pattern to exclude (repeatable); extends .gritql.kdl",
			},
		},
		Commands: []*cli.Command{
			applyCommand,
			checkCommand,
			testCommand,
			plumbingCommand,
			mcpCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "gritql:", err)
		os.Exit(1)
	}
}
