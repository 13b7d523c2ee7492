// Command finddead locates C/C++ function, method, constructor, and
// conversion-operator declarations that are defined but never referenced,
// by consuming clang's `-ast-dump=json` output.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/finddead/internal/analyzer"
	"github.com/standardbeagle/finddead/internal/config"
	"github.com/standardbeagle/finddead/internal/debug"
	"github.com/standardbeagle/finddead/internal/errors"
	"github.com/standardbeagle/finddead/internal/report"
	"github.com/standardbeagle/finddead/internal/scanner"
	"github.com/standardbeagle/finddead/internal/scope"
	"github.com/standardbeagle/finddead/internal/version"
)

// loadConfigWithOverrides loads the .finddead.kdl configuration and applies
// CLI flag overrides, following the teacher's loadConfigWithOverrides
// layering: explicit flags win, --exclude is additive.
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	root := c.String("root")
	rootDir := root
	if rootDir == "" {
		rootDir = "."
	}

	cfg, err := config.Load(c.String("config"), rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.ApplyOverrides(root, c.String("build-dir"), c.StringSlice("exclude")); err != nil {
		return nil, err
	}
	if c.Bool("json") {
		cfg.JSON = true
	}
	return cfg, nil
}

// analyzeFile scans and analyzes one translation unit's AST dump, returning
// its result records. Each call constructs its own scanner and analyzer
// instance, per spec.md §5's disjoint-state parallelism model.
func analyzeFile(resolver *scope.Resolver, path string) ([]analyzer.Result, error) {
	var r *os.File
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.NewFileError("open", path, err)
		}
		defer f.Close()
		r = f
	}

	a := analyzer.New(resolver)
	s := scanner.New(r)
	if err := s.Run(func(node *scanner.AstNode) error {
		return a.OnNode(node)
	}); err != nil {
		if se, ok := err.(*scanner.Error); ok {
			return nil, errors.NewScanError(path, se.Line, se.Col, se)
		}
		return nil, errors.NewScanError(path, 0, 0, err)
	}
	return a.Results(), nil
}

func scanCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	resolver, err := scope.New(cfg.ProjectRoot, cfg.BuildDir, cfg.Exclude)
	if err != nil {
		return fmt.Errorf("invalid resolver configuration: %w", err)
	}

	files := c.Args().Slice()
	if len(files) == 0 {
		return fmt.Errorf("no input files given: pass one or more AST JSON dumps, or - for stdin")
	}

	concurrency := runtime.GOMAXPROCS(0)
	if concurrency < 1 {
		concurrency = 1
	}
	if len(files) < concurrency {
		concurrency = len(files)
	}

	perFile := make([][]analyzer.Result, len(files))
	var failures []error

	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(concurrency)

	failuresCh := make(chan error, len(files))
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			results, err := analyzeFile(resolver, path)
			if err != nil {
				debug.LogReport("scan failed for %s: %v", path, err)
				failuresCh <- err
				return nil
			}
			perFile[i] = results
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	close(failuresCh)
	for err := range failuresCh {
		failures = append(failures, err)
	}

	records := report.Merge(perFile)

	w := bufio.NewWriter(c.App.Writer)
	defer w.Flush()

	if cfg.JSON {
		if err := report.WriteJSON(w, records); err != nil {
			return err
		}
	} else {
		if err := report.WriteText(w, records); err != nil {
			return err
		}
	}

	if len(failures) > 0 {
		multi := errors.NewMultiError(failures)
		fmt.Fprintf(c.App.ErrWriter, "finddead: %d of %d files failed: %v\n", len(failures), len(files), multi)
		return fmt.Errorf("%d of %d files failed", len(failures), len(files))
	}
	return nil
}

// newApp builds the finddead CLI application. Split out from main so tests
// can drive it in-process against a custom Writer/ErrWriter instead of
// spawning a subprocess.
func newApp() *cli.App {
	app := &cli.App{
		Name:    "finddead",
		Usage:   "find unreferenced C/C++ declarations from a clang AST JSON dump",
		Version: version.Version,
		Commands: []*cli.Command{
			{
				Name:      "scan",
				Usage:     "scan one or more AST JSON dumps for unused declarations",
				ArgsUsage: "[FILE...]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "root",
						Aliases: []string{"r"},
						Usage:   "project root directory (overrides config)",
					},
					&cli.StringFlag{
						Name:  "build-dir",
						Usage: "compiler working directory (defaults to root)",
					},
					&cli.StringSliceFlag{
						Name:  "exclude",
						Usage: "project-root-relative excluded subpath (repeatable)",
					},
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "path to a .finddead.kdl config file",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "emit results as a JSON array instead of plain text",
					},
					&cli.BoolFlag{
						Name:  "verbose",
						Usage: "enable debug logging to stderr",
					},
				},
				Before: func(c *cli.Context) error {
					if c.Bool("verbose") {
						debug.EnableDebug = "true"
						debug.SetDebugOutput(os.Stderr)
					}
					return nil
				},
				Action: scanCommand,
			},
		},
		Action: func(c *cli.Context) error {
			return cli.ShowAppHelp(c)
		},
	}
	return app
}

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "finddead: %v\n", err)
		os.Exit(1)
	}
}
