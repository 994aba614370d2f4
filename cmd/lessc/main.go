package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/benbjohnson/less"
	"github.com/benbjohnson/less/internal/project"
	"github.com/benbjohnson/less/internal/verify"
	"github.com/benbjohnson/less/internal/version"
	"github.com/benbjohnson/less/loader"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newApp(os.Stdin, os.Stdout, os.Stderr).RunContext(ctx, os.Args); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "lessc",
		Usage:     "compile LESS stylesheets to CSS",
		Version:   version.Get().String(),
		Reader:    stdin,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Usage: "log debug events"},
		},
		Commands: []*cli.Command{
			{
				Name:      "compile",
				Usage:     "compile a single stylesheet",
				ArgsUsage: "[FILE|-]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "compress", Aliases: []string{"x"}, Usage: "minify the output"},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "write CSS to `FILE` instead of stdout"},
					&cli.StringFlag{Name: "charset", Value: project.DefaultCharset, Usage: "charset of the sources"},
					&cli.StringSliceFlag{Name: "include-path", Aliases: []string{"I"}, Usage: "search `DIR` for imports"},
					&cli.BoolFlag{Name: "verify", Usage: "check that the output parses as CSS"},
				},
				Action: compile,
			},
			{
				Name:      "build",
				Usage:     "build the profiles of a project",
				ArgsUsage: "[CHANGED...]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "project config `FILE`"},
					&cli.StringFlag{Name: "profile", Aliases: []string{"p"}, Usage: "build only the named profile"},
					&cli.BoolFlag{Name: "verify", Usage: "check that each output parses as CSS"},
				},
				Action: build,
			},
			{
				Name:      "deps",
				Usage:     "list the stylesheets that import a file",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "project config `FILE`"},
				},
				Action: deps,
			},
			{
				Name:  "version",
				Usage: "print the version",
				Action: func(c *cli.Context) error {
					fmt.Fprintln(c.App.Writer, version.Get())
					return nil
				},
			},
		},
	}
}

func compile(c *cli.Context) error {
	log, err := newLogger(c.Bool("verbose"))
	if err != nil {
		return err
	}
	defer log.Sync()

	compiler := less.New(
		less.WithLoader(loader.Default()),
		less.WithCharset(c.String("charset")),
		less.WithPaths(c.StringSlice("include-path")...),
		less.WithLogger(log),
	)

	var css string
	switch path := c.Args().First(); path {
	case "", "-":
		data, err := io.ReadAll(c.App.Reader)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		src, err := loader.Decode(data, c.String("charset"))
		if err != nil {
			return err
		}
		css, err = compiler.Compile(strings.ReplaceAll(src, "\r\n", "\n"), "", c.Bool("compress"))
		if err != nil {
			return err
		}
	default:
		if css, err = compiler.CompileFile(filepath.ToSlash(path), c.Bool("compress")); err != nil {
			return err
		}
	}

	if c.Bool("verify") {
		if err := verify.CSS(css); err != nil {
			return err
		}
	}

	if output := c.String("output"); output != "" {
		if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
			return err
		}
		return os.WriteFile(output, []byte(css), 0o644)
	}
	_, err = io.WriteString(c.App.Writer, css)
	return err
}

func build(c *cli.Context) error {
	log, err := newLogger(c.Bool("verbose"))
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg, err := loadConfig(c.String("config"))
	if err != nil {
		return err
	}

	profiles := cfg.Profiles
	if name := c.String("profile"); name != "" {
		p, ok := cfg.Profile(name)
		if !ok {
			return fmt.Errorf("profile %q not found", name)
		}
		profiles = []*project.Profile{p}
	}

	b := &project.Builder{Charset: cfg.Charset, Logger: log}
	if c.Bool("verify") {
		b.Verify = verify.CSS
	}

	changed := absPaths(c.Args().Slice())
	var errs []error
	for _, p := range profiles {
		var res *project.Result
		if len(changed) > 0 {
			res, err = b.BuildChanged(c.Context, p, changed)
		} else {
			res, err = b.Build(c.Context, p)
		}
		if err != nil {
			return err
		}
		for _, path := range res.Updated {
			fmt.Fprintln(c.App.Writer, path)
		}
		if err := res.Err(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func deps(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("deps requires exactly one file", 2)
	}
	cfg, err := loadConfig(c.String("config"))
	if err != nil {
		return err
	}

	file := absPaths(c.Args().Slice())[0]
	p, ok := cfg.ProfileFor(file)
	if !ok {
		return fmt.Errorf("%s is not in any profile", file)
	}
	rel, _ := p.Rel(file)

	files, err := p.Files()
	if err != nil {
		return err
	}
	g, err := project.BuildGraph(os.DirFS(p.LessDir), files)
	if err != nil {
		return err
	}
	if cycle := g.FindCycle(); cycle != nil {
		fmt.Fprintf(c.App.ErrWriter, "warning: import cycle: %s\n", strings.Join(cycle, " -> "))
	}
	for _, dep := range g.Dependents(rel) {
		fmt.Fprintln(c.App.Writer, dep)
	}
	return nil
}

// loadConfig loads path, or the nearest config above the working directory.
func loadConfig(path string) (*project.Config, error) {
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		if path, err = project.FindConfig(wd); err != nil {
			return nil, err
		}
	}
	return project.LoadConfig(path)
}

func absPaths(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		out[i] = p
	}
	return out
}

// newLogger returns a development logger when verbose and a production
// logger limited to warnings otherwise.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	cfg.Encoding = "console"
	cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	return cfg.Build()
}

// printError writes err and, for compile errors, the source extract.
func printError(w io.Writer, err error) {
	fmt.Fprintln(w, err)

	var e *less.Error
	if !errors.As(err, &e) || len(e.Extract) == 0 {
		return
	}
	first := e.Line - 1
	if first < 1 {
		first = 1
	}
	for i, line := range e.Extract {
		marker := " "
		if first+i == e.Line {
			marker = ">"
		}
		fmt.Fprintf(w, "%s %4d | %s\n", marker, first+i, line)
	}
}
