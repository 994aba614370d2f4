package project

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/benbjohnson/less"
	"github.com/benbjohnson/less/loader"
)

// FileError is a failure to build a single file.
type FileError struct {
	File string
	Err  error
}

// Error returns the file followed by the error message.
func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %s", e.File, e.Err)
}

// Unwrap returns the underlying error.
func (e *FileError) Unwrap() error {
	return e.Err
}

// Result summarizes a build. Updated and Unchanged hold the paths of CSS
// files; Errors holds the sources that failed to build.
type Result struct {
	Updated   []string
	Unchanged []string
	Errors    []*FileError
}

// Err returns the build errors joined, or nil.
func (r *Result) Err() error {
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}
	return errors.Join(errs...)
}

// Builder compiles the files of a profile and writes their CSS.
type Builder struct {
	// Charset is the charset of the LESS sources.
	Charset string

	// Verify checks generated CSS before it is written. Optional.
	Verify func(css string) error

	// Options are passed to the compiler of each profile.
	Options []less.Option

	Logger *zap.Logger
}

func (b *Builder) logger() *zap.Logger {
	if b.Logger == nil {
		return zap.NewNop()
	}
	return b.Logger
}

// Build compiles every compilable file in the profile.
func (b *Builder) Build(ctx context.Context, p *Profile) (*Result, error) {
	files, err := p.Files()
	if err != nil {
		return nil, fmt.Errorf("failed to list files in %s: %w", p.LessDir, err)
	}

	var targets []string
	for _, file := range files {
		if p.ShouldCompile(file) {
			targets = append(targets, file)
		}
	}
	return b.build(ctx, p, targets)
}

// BuildChanged compiles the changed files and every compilable file that
// imports one of them. Changed files may be absolute or relative to the
// profile's LESS directory; files outside of it are ignored.
func (b *Builder) BuildChanged(ctx context.Context, p *Profile, changed []string) (*Result, error) {
	files, err := p.Files()
	if err != nil {
		return nil, fmt.Errorf("failed to list files in %s: %w", p.LessDir, err)
	}
	g, err := BuildGraph(os.DirFS(p.LessDir), files)
	if err != nil {
		return nil, err
	}

	set := make(map[string]bool)
	for _, file := range changed {
		rel, ok := p.Rel(file)
		if !ok {
			continue
		}
		set[rel] = true
		for _, dep := range g.Dependents(rel) {
			set[dep] = true
		}
	}

	var targets []string
	for file := range set {
		if p.ShouldCompile(file) {
			targets = append(targets, file)
		}
	}
	sort.Strings(targets)

	b.logger().Debug("rebuild",
		zap.String("profile", p.Name),
		zap.Strings("changed", changed),
		zap.Strings("targets", targets),
	)
	return b.build(ctx, p, targets)
}

func (b *Builder) build(ctx context.Context, p *Profile, targets []string) (*Result, error) {
	log := b.logger().With(zap.String("profile", p.Name))
	l := loader.UnixNewlines(loader.FS{FS: os.DirFS(p.LessDir)})

	opts := append([]less.Option{
		less.WithLoader(l),
		less.WithCharset(b.Charset),
		less.WithLogger(log),
	}, b.Options...)
	c := less.New(opts...)

	result := &Result{}
	for _, file := range targets {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		src, err := l.Load(file, b.Charset)
		if err != nil {
			result.Errors = append(result.Errors, &FileError{File: file, Err: err})
			continue
		}

		css, err := c.Compile(src, file, CompressFor(src, p.Compress))
		if err == nil && b.Verify != nil {
			err = b.Verify(css)
		}
		if err != nil {
			log.Warn("build failed", zap.String("file", file), zap.Error(err))
			result.Errors = append(result.Errors, &FileError{File: file, Err: err})
			continue
		}

		// Files that compile to nothing are not written.
		if css == "" {
			log.Debug("empty output", zap.String("file", file))
			continue
		}

		for _, dir := range p.CSSDirs {
			dest := filepath.Join(dir, filepath.FromSlash(cssPath(file)))
			updated, err := writeIfChanged(dest, []byte(css))
			if err != nil {
				result.Errors = append(result.Errors, &FileError{File: file, Err: err})
				continue
			} else if !updated {
				result.Unchanged = append(result.Unchanged, dest)
				continue
			}
			log.Info("compiled", zap.String("file", file), zap.String("css", dest))
			result.Updated = append(result.Updated, dest)
		}
	}
	return result, nil
}

// writeIfChanged writes data to path unless the file already has exactly
// that content. It returns true if the file was written.
func writeIfChanged(path string, data []byte) (bool, error) {
	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, data) {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return true, nil
}
