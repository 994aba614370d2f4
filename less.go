package less

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/benbjohnson/less/eval"
	"github.com/benbjohnson/less/importer"
	"github.com/benbjohnson/less/loader"
	"github.com/benbjohnson/less/minify"
)

// Compile compiles source into CSS using the default loaders for imports.
// Location is the path or URL of the source and is used to resolve relative
// imports. If compress is true then the output is minified.
func Compile(source, location string, compress bool) (string, error) {
	return New().Compile(source, location, compress)
}

// Compiler compiles LESS stylesheets. A Compiler holds only its options and
// is safe for concurrent use.
type Compiler struct {
	loader         loader.Loader
	charset        string
	logger         *zap.Logger
	maxDepth       int
	maxImportDepth int
	compact        bool
	paths          []string
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithLoader sets the loader used for imports and CompileFile.
func WithLoader(l loader.Loader) Option {
	return func(c *Compiler) { c.loader = l }
}

// WithCharset sets the charset label passed to the loader.
func WithCharset(charset string) Option {
	return func(c *Compiler) { c.charset = charset }
}

// WithLogger sets the logger for debug events.
func WithLogger(log *zap.Logger) Option {
	return func(c *Compiler) {
		if log != nil {
			c.logger = log
		}
	}
}

// WithMaxDepth limits nested mixin expansion.
func WithMaxDepth(n int) Option {
	return func(c *Compiler) { c.maxDepth = n }
}

// WithMaxImportDepth limits nested imports.
func WithMaxImportDepth(n int) Option {
	return func(c *Compiler) { c.maxImportDepth = n }
}

// WithPaths adds include paths searched for relative imports.
func WithPaths(paths ...string) Option {
	return func(c *Compiler) { c.paths = append(c.paths, paths...) }
}

// WithCompact prints uncompressed output without newlines or indentation.
func WithCompact(compact bool) Option {
	return func(c *Compiler) { c.compact = compact }
}

// New returns a new Compiler.
func New(opts ...Option) *Compiler {
	c := &Compiler{
		loader:         loader.Default(),
		logger:         zap.NewNop(),
		maxDepth:       eval.DefaultMaxDepth,
		maxImportDepth: importer.DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile compiles source located at location into CSS.
func (c *Compiler) Compile(source, location string, compress bool) (string, error) {
	start := time.Now()

	// Loaded sources are kept to build error extracts.
	rec := &recorder{loader: c.loader, sources: map[string]string{location: source}}
	imp := importer.New(rec,
		importer.WithCharset(c.charset),
		importer.WithMaxDepth(c.maxImportDepth),
		importer.WithLogger(c.logger),
		importer.WithPaths(c.paths...),
	)

	ss, err := imp.Parse(source, location)
	if err != nil {
		return "", newError(err, rec.sources)
	}

	out, err := eval.Evaluate(ss, eval.Options{MaxDepth: c.maxDepth, Logger: c.logger})
	if err != nil {
		return "", newError(err, rec.sources)
	}

	var buf bytes.Buffer
	p := Printer{Compact: c.compact || compress}
	if err := p.Print(&buf, out); err != nil {
		return "", err
	}

	css := buf.String()
	if compress {
		css = minify.String(css)
	}

	c.logger.Debug("compiled",
		zap.String("location", location),
		zap.Int("imports", len(rec.sources)-1),
		zap.Int("bytes", len(css)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return css, nil
}

// CompileFile loads the stylesheet at path through the loader and compiles it.
func (c *Compiler) CompileFile(path string, compress bool) (string, error) {
	src, err := c.loader.Load(path, c.charset)
	if err != nil {
		return "", &Error{
			Type:     ErrImport,
			Message:  fmt.Sprintf("cannot load %s: %s", path, err),
			Filename: path,
			Err:      err,
		}
	}
	return c.Compile(src, path, compress)
}

// CompileTo compiles the stylesheet at path and writes the CSS to w.
func (c *Compiler) CompileTo(path string, w io.Writer, compress bool) error {
	css, err := c.CompileFile(path, compress)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, css)
	return err
}

// recorder is a loader that keeps the text of every stylesheet it loads.
type recorder struct {
	loader  loader.Loader
	sources map[string]string
}

func (r *recorder) Load(path, charset string) (string, error) {
	src, err := r.loader.Load(path, charset)
	if err != nil {
		return "", err
	}
	r.sources[path] = src
	return src, nil
}
