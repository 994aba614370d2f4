// Package importer resolves "@import" targets, loads them through a loader and
// parses them recursively. It guards against runaway and circular imports.
package importer

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/benbjohnson/less/ast"
	"github.com/benbjohnson/less/loader"
	"github.com/benbjohnson/less/parser"
	"github.com/benbjohnson/less/token"
)

// DefaultMaxDepth is the default limit on nested imports.
const DefaultMaxDepth = 32

// BasePath returns the directory part of location up to and including the
// last "/". It returns an empty string if location has no directory.
func BasePath(location string) string {
	if i := strings.LastIndexByte(location, '/'); i != -1 {
		return location[:i+1]
	}
	return ""
}

// Resolve returns the normalized location of p. Absolute paths and URLs are
// returned as-is; relative paths are resolved against the first search path.
func Resolve(p string, searchPaths []string) string {
	if strings.HasPrefix(p, "/") || loader.Scheme(p) != "" || len(searchPaths) == 0 {
		return p
	}

	base := searchPaths[0]
	if loader.Scheme(base) != "" {
		if u, err := url.Parse(base); err == nil {
			if ref, err := url.Parse(p); err == nil {
				return u.ResolveReference(ref).String()
			}
		}
		return base + p
	}

	resolved := path.Clean(base + p)
	if strings.HasPrefix(base, "/") || resolved == "." {
		return resolved
	}
	return strings.TrimPrefix(resolved, "./")
}

// Importer implements parser.Importer on top of a loader. Each import is
// fetched and parsed again; nothing is cached. An Importer tracks the chain
// of active imports and is not safe for concurrent use.
type Importer struct {
	loader   loader.Loader
	charset  string
	maxDepth int
	logger   *zap.Logger
	paths    []string

	stack []string
}

// Option configures an Importer.
type Option func(*Importer)

// WithCharset sets the charset label passed to the loader.
func WithCharset(charset string) Option {
	return func(imp *Importer) { imp.charset = charset }
}

// WithMaxDepth sets the maximum import nesting depth.
func WithMaxDepth(n int) Option {
	return func(imp *Importer) {
		if n > 0 {
			imp.maxDepth = n
		}
	}
}

// WithPaths adds include paths that are searched, in order, for relative
// imports that are not found next to the importing stylesheet.
func WithPaths(paths ...string) Option {
	return func(imp *Importer) {
		for _, p := range paths {
			if p != "" && !strings.HasSuffix(p, "/") {
				p += "/"
			}
			imp.paths = append(imp.paths, p)
		}
	}
}

// WithLogger sets the logger used for import events.
func WithLogger(log *zap.Logger) Option {
	return func(imp *Importer) {
		if log != nil {
			imp.logger = log
		}
	}
}

// New returns an Importer that loads stylesheets with l.
func New(l loader.Loader, opts ...Option) *Importer {
	imp := &Importer{
		loader:   l,
		maxDepth: DefaultMaxDepth,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(imp)
	}
	imp.logger = imp.logger.Named("importer")
	return imp
}

// Parse parses the root stylesheet src located at location. Imports are
// resolved relative to the directory of location.
func (imp *Importer) Parse(src, location string) (*ast.Stylesheet, error) {
	imp.stack = append(imp.stack[:0], location)
	defer func() { imp.stack = imp.stack[:0] }()

	return parser.Parse(src, parser.Config{
		Filename: location,
		Paths:    []string{BasePath(location)},
		Importer: imp,
	})
}

// Import loads and parses the stylesheet at p.
func (imp *Importer) Import(p string, paths []string, pos token.Pos) (*ast.Stylesheet, error) {
	candidates := imp.candidates(p, paths)
	target := candidates[0]

	if len(imp.stack) > imp.maxDepth {
		return nil, &Error{
			Message: fmt.Sprintf("import depth limit of %d exceeded importing %s", imp.maxDepth, target),
			Path:    target,
			Pos:     pos,
		}
	}

	// The error for the first candidate is reported unless a later one
	// fails for a reason other than not being found.
	var src string
	var err error
	for i, candidate := range candidates {
		if err := imp.checkCycle(candidate, pos); err != nil {
			return nil, err
		}
		imp.logger.Debug("load",
			zap.String("path", candidate),
			zap.Int("depth", len(imp.stack)),
		)
		s, lerr := imp.loader.Load(candidate, imp.charset)
		if lerr == nil {
			src, target, err = s, candidate, nil
			break
		}
		if i == 0 || !errors.Is(lerr, loader.ErrNotFound) {
			target, err = candidate, lerr
		}
		if !errors.Is(lerr, loader.ErrNotFound) {
			break
		}
	}
	if err != nil {
		imp.logger.Debug("load failed", zap.String("path", target), zap.Error(err))
		return nil, &Error{
			Message: fmt.Sprintf("cannot load %s: %s", target, err),
			Path:    target,
			Pos:     pos,
			Err:     err,
		}
	}

	imp.stack = append(imp.stack, target)
	defer func() { imp.stack = imp.stack[:len(imp.stack)-1] }()

	return parser.Parse(src, parser.Config{
		Filename: target,
		Paths:    []string{BasePath(target)},
		Importer: imp,
	})
}

// candidates returns the locations tried for p: next to the importing
// stylesheet first, then under each include path.
func (imp *Importer) candidates(p string, paths []string) []string {
	out := []string{Resolve(p, paths)}
	if strings.HasPrefix(p, "/") || loader.Scheme(p) != "" {
		return out
	}
	for _, inc := range imp.paths {
		if target := Resolve(p, []string{inc}); target != out[0] {
			out = append(out, target)
		}
	}
	return out
}

// checkCycle returns an error if target is already being imported.
func (imp *Importer) checkCycle(target string, pos token.Pos) error {
	for i, active := range imp.stack {
		if active == target {
			chain := append(append([]string{}, imp.stack[i:]...), target)
			return &Error{
				Message: "circular import: " + strings.Join(chain, " -> "),
				Path:    target,
				Pos:     pos,
			}
		}
	}
	return nil
}

// Error represents a failed import. Pos is the location of the "@import"
// directive.
type Error struct {
	Message string
	Path    string
	Pos     token.Pos
	Err     error
}

// Error returns the formatted string error message.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying loader error, if any.
func (e *Error) Unwrap() error {
	return e.Err
}
