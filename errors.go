package less

import (
	"errors"
	"fmt"
	"strings"

	"github.com/benbjohnson/less/eval"
	"github.com/benbjohnson/less/importer"
	"github.com/benbjohnson/less/parser"
	"github.com/benbjohnson/less/scanner"
	"github.com/benbjohnson/less/token"
)

// Error kinds. Use errors.Is to test the kind of an *Error.
var (
	ErrLex    = errors.New("lex error")
	ErrParse  = errors.New("parse error")
	ErrImport = errors.New("import error")
	ErrEval   = errors.New("eval error")
)

// Error represents a failed compilation. Line and Column are one-based and
// Extract holds the source lines around the error, when available.
type Error struct {
	Type     error
	Message  string
	Filename string
	Line     int
	Column   int
	Extract  []string
	Err      error
}

// Error returns the kind, location and message of the error.
func (e *Error) Error() string {
	var loc string
	switch {
	case e.Filename != "" && e.Line > 0:
		loc = fmt.Sprintf("%s:%d:%d: ", e.Filename, e.Line, e.Column)
	case e.Filename != "":
		loc = e.Filename + ": "
	case e.Line > 0:
		loc = fmt.Sprintf("%d:%d: ", e.Line, e.Column)
	}
	return fmt.Sprintf("%s: %s%s", e.Type, loc, e.Message)
}

// Unwrap returns the error kind and the underlying error.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Type}
	}
	return []error{e.Type, e.Err}
}

// newError converts an error from one of the compiler stages into an *Error.
// Sources maps filenames to their text for building the extract.
func newError(err error, sources map[string]string) error {
	var (
		typ error
		msg string
		pos token.Pos
	)

	var (
		se *scanner.Error
		pe *parser.Error
		ie *importer.Error
		ee *eval.Error
	)
	switch {
	case errors.As(err, &se):
		typ, msg, pos = ErrLex, se.Message, se.Pos
	case errors.As(err, &pe):
		typ, msg, pos = ErrParse, pe.Message, pe.Pos
	case errors.As(err, &ie):
		typ, msg, pos = ErrImport, ie.Message, ie.Pos
	case errors.As(err, &ee):
		typ, msg, pos = ErrEval, ee.Message, ee.Pos
	default:
		return err
	}

	return &Error{
		Type:     typ,
		Message:  msg,
		Filename: pos.Filename,
		Line:     pos.Line + 1,
		Column:   pos.Char + 1,
		Extract:  extract(sources[pos.Filename], pos.Line),
		Err:      err,
	}
}

// extract returns the line at the zero-based index n and the lines on
// either side of it.
func extract(src string, n int) []string {
	if src == "" {
		return nil
	}
	lines := strings.Split(src, "\n")
	if n < 0 || n >= len(lines) {
		return nil
	}

	start, end := n-1, n+2
	if start < 0 {
		start = 0
	}
	if end > len(lines) {
		end = len(lines)
	}
	return append([]string{}, lines[start:end]...)
}
