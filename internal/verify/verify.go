// Package verify checks generated CSS with the tree-sitter CSS grammar.
package verify

import (
	"errors"
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_css "github.com/tree-sitter/tree-sitter-css/bindings/go"
)

// ErrInvalidCSS is returned when generated CSS does not parse.
var ErrInvalidCSS = errors.New("invalid css")

// Error reports the first syntax error found in a stylesheet. Line and
// Column are one-based.
type Error struct {
	Line   int
	Column int
	Text   string
}

// Error returns the position of the error and the text near it.
func (e *Error) Error() string {
	if e.Text == "" {
		return fmt.Sprintf("invalid css at %d:%d", e.Line, e.Column)
	}
	return fmt.Sprintf("invalid css at %d:%d near %q", e.Line, e.Column, e.Text)
}

// Unwrap returns ErrInvalidCSS.
func (e *Error) Unwrap() error { return ErrInvalidCSS }

// CSS parses css and returns an *Error for the first ERROR or MISSING node.
func CSS(css string) error {
	parser := sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(sitter.NewLanguage(tree_sitter_css.Language())); err != nil {
		return fmt.Errorf("failed to load css grammar: %w", err)
	}

	source := []byte(css)
	tree := parser.Parse(source, nil)
	if tree == nil {
		return fmt.Errorf("failed to parse css")
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		return nil
	}
	if node := firstError(root); node != nil {
		pos := node.StartPosition()
		text := string(source[node.StartByte():node.EndByte()])
		if len(text) > 20 {
			text = text[:20]
		}
		return &Error{Line: int(pos.Row) + 1, Column: int(pos.Column) + 1, Text: text}
	}
	return &Error{Line: 1, Column: 1}
}

// firstError returns the first node in document order that is an error or
// was inserted by the parser.
func firstError(node *sitter.Node) *sitter.Node {
	if node.IsError() || node.IsMissing() {
		return node
	}
	if !node.HasError() {
		return nil
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if n := firstError(node.Child(i)); n != nil {
			return n
		}
	}
	return nil
}
