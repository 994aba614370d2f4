package less

import (
	"bytes"
	"io"
	"strings"

	"github.com/benbjohnson/less/eval"
)

// DefaultIndent is the indentation used by the pretty printer.
const DefaultIndent = "  "

// Printer represents a configurable CSS printer for evaluated stylesheets.
type Printer struct {
	// Compact removes newlines and indentation.
	Compact bool

	// Indent is the indentation per nesting level. Defaults to DefaultIndent.
	Indent string
}

// Print writes n to w.
func (p *Printer) Print(w io.Writer, n eval.Node) error {
	var buf bytes.Buffer
	p.print(&buf, n, 0)
	_, err := w.Write(buf.Bytes())
	return err
}

func (p *Printer) print(buf *bytes.Buffer, n eval.Node, depth int) {
	switch n := n.(type) {
	case *eval.Stylesheet:
		if n == nil {
			return
		}
		p.printRules(buf, n.Rules, depth)

	case *eval.Ruleset:
		if n == nil {
			return
		}
		p.indent(buf, depth)
		if p.Compact {
			buf.WriteString(strings.Join(n.Selectors, ","))
			buf.WriteByte('{')
		} else {
			buf.WriteString(strings.Join(n.Selectors, ",\n"+p.prefix(depth)))
			buf.WriteString(" {\n")
		}
		for _, d := range n.Declarations {
			p.print(buf, d, depth+1)
		}
		p.close(buf, depth)

	case *eval.Declaration:
		if n == nil {
			return
		}
		p.indent(buf, depth)
		buf.WriteString(n.Name)
		if p.Compact {
			buf.WriteByte(':')
		} else {
			buf.WriteString(": ")
		}
		buf.WriteString(n.Value)
		if n.Important {
			buf.WriteString(" !important")
		}
		buf.WriteByte(';')
		p.newline(buf)

	case *eval.Block:
		if n == nil {
			return
		}
		p.indent(buf, depth)
		buf.WriteByte('@')
		buf.WriteString(n.Name)
		if n.Prelude != "" {
			buf.WriteByte(' ')
			buf.WriteString(n.Prelude)
		}
		if p.Compact {
			buf.WriteByte('{')
		} else {
			buf.WriteString(" {\n")
		}
		for _, d := range n.Declarations {
			p.print(buf, d, depth+1)
		}
		p.printRules(buf, n.Rules, depth+1)
		p.close(buf, depth)

	case *eval.Directive:
		if n == nil {
			return
		}
		p.indent(buf, depth)
		buf.WriteByte('@')
		buf.WriteString(n.Name)
		if n.Value != "" {
			buf.WriteByte(' ')
			buf.WriteString(n.Value)
		}
		buf.WriteByte(';')
		p.newline(buf)

	case *eval.Comment:
		if n == nil {
			return
		}
		p.indent(buf, depth)
		buf.WriteString(n.Text)
		p.newline(buf)
	}
}

func (p *Printer) printRules(buf *bytes.Buffer, rules []eval.Rule, depth int) {
	for _, r := range rules {
		p.print(buf, r, depth)
	}
}

// close writes the closing brace of a block.
func (p *Printer) close(buf *bytes.Buffer, depth int) {
	p.indent(buf, depth)
	buf.WriteByte('}')
	p.newline(buf)
}

func (p *Printer) indent(buf *bytes.Buffer, depth int) {
	if !p.Compact {
		buf.WriteString(p.prefix(depth))
	}
}

func (p *Printer) newline(buf *bytes.Buffer) {
	if !p.Compact {
		buf.WriteByte('\n')
	}
}

// prefix returns the indentation for depth.
func (p *Printer) prefix(depth int) string {
	indent := p.Indent
	if indent == "" {
		indent = DefaultIndent
	}
	return strings.Repeat(indent, depth)
}
