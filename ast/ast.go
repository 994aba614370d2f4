package ast

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/benbjohnson/less/token"
)

// Node represents a node in the LESS abstract syntax tree.
type Node interface {
	node()
	String() string
	Position() token.Pos
}

func (_ *Stylesheet) node()         {}
func (_ *Ruleset) node()            {}
func (_ *Selector) node()           {}
func (_ *Declaration) node()        {}
func (_ *VariableDefinition) node() {}
func (_ *MixinDefinition) node()    {}
func (_ *MixinCall) node()          {}
func (_ *Import) node()             {}
func (_ *AtRule) node()             {}
func (_ *Comment) node()            {}
func (_ *Guard) node()              {}
func (_ *Condition) node()          {}
func (_ *Param) node()              {}
func (_ *Arg) node()                {}
func (_ *Value) node()              {}
func (_ *Expression) node()         {}
func (_ *Operation) node()          {}
func (_ *Paren) node()              {}
func (_ *Negative) node()           {}
func (_ *Dimension) node()          {}
func (_ *Color) node()              {}
func (_ *Keyword) node()            {}
func (_ *Quoted) node()             {}
func (_ *URL) node()                {}
func (_ *VariableRef) node()        {}
func (_ *Call) node()               {}
func (_ *Anonymous) node()          {}

// Rule represents a statement that can appear in a stylesheet or block.
type Rule interface {
	Node
	rule()
}

func (_ *Ruleset) rule()            {}
func (_ *Declaration) rule()        {}
func (_ *VariableDefinition) rule() {}
func (_ *MixinDefinition) rule()    {}
func (_ *MixinCall) rule()          {}
func (_ *Import) rule()             {}
func (_ *AtRule) rule()             {}
func (_ *Comment) rule()            {}

// Expr represents a value expression.
type Expr interface {
	Node
	expr()
}

func (_ *Value) expr()       {}
func (_ *Expression) expr()  {}
func (_ *Operation) expr()   {}
func (_ *Paren) expr()       {}
func (_ *Negative) expr()    {}
func (_ *Dimension) expr()   {}
func (_ *Color) expr()       {}
func (_ *Keyword) expr()     {}
func (_ *Quoted) expr()      {}
func (_ *URL) expr()         {}
func (_ *VariableRef) expr() {}
func (_ *Call) expr()        {}
func (_ *Anonymous) expr()   {}

// Stylesheet represents a parsed source file.
type Stylesheet struct {
	Filename string
	Rules    []Rule
}

func (s *Stylesheet) String() string {
	var buf bytes.Buffer
	for _, r := range s.Rules {
		buf.WriteString(r.String())
		buf.WriteString("\n")
	}
	return buf.String()
}

func (s *Stylesheet) Position() token.Pos { return token.Pos{Filename: s.Filename} }

// Ruleset represents a selector list paired with a block. Guard is set for
// "selector when (cond) { }" rulesets.
type Ruleset struct {
	Selectors []*Selector
	Guard     *Guard
	Rules     []Rule
	Pos       token.Pos
}

func (r *Ruleset) String() string {
	var buf bytes.Buffer
	for i, sel := range r.Selectors {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(sel.String())
	}
	if r.Guard != nil {
		buf.WriteString(" when " + r.Guard.String())
	}
	buf.WriteString(" ")
	buf.WriteString(block(r.Rules))
	return buf.String()
}

func (r *Ruleset) Position() token.Pos { return r.Pos }

// Selector represents a single complex selector. Text is normalized so that
// combinators are separated by single spaces. It may contain "&" parent
// references and "@{name}" interpolations.
type Selector struct {
	Text string
	Pos  token.Pos
}

func (s *Selector) String() string      { return s.Text }
func (s *Selector) Position() token.Pos { return s.Pos }

// Declaration represents a property/value pair.
type Declaration struct {
	Name      string
	Value     Expr
	Important bool
	Pos       token.Pos
}

func (d *Declaration) String() string {
	s := d.Name + ": " + d.Value.String()
	if d.Important {
		s += " !important"
	}
	return s + ";"
}

func (d *Declaration) Position() token.Pos { return d.Pos }

// VariableDefinition represents "@name: value;".
type VariableDefinition struct {
	Name  string
	Value Expr
	Pos   token.Pos
}

func (v *VariableDefinition) String() string      { return "@" + v.Name + ": " + v.Value.String() + ";" }
func (v *VariableDefinition) Position() token.Pos { return v.Pos }

// MixinDefinition represents a parametric mixin such as ".m(@a; @b: 2) { }".
type MixinDefinition struct {
	Name   string
	Params []*Param
	Guard  *Guard
	Rules  []Rule
	Pos    token.Pos
}

func (m *MixinDefinition) String() string {
	var buf bytes.Buffer
	buf.WriteString(m.Name + "(")
	for i, p := range m.Params {
		if i > 0 {
			buf.WriteString("; ")
		}
		buf.WriteString(p.String())
	}
	buf.WriteString(")")
	if m.Guard != nil {
		buf.WriteString(" when " + m.Guard.String())
	}
	buf.WriteString(" ")
	buf.WriteString(block(m.Rules))
	return buf.String()
}

func (m *MixinDefinition) Position() token.Pos { return m.Pos }

// Param represents a single mixin parameter. A parameter without a name is a
// pattern that the argument in the same position must match. Variadic is set
// for "..." and "@rest..." parameters.
type Param struct {
	Name     string
	Value    Expr
	Variadic bool
	Pos      token.Pos
}

func (p *Param) String() string {
	var s string
	if p.Name != "" {
		s = "@" + p.Name
		if p.Value != nil {
			s += ": " + p.Value.String()
		}
	} else if p.Value != nil {
		s = p.Value.String()
	}
	if p.Variadic {
		s += "..."
	}
	return s
}

func (p *Param) Position() token.Pos { return p.Pos }

// MixinCall represents a mixin invocation. Path holds the namespace segments
// followed by the mixin name, e.g. ["#ns", ".m"].
type MixinCall struct {
	Path      []string
	Args      []*Arg
	Important bool
	Pos       token.Pos
}

func (m *MixinCall) String() string {
	var buf bytes.Buffer
	buf.WriteString(strings.Join(m.Path, " > "))
	buf.WriteString("(")
	for i, a := range m.Args {
		if i > 0 {
			buf.WriteString("; ")
		}
		buf.WriteString(a.String())
	}
	buf.WriteString(")")
	if m.Important {
		buf.WriteString(" !important")
	}
	return buf.String() + ";"
}

func (m *MixinCall) Position() token.Pos { return m.Pos }

// Arg represents a mixin call argument. Name is set for named arguments.
type Arg struct {
	Name  string
	Value Expr
	Pos   token.Pos
}

func (a *Arg) String() string {
	if a.Name != "" {
		return "@" + a.Name + ": " + a.Value.String()
	}
	return a.Value.String()
}

func (a *Arg) Position() token.Pos { return a.Pos }

// Import represents an "@import" directive. Root holds the parsed target for
// LESS imports. CSS imports keep Root nil and are emitted as-is. Reference
// imports contribute variables and mixins but no output.
type Import struct {
	Path      string
	Features  string
	CSS       bool
	Reference bool
	Root      *Stylesheet
	Pos       token.Pos
}

func (i *Import) String() string {
	s := "@import " + strconv.Quote(i.Path)
	if i.Features != "" {
		s += " " + i.Features
	}
	return s + ";"
}

func (i *Import) Position() token.Pos { return i.Pos }

// AtRule represents an at-rule other than @import. Prelude holds the raw
// tokens between the name and the block or semicolon. Block is false for
// statement at-rules such as @charset.
type AtRule struct {
	Name    string
	Prelude []token.Token
	Block   bool
	Rules   []Rule
	Pos     token.Pos
}

func (r *AtRule) String() string {
	s := "@" + r.Name
	if prelude := strings.TrimSpace(token.Join(r.Prelude)); prelude != "" {
		s += " " + prelude
	}
	if !r.Block {
		return s + ";"
	}
	return s + " " + block(r.Rules)
}

func (r *AtRule) Position() token.Pos { return r.Pos }

// Comment represents a block comment.
type Comment struct {
	Text string
	Pos  token.Pos
}

func (c *Comment) String() string      { return c.Text }
func (c *Comment) Position() token.Pos { return c.Pos }

// Guard represents a "when" clause. The clause matches if any of the
// comma-separated alternatives match; each alternative is a list of
// conditions joined by "and".
type Guard struct {
	Alternatives [][]*Condition
	Pos          token.Pos
}

func (g *Guard) String() string {
	var alts []string
	for _, alt := range g.Alternatives {
		var conds []string
		for _, c := range alt {
			conds = append(conds, c.String())
		}
		alts = append(alts, strings.Join(conds, " and "))
	}
	return strings.Join(alts, ", ")
}

func (g *Guard) Position() token.Pos { return g.Pos }

// Condition represents a single parenthesized guard condition. If Op is empty
// then LHS is tested for truthiness.
type Condition struct {
	Op     string
	LHS    Expr
	RHS    Expr
	Negate bool
	Pos    token.Pos
}

func (c *Condition) String() string {
	s := "(" + c.LHS.String()
	if c.Op != "" {
		s += " " + c.Op + " " + c.RHS.String()
	}
	s += ")"
	if c.Negate {
		s = "not " + s
	}
	return s
}

func (c *Condition) Position() token.Pos { return c.Pos }

// Value represents a comma-separated list of expressions.
type Value struct {
	Exprs []Expr
	Pos   token.Pos
}

func (v *Value) String() string      { return join(v.Exprs, ", ") }
func (v *Value) Position() token.Pos { return v.Pos }

// Expression represents a space-separated list of expressions.
type Expression struct {
	Exprs []Expr
	Pos   token.Pos
}

func (e *Expression) String() string      { return join(e.Exprs, " ") }
func (e *Expression) Position() token.Pos { return e.Pos }

// Operation represents a binary arithmetic operation.
type Operation struct {
	Op  byte
	LHS Expr
	RHS Expr
	Pos token.Pos
}

func (o *Operation) String() string {
	return o.LHS.String() + " " + string(o.Op) + " " + o.RHS.String()
}

func (o *Operation) Position() token.Pos { return o.Pos }

// Paren represents a parenthesized expression.
type Paren struct {
	Expr Expr
	Pos  token.Pos
}

func (p *Paren) String() string      { return "(" + p.Expr.String() + ")" }
func (p *Paren) Position() token.Pos { return p.Pos }

// Negative represents a unary minus applied to a non-literal.
type Negative struct {
	Expr Expr
	Pos  token.Pos
}

func (n *Negative) String() string      { return "-" + n.Expr.String() }
func (n *Negative) Position() token.Pos { return n.Pos }

// Dimension represents a number with an optional unit. Percentages use the
// "%" unit. Raw holds the source text.
type Dimension struct {
	Value float64
	Unit  string
	Raw   string
	Pos   token.Pos
}

func (d *Dimension) String() string      { return d.Raw }
func (d *Dimension) Position() token.Pos { return d.Pos }

// Color represents a hex color literal. Raw includes the leading "#".
type Color struct {
	Raw string
	Pos token.Pos
}

func (c *Color) String() string      { return c.Raw }
func (c *Color) Position() token.Pos { return c.Pos }

// Keyword represents a bare identifier.
type Keyword struct {
	Value string
	Pos   token.Pos
}

func (k *Keyword) String() string      { return k.Value }
func (k *Keyword) Position() token.Pos { return k.Pos }

// Quoted represents a string literal. Escaped is set for ~"..." strings,
// which print without quotes.
type Quoted struct {
	Value   string
	Quote   rune
	Escaped bool
	Pos     token.Pos
}

func (q *Quoted) String() string {
	s := string(q.Quote) + q.Value + string(q.Quote)
	if q.Escaped {
		return "~" + s
	}
	return s
}

func (q *Quoted) Position() token.Pos { return q.Pos }

// URL represents a url() value.
type URL struct {
	Value string
	Quote rune
	Pos   token.Pos
}

func (u *URL) String() string {
	if u.Quote != 0 {
		return "url(" + string(u.Quote) + u.Value + string(u.Quote) + ")"
	}
	return "url(" + u.Value + ")"
}

func (u *URL) Position() token.Pos { return u.Pos }

// VariableRef represents a variable reference. Indirect is set for "@@name",
// which looks up the variable named by the value of @name.
type VariableRef struct {
	Name     string
	Indirect bool
	Pos      token.Pos
}

func (v *VariableRef) String() string {
	if v.Indirect {
		return "@@" + v.Name
	}
	return "@" + v.Name
}

func (v *VariableRef) Position() token.Pos { return v.Pos }

// Call represents a function call.
type Call struct {
	Name string
	Args []Expr
	Pos  token.Pos
}

func (c *Call) String() string      { return c.Name + "(" + join(c.Args, ", ") + ")" }
func (c *Call) Position() token.Pos { return c.Pos }

// Anonymous represents raw text passed through unchanged.
type Anonymous struct {
	Value string
	Pos   token.Pos
}

func (a *Anonymous) String() string      { return a.Value }
func (a *Anonymous) Position() token.Pos { return a.Pos }

// block returns the source form of a block of rules.
func block(rules []Rule) string {
	var buf bytes.Buffer
	buf.WriteString("{")
	for i, r := range rules {
		if i > 0 {
			buf.WriteString(" ")
		}
		buf.WriteString(r.String())
	}
	buf.WriteString("}")
	return buf.String()
}

// join returns the string form of each expression joined by sep.
func join(a []Expr, sep string) string {
	s := make([]string, len(a))
	for i, e := range a {
		s[i] = e.String()
	}
	return strings.Join(s, sep)
}

// Walk traverses the rules of a stylesheet depth-first, descending into
// blocks and resolved imports. Traversal of a subtree stops when fn returns
// false.
func Walk(rules []Rule, fn func(Rule) bool) {
	for _, r := range rules {
		if !fn(r) {
			continue
		}
		switch r := r.(type) {
		case *Ruleset:
			Walk(r.Rules, fn)
		case *MixinDefinition:
			Walk(r.Rules, fn)
		case *AtRule:
			Walk(r.Rules, fn)
		case *Import:
			if r.Root != nil {
				Walk(r.Root.Rules, fn)
			}
		}
	}
}
