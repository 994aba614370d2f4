package parser

import (
	"fmt"
	"path"
	"strings"

	"github.com/benbjohnson/less/ast"
	"github.com/benbjohnson/less/scanner"
	"github.com/benbjohnson/less/token"
)

// Importer fetches and parses the target of an "@import" directive.
// Parsing blocks until the import returns.
type Importer interface {
	Import(path string, paths []string, pos token.Pos) (*ast.Stylesheet, error)
}

// ImporterFunc adapts a function to the Importer interface.
type ImporterFunc func(path string, paths []string, pos token.Pos) (*ast.Stylesheet, error)

// Import calls fn(path, paths, pos).
func (fn ImporterFunc) Import(path string, paths []string, pos token.Pos) (*ast.Stylesheet, error) {
	return fn(path, paths, pos)
}

// Config holds the settings for a single parse.
type Config struct {
	// Filename is attached to token positions.
	Filename string

	// Paths are the import search paths. Relative imports resolve against
	// the first entry.
	Paths []string

	// Importer resolves LESS imports. Imports fail if it is nil.
	Importer Importer
}

// parser represents a LESS parser.
type parser struct {
	s      *scanner.Scanner
	cfg    Config
	tokens []token.Token
	i      int
	err    error

	// vars holds top-level variables with literal values for import
	// path interpolation.
	vars map[string]string
}

// bailout is used to unwind the parser on the first error.
type bailout struct{}

// Parse parses src into a stylesheet. The first lexical, syntax or import
// error aborts the parse.
func Parse(src string, cfg Config) (ss *ast.Stylesheet, err error) {
	p := &parser{
		s:    scanner.New(strings.NewReader(src), cfg.Filename),
		cfg:  cfg,
		vars: make(map[string]string),
	}

	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); !ok {
				panic(r)
			}
			ss, err = nil, p.err
		}
	}()

	ss = &ast.Stylesheet{Filename: cfg.Filename}
	ss.Rules = p.parseRules(true)
	return ss, nil
}

// fail records an error at pos and unwinds the parser.
func (p *parser) fail(pos token.Pos, format string, args ...interface{}) {
	p.abort(&Error{Message: fmt.Sprintf(format, args...), Pos: pos})
}

// abort records err and unwinds the parser.
func (p *parser) abort(err error) {
	p.err = err
	panic(bailout{})
}

// at returns the token at offset n from the current position, reading from
// the scanner as needed. The scanner keeps returning EOF at the end of input.
func (p *parser) at(n int) token.Token {
	for len(p.tokens) <= p.i+n {
		tok := p.s.Scan()
		if len(p.s.Errors) > 0 {
			p.abort(p.s.Errors[0])
		}
		p.tokens = append(p.tokens, tok)
	}
	return p.tokens[p.i+n]
}

// next consumes and returns the current token.
func (p *parser) next() token.Token {
	tok := p.at(0)
	if _, ok := tok.(*token.EOF); !ok {
		p.i++
	}
	return tok
}

// skipWhitespace skips over whitespace tokens.
func (p *parser) skipWhitespace() {
	for {
		if _, ok := p.at(0).(*token.Whitespace); !ok {
			return
		}
		p.i++
	}
}

// peekNonWhitespace returns the first non-whitespace token at or after
// offset n without consuming anything.
func (p *parser) peekNonWhitespace(n int) token.Token {
	for {
		tok := p.at(n)
		if _, ok := tok.(*token.Whitespace); !ok {
			return tok
		}
		n++
	}
}

// parseRules parses statements until EOF for the top level or until the
// closing brace of a block.
func (p *parser) parseRules(toplevel bool) []ast.Rule {
	var a []ast.Rule
	for {
		p.skipWhitespace()
		tok := p.at(0)
		switch tok := tok.(type) {
		case *token.EOF:
			if !toplevel {
				p.fail(tok.Pos, "unexpected EOF, expected '}'")
			}
			return a
		case *token.RBrace:
			if toplevel {
				p.fail(tok.Pos, "unexpected '}'")
			}
			p.next()
			return a
		case *token.Semicolon, *token.CDO, *token.CDC:
			p.next()
		case *token.Comment:
			p.next()
			a = append(a, &ast.Comment{Text: tok.Value, Pos: tok.Pos})
		case *token.AtKeyword:
			a = append(a, p.parseAtStatement(toplevel))
		default:
			a = append(a, p.parseStatement())
		}
	}
}

// parseAtStatement parses a statement beginning with an at-keyword.
func (p *parser) parseAtStatement(toplevel bool) ast.Rule {
	kw := p.at(0).(*token.AtKeyword)
	switch p.peekNonWhitespace(1).(type) {
	case *token.Colon:
		// "@page :first" is a page rule with a pseudo-class.
		if !strings.EqualFold(kw.Value, "page") {
			return p.parseVariableDefinition(toplevel)
		}
	case *token.LParen:
		if p.isDetachedCall() {
			p.fail(kw.Pos, "detached ruleset calls are not supported: @%s()", kw.Value)
		}
	}

	if strings.EqualFold(kw.Value, "import") {
		return p.parseImport()
	}
	return p.parseAtRule()
}

// isDetachedCall returns true if the current at-keyword has the form
// "@name();". At-rules whose prelude begins with a parenthesis, such as
// "@media (min-width: 1px)" or "@import (css) ...", do not.
func (p *parser) isDetachedCall() bool {
	kw := p.at(0).(*token.AtKeyword)
	if strings.EqualFold(kw.Value, "import") {
		return false
	}
	if _, ok := p.at(1).(*token.LParen); !ok {
		return false
	}

	// Only whitespace may separate the parentheses and the semicolon.
	i := 2
	for ; ; i++ {
		if _, ok := p.at(i).(*token.Whitespace); !ok {
			break
		}
	}
	if _, ok := p.at(i).(*token.RParen); !ok {
		return false
	}
	switch p.peekNonWhitespace(i + 1).(type) {
	case *token.Semicolon, *token.RBrace, *token.EOF:
		return true
	}
	return false
}

// parseVariableDefinition parses "@name: value;".
func (p *parser) parseVariableDefinition(toplevel bool) *ast.VariableDefinition {
	kw := p.next().(*token.AtKeyword)
	p.skipWhitespace()
	p.next() // colon

	toks, _ := p.collect(false)
	toks, important := trimImportant(toks)
	if len(trimWhitespace(toks)) == 0 {
		p.fail(kw.Pos, "expected value for variable @%s", kw.Value)
	}

	value := p.parseValue(toks, kw.Pos)
	if important {
		value = &ast.Expression{Exprs: []ast.Expr{value, &ast.Anonymous{Value: "!important", Pos: kw.Pos}}, Pos: value.Position()}
	}

	if toplevel {
		switch v := value.(type) {
		case *ast.Quoted:
			p.vars[kw.Value] = v.Value
		case *ast.Keyword:
			p.vars[kw.Value] = v.Value
		default:
			delete(p.vars, kw.Value)
		}
	}
	return &ast.VariableDefinition{Name: kw.Value, Value: value, Pos: kw.Pos}
}

// parseImport parses an "@import" directive and splices in the parsed
// target for LESS imports.
func (p *parser) parseImport() ast.Rule {
	kw := p.next().(*token.AtKeyword)
	p.skipWhitespace()

	// Parse optional import options, e.g. "(css, optional)".
	var css, less, optional, reference bool
	if _, ok := p.at(0).(*token.LParen); ok {
		p.next()
		for {
			p.skipWhitespace()
			switch tok := p.next().(type) {
			case *token.Ident:
				switch strings.ToLower(tok.Value) {
				case "css":
					css = true
				case "less":
					less = true
				case "optional":
					optional = true
				case "reference":
					reference = true
				case "once", "multiple":
				default:
					p.fail(tok.Pos, "unsupported import option: %s", tok.Value)
				}
				continue
			case *token.Comma:
				continue
			case *token.RParen:
			default:
				p.fail(tok.Position(), "expected import option, got %q", tok.String())
			}
			break
		}
		p.skipWhitespace()
	}

	// Read the path from a string or url.
	var target string
	switch tok := p.next().(type) {
	case *token.String:
		target = tok.Value
	case *token.URL:
		target = tok.Value
	default:
		p.fail(tok.Position(), "expected import path, got %q", tok.String())
	}

	// Remaining tokens are media features.
	toks, _ := p.collect(false)
	features := normalizeSpace(token.Join(toks))

	// Interpolate variables into the path.
	target = p.interpolate(target, kw.Pos)

	imp := &ast.Import{Path: target, Features: features, Pos: kw.Pos}
	if css || (!less && (strings.HasSuffix(target, ".css") || features != "")) {
		imp.CSS = true
		return imp
	}

	// Extensionless paths default to ".less".
	if path.Ext(target) == "" {
		target += ".less"
	}
	if p.cfg.Importer == nil {
		p.fail(kw.Pos, "cannot import %q: no importer configured", target)
	}

	root, err := p.cfg.Importer.Import(target, p.cfg.Paths, kw.Pos)
	if err != nil {
		if !optional {
			p.abort(err)
		}
		root = &ast.Stylesheet{Filename: target}
	}
	imp.Path, imp.Root, imp.Reference = target, root, reference
	return imp
}

// interpolate replaces "@{name}" in s with top-level literal variables.
func (p *parser) interpolate(s string, pos token.Pos) string {
	for {
		start := strings.Index(s, "@{")
		if start == -1 {
			return s
		}
		end := strings.IndexByte(s[start:], '}')
		if end == -1 {
			return s
		}
		name := s[start+2 : start+end]
		v, ok := p.vars[name]
		if !ok {
			p.fail(pos, "cannot interpolate @{%s} in import path: variable not defined", name)
		}
		s = s[:start] + v + s[start+end+1:]
	}
}

// parseAtRule parses an at-rule with an optional block.
func (p *parser) parseAtRule() *ast.AtRule {
	kw := p.next().(*token.AtKeyword)
	r := &ast.AtRule{Name: kw.Value, Pos: kw.Pos}

	toks, term := p.collect(true)
	r.Prelude = trimWhitespace(toks)
	if _, ok := term.(*token.LBrace); ok {
		r.Block = true
		r.Rules = p.parseRules(false)
	}
	return r
}

// parseStatement parses a declaration, ruleset, mixin definition or mixin
// call. The statement kind is decided by looking ahead to the first "{", ";"
// or "}" outside of parentheses.
func (p *parser) parseStatement() ast.Rule {
	start := p.at(0)
	n, term := p.lookahead()

	switch term.(type) {
	case *token.LBrace:
		if p.isMixinDefinition() {
			return p.parseMixinDefinition()
		}
		return p.parseRuleset()
	}

	if isMixinStart(start) {
		return p.parseMixinCall()
	} else if p.hasColon(n) {
		return p.parseDeclaration()
	}
	p.fail(start.Position(), "expected declaration or mixin call, got %q", start.String())
	return nil
}

// lookahead returns the number of tokens before the statement terminator and
// the terminator itself.
func (p *parser) lookahead() (int, token.Token) {
	depth := 0
	for n := 0; ; n++ {
		tok := p.at(n)
		switch tok.(type) {
		case *token.LParen, *token.Function, *token.LBrack:
			depth++
		case *token.RParen, *token.RBrack:
			if depth > 0 {
				depth--
			}
		case *token.LBrace:
			if depth == 0 {
				return n, tok
			}
		case *token.Semicolon, *token.RBrace:
			if depth == 0 {
				return n, tok
			}
		case *token.EOF:
			return n, tok
		}
	}
}

// hasColon returns true if one of the next n tokens is a colon outside of
// parentheses.
func (p *parser) hasColon(n int) bool {
	depth := 0
	for i := 0; i < n; i++ {
		switch p.at(i).(type) {
		case *token.LParen, *token.Function, *token.LBrack:
			depth++
		case *token.RParen, *token.RBrack:
			depth--
		case *token.Colon:
			if depth == 0 {
				return true
			}
		}
	}
	return false
}

// collect consumes tokens up to the end of the statement and returns them
// along with the terminator. A closing brace is left for the enclosing
// block. If block is false then a "{" is a syntax error.
func (p *parser) collect(block bool) ([]token.Token, token.Token) {
	n, term := p.lookahead()
	toks := make([]token.Token, 0, n)
	for i := 0; i < n; i++ {
		tok := p.next()
		if c, ok := tok.(*token.Comment); ok {
			tok = &token.Whitespace{Value: " ", Pos: c.Pos}
		}
		toks = append(toks, tok)
	}

	switch term.(type) {
	case *token.LBrace:
		if !block {
			p.fail(term.Position(), "unexpected '{'")
		}
		p.next()
	case *token.Semicolon:
		p.next()
	}
	return toks, term
}

// isMixinStart returns true if tok can begin a mixin name.
func isMixinStart(tok token.Token) bool {
	switch tok := tok.(type) {
	case *token.Delim:
		return tok.Value == "."
	case *token.Hash:
		return true
	}
	return false
}

// isMixinDefinition returns true if the current tokens begin a parametric
// mixin definition: ".name(" or "#name(".
func (p *parser) isMixinDefinition() bool {
	switch tok := p.at(0).(type) {
	case *token.Delim:
		if tok.Value != "." {
			return false
		}
		_, ok := p.at(1).(*token.Function)
		return ok
	case *token.Hash:
		_, ok := p.at(1).(*token.LParen)
		return ok
	}
	return false
}

// parseRuleset parses "selectors [when guard] { rules }".
func (p *parser) parseRuleset() *ast.Ruleset {
	pos := p.at(0).Position()
	toks, _ := p.collect(true)

	r := &ast.Ruleset{Pos: pos}
	toks, guard := splitGuard(toks)
	if guard != nil {
		r.Guard = p.parseGuard(guard, pos)
	}
	r.Selectors = p.parseSelectors(toks, pos)
	r.Rules = p.parseRules(false)
	return r
}

// parseSelectors parses a comma-separated selector list.
func (p *parser) parseSelectors(toks []token.Token, pos token.Pos) []*ast.Selector {
	var a []*ast.Selector
	for _, part := range splitComma(toks) {
		text := selectorText(part)
		if text == "" {
			p.fail(pos, "expected selector")
		}
		spos := pos
		if part := trimWhitespace(part); len(part) > 0 {
			spos = part[0].Position()
		}
		a = append(a, &ast.Selector{Text: text, Pos: spos})
	}
	return a
}

// selectorText returns the normalized text of a selector. Whitespace is
// collapsed and top-level combinators are surrounded by single spaces.
func selectorText(toks []token.Token) string {
	var sb strings.Builder
	depth, space := 0, false
	for _, tok := range trimWhitespace(toks) {
		switch tok := tok.(type) {
		case *token.Whitespace:
			space = true
			continue
		case *token.LParen, *token.Function, *token.LBrack:
			depth++
		case *token.RParen, *token.RBrack:
			depth--
		case *token.Delim:
			if depth == 0 && (tok.Value == ">" || tok.Value == "+" || tok.Value == "~") {
				sb.WriteString(" " + tok.Value + " ")
				space = false
				continue
			}
		}
		if space && sb.Len() > 0 && !strings.HasSuffix(sb.String(), " ") {
			sb.WriteByte(' ')
		}
		space = false
		sb.WriteString(tok.String())
	}
	return strings.TrimSpace(sb.String())
}

// parseDeclaration parses "name: value [!important];".
func (p *parser) parseDeclaration() *ast.Declaration {
	pos := p.at(0).Position()
	toks, _ := p.collect(false)

	// Split the name from the value at the first colon.
	var colon int
	for i, tok := range toks {
		if _, ok := tok.(*token.Colon); ok {
			colon = i
			break
		}
	}
	name := strings.TrimSpace(token.Join(toks[:colon]))
	if name == "" {
		p.fail(pos, "expected property name")
	}

	d := &ast.Declaration{Name: name, Pos: pos}
	valueToks := toks[colon+1:]
	valueToks, d.Important = trimImportant(valueToks)
	valueToks = trimWhitespace(valueToks)
	if len(valueToks) == 0 {
		p.fail(pos, "expected value for property %s", name)
	}

	// Custom properties and IE filter values are kept verbatim.
	if strings.HasPrefix(name, "--") || isFilterValue(valueToks) {
		d.Value = &ast.Anonymous{Value: token.Join(valueToks), Pos: valueToks[0].Position()}
		return d
	}
	d.Value = p.parseValue(valueToks, pos)
	return d
}

// isFilterValue returns true for "progid:..." style values.
func isFilterValue(toks []token.Token) bool {
	if len(toks) < 2 {
		return false
	}
	_, ok := toks[1].(*token.Colon)
	return ok
}

// parseMixinDefinition parses ".name(params) [when guard] { rules }".
func (p *parser) parseMixinDefinition() *ast.MixinDefinition {
	first := p.next()
	m := &ast.MixinDefinition{Pos: first.Position()}
	if h, ok := first.(*token.Hash); ok {
		m.Name = "#" + h.Value
		p.next() // lparen
	} else {
		m.Name = "." + p.next().(*token.Function).Value
	}

	params := p.collectParens(m.Pos)
	m.Params = p.parseParams(params, m.Pos)

	toks, _ := p.collect(true)
	toks, guard := splitGuard(toks)
	if len(trimWhitespace(toks)) > 0 {
		p.fail(toks[0].Position(), "unexpected %q after mixin parameters", token.Join(trimWhitespace(toks)))
	}
	if guard != nil {
		m.Guard = p.parseGuard(guard, m.Pos)
	}
	m.Rules = p.parseRules(false)
	return m
}

// collectParens consumes tokens up to the matching right parenthesis. This
// function assumes the left parenthesis has been consumed.
func (p *parser) collectParens(pos token.Pos) []token.Token {
	var toks []token.Token
	depth := 0
	for {
		tok := p.next()
		switch tok.(type) {
		case *token.LParen, *token.Function:
			depth++
		case *token.RParen:
			if depth == 0 {
				return toks
			}
			depth--
		case *token.EOF, *token.LBrace, *token.RBrace:
			p.fail(pos, "expected ')', got %q", tok.String())
		}
		if c, ok := tok.(*token.Comment); ok {
			tok = &token.Whitespace{Value: " ", Pos: c.Pos}
		}
		toks = append(toks, tok)
	}
}

// parseParams parses mixin parameters. Parameters are separated by
// semicolons if any are present, otherwise by commas.
func (p *parser) parseParams(toks []token.Token, pos token.Pos) []*ast.Param {
	var a []*ast.Param
	for _, part := range splitArgs(toks) {
		part = trimWhitespace(part)
		if len(part) == 0 {
			continue
		}
		param := &ast.Param{Pos: part[0].Position()}

		// Trailing "..." marks a variadic parameter.
		if n := len(part); n >= 3 && isDelim(part[n-1], ".") && isDelim(part[n-2], ".") && isDelim(part[n-3], ".") {
			param.Variadic = true
			part = trimWhitespace(part[:n-3])
		}

		if len(part) == 0 {
			a = append(a, param)
			continue
		}

		if kw, ok := part[0].(*token.AtKeyword); ok {
			param.Name = kw.Value
			rest := trimWhitespace(part[1:])
			if len(rest) > 0 {
				if _, ok := rest[0].(*token.Colon); !ok {
					p.fail(rest[0].Position(), "expected ':' after parameter @%s, got %q", kw.Value, rest[0].String())
				}
				def := trimWhitespace(rest[1:])
				if len(def) == 0 {
					p.fail(kw.Pos, "expected default value for parameter @%s", kw.Value)
				}
				param.Value = p.parseValue(def, kw.Pos)
			}
		} else {
			param.Value = p.parseValue(part, param.Pos)
		}
		a = append(a, param)
	}
	return a
}

// parseMixinCall parses "path [(args)] [!important];".
func (p *parser) parseMixinCall() *ast.MixinCall {
	pos := p.at(0).Position()
	toks, _ := p.collect(false)
	toks, important := trimImportant(toks)
	toks = trimWhitespace(toks)

	m := &ast.MixinCall{Important: important, Pos: pos}
	var args []token.Token
	for i := 0; i < len(toks); i++ {
		hasArgs := false
		switch tok := toks[i].(type) {
		case *token.Delim:
			if tok.Value == ">" {
				continue
			} else if tok.Value != "." || i+1 >= len(toks) {
				p.fail(tok.Pos, "unexpected %q in mixin call", tok.Value)
			}
			i++
			switch name := toks[i].(type) {
			case *token.Ident:
				m.Path = append(m.Path, "."+name.Value)
			case *token.Function:
				m.Path = append(m.Path, "."+name.Value)
				args, i = p.callArgs(toks, i+1, tok.Pos)
				hasArgs = true
			default:
				p.fail(name.Position(), "expected mixin name, got %q", name.String())
			}
		case *token.Hash:
			m.Path = append(m.Path, "#"+tok.Value)
			if i+1 < len(toks) {
				if _, ok := toks[i+1].(*token.LParen); ok {
					args, i = p.callArgs(toks, i+2, tok.Pos)
					hasArgs = true
				}
			}
		case *token.Whitespace:
		default:
			p.fail(tok.Position(), "unexpected %q in mixin call", tok.String())
		}

		// Nothing but "!important" may follow the argument list.
		if hasArgs {
			if rest := trimWhitespace(toks[i+1:]); len(rest) > 0 {
				p.fail(rest[0].Position(), "unexpected %q after mixin arguments", token.Join(rest))
			}
			break
		}
	}
	if len(m.Path) == 0 {
		p.fail(pos, "expected mixin name")
	}

	for _, part := range splitArgs(args) {
		part = trimWhitespace(part)
		if len(part) == 0 {
			continue
		}
		arg := &ast.Arg{Pos: part[0].Position()}
		if kw, ok := part[0].(*token.AtKeyword); ok {
			if rest := trimWhitespace(part[1:]); len(rest) > 0 {
				if _, ok := rest[0].(*token.Colon); ok {
					arg.Name = kw.Value
					part = trimWhitespace(rest[1:])
					if len(part) == 0 {
						p.fail(kw.Pos, "expected value for argument @%s", kw.Value)
					}
				}
			}
		}
		arg.Value = p.parseValue(part, arg.Pos)
		m.Args = append(m.Args, arg)
	}
	return m
}

// callArgs returns the tokens between the parenthesis opened before index i
// and its match, along with the index of the closing parenthesis.
func (p *parser) callArgs(toks []token.Token, i int, pos token.Pos) ([]token.Token, int) {
	depth := 0
	for j := i; j < len(toks); j++ {
		switch toks[j].(type) {
		case *token.LParen, *token.Function:
			depth++
		case *token.RParen:
			if depth == 0 {
				return toks[i:j], j
			}
			depth--
		}
	}
	p.fail(pos, "expected ')' to close mixin arguments")
	return nil, 0
}

// splitGuard splits a header at a top-level "when" keyword.
func splitGuard(toks []token.Token) (head, guard []token.Token) {
	depth := 0
	for i, tok := range toks {
		switch tok := tok.(type) {
		case *token.LParen, *token.Function, *token.LBrack:
			depth++
		case *token.RParen, *token.RBrack:
			depth--
		case *token.Ident:
			if depth == 0 && tok.Value == "when" && i > 0 {
				if _, ok := toks[i-1].(*token.Whitespace); ok {
					return toks[:i], toks[i+1:]
				}
			}
		}
	}
	return toks, nil
}

// parseGuard parses the conditions following "when".
func (p *parser) parseGuard(toks []token.Token, pos token.Pos) *ast.Guard {
	g := &ast.Guard{Pos: pos}
	for _, alt := range splitComma(toks) {
		var conds []*ast.Condition
		alt = trimWhitespace(alt)
		for len(alt) > 0 {
			c := &ast.Condition{Pos: alt[0].Position()}
			if ident, ok := alt[0].(*token.Ident); ok && ident.Value == "not" {
				c.Negate = true
				alt = trimWhitespace(alt[1:])
			}

			// Each condition is parenthesized.
			if len(alt) == 0 {
				p.fail(c.Pos, "expected guard condition")
			}
			if _, ok := alt[0].(*token.LParen); !ok {
				p.fail(alt[0].Position(), "expected '(' in guard, got %q", alt[0].String())
			}
			inner, j := p.callArgs(alt, 1, c.Pos)
			p.parseCondition(c, inner)
			conds = append(conds, c)

			// Conditions are joined by "and".
			alt = trimWhitespace(alt[j+1:])
			if len(alt) == 0 {
				break
			}
			if ident, ok := alt[0].(*token.Ident); !ok || ident.Value != "and" {
				p.fail(alt[0].Position(), "expected 'and' in guard, got %q", alt[0].String())
			}
			alt = trimWhitespace(alt[1:])
		}
		if len(conds) == 0 {
			p.fail(pos, "expected guard condition")
		}
		g.Alternatives = append(g.Alternatives, conds)
	}
	return g
}

// parseCondition parses "lhs [op rhs]" inside a guard condition.
func (p *parser) parseCondition(c *ast.Condition, toks []token.Token) {
	depth := 0
	for i := 0; i < len(toks); i++ {
		switch tok := toks[i].(type) {
		case *token.LParen, *token.Function:
			depth++
		case *token.RParen:
			depth--
		case *token.Delim:
			if depth != 0 || (tok.Value != "<" && tok.Value != ">" && tok.Value != "=") {
				continue
			}
			op, j := tok.Value, i+1
			if j < len(toks) && (isDelim(toks[j], "=") || isDelim(toks[j], "<")) {
				op += toks[j].String()
				j++
			}
			switch op {
			case "<", ">", "=", ">=", "<=", "=<":
			default:
				p.fail(tok.Pos, "invalid guard operator %q", op)
			}
			lhs, rhs := trimWhitespace(toks[:i]), trimWhitespace(toks[j:])
			if len(lhs) == 0 || len(rhs) == 0 {
				p.fail(tok.Pos, "expected operand for guard operator %q", op)
			}
			c.Op = op
			c.LHS = p.parseValue(lhs, c.Pos)
			c.RHS = p.parseValue(rhs, c.Pos)
			return
		}
	}
	if toks = trimWhitespace(toks); len(toks) == 0 {
		p.fail(c.Pos, "expected guard condition")
	}
	c.LHS = p.parseValue(toks, c.Pos)
}

// parseValue parses an expression from a fixed list of tokens.
func (p *parser) parseValue(toks []token.Token, pos token.Pos) ast.Expr {
	ep := &exprParser{p: p, toks: trimWhitespace(toks), pos: pos}
	v := ep.parseValue()
	if ep.i < len(ep.toks) {
		tok := ep.toks[ep.i]
		p.fail(tok.Position(), "unexpected %q in value", tok.String())
	}
	return v
}

// splitComma splits tokens on top-level commas.
func splitComma(toks []token.Token) [][]token.Token {
	var a [][]token.Token
	depth, start := 0, 0
	for i, tok := range toks {
		switch tok.(type) {
		case *token.LParen, *token.Function, *token.LBrack:
			depth++
		case *token.RParen, *token.RBrack:
			depth--
		case *token.Comma:
			if depth == 0 {
				a = append(a, toks[start:i])
				start = i + 1
			}
		}
	}
	return append(a, toks[start:])
}

// splitArgs splits mixin arguments on top-level semicolons if there are
// any, otherwise on top-level commas.
func splitArgs(toks []token.Token) [][]token.Token {
	if len(trimWhitespace(toks)) == 0 {
		return nil
	}

	var a [][]token.Token
	depth, start, semi := 0, 0, false
	for i, tok := range toks {
		switch tok.(type) {
		case *token.LParen, *token.Function, *token.LBrack:
			depth++
		case *token.RParen, *token.RBrack:
			depth--
		case *token.Semicolon:
			if depth == 0 {
				a = append(a, toks[start:i])
				start, semi = i+1, true
			}
		}
	}
	if semi {
		return append(a, toks[start:])
	}
	return splitComma(toks)
}

// trimWhitespace removes leading and trailing whitespace tokens.
func trimWhitespace(toks []token.Token) []token.Token {
	for len(toks) > 0 {
		if _, ok := toks[0].(*token.Whitespace); !ok {
			break
		}
		toks = toks[1:]
	}
	for len(toks) > 0 {
		if _, ok := toks[len(toks)-1].(*token.Whitespace); !ok {
			break
		}
		toks = toks[:len(toks)-1]
	}
	return toks
}

// trimImportant removes a trailing "!important" and reports whether it was
// present.
func trimImportant(toks []token.Token) ([]token.Token, bool) {
	t := trimWhitespace(toks)
	if n := len(t); n >= 2 {
		if ident, ok := t[n-1].(*token.Ident); ok && strings.EqualFold(ident.Value, "important") {
			rest := trimWhitespace(t[:n-1])
			if m := len(rest); m > 0 && isDelim(rest[m-1], "!") {
				return rest[:m-1], true
			}
		}
	}
	return toks, false
}

// isDelim returns true if tok is a delim with the given value.
func isDelim(tok token.Token, value string) bool {
	d, ok := tok.(*token.Delim)
	return ok && d.Value == value
}

// normalizeSpace collapses runs of whitespace into single spaces.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Error represents a syntax error.
type Error struct {
	Message string
	Pos     token.Pos
}

// Error returns the formatted string error message.
func (e *Error) Error() string {
	return e.Message
}
