package parser

import (
	"strings"

	"github.com/benbjohnson/less/ast"
	"github.com/benbjohnson/less/token"
)

// exprParser parses value expressions from a fixed list of tokens.
//
// Precedence from lowest to highest: comma lists, space lists, "+" and "-",
// "*" and "/", unary minus, operands.
type exprParser struct {
	p    *parser
	toks []token.Token
	i    int
	pos  token.Pos
}

// peek returns the current token or nil at the end of the list.
func (ep *exprParser) peek() token.Token {
	if ep.i >= len(ep.toks) {
		return nil
	}
	return ep.toks[ep.i]
}

// peekAt returns the token at offset n or nil past the end.
func (ep *exprParser) peekAt(n int) token.Token {
	if ep.i+n >= len(ep.toks) {
		return nil
	}
	return ep.toks[ep.i+n]
}

// skipWhitespace skips whitespace and reports whether any was skipped.
func (ep *exprParser) skipWhitespace() bool {
	skipped := false
	for {
		if _, ok := ep.peek().(*token.Whitespace); !ok {
			return skipped
		}
		ep.i++
		skipped = true
	}
}

// position returns the position of the current token.
func (ep *exprParser) position() token.Pos {
	if tok := ep.peek(); tok != nil {
		return tok.Position()
	}
	return ep.pos
}

// parseValue parses a comma-separated list.
func (ep *exprParser) parseValue() ast.Expr {
	pos := ep.position()
	var a []ast.Expr
	for {
		ep.skipWhitespace()
		a = append(a, ep.parseExpression())
		ep.skipWhitespace()
		if _, ok := ep.peek().(*token.Comma); !ok {
			break
		}
		ep.i++
	}
	if len(a) == 1 {
		return a[0]
	}
	return &ast.Value{Exprs: a, Pos: pos}
}

// parseExpression parses a space-separated list.
func (ep *exprParser) parseExpression() ast.Expr {
	pos := ep.position()
	var a []ast.Expr
	for {
		ep.skipWhitespace()
		switch ep.peek().(type) {
		case nil, *token.Comma, *token.RParen, *token.Semicolon:
			if len(a) == 0 {
				ep.p.fail(ep.position(), "expected expression")
			}
			if len(a) == 1 {
				return a[0]
			}
			return &ast.Expression{Exprs: a, Pos: pos}
		}
		a = append(a, ep.parseAddition())
	}
}

// parseAddition parses "+" and "-" operations.
func (ep *exprParser) parseAddition() ast.Expr {
	lhs := ep.parseMultiplication()
	for {
		op, ok := ep.binaryOperator("+", "-")
		if !ok {
			return lhs
		}
		ep.skipWhitespace()
		rhs := ep.parseMultiplication()
		lhs = &ast.Operation{Op: op, LHS: lhs, RHS: rhs, Pos: lhs.Position()}
	}
}

// parseMultiplication parses "*" and "/" operations.
func (ep *exprParser) parseMultiplication() ast.Expr {
	lhs := ep.parseUnary()
	for {
		op, ok := ep.binaryOperator("*", "/")
		if !ok {
			return lhs
		}
		ep.skipWhitespace()
		rhs := ep.parseUnary()
		lhs = &ast.Operation{Op: op, LHS: lhs, RHS: rhs, Pos: lhs.Position()}
	}
}

// binaryOperator consumes one of ops if it is used as a binary operator.
// An operator preceded by whitespace but directly followed by an operand is
// treated as the start of the next list item instead, so "0 -@x" is a list.
func (ep *exprParser) binaryOperator(ops ...string) (byte, bool) {
	start := ep.i
	before := ep.skipWhitespace()

	d, ok := ep.peek().(*token.Delim)
	if !ok || !contains(ops, d.Value) {
		ep.i = start
		return 0, false
	}
	_, after := ep.peekAt(1).(*token.Whitespace)
	if before && !after && d.Value == "-" {
		ep.i = start
		return 0, false
	}
	if ep.peekAt(1) == nil {
		ep.i = start
		return 0, false
	}
	ep.i++
	return d.Value[0], true
}

// parseUnary parses a negated operand.
func (ep *exprParser) parseUnary() ast.Expr {
	if d, ok := ep.peek().(*token.Delim); ok && d.Value == "-" {
		if next := ep.peekAt(1); next != nil {
			switch next.(type) {
			case *token.AtKeyword, *token.LParen, *token.Function, *token.Interpolation:
				ep.i++
				return &ast.Negative{Expr: ep.parseOperand(), Pos: d.Pos}
			}
		}
	}
	return ep.parseOperand()
}

// parseOperand parses a single literal, variable, call or parenthesized
// expression. Unrecognized tokens pass through as anonymous values.
func (ep *exprParser) parseOperand() ast.Expr {
	tok := ep.peek()
	if tok == nil {
		ep.p.fail(ep.pos, "expected expression")
	}
	ep.i++

	switch tok := tok.(type) {
	case *token.Number:
		return &ast.Dimension{Value: tok.Number, Raw: tok.Value, Pos: tok.Pos}
	case *token.Percentage:
		return &ast.Dimension{Value: tok.Number, Unit: "%", Raw: tok.Value, Pos: tok.Pos}
	case *token.Dimension:
		return &ast.Dimension{Value: tok.Number, Unit: tok.Unit, Raw: tok.Value, Pos: tok.Pos}
	case *token.Hash:
		if isHexColor(tok.Value) {
			return &ast.Color{Raw: "#" + tok.Value, Pos: tok.Pos}
		}
		return &ast.Keyword{Value: "#" + tok.Value, Pos: tok.Pos}
	case *token.Ident:
		return &ast.Keyword{Value: tok.Value, Pos: tok.Pos}
	case *token.String:
		return &ast.Quoted{Value: tok.Value, Quote: tok.Ending, Pos: tok.Pos}
	case *token.URL:
		return &ast.URL{Value: tok.Value, Quote: tok.Ending, Pos: tok.Pos}
	case *token.AtKeyword:
		return &ast.VariableRef{Name: tok.Value, Pos: tok.Pos}
	case *token.Interpolation:
		return &ast.VariableRef{Name: tok.Value, Pos: tok.Pos}
	case *token.Function:
		return ep.parseCall(tok)
	case *token.LParen:
		ep.skipWhitespace()
		inner := ep.parseValue()
		ep.skipWhitespace()
		if _, ok := ep.peek().(*token.RParen); !ok {
			ep.p.fail(tok.Pos, "expected ')'")
		}
		ep.i++
		return &ast.Paren{Expr: inner, Pos: tok.Pos}
	case *token.Delim:
		switch tok.Value {
		case "~":
			// Escaped string: ~"..." prints without quotes.
			if s, ok := ep.peek().(*token.String); ok {
				ep.i++
				return &ast.Quoted{Value: s.Value, Quote: s.Ending, Escaped: true, Pos: tok.Pos}
			}
		case "@":
			// Variable variable: @@name.
			if kw, ok := ep.peek().(*token.AtKeyword); ok {
				ep.i++
				return &ast.VariableRef{Name: kw.Value, Indirect: true, Pos: tok.Pos}
			}
		}
	case *token.RParen:
		ep.p.fail(tok.Pos, "unexpected ')'")
	}
	return &ast.Anonymous{Value: tok.String(), Pos: tok.Position()}
}

// parseCall parses the arguments of a function call. This function assumes
// the function token has been consumed.
func (ep *exprParser) parseCall(fn *token.Function) ast.Expr {
	call := &ast.Call{Name: fn.Value, Pos: fn.Pos}
	ep.skipWhitespace()
	if _, ok := ep.peek().(*token.RParen); ok {
		ep.i++
		return call
	}

	// IE filter arguments such as alpha(opacity=50) are kept verbatim.
	if strings.EqualFold(fn.Value, "alpha") {
		if _, ok := ep.peek().(*token.Ident); ok && isDelim(ep.peekAt(1), "=") {
			start := ep.i
			ep.skipTo()
			raw := token.Join(ep.toks[start:ep.i])
			ep.i++
			return &ast.Anonymous{Value: fn.Value + "(" + raw + ")", Pos: fn.Pos}
		}
	}

	for {
		ep.skipWhitespace()
		call.Args = append(call.Args, ep.parseExpression())
		ep.skipWhitespace()
		switch tok := ep.peek().(type) {
		case *token.Comma:
			ep.i++
		case *token.RParen:
			ep.i++
			return call
		case nil:
			ep.p.fail(fn.Pos, "expected ')' to close %s()", fn.Value)
		default:
			ep.p.fail(tok.Position(), "unexpected %q in %s()", tok.String(), fn.Value)
		}
	}
}

// skipTo advances to the right parenthesis matching the current depth.
func (ep *exprParser) skipTo() {
	depth := 0
	for ; ep.i < len(ep.toks); ep.i++ {
		switch ep.toks[ep.i].(type) {
		case *token.LParen, *token.Function:
			depth++
		case *token.RParen:
			if depth == 0 {
				return
			}
			depth--
		}
	}
	ep.p.fail(ep.pos, "expected ')'")
}

// isHexColor returns true if s is a 3, 4, 6 or 8 digit hex string.
func isHexColor(s string) bool {
	switch len(s) {
	case 3, 4, 6, 8:
	default:
		return false
	}
	for _, ch := range s {
		if !((ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')) {
			return false
		}
	}
	return true
}

func contains(a []string, s string) bool {
	for _, v := range a {
		if v == s {
			return true
		}
	}
	return false
}
