package eval

import (
	"math"
	"strings"

	"github.com/benbjohnson/less/ast"
	"github.com/benbjohnson/less/token"
)

// eval evaluates an expression in frame f.
func (e *evaluator) eval(x ast.Expr, f int) Value {
	switch x := x.(type) {
	case *ast.Dimension:
		return &Number{Value: x.Value, Unit: x.Unit}
	case *ast.Color:
		c, ok := ParseColor(x.Raw)
		if !ok {
			e.fail(x.Pos, "invalid color: %s", x.Raw)
		}
		c.Raw = x.Raw
		return c
	case *ast.Keyword:
		return &Keyword{Value: x.Value}
	case *ast.Quoted:
		return &Quoted{Value: e.interpolate(x.Value, f, x.Pos), Quote: x.Quote, Escaped: x.Escaped}
	case *ast.URL:
		return e.evalURL(x, f)
	case *ast.VariableRef:
		name := x.Name
		if x.Indirect {
			name = unquote(e.resolve(f, x.Name, x.Pos))
		}
		return e.resolve(f, name, x.Pos)
	case *ast.Call:
		return e.evalCall(x, f)
	case *ast.Paren:
		if e.noMath > 0 {
			return &Anonymous{Value: "(" + e.eval(x.Expr, f).String() + ")"}
		}
		e.parens++
		defer func() { e.parens-- }()
		return e.eval(x.Expr, f)
	case *ast.Negative:
		v := e.eval(x.Expr, f)
		if n, ok := v.(*Number); ok {
			return &Number{Value: -n.Value, Unit: n.Unit}
		}
		return &Anonymous{Value: "-" + v.String()}
	case *ast.Operation:
		return e.evalOperation(x, f)
	case *ast.Value:
		return &List{Items: e.evalList(x.Exprs, f), Sep: ", "}
	case *ast.Expression:
		return &List{Items: e.evalList(x.Exprs, f), Sep: " "}
	case *ast.Anonymous:
		return &Anonymous{Value: x.Value}
	}
	e.fail(x.Position(), "unexpected expression: %s", x)
	return nil
}

func (e *evaluator) evalList(exprs []ast.Expr, f int) []Value {
	a := make([]Value, len(exprs))
	for i, x := range exprs {
		a[i] = e.eval(x, f)
	}
	return a
}

// resolve returns the value of the variable name visible from frame f. The
// variable is evaluated in its defining frame on first use.
func (e *evaluator) resolve(f int, name string, pos token.Pos) Value {
	b, ok := e.lookupVar(f, name)
	if !ok {
		e.fail(pos, "variable @%s is undefined", name)
	} else if b.value != nil {
		return b.value
	} else if b.busy {
		e.fail(pos, "recursive variable definition for @%s", name)
	}

	// Variables are evaluated outside of any enclosing parens or calc().
	parens, noMath := e.parens, e.noMath
	e.parens, e.noMath = 0, 0
	b.busy = true
	v := e.eval(b.expr, b.frame)
	b.busy = false
	e.parens, e.noMath = parens, noMath

	b.value = v
	return v
}

// interpolate replaces each "@{name}" in s with the unquoted variable value.
func (e *evaluator) interpolate(s string, f int, pos token.Pos) string {
	if !strings.Contains(s, "@{") {
		return s
	}

	var sb strings.Builder
	for {
		start := strings.Index(s, "@{")
		if start == -1 {
			break
		}
		end := strings.IndexByte(s[start:], '}')
		if end == -1 {
			break
		}
		sb.WriteString(s[:start])
		sb.WriteString(unquote(e.resolve(f, s[start+2:start+end], pos)))
		s = s[start+end+1:]
	}
	sb.WriteString(s)
	return sb.String()
}

// evalURL evaluates a url(). An unquoted url(@var) takes the variable value.
func (e *evaluator) evalURL(u *ast.URL, f int) Value {
	if u.Quote == 0 && strings.HasPrefix(u.Value, "@") && !strings.HasPrefix(u.Value, "@{") {
		switch v := e.resolve(f, u.Value[1:], u.Pos).(type) {
		case *URL:
			return v
		case *Quoted:
			if v.Escaped {
				return &URL{Value: v.Value}
			}
			return &URL{Value: v.Value, Quote: v.Quote}
		default:
			return &URL{Value: v.String()}
		}
	}
	return &URL{Value: e.interpolate(u.Value, f, u.Pos), Quote: u.Quote}
}

// evalCall evaluates a function call. Unknown functions are emitted with
// their evaluated arguments. Arguments to calc() are not computed.
func (e *evaluator) evalCall(c *ast.Call, f int) Value {
	name := strings.ToLower(c.Name)
	if name == "calc" || strings.HasSuffix(name, "-calc") {
		e.noMath++
		defer func() { e.noMath-- }()
		return &Anonymous{Value: c.Name + "(" + listOf(e.evalList(c.Args, f), ", ").String() + ")"}
	}

	args := e.evalList(c.Args, f)
	if fn, ok := functions[name]; ok {
		if v := fn(e, c, args); v != nil {
			return v
		}
	}

	a := make([]string, len(args))
	for i, v := range args {
		a[i] = v.String()
	}
	return &Anonymous{Value: c.Name + "(" + strings.Join(a, ", ") + ")"}
}

// evalOperation evaluates a binary operation. A "/" between two literal
// numbers outside of parens is kept as text, as in "font: 12px/1.5".
func (e *evaluator) evalOperation(o *ast.Operation, f int) Value {
	if e.noMath > 0 {
		return &Anonymous{Value: e.eval(o.LHS, f).String() + " " + string(o.Op) + " " + e.eval(o.RHS, f).String()}
	}
	if o.Op == '/' && e.parens == 0 {
		_, lok := o.LHS.(*ast.Dimension)
		_, rok := o.RHS.(*ast.Dimension)
		if lok && rok {
			return &Anonymous{Value: o.LHS.String() + "/" + o.RHS.String()}
		}
	}
	return e.operate(o.Op, e.eval(o.LHS, f), e.eval(o.RHS, f), o.Pos)
}

// operate applies an arithmetic operator. The result of a number operation
// takes the left operand's unit, or the right operand's if the left has none.
// Color operations apply to each channel and clamp the result.
func (e *evaluator) operate(op byte, lhs, rhs Value, pos token.Pos) Value {
	ln, lnum := lhs.(*Number)
	rn, rnum := rhs.(*Number)
	if lnum && rnum {
		unit := ln.Unit
		if unit == "" {
			unit = rn.Unit
		}
		return &Number{Value: e.arith(op, ln.Value, rn.Value, pos), Unit: unit}
	}

	lc, lcolor := toColor(lhs)
	rc, rcolor := toColor(rhs)
	switch {
	case lcolor && rcolor:
		return &Color{
			R: clamp(e.arith(op, lc.R, rc.R, pos), 0, 255),
			G: clamp(e.arith(op, lc.G, rc.G, pos), 0, 255),
			B: clamp(e.arith(op, lc.B, rc.B, pos), 0, 255),
			A: lc.A,
		}
	case lcolor && rnum:
		return &Color{
			R: clamp(e.arith(op, lc.R, rn.Value, pos), 0, 255),
			G: clamp(e.arith(op, lc.G, rn.Value, pos), 0, 255),
			B: clamp(e.arith(op, lc.B, rn.Value, pos), 0, 255),
			A: lc.A,
		}
	case lnum && rcolor:
		return &Color{
			R: clamp(e.arith(op, ln.Value, rc.R, pos), 0, 255),
			G: clamp(e.arith(op, ln.Value, rc.G, pos), 0, 255),
			B: clamp(e.arith(op, ln.Value, rc.B, pos), 0, 255),
			A: rc.A,
		}
	}

	e.fail(pos, "cannot apply '%c' to %s and %s", op, describe(lhs), describe(rhs))
	return nil
}

// arith applies op to two numbers.
func (e *evaluator) arith(op byte, a, b float64, pos token.Pos) float64 {
	switch op {
	case '+':
		return a + b
	case '-':
		return a - b
	case '*':
		return a * b
	case '/':
		if b == 0 {
			e.fail(pos, "division by zero")
		}
		return a / b
	}
	e.fail(pos, "unknown operator '%c'", op)
	return math.NaN()
}

// describe returns the kind and text of a value for error messages.
func describe(v Value) string {
	switch v.(type) {
	case *Quoted:
		return "string " + v.String()
	case *Keyword:
		return "keyword " + v.String()
	case *URL:
		return "url " + v.String()
	case *List:
		return "list " + v.String()
	}
	return v.String()
}
