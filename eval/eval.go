// Package eval evaluates a parsed LESS stylesheet into a flat CSS tree. It
// resolves variables, expands mixins, evaluates guards and operations and
// flattens nested rulesets and media blocks.
package eval

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/benbjohnson/less/ast"
	"github.com/benbjohnson/less/token"
)

// DefaultMaxDepth is the default limit on nested mixin expansions.
const DefaultMaxDepth = 64

// Options configures an evaluation.
type Options struct {
	// MaxDepth limits nested mixin expansion. Defaults to DefaultMaxDepth.
	MaxDepth int

	// Logger receives debug events. Defaults to a no-op logger.
	Logger *zap.Logger
}

// evaluator holds the state of a single evaluation.
type evaluator struct {
	frames  []frame
	calls   []call
	pending []Rule

	maxDepth int
	parens   int
	noMath   int

	// isDefault is the value of default() in the guard being evaluated.
	isDefault bool

	logger *zap.Logger
	err    error
}

// call is an active mixin expansion.
type call struct {
	node ast.Node
	name string
	args string
}

// context describes where evaluated output goes.
type context struct {
	frame     int
	selectors []string
	decls     *[]*Declaration
	out       *[]Rule
	atrules   []atrule
	important bool
	root      bool
}

// atrule is an enclosing at-rule that nested blocks bubble through.
type atrule struct {
	name    string
	prelude string
}

// bailout is used to unwind the evaluator on the first error.
type bailout struct{}

// Evaluate evaluates root into a flat stylesheet. Evaluation stops at the
// first error, which is returned as an *Error.
func Evaluate(root *ast.Stylesheet, opts Options) (ss *Stylesheet, err error) {
	e := &evaluator{maxDepth: opts.MaxDepth, logger: opts.Logger}
	if e.maxDepth <= 0 {
		e.maxDepth = DefaultMaxDepth
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	e.logger = e.logger.Named("eval")

	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); !ok {
				panic(r)
			}
			ss, err = nil, e.err
		}
	}()

	ss = &Stylesheet{}
	f := e.push(-1, -1)
	e.seed(f, root.Rules)
	e.evalRules(root.Rules, &context{frame: f, out: &ss.Rules, root: true})
	return ss, nil
}

// fail records an error at pos and unwinds the evaluator.
func (e *evaluator) fail(pos token.Pos, format string, args ...interface{}) {
	e.err = &Error{Message: fmt.Sprintf(format, args...), Pos: pos}
	panic(bailout{})
}

// evalRules evaluates a block of rules. At the top level, media blocks that
// bubbled out of rulesets are emitted after the statement they came from.
func (e *evaluator) evalRules(rules []ast.Rule, ctx *context) {
	for _, r := range rules {
		e.evalRule(r, ctx)
		if ctx.root && len(e.pending) > 0 {
			*ctx.out = append(*ctx.out, e.pending...)
			e.pending = nil
		}
	}
}

func (e *evaluator) evalRule(r ast.Rule, ctx *context) {
	switch r := r.(type) {
	case *ast.VariableDefinition, *ast.MixinDefinition:
		// Registered when the enclosing frame was seeded.
	case *ast.Comment:
		if ctx.selectors == nil {
			*ctx.out = append(*ctx.out, &Comment{Text: r.Text})
		}
	case *ast.Declaration:
		e.evalDeclaration(r, ctx)
	case *ast.Ruleset:
		e.evalRuleset(r, ctx)
	case *ast.MixinCall:
		e.evalMixinCall(r, ctx)
	case *ast.Import:
		e.evalImport(r, ctx)
	case *ast.AtRule:
		e.evalAtRule(r, ctx)
	default:
		e.fail(r.Position(), "unexpected rule: %s", r)
	}
}

func (e *evaluator) evalDeclaration(d *ast.Declaration, ctx *context) {
	if ctx.decls == nil {
		e.fail(d.Pos, "properties must be inside selector blocks: %s", d.Name)
	}
	*ctx.decls = append(*ctx.decls, &Declaration{
		Name:      e.interpolate(d.Name, ctx.frame, d.Pos),
		Value:     e.eval(d.Value, ctx.frame).String(),
		Important: d.Important || ctx.important,
	})
}

func (e *evaluator) evalRuleset(r *ast.Ruleset, ctx *context) {
	if r.Guard != nil && !e.guard(r.Guard, ctx.frame) {
		return
	}

	sels := make([]string, len(r.Selectors))
	for i, sel := range r.Selectors {
		sels[i] = e.interpolate(sel.Text, ctx.frame, sel.Pos)
	}
	sels = flatten(ctx.selectors, sels)

	f := e.push(ctx.frame, -1)
	defer e.pop(f)
	e.seed(f, r.Rules)

	rs := &Ruleset{Selectors: sels}
	var children []Rule
	e.evalRules(r.Rules, &context{
		frame:     f,
		selectors: sels,
		decls:     &rs.Declarations,
		out:       &children,
		atrules:   ctx.atrules,
		important: ctx.important,
	})

	if len(rs.Declarations) > 0 {
		*ctx.out = append(*ctx.out, rs)
	}
	*ctx.out = append(*ctx.out, children...)
}

func (e *evaluator) evalImport(imp *ast.Import, ctx *context) {
	if imp.CSS {
		value := `"` + imp.Path + `"`
		if imp.Features != "" {
			value += " " + imp.Features
		}
		*ctx.out = append(*ctx.out, &Directive{Name: "import", Value: value})
		return
	}
	if imp.Root == nil || imp.Reference {
		return
	}
	e.evalRules(imp.Root.Rules, ctx)
}

func (e *evaluator) evalAtRule(r *ast.AtRule, ctx *context) {
	prelude := e.prelude(r.Prelude, ctx.frame)
	if !r.Block {
		*ctx.out = append(*ctx.out, &Directive{Name: r.Name, Value: prelude})
		return
	}

	bubbles := isBubbling(r.Name)
	atrules := ctx.atrules
	if bubbles {
		atrules = append(append([]atrule{}, ctx.atrules...), atrule{name: r.Name, prelude: prelude})
	}

	f := e.push(ctx.frame, -1)
	defer e.pop(f)
	e.seed(f, r.Rules)

	// Media blocks inside rulesets move to the top level and wrap the
	// current selectors.
	if bubbles && ctx.selectors != nil {
		rs := &Ruleset{Selectors: ctx.selectors}
		var children []Rule
		e.evalRules(r.Rules, &context{
			frame:     f,
			selectors: ctx.selectors,
			decls:     &rs.Declarations,
			out:       &children,
			atrules:   atrules,
			important: ctx.important,
		})

		var rules []Rule
		if len(rs.Declarations) > 0 {
			rules = append(rules, rs)
		}
		rules = append(rules, children...)
		if len(rules) > 0 {
			e.pending = append(e.pending, wrap(atrules, rules))
		}
		return
	}

	block := &Block{Name: r.Name, Prelude: prelude}
	e.evalRules(r.Rules, &context{
		frame:     f,
		decls:     &block.Declarations,
		out:       &block.Rules,
		atrules:   atrules,
		important: ctx.important,
	})
	if len(block.Rules) > 0 || len(block.Declarations) > 0 {
		*ctx.out = append(*ctx.out, block)
	}
}

// prelude returns the text of an at-rule prelude with variables substituted.
func (e *evaluator) prelude(toks []token.Token, f int) string {
	var sb strings.Builder
	for _, tok := range toks {
		switch tok := tok.(type) {
		case *token.AtKeyword:
			sb.WriteString(unquote(e.resolve(f, tok.Value, tok.Pos)))
		case *token.Interpolation:
			sb.WriteString(unquote(e.resolve(f, tok.Value, tok.Pos)))
		default:
			sb.WriteString(tok.String())
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

// isBubbling returns true for conditional at-rules that move out of rulesets.
func isBubbling(name string) bool {
	switch strings.ToLower(name) {
	case "media", "supports", "document":
		return true
	}
	return false
}

// wrap nests rules inside blocks for each at-rule in the chain. Adjacent
// at-rules of the same kind are combined with "and".
func wrap(chain []atrule, rules []Rule) Rule {
	var merged []atrule
	for _, a := range chain {
		if n := len(merged); n > 0 && strings.EqualFold(merged[n-1].name, a.name) {
			merged[n-1].prelude = joinPrelude(merged[n-1].prelude, a.prelude)
			continue
		}
		merged = append(merged, a)
	}

	for i := len(merged) - 1; i >= 0; i-- {
		rules = []Rule{&Block{Name: merged[i].name, Prelude: merged[i].prelude, Rules: rules}}
	}
	return rules[0]
}

func joinPrelude(a, b string) string {
	if a == "" {
		return b
	} else if b == "" {
		return a
	}
	return a + " and " + b
}

// flatten combines parent and child selectors. A child containing "&" has
// each "&" replaced by the parent; otherwise the parent is prepended as a
// descendant. Results are ordered by parent then child.
func flatten(parents, children []string) []string {
	if len(parents) == 0 {
		a := make([]string, len(children))
		for i, c := range children {
			a[i] = strings.TrimSpace(strings.ReplaceAll(c, "&", ""))
		}
		return a
	}

	a := make([]string, 0, len(parents)*len(children))
	for _, p := range parents {
		for _, c := range children {
			if strings.Contains(c, "&") {
				a = append(a, strings.ReplaceAll(c, "&", p))
			} else {
				a = append(a, p+" "+c)
			}
		}
	}
	return a
}

// arguments holds the evaluated arguments of a mixin call.
type arguments struct {
	positional []Value
	named      map[string]Value
}

// key returns a string that identifies the argument values.
func (a *arguments) key() string {
	parts := make([]string, 0, len(a.positional)+len(a.named))
	for _, v := range a.positional {
		parts = append(parts, v.String())
	}
	names := make([]string, 0, len(a.named))
	for name := range a.named {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		parts = append(parts, "@"+name+": "+a.named[name].String())
	}
	return strings.Join(parts, "; ")
}

func (e *evaluator) evalMixinCall(c *ast.MixinCall, ctx *context) {
	args := &arguments{named: make(map[string]Value)}
	for _, arg := range c.Args {
		v := e.eval(arg.Value, ctx.frame)
		if arg.Name != "" {
			args.named[arg.Name] = v
		} else {
			args.positional = append(args.positional, v)
		}
	}

	// Namespace lookups push transient frames that must outlive the
	// expansion.
	mark := len(e.frames)
	defer e.pop(mark)

	candidates := e.findMixins(c, ctx.frame)

	// Candidates whose guard only passes when default() is true are
	// expanded if no other candidate passes.
	saved := e.isDefault
	defer func() { e.isDefault = saved }()
	e.isDefault = true
	for _, m := range candidates {
		if accepts, withDefault, withoutDefault := e.check(m, args, ctx); accepts && withDefault && withoutDefault {
			e.isDefault = false
			break
		}
	}

	matched := false
	for _, m := range candidates {
		if e.expand(m, c, args, ctx) {
			matched = true
		}
	}
	if !matched {
		e.fail(c.Pos, "no matching definition was found for %s", strings.TrimSuffix(c.String(), ";"))
	}
}

// findMixins resolves the path of a mixin call to its candidate definitions.
func (e *evaluator) findMixins(c *ast.MixinCall, f int) []*mixin {
	candidates := e.lookupMixins(f, c.Path[0])
	for _, name := range c.Path[1:] {
		var next []*mixin
		for _, ns := range candidates {
			if ns.def != nil && len(ns.def.Params) > 0 {
				continue
			}
			nf := e.push(ns.frame, -1)
			e.seed(nf, ns.rules())
			next = append(next, e.frames[nf].mixins[name]...)
		}
		candidates = next
	}
	if len(candidates) == 0 {
		e.fail(c.Pos, "%s is undefined", strings.Join(c.Path, " > "))
	}
	return candidates
}

// check binds args to candidate m and evaluates its guard with default()
// both true and false. It returns false for accepts if the candidate does
// not accept the arguments.
func (e *evaluator) check(m *mixin, args *arguments, ctx *context) (accepts, withDefault, withoutDefault bool) {
	f := e.push(m.frame, ctx.frame)
	defer e.pop(f)
	e.seed(f, m.rules())

	var g *ast.Guard
	gf := f
	if m.rs != nil {
		if len(args.positional) > 0 || len(args.named) > 0 {
			return false, false, false
		}
		g, gf = m.rs.Guard, m.frame
	} else {
		if !e.bind(m.def, f, args) {
			return false, false, false
		}
		g = m.def.Guard
	}
	if g == nil {
		return true, true, true
	}

	saved := e.isDefault
	defer func() { e.isDefault = saved }()
	e.isDefault = true
	withDefault = e.guard(g, gf)
	e.isDefault = false
	withoutDefault = e.guard(g, gf)
	return true, withDefault, withoutDefault
}

// expand expands a single mixin candidate into ctx. It returns false if the
// candidate does not accept the arguments. A candidate whose guard fails
// accepts the arguments but is not expanded.
func (e *evaluator) expand(m *mixin, c *ast.MixinCall, args *arguments, ctx *context) bool {
	f := e.push(m.frame, ctx.frame)
	defer e.pop(f)
	e.seed(f, m.rules())

	if m.rs != nil {
		if len(args.positional) > 0 || len(args.named) > 0 {
			return false
		} else if m.rs.Guard != nil && !e.guard(m.rs.Guard, m.frame) {
			return true
		}
	} else {
		if !e.bind(m.def, f, args) {
			return false
		} else if m.def.Guard != nil && !e.guard(m.def.Guard, f) {
			return true
		}
	}

	key := args.key()
	for i, active := range e.calls {
		if active.node == m.node() && active.args == key {
			names := make([]string, 0, len(e.calls)-i+1)
			for _, a := range e.calls[i:] {
				names = append(names, a.name)
			}
			names = append(names, m.name())
			e.fail(c.Pos, "mixin recursion detected: %s", strings.Join(names, " -> "))
		}
	}
	if len(e.calls) >= e.maxDepth {
		e.fail(c.Pos, "mixin expansion depth limit of %d exceeded calling %s", e.maxDepth, m.name())
	}

	e.calls = append(e.calls, call{node: m.node(), name: m.name(), args: key})
	defer func() { e.calls = e.calls[:len(e.calls)-1] }()
	e.logger.Debug("expand mixin",
		zap.String("name", m.name()),
		zap.String("pos", c.Pos.String()),
		zap.Int("depth", len(e.calls)),
	)

	saved := e.isDefault
	defer func() { e.isDefault = saved }()
	e.isDefault = false
	e.evalRules(m.rules(), &context{
		frame:     f,
		selectors: ctx.selectors,
		decls:     ctx.decls,
		out:       ctx.out,
		atrules:   ctx.atrules,
		important: ctx.important || c.Important,
		root:      ctx.root,
	})
	return true
}

// bind binds call arguments to the parameters of def in frame f. It returns
// false if the arguments do not fit the parameter list or a pattern does not
// match.
func (e *evaluator) bind(def *ast.MixinDefinition, f int, args *arguments) bool {
	vars := e.frames[f].vars
	i, named := 0, 0

	type slot struct {
		name  string
		value Value
	}
	var slots []slot

	for _, p := range def.Params {
		switch {
		case p.Variadic:
			var rest []Value
			if i < len(args.positional) {
				rest = args.positional[i:]
			}
			i = len(args.positional)
			if p.Name != "" {
				vars[p.Name] = &binding{value: listOf(rest, " "), frame: f}
			}
			for _, v := range rest {
				slots = append(slots, slot{value: v})
			}

		case p.Name == "":
			if i >= len(args.positional) || !equal(args.positional[i], e.eval(p.Value, f)) {
				return false
			}
			slots = append(slots, slot{value: args.positional[i]})
			i++

		default:
			if v, ok := args.named[p.Name]; ok {
				vars[p.Name] = &binding{value: v, frame: f}
				named++
			} else if i < len(args.positional) {
				vars[p.Name] = &binding{value: args.positional[i], frame: f}
				i++
			} else if p.Value != nil {
				vars[p.Name] = &binding{expr: p.Value, frame: f}
			} else {
				return false
			}
			slots = append(slots, slot{name: p.Name})
		}
	}
	if i < len(args.positional) || named < len(args.named) {
		return false
	}

	// @arguments holds every argument in parameter order.
	all := make([]Value, len(slots))
	for j, s := range slots {
		if s.name != "" {
			all[j] = e.resolve(f, s.name, def.Pos)
		} else {
			all[j] = s.value
		}
	}
	vars["arguments"] = &binding{value: listOf(all, " "), frame: f}
	return true
}

// listOf returns the values as a list, or the value itself if there is
// exactly one.
func listOf(a []Value, sep string) Value {
	if len(a) == 1 {
		return a[0]
	}
	return &List{Items: a, Sep: sep}
}

// guard returns true if any alternative of g has all of its conditions met.
func (e *evaluator) guard(g *ast.Guard, f int) bool {
	for _, alt := range g.Alternatives {
		ok := true
		for _, c := range alt {
			if !e.condition(c, f) {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

// condition evaluates a single guard condition. Without an operator the
// condition is met only by the keyword "true".
func (e *evaluator) condition(c *ast.Condition, f int) bool {
	lhs := e.eval(c.LHS, f)

	var result bool
	if c.Op == "" {
		k, ok := lhs.(*Keyword)
		result = ok && k.Value == "true"
	} else {
		result = compare(c.Op, lhs, e.eval(c.RHS, f))
	}

	if c.Negate {
		return !result
	}
	return result
}

// compare applies a guard comparison operator. Ordering comparisons are only
// defined for numbers.
func compare(op string, lhs, rhs Value) bool {
	if op == "=" {
		return equal(lhs, rhs)
	}

	l, lok := lhs.(*Number)
	r, rok := rhs.(*Number)
	if !lok || !rok {
		return false
	}
	switch op {
	case "<":
		return l.Value < r.Value
	case ">":
		return l.Value > r.Value
	case ">=":
		return l.Value >= r.Value
	case "<=", "=<":
		return l.Value <= r.Value
	}
	return false
}

// Error represents an evaluation error.
type Error struct {
	Message string
	Pos     token.Pos
}

// Error returns the formatted string error message.
func (e *Error) Error() string {
	return e.Message
}
