package eval

import (
	"github.com/benbjohnson/less/ast"
)

// frame is a scope in the frame arena. Frames refer to their parent by index.
// Mixin frames also refer to the frame of the call site so the mixin body
// can see the caller's variables after its own lexical scope.
type frame struct {
	parent int
	caller int
	vars   map[string]*binding
	mixins map[string][]*mixin
}

// binding is a variable. The expression is evaluated on first use in the
// frame that defined it and the result is cached.
type binding struct {
	expr  ast.Expr
	frame int
	value Value
	busy  bool
}

// mixin is a callable definition: either a parametric mixin or a ruleset
// with a simple class or id selector.
type mixin struct {
	def   *ast.MixinDefinition
	rs    *ast.Ruleset
	frame int
}

// name returns the name the mixin was defined with.
func (m *mixin) name() string {
	if m.def != nil {
		return m.def.Name
	}
	return m.rs.Selectors[0].Text
}

// rules returns the body of the mixin.
func (m *mixin) rules() []ast.Rule {
	if m.def != nil {
		return m.def.Rules
	}
	return m.rs.Rules
}

// node returns the AST node of the definition.
func (m *mixin) node() ast.Node {
	if m.def != nil {
		return m.def
	}
	return m.rs
}

// push adds a frame to the arena and returns its index.
func (e *evaluator) push(parent, caller int) int {
	e.frames = append(e.frames, frame{
		parent: parent,
		caller: caller,
		vars:   make(map[string]*binding),
		mixins: make(map[string][]*mixin),
	})
	return len(e.frames) - 1
}

// pop truncates the arena so that frame f and all later frames are removed.
func (e *evaluator) pop(f int) {
	e.frames = e.frames[:f]
}

// seed registers the variables and mixins defined by rules in frame f.
// Definitions inside imported stylesheets belong to the importing block.
// Later definitions replace earlier ones.
func (e *evaluator) seed(f int, rules []ast.Rule) {
	for _, r := range rules {
		switch r := r.(type) {
		case *ast.VariableDefinition:
			e.frames[f].vars[r.Name] = &binding{expr: r.Value, frame: f}
		case *ast.MixinDefinition:
			e.frames[f].mixins[r.Name] = append(e.frames[f].mixins[r.Name], &mixin{def: r, frame: f})
		case *ast.Ruleset:
			for _, sel := range r.Selectors {
				if isMixinSelector(sel.Text) {
					e.frames[f].mixins[sel.Text] = append(e.frames[f].mixins[sel.Text], &mixin{rs: r, frame: f})
				}
			}
		case *ast.Import:
			if r.Root != nil {
				e.seed(f, r.Root.Rules)
			}
		}
	}
}

// lookupVar finds the binding for name starting at frame f. The lexical chain
// is searched first, then the call sites of any mixin frames on it.
func (e *evaluator) lookupVar(f int, name string) (*binding, bool) {
	for i := f; i >= 0; i = e.frames[i].parent {
		if b, ok := e.frames[i].vars[name]; ok {
			return b, true
		}
	}
	for i := f; i >= 0; i = e.frames[i].parent {
		if c := e.frames[i].caller; c >= 0 {
			if b, ok := e.lookupVar(c, name); ok {
				return b, true
			}
		}
	}
	return nil, false
}

// lookupMixins returns the mixins named name from the nearest frame that
// defines any.
func (e *evaluator) lookupMixins(f int, name string) []*mixin {
	for i := f; i >= 0; i = e.frames[i].parent {
		if a := e.frames[i].mixins[name]; len(a) > 0 {
			return a
		}
	}
	for i := f; i >= 0; i = e.frames[i].parent {
		if c := e.frames[i].caller; c >= 0 {
			if a := e.lookupMixins(c, name); len(a) > 0 {
				return a
			}
		}
	}
	return nil
}

// isMixinSelector returns true for a lone class or id selector such as ".a"
// or "#ns".
func isMixinSelector(s string) bool {
	if len(s) < 2 || (s[0] != '.' && s[0] != '#') {
		return false
	}
	for _, ch := range s[1:] {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
		case ch == '-' || ch == '_' || ch > 0x7f:
		default:
			return false
		}
	}
	return true
}
