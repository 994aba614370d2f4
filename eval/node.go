package eval

// Node represents a node in the evaluated, flat CSS tree.
type Node interface {
	node()
}

func (_ *Stylesheet) node()  {}
func (_ *Ruleset) node()     {}
func (_ *Declaration) node() {}
func (_ *Block) node()       {}
func (_ *Directive) node()   {}
func (_ *Comment) node()     {}

// Rule represents a top-level or block-level output statement.
type Rule interface {
	Node
	rule()
}

func (_ *Ruleset) rule()   {}
func (_ *Block) rule()     {}
func (_ *Directive) rule() {}
func (_ *Comment) rule()   {}

// Stylesheet is the root of the evaluated tree.
type Stylesheet struct {
	Rules []Rule
}

// Ruleset is a flattened ruleset. Selectors are fully resolved.
type Ruleset struct {
	Selectors    []string
	Declarations []*Declaration
}

// Declaration is a property with its evaluated value.
type Declaration struct {
	Name      string
	Value     string
	Important bool
}

// Block is an at-rule with a block, such as @media or @font-face.
// Declarations holds properties that appear directly in the block.
type Block struct {
	Name         string
	Prelude      string
	Rules        []Rule
	Declarations []*Declaration
}

// Directive is a statement at-rule such as @charset or a CSS @import.
type Directive struct {
	Name  string
	Value string
}

// Comment is a preserved block comment, including its delimiters.
type Comment struct {
	Text string
}
