/*
Package less implements a compiler for the LESS stylesheet language. It
compiles stylesheets with variables, nesting, mixins, guards, operations and
imports into flat CSS.


Basics

Compilation runs in a fixed pipeline. The scanner breaks the source into
tokens and the parser builds an abstract syntax tree from them. When the
parser reaches an "@import" it blocks while the importer resolves the path,
loads the target through a loader and parses it, and the imported tree is
spliced in place of the directive. The evaluator then resolves variables,
expands mixins and flattens nested rulesets into a plain CSS tree which the
Printer serializes. Compressed output is passed through the minify package.

	css, err := less.Compile(".a { .b { color: red; } }", "main.less", false)

A Compiler can be configured with a different loader, charset, logger and
recursion limits:

	c := less.New(less.WithLoader(loader.FS{FS: assets}), less.WithMaxDepth(32))
	css, err := c.CompileFile("styles/main.less", true)


Errors

Compilation stops at the first error. All errors returned by Compile are of
type *Error and carry the filename, one-based line and column and a short
extract of the source. The kind of error can be tested with errors.Is against
ErrLex, ErrParse, ErrImport and ErrEval.


Evaluation

Variables are lazy: a variable may be used before it is defined and the last
definition in a scope wins. A variable is evaluated once, in the scope in
which it was defined. Mixins see their own parameters first, then the scope
they were defined in and then the scope of the caller.

Operations on numbers take the unit of the left operand, or of the right
operand if the left has none. A "/" between two literal numbers outside of
parentheses is kept as written so that shorthand such as "font: 12px/1.5" is
not divided.

Mixin expansion is bounded. A mixin that is called again with the same
arguments while it is still expanding is reported as recursion, and any
expansion deeper than the configured limit fails. Imports are bounded the
same way.
*/
package less
