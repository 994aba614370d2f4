package parser_test

import (
	"errors"
	"flag"
	"reflect"
	"testing"

	"github.com/benbjohnson/less/ast"
	"github.com/benbjohnson/less/parser"
	"github.com/benbjohnson/less/token"
)

// testiter sets the table test iteration to run in isolation.
var testiter = flag.Int("test.iter", -1, "table test number")

// Ensure that stylesheets can be parsed into the correct AST.
func TestParse(t *testing.T) {
	var tests = []struct {
		s   string
		v   string
		err string
	}{
		{s: ``, v: ``},
		{s: `.a { color: red; }`, v: ".a {color: red;}\n"},
		{s: `.a { color: red }`, v: ".a {color: red;}\n"},
		{s: `.a { .b { color: red; } }`, v: ".a {.b {color: red;}}\n"},
		{s: `.a:hover, .b>.c  .d { x: 1 }`, v: ".a:hover, .b > .c .d {x: 1;}\n"},
		{s: `.a { &-b { x: 1 } & + & { y: 2 } }`, v: ".a {&-b {x: 1;} & + & {y: 2;}}\n"},
		{s: `ul li:nth-child(2n+1) { x: 1 }`, v: "ul li:nth-child(2n+1) {x: 1;}\n"},
		{s: `a[href="x"] { x: 1 }`, v: "a[href=\"x\"] {x: 1;}\n"},
		{s: `.a { > .b { x: 1 } }`, v: ".a {> .b {x: 1;}}\n"},
		{s: `.a-@{name} { x: 1 }`, v: ".a-@{name} {x: 1;}\n"},

		{s: `@c: red;`, v: "@c: red;\n"},
		{s: `@c : #fff`, v: "@c: #fff;\n"},
		{s: `@list: 1px, 2px;`, v: "@list: 1px, 2px;\n"},
		{s: `@e: ~"ms:foo";`, v: "@e: ~\"ms:foo\";\n"},
		{s: `@w: 10px !important;`, v: "@w: 10px !important;\n"},

		{s: `.a { width: (@a + 2) * 3px; }`, v: ".a {width: (@a + 2) * 3px;}\n"},
		{s: `.a { font: 12px/1.5 sans-serif; }`, v: ".a {font: 12px / 1.5 sans-serif;}\n"},
		{s: `.a { margin: 0 -@x; }`, v: ".a {margin: 0 -@x;}\n"},
		{s: `.a { margin: @a - @b; }`, v: ".a {margin: @a - @b;}\n"},
		{s: `.a { margin: -(@a); }`, v: ".a {margin: -(@a);}\n"},
		{s: `.a { color: rgba(0,0,0,.5) !important; }`, v: ".a {color: rgba(0, 0, 0, .5) !important;}\n"},
		{s: `.a { background: url( "a b.png" ) no-repeat; }`, v: ".a {background: url(\"a b.png\") no-repeat;}\n"},
		{s: `.a { @{prop}-color: red; }`, v: ".a {@{prop}-color: red;}\n"},
		{s: `.a { --main-bg: #06c; }`, v: ".a {--main-bg: #06c;}\n"},
		{s: `.a { filter: progid:DXImageTransform.Microsoft.gradient(startColorstr='#000'); }`, v: ".a {filter: progid:DXImageTransform.Microsoft.gradient(startColorstr='#000');}\n"},
		{s: `.a { filter: alpha(opacity=50); }`, v: ".a {filter: alpha(opacity=50);}\n"},
		{s: `.a { *zoom: 1; }`, v: ".a {*zoom: 1;}\n"},
		{s: `.a { x: @@name; }`, v: ".a {x: @@name;}\n"},

		{s: `.m(@a; @b: 2) { width: @a; }`, v: ".m(@a; @b: 2) {width: @a;}\n"},
		{s: `.m(@a, @b) { }`, v: ".m(@a; @b) {}\n"},
		{s: `.m(dark; @c) { }`, v: ".m(dark; @c) {}\n"},
		{s: `.m(@rest...) { }`, v: ".m(@rest...) {}\n"},
		{s: `.m(...) { }`, v: ".m(...) {}\n"},
		{s: `.m() when (iscolor(@c)) and (@a > 0) { }`, v: ".m() when (iscolor(@c)) and (@a > 0) {}\n"},
		{s: `.m(@a) when (@a >= 1), not (@a = 0) { }`, v: ".m(@a) when (@a >= 1), not (@a = 0) {}\n"},
		{s: `#m() { x: 1 }`, v: "#m() {x: 1;}\n"},
		{s: `.guard when (@mode = dark) { a: b }`, v: ".guard when (@mode = dark) {a: b;}\n"},

		{s: `.a { .m; }`, v: ".a {.m();}\n"},
		{s: `.a { .m }`, v: ".a {.m();}\n"},
		{s: `.a { .m(1px, red) !important; }`, v: ".a {.m(1px; red) !important;}\n"},
		{s: `.a { .m(1px, 2px; red); }`, v: ".a {.m(1px, 2px; red);}\n"},
		{s: `.a { .m(@color: red); }`, v: ".a {.m(@color: red);}\n"},
		{s: `#ns > .m();`, v: "#ns > .m();\n"},
		{s: `#ns.m();`, v: "#ns > .m();\n"},
		{s: `#m();`, v: "#m();\n"},

		{s: `@media screen and (max-width: 100px) { .a { x: y } }`, v: "@media screen and (max-width: 100px) {.a {x: y;}}\n"},
		{s: `@font-face { font-family: x; }`, v: "@font-face {font-family: x;}\n"},
		{s: `@keyframes spin { from { x: 0 } 50% { x: 1 } }`, v: "@keyframes spin {from {x: 0;} 50% {x: 1;}}\n"},
		{s: `@page :first { margin: 1in; }`, v: "@page :first {margin: 1in;}\n"},
		{s: `@charset "utf-8";`, v: "@charset \"utf-8\";\n"},
		{s: `@import "foo.css";`, v: "@import \"foo.css\";\n"},
		{s: `@import url(foo.less) screen;`, v: "@import \"foo.less\" screen;\n"},
		{s: `@import (css) "foo";`, v: "@import \"foo\";\n"},
		{s: `@media (max-width: 600px) { .a { x: y } }`, v: "@media (max-width: 600px) {.a {x: y;}}\n"},
		{s: `@supports (display: grid) { .a { x: y } }`, v: "@supports (display: grid) {.a {x: y;}}\n"},
		{s: `.a { @media (min-width: 1px) { x: y } }`, v: ".a {@media (min-width: 1px) {x: y;}}\n"},
		{s: `@import (css, optional) "foo";`, v: "@import \"foo\";\n"},

		{s: `/* c */ .a {}`, v: "/* c */\n.a {}\n"},
		{s: `// line comment` + "\n" + `.a { /* inner */ x: 1 }`, v: ".a {/* inner */ x: 1;}\n"},
		{s: `.a { x: 1 /* c */ 2; }`, v: ".a {x: 1 2;}\n"},

		{s: `.a { color: red;`, err: `unexpected EOF, expected '}'`},
		{s: `}`, err: `unexpected '}'`},
		{s: `.a { color: ; }`, err: `expected value for property color`},
		{s: `.a { foo }`, err: `expected declaration or mixin call, got "foo"`},
		{s: `.a { width: (1 + 2; }`, err: `expected ')'`},
		{s: `.a { color: "red; }`, err: `unterminated string`},
		{s: `/* abc`, err: `unterminated comment`},
		{s: `@c: ;`, err: `expected value for variable @c`},
		{s: `, { }`, err: `expected selector`},
		{s: `.m(@a b) { }`, err: `expected ':' after parameter @a, got "b"`},
		{s: `.m() when @a { }`, err: `expected '(' in guard, got "@a"`},
		{s: `.m() when (@a) or (@b) { }`, err: `expected 'and' in guard, got "or"`},
		{s: `.a { .m() x; }`, err: `unexpected "x" after mixin arguments`},
		{s: `@import (inline) "x";`, err: `unsupported import option: inline`},
		{s: `@import foo;`, err: `expected import path, got "foo"`},
		{s: `@import "x";`, err: `cannot import "x.less": no importer configured`},
		{s: `@d();`, err: `detached ruleset calls are not supported: @d()`},
		{s: `.a { @d( ) }`, err: `detached ruleset calls are not supported: @d()`},
	}

	for i, tt := range tests {
		if *testiter > -1 && *testiter != i {
			continue
		}

		ss, err := parser.Parse(tt.s, parser.Config{})
		if tt.err != "" || errstring(err) != "" {
			if tt.err != errstring(err) {
				t.Errorf("%d. <%q> error: exp=%q, got=%q", i, tt.s, tt.err, errstring(err))
			}
		} else if ss == nil {
			t.Errorf("%d. <%q> expected stylesheet", i, tt.s)
		} else if ss.String() != tt.v {
			t.Errorf("%d. <%q>\n\nexp: %s\n\ngot: %s", i, tt.s, tt.v, ss.String())
		}
	}
}

// Ensure that errors carry the position of the offending token.
func TestParse_ErrorPos(t *testing.T) {
	_, err := parser.Parse(".a {\n  color: ;\n}", parser.Config{Filename: "x.less"})
	var perr *parser.Error
	if !errors.As(err, &perr) {
		t.Fatalf("unexpected error type: %T", err)
	} else if perr.Pos.String() != "x.less:2:3" {
		t.Fatalf("unexpected position: %s", perr.Pos)
	}
}

// Ensure that imports are resolved synchronously through the importer.
func TestParse_Import(t *testing.T) {
	var calls []string
	importer := parser.ImporterFunc(func(path string, paths []string, pos token.Pos) (*ast.Stylesheet, error) {
		calls = append(calls, path)
		if !reflect.DeepEqual(paths, []string{"/styles/"}) {
			t.Fatalf("unexpected paths: %v", paths)
		}
		return parser.Parse(`@imported: 1;`, parser.Config{Filename: path})
	})

	ss, err := parser.Parse(`@dir: "themes"; @import "@{dir}/dark"; @import (reference) 'base.less';`, parser.Config{
		Paths:    []string{"/styles/"},
		Importer: importer,
	})
	if err != nil {
		t.Fatal(err)
	} else if !reflect.DeepEqual(calls, []string{"themes/dark.less", "base.less"}) {
		t.Fatalf("unexpected imports: %v", calls)
	}

	imp := ss.Rules[1].(*ast.Import)
	if imp.Root == nil || imp.Root.String() != "@imported: 1;\n" {
		t.Fatalf("unexpected import root: %v", imp.Root)
	} else if imp.Reference {
		t.Fatal("expected non-reference import")
	}
	if ref := ss.Rules[2].(*ast.Import); !ref.Reference {
		t.Fatal("expected reference import")
	}
}

// Ensure that a failed import aborts the parse with the importer's error.
func TestParse_Import_Error(t *testing.T) {
	errMissing := errors.New("missing.less: not found")
	importer := parser.ImporterFunc(func(path string, paths []string, pos token.Pos) (*ast.Stylesheet, error) {
		return nil, errMissing
	})

	ss, err := parser.Parse(".a { x: 1 }\n@import \"missing.less\";", parser.Config{Importer: importer})
	if err != errMissing {
		t.Fatalf("unexpected error: %v", err)
	} else if ss != nil {
		t.Fatal("expected no stylesheet")
	}

	// Optional imports ignore failures.
	ss, err = parser.Parse(`@import (optional) "missing";`, parser.Config{Importer: importer})
	if err != nil {
		t.Fatal(err)
	} else if imp := ss.Rules[0].(*ast.Import); imp.Root == nil || len(imp.Root.Rules) != 0 {
		t.Fatalf("unexpected optional import: %#v", imp)
	}
}

// Ensure that an undefined variable in an import path is an error.
func TestParse_Import_UndefinedInterpolation(t *testing.T) {
	_, err := parser.Parse(`@import "@{nope}/x";`, parser.Config{})
	if errstring(err) != `cannot interpolate @{nope} in import path: variable not defined` {
		t.Fatalf("unexpected error: %v", err)
	}
}

// errstring returns the string representation of the error.
func errstring(err error) string {
	if err != nil {
		return err.Error()
	}
	return ""
}
