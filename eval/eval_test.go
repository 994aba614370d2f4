package eval_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/benbjohnson/less/ast"
	"github.com/benbjohnson/less/eval"
	"github.com/benbjohnson/less/parser"
	"github.com/benbjohnson/less/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name string
		src  string
		exp  string
	}{
		{name: "nested selectors", src: `.a { .b { color: red; } }`, exp: ".a .b {color: red;}"},
		{name: "variable in nested block", src: `@c: red; .a { .b { color: @c; } }`, exp: ".a .b {color: red;}"},
		{name: "parent declarations first", src: `.a { x: 1; .b { y: 2; } z: 3; }`, exp: ".a {x: 1; z: 3;}\n.a .b {y: 2;}"},
		{name: "parent reference", src: `.a { &:hover { x: 1 } &-b { y: 2 } & & { z: 3 } }`, exp: ".a:hover {x: 1;}\n.a-b {y: 2;}\n.a .a {z: 3;}"},
		{name: "selector lists", src: `.a, .b { .c, .d { x: 1 } }`, exp: ".a .c, .a .d, .b .c, .b .d {x: 1;}"},
		{name: "child combinator", src: `.a { > .b { x: 1 } }`, exp: ".a > .b {x: 1;}"},
		{name: "selector interpolation", src: `@n: foo; .icon-@{n} { x: 1 }`, exp: ".icon-foo {x: 1;}"},
		{name: "empty ruleset", src: `.a { } .b { .c { } }`, exp: ""},

		{name: "last definition wins", src: `.a { x: @v; } @v: 1; @v: 2;`, exp: ".a {x: 2;}"},
		{name: "shadowing", src: `@v: 1; .a { @v: 2; x: @v; } .b { x: @v; }`, exp: ".a {x: 2;}\n.b {x: 1;}"},
		{name: "lazy in defining scope", src: `@a: @b; @b: 5px; .x { @b: 10px; w: @a; }`, exp: ".x {w: 5px;}"},
		{name: "indirect variable", src: `@name: "color"; @color: red; .a { x: @@name; }`, exp: ".a {x: red;}"},
		{name: "property interpolation", src: `@p: margin; .a { @{p}-top: 1px; }`, exp: ".a {margin-top: 1px;}"},

		{name: "arithmetic", src: `.a { w: 10px + 5; h: 2 * 3em; m: (10px / 2); n: 10 - 2px; p: 1 + 2 * 3; }`, exp: ".a {w: 15px; h: 6em; m: 5px; n: 8px; p: 7;}"},
		{name: "literal slash", src: `.a { font: 12px/1.5 sans-serif; }`, exp: ".a {font: 12px/1.5 sans-serif;}"},
		{name: "variable division", src: `@w: 10px; .a { x: @w / 2; }`, exp: ".a {x: 5px;}"},
		{name: "negation", src: `@x: 5px; .a { margin: 0 -@x; }`, exp: ".a {margin: 0 -5px;}"},
		{name: "number formatting", src: `.a { x: .5; y: 1.0; z: (1 / 3); }`, exp: ".a {x: 0.5; y: 1; z: 0.33333333;}"},
		{name: "color arithmetic", src: `.a { c: #111 + #222; d: #fff - 1; e: #000 + 300; f: red + #000; }`, exp: ".a {c: #333333; d: #fefefe; e: #ffffff; f: #ff0000;}"},
		{name: "color literals", src: `.a { c: #FFF; d: red; }`, exp: ".a {c: #FFF; d: red;}"},

		{name: "color functions", src: `.a { a: lighten(#000, 10%); b: darken(#fff, 100%); c: fade(#000, 50%); d: rgb(255, 0, 0); e: rgba(0,0,0,.5); f: spin(#f00, 120); g: mix(#000, #fff); h: greyscale(#f00); }`,
			exp: ".a {a: #1a1a1a; b: #000000; c: rgba(0, 0, 0, 0.5); d: #ff0000; e: rgba(0, 0, 0, 0.5); f: #00ff00; g: #808080; h: #808080;}"},
		{name: "color channels", src: `.a { r: red(#102030); a: alpha(rgba(0,0,0,.25)); h: hue(#0f0); s: saturation(#f00); l: lightness(#fff); }`,
			exp: ".a {r: 16; a: 0.25; h: 120; s: 100%; l: 100%;}"},
		{name: "contrast", src: `.a { x: contrast(#000); y: contrast(#fff); }`, exp: ".a {x: #ffffff; y: #000000;}"},
		{name: "math functions", src: `.a { a: round(1.67); b: round(1.678, 2); c: ceil(2.1px); d: floor(2.9); e: percentage(0.5); f: abs(-3em); g: sqrt(16); h: min(3px, 1px, 2px); i: max(1, 5, 3); j: unit(5px); k: unit(5, em); }`,
			exp: ".a {a: 2; b: 1.68; c: 3px; d: 2; e: 50%; f: 3em; g: 4; h: 1px; i: 5; j: 5; k: 5em;}"},
		{name: "strings", src: `@n: "world"; .a { content: "hello @{n}"; b: ~"raw @{n}"; c: e("x"); d: escape("a=1"); }`,
			exp: `.a {content: "hello world"; b: raw world; c: x; d: a%3D1;}`},
		{name: "urls", src: `@base: "img"; @u: "a.png"; .a { b: url("@{base}/x.png"); c: url(@u); }`,
			exp: `.a {b: url("img/x.png"); c: url("a.png");}`},
		{name: "calc", src: `@w: 10px; .a { width: calc(100% - @w); }`, exp: ".a {width: calc(100% - 10px);}"},
		{name: "unknown function", src: `.a { t: translate(10px + 5px, 0); }`, exp: ".a {t: translate(15px, 0);}"},
		{name: "css color function passthrough", src: `.a { c: rgba(var(--x), 0.5); }`, exp: ".a {c: rgba(var(--x), 0.5);}"},
		{name: "important", src: `@w: 10px; .a { width: @w !important; }`, exp: ".a {width: 10px !important;}"},

		{name: "type guards", src: `.m(@a) when (iscolor(@a)) { c: @a; } .m(@a) when (isnumber(@a)) { n: @a; } .a { .m(red); .m(5); }`,
			exp: ".a {c: red; n: 5;}"},
		{name: "comparison guards", src: `.m(@a; @b: 2) when (@a > 1) { x: @a + @b; } .m(@a; @b: 2) when not (@a > 1) { y: @a; } .a { .m(5); .m(1; 3); }`,
			exp: ".a {x: 7; y: 1;}"},
		{name: "default guard", src: `.m(@a) when (@a > 0) { pos: @a; } .m(@a) when (default()) { other: @a; } .a { .m(1); } .b { .m(-1); }`,
			exp: ".a {pos: 1;}\n.b {other: -1;}"},
		{name: "default guard without other candidates", src: `.m(@a) when (default()) { x: @a; } .a { .m(3); }`, exp: ".a {x: 3;}"},
		{name: "negated default guard", src: `.m() { x: 1; } .m() when not (default()) { y: 2; } .a { .m(); }`, exp: ".a {x: 1; y: 2;}"},
		{name: "guard alternatives", src: `.m(@a) when (@a = 1), (@a = 2) { x: @a; } .a { .m(2); .m(3); }`, exp: ".a {x: 2;}"},
		{name: "named arguments", src: `.m(@a: 1; @b: 2) { a: @a; b: @b; } .x { .m(@b: 5); }`, exp: ".x {a: 1; b: 5;}"},
		{name: "pattern matching", src: `.m(dark; @c) { bg: black; c: @c; } .m(light; @c) { bg: white; } .a { .m(dark; red); }`,
			exp: ".a {bg: black; c: red;}"},
		{name: "arguments variable", src: `.s(@x: 1px; @y: 2px; @c: #000) { box-shadow: @arguments; } .a { .s(3px; 4px); }`,
			exp: ".a {box-shadow: 3px 4px #000;}"},
		{name: "variadic", src: `.m(@a; @rest...) { a: @a; r: @rest; } .b { .m(1, 2, 3); }`, exp: ".b {a: 1; r: 2 3;}"},
		{name: "ruleset mixin", src: `.base { color: red; .inner { x: 1 } } .a { .base() !important; }`,
			exp: ".base {color: red;}\n.base .inner {x: 1;}\n.a {color: red !important;}\n.a .inner {x: 1 !important;}"},
		{name: "namespace", src: `#ns { .m() { c: blue; } } .a { #ns > .m(); } .b { #ns.m(); }`, exp: ".a {c: blue;}\n.b {c: blue;}"},
		{name: "caller scope", src: `.m() { x: @v; } .a { @v: 3; .m(); }`, exp: ".a {x: 3;}"},
		{name: "recursive mixin with base case", src: `.loop(@i) when (@i > 0) { .w-@{i} { width: @i * 10px; } .loop(@i - 1); } .loop(2);`,
			exp: ".w-2 {width: 20px;}\n.w-1 {width: 10px;}"},
		{name: "ruleset guard", src: `@mode: dark; .a when (@mode = dark) { x: 1 } .b when (@mode = light) { y: 1 }`, exp: ".a {x: 1;}"},

		{name: "media bubbling", src: `.a { color: red; @media screen { color: blue; .b { x: 1 } } }`,
			exp: ".a {color: red;}\n@media screen {.a {color: blue;} .a .b {x: 1;}}"},
		{name: "nested media", src: `@media screen { .a { @media (min-width: 10px) { x: 1 } } }`,
			exp: "@media screen and (min-width: 10px) {.a {x: 1;}}"},
		{name: "media variable", src: `@phone: ~"(max-width: 100px)"; @media @phone { .a { x: 1 } }`,
			exp: "@media (max-width: 100px) {.a {x: 1;}}"},
		{name: "keyframes", src: `@keyframes spin { from { x: 0 } to { x: 1 } }`, exp: "@keyframes spin {from {x: 0;} to {x: 1;}}"},
		{name: "font-face", src: `@f: x; @font-face { font-family: @f; }`, exp: "@font-face {font-family: x;}"},
		{name: "directives", src: `@charset "utf-8"; @import "x.css" screen;`, exp: "@charset \"utf-8\";\n@import \"x.css\" screen;"},
		{name: "comments", src: `/* top */ .a { /* dropped */ x: 1 }`, exp: "/* top */\n.a {x: 1;}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ss, err := evaluate(tt.src, eval.Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.exp, dump(ss.Rules))
		})
	}
}

func TestEvaluate_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		err  string
	}{
		{name: "undefined variable", src: `.a { color: @undefined; }`, err: "variable @undefined is undefined"},
		{name: "recursive variable", src: `@a: @b; @b: @a; .x { y: @a; }`, err: "recursive variable definition for @a"},
		{name: "mutual mixin recursion", src: `.a { .b; } .b { .a; }`, err: "mixin recursion detected: .b -> .a -> .b"},
		{name: "self recursion", src: `.m(@a) { .m(@a); } .x { .m(1); }`, err: "mixin recursion detected: .m -> .m"},
		{name: "unbounded recursion", src: `.m(@i) { .m(@i + 1); } .x { .m(1); }`, err: "mixin expansion depth limit of 64 exceeded calling .m"},
		{name: "string arithmetic", src: `.a { x: 1 + "s"; }`, err: `cannot apply '+' to 1 and string "s"`},
		{name: "keyword arithmetic", src: `.a { x: solid * 2; }`, err: `cannot apply '*' to keyword solid and 2`},
		{name: "division by zero", src: `.a { x: (1 / 0); }`, err: "division by zero"},
		{name: "undefined mixin", src: `.x { .nope; }`, err: ".nope is undefined"},
		{name: "no matching mixin", src: `.m(@a) { } .x { .m(1, 2); }`, err: "no matching definition was found for .m(1; 2)"},
		{name: "root property", src: `x: 1;`, err: "properties must be inside selector blocks: x"},
		{name: "bad color argument", src: `.a { x: lighten(1px, 10%); }`, err: "argument 1 of lighten() must be a color, got 1px"},
		{name: "wrong arity", src: `.a { x: rgb(1, 2); }`, err: "wrong number of arguments for rgb()"},
		{name: "undefined interpolation", src: `.a-@{nope} { x: 1 }`, err: "variable @nope is undefined"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ss, err := evaluate(tt.src, eval.Options{})
			assert.Nil(t, ss)
			assert.EqualError(t, err, tt.err)
		})
	}
}

func TestEvaluate_ErrorPos(t *testing.T) {
	_, err := evaluate(".a {\n  color: @undefined;\n}", eval.Options{})

	var e *eval.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, "main.less:2:10", e.Pos.String())
}

func TestEvaluate_MaxDepth(t *testing.T) {
	_, err := evaluate(`.m(@i) { .m(@i + 1); } .x { .m(1); }`, eval.Options{MaxDepth: 5})
	assert.EqualError(t, err, "mixin expansion depth limit of 5 exceeded calling .m")
}

func TestEvaluate_Import(t *testing.T) {
	files := map[string]string{
		"vars.less": `@c: blue; .v { x: 1 }`,
		"lib.less":  `.m { y: 2 } .other { z: 3 }`,
	}
	importer := parser.ImporterFunc(func(path string, paths []string, pos token.Pos) (*ast.Stylesheet, error) {
		src, ok := files[path]
		if !ok {
			return nil, fmt.Errorf("%s not found", path)
		}
		return parser.Parse(src, parser.Config{Filename: path})
	})

	ss, err := parser.Parse(`@import "vars"; @import (reference) "lib"; .a { c: @c; .m; }`, parser.Config{Importer: importer})
	require.NoError(t, err)

	out, err := eval.Evaluate(ss, eval.Options{})
	require.NoError(t, err)
	assert.Equal(t, ".v {x: 1;}\n.a {c: blue; y: 2;}", dump(out.Rules))
}

// evaluate parses and evaluates src.
func evaluate(src string, opts eval.Options) (*eval.Stylesheet, error) {
	ss, err := parser.Parse(src, parser.Config{Filename: "main.less"})
	if err != nil {
		return nil, err
	}
	return eval.Evaluate(ss, opts)
}

// dump returns a compact, single line per rule form of the evaluated tree.
func dump(rules []eval.Rule) string {
	a := make([]string, len(rules))
	for i, r := range rules {
		a[i] = dumpRule(r)
	}
	return strings.Join(a, "\n")
}

func dumpRule(r eval.Rule) string {
	switch r := r.(type) {
	case *eval.Ruleset:
		return strings.Join(r.Selectors, ", ") + " {" + dumpDecls(r.Declarations, nil) + "}"
	case *eval.Block:
		s := "@" + r.Name
		if r.Prelude != "" {
			s += " " + r.Prelude
		}
		return s + " {" + dumpDecls(r.Declarations, r.Rules) + "}"
	case *eval.Directive:
		return "@" + r.Name + " " + r.Value + ";"
	case *eval.Comment:
		return r.Text
	}
	return fmt.Sprintf("%T", r)
}

func dumpDecls(decls []*eval.Declaration, rules []eval.Rule) string {
	var a []string
	for _, d := range decls {
		s := d.Name + ": " + d.Value
		if d.Important {
			s += " !important"
		}
		a = append(a, s)
	}
	s := ""
	if len(a) > 0 {
		s = strings.Join(a, "; ") + ";"
	}
	for _, r := range rules {
		if s != "" {
			s += " "
		}
		s += dumpRule(r)
	}
	return s
}
