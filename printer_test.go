package less_test

import (
	"bytes"
	"os"
	"testing"

	"github.com/benbjohnson/less"
	"github.com/benbjohnson/less/eval"
)

// Ensure than the printer prints nodes correctly.
func TestPrinter_Print(t *testing.T) {
	ss := &eval.Stylesheet{
		Rules: []eval.Rule{
			&eval.Comment{Text: "/* top */"},
			&eval.Directive{Name: "charset", Value: `"utf-8"`},
			&eval.Ruleset{
				Selectors: []string{".a", ".b"},
				Declarations: []*eval.Declaration{
					{Name: "color", Value: "red"},
					{Name: "margin", Value: "0 1px", Important: true},
				},
			},
			&eval.Block{
				Name:    "media",
				Prelude: "screen",
				Rules: []eval.Rule{
					&eval.Ruleset{
						Selectors:    []string{".c"},
						Declarations: []*eval.Declaration{{Name: "x", Value: "1"}},
					},
				},
			},
			&eval.Block{
				Name:         "font-face",
				Declarations: []*eval.Declaration{{Name: "font-family", Value: "x"}},
			},
		},
	}

	var tests = []struct {
		in eval.Node
		p  less.Printer
		s  string
	}{
		// 0. Full stylesheet, pretty.
		{in: ss, s: "/* top */\n" +
			"@charset \"utf-8\";\n" +
			".a,\n.b {\n  color: red;\n  margin: 0 1px !important;\n}\n" +
			"@media screen {\n  .c {\n    x: 1;\n  }\n}\n" +
			"@font-face {\n  font-family: x;\n}\n"},

		// 1. Full stylesheet, compact.
		{in: ss, p: less.Printer{Compact: true}, s: "/* top */" +
			"@charset \"utf-8\";" +
			".a,.b{color:red;margin:0 1px !important;}" +
			"@media screen{.c{x:1;}}" +
			"@font-face{font-family:x;}"},

		// 2. Custom indentation.
		{in: &eval.Block{Name: "media", Prelude: "print", Rules: []eval.Rule{
			&eval.Ruleset{Selectors: []string{"a", "b"}, Declarations: []*eval.Declaration{{Name: "x", Value: "1"}}},
		}}, p: less.Printer{Indent: "\t"}, s: "@media print {\n\ta,\n\tb {\n\t\tx: 1;\n\t}\n}\n"},

		// Test that nil values are safe to print.
		{in: (*eval.Stylesheet)(nil), s: ``},  // 3
		{in: (*eval.Ruleset)(nil), s: ``},     // 4
		{in: (*eval.Declaration)(nil), s: ``}, // 5
		{in: (*eval.Block)(nil), s: ``},       // 6
		{in: (*eval.Directive)(nil), s: ``},   // 7
		{in: (*eval.Comment)(nil), s: ``},     // 8

		// Test individual nodes.
		{in: &eval.Stylesheet{}, s: ``},                                                    // 9
		{in: &eval.Declaration{Name: "a", Value: "b"}, s: "a: b;\n"},                       // 10
		{in: &eval.Declaration{Name: "a", Value: "b"}, p: less.Printer{Compact: true}, s: `a:b;`}, // 11
		{in: &eval.Directive{Name: "import", Value: `"x.css" screen`}, s: "@import \"x.css\" screen;\n"}, // 12
		{in: &eval.Directive{Name: "foo"}, s: "@foo;\n"},                                   // 13
	}

	for i, tt := range tests {
		var buf bytes.Buffer
		err := tt.p.Print(&buf, tt.in)

		if err != nil {
			t.Errorf("%d. unexpected error: %s", i, err)
		} else if tt.s != buf.String() {
			t.Errorf("%d. \n\nexp: %q\n\ngot: %q\n\n", i, tt.s, buf.String())
		}
	}
}

func ExamplePrinter_Print() {
	ss := &eval.Stylesheet{
		Rules: []eval.Rule{
			&eval.Ruleset{
				Selectors:    []string{".a .b"},
				Declarations: []*eval.Declaration{{Name: "color", Value: "red"}},
			},
		},
	}

	var p less.Printer
	_ = p.Print(os.Stdout, ss)
	// Output:
	// .a .b {
	//   color: red;
	// }
}
