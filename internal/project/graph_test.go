package project

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImports(t *testing.T) {
	tests := []struct {
		name string
		src  string
		file string
		exp  []string
	}{
		{name: "extensionless", src: `@import "vars";`, file: "main.less", exp: []string{"vars.less"}},
		{name: "relative to file", src: `@import "../mixins/buttons.less";`, file: "pages/home.less", exp: []string{"mixins/buttons.less"}},
		{name: "options", src: `@import (reference) "lib"; @import (less) "x.css";`, file: "a.less", exp: []string{"lib.less", "x.css"}},
		{name: "css imports", src: `@import "reset.css"; @import url(print.less) print; @import (css) "y";`, file: "a.less", exp: nil},
		{name: "interpolated", src: `@import "@{theme}/colors";`, file: "a.less", exp: nil},
		{name: "comments", src: "// @import \"nope\";\n/* @import \"nope\"; */\n@import 'yes';", file: "a.less", exp: []string{"yes.less"}},
		{name: "duplicates", src: `@import "a"; @import "a.less";`, file: "b.less", exp: []string{"a.less"}},
		{name: "url", src: `@import url("grid.less");`, file: "a.less", exp: []string{"grid.less"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.exp, Imports([]byte(tt.src), tt.file))
		})
	}
}

func TestBuildGraph(t *testing.T) {
	fsys := fstest.MapFS{
		"main.less":            {Data: []byte(`@import "partials/_base";`)},
		"admin.less":           {Data: []byte(`@import "partials/_base"; @import "partials/_forms";`)},
		"partials/_base.less":  {Data: []byte(`@import "_vars";`)},
		"partials/_vars.less":  {Data: []byte(`@c: red;`)},
		"partials/_forms.less": {Data: []byte(`.f { color: @c; }`)},
	}
	files, err := lessFiles(fsys)
	require.NoError(t, err)

	g, err := BuildGraph(fsys, files)
	require.NoError(t, err)

	assert.Equal(t, []string{"partials/_base.less", "partials/_forms.less"}, g.Dependencies("admin.less"))
	assert.Equal(t, []string{}, g.Dependencies("partials/_vars.less"))
	assert.Equal(t, []string{"admin.less", "main.less", "partials/_base.less"}, g.Dependents("partials/_vars.less"))
	assert.Equal(t, []string{"admin.less"}, g.Dependents("partials/_forms.less"))
	assert.Nil(t, g.FindCycle())
}

func TestBuildGraph_MissingFile(t *testing.T) {
	_, err := BuildGraph(fstest.MapFS{}, []string{"nope.less"})
	assert.Error(t, err)
}

func TestGraph_FindCycle(t *testing.T) {
	fsys := fstest.MapFS{
		"a.less": {Data: []byte(`@import "b";`)},
		"b.less": {Data: []byte(`@import "c";`)},
		"c.less": {Data: []byte(`@import "a";`)},
	}
	g, err := BuildGraph(fsys, []string{"a.less", "b.less", "c.less"})
	require.NoError(t, err)

	assert.Equal(t, []string{"a.less", "b.less", "c.less", "a.less"}, g.FindCycle())
	assert.Equal(t, []string{"a.less", "b.less"}, g.Dependents("c.less"))
}
