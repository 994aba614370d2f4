package importer_test

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/benbjohnson/less/ast"
	"github.com/benbjohnson/less/importer"
	"github.com/benbjohnson/less/loader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasePath(t *testing.T) {
	assert.Equal(t, "styles/", importer.BasePath("styles/main.less"))
	assert.Equal(t, "/a/b/", importer.BasePath("/a/b/c.less"))
	assert.Equal(t, "http://example.com/css/", importer.BasePath("http://example.com/css/site.less"))
	assert.Equal(t, "", importer.BasePath("main.less"))
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		paths []string
		exp   string
	}{
		{name: "relative", path: "vars.less", paths: []string{"styles/"}, exp: "styles/vars.less"},
		{name: "parent", path: "../vars.less", paths: []string{"styles/themes/"}, exp: "styles/vars.less"},
		{name: "rooted base", path: "./vars.less", paths: []string{"/srv/styles/"}, exp: "/srv/styles/vars.less"},
		{name: "no base", path: "vars.less", paths: []string{""}, exp: "vars.less"},
		{name: "no search paths", path: "vars.less", exp: "vars.less"},
		{name: "absolute", path: "/lib/vars.less", paths: []string{"styles/"}, exp: "/lib/vars.less"},
		{name: "url", path: "http://cdn.example.com/x.less", paths: []string{"styles/"}, exp: "http://cdn.example.com/x.less"},
		{name: "relative to url", path: "../x.less", paths: []string{"http://example.com/css/a/"}, exp: "http://example.com/css/x.less"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.exp, importer.Resolve(tt.path, tt.paths))
		})
	}
}

func TestImporter_Parse(t *testing.T) {
	fsys := fstest.MapFS{
		"styles/vars.less":        {Data: []byte(`@import "themes/dark"; @c: red;`)},
		"styles/themes/dark.less": {Data: []byte(`@bg: black;`)},
	}
	imp := importer.New(loader.FS{FS: fsys})

	ss, err := imp.Parse(`@import "vars"; .a { color: @c; }`, "styles/main.less")
	require.NoError(t, err)

	vars := ss.Rules[0].(*ast.Import)
	require.NotNil(t, vars.Root)
	assert.Equal(t, "vars.less", vars.Path)
	assert.Equal(t, "styles/vars.less", vars.Root.Filename)

	dark := vars.Root.Rules[0].(*ast.Import)
	require.NotNil(t, dark.Root)
	assert.Equal(t, "styles/themes/dark.less", dark.Root.Filename)
	assert.Equal(t, "@bg: black;\n", dark.Root.String())
}

func TestImporter_Import_Missing(t *testing.T) {
	imp := importer.New(loader.FS{FS: fstest.MapFS{}})

	ss, err := imp.Parse(".a { x: 1 }\n@import \"missing.less\";", "main.less")
	assert.Nil(t, ss)

	var ierr *importer.Error
	require.True(t, errors.As(err, &ierr))
	assert.Equal(t, "missing.less", ierr.Path)
	assert.Equal(t, "main.less:2:1", ierr.Pos.String())
	assert.ErrorIs(t, err, loader.ErrNotFound)
}

func TestImporter_Import_Cycle(t *testing.T) {
	fsys := fstest.MapFS{
		"a.less": {Data: []byte(`@import "b";`)},
		"b.less": {Data: []byte(`@import "a";`)},
	}
	imp := importer.New(loader.FS{FS: fsys})

	_, err := imp.Parse(`@import "a";`, "main.less")
	assert.EqualError(t, err, "circular import: a.less -> b.less -> a.less")

	t.Run("root", func(t *testing.T) {
		_, err := imp.Parse(`@import "b";`, "a.less")
		assert.EqualError(t, err, "circular import: a.less -> b.less -> a.less")
	})
}

func TestImporter_Import_MaxDepth(t *testing.T) {
	fsys := fstest.MapFS{
		"a.less": {Data: []byte(`@import "b";`)},
		"b.less": {Data: []byte(`@import "c";`)},
		"c.less": {Data: []byte(`@import "d";`)},
		"d.less": {Data: []byte(`@x: 1;`)},
	}

	_, err := importer.New(loader.FS{FS: fsys}, importer.WithMaxDepth(2)).Parse(`@import "a";`, "main.less")
	assert.EqualError(t, err, "import depth limit of 2 exceeded importing c.less")

	_, err = importer.New(loader.FS{FS: fsys}, importer.WithMaxDepth(4)).Parse(`@import "a";`, "main.less")
	assert.NoError(t, err)
}

func TestImporter_Import_Charset(t *testing.T) {
	var got []string
	l := loader.Func(func(path, charset string) (string, error) {
		got = append(got, path+":"+charset)
		return "", nil
	})

	_, err := importer.New(l, importer.WithCharset("iso-8859-1")).Parse(`@import "a";`, "main.less")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.less:iso-8859-1"}, got)
}

func TestImporter_Import_Paths(t *testing.T) {
	fsys := fstest.MapFS{
		"src/local.less":       {Data: []byte(`@x: local;`)},
		"lib/mixins/grid.less": {Data: []byte(`@g: 12;`)},
		"vendor/local.less":    {Data: []byte(`@x: vendor;`)},
		"vendor/only.less":     {Data: []byte(`@import "local";`)},
	}
	imp := importer.New(loader.FS{FS: fsys}, importer.WithPaths("lib", "vendor/"))

	ss, err := imp.Parse(`@import "local"; @import "mixins/grid"; @import "only";`, "src/main.less")
	require.NoError(t, err)
	assert.Equal(t, "src/local.less", ss.Rules[0].(*ast.Import).Root.Filename)
	assert.Equal(t, "lib/mixins/grid.less", ss.Rules[1].(*ast.Import).Root.Filename)

	only := ss.Rules[2].(*ast.Import).Root
	assert.Equal(t, "vendor/only.less", only.Filename)
	assert.Equal(t, "vendor/local.less", only.Rules[0].(*ast.Import).Root.Filename)

	t.Run("not found", func(t *testing.T) {
		_, err := imp.Parse(`@import "nope";`, "src/main.less")
		assert.EqualError(t, err, "cannot load src/nope.less: src/nope.less: stylesheet not found")
	})
}
