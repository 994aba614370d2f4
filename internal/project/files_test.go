package project

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile_ShouldCompile(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		file    string
		exp     bool
	}{
		{name: "no patterns", profile: Profile{CSSDirs: []string{"css"}}, file: "main.less", exp: true},
		{name: "no css dirs", profile: Profile{}, file: "main.less", exp: false},
		{name: "partial", profile: Profile{CSSDirs: []string{"css"}}, file: "mixins/_buttons.less", exp: false},
		{name: "included", profile: Profile{CSSDirs: []string{"css"}, Include: []string{"pages/**/*.less"}}, file: "pages/a/home.less", exp: true},
		{name: "not included", profile: Profile{CSSDirs: []string{"css"}, Include: []string{"pages/**/*.less"}}, file: "lib/grid.less", exp: false},
		{name: "second include", profile: Profile{CSSDirs: []string{"css"}, Include: []string{"pages/*.less", "lib/*.less"}}, file: "lib/grid.less", exp: true},
		{name: "excluded", profile: Profile{CSSDirs: []string{"css"}, Exclude: []string{"vendor/**"}}, file: "vendor/x/y.less", exp: false},
		{name: "include and exclude", profile: Profile{CSSDirs: []string{"css"}, Include: []string{"**/*.less"}, Exclude: []string{"**/legacy-*.less"}}, file: "a/legacy-ie.less", exp: false},
		{name: "invalid pattern", profile: Profile{CSSDirs: []string{"css"}, Include: []string{"[a"}}, file: "a.less", exp: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.exp, tt.profile.ShouldCompile(tt.file))
		})
	}
}

func TestCompressFor(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		compress bool
		exp      bool
	}{
		{name: "profile default off", src: ".a{}", compress: false, exp: false},
		{name: "profile default on", src: ".a{}", compress: true, exp: true},
		{name: "force on", src: "//lessc:minify\n.a{}", compress: false, exp: true},
		{name: "force off", src: "//lessc:!minify\n.a{}", compress: true, exp: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.exp, CompressFor(tt.src, tt.compress))
		})
	}
}

func TestLessFiles(t *testing.T) {
	files, err := lessFiles(fstest.MapFS{
		"main.less":          {},
		"b/_partial.less":    {},
		"b/c/deep.less":      {},
		"readme.md":          {},
		"styles.less.backup": {},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"b/_partial.less", "b/c/deep.less", "main.less"}, files)
}

func TestCSSPath(t *testing.T) {
	assert.Equal(t, "a/b.css", cssPath("a/b.less"))
}
