package project

import (
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Per-file directives that override the profile's compress flag.
const (
	MinifyDirective   = "//lessc:minify"
	NoMinifyDirective = "//lessc:!minify"
)

// Files returns every ".less" file under the profile's LESS directory,
// relative to it and sorted.
func (p *Profile) Files() ([]string, error) {
	return lessFiles(os.DirFS(p.LessDir))
}

func lessFiles(fsys fs.FS) ([]string, error) {
	files, err := doublestar.Glob(fsys, "**/*.less")
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// ShouldCompile returns true if the file at rel is compiled on its own.
// Partials, whose names begin with "_", are only compiled through imports.
// A file is compiled if it matches an include pattern, or there are none,
// and matches no exclude pattern.
func (p *Profile) ShouldCompile(rel string) bool {
	if len(p.CSSDirs) == 0 || IsPartial(rel) {
		return false
	}

	include := len(p.Include) == 0
	for _, pattern := range p.Include {
		include = include || match(pattern, rel)
	}
	if !include {
		return false
	}

	for _, pattern := range p.Exclude {
		if match(pattern, rel) {
			return false
		}
	}
	return true
}

// IsPartial returns true if the base name of rel begins with "_".
func IsPartial(rel string) bool {
	return strings.HasPrefix(path.Base(rel), "_")
}

// CompressFor returns whether src is compressed given the profile default.
// MinifyDirective forces compression and NoMinifyDirective disables it.
func CompressFor(src string, compress bool) bool {
	return (compress && !strings.Contains(src, NoMinifyDirective)) || strings.Contains(src, MinifyDirective)
}

// match reports whether rel matches the doublestar pattern. Invalid
// patterns match nothing.
func match(pattern, rel string) bool {
	ok, err := doublestar.Match(pattern, rel)
	return err == nil && ok
}

// cssPath returns the output path of rel, relative to a CSS directory.
func cssPath(rel string) string {
	return strings.TrimSuffix(rel, ".less") + ".css"
}
