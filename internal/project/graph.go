package project

import (
	"bytes"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/benbjohnson/less/importer"
	"github.com/benbjohnson/less/scanner"
	"github.com/benbjohnson/less/token"
)

// Graph represents the import graph of the LESS files in a profile
type Graph struct {
	// adjacency list: file -> files it imports
	dependencies map[string][]string
	// reverse lookup: file -> files that import it
	dependents map[string][]string
	// all files in the graph
	nodes map[string]bool
}

// BuildGraph reads each file from fsys and records its LESS imports. Files
// are slash-separated paths relative to the root of fsys.
func BuildGraph(fsys fs.FS, files []string) (*Graph, error) {
	g := &Graph{
		dependencies: make(map[string][]string),
		dependents:   make(map[string][]string),
		nodes:        make(map[string]bool),
	}

	for _, file := range files {
		g.nodes[file] = true

		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}

		deps := Imports(data, file)
		if len(deps) > 0 {
			g.dependencies[file] = deps
			for _, dep := range deps {
				g.dependents[dep] = append(g.dependents[dep], file)
			}
		}
	}

	return g, nil
}

// Imports returns the resolved paths of the LESS files imported by src,
// which is located at file. CSS imports and interpolated paths are skipped.
func Imports(src []byte, file string) []string {
	s := scanner.New(bytes.NewReader(src), file)
	paths := []string{importer.BasePath(file)}

	var deps []string
	seen := make(map[string]bool)
	for {
		tok := s.Scan()
		if _, ok := tok.(*token.EOF); ok {
			break
		} else if kw, ok := tok.(*token.AtKeyword); !ok || !strings.EqualFold(kw.Value, "import") {
			continue
		}

		target, css := scanImport(s)
		if target == "" || css || strings.Contains(target, "@{") {
			continue
		}
		if path.Ext(target) == "" {
			target += ".less"
		}
		target = importer.Resolve(target, paths)
		if !seen[target] {
			seen[target] = true
			deps = append(deps, target)
		}
	}
	return deps
}

// scanImport reads the options and path that follow "@import". It reports
// whether the import is a plain CSS import.
func scanImport(s *scanner.Scanner) (target string, css bool) {
	var less bool
	tok := skipWhitespace(s)
	if _, ok := tok.(*token.LParen); ok {
		for {
			tok = s.Scan()
			switch tok := tok.(type) {
			case *token.Ident:
				switch strings.ToLower(tok.Value) {
				case "css":
					css = true
				case "less":
					less = true
				}
				continue
			case *token.RParen, *token.EOF:
			default:
				continue
			}
			break
		}
		tok = skipWhitespace(s)
	}

	switch tok := tok.(type) {
	case *token.String:
		target = tok.Value
	case *token.URL:
		target = tok.Value
	default:
		return "", false
	}

	// Media features make the import a CSS import.
	var features bool
	for {
		switch s.Scan().(type) {
		case *token.Whitespace:
			continue
		case *token.Semicolon, *token.EOF, *token.RBrace:
		default:
			features = true
			continue
		}
		break
	}
	if !less && (strings.HasSuffix(target, ".css") || features) {
		css = true
	}
	return target, css
}

func skipWhitespace(s *scanner.Scanner) token.Token {
	for {
		tok := s.Scan()
		if _, ok := tok.(*token.Whitespace); !ok {
			return tok
		}
	}
}

// Dependencies returns the files that file imports directly
func (g *Graph) Dependencies(file string) []string {
	if deps, ok := g.dependencies[file]; ok {
		return deps
	}
	return []string{}
}

// Dependents returns every file that imports file directly or through other
// imports, sorted. The file itself is not included.
func (g *Graph) Dependents(file string) []string {
	visited := map[string]bool{file: true}
	queue := []string{file}
	var result []string
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		for _, dep := range g.dependents[node] {
			if !visited[dep] {
				visited[dep] = true
				result = append(result, dep)
				queue = append(queue, dep)
			}
		}
	}
	sort.Strings(result)
	return result
}

// FindCycle returns an import cycle if one exists, or nil if no cycle
func (g *Graph) FindCycle() []string {
	visited := make(map[string]bool)
	recStack := make(map[string]bool)

	// Sorted for a stable result.
	nodes := make([]string, 0, len(g.nodes))
	for node := range g.nodes {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)

	for _, node := range nodes {
		if cycle := g.findCycleDFS(node, visited, recStack, nil); cycle != nil {
			return cycle
		}
	}
	return nil
}

// findCycleDFS finds a cycle and returns the path
func (g *Graph) findCycleDFS(node string, visited, recStack map[string]bool, path []string) []string {
	if recStack[node] {
		for i, n := range path {
			if n == node {
				return append(path[i:], node)
			}
		}
		return nil
	}
	if visited[node] {
		return nil
	}

	visited[node] = true
	recStack[node] = true
	path = append(path, node)

	for _, dep := range g.dependencies[node] {
		if cycle := g.findCycleDFS(dep, visited, recStack, path); cycle != nil {
			return cycle
		}
	}

	recStack[node] = false
	return nil
}
