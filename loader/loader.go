// Package loader provides the stylesheet loaders used to fetch import targets.
// A loader maps a normalized path and a charset label to the decoded text of
// the stylesheet.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"

	"golang.org/x/net/html/charset"
)

// ErrNotFound is returned when a loader cannot find the requested path.
var ErrNotFound = errors.New("stylesheet not found")

// Loader loads the text of a stylesheet.
type Loader interface {
	Load(path, charset string) (string, error)
}

// Func adapts a function to the Loader interface.
type Func func(path, charset string) (string, error)

// Load calls fn(path, charset).
func (fn Func) Load(path, charset string) (string, error) { return fn(path, charset) }

// Default returns the loader used when none is configured: local files and
// http(s) URLs with newlines normalized.
func Default() Loader {
	return UnixNewlines(Chain(FileSystem{}, HTTP{}))
}

// FileSystem loads stylesheets from the local filesystem. It accepts plain
// paths and "file:" URIs.
type FileSystem struct{}

// Load reads the file at p.
func (FileSystem) Load(p, cs string) (string, error) {
	name := p
	if scheme := Scheme(p); scheme == "file" {
		u, err := url.Parse(p)
		if err != nil {
			return "", fmt.Errorf("parse %s: %w", p, err)
		}
		name = u.Path
	} else if scheme != "" {
		return "", fmt.Errorf("%s: %w", p, ErrNotFound)
	}

	data, err := os.ReadFile(name)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%s: %w", p, ErrNotFound)
	} else if err != nil {
		return "", fmt.Errorf("read %s: %w", p, err)
	}
	return Decode(data, cs)
}

// FS loads stylesheets from an fs.FS such as an embed.FS. Leading slashes are
// stripped since fs.FS paths are unrooted.
type FS struct {
	FS fs.FS
}

// Load reads p from the filesystem.
func (l FS) Load(p, cs string) (string, error) {
	if Scheme(p) != "" {
		return "", fmt.Errorf("%s: %w", p, ErrNotFound)
	}

	name := path.Clean(strings.TrimLeft(p, "/"))
	if !fs.ValidPath(name) {
		return "", fmt.Errorf("%s: %w", p, ErrNotFound)
	}

	data, err := fs.ReadFile(l.FS, name)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%s: %w", p, ErrNotFound)
	} else if err != nil {
		return "", fmt.Errorf("read %s: %w", p, err)
	}
	return Decode(data, cs)
}

// HTTP loads stylesheets from http and https URLs. When no charset label is
// given the response's Content-Type decides the encoding.
type HTTP struct {
	Client *http.Client
}

// Load fetches p with a GET request.
func (l HTTP) Load(p, cs string) (string, error) {
	if scheme := Scheme(p); scheme != "http" && scheme != "https" {
		return "", fmt.Errorf("%s: %w", p, ErrNotFound)
	}

	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Get(p)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", p, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", fmt.Errorf("%s: %w", p, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("fetch %s: unexpected status %s", p, resp.Status)
	}

	if cs != "" {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", p, err)
		}
		return Decode(data, cs)
	}

	r, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", p, err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", p, err)
	}
	return string(bytes.TrimPrefix(data, bom)), nil
}

// Chain returns a loader that tries each loader in order. A loader that fails
// with ErrNotFound passes the path to the next one; any other error stops
// the chain.
func Chain(loaders ...Loader) Loader {
	return Func(func(p, cs string) (string, error) {
		for _, l := range loaders {
			s, err := l.Load(p, cs)
			if err == nil {
				return s, nil
			} else if !errors.Is(err, ErrNotFound) {
				return "", err
			}
		}
		return "", fmt.Errorf("%s: %w", p, ErrNotFound)
	})
}

// UnixNewlines wraps l so that "\r\n" and "\r" are converted to "\n".
func UnixNewlines(l Loader) Loader {
	return Func(func(p, cs string) (string, error) {
		s, err := l.Load(p, cs)
		if err != nil {
			return "", err
		}
		return newlines.Replace(s), nil
	})
}

var newlines = strings.NewReplacer("\r\n", "\n", "\r", "\n")

var bom = []byte("\xef\xbb\xbf")

// Decode converts data from the charset named by label to a string. An empty
// label means UTF-8. A leading UTF-8 byte order mark is dropped.
func Decode(data []byte, label string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "", "utf-8", "utf8":
		return string(bytes.TrimPrefix(data, bom)), nil
	}

	enc, _ := charset.Lookup(label)
	if enc == nil {
		return "", fmt.Errorf("unsupported charset %q", label)
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", label, err)
	}
	return string(out), nil
}

// Scheme returns the lowercased URL scheme of p, or an empty string if p is
// a plain path. Single letter schemes are treated as Windows drive letters.
func Scheme(p string) string {
	i := strings.IndexByte(p, ':')
	if i < 2 {
		return ""
	}
	for j, ch := range p[:i] {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z':
		case j > 0 && (ch >= '0' && ch <= '9' || ch == '+' || ch == '-' || ch == '.'):
		default:
			return ""
		}
	}
	return strings.ToLower(p[:i])
}
