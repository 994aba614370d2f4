// Package project compiles the stylesheets of a project. A project config
// lists profiles, each mapping a directory of LESS sources to one or more
// CSS output directories.
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// DefaultCharset is the charset used when the config does not name one.
const DefaultCharset = "utf-8"

// ConfigFiles are the file names searched for by FindConfig, in order.
var ConfigFiles = []string{"lessc.yaml", "lessc.yml", "lessc.json"}

// Sentinel errors for error type checking
var (
	// ErrInvalidConfig indicates the project config could not be used
	ErrInvalidConfig = errors.New("invalid project config")

	// ErrNoConfig indicates no project config was found
	ErrNoConfig = errors.New("no project config found")
)

// ConfigError represents an unusable project config
type ConfigError struct {
	Path   string
	Reason string
}

// Error returns the config path and the reason it is invalid.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid project config %s: %s", e.Path, e.Reason)
}

// Unwrap returns ErrInvalidConfig.
func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// NewConfigError creates a new config error
func NewConfigError(path, reason string) error {
	return &ConfigError{Path: path, Reason: reason}
}

// Config is a project config.
type Config struct {
	Charset  string     `yaml:"charset" json:"charset"`
	Profiles []*Profile `yaml:"profiles" json:"profiles"`
}

// Profile maps a directory of LESS sources to CSS output directories.
// Include and exclude patterns are doublestar globs relative to LessDir.
type Profile struct {
	Name     string   `yaml:"name" json:"name"`
	LessDir  string   `yaml:"lessDir" json:"lessDir"`
	CSSDirs  []string `yaml:"cssDirs" json:"cssDirs"`
	Compress bool     `yaml:"compress" json:"compress"`
	Include  []string `yaml:"include" json:"include"`
	Exclude  []string `yaml:"exclude" json:"exclude"`
}

// LoadConfig reads the config file at path. YAML is used for ".yaml" and
// ".yml" files and JSON with comments for everything else. Relative
// directories are resolved against the directory of the config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project config: %w", err)
	}

	cfg, err := ParseConfig(data, filepath.Ext(path))
	if err != nil {
		return nil, NewConfigError(path, err.Error())
	}

	base := filepath.Dir(path)
	for _, p := range cfg.Profiles {
		p.LessDir = resolveDir(base, p.LessDir)
		for i := range p.CSSDirs {
			p.CSSDirs[i] = resolveDir(base, p.CSSDirs[i])
		}
	}
	return cfg, nil
}

// ParseConfig parses a config in the format given by the file extension ext.
func ParseConfig(data []byte, ext string) (*Config, error) {
	var cfg Config
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(jsonc.ToJSON(data), &cfg); err != nil {
			return nil, err
		}
	}

	if cfg.Charset == "" {
		cfg.Charset = DefaultCharset
	}
	for i, p := range cfg.Profiles {
		if p == nil {
			return nil, fmt.Errorf("profile %d is empty", i)
		} else if p.LessDir == "" {
			return nil, fmt.Errorf("profile %q has no lessDir", p.Name)
		}
		if p.Name == "" {
			p.Name = filepath.Base(p.LessDir)
		}
	}
	return &cfg, nil
}

// FindConfig returns the path of the first config file found in dir or one
// of its parents.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		for _, name := range ConfigFiles {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoConfig
		}
		dir = parent
	}
}

// Profile returns the profile named name.
func (c *Config) Profile(name string) (*Profile, bool) {
	for _, p := range c.Profiles {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// ProfileFor returns the first profile whose LESS directory contains file.
// A relative file is resolved against the working directory.
func (c *Config) ProfileFor(file string) (*Profile, bool) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return nil, false
	}
	for _, p := range c.Profiles {
		if _, ok := p.Rel(abs); ok {
			return p, true
		}
	}
	return nil, false
}

// Rel returns file relative to the profile's LESS directory using forward
// slashes. A relative file is taken as relative to the LESS directory. It
// returns false if file is outside of the directory.
func (p *Profile) Rel(file string) (string, bool) {
	dir := p.LessDir
	if filepath.IsAbs(file) {
		if abs, err := filepath.Abs(dir); err == nil {
			dir = abs
		}
	} else {
		file = filepath.Join(dir, file)
	}
	rel, err := filepath.Rel(dir, file)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func resolveDir(base, dir string) string {
	if dir == "" || filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(base, dir)
}
