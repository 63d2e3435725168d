// Package config manages importsync configuration.
//
// Configuration describes how a workspace is laid out: which files are
// manifests, which directories are noise, which file sets mark a runtime
// package, and where libraries declare their dependencies. Defaults fit a
// Deno workspace publishing to JSR. A workspace can override any field in
// a .importsync.yaml file at its root; IMPORTSYNC_CONFIG points to another file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/danieljhkim/importsync/internal/fsops"
)

// FileName is the name of the optional per-workspace config file.
const FileName = ".importsync.yaml"

// EnvConfigFile overrides the config file location.
const EnvConfigFile = "IMPORTSYNC_CONFIG"

// ErrInvalidConfig indicates a config file with unusable values.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds the workspace layout settings.
type Config struct {
	// Registry is the specifier scheme treated as a registry ("jsr").
	Registry string `yaml:"registry"`

	// ManifestPatterns are matched against file base names.
	ManifestPatterns []string `yaml:"manifest_patterns"`

	// CommentAwareSuffix selects the manifest flavor that may be rewritten.
	CommentAwareSuffix string `yaml:"comment_aware_suffix"`

	// SkipDirs are directory names never descended into.
	SkipDirs []string `yaml:"skip_dirs"`

	// RuntimeMarkers lists file sets; a directory containing every file of
	// any one set is a runtime package.
	RuntimeMarkers [][]string `yaml:"runtime_markers"`

	// DependencyPattern matches dependency-declaration files, relative to
	// a library directory.
	DependencyPattern string `yaml:"dependency_pattern"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Registry:           "jsr",
		ManifestPatterns:   []string{"deno.json", "deno.jsonc"},
		CommentAwareSuffix: ".jsonc",
		SkipDirs:           []string{"node_modules", ".git", "coverage", ".deno", "cov_profile"},
		RuntimeMarkers: [][]string{
			{"main.ts", "dev.ts", "Dockerfile"},
			{"cli.json"},
		},
		DependencyPattern: "**/*deps.ts",
	}
}

// Load returns the configuration for the workspace at root. Fields present
// in the config file replace the defaults; a missing file yields Default().
func Load(fs fsops.FS, root string) (Config, error) {
	cfg := Default()

	path := os.Getenv(EnvConfigFile)
	if path == "" {
		path = filepath.Join(root, FileName)
	}

	exists, err := fs.Exists(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to check config file: %w", err)
	}
	if !exists {
		return cfg, nil
	}

	data, err := fs.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config YAML %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for unusable values.
func (c Config) Validate() error {
	if c.Registry == "" || strings.ContainsAny(c.Registry, ":/ ") {
		return fmt.Errorf("%w: registry %q", ErrInvalidConfig, c.Registry)
	}
	if len(c.ManifestPatterns) == 0 {
		return fmt.Errorf("%w: manifest_patterns is required", ErrInvalidConfig)
	}
	for _, p := range c.ManifestPatterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("%w: manifest pattern %q", ErrInvalidConfig, p)
		}
	}
	if c.CommentAwareSuffix == "" {
		return fmt.Errorf("%w: comment_aware_suffix is required", ErrInvalidConfig)
	}
	for i, set := range c.RuntimeMarkers {
		if len(set) == 0 {
			return fmt.Errorf("%w: runtime_markers[%d] is empty", ErrInvalidConfig, i)
		}
	}
	if c.DependencyPattern != "" && !doublestar.ValidatePattern(c.DependencyPattern) {
		return fmt.Errorf("%w: dependency pattern %q", ErrInvalidConfig, c.DependencyPattern)
	}
	return nil
}

// IsManifest reports whether a file base name matches a manifest pattern.
func (c Config) IsManifest(name string) bool {
	for _, p := range c.ManifestPatterns {
		if ok, err := doublestar.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}

// IsCommentAware reports whether path is a manifest flavor the engine rewrites.
func (c Config) IsCommentAware(path string) bool {
	return strings.HasSuffix(path, c.CommentAwareSuffix)
}

// IsSkipDir reports whether a directory name is never descended into.
func (c Config) IsSkipDir(name string) bool {
	for _, d := range c.SkipDirs {
		if d == name {
			return true
		}
	}
	return false
}

// IsDependencyFile reports whether relPath (slash-separated, relative to a
// library directory) is a dependency-declaration file.
func (c Config) IsDependencyFile(relPath string) bool {
	if c.DependencyPattern == "" {
		return false
	}
	ok, err := doublestar.Match(c.DependencyPattern, relPath)
	return err == nil && ok
}
