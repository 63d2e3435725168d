// Package project turns a user-supplied target into manifest paths.
//
// A target is a local package name, a manifest path, or a directory. A
// directory resolves to every manifest beneath it.
package project

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"path/filepath"
	"sort"

	"github.com/danieljhkim/importsync/internal/config"
	"github.com/danieljhkim/importsync/internal/fsops"
	"github.com/danieljhkim/importsync/internal/workspace"
)

// ErrUnknownTarget indicates a target that is neither a package, a file nor a directory.
var ErrUnknownTarget = errors.New("unknown target")

// Resolver resolves targets within a workspace.
type Resolver struct {
	fs       fsops.FS
	cfg      config.Config
	root     string
	packages []*workspace.Package
}

// NewResolver creates a Resolver. Relative path targets are taken relative
// to root.
func NewResolver(fs fsops.FS, cfg config.Config, root string, packages []*workspace.Package) *Resolver {
	return &Resolver{fs: fs, cfg: cfg, root: root, packages: packages}
}

// Resolve returns the manifest paths target refers to, sorted.
func (r *Resolver) Resolve(target string) ([]string, error) {
	if pkg, ok := workspace.ByName(r.packages)[target]; ok {
		return r.manifestsIn(pkg.Dir, false)
	}

	path := target
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.root, path)
	}

	info, err := r.fs.Stat(path)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTarget, target)
		}
		return nil, fmt.Errorf("failed to stat target: %w", err)
	}
	if !info.IsDir() {
		if !r.cfg.IsManifest(filepath.Base(path)) {
			return nil, fmt.Errorf("%w: %s is not a manifest", ErrUnknownTarget, target)
		}
		return []string{path}, nil
	}
	return r.manifestsIn(path, true)
}

// manifestsIn lists the manifests in dir, descending into subdirectories
// when recursive is set.
func (r *Resolver) manifestsIn(dir string, recursive bool) ([]string, error) {
	var paths []string
	err := r.fs.WalkDir(dir, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == dir {
				return nil
			}
			if !recursive || r.cfg.IsSkipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if r.cfg.IsManifest(d.Name()) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list manifests in %s: %w", dir, err)
	}
	sort.Strings(paths)
	return paths, nil
}
