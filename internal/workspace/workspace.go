// Package workspace discovers the local packages of a workspace.
//
// A local package is any manifest under the workspace root that declares a
// name and an exports object. Each package is classified once, as either a
// runtime (an executable entry point) or a library, and the rest of the sync
// engine branches on that tag.
package workspace

import (
	"fmt"
	iofs "io/fs"
	"log/slog"
	"path/filepath"

	"github.com/danieljhkim/importsync/internal/config"
	"github.com/danieljhkim/importsync/internal/fsops"
	"github.com/danieljhkim/importsync/internal/manifest"
)

// Kind classifies a local package.
type Kind string

const (
	KindRuntime Kind = "runtime"
	KindLibrary Kind = "library"
)

// Package is a discovered local package.
type Package struct {
	Name string `json:"name"`

	// ConfigPath is the absolute path of the manifest.
	ConfigPath string `json:"configPath"`

	// Dir is the directory containing the manifest.
	Dir string `json:"packageDir"`

	// Exports maps export keys to paths relative to Dir.
	Exports *manifest.Table `json:"-"`

	Kind Kind `json:"kind"`
}

// IsRuntime reports whether the package is a runtime package.
func (p *Package) IsRuntime() bool {
	return p.Kind == KindRuntime
}

// Discoverer finds local packages.
type Discoverer struct {
	fs     fsops.FS
	cfg    config.Config
	logger *slog.Logger
}

// NewDiscoverer creates a Discoverer.
func NewDiscoverer(fs fsops.FS, cfg config.Config, logger *slog.Logger) *Discoverer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discoverer{fs: fs, cfg: cfg, logger: logger}
}

// Discover walks root and returns every manifest that describes a package,
// in walk order. Manifests that do not parse, or lack a name or an exports
// object, are skipped.
func (d *Discoverer) Discover(root string) ([]*Package, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	var packages []*Package
	err = d.fs.WalkDir(absRoot, func(path string, entry iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if path != absRoot && d.cfg.IsSkipDir(entry.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.cfg.IsManifest(entry.Name()) {
			return nil
		}

		pkg, err := d.load(path)
		if err != nil {
			d.logger.Debug("skipping manifest", "path", path, "reason", err)
			return nil
		}
		if pkg != nil {
			packages = append(packages, pkg)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk workspace: %w", err)
	}

	return packages, nil
}

// load parses one manifest. It returns nil without error when the manifest
// is valid but not an importable package.
func (d *Discoverer) load(path string) (*Package, error) {
	data, err := d.fs.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := manifest.Parse(data)
	if err != nil {
		return nil, err
	}
	if !m.IsPackage() {
		return nil, nil
	}

	dir := filepath.Dir(path)
	kind, err := d.Classify(dir)
	if err != nil {
		return nil, err
	}
	return &Package{
		Name:       m.Name,
		ConfigPath: path,
		Dir:        dir,
		Exports:    m.Exports,
		Kind:       kind,
	}, nil
}

// Classify returns KindRuntime when dir holds a full runtime marker set.
func (d *Discoverer) Classify(dir string) (Kind, error) {
	runtime, err := d.IsRuntime(dir)
	if err != nil {
		return "", err
	}
	if runtime {
		return KindRuntime, nil
	}
	return KindLibrary, nil
}

// IsRuntime reports whether dir contains every file of at least one
// configured marker set.
func (d *Discoverer) IsRuntime(dir string) (bool, error) {
	for _, set := range d.cfg.RuntimeMarkers {
		complete := true
		for _, name := range set {
			exists, err := d.fs.Exists(filepath.Join(dir, name))
			if err != nil {
				return false, fmt.Errorf("failed to check marker %s: %w", name, err)
			}
			if !exists {
				complete = false
				break
			}
		}
		if complete && len(set) > 0 {
			return true, nil
		}
	}
	return false, nil
}

// ByName indexes packages by name. When two packages share a name, the
// first one discovered wins.
func ByName(packages []*Package) map[string]*Package {
	out := make(map[string]*Package, len(packages))
	for _, p := range packages {
		if _, ok := out[p.Name]; !ok {
			out[p.Name] = p
		}
	}
	return out
}

// Split separates packages into runtime and library groups, keeping order.
func Split(packages []*Package) (runtimes, libraries []*Package) {
	for _, p := range packages {
		if p.IsRuntime() {
			runtimes = append(runtimes, p)
		} else {
			libraries = append(libraries, p)
		}
	}
	return runtimes, libraries
}
