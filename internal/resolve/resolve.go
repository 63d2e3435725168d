// Package resolve computes local-mode import maps.
//
// Given the discovered local packages and one target manifest, the resolver
// works out which registry specifiers have a local equivalent and which
// relative path that equivalent has from the target's directory. It never
// touches manifest text; its output is the replacement imports table.
package resolve

import (
	"fmt"
	iofs "io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/danieljhkim/importsync/internal/config"
	"github.com/danieljhkim/importsync/internal/fsops"
	"github.com/danieljhkim/importsync/internal/manifest"
	"github.com/danieljhkim/importsync/internal/specifier"
	"github.com/danieljhkim/importsync/internal/workspace"
)

// Override maps a registry specifier to a local import path.
type Override struct {
	Specifier string
	Path      string
}

// Target is the manifest an import map is built for.
type Target struct {
	ConfigPath string
	Dir        string
	Kind       workspace.Kind

	// IsPackage is true when the target is itself a discovered local package.
	IsPackage bool

	// Imports are the target's current (remote-mode) import entries.
	Imports *manifest.Table
}

// Resolver resolves registry specifiers against the local packages.
type Resolver struct {
	fs       fsops.FS
	cfg      config.Config
	packages []*workspace.Package
	byName   map[string]*workspace.Package
	logger   *slog.Logger
}

// New creates a Resolver over the given packages.
func New(fs fsops.FS, cfg config.Config, packages []*workspace.Package, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		fs:       fs,
		cfg:      cfg,
		packages: packages,
		byName:   workspace.ByName(packages),
		logger:   logger,
	}
}

// parse parses s as a specifier of the configured registry.
func (r *Resolver) parse(s string) (specifier.Ref, bool) {
	ref, ok := specifier.Parse(s)
	if !ok || ref.Registry != r.cfg.Registry {
		return specifier.Ref{}, false
	}
	return ref, true
}

// ResolveLocalPath returns the path, relative to fromDir, of the local file
// that ref points at. It returns false when no local package is named
// ref.FullName or the package exports nothing under the requested subpath.
func (r *Resolver) ResolveLocalPath(ref specifier.Ref, fromDir string) (string, bool) {
	pkg, ok := r.byName[ref.FullName]
	if !ok || pkg.Exports == nil {
		return "", false
	}

	want := ref.ImportKey()
	for _, e := range pkg.Exports.Entries() {
		if ExportImportKey(pkg.Name, e.Key) == want {
			return RelativeImport(fromDir, resolveAgainst(pkg.Dir, e.Value)), true
		}
	}
	return "", false
}

// CollectLibraryOverrides scans the dependency-declaration files under
// libDir for registry specifiers and resolves each one locally.
// Specifiers are deduplicated, first occurrence wins; unresolved ones are
// dropped.
func (r *Resolver) CollectLibraryOverrides(libDir string) ([]Override, error) {
	seen := make(map[string]bool)
	var overrides []Override

	err := r.fs.WalkDir(libDir, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != libDir && r.cfg.IsSkipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(libDir, path)
		if err != nil || !r.cfg.IsDependencyFile(filepath.ToSlash(rel)) {
			return nil
		}

		data, err := r.fs.ReadFile(path)
		if err != nil {
			r.logger.Warn("failed to read dependency declarations", "path", path, "error", err)
			return nil
		}
		for _, ref := range specifier.ScanAll(string(data), r.cfg.Registry) {
			if seen[ref.FullSpecifier] {
				continue
			}
			seen[ref.FullSpecifier] = true

			local, ok := r.ResolveLocalPath(ref, libDir)
			if !ok {
				r.logger.Debug("no local package for specifier",
					"specifier", ref.FullSpecifier, "purl", ref.PURL(), "file", path, "line", ref.Line)
				continue
			}
			overrides = append(overrides, Override{Specifier: ref.FullSpecifier, Path: local})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan dependency declarations: %w", err)
	}
	return overrides, nil
}

// CollectRuntimeOverridesFromLibraries gathers the overrides every library
// published on its own manifest: imports entries keyed by a registry
// specifier whose value is a local path. The value is taken as already
// resolved by the library and only re-expressed relative to fromDir.
func (r *Resolver) CollectRuntimeOverridesFromLibraries(fromDir string) []Override {
	var overrides []Override
	for _, lib := range r.packages {
		if lib.IsRuntime() {
			continue
		}

		data, err := r.fs.ReadFile(lib.ConfigPath)
		if err != nil {
			r.logger.Warn("failed to read library manifest", "path", lib.ConfigPath, "error", err)
			continue
		}
		m, err := manifest.Parse(data)
		if err != nil {
			r.logger.Warn("failed to parse library manifest", "path", lib.ConfigPath, "error", err)
			continue
		}
		if !m.HasImports() {
			continue
		}

		for _, e := range m.Imports.Entries() {
			if _, ok := r.parse(e.Key); !ok || !isLocalPath(e.Value) {
				continue
			}
			overrides = append(overrides, Override{
				Specifier: e.Key,
				Path:      RelativeImport(fromDir, resolveAgainst(lib.Dir, e.Value)),
			})
		}
	}
	return overrides
}

// BuildLocalImports returns the complete local-mode imports table for target.
//
// Entries keyed by a local package name with a registry value are replaced
// by the full expansion of that package's exports. A registry value keyed
// by its own import key (a package subpath) is rewritten to a relative
// path when it resolves locally; aliases, prefix mappings and everything
// else pass through verbatim. Library targets then merge the overrides from
// their dependency declarations, runtime targets the overrides published by
// libraries. Later merges win.
func (r *Resolver) BuildLocalImports(target Target) (*manifest.Table, error) {
	original := target.Imports
	if original == nil {
		original = manifest.NewTable()
	}

	result := manifest.NewTable()
	var expand []*workspace.Package
	for _, e := range original.Entries() {
		ref, isSpec := r.parse(e.Value)

		if pkg, ok := r.byName[e.Key]; ok && isSpec {
			expand = append(expand, pkg)
			continue
		}
		if isSpec && rewritable(e.Key, ref) {
			if local, ok := r.ResolveLocalPath(ref, target.Dir); ok {
				result.Set(e.Key, local)
				continue
			}
		}
		result.Set(e.Key, e.Value)
	}

	for _, pkg := range expand {
		if pkg.Exports == nil {
			continue
		}
		for _, e := range pkg.Exports.Entries() {
			result.Set(ExportImportKey(pkg.Name, e.Key), RelativeImport(target.Dir, resolveAgainst(pkg.Dir, e.Value)))
		}
	}

	var overrides []Override
	switch {
	case target.Kind == workspace.KindLibrary && target.IsPackage:
		libOverrides, err := r.CollectLibraryOverrides(target.Dir)
		if err != nil {
			return nil, err
		}
		overrides = libOverrides
	case target.Kind == workspace.KindRuntime:
		overrides = r.CollectRuntimeOverridesFromLibraries(target.Dir)
	}
	for _, o := range overrides {
		result.Set(o.Specifier, o.Path)
	}

	return result, nil
}

// rewritable reports whether an entry keyed by key may have its registry
// value ref replaced by a local file. Prefix keys map to prefixes and are
// never rewritten to a single file.
func rewritable(key string, ref specifier.Ref) bool {
	return !strings.HasSuffix(key, "/") && key == ref.ImportKey()
}

// Unresolved returns the package URLs of the registry imports in imports
// that still have their registry form, in table order without duplicates.
func (r *Resolver) Unresolved(imports *manifest.Table) []string {
	if imports == nil {
		return nil
	}
	seen := make(map[string]bool)
	var purls []string
	for _, e := range imports.Entries() {
		ref, ok := r.parse(e.Value)
		if !ok {
			continue
		}
		purl := ref.PURL()
		if seen[purl] {
			continue
		}
		seen[purl] = true
		r.logger.Debug("keeping registry import", "key", e.Key, "purl", purl)
		purls = append(purls, purl)
	}
	return purls
}

// ExportImportKey converts an export key of package name into the import
// key it is reachable under: "." is the bare name, "./x" is "name/x".
func ExportImportKey(name, exportKey string) string {
	if exportKey == "." || exportKey == "" {
		return name
	}
	return name + "/" + strings.TrimPrefix(strings.TrimPrefix(exportKey, "./"), "/")
}

// RelativeImport expresses target relative to fromDir with a leading "./"
// or "../", using forward slashes.
func RelativeImport(fromDir, target string) string {
	rel, err := filepath.Rel(fromDir, target)
	if err != nil {
		return filepath.ToSlash(target)
	}
	rel = filepath.ToSlash(rel)
	switch {
	case rel == ".":
		return "./"
	case rel == "..", strings.HasPrefix(rel, "../"), strings.HasPrefix(rel, "./"):
		return rel
	default:
		return "./" + rel
	}
}

func resolveAgainst(dir, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(dir, filepath.FromSlash(p))
}

func isLocalPath(s string) bool {
	return strings.HasPrefix(s, "./") || strings.HasPrefix(s, "../") || strings.HasPrefix(s, "/")
}
