package engine

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/danieljhkim/importsync/internal/ctxlog"
	"github.com/danieljhkim/importsync/internal/manifest"
	"github.com/danieljhkim/importsync/internal/resolve"
	"github.com/danieljhkim/importsync/internal/textblock"
	"github.com/danieljhkim/importsync/internal/workspace"
)

// ApplyLocalMode rewrites the imports block of configPath so that imports of
// local packages point at them by relative path. The block it replaces is
// kept, commented out, right after the new one.
//
// A manifest already in local mode is first restored to its preserved
// original, so repeated runs produce the same bytes.
func (e *Engine) ApplyLocalMode(ctx context.Context, configPath string, packages []*workspace.Package, opts ApplyOptions) TargetResult {
	logger := ctxlog.FromContext(ctx)
	res := TargetResult{ConfigPath: configPath, Mode: ModeLocal}

	l, reason, err := e.loadManifest(configPath)
	if err != nil {
		return e.fail(ctx, res, err)
	}
	if l == nil {
		return e.skip(ctx, res, reason)
	}

	lines := l.lines
	m := l.manifest
	if mr, ok := textblock.FindMarkerRange(lines); ok {
		logger.Debug("restoring preserved original before regenerating", "path", e.displayPath(configPath))
		lines, err = restoreOriginal(lines, mr)
		if err != nil {
			return e.fail(ctx, res, err)
		}
		m, err = manifest.Parse([]byte(textblock.JoinLines(lines)))
		if err != nil {
			return e.fail(ctx, res, fmt.Errorf("preserved original does not parse: %w", err))
		}
		if !m.HasImports() {
			return e.skip(ctx, res, "preserved original has no imports object")
		}
	}

	r, ok := textblock.FindImportsBlockRange(lines)
	if !ok {
		return e.skip(ctx, res, "imports block not found in manifest text")
	}
	indent := textblock.LeadingWhitespace(lines[r.KeyLine])
	trailingComma := textblock.HasTrailingComma(lines[r.BraceEnd])
	original := append([]string(nil), lines[r.KeyLine:r.BraceEnd+1]...)

	target, err := e.localTarget(configPath, packages, m)
	if err != nil {
		return e.fail(ctx, res, err)
	}
	resolver := resolve.New(e.fs, e.cfg, packages, logger)
	imports, err := resolver.BuildLocalImports(target)
	if err != nil {
		return e.fail(ctx, res, fmt.Errorf("failed to build local imports: %w", err))
	}
	res.Imports = imports.Len()
	res.Unresolved = resolver.Unresolved(imports)

	// Generated lines follow the line ending of the key line.
	eol := textblock.LineEnding(lines[r.KeyLine])
	block := textblock.TerminateLines(textblock.GenerateImportsBlock(indent, imports, trailingComma), eol)
	out := textblock.Splice(lines, r.KeyLine, r.BraceEnd+1, block)
	out = textblock.InsertOriginalBlockCommented(out, original, r.KeyLine+len(block), indent, eol)

	status, err := e.writeManifest(ctx, configPath, l.data, out, opts)
	if err != nil {
		return e.fail(ctx, res, err)
	}
	res.Status = status
	logger.Info("local imports applied",
		"path", e.displayPath(configPath), "kind", target.Kind, "imports", res.Imports, "unresolved", len(res.Unresolved), "status", status)
	return res
}

// localTarget describes configPath for the resolver. A manifest that is not
// itself a discovered package is classified by its directory.
func (e *Engine) localTarget(configPath string, packages []*workspace.Package, m *manifest.Manifest) (resolve.Target, error) {
	dir := filepath.Dir(configPath)
	target := resolve.Target{
		ConfigPath: configPath,
		Dir:        dir,
		Imports:    m.Imports,
	}

	for _, p := range packages {
		if p.ConfigPath == configPath {
			target.Kind = p.Kind
			target.IsPackage = true
			return target, nil
		}
	}
	for _, p := range packages {
		if p.Dir == dir {
			target.Kind = p.Kind
			target.IsPackage = true
			return target, nil
		}
	}

	kind, err := workspace.NewDiscoverer(e.fs, e.cfg, nil).Classify(dir)
	if err != nil {
		return resolve.Target{}, fmt.Errorf("failed to classify %s: %w", dir, err)
	}
	target.Kind = kind
	return target, nil
}
