// Package engine provides the core business logic for import synchronization.
//
// The engine is the orchestration layer between CLI commands and the
// lower-level packages. It discovers the local packages of a workspace,
// resolves a target into manifests and rewrites each manifest's imports
// block into local or remote form.
//
// Key components:
//   - Engine: main orchestrator called by the CLI
//   - Sync: resolves targets and processes them in order
//   - ApplyLocalMode/ApplyRemoteMode: single-manifest rewrites
package engine

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/danieljhkim/importsync/internal/config"
	"github.com/danieljhkim/importsync/internal/ctxlog"
	"github.com/danieljhkim/importsync/internal/fsops"
	"github.com/danieljhkim/importsync/internal/project"
	"github.com/danieljhkim/importsync/internal/workspace"
)

// Engine orchestrates all import sync operations.
// It is the main API surface called by the CLI.
type Engine struct {
	fs   fsops.FS
	cfg  config.Config
	root string
}

// New creates a new Engine for the workspace rooted at root.
func New(fs fsops.FS, cfg config.Config, root string) *Engine {
	return &Engine{fs: fs, cfg: cfg, root: root}
}

// Root returns the workspace root.
func (e *Engine) Root() string {
	return e.root
}

// Discover returns every local package under the workspace root.
func (e *Engine) Discover(ctx context.Context) ([]*workspace.Package, error) {
	logger := ctxlog.FromContext(ctx)

	packages, err := workspace.NewDiscoverer(e.fs, e.cfg, logger).Discover(e.root)
	if err != nil {
		return nil, fmt.Errorf("failed to discover packages: %w", err)
	}

	runtimes, libraries := workspace.Split(packages)
	logger.Info("discovered local packages",
		"total", len(packages),
		"runtimes", len(runtimes), "runtime_names", packageNames(runtimes),
		"libraries", len(libraries), "library_names", packageNames(libraries))
	for _, p := range packages {
		logger.Debug("local package", "name", p.Name, "kind", p.Kind, "dir", p.Dir)
	}
	return packages, nil
}

// Algorithm steps:
// 1. Validate mode
// 2. Discover local packages
// 3. Resolve target into manifests, keeping only the comment-aware flavor
// 4. Rewrite each manifest in order; failures are isolated per manifest
// 5. Return result
func (e *Engine) Sync(ctx context.Context, req *SyncRequest) (*SyncResult, error) {
	logger := ctxlog.FromContext(ctx)

	if _, err := ParseMode(string(req.Mode)); err != nil {
		return nil, err
	}

	packages, err := e.Discover(ctx)
	if err != nil {
		return nil, err
	}

	resolver := req.Resolver
	if resolver == nil {
		resolver = project.NewResolver(e.fs, e.cfg, e.root, packages)
	}

	resolved, err := resolver.Resolve(req.Target)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve target %q: %w", req.Target, err)
	}

	var targets []string
	for _, path := range resolved {
		if !e.cfg.IsCommentAware(path) {
			logger.Debug("ignoring manifest that cannot carry comments", "path", path)
			continue
		}
		targets = append(targets, path)
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoTargets, req.Target)
	}

	logger.Info("resolved targets", "mode", req.Mode, "count", len(targets))
	for _, t := range targets {
		logger.Info("target", "path", e.displayPath(t))
	}

	result := &SyncResult{
		LocalPackages: packages,
		TargetConfigs: targets,
		Targets:       make([]TargetResult, 0, len(targets)),
	}
	opts := ApplyOptions{DryRun: req.DryRun}
	for _, path := range targets {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		var tr TargetResult
		switch req.Mode {
		case ModeLocal:
			tr = e.ApplyLocalMode(ctx, path, packages, opts)
		case ModeRemote:
			tr = e.ApplyRemoteMode(ctx, path, opts)
		}
		result.Targets = append(result.Targets, tr)
	}

	counts := result.Counts()
	logger.Info("sync complete",
		"mode", req.Mode,
		"updated", counts[StatusUpdated],
		"unchanged", counts[StatusUnchanged],
		"skipped", counts[StatusSkipped],
		"failed", counts[StatusFailed])

	return result, nil
}

// displayPath returns path relative to the workspace root when possible.
func (e *Engine) displayPath(path string) string {
	rel, err := filepath.Rel(e.root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

func packageNames(packages []*workspace.Package) []string {
	names := make([]string, 0, len(packages))
	for _, p := range packages {
		names = append(names, p.Name)
	}
	return names
}
