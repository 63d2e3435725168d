package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/danieljhkim/importsync/internal/ctxlog"
	"github.com/danieljhkim/importsync/internal/manifest"
	"github.com/danieljhkim/importsync/internal/textblock"
)

const defaultManifestPerm os.FileMode = 0644

// loaded is a manifest read for rewriting.
type loaded struct {
	data     []byte
	lines    []string
	manifest *manifest.Manifest
}

// loadManifest reads and parses path. A manifest without an imports object
// yields a skip reason instead of an error.
func (e *Engine) loadManifest(path string) (*loaded, string, error) {
	data, err := e.fs.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read manifest: %w", err)
	}
	m, err := manifest.Parse(data)
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse manifest: %w", err)
	}
	if !m.HasImports() {
		return nil, "manifest has no imports object", nil
	}
	return &loaded{
		data:     data,
		lines:    textblock.SplitLines(string(data)),
		manifest: m,
	}, "", nil
}

// restoreOriginal replaces the current imports block with the block
// preserved between the markers and drops the marker block.
func restoreOriginal(lines []string, mr textblock.MarkerRange) ([]string, error) {
	original := textblock.ExtractOriginalBlock(lines, mr)
	cleaned := textblock.Splice(lines, mr.Start, mr.End+1, nil)

	r, ok := textblock.FindImportsBlockRange(cleaned)
	if !ok {
		return nil, errors.New("imports block not found after removing preserved original")
	}
	return textblock.Splice(cleaned, r.KeyLine, r.BraceEnd+1, original), nil
}

// writeManifest writes lines back to path unless they match before. The
// file keeps its permission bits.
func (e *Engine) writeManifest(ctx context.Context, path string, before []byte, lines []string, opts ApplyOptions) (TargetStatus, error) {
	logger := ctxlog.FromContext(ctx)

	after := []byte(textblock.JoinLines(lines))
	if bytes.Equal(before, after) {
		logger.Debug("manifest already up to date", "path", e.displayPath(path))
		return StatusUnchanged, nil
	}
	if opts.DryRun {
		logger.Info("would rewrite manifest", "path", e.displayPath(path))
		return StatusUpdated, nil
	}

	perm := defaultManifestPerm
	if info, err := e.fs.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	if err := e.fs.AtomicWrite(path, after, perm); err != nil {
		return StatusFailed, fmt.Errorf("failed to write manifest: %w", err)
	}
	return StatusUpdated, nil
}

// skip logs a warning and returns a skipped result.
func (e *Engine) skip(ctx context.Context, res TargetResult, reason string) TargetResult {
	ctxlog.FromContext(ctx).Warn("skipping manifest", "path", e.displayPath(res.ConfigPath), "reason", reason)
	res.Status = StatusSkipped
	res.Reason = reason
	return res
}

// fail logs an error and returns a failed result.
func (e *Engine) fail(ctx context.Context, res TargetResult, err error) TargetResult {
	ctxlog.FromContext(ctx).Error("failed to process manifest", "path", e.displayPath(res.ConfigPath), "error", err)
	res.Status = StatusFailed
	res.Reason = err.Error()
	return res
}
