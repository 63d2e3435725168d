package engine

import (
	"context"
	"fmt"

	"github.com/danieljhkim/importsync/internal/ctxlog"
	"github.com/danieljhkim/importsync/internal/manifest"
	"github.com/danieljhkim/importsync/internal/textblock"
)

// ApplyRemoteMode puts back the imports block preserved by a previous local
// run and removes the preserved copy. A manifest without one is skipped.
func (e *Engine) ApplyRemoteMode(ctx context.Context, configPath string, opts ApplyOptions) TargetResult {
	logger := ctxlog.FromContext(ctx)
	res := TargetResult{ConfigPath: configPath, Mode: ModeRemote}

	l, reason, err := e.loadManifest(configPath)
	if err != nil {
		return e.fail(ctx, res, err)
	}
	if l == nil {
		return e.skip(ctx, res, reason)
	}

	mr, ok := textblock.FindMarkerRange(l.lines)
	if !ok {
		return e.skip(ctx, res, "no preserved original imports; run local mode first")
	}

	out, err := restoreOriginal(l.lines, mr)
	if err != nil {
		return e.fail(ctx, res, err)
	}
	restored, err := manifest.Parse([]byte(textblock.JoinLines(out)))
	if err != nil {
		return e.fail(ctx, res, fmt.Errorf("restored manifest does not parse: %w", err))
	}
	if restored.Imports != nil {
		res.Imports = restored.Imports.Len()
	}

	status, err := e.writeManifest(ctx, configPath, l.data, out, opts)
	if err != nil {
		return e.fail(ctx, res, err)
	}
	res.Status = status
	logger.Info("remote imports restored", "path", e.displayPath(configPath), "imports", res.Imports, "status", status)
	return res
}
