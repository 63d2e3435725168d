package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/importsync/internal/config"
	"github.com/danieljhkim/importsync/internal/ctxlog"
	"github.com/danieljhkim/importsync/internal/engine"
	"github.com/danieljhkim/importsync/internal/fsops"
	"github.com/danieljhkim/importsync/internal/gitx"
)

// newEngine creates an engine for the workspace the command runs in, and a
// context carrying the configured logger.
func newEngine(cmd *cobra.Command) (*engine.Engine, context.Context, error) {
	logger := newLogger(logLevel, logFormat, cmd.ErrOrStderr())
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = ctxlog.WithLogger(ctx, logger)

	root, err := workspaceRoot()
	if err != nil {
		return nil, nil, err
	}

	fs := fsops.NewRealFS()
	cfg, err := config.Load(fs, root)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("workspace", "root", root, "registry", cfg.Registry)

	return engine.New(fs, cfg, root), ctx, nil
}

// workspaceRoot returns --root when set, otherwise the discovered workspace
// root, otherwise the current directory.
func workspaceRoot() (string, error) {
	if rootDir != "" {
		abs, err := filepath.Abs(rootDir)
		if err != nil {
			return "", fmt.Errorf("failed to resolve root: %w", err)
		}
		return abs, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	root, err := gitx.NewRealGitRepo(config.FileName).Discover(cwd)
	if errors.Is(err, gitx.ErrNoWorkspace) {
		return cwd, nil
	}
	return root, err
}

// targetArg turns a command-line target into what the engine resolves. A
// path that exists relative to the current directory is made absolute;
// anything else (a package name, a root-relative path) is passed through.
func targetArg(args []string) string {
	if len(args) == 0 {
		if cwd, err := os.Getwd(); err == nil {
			return cwd
		}
		return "."
	}
	target := args[0]
	if filepath.IsAbs(target) {
		return target
	}
	if _, err := os.Stat(target); err == nil {
		if abs, err := filepath.Abs(target); err == nil {
			return abs
		}
	}
	return target
}

// newLogger creates and configures a new slog.Logger instance. It does not
// set the global logger.
func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if formatStr == "json" {
		handler = slog.NewJSONHandler(outW, handlerOpts)
	} else {
		handler = slog.NewTextHandler(outW, handlerOpts)
	}
	return slog.New(handler)
}

// FormatError formats an error for display.
func FormatError(err error) string {
	return errorColor.Sprintf("Error: %v", err)
}

// outputJSON writes a value as indented JSON.
func outputJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
