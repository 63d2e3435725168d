package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/importsync/internal/engine"
	"github.com/danieljhkim/importsync/internal/gitx"
)

var localCmd = newSyncCmd(engine.ModeLocal,
	"Point imports of workspace packages at local sources",
	`Rewrite the imports of every deno.jsonc manifest under the target so that
imports of packages that live in this workspace resolve to their source files
by relative path. The original imports are kept in a comment block right after
the rewritten ones; "importsync remote" puts them back.

The target is a package name, a manifest path, or a directory (default: the
current directory). Running local mode again regenerates the block from the
preserved original.`)

var remoteCmd = newSyncCmd(engine.ModeRemote,
	"Restore registry imports preserved by local mode",
	`Restore the imports block preserved by a previous "importsync local" run and
remove the comment block. Manifests that were never switched to local mode are
skipped.

The target is a package name, a manifest path, or a directory (default: the
current directory).`)

func newSyncCmd(mode engine.Mode, short, long string) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   string(mode) + " [target]",
		Short: short,
		Long:  long,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, ctx, err := newEngine(cmd)
			if err != nil {
				return err
			}

			req := &engine.SyncRequest{
				Mode:   mode,
				Target: targetArg(args),
				DryRun: dryRun,
			}

			result, err := eng.Sync(ctx, req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				if err := outputJSON(out, result); err != nil {
					return err
				}
			} else {
				printSyncResult(cmd, eng.Root(), mode, dryRun, result)
			}

			if failed := result.Counts()[engine.StatusFailed]; failed > 0 {
				return fmt.Errorf("%d of %d manifests failed", failed, len(result.Targets))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would change without writing files")
	return cmd
}

func printSyncResult(cmd *cobra.Command, root string, mode engine.Mode, dryRun bool, result *engine.SyncResult) {
	out := cmd.OutOrStdout()
	finder := gitx.NewRealGitRepo()

	title := fmt.Sprintf("%s mode", mode)
	if dryRun {
		title += " (dry run)"
	}
	PrintSection(out, title)

	for _, tr := range result.Targets {
		path := tr.ConfigPath
		if rel, err := finder.RelPath(root, path); err == nil {
			path = filepath.ToSlash(rel)
		}
		PrintTargetResult(out, path, tr)
	}

	counts := result.Counts()
	_, _ = fmt.Fprintln(out)
	PrintInfo(out, fmt.Sprintf("%s across %s: %d updated, %d unchanged, %d skipped, %d failed",
		PrintCount(len(result.Targets), "manifest", "manifests"),
		PrintCount(len(result.LocalPackages), "local package", "local packages"),
		counts[engine.StatusUpdated],
		counts[engine.StatusUnchanged],
		counts[engine.StatusSkipped],
		counts[engine.StatusFailed]))
}
