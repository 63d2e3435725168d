package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/importsync/internal/gitx"
	"github.com/danieljhkim/importsync/internal/workspace"
)

var packagesCmd = &cobra.Command{
	Use:   "packages",
	Short: "List the local packages of the workspace",
	Long: `List every manifest under the workspace root that declares a name and exports,
with its classification as a runtime or a library package.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, ctx, err := newEngine(cmd)
		if err != nil {
			return err
		}

		packages, err := eng.Discover(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			if packages == nil {
				packages = []*workspace.Package{}
			}
			return outputJSON(out, packages)
		}

		PrintSection(out, "Local packages")
		if len(packages) == 0 {
			PrintEmptyState(out, "No local packages found")
			return nil
		}

		finder := gitx.NewRealGitRepo()
		rows := make([][]string, 0, len(packages))
		for _, p := range packages {
			dir := p.Dir
			if rel, err := finder.RelPath(eng.Root(), p.Dir); err == nil {
				dir = filepath.ToSlash(rel)
			}
			exports := 0
			if p.Exports != nil {
				exports = p.Exports.Len()
			}
			rows = append(rows, []string{p.Name, string(p.Kind), dir, PrintCount(exports, "export", "exports")})
		}
		PrintTable(out, []string{"NAME", "KIND", "DIR", "EXPORTS"}, rows)
		return nil
	},
}
