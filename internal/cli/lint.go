package cli

import (
	"fmt"

	"github.com/mvp-joe/folio/internal/indexer"
	"github.com/spf13/cobra"
)

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Validate content without writing the cache",
	Long: `Lint parses and validates every content file and reports parse errors,
validation errors and duplicate slugs or ids. The cache is not touched.

Route collisions are only detected by a rebuild.

Exits with status 1 when any problem is found.`,
	RunE: runLint,
}

func init() {
	rootCmd.AddCommand(lintCmd)
}

func runLint(cmd *cobra.Command, args []string) error {
	ix, _, err := openIndexer(cmd, indexer.Options{DisableErrorLog: true})
	if err != nil {
		return err
	}
	defer ix.Close()

	problems, err := ix.Lint(cmd.Context())
	if err != nil {
		return fmt.Errorf("lint failed: %w", err)
	}

	if len(problems) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "✓ No problems found")
		return nil
	}

	printProblems(cmd, problems)
	return fmt.Errorf("%d problem(s) found", len(problems))
}
