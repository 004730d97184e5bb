package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mvp-joe/folio/internal/indexer"
	"github.com/mvp-joe/folio/internal/scanner"
	"github.com/spf13/cobra"
)

var (
	quietFlag  bool
	strictFlag bool
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the content cache",
	Long: `Rebuild scans every content type, validates each item and writes a new
cache generation: content index, taxonomy index, route table and fingerprint.

Items with problems are reported and skipped; the rebuild itself only fails
on configuration or filesystem errors, in which case the previous cache
stays in place.

Examples:
  # Rebuild the site in the current directory
  folio rebuild

  # Rebuild another site, printing only a one-line summary
  folio rebuild --root /srv/site --quiet

  # Fail when any item has problems (useful in CI)
  folio rebuild --strict
`,
	RunE: runRebuild,
}

func init() {
	rootCmd.AddCommand(rebuildCmd)
	rebuildCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Replace progress output with a one-line summary")
	rebuildCmd.Flags().BoolVar(&strictFlag, "strict", false, "Exit non-zero when any problem is found")
}

func runRebuild(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ix, _, err := openIndexer(cmd, indexer.Options{
		Progress: NewCLIProgressReporter(cmd.ErrOrStderr(), quietFlag),
	})
	if err != nil {
		return err
	}
	defer ix.Close()

	stats, err := ix.Rebuild(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("rebuild cancelled")
		}
		return fmt.Errorf("rebuild failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(stats.Problems) > 0 {
		printProblems(cmd, stats.Problems)
	}
	if quietFlag {
		fmt.Fprintf(out, "Rebuild complete: %d items in %.2fs\n", stats.Items, stats.Duration.Seconds())
	}

	if strictFlag && len(stats.Problems) > 0 {
		return fmt.Errorf("%d problem(s) found", len(stats.Problems))
	}
	return nil
}

func printProblems(cmd *cobra.Command, problems []scanner.Problem) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Problems (%d):\n", len(problems))
	for _, p := range problems {
		fmt.Fprintf(out, "  [%s] %s\n", p.Kind, p)
	}
}
