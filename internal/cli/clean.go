package cli

import (
	"fmt"
	"os"

	"github.com/mvp-joe/folio/internal/indexer"
	"github.com/spf13/cobra"
)

var (
	cleanQuietFlag bool
	cleanLogsFlag  bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the content cache to force a full rebuild",
	Long: `Clean removes every cache generation from the storage directory.
The next request or 'folio rebuild' starts from scratch.

Content and configuration are never touched. Use --logs to also remove
the rebuild problem log.

Examples:
  # Remove the cache
  folio clean

  # Remove the cache and indexer.log
  folio clean --logs
`,
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().BoolVarP(&cleanQuietFlag, "quiet", "q", false, "Suppress output messages")
	cleanCmd.Flags().BoolVar(&cleanLogsFlag, "logs", false, "Also remove the rebuild problem log")
}

func runClean(cmd *cobra.Command, args []string) error {
	ix, _, err := openIndexer(cmd, indexer.Options{})
	if err != nil {
		return err
	}
	defer ix.Close()

	freed, err := ix.Clean()
	if err != nil {
		return fmt.Errorf("failed to clean cache: %w", err)
	}

	if cleanLogsFlag {
		if err := os.RemoveAll(ix.Site().LogDir()); err != nil {
			return fmt.Errorf("failed to remove logs: %w", err)
		}
	}

	if cleanQuietFlag {
		return nil
	}
	out := cmd.OutOrStdout()
	if freed > 0 {
		fmt.Fprintf(out, "✓ Cleaned cache (~%.1f KB)\n", float64(freed)/1024)
	} else {
		fmt.Fprintln(out, "No cache found")
	}
	fmt.Fprintln(out, "Next 'folio rebuild' will rebuild from scratch")
	return nil
}
