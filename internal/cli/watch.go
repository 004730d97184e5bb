package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mvp-joe/folio/internal/indexer"
	"github.com/mvp-joe/folio/internal/watcher"
	"github.com/spf13/cobra"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild the cache whenever content or configuration changes",
	Long: `Watch brings the cache up to date, then watches the content and config
directories and rebuilds after each burst of changes. Stop with Ctrl+C.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watcher.DefaultDebounce, "Quiet period before rebuilding")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ix, logger, err := openIndexer(cmd, indexer.Options{})
	if err != nil {
		return err
	}
	defer ix.Close()
	site := ix.Site()

	if ix.State(ctx) != indexer.StateFresh {
		stats, err := ix.Rebuild(ctx)
		if err != nil {
			return fmt.Errorf("initial rebuild failed: %w", err)
		}
		logger.WithField("items", stats.Items).Info("initial rebuild complete")
	}

	dirs := []string{site.ConfigDir()}
	if _, err := os.Stat(site.ContentDir()); err == nil {
		dirs = append(dirs, site.ContentDir())
	}
	fw, err := watcher.NewFileWatcher(dirs, watcher.Options{
		Extensions: []string{site.Config.Content.Extension, ".yml", ".yaml"},
		Debounce:   watchDebounce,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	logger.WithField("dirs", dirs).Info("watching for changes")
	return watcher.NewCoordinator(fw, ix, logger).Run(ctx)
}
