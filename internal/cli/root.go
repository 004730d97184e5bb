package cli

import (
	"fmt"
	"os"

	"github.com/mvp-joe/folio/internal/config"
	"github.com/mvp-joe/folio/internal/indexer"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	rootDir string
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "Folio - content index builder for flat-file sites",
	Long: `Folio scans a flat-file content tree, validates every item and
compiles the content index, taxonomy index and route table into a cache
that the site reads at request time.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootDir, "root", "r", ".", "site root directory")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "settings file (default is <root>/app/config/folio.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadSite resolves the site from the global flags and builds the logger
// its log settings ask for.
func loadSite(cmd *cobra.Command) (*config.Site, *logrus.Logger, error) {
	site, err := config.LoadSite(rootDir, cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return site, newLogger(cmd, site.Config.Log), nil
}

func newLogger(cmd *cobra.Command, cfg config.LogConfig) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(cmd.ErrOrStderr())

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	if verbose {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}

// openIndexer loads the site and creates an indexer for it.
func openIndexer(cmd *cobra.Command, opts indexer.Options) (*indexer.Indexer, *logrus.Logger, error) {
	site, logger, err := loadSite(cmd)
	if err != nil {
		return nil, nil, err
	}
	if opts.Logger == nil {
		opts.Logger = logger
	}
	ix, err := indexer.New(site, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create indexer: %w", err)
	}
	return ix, logger, nil
}
