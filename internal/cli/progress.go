package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/mvp-joe/folio/internal/indexer"
	"github.com/schollz/progressbar/v3"
)

// CLIProgressReporter implements progress reporting with progress bars.
type CLIProgressReporter struct {
	out     io.Writer
	quiet   bool
	fileBar *progressbar.ProgressBar
}

// NewCLIProgressReporter creates a new CLI progress reporter writing to out.
func NewCLIProgressReporter(out io.Writer, quiet bool) *CLIProgressReporter {
	return &CLIProgressReporter{out: out, quiet: quiet}
}

func (c *CLIProgressReporter) OnDiscoveryStart() {
	if c.quiet {
		return
	}
	fmt.Fprintln(c.out, "Discovering content...")
}

func (c *CLIProgressReporter) OnDiscoveryComplete(totalFiles int) {
	if c.quiet {
		return
	}
	fmt.Fprintf(c.out, "Found %s content files\n", formatNumber(totalFiles))
}

func (c *CLIProgressReporter) OnFileProcessingStart(totalFiles int) {
	if c.quiet || totalFiles == 0 {
		return
	}
	c.fileBar = progressbar.NewOptions(totalFiles,
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetDescription("Scanning files"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(c.out)
		}),
	)
}

// OnFileProcessed is safe for concurrent use; the bar serializes updates.
func (c *CLIProgressReporter) OnFileProcessed(path string) {
	if c.quiet || c.fileBar == nil {
		return
	}
	c.fileBar.Add(1)
}

func (c *CLIProgressReporter) OnWriting() {
	if c.quiet {
		return
	}
	if c.fileBar != nil {
		c.fileBar.Finish()
		c.fileBar = nil
	}
	fmt.Fprintln(c.out, "Writing cache...")
}

func (c *CLIProgressReporter) OnComplete(stats *indexer.Stats) {
	if c.quiet {
		return
	}
	fmt.Fprintln(c.out)
	fmt.Fprintf(c.out, "✓ Rebuild complete: %s items in %.2fs\n",
		formatNumber(stats.Items), stats.Duration.Seconds())
	fmt.Fprintf(c.out, "  Routes:     %s\n", formatNumber(stats.Routes))
	fmt.Fprintf(c.out, "  Problems:   %s\n", formatNumber(len(stats.Problems)))
	fmt.Fprintf(c.out, "  Generation: %s\n", stats.Generation)
}
