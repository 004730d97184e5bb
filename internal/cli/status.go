package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/mvp-joe/folio/internal/cache"
	"github.com/mvp-joe/folio/internal/content"
	"github.com/mvp-joe/folio/internal/indexer"
	"github.com/spf13/cobra"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show cache status",
	Long: `Show the state of the content cache.

Displays:
- Cache state (unbuilt, fresh, stale or rebuilding)
- Generation, build time and format of the current cache
- Item counts per content type (total, published, drafts)
- Term counts per taxonomy`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output as JSON")
}

// statusReport is the status command output.
type statusReport struct {
	State      string          `json:"state"`
	Generation string          `json:"generation,omitempty"`
	BuiltAt    *time.Time      `json:"built_at,omitempty"`
	Format     string          `json:"format,omitempty"`
	Problems   int             `json:"problems"`
	Types      []typeCounts    `json:"types,omitempty"`
	Taxonomies []taxonomyTerms `json:"taxonomies,omitempty"`
}

type typeCounts struct {
	Name      string `json:"name"`
	Total     int    `json:"total"`
	Published int    `json:"published"`
	Drafts    int    `json:"drafts"`
	Unlisted  int    `json:"unlisted"`
}

type taxonomyTerms struct {
	Name  string `json:"name"`
	Terms int    `json:"terms"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	ix, logger, err := openIndexer(cmd, indexer.Options{})
	if err != nil {
		return err
	}
	defer ix.Close()

	report := statusReport{State: ix.State(cmd.Context()).String()}

	if report.State != indexer.StateUnbuilt.String() {
		if snap, err := ix.Load(); err != nil {
			logger.WithError(err).Warn("cache unreadable")
		} else {
			fillReport(&report, ix, snap)
		}
	}

	if statusJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	formatStatus(cmd.OutOrStdout(), &report)
	return nil
}

func fillReport(report *statusReport, ix *indexer.Indexer, snap *cache.Snapshot) {
	site := ix.Site()

	report.Generation = snap.Stamp.Generation
	built := snap.Stamp.BuiltAt
	report.BuiltAt = &built
	report.Format = snap.Stamp.Format
	report.Problems = snap.Stamp.Problems

	counts := make(map[string]*typeCounts, len(site.Types))
	for _, ct := range site.Types {
		tc := &typeCounts{Name: ct.Name}
		counts[ct.Name] = tc
		report.Types = append(report.Types, *tc)
	}
	for _, item := range snap.Content.ByPath {
		tc, ok := counts[item.Type]
		if !ok {
			continue
		}
		tc.Total++
		switch item.Status {
		case content.StatusPublished:
			tc.Published++
		case content.StatusDraft:
			tc.Drafts++
		case content.StatusUnlisted:
			tc.Unlisted++
		}
	}
	for i := range report.Types {
		report.Types[i] = *counts[report.Types[i].Name]
	}

	for _, tax := range site.Taxonomies {
		n := 0
		if entry, ok := snap.Taxonomies[tax.Name]; ok {
			n = len(entry.Terms)
		}
		report.Taxonomies = append(report.Taxonomies, taxonomyTerms{Name: tax.Name, Terms: n})
	}
}

func formatStatus(out io.Writer, r *statusReport) {
	fmt.Fprintln(out, "Cache Status:")
	fmt.Fprintf(out, "  State:      %s\n", r.State)
	if r.BuiltAt == nil {
		fmt.Fprintln(out, "\nRun 'folio rebuild' to build the cache.")
		return
	}
	fmt.Fprintf(out, "  Generation: %s\n", r.Generation)
	fmt.Fprintf(out, "  Built:      %s (%s)\n", r.BuiltAt.Local().Format(time.DateTime), formatTimeSince(r.BuiltAt.Unix()))
	fmt.Fprintf(out, "  Format:     %s\n", r.Format)
	fmt.Fprintf(out, "  Problems:   %s\n", formatNumber(r.Problems))
	fmt.Fprintln(out)

	fmt.Fprintf(out, "Content Types (%d):\n", len(r.Types))
	for _, tc := range r.Types {
		fmt.Fprintf(out, "  %-12s %s total, %s published, %s drafts",
			tc.Name, formatNumber(tc.Total), formatNumber(tc.Published), formatNumber(tc.Drafts))
		if tc.Unlisted > 0 {
			fmt.Fprintf(out, ", %s unlisted", formatNumber(tc.Unlisted))
		}
		fmt.Fprintln(out)
	}

	if len(r.Taxonomies) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Taxonomies (%d):\n", len(r.Taxonomies))
		for _, tx := range r.Taxonomies {
			fmt.Fprintf(out, "  %-12s %s terms\n", tx.Name, formatNumber(tx.Terms))
		}
	}
}

// formatDuration formats a duration in compact format.
// Examples: "5s", "1m", "1h 30m", "2h", "1d", "1d 3h", "3d"
func formatDuration(d time.Duration) string {
	seconds := int(d.Seconds())

	days := seconds / 86400
	hours := (seconds % 86400) / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	if days > 0 {
		if hours > 0 {
			return fmt.Sprintf("%dd %dh", days, hours)
		}
		return fmt.Sprintf("%dd", days)
	}

	if hours > 0 {
		if minutes > 0 {
			return fmt.Sprintf("%dh %dm", hours, minutes)
		}
		return fmt.Sprintf("%dh", hours)
	}

	if minutes > 0 {
		return fmt.Sprintf("%dm", minutes)
	}

	return fmt.Sprintf("%ds", secs)
}

// formatTimeSince formats a Unix timestamp as time ago.
// Examples: "5m ago", "2h ago", "3d ago"
func formatTimeSince(unixSeconds int64) string {
	if unixSeconds == 0 {
		return "never"
	}
	return formatDuration(time.Since(time.Unix(unixSeconds, 0))) + " ago"
}

// formatNumber formats integer with thousand separators.
// Examples: 1234 -> "1,234", 1234567 -> "1,234,567"
func formatNumber(n int) string {
	str := fmt.Sprintf("%d", n)
	if n < 1000 {
		return str
	}

	var result string
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(c)
	}
	return result
}
