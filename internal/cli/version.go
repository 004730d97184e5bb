package cli

import (
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/mvp-joe/folio/internal/cache/codec"
	"github.com/spf13/cobra"
)

// Version is overridden at link time with -ldflags "-X ...cli.Version=v1.2.0".
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the Folio version and supported cache formats",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Folio %s\n", buildVersion())
		if rev := buildRevision(); rev != "" {
			fmt.Fprintf(out, "Revision: %s\n", rev)
		}

		var names []string
		for _, f := range codec.All() {
			names = append(names, f.Name())
		}
		fmt.Fprintf(out, "Cache formats: %s (default %s)\n", strings.Join(names, ", "), codec.Default.Name())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// buildVersion prefers the linked Version, then the module version recorded
// by go install.
func buildVersion() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}

func buildRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	var rev, dirty string
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			if s.Value == "true" {
				dirty = "-dirty"
			}
		}
	}
	if rev == "" {
		return ""
	}
	if len(rev) > 12 {
		rev = rev[:12]
	}
	return rev + dirty
}
