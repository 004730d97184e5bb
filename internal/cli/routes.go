package cli

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/mvp-joe/folio/internal/index"
	"github.com/mvp-joe/folio/internal/indexer"
	"github.com/spf13/cobra"
)

var (
	routesJSON bool
	routesType string
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "List the compiled route table",
	Long: `Routes prints every exact route, redirect and taxonomy route from the
cache. The cache is brought up to date first according to cache.mode.

Examples:
  # All routes
  folio routes

  # Routes of one content type as JSON
  folio routes --type post --json
`,
	RunE: runRoutes,
}

func init() {
	rootCmd.AddCommand(routesCmd)
	routesCmd.Flags().BoolVar(&routesJSON, "json", false, "Output as JSON")
	routesCmd.Flags().StringVarP(&routesType, "type", "t", "", "Only routes of this content type")
}

func runRoutes(cmd *cobra.Command, args []string) error {
	ix, _, err := openIndexer(cmd, indexer.Options{})
	if err != nil {
		return err
	}
	defer ix.Close()

	if _, err := ix.EnsureFresh(cmd.Context()); err != nil {
		return fmt.Errorf("failed to refresh cache: %w", err)
	}
	snap, err := ix.Load()
	if err != nil {
		return fmt.Errorf("failed to read cache: %w", err)
	}

	routes := filterRoutes(snap.Routes, routesType)

	if routesJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(routes)
	}
	formatRoutes(cmd, routes)
	return nil
}

// filterRoutes keeps routes of one content type, or everything when
// contentType is empty. Redirects follow their target route.
func filterRoutes(rt *index.RouteTable, contentType string) *index.RouteTable {
	if contentType == "" {
		return rt
	}

	out := &index.RouteTable{
		Exact:     make(map[string]index.Route),
		Redirects: make(map[string]index.Redirect),
		Patterns:  rt.Patterns,
		Taxonomy:  make(map[string]index.TaxonomyRoute),
	}
	for path, r := range rt.Exact {
		if r.ContentType == contentType {
			out.Exact[path] = r
		}
	}
	for from, r := range rt.Redirects {
		if _, ok := out.Exact[r.To]; ok {
			out.Redirects[from] = r
		}
	}
	return out
}

func formatRoutes(cmd *cobra.Command, rt *index.RouteTable) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "Routes (%d):\n", len(rt.Exact))
	for _, path := range rt.Paths() {
		r := rt.Exact[path]
		target := r.ContentType
		if r.Slug != "" {
			target += ":" + r.Slug
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", path, r.Type, target, r.Template)
	}

	if len(rt.Redirects) > 0 {
		fmt.Fprintf(w, "\nRedirects (%d):\n", len(rt.Redirects))
		for _, from := range slices.Sorted(maps.Keys(rt.Redirects)) {
			r := rt.Redirects[from]
			fmt.Fprintf(w, "  %s\t→ %s\t%d\n", from, r.To, r.Status)
		}
	}

	if len(rt.Taxonomy) > 0 {
		fmt.Fprintf(w, "\nTaxonomies (%d):\n", len(rt.Taxonomy))
		for _, name := range slices.Sorted(maps.Keys(rt.Taxonomy)) {
			r := rt.Taxonomy[name]
			kind := "flat"
			if r.Hierarchical {
				kind = "hierarchical"
			}
			fmt.Fprintf(w, "  %s\t%s/{term}\t%s\n", name, strings.TrimSuffix(r.Base, "/"), kind)
		}
	}
}
