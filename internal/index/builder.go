package index

import (
	"maps"
	"slices"

	"github.com/mvp-joe/folio/internal/config"
	"github.com/mvp-joe/folio/internal/scanner"
	"github.com/sirupsen/logrus"
)

// Result is the output of one build.
type Result struct {
	Content    *ContentIndex
	Taxonomies TaxonomyIndex
	Routes     *RouteTable
	// Problems found while building: route collisions and registry errors.
	Problems []scanner.Problem
}

// Builder turns scan results into the three derived structures.
type Builder struct {
	site *config.Site
	log  logrus.FieldLogger
}

// NewBuilder creates a builder for the site.
func NewBuilder(site *config.Site, logger logrus.FieldLogger) *Builder {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Builder{site: site, log: logger}
}

// Build derives every structure from the same entry set. results must be
// in content type declaration order with entries in path order.
func (b *Builder) Build(results []*scanner.TypeResult) *Result {
	items := b.project(results)

	res := &Result{
		Content: b.buildContent(results, items),
	}
	res.Taxonomies = b.buildTaxonomies(results, &res.Problems)
	res.Routes = b.buildRoutes(results, items, &res.Problems)

	b.log.WithFields(logrus.Fields{
		"items":      len(res.Content.ByPath),
		"routes":     len(res.Routes.Exact),
		"redirects":  len(res.Routes.Redirects),
		"taxonomies": len(res.Taxonomies),
		"problems":   len(res.Problems),
	}).Debug("index built")

	return res
}

// project converts every entry to ItemData once, keyed by content path,
// so all tables share one value per item.
func (b *Builder) project(results []*scanner.TypeResult) map[string]*ItemData {
	items := make(map[string]*ItemData)
	for _, tr := range results {
		for _, e := range tr.Entries {
			item := e.Item
			items[e.Path] = &ItemData{
				ID:           item.ID,
				Slug:         item.Slug,
				Type:         item.Type,
				Title:        item.Title,
				Date:         item.Date,
				Status:       item.Status,
				Excerpt:      item.Excerpt,
				Template:     tr.Type.SingleTemplate(item.Template),
				URL:          tr.Type.Scheme.URL(item, e.RelPath),
				RedirectFrom: item.RedirectFrom,
				Terms:        item.Terms,
				Fields:       item.Fields,
				RawBody:      item.RawBody,
				Path:         e.Path,
				FilePath:     item.FilePath,
				ModTime:      item.ModTime,
			}
		}
	}
	return items
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
