package index

import (
	"fmt"
	"strings"

	"github.com/mvp-joe/folio/internal/config"
	"github.com/mvp-joe/folio/internal/permalink"
	"github.com/mvp-joe/folio/internal/scanner"
)

// buildRoutes registers exact routes, then redirects, then taxonomy bases.
// The first claim on a path wins; content types are visited in declaration
// order, items in path order, and a type's archive after its items. Every
// later claim is reported as a route collision.
func (b *Builder) buildRoutes(results []*scanner.TypeResult, items map[string]*ItemData, problems *[]scanner.Problem) *RouteTable {
	rt := &RouteTable{
		Exact:     make(map[string]Route),
		Redirects: make(map[string]Redirect),
		Patterns:  make(map[string]Route),
		Taxonomy:  make(map[string]TaxonomyRoute),
	}

	// owners names whoever claimed a path, for collision messages.
	owners := make(map[string]string)
	var routed []*ItemData

	for _, tr := range results {
		ct := tr.Type
		for _, e := range tr.Entries {
			if e.DuplicateSlug || !e.Item.IsPublished() {
				continue
			}
			data := items[e.Path]

			if owner, taken := owners[data.URL]; taken {
				*problems = append(*problems, collision(e.Path, data.URL, owner))
				continue
			}
			owners[data.URL] = e.Path
			rt.Exact[data.URL] = Route{
				Type:        RouteSingle,
				ContentType: ct.Name,
				Slug:        data.Slug,
				Template:    data.Template,
				Source:      e.Path,
			}
			routed = append(routed, data)
		}

		if ct.URL.Archive == "" {
			continue
		}
		archive := permalink.Clean(ct.URL.Archive)
		label := fmt.Sprintf("%s archive of %s", config.ContentTypesFile, ct.Name)
		if owner, taken := owners[archive]; taken {
			*problems = append(*problems, collision(label, archive, owner))
			continue
		}
		owners[archive] = label
		rt.Exact[archive] = Route{
			Type:        RouteArchive,
			ContentType: ct.Name,
			Template:    ct.ArchiveTemplate(),
		}
	}

	for _, data := range routed {
		for _, from := range data.RedirectFrom {
			if !strings.HasPrefix(from, "/") {
				continue
			}
			src := permalink.Clean(from)
			if src == data.URL {
				continue
			}
			if owner, taken := owners[src]; taken {
				*problems = append(*problems, scanner.Problem{
					Path:    data.Path,
					Kind:    scanner.KindRouteCollision,
					Message: fmt.Sprintf("Redirect %s already claimed by %s", src, owner),
					Related: owner,
				})
				continue
			}
			owners[src] = data.Path
			rt.Redirects[src] = Redirect{To: data.URL, Status: RedirectPermanent}
		}
	}

	for _, tax := range b.site.Taxonomies {
		if !tax.IsPublic() {
			continue
		}
		rt.Taxonomy[tax.Name] = TaxonomyRoute{
			Base:         tax.Base(),
			Hierarchical: tax.Hierarchical,
		}
	}

	return rt
}

func collision(path, url, owner string) scanner.Problem {
	return scanner.Problem{
		Path:    path,
		Kind:    scanner.KindRouteCollision,
		Message: fmt.Sprintf("Route %s already claimed by %s", url, owner),
		Related: owner,
	}
}
