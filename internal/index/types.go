// Package index builds the content index, taxonomy index and route table
// from one complete scan of the content tree.
package index

import (
	"time"

	"github.com/mvp-joe/folio/internal/content"
)

// ItemData is the persisted projection of a content item.
type ItemData struct {
	ID           string              `json:"id,omitempty"`
	Slug         string              `json:"slug"`
	Type         string              `json:"type"`
	Title        string              `json:"title"`
	Date         *time.Time          `json:"date,omitempty"`
	Status       content.Status      `json:"status"`
	Excerpt      string              `json:"excerpt,omitempty"`
	Template     string              `json:"template"`
	URL          string              `json:"url"`
	RedirectFrom []string            `json:"redirect_from,omitempty"`
	Terms        map[string][]string `json:"terms,omitempty"`
	Fields       content.Fields      `json:"fields"`
	RawBody      string              `json:"raw_body"`

	// Path is relative to the content root; FilePath is absolute.
	Path     string    `json:"path"`
	FilePath string    `json:"file_path"`
	ModTime  time.Time `json:"mod_time"`
}

// Key returns the "type:slug" reference.
func (d *ItemData) Key() string {
	return d.Type + ":" + d.Slug
}

// ContentIndex holds four views of the same item set.
type ContentIndex struct {
	ByType map[string]map[string]*ItemData `json:"by_type"`
	BySlug map[string]*ItemData            `json:"by_slug"` // "type:slug"
	ByID   map[string]*ItemData            `json:"by_id"`
	ByPath map[string]*ItemData            `json:"by_path"`

	// Order lists each type's slugs by the type's sorting policy.
	Order map[string][]string `json:"order"`
}

// Items returns a type's items in sort order.
func (ci *ContentIndex) Items(typeName string) []*ItemData {
	slugs := ci.Order[typeName]
	items := make([]*ItemData, 0, len(slugs))
	for _, slug := range slugs {
		if item, ok := ci.ByType[typeName][slug]; ok {
			items = append(items, item)
		}
	}
	return items
}

// Term is one taxonomy value.
type Term struct {
	Slug        string         `json:"slug"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Count       int            `json:"count"`
	Items       []string       `json:"items"` // "type:slug" references
	Meta        content.Fields `json:"meta"`  // extra registry keys
}

// TaxonomyInfo is the taxonomy configuration carried in the index.
type TaxonomyInfo struct {
	Name         string `json:"name"`
	Label        string `json:"label"`
	Hierarchical bool   `json:"hierarchical"`
	Public       bool   `json:"public"`
	Base         string `json:"base"`
}

// TaxonomyEntry holds one taxonomy's terms.
type TaxonomyEntry struct {
	Config TaxonomyInfo     `json:"config"`
	Terms  map[string]*Term `json:"terms"`
}

// TermSlugs returns term slugs sorted lexically.
func (e *TaxonomyEntry) TermSlugs() []string {
	return sortedKeys(e.Terms)
}

// TaxonomyIndex maps taxonomy name to its entry.
type TaxonomyIndex map[string]*TaxonomyEntry

// RouteType distinguishes item pages from archives.
type RouteType string

const (
	RouteSingle  RouteType = "single"
	RouteArchive RouteType = "archive"
)

// Route describes how to serve an exact path.
type Route struct {
	Type        RouteType `json:"type"`
	ContentType string    `json:"content_type"`
	Slug        string    `json:"slug,omitempty"`
	Template    string    `json:"template"`
	// Source is the content-relative file that produced a single route.
	Source string `json:"source,omitempty"`
}

// RedirectPermanent is the status code used for redirect_from aliases.
const RedirectPermanent = 301

// Redirect sends a legacy path to a canonical URL.
type Redirect struct {
	To     string `json:"to"`
	Status int    `json:"status"`
}

// TaxonomyRoute is the archive base of a public taxonomy.
type TaxonomyRoute struct {
	Base         string `json:"base"`
	Hierarchical bool   `json:"hierarchical"`
}

// RouteTable is the compiled routing data.
type RouteTable struct {
	Exact     map[string]Route         `json:"exact"`
	Redirects map[string]Redirect      `json:"redirects"`
	Patterns  map[string]Route         `json:"patterns"` // reserved for dynamic matching
	Taxonomy  map[string]TaxonomyRoute `json:"taxonomy"`
}

// Paths returns exact route paths sorted lexically.
func (rt *RouteTable) Paths() []string {
	return sortedKeys(rt.Exact)
}
