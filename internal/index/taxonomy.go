package index

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mvp-joe/folio/internal/config"
	"github.com/mvp-joe/folio/internal/content"
	"github.com/mvp-joe/folio/internal/scanner"
	"gopkg.in/yaml.v3"
)

// Registry keys that map onto Term attributes. count and items are always
// derived from content and ignored when present in a registry.
const (
	registrySlug        = "slug"
	registryName        = "name"
	registryDescription = "description"
	registryCount       = "count"
	registryItems       = "items"
)

func (b *Builder) buildTaxonomies(results []*scanner.TypeResult, problems *[]scanner.Problem) TaxonomyIndex {
	idx := make(TaxonomyIndex, len(b.site.Taxonomies))
	for _, tax := range b.site.Taxonomies {
		idx[tax.Name] = &TaxonomyEntry{
			Config: TaxonomyInfo{
				Name:         tax.Name,
				Label:        tax.Label,
				Hierarchical: tax.Hierarchical,
				Public:       tax.IsPublic(),
				Base:         tax.Base(),
			},
			Terms: make(map[string]*Term),
		}
	}

	for _, tr := range results {
		for _, e := range tr.Entries {
			if e.DuplicateSlug || !e.Item.IsPublished() {
				continue
			}
			for _, tax := range b.site.Taxonomies {
				if !tr.Type.HasTaxonomy(tax.Name) {
					continue
				}
				entry := idx[tax.Name]
				for _, slug := range e.Item.TermsFor(tax.Name) {
					term, ok := entry.Terms[slug]
					if !ok {
						term = &Term{Slug: slug, Name: content.Humanize(slug)}
						entry.Terms[slug] = term
					}
					term.Count++
					term.Items = append(term.Items, e.Item.Key())
				}
			}
		}
	}

	for _, tax := range b.site.Taxonomies {
		path := b.site.RegistryPath(tax.Name)
		if path == "" {
			continue
		}
		if err := mergeRegistry(idx[tax.Name], path); err != nil {
			rel, _ := filepath.Rel(b.site.ContentDir(), path)
			*problems = append(*problems, scanner.Problem{
				Path:    filepath.ToSlash(rel),
				Kind:    scanner.KindRegistry,
				Message: err.Error(),
			})
			b.log.WithField("taxonomy", tax.Name).WithError(err).Warn("term registry skipped")
		}
	}

	return idx
}

// mergeRegistry overlays registry metadata onto derived terms and adds
// registry-only terms with a zero count.
func mergeRegistry(entry *TaxonomyEntry, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("unreadable term registry: %w", err)
	}

	var records []content.Fields
	if err := yaml.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("invalid term registry: %w", err)
	}

	for _, rec := range records {
		slug := strings.TrimSpace(rec.String(registrySlug))
		if slug == "" {
			continue
		}

		term, ok := entry.Terms[slug]
		if !ok {
			term = &Term{Slug: slug, Name: content.Humanize(slug), Items: []string{}}
			entry.Terms[slug] = term
		}

		for _, f := range rec.List() {
			switch f.Name {
			case registrySlug, registryCount, registryItems:
			case registryName:
				if name := rec.String(registryName); name != "" {
					term.Name = name
				}
			case registryDescription:
				term.Description = rec.String(registryDescription)
			default:
				term.Meta.Set(f.Name, f.Value)
			}
		}
	}
	return nil
}
