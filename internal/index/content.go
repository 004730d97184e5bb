package index

import (
	"cmp"
	"slices"
	"strings"

	"github.com/mvp-joe/folio/internal/config"
	"github.com/mvp-joe/folio/internal/scanner"
)

// buildContent fills all four tables in one pass over the entries.
// Entries that lost a slug collision stay out of the slug-keyed tables and
// entries that lost an id collision stay out of by_id.
func (b *Builder) buildContent(results []*scanner.TypeResult, items map[string]*ItemData) *ContentIndex {
	ci := &ContentIndex{
		ByType: make(map[string]map[string]*ItemData, len(results)),
		BySlug: make(map[string]*ItemData),
		ByID:   make(map[string]*ItemData),
		ByPath: make(map[string]*ItemData, len(items)),
		Order:  make(map[string][]string, len(results)),
	}

	for _, tr := range results {
		name := tr.Type.Name
		byType := make(map[string]*ItemData, len(tr.Entries))
		var ordered []*ItemData

		for _, e := range tr.Entries {
			data := items[e.Path]
			ci.ByPath[e.Path] = data

			if data.ID != "" && !e.DuplicateID {
				ci.ByID[data.ID] = data
			}
			if e.DuplicateSlug {
				continue
			}
			byType[data.Slug] = data
			ci.BySlug[data.Key()] = data
			ordered = append(ordered, data)
		}

		ci.ByType[name] = byType
		sortItems(ordered, tr.Type.Sorting)

		slugs := make([]string, len(ordered))
		for i, data := range ordered {
			slugs[i] = data.Slug
		}
		ci.Order[name] = slugs
	}

	return ci
}

// sortItems orders items in place. Ties keep path order.
func sortItems(items []*ItemData, sorting config.Sorting) {
	switch sorting {
	case config.SortDateDesc:
		slices.SortStableFunc(items, func(a, b *ItemData) int { return compareDates(a, b, true) })
	case config.SortDateAsc:
		slices.SortStableFunc(items, func(a, b *ItemData) int { return compareDates(a, b, false) })
	case config.SortTitleAsc:
		slices.SortStableFunc(items, func(a, b *ItemData) int { return compareTitles(a, b) })
	case config.SortTitleDesc:
		slices.SortStableFunc(items, func(a, b *ItemData) int { return compareTitles(b, a) })
	}
}

// compareDates puts undated items last in either direction.
func compareDates(a, b *ItemData, desc bool) int {
	switch {
	case a.Date == nil && b.Date == nil:
		return 0
	case a.Date == nil:
		return 1
	case b.Date == nil:
		return -1
	}
	c := a.Date.Compare(*b.Date)
	if desc {
		return -c
	}
	return c
}

func compareTitles(a, b *ItemData) int {
	return cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
}
