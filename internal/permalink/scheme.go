// Package permalink computes canonical URLs for content items.
//
// A content type selects one Scheme when its configuration is loaded.
// URL is a pure function of the item and its path relative to the type
// directory, so any consumer that holds the same configuration can
// reproduce the URL without the index.
package permalink

import (
	"fmt"
	"path"
	"strings"

	"github.com/mvp-joe/folio/internal/content"
)

// Kind names a URL scheme in configuration.
type Kind string

const (
	KindHierarchical Kind = "hierarchical"
	KindPattern      Kind = "pattern"
)

// DefaultPattern is used when a pattern type declares no pattern.
const DefaultPattern = "/{slug}"

// Scheme is the closed set of URL policies. Implementations live in this
// package only.
type Scheme interface {
	// URL returns the canonical path for an item. relPath is slash-separated
	// and relative to the content type directory.
	URL(item *content.Item, relPath string) string
	Kind() Kind
	scheme()
}

// NewScheme resolves a configured URL policy.
func NewScheme(kind, base, pattern string) (Scheme, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(kind))) {
	case KindHierarchical:
		return Hierarchical{Base: base}, nil
	case KindPattern, "":
		if strings.TrimSpace(pattern) == "" {
			pattern = DefaultPattern
		}
		return Pattern{Pattern: pattern}, nil
	default:
		return nil, fmt.Errorf("unknown url type %q (valid: hierarchical, pattern)", kind)
	}
}

// Hierarchical mirrors the file's location inside the type directory.
// The extension is dropped and index/_index segments collapse into their
// directory, so "services/index.md" and "services.md" both map to /services.
type Hierarchical struct {
	Base string
}

func (Hierarchical) Kind() Kind { return KindHierarchical }
func (Hierarchical) scheme()    {}

func (h Hierarchical) URL(_ *content.Item, relPath string) string {
	rel := strings.TrimSuffix(relPath, path.Ext(relPath))

	var segments []string
	for _, seg := range strings.Split(rel, "/") {
		if seg == "" || seg == "." || content.IsIndexName(seg) {
			continue
		}
		segments = append(segments, seg)
	}

	return Join(h.Base, strings.Join(segments, "/"))
}

// Pattern substitutes placeholders into a template path.
// {slug} and {id} are always replaced; {yyyy}, {mm} and {dd} only when the
// item has a date, otherwise they are left as written.
type Pattern struct {
	Pattern string
}

func (Pattern) Kind() Kind { return KindPattern }
func (Pattern) scheme()    {}

func (p Pattern) URL(item *content.Item, _ string) string {
	pairs := []string{"{slug}", item.Slug, "{id}", item.ID}
	if item.Date != nil {
		d := item.Date
		pairs = append(pairs,
			"{yyyy}", fmt.Sprintf("%04d", d.Year()),
			"{mm}", fmt.Sprintf("%02d", int(d.Month())),
			"{dd}", fmt.Sprintf("%02d", d.Day()),
		)
	}
	return Clean(strings.NewReplacer(pairs...).Replace(p.Pattern))
}

// Join places rel under base and cleans the result. An empty result is "/".
func Join(base, rel string) string {
	return Clean(strings.TrimRight(base, "/") + "/" + rel)
}

// Clean normalizes a URL path: leading slash, no duplicate or trailing
// slashes, "/" for the root.
func Clean(p string) string {
	var segments []string
	for _, seg := range strings.Split(p, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	return "/" + strings.Join(segments, "/")
}
