// Package content models parsed content files and parses them from disk.
package content

import "time"

// Status is the publication state of a content item.
type Status string

const (
	StatusPublished Status = "published"
	StatusDraft     Status = "draft"
	StatusUnlisted  Status = "unlisted"
)

// ParseStatus normalizes a frontmatter status value.
// Anything other than an explicit draft or unlisted resolves to published;
// ok reports whether raw was empty or one of the three known values.
func ParseStatus(raw string) (status Status, ok bool) {
	switch Status(raw) {
	case "", StatusPublished:
		return StatusPublished, true
	case StatusDraft:
		return StatusDraft, true
	case StatusUnlisted:
		return StatusUnlisted, true
	default:
		return StatusPublished, false
	}
}

// Reserved frontmatter keys that map onto Item attributes.
// Every other key (except taxonomy names) is kept as a custom field.
const (
	KeyID           = "id"
	KeySlug         = "slug"
	KeyTitle        = "title"
	KeyDate         = "date"
	KeyStatus       = "status"
	KeyExcerpt      = "excerpt"
	KeyTemplate     = "template"
	KeyRedirectFrom = "redirect_from"
)

var reservedKeys = map[string]bool{
	KeyID:           true,
	KeySlug:         true,
	KeyTitle:        true,
	KeyDate:         true,
	KeyStatus:       true,
	KeyExcerpt:      true,
	KeyTemplate:     true,
	KeyRedirectFrom: true,
}

// Item is one parsed content file. It is not modified after parsing.
type Item struct {
	ID           string
	Slug         string
	Type         string
	Title        string
	Date         *time.Time
	Status       Status
	Excerpt      string
	Template     string
	RedirectFrom []string

	// Terms maps taxonomy name to the term slugs assigned in frontmatter.
	Terms map[string][]string

	// Fields holds frontmatter keys that are neither reserved nor taxonomy
	// names, in declaration order.
	Fields Fields

	// Frontmatter is the complete frontmatter as written, used by validation.
	Frontmatter Fields

	RawBody  string
	FilePath string
	ModTime  time.Time
}

// IsPublished reports whether the item is publicly routable.
func (i *Item) IsPublished() bool {
	return i.Status == StatusPublished
}

// Key returns the corpus-wide "type:slug" reference for the item.
func (i *Item) Key() string {
	return i.Type + ":" + i.Slug
}

// TermsFor returns the term slugs assigned for a taxonomy.
func (i *Item) TermsFor(taxonomy string) []string {
	if i.Terms == nil {
		return nil
	}
	return i.Terms[taxonomy]
}
