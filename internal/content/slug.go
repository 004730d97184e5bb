package content

import (
	"path"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	slugStrip    = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugCollapse = regexp.MustCompile(`[\s-]+`)
	slugValid    = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

var titleCaser = cases.Title(language.Und, cases.NoLower)

// Slugify converts a string to a URL-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(s)
	s = slugStrip.ReplaceAllString(s, "")
	s = slugCollapse.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// ValidSlug reports whether s is lowercase alphanumerics joined by single hyphens.
func ValidSlug(s string) bool {
	return slugValid.MatchString(s)
}

// Humanize turns a slug or field name into a display label:
// hyphens, underscores and slashes become spaces and each word is capitalized.
func Humanize(s string) string {
	s = strings.NewReplacer("-", " ", "_", " ", "/", " ").Replace(s)
	return titleCaser.String(s)
}

// IsIndexName reports whether a file stem names its directory's own page.
func IsIndexName(stem string) bool {
	return stem == "index" || stem == "_index"
}

// slugFromPath derives a slug from a slash-separated path relative to the
// content type directory. Index files take their parent directory's name.
func slugFromPath(rel string) string {
	stem := strings.TrimSuffix(path.Base(rel), path.Ext(rel))
	if !IsIndexName(stem) {
		return Slugify(stem)
	}
	dir := path.Dir(rel)
	if dir == "." || dir == "/" {
		return "index"
	}
	return Slugify(path.Base(dir))
}

// slugFromNestedPath joins every directory segment of rel into the slug.
// Index files stand for their directory, and the root index is "index".
func slugFromNestedPath(rel string) string {
	segments := strings.Split(strings.TrimSuffix(rel, path.Ext(rel)), "/")
	if IsIndexName(segments[len(segments)-1]) {
		segments = segments[:len(segments)-1]
	}
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if s := Slugify(seg); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return "index"
	}
	return strings.Join(parts, "-")
}
