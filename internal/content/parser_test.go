package content

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Parser:
// - YAML frontmatter maps reserved keys onto Item attributes
// - Unknown keys are preserved as ordered custom fields
// - Taxonomy keys become term assignments (string, list, list of maps)
// - Status defaults to published; draft/unlisted are honored
// - Missing slug derives from the file name; index files use the parent dir
// - Date strings in several layouts are parsed; absent dates stay nil
// - Malformed frontmatter yields a ParseError matching ErrParse
// - Unreadable files yield a ParseError
// - TOML and JSON formats are supported when configured
// - Files without frontmatter parse with empty metadata

func parse(t *testing.T, p *Parser, rel, text string) (*Item, error) {
	t.Helper()
	return p.Parse(strings.NewReader(text), Source{Path: "/site/content/" + rel, RelPath: rel, Type: "post"})
}

func TestParse_ReservedKeys(t *testing.T) {
	t.Parallel()

	p := NewParser(FormatYAML, nil)
	item, err := parse(t, p, "hello.md", `---
id: 01HQZX
slug: hello-world
title: Hello World
date: 2024-03-05
status: draft
excerpt: Short intro
template: special.html
redirect_from:
  - /old-hello
  - /older-hello
---
# Body here
`)
	require.NoError(t, err)

	assert.Equal(t, "01HQZX", item.ID)
	assert.Equal(t, "hello-world", item.Slug)
	assert.Equal(t, "Hello World", item.Title)
	require.NotNil(t, item.Date)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), *item.Date)
	assert.Equal(t, StatusDraft, item.Status)
	assert.False(t, item.IsPublished())
	assert.Equal(t, "Short intro", item.Excerpt)
	assert.Equal(t, "special.html", item.Template)
	assert.Equal(t, []string{"/old-hello", "/older-hello"}, item.RedirectFrom)
	assert.Equal(t, "# Body here\n", item.RawBody)
	assert.Equal(t, "post:hello-world", item.Key())
	assert.Equal(t, 0, item.Fields.Len())
}

func TestParse_CustomFieldsKeepOrder(t *testing.T) {
	t.Parallel()

	p := NewParser(FormatYAML, nil)
	item, err := parse(t, p, "a.md", `---
title: A
zeta: 1
alpha: [x, y]
mid:
  nested: true
---
`)
	require.NoError(t, err)

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, item.Fields.Keys())
	v, ok := item.Fields.Get("alpha")
	require.True(t, ok)
	assert.Equal(t, []any{"x", "y"}, v)
	v, _ = item.Fields.Get("mid")
	assert.Equal(t, map[string]any{"nested": true}, v)

	assert.Equal(t, []string{"title", "zeta", "alpha", "mid"}, item.Frontmatter.Keys())
}

func TestParse_Terms(t *testing.T) {
	t.Parallel()

	p := NewParser(FormatYAML, []string{"category", "tag", "series"})
	item, err := parse(t, p, "a.md", `---
title: A
category: news
tag: [go, python]
series:
  - slug: intro
  - name: deep-dive
  - ""
---
`)
	require.NoError(t, err)

	assert.Equal(t, []string{"news"}, item.TermsFor("category"))
	assert.Equal(t, []string{"go", "python"}, item.TermsFor("tag"))
	assert.Equal(t, []string{"intro", "deep-dive"}, item.TermsFor("series"))
	assert.Nil(t, item.TermsFor("missing"))
	assert.False(t, item.Fields.Has("tag"), "taxonomy keys are not custom fields")
}

func TestParse_StatusDefaults(t *testing.T) {
	t.Parallel()

	p := NewParser(FormatYAML, nil)
	tests := []struct {
		raw  string
		want Status
	}{
		{"", StatusPublished},
		{"status: published", StatusPublished},
		{"status: Draft", StatusDraft},
		{"status: unlisted", StatusUnlisted},
		{"status: archived", StatusPublished},
	}
	for _, tt := range tests {
		item, err := parse(t, p, "a.md", "---\ntitle: A\n"+tt.raw+"\n---\n")
		require.NoError(t, err)
		assert.Equal(t, tt.want, item.Status, tt.raw)
	}
}

func TestParse_SlugDerivation(t *testing.T) {
	t.Parallel()

	p := NewParser(FormatYAML, nil)
	tests := []struct {
		rel  string
		want string
	}{
		{"Hello World.md", "hello-world"},
		{"services/web.md", "web"},
		{"index.md", "index"},
		{"services/index.md", "services"},
		{"about/team/_index.md", "team"},
	}
	for _, tt := range tests {
		item, err := parse(t, p, tt.rel, "---\ntitle: T\n---\n")
		require.NoError(t, err)
		assert.Equal(t, tt.want, item.Slug, tt.rel)
	}
}

func TestParse_PathSlugs(t *testing.T) {
	t.Parallel()

	p := NewParser(FormatYAML, nil, WithPathSlugs())
	tests := []struct {
		rel  string
		want string
	}{
		{"about.md", "about"},
		{"index.md", "index"},
		{"services/web.md", "services-web"},
		{"products/web.md", "products-web"},
		{"services/index.md", "services"},
		{"about/Our Team/_index.md", "about-our-team"},
	}
	for _, tt := range tests {
		item, err := parse(t, p, tt.rel, "---\ntitle: T\n---\n")
		require.NoError(t, err)
		assert.Equal(t, tt.want, item.Slug, tt.rel)
	}

	item, err := parse(t, p, "services/web.md", "---\nslug: web\n---\n")
	require.NoError(t, err)
	assert.Equal(t, "web", item.Slug, "explicit slug wins")
}

func TestParse_DateLayouts(t *testing.T) {
	t.Parallel()

	p := NewParser(FormatYAML, nil)
	for _, raw := range []string{"2024-03-05", "2024-03-05 10:30:00", "2024-03-05T10:30:00Z"} {
		item, err := parse(t, p, "a.md", "---\ndate: "+raw+"\n---\n")
		require.NoError(t, err)
		require.NotNil(t, item.Date, raw)
		assert.Equal(t, 2024, item.Date.Year())
		assert.Equal(t, time.March, item.Date.Month())
		assert.Equal(t, 5, item.Date.Day())
	}

	item, err := parse(t, p, "a.md", "---\ndate: not a date\n---\n")
	require.NoError(t, err)
	assert.Nil(t, item.Date)

	item, err = parse(t, p, "a.md", "---\ntitle: x\n---\n")
	require.NoError(t, err)
	assert.Nil(t, item.Date)
}

func TestParse_MalformedFrontmatter(t *testing.T) {
	t.Parallel()

	p := NewParser(FormatYAML, nil)
	_, err := parse(t, p, "bad.md", "---\ntitle: [unclosed\n---\nbody\n")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrParse))

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "/site/content/bad.md", perr.Path)
}

func TestParse_NonMappingFrontmatter(t *testing.T) {
	t.Parallel()

	p := NewParser(FormatYAML, nil)
	_, err := parse(t, p, "bad.md", "---\n- just\n- a list\n---\n")
	assert.ErrorIs(t, err, ErrParse)
}

func TestParse_NoFrontmatter(t *testing.T) {
	t.Parallel()

	p := NewParser(FormatYAML, nil)
	item, err := parse(t, p, "plain.md", "just a body\n")
	require.NoError(t, err)
	assert.Equal(t, "plain", item.Slug)
	assert.Equal(t, "just a body\n", item.RawBody)
	assert.Equal(t, 0, item.Frontmatter.Len())
}

func TestParse_TOML(t *testing.T) {
	t.Parallel()

	p := NewParser(FormatTOML, []string{"tag"})
	item, err := parse(t, p, "t.md", `+++
title = "Toml Post"
tag = ["go"]
rating = 4
+++
body
`)
	require.NoError(t, err)
	assert.Equal(t, "Toml Post", item.Title)
	assert.Equal(t, []string{"go"}, item.TermsFor("tag"))
	v, ok := item.Fields.Get("rating")
	require.True(t, ok)
	assert.EqualValues(t, 4, v)
}

func TestParse_JSON(t *testing.T) {
	t.Parallel()

	p := NewParser(FormatJSON, nil)
	item, err := parse(t, p, "j.md", "{\n  \"title\": \"Json Post\",\n  \"b\": 1,\n  \"a\": 2\n}\nbody\n")
	require.NoError(t, err)
	assert.Equal(t, "Json Post", item.Title)
	assert.Equal(t, []string{"b", "a"}, item.Fields.Keys())
}

func TestParseFile_Unreadable(t *testing.T) {
	t.Parallel()

	p := NewParser(FormatYAML, nil)
	_, err := p.ParseFile(Source{Path: filepath.Join(t.TempDir(), "missing.md"), RelPath: "missing.md", Type: "post"})
	assert.ErrorIs(t, err, ErrParse)
}

func TestParseFile_SetsModTime(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "a.md")
	require.NoError(t, os.WriteFile(path, []byte("---\ntitle: A\n---\n"), 0644))

	p := NewParser(FormatYAML, nil)
	item, err := p.ParseFile(Source{Path: path, RelPath: "a.md", Type: "page"})
	require.NoError(t, err)
	assert.Equal(t, path, item.FilePath)
	assert.False(t, item.ModTime.IsZero())
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	f, err = ParseFormat("TOML")
	require.NoError(t, err)
	assert.Equal(t, FormatTOML, f)

	_, err = ParseFormat("ini")
	assert.Error(t, err)
}
