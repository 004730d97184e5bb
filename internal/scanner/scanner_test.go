package scanner

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/mvp-joe/folio/internal/config"
	"github.com/mvp-joe/folio/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Scanner:
// - Discovery filters by extension, honors ignore globs, returns sorted paths
// - Discovery of a missing type directory yields no files
// - ScanType parses every file and keeps entries in path order
// - Parse failures are reported and excluded; validation failures are reported and kept
// - Duplicate slugs within a type: first path wins, problem names both files
// - Hierarchical types derive slugs from the nested path, pattern types from the base name
// - Duplicate ids across types: detected through the shared Session
// - A fresh Session forgets ids from earlier passes
// - OnFile is invoked once per discovered file
// - A cancelled context aborts the scan

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

func newSite(t *testing.T, root string) *config.Site {
	t.Helper()
	types := []config.ContentType{
		{Name: "page", ContentDir: "pages", URL: config.URLConfig{Type: "hierarchical"}},
		{
			Name:       "post",
			ContentDir: "posts",
			Taxonomies: []string{"tag"},
			Fields: validate.Schema{
				{Name: "subtitle", Type: validate.TypeText, Required: true},
			},
		},
	}
	site, err := config.NewSite(root, config.Default(), types, []config.Taxonomy{{Name: "tag"}})
	require.NoError(t, err)
	return site
}

func newScanner(t *testing.T, site *config.Site, opts Options) *Scanner {
	t.Helper()
	s, err := New(site, opts)
	require.NoError(t, err)
	return s
}

func TestDiscovery(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for _, p := range []string{"posts/b.md", "posts/a.md", "posts/2024/c.md", "posts/notes.txt", "posts/.draft.md", "posts/drafts/d.md"} {
		writeFile(t, filepath.Join(root, p), "x")
	}

	d, err := NewDiscovery(root, ".md", []string{"**/.*", "posts/drafts/**"})
	require.NoError(t, err)

	files, err := d.Discover(filepath.Join(root, "posts"))
	require.NoError(t, err)

	var rel []string
	for _, f := range files {
		rel = append(rel, d.Rel(f))
	}
	assert.Equal(t, []string{"posts/2024/c.md", "posts/a.md", "posts/b.md"}, rel)

	files, err = d.Discover(filepath.Join(root, "missing"))
	require.NoError(t, err)
	assert.Empty(t, files)

	_, err = NewDiscovery(root, ".md", []string{"[unclosed"})
	assert.Error(t, err)
}

func TestScanType_ParseAndValidation(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "content/posts/a.md"), "---\ntitle: A\nsubtitle: S\ntag: [go]\n---\nBody")
	writeFile(t, filepath.Join(root, "content/posts/b.md"), "---\ntitle: [unclosed\n---\n")
	writeFile(t, filepath.Join(root, "content/posts/c.md"), "---\ntitle: C\n---\n")

	site := newSite(t, root)
	post, _ := site.Type("post")

	res, err := newScanner(t, site, Options{}).ScanType(context.Background(), post, NewSession())
	require.NoError(t, err)

	require.Len(t, res.Entries, 2)
	assert.Equal(t, "posts/a.md", res.Entries[0].Path)
	assert.Equal(t, "a.md", res.Entries[0].RelPath)
	assert.Equal(t, []string{"go"}, res.Entries[0].Item.TermsFor("tag"))
	assert.Equal(t, "posts/c.md", res.Entries[1].Path, "invalid items are still indexed")

	require.Len(t, res.Problems, 2)
	assert.Equal(t, Problem{Path: "posts/b.md", Kind: KindParse, Message: res.Problems[0].Message}, res.Problems[0])
	assert.Contains(t, res.Problems[0].Message, "invalid frontmatter")
	assert.Equal(t, KindValidation, res.Problems[1].Kind)
	assert.Equal(t, "posts/c.md: Subtitle: is required", res.Problems[1].String())
}

func TestScanType_DuplicateSlug(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "content/pages/about.md"), "---\ntitle: About\n---\n")
	writeFile(t, filepath.Join(root, "content/pages/team-about.md"), "---\ntitle: Team About\n---\n")
	writeFile(t, filepath.Join(root, "content/pages/team/about.md"), "---\ntitle: About Team\n---\n")
	writeFile(t, filepath.Join(root, "content/pages/zz.md"), "---\ntitle: ZZ\nslug: about\n---\n")

	site := newSite(t, root)
	page, _ := site.Type("page")

	for i := 0; i < 3; i++ {
		res, err := newScanner(t, site, Options{Workers: 3}).ScanType(context.Background(), page, NewSession())
		require.NoError(t, err)

		require.Len(t, res.Entries, 4)
		assert.Equal(t, "pages/about.md", res.Entries[0].Path)
		assert.False(t, res.Entries[0].DuplicateSlug, "first path in lexical order wins")
		assert.Equal(t, "pages/team-about.md", res.Entries[1].Path)
		assert.False(t, res.Entries[1].DuplicateSlug)
		assert.Equal(t, "pages/team/about.md", res.Entries[2].Path)
		assert.Equal(t, "team-about", res.Entries[2].Item.Slug)
		assert.True(t, res.Entries[2].DuplicateSlug)
		assert.True(t, res.Entries[3].DuplicateSlug)

		require.Len(t, res.Problems, 2)
		assert.Equal(t, KindDuplicateSlug, res.Problems[0].Kind)
		assert.Equal(t, "pages/team/about.md", res.Problems[0].Path)
		assert.Equal(t, "pages/team-about.md", res.Problems[0].Related)
		assert.Contains(t, res.Problems[0].Message, "pages/team-about.md")
		assert.Equal(t, "pages/zz.md", res.Problems[1].Path)
		assert.Equal(t, "pages/about.md", res.Problems[1].Related)
	}
}

func TestScanType_NestedPagesKeepDistinctSlugs(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "content/pages/about.md"), "---\ntitle: About\n---\n")
	writeFile(t, filepath.Join(root, "content/pages/products/web.md"), "---\ntitle: Web Products\n---\n")
	writeFile(t, filepath.Join(root, "content/pages/services/web.md"), "---\ntitle: Web Services\n---\n")
	writeFile(t, filepath.Join(root, "content/pages/team/about.md"), "---\ntitle: About Team\n---\n")
	writeFile(t, filepath.Join(root, "content/posts/2023/hello.md"), "---\ntitle: Hello\nsubtitle: s\n---\n")

	site := newSite(t, root)
	page, _ := site.Type("page")
	post, _ := site.Type("post")

	res, err := newScanner(t, site, Options{}).ScanType(context.Background(), page, NewSession())
	require.NoError(t, err)
	assert.Empty(t, res.Problems)

	var slugs []string
	for _, e := range res.Entries {
		assert.False(t, e.DuplicateSlug, e.Path)
		slugs = append(slugs, e.Item.Slug)
	}
	assert.Equal(t, []string{"about", "products-web", "services-web", "team-about"}, slugs)

	posts, err := newScanner(t, site, Options{}).ScanType(context.Background(), post, NewSession())
	require.NoError(t, err)
	require.Len(t, posts.Entries, 1)
	assert.Equal(t, "hello", posts.Entries[0].Item.Slug, "pattern types keep base-name slugs")
}

func TestScanAll_DuplicateIDAcrossTypes(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "content/pages/home.md"), "---\ntitle: Home\nid: 01ABC\n---\n")
	writeFile(t, filepath.Join(root, "content/posts/hello.md"), "---\ntitle: Hello\nsubtitle: S\nid: 01ABC\n---\n")

	site := newSite(t, root)
	s := newScanner(t, site, Options{})

	session := NewSession()
	results, err := s.ScanAll(context.Background(), session)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.False(t, results[0].Entries[0].DuplicateID)
	assert.True(t, results[1].Entries[0].DuplicateID)
	require.Len(t, results[1].Problems, 1)
	assert.Equal(t, Problem{
		Path:    "posts/hello.md",
		Kind:    KindDuplicateID,
		Message: `Duplicate id "01ABC" (already used by pages/home.md)`,
		Related: "pages/home.md",
	}, results[1].Problems[0])
	assert.Equal(t, 1, session.IDs())

	again, err := s.ScanAll(context.Background(), NewSession())
	require.NoError(t, err)
	assert.False(t, again[0].Entries[0].DuplicateID, "a new session starts empty")
}

func TestScanType_OnFileAndCancel(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for _, name := range []string{"a", "b", "c", "d"} {
		writeFile(t, filepath.Join(root, "content/pages", name+".md"), "---\ntitle: "+name+"\n---\n")
	}
	site := newSite(t, root)
	page, _ := site.Type("page")

	var calls atomic.Int32
	s := newScanner(t, site, Options{OnFile: func(string) { calls.Add(1) }})
	_, err := s.ScanType(context.Background(), page, NewSession())
	require.NoError(t, err)
	assert.Equal(t, int32(4), calls.Load())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.ScanType(ctx, page, NewSession())
	assert.ErrorIs(t, err, context.Canceled)
}
