package fingerprint

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Fingerprint:
// - Compute is stable when nothing changes
// - Adding, removing or touching a file changes the fingerprint
// - Editing a config file changes its hash; missing config files are omitted
// - A missing watched directory yields an empty DirStat, not an error
// - Content mode detects an edit that preserves mtime and size; fast mode does not
// - Equal treats nil as never equal and compares every field
// - ParseMode resolves names and rejects unknown ones

type fixture struct {
	content string
	config  string
	calc    *Calculator
}

func newFixture(t *testing.T, mode Mode) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{
		content: filepath.Join(root, "content"),
		config:  filepath.Join(root, "app", "config"),
	}
	require.NoError(t, os.MkdirAll(filepath.Join(f.content, "posts"), 0o755))
	require.NoError(t, os.MkdirAll(f.config, 0o755))
	f.write(t, filepath.Join(f.content, "posts", "a.md"), "---\ntitle: A\n---\n")
	f.write(t, filepath.Join(f.config, "content_types.yml"), "post: {}\n")

	f.calc = NewCalculator(mode,
		map[string]string{"content": f.content, "config": f.config},
		map[string]string{
			"content_types.yml": filepath.Join(f.config, "content_types.yml"),
			"taxonomies.yml":    filepath.Join(f.config, "taxonomies.yml"),
		},
	)
	return f
}

func (f *fixture) write(t *testing.T, path, data string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

func (f *fixture) compute(t *testing.T) *Fingerprint {
	t.Helper()
	fp, err := f.calc.Compute(context.Background())
	require.NoError(t, err)
	return fp
}

func TestCompute_Stable(t *testing.T) {
	t.Parallel()

	f := newFixture(t, ModeFast)
	first := f.compute(t)
	second := f.compute(t)

	assert.True(t, first.Equal(second))
	assert.Equal(t, 1, first.Dirs["content"].Count)
	assert.Equal(t, 1, first.Dirs["config"].Count)
	assert.Contains(t, first.Config, "content_types.yml")
	assert.NotContains(t, first.Config, "taxonomies.yml")
}

func TestCompute_DetectsChanges(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		change func(t *testing.T, f *fixture)
	}{
		{"file added", func(t *testing.T, f *fixture) {
			f.write(t, filepath.Join(f.content, "posts", "b.md"), "---\ntitle: B\n---\n")
		}},
		{"file removed", func(t *testing.T, f *fixture) {
			require.NoError(t, os.Remove(filepath.Join(f.content, "posts", "a.md")))
		}},
		{"file touched", func(t *testing.T, f *fixture) {
			future := time.Now().Add(time.Hour)
			require.NoError(t, os.Chtimes(filepath.Join(f.content, "posts", "a.md"), future, future))
		}},
		{"config edited", func(t *testing.T, f *fixture) {
			path := filepath.Join(f.config, "content_types.yml")
			info, err := os.Stat(path)
			require.NoError(t, err)
			f.write(t, path, "page: {}\n")
			require.NoError(t, os.Chtimes(path, info.ModTime(), info.ModTime()))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, ModeFast)
			before := f.compute(t)
			tt.change(t, f)
			assert.False(t, before.Equal(f.compute(t)))
		})
	}
}

func TestCompute_MissingDirectory(t *testing.T) {
	t.Parallel()

	calc := NewCalculator(ModeFast, map[string]string{"content": filepath.Join(t.TempDir(), "absent")}, nil)
	fp, err := calc.Compute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DirStat{}, fp.Dirs["content"])
}

func TestCompute_ContentModeSeesPreservedMtime(t *testing.T) {
	t.Parallel()

	edit := func(t *testing.T, f *fixture) {
		path := filepath.Join(f.content, "posts", "a.md")
		info, err := os.Stat(path)
		require.NoError(t, err)
		f.write(t, path, "---\ntitle: Z\n---\n")
		require.NoError(t, os.Chtimes(path, info.ModTime(), info.ModTime()))
	}

	fast := newFixture(t, ModeFast)
	before := fast.compute(t)
	edit(t, fast)
	after := fast.compute(t)
	assert.Equal(t, before.Dirs["content"].Count, after.Dirs["content"].Count)
	assert.Equal(t, before.Dirs["content"].Size, after.Dirs["content"].Size)
	assert.Empty(t, after.Dirs["content"].Digest)

	deep := newFixture(t, ModeContent)
	before = deep.compute(t)
	edit(t, deep)
	after = deep.compute(t)
	assert.NotEmpty(t, after.Dirs["content"].Digest)
	assert.False(t, before.Equal(after))
}

func TestEqual(t *testing.T) {
	t.Parallel()

	a := &Fingerprint{Mode: "fast", Dirs: map[string]DirStat{"content": {Count: 1}}, Config: map[string]string{"x": "1"}}
	b := &Fingerprint{Mode: "fast", Dirs: map[string]DirStat{"content": {Count: 1}}, Config: map[string]string{"x": "1"}}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(nil))
	assert.False(t, (*Fingerprint)(nil).Equal(a))

	b.Mode = "content"
	assert.False(t, a.Equal(b))
	b.Mode = "fast"
	b.Config["x"] = "2"
	assert.False(t, a.Equal(b))
	b.Config["x"] = "1"
	b.Dirs["config"] = DirStat{}
	assert.False(t, a.Equal(b))
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	m, err := ParseMode("content")
	require.NoError(t, err)
	assert.Equal(t, ModeContent, m)

	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeFast, m)

	_, err = ParseMode("deep")
	assert.Error(t, err)
}
