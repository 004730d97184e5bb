package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for FileWatcher:
// - A missing root directory is an error
// - A single write fires one callback after the debounce
// - Rapid changes to several files arrive as one sorted, deduplicated batch
// - Other extensions, hidden files and editor backups are ignored
// - Files in directories created after Start are seen
// - Removing a file fires a callback
// - Stop is idempotent and safe before Start

const testDebounce = 100 * time.Millisecond

func newTestWatcher(t *testing.T, dir string) (FileWatcher, <-chan []string) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	w, err := NewFileWatcher([]string{dir}, Options{
		Extensions: []string{".md", ".yml"},
		Debounce:   testDebounce,
		Logger:     logger,
	})
	require.NoError(t, err)
	t.Cleanup(func() { w.Stop() })

	batches := make(chan []string, 10)
	require.NoError(t, w.Start(context.Background(), func(files []string) { batches <- files }))
	// Give the watch loop a moment to start.
	time.Sleep(50 * time.Millisecond)
	return w, batches
}

func waitBatch(t *testing.T, batches <-chan []string) []string {
	t.Helper()
	select {
	case files := <-batches:
		return files
	case <-time.After(3 * time.Second):
		t.Fatal("callback not called")
		return nil
	}
}

func assertNoBatch(t *testing.T, batches <-chan []string) {
	t.Helper()
	select {
	case files := <-batches:
		t.Fatalf("unexpected callback with %v", files)
	case <-time.After(4 * testDebounce):
	}
}

func TestNewFileWatcher_MissingDirectory(t *testing.T) {
	t.Parallel()

	w, err := NewFileWatcher([]string{filepath.Join(t.TempDir(), "nope")}, Options{})
	assert.Error(t, err)
	assert.Nil(t, w)
}

func TestFileWatcher_SingleChange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, batches := newTestWatcher(t, dir)

	path := filepath.Join(dir, "hello.md")
	require.NoError(t, os.WriteFile(path, []byte("---\ntitle: Hello\n---\n"), 0o644))

	assert.Equal(t, []string{path}, waitBatch(t, batches))
	assertNoBatch(t, batches)
}

func TestFileWatcher_BatchesAndDeduplicates(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, batches := newTestWatcher(t, dir)

	a := filepath.Join(dir, "a.md")
	b := filepath.Join(dir, "b.yml")
	for i := range 3 {
		require.NoError(t, os.WriteFile(b, []byte{byte('0' + i)}, 0o644))
		require.NoError(t, os.WriteFile(a, []byte{byte('0' + i)}, 0o644))
		time.Sleep(testDebounce / 4)
	}

	assert.Equal(t, []string{a, b}, waitBatch(t, batches))
}

func TestFileWatcher_Filtering(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, batches := newTestWatcher(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden.md"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "post.md~"), []byte("x"), 0o644))

	assertNoBatch(t, batches)
}

func TestFileWatcher_NewDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, batches := newTestWatcher(t, dir)

	sub := filepath.Join(dir, "posts")
	require.NoError(t, os.Mkdir(sub, 0o755))
	first := waitBatch(t, batches)
	assert.Contains(t, first, sub)

	path := filepath.Join(sub, "new.md")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	assert.Equal(t, []string{path}, waitBatch(t, batches))
}

func TestFileWatcher_Remove(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "gone.md")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	_, batches := newTestWatcher(t, dir)
	require.NoError(t, os.Remove(path))

	assert.Equal(t, []string{path}, waitBatch(t, batches))
}

func TestFileWatcher_StopIdempotent(t *testing.T) {
	t.Parallel()

	w, err := NewFileWatcher([]string{t.TempDir()}, Options{})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Stop()
		}()
	}
	wg.Wait()
	assert.NoError(t, w.Stop())
}
