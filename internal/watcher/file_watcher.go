// Package watcher triggers cache rebuilds when content or configuration
// files change on disk.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// DefaultDebounce is the quiet period before a batch of changes is delivered.
const DefaultDebounce = 300 * time.Millisecond

// FileWatcher delivers debounced batches of changed files.
type FileWatcher interface {
	// Start begins watching, calling callback with each batch of changed paths.
	Start(ctx context.Context, callback func(files []string)) error

	// Stop stops the watcher and waits for the watch loop to exit.
	Stop() error
}

// Options configures a file watcher.
type Options struct {
	// Extensions limits events to these file extensions. Empty means all files.
	Extensions []string
	// Debounce defaults to DefaultDebounce.
	Debounce time.Duration
	Logger   logrus.FieldLogger
}

type fileWatcher struct {
	watcher    *fsnotify.Watcher
	extensions map[string]bool
	debounce   time.Duration
	log        logrus.FieldLogger
	callback   func(files []string)
	ctx        context.Context
	cancel     context.CancelFunc

	pending   map[string]bool
	pendingMu sync.Mutex
	timer     *time.Timer
	timerMu   sync.Mutex

	stopOnce sync.Once
	doneCh   chan struct{}
}

// NewFileWatcher watches dirs recursively. Directories created later are
// added as they appear. A missing root directory is an error.
func NewFileWatcher(dirs []string, opts Options) (FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	fw := &fileWatcher{
		watcher:    w,
		extensions: make(map[string]bool, len(opts.Extensions)),
		debounce:   opts.Debounce,
		log:        opts.Logger,
		pending:    make(map[string]bool),
		doneCh:     make(chan struct{}),
	}
	for _, ext := range opts.Extensions {
		fw.extensions[strings.ToLower(ext)] = true
	}
	if fw.debounce <= 0 {
		fw.debounce = DefaultDebounce
	}
	if fw.log == nil {
		fw.log = logrus.StandardLogger()
	}

	for _, dir := range dirs {
		if err := fw.addRecursive(dir); err != nil {
			w.Close()
			return nil, err
		}
	}
	return fw, nil
}

func (fw *fileWatcher) Start(ctx context.Context, callback func(files []string)) error {
	if callback == nil {
		return nil
	}
	fw.callback = callback
	fw.ctx, fw.cancel = context.WithCancel(ctx)

	go fw.watch()
	return nil
}

func (fw *fileWatcher) Stop() error {
	var err error
	fw.stopOnce.Do(func() {
		if fw.cancel != nil {
			fw.cancel()
			<-fw.doneCh
		} else {
			close(fw.doneCh)
		}
		err = fw.watcher.Close()
	})
	return err
}

func (fw *fileWatcher) watch() {
	defer close(fw.doneCh)

	fire := make(chan struct{}, 1)

	for {
		select {
		case <-fw.ctx.Done():
			fw.stopTimer()
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := fw.addRecursive(event.Name); err != nil {
						fw.log.WithError(err).WithField("dir", event.Name).Warn("failed to watch new directory")
					}
					// Files moved in with the directory produce no events of their own.
					fw.add(event.Name)
					fw.resetTimer(fire)
					continue
				}
			}

			if !fw.relevant(event) {
				continue
			}
			fw.add(event.Name)
			fw.resetTimer(fire)

		case <-fire:
			fw.flush()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.log.WithError(err).Warn("file watcher error")
		}
	}
}

func (fw *fileWatcher) add(path string) {
	fw.pendingMu.Lock()
	fw.pending[path] = true
	fw.pendingMu.Unlock()
}

// flush delivers the accumulated batch, sorted, if it is not empty.
func (fw *fileWatcher) flush() {
	fw.pendingMu.Lock()
	if len(fw.pending) == 0 {
		fw.pendingMu.Unlock()
		return
	}
	files := make([]string, 0, len(fw.pending))
	for path := range fw.pending {
		files = append(files, path)
	}
	fw.pending = make(map[string]bool)
	fw.pendingMu.Unlock()

	slices.Sort(files)
	fw.callback(files)
}

func (fw *fileWatcher) resetTimer(fire chan struct{}) {
	fw.timerMu.Lock()
	defer fw.timerMu.Unlock()

	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.timer = time.AfterFunc(fw.debounce, func() {
		select {
		case fire <- struct{}{}:
		default:
		}
	})
}

func (fw *fileWatcher) stopTimer() {
	fw.timerMu.Lock()
	defer fw.timerMu.Unlock()

	if fw.timer != nil {
		fw.timer.Stop()
		fw.timer = nil
	}
}

// relevant filters out chmod-only events, hidden files and other extensions.
func (fw *fileWatcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return false
	}
	if len(fw.extensions) == 0 {
		return true
	}
	return fw.extensions[strings.ToLower(filepath.Ext(base))]
}

func (fw *fileWatcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			fw.log.WithError(err).WithField("path", path).Warn("skipping unreadable path")
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := fw.watcher.Add(path); err != nil {
			fw.log.WithError(err).WithField("dir", path).Warn("failed to watch directory")
		}
		return nil
	})
}
