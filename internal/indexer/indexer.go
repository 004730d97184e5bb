// Package indexer orchestrates a full rebuild: fingerprint, scan, build
// and commit of one cache generation. It also runs scan-only lint passes
// and answers whether the cache is fresh.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/mvp-joe/folio/internal/cache"
	"github.com/mvp-joe/folio/internal/config"
	"github.com/mvp-joe/folio/internal/fingerprint"
	"github.com/mvp-joe/folio/internal/index"
	"github.com/mvp-joe/folio/internal/scanner"
	"github.com/sirupsen/logrus"
)

// State is the cache lifecycle as seen by the indexer.
type State int

const (
	// StateUnbuilt means no complete cache generation exists.
	StateUnbuilt State = iota
	// StateFresh means the stored fingerprint matches the tree.
	StateFresh
	// StateStale means content or configuration changed since the last build.
	StateStale
	// StateRebuilding means a rebuild is running in this process.
	StateRebuilding
)

func (s State) String() string {
	switch s {
	case StateFresh:
		return "fresh"
	case StateStale:
		return "stale"
	case StateRebuilding:
		return "rebuilding"
	default:
		return "unbuilt"
	}
}

// Stats summarizes one rebuild.
type Stats struct {
	Generation string
	Files      int
	Items      int
	Routes     int
	Problems   []scanner.Problem
	Warnings   []scanner.Problem
	Duration   time.Duration
}

// Options configures an Indexer.
type Options struct {
	Logger   logrus.FieldLogger
	Progress ProgressReporter
	// Workers overrides scan.workers.
	Workers int
	// DisableErrorLog skips appending problems to storage/logs/indexer.log.
	DisableErrorLog bool
}

// Indexer is safe for concurrent use. Concurrent rebuilds are rejected
// with ErrRebuildInProgress rather than queued.
type Indexer struct {
	site     *config.Site
	log      logrus.FieldLogger
	progress ProgressReporter
	opts     Options

	calc    *fingerprint.Calculator
	writer  *cache.Writer
	reader  *cache.Reader
	builder *index.Builder

	rebuilding atomic.Bool
}

// New creates an indexer for the site.
func New(site *config.Site, opts Options) (*Indexer, error) {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.Progress == nil {
		opts.Progress = &NoOpProgressReporter{}
	}

	reader, err := cache.NewReader(site.CacheDir())
	if err != nil {
		return nil, err
	}

	return &Indexer{
		site:     site,
		log:      opts.Logger,
		progress: opts.Progress,
		opts:     opts,
		calc: fingerprint.NewCalculator(
			site.FingerprintMode,
			map[string]string{
				"content": site.ContentDir(),
				"config":  site.ConfigDir(),
			},
			site.ConfigFiles(),
		),
		writer:  cache.NewWriter(site.CacheDir(), site.CacheFormat, opts.Logger),
		reader:  reader,
		builder: index.NewBuilder(site, opts.Logger),
	}, nil
}

// Close releases the snapshot memo.
func (ix *Indexer) Close() error {
	ix.reader.Close()
	return nil
}

// Site returns the configuration the indexer was built with.
func (ix *Indexer) Site() *config.Site { return ix.site }

func (ix *Indexer) newScanner(onFile func(string)) (*scanner.Scanner, error) {
	return scanner.New(ix.site, scanner.Options{
		Workers: ix.opts.Workers,
		OnFile:  onFile,
		Logger:  ix.log,
	})
}

// Rebuild performs a full scan and commits a new cache generation. It runs
// regardless of freshness. Scan and build problems are logged and
// returned in Stats; only infrastructure failures return an error, and
// then the previous generation stays in place.
func (ix *Indexer) Rebuild(ctx context.Context) (*Stats, error) {
	if !ix.rebuilding.CompareAndSwap(false, true) {
		return nil, ErrRebuildInProgress
	}
	defer ix.rebuilding.Store(false)

	lock, err := acquireRebuildLock(ix.site.CacheDir())
	if err != nil {
		return nil, err
	}
	defer ix.releaseLock(lock)

	start := time.Now()

	// Fingerprint first: edits made during the scan leave the cache stale.
	fp, err := ix.calc.Compute(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute fingerprint: %w", err)
	}

	sc, err := ix.newScanner(ix.progress.OnFileProcessed)
	if err != nil {
		return nil, err
	}

	ix.progress.OnDiscoveryStart()
	total, err := ix.countFiles(sc)
	if err != nil {
		return nil, err
	}
	ix.progress.OnDiscoveryComplete(total)
	ix.progress.OnFileProcessingStart(total)

	results, err := sc.ScanAll(ctx, scanner.NewSession())
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	built := ix.builder.Build(results)

	stats := &Stats{Files: total, Items: len(built.Content.ByPath), Routes: len(built.Routes.Exact)}
	for _, tr := range results {
		stats.Problems = append(stats.Problems, tr.Problems...)
		stats.Warnings = append(stats.Warnings, tr.Warnings...)
	}
	stats.Problems = append(stats.Problems, built.Problems...)

	ix.progress.OnWriting()
	snap := &cache.Snapshot{
		Stamp: cache.Stamp{
			Items:       stats.Items,
			Problems:    len(stats.Problems),
			Fingerprint: fp,
		},
		Content:    built.Content,
		Taxonomies: built.Taxonomies,
		Routes:     built.Routes,
	}
	if err := ix.writer.Write(ctx, snap); err != nil {
		return nil, fmt.Errorf("failed to write cache: %w", err)
	}

	stats.Generation = snap.Stamp.Generation
	stats.Duration = time.Since(start)

	ix.logProblems(stats)
	ix.progress.OnComplete(stats)

	ix.log.WithFields(logrus.Fields{
		"generation": stats.Generation,
		"items":      stats.Items,
		"routes":     stats.Routes,
		"problems":   len(stats.Problems),
		"duration":   stats.Duration,
	}).Info("cache rebuilt")

	return stats, nil
}

func (ix *Indexer) countFiles(sc *scanner.Scanner) (int, error) {
	total := 0
	for _, ct := range ix.site.Types {
		files, err := sc.Discover(ct)
		if err != nil {
			return 0, fmt.Errorf("failed to discover %s files: %w", ct.Name, err)
		}
		total += len(files)
	}
	return total, nil
}

func (ix *Indexer) logProblems(stats *Stats) {
	for _, p := range stats.Problems {
		ix.log.WithFields(logrus.Fields{"path": p.Path, "kind": p.Kind}).Warn(p.Message)
	}
	for _, p := range stats.Warnings {
		ix.log.WithFields(logrus.Fields{"path": p.Path, "kind": p.Kind}).Debug(p.Message)
	}

	if ix.opts.DisableErrorLog {
		return
	}
	if err := appendErrorLog(ix.site.LogDir(), stats.Generation, stats.Problems); err != nil {
		ix.log.WithError(err).Warn("failed to append error log")
	}
}

// Lint runs the scan phase only and returns its problems. The cache is
// not touched. Every problem Lint reports is also reported by a Rebuild
// of the same tree.
func (ix *Indexer) Lint(ctx context.Context) ([]scanner.Problem, error) {
	sc, err := ix.newScanner(nil)
	if err != nil {
		return nil, err
	}

	results, err := sc.ScanAll(ctx, scanner.NewSession())
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	var problems []scanner.Problem
	for _, tr := range results {
		problems = append(problems, tr.Problems...)
	}
	return problems, nil
}

// State reports the cache lifecycle state.
func (ix *Indexer) State(ctx context.Context) State {
	if ix.rebuilding.Load() {
		return StateRebuilding
	}

	dir := ix.site.CacheDir()
	stamp, err := cache.ReadStamp(dir)
	if errors.Is(err, cache.ErrNotBuilt) {
		return StateUnbuilt
	}
	if err != nil {
		ix.log.WithError(err).Debug("stored fingerprint unreadable")
		return StateStale
	}
	if !cache.Complete(dir) {
		return StateUnbuilt
	}
	if stamp.Format != ix.site.CacheFormat.Name() {
		return StateStale
	}

	fp, err := ix.calc.Compute(ctx)
	if err != nil {
		ix.log.WithError(err).Warn("failed to compute fingerprint")
		return StateStale
	}
	if !fp.Equal(stamp.Fingerprint) {
		return StateStale
	}
	return StateFresh
}

// IsCacheFresh reports whether a complete generation matches the current
// content and configuration. Missing or corrupt data is never fresh.
func (ix *Indexer) IsCacheFresh(ctx context.Context) bool {
	return ix.State(ctx) == StateFresh
}

// EnsureFresh applies the configured cache mode: "always" rebuilds,
// "auto" rebuilds when not fresh, "never" leaves the cache alone.
// It returns the rebuild stats, or nil when no rebuild ran.
func (ix *Indexer) EnsureFresh(ctx context.Context) (*Stats, error) {
	switch ix.site.CacheMode {
	case config.CacheNever:
		return nil, nil
	case config.CacheAlways:
		return ix.Rebuild(ctx)
	default:
		if ix.IsCacheFresh(ctx) {
			return nil, nil
		}
		return ix.Rebuild(ctx)
	}
}

// Load returns the latest committed generation.
func (ix *Indexer) Load() (*cache.Snapshot, error) {
	return ix.reader.Load()
}

// Clean removes every cache generation and returns the bytes freed.
// It fails with ErrRebuildInProgress while a rebuild holds the lock.
func (ix *Indexer) Clean() (int64, error) {
	if !ix.rebuilding.CompareAndSwap(false, true) {
		return 0, ErrRebuildInProgress
	}
	defer ix.rebuilding.Store(false)

	dir := ix.site.CacheDir()
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}

	lock, err := acquireRebuildLock(dir)
	if err != nil {
		return 0, err
	}
	defer ix.releaseLock(lock)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read cache directory: %w", err)
	}

	var freed int64
	for _, entry := range entries {
		if entry.Name() == lockFileName {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		freed += diskUsage(path)
		if err := os.RemoveAll(path); err != nil {
			return freed, fmt.Errorf("failed to remove %s: %w", entry.Name(), err)
		}
	}

	ix.log.WithFields(logrus.Fields{"dir": dir, "bytes": freed}).Info("cache cleaned")
	return freed, nil
}

// releaseLock drops the rebuild lock. A failure is only logged since the
// work under the lock has already completed.
func (ix *Indexer) releaseLock(lock *rebuildLock) {
	if err := lock.release(); err != nil {
		ix.log.WithError(err).Warn("failed to release rebuild lock")
	}
}

func diskUsage(path string) int64 {
	var total int64
	filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			total += info.Size()
		}
		return nil
	})
	return total
}
