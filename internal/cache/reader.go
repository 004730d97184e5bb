package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/maypok86/otter"
	"github.com/mvp-joe/folio/internal/cache/codec"
	"github.com/mvp-joe/folio/internal/index"
)

const (
	defaultAttempts = 3
	defaultBackoff  = 20 * time.Millisecond
	memoCapacity    = 8
)

// Reader loads complete generations for consumers. Decoded snapshots are
// memoized by generation, so repeated loads of an unchanged cache only
// read fingerprint.json.
type Reader struct {
	dir      string
	memo     otter.Cache[string, *Snapshot]
	attempts int
	backoff  time.Duration
}

// NewReader creates a reader for dir. Call Close when done.
func NewReader(dir string) (*Reader, error) {
	memo, err := otter.MustBuilder[string, *Snapshot](memoCapacity).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot memo: %w", err)
	}
	return &Reader{
		dir:      dir,
		memo:     memo,
		attempts: defaultAttempts,
		backoff:  defaultBackoff,
	}, nil
}

// Close releases the memo.
func (r *Reader) Close() {
	r.memo.Close()
}

// Stamp reads the live fingerprint.json.
func (r *Reader) Stamp() (*Stamp, error) {
	return ReadStamp(r.dir)
}

// Load returns the latest complete generation. When a commit is in
// progress it falls back to the preserved previous generation, retrying
// briefly before reporting ErrGenerationMismatch.
func (r *Reader) Load() (*Snapshot, error) {
	var lastErr error
	for attempt := 0; attempt < r.attempts; attempt++ {
		if attempt > 0 {
			time.Sleep(r.backoff)
		}

		stamp, err := ReadStamp(r.dir)
		if err != nil {
			return nil, err
		}
		if snap, ok := r.memo.Get(stamp.Generation); ok {
			return snap, nil
		}

		snap, err := loadSet(r.dir, stamp)
		if errors.Is(err, ErrGenerationMismatch) {
			snap, err = loadSet(filepath.Join(r.dir, prevDirName), stamp)
		}
		if err == nil {
			r.memo.Set(stamp.Generation, snap)
			return snap, nil
		}
		if !errors.Is(err, ErrGenerationMismatch) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// loadSet decodes the three artifacts in dir and checks that each belongs
// to the stamp's generation.
func loadSet(dir string, stamp *Stamp) (*Snapshot, error) {
	format, err := codec.Parse(stamp.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	var (
		content Artifact[*index.ContentIndex]
		tax     Artifact[index.TaxonomyIndex]
		routes  Artifact[*index.RouteTable]
	)
	targets := []struct {
		name string
		v    any
		gen  func() string
	}{
		{ContentIndexName, &content, func() string { return content.Generation }},
		{TaxIndexName, &tax, func() string { return tax.Generation }},
		{RoutesName, &routes, func() string { return routes.Generation }},
	}

	for _, t := range targets {
		path := ArtifactPath(dir, t.name, format)
		if err := decodeFile(path, format, t.v); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s missing", ErrGenerationMismatch, filepath.Base(path))
			}
			return nil, err
		}
		if gen := t.gen(); gen != stamp.Generation {
			return nil, fmt.Errorf("%w: %s is generation %s, stamp is %s",
				ErrGenerationMismatch, filepath.Base(path), gen, stamp.Generation)
		}
	}

	return &Snapshot{
		Stamp:      *stamp,
		Content:    content.Payload,
		Taxonomies: tax.Payload,
		Routes:     routes.Payload,
	}, nil
}

func decodeFile(path string, format codec.Format, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := format.Decode(f, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, filepath.Base(path), err)
	}
	return nil
}
