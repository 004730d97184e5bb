package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/mvp-joe/folio/internal/cache/codec"
	"github.com/mvp-joe/folio/internal/index"
	"github.com/natefinch/atomic"
	"github.com/sirupsen/logrus"
)

// Writer commits generations to a cache directory.
type Writer struct {
	dir    string
	format codec.Format
	log    logrus.FieldLogger

	// beforeReplace runs before each staged file is moved into place.
	beforeReplace func(name string) error
}

// NewWriter creates a writer for dir using format for the index artifacts.
func NewWriter(dir string, format codec.Format, logger logrus.FieldLogger) *Writer {
	if format == nil {
		format = codec.Default
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Writer{dir: dir, format: format, log: logger}
}

// Dir returns the cache directory.
func (w *Writer) Dir() string { return w.dir }

// Write stages and commits snap as a new generation. It fills in the
// stamp's generation, build time and format. Any failure leaves the
// previous generation readable.
func (w *Writer) Write(ctx context.Context, snap *Snapshot) error {
	stamp := &snap.Stamp
	if stamp.Generation == "" {
		stamp.Generation = uuid.NewString()
	}
	if stamp.BuiltAt.IsZero() {
		stamp.BuiltAt = time.Now().UTC()
	}
	stamp.Format = w.format.Name()

	stage := filepath.Join(w.dir, tempDirName, stamp.Generation)
	if err := os.MkdirAll(stage, 0o755); err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(stage)

	files, err := w.stage(stage, snap)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := w.preservePrevious(); err != nil {
		return err
	}

	for _, name := range files {
		if w.beforeReplace != nil {
			if err := w.beforeReplace(name); err != nil {
				return err
			}
		}
		final := filepath.Join(w.dir, name)
		if err := atomic.ReplaceFile(filepath.Join(stage, name), final); err != nil {
			return fmt.Errorf("failed to replace %s: %w", name, err)
		}
		if err := os.Chmod(final, 0o644); err != nil {
			return fmt.Errorf("failed to set permissions on %s: %w", name, err)
		}
	}

	if err := os.RemoveAll(filepath.Join(w.dir, prevDirName)); err != nil {
		w.log.WithError(err).Warn("failed to remove previous generation")
	}
	os.Remove(filepath.Join(w.dir, tempDirName))
	w.removeOtherFormats()

	w.log.WithFields(logrus.Fields{
		"generation": stamp.Generation,
		"format":     stamp.Format,
		"dir":        w.dir,
	}).Debug("cache generation committed")

	return nil
}

// stage writes every file into dir and returns their names in commit order.
func (w *Writer) stage(dir string, snap *Snapshot) ([]string, error) {
	gen, built := snap.Stamp.Generation, snap.Stamp.BuiltAt

	payloads := []struct {
		name string
		v    any
	}{
		{ContentIndexName, Artifact[*index.ContentIndex]{Generation: gen, BuiltAt: built, Payload: snap.Content}},
		{TaxIndexName, Artifact[index.TaxonomyIndex]{Generation: gen, BuiltAt: built, Payload: snap.Taxonomies}},
		{RoutesName, Artifact[*index.RouteTable]{Generation: gen, BuiltAt: built, Payload: snap.Routes}},
	}

	var names []string
	for _, p := range payloads {
		name := p.name + w.format.Ext()
		if err := writeEncoded(filepath.Join(dir, name), func(f *os.File) error {
			return w.format.Encode(f, p.v)
		}); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", name, err)
		}
		names = append(names, name)
	}

	if err := writeEncoded(filepath.Join(dir, StampFile), func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(snap.Stamp)
	}); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", StampFile, err)
	}
	return append(names, StampFile), nil
}

func writeEncoded(path string, encode func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encode(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// preservePrevious hard-links the committed generation into .prev. An
// existing .prev that matches the live stamp is left alone: it is the last
// complete generation of an interrupted commit.
func (w *Writer) preservePrevious() error {
	prev := filepath.Join(w.dir, prevDirName)

	live, err := ReadStamp(w.dir)
	if err != nil {
		// Nothing built, or nothing trustworthy to preserve.
		return os.RemoveAll(prev)
	}

	if kept, err := ReadStamp(prev); err == nil && kept.Generation == live.Generation {
		return nil
	}

	if err := os.RemoveAll(prev); err != nil {
		return fmt.Errorf("failed to clear previous generation: %w", err)
	}
	if err := os.MkdirAll(prev, 0o755); err != nil {
		return fmt.Errorf("failed to create previous generation directory: %w", err)
	}

	format, err := codec.Parse(live.Format)
	if err != nil {
		return nil
	}
	// The stamp goes last so a partial .prev is never mistaken for complete.
	var names []string
	for _, name := range artifactNames() {
		names = append(names, name+format.Ext())
	}
	for _, name := range append(names, StampFile) {
		err := os.Link(filepath.Join(w.dir, name), filepath.Join(prev, name))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to preserve %s: %w", name, err)
		}
	}
	return nil
}

// removeOtherFormats deletes artifacts left by a previously configured codec.
func (w *Writer) removeOtherFormats() {
	for _, f := range codec.All() {
		if f.Name() == w.format.Name() {
			continue
		}
		for _, name := range artifactNames() {
			os.Remove(ArtifactPath(w.dir, name, f))
		}
	}
}
