// Package cache persists index generations and reads them back.
//
// A generation is four files written together: content_index, tax_index and
// routes in the configured codec, plus fingerprint.json. Every file carries
// the generation id. Files are staged under .tmp and moved into place with
// an atomic replace, fingerprint.json last. Before the first replace the
// current generation is hard-linked into .prev so an interrupted commit
// never leaves readers without a complete generation.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/mvp-joe/folio/internal/cache/codec"
	"github.com/mvp-joe/folio/internal/fingerprint"
	"github.com/mvp-joe/folio/internal/index"
)

// Artifact base names inside the cache directory.
const (
	ContentIndexName = "content_index"
	TaxIndexName     = "tax_index"
	RoutesName       = "routes"
	StampFile        = "fingerprint.json"

	tempDirName = ".tmp"
	prevDirName = ".prev"
)

var (
	// ErrNotBuilt indicates no generation has been written yet.
	ErrNotBuilt = errors.New("cache not built")

	// ErrGenerationMismatch indicates artifacts from different generations
	// and no complete fallback generation.
	ErrGenerationMismatch = errors.New("cache generation mismatch")

	// ErrCorrupt indicates an artifact that could not be decoded.
	ErrCorrupt = errors.New("cache artifact corrupt")
)

// Artifact wraps a payload with its generation.
type Artifact[T any] struct {
	Generation string
	BuiltAt    time.Time
	Payload    T
}

// Stamp is the content of fingerprint.json. It is always JSON so simple
// tooling can inspect it.
type Stamp struct {
	Generation  string                   `json:"generation"`
	BuiltAt     time.Time                `json:"built_at"`
	Format      string                   `json:"format"`
	Items       int                      `json:"items"`
	Problems    int                      `json:"problems"`
	Fingerprint *fingerprint.Fingerprint `json:"fingerprint"`
}

// Snapshot is one complete generation. Snapshots returned by a Reader are
// shared and must be treated as read-only.
type Snapshot struct {
	Stamp      Stamp
	Content    *index.ContentIndex
	Taxonomies index.TaxonomyIndex
	Routes     *index.RouteTable
}

// ArtifactPath returns the path of a named artifact for a format.
func ArtifactPath(dir, name string, format codec.Format) string {
	return filepath.Join(dir, name+format.Ext())
}

func artifactNames() []string {
	return []string{ContentIndexName, TaxIndexName, RoutesName}
}

// ReadStamp reads fingerprint.json from dir.
func ReadStamp(dir string) (*Stamp, error) {
	data, err := os.ReadFile(filepath.Join(dir, StampFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotBuilt
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", StampFile, err)
	}

	var stamp Stamp
	if err := json.Unmarshal(data, &stamp); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, StampFile, err)
	}
	if stamp.Generation == "" {
		return nil, fmt.Errorf("%w: %s has no generation", ErrCorrupt, StampFile)
	}
	return &stamp, nil
}

// Complete reports whether dir holds a stamp and every artifact it names.
func Complete(dir string) bool {
	stamp, err := ReadStamp(dir)
	if err != nil {
		return false
	}
	format, err := codec.Parse(stamp.Format)
	if err != nil {
		return false
	}
	for _, name := range artifactNames() {
		if _, err := os.Stat(ArtifactPath(dir, name, format)); err != nil {
			return false
		}
	}
	return true
}
