// Package fingerprint summarizes watched directories and config files into
// a comparable signature used to decide whether the cache is stale.
package fingerprint

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Mode selects how much work a fingerprint does.
type Mode int

const (
	// ModeFast records mtime, file count and total size per directory.
	ModeFast Mode = iota
	// ModeContent also digests every file's path and bytes, so edits that
	// preserve mtime and size are still detected.
	ModeContent
)

// ParseMode resolves a configured mode name.
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "fast":
		return ModeFast, nil
	case "content":
		return ModeContent, nil
	default:
		return 0, fmt.Errorf("unknown fingerprint mode %q (valid: fast, content)", name)
	}
}

func (m Mode) String() string {
	if m == ModeContent {
		return "content"
	}
	return "fast"
}

// DirStat summarizes one watched directory.
type DirStat struct {
	MaxMtime int64  `json:"max_mtime"` // unix nanoseconds, files and directories
	Count    int    `json:"count"`     // regular files
	Size     int64  `json:"size"`      // total bytes of regular files
	Digest   string `json:"digest,omitempty"`
}

// Fingerprint is compared for equality only.
type Fingerprint struct {
	Mode   string             `json:"mode"`
	Dirs   map[string]DirStat `json:"dirs"`
	Config map[string]string  `json:"config"` // file name → sha256
}

// Equal reports whether two fingerprints describe the same state.
// A nil fingerprint equals nothing.
func (f *Fingerprint) Equal(other *Fingerprint) bool {
	if f == nil || other == nil {
		return false
	}
	if f.Mode != other.Mode || len(f.Dirs) != len(other.Dirs) || len(f.Config) != len(other.Config) {
		return false
	}
	for name, stat := range f.Dirs {
		if o, ok := other.Dirs[name]; !ok || o != stat {
			return false
		}
	}
	for name, sum := range f.Config {
		if o, ok := other.Config[name]; !ok || o != sum {
			return false
		}
	}
	return true
}

// Calculator computes fingerprints for a fixed set of directories and files.
type Calculator struct {
	mode        Mode
	dirs        map[string]string
	configFiles map[string]string
}

// NewCalculator creates a calculator. dirs and configFiles map a stable
// name to an absolute path; missing paths are recorded as empty.
func NewCalculator(mode Mode, dirs, configFiles map[string]string) *Calculator {
	return &Calculator{mode: mode, dirs: dirs, configFiles: configFiles}
}

// Compute walks every watched directory once and hashes each config file.
func (c *Calculator) Compute(ctx context.Context) (*Fingerprint, error) {
	fp := &Fingerprint{
		Mode:   c.mode.String(),
		Dirs:   make(map[string]DirStat, len(c.dirs)),
		Config: make(map[string]string, len(c.configFiles)),
	}

	for name, dir := range c.dirs {
		stat, err := c.walk(ctx, dir)
		if err != nil {
			return nil, fmt.Errorf("failed to fingerprint %s: %w", name, err)
		}
		fp.Dirs[name] = stat
	}

	for name, path := range c.configFiles {
		sum, err := hashFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to hash %s: %w", name, err)
		}
		fp.Config[name] = sum
	}

	return fp, nil
}

func (c *Calculator) walk(ctx context.Context, root string) (DirStat, error) {
	var stat DirStat
	var digest hash.Hash
	if c.mode == ModeContent {
		digest = sha256.New()
	}

	// WalkDir visits entries in lexical order, so the digest is stable.
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root && errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipDir
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if mtime := info.ModTime().UnixNano(); mtime > stat.MaxMtime {
			stat.MaxMtime = mtime
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		stat.Count++
		stat.Size += info.Size()

		if digest != nil {
			rel, _ := filepath.Rel(root, path)
			io.WriteString(digest, filepath.ToSlash(rel))
			digest.Write([]byte{0})
			if err := copyFile(digest, path); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return DirStat{}, err
	}

	if digest != nil {
		stat.Digest = hex.EncodeToString(digest.Sum(nil))
	}
	return stat, nil
}

func copyFile(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}

// hashFile returns the SHA-256 of a file as hex.
func hashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
