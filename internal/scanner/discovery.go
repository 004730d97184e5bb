package scanner

import (
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// Discovery finds content files under the content root, honoring ignore
// globs matched against slash-separated paths relative to that root.
type Discovery struct {
	contentRoot    string
	extension      string
	ignorePatterns []compiledPattern
}

// NewDiscovery compiles the ignore patterns.
func NewDiscovery(contentRoot, extension string, ignorePatterns []string) (*Discovery, error) {
	d := &Discovery{
		contentRoot: contentRoot,
		extension:   strings.ToLower(extension),
	}

	for _, pattern := range ignorePatterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		d.ignorePatterns = append(d.ignorePatterns, compiledPattern{pattern: pattern, glob: g})
	}

	return d, nil
}

// Discover returns the absolute paths of content files under dir, sorted
// lexically by their content-relative path. A missing dir yields no files.
func (d *Discovery) Discover(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if path == dir && errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipDir
			}
			return err
		}

		rel := d.Rel(path)
		if path != dir && d.shouldIgnore(rel) {
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if entry.IsDir() || !entry.Type().IsRegular() {
			return nil
		}
		if strings.ToLower(filepath.Ext(path)) != d.extension {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool {
		return d.Rel(files[i]) < d.Rel(files[j])
	})
	return files, nil
}

// Rel returns path relative to the content root, slash-separated.
func (d *Discovery) Rel(path string) string {
	rel, err := filepath.Rel(d.contentRoot, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// shouldIgnore checks if a path matches any ignore pattern.
func (d *Discovery) shouldIgnore(relPath string) bool {
	if d.matchesAnyPattern(relPath) {
		return true
	}

	// A directory named by "dir/**" is skipped as a whole.
	return d.matchesAnyPattern(relPath + "/**")
}

// matchesAnyPattern checks if a path matches any ignore pattern.
// A root-level path also matches patterns written with a leading "**/".
func (d *Discovery) matchesAnyPattern(path string) bool {
	for _, cp := range d.ignorePatterns {
		if cp.glob.Match(path) {
			return true
		}
	}

	if !strings.Contains(path, "/") {
		for _, cp := range d.ignorePatterns {
			if !strings.HasPrefix(cp.pattern, "**/") {
				continue
			}
			if g, err := glob.Compile(strings.TrimPrefix(cp.pattern, "**/"), '/'); err == nil && g.Match(path) {
				return true
			}
		}
	}

	return false
}
