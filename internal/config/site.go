package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mvp-joe/folio/internal/cache/codec"
	"github.com/mvp-joe/folio/internal/content"
	"github.com/mvp-joe/folio/internal/fingerprint"
	"github.com/mvp-joe/folio/internal/permalink"
)

// Definition file names inside the config directory.
const (
	ContentTypesFile = "content_types.yml"
	TaxonomiesFile   = "taxonomies.yml"
	SettingsFile     = "folio.yml"
)

// RegistryDir is the content subdirectory holding taxonomy term registries.
const RegistryDir = "_taxonomies"

// Site is a fully resolved configuration: settings plus content type and
// taxonomy definitions, with every closed variant already resolved.
type Site struct {
	Root       string
	Config     *Config
	Types      []ContentType
	Taxonomies []Taxonomy

	// SettingsPath is the explicit settings file, if one was given.
	SettingsPath string

	Frontmatter     content.Format
	CacheFormat     codec.Format
	FingerprintMode fingerprint.Mode
	CacheMode       CacheMode
}

// LoadSite loads settings and definitions for the site rooted at root.
// configFile optionally names an explicit settings file.
func LoadSite(root, configFile string) (*Site, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve site root: %w", err)
	}

	var l Loader
	if configFile != "" {
		l = NewFileLoader(root, configFile)
	} else {
		l = NewLoader(root)
	}
	cfg, err := l.Load()
	if err != nil {
		return nil, err
	}

	configDir := resolve(root, cfg.Paths.Config)

	types, err := LoadContentTypes(findDefinition(configDir, ContentTypesFile))
	if err != nil {
		return nil, fmt.Errorf("failed to load content types: %w", err)
	}

	var taxonomies Taxonomies
	if path := findDefinition(configDir, TaxonomiesFile); fileExists(path) {
		if taxonomies, err = LoadTaxonomies(path); err != nil {
			return nil, fmt.Errorf("failed to load taxonomies: %w", err)
		}
	}

	site, err := NewSite(root, cfg, types, taxonomies)
	if err != nil {
		return nil, err
	}
	if configFile != "" {
		site.SettingsPath = resolve(root, configFile)
	}
	return site, nil
}

// NewSite assembles a Site from already decoded parts, filling defaults
// and resolving URL schemes. Definitions are validated together.
func NewSite(root string, cfg *Config, types []ContentType, taxonomies []Taxonomy) (*Site, error) {
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	s := &Site{
		Root:       root,
		Config:     cfg,
		Types:      make([]ContentType, len(types)),
		Taxonomies: taxonomies,
		CacheMode:  CacheMode(cfg.Cache.Mode),
	}
	copy(s.Types, types)

	// Validate already accepted these names.
	s.Frontmatter, _ = content.ParseFormat(cfg.Content.Frontmatter.Format)
	s.CacheFormat, _ = codec.Parse(cfg.Cache.Format)
	s.FingerprintMode, _ = fingerprint.ParseMode(cfg.Cache.Fingerprint)

	if err := s.resolveTypes(); err != nil {
		return nil, fmt.Errorf("invalid definitions: %w", err)
	}
	return s, nil
}

func (s *Site) resolveTypes() error {
	var errs []error

	declared := make(map[string]bool, len(s.Taxonomies))
	for _, tax := range s.Taxonomies {
		declared[tax.Name] = true
	}

	dirs := make(map[string]string)
	for i := range s.Types {
		ct := &s.Types[i]

		if ct.ContentDir == "" {
			ct.ContentDir = ct.Name
		}
		ct.ContentDir = filepath.ToSlash(filepath.Clean(ct.ContentDir))
		if other, ok := dirs[ct.ContentDir]; ok {
			errs = append(errs, fmt.Errorf("%w: %s: content_dir %q already used by %s", ErrInvalidContentType, ct.Name, ct.ContentDir, other))
		}
		dirs[ct.ContentDir] = ct.Name

		if ct.Sorting == "" {
			ct.Sorting = SortManual
		}
		if !ct.Sorting.valid() {
			errs = append(errs, fmt.Errorf("%w: %s: unknown sorting %q", ErrInvalidContentType, ct.Name, ct.Sorting))
		}

		scheme, err := permalink.NewScheme(ct.URL.Type, ct.URL.Base, ct.URL.Pattern)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %v", ErrInvalidContentType, ct.Name, err))
		}
		ct.Scheme = scheme

		for _, name := range ct.Taxonomies {
			if !declared[name] {
				errs = append(errs, fmt.Errorf("%w: %s references %q", ErrUnknownTaxonomy, ct.Name, name))
			}
		}
	}

	return joinErrors(errs)
}

// Type returns the content type with the given name.
func (s *Site) Type(name string) (ContentType, bool) {
	for _, ct := range s.Types {
		if ct.Name == name {
			return ct, true
		}
	}
	return ContentType{}, false
}

// Taxonomy returns the taxonomy with the given name.
func (s *Site) Taxonomy(name string) (Taxonomy, bool) {
	for _, tax := range s.Taxonomies {
		if tax.Name == name {
			return tax, true
		}
	}
	return Taxonomy{}, false
}

// TaxonomyNames lists declared taxonomies in order.
func (s *Site) TaxonomyNames() []string {
	names := make([]string, len(s.Taxonomies))
	for i, tax := range s.Taxonomies {
		names[i] = tax.Name
	}
	return names
}

// ContentDir is the absolute content root.
func (s *Site) ContentDir() string { return resolve(s.Root, s.Config.Paths.Content) }

// ConfigDir is the absolute directory holding definition files.
func (s *Site) ConfigDir() string { return resolve(s.Root, s.Config.Paths.Config) }

// StorageDir is the absolute storage root.
func (s *Site) StorageDir() string { return resolve(s.Root, s.Config.Paths.Storage) }

// CacheDir is where cache artifacts are written.
func (s *Site) CacheDir() string { return filepath.Join(s.StorageDir(), "cache") }

// LogDir is where the indexer error log is written.
func (s *Site) LogDir() string { return filepath.Join(s.StorageDir(), "logs") }

// TypeDir is the absolute directory scanned for a content type.
func (s *Site) TypeDir(ct ContentType) string {
	return filepath.Join(s.ContentDir(), filepath.FromSlash(ct.ContentDir))
}

// RegistryPath returns the term registry file for a taxonomy, or "" when
// none exists.
func (s *Site) RegistryPath(taxonomy string) string {
	dir := filepath.Join(s.ContentDir(), RegistryDir)
	for _, ext := range []string{".yml", ".yaml"} {
		path := filepath.Join(dir, taxonomy+ext)
		if fileExists(path) {
			return path
		}
	}
	return ""
}

// ConfigFiles lists the definition files whose contents affect the index,
// keyed by file name. Missing files are included; callers hash what exists.
func (s *Site) ConfigFiles() map[string]string {
	dir := s.ConfigDir()
	settings := filepath.Join(dir, SettingsFile)
	if s.SettingsPath != "" {
		settings = s.SettingsPath
	} else if !fileExists(settings) && fileExists(filepath.Join(s.Root, SettingsFile)) {
		settings = filepath.Join(s.Root, SettingsFile)
	}
	return map[string]string{
		SettingsFile:     settings,
		ContentTypesFile: findDefinition(dir, ContentTypesFile),
		TaxonomiesFile:   findDefinition(dir, TaxonomiesFile),
	}
}

func resolve(root, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(root, p)
}

// findDefinition prefers name and falls back to its .yaml spelling.
func findDefinition(dir, name string) string {
	path := filepath.Join(dir, name)
	if fileExists(path) {
		return path
	}
	alt := filepath.Join(dir, strings.TrimSuffix(name, ".yml")+".yaml")
	if fileExists(alt) {
		return alt
	}
	return path
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
