// Package config loads site configuration: the folio.yml settings file
// (viper, with FOLIO_ environment overrides) and the content type and
// taxonomy definitions that drive scanning, validation and routing.
package config

// Config holds site-wide indexer settings.
// It is loaded from app/config/folio.yml with environment variable overrides.
type Config struct {
	Paths   PathsConfig   `yaml:"paths" mapstructure:"paths"`
	Content ContentConfig `yaml:"content" mapstructure:"content"`
	Cache   CacheConfig   `yaml:"cache" mapstructure:"cache"`
	Scan    ScanConfig    `yaml:"scan" mapstructure:"scan"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// PathsConfig locates the content tree, storage and definition files.
// Relative paths are resolved against the site root.
type PathsConfig struct {
	Content string `yaml:"content" mapstructure:"content"`
	Storage string `yaml:"storage" mapstructure:"storage"`
	Config  string `yaml:"config" mapstructure:"config"`
}

// ContentConfig describes content files.
type ContentConfig struct {
	Extension   string            `yaml:"extension" mapstructure:"extension"` // e.g. ".md"
	Frontmatter FrontmatterConfig `yaml:"frontmatter" mapstructure:"frontmatter"`
}

// FrontmatterConfig selects the frontmatter syntax.
type FrontmatterConfig struct {
	Format string `yaml:"format" mapstructure:"format"` // "yaml", "toml" or "json"
}

// CacheConfig controls when and how the cache is written.
type CacheConfig struct {
	Mode        string `yaml:"mode" mapstructure:"mode"`               // "auto", "always" or "never"
	Format      string `yaml:"format" mapstructure:"format"`           // "gob", "gob+xz" or "json"
	Fingerprint string `yaml:"fingerprint" mapstructure:"fingerprint"` // "fast" or "content"
}

// ScanConfig tunes file discovery.
type ScanConfig struct {
	Ignore  []string `yaml:"ignore" mapstructure:"ignore"`   // glob patterns relative to the content root
	Workers int      `yaml:"workers" mapstructure:"workers"` // parallel file parsers
}

// LogConfig configures the logrus logger built by the CLI.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // "text" or "json"
}

// CacheMode decides whether reads trigger a rebuild.
type CacheMode string

const (
	// CacheAuto rebuilds only when the cache is missing or stale.
	CacheAuto CacheMode = "auto"
	// CacheAlways rebuilds on every request.
	CacheAlways CacheMode = "always"
	// CacheNever only reports staleness; rebuilds must be explicit.
	CacheNever CacheMode = "never"
)

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Content: "content",
			Storage: "storage",
			Config:  "app/config",
		},
		Content: ContentConfig{
			Extension:   ".md",
			Frontmatter: FrontmatterConfig{Format: "yaml"},
		},
		Cache: CacheConfig{
			Mode:        string(CacheAuto),
			Format:      "gob",
			Fingerprint: "fast",
		},
		Scan: ScanConfig{
			Ignore: []string{
				".*",
				"**/.*",
				"_taxonomies/**",
			},
			Workers: 4,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
