package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	configFile string
}

// NewLoader creates a loader that searches <root>/app/config and <root>
// for folio.yml or folio.yaml.
func NewLoader(rootDir string) Loader {
	return &loader{rootDir: rootDir}
}

// NewFileLoader creates a loader for an explicit settings file.
// The file must exist.
func NewFileLoader(rootDir, configFile string) Loader {
	return &loader{rootDir: rootDir, configFile: configFile}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (FOLIO_*)
// 2. Config file (app/config/folio.yml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName("folio")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(l.rootDir, "app", "config"))
		v.AddConfigPath(l.rootDir)
	}

	// FOLIO_CACHE_FORMAT overrides cache.format
	v.SetEnvPrefix("FOLIO")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if l.configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("paths.content", defaults.Paths.Content)
	v.SetDefault("paths.storage", defaults.Paths.Storage)
	v.SetDefault("paths.config", defaults.Paths.Config)

	v.SetDefault("content.extension", defaults.Content.Extension)
	v.SetDefault("content.frontmatter.format", defaults.Content.Frontmatter.Format)

	v.SetDefault("cache.mode", defaults.Cache.Mode)
	v.SetDefault("cache.format", defaults.Cache.Format)
	v.SetDefault("cache.fingerprint", defaults.Cache.Fingerprint)

	v.SetDefault("scan.ignore", defaults.Scan.Ignore)
	v.SetDefault("scan.workers", defaults.Scan.Workers)

	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.format", defaults.Log.Format)
}
