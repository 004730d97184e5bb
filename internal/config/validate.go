package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mvp-joe/folio/internal/cache/codec"
	"github.com/mvp-joe/folio/internal/content"
	"github.com/mvp-joe/folio/internal/fingerprint"
	"github.com/sirupsen/logrus"
)

var (
	// ErrEmptyPath indicates a missing content, storage or config path
	ErrEmptyPath = errors.New("empty path")

	// ErrInvalidExtension indicates a content extension without a leading dot
	ErrInvalidExtension = errors.New("invalid content extension")

	// ErrInvalidFrontmatter indicates an unsupported frontmatter format
	ErrInvalidFrontmatter = errors.New("invalid frontmatter format")

	// ErrInvalidCacheMode indicates an unsupported cache mode
	ErrInvalidCacheMode = errors.New("invalid cache mode")

	// ErrInvalidCacheFormat indicates an unsupported cache serialization
	ErrInvalidCacheFormat = errors.New("invalid cache format")

	// ErrInvalidFingerprint indicates an unsupported fingerprint mode
	ErrInvalidFingerprint = errors.New("invalid fingerprint mode")

	// ErrInvalidWorkers indicates a non-positive worker count
	ErrInvalidWorkers = errors.New("invalid worker count")

	// ErrInvalidLogSettings indicates an unknown log level or format
	ErrInvalidLogSettings = errors.New("invalid log settings")

	// ErrInvalidContentType indicates a malformed content type definition
	ErrInvalidContentType = errors.New("invalid content type")

	// ErrUnknownTaxonomy indicates a content type referencing an undeclared taxonomy
	ErrUnknownTaxonomy = errors.New("unknown taxonomy")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validatePaths(&cfg.Paths); err != nil {
		errs = append(errs, err)
	}
	if err := validateContent(&cfg.Content); err != nil {
		errs = append(errs, err)
	}
	if err := validateCache(&cfg.Cache); err != nil {
		errs = append(errs, err)
	}
	if cfg.Scan.Workers <= 0 {
		errs = append(errs, fmt.Errorf("%w: scan.workers must be positive, got %d", ErrInvalidWorkers, cfg.Scan.Workers))
	}
	if err := validateLog(&cfg.Log); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}
	return nil
}

func validatePaths(cfg *PathsConfig) error {
	var errs []error
	for _, p := range []struct{ key, value string }{
		{"paths.content", cfg.Content},
		{"paths.storage", cfg.Storage},
		{"paths.config", cfg.Config},
	} {
		if strings.TrimSpace(p.value) == "" {
			errs = append(errs, fmt.Errorf("%w: %s is required", ErrEmptyPath, p.key))
		}
	}
	return joinErrors(errs)
}

func validateContent(cfg *ContentConfig) error {
	var errs []error

	if !strings.HasPrefix(cfg.Extension, ".") || len(cfg.Extension) < 2 {
		errs = append(errs, fmt.Errorf("%w: must start with '.', got '%s'", ErrInvalidExtension, cfg.Extension))
	}
	if _, err := content.ParseFormat(cfg.Frontmatter.Format); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidFrontmatter, err))
	}

	return joinErrors(errs)
}

func validateCache(cfg *CacheConfig) error {
	var errs []error

	switch CacheMode(cfg.Mode) {
	case CacheAuto, CacheAlways, CacheNever:
	default:
		errs = append(errs, fmt.Errorf("%w: must be 'auto', 'always' or 'never', got '%s'", ErrInvalidCacheMode, cfg.Mode))
	}
	if _, err := codec.Parse(cfg.Format); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidCacheFormat, err))
	}
	if _, err := fingerprint.ParseMode(cfg.Fingerprint); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidFingerprint, err))
	}

	return joinErrors(errs)
}

func validateLog(cfg *LogConfig) error {
	var errs []error

	if _, err := logrus.ParseLevel(cfg.Level); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidLogSettings, err))
	}
	if cfg.Format != "text" && cfg.Format != "json" {
		errs = append(errs, fmt.Errorf("%w: log.format must be 'text' or 'json', got '%s'", ErrInvalidLogSettings, cfg.Format))
	}

	return joinErrors(errs)
}

// joinErrors combines multiple errors into a single error with clear formatting.
// The result still matches each sentinel with errors.Is.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}

	return &multiError{
		msg:  fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - ")),
		errs: errs,
	}
}

type multiError struct {
	msg  string
	errs []error
}

func (e *multiError) Error() string   { return e.msg }
func (e *multiError) Unwrap() []error { return e.errs }
