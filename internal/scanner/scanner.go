package scanner

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/mvp-joe/folio/internal/config"
	"github.com/mvp-joe/folio/internal/content"
	"github.com/mvp-joe/folio/internal/permalink"
	"github.com/mvp-joe/folio/internal/validate"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Entry is one successfully parsed file.
type Entry struct {
	Item *content.Item
	// Path is relative to the content root, e.g. "posts/hello.md".
	Path string
	// RelPath is relative to the content type directory, e.g. "hello.md".
	RelPath string

	// DuplicateSlug is set when an earlier file of the same type already
	// claimed the slug. Such entries are kept out of slug-keyed tables.
	DuplicateSlug bool
	// DuplicateID is set when an earlier file anywhere claimed the id.
	DuplicateID bool
}

// TypeResult is the outcome of scanning one content type.
type TypeResult struct {
	Type     config.ContentType
	Entries  []Entry
	Problems []Problem
	Warnings []Problem
}

// Options configures a Scanner.
type Options struct {
	// Workers bounds concurrent file parsing. Defaults to the site's scan.workers.
	Workers int
	// OnFile is called after each file is parsed. It may be called concurrently.
	OnFile func(path string)
	Logger logrus.FieldLogger
}

// Scanner parses and validates the files of each content type.
type Scanner struct {
	site      *config.Site
	discovery *Discovery
	validator *validate.Validator
	workers   int
	onFile    func(string)
	log       logrus.FieldLogger
}

// New creates a scanner for the site.
func New(site *config.Site, opts Options) (*Scanner, error) {
	d, err := NewDiscovery(site.ContentDir(), site.Config.Content.Extension, site.Config.Scan.Ignore)
	if err != nil {
		return nil, fmt.Errorf("invalid scan.ignore pattern: %w", err)
	}

	s := &Scanner{
		site:      site,
		discovery: d,
		validator: validate.New(),
		workers:   opts.Workers,
		onFile:    opts.OnFile,
		log:       opts.Logger,
	}
	if s.workers <= 0 {
		s.workers = site.Config.Scan.Workers
	}
	if s.workers <= 0 {
		s.workers = 1
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	return s, nil
}

// Discover lists the files of a content type in scan order.
func (s *Scanner) Discover(ct config.ContentType) ([]string, error) {
	return s.discovery.Discover(s.site.TypeDir(ct))
}

// ScanAll scans every content type in declaration order with one session.
func (s *Scanner) ScanAll(ctx context.Context, session *Session) ([]*TypeResult, error) {
	results := make([]*TypeResult, 0, len(s.site.Types))
	for _, ct := range s.site.Types {
		res, err := s.ScanType(ctx, ct, session)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

// parsed holds the per-file outcome before uniqueness checks.
type parsed struct {
	item   *content.Item
	result validate.Result
	err    error
}

// ScanType parses every file of ct in parallel, then validates and checks
// uniqueness sequentially in path order so the first file always wins.
// Only discovery failures and cancellation are returned as errors.
func (s *Scanner) ScanType(ctx context.Context, ct config.ContentType, session *Session) (*TypeResult, error) {
	typeDir := s.site.TypeDir(ct)
	files, err := s.discovery.Discover(typeDir)
	if err != nil {
		return nil, fmt.Errorf("failed to discover %s files: %w", ct.Name, err)
	}

	var opts []content.ParserOption
	if ct.Scheme != nil && ct.Scheme.Kind() == permalink.KindHierarchical {
		opts = append(opts, content.WithPathSlugs())
	}
	parser := content.NewParser(s.site.Frontmatter, ct.Taxonomies, opts...)
	out := make([]parsed, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rel, _ := filepath.Rel(typeDir, path)
			item, err := parser.ParseFile(content.Source{
				Path:    path,
				RelPath: filepath.ToSlash(rel),
				Type:    ct.Name,
			})
			out[i] = parsed{item: item, err: err}
			if err == nil {
				out[i].result = s.validator.Validate(item, ct.Fields)
			}
			if s.onFile != nil {
				s.onFile(path)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &TypeResult{Type: ct}
	slugs := make(map[string]string, len(files))

	for i, path := range files {
		p := out[i]
		relPath := s.discovery.Rel(path)

		if p.err != nil {
			var perr *content.ParseError
			msg := p.err.Error()
			if !errors.As(p.err, &perr) {
				msg = "unreadable file: " + msg
			}
			res.Problems = append(res.Problems, Problem{Path: relPath, Kind: KindParse, Message: msg})
			s.log.WithFields(logrus.Fields{"path": relPath, "error": p.err}).Debug("parse failed")
			continue
		}

		for _, msg := range p.result.Errors {
			res.Problems = append(res.Problems, Problem{Path: relPath, Kind: KindValidation, Message: msg})
		}
		for _, msg := range p.result.Warnings {
			res.Warnings = append(res.Warnings, Problem{Path: relPath, Kind: KindValidation, Message: msg})
		}

		typeRel, _ := filepath.Rel(typeDir, path)
		entry := Entry{Item: p.item, Path: relPath, RelPath: filepath.ToSlash(typeRel)}

		if owner, taken := slugs[p.item.Slug]; taken {
			entry.DuplicateSlug = true
			res.Problems = append(res.Problems, Problem{
				Path:    relPath,
				Kind:    KindDuplicateSlug,
				Message: fmt.Sprintf("Duplicate slug %q in %s (already used by %s)", p.item.Slug, ct.Name, owner),
				Related: owner,
			})
		} else {
			slugs[p.item.Slug] = relPath
		}

		if p.item.ID != "" {
			if owner, ok := session.claimID(p.item.ID, relPath); !ok {
				entry.DuplicateID = true
				res.Problems = append(res.Problems, Problem{
					Path:    relPath,
					Kind:    KindDuplicateID,
					Message: fmt.Sprintf("Duplicate id %q (already used by %s)", p.item.ID, owner),
					Related: owner,
				})
			}
		}

		res.Entries = append(res.Entries, entry)
	}

	s.log.WithFields(logrus.Fields{
		"type":     ct.Name,
		"files":    len(files),
		"items":    len(res.Entries),
		"problems": len(res.Problems),
	}).Debug("scanned content type")

	return res, nil
}
