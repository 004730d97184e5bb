package content

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

// Format selects the frontmatter syntax.
type Format int

const (
	FormatYAML Format = iota
	FormatTOML
	FormatJSON
)

// ParseFormat resolves a configured format name.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	case "json":
		return FormatJSON, nil
	default:
		return 0, fmt.Errorf("unknown frontmatter format %q (valid: yaml, toml, json)", name)
	}
}

func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatJSON:
		return "json"
	default:
		return "yaml"
	}
}

// ErrParse is matched by every ParseError.
var ErrParse = errors.New("parse error")

// ParseError reports a content file that could not be read or whose
// frontmatter is malformed. Such files are excluded from the index.
type ParseError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return e.Reason
	}
	return fmt.Sprintf("%s: %v", e.Reason, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// Source identifies one file to parse.
type Source struct {
	// Path is the absolute file path.
	Path string
	// RelPath is slash-separated and relative to the content type directory.
	RelPath string
	// Type is the content type name.
	Type string
}

// Parser turns content files into Items. It is safe for concurrent use.
type Parser struct {
	format     Format
	taxonomies map[string]bool
	pathSlugs  bool
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithPathSlugs derives default slugs from the whole type-relative path
// ("services/web.md" becomes "services-web") instead of the base name.
func WithPathSlugs() ParserOption {
	return func(p *Parser) { p.pathSlugs = true }
}

// NewParser creates a parser for the given frontmatter format.
// Frontmatter keys named after a taxonomy are read as term assignments.
func NewParser(format Format, taxonomies []string, opts ...ParserOption) *Parser {
	tax := make(map[string]bool, len(taxonomies))
	for _, name := range taxonomies {
		tax[name] = true
	}
	p := &Parser{format: format, taxonomies: tax}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseFile reads and parses one content file.
func (p *Parser) ParseFile(src Source) (*Item, error) {
	f, err := os.Open(src.Path)
	if err != nil {
		return nil, &ParseError{Path: src.Path, Reason: "unreadable file", Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, &ParseError{Path: src.Path, Reason: "unreadable file", Err: err}
	}

	item, err := p.Parse(f, src)
	if err != nil {
		return nil, err
	}
	item.ModTime = info.ModTime()
	return item, nil
}

// Parse parses content read from r. A file without a frontmatter block is
// accepted and yields an item with empty metadata.
func (p *Parser) Parse(r io.Reader, src Source) (*Item, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Path: src.Path, Reason: "unreadable file", Err: err}
	}

	var meta Fields
	body, err := frontmatter.Parse(bytes.NewReader(data), &meta, p.formats()...)
	if err != nil {
		return nil, &ParseError{Path: src.Path, Reason: "invalid frontmatter", Err: err}
	}

	return p.buildItem(meta, string(body), src), nil
}

func (p *Parser) formats() []*frontmatter.Format {
	switch p.format {
	case FormatTOML:
		return []*frontmatter.Format{frontmatter.NewFormat("+++", "+++", unmarshalTOML)}
	case FormatJSON:
		f := frontmatter.NewFormat("{", "}", json.Unmarshal)
		f.UnmarshalDelims = true
		return []*frontmatter.Format{f}
	default:
		return []*frontmatter.Format{frontmatter.NewFormat("---", "---", yaml.Unmarshal)}
	}
}

// unmarshalTOML decodes TOML frontmatter into *Fields keeping top-level key order.
func unmarshalTOML(data []byte, v any) error {
	fields, ok := v.(*Fields)
	if !ok {
		return fmt.Errorf("unsupported target %T", v)
	}

	var m map[string]any
	md, err := toml.Decode(string(data), &m)
	if err != nil {
		return err
	}
	for _, key := range md.Keys() {
		if len(key) != 1 {
			continue
		}
		name := key[0]
		fields.Set(name, normalize(m[name]))
	}
	return nil
}

func (p *Parser) buildItem(meta Fields, body string, src Source) *Item {
	item := &Item{
		Type:        src.Type,
		Frontmatter: meta,
		RawBody:     body,
		FilePath:    src.Path,
		ID:          strings.TrimSpace(meta.String(KeyID)),
		Slug:        strings.TrimSpace(meta.String(KeySlug)),
		Title:       strings.TrimSpace(meta.String(KeyTitle)),
		Excerpt:     meta.String(KeyExcerpt),
		Template:    strings.TrimSpace(meta.String(KeyTemplate)),
	}

	if item.Slug == "" {
		if p.pathSlugs {
			item.Slug = slugFromNestedPath(src.RelPath)
		} else {
			item.Slug = slugFromPath(src.RelPath)
		}
	}

	item.Status, _ = ParseStatus(strings.ToLower(strings.TrimSpace(meta.String(KeyStatus))))

	if raw, ok := meta.Get(KeyDate); ok {
		if date, ok := ParseDate(raw); ok {
			item.Date = &date
		}
	}

	if raw, ok := meta.Get(KeyRedirectFrom); ok {
		item.RedirectFrom = stringList(raw)
	}

	for _, field := range meta.List() {
		switch {
		case reservedKeys[field.Name]:
		case p.taxonomies[field.Name]:
			if terms := termList(field.Value); len(terms) > 0 {
				if item.Terms == nil {
					item.Terms = make(map[string][]string)
				}
				item.Terms[field.Name] = terms
			}
		default:
			item.Fields.Set(field.Name, field.Value)
		}
	}

	return item
}

// stringList accepts a single string or a list of scalars.
func stringList(v any) []string {
	switch t := v.(type) {
	case string:
		if s := strings.TrimSpace(t); s != "" {
			return []string{s}
		}
	case []any:
		var out []string
		for _, e := range t {
			if s, ok := e.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	}
	return nil
}

// termList accepts a term slug, a list of slugs, or a list of
// {slug, name} maps where slug falls back to name.
func termList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return stringList(v)
	}

	var out []string
	for _, e := range items {
		var slug string
		switch t := e.(type) {
		case string:
			slug = t
		case map[string]any:
			if s, ok := t["slug"].(string); ok && s != "" {
				slug = s
			} else if s, ok := t["name"].(string); ok {
				slug = s
			}
		}
		if slug = strings.TrimSpace(slug); slug != "" {
			out = append(out, slug)
		}
	}
	return out
}
