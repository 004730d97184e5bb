package config

import (
	"fmt"
	"os"

	"github.com/mvp-joe/folio/internal/permalink"
	"github.com/mvp-joe/folio/internal/validate"
	"gopkg.in/yaml.v3"
)

// Sorting orders a content type's items in the content index.
type Sorting string

const (
	SortManual    Sorting = "manual"
	SortDateDesc  Sorting = "date_desc"
	SortDateAsc   Sorting = "date_asc"
	SortTitleAsc  Sorting = "title_asc"
	SortTitleDesc Sorting = "title_desc"
)

func (s Sorting) valid() bool {
	switch s {
	case SortManual, SortDateDesc, SortDateAsc, SortTitleAsc, SortTitleDesc:
		return true
	}
	return false
}

// Default template names used when a type declares none.
const (
	DefaultSingleTemplate  = "single.html"
	DefaultArchiveTemplate = "archive.html"
)

// ContentType is one entry of content_types.yml.
type ContentType struct {
	Name       string          `yaml:"-"`
	Label      string          `yaml:"label"`
	ContentDir string          `yaml:"content_dir"`
	URL        URLConfig       `yaml:"url"`
	Templates  Templates       `yaml:"templates"`
	Taxonomies []string        `yaml:"taxonomies"`
	Fields     validate.Schema `yaml:"fields"`
	Sorting    Sorting         `yaml:"sorting"`

	// Scheme is resolved from URL when the site is assembled.
	Scheme permalink.Scheme `yaml:"-"`
}

// URLConfig is the raw routing shape of a content type.
type URLConfig struct {
	Type    string `yaml:"type"` // "hierarchical" or "pattern"
	Base    string `yaml:"base"`
	Pattern string `yaml:"pattern"`
	Archive string `yaml:"archive"`
}

// Templates names the views used for a content type.
type Templates struct {
	Single  string `yaml:"single"`
	Archive string `yaml:"archive"`
}

// SingleTemplate returns the template for an item page.
// An item-level override takes precedence.
func (ct ContentType) SingleTemplate(override string) string {
	switch {
	case override != "":
		return override
	case ct.Templates.Single != "":
		return ct.Templates.Single
	default:
		return DefaultSingleTemplate
	}
}

// ArchiveTemplate returns the template for the type's archive route.
func (ct ContentType) ArchiveTemplate() string {
	if ct.Templates.Archive != "" {
		return ct.Templates.Archive
	}
	return DefaultArchiveTemplate
}

// HasTaxonomy reports whether items of this type may carry terms of name.
func (ct ContentType) HasTaxonomy(name string) bool {
	for _, t := range ct.Taxonomies {
		if t == name {
			return true
		}
	}
	return false
}

// Taxonomy is one entry of taxonomies.yml.
type Taxonomy struct {
	Name         string  `yaml:"-"`
	Label        string  `yaml:"label"`
	Hierarchical bool    `yaml:"hierarchical"`
	Public       *bool   `yaml:"public"`
	Rewrite      Rewrite `yaml:"rewrite"`
}

// Rewrite controls taxonomy archive URLs.
type Rewrite struct {
	Base string `yaml:"base"`
}

// IsPublic reports whether the taxonomy gets archive routes. Defaults to true.
func (t Taxonomy) IsPublic() bool {
	return t.Public == nil || *t.Public
}

// Base returns the archive base path, "/<name>" when not configured.
func (t Taxonomy) Base() string {
	if t.Rewrite.Base != "" {
		return permalink.Clean(t.Rewrite.Base)
	}
	return "/" + t.Name
}

// ContentTypes decodes a name → definition mapping in declaration order.
type ContentTypes []ContentType

func (c *ContentTypes) UnmarshalYAML(node *yaml.Node) error {
	return decodeOrdered(node, func(name string, value *yaml.Node) error {
		var ct ContentType
		if err := value.Decode(&ct); err != nil {
			return err
		}
		ct.Name = name
		*c = append(*c, ct)
		return nil
	})
}

// Taxonomies decodes a name → definition mapping in declaration order.
type Taxonomies []Taxonomy

func (t *Taxonomies) UnmarshalYAML(node *yaml.Node) error {
	return decodeOrdered(node, func(name string, value *yaml.Node) error {
		var tax Taxonomy
		if err := value.Decode(&tax); err != nil {
			return err
		}
		tax.Name = name
		*t = append(*t, tax)
		return nil
	})
}

func decodeOrdered(node *yaml.Node, fn func(name string, value *yaml.Node) error) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping of name to definition", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		if err := fn(name, node.Content[i+1]); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// LoadContentTypes reads a content_types.yml file.
func LoadContentTypes(path string) (ContentTypes, error) {
	var types ContentTypes
	if err := decodeFile(path, &types); err != nil {
		return nil, err
	}
	return types, nil
}

// LoadTaxonomies reads a taxonomies.yml file.
func LoadTaxonomies(path string) (Taxonomies, error) {
	var taxonomies Taxonomies
	if err := decodeFile(path, &taxonomies); err != nil {
		return nil, err
	}
	return taxonomies, nil
}

func decodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
