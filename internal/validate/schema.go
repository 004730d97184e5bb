// Package validate checks parsed content items against core rules and the
// per-content-type field schema.
package validate

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// FieldType names a schema field kind.
type FieldType string

const (
	TypeText     FieldType = "text"
	TypeTextarea FieldType = "textarea"
	TypeEmail    FieldType = "email"
	TypeURL      FieldType = "url"
	TypeNumber   FieldType = "number"
	TypeInteger  FieldType = "integer"
	TypeCheckbox FieldType = "checkbox"
	TypeDate     FieldType = "date"
	TypeSelect   FieldType = "select"
	TypeArray    FieldType = "array"
)

// KnownType reports whether t has a checker.
func KnownType(t FieldType) bool {
	_, ok := checkers[t]
	return ok
}

// FieldDef declares the rules for one frontmatter field.
type FieldDef struct {
	Name      string    `yaml:"-"`
	Type      FieldType `yaml:"type"`
	Label     string    `yaml:"label"`
	Required  bool      `yaml:"required"`
	MinLength *int      `yaml:"min_length"`
	MaxLength *int      `yaml:"max_length"`
	Min       *float64  `yaml:"min"`
	Max       *float64  `yaml:"max"`
	Pattern   string    `yaml:"pattern"`
	Options   Options   `yaml:"options"`
	Multiple  bool      `yaml:"multiple"`
	MinItems  *int      `yaml:"min_items"`
	MaxItems  *int      `yaml:"max_items"`
}

// Schema is an ordered list of field definitions.
type Schema []FieldDef

// UnmarshalYAML decodes a name → definition mapping keeping declaration order.
func (s *Schema) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil
	}
	if node.Kind == yaml.SequenceNode && len(node.Content) == 0 {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: fields must be a mapping of field name to definition", node.Line)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		var def FieldDef
		if err := node.Content[i+1].Decode(&def); err != nil {
			return fmt.Errorf("field %q: %w", node.Content[i].Value, err)
		}
		def.Name = node.Content[i].Value
		if def.Type == "" {
			def.Type = TypeText
		}
		*s = append(*s, def)
	}
	return nil
}

// Options lists allowed select values. YAML may give a list of values or a
// value → label mapping.
type Options []string

// UnmarshalYAML accepts a sequence or the keys of a mapping.
func (o *Options) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var values []string
		if err := node.Decode(&values); err != nil {
			return err
		}
		*o = values
	case yaml.MappingNode:
		for i := 0; i < len(node.Content); i += 2 {
			*o = append(*o, node.Content[i].Value)
		}
	default:
		return fmt.Errorf("line %d: options must be a list or mapping", node.Line)
	}
	return nil
}

func (o Options) contains(v string) bool {
	for _, opt := range o {
		if opt == v {
			return true
		}
	}
	return false
}
