package content

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

func init() {
	// Concrete types that decoded frontmatter values may hold.
	gob.Register(map[string]any{})
	gob.Register([]any{})
	gob.Register(time.Time{})
}

// Field is one named frontmatter value.
type Field struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// Fields is an ordered string-keyed mapping of dynamically typed values.
// The zero value is empty and ready to use.
type Fields struct {
	list []Field
}

// Set assigns a value, keeping the original position of an existing key.
func (f *Fields) Set(name string, value any) {
	for i := range f.list {
		if f.list[i].Name == name {
			f.list[i].Value = value
			return
		}
	}
	f.list = append(f.list, Field{Name: name, Value: value})
}

// Get returns the value for name.
func (f Fields) Get(name string) (any, bool) {
	for _, field := range f.list {
		if field.Name == name {
			return field.Value, true
		}
	}
	return nil, false
}

// String returns the value for name when it is a non-empty scalar.
func (f Fields) String(name string) string {
	v, ok := f.Get(name)
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case []any, map[string]any:
		return ""
	default:
		return fmt.Sprint(s)
	}
}

// Has reports whether name is present, even with a null value.
func (f Fields) Has(name string) bool {
	_, ok := f.Get(name)
	return ok
}

// Len returns the number of fields.
func (f Fields) Len() int {
	return len(f.list)
}

// Keys returns field names in order.
func (f Fields) Keys() []string {
	keys := make([]string, len(f.list))
	for i, field := range f.list {
		keys[i] = field.Name
	}
	return keys
}

// List returns a copy of the fields in order.
func (f Fields) List() []Field {
	if len(f.list) == 0 {
		return nil
	}
	out := make([]Field, len(f.list))
	copy(out, f.list)
	return out
}

// Map returns the fields as an unordered map.
func (f Fields) Map() map[string]any {
	m := make(map[string]any, len(f.list))
	for _, field := range f.list {
		m[field.Name] = field.Value
	}
	return m
}

// FieldsFrom builds Fields from a list, later duplicates overwrite earlier ones.
func FieldsFrom(list []Field) Fields {
	var f Fields
	for _, field := range list {
		f.Set(field.Name, field.Value)
	}
	return f
}

// UnmarshalYAML decodes a YAML mapping preserving key order.
func (f *Fields) UnmarshalYAML(value *yaml.Node) error {
	node := value
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return nil
		}
		node = node.Content[0]
	}
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: frontmatter must be a mapping", node.Line)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		var v any
		if err := node.Content[i+1].Decode(&v); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		f.Set(key, normalize(v))
	}
	return nil
}

// UnmarshalJSON decodes a JSON object preserving key order.
func (f *Fields) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("frontmatter must be a JSON object")
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v", tok)
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		f.Set(key, normalize(v))
	}

	_, err = dec.Token()
	return err
}

// MarshalJSON encodes the fields as a JSON object in declaration order.
func (f Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range f.list {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(field.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(field.Value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", field.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type gobFields struct {
	List []Field
}

// GobEncode encodes the fields in declaration order.
func (f Fields) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(gobFields{List: f.list}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode restores fields written by GobEncode.
func (f *Fields) GobDecode(data []byte) error {
	var g gobFields
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&g); err != nil {
		return err
	}
	f.list = g.List
	return nil
}

// normalize converts decoder-specific container types into
// map[string]any and []any so values serialize uniformly.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = normalize(val)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = normalize(val)
		}
		return m
	case []any:
		for i, val := range t {
			t[i] = normalize(val)
		}
		return t
	case []map[string]any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	default:
		return v
	}
}
