package validate

import (
	"fmt"
	"strings"

	"github.com/mvp-joe/folio/internal/content"
)

// Result holds validation output. An empty Errors slice means valid.
type Result struct {
	Errors   []string
	Warnings []string
}

// Valid reports whether no errors were found.
func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

func (r *Result) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Validator checks items. It holds no state and is safe for concurrent use.
type Validator struct{}

// New creates a Validator.
func New() *Validator {
	return &Validator{}
}

// Validate runs the core item rules followed by the schema rules.
// Failures never stop indexing; callers report them.
func (v *Validator) Validate(item *content.Item, schema Schema) Result {
	var res Result
	v.checkCore(item, &res)
	v.checkSchema(item.Frontmatter, schema, &res)
	return res
}

func (v *Validator) checkCore(item *content.Item, res *Result) {
	fm := item.Frontmatter

	if item.Title == "" {
		res.errorf("Missing required field: title")
	}

	if !content.ValidSlug(item.Slug) {
		res.errorf("Invalid slug %q (use lowercase letters, numbers and single hyphens)", item.Slug)
	}

	if raw := strings.ToLower(strings.TrimSpace(fm.String(content.KeyStatus))); raw != "" {
		if _, ok := content.ParseStatus(raw); !ok {
			res.errorf("Invalid status %q (expected published, draft or unlisted)", raw)
		}
	}

	if raw, ok := fm.Get(content.KeyDate); ok && raw != nil {
		if _, ok := content.ParseDate(raw); !ok {
			res.errorf("Invalid date %v", raw)
		}
	}

	for _, from := range item.RedirectFrom {
		if !strings.HasPrefix(from, "/") {
			res.errorf("redirect_from entry %q must be an absolute path", from)
		}
	}
}

func (v *Validator) checkSchema(fm content.Fields, schema Schema, res *Result) {
	for _, def := range schema {
		label := def.Label
		if label == "" {
			label = content.Humanize(def.Name)
		}

		check, ok := checkers[def.Type]
		if !ok {
			res.warnf("Unknown field type '%s' for field '%s'", def.Type, def.Name)
			continue
		}

		value, _ := fm.Get(def.Name)
		if isEmpty(value) {
			if def.Required {
				res.errorf("%s: is required", label)
			}
			continue
		}

		var field Result
		check(def, value, &field)
		for _, e := range field.Errors {
			res.errorf("%s: %s", label, e)
		}
		for _, w := range field.Warnings {
			res.warnf("%s: %s", label, w)
		}
	}
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}
