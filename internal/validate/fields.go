package validate

import (
	"fmt"
	"math"
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/mvp-joe/folio/internal/content"
)

type checker func(def FieldDef, value any, res *Result)

var checkers = map[FieldType]checker{
	TypeText:     checkText,
	TypeTextarea: checkText,
	TypeEmail:    checkEmail,
	TypeURL:      checkURL,
	TypeNumber:   checkNumber,
	TypeInteger:  checkInteger,
	TypeCheckbox: checkCheckbox,
	TypeDate:     checkDate,
	TypeSelect:   checkSelect,
	TypeArray:    checkArray,
}

func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case int, int64, float64, bool:
		return fmt.Sprint(t), true
	default:
		return "", false
	}
}

func checkText(def FieldDef, value any, res *Result) {
	s, ok := scalarString(value)
	if !ok {
		res.errorf("must be text")
		return
	}

	n := utf8.RuneCountInString(s)
	if def.MinLength != nil && n < *def.MinLength {
		res.errorf("must be at least %d characters", *def.MinLength)
	}
	if def.MaxLength != nil && n > *def.MaxLength {
		res.errorf("must be at most %d characters", *def.MaxLength)
	}

	if def.Pattern != "" {
		re, err := regexp.Compile(def.Pattern)
		if err != nil {
			res.warnf("invalid pattern %q: %v", def.Pattern, err)
			return
		}
		if !re.MatchString(s) {
			res.errorf("does not match pattern %s", def.Pattern)
		}
	}
}

func checkEmail(def FieldDef, value any, res *Result) {
	s, ok := value.(string)
	if !ok {
		res.errorf("must be an email address")
		return
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != strings.TrimSpace(s) {
		res.errorf("%q is not a valid email address", s)
	}
}

func checkURL(def FieldDef, value any, res *Result) {
	s, ok := value.(string)
	if !ok {
		res.errorf("must be a URL")
		return
	}
	if strings.HasPrefix(s, "/") {
		return
	}
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		res.errorf("%q is not a valid URL", s)
	}
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case float64:
		return t, true
	default:
		return 0, false
	}
}

func checkRange(def FieldDef, n float64, res *Result) {
	if def.Min != nil && n < *def.Min {
		res.errorf("must be at least %v", *def.Min)
	}
	if def.Max != nil && n > *def.Max {
		res.errorf("must be at most %v", *def.Max)
	}
}

func checkNumber(def FieldDef, value any, res *Result) {
	n, ok := toFloat(value)
	if !ok {
		res.errorf("must be a number")
		return
	}
	checkRange(def, n, res)
}

func checkInteger(def FieldDef, value any, res *Result) {
	n, ok := toFloat(value)
	if !ok || n != math.Trunc(n) {
		res.errorf("must be a whole number")
		return
	}
	checkRange(def, n, res)
}

func checkCheckbox(def FieldDef, value any, res *Result) {
	if _, ok := value.(bool); !ok {
		res.errorf("must be true or false")
	}
}

func checkDate(def FieldDef, value any, res *Result) {
	if _, ok := content.ParseDate(value); !ok {
		res.errorf("%v is not a valid date", value)
	}
}

func checkSelect(def FieldDef, value any, res *Result) {
	var values []string
	switch t := value.(type) {
	case []any:
		if !def.Multiple {
			res.errorf("only one option may be selected")
			return
		}
		for _, e := range t {
			s, ok := scalarString(e)
			if !ok {
				res.errorf("options must be scalar values")
				return
			}
			values = append(values, s)
		}
	default:
		s, ok := scalarString(t)
		if !ok {
			res.errorf("must be one of the configured options")
			return
		}
		values = []string{s}
	}

	if len(def.Options) == 0 {
		res.warnf("no options configured")
		return
	}
	for _, s := range values {
		if !def.Options.contains(s) {
			res.errorf("%q is not an allowed option (valid: %s)", s, strings.Join(def.Options, ", "))
		}
	}
}

func checkArray(def FieldDef, value any, res *Result) {
	list, ok := value.([]any)
	if !ok {
		res.errorf("must be a list")
		return
	}
	if def.MinItems != nil && len(list) < *def.MinItems {
		res.errorf("must have at least %d items", *def.MinItems)
	}
	if def.MaxItems != nil && len(list) > *def.MaxItems {
		res.errorf("must have at most %d items", *def.MaxItems)
	}
}
