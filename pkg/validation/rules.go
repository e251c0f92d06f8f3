// Package validation provides ready-made ValidateFunc builders for the form
// state engine: a declarative per-path rule set and an OpenAPI schema bridge.
// Both produce error trees addressed by the same dotted paths the engine
// publishes on, so failures land next to the fields that caused them.
package validation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goliatone/go-formstate/pkg/engine"
	"github.com/goliatone/go-formstate/pkg/pathutil"
)

// Canonical rule identifiers, matching the validation vocabulary used by form
// definition files.
const (
	KindRequired  = "required"
	KindMinLength = "minLength"
	KindMaxLength = "maxLength"
	KindMin       = "min"
	KindMax       = "max"
	KindPattern   = "pattern"
	KindOneOf     = "oneOf"
)

// Rule is a single declarative constraint on one field. Build rules with the
// constructors below; the zero Rule matches everything.
type Rule struct {
	kind    string
	length  int
	limit   float64
	pattern *regexp.Regexp
	options []string
	message string
}

// Required fails when the field is absent, nil, an empty/whitespace string, or
// an empty container.
func Required() Rule { return Rule{kind: KindRequired} }

// MinLength constrains the length of a string value.
func MinLength(n int) Rule { return Rule{kind: KindMinLength, length: n} }

// MaxLength constrains the length of a string value.
func MaxLength(n int) Rule { return Rule{kind: KindMaxLength, length: n} }

// Min constrains a numeric value from below (inclusive).
func Min(limit float64) Rule { return Rule{kind: KindMin, limit: limit} }

// Max constrains a numeric value from above (inclusive).
func Max(limit float64) Rule { return Rule{kind: KindMax, limit: limit} }

// Pattern constrains a string value to match expr. Panics on an invalid
// expression, so call it with literals at wiring time.
func Pattern(expr string) Rule {
	return Rule{kind: KindPattern, pattern: regexp.MustCompile(expr)}
}

// OneOf constrains a string value to an enumerated set.
func OneOf(options ...string) Rule {
	return Rule{kind: KindOneOf, options: append([]string(nil), options...)}
}

// WithMessage overrides the rule's default failure message.
func (r Rule) WithMessage(message string) Rule {
	r.message = message
	return r
}

// FromSpec builds a Rule from its serialized form (kind plus string
// parameter), as carried by definition files.
func FromSpec(kind, param, message string) (Rule, error) {
	var rule Rule
	switch kind {
	case KindRequired:
		rule = Required()
	case KindMinLength, KindMaxLength:
		n, err := strconv.Atoi(strings.TrimSpace(param))
		if err != nil {
			return Rule{}, fmt.Errorf("validation: rule %s needs an integer parameter, got %q", kind, param)
		}
		if kind == KindMinLength {
			rule = MinLength(n)
		} else {
			rule = MaxLength(n)
		}
	case KindMin, KindMax:
		limit, err := strconv.ParseFloat(strings.TrimSpace(param), 64)
		if err != nil {
			return Rule{}, fmt.Errorf("validation: rule %s needs a numeric parameter, got %q", kind, param)
		}
		if kind == KindMin {
			rule = Min(limit)
		} else {
			rule = Max(limit)
		}
	case KindPattern:
		pattern, err := regexp.Compile(param)
		if err != nil {
			return Rule{}, fmt.Errorf("validation: rule pattern: %w", err)
		}
		rule = Rule{kind: KindPattern, pattern: pattern}
	case KindOneOf:
		parts := strings.Split(param, ",")
		options := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				options = append(options, trimmed)
			}
		}
		rule = OneOf(options...)
	default:
		return Rule{}, fmt.Errorf("validation: unknown rule kind %q", kind)
	}
	if message != "" {
		rule = rule.WithMessage(message)
	}
	return rule, nil
}

// Rules builds a ValidateFunc from per-path rule lists. The first failing rule
// per path wins; paths with no failures contribute nothing to the error tree.
func Rules(rules map[string][]Rule) engine.ValidateFunc {
	return func(values map[string]any) map[string]any {
		var out any = map[string]any{}
		for path, list := range rules {
			value, present := pathutil.Get(values, path)
			for _, rule := range list {
				if msg := rule.check(value, present); msg != "" {
					out = pathutil.Set(out, path, msg)
					break
				}
			}
		}
		return out.(map[string]any)
	}
}

func (r Rule) check(value any, present bool) string {
	switch r.kind {
	case KindRequired:
		if isEmpty(value, present) {
			return r.fail("required")
		}
	case KindMinLength:
		if text, ok := asString(value, present); ok && len([]rune(text)) < r.length {
			return r.fail(fmt.Sprintf("must be at least %d characters", r.length))
		}
	case KindMaxLength:
		if text, ok := asString(value, present); ok && len([]rune(text)) > r.length {
			return r.fail(fmt.Sprintf("must be at most %d characters", r.length))
		}
	case KindMin:
		if number, ok := asNumber(value, present); ok && number < r.limit {
			return r.fail(fmt.Sprintf("must be at least %s", formatLimit(r.limit)))
		}
	case KindMax:
		if number, ok := asNumber(value, present); ok && number > r.limit {
			return r.fail(fmt.Sprintf("must be at most %s", formatLimit(r.limit)))
		}
	case KindPattern:
		if text, ok := asString(value, present); ok && text != "" && !r.pattern.MatchString(text) {
			return r.fail("invalid format")
		}
	case KindOneOf:
		text, ok := asString(value, present)
		if !ok || text == "" {
			return ""
		}
		for _, option := range r.options {
			if text == option {
				return ""
			}
		}
		return r.fail("must be one of: " + strings.Join(r.options, ", "))
	}
	return ""
}

func (r Rule) fail(fallback string) string {
	if r.message != "" {
		return r.message
	}
	return fallback
}

func isEmpty(value any, present bool) bool {
	if !present || value == nil {
		return true
	}
	switch typed := value.(type) {
	case string:
		return strings.TrimSpace(typed) == ""
	case []any:
		return len(typed) == 0
	case map[string]any:
		return len(typed) == 0
	default:
		return false
	}
}

func asString(value any, present bool) (string, bool) {
	if !present {
		return "", false
	}
	text, ok := value.(string)
	return text, ok
}

func asNumber(value any, present bool) (float64, bool) {
	if !present {
		return 0, false
	}
	switch typed := value.(type) {
	case float64:
		return typed, true
	case float32:
		return float64(typed), true
	case int:
		return float64(typed), true
	case int32:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case uint:
		return float64(typed), true
	case uint64:
		return float64(typed), true
	case json.Number:
		parsed, err := typed.Float64()
		return parsed, err == nil
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		return parsed, err == nil
	default:
		return 0, false
	}
}

func formatLimit(limit float64) string {
	return strconv.FormatFloat(limit, 'f', -1, 64)
}
