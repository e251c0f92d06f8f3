package validation

import (
	"regexp"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formstate/pkg/engine"
	"github.com/goliatone/go-formstate/pkg/pathutil"
)

var missingPropertyRe = regexp.MustCompile(`property "([^"]+)"`)

// Schema builds a ValidateFunc that checks the value tree against an OpenAPI
// schema. Schema failures are mapped from JSON pointers onto dotted field
// paths; a field keeps only its first failure per pass. Failures that cannot
// be located on a field are discarded rather than invented a path, matching
// the engine's data-not-exception treatment of validation.
func Schema(schema *openapi3.Schema) engine.ValidateFunc {
	return func(values map[string]any) map[string]any {
		out := map[string]any{}
		if schema == nil {
			return out
		}

		err := schema.VisitJSON(normalizeTree(values), openapi3.MultiErrors())
		if err == nil {
			return out
		}

		tree := any(out)
		for _, issue := range flatten(err) {
			path := issuePath(issue)
			if path == "" {
				continue
			}
			if _, exists := pathutil.Get(tree, path); exists {
				continue
			}
			tree = pathutil.Set(tree, path, issueMessage(issue))
		}
		return tree.(map[string]any)
	}
}

func flatten(err error) []*openapi3.SchemaError {
	var out []*openapi3.SchemaError
	switch typed := err.(type) {
	case openapi3.MultiError:
		for _, nested := range typed {
			out = append(out, flatten(nested)...)
		}
	case *openapi3.SchemaError:
		out = append(out, typed)
	}
	return out
}

func issuePath(issue *openapi3.SchemaError) string {
	segments := issue.JSONPointer()
	if len(segments) == 0 {
		// Required failures on the root object name the property in the
		// reason; recover it so the message lands on the field.
		if match := missingPropertyRe.FindStringSubmatch(issue.Reason); match != nil {
			return match[1]
		}
		return ""
	}
	return strings.Join(segments, ".")
}

func issueMessage(issue *openapi3.SchemaError) string {
	if reason := strings.TrimSpace(issue.Reason); reason != "" {
		return reason
	}
	return strings.TrimSpace(issue.Error())
}

// normalizeTree converts numeric leaves to float64 so integer values built in
// Go survive the JSON-centric schema visitor.
func normalizeTree(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, v := range typed {
			out[k] = normalizeTree(v)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, v := range typed {
			out[i] = normalizeTree(v)
		}
		return out
	case int:
		return float64(typed)
	case int32:
		return float64(typed)
	case int64:
		return float64(typed)
	case float32:
		return float64(typed)
	default:
		return typed
	}
}
