package validation

import (
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
)

func articleSchema() *openapi3.Schema {
	schema := openapi3.NewObjectSchema().
		WithProperty("title", openapi3.NewStringSchema().WithMinLength(3)).
		WithProperty("age", openapi3.NewIntegerSchema().WithMin(0)).
		WithProperty("author", openapi3.NewObjectSchema().
			WithProperty("email", openapi3.NewStringSchema()))
	schema.Required = []string{"title"}
	return schema
}

func TestSchemaValidDocumentProducesEmptyTree(t *testing.T) {
	validate := Schema(articleSchema())
	errs := validate(map[string]any{
		"title": "hello world",
		"age":   30,
	})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestSchemaMissingRequiredFieldLandsOnField(t *testing.T) {
	validate := Schema(articleSchema())
	errs := validate(map[string]any{"age": 5})

	if _, ok := errs["title"]; !ok {
		t.Fatalf("required failure not mapped onto title: %v", errs)
	}
}

func TestSchemaViolationMapsToDottedPath(t *testing.T) {
	validate := Schema(articleSchema())
	errs := validate(map[string]any{
		"title": "ok title",
		"age":   -4,
	})

	msg, ok := errs["age"]
	if !ok {
		t.Fatalf("minimum failure not mapped onto age: %v", errs)
	}
	if msg == "" {
		t.Fatalf("empty message for age failure")
	}
}

func TestSchemaNilIsAlwaysValid(t *testing.T) {
	validate := Schema(nil)
	if errs := validate(map[string]any{"anything": true}); len(errs) != 0 {
		t.Fatalf("nil schema produced errors: %v", errs)
	}
}

func TestSchemaIntegerValuesSurviveNormalization(t *testing.T) {
	validate := Schema(articleSchema())
	// Go ints must not fail the integer type check once normalised to the
	// JSON number representation.
	errs := validate(map[string]any{"title": "ok title", "age": 42})
	if len(errs) != 0 {
		t.Fatalf("integer value rejected: %v", errs)
	}
}
