// Package definition loads declarative form definitions from JSON or YAML
// files and bridges them into engine configurations. A definition carries the
// initial value seed, submission toggles, per-field validation rules, and
// sanitized help text; it deliberately says nothing about widgets or layout.
package definition

import (
	"fmt"

	"github.com/goliatone/go-formstate/pkg/engine"
	"github.com/goliatone/go-formstate/pkg/validation"
)

// RuleSpec is the serialized form of a validation rule.
type RuleSpec struct {
	Kind    string `json:"kind" yaml:"kind"`
	Param   string `json:"param,omitempty" yaml:"param,omitempty"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// Definition describes one form. ID is required and unique within a store.
type Definition struct {
	ID                string                `json:"id" yaml:"id"`
	InitialValues     map[string]any        `json:"initialValues,omitempty" yaml:"initialValues,omitempty"`
	InitialErrors     map[string]any        `json:"initialErrors,omitempty" yaml:"initialErrors,omitempty"`
	SubmitWhenInvalid bool                  `json:"submitWhenInvalid,omitempty" yaml:"submitWhenInvalid,omitempty"`
	ValidateOnChange  bool                  `json:"validateOnChange,omitempty" yaml:"validateOnChange,omitempty"`
	ValidateOnBlur    *bool                 `json:"validateOnBlur,omitempty" yaml:"validateOnBlur,omitempty"`
	EnableReinit      bool                  `json:"enableReinitialize,omitempty" yaml:"enableReinitialize,omitempty"`
	Hints             map[string]string     `json:"hints,omitempty" yaml:"hints,omitempty"`
	Rules             map[string][]RuleSpec `json:"rules,omitempty" yaml:"rules,omitempty"`
}

// Validator compiles the definition's rule specs into a ValidateFunc. A
// definition without rules yields nil, which disables engine validation.
func (d Definition) Validator() (engine.ValidateFunc, error) {
	if len(d.Rules) == 0 {
		return nil, nil
	}
	compiled := make(map[string][]validation.Rule, len(d.Rules))
	for path, specs := range d.Rules {
		list := make([]validation.Rule, 0, len(specs))
		for _, spec := range specs {
			rule, err := validation.FromSpec(spec.Kind, spec.Param, spec.Message)
			if err != nil {
				return nil, fmt.Errorf("definition %q: field %q: %w", d.ID, path, err)
			}
			list = append(list, rule)
		}
		compiled[path] = list
	}
	return validation.Rules(compiled), nil
}

// Config assembles an engine.Config from the definition plus the caller's
// submit pipeline. The success and error hooks stay with the caller; set them
// on the returned config before constructing the form.
func (d Definition) Config(onSubmit engine.SubmitFunc) (engine.Config, error) {
	validate, err := d.Validator()
	if err != nil {
		return engine.Config{}, err
	}
	return engine.Config{
		InitialValues:      d.InitialValues,
		InitialErrors:      d.InitialErrors,
		EnableReinitialize: d.EnableReinit,
		Validate:           validate,
		OnSubmit:           onSubmit,
		SubmitWhenInvalid:  d.SubmitWhenInvalid,
		ValidateOnBlur:     d.ValidateOnBlur,
		ValidateOnChange:   d.ValidateOnChange,
	}, nil
}
