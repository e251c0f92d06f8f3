// Package formstate tracks live form state — field values, per-field errors
// and touched flags, dirty and submitting indicators — and notifies only the
// subscribers interested in the field paths an edit actually changed. The root
// package re-exports the core types from pkg/engine for convenience; see
// pkg/pathutil for tree addressing, pkg/notify for the subscription bus,
// pkg/validation for ready-made validators, and pkg/definition for loading
// declarative form definitions.
package formstate

import (
	"github.com/goliatone/go-formstate/pkg/engine"
	"github.com/goliatone/go-formstate/pkg/notify"
)

// Config describes one form instance; see engine.Config for field docs.
type Config = engine.Config

// Form is the live state store for one mounted form.
type Form = engine.Form

// State is a point-in-time snapshot of a form.
type State = engine.State

// ValidateFunc recomputes the error tree from the current values.
type ValidateFunc = engine.ValidateFunc

// SubmitFunc performs the actual submission.
type SubmitFunc = engine.SubmitFunc

// SubmitBag, SuccessBag, and FailureBag are the callback bags handed to the
// submission hooks.
type (
	SubmitBag  = engine.SubmitBag
	SuccessBag = engine.SuccessBag
	FailureBag = engine.FailureBag
)

// Subscription sentinels, re-exported from pkg/notify.
const (
	PathAll        = notify.PathAll
	PathDirty      = notify.PathDirty
	PathSubmitting = notify.PathSubmitting
	PathFormError  = notify.PathFormError
)

// New constructs a Form from cfg.
func New(cfg Config) (*Form, error) {
	return engine.New(cfg)
}

// Bool returns a pointer to v, for the optional Config toggles.
func Bool(v bool) *bool {
	return engine.Bool(v)
}
