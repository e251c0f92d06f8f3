package engine

import "context"

// ValidateFunc inspects a value tree and returns an error tree of the same
// shape-space: a string message at every failing leaf, absence meaning the
// field is valid. Validation failures are data, never errors; a ValidateFunc
// must not mutate the values it receives.
type ValidateFunc func(values map[string]any) map[string]any

// SubmitFunc receives the validated values and a bag for reporting
// server-side failures. It may block for as long as the submission takes; the
// error return is routed to Config.OnError, never propagated to the caller.
type SubmitFunc func(ctx context.Context, values map[string]any, bag SubmitBag) (any, error)

// SuccessFunc runs after a submission settles successfully.
type SuccessFunc func(result any, bag SuccessBag)

// ErrorFunc runs after a submission settles with a failure.
type ErrorFunc func(err error, bag FailureBag)

// Config describes one form instance. OnSubmit is the only required field.
type Config struct {
	// InitialValues seeds the value tree; Reset restores it.
	InitialValues map[string]any
	// InitialErrors optionally seeds the error tree. Fields carrying an
	// initial error are also marked touched so their messages surface
	// immediately.
	InitialErrors map[string]any
	// EnableReinitialize lets Reinitialize replace InitialValues and perform
	// an implicit Reset when the seed actually changed.
	EnableReinitialize bool

	// Validate recomputes the error tree. Nil disables validation.
	Validate ValidateFunc
	// OnSubmit performs the actual submission. Required.
	OnSubmit SubmitFunc
	// OnSuccess, when set, observes the OnSubmit result.
	OnSuccess SuccessFunc
	// OnError, when set, observes OnSubmit failures and panics. Submission
	// failures never crash the host; without OnError they are dropped.
	OnError ErrorFunc

	// SubmitWhenInvalid lets a submission proceed past a failing validation
	// pass. Default blocks it.
	SubmitWhenInvalid bool
	// ValidateOnBlur controls revalidation when a field is touched. Nil means
	// enabled; use Bool(false) to disable.
	ValidateOnBlur *bool
	// ValidateOnChange revalidates on every value edit. Default off.
	ValidateOnChange bool
}

// Bool returns a pointer to v, for the optional Config toggles.
func Bool(v bool) *bool { return &v }

func (c Config) validateOnBlur() bool {
	if c.ValidateOnBlur == nil {
		return true
	}
	return *c.ValidateOnBlur
}

// SubmitBag is handed to OnSubmit so it can surface server-side validation
// output while the submission is still in flight.
type SubmitBag struct{ form *Form }

// SetErrors replaces the form's error tree.
func (b SubmitBag) SetErrors(errors map[string]any) { b.form.SetErrors(errors) }

// SetFormError sets the form-level error message.
func (b SubmitBag) SetFormError(message string) { b.form.SetFormError(message) }

// FailureBag is handed to OnError after a submission fails.
type FailureBag struct{ form *Form }

// SetErrors replaces the form's error tree.
func (b FailureBag) SetErrors(errors map[string]any) { b.form.SetErrors(errors) }

// SetFormError sets the form-level error message.
func (b FailureBag) SetFormError(message string) { b.form.SetFormError(message) }

// SuccessBag is handed to OnSuccess after a submission settles cleanly.
type SuccessBag struct{ form *Form }

// Reset restores the form to its initial seed.
func (b SuccessBag) Reset() { b.form.Reset() }
