package engine

import (
	"context"
	"fmt"

	"github.com/goliatone/go-formstate/pkg/notify"
	"github.com/goliatone/go-formstate/pkg/pathutil"
)

// Submit drives one submission attempt through the lifecycle:
//
//	idle → validating → (blocked | invoking) → settling → idle
//
// The attempt is single-flight: while a submission is in flight (or after
// Close) the call returns immediately without touching state or notifying
// anyone. Validation failures block the attempt before OnSubmit unless
// Config.SubmitWhenInvalid is set; every field carrying a validation error is
// marked touched so its message surfaces. OnSubmit may block for as long as
// the submission takes — callers that need a non-blocking trigger invoke
// Submit from its own goroutine. Failures (error returns and panics) from
// OnSubmit are contained and routed to OnError; Submit never propagates them.
func (f *Form) Submit(ctx context.Context) {
	f.mu.Lock()
	if f.closed || f.submitting {
		f.mu.Unlock()
		return
	}
	f.submitting = true
	f.mu.Unlock()
	f.bus.Publish(notify.PathSubmitting)

	errs := f.Validate()
	f.touchErrored(errs)

	if pathutil.Leaves(errs) > 0 && !f.cfg.SubmitWhenInvalid {
		f.settle()
		return
	}

	f.mu.Lock()
	values := f.values
	f.mu.Unlock()

	result, err := f.invoke(ctx, values)

	f.settle()

	if err != nil {
		if f.cfg.OnError != nil {
			f.cfg.OnError(err, FailureBag{form: f})
		}
		return
	}
	if f.cfg.OnSuccess != nil {
		f.cfg.OnSuccess(result, SuccessBag{form: f})
	}
}

// touchErrored merges an all-true tree shaped like the error tree into the
// touched tree, preserving fields the user already touched.
func (f *Form) touchErrored(errs map[string]any) {
	if pathutil.Leaves(errs) == 0 {
		return
	}
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	touched := any(f.touched)
	for path := range pathutil.Keys(errs) {
		touched = pathutil.Set(touched, path, true)
	}
	f.touched = asTree(touched)
	f.mu.Unlock()
	// The paths involved were just published by Validate; no extra publish.
}

func (f *Form) invoke(ctx context.Context, values map[string]any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("engine: submit callback panicked: %v", r)
		}
	}()
	return f.cfg.OnSubmit(ctx, values, SubmitBag{form: f})
}

// settle clears the submitting flag and publishes the transition. A form
// closed mid-flight is left alone: the completion is stale and must not write
// to dead state.
func (f *Form) settle() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.submitting = false
	f.mu.Unlock()
	f.bus.Publish(notify.PathSubmitting)
}
