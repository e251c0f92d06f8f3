package engine

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstate/pkg/notify"
)

func noopSubmit(_ context.Context, _ map[string]any, _ SubmitBag) (any, error) {
	return nil, nil
}

func TestNewRequiresOnSubmit(t *testing.T) {
	if _, err := New(Config{}); err != ErrMissingOnSubmit {
		t.Fatalf("New() error = %v, want ErrMissingOnSubmit", err)
	}
}

func TestNewSeedsFromInitialValues(t *testing.T) {
	form, err := New(Config{
		InitialValues: map[string]any{"name": "ann", "address": map[string]any{"city": "nyc"}},
		OnSubmit:      noopSubmit,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if got, _ := form.Value("address.city"); got != "nyc" {
		t.Fatalf("address.city = %v, want nyc", got)
	}
	if form.Dirty() {
		t.Fatalf("fresh form reports dirty")
	}
}

func TestNewDerivesTouchedFromInitialErrors(t *testing.T) {
	form, err := New(Config{
		InitialErrors: map[string]any{"email": "already registered"},
		OnSubmit:      noopSubmit,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if got := form.FieldError("email"); got != "already registered" {
		t.Fatalf("FieldError(email) = %q", got)
	}
	if !form.FieldTouched("email") {
		t.Fatalf("email not marked touched despite initial error")
	}
}

func TestSetFieldValueMarksDirtyAndNotifiesOnce(t *testing.T) {
	form, _ := New(Config{OnSubmit: noopSubmit})

	var age, name int
	form.Subscribe("age", func() { age++ })
	form.Subscribe("name", func() { name++ })

	form.SetFieldValue("age", 5)

	if !form.Dirty() {
		t.Fatalf("form not dirty after edit")
	}
	if got, _ := form.Value("age"); got != 5 {
		t.Fatalf("age = %v, want 5", got)
	}
	if age != 1 {
		t.Fatalf("age subscriber notified %d times, want 1", age)
	}
	if name != 0 {
		t.Fatalf("unrelated subscriber notified %d times, want 0", name)
	}
}

func TestDirtySentinelPublishedOnTransitionOnly(t *testing.T) {
	form, _ := New(Config{OnSubmit: noopSubmit})

	dirty := 0
	form.Subscribe(notify.PathDirty, func() { dirty++ })

	form.SetFieldValue("a", 1)
	form.SetFieldValue("b", 2)

	if dirty != 1 {
		t.Fatalf("dirty sentinel published %d times, want 1", dirty)
	}
}

func TestSetFieldErrorSetAndClear(t *testing.T) {
	form, _ := New(Config{OnSubmit: noopSubmit})

	notified := 0
	form.Subscribe("email", func() { notified++ })

	form.SetFieldError("email", "invalid address")
	if got := form.FieldError("email"); got != "invalid address" {
		t.Fatalf("FieldError = %q", got)
	}

	form.SetFieldError("email", "")
	if got := form.FieldError("email"); got != "" {
		t.Fatalf("FieldError after clear = %q", got)
	}
	if notified != 2 {
		t.Fatalf("subscriber notified %d times, want 2", notified)
	}
}

func TestSetErrorsPublishesUnionOfOldAndNewPaths(t *testing.T) {
	form, _ := New(Config{OnSubmit: noopSubmit})
	form.SetErrors(map[string]any{"age": "invalid"})

	var cleared, introduced int
	form.Subscribe("age", func() { cleared++ })
	form.Subscribe("name", func() { introduced++ })

	form.SetErrors(map[string]any{"name": "required"})

	if cleared != 1 {
		t.Fatalf("cleared-error subscriber notified %d times, want 1", cleared)
	}
	if introduced != 1 {
		t.Fatalf("new-error subscriber notified %d times, want 1", introduced)
	}
}

func TestValidateStoresResultAndReturnsIt(t *testing.T) {
	form, _ := New(Config{
		Validate: func(values map[string]any) map[string]any {
			if age, _ := values["age"].(int); age < 0 {
				return map[string]any{"age": "invalid"}
			}
			return map[string]any{}
		},
		OnSubmit: noopSubmit,
	})

	form.SetFieldValue("age", -1)
	errs := form.Validate()

	want := map[string]any{"age": "invalid"}
	if diff := cmp.Diff(want, errs); diff != "" {
		t.Fatalf("Validate result mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, form.Snapshot().Errors); diff != "" {
		t.Fatalf("stored errors mismatch (-want +got):\n%s", diff)
	}
}

func TestSetFieldTouchedValidatesOnBlurByDefault(t *testing.T) {
	calls := 0
	form, _ := New(Config{
		Validate: func(map[string]any) map[string]any {
			calls++
			return nil
		},
		OnSubmit: noopSubmit,
	})

	form.SetFieldTouched("name", true)
	if calls != 1 {
		t.Fatalf("validator ran %d times on blur, want 1", calls)
	}
	if !form.FieldTouched("name") {
		t.Fatalf("field not touched")
	}
}

func TestSetFieldTouchedSkipsValidationWhenDisabled(t *testing.T) {
	calls := 0
	form, _ := New(Config{
		Validate: func(map[string]any) map[string]any {
			calls++
			return nil
		},
		OnSubmit:       noopSubmit,
		ValidateOnBlur: Bool(false),
	})

	form.SetFieldTouched("name", true)
	if calls != 0 {
		t.Fatalf("validator ran %d times with blur validation off, want 0", calls)
	}
}

func TestSetFieldValueValidatesOnChangeWhenEnabled(t *testing.T) {
	calls := 0
	form, _ := New(Config{
		Validate: func(map[string]any) map[string]any {
			calls++
			return nil
		},
		OnSubmit:         noopSubmit,
		ValidateOnChange: true,
	})

	form.SetFieldValue("name", "x")
	if calls != 1 {
		t.Fatalf("validator ran %d times on change, want 1", calls)
	}
}

func TestResetRestoresInitialValuesAndNotifiesChangedPaths(t *testing.T) {
	initial := map[string]any{"name": "ann", "age": 30}
	form, _ := New(Config{InitialValues: initial, OnSubmit: noopSubmit})

	var name, age, extra int
	form.Subscribe("name", func() { name++ })
	form.Subscribe("age", func() { age++ })
	form.Subscribe("nickname", func() { extra++ })

	form.SetFieldValue("name", "bob")
	form.SetFieldValue("nickname", "bobby")
	name, age, extra = 0, 0, 0

	form.Reset()

	if form.Dirty() {
		t.Fatalf("form dirty after reset")
	}
	if diff := cmp.Diff(initial, form.Snapshot().Values); diff != "" {
		t.Fatalf("values after reset (-want +got):\n%s", diff)
	}
	if name != 1 {
		t.Fatalf("edited-path subscriber notified %d times, want 1", name)
	}
	if extra != 1 {
		t.Fatalf("removed-path subscriber notified %d times, want 1", extra)
	}
	// age was present in both trees and is still notified as part of the
	// union; all leaves of old and new values are published.
	if age != 1 {
		t.Fatalf("age subscriber notified %d times, want 1", age)
	}
}

func TestReinitializeResetsWhenEnabled(t *testing.T) {
	form, _ := New(Config{
		InitialValues:      map[string]any{"name": "ann"},
		EnableReinitialize: true,
		OnSubmit:           noopSubmit,
	})

	form.SetFieldValue("name", "edited")
	form.Reinitialize(map[string]any{"name": "carol"})

	if got, _ := form.Value("name"); got != "carol" {
		t.Fatalf("name = %v after reinitialize, want carol", got)
	}
	if form.Dirty() {
		t.Fatalf("form dirty after reinitialize")
	}
}

func TestReinitializeIgnoredWhenDisabledOrUnchanged(t *testing.T) {
	form, _ := New(Config{
		InitialValues: map[string]any{"name": "ann"},
		OnSubmit:      noopSubmit,
	})
	form.SetFieldValue("name", "edited")
	form.Reinitialize(map[string]any{"name": "carol"})
	if got, _ := form.Value("name"); got != "edited" {
		t.Fatalf("reinitialize applied despite being disabled: %v", got)
	}

	enabled, _ := New(Config{
		InitialValues:      map[string]any{"name": "ann"},
		EnableReinitialize: true,
		OnSubmit:           noopSubmit,
	})
	enabled.SetFieldValue("name", "edited")
	enabled.Reinitialize(map[string]any{"name": "ann"})
	if got, _ := enabled.Value("name"); got != "edited" {
		t.Fatalf("reinitialize with an identical seed reset the form: %v", got)
	}
}

func TestSetFormErrorPublishesSentinel(t *testing.T) {
	form, _ := New(Config{OnSubmit: noopSubmit})

	notified := 0
	form.Subscribe(notify.PathFormError, func() { notified++ })

	form.SetFormError("network down")

	if got := form.FormError(); got != "network down" {
		t.Fatalf("FormError = %q", got)
	}
	if notified != 1 {
		t.Fatalf("form-error sentinel published %d times, want 1", notified)
	}
}

func TestMutationFromListenerDoesNotRecurse(t *testing.T) {
	form, _ := New(Config{OnSubmit: noopSubmit})

	var order []string
	form.Subscribe("a", func() {
		order = append(order, "a")
		if len(order) == 1 {
			form.SetFieldValue("b", 2)
		}
	})
	form.Subscribe("b", func() { order = append(order, "b") })

	form.SetFieldValue("a", 1)

	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Fatalf("delivery order %v, want [a b]", order)
	}
}

func TestClosedFormIgnoresMutations(t *testing.T) {
	form, _ := New(Config{OnSubmit: noopSubmit})
	notified := 0
	form.Subscribe("name", func() { notified++ })

	form.Close()
	form.SetFieldValue("name", "x")
	form.SetFormError("boom")
	form.Reset()

	if notified != 0 {
		t.Fatalf("closed form notified listeners %d times", notified)
	}
	if _, ok := form.Value("name"); ok {
		t.Fatalf("closed form accepted a value write")
	}
}
