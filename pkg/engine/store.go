package engine

import (
	"errors"
	"reflect"
	"sync"

	"github.com/goliatone/go-formstate/pkg/notify"
	"github.com/goliatone/go-formstate/pkg/pathutil"
)

// ErrMissingOnSubmit is returned by New when the config lacks a submit
// callback.
var ErrMissingOnSubmit = errors.New("engine: config requires an OnSubmit callback")

// State is a point-in-time snapshot of a form. The trees are shared with the
// form's current version and must be treated as read-only; the next mutation
// replaces them rather than editing in place.
type State struct {
	Values     map[string]any
	Errors     map[string]any
	Touched    map[string]any
	Dirty      bool
	Submitting bool
	FormError  string
}

// Form holds the live state for one mounted form instance. All methods are
// safe for concurrent use; mutations publish the affected paths on the form's
// private bus after the state change is fully applied, so listeners never
// observe a form mid-mutation.
type Form struct {
	cfg Config
	bus *notify.Bus

	mu         sync.Mutex
	values     map[string]any
	errors     map[string]any
	touched    map[string]any
	dirty      bool
	submitting bool
	formError  string
	closed     bool
}

// New builds a Form from cfg, seeding values from InitialValues and, when
// InitialErrors is present, deriving the touched tree from its shape.
func New(cfg Config) (*Form, error) {
	if cfg.OnSubmit == nil {
		return nil, ErrMissingOnSubmit
	}
	f := &Form{cfg: cfg, bus: notify.NewBus()}
	f.seed()
	return f, nil
}

// seed resets values/errors/touched from the config. Callers hold f.mu or own
// the form exclusively.
func (f *Form) seed() {
	f.values = cloneTree(f.cfg.InitialValues)
	if f.cfg.InitialErrors != nil {
		f.errors = cloneTree(f.cfg.InitialErrors)
		f.touched = asTree(pathutil.Fill(f.errors, true))
	} else {
		f.errors = map[string]any{}
		f.touched = map[string]any{}
	}
}

// Subscribe registers a listener for a field path, one of the notify.Path*
// sentinels, or notify.PathAll. The returned function removes the listener.
func (f *Form) Subscribe(path string, fn notify.Listener) func() {
	return f.bus.Subscribe(path, fn)
}

// Snapshot returns the current form state.
func (f *Form) Snapshot() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return State{
		Values:     f.values,
		Errors:     f.errors,
		Touched:    f.touched,
		Dirty:      f.dirty,
		Submitting: f.submitting,
		FormError:  f.formError,
	}
}

// Value resolves a field path in the current value tree.
func (f *Form) Value(path string) (any, bool) {
	f.mu.Lock()
	values := f.values
	f.mu.Unlock()
	return pathutil.Get(values, path)
}

// FieldError returns the validation message for a field, or "".
func (f *Form) FieldError(path string) string {
	f.mu.Lock()
	errs := f.errors
	f.mu.Unlock()
	if msg, ok := pathutil.Get(errs, path); ok {
		if text, ok := msg.(string); ok {
			return text
		}
	}
	return ""
}

// FieldTouched reports whether a field has been interacted with or flagged by
// validation.
func (f *Form) FieldTouched(path string) bool {
	f.mu.Lock()
	touched := f.touched
	f.mu.Unlock()
	value, ok := pathutil.Get(touched, path)
	return ok && value == true
}

// Dirty reports whether any value changed since the last reset.
func (f *Form) Dirty() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dirty
}

// Submitting reports whether a submission is in flight.
func (f *Form) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

// FormError returns the form-level error message, or "".
func (f *Form) FormError() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.formError
}

// SetFieldValue writes a value at path, marks the form dirty, and notifies the
// path's subscribers. The dirty sentinel is only published on the clean→dirty
// transition. Revalidates when Config.ValidateOnChange is set.
func (f *Form) SetFieldValue(path string, value any) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	wasDirty := f.dirty
	f.dirty = true
	f.values = asTree(pathutil.Set(f.values, path, value))
	f.mu.Unlock()

	if wasDirty {
		f.bus.Publish(path)
	} else {
		f.bus.Publish(path, notify.PathDirty)
	}

	if f.cfg.ValidateOnChange {
		f.Validate()
	}
}

// SetFieldError sets or, with an empty message, clears the validation error
// for one field and notifies its subscribers.
func (f *Form) SetFieldError(path, message string) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	if message == "" {
		f.errors = asTree(pathutil.Delete(f.errors, path))
	} else {
		f.errors = asTree(pathutil.Set(f.errors, path, message))
	}
	f.mu.Unlock()

	f.bus.Publish(path)
}

// SetFieldTouched marks a field as touched (pass true on blur) and notifies
// its subscribers. Revalidates when blur validation is enabled, which it is by
// default.
func (f *Form) SetFieldTouched(path string, touched bool) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.touched = asTree(pathutil.Set(f.touched, path, touched))
	f.mu.Unlock()

	f.bus.Publish(path)

	if touched && f.cfg.validateOnBlur() {
		f.Validate()
	}
}

// SetFormError replaces the form-level error message and publishes the
// form-error sentinel.
func (f *Form) SetFormError(message string) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.formError = message
	f.mu.Unlock()

	f.bus.Publish(notify.PathFormError)
}

// SetErrors replaces the whole error tree. Subscribers for the union of the
// old and new leaf paths are notified so fields whose errors were cleared also
// re-evaluate.
func (f *Form) SetErrors(errors map[string]any) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	old := f.errors
	f.errors = cloneTree(errors)
	next := f.errors
	f.mu.Unlock()

	f.bus.Publish(unionPaths(old, next)...)
}

// Validate runs the configured validator against the current values, stores
// the resulting error tree (an empty tree when no validator is configured),
// publishes the union of old and new error paths, and returns the new tree.
func (f *Form) Validate() map[string]any {
	f.mu.Lock()
	values := f.values
	f.mu.Unlock()

	var next map[string]any
	if f.cfg.Validate != nil {
		next = f.cfg.Validate(values)
	}
	if next == nil {
		next = map[string]any{}
	}

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return next
	}
	old := f.errors
	f.errors = next
	f.mu.Unlock()

	f.bus.Publish(unionPaths(old, next)...)
	return next
}

// Reset restores values to the initial seed, clears dirty, errors, touched,
// and the form error, and notifies every path that may have changed between
// the edited and restored trees.
func (f *Form) Reset() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	old := f.values
	f.seed()
	f.dirty = false
	f.formError = ""
	next := f.values
	f.mu.Unlock()

	paths := unionPaths(old, next)
	paths = append(paths, notify.PathDirty, notify.PathFormError)
	f.bus.Publish(paths...)
}

// Reinitialize replaces the initial-value seed and performs an implicit Reset.
// It is a no-op unless Config.EnableReinitialize is set or when the new seed
// equals the current one.
func (f *Form) Reinitialize(values map[string]any) {
	if !f.cfg.EnableReinitialize {
		return
	}
	f.mu.Lock()
	if f.closed || reflect.DeepEqual(f.cfg.InitialValues, values) {
		f.mu.Unlock()
		return
	}
	f.cfg.InitialValues = cloneTree(values)
	f.mu.Unlock()

	f.Reset()
}

// Close marks the form unmounted. Subsequent mutations become no-ops and the
// bus drops its subscriptions, so a submission settling late cannot touch dead
// state or notify stale listeners.
func (f *Form) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	f.bus.Close()
}

func asTree(tree any) map[string]any {
	if typed, ok := tree.(map[string]any); ok {
		return typed
	}
	return map[string]any{}
}

func cloneTree(src map[string]any) map[string]any {
	if src == nil {
		return map[string]any{}
	}
	return cloneValue(src).(map[string]any)
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, v := range typed {
			out[k] = cloneValue(v)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, v := range typed {
			out[i] = cloneValue(v)
		}
		return out
	default:
		return typed
	}
}

func unionPaths(old, next map[string]any) []string {
	set := pathutil.KeySet(old)
	for path := range pathutil.Keys(next) {
		set[path] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for path := range set {
		out = append(out, path)
	}
	return out
}
