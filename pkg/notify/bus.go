// Package notify provides the path-keyed publish/subscribe bus behind the form
// state engine. Listeners register interest in a single field path (or in
// every change via PathAll) and are invoked when a publish touches that path.
// Per-edit notification cost is proportional to the listeners interested in
// the touched paths, not to the number of fields in the form.
package notify

import "sync"

// Listener reacts to a publish that matched one of its subscriptions. The bus
// carries no payload; listeners re-read whatever state they depend on.
type Listener func()

// Reserved subscription keys. Field paths never collide with these: PathAll is
// the match-everything sentinel and the @-prefixed slots carry form-level
// flags that live outside the value tree.
const (
	PathAll        = "*"
	PathDirty      = "@dirty"
	PathSubmitting = "@submitting"
	PathFormError  = "@formError"
)

// Bus is a process-local subscription registry private to one form instance.
// Publishes are delivered synchronously in call order; a publish issued from
// inside a listener is queued behind the in-flight delivery rather than
// recursing.
type Bus struct {
	mu        sync.Mutex
	nextID    int
	listeners map[string]map[int]Listener

	delivering bool
	queue      [][]string
	closed     bool
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{listeners: make(map[string]map[int]Listener)}
}

// Subscribe registers a listener for the given path and returns its remove
// function. Multiple listeners per path are allowed; registration order is not
// preserved on delivery. Subscribing to a closed bus returns a no-op remover.
func (b *Bus) Subscribe(path string, fn Listener) func() {
	if fn == nil {
		return func() {}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return func() {}
	}

	id := b.nextID
	b.nextID++

	set := b.listeners[path]
	if set == nil {
		set = make(map[int]Listener)
		b.listeners[path] = set
	}
	set[id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if set, ok := b.listeners[path]; ok {
			delete(set, id)
			if len(set) == 0 {
				delete(b.listeners, path)
			}
		}
	}
}

// Publish notifies every listener registered on any of the supplied paths,
// plus every PathAll listener. Each listener runs exactly once per Publish
// call even when several of its interests matched. Listeners run outside the
// registry lock, so they may subscribe, unsubscribe, or publish; a nested
// publish is deferred until the current delivery finishes.
func (b *Bus) Publish(paths ...string) {
	if len(paths) == 0 {
		return
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	if b.delivering {
		b.queue = append(b.queue, paths)
		b.mu.Unlock()
		return
	}
	b.delivering = true
	b.mu.Unlock()

	batch := paths
	for batch != nil {
		b.deliver(batch)

		b.mu.Lock()
		if len(b.queue) > 0 && !b.closed {
			batch = b.queue[0]
			b.queue = b.queue[1:]
		} else {
			batch = nil
			b.queue = nil
			b.delivering = false
		}
		b.mu.Unlock()
	}
}

func (b *Bus) deliver(paths []string) {
	b.mu.Lock()
	matched := make(map[int]Listener)
	for _, path := range paths {
		for id, fn := range b.listeners[path] {
			matched[id] = fn
		}
	}
	for id, fn := range b.listeners[PathAll] {
		matched[id] = fn
	}
	b.mu.Unlock()

	for _, fn := range matched {
		fn()
	}
}

// Subscribers reports how many listeners are registered for a path.
func (b *Bus) Subscribers(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners[path])
}

// Close drops every subscription and rejects further publishes. The owning
// form calls this on unmount so stale completions cannot reach listeners.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.listeners = make(map[string]map[int]Listener)
	b.queue = nil
}
