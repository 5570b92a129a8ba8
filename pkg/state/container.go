package state

import (
	"slices"
	"sync"
)

// Listener is notified after every merge of a container it is registered
// on. It returns a Signal that closes when its reaction has finished, or
// nil if it finished before returning.
type Listener func() Signal

// Store is the type-erased view of a container used by scopes, bindings
// and tooling.
type Store interface {
	// Subscribe registers l and returns a function that removes exactly
	// that registration.
	Subscribe(l Listener) (unsubscribe func())
	// ListenerCount returns the number of registered listeners.
	ListenerCount() int
	// Name returns the diagnostic name, which may be empty.
	Name() string
	// Snapshot returns the current state as an untyped value.
	Snapshot() any
	// Version returns the number of merges applied so far.
	Version() uint64
}

// Option configures a Container.
type Option[S any] func(*Container[S])

// WithName sets the container's diagnostic name.
func WithName[S any](name string) Option[S] {
	return func(c *Container[S]) {
		c.name = name
	}
}

// WithMerge replaces the default [ShallowMerge].
func WithMerge[S any](merge MergeFunc[S]) Option[S] {
	return func(c *Container[S]) {
		if merge != nil {
			c.merge = merge
		}
	}
}

type registration struct {
	listener Listener
}

// Container holds a state snapshot of type S and the listeners observing it.
// Embed a *Container in a named struct to define a container type.
//
// A Container is safe for concurrent use. Mutations are serialized: an
// update reads the snapshot and its result is merged before any other
// update runs.
type Container[S any] struct {
	// mutating is held from reading the snapshot for an update until its
	// merge; mu guards the fields below and is never held while calling out.
	mutating  sync.Mutex
	mu        sync.Mutex
	state     S
	merge     MergeFunc[S]
	name      string
	version   uint64
	listeners []*registration
}

// New creates a container holding initial.
func New[S any](initial S, opts ...Option[S]) *Container[S] {
	c := &Container[S]{
		state: initial,
		merge: ShallowMerge[S],
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current snapshot.
func (c *Container[S]) State() S {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns the current snapshot as an untyped value.
func (c *Container[S]) Snapshot() any {
	return c.State()
}

// Name returns the diagnostic name given with [WithName].
func (c *Container[S]) Name() string {
	return c.name
}

// Version returns the number of merges applied so far.
func (c *Container[S]) Version() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

// Mutate merges the partial state produced by update into a new snapshot
// and notifies every listener registered at that moment.
//
// The merge always happens before Mutate returns. A panic raised by
// update or by a listener propagates to the caller. onSettled, if not nil,
// runs once every listener of the round has finished, before the returned
// Completion settles. A nil update notifies listeners without merging.
//
// update must not mutate the container it is applied to; listeners may.
func (c *Container[S]) Mutate(update Update[S], onSettled func()) *Completion {
	if update != nil && !c.merged(update) {
		done := newCompletion(c.name)
		done.settle(nil, nil)
		return done
	}
	return c.notify(onSettled)
}

// merged applies update under the mutation lock and reports whether a
// partial state was merged.
func (c *Container[S]) merged(update Update[S]) bool {
	c.mutating.Lock()
	defer c.mutating.Unlock()
	partial, ok := update.partial(c.State())
	if !ok {
		return false
	}
	c.apply(partial)
	return true
}

// SetState merges partial and notifies listeners.
func (c *Container[S]) SetState(partial S) *Completion {
	return c.Mutate(Patch(partial), nil)
}

func (c *Container[S]) apply(partial S) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = c.merge(c.state, partial)
	c.version++
}

func (c *Container[S]) notify(onSettled func()) *Completion {
	c.mu.Lock()
	round := slices.Clone(c.listeners)
	c.mu.Unlock()

	var pending []Signal
	for _, reg := range round {
		if sig := reg.listener(); sig != nil {
			pending = append(pending, sig)
		}
	}

	done := newCompletion(c.name)
	done.settle(pending, onSettled)
	return done
}

// Subscribe registers l and returns a function that removes exactly this
// registration. Calling the returned function more than once is a no-op.
func (c *Container[S]) Subscribe(l Listener) func() {
	if l == nil {
		return func() {}
	}
	reg := &registration{listener: l}

	c.mu.Lock()
	c.listeners = append(c.listeners, reg)
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if i := slices.Index(c.listeners, reg); i >= 0 {
			c.listeners = slices.Delete(c.listeners, i, i+1)
		}
	}
}

// ListenerCount returns the number of registered listeners.
func (c *Container[S]) ListenerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.listeners)
}
