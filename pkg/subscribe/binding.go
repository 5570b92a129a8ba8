// Package subscribe ties a renderable unit to the containers it reads.
//
// A Binding resolves its descriptors when activated, registers itself as a
// listener on every resolved container, and forwards each notification to
// the host's re-evaluation trigger until it is deactivated.
package subscribe

import (
	"fmt"
	"sync"

	"github.com/go-drift/statekit/pkg/inject"
	"github.com/go-drift/statekit/pkg/state"
)

// Phase is a binding's lifecycle position.
type Phase int

const (
	// PhaseCreated is the initial phase.
	PhaseCreated Phase = iota
	// PhaseResolving is held while descriptors are being resolved.
	PhaseResolving
	// PhaseSubscribed means the binding listens to its containers.
	PhaseSubscribed
	// PhaseUnmounted is terminal.
	PhaseUnmounted
)

func (p Phase) String() string {
	switch p {
	case PhaseCreated:
		return "created"
	case PhaseResolving:
		return "resolving"
	case PhaseSubscribed:
		return "subscribed"
	case PhaseUnmounted:
		return "unmounted"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Trigger asks the host to re-evaluate the bound unit. The returned Signal
// closes once that re-evaluation has finished; nil means it already has.
type Trigger func() state.Signal

// Binding subscribes a renderable unit to a list of containers.
type Binding struct {
	// rebinding serializes Rebind calls end to end; mu guards the fields.
	rebinding   sync.Mutex
	mu          sync.Mutex
	descriptors []inject.Descriptor
	instances   []state.Store
	unsubs      []func()
	phase       Phase
	unmounted   bool
	trigger     Trigger
}

// New creates a binding for descriptors. trigger may be nil, in which
// case notifications are acknowledged without re-evaluating anything.
func New(descriptors []inject.Descriptor, trigger Trigger) *Binding {
	return &Binding{
		descriptors: append([]inject.Descriptor(nil), descriptors...),
		trigger:     trigger,
	}
}

// Activate resolves every descriptor against scope and subscribes to the
// resolved containers. It fails with an *errors.ConfigurationError when a
// reference cannot be resolved, leaving the binding in PhaseCreated with
// no subscriptions.
func (b *Binding) Activate(scope *inject.Scope) error {
	b.mu.Lock()
	if b.phase != PhaseCreated {
		phase := b.phase
		b.mu.Unlock()
		return fmt.Errorf("subscribe: activate in phase %s", phase)
	}
	b.phase = PhaseResolving
	descriptors := b.descriptors
	b.mu.Unlock()

	instances, err := inject.ResolveAll(scope, descriptors)
	if err != nil {
		b.mu.Lock()
		if b.phase == PhaseResolving {
			b.phase = PhaseCreated
		}
		b.mu.Unlock()
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.unmounted {
		// Deactivated while resolving; never subscribe.
		return nil
	}
	b.instances = instances
	b.unsubs = b.subscribeAll(instances)
	b.phase = PhaseSubscribed
	return nil
}

// Rebind re-resolves the descriptors against scope, typically after the
// enclosing scope has been replaced. The old subscriptions are released
// only once the new set resolved, so a failed Rebind changes nothing.
// Concurrent Rebind calls are serialized and each sees the instances the
// previous one installed.
func (b *Binding) Rebind(scope *inject.Scope) error {
	b.rebinding.Lock()
	defer b.rebinding.Unlock()

	b.mu.Lock()
	if b.phase != PhaseSubscribed {
		phase := b.phase
		b.mu.Unlock()
		return fmt.Errorf("subscribe: rebind in phase %s", phase)
	}
	descriptors := b.descriptors
	previous := b.instances
	b.mu.Unlock()

	resolved, err := inject.ResolveAll(scope, descriptors)
	if err != nil {
		return err
	}
	// Standalone instances built by Construct descriptors survive a rebind.
	for i, d := range descriptors {
		if d.Kind() == inject.KindConstruct && i < len(previous) {
			resolved[i] = previous[i]
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.unmounted {
		return nil
	}
	for _, unsub := range b.unsubs {
		unsub()
	}
	b.instances = resolved
	b.unsubs = b.subscribeAll(resolved)
	return nil
}

func (b *Binding) subscribeAll(instances []state.Store) []func() {
	unsubs := make([]func(), 0, len(instances))
	for _, inst := range instances {
		unsubs = append(unsubs, inst.Subscribe(b.Notify))
	}
	return unsubs
}

// Notify is the listener the binding registers on its containers. It asks
// the host to re-evaluate unless the binding has been deactivated, in
// which case it returns an already settled signal.
func (b *Binding) Notify() state.Signal {
	b.mu.Lock()
	unmounted := b.unmounted
	trigger := b.trigger
	b.mu.Unlock()

	if unmounted || trigger == nil {
		return nil
	}
	return trigger()
}

// Deactivate marks the binding unmounted and removes it from every
// container it subscribed to. It is safe to call more than once.
func (b *Binding) Deactivate() {
	b.mu.Lock()
	if b.unmounted {
		b.mu.Unlock()
		return
	}
	b.unmounted = true
	b.phase = PhaseUnmounted
	unsubs := b.unsubs
	b.unsubs = nil
	b.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
}

// Unmounted reports whether Deactivate has been called.
func (b *Binding) Unmounted() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.unmounted
}

// Phase returns the current lifecycle phase.
func (b *Binding) Phase() Phase {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.phase
}

// Descriptors returns a copy of the binding's descriptors.
func (b *Binding) Descriptors() []inject.Descriptor {
	return append([]inject.Descriptor(nil), b.descriptors...)
}

// Instances returns the resolved containers in descriptor order.
// It is empty before activation succeeds.
func (b *Binding) Instances() []state.Store {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]state.Store(nil), b.instances...)
}

// Render evaluates fn with the binding's current instances. Panics raised
// by fn reach the caller unchanged.
func Render[R any](b *Binding, fn func(instances ...state.Store) R) R {
	return fn(b.Instances()...)
}

// Instance returns the i-th resolved container as T. It panics if i is out
// of range or the container is not a T.
func Instance[T state.Store](b *Binding, i int) T {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.instances[i].(T)
}
