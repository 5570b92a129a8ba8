// Package core provides a small widget and element tree that hosts
// statekit bindings.
//
// It plays the part of the host renderer: it mounts and unmounts elements,
// keeps per-element State across rebuilds, and offers the force
// re-evaluation primitive that bindings call when a container changes.
//
// # Core Types
//
// Widget is an immutable description of part of the tree. Element is the
// instantiation of a Widget at a particular location; elements own the
// lifecycle and identity of widgets.
//
// # Stateful Widgets
//
// For widgets that need mutable state, embed StateBase in your state struct:
//
//	type myState struct {
//	    core.StateBase
//	    counter *Counter
//	}
//
//	func (s *myState) InitState() {
//	    s.counter = NewCounter()
//	    core.UseStore(s, s.counter)
//	}
//
// # Rebuild Scheduling
//
// MarkNeedsBuild queues an element on its BuildOwner; FlushBuild rebuilds
// queued elements from the root down. StateBase.Rebuild returns a signal
// closed once the queued rebuild has run, which is how container
// notification rounds learn that their listeners have settled.
package core
