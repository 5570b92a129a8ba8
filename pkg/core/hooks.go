package core

import "github.com/go-drift/statekit/pkg/state"

// UseController creates a controller and registers it for automatic disposal.
// The controller will be disposed when the state is disposed.
func UseController[C Disposable](s stateBase, create func() C) C {
	base := s.state()
	controller := create()
	base.OnDispose(func() {
		controller.Dispose()
	})
	return controller
}

// UseStore subscribes the state to a container and rebuilds it on every
// notification. The subscription is removed when the state is disposed.
// Call this once in InitState, not in Build.
//
// Example:
//
//	func (s *myState) InitState() {
//	    s.counter = NewCounter()
//	    core.UseStore(s, s.counter)
//	}
func UseStore(s stateBase, store state.Store) {
	base := s.state()
	unsub := store.Subscribe(base.Rebuild)
	base.OnDispose(unsub)
}
