package widgets

import (
	"github.com/go-drift/statekit/pkg/core"
	"github.com/go-drift/statekit/pkg/inject"
	"github.com/go-drift/statekit/pkg/state"
	"github.com/go-drift/statekit/pkg/subscribe"
)

// SubscribeBuilder builds the subtree of a Subscribe from the resolved
// containers, passed in the order of Subscribe.To.
type SubscribeBuilder func(ctx core.BuildContext, instances ...state.Store) core.Widget

// Subscribe rebuilds Builder whenever one of the containers in To changes.
//
// Mounting a Subscribe whose references cannot be resolved panics with an
// *errors.ConfigurationError; the panic surfaces from the host call that
// mounted it.
type Subscribe struct {
	core.StatefulBase
	// To lists the containers the subtree reads.
	To []inject.Descriptor
	// Builder renders the subtree.
	Builder SubscribeBuilder
}

// CreateState returns the subscription state.
func (Subscribe) CreateState() core.State {
	return &SubscribeState{}
}

// SubscribeState drives a [subscribe.Binding] through the element lifecycle.
type SubscribeState struct {
	core.StateBase
	binding *subscribe.Binding
	scope   *inject.Scope
}

// Binding returns the current binding.
func (s *SubscribeState) Binding() *subscribe.Binding {
	return s.binding
}

func (s *SubscribeState) widget() Subscribe {
	return s.Element().Widget().(Subscribe)
}

func (s *SubscribeState) bind(to []inject.Descriptor) *subscribe.Binding {
	b := subscribe.New(to, s.Rebuild)
	if err := b.Activate(s.scope); err != nil {
		panic(err)
	}
	return b
}

// InitState activates the binding against the enclosing scope.
func (s *SubscribeState) InitState() {
	s.scope = ScopeOf(s.Element())
	s.binding = s.bind(s.widget().To)
}

// DidChangeDependencies rebinds when the enclosing scope is replaced.
func (s *SubscribeState) DidChangeDependencies() {
	scope := ScopeOf(s.Element())
	if scope == s.scope {
		return
	}
	s.scope = scope
	if err := s.binding.Rebind(scope); err != nil {
		panic(err)
	}
}

// DidUpdateWidget replaces the binding when the descriptor list changed.
func (s *SubscribeState) DidUpdateWidget(oldWidget core.StatefulWidget) {
	next := s.widget().To
	if sameDescriptors(oldWidget.(Subscribe).To, next) {
		return
	}
	s.binding.Deactivate()
	s.binding = s.bind(next)
}

// Build evaluates the builder against the current instances.
func (s *SubscribeState) Build(ctx core.BuildContext) core.Widget {
	builder := s.widget().Builder
	if builder == nil {
		return nil
	}
	return subscribe.Render(s.binding, func(instances ...state.Store) core.Widget {
		return builder(ctx, instances...)
	})
}

// Dispose deactivates the binding.
func (s *SubscribeState) Dispose() {
	if s.binding != nil {
		s.binding.Deactivate()
	}
	s.StateBase.Dispose()
}

func sameDescriptors(a, b []inject.Descriptor) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Kind() != b[i].Kind() || a[i].Key() != b[i].Key() {
			return false
		}
	}
	return true
}
