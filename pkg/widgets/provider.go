package widgets

import (
	"reflect"
	"slices"

	"github.com/go-drift/statekit/pkg/core"
	"github.com/go-drift/statekit/pkg/inject"
	"github.com/go-drift/statekit/pkg/state"
)

// Provider exposes Inject to Child as a scope chained to the scope of the
// nearest enclosing Provider.
type Provider struct {
	core.StatefulBase
	// Inject lists the containers to expose, in lookup order.
	Inject []state.Store
	// Child is the subtree that sees the scope.
	Child core.Widget
}

// CreateState returns the provider's state.
func (Provider) CreateState() core.State {
	return &providerState{}
}

type providerState struct {
	core.StateBase
	parent *inject.Scope
	scope  *inject.Scope
}

func (s *providerState) widget() Provider {
	return s.Element().Widget().(Provider)
}

func (s *providerState) InitState() {
	s.parent = ScopeOf(s.Element())
	s.scope = inject.NewScope(s.parent, s.widget().Inject...)
}

func (s *providerState) DidChangeDependencies() {
	parent := ScopeOf(s.Element())
	if parent == s.parent {
		return
	}
	s.parent = parent
	s.scope = inject.NewScope(parent, s.widget().Inject...)
}

func (s *providerState) DidUpdateWidget(oldWidget core.StatefulWidget) {
	if slices.Equal(oldWidget.(Provider).Inject, s.widget().Inject) {
		return
	}
	s.scope = inject.NewScope(s.parent, s.widget().Inject...)
}

func (s *providerState) Build(ctx core.BuildContext) core.Widget {
	return scopeHost{scope: s.scope, child: s.widget().Child}
}

// scopeHost carries a provider's scope down the tree.
type scopeHost struct {
	core.InheritedBase
	scope *inject.Scope
	child core.Widget
}

func (h scopeHost) ChildWidget() core.Widget {
	return h.child
}

func (h scopeHost) UpdateShouldNotify(oldWidget core.InheritedWidget) bool {
	return h.scope != oldWidget.(scopeHost).scope
}

var scopeHostType = reflect.TypeOf((*scopeHost)(nil)).Elem()

// ScopeOf returns the scope of the nearest enclosing Provider, or nil.
// The caller is rebuilt when that scope is replaced.
func ScopeOf(ctx core.BuildContext) *inject.Scope {
	if host, ok := ctx.DependOnInherited(scopeHostType).(scopeHost); ok {
		return host.scope
	}
	return nil
}
