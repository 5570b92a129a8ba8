// Package inject resolves container descriptors against chains of scopes.
//
// A Scope is an immutable, ordered set of already constructed containers,
// optionally chained to a parent scope. Resolution scans the local set in
// order and falls back to the parent, so a child scope shadows containers
// of the same type held by its ancestors.
package inject

import (
	"fmt"
	"reflect"

	"github.com/go-drift/statekit/pkg/state"
)

// Key identifies a container for resolution. Type is compared by identity.
// An empty Name matches any container of Type; a non-empty Name also
// requires the container's [state.Store.Name] to match.
type Key struct {
	Type reflect.Type
	Name string
}

// KeyFor returns the unnamed key for container type T.
func KeyFor[T state.Store]() Key {
	return Key{Type: reflect.TypeOf((*T)(nil)).Elem()}
}

// KeyOf returns the named key that store itself satisfies.
func KeyOf(store state.Store) Key {
	return Key{Type: reflect.TypeOf(store), Name: store.Name()}
}

func (k Key) String() string {
	typeName := "<nil>"
	if k.Type != nil {
		typeName = k.Type.String()
	}
	if k.Name != "" {
		return fmt.Sprintf("%s(%q)", typeName, k.Name)
	}
	return typeName
}

// Matches reports whether store satisfies k.
func (k Key) Matches(store state.Store) bool {
	if store == nil || reflect.TypeOf(store) != k.Type {
		return false
	}
	return k.Name == "" || store.Name() == k.Name
}

// Scope is an ordered collection of container instances exposed to a
// subtree. Scopes never change after construction; providing different
// containers means building a new nested scope.
type Scope struct {
	parent    *Scope
	instances []state.Store
	depth     int
}

// NewScope creates a scope holding instances, chained to parent.
// parent may be nil. Nil instances are dropped.
func NewScope(parent *Scope, instances ...state.Store) *Scope {
	s := &Scope{parent: parent}
	if parent != nil {
		s.depth = parent.depth + 1
	}
	for _, inst := range instances {
		if inst != nil {
			s.instances = append(s.instances, inst)
		}
	}
	return s
}

// Parent returns the enclosing scope, or nil for a root scope.
func (s *Scope) Parent() *Scope {
	if s == nil {
		return nil
	}
	return s.parent
}

// Depth returns the number of ancestors of s.
func (s *Scope) Depth() int {
	if s == nil {
		return 0
	}
	return s.depth
}

// Len returns the number of local instances.
func (s *Scope) Len() int {
	if s == nil {
		return 0
	}
	return len(s.instances)
}

// Instances returns a copy of the local instances in provided order.
func (s *Scope) Instances() []state.Store {
	if s == nil {
		return nil
	}
	return append([]state.Store(nil), s.instances...)
}

// Resolve returns the first local instance matching key, falling back to
// the parent chain. When the local list holds several instances of the
// same type, the earliest one wins. Resolve on a nil scope finds nothing.
func (s *Scope) Resolve(key Key) (state.Store, bool) {
	for scope := s; scope != nil; scope = scope.parent {
		for _, inst := range scope.instances {
			if key.Matches(inst) {
				return inst, true
			}
		}
	}
	return nil, false
}

// Lookup resolves the unnamed key for T and returns the typed instance.
func Lookup[T state.Store](s *Scope) (T, bool) {
	inst, ok := s.Resolve(KeyFor[T]())
	if !ok {
		var zero T
		return zero, false
	}
	return inst.(T), true
}
