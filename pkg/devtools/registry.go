// Package devtools serves a read-only HTTP inspector over tracked
// containers and a mounted widget tree.
package devtools

import (
	"reflect"
	"slices"
	"sync"

	"github.com/go-drift/statekit/pkg/state"
)

// Registry holds the containers exposed by the inspector.
type Registry struct {
	mu     sync.RWMutex
	stores []state.Store
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Track adds stores. A store already tracked is ignored.
func (r *Registry) Track(stores ...state.Store) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range stores {
		if s == nil || slices.Contains(r.stores, s) {
			continue
		}
		r.stores = append(r.stores, s)
	}
}

// Untrack removes store.
func (r *Registry) Untrack(store state.Store) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stores = slices.DeleteFunc(r.stores, func(s state.Store) bool { return s == store })
}

// Stores returns the tracked stores in tracking order.
func (r *Registry) Stores() []state.Store {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.stores)
}

// Lookup returns the first tracked store whose display name is name.
func (r *Registry) Lookup(name string) (state.Store, bool) {
	for _, s := range r.Stores() {
		if DisplayName(s) == name {
			return s, true
		}
	}
	return nil, false
}

// DisplayName returns the store's name, or its dynamic type when unnamed.
func DisplayName(s state.Store) string {
	if name := s.Name(); name != "" {
		return name
	}
	return reflect.TypeOf(s).String()
}

// ContainerInfo describes a tracked container.
type ContainerInfo struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Version   uint64 `json:"version"`
	Listeners int    `json:"listeners"`
	State     any    `json:"state,omitempty"`
}

// Describe captures s. The state is included only when withState is set.
func Describe(s state.Store, withState bool) ContainerInfo {
	info := ContainerInfo{
		Name:      DisplayName(s),
		Type:      reflect.TypeOf(s).String(),
		Version:   s.Version(),
		Listeners: s.ListenerCount(),
	}
	if withState {
		info.State = s.Snapshot()
	}
	return info
}
