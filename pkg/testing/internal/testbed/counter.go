// Package testbed provides fixture containers and widgets for the testing
// framework.
package testbed

import (
	"fmt"

	"github.com/go-drift/statekit/pkg/core"
	"github.com/go-drift/statekit/pkg/inject"
	"github.com/go-drift/statekit/pkg/state"
	"github.com/go-drift/statekit/pkg/widgets"
)

// CounterState is the state of a Counter.
type CounterState struct {
	Count int
}

// Counter is a container holding a single integer.
type Counter struct {
	*state.Container[CounterState]
}

// NewCounter returns a counter starting at initial.
func NewCounter(initial int) *Counter {
	return &Counter{state.New(CounterState{Count: initial})}
}

// Count returns the current count.
func (c *Counter) Count() int {
	return c.State().Count
}

// Increment adds one to the count.
func (c *Counter) Increment() *state.Completion {
	return c.Mutate(state.PatchFunc(func(s CounterState) CounterState {
		return CounterState{Count: s.Count + 1}
	}), nil)
}

// CounterView renders the nearest Counter as text.
type CounterView struct {
	core.StatelessBase
	Prefix string
	// ID keys the view among its siblings.
	ID any
}

// Key returns the view's ID.
func (v CounterView) Key() any {
	return v.ID
}

// Build subscribes to the enclosing Counter.
func (v CounterView) Build(ctx core.BuildContext) core.Widget {
	return widgets.Subscribe{
		To: []inject.Descriptor{inject.Ref[*Counter]()},
		Builder: func(ctx core.BuildContext, stores ...state.Store) core.Widget {
			return widgets.Text{Content: fmt.Sprintf("%s%d", v.Prefix, stores[0].(*Counter).Count())}
		},
	}
}
