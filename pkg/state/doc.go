// Package state provides observable state containers.
//
// A Container owns one state snapshot and an ordered listener registry.
// The snapshot only changes through Mutate, which merges a partial update
// into a new snapshot and then notifies every registered listener.
//
// # Defining Containers
//
// Consumer-defined containers embed a *Container and add their own
// operations on top of it:
//
//	type Counter struct {
//	    *state.Container[state.Map]
//	}
//
//	func NewCounter() *Counter {
//	    return &Counter{state.New(state.Map{"count": 0})}
//	}
//
//	func (c *Counter) Increment() *state.Completion {
//	    return c.Mutate(state.PatchFunc(func(s state.Map) state.Map {
//	        return state.Map{"count": s["count"].(int) + 1}
//	    }), nil)
//	}
//
// The embedding type is the container's identity for scope lookups, so two
// containers with the same state shape but different Go types never
// shadow each other.
//
// # Notification Rounds
//
// Mutate invokes listeners synchronously, in registration order, against a
// copy of the registry taken after the merge. Listeners added or removed
// while a round runs affect only later rounds. A listener may finish its
// work asynchronously by returning a Signal; the Completion returned from
// Mutate settles once every Signal of the round has closed.
//
//	done := counter.Increment()
//	if err := done.Wait(ctx); err != nil {
//	    return err
//	}
package state
