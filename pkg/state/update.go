package state

import "reflect"

// Map is the untyped keyed state used by containers that do not declare
// their own state type.
type Map = map[string]any

// Update describes how a mutation derives its partial state from the
// current snapshot. Construct one with [Patch], [PatchFunc] or [PatchIf].
type Update[S any] interface {
	// partial returns the partial state to merge, or false to skip the
	// mutation entirely.
	partial(current S) (S, bool)
}

type patchValue[S any] struct{ value S }

func (p patchValue[S]) partial(S) (S, bool) { return p.value, true }

type patchFunc[S any] struct{ fn func(S) S }

func (p patchFunc[S]) partial(current S) (S, bool) { return p.fn(current), true }

type patchIf[S any] struct{ fn func(S) (S, bool) }

func (p patchIf[S]) partial(current S) (S, bool) { return p.fn(current) }

// Patch merges a fixed partial state.
func Patch[S any](partial S) Update[S] {
	return patchValue[S]{value: partial}
}

// PatchFunc derives the partial state from the current snapshot.
// fn must not retain or modify its argument.
func PatchFunc[S any](fn func(S) S) Update[S] {
	return patchFunc[S]{fn: fn}
}

// PatchIf is like PatchFunc, but fn may decline the mutation by returning
// false. A declined mutation leaves the snapshot untouched, notifies no
// listener and returns an already settled Completion.
func PatchIf[S any](fn func(S) (S, bool)) Update[S] {
	return patchIf[S]{fn: fn}
}

// MergeFunc combines the previous snapshot with a partial update into the
// next snapshot. It must not modify prev.
type MergeFunc[S any] func(prev, partial S) S

// ShallowMerge is the default MergeFunc.
//
// When S is a map kind, the result is a fresh map holding every key of
// prev overwritten by every key of partial; keys absent from partial keep
// their previous value. For any other kind the partial value becomes the
// next snapshot, so struct states keep untouched fields by deriving the
// partial from the current snapshot with [PatchFunc].
func ShallowMerge[S any](prev, partial S) S {
	pv := reflect.ValueOf(prev)
	if pv.Kind() != reflect.Map {
		return partial
	}

	next := reflect.MakeMapWithSize(pv.Type(), pv.Len())
	iter := pv.MapRange()
	for iter.Next() {
		next.SetMapIndex(iter.Key(), iter.Value())
	}
	if qv := reflect.ValueOf(partial); qv.IsValid() && qv.Kind() == reflect.Map {
		iter = qv.MapRange()
		for iter.Next() {
			next.SetMapIndex(iter.Key(), iter.Value())
		}
	}
	return next.Interface().(S)
}
