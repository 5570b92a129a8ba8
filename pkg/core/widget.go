package core

import "reflect"

// Widget is an immutable description of part of the tree.
type Widget interface {
	CreateElement() Element
	Key() any
}

// BuildContext gives a widget access to its location in the tree.
type BuildContext interface {
	// Widget returns the widget the element currently hosts.
	Widget() Widget
	// FindAncestor returns the nearest ancestor satisfying predicate, or nil.
	FindAncestor(predicate func(Element) bool) Element
	// DependOnInherited returns the nearest ancestor inherited widget of
	// inheritedType and registers the caller as its dependent. It returns
	// nil when there is none.
	DependOnInherited(inheritedType reflect.Type) any
}

// Element is the instantiation of a Widget at a location in the tree.
type Element interface {
	BuildContext
	Mount(parent Element, slot any)
	Update(newWidget Widget)
	Unmount()
	RebuildIfNeeded()
	MarkNeedsBuild()
	Depth() int
	VisitChildren(visitor func(Element) bool)
}

// StatelessWidget builds its child from its own configuration only.
type StatelessWidget interface {
	Widget
	Build(ctx BuildContext) Widget
}

// StatefulWidget owns a State that survives rebuilds.
type StatefulWidget interface {
	Widget
	CreateState() State
}

// State is the mutable half of a StatefulWidget.
type State interface {
	InitState()
	Build(ctx BuildContext) Widget
	Dispose()
	DidChangeDependencies()
	DidUpdateWidget(oldWidget StatefulWidget)
}

// InheritedWidget exposes a value to its descendants.
type InheritedWidget interface {
	Widget
	ChildWidget() Widget
	// UpdateShouldNotify reports whether dependents must rebuild when the
	// widget is replaced by the receiver.
	UpdateShouldNotify(oldWidget InheritedWidget) bool
}

// MultiChildWidget hosts an ordered list of children.
type MultiChildWidget interface {
	Widget
	ChildWidgets() []Widget
}

// Disposable is implemented by resources released with their state.
type Disposable interface {
	Dispose()
}

// MountRoot inflates widget and mounts it as the root of a new tree.
func MountRoot(widget Widget, owner *BuildOwner) Element {
	element := inflateWidget(widget, owner)
	if element == nil {
		return nil
	}
	mount(element, nil)
	return element
}
