package core

// InheritedElement is the element that hosts an [InheritedWidget] and
// tracks the descendants that depend on it.
//
// When a descendant calls [BuildContext.DependOnInherited], it registers as
// a dependent of this element. When the InheritedWidget is replaced and
// [InheritedWidget.UpdateShouldNotify] returns true, every registered
// dependent is notified and scheduled for rebuild. Dependents unregister
// themselves when they unmount.
type InheritedElement struct {
	elementBase
	child      Element
	dependents map[Element]struct{}
}

// NewInheritedElement creates an InheritedElement.
// The widget and build owner are set by the framework during inflation.
func NewInheritedElement() *InheritedElement {
	element := &InheritedElement{
		dependents: make(map[Element]struct{}),
	}
	element.setSelf(element)
	return element
}

func (e *InheritedElement) Mount(parent Element, slot any) {
	e.attach(parent, slot)
	e.dirty = true
	e.RebuildIfNeeded()
}

func (e *InheritedElement) Update(newWidget Widget) {
	oldWidget := e.widget.(InheritedWidget)
	e.widget = newWidget

	if newWidget.(InheritedWidget).UpdateShouldNotify(oldWidget) {
		for dependent := range e.dependents {
			notifyDependent(dependent)
		}
	}
	e.MarkNeedsBuild()
}

func (e *InheritedElement) Unmount() {
	if e.child != nil {
		e.child.Unmount()
		e.child = nil
	}
	e.detach()
	e.dependents = nil
}

func (e *InheritedElement) RebuildIfNeeded() {
	if !e.dirty || !e.mounted {
		return
	}
	e.dirty = false
	childWidget := e.widget.(InheritedWidget).ChildWidget()
	e.child = updateChild(e.child, childWidget, e, e.buildOwner)
}

func (e *InheritedElement) VisitChildren(visitor func(Element) bool) {
	if e.child != nil {
		visitor(e.child)
	}
}

// AddDependent registers an element as depending on this inherited widget.
func (e *InheritedElement) AddDependent(dependent Element) {
	if e.dependents == nil {
		e.dependents = make(map[Element]struct{})
	}
	e.dependents[dependent] = struct{}{}
}

// RemoveDependent unregisters an element as depending on this inherited widget.
func (e *InheritedElement) RemoveDependent(dependent Element) {
	delete(e.dependents, dependent)
}

// DependentCount returns the number of registered dependents.
func (e *InheritedElement) DependentCount() int {
	return len(e.dependents)
}

// notifyDependent calls DidChangeDependencies on stateful dependents and
// schedules every dependent for rebuild.
func notifyDependent(element Element) {
	if stateful, ok := element.(*StatefulElement); ok {
		if stateful.state != nil {
			stateful.state.DidChangeDependencies()
		}
		stateful.MarkNeedsBuild()
		return
	}
	element.MarkNeedsBuild()
}
