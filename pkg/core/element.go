package core

import (
	"reflect"
	"slices"
)

type elementBase struct {
	widget       Widget
	parent       Element
	depth        int
	slot         any
	buildOwner   *BuildOwner
	dirty        bool
	self         Element
	mounted      bool
	dependencies map[*InheritedElement]struct{}
}

func (e *elementBase) Widget() Widget {
	return e.widget
}

func (e *elementBase) Depth() int {
	return e.depth
}

func (e *elementBase) MarkNeedsBuild() {
	if e.dirty {
		return
	}
	e.dirty = true
	if e.buildOwner != nil && e.self != nil {
		e.buildOwner.ScheduleBuild(e.self)
	}
}

func (e *elementBase) parentElement() Element {
	return e.parent
}

func (e *elementBase) setSelf(self Element) {
	e.self = self
}

func (e *elementBase) setWidget(widget Widget) {
	e.widget = widget
}

func (e *elementBase) setBuildOwner(owner *BuildOwner) {
	e.buildOwner = owner
}

func (e *elementBase) isMounted() bool {
	return e.mounted
}

func (e *elementBase) attach(parent Element, slot any) {
	e.parent = parent
	e.slot = slot
	if parent != nil {
		e.depth = parent.Depth() + 1
	}
	e.mounted = true
}

// detach releases inherited dependencies and any pending build waiters.
func (e *elementBase) detach() {
	e.mounted = false
	for inherited := range e.dependencies {
		inherited.RemoveDependent(e.self)
	}
	e.dependencies = nil
	if e.buildOwner != nil && e.self != nil {
		e.buildOwner.release(e.self)
	}
}

func (e *elementBase) FindAncestor(predicate func(Element) bool) Element {
	current := e.parent
	for current != nil {
		if predicate(current) {
			return current
		}
		if base, ok := current.(interface{ parentElement() Element }); ok {
			current = base.parentElement()
		} else {
			break
		}
	}
	return nil
}

func (e *elementBase) DependOnInherited(inheritedType reflect.Type) any {
	found := e.FindAncestor(func(candidate Element) bool {
		inherited, ok := candidate.(*InheritedElement)
		if !ok {
			return false
		}
		widgetType := reflect.TypeOf(inherited.widget)
		return widgetType == inheritedType ||
			(widgetType.Kind() == reflect.Pointer && widgetType.Elem() == inheritedType)
	})
	if found == nil {
		return nil
	}
	inherited := found.(*InheritedElement)
	inherited.AddDependent(e.self)
	if e.dependencies == nil {
		e.dependencies = make(map[*InheritedElement]struct{})
	}
	e.dependencies[inherited] = struct{}{}
	return inherited.widget
}

// StatelessElement hosts a StatelessWidget.
type StatelessElement struct {
	elementBase
	child Element
}

// NewStatelessElement creates a StatelessElement.
// The widget and build owner are set by the framework during inflation.
func NewStatelessElement() *StatelessElement {
	element := &StatelessElement{}
	element.setSelf(element)
	return element
}

func (e *StatelessElement) Mount(parent Element, slot any) {
	e.attach(parent, slot)
	e.dirty = true
	e.RebuildIfNeeded()
}

func (e *StatelessElement) Update(newWidget Widget) {
	e.widget = newWidget
	e.MarkNeedsBuild()
}

func (e *StatelessElement) Unmount() {
	if e.child != nil {
		e.child.Unmount()
		e.child = nil
	}
	e.detach()
}

func (e *StatelessElement) RebuildIfNeeded() {
	if !e.dirty || !e.mounted {
		return
	}
	e.dirty = false
	built := e.widget.(StatelessWidget).Build(e)
	e.child = updateChild(e.child, built, e, e.buildOwner)
}

func (e *StatelessElement) VisitChildren(visitor func(Element) bool) {
	if e.child != nil {
		visitor(e.child)
	}
}

// StatefulElement hosts a StatefulWidget and its State.
type StatefulElement struct {
	elementBase
	child Element
	state State
}

// NewStatefulElement creates a StatefulElement.
// The widget and build owner are set by the framework during inflation.
func NewStatefulElement() *StatefulElement {
	element := &StatefulElement{}
	element.setSelf(element)
	return element
}

// State returns the element's state object.
func (e *StatefulElement) State() State {
	return e.state
}

func (e *StatefulElement) Mount(parent Element, slot any) {
	e.attach(parent, slot)
	e.state = e.widget.(StatefulWidget).CreateState()
	if setter, ok := e.state.(interface{ SetElement(*StatefulElement) }); ok {
		setter.SetElement(e)
	}
	e.state.InitState()
	e.dirty = true
	e.RebuildIfNeeded()
}

func (e *StatefulElement) Update(newWidget Widget) {
	oldWidget := e.widget.(StatefulWidget)
	e.widget = newWidget
	e.state.DidUpdateWidget(oldWidget)
	e.MarkNeedsBuild()
}

func (e *StatefulElement) Unmount() {
	if e.child != nil {
		e.child.Unmount()
		e.child = nil
	}
	e.detach()
	if e.state != nil {
		e.state.Dispose()
	}
}

func (e *StatefulElement) RebuildIfNeeded() {
	if !e.dirty || !e.mounted {
		return
	}
	e.dirty = false
	built := e.state.Build(e)
	e.child = updateChild(e.child, built, e, e.buildOwner)
}

func (e *StatefulElement) VisitChildren(visitor func(Element) bool) {
	if e.child != nil {
		visitor(e.child)
	}
}

// MultiChildElement hosts a MultiChildWidget.
type MultiChildElement struct {
	elementBase
	children []Element
}

// NewMultiChildElement creates a MultiChildElement.
func NewMultiChildElement() *MultiChildElement {
	element := &MultiChildElement{}
	element.setSelf(element)
	return element
}

func (e *MultiChildElement) Mount(parent Element, slot any) {
	e.attach(parent, slot)
	e.dirty = true
	e.RebuildIfNeeded()
}

func (e *MultiChildElement) Update(newWidget Widget) {
	e.widget = newWidget
	e.MarkNeedsBuild()
}

func (e *MultiChildElement) Unmount() {
	for _, child := range e.children {
		child.Unmount()
	}
	e.children = nil
	e.detach()
}

func (e *MultiChildElement) RebuildIfNeeded() {
	if !e.dirty || !e.mounted {
		return
	}
	e.dirty = false

	widgets := e.widget.(MultiChildWidget).ChildWidgets()
	updated := make([]Element, 0, len(widgets))
	defer func() {
		if r := recover(); r != nil {
			e.children = stillMounted(updated, e.children)
			panic(r)
		}
	}()
	for index, childWidget := range widgets {
		var existing Element
		if index < len(e.children) {
			existing = e.children[index]
		}
		if child := updateChild(existing, childWidget, e, e.buildOwner); child != nil {
			updated = append(updated, child)
		}
	}
	for i := len(widgets); i < len(e.children); i++ {
		e.children[i].Unmount()
	}
	e.children = updated
}

func (e *MultiChildElement) VisitChildren(visitor func(Element) bool) {
	for _, child := range e.children {
		if !visitor(child) {
			return
		}
	}
}

func updateChild(existing Element, widget Widget, parent Element, owner *BuildOwner) Element {
	if widget == nil {
		if existing != nil {
			existing.Unmount()
		}
		return nil
	}
	if existing != nil && canUpdateWidget(existing.Widget(), widget) {
		existing.Update(widget)
		existing.RebuildIfNeeded()
		return existing
	}
	if existing != nil {
		existing.Unmount()
	}
	element := inflateWidget(widget, owner)
	mount(element, parent)
	return element
}

// mount mounts element under parent. When mounting panics, the part of
// element's subtree that did mount is unmounted before the panic continues,
// so no state of the failed subtree stays subscribed.
func mount(element Element, parent Element) {
	defer func() {
		if r := recover(); r != nil {
			element.Unmount()
			panic(r)
		}
	}()
	element.Mount(parent, nil)
}

// stillMounted returns updated plus every previous child that is still
// mounted, keeping them reachable from their parent after a failed rebuild.
func stillMounted(updated, previous []Element) []Element {
	kept := updated
	for _, child := range previous {
		m, ok := child.(interface{ isMounted() bool })
		if ok && m.isMounted() && !slices.Contains(kept, child) {
			kept = append(kept, child)
		}
	}
	return kept
}

func canUpdateWidget(existing Widget, next Widget) bool {
	if existing == nil || next == nil {
		return false
	}
	if reflect.TypeOf(existing) != reflect.TypeOf(next) {
		return false
	}
	return reflect.DeepEqual(existing.Key(), next.Key())
}

func inflateWidget(widget Widget, owner *BuildOwner) Element {
	if widget == nil {
		return nil
	}
	element := widget.CreateElement()
	if setter, ok := element.(interface{ setWidget(Widget) }); ok {
		setter.setWidget(widget)
	}
	if setter, ok := element.(interface{ setBuildOwner(*BuildOwner) }); ok {
		setter.setBuildOwner(owner)
	}
	if setter, ok := element.(interface{ setSelf(Element) }); ok {
		setter.setSelf(element)
	}
	return element
}
