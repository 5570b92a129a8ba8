package core

import (
	"slices"
	"sync"

	"github.com/go-drift/statekit/pkg/state"
)

// BuildOwner tracks dirty elements that need rebuilding.
type BuildOwner struct {
	dirty    []Element
	dirtySet map[Element]bool
	waiters  map[Element][]chan struct{}
	mu       sync.Mutex

	// OnNeedsFrame is called when a new element is scheduled for rebuild,
	// signalling the host loop that a flush is due.
	OnNeedsFrame func()
}

// NewBuildOwner creates a new BuildOwner.
func NewBuildOwner() *BuildOwner {
	return &BuildOwner{}
}

// ScheduleBuild marks an element as needing rebuild.
func (b *BuildOwner) ScheduleBuild(element Element) {
	added := func() bool {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.dirtySet[element] {
			return false
		}
		if b.dirtySet == nil {
			b.dirtySet = make(map[Element]bool)
		}
		b.dirtySet[element] = true
		b.dirty = append(b.dirty, element)
		return true
	}()

	if added && b.OnNeedsFrame != nil {
		b.OnNeedsFrame()
	}
}

// AwaitBuild returns a signal closed once the next flush has rebuilt
// element, or has skipped it because it was unmounted.
func (b *BuildOwner) AwaitBuild(element Element) state.Signal {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.waiters == nil {
		b.waiters = make(map[Element][]chan struct{})
	}
	ch := make(chan struct{})
	b.waiters[element] = append(b.waiters[element], ch)
	return ch
}

// release closes every waiter registered for element.
func (b *BuildOwner) release(element Element) {
	b.mu.Lock()
	waiting := b.waiters[element]
	delete(b.waiters, element)
	b.mu.Unlock()

	for _, ch := range waiting {
		close(ch)
	}
}

// releaseAll closes every outstanding waiter.
func (b *BuildOwner) releaseAll() {
	b.mu.Lock()
	waiters := b.waiters
	b.waiters = nil
	b.mu.Unlock()

	for _, waiting := range waiters {
		for _, ch := range waiting {
			close(ch)
		}
	}
}

// NeedsWork returns true if there are dirty elements.
func (b *BuildOwner) NeedsWork() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.dirty) > 0
}

// FlushBuild rebuilds all dirty elements in depth order, then releases
// every AwaitBuild waiter.
func (b *BuildOwner) FlushBuild() {
	for {
		b.mu.Lock()
		if len(b.dirty) == 0 {
			b.mu.Unlock()
			b.releaseAll()
			return
		}

		slices.SortFunc(b.dirty, func(a, b Element) int {
			return a.Depth() - b.Depth()
		})

		dirty := b.dirty
		b.dirty = nil
		clear(b.dirtySet)
		b.mu.Unlock()

		for _, element := range dirty {
			if mountable, ok := element.(interface{ isMounted() bool }); ok && !mountable.isMounted() {
				b.release(element)
				continue
			}
			element.RebuildIfNeeded()
			b.release(element)
		}
	}
}
