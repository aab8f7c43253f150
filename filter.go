package tactus

import (
	"reflect"
	"unsafe"
)

// filterCache tracks the archetypes matching an include mask. It refreshes
// lazily when new archetypes have been created since the last iteration.
type filterCache struct {
	world       *World
	include     bitmask256
	matching    []*archetype
	lastVersion uint32
}

func newFilterCache(w *World, include bitmask256) filterCache {
	c := filterCache{world: w, include: include}
	c.refresh()
	return c
}

func (c *filterCache) stale() bool {
	return c.lastVersion != c.world.archetypeVersion
}

func (c *filterCache) refresh() {
	c.matching = c.matching[:0]
	for _, a := range c.world.archetypes {
		if a.mask.contains(c.include) {
			c.matching = append(c.matching, a)
		}
	}
	c.lastVersion = c.world.archetypeVersion
}

// Filter provides a fast, cache-friendly iterator over all entities that
// have a specific set of components. It is the primary mechanism for
// implementing systems: the filter iterates directly over the component
// arrays of matching archetypes.
//
// Creating or removing entities invalidates an iteration in progress; call
// Reset before iterating again. Filters for two and three components
// (Filter2, Filter3) follow the same pattern.
type Filter[T any] struct {
	curBase      unsafe.Pointer
	curEntityIDs []Entity
	filterCache
	curMatchIdx int // index into matching
	curIdx      int // index into the current archetype's arrays
	compSize    uintptr
	curArchSize int
	curEnt      Entity
	compID      uint8
}

// NewFilter creates a filter over all entities possessing at least the
// component T, registering the component type on first use.
func NewFilter[T any](w *World) *Filter[T] {
	id := w.getCompTypeID(reflect.TypeFor[T]())
	var m bitmask256
	m.set(id)
	f := &Filter[T]{
		filterCache: newFilterCache(w, m),
		compID:      id,
	}
	f.compSize = w.compIDToSize[id]
	f.Reset()
	return f
}

// Reset rewinds the iterator to the beginning, picking up any archetypes
// created since the last iteration.
func (f *Filter[T]) Reset() {
	if f.stale() {
		f.refresh()
	}
	f.curMatchIdx = 0
	f.curIdx = -1
	if len(f.matching) > 0 {
		a := f.matching[0]
		f.curBase = a.compPointers[f.compID]
		f.curEntityIDs = a.entityIDs
		f.curArchSize = a.size
	} else {
		f.curArchSize = 0
	}
}

// Next advances to the next matching entity, returning false when the
// iteration is complete. It must be called before Entity or Get.
//
//	f := tactus.NewFilter[Position](world)
//	for f.Next() {
//	    pos := f.Get()
//	    // ...
//	}
func (f *Filter[T]) Next() bool {
	f.curIdx++
	if f.curIdx < f.curArchSize {
		f.curEnt = f.curEntityIDs[f.curIdx]
		return true
	}
	for {
		f.curMatchIdx++
		if f.curMatchIdx >= len(f.matching) {
			return false
		}
		a := f.matching[f.curMatchIdx]
		if a.size == 0 {
			continue
		}
		f.curBase = a.compPointers[f.compID]
		f.curEntityIDs = a.entityIDs
		f.curArchSize = a.size
		f.curIdx = 0
		f.curEnt = f.curEntityIDs[0]
		return true
	}
}

// Entity returns the current entity. Only valid after Next returned true.
func (f *Filter[T]) Entity() Entity {
	return f.curEnt
}

// Get returns a pointer to the current entity's component. Only valid after
// Next returned true.
func (f *Filter[T]) Get() *T {
	ptr := unsafe.Pointer(uintptr(f.curBase) + uintptr(f.curIdx)*f.compSize)
	return (*T)(ptr)
}

// Count returns the number of matching entities without iterating.
func (f *Filter[T]) Count() int {
	if f.stale() {
		f.refresh()
	}
	n := 0
	for _, a := range f.matching {
		n += a.size
	}
	return n
}

// RemoveEntities removes every matching entity in one batch, invalidating
// them and recycling their IDs without moving any component data. The filter
// is reset afterwards.
func (f *Filter[T]) RemoveEntities() {
	if f.stale() {
		f.refresh()
	}
	w := f.world
	for _, a := range f.matching {
		for i := range a.size {
			ent := a.entityIDs[i]
			meta := &w.metas[ent.ID]
			meta.archetypeIndex = -1
			meta.index = -1
			meta.version = 0
			w.freeIDs = append(w.freeIDs, ent.ID)
		}
		a.size = 0
	}
	f.Reset()
}
