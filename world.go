// Package tactus implements a deterministic, tick-driven schedule
// orchestration layer on top of a small archetype-based entity component
// store.
//
// Features:
// - Named schedules holding ordered systems, run by label each tick.
// - Host-driven dispatch: ProcessTick and PhysicsTick with elapsed seconds.
// - Double-buffered typed event streams with explicit clear requests.
// - Registered app states with enter schedules and change events.
// - Archetype component storage with zero-allocation iteration.
package tactus

import (
	"reflect"
	"unsafe"
)

// MaxComponentTypes defines the maximum number of unique component types that
// can be registered in a World. This value is fixed at 256.
const MaxComponentTypes = 256

// Entity represents a unique identifier for an object in the World. It
// combines a 32-bit ID with a 32-bit version to ensure that recycled IDs are
// not confused with new entities.
type Entity struct {
	// ID is the unique, recyclable identifier for the entity.
	ID uint32
	// Version is a generation counter to protect against stale entity
	// references. It is incremented each time an entity ID is reused.
	Version uint32
}

// entityMeta holds the internal location and state of an entity.
type entityMeta struct {
	archetypeIndex int    // index in World.archetypes
	index          int    // position inside the archetype's arrays
	version        uint32 // current version, 0 if the entity is dead
}

// compSpec bundles a component type's ID and reflect.Type.
type compSpec struct {
	typ  reflect.Type
	size uintptr
	id   uint8
}

// archetype holds storage for one unique component-set mask. Component data
// is stored in flat arrays of length World.capacity, one per component type.
type archetype struct {
	compPointers [MaxComponentTypes]unsafe.Pointer
	entityIDs    []Entity
	compOrder    []uint8 // list of component IDs in this arch
	compSizes    [MaxComponentTypes]uintptr
	mask         bitmask256 // which component bits this arch uses
	index        int        // position in world.archetypes
	size         int        // current entity count
}

// World owns all entities, component storage and resources. It is not safe
// for concurrent mutation; schedules serialize access to it.
type World struct {
	resources        Resources
	compIDToType     [MaxComponentTypes]reflect.Type
	compIDToSize     [MaxComponentTypes]uintptr
	maskToArcIndex   map[bitmask256]int // lookup mask -> archetype index
	compTypeMap      map[reflect.Type]uint8
	freeIDs          []uint32     // stack of recycled entity IDs
	metas            []entityMeta // indexed by entity ID
	archetypes       []*archetype
	capacity         int
	nextEntityVer    uint32
	archetypeVersion uint32 // incremented when a new archetype is created
	nextCompTypeID   uint16
}

// NewWorld creates and initializes a new World with a specified initial
// capacity for entities. Storage grows automatically when the capacity is
// exhausted, so the capacity is a sizing hint rather than a hard limit.
func NewWorld(initialCapacity int) *World {
	w := &World{
		capacity:       initialCapacity,
		freeIDs:        make([]uint32, initialCapacity),
		metas:          make([]entityMeta, initialCapacity),
		archetypes:     make([]*archetype, 0, 16),
		maskToArcIndex: make(map[bitmask256]int),
		compTypeMap:    make(map[reflect.Type]uint8, 16),
		nextEntityVer:  1,
	}
	for i := range w.freeIDs {
		// fill freeIDs with [cap-1 .. 0] so low IDs are handed out first
		w.freeIDs[i] = uint32(initialCapacity - 1 - i)
	}
	for i := range w.metas {
		w.metas[i].archetypeIndex = -1
		w.metas[i].index = -1
	}
	return w
}

// Resources returns the world's resource container, a typed store for global
// singletons such as delta times, event streams and state slots.
func (w *World) Resources() *Resources {
	return &w.resources
}

// register or fetch a component type ID for t.
func (w *World) getCompTypeID(t reflect.Type) uint8 {
	if id, ok := w.compTypeMap[t]; ok {
		return id
	}
	if w.nextCompTypeID >= MaxComponentTypes {
		panic("tactus: too many component types")
	}
	id := uint8(w.nextCompTypeID)
	w.compTypeMap[t] = id
	w.compIDToType[id] = t
	w.compIDToSize[id] = t.Size()
	w.nextCompTypeID++
	return id
}

// getOrCreateArchetype returns the archetype for the given mask, allocating
// component storage arrays of the current capacity if it does not exist yet.
func (w *World) getOrCreateArchetype(mask bitmask256, specs []compSpec) *archetype {
	if idx, ok := w.maskToArcIndex[mask]; ok {
		return w.archetypes[idx]
	}
	a := &archetype{
		index:     len(w.archetypes),
		mask:      mask,
		entityIDs: make([]Entity, w.capacity),
	}
	for _, sp := range specs {
		slice := reflect.MakeSlice(reflect.SliceOf(sp.typ), w.capacity, w.capacity)
		a.compPointers[sp.id] = slice.UnsafePointer()
		a.compSizes[sp.id] = sp.size
		a.compOrder = append(a.compOrder, sp.id)
	}
	w.archetypes = append(w.archetypes, a)
	w.maskToArcIndex[mask] = a.index
	w.archetypeVersion++
	return a
}

// createEntity places a fresh entity into the given archetype, growing the
// world if no free IDs remain. Component slots are zeroed because flat
// storage reuses slots of removed entities.
func (w *World) createEntity(a *archetype) Entity {
	if len(w.freeIDs) == 0 {
		w.expand(1)
	}
	last := len(w.freeIDs) - 1
	id := w.freeIDs[last]
	w.freeIDs = w.freeIDs[:last]
	meta := &w.metas[id]
	meta.archetypeIndex = a.index
	meta.index = a.size
	meta.version = w.nextEntityVer
	ent := Entity{ID: id, Version: meta.version}
	a.entityIDs[a.size] = ent
	for _, cid := range a.compOrder {
		p := unsafe.Pointer(uintptr(a.compPointers[cid]) + uintptr(a.size)*a.compSizes[cid])
		memClear(p, a.compSizes[cid])
	}
	a.size++
	w.nextEntityVer++
	return ent
}

// expand grows the world so that at least minFree entity slots are available.
// Every archetype's storage arrays are reallocated at the new capacity.
func (w *World) expand(minFree int) {
	newCap := max(2*w.capacity, w.capacity+minFree)
	metas := make([]entityMeta, newCap)
	copy(metas, w.metas)
	for i := w.capacity; i < newCap; i++ {
		metas[i].archetypeIndex = -1
		metas[i].index = -1
	}
	w.metas = metas
	for i := newCap - 1; i >= w.capacity; i-- {
		w.freeIDs = append(w.freeIDs, uint32(i))
	}
	for _, a := range w.archetypes {
		ids := make([]Entity, newCap)
		copy(ids, a.entityIDs[:a.size])
		a.entityIDs = ids
		for _, cid := range a.compOrder {
			t := w.compIDToType[cid]
			slice := reflect.MakeSlice(reflect.SliceOf(t), newCap, newCap)
			ptr := slice.UnsafePointer()
			memCopy(ptr, a.compPointers[cid], uintptr(a.size)*a.compSizes[cid])
			a.compPointers[cid] = ptr
		}
	}
	w.capacity = newCap
}

// RemoveEntity deletes e from its archetype, swapping the last element into
// its slot. Stale or already removed entities are ignored.
func (w *World) RemoveEntity(e Entity) {
	if int(e.ID) >= len(w.metas) {
		return
	}
	meta := &w.metas[e.ID]
	if meta.version == 0 || meta.version != e.Version {
		return
	}
	a := w.archetypes[meta.archetypeIndex]
	w.removeFromArchetype(a, meta)
	w.freeIDs = append(w.freeIDs, e.ID)
	meta.archetypeIndex = -1
	meta.index = -1
	meta.version = 0
}

// removeFromArchetype removes the entity described by meta from a without
// freeing its ID or invalidating its version.
func (w *World) removeFromArchetype(a *archetype, meta *entityMeta) {
	idx := meta.index
	lastIdx := a.size - 1
	if idx < lastIdx {
		lastEnt := a.entityIDs[lastIdx]
		a.entityIDs[idx] = lastEnt
		for _, id := range a.compOrder {
			src := unsafe.Pointer(uintptr(a.compPointers[id]) + uintptr(lastIdx)*a.compSizes[id])
			dst := unsafe.Pointer(uintptr(a.compPointers[id]) + uintptr(idx)*a.compSizes[id])
			memCopy(dst, src, a.compSizes[id])
		}
		w.metas[lastEnt.ID].index = idx
	}
	a.size--
}

// IsValid checks if the entity is currently alive. An entity is valid if its
// ID is within bounds and its version matches the world's current version for
// that ID, which protects against stale references to recycled IDs.
func (w *World) IsValid(e Entity) bool {
	if int(e.ID) >= len(w.metas) {
		return false
	}
	meta := w.metas[e.ID]
	return meta.version != 0 && meta.version == e.Version
}

// Alive returns the number of live entities.
func (w *World) Alive() int {
	return w.capacity - len(w.freeIDs)
}

// ClearEntities removes all entities, recycling their IDs and resetting
// archetype sizes. Storage stays allocated, so this is an efficient way to
// reset the world between runs or state changes. Resources are untouched.
func (w *World) ClearEntities() {
	for i := range w.metas {
		w.metas[i].archetypeIndex = -1
		w.metas[i].index = -1
		w.metas[i].version = 0
	}
	w.freeIDs = w.freeIDs[:0]
	for i := w.capacity - 1; i >= 0; i-- {
		w.freeIDs = append(w.freeIDs, uint32(i))
	}
	for _, a := range w.archetypes {
		a.size = 0
	}
}

// memCopy copies size bytes from src to dst.
func memCopy(dst, src unsafe.Pointer, size uintptr) {
	copy(unsafe.Slice((*byte)(dst), size), unsafe.Slice((*byte)(src), size))
}

// memClear zeroes size bytes at p.
func memClear(p unsafe.Pointer, size uintptr) {
	clear(unsafe.Slice((*byte)(p), size))
}
