package tactus

import (
	"reflect"
	"unsafe"
)

// Builder creates entities with a fixed, single-component archetype. Keeping
// a builder around amortizes the archetype lookup across many spawns.
type Builder[T any] struct {
	world  *World
	arch   *archetype
	compID uint8
}

// NewBuilder creates a builder for entities holding exactly one component of
// type T, registering the component type on first use.
func NewBuilder[T any](w *World) *Builder[T] {
	t := reflect.TypeFor[T]()
	id := w.getCompTypeID(t)
	var mask bitmask256
	mask.set(id)
	sp := compSpec{id: id, typ: t, size: w.compIDToSize[id]}
	arch := w.getOrCreateArchetype(mask, []compSpec{sp})
	return &Builder[T]{world: w, arch: arch, compID: id}
}

// NewEntity creates one entity with a zeroed component.
func (b *Builder[T]) NewEntity() Entity {
	return b.world.createEntity(b.arch)
}

// NewEntities creates count entities with zeroed components, growing the
// world once up front if needed.
func (b *Builder[T]) NewEntities(count int) {
	if count <= 0 {
		return
	}
	w := b.world
	if len(w.freeIDs) < count {
		w.expand(count - len(w.freeIDs))
	}
	for range count {
		w.createEntity(b.arch)
	}
}

// NewEntitiesWithValue creates count entities, each initialized with comp.
func (b *Builder[T]) NewEntitiesWithValue(count int, comp T) {
	if count <= 0 {
		return
	}
	w := b.world
	if len(w.freeIDs) < count {
		w.expand(count - len(w.freeIDs))
	}
	a := b.arch
	for range count {
		e := w.createEntity(a)
		idx := w.metas[e.ID].index
		ptr := unsafe.Pointer(uintptr(a.compPointers[b.compID]) + uintptr(idx)*a.compSizes[b.compID])
		*(*T)(ptr) = comp
	}
}

// Get returns a pointer to the entity's T component, or nil if the entity is
// dead or lacks the component.
func (b *Builder[T]) Get(e Entity) *T {
	p, _ := GetComponent[T](b.world, e)
	return p
}

// Set writes the entity's T component, adding it if missing.
func (b *Builder[T]) Set(e Entity, comp T) {
	SetComponent(b.world, e, comp)
}

// Builder2 creates entities with a fixed two-component archetype.
type Builder2[T1, T2 any] struct {
	world *World
	arch  *archetype
	id1   uint8
	id2   uint8
}

// NewBuilder2 creates a builder for entities holding components T1 and T2.
func NewBuilder2[T1, T2 any](w *World) *Builder2[T1, T2] {
	t1 := reflect.TypeFor[T1]()
	t2 := reflect.TypeFor[T2]()
	id1 := w.getCompTypeID(t1)
	id2 := w.getCompTypeID(t2)
	if id1 == id2 {
		panic("tactus: duplicate component type in builder")
	}
	var mask bitmask256
	mask.set(id1)
	mask.set(id2)
	arch := w.getOrCreateArchetype(mask, []compSpec{
		{id: id1, typ: t1, size: w.compIDToSize[id1]},
		{id: id2, typ: t2, size: w.compIDToSize[id2]},
	})
	return &Builder2[T1, T2]{world: w, arch: arch, id1: id1, id2: id2}
}

// NewEntity creates one entity with zeroed components.
func (b *Builder2[T1, T2]) NewEntity() Entity {
	return b.world.createEntity(b.arch)
}

// NewEntities creates count entities with zeroed components.
func (b *Builder2[T1, T2]) NewEntities(count int) {
	if count <= 0 {
		return
	}
	w := b.world
	if len(w.freeIDs) < count {
		w.expand(count - len(w.freeIDs))
	}
	for range count {
		w.createEntity(b.arch)
	}
}

// NewEntitiesWithValues creates count entities, each initialized with the
// given component values.
func (b *Builder2[T1, T2]) NewEntitiesWithValues(count int, c1 T1, c2 T2) {
	if count <= 0 {
		return
	}
	w := b.world
	if len(w.freeIDs) < count {
		w.expand(count - len(w.freeIDs))
	}
	a := b.arch
	for range count {
		e := w.createEntity(a)
		idx := w.metas[e.ID].index
		p1 := unsafe.Pointer(uintptr(a.compPointers[b.id1]) + uintptr(idx)*a.compSizes[b.id1])
		*(*T1)(p1) = c1
		p2 := unsafe.Pointer(uintptr(a.compPointers[b.id2]) + uintptr(idx)*a.compSizes[b.id2])
		*(*T2)(p2) = c2
	}
}

// Get returns pointers to the entity's components; both are nil if the
// entity is dead, and a single pointer is nil if that component is missing.
func (b *Builder2[T1, T2]) Get(e Entity) (*T1, *T2) {
	p1, _ := GetComponent[T1](b.world, e)
	p2, _ := GetComponent[T2](b.world, e)
	return p1, p2
}

// Set writes both components, adding either if missing.
func (b *Builder2[T1, T2]) Set(e Entity, c1 T1, c2 T2) {
	SetComponent(b.world, e, c1)
	SetComponent(b.world, e, c2)
}

// Builder3 creates entities with a fixed three-component archetype.
type Builder3[T1, T2, T3 any] struct {
	world *World
	arch  *archetype
	id1   uint8
	id2   uint8
	id3   uint8
}

// NewBuilder3 creates a builder for entities holding components T1, T2 and T3.
func NewBuilder3[T1, T2, T3 any](w *World) *Builder3[T1, T2, T3] {
	t1 := reflect.TypeFor[T1]()
	t2 := reflect.TypeFor[T2]()
	t3 := reflect.TypeFor[T3]()
	id1 := w.getCompTypeID(t1)
	id2 := w.getCompTypeID(t2)
	id3 := w.getCompTypeID(t3)
	if id1 == id2 || id1 == id3 || id2 == id3 {
		panic("tactus: duplicate component type in builder")
	}
	var mask bitmask256
	mask.set(id1)
	mask.set(id2)
	mask.set(id3)
	arch := w.getOrCreateArchetype(mask, []compSpec{
		{id: id1, typ: t1, size: w.compIDToSize[id1]},
		{id: id2, typ: t2, size: w.compIDToSize[id2]},
		{id: id3, typ: t3, size: w.compIDToSize[id3]},
	})
	return &Builder3[T1, T2, T3]{world: w, arch: arch, id1: id1, id2: id2, id3: id3}
}

// NewEntity creates one entity with zeroed components.
func (b *Builder3[T1, T2, T3]) NewEntity() Entity {
	return b.world.createEntity(b.arch)
}

// NewEntities creates count entities with zeroed components.
func (b *Builder3[T1, T2, T3]) NewEntities(count int) {
	if count <= 0 {
		return
	}
	w := b.world
	if len(w.freeIDs) < count {
		w.expand(count - len(w.freeIDs))
	}
	for range count {
		w.createEntity(b.arch)
	}
}

// NewEntitiesWithValues creates count entities, each initialized with the
// given component values.
func (b *Builder3[T1, T2, T3]) NewEntitiesWithValues(count int, c1 T1, c2 T2, c3 T3) {
	if count <= 0 {
		return
	}
	w := b.world
	if len(w.freeIDs) < count {
		w.expand(count - len(w.freeIDs))
	}
	a := b.arch
	for range count {
		e := w.createEntity(a)
		idx := w.metas[e.ID].index
		p1 := unsafe.Pointer(uintptr(a.compPointers[b.id1]) + uintptr(idx)*a.compSizes[b.id1])
		*(*T1)(p1) = c1
		p2 := unsafe.Pointer(uintptr(a.compPointers[b.id2]) + uintptr(idx)*a.compSizes[b.id2])
		*(*T2)(p2) = c2
		p3 := unsafe.Pointer(uintptr(a.compPointers[b.id3]) + uintptr(idx)*a.compSizes[b.id3])
		*(*T3)(p3) = c3
	}
}

// Get returns pointers to the entity's components, nil for any the entity
// lacks.
func (b *Builder3[T1, T2, T3]) Get(e Entity) (*T1, *T2, *T3) {
	p1, _ := GetComponent[T1](b.world, e)
	p2, _ := GetComponent[T2](b.world, e)
	p3, _ := GetComponent[T3](b.world, e)
	return p1, p2, p3
}

// Set writes all three components, adding any that are missing.
func (b *Builder3[T1, T2, T3]) Set(e Entity, c1 T1, c2 T2, c3 T3) {
	SetComponent(b.world, e, c1)
	SetComponent(b.world, e, c2)
	SetComponent(b.world, e, c3)
}
