package tactus

import (
	"reflect"
	"unsafe"
)

// GetComponent retrieves a pointer to the component of type T for the given
// entity. It returns nil and false if the entity is dead or does not have
// the component. The pointer stays valid until the entity changes archetype
// or the world grows.
func GetComponent[T any](w *World, e Entity) (*T, bool) {
	if !w.IsValid(e) {
		return nil, false
	}
	id, ok := w.compTypeMap[reflect.TypeFor[T]()]
	if !ok {
		return nil, false
	}
	meta := w.metas[e.ID]
	a := w.archetypes[meta.archetypeIndex]
	if !a.mask.containsBit(id) {
		return nil, false
	}
	ptr := unsafe.Pointer(uintptr(a.compPointers[id]) + uintptr(meta.index)*a.compSizes[id])
	return (*T)(ptr), true
}

// HasComponent reports whether the entity is alive and has a component of
// type T.
func HasComponent[T any](w *World, e Entity) bool {
	if !w.IsValid(e) {
		return false
	}
	id, ok := w.compTypeMap[reflect.TypeFor[T]()]
	if !ok {
		return false
	}
	meta := w.metas[e.ID]
	return w.archetypes[meta.archetypeIndex].mask.containsBit(id)
}

// SetComponent sets the component data for an entity. If the entity does not
// have the component it is added first, moving the entity to a new archetype.
// It returns false if the entity is dead.
func SetComponent[T any](w *World, e Entity, comp T) bool {
	if !w.IsValid(e) {
		return false
	}
	id := w.getCompTypeID(reflect.TypeFor[T]())
	meta := &w.metas[e.ID]
	a := w.archetypes[meta.archetypeIndex]
	if a.mask.containsBit(id) {
		ptr := unsafe.Pointer(uintptr(a.compPointers[id]) + uintptr(meta.index)*a.compSizes[id])
		*(*T)(ptr) = comp
		return true
	}
	target, idx := w.moveWithAdded(e, meta, id)
	ptr := unsafe.Pointer(uintptr(target.compPointers[id]) + uintptr(idx)*target.compSizes[id])
	*(*T)(ptr) = comp
	return true
}

// AddComponent adds a zero-valued component of type T to an entity and
// returns a pointer to it. If the entity already has the component, the
// existing value is returned untouched. Returns nil and false if the entity
// is dead.
func AddComponent[T any](w *World, e Entity) (*T, bool) {
	if !w.IsValid(e) {
		return nil, false
	}
	id := w.getCompTypeID(reflect.TypeFor[T]())
	meta := &w.metas[e.ID]
	a := w.archetypes[meta.archetypeIndex]
	if a.mask.containsBit(id) {
		ptr := unsafe.Pointer(uintptr(a.compPointers[id]) + uintptr(meta.index)*a.compSizes[id])
		return (*T)(ptr), true
	}
	target, idx := w.moveWithAdded(e, meta, id)
	ptr := unsafe.Pointer(uintptr(target.compPointers[id]) + uintptr(idx)*target.compSizes[id])
	var zero T
	*(*T)(ptr) = zero
	return (*T)(ptr), true
}

// RemoveComponent removes the component of type T from an entity, moving it
// to the archetype without that component. It returns true when the entity
// is alive and no longer has the component, including when it never had it.
func RemoveComponent[T any](w *World, e Entity) bool {
	if !w.IsValid(e) {
		return false
	}
	id, ok := w.compTypeMap[reflect.TypeFor[T]()]
	if !ok {
		return true
	}
	meta := &w.metas[e.ID]
	a := w.archetypes[meta.archetypeIndex]
	if !a.mask.containsBit(id) {
		return true
	}
	w.moveWithRemoved(e, meta, id)
	return true
}

// moveWithAdded moves the entity described by meta into the archetype whose
// mask additionally contains id, copying its existing component data across.
// Returns the destination archetype and the entity's new slot.
func (w *World) moveWithAdded(e Entity, meta *entityMeta, id uint8) (*archetype, int) {
	a := w.archetypes[meta.archetypeIndex]
	newMask := a.mask
	newMask.set(id)
	var target *archetype
	if idx, ok := w.maskToArcIndex[newMask]; ok {
		target = w.archetypes[idx]
	} else {
		specs := make([]compSpec, 0, len(a.compOrder)+1)
		for _, cid := range a.compOrder {
			specs = append(specs, compSpec{id: cid, typ: w.compIDToType[cid], size: w.compIDToSize[cid]})
		}
		specs = append(specs, compSpec{id: id, typ: w.compIDToType[id], size: w.compIDToSize[id]})
		target = w.getOrCreateArchetype(newMask, specs)
	}
	newIdx := target.size
	target.entityIDs[newIdx] = e
	target.size++
	for _, cid := range a.compOrder {
		src := unsafe.Pointer(uintptr(a.compPointers[cid]) + uintptr(meta.index)*a.compSizes[cid])
		dst := unsafe.Pointer(uintptr(target.compPointers[cid]) + uintptr(newIdx)*target.compSizes[cid])
		memCopy(dst, src, a.compSizes[cid])
	}
	w.removeFromArchetype(a, meta)
	meta.archetypeIndex = target.index
	meta.index = newIdx
	return target, newIdx
}

// moveWithRemoved moves the entity described by meta into the archetype
// whose mask lacks id, dropping that component's data.
func (w *World) moveWithRemoved(e Entity, meta *entityMeta, id uint8) {
	a := w.archetypes[meta.archetypeIndex]
	newMask := a.mask
	newMask.unset(id)
	var target *archetype
	if idx, ok := w.maskToArcIndex[newMask]; ok {
		target = w.archetypes[idx]
	} else {
		specs := make([]compSpec, 0, len(a.compOrder)-1)
		for _, cid := range a.compOrder {
			if cid == id {
				continue
			}
			specs = append(specs, compSpec{id: cid, typ: w.compIDToType[cid], size: w.compIDToSize[cid]})
		}
		target = w.getOrCreateArchetype(newMask, specs)
	}
	newIdx := target.size
	target.entityIDs[newIdx] = e
	target.size++
	for _, cid := range a.compOrder {
		if cid == id {
			continue
		}
		src := unsafe.Pointer(uintptr(a.compPointers[cid]) + uintptr(meta.index)*a.compSizes[cid])
		dst := unsafe.Pointer(uintptr(target.compPointers[cid]) + uintptr(newIdx)*target.compSizes[cid])
		memCopy(dst, src, a.compSizes[cid])
	}
	w.removeFromArchetype(a, meta)
	meta.archetypeIndex = target.index
	meta.index = newIdx
}
