package tactus

import (
	"reflect"
	"unsafe"
)

// Filter2 iterates over all entities that have both component T1 and T2.
type Filter2[T1, T2 any] struct {
	curBase1     unsafe.Pointer
	curBase2     unsafe.Pointer
	curEntityIDs []Entity
	filterCache
	curMatchIdx int
	curIdx      int
	size1       uintptr
	size2       uintptr
	curArchSize int
	curEnt      Entity
	id1         uint8
	id2         uint8
}

// NewFilter2 creates a filter over all entities possessing at least the
// components T1 and T2.
func NewFilter2[T1, T2 any](w *World) *Filter2[T1, T2] {
	id1 := w.getCompTypeID(reflect.TypeFor[T1]())
	id2 := w.getCompTypeID(reflect.TypeFor[T2]())
	var m bitmask256
	m.set(id1)
	m.set(id2)
	f := &Filter2[T1, T2]{
		filterCache: newFilterCache(w, m),
		id1:         id1,
		id2:         id2,
	}
	f.size1 = w.compIDToSize[id1]
	f.size2 = w.compIDToSize[id2]
	f.Reset()
	return f
}

// Reset rewinds the iterator to the beginning, picking up any archetypes
// created since the last iteration.
func (f *Filter2[T1, T2]) Reset() {
	if f.stale() {
		f.refresh()
	}
	f.curMatchIdx = 0
	f.curIdx = -1
	if len(f.matching) > 0 {
		a := f.matching[0]
		f.curBase1 = a.compPointers[f.id1]
		f.curBase2 = a.compPointers[f.id2]
		f.curEntityIDs = a.entityIDs
		f.curArchSize = a.size
	} else {
		f.curArchSize = 0
	}
}

// Next advances to the next matching entity, returning false when the
// iteration is complete. It must be called before Entity or Get.
func (f *Filter2[T1, T2]) Next() bool {
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
		f.curBase1 = a.compPointers[f.id1]
		f.curBase2 = a.compPointers[f.id2]
		f.curEntityIDs = a.entityIDs
		f.curArchSize = a.size
		f.curIdx = 0
		f.curEnt = f.curEntityIDs[0]
		return true
	}
}

// Entity returns the current entity. Only valid after Next returned true.
func (f *Filter2[T1, T2]) Entity() Entity {
	return f.curEnt
}

// Get returns pointers to the current entity's components. Only valid after
// Next returned true.
func (f *Filter2[T1, T2]) Get() (*T1, *T2) {
	p1 := unsafe.Pointer(uintptr(f.curBase1) + uintptr(f.curIdx)*f.size1)
	p2 := unsafe.Pointer(uintptr(f.curBase2) + uintptr(f.curIdx)*f.size2)
	return (*T1)(p1), (*T2)(p2)
}

// Count returns the number of matching entities without iterating.
func (f *Filter2[T1, T2]) Count() int {
	if f.stale() {
		f.refresh()
	}
	n := 0
	for _, a := range f.matching {
		n += a.size
	}
	return n
}
