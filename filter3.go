package tactus

import (
	"reflect"
	"unsafe"
)

// Filter3 iterates over all entities that have components T1, T2 and T3.
type Filter3[T1, T2, T3 any] struct {
	curBase1     unsafe.Pointer
	curBase2     unsafe.Pointer
	curBase3     unsafe.Pointer
	curEntityIDs []Entity
	filterCache
	curMatchIdx int
	curIdx      int
	size1       uintptr
	size2       uintptr
	size3       uintptr
	curArchSize int
	curEnt      Entity
	id1         uint8
	id2         uint8
	id3         uint8
}

// NewFilter3 creates a filter over all entities possessing at least the
// components T1, T2 and T3.
func NewFilter3[T1, T2, T3 any](w *World) *Filter3[T1, T2, T3] {
	id1 := w.getCompTypeID(reflect.TypeFor[T1]())
	id2 := w.getCompTypeID(reflect.TypeFor[T2]())
	id3 := w.getCompTypeID(reflect.TypeFor[T3]())
	var m bitmask256
	m.set(id1)
	m.set(id2)
	m.set(id3)
	f := &Filter3[T1, T2, T3]{
		filterCache: newFilterCache(w, m),
		id1:         id1,
		id2:         id2,
		id3:         id3,
	}
	f.size1 = w.compIDToSize[id1]
	f.size2 = w.compIDToSize[id2]
	f.size3 = w.compIDToSize[id3]
	f.Reset()
	return f
}

// Reset rewinds the iterator to the beginning, picking up any archetypes
// created since the last iteration.
func (f *Filter3[T1, T2, T3]) Reset() {
	if f.stale() {
		f.refresh()
	}
	f.curMatchIdx = 0
	f.curIdx = -1
	if len(f.matching) > 0 {
		a := f.matching[0]
		f.curBase1 = a.compPointers[f.id1]
		f.curBase2 = a.compPointers[f.id2]
		f.curBase3 = a.compPointers[f.id3]
		f.curEntityIDs = a.entityIDs
		f.curArchSize = a.size
	} else {
		f.curArchSize = 0
	}
}

// Next advances to the next matching entity, returning false when the
// iteration is complete. It must be called before Entity or Get.
func (f *Filter3[T1, T2, T3]) Next() bool {
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
		f.curBase3 = a.compPointers[f.id3]
		f.curEntityIDs = a.entityIDs
		f.curArchSize = a.size
		f.curIdx = 0
		f.curEnt = f.curEntityIDs[0]
		return true
	}
}

// Entity returns the current entity. Only valid after Next returned true.
func (f *Filter3[T1, T2, T3]) Entity() Entity {
	return f.curEnt
}

// Get returns pointers to the current entity's components. Only valid after
// Next returned true.
func (f *Filter3[T1, T2, T3]) Get() (*T1, *T2, *T3) {
	p1 := unsafe.Pointer(uintptr(f.curBase1) + uintptr(f.curIdx)*f.size1)
	p2 := unsafe.Pointer(uintptr(f.curBase2) + uintptr(f.curIdx)*f.size2)
	p3 := unsafe.Pointer(uintptr(f.curBase3) + uintptr(f.curIdx)*f.size3)
	return (*T1)(p1), (*T2)(p2), (*T3)(p3)
}

// Count returns the number of matching entities without iterating.
func (f *Filter3[T1, T2, T3]) Count() int {
	if f.stale() {
		f.refresh()
	}
	n := 0
	for _, a := range f.matching {
		n += a.size
	}
	return n
}
