package tactus

import "reflect"

// Resources manages a collection of singleton values, ensuring no duplicate
// types are present at the same time. It uses a slice for storage, a map for
// quick type to ID mapping, and a free list for ID reuse. All operations are
// O(1) with minimal allocations.
//
// Resources hold the orchestration layer's global state: delta times, event
// streams, state slots and host handles all live here.
type Resources struct {
	items   []any
	types   map[reflect.Type]int
	freeIDs []int
}

// Add adds a resource and returns its ID. Panics if a resource of the same
// type already exists. Reuses free IDs if available to avoid growing the
// slice unnecessarily.
func (r *Resources) Add(res any) int {
	if res == nil {
		panic("tactus: cannot add nil resource")
	}
	t := reflect.TypeOf(res)
	if r.types == nil {
		r.types = make(map[reflect.Type]int)
	}
	if _, ok := r.types[t]; ok {
		panic("tactus: resource of the same type already exists")
	}
	var id int
	if len(r.freeIDs) > 0 {
		id = r.freeIDs[len(r.freeIDs)-1]
		r.freeIDs = r.freeIDs[:len(r.freeIDs)-1]
		r.items[id] = res
	} else {
		r.items = append(r.items, res)
		id = len(r.items) - 1
	}
	r.types[t] = id
	return id
}

// Has checks if a resource with the given ID exists.
func (r *Resources) Has(id int) bool {
	return id >= 0 && id < len(r.items) && r.items[id] != nil
}

// Get retrieves the resource by ID, or nil if it doesn't exist.
func (r *Resources) Get(id int) any {
	if !r.Has(id) {
		return nil
	}
	return r.items[id]
}

// Remove removes the resource by ID if it exists, marking the ID as free for
// reuse.
func (r *Resources) Remove(id int) {
	if !r.Has(id) {
		return
	}
	res := r.items[id]
	t := reflect.TypeOf(res)
	delete(r.types, t)
	r.items[id] = nil
	r.freeIDs = append(r.freeIDs, id)
}

// Clear removes all resources, resetting the free list.
func (r *Resources) Clear() {
	for i := range r.items {
		r.items[i] = nil
	}
	r.items = r.items[:0]
	clear(r.types)
	r.freeIDs = r.freeIDs[:0]
}

// HasResource checks if a resource of type T exists, returning true and its
// ID, or false and -1.
func HasResource[T any](r *Resources) (bool, int) {
	t := reflect.TypeOf((*T)(nil))
	if id, ok := r.types[t]; ok {
		return true, id
	}
	return false, -1
}

// GetResource retrieves the resource of type T if it exists, returning it as
// *T and its ID, or nil and -1.
func GetResource[T any](r *Resources) (*T, int) {
	t := reflect.TypeOf((*T)(nil))
	if id, ok := r.types[t]; ok {
		res := r.items[id].(*T)
		return res, id
	}
	return nil, -1
}

// InitResource returns the resource of type T, adding a zero value first if
// none exists. Registration helpers use it so that repeated registration of
// the same type is a no-op.
func InitResource[T any](r *Resources) *T {
	if res, _ := GetResource[T](r); res != nil {
		return res
	}
	res := new(T)
	r.Add(res)
	return res
}

// RemoveResource removes the resource of type T if present, returning true
// when something was removed.
func RemoveResource[T any](r *Resources) bool {
	_, id := GetResource[T](r)
	if id < 0 {
		return false
	}
	r.Remove(id)
	return true
}
