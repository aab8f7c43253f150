package tactus

import "reflect"

// Access declares that a system reads or writes one component or resource
// type, or the world's structure via the WorldStructure marker. Parallel
// schedules use these declarations to batch systems that cannot conflict;
// sequential schedules ignore them.
type Access struct {
	typ   reflect.Type
	write bool
}

// WorldStructure is the access marker for structural world mutation:
// creating or removing entities, adding or removing components, and
// anything else that moves entities between archetypes or grows storage.
// Component and resource declarations cannot express those, so a parallel
// system doing structural work must declare Writes[WorldStructure]().
// A structural writer conflicts with every other system and runs in a
// batch of its own, keeping insertion order. Reads[WorldStructure]() fits
// observers of structure such as IsValid or Alive callers: they batch
// freely with component systems but never with a structural writer.
type WorldStructure struct{}

var worldStructureType = reflect.TypeFor[WorldStructure]()

// Reads declares read access to values of type T.
func Reads[T any]() Access {
	return Access{typ: reflect.TypeFor[T]()}
}

// Writes declares write access to values of type T.
func Writes[T any]() Access {
	return Access{typ: reflect.TypeFor[T](), write: true}
}

// SystemFunc is the body of a system. Returning a non-nil error aborts the
// rest of the system's schedule for this run.
type SystemFunc func(w *World) error

// Condition gates a system's execution for a single run.
type Condition func(w *World) bool

// System is a named unit of work added to schedules. A system without
// access declarations is exclusive: it may touch anything in the world, and
// in exchange can only live in sequential schedules.
type System struct {
	fn     SystemFunc
	cond   Condition
	access []Access
	name   string
}

// NewSystem wraps fn as a system. The name appears in errors and is
// otherwise uninterpreted. The access list declares every component and
// resource type the system or its conditions touch, plus
// Writes[WorldStructure]() if fn creates or removes entities or
// components; declarations are required only for systems added to
// parallel schedules.
func NewSystem(name string, fn SystemFunc, access ...Access) *System {
	return &System{name: name, fn: fn, access: access}
}

// Name returns the system's name.
func (s *System) Name() string {
	return s.name
}

// RunIf attaches a run condition, combining it with any existing condition
// using AND. It returns the system for chaining.
func (s *System) RunIf(cond Condition) *System {
	if s.cond == nil {
		s.cond = cond
		return s
	}
	prev := s.cond
	s.cond = func(w *World) bool { return prev(w) && cond(w) }
	return s
}

// run executes the system if its condition passes.
func (s *System) run(w *World) error {
	if s.cond != nil && !s.cond(w) {
		return nil
	}
	return s.fn(w)
}

// exclusive reports whether the system carries no access declarations.
func (s *System) exclusive() bool {
	return len(s.access) == 0
}

// writesWorldStructure reports whether the system declares structural
// mutation of the world.
func (s *System) writesWorldStructure() bool {
	for _, a := range s.access {
		if a.write && a.typ == worldStructureType {
			return true
		}
	}
	return false
}

// conflictsWith reports whether two systems may not run concurrently: they
// conflict when either is exclusive, when either writes the world's
// structure, or when they touch a common type and at least one of them
// writes it.
func (s *System) conflictsWith(o *System) bool {
	if s.exclusive() || o.exclusive() {
		return true
	}
	// A structural writer can reallocate any component storage mid-run.
	if s.writesWorldStructure() || o.writesWorldStructure() {
		return true
	}
	for _, a := range s.access {
		for _, b := range o.access {
			if a.typ == b.typ && (a.write || b.write) {
				return true
			}
		}
	}
	return false
}

// RunOnce returns a condition that passes only the first time it is
// evaluated. Each call returns an independent condition, so the same system
// value can be reused with a fresh one.
func RunOnce() Condition {
	ran := false
	return func(*World) bool {
		if ran {
			return false
		}
		ran = true
		return true
	}
}
