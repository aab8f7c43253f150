package tactus

import "reflect"

// Events is a double-buffered stream of values of type T, stored as a world
// resource. Send appends to the pending half and readers observe both
// halves, so an event stays visible through the buffer update that follows
// its send and is dropped by the one after that. Under the default wiring
// updates only happen when a clear was requested through the
// EventUpdateSignal, so unrequested events simply accumulate.
type Events[T any] struct {
	pending  []T
	previous []T
}

// Send appends an event to the stream.
func (e *Events[T]) Send(ev T) {
	e.pending = append(e.pending, ev)
}

// Len returns the number of readable events across both halves.
func (e *Events[T]) Len() int {
	return len(e.previous) + len(e.pending)
}

// IsEmpty reports whether no events are readable.
func (e *Events[T]) IsEmpty() bool {
	return e.Len() == 0
}

// Each calls fn for every readable event, oldest first, without consuming
// anything. Use it when several systems need to observe the same events.
func (e *Events[T]) Each(fn func(ev T)) {
	for i := range e.previous {
		fn(e.previous[i])
	}
	for i := range e.pending {
		fn(e.pending[i])
	}
}

// Slice returns all readable events, oldest first, in a fresh slice.
func (e *Events[T]) Slice() []T {
	out := make([]T, 0, e.Len())
	out = append(out, e.previous...)
	return append(out, e.pending...)
}

// Drain calls fn for every readable event, oldest first, then removes what
// it visited. Events sent to the stream from inside fn are not visited in
// this pass; they stay queued for the next read. A single consuming reader
// should prefer this over Each so stale events do not linger when no clear
// requests are wired.
func (e *Events[T]) Drain(fn func(ev T)) {
	prev := e.previous
	pend := e.pending
	for i := range prev {
		fn(prev[i])
	}
	for i := range pend {
		fn(pend[i])
	}
	e.previous = e.previous[:0]
	if len(e.pending) > len(pend) {
		e.pending = append(e.pending[:0], e.pending[len(pend):]...)
	} else {
		e.pending = e.pending[:0]
	}
}

// Clear drops all events immediately, bypassing the buffered turnover.
func (e *Events[T]) Clear() {
	e.previous = e.previous[:0]
	e.pending = e.pending[:0]
}

// update drops the previous half and moves pending events into it. The two
// backing buffers are swapped rather than reallocated.
func (e *Events[T]) update() {
	spare := e.previous[:0]
	e.previous = e.pending
	e.pending = spare
}

// EventUpdateSignal coordinates buffer turnover across independently
// registered systems. Producers call Request from anywhere; the first
// per-type update system to run afterwards consumes the request, so each
// request triggers exactly one turnover and never leaks into the next tick.
// While the signal resource is absent, update systems turn buffers over
// unconditionally on every run.
type EventUpdateSignal struct {
	requested bool
}

// Request marks the signal so the next update system run turns buffers
// over. Requesting several times before an update run is the same as
// requesting once.
func (s *EventUpdateSignal) Request() {
	s.requested = true
}

// consume returns the requested flag and unconditionally resets it.
func (s *EventUpdateSignal) consume() bool {
	req := s.requested
	s.requested = false
	return req
}

// RequestEventUpdate returns a system that arms the EventUpdateSignal if
// the resource is present. It clears nothing itself; it only registers
// intent for the next update run. Wire it into a late schedule such as
// PostPhysics once consumers have had their turn.
func RequestEventUpdate() *System {
	return NewSystem("events:request_update", func(w *World) error {
		if sig, _ := GetResource[EventUpdateSignal](w.Resources()); sig != nil {
			sig.Request()
		}
		return nil
	}, Writes[EventUpdateSignal]())
}

// RegisterEvent creates the Events[T] resource and installs the per-type
// update system into the PreProcess schedule. Registering the same type
// again is a no-op. The update system is skipped while the stream is empty;
// otherwise it turns the buffers over, honoring the EventUpdateSignal when
// that resource is present.
func RegisterEvent[T any](a *App) {
	r := a.world.Resources()
	if ok, _ := HasResource[Events[T]](r); ok {
		return
	}
	InitResource[Events[T]](r)
	name := "events:update:" + typeName[T]()
	update := NewSystem(name, func(w *World) error {
		evs, _ := GetResource[Events[T]](w.Resources())
		if evs == nil {
			return nil
		}
		if sig, _ := GetResource[EventUpdateSignal](w.Resources()); sig != nil {
			if !sig.consume() {
				return nil
			}
		}
		evs.update()
		return nil
	}, Writes[Events[T]](), Writes[EventUpdateSignal]())
	update.RunIf(func(w *World) bool {
		evs, _ := GetResource[Events[T]](w.Resources())
		return evs != nil && !evs.IsEmpty()
	})
	a.mustAddSystems(PreProcess, update)
}

// SendEvent appends an event to the world's Events[T] resource, creating
// the resource if the type was never registered. Events sent to an
// unregistered type have no update system and so accumulate until drained.
func SendEvent[T any](w *World, ev T) {
	InitResource[Events[T]](w.Resources()).Send(ev)
}

// typeName returns a short diagnostic name for T.
func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}
