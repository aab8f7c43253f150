package tactus

import "fmt"

// State holds the current value of a registered app state S. It only
// changes through the apply system installed by RegisterState, so reads
// within a tick are stable until the next StateTransition schedule run.
type State[S comparable] struct {
	value S
}

// Get returns the current state value.
func (s *State[S]) Get() S {
	return s.value
}

// NextState holds the queued transition for S, if any. Setting it several
// times within a tick keeps only the last value.
type NextState[S comparable] struct {
	value   S
	pending bool
}

// Set queues v as the pending transition.
func (n *NextState[S]) Set(v S) {
	n.value = v
	n.pending = true
}

// Pending returns the queued value and whether one is queued.
func (n *NextState[S]) Pending() (S, bool) {
	return n.value, n.pending
}

// take returns and clears the queued value.
func (n *NextState[S]) take() (S, bool) {
	v, ok := n.value, n.pending
	var zero S
	n.value = zero
	n.pending = false
	return v, ok
}

// StateChanged is emitted on the Events[StateChanged[S]] stream whenever a
// transition actually changes the current value. Register that event type
// to receive it; without registration the transition happens silently.
type StateChanged[S comparable] struct {
	From S
	To   S
}

// OnEnter returns the label of the schedule run when state S changes to v.
// Populate it like any other schedule to run per-value setup systems.
func OnEnter[S comparable](v S) ScheduleLabel {
	return ScheduleLabel(fmt.Sprintf("OnEnter(%s=%v)", typeName[S](), v))
}

// OnExit returns the label of the schedule run when state S leaves v.
func OnExit[S comparable](v S) ScheduleLabel {
	return ScheduleLabel(fmt.Sprintf("OnExit(%s=%v)", typeName[S](), v))
}

// RegisterState installs the transition systems for state type S with the
// given initial value. Two chained systems join the StateTransition
// schedule: an enter system that runs exactly once and executes the OnEnter
// schedule for the state current at that moment, and an apply system that
// moves any pending NextState value into State on every run. A transition
// that changes the value emits StateChanged and executes the OnExit and
// OnEnter schedules; setting the current value again just consumes the
// pending slot. Registering the same S twice is a no-op, guarded by the
// presence of the State[S] resource.
func RegisterState[S comparable](a *App, initial S) {
	r := a.world.Resources()
	if ok, _ := HasResource[State[S]](r); ok {
		return
	}
	r.Add(&State[S]{value: initial})
	r.Add(&NextState[S]{})
	name := typeName[S]()
	enter := NewSystem("state:enter:"+name, func(w *World) error {
		cur, _ := GetResource[State[S]](w.Resources())
		scheds, _ := GetResource[Schedules](w.Resources())
		if cur == nil || scheds == nil {
			return nil
		}
		return scheds.Run(w, OnEnter(cur.value))
	}).RunIf(RunOnce())
	apply := NewSystem("state:apply:"+name, applyStateTransition[S])
	a.mustAddSystems(StateTransition, enter, apply)
}

// applyStateTransition consumes the pending NextState value, if present,
// and performs the transition.
func applyStateTransition[S comparable](w *World) error {
	next, _ := GetResource[NextState[S]](w.Resources())
	if next == nil {
		return nil
	}
	pending, ok := next.take()
	if !ok {
		return nil
	}
	cur, _ := GetResource[State[S]](w.Resources())
	if cur == nil || cur.value == pending {
		return nil
	}
	old := cur.value
	cur.value = pending
	if evs, _ := GetResource[Events[StateChanged[S]]](w.Resources()); evs != nil {
		evs.Send(StateChanged[S]{From: old, To: pending})
	}
	scheds, _ := GetResource[Schedules](w.Resources())
	if scheds == nil {
		return nil
	}
	// The transition itself already happened; missing or failing per-value
	// schedules are tolerated the same way the dispatcher tolerates them.
	_ = scheds.Run(w, OnExit(old))
	_ = scheds.Run(w, OnEnter(pending))
	return nil
}

// SetNextState queues v as the pending transition for S. It panics if S
// was never registered.
func SetNextState[S comparable](w *World, v S) {
	next, _ := GetResource[NextState[S]](w.Resources())
	if next == nil {
		panic("tactus: state type " + typeName[S]() + " not registered")
	}
	next.Set(v)
}

// CurrentState returns the current value of state S and whether S is
// registered.
func CurrentState[S comparable](w *World) (S, bool) {
	cur, _ := GetResource[State[S]](w.Resources())
	if cur == nil {
		var zero S
		return zero, false
	}
	return cur.value, true
}

// InState returns a condition that passes while the current value of S
// equals v.
func InState[S comparable](v S) Condition {
	return func(w *World) bool {
		cur, _ := GetResource[State[S]](w.Resources())
		return cur != nil && cur.value == v
	}
}
