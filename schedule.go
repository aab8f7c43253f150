package tactus

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ScheduleLabel identifies a schedule. Labels form an open set: any string
// is a valid label, and running a label with no registered schedule is a
// silent no-op.
type ScheduleLabel string

// Labels of the built-in tick pipeline. DefaultScheduleOrder runs the first
// three on every process tick and the last two on every physics tick.
const (
	StateTransition ScheduleLabel = "StateTransition"
	PreProcess      ScheduleLabel = "PreProcess"
	Process         ScheduleLabel = "Process"
	Physics         ScheduleLabel = "Physics"
	PostPhysics     ScheduleLabel = "PostPhysics"
)

// ErrUndeclaredAccess is returned when a system without access declarations
// is added to a parallel schedule.
var ErrUndeclaredAccess = errors.New("tactus: system without access declarations in parallel schedule")

// Schedule is an ordered list of systems run as a unit. Systems run in
// insertion order. A parallel schedule groups adjacent non-conflicting
// systems into batches and runs each batch on goroutines; two conflicting
// systems always land in different batches and keep their relative order.
// Systems that create or remove entities or components in a parallel
// schedule must declare Writes[WorldStructure]() so batching serializes
// them against their peers.
type Schedule struct {
	label    ScheduleLabel
	systems  []*System
	batches  [][]*System
	parallel bool
}

// NewSchedule creates an empty sequential schedule.
func NewSchedule(label ScheduleLabel) *Schedule {
	return &Schedule{label: label}
}

// Label returns the schedule's label.
func (s *Schedule) Label() ScheduleLabel {
	return s.label
}

// Len returns the number of systems in the schedule.
func (s *Schedule) Len() int {
	return len(s.systems)
}

// SetParallel switches the schedule to batched parallel execution. Every
// system already present must carry access declarations, otherwise
// ErrUndeclaredAccess is returned and the schedule stays sequential.
func (s *Schedule) SetParallel() error {
	for _, sys := range s.systems {
		if sys.exclusive() {
			return fmt.Errorf("%w: %q in %q", ErrUndeclaredAccess, sys.name, s.label)
		}
	}
	s.parallel = true
	s.rebatch()
	return nil
}

// AddSystems appends systems in order. For a parallel schedule every added
// system must declare its access; otherwise ErrUndeclaredAccess is returned
// and nothing is added.
func (s *Schedule) AddSystems(systems ...*System) error {
	if s.parallel {
		for _, sys := range systems {
			if sys.exclusive() {
				return fmt.Errorf("%w: %q in %q", ErrUndeclaredAccess, sys.name, s.label)
			}
		}
	}
	s.systems = append(s.systems, systems...)
	if s.parallel {
		s.rebatch()
	}
	return nil
}

// rebatch groups systems greedily: a system joins the last batch if it
// conflicts with none of its members, otherwise it starts a new batch.
// Joining only the last batch keeps every conflicting pair in insertion
// order across batches.
func (s *Schedule) rebatch() {
	s.batches = s.batches[:0]
	for _, sys := range s.systems {
		placed := false
		if n := len(s.batches); n > 0 {
			last := s.batches[n-1]
			ok := true
			for _, member := range last {
				if sys.conflictsWith(member) {
					ok = false
					break
				}
			}
			if ok {
				s.batches[n-1] = append(last, sys)
				placed = true
			}
		}
		if !placed {
			s.batches = append(s.batches, []*System{sys})
		}
	}
}

// Run executes the schedule's systems against w. Systems whose condition
// fails are skipped. The first system error aborts the rest of the schedule
// and is returned. In a parallel schedule the members of a batch finish
// before the error check, and a panicking batch goroutine is converted into
// an error instead of tearing down the caller.
func (s *Schedule) Run(w *World) error {
	if !s.parallel {
		for _, sys := range s.systems {
			if err := sys.run(w); err != nil {
				return fmt.Errorf("tactus: system %q in %q: %w", sys.name, s.label, err)
			}
		}
		return nil
	}
	for _, batch := range s.batches {
		if err := s.runBatch(w, batch); err != nil {
			return err
		}
	}
	return nil
}

func (s *Schedule) runBatch(w *World, batch []*System) error {
	if len(batch) == 1 {
		sys := batch[0]
		if err := sys.run(w); err != nil {
			return fmt.Errorf("tactus: system %q in %q: %w", sys.name, s.label, err)
		}
		return nil
	}
	errs := make([]error, len(batch))
	var wg sync.WaitGroup
	for i, sys := range batch {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					errs[i] = fmt.Errorf("tactus: system %q in %q panicked: %v", sys.name, s.label, r)
				}
			}()
			if err := sys.run(w); err != nil {
				errs[i] = fmt.Errorf("tactus: system %q in %q: %w", sys.name, s.label, err)
			}
		}()
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Schedules is the registry of all schedules. The App stores it as a world
// resource so systems themselves can look up, create or extend schedules.
type Schedules struct {
	byLabel map[ScheduleLabel]*Schedule
}

// NewSchedules creates an empty registry.
func NewSchedules() *Schedules {
	return &Schedules{byLabel: make(map[ScheduleLabel]*Schedule)}
}

// Get returns the schedule for label, or nil if none is registered.
func (s *Schedules) Get(label ScheduleLabel) *Schedule {
	return s.byLabel[label]
}

// GetOrCreate returns the schedule for label, creating an empty sequential
// one if absent.
func (s *Schedules) GetOrCreate(label ScheduleLabel) *Schedule {
	if sch, ok := s.byLabel[label]; ok {
		return sch
	}
	sch := NewSchedule(label)
	s.byLabel[label] = sch
	return sch
}

// Add appends systems to the schedule for label, creating it if absent.
func (s *Schedules) Add(label ScheduleLabel, systems ...*System) error {
	return s.GetOrCreate(label).AddSystems(systems...)
}

// SetParallel marks the schedule for label as parallel, creating it if
// absent.
func (s *Schedules) SetParallel(label ScheduleLabel) error {
	return s.GetOrCreate(label).SetParallel()
}

// Run executes the schedule registered for label. A label with no schedule
// is skipped silently, so tick orders can name schedules that were never
// populated.
func (s *Schedules) Run(w *World, label ScheduleLabel) error {
	sch, ok := s.byLabel[label]
	if !ok {
		return nil
	}
	return sch.Run(w)
}

// Labels returns all registered labels in sorted order.
func (s *Schedules) Labels() []ScheduleLabel {
	labels := make([]ScheduleLabel, 0, len(s.byLabel))
	for l := range s.byLabel {
		labels = append(labels, l)
	}
	slices.Sort(labels)
	return labels
}
