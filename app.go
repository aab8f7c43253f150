package tactus

// ProcessDelta is the elapsed seconds of the current process tick, stored
// as a world resource and overwritten at the start of every process tick.
type ProcessDelta float64

// PhysicsDelta is the elapsed seconds of the current physics tick, stored
// as a world resource and overwritten at the start of every physics tick.
type PhysicsDelta float64

// ScheduleOrder fixes which schedules run on each tick kind and in what
// order. Labels without a registered schedule are skipped silently, so an
// order may name schedules that optional modules populate later.
type ScheduleOrder struct {
	Process []ScheduleLabel
	Physics []ScheduleLabel
}

// DefaultScheduleOrder returns the built-in pipeline. Process ticks run
// StateTransition, PreProcess and Process; physics ticks run Physics and
// PostPhysics.
func DefaultScheduleOrder() ScheduleOrder {
	return ScheduleOrder{
		Process: []ScheduleLabel{StateTransition, PreProcess, Process},
		Physics: []ScheduleLabel{Physics, PostPhysics},
	}
}

// DefaultWorldCapacity is the initial entity capacity used when
// Config.WorldCapacity is zero.
const DefaultWorldCapacity = 1024

// Config controls App construction. The zero value is usable and equal to
// DefaultConfig.
type Config struct {
	// Order overrides the tick pipeline. A zero ScheduleOrder falls back
	// to DefaultScheduleOrder.
	Order ScheduleOrder
	// WorldCapacity is the initial entity capacity hint for the world.
	WorldCapacity int
	// QuitKey is the key the built-in quit system polls, KeyEscape when
	// zero. The quit system is inert until SetHost installs an input.
	QuitKey Key
	// ParallelSchedules lists labels switched to batched parallel
	// execution up front, before any systems are added to them.
	ParallelSchedules []ScheduleLabel
	// AutoClearEvents wires a clear request into the last schedule of the
	// physics order, so event buffers turn over once per cycle after
	// consumers have had their turn. Off by default: without it events
	// accumulate until somebody requests a clear or drains the stream.
	AutoClearEvents bool
}

// DefaultConfig returns the configuration NewApp applies to zero fields.
func DefaultConfig() Config {
	return Config{
		Order:         DefaultScheduleOrder(),
		WorldCapacity: DefaultWorldCapacity,
		QuitKey:       KeyEscape,
	}
}

// App owns a world and its schedule registry and dispatches host ticks.
// Construction seeds the delta resources, the EventUpdateSignal and a quit
// system in the Process schedule. The host drives everything else through
// ProcessTick and PhysicsTick.
//
// An App is not safe for concurrent use: the host must deliver tick calls
// serially, one completing before the next begins.
type App struct {
	world   *World
	order   ScheduleOrder
	quitKey Key
}

// NewApp builds an App from cfg. Zero-value fields take the defaults
// described on Config.
func NewApp(cfg Config) *App {
	if cfg.WorldCapacity <= 0 {
		cfg.WorldCapacity = DefaultWorldCapacity
	}
	if len(cfg.Order.Process) == 0 && len(cfg.Order.Physics) == 0 {
		cfg.Order = DefaultScheduleOrder()
	}
	if cfg.QuitKey == KeyNone {
		cfg.QuitKey = KeyEscape
	}
	a := &App{
		world:   NewWorld(cfg.WorldCapacity),
		order:   cfg.Order,
		quitKey: cfg.QuitKey,
	}
	r := a.world.Resources()
	r.Add(NewSchedules())
	r.Add(new(ProcessDelta))
	r.Add(new(PhysicsDelta))
	r.Add(&EventUpdateSignal{})
	for _, label := range cfg.ParallelSchedules {
		if err := a.Schedules().SetParallel(label); err != nil {
			panic(err)
		}
	}
	quit := NewSystem("host:quit", func(w *World) error {
		in := GetInput(w)
		if in == nil || !in.IsKeyPressed(a.quitKey) {
			return nil
		}
		if q := GetQuitter(w); q != nil {
			q.Quit()
		}
		return nil
	}, Reads[inputHandle](), Reads[quitHandle]())
	a.mustAddSystems(Process, quit)
	if cfg.AutoClearEvents {
		labels := cfg.Order.Physics
		if len(labels) == 0 {
			labels = cfg.Order.Process
		}
		if len(labels) > 0 {
			a.mustAddSystems(labels[len(labels)-1], RequestEventUpdate())
		}
	}
	return a
}

// World returns the app's world.
func (a *App) World() *World {
	return a.world
}

// Order returns the tick pipeline.
func (a *App) Order() ScheduleOrder {
	return a.order
}

// Schedules returns the schedule registry. It lives in the world's
// resources, so systems can reach it with GetResource as well.
func (a *App) Schedules() *Schedules {
	s, _ := GetResource[Schedules](a.world.Resources())
	return s
}

// AddSystems appends systems to the schedule for label, creating the
// schedule if needed. It fails only when label names a parallel schedule
// and a system lacks access declarations.
func (a *App) AddSystems(label ScheduleLabel, systems ...*System) error {
	return a.Schedules().Add(label, systems...)
}

// mustAddSystems backs internal wiring; an error here is a broken
// configuration, so it panics.
func (a *App) mustAddSystems(label ScheduleLabel, systems ...*System) {
	if err := a.AddSystems(label, systems...); err != nil {
		panic(err)
	}
}

// SetParallel switches the schedule for label to batched parallel
// execution. Every system already in it must declare its access.
func (a *App) SetParallel(label ScheduleLabel) error {
	return a.Schedules().SetParallel(label)
}

// SetHost injects the host's input and termination capabilities as world
// resources, replacing any previously installed handles. Pass nil to leave
// a capability uninstalled.
func (a *App) SetHost(in Input, q Quitter) {
	r := a.world.Resources()
	if in != nil {
		InitResource[inputHandle](r).in = in
	}
	if q != nil {
		InitResource[quitHandle](r).q = q
	}
}

// ProcessTick overwrites the ProcessDelta resource with elapsed seconds,
// then runs every label of the process order strictly in sequence. An
// error or panic inside one schedule abandons that schedule's remaining
// systems but never the tick: the next label still runs.
func (a *App) ProcessTick(elapsed float64) {
	if d, _ := GetResource[ProcessDelta](a.world.Resources()); d != nil {
		*d = ProcessDelta(elapsed)
	}
	for _, label := range a.order.Process {
		a.runSchedule(label)
	}
}

// PhysicsTick is the physics counterpart of ProcessTick, overwriting
// PhysicsDelta and running the physics order.
func (a *App) PhysicsTick(elapsed float64) {
	if d, _ := GetResource[PhysicsDelta](a.world.Resources()); d != nil {
		*d = PhysicsDelta(elapsed)
	}
	for _, label := range a.order.Physics {
		a.runSchedule(label)
	}
}

// runSchedule runs one label, discarding errors and recovering panics so a
// broken schedule cannot take down the tick loop.
//
// TODO: surface the discarded errors through an optional hook. Silent
// discard keeps the simulation advancing but hides real failures.
func (a *App) runSchedule(label ScheduleLabel) {
	defer func() {
		_ = recover()
	}()
	scheds := a.Schedules()
	if scheds == nil {
		return
	}
	_ = scheds.Run(a.world, label)
}

// ProcessDeltaSeconds returns the elapsed seconds written by the most
// recent process tick, or 0 before the first tick.
func ProcessDeltaSeconds(w *World) float64 {
	d, _ := GetResource[ProcessDelta](w.Resources())
	if d == nil {
		return 0
	}
	return float64(*d)
}

// PhysicsDeltaSeconds returns the elapsed seconds written by the most
// recent physics tick, or 0 before the first tick.
func PhysicsDeltaSeconds(w *World) float64 {
	d, _ := GetResource[PhysicsDelta](w.Resources())
	if d == nil {
		return 0
	}
	return float64(*d)
}
