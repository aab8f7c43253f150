// Package ebitenhost adapts a tactus.App to the Ebitengine game loop. The
// Runner implements ebiten.Game, feeding the app one variable-rate process
// tick per frame and fixed-step physics ticks from an accumulator, and
// doubles as the app's Quitter. Keyboard translates portable key codes to
// Ebitengine's.
package ebitenhost

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/tactuslab/tactus"
)

// keyMap translates portable keys to Ebitengine key codes.
var keyMap = map[tactus.Key]ebiten.Key{
	tactus.KeyEscape: ebiten.KeyEscape,
	tactus.KeyEnter:  ebiten.KeyEnter,
	tactus.KeySpace:  ebiten.KeySpace,
	tactus.KeyUp:     ebiten.KeyArrowUp,
	tactus.KeyDown:   ebiten.KeyArrowDown,
	tactus.KeyLeft:   ebiten.KeyArrowLeft,
	tactus.KeyRight:  ebiten.KeyArrowRight,
	tactus.KeyW:      ebiten.KeyW,
	tactus.KeyA:      ebiten.KeyA,
	tactus.KeyS:      ebiten.KeyS,
	tactus.KeyD:      ebiten.KeyD,
	tactus.KeyP:      ebiten.KeyP,
}

// Keyboard polls Ebitengine's global keyboard state. It implements
// tactus.Input.
type Keyboard struct{}

// IsKeyPressed reports whether the mapped key is currently held. Unmapped
// keys are never pressed.
func (Keyboard) IsKeyPressed(k tactus.Key) bool {
	ek, ok := keyMap[k]
	if !ok {
		return false
	}
	return ebiten.IsKeyPressed(ek)
}

// Config controls the runner.
type Config struct {
	// PhysicsTPS is the fixed physics rate in ticks per second, 60 when
	// zero.
	PhysicsTPS float64
	// Width and Height set the logical screen size, 640x480 when zero.
	Width  int
	Height int
	// Draw renders the world each frame. Nil leaves the screen untouched.
	Draw func(w *tactus.World, screen *ebiten.Image)
}

// maxFrameDelta caps the time fed into one frame so a stall, such as a
// window drag or a debugger pause, cannot trigger a physics catch-up
// spiral.
const maxFrameDelta = 0.25

// Runner drives an App from the Ebitengine loop. NewRunner installs the
// keyboard and the runner itself as the app's host capabilities, so after
// construction the app's quit system can end the loop.
type Runner struct {
	app         *tactus.App
	draw        func(w *tactus.World, screen *ebiten.Image)
	physicsStep float64
	accumulator float64
	last        time.Time
	width       int
	height      int
	started     bool
	quit        bool
}

// NewRunner wraps app for the Ebitengine loop.
func NewRunner(app *tactus.App, cfg Config) *Runner {
	if cfg.PhysicsTPS <= 0 {
		cfg.PhysicsTPS = 60
	}
	if cfg.Width <= 0 {
		cfg.Width = 640
	}
	if cfg.Height <= 0 {
		cfg.Height = 480
	}
	r := &Runner{
		app:         app,
		draw:        cfg.Draw,
		physicsStep: 1 / cfg.PhysicsTPS,
		width:       cfg.Width,
		height:      cfg.Height,
	}
	app.SetHost(Keyboard{}, r)
	return r
}

// Quit implements tactus.Quitter. The loop stops at the end of the current
// frame.
func (r *Runner) Quit() {
	r.quit = true
}

// Update implements ebiten.Game, advancing the app by the wall-clock time
// since the previous frame.
func (r *Runner) Update() error {
	now := time.Now()
	dt := r.physicsStep
	if r.started {
		dt = now.Sub(r.last).Seconds()
	}
	r.started = true
	r.last = now
	r.Advance(dt)
	if r.quit {
		return ebiten.Termination
	}
	return nil
}

// Advance runs as many fixed physics steps as the accumulator covers, then
// one process tick of dt seconds. Exposed for headless use and tests;
// Update calls it with real frame times.
func (r *Runner) Advance(dt float64) {
	if dt < 0 {
		dt = 0
	}
	if dt > maxFrameDelta {
		dt = maxFrameDelta
	}
	r.accumulator += dt
	for r.accumulator >= r.physicsStep {
		r.app.PhysicsTick(r.physicsStep)
		r.accumulator -= r.physicsStep
	}
	r.app.ProcessTick(dt)
}

// Draw implements ebiten.Game.
func (r *Runner) Draw(screen *ebiten.Image) {
	if r.draw != nil {
		r.draw(r.app.World(), screen)
	}
}

// Layout implements ebiten.Game.
func (r *Runner) Layout(outsideWidth, outsideHeight int) (int, int) {
	return r.width, r.height
}

// Run opens the window and blocks in the Ebitengine loop until the app
// quits or the window closes.
func (r *Runner) Run(title string) error {
	ebiten.SetWindowSize(r.width, r.height)
	ebiten.SetWindowTitle(title)
	return ebiten.RunGame(r)
}
