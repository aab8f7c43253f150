package tactus

// Key identifies a key on the host's input device, independent of any
// concrete engine's key codes. Host adapters translate these to whatever
// their engine exposes.
type Key int

// Keys understood by the built-in quit system and the ebitenhost adapter.
const (
	KeyNone Key = iota
	KeyEscape
	KeyEnter
	KeySpace
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyW
	KeyA
	KeyS
	KeyD
	KeyP
)

// Input is the host's query-only input polling capability. Implementations
// must be cheap enough to call every tick.
type Input interface {
	IsKeyPressed(k Key) bool
}

// Quitter is the host's termination-request capability. Quit requests
// shutdown; the host decides when its loop actually stops.
type Quitter interface {
	Quit()
}

// inputHandle and quitHandle wrap the injected host capabilities so they
// can live in the resource container, which keys entries by concrete type.
// The wrapped references are borrowed from the host, never owned.
type inputHandle struct{ in Input }

type quitHandle struct{ q Quitter }

// GetInput returns the injected host input, or nil before App.SetHost was
// called. Systems polling input should treat nil as no keys pressed.
func GetInput(w *World) Input {
	h, _ := GetResource[inputHandle](w.Resources())
	if h == nil {
		return nil
	}
	return h.in
}

// GetQuitter returns the injected host quitter, or nil.
func GetQuitter(w *World) Quitter {
	h, _ := GetResource[quitHandle](w.Resources())
	if h == nil {
		return nil
	}
	return h.q
}
