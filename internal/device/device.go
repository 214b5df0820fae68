// Package device owns the physical input surface: synthetic pointer and
// keyboard output, the clipboard, app/URL launching, and the advisory lock
// that keeps the execution engine and the jiggler from interleaving events.
package device

import (
	"sync"

	"github.com/cockroachdb/errors"
)

// ErrUnavailable marks an input device or the clipboard as inaccessible.
// Subsystems hitting it degrade to inert with a single surfaced warning.
var ErrUnavailable = errors.New("input device unavailable")

// Pointer moves the cursor and issues clicks.
type Pointer interface {
	Location() (x, y int)
	Move(x, y int) error
	MoveRelative(dx, dy int) error
	Click(button string, double bool) error
}

// Keyboard emits synthetic keystrokes. Tap presses key while every entry of
// held, modifier or plain key, is down.
type Keyboard interface {
	TypeText(text string) error
	Tap(key string, held ...string) error
}

// Clipboard reads and writes the system clipboard as text.
type Clipboard interface {
	ReadText() (string, error)
	WriteText(text string) error
}

// Launcher starts external programs without waiting for them.
type Launcher interface {
	OpenApp(path string) error
	OpenURL(url string) error
	RunCommand(command string) error
}

// Screen reports the virtual screen bounds and carries the idle-prevention
// call used by the jiggler's invisible pattern.
type Screen interface {
	Size() (w, h int)
	PreventSleep() error
}

// Controller is the full synthetic-input surface the engine and the jiggler
// drive. Both must run their effects inside Guard.Do so their OS-visible
// event streams never interleave.
type Controller interface {
	Pointer
	Keyboard
	Clipboard
	Launcher
	Screen
}

// Guard is the single shared input-device lock. It is advisory: every
// component emitting synthetic input holds it for one step effect or one
// jiggle tick, never longer.
type Guard struct {
	mu sync.Mutex
}

// Do runs f while holding the device lock.
func (g *Guard) Do(f func() error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return f()
}
