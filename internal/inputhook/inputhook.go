// Package inputhook owns the process-wide low-level input hook. The OS hook
// can only be opened once per process, so hotkey dispatch and the recorder
// both subscribe here instead of opening their own.
package inputhook

import (
	"sync"
	"time"

	"github.com/go-vgo/robotgo"
	hook "github.com/robotn/gohook"
	"go.uber.org/zap"
)

// EventKind classifies a hook event after translation.
type EventKind int

const (
	KeyDown EventKind = iota
	KeyUp
	MouseDown
)

// Event is one translated low-level input event.
type Event struct {
	Kind   EventKind
	Key    string // canonical key name for key events
	Char   rune   // printable character, if any
	Button string // left, right, center for mouse events
	X, Y   int    // pointer location at press time
	At     time.Time
}

// Source is the subscription surface consumed by hotkey dispatch and the
// recorder; tests substitute their own.
type Source interface {
	Subscribe(buffer int) (<-chan Event, func())
}

// Tap runs the hook loop and fans events out to subscribers. Slow
// subscribers drop events rather than stall the OS-level hook.
type Tap struct {
	log *zap.SugaredLogger

	mu      sync.Mutex
	subs    map[int]chan Event
	nextID  int
	started bool
	stop    chan struct{}
}

// NewTap returns an unstarted tap.
func NewTap(log *zap.SugaredLogger) *Tap {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Tap{log: log, subs: make(map[int]chan Event)}
}

var _ Source = (*Tap)(nil)

// Start opens the OS hook and begins fanning out events. Hook failure is
// non-fatal: the loop ends, a single warning is logged, and subscribers
// simply receive nothing more.
func (t *Tap) Start() {
	t.mu.Lock()
	if t.started {
		t.mu.Unlock()
		return
	}
	t.started = true
	t.stop = make(chan struct{})
	stop := t.stop
	t.mu.Unlock()

	go t.loop(stop)
}

// Stop closes the OS hook and ends fan-out.
func (t *Tap) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.started {
		return
	}
	t.started = false
	close(t.stop)
}

// Subscribe returns a channel of translated events and a cancel func.
func (t *Tap) Subscribe(buffer int) (<-chan Event, func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextID
	t.nextID++
	ch := make(chan Event, buffer)
	t.subs[id] = ch
	cancel := func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if c, ok := t.subs[id]; ok {
			delete(t.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

func (t *Tap) loop(stop chan struct{}) {
	evChan := hook.Start()
	defer hook.End()

	for {
		select {
		case raw, ok := <-evChan:
			if !ok {
				// Hook lost, typically missing OS permission. Degrade to
				// inert rather than crash; warn once.
				t.log.Warnw("input hook unavailable; hotkeys and recording are inert")
				return
			}
			if ev, ok := translate(raw); ok {
				t.publish(ev)
			}
		case <-stop:
			return
		}
	}
}

func (t *Tap) publish(ev Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, ch := range t.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func translate(raw hook.Event) (Event, bool) {
	switch raw.Kind {
	case hook.KeyDown, hook.KeyHold:
		key, char := keyName(raw)
		if key == "" {
			return Event{}, false
		}
		return Event{Kind: KeyDown, Key: key, Char: char, At: time.Now()}, true
	case hook.KeyUp:
		key, char := keyName(raw)
		if key == "" {
			return Event{}, false
		}
		return Event{Kind: KeyUp, Key: key, Char: char, At: time.Now()}, true
	case hook.MouseDown:
		x, y := robotgo.Location()
		return Event{Kind: MouseDown, Button: buttonName(raw.Button), X: x, Y: y, At: time.Now()}, true
	}
	return Event{}, false
}

func buttonName(b uint16) string {
	switch b {
	case 2:
		return "right"
	case 3:
		return "center"
	default:
		return "left"
	}
}
