// Package recorder captures live mouse and keyboard events and compacts
// them into a replayable step sequence.
package recorder

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/Ardjun6/DeskPilot/internal/action"
	"github.com/Ardjun6/DeskPilot/internal/inputhook"
	"github.com/Ardjun6/DeskPilot/pkg/keys"
)

// State of the recorder's session machine.
type State int

const (
	Idle State = iota
	Countdown
	Capturing
)

// EventKind classifies a captured raw event.
type EventKind int

const (
	MouseClick EventKind = iota
	KeyPress
	HotkeyCombo
)

// RecordedEvent is one raw capture unit. It exists only for the duration of
// a recording session and is consumed by compaction.
type RecordedEvent struct {
	Kind   EventKind
	X, Y   int
	Button string
	Key    string
	Keys   []string
	At     time.Time
}

// Config holds the recorder's tunables. The thresholds are product
// defaults, not mandated semantics.
type Config struct {
	Countdown       time.Duration // grace period before capture starts
	GapThreshold    time.Duration // inter-event gap that becomes an explicit delay
	ChordWindow     time.Duration // inter-key gap treated as a simultaneous press
	CaptureMouse    bool
	CaptureKeyboard bool
}

// DefaultConfig returns the recorder defaults.
func DefaultConfig() Config {
	return Config{
		Countdown:       3 * time.Second,
		GapThreshold:    500 * time.Millisecond,
		ChordWindow:     50 * time.Millisecond,
		CaptureMouse:    true,
		CaptureKeyboard: true,
	}
}

// Recorder owns the capture buffer; nothing else touches it while a session
// is active.
type Recorder struct {
	source inputhook.Source
	cfg    Config
	log    *zap.SugaredLogger

	mu     sync.Mutex
	state  State
	events []RecordedEvent
	stop   chan struct{}
	done   chan struct{}
}

// New builds an idle recorder reading from source.
func New(source inputhook.Source, cfg Config, log *zap.SugaredLogger) *Recorder {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Recorder{source: source, cfg: cfg, log: log}
}

// State returns the current session state.
func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Events returns a snapshot of the capture buffer for live display.
func (r *Recorder) Events() []RecordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RecordedEvent, len(r.events))
	copy(out, r.events)
	return out
}

// Start begins a session: a countdown with no capture, then capturing until
// Stop or ctx cancellation. Fails if a session is already active.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.state != Idle {
		r.mu.Unlock()
		return errors.New("recording already in progress")
	}
	r.state = Countdown
	r.events = nil
	r.stop = make(chan struct{})
	r.done = make(chan struct{})
	r.mu.Unlock()

	go r.session(ctx)
	return nil
}

// Stop ends the session and compacts the buffer into a candidate step
// sequence. The result is never persisted here; the caller decides.
func (r *Recorder) Stop() []action.Step {
	r.mu.Lock()
	if r.state == Idle {
		r.mu.Unlock()
		return nil
	}
	stop, done := r.stop, r.done
	r.mu.Unlock()

	close(stop)
	<-done

	r.mu.Lock()
	events := r.events
	r.events = nil
	r.state = Idle
	r.mu.Unlock()

	return Compact(events, r.cfg)
}

func (r *Recorder) session(ctx context.Context) {
	defer close(r.done)

	if r.cfg.Countdown > 0 {
		timer := time.NewTimer(r.cfg.Countdown)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-r.stop:
			return
		case <-ctx.Done():
			return
		}
	}

	r.mu.Lock()
	r.state = Capturing
	r.mu.Unlock()
	r.log.Infow("recording started")

	events, cancel := r.source.Subscribe(256)
	defer cancel()

	held := make(map[string]bool, 4)
	for {
		select {
		case <-r.stop:
			return
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if rec, ok := r.capture(ev, held); ok {
				r.mu.Lock()
				r.events = append(r.events, rec)
				r.mu.Unlock()
			}
		}
	}
}

// capture translates one hook event into a recorded event, tracking held
// modifiers so a modifier-held press becomes a single hotkey combo.
func (r *Recorder) capture(ev inputhook.Event, held map[string]bool) (RecordedEvent, bool) {
	switch ev.Kind {
	case inputhook.MouseDown:
		if !r.cfg.CaptureMouse {
			return RecordedEvent{}, false
		}
		return RecordedEvent{Kind: MouseClick, X: ev.X, Y: ev.Y, Button: ev.Button, At: ev.At}, true

	case inputhook.KeyDown:
		if !r.cfg.CaptureKeyboard {
			return RecordedEvent{}, false
		}
		if keys.IsModifier(ev.Key) {
			held[ev.Key] = true
			return RecordedEvent{}, false
		}
		if len(held) > 0 {
			combo := make([]string, 0, len(held)+1)
			for _, m := range []string{"ctrl", "alt", "shift", "win"} {
				if held[m] {
					combo = append(combo, m)
				}
			}
			combo = append(combo, ev.Key)
			return RecordedEvent{Kind: HotkeyCombo, Keys: combo, At: ev.At}, true
		}
		return RecordedEvent{Kind: KeyPress, Key: ev.Key, At: ev.At}, true

	case inputhook.KeyUp:
		if keys.IsModifier(ev.Key) {
			delete(held, ev.Key)
		}
	}
	return RecordedEvent{}, false
}
