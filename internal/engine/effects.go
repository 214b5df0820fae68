package engine

import (
	"context"
	"runtime"
	"time"
	"unicode"

	"github.com/cockroachdb/errors"

	"github.com/Ardjun6/DeskPilot/internal/action"
	"github.com/Ardjun6/DeskPilot/internal/device"
)

// StepContext is created once per run and passed by reference through all of
// that run's steps, so steps can exchange lightweight state without global
// mutation. It is discarded at run end.
type StepContext struct {
	Dev       device.Controller
	Started   time.Time
	Clipboard string // last clipboard snapshot taken by a step
	DryRun    bool
}

// Elapsed reports time since the run started.
func (sc *StepContext) Elapsed() time.Duration { return time.Since(sc.Started) }

type effectFunc func(ctx context.Context, sc *StepContext, s action.Step) error

// delayPoll bounds how long a cancellation can go unnoticed inside a delay.
const delayPoll = 50 * time.Millisecond

// effects maps each step variant to its effect against the live input
// surface. New variants are added here and in action's validator table.
var effects = map[action.Kind]effectFunc{
	action.KindOpenApp: func(_ context.Context, sc *StepContext, s action.Step) error {
		return sc.Dev.OpenApp(s.Path)
	},
	action.KindOpenURL: func(_ context.Context, sc *StepContext, s action.Step) error {
		return sc.Dev.OpenURL(s.URL)
	},
	action.KindDelay:   delayEffect,
	action.KindClick:   clickEffect,
	action.KindTypeText: func(_ context.Context, sc *StepContext, s action.Step) error {
		for _, r := range s.Text {
			if unicode.IsControl(r) && r != '\n' && r != '\t' {
				return errors.Newf("text contains unmappable character %q; use a paste step instead", r)
			}
		}
		return sc.Dev.TypeText(s.Text)
	},
	action.KindHotkey: func(_ context.Context, sc *StepContext, s action.Step) error {
		key, mods, err := splitChordKeys(s.Keys)
		if err != nil {
			return err
		}
		return sc.Dev.Tap(key, mods...)
	},
	action.KindPaste: pasteEffect,
	action.KindSetClipboard: func(_ context.Context, sc *StepContext, s action.Step) error {
		if err := sc.Dev.WriteText(s.Text); err != nil {
			return err
		}
		sc.Clipboard = s.Text
		return nil
	},
	action.KindRunCommand: func(_ context.Context, sc *StepContext, s action.Step) error {
		return sc.Dev.RunCommand(s.Command)
	},
}

func delayEffect(ctx context.Context, _ *StepContext, s action.Step) error {
	remaining := time.Duration(s.Seconds * float64(time.Second))
	deadline := time.Now().Add(remaining)
	ticker := time.NewTicker(delayPoll)
	defer ticker.Stop()
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

func clickEffect(_ context.Context, sc *StepContext, s action.Step) error {
	w, h := sc.Dev.Size()
	if s.X < 0 || s.Y < 0 || s.X >= w || s.Y >= h {
		return errors.Newf("click target (%d, %d) outside screen bounds %dx%d", s.X, s.Y, w, h)
	}
	if err := sc.Dev.Move(s.X, s.Y); err != nil {
		return err
	}
	return sc.Dev.Click(s.Button, false)
}

func pasteEffect(_ context.Context, sc *StepContext, _ action.Step) error {
	text, err := sc.Dev.ReadText()
	if err != nil {
		return err
	}
	sc.Clipboard = text
	if runtime.GOOS == "darwin" {
		return sc.Dev.Tap("v", "win")
	}
	return sc.Dev.Tap("v", "ctrl")
}

// splitChordKeys orders a canonical key list for the device tap: the last
// non-modifier key is primary, and everything else, modifiers and plain keys
// alike, is held through the tap's variadic arguments so no key of the chord
// is lost.
func splitChordKeys(ks []string) (string, []string, error) {
	if len(ks) == 0 {
		return "", nil, errors.New("empty key chord")
	}
	primary := ""
	held := make([]string, 0, len(ks))
	for _, k := range ks {
		switch k {
		case "ctrl", "alt", "shift", "win":
			held = append(held, k)
		default:
			if primary != "" {
				held = append(held, primary)
			}
			primary = k
		}
	}
	if primary == "" {
		// A pure modifier chord taps the last modifier as the key.
		primary = held[len(held)-1]
		held = held[:len(held)-1]
	}
	return primary, held, nil
}
