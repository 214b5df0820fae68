// Package hotkey maps global key chords to action run requests.
package hotkey

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/Ardjun6/DeskPilot/internal/inputhook"
	"github.com/Ardjun6/DeskPilot/pkg/keys"
)

// ErrDuplicateHotkey is returned when a chord is already bound to a
// different action.
var ErrDuplicateHotkey = errors.New("hotkey already bound")

// Registry holds chord bindings and dispatches matches from the global input
// hook. A match enqueues a run request and returns immediately; it never
// executes the action inline.
type Registry struct {
	source inputhook.Source
	submit func(actionID string) error
	log    *zap.SugaredLogger

	mu       sync.Mutex
	bindings map[string]string // canonical chord -> action id
}

// NewRegistry builds a registry reading events from source and enqueueing
// matched actions through submit.
func NewRegistry(source inputhook.Source, submit func(string) error, log *zap.SugaredLogger) *Registry {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Registry{
		source:   source,
		submit:   submit,
		log:      log,
		bindings: make(map[string]string),
	}
}

// Register binds chord to actionID. Binding the same action to the same
// chord again is a no-op; binding a chord already held by another action
// fails with ErrDuplicateHotkey and leaves existing bindings untouched.
func (r *Registry) Register(chord, actionID string) error {
	canonical, err := keys.NormalizeChord(chord)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if bound, ok := r.bindings[canonical]; ok {
		if bound == actionID {
			return nil
		}
		return errors.Wrapf(ErrDuplicateHotkey, "%q -> %q", canonical, bound)
	}
	r.bindings[canonical] = actionID
	return nil
}

// Unregister removes the binding for chord, if any.
func (r *Registry) Unregister(chord string) {
	canonical, err := keys.NormalizeChord(chord)
	if err != nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.bindings, canonical)
}

// Clear drops all bindings. Used on config reload before re-registering.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings = make(map[string]string)
}

// Bindings returns a snapshot of canonical chord -> action id.
func (r *Registry) Bindings() map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]string, len(r.bindings))
	for k, v := range r.bindings {
		out[k] = v
	}
	return out
}

func (r *Registry) match(chord string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.bindings[chord]
	return id, ok
}

// Start launches the dispatch loop for the process lifetime. It returns
// immediately; the loop stops when ctx is cancelled.
func (r *Registry) Start(ctx context.Context) {
	events, cancel := r.source.Subscribe(64)
	go func() {
		defer cancel()
		r.dispatch(ctx, events)
	}()
}

// dispatch tracks held modifiers and, on a non-modifier key press, matches
// the canonical chord against the bindings.
func (r *Registry) dispatch(ctx context.Context, events <-chan inputhook.Event) {
	held := make(map[string]bool, 4)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev.Kind {
			case inputhook.KeyDown:
				if keys.IsModifier(ev.Key) {
					held[ev.Key] = true
					continue
				}
				chord := chordFor(held, ev.Key)
				if id, bound := r.match(chord); bound {
					r.log.Debugw("hotkey matched", "chord", chord, "action_id", id)
					if err := r.submit(id); err != nil {
						r.log.Warnw("hotkey dispatch dropped", "chord", chord, "error", err)
					}
				}
			case inputhook.KeyUp:
				if keys.IsModifier(ev.Key) {
					delete(held, ev.Key)
				}
			}
		}
	}
}

func chordFor(held map[string]bool, key string) string {
	parts := make([]string, 0, len(held)+1)
	for _, m := range []string{"ctrl", "alt", "shift", "win"} {
		if held[m] {
			parts = append(parts, m)
		}
	}
	parts = append(parts, key)
	chord := parts[0]
	for _, p := range parts[1:] {
		chord += "+" + p
	}
	return chord
}
