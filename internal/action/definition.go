package action

import (
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/Ardjun6/DeskPilot/pkg/keys"
)

// Definition is a named, hotkey-bindable ordered sequence of steps. It is
// created and edited by the configuration layer or the recorder, and
// read-only to the execution engine.
type Definition struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Hotkey      string   `json:"hotkey,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Favorite    bool     `json:"favorite,omitempty"`
	Enabled     bool     `json:"enabled"`
	Steps       []Step   `json:"steps"`
}

// NewDefinition builds an enabled definition with a fresh id.
func NewDefinition(name string, steps []Step) Definition {
	return Definition{
		ID:      uuid.NewString(),
		Name:    name,
		Enabled: true,
		Steps:   steps,
	}
}

// Validate checks that the definition is runnable: non-empty id and steps,
// every step well-formed, and the hotkey (if any) a parsable chord.
func (d Definition) Validate() error {
	if d.ID == "" {
		return errors.New("action id must not be empty")
	}
	if len(d.Steps) == 0 {
		return errors.Newf("action %q has no steps", d.ID)
	}
	for i, s := range d.Steps {
		if err := s.Validate(); err != nil {
			return errors.Wrapf(err, "action %q step %d", d.ID, i+1)
		}
	}
	if d.Hotkey != "" {
		if _, err := keys.NormalizeChord(d.Hotkey); err != nil {
			return errors.Wrapf(err, "action %q", d.ID)
		}
	}
	return nil
}

// ValidateSet checks cross-definition invariants: unique ids and unique
// hotkeys across enabled definitions.
func ValidateSet(defs []Definition) error {
	ids := make(map[string]bool, len(defs))
	chords := make(map[string]string, len(defs))
	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return err
		}
		if ids[d.ID] {
			return errors.Newf("duplicate action id %q", d.ID)
		}
		ids[d.ID] = true

		if d.Hotkey == "" || !d.Enabled {
			continue
		}
		chord, err := keys.NormalizeChord(d.Hotkey)
		if err != nil {
			return errors.Wrapf(err, "action %q", d.ID)
		}
		if other, taken := chords[chord]; taken {
			return errors.Newf("hotkey %q bound to both %q and %q", chord, other, d.ID)
		}
		chords[chord] = d.ID
	}
	return nil
}
