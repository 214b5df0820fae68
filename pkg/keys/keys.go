// Package keys normalizes key and chord names shared by hotkey bindings,
// step validation, and recorded input.
package keys

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Modifier order in a canonical chord: ctrl, alt, shift, win.
var modifierRank = map[string]int{
	"ctrl":  0,
	"alt":   1,
	"shift": 2,
	"win":   3,
}

var specialKeys = map[string]bool{
	"enter": true, "tab": true, "space": true, "backspace": true, "delete": true,
	"escape": true, "up": true, "down": true, "left": true, "right": true,
	"home": true, "end": true, "pageup": true, "pagedown": true, "insert": true,
	"f1": true, "f2": true, "f3": true, "f4": true, "f5": true, "f6": true,
	"f7": true, "f8": true, "f9": true, "f10": true, "f11": true, "f12": true,
}

// NormalizeKey lowercases a key name and folds common synonyms onto the
// canonical spelling. Returns an error for names no backend can emit.
func NormalizeKey(key string) (string, error) {
	k := strings.ToLower(strings.TrimSpace(key))
	switch k {
	case "control":
		k = "ctrl"
	case "option":
		k = "alt"
	case "command", "cmd", "super", "meta":
		k = "win"
	case "return":
		k = "enter"
	case "esc":
		k = "escape"
	case "page_up":
		k = "pageup"
	case "page_down":
		k = "pagedown"
	}
	if !IsKey(k) {
		return "", errors.Newf("unknown key name: %q", key)
	}
	return k, nil
}

// IsKey reports whether k is an emittable key name: a modifier, a special
// key, or a single printable character.
func IsKey(k string) bool {
	if IsModifier(k) || specialKeys[k] {
		return true
	}
	runes := []rune(k)
	return len(runes) == 1 && runes[0] > ' '
}

// IsModifier reports whether k is a modifier key name in canonical form.
func IsModifier(k string) bool {
	_, ok := modifierRank[k]
	return ok
}

// NormalizeChord converts a chord string like "Shift+CTRL+a" into its
// canonical form "ctrl+shift+a": lower-case, synonyms folded, modifiers in
// fixed order, exactly one non-modifier key last.
func NormalizeChord(chord string) (string, error) {
	parts := strings.Split(chord, "+")
	if len(parts) == 0 || strings.TrimSpace(chord) == "" {
		return "", errors.New("empty chord")
	}

	mods := make([]string, 0, 3)
	key := ""
	for _, p := range parts {
		k, err := NormalizeKey(p)
		if err != nil {
			return "", errors.Wrapf(err, "chord %q", chord)
		}
		if IsModifier(k) {
			mods = append(mods, k)
			continue
		}
		if key != "" {
			return "", errors.Newf("chord %q has more than one non-modifier key", chord)
		}
		key = k
	}
	if key == "" {
		return "", errors.Newf("chord %q has no non-modifier key", chord)
	}

	sortModifiers(mods)
	mods = dedupe(mods)
	return strings.Join(append(mods, key), "+"), nil
}

// NormalizeKeys canonicalizes a key list for a simultaneous chord press,
// modifiers first in fixed order.
func NormalizeKeys(raw []string) ([]string, error) {
	if len(raw) == 0 {
		return nil, errors.New("empty key list")
	}
	mods := make([]string, 0, len(raw))
	rest := make([]string, 0, len(raw))
	for _, r := range raw {
		k, err := NormalizeKey(r)
		if err != nil {
			return nil, err
		}
		if IsModifier(k) {
			mods = append(mods, k)
		} else {
			rest = append(rest, k)
		}
	}
	sortModifiers(mods)
	mods = dedupe(mods)
	return append(mods, rest...), nil
}

func sortModifiers(mods []string) {
	for i := 1; i < len(mods); i++ {
		for j := i; j > 0 && modifierRank[mods[j]] < modifierRank[mods[j-1]]; j-- {
			mods[j], mods[j-1] = mods[j-1], mods[j]
		}
	}
}

func dedupe(sorted []string) []string {
	out := sorted[:0]
	for i, m := range sorted {
		if i == 0 || sorted[i-1] != m {
			out = append(out, m)
		}
	}
	return out
}
