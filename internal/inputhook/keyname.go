package inputhook

import (
	"unicode"

	hook "github.com/robotn/gohook"
)

// Windows virtual-key codes for modifiers and navigation keys. Rawcode is
// the VK code on Windows, which is the supported capture platform.
var rawcodeNames = map[uint16]string{
	0x10: "shift", 0xA0: "shift", 0xA1: "shift",
	0x11: "ctrl", 0xA2: "ctrl", 0xA3: "ctrl",
	0x12: "alt", 0xA4: "alt", 0xA5: "alt",
	0x5B: "win", 0x5C: "win",
	0x0D: "enter",
	0x09: "tab",
	0x20: "space",
	0x08: "backspace",
	0x2E: "delete",
	0x1B: "escape",
	0x26: "up", 0x28: "down", 0x25: "left", 0x27: "right",
	0x24: "home", 0x23: "end",
	0x21: "pageup", 0x22: "pagedown",
	0x2D: "insert",
	0x70: "f1", 0x71: "f2", 0x72: "f3", 0x73: "f4",
	0x74: "f5", 0x75: "f6", 0x76: "f7", 0x77: "f8",
	0x78: "f9", 0x79: "f10", 0x7A: "f11", 0x7B: "f12",
}

// keyName resolves a hook key event into a canonical key name and, for
// printable keys, the character it produced.
func keyName(raw hook.Event) (string, rune) {
	if name, ok := rawcodeNames[raw.Rawcode]; ok {
		return name, 0
	}
	if raw.Keychar != 0 && raw.Keychar != 65535 && unicode.IsPrint(raw.Keychar) {
		return string(raw.Keychar), raw.Keychar
	}
	if s := hook.RawcodetoKeychar(raw.Rawcode); len(s) == 1 {
		r := rune(s[0])
		if unicode.IsPrint(r) {
			return s, r
		}
	}
	return "", 0
}
