package action

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/Ardjun6/DeskPilot/pkg/keys"
)

// Kind identifies one step variant. The set is closed: adding a variant means
// adding a Kind constant and a validator entry here plus an effect in the
// engine's dispatch table.
type Kind string

const (
	KindOpenApp      Kind = "open_app"
	KindOpenURL      Kind = "open_url"
	KindDelay        Kind = "delay"
	KindClick        Kind = "click"
	KindTypeText     Kind = "type_text"
	KindHotkey       Kind = "hotkey"
	KindPaste        Kind = "paste"
	KindSetClipboard Kind = "set_clipboard"
	KindRunCommand   Kind = "run"
)

// Step is a single typed unit of automation work. Only the fields for its
// Kind are meaningful; a Step is immutable once constructed.
type Step struct {
	Kind    Kind     `json:"type"`
	Path    string   `json:"path,omitempty"`    // open_app
	URL     string   `json:"url,omitempty"`     // open_url
	Seconds float64  `json:"seconds,omitempty"` // delay
	X       int      `json:"x,omitempty"`       // click
	Y       int      `json:"y,omitempty"`       // click
	Button  string   `json:"button,omitempty"`  // click: left, right, center
	Text    string   `json:"text,omitempty"`    // type_text, set_clipboard
	Keys    []string `json:"keys,omitempty"`    // hotkey
	Command string   `json:"command,omitempty"` // run
}

type validator func(Step) error

// validators maps each variant tag to its parameter check.
var validators = map[Kind]validator{
	KindOpenApp: func(s Step) error {
		if s.Path == "" {
			return errors.New("open_app requires a path")
		}
		return nil
	},
	KindOpenURL: func(s Step) error {
		u, err := url.Parse(s.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return errors.Newf("open_url requires a valid absolute URL, got %q", s.URL)
		}
		return nil
	},
	KindDelay: func(s Step) error {
		if s.Seconds < 0 {
			return errors.Newf("delay seconds must be >= 0, got %v", s.Seconds)
		}
		return nil
	},
	KindClick: func(s Step) error {
		switch s.Button {
		case "left", "right", "center":
			return nil
		}
		return errors.Newf("click button must be left, right or center, got %q", s.Button)
	},
	KindTypeText: func(s Step) error {
		if s.Text == "" {
			return errors.New("type_text requires text")
		}
		return nil
	},
	KindHotkey: func(s Step) error {
		if len(s.Keys) == 0 {
			return errors.New("hotkey requires at least one key")
		}
		if _, err := keys.NormalizeKeys(s.Keys); err != nil {
			return err
		}
		return nil
	},
	KindPaste: func(Step) error { return nil },
	KindSetClipboard: func(s Step) error {
		if s.Text == "" {
			return errors.New("set_clipboard requires text")
		}
		return nil
	},
	KindRunCommand: func(s Step) error {
		if strings.TrimSpace(s.Command) == "" {
			return errors.New("run requires a command")
		}
		return nil
	},
}

// Validate checks the step's parameters against its variant's rules.
func (s Step) Validate() error {
	v, ok := validators[s.Kind]
	if !ok {
		return errors.Newf("unknown step type: %q", s.Kind)
	}
	return v(s)
}

// Describe renders a short human-readable preview line for logs and dry runs.
func (s Step) Describe() string {
	switch s.Kind {
	case KindOpenApp:
		return "Open app: " + s.Path
	case KindOpenURL:
		return "Open URL: " + s.URL
	case KindDelay:
		return fmt.Sprintf("Wait %.1fs", s.Seconds)
	case KindClick:
		return fmt.Sprintf("Click %s at (%d, %d)", s.Button, s.X, s.Y)
	case KindTypeText:
		if len(s.Text) > 30 {
			return fmt.Sprintf("Type: %s... (%d chars)", s.Text[:30], len(s.Text))
		}
		return "Type: " + s.Text
	case KindHotkey:
		return "Press " + strings.Join(s.Keys, "+")
	case KindPaste:
		return "Paste clipboard"
	case KindSetClipboard:
		return "Set clipboard text"
	case KindRunCommand:
		return "Run command: " + s.Command
	}
	return string(s.Kind)
}

// NewOpenApp returns a step that launches the application at path.
func NewOpenApp(path string) Step { return Step{Kind: KindOpenApp, Path: path} }

// NewOpenURL returns a step that opens url in the default handler.
func NewOpenURL(url string) Step { return Step{Kind: KindOpenURL, URL: url} }

// NewDelay returns a step that suspends the run for the given seconds.
func NewDelay(seconds float64) Step { return Step{Kind: KindDelay, Seconds: seconds} }

// NewClick returns a left click at screen coordinates (x, y).
func NewClick(x, y int) Step { return Step{Kind: KindClick, X: x, Y: y, Button: "left"} }

// NewClickButton returns a click with an explicit button.
func NewClickButton(x, y int, button string) Step {
	return Step{Kind: KindClick, X: x, Y: y, Button: button}
}

// NewTypeText returns a step that emits keystrokes for literal text.
func NewTypeText(text string) Step { return Step{Kind: KindTypeText, Text: text} }

// NewHotkey returns a step that emits a simultaneous key chord.
func NewHotkey(ks ...string) Step { return Step{Kind: KindHotkey, Keys: ks} }

// NewPaste returns a step that emits the platform paste command.
func NewPaste() Step { return Step{Kind: KindPaste} }

// NewSetClipboard returns a step that replaces the clipboard contents.
func NewSetClipboard(text string) Step { return Step{Kind: KindSetClipboard, Text: text} }

// NewRunCommand returns a step that starts a shell command without waiting.
func NewRunCommand(command string) Step { return Step{Kind: KindRunCommand, Command: command} }
