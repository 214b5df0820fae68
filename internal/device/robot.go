package device

import (
	"os"
	"os/exec"
	"runtime"

	"github.com/atotto/clipboard"
	"github.com/cockroachdb/errors"
	"github.com/go-vgo/robotgo"

	"github.com/Ardjun6/DeskPilot/pkg/keys"
)

// Robot is the live Controller backed by robotgo and the system clipboard.
type Robot struct{}

// NewRobot returns the process-wide live input controller.
func NewRobot() *Robot { return &Robot{} }

var _ Controller = (*Robot)(nil)

func (r *Robot) Location() (int, int) {
	return robotgo.Location()
}

func (r *Robot) Move(x, y int) error {
	robotgo.Move(x, y)
	return nil
}

func (r *Robot) MoveRelative(dx, dy int) error {
	x, y := robotgo.Location()
	robotgo.Move(x+dx, y+dy)
	return nil
}

func (r *Robot) Click(button string, double bool) error {
	if button == "" {
		button = "left"
	}
	robotgo.Click(button, double)
	return nil
}

func (r *Robot) TypeText(text string) error {
	robotgo.TypeStr(text)
	return nil
}

func (r *Robot) Tap(key string, held ...string) error {
	k, err := keys.NormalizeKey(key)
	if err != nil {
		return err
	}
	rest := make([]interface{}, 0, len(held))
	for _, h := range held {
		nh, err := keys.NormalizeKey(h)
		if err != nil {
			return err
		}
		// robotgo spells two modifiers differently from the canonical form.
		switch nh {
		case "ctrl":
			nh = "control"
		case "win":
			nh = "cmd"
		}
		rest = append(rest, nh)
	}
	if err := robotgo.KeyTap(k, rest...); err != nil {
		return errors.Wrapf(err, "key tap %q", key)
	}
	return nil
}

func (r *Robot) ReadText() (string, error) {
	if clipboard.Unsupported {
		return "", errors.Wrap(ErrUnavailable, "clipboard")
	}
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", errors.Wrap(ErrUnavailable, err.Error())
	}
	return text, nil
}

func (r *Robot) WriteText(text string) error {
	if clipboard.Unsupported {
		return errors.Wrap(ErrUnavailable, "clipboard")
	}
	if err := clipboard.WriteAll(text); err != nil {
		return errors.Wrap(ErrUnavailable, err.Error())
	}
	return nil
}

func (r *Robot) OpenApp(path string) error {
	if _, err := os.Stat(path); err != nil {
		return errors.Wrapf(err, "app path %q", path)
	}
	return startDetached(launchCommand(path))
}

func (r *Robot) OpenURL(url string) error {
	return startDetached(launchCommand(url))
}

func (r *Robot) RunCommand(command string) error {
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.Command("cmd", "/c", command)
	} else {
		cmd = exec.Command("sh", "-c", command)
	}
	return startDetached(cmd)
}

// Size reports the virtual screen extent: the union of all attached displays
// reaching right and down from the primary origin. Displays placed left of or
// above the origin have negative coordinates and are not click targets.
func (r *Robot) Size() (int, int) {
	w, h := robotgo.GetScreenSize()
	for i := 0; i < robotgo.DisplaysNum(); i++ {
		x, y, dw, dh := robotgo.GetDisplayBounds(i)
		if x+dw > w {
			w = x + dw
		}
		if y+dh > h {
			h = y + dh
		}
	}
	return w, h
}

// launchCommand builds the per-OS "open this target with its default
// handler" invocation.
func launchCommand(target string) *exec.Cmd {
	switch runtime.GOOS {
	case "windows":
		// start treats the first quoted argument as a window title.
		return exec.Command("cmd", "/c", "start", "", target)
	case "darwin":
		return exec.Command("open", target)
	default:
		return exec.Command("xdg-open", target)
	}
}

// startDetached launches without waiting: OpenApp and OpenUrl effects are
// fire-and-forget, the engine never waits for the target to respond.
func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return errors.Wrap(err, "launch")
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
