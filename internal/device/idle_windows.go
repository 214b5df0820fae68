//go:build windows

package device

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/sys/windows"
)

const (
	esSystemRequired  = 0x00000001
	esDisplayRequired = 0x00000002
)

var (
	kernel32                    = windows.NewLazySystemDLL("kernel32.dll")
	procSetThreadExecutionState = kernel32.NewProc("SetThreadExecutionState")
)

// PreventSleep resets the system and display idle timers without moving the
// pointer. This works even when the session is not visibly interactive.
func (r *Robot) PreventSleep() error {
	ret, _, err := procSetThreadExecutionState.Call(esSystemRequired | esDisplayRequired)
	if ret == 0 {
		return errors.Wrap(err, "SetThreadExecutionState")
	}
	return nil
}
