//go:build !windows

package device

// PreventSleep has no direct equivalent off Windows; a zero-pixel pointer
// move still registers as input activity with the session.
func (r *Robot) PreventSleep() error {
	return r.MoveRelative(0, 0)
}
