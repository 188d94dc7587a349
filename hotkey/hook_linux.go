//go:build linux

package hotkey

import "os"

// X11 grabs need a display connection. Headless and pure-Wayland sessions
// fall back to reading /dev/input directly, which works everywhere but
// requires membership in the 'input' group.
func newHook(c Combo) (Hook, error) {
	if os.Getenv("DISPLAY") == "" {
		return newEvdevHook(c)
	}
	return newXHook(c)
}
