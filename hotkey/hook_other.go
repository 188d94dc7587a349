//go:build !linux

package hotkey

func newHook(c Combo) (Hook, error) {
	return newXHook(c)
}
