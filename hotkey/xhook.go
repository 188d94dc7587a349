package hotkey

import (
	"fmt"

	xhotkey "golang.design/x/hotkey"
)

// xHook adapts golang.design/x/hotkey to the Hook interface.
type xHook struct {
	hk      *xhotkey.Hotkey
	keydown chan struct{}
	stop    chan struct{}
}

func newXHook(c Combo) (Hook, error) {
	mods := make([]xhotkey.Modifier, 0, len(c.Mods))
	for _, m := range c.Mods {
		xm, ok := modifierTable[m]
		if !ok {
			return nil, fmt.Errorf("modifier %q not supported on this platform", m)
		}
		mods = append(mods, xm)
	}
	key, ok := keyTable[c.Key]
	if !ok {
		return nil, fmt.Errorf("key %q not supported on this platform", c.Key)
	}
	return &xHook{
		hk:      xhotkey.New(mods, key),
		keydown: make(chan struct{}, 1),
		stop:    make(chan struct{}),
	}, nil
}

func (h *xHook) Register() error {
	if err := h.hk.Register(); err != nil {
		return err
	}
	go func() {
		for {
			select {
			case <-h.stop:
				return
			case <-h.hk.Keydown():
				select {
				case h.keydown <- struct{}{}:
				default:
				}
			}
		}
	}()
	return nil
}

func (h *xHook) Unregister() {
	select {
	case <-h.stop:
	default:
		close(h.stop)
	}
	h.hk.Unregister()
}

func (h *xHook) Keydown() <-chan struct{} { return h.keydown }

var keyTable = map[string]xhotkey.Key{
	"a": xhotkey.KeyA, "b": xhotkey.KeyB, "c": xhotkey.KeyC, "d": xhotkey.KeyD,
	"e": xhotkey.KeyE, "f": xhotkey.KeyF, "g": xhotkey.KeyG, "h": xhotkey.KeyH,
	"i": xhotkey.KeyI, "j": xhotkey.KeyJ, "k": xhotkey.KeyK, "l": xhotkey.KeyL,
	"m": xhotkey.KeyM, "n": xhotkey.KeyN, "o": xhotkey.KeyO, "p": xhotkey.KeyP,
	"q": xhotkey.KeyQ, "r": xhotkey.KeyR, "s": xhotkey.KeyS, "t": xhotkey.KeyT,
	"u": xhotkey.KeyU, "v": xhotkey.KeyV, "w": xhotkey.KeyW, "x": xhotkey.KeyX,
	"y": xhotkey.KeyY, "z": xhotkey.KeyZ,

	"0": xhotkey.Key0, "1": xhotkey.Key1, "2": xhotkey.Key2, "3": xhotkey.Key3,
	"4": xhotkey.Key4, "5": xhotkey.Key5, "6": xhotkey.Key6, "7": xhotkey.Key7,
	"8": xhotkey.Key8, "9": xhotkey.Key9,

	"f1": xhotkey.KeyF1, "f2": xhotkey.KeyF2, "f3": xhotkey.KeyF3,
	"f4": xhotkey.KeyF4, "f5": xhotkey.KeyF5, "f6": xhotkey.KeyF6,
	"f7": xhotkey.KeyF7, "f8": xhotkey.KeyF8, "f9": xhotkey.KeyF9,
	"f10": xhotkey.KeyF10, "f11": xhotkey.KeyF11, "f12": xhotkey.KeyF12,

	"space":  xhotkey.KeySpace,
	"tab":    xhotkey.KeyTab,
	"enter":  xhotkey.KeyReturn,
	"esc":    xhotkey.KeyEscape,
	"delete": xhotkey.KeyDelete,
	"up":     xhotkey.KeyUp,
	"down":   xhotkey.KeyDown,
	"left":   xhotkey.KeyLeft,
	"right":  xhotkey.KeyRight,
}
