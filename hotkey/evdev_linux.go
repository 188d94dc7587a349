//go:build linux

package hotkey

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	evKey      = 1
	keyPress   = 1
	keyRelease = 0

	// input_event is 24 bytes on 64-bit Linux:
	// timeval (16 bytes) + type (2) + code (2) + value (4)
	inputEventSize = 24
)

// Left/right scancode pairs for each modifier name.
var evdevModCodes = map[string][2]uint16{
	"ctrl":  {29, 97},
	"shift": {42, 54},
	"alt":   {56, 100},
	"win":   {125, 126},
}

var evdevKeyCodes = map[string]uint16{
	"a": 30, "b": 48, "c": 46, "d": 32, "e": 18, "f": 33, "g": 34,
	"h": 35, "i": 23, "j": 36, "k": 37, "l": 38, "m": 50, "n": 49,
	"o": 24, "p": 25, "q": 16, "r": 19, "s": 31, "t": 20, "u": 22,
	"v": 47, "w": 17, "x": 45, "y": 21, "z": 44,

	"1": 2, "2": 3, "3": 4, "4": 5, "5": 6,
	"6": 7, "7": 8, "8": 9, "9": 10, "0": 11,

	"f1": 59, "f2": 60, "f3": 61, "f4": 62, "f5": 63,
	"f6": 64, "f7": 65, "f8": 66, "f9": 67, "f10": 68,
	"f11": 87, "f12": 88,

	"space": 57, "tab": 15, "enter": 28, "esc": 1, "delete": 111,
	"up": 103, "down": 108, "left": 105, "right": 106,
}

// evdevHook watches raw keyboard events from /dev/input. Requires the user
// to be in the 'input' group.
type evdevHook struct {
	modCodes [][2]uint16
	keyCode  uint16

	keydown chan struct{}
	files   []*os.File
	stop    chan struct{}
	once    sync.Once
}

func newEvdevHook(c Combo) (Hook, error) {
	h := &evdevHook{
		keydown: make(chan struct{}, 1),
	}
	for _, m := range c.Mods {
		codes, ok := evdevModCodes[m]
		if !ok {
			return nil, fmt.Errorf("modifier %q not supported on this platform", m)
		}
		h.modCodes = append(h.modCodes, codes)
	}
	code, ok := evdevKeyCodes[c.Key]
	if !ok {
		return nil, fmt.Errorf("key %q not supported on this platform", c.Key)
	}
	h.keyCode = code
	return h, nil
}

func (h *evdevHook) Register() error {
	keyboards, err := findKeyboards()
	if err != nil {
		return fmt.Errorf("finding keyboards: %w", err)
	}
	if len(keyboards) == 0 {
		return fmt.Errorf("no keyboard devices found (is user in 'input' group?)")
	}

	h.stop = make(chan struct{})

	for _, path := range keyboards {
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		h.files = append(h.files, f)
		go h.readEvents(f)
	}

	if len(h.files) == 0 {
		return fmt.Errorf("could not open any keyboard device (run: sudo usermod -aG input $USER, then re-login)")
	}

	return nil
}

func (h *evdevHook) readEvents(f *os.File) {
	buf := make([]byte, inputEventSize*16)
	modsHeld := make([]bool, len(h.modCodes))
	keyHeld := false

	for {
		select {
		case <-h.stop:
			return
		default:
		}

		n, err := f.Read(buf)
		if err != nil {
			return
		}

		for i := 0; i+inputEventSize <= n; i += inputEventSize {
			evType := binary.LittleEndian.Uint16(buf[i+16:])
			evCode := binary.LittleEndian.Uint16(buf[i+18:])
			evValue := int32(binary.LittleEndian.Uint32(buf[i+20:]))

			if evType != evKey {
				continue
			}

			pressed := evValue == keyPress
			released := evValue == keyRelease

			matched := false
			for j, codes := range h.modCodes {
				if evCode == codes[0] || evCode == codes[1] {
					modsHeld[j] = pressed || (!released && modsHeld[j])
					matched = true
				}
			}
			if matched || evCode != h.keyCode {
				continue
			}

			if pressed && !keyHeld && allHeld(modsHeld) {
				keyHeld = true
				select {
				case h.keydown <- struct{}{}:
				default:
				}
			} else if released {
				keyHeld = false
			}
		}
	}
}

func allHeld(mods []bool) bool {
	for _, held := range mods {
		if !held {
			return false
		}
	}
	return true
}

func (h *evdevHook) Unregister() {
	h.once.Do(func() {
		if h.stop != nil {
			close(h.stop)
		}
		for _, f := range h.files {
			f.Close()
		}
	})
}

func (h *evdevHook) Keydown() <-chan struct{} { return h.keydown }

func findKeyboards() ([]string, error) {
	entries, err := os.ReadDir("/dev/input")
	if err != nil {
		return nil, err
	}

	var keyboards []string
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), "event") {
			continue
		}
		if isKeyboard(e.Name()) {
			keyboards = append(keyboards, filepath.Join("/dev/input", e.Name()))
		}
	}
	return keyboards, nil
}

func isKeyboard(eventName string) bool {
	capsPath := filepath.Join("/sys/class/input", eventName, "device", "capabilities", "key")
	data, err := os.ReadFile(capsPath)
	if err != nil {
		return false
	}
	// Real keyboards have long key capability bitmaps
	caps := strings.TrimSpace(string(data))
	return len(caps) > 10
}
