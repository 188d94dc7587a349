//go:build windows

package clipboard

import (
	"sync"

	"github.com/micmonay/keybd_event"
)

var (
	kb     keybd_event.KeyBonding
	kbOnce sync.Once
	kbErr  error
)

func Init() error {
	kbOnce.Do(func() {
		kb, kbErr = keybd_event.NewKeyBonding()
	})
	return kbErr
}

// Paste injects a Ctrl+V chord via the Windows SendInput API.
func Paste() error {
	if err := Init(); err != nil {
		return err
	}
	kb.SetKeys(keybd_event.VK_V)
	kb.HasCTRL(true)
	return kb.Launching()
}

// CopySelection injects a Ctrl+C chord, copying the focused window's
// current selection.
func CopySelection() error {
	if err := Init(); err != nil {
		return err
	}
	kb.SetKeys(keybd_event.VK_C)
	kb.HasCTRL(true)
	return kb.Launching()
}

// Verify checks that the keyboard event binding is initialized.
func Verify() (string, error) {
	if err := Init(); err != nil {
		return "", err
	}
	return "keyboard event binding OK (Ctrl+V)", nil
}
