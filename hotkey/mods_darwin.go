//go:build darwin

package hotkey

import xhotkey "golang.design/x/hotkey"

// "win" maps to the command key on macOS, matching what users
// coming from other platforms expect from a super-style modifier.
var modifierTable = map[string]xhotkey.Modifier{
	"ctrl":  xhotkey.ModCtrl,
	"shift": xhotkey.ModShift,
	"alt":   xhotkey.ModOption,
	"win":   xhotkey.ModCmd,
}
