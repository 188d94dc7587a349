//go:build windows

package hotkey

import xhotkey "golang.design/x/hotkey"

var modifierTable = map[string]xhotkey.Modifier{
	"ctrl":  xhotkey.ModCtrl,
	"shift": xhotkey.ModShift,
	"alt":   xhotkey.ModAlt,
	"win":   xhotkey.ModWin,
}
