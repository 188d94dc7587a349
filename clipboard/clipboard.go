// Package clipboard owns the system clipboard and the paste keystroke.
// Transcribed text reaches the focused application by staging it on the
// clipboard, injecting the platform paste chord, and restoring whatever
// the clipboard held before.
package clipboard

import cb "github.com/atotto/clipboard"

func Read() (string, error) {
	return cb.ReadAll()
}

func Copy(text string) error {
	return cb.WriteAll(text)
}
