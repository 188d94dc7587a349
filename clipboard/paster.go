package clipboard

import (
	"time"

	"dictationer/log"
)

// Paster runs the full insert workflow: save the current clipboard, stage
// the new text, inject the paste chord, then restore the saved content
// after a short delay so the paste lands first.
//
// The clipboard and keystroke primitives are injectable so tests can run
// without a display server.
type Paster struct {
	read  func() (string, error)
	write func(string) error
	paste func() error

	saved    string
	hasSaved bool
}

func NewPaster() *Paster {
	return &Paster{
		read:  Read,
		write: Copy,
		paste: Paste,
	}
}

// NewPasterWith builds a Paster on top of custom primitives, for tests.
func NewPasterWith(read func() (string, error), write func(string) error, paste func() error) *Paster {
	return &Paster{read: read, write: write, paste: paste}
}

// SaveClipboard snapshots the current clipboard content.
func (p *Paster) SaveClipboard() bool {
	content, err := p.read()
	if err != nil {
		log.Component("clipboard").Warn().Err(err).Msg("failed to save clipboard content")
		p.hasSaved = false
		return false
	}
	p.saved = content
	p.hasSaved = true
	return true
}

// SetClipboard replaces the clipboard content with text.
func (p *Paster) SetClipboard(text string) bool {
	if err := p.write(text); err != nil {
		log.Component("clipboard").Error().Err(err).Msg("failed to set clipboard content")
		return false
	}
	return true
}

// SimulatePaste injects the platform paste chord into the focused window.
func (p *Paster) SimulatePaste() bool {
	if err := p.paste(); err != nil {
		log.Component("clipboard").Error().Err(err).Msg("failed to simulate paste keystroke")
		return false
	}
	return true
}

// RestoreClipboard puts the previously saved content back. Without a prior
// successful save there is nothing to restore; the clipboard is left alone
// rather than clobbered with an empty string.
func (p *Paster) RestoreClipboard() bool {
	if !p.hasSaved {
		return false
	}
	if err := p.write(p.saved); err != nil {
		log.Component("clipboard").Warn().Err(err).Msg("failed to restore clipboard content")
		return false
	}
	return true
}

// PasteText inserts text into the focused application via the clipboard.
// It returns true when the paste keystroke was delivered. Empty text is a
// no-op. If the initial clipboard save fails the whole operation is
// aborted so the user's clipboard is never clobbered. A restore failure
// after a successful paste does not flip the result; the text landed.
func (p *Paster) PasteText(text string, restoreDelay time.Duration) bool {
	if text == "" {
		log.Component("clipboard").Debug().Msg("empty text, nothing to paste")
		return false
	}
	if !p.SaveClipboard() {
		return false
	}
	if !p.SetClipboard(text) {
		return false
	}
	if !p.SimulatePaste() {
		p.RestoreClipboard()
		return false
	}
	time.Sleep(restoreDelay)
	p.RestoreClipboard()
	log.Component("clipboard").Info().Int("chars", len(text)).Msg("text pasted into focused window")
	return true
}
