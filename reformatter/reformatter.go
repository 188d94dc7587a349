// Package reformatter rewrites the focused window's selected text through
// a language model and pastes the result in place. It is triggered by its
// own hotkey, independent of the dictation toggle.
package reformatter

import (
	"context"
	"fmt"
)

// Mode selects the rewriting instruction sent with the text.
type Mode string

const (
	ModeGrammarFix   Mode = "grammar_fix"
	ModeFormalTone   Mode = "formal_tone"
	ModeCasualTone   Mode = "casual_tone"
	ModeBulletPoints Mode = "bullet_points"
	ModeParagraph    Mode = "paragraph"
	ModeConcise      Mode = "concise"
	ModeElaborate    Mode = "elaborate"
)

// ParseMode validates a mode name from configuration.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeGrammarFix, ModeFormalTone, ModeCasualTone, ModeBulletPoints,
		ModeParagraph, ModeConcise, ModeElaborate:
		return m, nil
	default:
		return "", fmt.Errorf("unknown reformatting mode %q", s)
	}
}

func (m Mode) instruction() string {
	switch m {
	case ModeFormalTone:
		return "Rewrite the following text in a formal, professional tone."
	case ModeCasualTone:
		return "Rewrite the following text in a casual, friendly tone."
	case ModeBulletPoints:
		return "Convert the following text into clear bullet points."
	case ModeParagraph:
		return "Convert the following text into a well-structured paragraph."
	case ModeConcise:
		return "Make the following text more concise while keeping the main points."
	case ModeElaborate:
		return "Elaborate on the following text with more detail and explanation."
	default:
		return "Fix the grammar and spelling in the following text. " +
			"Keep the same tone and style, just correct any errors. " +
			"Break long paragraphs with sensible spacing and line breaks."
	}
}

// Reformatter rewrites a piece of text.
type Reformatter interface {
	Reformat(ctx context.Context, text string) (string, error)
}
