package transcriber

import "strings"

// Normalize maps hub-style model identifiers to the short names whisper.cpp
// model files are published under. Already-short names pass through, so the
// function is idempotent.
//
//	Systran/faster-whisper-small        -> small
//	Systran/faster-distil-whisper-large -> distil-large
//	openai/whisper-base.en              -> base.en
//	distil-whisper/distil-medium.en     -> distil-medium.en
func Normalize(name string) string {
	var short string
	switch {
	case strings.HasPrefix(name, "Systran/faster-distil-whisper-"):
		short = "distil-" + strings.TrimPrefix(name, "Systran/faster-distil-whisper-")
	case strings.HasPrefix(name, "Systran/faster-whisper-"):
		short = strings.TrimPrefix(name, "Systran/faster-whisper-")
	case strings.HasPrefix(name, "openai/whisper-"):
		short = strings.TrimPrefix(name, "openai/whisper-")
	case strings.HasPrefix(name, "distil-whisper/"):
		short = strings.TrimPrefix(name, "distil-whisper/")
	default:
		return name
	}
	// A remainder that still carries a slash is not a known model name;
	// leave the input alone rather than half-stripping it.
	if strings.ContainsRune(short, '/') {
		return name
	}
	return short
}
