// Package transcriber converts recorded WAV files to text. The production
// implementation runs a local whisper.cpp model; a fake stands in for it
// in tests and the headless test mode.
package transcriber

import "context"

type Segment struct {
	Text     string
	StartSec float64
	EndSec   float64
}

type Result struct {
	Text     string
	Segments []Segment
	Language string
	Duration float64 // seconds of audio transcribed
}

type Transcriber interface {
	// TranscribeFile decodes the WAV at path and returns its transcript.
	// Any failure (missing file, undecodable audio, model load, inference)
	// returns a zero Result and an error; callers log and continue.
	TranscribeFile(ctx context.Context, path string) (Result, error)
	Close() error
}
