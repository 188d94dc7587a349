package transcriber

import (
	"context"
	"os"
	"sync"
)

// Fake returns a canned transcript (or a scripted error) and records the
// paths it was asked to transcribe.
type Fake struct {
	Text string
	Err  error

	mu    sync.Mutex
	calls []string
}

func (f *Fake) TranscribeFile(_ context.Context, path string) (Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, path)
	f.mu.Unlock()

	if f.Err != nil {
		return Result{}, f.Err
	}
	if _, err := os.Stat(path); err != nil {
		return Result{}, err
	}
	return Result{Text: f.Text}, nil
}

func (f *Fake) Close() error { return nil }

// Calls returns the transcribed paths in order.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}
