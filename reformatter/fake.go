package reformatter

import (
	"context"
	"sync"
)

// Fake returns canned text (or a scripted error) and records inputs.
type Fake struct {
	Text string
	Err  error

	// Gate, when set, blocks each Reformat call until it is closed.
	Gate chan struct{}

	mu    sync.Mutex
	calls []string
}

func (f *Fake) Reformat(ctx context.Context, text string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, text)
	f.mu.Unlock()

	if f.Gate != nil {
		select {
		case <-f.Gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.Err != nil {
		return "", f.Err
	}
	return f.Text, nil
}

func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}
