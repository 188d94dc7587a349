package reformatter

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"dictationer/clipboard"
	"dictationer/hotkey"
)

// memBoard is an in-memory clipboard plus a pretend selection that the
// synthetic copy chord deposits.
type memBoard struct {
	mu        sync.Mutex
	content   string
	selection string

	pasted []string
}

func (b *memBoard) read() (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.content, nil
}

func (b *memBoard) write(s string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.content = s
	return nil
}

func (b *memBoard) copySel() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.content = b.selection
	return nil
}

func (b *memBoard) paste() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pasted = append(b.pasted, b.content)
	return nil
}

func (b *memBoard) pastes() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.pasted...)
}

func newTestController(t *testing.T, board *memBoard, ref Reformatter) (*Controller, *hotkey.FakeHook) {
	t.Helper()
	l, fk, err := hotkey.NewFakeListener("ctrl+alt+r")
	if err != nil {
		t.Fatal(err)
	}
	p := clipboard.NewPasterWith(board.read, board.write, board.paste)
	return newControllerWith(l, ref, p, board.read, board.write, board.copySel), fk
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for !cond() {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for " + what)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestPressRewritesSelection(t *testing.T) {
	board := &memBoard{content: "original", selection: "teh text"}
	ref := &Fake{Text: "the text"}
	c, fk := newTestController(t, board, ref)
	defer c.Stop()
	go c.Start(context.Background())

	fk.SimPress()
	waitFor(t, "paste", func() bool { return len(board.pastes()) == 1 })

	if got := board.pastes()[0]; got != "the text" {
		t.Errorf("pasted %q, want %q", got, "the text")
	}
	if calls := ref.Calls(); len(calls) != 1 || calls[0] != "teh text" {
		t.Errorf("reformatter saw %v, want the selection", calls)
	}
	waitFor(t, "clipboard restored", func() bool {
		s, _ := board.read()
		return s == "original"
	})
}

func TestEmptySelectionNoRewrite(t *testing.T) {
	board := &memBoard{content: "original", selection: ""}
	ref := &Fake{Text: "unused"}
	c, fk := newTestController(t, board, ref)
	defer c.Stop()
	go c.Start(context.Background())

	fk.SimPress()
	waitFor(t, "clipboard restored", func() bool {
		s, _ := board.read()
		return s == "original"
	})
	if len(ref.Calls()) != 0 {
		t.Error("reformatter called with no selection")
	}
	if len(board.pastes()) != 0 {
		t.Error("paste issued with no selection")
	}
}

func TestRewriteErrorRestoresClipboard(t *testing.T) {
	board := &memBoard{content: "original", selection: "some words"}
	ref := &Fake{Err: errors.New("api down")}
	c, fk := newTestController(t, board, ref)
	defer c.Stop()
	go c.Start(context.Background())

	fk.SimPress()
	waitFor(t, "reformat attempted", func() bool { return len(ref.Calls()) == 1 })
	waitFor(t, "clipboard restored", func() bool {
		s, _ := board.read()
		return s == "original"
	})
	if len(board.pastes()) != 0 {
		t.Error("paste issued after failed rewrite")
	}
}

func TestPressDuringRewriteDropped(t *testing.T) {
	board := &memBoard{content: "original", selection: "slow job"}
	ref := &Fake{Text: "done", Gate: make(chan struct{})}
	c, fk := newTestController(t, board, ref)
	defer c.Stop()
	go c.Start(context.Background())

	fk.SimPress()
	waitFor(t, "rewrite in flight", func() bool { return len(ref.Calls()) == 1 })
	fk.SimPress() // busy, must be dropped

	close(ref.Gate)
	waitFor(t, "paste", func() bool { return len(board.pastes()) == 1 })

	time.Sleep(50 * time.Millisecond)
	if n := len(ref.Calls()); n != 1 {
		t.Errorf("reformatter called %d times, want 1", n)
	}
}

func TestStopIdempotent(t *testing.T) {
	board := &memBoard{}
	c, _ := newTestController(t, board, &Fake{})
	go c.Start(context.Background())
	c.Stop()
	c.Stop()
}
