package controller

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"dictationer/audio"
	"dictationer/beep"
	"dictationer/hotkey"
	"dictationer/recorder"
)

func TestMain(m *testing.M) {
	beep.Disable()
	os.Exit(m.Run())
}

func newController(t *testing.T, out string) (*Controller, *hotkey.FakeHook, *recorder.Recorder) {
	t.Helper()
	l, fk, err := hotkey.NewFakeListener("ctrl+win+shift+l")
	if err != nil {
		t.Fatal(err)
	}
	cap, err := audio.NewSilentContext().NewCapture(nil, audio.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	rec := recorder.New(cap, nil, recorder.Config{OutputPath: out})
	return New(l, rec), fk, rec
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

func TestPressTogglesRecording(t *testing.T) {
	out := filepath.Join(t.TempDir(), "rec.wav")
	c, fk, rec := newController(t, out)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- c.Start(ctx) }()

	waitFor(t, "listening", func() bool { return c.State() == Listening })

	fk.SimPress()
	waitFor(t, "recording on", rec.IsRecording)

	fk.SimPress()
	waitFor(t, "recording off", func() bool { return !rec.IsRecording() })
	waitFor(t, "wav flushed", func() bool {
		_, err := os.Stat(out)
		return err == nil
	})

	c.Stop()
	if err := <-errCh; err != nil {
		t.Fatalf("Start returned %v", err)
	}
}

func TestStopFlushesActiveRecording(t *testing.T) {
	out := filepath.Join(t.TempDir(), "rec.wav")
	c, fk, rec := newController(t, out)

	go c.Start(context.Background())
	waitFor(t, "listening", func() bool { return c.State() == Listening })

	fk.SimPress()
	waitFor(t, "recording on", rec.IsRecording)

	c.Stop()
	if rec.IsRecording() {
		t.Error("Stop must end the active recording")
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("Stop must flush the session: %v", err)
	}
	c.Stop() // idempotent
}

func TestStartAfterStop(t *testing.T) {
	out := filepath.Join(t.TempDir(), "rec.wav")
	c, _, _ := newController(t, out)

	c.Stop()
	if err := c.Start(context.Background()); err != ErrStopped {
		t.Fatalf("Start after Stop = %v, want ErrStopped", err)
	}
}

// slowCapture takes a while to open, like a real device waking up.
type slowCapture struct {
	delay time.Duration
}

func (s *slowCapture) Start() error {
	time.Sleep(s.delay)
	return nil
}
func (s *slowCapture) Stop()                          {}
func (s *slowCapture) Close()                         {}
func (s *slowCapture) SetCallback(audio.DataCallback) {}
func (s *slowCapture) ClearCallback()                 {}

// A press landing just before Stop must not leave the recorder capturing
// after Stop returns; toggle dispatch and Stop share one lock.
func TestStopDoesNotRaceToggle(t *testing.T) {
	out := filepath.Join(t.TempDir(), "rec.wav")
	l, fk, err := hotkey.NewFakeListener("ctrl+win+shift+l")
	if err != nil {
		t.Fatal(err)
	}
	rec := recorder.New(&slowCapture{delay: 150 * time.Millisecond}, nil,
		recorder.Config{OutputPath: out})
	c := New(l, rec)

	go c.Start(context.Background())
	waitFor(t, "listening", func() bool { return c.State() == Listening })

	fk.SimPress()
	time.Sleep(20 * time.Millisecond) // let dispatch pick up the press
	c.Stop()

	if rec.IsRecording() {
		t.Fatal("recorder still recording after Stop returned")
	}
}

// A failed OS grab must not kill the controller; it stays up inert so the
// rest of the process (signals, watch mode) keeps working.
func TestRegisterFailureKeepsRunning(t *testing.T) {
	out := filepath.Join(t.TempDir(), "rec.wav")
	c, fk, _ := newController(t, out)
	fk.RegisterErr = os.ErrPermission

	errCh := make(chan error, 1)
	go func() { errCh <- c.Start(context.Background()) }()
	waitFor(t, "listening", func() bool { return c.State() == Listening })

	if c.Hooked() {
		t.Error("controller reports a hook after failed registration")
	}

	c.Stop()
	if err := <-errCh; err != nil {
		t.Fatalf("Start returned %v, want nil", err)
	}
}

func TestContextCancelStops(t *testing.T) {
	out := filepath.Join(t.TempDir(), "rec.wav")
	c, _, _ := newController(t, out)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- c.Start(ctx) }()
	waitFor(t, "listening", func() bool { return c.State() == Listening })

	cancel()
	select {
	case err := <-errCh:
		if err != context.Canceled {
			t.Fatalf("Start returned %v, want context.Canceled", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
	if c.State() != Stopped {
		t.Error("controller not stopped after cancel")
	}
}
