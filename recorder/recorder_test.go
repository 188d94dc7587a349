package recorder

import (
	"context"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"dictationer/audio"
	"dictationer/beep"
	"dictationer/clipboard"
	"dictationer/processor"
	"dictationer/transcriber"
)

func TestMain(m *testing.M) {
	beep.Disable()
	os.Exit(m.Run())
}

func toneWAV(t *testing.T, seconds float64) string {
	t.Helper()
	n := int(seconds * audio.SampleRate)
	pcm := make([]byte, n*2)
	for i := 0; i < n; i++ {
		v := int16(12000 * math.Sin(2*math.Pi*300*float64(i)/audio.SampleRate))
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(v))
	}
	path := filepath.Join(t.TempDir(), "in.wav")
	if err := audio.WriteWAV(path, pcm); err != nil {
		t.Fatal(err)
	}
	return path
}

func newFakeCapture(t *testing.T, wavPath string) *audio.FakeCapture {
	t.Helper()
	var ctx audio.Context
	var err error
	if wavPath == "" {
		ctx = audio.NewSilentContext()
	} else {
		ctx, err = audio.NewFakeContext(wavPath, false)
		if err != nil {
			t.Fatal(err)
		}
	}
	cap, err := ctx.NewCapture(nil, audio.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	return cap.(*audio.FakeCapture)
}

func TestStartStopWritesWAV(t *testing.T) {
	const seconds = 1.0
	cap := newFakeCapture(t, toneWAV(t, seconds))
	out := filepath.Join(t.TempDir(), "out", "rec.wav")

	r := New(cap, nil, Config{OutputPath: out})
	r.Start()
	if !r.IsRecording() {
		t.Fatal("expected recording after Start")
	}
	<-cap.AudioDone()
	r.Stop(context.Background())
	if r.IsRecording() {
		t.Fatal("still recording after Stop")
	}

	samples, err := audio.ReadWAVFloat32(out)
	if err != nil {
		t.Fatal(err)
	}
	got := float64(len(samples)) / audio.SampleRate
	// the fake keeps feeding silence between AudioDone and Stop
	if got < seconds {
		t.Errorf("recorded %.3fs, want at least %.3fs", got, seconds)
	}
}

func TestStartWhileRecordingNoOp(t *testing.T) {
	cap := newFakeCapture(t, "")
	out := filepath.Join(t.TempDir(), "rec.wav")

	r := New(cap, nil, Config{OutputPath: out})
	r.Start()
	r.Start() // must not restart or clear the session
	if !r.IsRecording() {
		t.Fatal("expected still recording")
	}
	r.Stop(context.Background())
}

func TestStopWhileIdleNoOp(t *testing.T) {
	cap := newFakeCapture(t, "")
	out := filepath.Join(t.TempDir(), "rec.wav")

	r := New(cap, nil, Config{OutputPath: out})
	r.Stop(context.Background())
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("idle stop must not write a file")
	}
}

func TestToggleSequence(t *testing.T) {
	cap := newFakeCapture(t, "")
	out := filepath.Join(t.TempDir(), "rec.wav")
	ctx := context.Background()

	r := New(cap, nil, Config{OutputPath: out})
	r.Toggle(ctx, true)
	if !r.IsRecording() {
		t.Fatal("toggle on should start")
	}
	r.Toggle(ctx, true) // redundant state, no-op
	if !r.IsRecording() {
		t.Fatal("redundant toggle must not stop")
	}
	r.Toggle(ctx, false)
	if r.IsRecording() {
		t.Fatal("toggle off should stop")
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("expected wav after toggle off: %v", err)
	}
}

// Silent end-to-end: a session with no speech still writes a WAV, produces
// an empty transcript and never touches the clipboard.
func TestSilentSessionNoPaste(t *testing.T) {
	cap := newFakeCapture(t, "")
	out := filepath.Join(t.TempDir(), "rec.wav")

	board := "untouched"
	pasted := 0
	paster := clipboard.NewPasterWith(
		func() (string, error) { return board, nil },
		func(s string) error { board = s; return nil },
		func() error { pasted++; return nil },
	)
	proc := processor.New(&transcriber.Fake{Text: ""}, paster, true)

	r := New(cap, proc, Config{OutputPath: out, Transcribe: true})
	r.Start()
	text := r.Stop(context.Background())

	if text != "" {
		t.Errorf("transcript = %q, want empty", text)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("expected wav file: %v", err)
	}
	if pasted != 0 || board != "untouched" {
		t.Error("silent session must not paste or touch the clipboard")
	}
}

func TestTranscribedSessionPastes(t *testing.T) {
	cap := newFakeCapture(t, toneWAV(t, 0.5))
	out := filepath.Join(t.TempDir(), "rec.wav")

	board := "before"
	var pasted []string
	paster := clipboard.NewPasterWith(
		func() (string, error) { return board, nil },
		func(s string) error { board = s; return nil },
		func() error { pasted = append(pasted, board); return nil },
	)
	proc := processor.New(&transcriber.Fake{Text: "hello world"}, paster, true)

	r := New(cap, proc, Config{OutputPath: out, Transcribe: true})
	r.Start()
	<-cap.AudioDone()
	text := r.Stop(context.Background())

	if text != "hello world" {
		t.Errorf("transcript = %q", text)
	}
	if len(pasted) != 1 || pasted[0] != "hello world" {
		t.Errorf("pasted = %v", pasted)
	}
	if board != "before" {
		t.Errorf("clipboard = %q, want restored", board)
	}
}
