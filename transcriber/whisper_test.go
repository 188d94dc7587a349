package transcriber

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"dictationer/audio"
)

func TestModelPathResolution(t *testing.T) {
	cases := []struct {
		name, dir, want string
	}{
		{"base", "/models", filepath.Join("/models", "ggml-base.bin")},
		{"Systran/faster-whisper-small", "/models", filepath.Join("/models", "ggml-small.bin")},
		{filepath.Join("/opt", "ggml-custom.bin"), "/models", filepath.Join("/opt", "ggml-custom.bin")},
		{"ggml-local.bin", "/models", "ggml-local.bin"},
	}
	for _, tc := range cases {
		w := NewWhisper(WhisperConfig{ModelName: tc.name, ModelDir: tc.dir})
		if got := w.ModelPath(); got != tc.want {
			t.Errorf("ModelPath(%q, %q) = %q, want %q", tc.name, tc.dir, got, tc.want)
		}
	}
}

func TestTranscribeFileMissing(t *testing.T) {
	w := NewWhisper(WhisperConfig{ModelName: "base", ModelDir: t.TempDir()})
	if _, err := w.TranscribeFile(context.Background(), filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Fatal("expected error for missing wav")
	}
}

func TestTranscribeAfterClose(t *testing.T) {
	wav := filepath.Join(t.TempDir(), "in.wav")
	if err := audio.WriteWAV(wav, make([]byte, audio.SampleRate*audio.BytesPerFrame)); err != nil {
		t.Fatal(err)
	}

	w := NewWhisper(WhisperConfig{ModelName: "base", ModelDir: t.TempDir()})
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	_, err := w.TranscribeFile(context.Background(), wav)
	if err == nil || !strings.Contains(err.Error(), "closed") {
		t.Fatalf("TranscribeFile after Close = %v, want closed error", err)
	}
}

func TestCloseIdempotent(t *testing.T) {
	w := NewWhisper(WhisperConfig{ModelName: "base", ModelDir: t.TempDir()})
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestFakeRecordsCalls(t *testing.T) {
	f := &Fake{Text: "hello"}
	if _, err := f.TranscribeFile(context.Background(), "/does/not/exist.wav"); err == nil {
		t.Fatal("fake should surface stat errors")
	}
	if got := f.Calls(); len(got) != 1 {
		t.Fatalf("calls = %v, want one entry", got)
	}
}
