package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWhenMissing(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "settings.json"))
	if err != nil {
		t.Fatal(err)
	}
	if s.Hotkey != "ctrl+win+shift+l" {
		t.Errorf("hotkey = %q", s.Hotkey)
	}
	if s.WhisperModelSize != "base" {
		t.Errorf("model = %q", s.WhisperModelSize)
	}
	if !s.EnableTranscription || !s.AutoPaste {
		t.Error("transcription and auto-paste default on")
	}
	if err := s.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")

	s := Defaults()
	s.Hotkey = "ctrl+alt+r"
	s.WhisperModelSize = "small"
	s.AutoPaste = false
	if err := s.Save(path); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Hotkey != "ctrl+alt+r" || got.WhisperModelSize != "small" || got.AutoPaste {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{"whisper_model_size":"tiny"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.WhisperModelSize != "tiny" {
		t.Errorf("model = %q, want tiny", s.WhisperModelSize)
	}
	if s.Hotkey != "ctrl+win+shift+l" {
		t.Errorf("hotkey default lost: %q", s.Hotkey)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DICTATIONER_HOTKEY", "ctrl+shift+d")
	t.Setenv("WHISPER_MODEL_SIZE", "medium")
	t.Setenv("DEVICE_PREFERENCE", "cpu")

	s, err := Load(filepath.Join(t.TempDir(), "settings.json"))
	if err != nil {
		t.Fatal(err)
	}
	if s.Hotkey != "ctrl+shift+d" {
		t.Errorf("hotkey = %q", s.Hotkey)
	}
	if s.WhisperModelSize != "medium" {
		t.Errorf("model = %q", s.WhisperModelSize)
	}
	if s.DevicePreference != "cpu" {
		t.Errorf("device = %q", s.DevicePreference)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	s := Defaults()
	s.Hotkey = "notakey"
	if err := s.Validate(); err == nil {
		t.Error("bad hotkey must not validate")
	}

	s = Defaults()
	s.DevicePreference = "tpu"
	if err := s.Validate(); err == nil {
		t.Error("bad device preference must not validate")
	}

	s = Defaults()
	s.OutputDirectory = ""
	if err := s.Validate(); err == nil {
		t.Error("empty output directory must not validate")
	}

	s = Defaults()
	s.ReformatHotkey = "notakey"
	if err := s.Validate(); err == nil {
		t.Error("bad reformat hotkey must not validate")
	}

	s = Defaults()
	s.ReformatHotkey = "ctrl+alt+r"
	s.ReformatMode = "shouty"
	if err := s.Validate(); err == nil {
		t.Error("bad reformat mode must not validate")
	}
}

func TestReformatDisabledByDefault(t *testing.T) {
	s := Defaults()
	if s.ReformatHotkey != "" {
		t.Errorf("reformat hotkey = %q, want unset", s.ReformatHotkey)
	}
	// Mode and model carry defaults so enabling only needs a hotkey.
	s.ReformatHotkey = "ctrl+alt+r"
	if err := s.Validate(); err != nil {
		t.Errorf("defaults with a reformat hotkey must validate: %v", err)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("{nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("corrupt json must return an error")
	}
}
