// Package config persists user settings as JSON and layers .env / process
// environment overrides on top.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"dictationer/hotkey"
	"dictationer/log"
	"dictationer/reformatter"
	"dictationer/transcriber"
)

const DefaultPath = "config/settings.json"

type Settings struct {
	Hotkey              string `json:"hotkey"`
	WhisperModelSize    string `json:"whisper_model_size"`
	ModelDirectory      string `json:"model_directory,omitempty"`
	OutputDirectory     string `json:"output_directory"`
	DevicePreference    string `json:"device_preference"` // auto, cpu, gpu
	EnableTranscription bool   `json:"enable_transcription"`
	AutoPaste           bool   `json:"auto_paste"`
	LogLevel            string `json:"log_level"`

	// Reformatting is off unless a hotkey is configured.
	ReformatHotkey string `json:"reformat_hotkey,omitempty"`
	ReformatModel  string `json:"reformat_model,omitempty"`
	ReformatMode   string `json:"reformat_mode,omitempty"`
}

func Defaults() Settings {
	return Settings{
		Hotkey:              "ctrl+win+shift+l",
		WhisperModelSize:    "base",
		OutputDirectory:     "outputs",
		DevicePreference:    transcriber.DeviceAuto,
		EnableTranscription: true,
		AutoPaste:           true,
		LogLevel:            "INFO",
		ReformatModel:       reformatter.DefaultModel,
		ReformatMode:        string(reformatter.ModeGrammarFix),
	}
}

// Load reads settings from path, merging over defaults, then applies .env
// and environment overrides. A missing file just yields the defaults.
func Load(path string) (Settings, error) {
	if path == "" {
		path = DefaultPath
	}
	s := Defaults()

	// A .env beside the binary feeds the same override variables.
	godotenv.Load()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &s); err != nil {
			return s, fmt.Errorf("parsing %s: %w", path, err)
		}
		log.Component("config").Info().Str("file", path).Msg("configuration loaded")
	case os.IsNotExist(err):
		log.Component("config").Info().Msg("no config file found, using defaults")
	default:
		return s, fmt.Errorf("reading %s: %w", path, err)
	}

	s.applyEnv()
	return s, nil
}

func (s *Settings) applyEnv() {
	overrides := []struct {
		env string
		dst *string
	}{
		{"DICTATIONER_HOTKEY", &s.Hotkey},
		{"WHISPER_MODEL_SIZE", &s.WhisperModelSize},
		{"WHISPER_MODEL_DIR", &s.ModelDirectory},
		{"OUTPUT_DIRECTORY", &s.OutputDirectory},
		{"DEVICE_PREFERENCE", &s.DevicePreference},
		{"LOG_LEVEL", &s.LogLevel},
		{"DICTATIONER_REFORMAT_HOTKEY", &s.ReformatHotkey},
		{"REFORMAT_MODEL", &s.ReformatModel},
		{"REFORMAT_MODE", &s.ReformatMode},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.dst = v
			log.Component("config").Debug().Str("var", o.env).Msg("override from environment")
		}
	}
}

// Save writes the settings as indented JSON, creating the parent directory.
func (s Settings) Save(path string) error {
	if path == "" {
		path = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	log.Component("config").Info().Str("file", path).Msg("configuration saved")
	return nil
}

// Validate rejects settings the rest of the program cannot act on.
func (s Settings) Validate() error {
	if _, err := hotkey.ParseCombo(s.Hotkey); err != nil {
		return fmt.Errorf("invalid hotkey: %w", err)
	}
	switch strings.ToLower(s.DevicePreference) {
	case transcriber.DeviceAuto, transcriber.DeviceCPU, transcriber.DeviceGPU:
	default:
		return fmt.Errorf("invalid device_preference %q (want auto, cpu or gpu)", s.DevicePreference)
	}
	if s.WhisperModelSize == "" {
		return fmt.Errorf("whisper_model_size must not be empty")
	}
	if s.OutputDirectory == "" {
		return fmt.Errorf("output_directory must not be empty")
	}
	if s.ReformatHotkey != "" {
		if _, err := hotkey.ParseCombo(s.ReformatHotkey); err != nil {
			return fmt.Errorf("invalid reformat_hotkey: %w", err)
		}
		if _, err := reformatter.ParseMode(s.ReformatMode); err != nil {
			return fmt.Errorf("invalid reformat_mode: %w", err)
		}
	}
	return nil
}

// OutputWAV is the session recording destination inside OutputDirectory.
func (s Settings) OutputWAV() string {
	return filepath.Join(s.OutputDirectory, "recording.wav")
}
