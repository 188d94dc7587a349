package transcriber

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"dictationer/audio"
	"dictationer/log"
)

// WhisperConfig selects the model and its execution profile.
type WhisperConfig struct {
	ModelName string // short name ("base") or explicit path to a ggml file
	ModelDir  string // directory holding ggml-<name>.bin files
	Language  string // "" means auto-detect
	Profile   ExecutionProfile
}

// Whisper transcribes through a local whisper.cpp model. The model weights
// are loaded on first use and cached for the lifetime of the value; Close
// releases them. One mutex guards the handle, so Close cannot race the
// first load.
type Whisper struct {
	cfg WhisperConfig

	mu      sync.Mutex
	loaded  bool
	closed  bool
	model   whisper.Model
	loadErr error
}

func NewWhisper(cfg WhisperConfig) *Whisper {
	return &Whisper{cfg: cfg}
}

// ModelPath resolves the configured name to the ggml file to load. A name
// that already looks like a path is used as-is.
func (w *Whisper) ModelPath() string {
	name := Normalize(w.cfg.ModelName)
	if strings.ContainsRune(name, filepath.Separator) || strings.HasSuffix(name, ".bin") {
		return name
	}
	return filepath.Join(w.cfg.ModelDir, "ggml-"+name+".bin")
}

func (w *Whisper) load() (whisper.Model, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil, errors.New("transcriber closed")
	}
	if w.loaded {
		return w.model, w.loadErr
	}
	w.loaded = true

	path := w.ModelPath()
	logger := log.Component("transcriber")
	logger.Info().
		Str("model", path).
		Str("device", w.cfg.Profile.Device).
		Str("precision", w.cfg.Profile.Precision).
		Msg("loading whisper model")
	start := time.Now()
	w.model, w.loadErr = whisper.New(path)
	if w.loadErr != nil {
		w.loadErr = fmt.Errorf("loading model %s: %w", path, w.loadErr)
		return nil, w.loadErr
	}
	logger.Info().Dur("took", time.Since(start)).Msg("model loaded")
	return w.model, nil
}

func (w *Whisper) TranscribeFile(ctx context.Context, path string) (Result, error) {
	samples, err := audio.ReadWAVFloat32(path)
	if err != nil {
		return Result{}, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(samples) == 0 {
		return Result{}, nil
	}

	model, err := w.load()
	if err != nil {
		return Result{}, err
	}

	wctx, err := model.NewContext()
	if err != nil {
		return Result{}, fmt.Errorf("whisper context: %w", err)
	}

	lang := w.cfg.Language
	if lang == "" {
		lang = "auto"
	}
	if err := wctx.SetLanguage(lang); err != nil {
		return Result{}, fmt.Errorf("set language %q: %w", lang, err)
	}
	if w.cfg.Profile.Threads > 0 {
		wctx.SetThreads(uint(w.cfg.Profile.Threads))
	}

	start := time.Now()
	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return Result{}, fmt.Errorf("inference: %w", err)
	}

	res := Result{Duration: float64(len(samples)) / audio.SampleRate}
	var parts []string
	for {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		seg, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Result{}, fmt.Errorf("reading segment: %w", err)
		}
		res.Segments = append(res.Segments, Segment{
			Text:     seg.Text,
			StartSec: seg.Start.Seconds(),
			EndSec:   seg.End.Seconds(),
		})
		parts = append(parts, strings.TrimSpace(seg.Text))
	}
	res.Text = strings.TrimSpace(strings.Join(parts, " "))

	res.Language = wctx.DetectedLanguage()
	if res.Language == "" {
		res.Language = wctx.Language()
	}

	log.Component("transcriber").Info().
		Float64("audio_s", res.Duration).
		Dur("took", time.Since(start)).
		Int("segments", len(res.Segments)).
		Msg("transcription complete")
	return res, nil
}

func (w *Whisper) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	if w.model == nil {
		return nil
	}
	err := w.model.Close()
	w.model = nil
	return err
}
