// Package processor ties transcription to clipboard insertion, and hosts
// the standalone watch mode that transcribes WAV files as they appear in a
// directory.
package processor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"dictationer/clipboard"
	"dictationer/log"
	"dictationer/transcriber"
)

const restoreDelay = 500 * time.Millisecond

type Processor struct {
	t         transcriber.Transcriber
	paster    *clipboard.Paster
	autoPaste bool
}

func New(t transcriber.Transcriber, paster *clipboard.Paster, autoPaste bool) *Processor {
	return &Processor{t: t, paster: paster, autoPaste: autoPaste}
}

// Process transcribes the WAV at path and, when auto-paste is on and the
// transcript is non-empty, inserts it into the focused application. The
// transcript is returned either way.
func (p *Processor) Process(ctx context.Context, path string) (string, error) {
	logger := log.Component("processor")

	res, err := p.t.TranscribeFile(ctx, path)
	if err != nil {
		logger.Error().Err(err).Str("file", path).Msg("transcription failed")
		return "", err
	}

	text := strings.TrimSpace(res.Text)
	if text == "" {
		logger.Info().Str("file", path).Msg("empty transcript, nothing to paste")
		return "", nil
	}

	log.TranscriptionText(text)
	logger.Info().Str("file", path).Int("chars", len(text)).Msg("transcript ready")

	if p.autoPaste {
		if ok := p.paster.PasteText(text, restoreDelay); !ok {
			logger.Warn().Msg("paste failed, transcript available in transcript log")
		}
	}
	return text, nil
}

// Watch transcribes new WAV files appearing under dir until ctx is done.
// Files are picked up on create and processed once their size stops
// changing, so partially written recordings are left alone.
func (p *Processor) Watch(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := watcher.Add(dir); err != nil {
		return err
	}

	logger := log.Component("processor")
	logger.Info().Str("dir", dir).Msg("watching for new recordings")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("watch error")
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) {
				continue
			}
			if strings.ToLower(filepath.Ext(ev.Name)) != ".wav" {
				continue
			}
			if err := waitStable(ctx, ev.Name); err != nil {
				logger.Warn().Err(err).Str("file", ev.Name).Msg("skipping unstable file")
				continue
			}
			p.Process(ctx, ev.Name)
		}
	}
}

// waitStable polls until two consecutive size checks agree, meaning the
// writer has finished.
func waitStable(ctx context.Context, path string) error {
	var last int64 = -1
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if info.Size() == last {
			return nil
		}
		last = info.Size()
	}
}
