// Package recorder owns one microphone session at a time: it accumulates
// captured PCM between start and stop, flushes the session to a WAV file,
// and hands the file to the processor on the stop path.
package recorder

import (
	"context"
	"sync"

	"dictationer/audio"
	"dictationer/beep"
	"dictationer/log"
	"dictationer/processor"
)

type Config struct {
	OutputPath string // WAV destination, parent dirs created on flush
	Transcribe bool   // run transcription + paste after flushing
}

type Recorder struct {
	cfg     Config
	capture audio.CaptureDevice
	proc    *processor.Processor
	vad     *vadProcessor

	mu        sync.Mutex
	recording bool
	buf       []byte
}

// New builds a recorder over an opened capture device. proc may be nil when
// transcription is disabled. VAD init failure is tolerated; speech presence
// is simply not tracked then.
func New(capture audio.CaptureDevice, proc *processor.Processor, cfg Config) *Recorder {
	vad, err := newVADProcessor()
	if err != nil {
		log.Component("recorder").Warn().Err(err).Msg("vad unavailable, speech presence not tracked")
		vad = nil
	}
	return &Recorder{cfg: cfg, capture: capture, proc: proc, vad: vad}
}

func (r *Recorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

// Start begins a new session. Starting while already recording is a logged
// no-op. A device-open failure leaves the recorder idle.
func (r *Recorder) Start() {
	logger := log.Component("recorder")

	r.mu.Lock()
	if r.recording {
		r.mu.Unlock()
		logger.Warn().Msg("already recording, start ignored")
		return
	}
	r.buf = nil
	r.mu.Unlock()

	if r.vad != nil {
		r.vad.Reset()
	}
	r.capture.SetCallback(r.onData)
	if err := r.capture.Start(); err != nil {
		r.capture.ClearCallback()
		logger.Error().Err(err).Msg("failed to open capture device")
		return
	}

	r.mu.Lock()
	r.recording = true
	r.mu.Unlock()

	beep.PlayStart()
	logger.Info().Msg("recording started")
}

func (r *Recorder) onData(data []byte, _ uint32) {
	r.mu.Lock()
	r.buf = append(r.buf, data...)
	r.mu.Unlock()
	if r.vad != nil {
		r.vad.Process(data)
	}
}

// Stop ends the session, writes the WAV and, when transcription is enabled,
// blocks through transcribe + paste before returning the transcript.
// Stopping while idle is a logged no-op.
func (r *Recorder) Stop(ctx context.Context) string {
	logger := log.Component("recorder")

	r.mu.Lock()
	if !r.recording {
		r.mu.Unlock()
		logger.Warn().Msg("not recording, stop ignored")
		return ""
	}
	r.recording = false
	r.mu.Unlock()

	// Drain in-flight callbacks before touching the buffer.
	r.capture.Stop()
	r.capture.ClearCallback()
	beep.PlayEnd()

	r.mu.Lock()
	pcm := r.buf
	r.buf = nil
	r.mu.Unlock()

	seconds := float64(len(pcm)) / float64(audio.SampleRate*audio.BytesPerFrame)
	logger.Info().Float64("seconds", seconds).Msg("recording stopped")

	if r.vad != nil {
		total, speech := r.vad.Stats()
		if total > 0 && !r.vad.VoiceDetected() {
			logger.Warn().Int("frames", total).Msg("no voice detected in session")
		} else if total > 0 {
			logger.Debug().Int("speech_frames", speech).Int("frames", total).Msg("speech presence")
		}
	}

	if err := audio.WriteWAV(r.cfg.OutputPath, pcm); err != nil {
		logger.Error().Err(err).Str("file", r.cfg.OutputPath).Msg("failed to write wav")
		return ""
	}
	logger.Info().Str("file", r.cfg.OutputPath).Msg("recording saved")

	if !r.cfg.Transcribe || r.proc == nil {
		return ""
	}
	text, err := r.proc.Process(ctx, r.cfg.OutputPath)
	if err != nil {
		return ""
	}
	return text
}

// Toggle maps a hotkey state to start or stop. A state matching the current
// recording state is a no-op.
func (r *Recorder) Toggle(ctx context.Context, state bool) {
	if state {
		r.Start()
	} else {
		r.Stop(ctx)
	}
}
