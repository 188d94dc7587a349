// Package audio abstracts microphone capture behind a small Context /
// CaptureDevice pair with per-platform backends, and owns the canonical
// recording format: signed 16-bit little-endian PCM, mono, 16 kHz.
package audio

import "strings"

// Canonical capture format. Everything downstream (VAD, WAV files, the
// transcription engine) assumes these values.
const (
	SampleRate    = 16000
	Channels      = 1
	BitsPerSample = 16
	BytesPerFrame = Channels * BitsPerSample / 8
)

const WAVHeaderSize = 44

var btKeywords = []string{
	"airpods", "beats", "bose", "wh-1000", "wf-1000",
	"sony wh-", "sony wf-",
	"jabra", "galaxy buds", "pixel buds", "powerbeats",
	"jbl ", "sennheiser momentum", "plantronics",
	"tozo", "anker soundcore", "skullcandy",
	"bluetooth", " bt ", " bt)", " bt]",
}

// IsBluetooth guesses from the device name whether a capture device is a
// bluetooth headset, which typically records at phone-call quality.
func IsBluetooth(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range btKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

type DataCallback func(data []byte, frameCount uint32)

type CaptureConfig struct {
	SampleRate uint32
	Channels   uint32
}

// DefaultConfig returns the canonical capture format.
func DefaultConfig() CaptureConfig {
	return CaptureConfig{SampleRate: SampleRate, Channels: Channels}
}

type DeviceInfo struct {
	ID   string // opaque platform-specific identifier
	Name string
}

type Context interface {
	Devices() ([]DeviceInfo, error)
	NewCapture(device *DeviceInfo, config CaptureConfig) (CaptureDevice, error)
	Close()
}

type CaptureDevice interface {
	Start() error
	Stop()
	Close()
	SetCallback(cb DataCallback)
	ClearCallback()
}
