package audio

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WriteWAV writes raw S16LE mono PCM at the canonical sample rate to path
// as a PCM WAV file, creating parent directories as needed.
func WriteWAV(path string, pcm []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating wav file: %w", err)
	}

	enc := wav.NewEncoder(f, SampleRate, BitsPerSample, Channels, 1)
	data := make([]int, len(pcm)/2)
	for i := range data {
		data[i] = int(int16(uint16(pcm[i*2]) | uint16(pcm[i*2+1])<<8))
	}
	buf := &gaudio.IntBuffer{
		Format:         &gaudio.Format{NumChannels: Channels, SampleRate: SampleRate},
		Data:           data,
		SourceBitDepth: BitsPerSample,
	}
	if err := enc.Write(buf); err != nil {
		enc.Close()
		f.Close()
		return fmt.Errorf("writing wav data: %w", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("finalizing wav: %w", err)
	}
	return f.Close()
}

// ReadWAVFloat32 decodes any PCM WAV into mono float32 samples in [-1, 1]
// at the canonical sample rate, downmixing and resampling as needed.
func ReadWAVFloat32(path string) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, errors.New("not a valid wav file")
	}
	pb, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decoding wav: %w", err)
	}
	if pb == nil || len(pb.Data) == 0 {
		return nil, nil
	}

	bitDepth := int(dec.BitDepth)
	if bitDepth == 0 {
		bitDepth = 16
	}
	samples := intToFloat32(pb.Data, bitDepth)

	channels := 1
	rate := SampleRate
	if pb.Format != nil {
		if pb.Format.NumChannels > 0 {
			channels = pb.Format.NumChannels
		}
		if pb.Format.SampleRate > 0 {
			rate = pb.Format.SampleRate
		}
	}
	if channels > 1 {
		samples = downmix(samples, channels)
	}
	if rate != SampleRate {
		samples = resampleLinear(samples, rate, SampleRate)
	}
	return samples, nil
}

func intToFloat32(data []int, bitDepth int) []float32 {
	out := make([]float32, len(data))
	scale := 1.0 / float64(int64(1)<<(bitDepth-1))
	for i, v := range data {
		s := float64(v) * scale
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		out[i] = float32(s)
	}
	return out
}

func downmix(in []float32, channels int) []float32 {
	frames := len(in) / channels
	out := make([]float32, frames)
	for i := 0; i < frames; i++ {
		sum := 0.0
		base := i * channels
		for c := 0; c < channels; c++ {
			sum += float64(in[base+c])
		}
		out[i] = float32(sum / float64(channels))
	}
	return out
}

func resampleLinear(in []float32, inRate, outRate int) []float32 {
	if inRate == outRate || len(in) == 0 {
		return in
	}
	ratio := float64(outRate) / float64(inRate)
	n := int(math.Ceil(float64(len(in)) * ratio))
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		src := float64(i) / ratio
		i0 := int(src)
		i1 := i0 + 1
		if i0 >= len(in) {
			out[i] = in[len(in)-1]
			continue
		}
		if i1 >= len(in) {
			out[i] = in[i0]
			continue
		}
		a := float32(src - float64(i0))
		out[i] = in[i0]*(1-a) + in[i1]*a
	}
	return out
}
