package audio

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const pcmFormat = 1

// WAV reads and writes integer PCM WAV files. Multi-channel input is reduced
// to its first channel; output is always mono at BitDepth bits.
type WAV struct {
	BitDepth int
}

func NewWAV(bitDepth int) *WAV {
	if bitDepth <= 0 {
		bitDepth = DefaultBitDepth
	}
	return &WAV{BitDepth: bitDepth}
}

func (w *WAV) Load(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidWAV, path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidWAV, path, err)
	}

	channels := 1
	rate := int(dec.SampleRate)
	if buf.Format != nil {
		if buf.Format.NumChannels > 0 {
			channels = buf.Format.NumChannels
		}
		if buf.Format.SampleRate > 0 {
			rate = buf.Format.SampleRate
		}
	}
	depth := buf.SourceBitDepth
	if depth == 0 {
		depth = int(dec.BitDepth)
	}
	if !supportedDepth(depth) || rate <= 0 {
		return nil, fmt.Errorf("%w: %s: bit depth %d, sample rate %d", ErrInvalidWAV, path, depth, rate)
	}

	scale := fullScale(depth)
	offset := pcmOffset(depth)
	frames := len(buf.Data) / channels
	samples := make([]float64, frames)
	for i := range samples {
		samples[i] = clamp(float64(buf.Data[i*channels]-offset) / scale)
	}

	return &Clip{Samples: samples, SampleRate: rate}, nil
}

// Save writes c as mono PCM. Samples outside [-1, 1] are clipped.
func (w *WAV) Save(path string, c *Clip) error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("save audio %s: invalid sample rate %d", path, c.SampleRate)
	}

	depth := w.BitDepth
	if !supportedDepth(depth) {
		return fmt.Errorf("save audio %s: unsupported bit depth %d", path, depth)
	}
	scale := fullScale(depth)
	offset := pcmOffset(depth)
	data := make([]int, len(c.Samples))
	for i, s := range c.Samples {
		data[i] = int(math.Round(clamp(s)*scale)) + offset
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create audio: %w", err)
	}
	defer os.Remove(tmp.Name())

	enc := wav.NewEncoder(tmp, c.SampleRate, depth, 1, pcmFormat)
	err = enc.Write(&goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: c.SampleRate},
		Data:           data,
		SourceBitDepth: depth,
	})
	if err == nil {
		err = enc.Close()
	}
	if err == nil {
		err = tmp.Chmod(0o644)
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write audio %s: %w", path, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write audio %s: %w", path, err)
	}
	return nil
}

func supportedDepth(depth int) bool {
	switch depth {
	case 8, 16, 24, 32:
		return true
	}
	return false
}

// pcmOffset is the stored value of silence: 8-bit PCM is unsigned.
func pcmOffset(depth int) int {
	if depth == 8 {
		return 128
	}
	return 0
}

// fullScale is the magnitude mapped to 1.0 at the given bit depth.
func fullScale(depth int) float64 {
	return float64(int64(1)<<(depth-1)) - 1
}

func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v > 1:
		return 1
	case v < -1:
		return -1
	}
	return v
}
