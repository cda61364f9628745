// Package audio is the boundary to audio files. The rest of the program only
// sees [Clip] values of real samples in [-1, 1] at a sample rate.
package audio

import "errors"

const (
	DefaultBitDepth = 16
)

// ErrInvalidWAV indicates a file that could not be decoded as PCM WAV.
var ErrInvalidWAV = errors.New("audio: not a valid PCM WAV file")

// Clip is a mono sequence of samples at SampleRate.
type Clip struct {
	Samples    []float64
	SampleRate int
}

// Codec loads and saves mono clips.
type Codec interface {
	Load(path string) (*Clip, error)
	Save(path string, c *Clip) error
}
