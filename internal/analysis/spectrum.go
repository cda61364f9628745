package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns the magnitude of the first half of the DFT of x.
func PowerSpectrum(x []float64) []float64 {
	if len(x) < 2 {
		return nil
	}
	spectrum := fft.FFTReal(x)
	ps := make([]float64, len(spectrum)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantFrequency returns the frequency in Hz of the strongest non-DC bin.
func DominantFrequency(x []float64, sampleRate float64) float64 {
	ps := PowerSpectrum(x)
	if len(ps) < 2 {
		return 0
	}

	maxIdx := 1
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[maxIdx] {
			maxIdx = i
		}
	}
	return float64(maxIdx) * sampleRate / float64(len(x))
}
