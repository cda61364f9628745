// Package conditioner turns per-step sequences into audio-rate clips.
//
// Both directions drop the grace prefix and keep every ratio-th sample after
// it. [Encode] then always scales to full range; [Decode] only scales down
// when the peak would clip, so a quiet recovered message keeps its level.
package conditioner

import "math"

// Encode conditions a composite signal for playback.
func Encode(signal []float64, skip, ratio int) []float64 {
	return Normalize(Decimate(signal, skip, ratio))
}

// Decode conditions a recovered residual for playback.
func Decode(residual []float64, skip, ratio int) []float64 {
	return Limit(Decimate(residual, skip, ratio))
}

// Decimate drops the first skip samples and keeps every ratio-th sample of
// the remainder, starting with the first. A ratio below 1 is treated as 1.
func Decimate(x []float64, skip, ratio int) []float64 {
	if ratio < 1 {
		ratio = 1
	}
	if skip < 0 {
		skip = 0
	}
	if skip >= len(x) {
		return []float64{}
	}

	rest := x[skip:]
	out := make([]float64, 0, (len(rest)+ratio-1)/ratio)
	for i := 0; i < len(rest); i += ratio {
		out = append(out, rest[i])
	}
	return out
}

// Peak is the largest absolute value in x.
func Peak(x []float64) float64 {
	peak := 0.0
	for _, v := range x {
		peak = math.Max(peak, math.Abs(v))
	}
	return peak
}

// Normalize scales x in place to a peak magnitude of exactly 1. An all-zero
// signal is returned unchanged.
func Normalize(x []float64) []float64 {
	peak := Peak(x)
	if peak == 0 || math.IsInf(peak, 0) || math.IsNaN(peak) {
		return x
	}
	for i := range x {
		x[i] /= peak
	}
	return x
}

// Limit scales x in place to a peak of 1 only if its peak exceeds 1.
func Limit(x []float64) []float64 {
	if Peak(x) > 1 {
		return Normalize(x)
	}
	return x
}
