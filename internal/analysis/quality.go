package analysis

import "math"

// MeanAbsError compares the common prefix of a and b.
func MeanAbsError(a, b []float64) float64 {
	n := min(len(a), len(b))
	if n == 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += math.Abs(a[i] - b[i])
	}
	return sum / float64(n)
}

// SNR is the signal-to-noise ratio in dB of estimate against reference over
// their common prefix. A perfect estimate gives +Inf.
func SNR(reference, estimate []float64) float64 {
	n := min(len(reference), len(estimate))
	signal, noise := 0.0, 0.0
	for i := 0; i < n; i++ {
		signal += reference[i] * reference[i]
		e := reference[i] - estimate[i]
		noise += e * e
	}
	if noise == 0 {
		return math.Inf(1)
	}
	if signal == 0 {
		return math.Inf(-1)
	}
	return 10 * math.Log10(signal/noise)
}
