// Package analysis provides tools for judging a masked transmission and its
// recovery.
//
//   - [LyapunovExponent]: largest (conditional) Lyapunov exponent of a field
//     under a given drive; negative means two receivers fed the same signal
//     converge, which is what makes recovery possible
//   - [MeanAbsError], [SNR]: distance between a message and its recovery
//   - [PowerSpectrum], [DominantFrequency]: spectral view of a clip
//
// # Synchronization Check
//
//	lambda := analysis.LyapunovExponent(rx, integ, x0, signal, h, 1e-8)
//	if lambda < 0 {
//	    // receiver synchronizes to this drive
//	}
package analysis
