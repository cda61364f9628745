package analysis

import (
	"math"

	"github.com/san-kum/chaoscrypt/internal/dynamo"
)

// LyapunovExponent estimates the largest Lyapunov exponent of f driven by
// drive, using two trajectories renormalized to the initial separation after
// every step. For a self-driven field the drive values are ignored and the
// result is the ordinary exponent; a positive value indicates chaos.
func LyapunovExponent(
	f dynamo.Field,
	integ dynamo.Integrator,
	x0 dynamo.State,
	drive []float64,
	h, perturbation float64,
) float64 {
	if len(drive) == 0 || perturbation <= 0 || h <= 0 {
		return 0
	}

	// perturb along the diagonal so no coordinate subspace is missed
	d0 := perturbation
	k := d0 / math.Sqrt(3)
	x := x0
	xp := x0.Add(dynamo.State{U: k, V: k, W: k})

	sumLog := 0.0
	count := 0

	for _, d := range drive {
		x = integ.Step(f, x, d, h)
		xp = integ.Step(f, xp, d, h)

		sep := xp.Sub(x).Norm()
		if sep == 0 || math.IsNaN(sep) || math.IsInf(sep, 0) {
			break
		}
		sumLog += math.Log(sep / d0)
		count++

		xp = x.Add(xp.Sub(x).Scale(d0 / sep))
	}

	if count == 0 {
		return 0
	}
	return sumLog / (float64(count) * h)
}
