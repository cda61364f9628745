package metrics

import (
	"math"

	"github.com/san-kum/chaoscrypt/internal/dynamo"
)

// SyncResidual is the RMS residual over steps [from, to). With matching
// parameters the receiver's residual shrinks toward zero during the grace
// phase, so a large value signals a parameter mismatch.
type SyncResidual struct {
	name     string
	from, to int
	sumSq    float64
	samples  int
}

func NewSyncResidual(from, to int) *SyncResidual {
	return &SyncResidual{
		name: "sync_residual_rms",
		from: from,
		to:   to,
	}
}

func (s *SyncResidual) Name() string { return s.name }

func (s *SyncResidual) Observe(step int, _ dynamo.State, residual float64) {
	if step < s.from || step >= s.to {
		return
	}
	s.sumSq += residual * residual
	s.samples++
}

func (s *SyncResidual) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return math.Sqrt(s.sumSq / float64(s.samples))
}

func (s *SyncResidual) Reset() {
	s.sumSq = 0
	s.samples = 0
}

// Excursion tracks the largest |u|, |v| or |w| the receiver visits.
type Excursion struct {
	name string
	max  float64
}

func NewExcursion() *Excursion {
	return &Excursion{name: "max_excursion"}
}

func (e *Excursion) Name() string { return e.name }

func (e *Excursion) Observe(_ int, x dynamo.State, _ float64) {
	for _, v := range [3]float64{x.U, x.V, x.W} {
		if a := math.Abs(v); a > e.max {
			e.max = a
		}
	}
}

func (e *Excursion) Value() float64 { return e.max }

func (e *Excursion) Reset() { e.max = 0 }
