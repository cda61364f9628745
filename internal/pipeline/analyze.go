package pipeline

import (
	"fmt"

	"github.com/san-kum/chaoscrypt/internal/analysis"
	"github.com/san-kum/chaoscrypt/internal/container"
	"github.com/san-kum/chaoscrypt/internal/dynamo"
	"github.com/san-kum/chaoscrypt/internal/integrators"
	"github.com/san-kum/chaoscrypt/internal/physics"
)

// Comparison describes how closely clip B matches reference clip A.
type Comparison struct {
	Samples      int
	MeanAbsError float64
	SNR          float64
	DominantA    float64
	DominantB    float64
}

func (p *Pipeline) Compare(a, b string) (*Comparison, error) {
	ref, err := p.codec.Load(a)
	if err != nil {
		return nil, err
	}
	est, err := p.codec.Load(b)
	if err != nil {
		return nil, err
	}
	if ref.SampleRate != est.SampleRate {
		p.log.Warn("sample rates differ; comparing sample by sample anyway")
	}

	return &Comparison{
		Samples:      min(len(ref.Samples), len(est.Samples)),
		MeanAbsError: analysis.MeanAbsError(ref.Samples, est.Samples),
		SNR:          analysis.SNR(ref.Samples, est.Samples),
		DominantA:    analysis.DominantFrequency(ref.Samples, float64(ref.SampleRate)),
		DominantB:    analysis.DominantFrequency(est.Samples, float64(est.SampleRate)),
	}, nil
}

// SyncExponent estimates the conditional Lyapunov exponent of a receiver
// using this pipeline's system coefficients, driven by the first n samples of
// rec. A negative value means receivers converge on this drive.
func (p *Pipeline) SyncExponent(rec *container.Record, n int) (float64, error) {
	if !(rec.Frequency > 0) {
		return 0, fmt.Errorf("%w: sampling frequency must be positive", container.ErrMalformed)
	}
	if n <= 0 || n > len(rec.Signal) {
		n = len(rec.Signal)
	}

	if n == 0 {
		return 0, nil
	}

	rx := physics.NewLorenz(p.cfg.Params())
	start := dynamo.State{U: rec.Signal[0]}
	return analysis.LyapunovExponent(rx, integrators.NewRK4(), start, rec.Signal[:n], 1/rec.Frequency, 1e-8), nil
}
