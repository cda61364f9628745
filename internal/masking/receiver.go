package masking

import (
	"context"

	"github.com/san-kum/chaoscrypt/internal/dynamo"
	"github.com/san-kum/chaoscrypt/internal/integrators"
	"github.com/san-kum/chaoscrypt/internal/physics"
)

type Receiver struct {
	cfg     Config
	field   dynamo.Field
	integ   dynamo.Integrator
	state   dynamo.State
	metrics []dynamo.Metric
}

// NewReceiver draws the private initial state from cfg.Seed. Only Frequency,
// Epsilon and Params take part in recovery; Grace and Ratio matter to whoever
// consumes the residual.
func NewReceiver(cfg Config) *Receiver {
	return &Receiver{
		cfg:   cfg,
		field: physics.NewLorenz(cfg.Params),
		integ: integrators.NewRK4(),
		state: randomState(cfg.Seed),
	}
}

func (r *Receiver) AddMetric(m dynamo.Metric) { r.metrics = append(r.metrics, m) }

// Run drives the receiver with every sample of signal and returns the
// rescaled residual (s[i] − u)/ε, one value per sample. Only the residuals at
// the decimated positions after the grace prefix carry message content.
func (r *Receiver) Run(ctx context.Context, signal []float64) ([]float64, error) {
	if err := r.cfg.Validate(); err != nil {
		return nil, err
	}

	for _, m := range r.metrics {
		m.Reset()
	}

	h := r.cfg.StepSize()
	eps := r.cfg.Epsilon
	residual := make([]float64, len(signal))

	for i, s := range signal {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, &dynamo.StepError{Step: i, State: r.state, Wrapped: dynamo.ErrCanceled}
			}
		}

		next := r.integ.Step(r.field, r.state, s, h)
		if !next.IsValid() {
			return nil, &dynamo.StepError{Step: i, State: r.state, Wrapped: dynamo.ErrUnstable}
		}
		r.state = next

		residual[i] = (s - r.state.U) / eps
		for _, m := range r.metrics {
			m.Observe(i, r.state, residual[i])
		}
	}

	return residual, nil
}
