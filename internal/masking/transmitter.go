package masking

import (
	"context"
	"math/rand"

	"github.com/san-kum/chaoscrypt/internal/dynamo"
	"github.com/san-kum/chaoscrypt/internal/integrators"
	"github.com/san-kum/chaoscrypt/internal/physics"
)

// checkEvery is how many steps pass between context checks.
const checkEvery = 1 << 14

type Transmitter struct {
	cfg   Config
	field dynamo.Field
	integ dynamo.Integrator
	state dynamo.State
}

// NewTransmitter draws the private initial state from cfg.Seed.
func NewTransmitter(cfg Config) *Transmitter {
	return &Transmitter{
		cfg:   cfg,
		field: physics.SelfDriven(physics.NewLorenz(cfg.Params)),
		integ: integrators.NewRK4(),
		state: randomState(cfg.Seed),
	}
}

// Run integrates the grace phase and then the message phase, returning one
// composite sample per step. A Transmitter is single use: Run continues from
// wherever the previous call stopped.
func (t *Transmitter) Run(ctx context.Context, message []float64) ([]float64, error) {
	if err := t.cfg.Validate(); err != nil {
		return nil, err
	}

	h := t.cfg.StepSize()
	grace := t.cfg.GraceSteps()
	ratio := t.cfg.Ratio
	eps := t.cfg.Epsilon

	out := make([]float64, 0, t.cfg.SignalLength(len(message)))

	for i := 0; i < grace; i++ {
		if err := t.advance(ctx, len(out), h); err != nil {
			return nil, err
		}
		out = append(out, t.state.U)
	}

	for i := 0; i < len(message)*ratio; i++ {
		if err := t.advance(ctx, len(out), h); err != nil {
			return nil, err
		}
		if i%ratio == 0 {
			out = append(out, t.state.U+eps*message[i/ratio])
		} else {
			out = append(out, t.state.U)
		}
	}

	return out, nil
}

func (t *Transmitter) advance(ctx context.Context, step int, h float64) error {
	if step%checkEvery == 0 {
		if err := ctx.Err(); err != nil {
			return &dynamo.StepError{Step: step, State: t.state, Wrapped: dynamo.ErrCanceled}
		}
	}
	next := t.integ.Step(t.field, t.state, 0, h)
	if !next.IsValid() {
		return &dynamo.StepError{Step: step, State: t.state, Wrapped: dynamo.ErrUnstable}
	}
	t.state = next
	return nil
}

// randomState draws each coordinate uniformly from [-1, 1].
func randomState(seed int64) dynamo.State {
	rng := rand.New(rand.NewSource(seed))
	return dynamo.State{
		U: 2*rng.Float64() - 1,
		V: 2*rng.Float64() - 1,
		W: 2*rng.Float64() - 1,
	}
}
