package physics

import (
	"fmt"
	"sort"

	"github.com/san-kum/chaoscrypt/internal/dynamo"
)

// Params are the coefficients of the vector field.
type Params struct {
	R     float64
	Sigma float64
	B     float64
}

func DefaultParams() Params {
	return Params{R: 60.0, Sigma: 10.0, B: 8.0 / 3.0}
}

func (p Params) Map() map[string]float64 {
	return map[string]float64{"r": p.R, "sigma": p.Sigma, "b": p.B}
}

// Set assigns one coefficient by name.
func (p *Params) Set(name string, v float64) error {
	switch name {
	case "r":
		p.R = v
	case "sigma":
		p.Sigma = v
	case "b":
		p.B = v
	default:
		names := make([]string, 0, 3)
		for n := range p.Map() {
			names = append(names, n)
		}
		sort.Strings(names)
		return fmt.Errorf("unknown parameter %q (available: %v)", name, names)
	}
	return nil
}

type Lorenz struct{ p Params }

func NewLorenz(p Params) *Lorenz { return &Lorenz{p: p} }

func (l *Lorenz) Params() Params { return l.p }

// Derive evaluates the field at s with drive d.
func (l *Lorenz) Derive(s dynamo.State, d float64) dynamo.State {
	return dynamo.State{
		U: l.p.Sigma * (s.V - s.U),
		V: l.p.R*d - s.V - 20*d*s.W,
		W: 5*d*s.V - l.p.B*s.W,
	}
}

type selfDriven struct{ f dynamo.Field }

// SelfDriven returns a field that ignores its drive argument and feeds the
// state's own u coordinate back in, at every stage evaluation.
func SelfDriven(f dynamo.Field) dynamo.Field { return selfDriven{f: f} }

func (s selfDriven) Derive(x dynamo.State, _ float64) dynamo.State {
	return s.f.Derive(x, x.U)
}
