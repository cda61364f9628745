package integrators

import "github.com/san-kum/chaoscrypt/internal/dynamo"

// RK4 is the classic fourth-order Runge-Kutta scheme with a fixed step.
// The drive value is held constant across the four stage evaluations.
type RK4 struct{}

func NewRK4() *RK4 {
	return &RK4{}
}

func (RK4) Step(f dynamo.Field, s dynamo.State, d, h float64) dynamo.State {
	k1 := f.Derive(s, d)
	k2 := f.Derive(stage(s, k1, h/2), d)
	k3 := f.Derive(stage(s, k2, h/2), d)
	k4 := f.Derive(stage(s, k3, h), d)

	return dynamo.State{
		U: s.U + h*(k1.U+2*k2.U+2*k3.U+k4.U)/6.0,
		V: s.V + h*(k1.V+2*k2.V+2*k3.V+k4.V)/6.0,
		W: s.W + h*(k1.W+2*k2.W+2*k3.W+k4.W)/6.0,
	}
}

func stage(s, k dynamo.State, dt float64) dynamo.State {
	return dynamo.State{U: s.U + dt*k.U, V: s.V + dt*k.V, W: s.W + dt*k.W}
}
