package dynamo

import (
	"fmt"
	"math"
)

// State is a position (u, v, w) in phase space.
type State struct {
	U, V, W float64
}

func (s State) IsValid() bool {
	for _, v := range [3]float64{s.U, s.V, s.W} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	return math.Sqrt(s.U*s.U + s.V*s.V + s.W*s.W)
}

func (s State) Add(other State) State {
	return State{s.U + other.U, s.V + other.V, s.W + other.W}
}

func (s State) Sub(other State) State {
	return State{s.U - other.U, s.V - other.V, s.W - other.W}
}

func (s State) Scale(factor float64) State {
	return State{s.U * factor, s.V * factor, s.W * factor}
}

func (s State) String() string {
	return fmt.Sprintf("(%.6g, %.6g, %.6g)", s.U, s.V, s.W)
}

// Field is a vector field evaluated at s with drive value d.
type Field interface {
	Derive(s State, d float64) State
}

type Integrator interface {
	Step(f Field, s State, d, h float64) State
}

// Metric observes the receiver after every step.
type Metric interface {
	Name() string
	Observe(step int, s State, residual float64)
	Value() float64
	Reset()
}
