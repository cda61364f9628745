// Package dynamo provides the core primitives shared by the transmitter and
// receiver of the masking scheme.
//
// The package defines the fundamental types for fixed-step integration of a
// three-dimensional driven system:
//
//   - [State]: named (u, v, w) phase-space position
//   - [Field]: vector field dX/dt = f(X, d) for a drive value d
//   - [Integrator]: one fixed step of a [Field]
//   - [Metric]: observer of per-step receiver output
//
// # Example
//
//	field := physics.NewLorenz(physics.DefaultParams())
//	integ := integrators.NewRK4()
//	next := integ.Step(field, s, drive, h)
//
// # Thread Safety
//
// All values are plain data and steps are pure functions. Transmitter and
// receiver instances built on top of them are NOT safe for concurrent use.
package dynamo
