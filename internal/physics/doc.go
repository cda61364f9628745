// Package physics provides the vector field shared by the transmitter and the
// receiver.
//
// [Lorenz] is the Lorenz system rescaled to u = x/10, v = y/10, w = z/20 so
// that its trajectories fit a unit-ish amplitude range. The drive value d
// replaces u in the second and third equations:
//
//	u' = σ(v − u)
//	v' = r·d − v − 20·d·w
//	w' = 5·d·v − b·w
//
// Feeding d = u back in gives the autonomous transmitter ([SelfDriven]);
// feeding an external signal gives the receiver. Synchronization requires both
// ends to use identical [Params].
package physics
