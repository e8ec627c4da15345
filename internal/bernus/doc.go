// Package bernus implements the Bernus ventricular membrane model.
//
// The model has five gating variables (m, v, f, to, x) and nine currents:
// fast sodium, L-type calcium, transient outward, delayed rectifier and
// inward rectifier potassium, calcium and sodium background leaks, the Na/K
// pump and the Na/Ca exchanger.
//
// # Rate Functions
//
// The rate functions in rates.go are pure functions of voltage (and of fixed
// concentrations where noted). The m, f and to gates are given by opening and
// closing rates; v and x are given by a steady state and a time constant.
// Removable singularities are evaluated through their analytic limits:
//
//	alpha_m at V = -47.13 mV   -> 3.2 ms^-1
//	tau_v   for large V       -> 0.25 ms
//
// # Example
//
//	m := bernus.New()
//	cell := ionic.NewCellAt(m, -60)
//	rl := integrators.NewRushLarsen()
//	for i := 0; i < 1000; i++ {
//	    cell.Step(rl, 0, 0.005)
//	}
//
// # Thread Safety
//
// A *Model holds only immutable parameters and derived equilibrium
// potentials. It can be shared by any number of goroutines, each driving its
// own gate vector.
package bernus
