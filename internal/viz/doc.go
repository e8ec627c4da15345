// Package viz provides a terminal monitor for a single membrane patch.
//
// [Monitor] is a Bubble Tea model that advances one cell a few steps per
// frame and shows the membrane voltage, the total ionic current, every gate
// value and the simulated time. It draws no plots.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Reset to the initial state
//	S     - Switch between Euler and Rush-Larsen gating
//	Q     - Quit
//
// A run that produces NaN or Inf stops and reports the divergence instead of
// printing meaningless numbers.
package viz
