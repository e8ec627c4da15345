// Package analysis provides post-processing tools for membrane models.
//
//   - [RestingPotential]: zero-current potential with gates at steady state
//   - [RestingSweep]: resting potential as one parameter varies
//   - [AnalyzeActionPotential]: peak, upstroke and action potential duration
//   - [ProbeKinetics]: gate kinetics tabulated over a voltage range
//
// # Resting Potential
//
// The steady-state current I(V) = Iion(V, gates_inf(V)) is bracketed and
// bisected:
//
//	v, err := analysis.RestingPotential(bernus.New(), -100, -80, 1e-10)
//
// # Action Potential Duration
//
// APD at level x is measured from the time of maximum dV/dt to the first
// time after the peak at which V falls to peak - x*(peak - rest).
package analysis
