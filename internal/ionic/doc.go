// Package ionic provides the core primitives for excitable-membrane models.
//
// A single cell is described by a transmembrane voltage V and a vector of
// gating variables obeying first-order kinetics:
//
//	dV/dt = -Iion(V, gates) / C
//	dy/dt = alpha(V)*(1-y) - beta(V)*y = (yInf(V) - y) / tau(V)
//
// The package defines:
//
//   - [Gates]: gating state, one fraction per gate
//   - [Model]: capability contract of an ionic model (steady state, total
//     ionic current, one-step gating update)
//   - [Kinetics]: frozen-voltage kinetics of one gate in either
//     alpha/beta or steady-state/time-constant form
//   - [Scheme]: gating update scheme, explicit Euler or Rush-Larsen
//   - [Integrator]: couples the gating update with the voltage update
//   - [Cell]: a (V, gates) pair owned by a simulation driver
//
// # Example
//
//	m := bernus.New()
//	cell := ionic.NewCellAt(m, -60)
//	integ := integrators.NewRushLarsen()
//	for i := 0; i < 1000; i++ {
//	    cell.V = integ.Step(m, cell.V, cell.Gates, 0, 0.05)
//	}
//
// # Thread Safety
//
// Models are immutable after construction and may be shared between
// goroutines. Gates and Cell values are not synchronized; each driver
// owns its own cells.
package ionic
