package integrators

import "github.com/san-kum/cardiosim/internal/ionic"

// RushLarsen advances gates with the exponential update
//
//	y' = inf + (y - inf) * exp(-dt/tau)
//
// which is exact for frozen voltage and stable for any dt. The voltage
// update stays explicit Euler, so the coupled scheme is first order.
type RushLarsen struct {
	Capacitance float64
}

func NewRushLarsen() *RushLarsen {
	return &RushLarsen{Capacitance: DefaultCapacitance}
}

func (r *RushLarsen) Scheme() ionic.Scheme { return ionic.RushLarsen }

func (r *RushLarsen) Step(m ionic.Model, v float64, gates ionic.Gates, stim, dt float64) float64 {
	return step(m, v, gates, stim, dt, r.Capacitance, ionic.RushLarsen)
}
