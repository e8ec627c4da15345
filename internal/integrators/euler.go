package integrators

import "github.com/san-kum/cardiosim/internal/ionic"

// Euler advances gates with explicit Euler. It is conditionally stable: dt
// must stay well below the fastest gate time constant.
type Euler struct {
	Capacitance float64
}

func NewEuler() *Euler {
	return &Euler{Capacitance: DefaultCapacitance}
}

func (e *Euler) Scheme() ionic.Scheme { return ionic.Euler }

func (e *Euler) Step(m ionic.Model, v float64, gates ionic.Gates, stim, dt float64) float64 {
	return step(m, v, gates, stim, dt, e.Capacitance, ionic.Euler)
}
