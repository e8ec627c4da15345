package integrators

import (
	"fmt"

	"github.com/san-kum/cardiosim/internal/ionic"
)

// DefaultCapacitance is the membrane capacitance in uF/cm^2.
const DefaultCapacitance = 1.0

// step evaluates the ionic current at the pre-step gates, advances the gates
// with s and returns V + dt/C * (stim - Iion).
func step(m ionic.Model, v float64, gates ionic.Gates, stim, dt, c float64, s ionic.Scheme) float64 {
	if c == 0 {
		c = DefaultCapacitance
	}
	iion := m.IonicCurrent(v, gates)
	m.IntegrateStep(v, dt, gates, s)
	return v + dt/c*(stim-iion)
}

// New returns the integrator for scheme s.
func New(s ionic.Scheme) (ionic.Integrator, error) {
	switch s {
	case ionic.Euler:
		return NewEuler(), nil
	case ionic.RushLarsen:
		return NewRushLarsen(), nil
	}
	return nil, fmt.Errorf("%w: %v", ionic.ErrUnknownScheme, s)
}

// WithCapacitance returns an integrator for s using membrane capacitance c.
func WithCapacitance(s ionic.Scheme, c float64) (ionic.Integrator, error) {
	if !(c > 0) {
		return nil, &ionic.InvalidParameterError{Param: "capacitance", Value: c, Reason: "must be positive"}
	}
	switch s {
	case ionic.Euler:
		return &Euler{Capacitance: c}, nil
	case ionic.RushLarsen:
		return &RushLarsen{Capacitance: c}, nil
	}
	return nil, fmt.Errorf("%w: %v", ionic.ErrUnknownScheme, s)
}
