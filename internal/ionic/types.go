package ionic

import (
	"fmt"
	"math"
	"strings"
)

// Gates holds one value per gating variable, each conceptually in [0, 1].
type Gates []float64

func (g Gates) Clone() Gates {
	c := make(Gates, len(g))
	copy(c, g)
	return c
}

func (g Gates) IsValid() bool {
	for _, v := range g {
		if isNonFinite(v) {
			return false
		}
	}
	return true
}

// InBand reports whether every gate lies in [lo, hi].
func (g Gates) InBand(lo, hi float64) bool {
	for _, v := range g {
		if v < lo || v > hi {
			return false
		}
	}
	return true
}

// Scheme selects how gating variables are advanced over one step.
type Scheme int

const (
	// Euler is the explicit forward Euler update y += dt*dy/dt.
	Euler Scheme = iota
	// RushLarsen is the exponential update exact for frozen voltage.
	RushLarsen
)

func (s Scheme) String() string {
	switch s {
	case Euler:
		return "euler"
	case RushLarsen:
		return "rush_larsen"
	default:
		return fmt.Sprintf("scheme(%d)", int(s))
	}
}

// ParseScheme accepts "euler", "rush_larsen", "rush-larsen" and "rl".
func ParseScheme(name string) (Scheme, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "euler", "fe":
		return Euler, nil
	case "rush_larsen", "rush-larsen", "rushlarsen", "rl":
		return RushLarsen, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownScheme, name)
}

// Schemes lists the available gating schemes.
func Schemes() []Scheme {
	return []Scheme{Euler, RushLarsen}
}

// Model is the capability contract of an excitable-membrane model. Models
// hold only immutable parameters; gates are owned by the caller and passed
// by reference.
type Model interface {
	Name() string
	GateCount() int
	GateNames() []string
	GateIndex(name string) (int, error)

	// RestingPotential is the documented default initialisation voltage in mV.
	RestingPotential() float64

	// InitializeSteadyState sets every gate to its steady state at v.
	InitializeSteadyState(v float64, gates Gates)

	// IonicCurrent returns the total ionic current at (v, gates). It does
	// not modify gates.
	IonicCurrent(v float64, gates Gates) float64

	// Kinetics fills out with the frozen-voltage kinetics of every gate.
	Kinetics(v float64, out []Kinetics)

	// GatingDerivative fills out with dy/dt for every gate.
	GatingDerivative(v float64, gates, out Gates)

	// IntegrateStep advances gates in place by dt at fixed voltage v.
	IntegrateStep(v, dt float64, gates Gates, s Scheme)
}

// CurrentReporter is implemented by models that expose the individual
// currents making up the total ionic current.
type CurrentReporter interface {
	CurrentNames() []string
	Currents(v float64, gates Gates, out []float64)
}

// Configurable is implemented by models whose parameters can be listed by name.
type Configurable interface {
	Params() map[string]float64
}

// Integrator advances a (V, gates) pair by one step of length dt. stim is an
// applied current density; positive values depolarize. Gates are mutated in
// place and the new voltage is returned.
type Integrator interface {
	Scheme() Scheme
	Step(m Model, v float64, gates Gates, stim, dt float64) float64
}

// NewGates allocates a zeroed gate vector sized for m.
func NewGates(m Model) Gates {
	return make(Gates, m.GateCount())
}

func isNonFinite(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

// ValidateStep rejects non-positive or non-finite time steps.
func ValidateStep(dt float64) error {
	if !(dt > 0) || math.IsInf(dt, 1) {
		return ErrInvalidStep
	}
	return nil
}
