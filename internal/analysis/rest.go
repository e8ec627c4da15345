package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/cardiosim/internal/ionic"
)

var (
	ErrNoBracket   = errors.New("analysis: steady-state current does not change sign on interval")
	ErrShortSeries = errors.New("analysis: series too short")
	ErrBadLevel    = errors.New("analysis: repolarisation level must be in (0, 1)")
)

const maxBisections = 200

// SteadyStateCurrent returns Iion(v, gates_inf(v)).
func SteadyStateCurrent(m ionic.Model, v float64) float64 {
	g := ionic.NewGates(m)
	m.InitializeSteadyState(v, g)
	return m.IonicCurrent(v, g)
}

// RestingPotential finds V in [lo, hi] with zero steady-state current. The
// current must change sign on the interval.
func RestingPotential(m ionic.Model, lo, hi, tol float64) (float64, error) {
	if lo > hi {
		lo, hi = hi, lo
	}
	if !(tol > 0) {
		tol = 1e-10
	}

	g := ionic.NewGates(m)
	current := func(v float64) float64 {
		m.InitializeSteadyState(v, g)
		return m.IonicCurrent(v, g)
	}

	flo, fhi := current(lo), current(hi)
	switch {
	case flo == 0:
		return lo, nil
	case fhi == 0:
		return hi, nil
	case math.IsNaN(flo) || math.IsNaN(fhi) || math.Signbit(flo) == math.Signbit(fhi):
		return 0, fmt.Errorf("%w: I(%g)=%g, I(%g)=%g", ErrNoBracket, lo, flo, hi, fhi)
	}

	for i := 0; i < maxBisections && hi-lo > tol; i++ {
		mid := lo + (hi-lo)/2
		fm := current(mid)
		if fm == 0 {
			return mid, nil
		}
		if math.Signbit(fm) == math.Signbit(flo) {
			lo, flo = mid, fm
		} else {
			hi = mid
		}
	}
	return lo + (hi-lo)/2, nil
}
