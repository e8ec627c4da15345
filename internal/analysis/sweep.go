package analysis

import (
	"fmt"

	"github.com/san-kum/cardiosim/internal/ionic"
)

// SweepPoint is the resting potential for one parameter value.
type SweepPoint struct {
	Value float64
	Rest  float64
}

// Builder constructs a model with the given parameter overrides.
type Builder func(overrides map[string]float64) (ionic.Model, error)

// RestingSweep varies param over [min, max] in steps values and solves for
// the resting potential in [lo, hi] at each one.
func RestingSweep(build Builder, param string, min, max float64, steps int, lo, hi float64) ([]SweepPoint, error) {
	if steps < 2 {
		steps = 2
	}
	step := (max - min) / float64(steps-1)

	points := make([]SweepPoint, 0, steps)
	for i := 0; i < steps; i++ {
		value := min + float64(i)*step
		m, err := build(map[string]float64{param: value})
		if err != nil {
			return points, fmt.Errorf("%s=%g: %w", param, value, err)
		}

		rest, err := RestingPotential(m, lo, hi, 1e-9)
		if err != nil {
			return points, fmt.Errorf("%s=%g: %w", param, value, err)
		}
		points = append(points, SweepPoint{Value: value, Rest: rest})
	}
	return points, nil
}
