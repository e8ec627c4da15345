package sim

import (
	"fmt"
	"math"
	"time"

	"github.com/san-kum/cardiosim/internal/ionic"
)

// Sample is one recorded point of a trajectory. Iion is evaluated at the
// recorded gates.
type Sample struct {
	Time  float64
	V     float64
	Gates ionic.Gates
	Iion  float64
	Stim  float64
}

// Metric accumulates a scalar over every step of a run.
type Metric interface {
	Name() string
	Observe(t, v float64, gates ionic.Gates)
	Value() float64
	Reset()
}

// Observer receives every recorded sample.
type Observer interface {
	OnSample(s Sample)
}

type Config struct {
	Dt       float64 // ms
	Duration float64 // ms

	// SampleEvery records every n-th step. The initial and final states are
	// always recorded. Zero means every step.
	SampleEvery int

	// ValidateState stops the run with ionic.ErrUnstable on NaN or Inf.
	ValidateState bool

	// CheckBand counts steps whose gates leave [ionic.BandLow, ionic.BandHigh].
	CheckBand bool
}

// Steps returns the number of steps needed to cover Duration.
func (c Config) Steps() int {
	return int(math.Floor(c.Duration/c.Dt + 1e-9))
}

func (c Config) validate() error {
	if err := ionic.ValidateStep(c.Dt); err != nil {
		return fmt.Errorf("dt=%g: %w", c.Dt, err)
	}
	if !(c.Duration > 0) || math.IsInf(c.Duration, 0) {
		return fmt.Errorf("duration must be positive, got %g", c.Duration)
	}
	if c.SampleEvery < 0 {
		return fmt.Errorf("sample interval must not be negative, got %d", c.SampleEvery)
	}
	if c.Steps() == 0 {
		return fmt.Errorf("duration %g is shorter than one step of %g", c.Duration, c.Dt)
	}
	return nil
}

type Result struct {
	Model     string
	Scheme    string
	GateNames []string
	Samples   []Sample
	Metrics   map[string]float64

	StepsTaken     int
	BandExcursions int
	Elapsed        time.Duration
}

// Final returns the last recorded sample.
func (r *Result) Final() Sample {
	return r.Samples[len(r.Samples)-1]
}

func (r *Result) Times() []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = s.Time
	}
	return out
}

func (r *Result) Voltages() []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = s.V
	}
	return out
}

// Gate returns the trajectory of gate i.
func (r *Result) Gate(i int) []float64 {
	out := make([]float64, len(r.Samples))
	for j, s := range r.Samples {
		out[j] = s.Gates[i]
	}
	return out
}
