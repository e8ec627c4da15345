package sim

import "math"

// Stimulus is an applied current density in uA/uF. Positive values
// depolarize the membrane.
type Stimulus interface {
	Current(t float64) float64
}

type NoStimulus struct{}

func (NoStimulus) Current(float64) float64 { return 0 }

// PulseTrain applies rectangular pulses of Amplitude lasting Duration ms,
// the first at Start. Period <= 0 gives a single pulse.
type PulseTrain struct {
	Amplitude float64
	Start     float64
	Duration  float64
	Period    float64
}

func (p PulseTrain) Current(t float64) float64 {
	if t < p.Start {
		return 0
	}
	dt := t - p.Start
	if p.Period > 0 {
		dt = math.Mod(dt, p.Period)
	}
	if dt < p.Duration {
		return p.Amplitude
	}
	return 0
}
