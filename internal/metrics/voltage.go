package metrics

import (
	"math"

	"github.com/san-kum/cardiosim/internal/ionic"
)

// PeakVoltage tracks the maximum membrane potential of a run.
type PeakVoltage struct {
	name string
	max  float64
}

func NewPeakVoltage() *PeakVoltage {
	return &PeakVoltage{name: "peak_voltage", max: math.Inf(-1)}
}

func (p *PeakVoltage) Name() string { return p.name }

func (p *PeakVoltage) Observe(t, v float64, gates ionic.Gates) {
	if v > p.max {
		p.max = v
	}
}

func (p *PeakVoltage) Value() float64 { return p.max }
func (p *PeakVoltage) Reset()         { p.max = math.Inf(-1) }

// MinVoltage tracks the minimum membrane potential of a run.
type MinVoltage struct {
	name string
	min  float64
}

func NewMinVoltage() *MinVoltage {
	return &MinVoltage{name: "min_voltage", min: math.Inf(1)}
}

func (m *MinVoltage) Name() string { return m.name }

func (m *MinVoltage) Observe(t, v float64, gates ionic.Gates) {
	if v < m.min {
		m.min = v
	}
}

func (m *MinVoltage) Value() float64 { return m.min }
func (m *MinVoltage) Reset()         { m.min = math.Inf(1) }

// MaxUpstroke is the largest dV/dt (mV/ms) between consecutive steps.
type MaxUpstroke struct {
	name   string
	prevT  float64
	prevV  float64
	primed bool
	max    float64
}

func NewMaxUpstroke() *MaxUpstroke {
	return &MaxUpstroke{name: "max_dvdt"}
}

func (u *MaxUpstroke) Name() string { return u.name }

func (u *MaxUpstroke) Observe(t, v float64, gates ionic.Gates) {
	if u.primed && t > u.prevT {
		if d := (v - u.prevV) / (t - u.prevT); d > u.max {
			u.max = d
		}
	}
	u.prevT, u.prevV, u.primed = t, v, true
}

func (u *MaxUpstroke) Value() float64 { return u.max }

func (u *MaxUpstroke) Reset() {
	u.prevT, u.prevV, u.primed, u.max = 0, 0, false, 0
}
