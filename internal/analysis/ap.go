package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// APResult summarises one action potential. Voltages are in mV, times in ms.
type APResult struct {
	Rest     float64 `json:"rest"`
	Peak     float64 `json:"peak"`
	PeakTime float64 `json:"peak_time"`
	Trough   float64 `json:"trough"`

	MaxUpstroke  float64 `json:"max_dvdt"`
	UpstrokeTime float64 `json:"upstroke_time"`

	Level              float64 `json:"level"`
	RepolarizationTime float64 `json:"repolarization_time"`
	APD                float64 `json:"apd"`

	// Fired is set when the peak overshoots 0 mV.
	Fired       bool `json:"fired"`
	Repolarized bool `json:"repolarized"`
}

// AnalyzeActionPotential measures the action potential in voltages. The
// first sample is taken as the rest level. APD and RepolarizationTime are
// NaN if V never falls back to the level.
func AnalyzeActionPotential(times, voltages []float64, level float64) (APResult, error) {
	n := len(voltages)
	if n < 2 || len(times) != n {
		return APResult{}, fmt.Errorf("%w: %d times, %d voltages", ErrShortSeries, len(times), n)
	}
	if !(level > 0 && level < 1) {
		return APResult{}, fmt.Errorf("%w: got %g", ErrBadLevel, level)
	}

	res := APResult{
		Rest:               voltages[0],
		Level:              level,
		RepolarizationTime: math.NaN(),
		APD:                math.NaN(),
	}

	peakIdx := floats.MaxIdx(voltages)
	res.Peak = voltages[peakIdx]
	res.PeakTime = times[peakIdx]
	res.Trough = floats.Min(voltages)
	res.Fired = res.Peak > 0

	dv := make([]float64, n-1)
	dt := make([]float64, n-1)
	floats.SubTo(dv, voltages[1:], voltages[:n-1])
	floats.SubTo(dt, times[1:], times[:n-1])
	floats.DivTo(dv, dv, dt)

	up := floats.MaxIdx(dv)
	res.MaxUpstroke = dv[up]
	res.UpstrokeTime = times[up+1]

	target := res.Peak - level*(res.Peak-res.Rest)
	for i := peakIdx + 1; i < n; i++ {
		if voltages[i] <= target {
			frac := (voltages[i-1] - target) / (voltages[i-1] - voltages[i])
			res.RepolarizationTime = times[i-1] + frac*(times[i]-times[i-1])
			res.APD = res.RepolarizationTime - res.UpstrokeTime
			res.Repolarized = true
			break
		}
	}
	return res, nil
}
