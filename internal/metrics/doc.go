// Package metrics provides streaming observables of a simulation run.
//
// Every metric implements sim.Metric and sees each step's (t, V, gates)
// once, in order. Metrics are stateful and must not be shared between
// concurrent runs.
package metrics

import "github.com/san-kum/cardiosim/internal/sim"

var (
	_ sim.Metric = (*PeakVoltage)(nil)
	_ sim.Metric = (*MinVoltage)(nil)
	_ sim.Metric = (*MaxUpstroke)(nil)
	_ sim.Metric = (*GateBand)(nil)
)

// Default returns the metrics attached to every experiment.
func Default() []sim.Metric {
	return []sim.Metric{
		NewPeakVoltage(),
		NewMinVoltage(),
		NewMaxUpstroke(),
		NewDefaultGateBand(),
	}
}
