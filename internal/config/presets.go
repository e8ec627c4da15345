package config

import (
	"sort"

	"github.com/san-kum/cardiosim/internal/bernus"
)

var Presets = map[string]map[string]*Config{
	bernus.Name: {
		"rest": {
			Model: bernus.Name, Scheme: "rush_larsen", Dt: 0.01, Duration: 100.0,
			Capacitance: 1, SampleEvery: 10, ValidateState: true,
		},
		// V0 = -60 mV with gates at steady state, checked against a
		// reference trajectory at t = 5 ms.
		"regression": {
			Model: bernus.Name, Scheme: "euler", Dt: 0.0005, Duration: 5.0,
			InitialVoltage: Float(-60), Capacitance: 1, SampleEvery: 100, ValidateState: true,
		},
		"coarse": {
			Model: bernus.Name, Scheme: "rush_larsen", Dt: 0.05, Duration: 500.0,
			InitialVoltage: Float(-60), Capacitance: 1, SampleEvery: 10, ValidateState: true,
		},
		"clamp": {
			Model: bernus.Name, Scheme: "rush_larsen", Dt: 0.006, Duration: 3.0,
			InitialVoltage: Float(-20), Capacitance: 1, SampleEvery: 1, ValidateState: true,
		},
		"paced": {
			Model: bernus.Name, Scheme: "rush_larsen", Dt: 0.01, Duration: 3000.0,
			Capacitance: 1, SampleEvery: 20, ValidateState: true,
			Stimulus: StimulusConfig{Amplitude: 60, Start: 10, Duration: 1, Period: 1000},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
