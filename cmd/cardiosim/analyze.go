package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/cardiosim/internal/analysis"
	"github.com/san-kum/cardiosim/internal/experiment"
	"github.com/san-kum/cardiosim/internal/ionic"
)

func probeModel(cmd *cobra.Command, args []string) error {
	overrides, err := parseParams()
	if err != nil {
		return err
	}
	model, err := experiment.NewRegistry().Create(args[0], overrides)
	if err != nil {
		return err
	}

	rows, err := analysis.ProbeKinetics(model, probeMin, probeMax, probeN)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	if err := analysis.WriteKineticsCSV(w, model.GateNames(), rows); err != nil {
		return err
	}
	if outFile != "" {
		fmt.Fprintf(os.Stderr, "wrote %d rows to %s\n", len(rows), outFile)
	}
	return nil
}

func restingPotential(cmd *cobra.Command, args []string) error {
	overrides, err := parseParams()
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	if sweepParam != "" {
		return restingSweep(registry, args[0], overrides)
	}

	model, err := registry.Create(args[0], overrides)
	if err != nil {
		return err
	}

	rest, err := analysis.RestingPotential(model, restLo, restHi, 1e-10)
	if err != nil {
		return err
	}

	documented := model.RestingPotential()
	fmt.Printf("zero-current resting potential: %.8f mV\n", rest)
	fmt.Printf("default initial voltage:        %.3f mV (Iion = %.6f uA/uF)\n",
		documented, analysis.SteadyStateCurrent(model, documented))
	return nil
}

func restingSweep(registry *experiment.Registry, kind string, base map[string]float64) error {
	build := func(overrides map[string]float64) (ionic.Model, error) {
		merged := make(map[string]float64, len(base)+len(overrides))
		for k, v := range base {
			merged[k] = v
		}
		for k, v := range overrides {
			merged[k] = v
		}
		return registry.Create(kind, merged)
	}

	points, err := analysis.RestingSweep(build, sweepParam, sweepFrom, sweepTo, sweepSteps, restLo, restHi)
	if err != nil {
		return err
	}

	fmt.Printf("%-14s %s\n", sweepParam, "rest (mV)")
	for _, p := range points {
		fmt.Printf("%-14g %.6f\n", p.Value, p.Rest)
	}
	return nil
}
