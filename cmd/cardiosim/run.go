package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/cardiosim/internal/analysis"
	"github.com/san-kum/cardiosim/internal/config"
	"github.com/san-kum/cardiosim/internal/experiment"
	"github.com/san-kum/cardiosim/internal/ionic"
	"github.com/san-kum/cardiosim/internal/sim"
	"github.com/san-kum/cardiosim/internal/storage"
	"github.com/san-kum/cardiosim/internal/viz"
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	st.SetLogger(logger)
	if err := st.Init(); err != nil {
		return err
	}

	exp := experiment.New(cfg, logger)
	if err := exp.Setup(experiment.NewRegistry()); err != nil {
		return err
	}

	fmt.Printf("running %s (%s, dt=%g ms, %g ms)...\n", cfg.Model, cfg.Scheme, cfg.Dt, cfg.Duration)

	result, err := exp.Run(cmd.Context())
	if err != nil {
		var serr *ionic.SimulationError
		if errors.As(err, &serr) {
			fmt.Printf("diverged after %d steps; try rush_larsen or a smaller dt\n", result.StepsTaken)
		}
		return err
	}

	runID, err := st.Save(storage.Metadata(cfg, exp.Cell(), result), result)
	if err != nil {
		return err
	}

	final := result.Final()
	fmt.Printf("completed in %v\n", result.Elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d (%d samples)\n", result.StepsTaken, len(result.Samples))
	fmt.Printf("final: t=%.4f ms  V=%.6f mV  Iion=%.6f uA/uF\n", final.Time, final.V, final.Iion)
	if result.BandExcursions > 0 {
		fmt.Printf("gates left [%g, %g] on %d steps\n", ionic.BandLow, ionic.BandHigh, result.BandExcursions)
	}
	printMetrics(result.Metrics)

	if ap, err := analysis.AnalyzeActionPotential(result.Times(), result.Voltages(), 0.9); err == nil && ap.Fired {
		printAP(ap)
	}
	return nil
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}

func printAP(ap analysis.APResult) {
	fmt.Println("\naction potential:")
	fmt.Printf("  peak: %.4f mV at %.3f ms\n", ap.Peak, ap.PeakTime)
	fmt.Printf("  max dV/dt: %.3f mV/ms at %.3f ms\n", ap.MaxUpstroke, ap.UpstrokeTime)
	if ap.Repolarized {
		fmt.Printf("  APD%.0f: %.3f ms\n", ap.Level*100, ap.APD)
	} else {
		fmt.Printf("  not repolarised to %.0f%%\n", ap.Level*100)
	}
}

type schemeRun struct {
	scheme string
	result *sim.Result
	err    error
}

func compareSchemes(cmd *cobra.Command, args []string) error {
	base, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	runs := make([]schemeRun, 0, 2)
	for _, s := range ionic.Schemes() {
		cfg := base.Clone()
		cfg.Scheme = s.String()
		cfg.ValidateState = true

		exp := experiment.New(cfg, logger)
		if err := exp.Setup(registry); err != nil {
			return err
		}
		res, err := exp.Run(cmd.Context())
		if err != nil && !errors.Is(err, ionic.ErrUnstable) {
			return err
		}
		runs = append(runs, schemeRun{scheme: cfg.Scheme, result: res, err: err})
	}

	fmt.Printf("%s, dt=%g ms, %g ms\n\n", base.Model, base.Dt, base.Duration)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCHEME\tSTEPS\tFINAL V\tPEAK V\tMAX DV/DT\tBAND EXC\tTIME\tSTATUS")
	for _, r := range runs {
		status := "ok"
		if r.err != nil {
			status = "diverged"
		}
		fmt.Fprintf(w, "%s\t%d\t%.6f\t%.4f\t%.3f\t%d\t%v\t%s\n",
			r.scheme,
			r.result.StepsTaken,
			r.result.Final().V,
			r.result.Metrics["peak_voltage"],
			r.result.Metrics["max_dvdt"],
			r.result.BandExcursions,
			r.result.Elapsed,
			status,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	a, b := runs[0], runs[1]
	if a.err == nil && b.err == nil && len(a.result.Samples) == len(b.result.Samples) {
		diff := make([]float64, len(a.result.Samples))
		floats.SubTo(diff, a.result.Voltages(), b.result.Voltages())
		fmt.Printf("\nmax |dV| between schemes: %.6g mV\n", floats.Norm(diff, math.Inf(1)))
	}
	return nil
}

func benchModel(cmd *cobra.Command, args []string) error {
	registry := experiment.NewRegistry()
	model, err := registry.Create(args[0], nil)
	if err != nil {
		return err
	}

	dts := []float64{0.001, 0.005, 0.01, 0.05}

	fmt.Printf("benchmarking %s over %g ms\n\n", model.Name(), benchDuration)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCHEME\tDT\tSTEPS\tTIME\tSTEPS/SEC\tFINAL V")

	for _, s := range ionic.Schemes() {
		integ, err := registry.Integrator(s.String())
		if err != nil {
			return err
		}
		for _, step := range dts {
			cfg := sim.Config{Dt: step, Duration: benchDuration, ValidateState: true}
			cfg.SampleEvery = cfg.Steps()

			start := time.Now()
			res, err := sim.New(integ, nil).Run(cmd.Context(), ionic.NewCell(model), cfg)
			elapsed := time.Since(start)

			final := "diverged"
			if err == nil {
				final = fmt.Sprintf("%.6f", res.Final().V)
			} else if !errors.Is(err, ionic.ErrUnstable) {
				return err
			}

			fmt.Fprintf(w, "%s\t%g\t%d\t%v\t%.0f\t%s\n",
				s, step, res.StepsTaken, elapsed, float64(res.StepsTaken)/elapsed.Seconds(), final)
		}
	}
	return w.Flush()
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	exp := experiment.New(cfg, logger)
	if err := exp.Setup(experiment.NewRegistry()); err != nil {
		return err
	}

	ens := sim.NewEnsemble(exp.Model(), exp.GetSimulator().Integrator(), exp.Stimulus())
	ens.SetLogger(logger)
	if workers > 0 {
		ens.SetWorkers(workers)
	}

	results, err := ens.Run(cmd.Context(), voltages, sim.Config{
		Dt:            cfg.Dt,
		Duration:      cfg.Duration,
		SampleEvery:   cfg.SampleEvery,
		ValidateState: cfg.ValidateState,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "V0\tPEAK V\tMIN V\tFINAL V\tSTEPS")
	for i, res := range results {
		vs := res.Voltages()
		fmt.Fprintf(w, "%.3f\t%.4f\t%.4f\t%.6f\t%d\n",
			voltages[i], floats.Max(vs), floats.Min(vs), res.Final().V, res.StepsTaken)
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	exp := experiment.New(cfg, logger)
	if err := exp.Setup(experiment.NewRegistry()); err != nil {
		return err
	}

	s, err := ionic.ParseScheme(cfg.Scheme)
	if err != nil {
		return err
	}
	mon, err := viz.NewMonitor(exp.Cell(), viz.MonitorConfig{
		Scheme:       s,
		Capacitance:  cfg.Capacitance,
		Dt:           cfg.Dt,
		Duration:     cfg.Duration,
		StepsPerTick: stepsPerFrame,
		Stimulus:     exp.Stimulus(),
	})
	if err != nil {
		return err
	}

	p := tea.NewProgram(mon, tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return err
	}
	if err := mon.Err(); err != nil {
		logger.Warn("live run stopped", zap.Error(err))
		fmt.Println(err)
	}
	return nil
}

// presetSummary is one line of the presets listing.
func presetSummary(cfg *config.Config) string {
	v0 := "rest"
	if cfg.InitialVoltage != nil {
		v0 = fmt.Sprintf("%g mV", *cfg.InitialVoltage)
	}
	line := fmt.Sprintf("%s, dt=%g ms, %g ms, v0=%s", cfg.Scheme, cfg.Dt, cfg.Duration, v0)
	if cfg.Stimulus.Enabled() {
		line += fmt.Sprintf(", stimulus %g uA/uF every %g ms", cfg.Stimulus.Amplitude, cfg.Stimulus.Period)
	}
	return line
}
