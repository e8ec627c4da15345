package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/san-kum/cardiosim/internal/analysis"
	"github.com/san-kum/cardiosim/internal/config"
	"github.com/san-kum/cardiosim/internal/experiment"
	"github.com/san-kum/cardiosim/internal/ionic"
	"github.com/san-kum/cardiosim/internal/storage"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(16)
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	st.SetLogger(logger)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tDURATION\tDT\tSCHEME\tV0")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%gms\t%gms\t%s\t%.3f\n",
			run.ID,
			run.Model,
			run.Timestamp.Local().Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Scheme,
			run.InitialVoltage,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	res, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}
	if len(res.Samples) == 0 {
		return fmt.Errorf("run %s has no samples", runID)
	}

	field := func(label, format string, a ...any) {
		fmt.Println(labelStyle.Render(label) + fmt.Sprintf(format, a...))
	}

	fmt.Println(headingStyle.Render(meta.ID))
	field("model", "%s", meta.Model)
	field("scheme", "%s", meta.Scheme)
	field("dt", "%g ms", meta.Dt)
	field("duration", "%g ms", meta.Duration)
	field("v0", "%g mV", meta.InitialVoltage)
	field("steps", "%d (%d samples)", meta.Steps, len(res.Samples))
	if meta.Stimulus.Enabled() {
		field("stimulus", "%g uA/uF for %g ms from %g ms, period %g ms",
			meta.Stimulus.Amplitude, meta.Stimulus.Duration, meta.Stimulus.Start, meta.Stimulus.Period)
	}
	printMetrics(meta.Metrics)

	final := res.Final()
	fmt.Println("\nfinal state:")
	fmt.Printf("  t = %.4f ms\n  V = %.6f mV\n", final.Time, final.V)
	for i, name := range res.GateNames {
		fmt.Printf("  %s = %.8f\n", name, final.Gates[i])
	}

	if err := printCurrents(meta, final.V, final.Gates); err != nil {
		return err
	}

	ap, err := analysis.AnalyzeActionPotential(res.Times(), res.Voltages(), apdLevel)
	if err != nil {
		return err
	}
	if ap.Fired {
		printAP(ap)
	} else {
		fmt.Printf("\nno action potential (peak %.4f mV)\n", ap.Peak)
	}
	return nil
}

// printCurrents rebuilds the run's model and prints the current breakdown at
// (v, gates), if the model reports one.
func printCurrents(meta *storage.RunMetadata, v float64, gates ionic.Gates) error {
	model, err := experiment.NewRegistry().Create(meta.Model, meta.Params)
	if err != nil {
		return err
	}
	reporter, ok := model.(ionic.CurrentReporter)
	if !ok {
		return nil
	}

	names := reporter.CurrentNames()
	values := make([]float64, len(names))
	reporter.Currents(v, gates, values)

	fmt.Println("\ncurrents (uA/uF):")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for i, name := range names {
		fmt.Fprintf(w, "  %s\t%12.6f\n", name, values[i])
	}
	fmt.Fprintf(w, "  total\t%12.6f\n", model.IonicCurrent(v, gates))
	return w.Flush()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	res, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}

	return storage.ExportJSON(os.Stdout, *meta, res)
}

func listPresets(cmd *cobra.Command, args []string) error {
	presets := config.ListPresets(args[0])
	if len(presets) == 0 {
		fmt.Printf("no presets for model: %s\n", args[0])
		return nil
	}

	fmt.Printf("presets for %s:\n", args[0])
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, name := range presets {
		fmt.Fprintf(w, "  %s\t%s\n", name, presetSummary(config.GetPreset(args[0], name)))
	}
	return w.Flush()
}
