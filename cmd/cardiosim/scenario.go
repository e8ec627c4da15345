package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/cardiosim/internal/automation"
	"github.com/san-kum/cardiosim/internal/experiment"
	"github.com/san-kum/cardiosim/internal/storage"
)

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	var st *storage.Store
	if saveRuns {
		st = storage.New(dataDir)
		st.SetLogger(logger)
		if err := st.Init(); err != nil {
			return err
		}
	}

	runner := automation.NewRunner(experiment.NewRegistry(), st, logger)
	results, err := runner.Run(cmd.Context(), scenario)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d steps\n\n", scenario.Name, len(results))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tSTATUS\tFINAL V\tMAX REL ERR\tRUN ID\tDETAIL")

	failed := 0
	for _, r := range results {
		status := "pass"
		detail := ""
		if !r.Passed {
			status = "FAIL"
			detail = r.Err.Error()
			failed++
		}
		finalV := "-"
		if r.Result != nil && len(r.Result.Samples) > 0 {
			finalV = fmt.Sprintf("%.6f", r.Result.Final().V)
		}
		runID := r.RunID
		if runID == "" {
			runID = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.3g\t%s\t%s\n", r.Name, status, finalV, r.MaxErr, runID, detail)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d steps failed", failed, len(results))
	}
	return nil
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	results, err := automation.RunMonteCarlo(cmd.Context(), automation.MonteCarloConfig{
		Base:      cfg,
		Spread:    spread,
		NumTrials: trials,
		Seed:      seed,
	}, experiment.NewRegistry(), logger)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TRIAL\tV0\tPEAK V\tFINAL V\tSTABLE")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%.3f\t%.4f\t%.6f\t%v\n", r.Trial, r.V0, r.PeakV, r.FinalV, r.Stable)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nstable: %.0f%% of %d trials (%s, dt=%g ms)\n",
		100*automation.StableFraction(results), len(results), cfg.Scheme, cfg.Dt)
	return nil
}
