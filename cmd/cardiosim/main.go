package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/cardiosim/internal/config"
	"github.com/san-kum/cardiosim/internal/logging"
)

var (
	dataDir  string
	logLevel string
	devLog   bool
	logger   = zap.NewNop()

	dt          float64
	duration    float64
	v0          float64
	gateV0      float64
	scheme      string
	capacitance float64
	sampleEvery int
	configFile  string
	preset      string
	paramFlags  map[string]string

	stimAmplitude float64
	stimStart     float64
	stimDuration  float64
	stimPeriod    float64

	// show
	apdLevel float64

	// probe
	probeMin float64
	probeMax float64
	probeN   int
	outFile  string

	// rest
	restLo     float64
	restHi     float64
	sweepParam string
	sweepFrom  float64
	sweepTo    float64
	sweepSteps int

	// live
	stepsPerFrame int

	// bench
	benchDuration float64

	// ensemble
	voltages []float64
	workers  int

	// scenario, montecarlo
	saveRuns bool
	spread   float64
	trials   int
	seed     int64
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "cardiosim",
		Short:         "single-cell cardiac membrane simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logging.New(logLevel, devLog)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".cardiosim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&devLog, "log-dev", false, "human readable development logs")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run a simulation and store the trajectory",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "summarise a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	showCmd.Flags().Float64Var(&apdLevel, "level", 0.9, "repolarisation fraction for the APD")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a stored run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [model]",
		Short: "run euler and rush_larsen on the same configuration",
		Args:  cobra.ExactArgs(1),
		RunE:  compareSchemes,
	}
	addRunFlags(compareCmd)

	probeCmd := &cobra.Command{
		Use:   "probe [model]",
		Short: "tabulate gate kinetics over voltage as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  probeModel,
	}
	probeCmd.Flags().Float64Var(&probeMin, "vmin", -100, "lowest voltage (mV)")
	probeCmd.Flags().Float64Var(&probeMax, "vmax", 60, "highest voltage (mV)")
	probeCmd.Flags().IntVar(&probeN, "n", 161, "number of voltages")
	probeCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	probeCmd.Flags().StringToStringVar(&paramFlags, "param", nil, "model parameter override name=value")

	restCmd := &cobra.Command{
		Use:   "rest [model]",
		Short: "solve for the zero-current resting potential",
		Args:  cobra.ExactArgs(1),
		RunE:  restingPotential,
	}
	restCmd.Flags().Float64Var(&restLo, "lo", -120, "lower bracket (mV)")
	restCmd.Flags().Float64Var(&restHi, "hi", -60, "upper bracket (mV)")
	restCmd.Flags().StringVar(&sweepParam, "sweep", "", "parameter to sweep")
	restCmd.Flags().Float64Var(&sweepFrom, "from", 3, "sweep start")
	restCmd.Flags().Float64Var(&sweepTo, "to", 6, "sweep end")
	restCmd.Flags().IntVar(&sweepSteps, "steps", 7, "sweep points")
	restCmd.Flags().StringToStringVar(&paramFlags, "param", nil, "model parameter override name=value")

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets for a model",
		Args:  cobra.ExactArgs(1),
		RunE:  listPresets,
	}

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "step a cell in a live terminal monitor",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	addRunFlags(liveCmd)
	liveCmd.Flags().IntVar(&stepsPerFrame, "steps-per-frame", 50, "integration steps per frame")

	benchCmd := &cobra.Command{
		Use:   "bench [model]",
		Short: "benchmark both schemes over a range of steps",
		Args:  cobra.ExactArgs(1),
		RunE:  benchModel,
	}
	benchCmd.Flags().Float64Var(&benchDuration, "time", 100, "simulated time per run (ms)")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble [model]",
		Short: "run independent cells from several initial voltages in parallel",
		Args:  cobra.ExactArgs(1),
		RunE:  runEnsemble,
	}
	addRunFlags(ensembleCmd)
	ensembleCmd.Flags().Float64SliceVar(&voltages, "v0s", []float64{-90, -80, -70, -60, -50}, "initial voltages (mV)")
	ensembleCmd.Flags().IntVar(&workers, "workers", 0, "parallel workers (default GOMAXPROCS)")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a yaml scenario and check expected end states",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().BoolVar(&saveRuns, "save", false, "store every run")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo [model]",
		Short: "estimate how often perturbed initial voltages stay stable",
		Args:  cobra.ExactArgs(1),
		RunE:  runMonteCarlo,
	}
	addRunFlags(monteCarloCmd)
	monteCarloCmd.Flags().Float64Var(&spread, "spread", 5, "maximum voltage perturbation (mV)")
	monteCarloCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (default time based)")

	fitCmd := &cobra.Command{
		Use:   "fit [model]",
		Short: "grid search model parameters against a target",
		Args:  cobra.ExactArgs(1),
		RunE:  fitParameters,
	}
	addRunFlags(fitCmd)
	fitCmd.Flags().StringToStringVar(&gridFlags, "grid", nil, "parameter grid name=min:max:n or name=v1;v2;...")
	fitCmd.Flags().Float64Var(&fitAPD, "apd", 0, "target action potential duration (ms)")
	fitCmd.Flags().Float64Var(&apdLevel, "level", 0.9, "repolarisation fraction for --apd")
	fitCmd.Flags().Float64Var(&fitFinalV, "final-v", 0, "target final voltage (mV)")
	fitCmd.Flags().StringVar(&fitMetric, "metric", "", "metric to fit (peak_voltage, min_voltage, max_dvdt, gate_band)")
	fitCmd.Flags().Float64Var(&fitTarget, "target", 0, "target value for --metric")
	fitCmd.Flags().IntVar(&fitShowCount, "show", 10, "number of ranked results to print")

	rootCmd.AddCommand(runCmd, listCmd, showCmd, exportJSONCmd, compareCmd, probeCmd, restCmd, presetsCmd, liveCmd, benchCmd, ensembleCmd, scenarioCmd, monteCarloCmd, fitCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64Var(&dt, "dt", config.DefaultDt, "time step (ms)")
	f.Float64Var(&duration, "time", config.DefaultDuration, "duration (ms)")
	f.Float64Var(&v0, "v0", 0, "initial voltage (mV, default the model's resting potential)")
	f.Float64Var(&gateV0, "gate-v0", 0, "voltage the gates start in steady state at (default v0)")
	f.StringVar(&scheme, "scheme", config.DefaultScheme, "gating scheme (euler, rush_larsen)")
	f.Float64Var(&capacitance, "capacitance", config.DefaultCapacitance, "membrane capacitance (uF/cm^2)")
	f.IntVar(&sampleEvery, "sample", config.DefaultSampleEvery, "record every n-th step")
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.StringToStringVar(&paramFlags, "param", nil, "model parameter override name=value")

	f.Float64Var(&stimAmplitude, "stim-amp", 0, "stimulus amplitude (uA/uF, positive depolarizes)")
	f.Float64Var(&stimStart, "stim-start", 0, "stimulus start (ms)")
	f.Float64Var(&stimDuration, "stim-dur", 1, "stimulus pulse length (ms)")
	f.Float64Var(&stimPeriod, "stim-period", 0, "stimulus period (ms, 0 for a single pulse)")
}

// resolveConfig layers the defaults, a preset, a config file and explicitly
// set flags, in that order.
func resolveConfig(cmd *cobra.Command, model string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(model))
		}
		cfg = p
	}

	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	}
	cfg.Model = model

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("v0") {
		cfg.InitialVoltage = config.Float(v0)
	}
	if flags.Changed("gate-v0") {
		cfg.GateVoltage = config.Float(gateV0)
	}
	if flags.Changed("scheme") {
		cfg.Scheme = scheme
	}
	if flags.Changed("capacitance") {
		cfg.Capacitance = capacitance
	}
	if flags.Changed("sample") {
		cfg.SampleEvery = sampleEvery
	}
	if flags.Changed("stim-amp") {
		cfg.Stimulus.Amplitude = stimAmplitude
		if cfg.Stimulus.Duration == 0 {
			cfg.Stimulus.Duration = stimDuration
		}
	}
	if flags.Changed("stim-start") {
		cfg.Stimulus.Start = stimStart
	}
	if flags.Changed("stim-dur") {
		cfg.Stimulus.Duration = stimDuration
	}
	if flags.Changed("stim-period") {
		cfg.Stimulus.Period = stimPeriod
	}

	overrides, err := parseParams()
	if err != nil {
		return nil, err
	}
	if len(overrides) > 0 {
		if cfg.Params == nil {
			cfg.Params = make(map[string]float64, len(overrides))
		}
		for k, v := range overrides {
			cfg.Params[k] = v
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseParams() (map[string]float64, error) {
	out := make(map[string]float64, len(paramFlags))
	for name, raw := range paramFlags {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("param %s: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}
