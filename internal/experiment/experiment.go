package experiment

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/san-kum/cardiosim/internal/config"
	"github.com/san-kum/cardiosim/internal/integrators"
	"github.com/san-kum/cardiosim/internal/ionic"
	"github.com/san-kum/cardiosim/internal/metrics"
	"github.com/san-kum/cardiosim/internal/sim"
)

// Experiment binds a run configuration to a model, integrator and stimulus.
type Experiment struct {
	cfg       *config.Config
	model     ionic.Model
	cell      *ionic.Cell
	simulator *sim.Simulator
	stimulus  sim.Stimulus
	logger    *zap.Logger
}

func New(cfg *config.Config, logger *zap.Logger) *Experiment {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Experiment{cfg: cfg, logger: logger}
}

// Setup validates the configuration and builds every component. Nothing is
// kept on failure.
func (e *Experiment) Setup(r *Registry) error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	model, err := r.Create(e.cfg.Model, e.cfg.Params)
	if err != nil {
		return fmt.Errorf("create model: %w", err)
	}

	scheme, err := ionic.ParseScheme(e.cfg.Scheme)
	if err != nil {
		return err
	}
	integ, err := integrators.WithCapacitance(scheme, e.cfg.Capacitance)
	if err != nil {
		return err
	}

	var stim sim.Stimulus = sim.NoStimulus{}
	if s := e.cfg.Stimulus; s.Enabled() {
		stim = sim.PulseTrain{Amplitude: s.Amplitude, Start: s.Start, Duration: s.Duration, Period: s.Period}
	}

	simulator := sim.New(integ, stim)
	simulator.SetLogger(e.logger)
	for _, m := range metrics.Default() {
		simulator.AddMetric(m)
	}

	e.model = model
	e.cell = e.initialCell(model)
	e.simulator = simulator
	e.stimulus = stim

	e.logger.Debug("experiment ready",
		zap.String("model", model.Name()),
		zap.String("scheme", scheme.String()),
		zap.Float64("v0", e.cell.V),
	)
	return nil
}

// initialCell places the gates in steady state at GateVoltage and then sets V
// to InitialVoltage.
func (e *Experiment) initialCell(m ionic.Model) *ionic.Cell {
	v0 := m.RestingPotential()
	if e.cfg.InitialVoltage != nil {
		v0 = *e.cfg.InitialVoltage
	}
	vg := v0
	if e.cfg.GateVoltage != nil {
		vg = *e.cfg.GateVoltage
	}

	cell := ionic.NewCellAt(m, vg)
	cell.V = v0
	return cell
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	return e.simulator.Run(ctx, e.cell, sim.Config{
		Dt:            e.cfg.Dt,
		Duration:      e.cfg.Duration,
		SampleEvery:   e.cfg.SampleEvery,
		ValidateState: e.cfg.ValidateState,
		CheckBand:     true,
	})
}

func (e *Experiment) Config() *config.Config { return e.cfg }
func (e *Experiment) Model() ionic.Model     { return e.model }
func (e *Experiment) Cell() *ionic.Cell      { return e.cell }

// Stimulus returns the applied current protocol built by Setup.
func (e *Experiment) Stimulus() sim.Stimulus { return e.stimulus }

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}
