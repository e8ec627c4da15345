package sim

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/cardiosim/internal/ionic"
)

// Simulator drives a single cell with a fixed step.
type Simulator struct {
	integrator ionic.Integrator
	stimulus   Stimulus
	metrics    []Metric
	observers  []Observer
	logger     *zap.Logger
}

func New(integrator ionic.Integrator, stim Stimulus) *Simulator {
	if stim == nil {
		stim = NoStimulus{}
	}
	return &Simulator{
		integrator: integrator,
		stimulus:   stim,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
		logger:     zap.NewNop(),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	s.logger = l
}

func (s *Simulator) Integrator() ionic.Integrator { return s.integrator }

// Run advances cell in place for cfg.Duration. On divergence or cancellation
// the partial result is returned together with the error.
func (s *Simulator) Run(ctx context.Context, cell *ionic.Cell, cfg Config) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	steps := cfg.Steps()
	every := cfg.SampleEvery
	if every == 0 {
		every = 1
	}

	result := &Result{
		Model:     cell.Model.Name(),
		Scheme:    s.integrator.Scheme().String(),
		GateNames: cell.Model.GateNames(),
		Samples:   make([]Sample, 0, steps/every+2),
		Metrics:   make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	log := s.logger.With(
		zap.String("model", result.Model),
		zap.String("scheme", result.Scheme),
		zap.Float64("dt", cfg.Dt),
	)
	start := time.Now()

	t := 0.0
	s.record(result, cell, t, s.stimulus.Current(t))
	for _, m := range s.metrics {
		m.Observe(t, cell.V, cell.Gates)
	}

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			s.finish(result, start)
			log.Info("simulation cancelled", zap.Int("steps", result.StepsTaken))
			return result, ctx.Err()
		default:
		}

		stim := s.stimulus.Current(t)
		cell.Step(s.integrator, stim, cfg.Dt)
		t = float64(i+1) * cfg.Dt
		result.StepsTaken++

		if cfg.ValidateState && !cell.IsValid() {
			err := &ionic.SimulationError{Step: i + 1, Time: t, Voltage: cell.V, Wrapped: ionic.ErrUnstable}
			s.record(result, cell, t, stim)
			s.finish(result, start)
			log.Warn("simulation diverged", zap.Int("step", i+1), zap.Float64("t", t), zap.Error(err))
			return result, err
		}

		if cfg.CheckBand && !cell.Gates.InBand(ionic.BandLow, ionic.BandHigh) {
			if result.BandExcursions == 0 {
				log.Debug("gates left tolerance band", zap.Float64("t", t), zap.Float64s("gates", cell.Gates))
			}
			result.BandExcursions++
		}

		for _, m := range s.metrics {
			m.Observe(t, cell.V, cell.Gates)
		}

		if (i+1)%every == 0 || i+1 == steps {
			s.record(result, cell, t, s.stimulus.Current(t))
		}
	}

	s.finish(result, start)
	log.Info("simulation finished",
		zap.Int("steps", result.StepsTaken),
		zap.Int("samples", len(result.Samples)),
		zap.Duration("elapsed", result.Elapsed),
	)
	return result, nil
}

func (s *Simulator) record(result *Result, cell *ionic.Cell, t, stim float64) {
	sample := Sample{
		Time:  t,
		V:     cell.V,
		Gates: cell.Gates.Clone(),
		Iion:  cell.IonicCurrent(),
		Stim:  stim,
	}
	result.Samples = append(result.Samples, sample)
	for _, obs := range s.observers {
		obs.OnSample(sample)
	}
}

func (s *Simulator) finish(result *Result, start time.Time) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	result.Elapsed = time.Since(start)
}
