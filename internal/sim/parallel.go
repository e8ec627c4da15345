package sim

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/cardiosim/internal/ionic"
)

// Ensemble runs independent cells of one model, one per initial voltage.
// Cells share the read-only model and integrator but nothing else.
type Ensemble struct {
	model      ionic.Model
	integrator ionic.Integrator
	stimulus   Stimulus
	workers    int
	logger     *zap.Logger
}

func NewEnsemble(m ionic.Model, integrator ionic.Integrator, stim Stimulus) *Ensemble {
	return &Ensemble{
		model:      m,
		integrator: integrator,
		stimulus:   stim,
		workers:    runtime.GOMAXPROCS(0),
		logger:     zap.NewNop(),
	}
}

// SetWorkers bounds the number of cells integrated at once.
func (e *Ensemble) SetWorkers(n int) {
	if n > 0 {
		e.workers = n
	}
}

func (e *Ensemble) SetLogger(l *zap.Logger) {
	if l != nil {
		e.logger = l
	}
}

// Run integrates one cell per entry of voltages, each starting with gates in
// steady state at its voltage. Results are in input order. The first error
// cancels the remaining cells.
func (e *Ensemble) Run(ctx context.Context, voltages []float64, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(voltages))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, v0 := range voltages {
		i, v0 := i, v0
		g.Go(func() error {
			sim := New(e.integrator, e.stimulus)
			cell := ionic.NewCellAt(e.model, v0)

			res, err := sim.Run(ctx, cell, cfg)
			if err != nil {
				return fmt.Errorf("cell %d (V0=%g): %w", i, v0, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		e.logger.Warn("ensemble failed", zap.Error(err))
		return nil, err
	}
	e.logger.Info("ensemble finished", zap.Int("cells", len(voltages)))
	return results, nil
}
