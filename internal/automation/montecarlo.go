package automation

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/cardiosim/internal/config"
	"github.com/san-kum/cardiosim/internal/experiment"
	"github.com/san-kum/cardiosim/internal/ionic"
)

// MonteCarloConfig perturbs the initial voltage of Base uniformly by up to
// Spread mV in either direction. The gates keep their steady state at the
// unperturbed voltage.
type MonteCarloConfig struct {
	Base      *config.Config
	Spread    float64
	NumTrials int
	Seed      int64
}

type MonteCarloResult struct {
	Trial  int
	V0     float64
	FinalV float64
	PeakV  float64
	Stable bool // no NaN or Inf during the run
}

// RunMonteCarlo runs NumTrials perturbed copies of Base. Divergence marks a
// trial unstable; any other error stops the study.
func RunMonteCarlo(ctx context.Context, cfg MonteCarloConfig, registry *experiment.Registry, logger *zap.Logger) ([]MonteCarloResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Base == nil {
		return nil, fmt.Errorf("monte carlo: no base configuration")
	}

	model, err := registry.Create(cfg.Base.Model, cfg.Base.Params)
	if err != nil {
		return nil, err
	}
	center := model.RestingPotential()
	if cfg.Base.InitialVoltage != nil {
		center = *cfg.Base.InitialVoltage
	}
	gateV := center
	if cfg.Base.GateVoltage != nil {
		gateV = *cfg.Base.GateVoltage
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	results := make([]MonteCarloResult, 0, cfg.NumTrials)
	for trial := 0; trial < cfg.NumTrials; trial++ {
		v0 := center + (rng.Float64()-0.5)*2*cfg.Spread

		trialCfg := cfg.Base.Clone()
		trialCfg.InitialVoltage = config.Float(v0)
		trialCfg.GateVoltage = config.Float(gateV)
		trialCfg.ValidateState = true

		exp := experiment.New(trialCfg, logger)
		if err := exp.Setup(registry); err != nil {
			return results, err
		}

		res, err := exp.Run(ctx)
		if err != nil && !errors.Is(err, ionic.ErrUnstable) {
			return results, fmt.Errorf("trial %d: %w", trial, err)
		}

		results = append(results, MonteCarloResult{
			Trial:  trial,
			V0:     v0,
			FinalV: res.Final().V,
			PeakV:  res.Metrics["peak_voltage"],
			Stable: err == nil,
		})

		if (trial+1)%10 == 0 {
			logger.Info("monte carlo progress", zap.Int("done", trial+1), zap.Int("trials", cfg.NumTrials))
		}
	}
	return results, nil
}

// StableFraction returns the fraction of trials that stayed finite.
func StableFraction(results []MonteCarloResult) float64 {
	if len(results) == 0 {
		return 0
	}
	n := 0
	for _, r := range results {
		if r.Stable {
			n++
		}
	}
	return float64(n) / float64(len(results))
}
