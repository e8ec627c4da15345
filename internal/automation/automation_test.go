package automation

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/cardiosim/internal/config"
	"github.com/san-kum/cardiosim/internal/experiment"
	"github.com/san-kum/cardiosim/internal/ionic"
	"github.com/san-kum/cardiosim/internal/sim"
	"github.com/san-kum/cardiosim/internal/storage"
)

func TestLoadScenario(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "regression.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "bernus-regression", s.Name)
	require.Len(t, s.Steps, 4)

	step := s.Steps[1]
	assert.Equal(t, "euler-coarse", step.Name)
	assert.Equal(t, "euler", step.Scheme)
	assert.Equal(t, 0.05, step.Dt)
	require.NotNil(t, step.InitialVoltage)
	assert.Equal(t, -60.0, *step.InitialVoltage)

	// unset fields keep their defaults
	assert.Equal(t, config.DefaultCapacitance, step.Capacitance)
	assert.Equal(t, config.DefaultSampleEvery, step.SampleEvery)
	assert.True(t, step.ValidateState)

	require.NotNil(t, step.Expect)
	assert.Len(t, step.Expect.Gates, 5)
}

func TestLoadScenario_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadScenario(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("name: nothing\n"), 0644))
	_, err = LoadScenario(empty)
	assert.Error(t, err)
}

func TestRunRegressionScenario(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "regression.yaml"))
	require.NoError(t, err)

	st := storage.New(t.TempDir())
	require.NoError(t, st.Init())

	results, err := NewRunner(experiment.NewRegistry(), st, nil).Run(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, results, 4)

	for _, r := range results {
		assert.True(t, r.Passed, "%s: %v", r.Name, r.Err)
		assert.Less(t, r.MaxErr, 0.01, r.Name)
		assert.NotEmpty(t, r.RunID, r.Name)
	}

	runs, err := st.List()
	require.NoError(t, err)
	assert.Len(t, runs, 4)
}

func TestRunnerReportsFailedStep(t *testing.T) {
	bad := *config.DefaultConfig()
	bad.Model = "hodgkin_huxley"

	diverging := *config.DefaultConfig()
	diverging.Scheme = "euler"
	diverging.Dt = 0.05
	diverging.Duration = 50
	diverging.InitialVoltage = config.Float(-60)

	s := &Scenario{Name: "failures", Steps: []Step{
		{Name: "unknown", Config: bad},
		{Name: "unstable", Config: diverging},
	}}

	results, err := NewRunner(experiment.NewRegistry(), nil, nil).Run(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.False(t, results[0].Passed)
	assert.True(t, errors.Is(results[0].Err, ionic.ErrUnknownModel))

	assert.False(t, results[1].Passed)
	assert.True(t, errors.Is(results[1].Err, ionic.ErrUnstable))
	assert.NotNil(t, results[1].Result)
}

func TestExpectationCheck(t *testing.T) {
	final := sim.Sample{V: -64, Gates: ionic.Gates{0.5, 0.25}}

	e := &Expectation{V: -64.1, Gates: []float64{0.5, 0.25}, RelTol: 0.01}
	maxErr, err := e.Check(final)
	assert.NoError(t, err)
	assert.InDelta(t, 0.1/64.1, maxErr, 1e-12)

	e = &Expectation{V: -64, Gates: []float64{0.5, 0.3}, RelTol: 0.01}
	_, err = e.Check(final)
	assert.ErrorContains(t, err, "gate 1")

	e = &Expectation{V: -64, Gates: []float64{0.5}}
	_, err = e.Check(final)
	assert.Error(t, err)

	e = &Expectation{V: -64}
	_, err = e.Check(sim.Sample{V: math.NaN()})
	assert.Error(t, err)
}

func TestRunMonteCarlo(t *testing.T) {
	base := config.DefaultConfig()
	base.Duration = 20
	base.SampleEvery = 100

	results, err := RunMonteCarlo(context.Background(), MonteCarloConfig{
		Base:      base,
		Spread:    5,
		NumTrials: 6,
		Seed:      7,
	}, experiment.NewRegistry(), nil)
	require.NoError(t, err)
	require.Len(t, results, 6)

	for _, r := range results {
		assert.True(t, r.Stable)
		assert.InDelta(t, -90.272, r.V0, 5)
		assert.False(t, math.IsNaN(r.FinalV))
	}
	assert.Equal(t, 1.0, StableFraction(results))
}

func TestRunMonteCarlo_Deterministic(t *testing.T) {
	base := config.DefaultConfig()
	base.Duration = 1
	cfg := MonteCarloConfig{Base: base, Spread: 10, NumTrials: 3, Seed: 42}

	a, err := RunMonteCarlo(context.Background(), cfg, experiment.NewRegistry(), nil)
	require.NoError(t, err)
	b, err := RunMonteCarlo(context.Background(), cfg, experiment.NewRegistry(), nil)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRunMonteCarlo_EulerInstability(t *testing.T) {
	base := config.DefaultConfig()
	base.Scheme = "euler"
	base.Dt = 0.05
	base.Duration = 50
	base.InitialVoltage = config.Float(-60)

	results, err := RunMonteCarlo(context.Background(), MonteCarloConfig{
		Base: base, Spread: 1, NumTrials: 3, Seed: 1,
	}, experiment.NewRegistry(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, StableFraction(results))
}

func TestStableFractionEmpty(t *testing.T) {
	assert.Equal(t, 0.0, StableFraction(nil))
}
