// Package automation runs scripted batches of single-cell simulations:
// YAML scenarios with optional expected end states, and Monte Carlo trials
// over perturbed initial voltages.
package automation

import (
	"context"
	"fmt"
	"math"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/cardiosim/internal/config"
	"github.com/san-kum/cardiosim/internal/experiment"
	"github.com/san-kum/cardiosim/internal/sim"
	"github.com/san-kum/cardiosim/internal/storage"
)

// Scenario is a named sequence of runs.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step is one run. Fields missing from the YAML take config defaults.
type Step struct {
	Name          string       `yaml:"name"`
	config.Config `yaml:",inline"`
	Expect        *Expectation `yaml:"expect,omitempty"`
}

// Expectation is the state a run must end in, within a relative tolerance.
type Expectation struct {
	V      float64   `yaml:"v"`
	Gates  []float64 `yaml:"gates,omitempty"`
	RelTol float64   `yaml:"rel_tol"`
}

func (s *Step) UnmarshalYAML(node *yaml.Node) error {
	type plain Step
	p := plain{Config: *config.DefaultConfig()}
	if err := node.Decode(&p); err != nil {
		return err
	}
	*s = Step(p)
	return nil
}

// StepResult is the outcome of one step. Err is set for failed runs and for
// unmet expectations.
type StepResult struct {
	Name   string
	RunID  string
	Result *sim.Result
	MaxErr float64 // largest relative deviation from the expectation
	Passed bool
	Err    error
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("%s: scenario has no steps", path)
	}
	return &scenario, nil
}

// Runner executes scenarios. A nil Store skips saving.
type Runner struct {
	Registry *experiment.Registry
	Store    *storage.Store
	Logger   *zap.Logger
}

func NewRunner(registry *experiment.Registry, store *storage.Store, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{Registry: registry, Store: store, Logger: logger}
}

// Run executes every step in order. Failed steps are reported in their
// StepResult and do not stop the scenario; only cancellation does.
func (r *Runner) Run(ctx context.Context, scenario *Scenario) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step-%d", i+1)
		}
		r.Logger.Info("running scenario step",
			zap.String("scenario", scenario.Name),
			zap.String("step", name),
			zap.Int("index", i+1),
			zap.Int("total", len(scenario.Steps)),
		)

		res := r.runStep(ctx, name, step)
		results = append(results, res)

		if err := ctx.Err(); err != nil {
			return results, err
		}
		if res.Err != nil {
			r.Logger.Warn("scenario step failed", zap.String("step", name), zap.Error(res.Err))
		}
	}
	return results, nil
}

func (r *Runner) runStep(ctx context.Context, name string, step Step) StepResult {
	out := StepResult{Name: name}

	cfg := step.Config.Clone()
	exp := experiment.New(cfg, r.Logger)
	if err := exp.Setup(r.Registry); err != nil {
		out.Err = fmt.Errorf("%s setup: %w", name, err)
		return out
	}

	res, err := exp.Run(ctx)
	out.Result = res
	if err != nil {
		out.Err = fmt.Errorf("%s run: %w", name, err)
		return out
	}

	if r.Store != nil {
		id, err := r.Store.Save(storage.Metadata(cfg, exp.Cell(), res), res)
		if err != nil {
			out.Err = fmt.Errorf("%s save: %w", name, err)
			return out
		}
		out.RunID = id
	}

	out.Passed = true
	if step.Expect != nil {
		out.MaxErr, out.Err = step.Expect.Check(res.Final())
		out.Passed = out.Err == nil
	}
	return out
}

// Check compares a final sample against e and returns the largest relative
// deviation.
func (e *Expectation) Check(final sim.Sample) (float64, error) {
	tol := e.RelTol
	if tol <= 0 {
		tol = 1e-2
	}

	maxErr := relErr(final.V, e.V)
	worst := "V"
	if len(e.Gates) > 0 {
		if len(e.Gates) != len(final.Gates) {
			return math.Inf(1), fmt.Errorf("expected %d gates, run has %d", len(e.Gates), len(final.Gates))
		}
		for i, want := range e.Gates {
			if d := relErr(final.Gates[i], want); d > maxErr || math.IsNaN(d) {
				maxErr = d
				worst = fmt.Sprintf("gate %d", i)
			}
		}
	}

	if !(maxErr <= tol) {
		return maxErr, fmt.Errorf("%s deviates by %.3g (tolerance %g)", worst, maxErr, tol)
	}
	return maxErr, nil
}

func relErr(got, want float64) float64 {
	if want == 0 {
		return math.Abs(got)
	}
	return math.Abs(got-want) / math.Abs(want)
}
