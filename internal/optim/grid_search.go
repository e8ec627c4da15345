// Package optim fits model parameters by exhaustive search.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/cardiosim/internal/analysis"
	"github.com/san-kum/cardiosim/internal/config"
	"github.com/san-kum/cardiosim/internal/experiment"
	"github.com/san-kum/cardiosim/internal/sim"
)

var ErrNoCandidate = errors.New("optim: no parameter combination could be evaluated")

// Objective scores a finished run; lower is better.
type Objective func(res *sim.Result) (float64, error)

// Builder prepares an experiment for one parameter combination.
type Builder func(params map[string]float64) (*experiment.Experiment, error)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

// NewGridSearch searches every combination of ranges[i] for params[i].
func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("optim: %d parameters but %d ranges", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("optim: empty range for %s", params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Linspace returns n evenly spaced values on [min, max].
func Linspace(min, max float64, n int) []float64 {
	if n < 2 {
		return []float64{min}
	}
	out := make([]float64, n)
	step := (max - min) / float64(n-1)
	for i := range out {
		out[i] = min + float64(i)*step
	}
	return out
}

type Evaluation struct {
	Params map[string]float64
	Value  float64
	Err    error
}

type SearchResult struct {
	Best        map[string]float64
	Value       float64
	Evaluations []Evaluation
}

// Search runs every combination and returns the one with the lowest
// objective. Combinations that fail to build, run or score are kept in
// Evaluations with their error.
func (g *GridSearch) Search(ctx context.Context, build Builder, objective Objective) (*SearchResult, error) {
	res := &SearchResult{Value: math.Inf(1)}

	if err := g.searchRecursive(ctx, 0, make(map[string]float64), build, objective, res); err != nil {
		return res, err
	}
	if res.Best == nil {
		return res, ErrNoCandidate
	}
	return res, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	build Builder,
	objective Objective,
	res *SearchResult,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		eval := Evaluation{Params: current}
		eval.Value, eval.Err = evaluate(ctx, current, build, objective)
		if errors.Is(eval.Err, context.Canceled) || errors.Is(eval.Err, context.DeadlineExceeded) {
			return eval.Err
		}
		res.Evaluations = append(res.Evaluations, eval)

		if eval.Err == nil && eval.Value < res.Value {
			res.Value = eval.Value
			res.Best = current
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		next := make(map[string]float64, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, next, build, objective, res); err != nil {
			return err
		}
	}
	return nil
}

func evaluate(ctx context.Context, params map[string]float64, build Builder, objective Objective) (float64, error) {
	exp, err := build(params)
	if err != nil {
		return math.NaN(), err
	}

	result, err := exp.Run(ctx)
	if err != nil {
		return math.NaN(), err
	}

	v, err := objective(result)
	if err != nil {
		return math.NaN(), err
	}
	if math.IsNaN(v) {
		return v, fmt.Errorf("optim: objective is NaN")
	}
	return v, nil
}

// Ranked returns the successful evaluations ordered best first.
func (r *SearchResult) Ranked() []Evaluation {
	out := make([]Evaluation, 0, len(r.Evaluations))
	for _, e := range r.Evaluations {
		if e.Err == nil {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	return out
}

// TargetMetric scores |metric - target| for a metric recorded by the run.
func TargetMetric(name string, target float64) Objective {
	return func(res *sim.Result) (float64, error) {
		v, ok := res.Metrics[name]
		if !ok {
			return 0, fmt.Errorf("optim: run has no metric %q", name)
		}
		return math.Abs(v - target), nil
	}
}

// TargetFinalVoltage scores |V_final - target|.
func TargetFinalVoltage(target float64) Objective {
	return func(res *sim.Result) (float64, error) {
		return math.Abs(res.Final().V - target), nil
	}
}

// TargetAPD scores |APD - target| at the given repolarisation level. Runs
// that do not fire or do not repolarise are errors.
func TargetAPD(level, target float64) Objective {
	return func(res *sim.Result) (float64, error) {
		ap, err := analysis.AnalyzeActionPotential(res.Times(), res.Voltages(), level)
		if err != nil {
			return 0, err
		}
		if !ap.Fired || !ap.Repolarized {
			return 0, fmt.Errorf("optim: no complete action potential (peak %.2f mV)", ap.Peak)
		}
		return math.Abs(ap.APD - target), nil
	}
}

// ConfigBuilder returns a Builder that applies the searched parameters on
// top of base's own overrides.
func ConfigBuilder(base *config.Config, registry *experiment.Registry) Builder {
	return func(params map[string]float64) (*experiment.Experiment, error) {
		cfg := base.Clone()
		merged := make(map[string]float64, len(cfg.Params)+len(params))
		for k, v := range cfg.Params {
			merged[k] = v
		}
		for k, v := range params {
			merged[k] = v
		}
		cfg.Params = merged

		exp := experiment.New(cfg, nil)
		if err := exp.Setup(registry); err != nil {
			return nil, err
		}
		return exp, nil
	}
}
