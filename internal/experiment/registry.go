package experiment

import (
	"sort"

	"github.com/san-kum/cardiosim/internal/bernus"
	"github.com/san-kum/cardiosim/internal/integrators"
	"github.com/san-kum/cardiosim/internal/ionic"
)

// Factory builds a model from named parameter overrides. A nil or empty map
// means default parameters.
type Factory func(params map[string]float64) (ionic.Model, error)

type Registry struct {
	models map[string]Factory
}

// NewRegistry returns a registry holding every built-in model.
func NewRegistry() *Registry {
	r := &Registry{models: make(map[string]Factory)}
	r.Register(bernus.Name, newBernus)
	return r
}

func newBernus(params map[string]float64) (ionic.Model, error) {
	p, err := bernus.DefaultParams().With(params)
	if err != nil {
		return nil, err
	}
	m, err := bernus.NewWithParams(p)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Register adds or replaces the factory for kind.
func (r *Registry) Register(kind string, f Factory) {
	r.models[kind] = f
}

// Create builds the model registered as kind.
func (r *Registry) Create(kind string, params map[string]float64) (ionic.Model, error) {
	f, ok := r.models[kind]
	if !ok {
		return nil, &ionic.UnknownModelError{Kind: kind, Known: r.ListModels()}
	}
	return f(params)
}

// NewCell builds the model and a cell on it. The cell starts at v0 if given,
// otherwise at the model's resting potential, with gates in steady state.
func (r *Registry) NewCell(kind string, v0 *float64, params map[string]float64) (*ionic.Cell, error) {
	m, err := r.Create(kind, params)
	if err != nil {
		return nil, err
	}
	if v0 == nil {
		return ionic.NewCell(m), nil
	}
	return ionic.NewCellAt(m, *v0), nil
}

// Integrator parses scheme and returns the matching integrator.
func (r *Registry) Integrator(scheme string) (ionic.Integrator, error) {
	s, err := ionic.ParseScheme(scheme)
	if err != nil {
		return nil, err
	}
	return integrators.New(s)
}

func (r *Registry) ListModels() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
