package bernus

import (
	"fmt"
	"math"

	"github.com/san-kum/cardiosim/internal/ionic"
)

// Potentials are the equilibrium potentials in mV, fixed for the lifetime of
// a model.
type Potentials struct {
	Na float64 `json:"e_na"`
	Ca float64 `json:"e_ca"`
	To float64 `json:"e_to"`
	K  float64 `json:"e_k"`
}

// Nernst returns rtf/valence * ln(out/in). rtf is RT/F in mV.
func Nernst(valence int, out, in, rtf float64) (float64, error) {
	if valence == 0 {
		return 0, fmt.Errorf("%w: zero valence", ionic.ErrInvalidParameter)
	}
	if !(out > 0) || math.IsInf(out, 0) {
		return 0, &ionic.InvalidParameterError{Param: "outside concentration", Value: out, Reason: "must be positive and finite"}
	}
	if !(in > 0) || math.IsInf(in, 0) {
		return 0, &ionic.InvalidParameterError{Param: "inside concentration", Value: in, Reason: "must be positive and finite"}
	}
	return rtf / float64(valence) * math.Log(out/in), nil
}

// EquilibriumPotentials computes the four reversal potentials of p. The
// transient outward potential uses a Na/K permeability ratio of 0.043.
func EquilibriumPotentials(p Params) (Potentials, error) {
	if err := p.Validate(); err != nil {
		return Potentials{}, err
	}

	c := p.Concentrations
	rtf := p.RTF()
	var e Potentials
	var err error

	if e.Na, err = Nernst(1, c.NaE, c.NaI, rtf); err != nil {
		return Potentials{}, fmt.Errorf("e_na: %w", err)
	}
	if e.Ca, err = Nernst(2, c.CaE, c.CaI, rtf); err != nil {
		return Potentials{}, fmt.Errorf("e_ca: %w", err)
	}
	const pNaK = 0.043
	if e.To, err = Nernst(1, pNaK*c.NaE+c.KE, pNaK*c.NaI+c.KI, rtf); err != nil {
		return Potentials{}, fmt.Errorf("e_to: %w", err)
	}
	if e.K, err = Nernst(1, c.KE, c.KI, rtf); err != nil {
		return Potentials{}, fmt.Errorf("e_k: %w", err)
	}
	return e, nil
}
