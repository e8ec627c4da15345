package bernus

import (
	"fmt"

	"github.com/san-kum/cardiosim/internal/ionic"
)

// Gate indices.
const (
	GateM = iota
	GateV
	GateF
	GateTo
	GateX
	NumGates
)

// RestingPotential is the default initialisation voltage in mV.
const RestingPotential = -90.272

// Name is the registry identifier of the model.
const Name = "bernus"

var gateNames = [NumGates]string{
	GateM:  "m",
	GateV:  "v",
	GateF:  "f",
	GateTo: "to",
	GateX:  "x",
}

// Model is the Bernus membrane model. It is immutable after construction.
type Model struct {
	params     Params
	potentials Potentials

	// voltage independent factors, fixed by the concentrations
	fCa   float64
	fNaKA float64
}

var (
	_ ionic.Model           = (*Model)(nil)
	_ ionic.CurrentReporter = (*Model)(nil)
	_ ionic.Configurable    = (*Model)(nil)
)

// New returns a model with DefaultParams.
func New() *Model {
	m, err := NewWithParams(DefaultParams())
	if err != nil {
		panic(err)
	}
	return m
}

// NewWithParams validates p and derives the equilibrium potentials. On error
// no model is returned.
func NewWithParams(p Params) (*Model, error) {
	e, err := EquilibriumPotentials(p)
	if err != nil {
		return nil, fmt.Errorf("bernus: %w", err)
	}
	return &Model{
		params:     p,
		potentials: e,
		fCa:        FCa(p.CaI),
		fNaKA:      FNaKA(p.NaI, p.KE),
	}, nil
}

func (m *Model) Name() string              { return Name }
func (m *Model) GateCount() int            { return NumGates }
func (m *Model) RestingPotential() float64 { return RestingPotential }
func (m *Model) Parameters() Params        { return m.params }
func (m *Model) Potentials() Potentials    { return m.potentials }

func (m *Model) GateNames() []string {
	return append([]string(nil), gateNames[:]...)
}

func (m *Model) GateIndex(name string) (int, error) {
	for i, n := range gateNames {
		if n == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("bernus: unknown gate %q", name)
}

// Params implements ionic.Configurable.
func (m *Model) Params() map[string]float64 {
	return m.params.Map()
}

func (m *Model) kinetics(v float64, out *[NumGates]ionic.Kinetics) {
	p, shift := m.params.P, m.params.VShift

	out[GateM] = ionic.FromRates(AlphaM(v), BetaM(v))
	out[GateV] = ionic.FromSteadyState(VInf(v), TauV(v))
	out[GateF] = ionic.FromRates(AlphaF(v), BetaF(v))
	out[GateTo] = toKinetics(v, p, shift)
	out[GateX] = ionic.FromSteadyState(XInf(v), TauX(v))
}

// toKinetics shifts only the steady state of the to gate; its time
// constant stays at the unshifted voltage.
func toKinetics(v, p, shift float64) ionic.Kinetics {
	if shift == 0 {
		return ionic.FromRates(p*AlphaTo(v), p*BetaTo(v))
	}
	k := ionic.FromSteadyState(ToInf(v, shift), TauTo(v, p))
	k.Form = ionic.AlphaBeta
	return k
}

func (m *Model) Kinetics(v float64, out []ionic.Kinetics) {
	if len(out) != NumGates {
		panic(ionic.ErrDimensionMismatch)
	}
	var ks [NumGates]ionic.Kinetics
	m.kinetics(v, &ks)
	copy(out, ks[:])
}

func (m *Model) InitializeSteadyState(v float64, gates ionic.Gates) {
	var ks [NumGates]ionic.Kinetics
	m.kinetics(v, &ks)
	ionic.SteadyStates(ks[:], gates)
}

func (m *Model) IonicCurrent(v float64, gates ionic.Gates) float64 {
	if len(gates) != NumGates {
		panic(ionic.ErrDimensionMismatch)
	}
	return m.Breakdown(v, gates).Total()
}

func (m *Model) GatingDerivative(v float64, gates, out ionic.Gates) {
	if len(gates) != NumGates || len(out) != NumGates {
		panic(ionic.ErrDimensionMismatch)
	}
	var ks [NumGates]ionic.Kinetics
	m.kinetics(v, &ks)
	for i := range ks {
		out[i] = ks[i].Derivative(gates[i])
	}
}

// IntegrateStep advances gates by dt at fixed v. It panics if dt is not
// positive or gates has the wrong length.
func (m *Model) IntegrateStep(v, dt float64, gates ionic.Gates, s ionic.Scheme) {
	if err := ionic.ValidateStep(dt); err != nil {
		panic(err)
	}
	var ks [NumGates]ionic.Kinetics
	m.kinetics(v, &ks)
	ionic.IntegrateGates(ks[:], gates, dt, s)
}
