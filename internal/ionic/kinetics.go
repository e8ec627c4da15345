package ionic

import "math"

// Form records which representation a model specifies for a gate.
type Form int

const (
	// AlphaBeta gates are given by opening and closing rates.
	AlphaBeta Form = iota
	// SteadyStateTau gates are given by a steady state and a time constant.
	SteadyStateTau
)

// Kinetics is the kinetics of one gate with the voltage frozen. Both
// representations are always populated:
//
//	Inf = Alpha/(Alpha+Beta), Tau = 1/(Alpha+Beta)
//	Alpha = Inf/Tau,          Beta = (1-Inf)/Tau
//
// Form decides which one the derivative is evaluated from.
type Kinetics struct {
	Form  Form
	Alpha float64
	Beta  float64
	Inf   float64
	Tau   float64
}

// FromRates builds alpha/beta form kinetics.
func FromRates(alpha, beta float64) Kinetics {
	sum := alpha + beta
	return Kinetics{
		Form:  AlphaBeta,
		Alpha: alpha,
		Beta:  beta,
		Inf:   alpha / sum,
		Tau:   1 / sum,
	}
}

// FromSteadyState builds steady-state/time-constant form kinetics.
func FromSteadyState(inf, tau float64) Kinetics {
	return Kinetics{
		Form:  SteadyStateTau,
		Alpha: inf / tau,
		Beta:  (1 - inf) / tau,
		Inf:   inf,
		Tau:   tau,
	}
}

func (k Kinetics) SteadyState() float64  { return k.Inf }
func (k Kinetics) TimeConstant() float64 { return k.Tau }

// Rates returns the opening and closing rates.
func (k Kinetics) Rates() (alpha, beta float64) { return k.Alpha, k.Beta }

// Derivative returns dy/dt at gate value y.
func (k Kinetics) Derivative(y float64) float64 {
	if k.Form == AlphaBeta {
		return k.Alpha*(1-y) - k.Beta*y
	}
	return (k.Inf - y) / k.Tau
}

// Euler returns y advanced by one explicit Euler step.
func (k Kinetics) Euler(y, dt float64) float64 {
	return y + dt*k.Derivative(y)
}

// RushLarsen returns the exact solution of dy/dt = (Inf-y)/Tau after dt.
func (k Kinetics) RushLarsen(y, dt float64) float64 {
	return k.Inf + (y-k.Inf)*math.Exp(-dt/k.Tau)
}

// Advance applies scheme s to y.
func (k Kinetics) Advance(y, dt float64, s Scheme) float64 {
	if s == RushLarsen {
		return k.RushLarsen(y, dt)
	}
	return k.Euler(y, dt)
}

// IntegrateGates advances every gate by its kinetics. ks and gates must have
// equal length.
func IntegrateGates(ks []Kinetics, gates Gates, dt float64, s Scheme) {
	if len(ks) != len(gates) {
		panic(ErrDimensionMismatch)
	}
	for i := range gates {
		gates[i] = ks[i].Advance(gates[i], dt, s)
	}
	checkBand(gates)
}

// SteadyStates writes the steady state of every gate into gates.
func SteadyStates(ks []Kinetics, gates Gates) {
	if len(ks) != len(gates) {
		panic(ErrDimensionMismatch)
	}
	for i := range gates {
		gates[i] = ks[i].Inf
	}
}
