package bernus

import "math"

var sqrt2Pi = math.Sqrt(2 * math.Pi)

// vtrap returns z/(1-exp(-z)), using the series expansion near z = 0.
func vtrap(z float64) float64 {
	if math.Abs(z) < 1e-6 {
		return 1 + z/2 + z*z/12
	}
	return z / -math.Expm1(-z)
}

// softplus is log(1+exp(x)) without overflow.
func softplus(x float64) float64 {
	return math.Max(x, 0) + math.Log1p(math.Exp(-math.Abs(x)))
}

// Sodium activation (m).

func AlphaM(v float64) float64 {
	return 3.2 * vtrap(0.1*(v+47.13))
}

func BetaM(v float64) float64 {
	return 0.08 * math.Exp(-v/11)
}

// Sodium inactivation (v).

func VInf(v float64) float64 {
	return 0.5 * (1 - math.Tanh(7.74+0.12*v))
}

// TauV is 0.25 + 2.24*(1-tanh(a))/(1-tanh(b)). Both factors are written as
// 2*exp(-softplus(2x)) so the ratio stays finite where both tanh saturate.
func TauV(v float64) float64 {
	a := 7.74 + 0.12*v
	b := 0.07 * (92.4 + v)
	return 0.25 + 2.24*math.Exp(softplus(2*b)-softplus(2*a))
}

// Calcium activation (d), instantaneous.

func AlphaD(v float64) float64 {
	u := (v - 22.36) / 16.68
	return 14.98 * math.Exp(-0.5*u*u) / (16.68 * sqrt2Pi)
}

func BetaD(v float64) float64 {
	u := (v - 6.27) / 14.93
	return 0.1471 - 5.3*math.Exp(-0.5*u*u)/(14.93*sqrt2Pi)
}

func DInf(v float64) float64 {
	a := AlphaD(v)
	return a / (a + BetaD(v))
}

// Calcium inactivation (f).

func AlphaF(v float64) float64 {
	return 6.87e-3 / (1 + math.Exp(-(6.1546-v)/6.12))
}

func BetaF(v float64) float64 {
	return 5.75e-4 + (0.069*math.Exp(-0.11*(v+9.825))+0.011)/(1+math.Exp(-0.278*(v+9.825)))
}

// FCa is the calcium-dependent inactivation factor of the L-type current.
func FCa(caI float64) float64 {
	return 1 / (1 + caI/0.0006)
}

// Transient outward activation (r), instantaneous.

func AlphaR(v float64) float64 {
	return 0.5266 * math.Exp(-0.0166*(v-42.2912)) / (1 + math.Exp(-0.0943*(v-42.2912)))
}

func BetaR(v float64) float64 {
	return (5.186e-5*v + 0.5149*math.Exp(-0.1344*(v-5.0027))) / (1 + math.Exp(-0.1348*(v-5.186e-5)))
}

func RInf(v float64) float64 {
	a := AlphaR(v)
	return a / (a + BetaR(v))
}

// Transient outward inactivation (to).

func AlphaTo(v float64) float64 {
	return (5.612e-5*v + 0.0721*math.Exp(-0.173*(v+34.2531))) / (1 + math.Exp(-0.1732*(v+34.2531)))
}

func BetaTo(v float64) float64 {
	return (1.215e-4*v + 0.0767*math.Exp(-1.66e-9*(v+34.0235))) / (1 + math.Exp(-0.1604*(v+34.0235)))
}

// ToInf is the steady state of the to gate with its voltage dependence
// shifted by shift mV.
func ToInf(v, shift float64) float64 {
	a := AlphaTo(v - shift)
	return a / (a + BetaTo(v-shift))
}

// TauTo is the time constant of the to gate scaled by 1/p.
func TauTo(v, p float64) float64 {
	return 1 / (p * (AlphaTo(v) + BetaTo(v)))
}

// Delayed rectifier activation (x).

func XInf(v float64) float64 {
	return 0.988 / (1 + math.Exp(-0.861-0.062*v))
}

func TauX(v float64) float64 {
	u := 25.5 + v
	return 240*math.Exp(-u*u/156) + 182*(1+math.Tanh(0.154+0.0116*v)) + TauXA(v)
}

func TauXA(v float64) float64 {
	return 40 * (1 - math.Tanh(160+2*v))
}

// Inward rectifier (k1), instantaneous. ek is the potassium equilibrium
// potential.

func AlphaK1(v, ek float64) float64 {
	return 0.1 / (1 + math.Exp(0.06*(v-ek-200)))
}

func BetaK1(v, ek float64) float64 {
	return (3*math.Exp(2e-4*(v-ek+100)) + math.Exp(0.1*(v-ek-10))) / (1 + math.Exp(-0.5*(v-ek)))
}

func K1Inf(v, ek float64) float64 {
	a := AlphaK1(v, ek)
	return a / (a + BetaK1(v, ek))
}

// Pumps.

// FNaK is the voltage dependence of the Na/K pump.
func FNaK(v, naE float64) float64 {
	sigma := 0.1428 * (math.Exp(naE/67.3) - 1)
	e := math.Exp(-0.0037 * v)
	return 1 / (1 + 0.1245*e + 0.0365*sigma*e)
}

// FNaKA is the concentration dependence of the Na/K pump.
func FNaKA(naI, kE float64) float64 {
	return (1 / (1 + math.Pow(10/naI, 1.5))) * (kE / (kE + 1.5))
}

// FNaCa is the Na/Ca exchanger flux per unit conductance.
func FNaCa(v float64, c Concentrations) float64 {
	const kmNa, kmCa = 87.5, 1.38
	a := 1 / ((kmNa*kmNa*kmNa + c.NaE*c.NaE*c.NaE) * (kmCa + c.CaE) * (1 + 0.1*math.Exp(-0.024*v)))
	return a * (c.NaI*c.NaI*c.NaI*c.CaE*math.Exp(0.013*v) - c.NaE*c.NaE*c.NaE*c.CaI*math.Exp(-0.024*v))
}
