package bernus_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/cardiosim/internal/bernus"
)

var _ = Describe("Rate functions", func() {
	ek := bernus.New().Potentials().K

	rates := map[string]func(float64) float64{
		"alpha_m":  bernus.AlphaM,
		"beta_m":   bernus.BetaM,
		"alpha_d":  bernus.AlphaD,
		"beta_d":   bernus.BetaD,
		"alpha_f":  bernus.AlphaF,
		"beta_f":   bernus.BetaF,
		"alpha_r":  bernus.AlphaR,
		"beta_r":   bernus.BetaR,
		"alpha_to": bernus.AlphaTo,
		"beta_to":  bernus.BetaTo,
		"alpha_k1": func(v float64) float64 { return bernus.AlphaK1(v, ek) },
		"beta_k1":  func(v float64) float64 { return bernus.BetaK1(v, ek) },
		"tau_v":    bernus.TauV,
		"tau_x":    bernus.TauX,
		"tau_to":   func(v float64) float64 { return bernus.TauTo(v, 1) },
	}

	It("are non-negative and finite on [-150, 100] mV", func() {
		for name, f := range rates {
			for v := -150.0; v <= 100.0; v += 0.01 {
				r := f(v)
				Expect(math.IsNaN(r) || math.IsInf(r, 0)).To(BeFalse(), "%s(%g) = %g", name, v, r)
				Expect(r).To(BeNumerically(">=", 0), "%s(%g)", name, v)
			}
		}
	})

	It("keep steady states inside [0, 1]", func() {
		for v := -150.0; v <= 100.0; v += 0.5 {
			for _, inf := range []float64{
				bernus.VInf(v), bernus.XInf(v), bernus.DInf(v), bernus.RInf(v),
				bernus.ToInf(v, 0), bernus.K1Inf(v, ek),
			} {
				Expect(inf).To(And(BeNumerically(">=", 0), BeNumerically("<=", 1)), "V=%g", v)
			}
		}
	})

	Describe("alpha_m", func() {
		It("returns the analytic limit at -47.13 mV", func() {
			Expect(bernus.AlphaM(-47.13)).To(BeNumerically("~", 3.2, 1e-12))
		})

		It("is continuous across the singular voltage", func() {
			for _, dv := range []float64{1e-12, 1e-9, 1e-7, 1e-5, 1e-3} {
				lo := bernus.AlphaM(-47.13 - dv)
				hi := bernus.AlphaM(-47.13 + dv)
				Expect(lo).To(BeNumerically("~", 3.2, 0.2*dv+1e-12))
				Expect(hi).To(BeNumerically("~", 3.2, 0.2*dv+1e-12))
				Expect(hi).To(BeNumerically(">=", lo))
			}
		})

		It("matches the closed form away from the singularity", func() {
			for _, v := range []float64{-120, -80, -30, 0, 40} {
				want := 0.32 * (v + 47.13) / (1 - math.Exp(-0.1*(v+47.13)))
				Expect(bernus.AlphaM(v)).To(BeNumerically("~", want, 1e-12*math.Max(1, want)))
			}
		})
	})

	Describe("tau_v", func() {
		It("approaches 0.25 ms at large depolarisation", func() {
			for _, v := range []float64{150, 200, 500, 1e4} {
				tau := bernus.TauV(v)
				Expect(math.IsNaN(tau)).To(BeFalse(), "V=%g", v)
				Expect(tau).To(BeNumerically("~", 0.25, 1e-6))
			}
		})

		It("matches the tanh ratio where it is well conditioned", func() {
			for _, v := range []float64{-150, -90, -60, -20, 20} {
				want := 0.25 + 2.24*(1-math.Tanh(7.74+0.12*v))/(1-math.Tanh(0.07*(92.4+v)))
				Expect(bernus.TauV(v)).To(BeNumerically("~", want, 1e-7*want))
			}
			Expect(bernus.TauV(-150)).To(BeNumerically("~", 2.490704848247812, 1e-9))
		})
	})

	It("evaluates the remaining factors", func() {
		Expect(bernus.DInf(-20)).To(BeNumerically("~", 0.1085736713121811, 1e-12))
		Expect(bernus.RInf(0)).To(BeNumerically("~", 0.03692879153435314, 1e-12))
		Expect(bernus.XInf(0)).To(BeNumerically("~", 0.6944351061656272, 1e-12))
		Expect(bernus.TauX(-90.272)).To(BeNumerically("~", 132.24334577252603, 1e-9))
		Expect(bernus.K1Inf(-90.272, ek)).To(BeNumerically("~", 0.029036850285533954, 1e-12))
		Expect(bernus.FNaK(-90.272, 138)).To(BeNumerically("~", 0.8175515659343137, 1e-12))
		Expect(bernus.FNaKA(10, 4)).To(BeNumerically("~", 0.36363636363636365, 1e-15))
		Expect(bernus.FCa(0.0006)).To(BeNumerically("~", 0.5, 1e-15))

		c := bernus.DefaultParams().Concentrations
		Expect(bernus.FNaCa(-90.272, c)).To(BeNumerically("~", -0.00040986440700433076, 1e-15))
	})

	It("shifts and scales the to gate", func() {
		Expect(bernus.ToInf(-40, 10)).To(BeNumerically("~", bernus.ToInf(-50, 0), 1e-15))
		Expect(bernus.TauTo(-40, 2)).To(BeNumerically("~", bernus.TauTo(-40, 1)/2, 1e-12))
	})
})
