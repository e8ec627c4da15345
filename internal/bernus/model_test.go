package bernus_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/cardiosim/internal/bernus"
	"github.com/san-kum/cardiosim/internal/ionic"
)

var _ = Describe("Model", func() {
	var (
		m     *bernus.Model
		gates ionic.Gates
	)

	BeforeEach(func() {
		m = bernus.New()
		gates = ionic.NewGates(m)
	})

	It("exposes five named gates", func() {
		Expect(m.Name()).To(Equal("bernus"))
		Expect(m.GateCount()).To(Equal(5))
		Expect(m.GateNames()).To(Equal([]string{"m", "v", "f", "to", "x"}))

		for i, name := range m.GateNames() {
			idx, err := m.GateIndex(name)
			Expect(err).NotTo(HaveOccurred())
			Expect(idx).To(Equal(i))
		}
		Expect(bernus.GateTo).To(Equal(3))

		_, err := m.GateIndex("h")
		Expect(err).To(HaveOccurred())
	})

	It("derives the equilibrium potentials", func() {
		e := m.Potentials()
		Expect(e.Na).To(BeNumerically("~", 70.14762388864457, 1e-10))
		Expect(e.Ca).To(BeNumerically("~", 113.8164388377095, 1e-10))
		Expect(e.To).To(BeNumerically("~", -70.79112145405429, 1e-10))
		Expect(e.K).To(BeNumerically("~", -95.02122262416182, 1e-10))
	})

	Describe("InitializeSteadyState", func() {
		It("sets every gate to its steady state", func() {
			m.InitializeSteadyState(bernus.RestingPotential, gates)

			want := []float64{0.0006380302905788723, 0.9979447081196601, 0.9227553983206125, 0.9998887455779187, 0.008594153178219245}
			for i, w := range want {
				Expect(gates[i]).To(BeNumerically("~", w, 1e-12), "gate %s", m.GateNames()[i])
			}
		})

		It("is a fixed point of both schemes", func() {
			for _, s := range ionic.Schemes() {
				m.InitializeSteadyState(-60, gates)
				before := gates.Clone()
				m.IntegrateStep(-60, 0.01, gates, s)
				for i := range gates {
					Expect(gates[i]).To(BeNumerically("~", before[i], 1e-14), "%v gate %d", s, i)
				}

				deriv := make(ionic.Gates, bernus.NumGates)
				m.GatingDerivative(-60, before, deriv)
				for i := range deriv {
					Expect(deriv[i]).To(BeNumerically("~", 0, 1e-12))
				}
			}
		})

		It("converges from any start under repeated Rush-Larsen steps", func() {
			gates = ionic.Gates{0, 1, 0, 1, 0}
			for i := 0; i < 20000; i++ {
				m.IntegrateStep(-20, 1.0, gates, ionic.RushLarsen)
			}
			ks := make([]ionic.Kinetics, bernus.NumGates)
			m.Kinetics(-20, ks)
			for i := range gates {
				Expect(gates[i]).To(BeNumerically("~", ks[i].Inf, 1e-9))
			}

			m.InitializeSteadyState(-90, gates)
			m.IntegrateStep(-20, 1e6, gates, ionic.RushLarsen)
			for i := range gates {
				Expect(gates[i]).To(BeNumerically("~", ks[i].Inf, 1e-9))
			}
		})
	})

	Describe("IonicCurrent", func() {
		It("matches the reference value at the documented resting potential", func() {
			v := bernus.RestingPotential
			m.InitializeSteadyState(v, gates)
			Expect(m.IonicCurrent(v, gates)).To(BeNumerically("~", 0.18040351149262096, 1e-9))
		})

		It("vanishes at the zero-current resting potential", func() {
			v := -92.18779465263829
			m.InitializeSteadyState(v, gates)
			Expect(m.IonicCurrent(v, gates)).To(BeNumerically("~", 0, 1e-6))
		})

		It("is the sum of the nine currents", func() {
			v := bernus.RestingPotential
			m.InitializeSteadyState(v, gates)

			cs := m.Breakdown(v, gates)
			want := []float64{-6.639e-7, -2.2115e-9, -1.41824e-4, 6.6647e-6, 0.53781962, -0.17347517, -0.16041962, 0.38647892, -0.40986441}
			for i, w := range want {
				Expect(cs[i]).To(BeNumerically("~", w, math.Abs(w)*1e-3), "%s", m.CurrentNames()[i])
			}
			Expect(cs.Total()).To(Equal(m.IonicCurrent(v, gates)))
			Expect(cs.Map()).To(HaveLen(bernus.NumCurrents))

			out := make([]float64, bernus.NumCurrents)
			m.Currents(v, gates, out)
			Expect(out).To(Equal(cs[:]))
		})

		It("does not modify the gates", func() {
			m.InitializeSteadyState(-30, gates)
			before := gates.Clone()
			m.IonicCurrent(-30, gates)
			Expect(gates).To(Equal(before))
		})
	})

	Describe("IntegrateStep", func() {
		It("panics on a non-positive step", func() {
			m.InitializeSteadyState(-60, gates)
			Expect(func() { m.IntegrateStep(-60, 0, gates, ionic.Euler) }).To(PanicWith(ionic.ErrInvalidStep))
			Expect(func() { m.IntegrateStep(-60, -1, gates, ionic.RushLarsen) }).To(Panic())
		})

		It("panics on a gate vector of the wrong length", func() {
			Expect(func() { m.IntegrateStep(-60, 0.01, make(ionic.Gates, 4), ionic.Euler) }).To(PanicWith(ionic.ErrDimensionMismatch))
		})

		It("stays finite at the sodium activation singularity", func() {
			m.InitializeSteadyState(-47.13, gates)
			Expect(gates.IsValid()).To(BeTrue())
			m.IntegrateStep(-47.13, 0.01, gates, ionic.Euler)
			Expect(gates.IsValid()).To(BeTrue())
			Expect(math.IsNaN(m.IonicCurrent(-47.13, gates))).To(BeFalse())
		})
	})
})

var _ = Describe("NewWithParams", func() {
	It("rejects non-positive concentrations", func() {
		p := bernus.DefaultParams()
		p.NaI = 0

		m, err := bernus.NewWithParams(p)
		Expect(m).To(BeNil())
		Expect(errors.Is(err, ionic.ErrInvalidParameter)).To(BeTrue())

		var ipe *ionic.InvalidParameterError
		Expect(errors.As(err, &ipe)).To(BeTrue())
		Expect(ipe.Param).To(Equal("na_i"))
	})

	It("rejects a non-positive temperature", func() {
		p := bernus.DefaultParams()
		p.Temperature = -1

		_, err := bernus.NewWithParams(p)
		var ipe *ionic.InvalidParameterError
		Expect(errors.As(err, &ipe)).To(BeTrue())
		Expect(ipe.Param).To(Equal("temperature"))
		Expect(ipe.Value).To(Equal(-1.0))
	})

	It("rejects negative conductances and non-finite values", func() {
		p := bernus.DefaultParams()
		p.Conductances.K1 = -3.9
		_, err := bernus.NewWithParams(p)
		Expect(err).To(MatchError(ionic.ErrInvalidParameter))

		p = bernus.DefaultParams()
		p.VShift = math.NaN()
		_, err = bernus.NewWithParams(p)
		Expect(err).To(MatchError(ionic.ErrInvalidParameter))
	})

	It("applies named overrides without touching the original", func() {
		base := bernus.DefaultParams()
		p, err := base.With(map[string]float64{"g_k1": 2.0, "k_e": 5.4})
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Conductances.K1).To(Equal(2.0))
		Expect(p.KE).To(Equal(5.4))
		Expect(base.Conductances.K1).To(Equal(3.9))

		m, err := bernus.NewWithParams(p)
		Expect(err).NotTo(HaveOccurred())
		Expect(m.Params()).To(HaveKeyWithValue("g_k1", 2.0))
		Expect(m.Potentials().K).To(BeNumerically(">", bernus.New().Potentials().K))

		_, err = base.With(map[string]float64{"g_unknown": 1})
		Expect(err).To(MatchError(ionic.ErrInvalidParameter))
		_, err = base.With(map[string]float64{"ca_e": 0})
		Expect(err).To(MatchError(ionic.ErrInvalidParameter))
	})

	It("lists every parameter name", func() {
		names := bernus.Names()
		Expect(names).To(HaveLen(20))
		Expect(names).To(ContainElements("g_na", "ca_i", "temperature", "p", "v_shift"))
		Expect(bernus.DefaultParams().Map()).To(HaveLen(len(names)))
	})
})

var _ = Describe("Nernst", func() {
	It("fails for non-positive concentrations", func() {
		_, err := bernus.Nernst(1, 0, 10, 26.7)
		Expect(err).To(MatchError(ionic.ErrInvalidParameter))
		_, err = bernus.Nernst(2, 2, -1, 26.7)
		Expect(err).To(MatchError(ionic.ErrInvalidParameter))
		_, err = bernus.Nernst(0, 2, 1, 26.7)
		Expect(err).To(MatchError(ionic.ErrInvalidParameter))
	})

	It("halves the potential for divalent ions", func() {
		e1, err := bernus.Nernst(1, 2, 0.0004, 26.7)
		Expect(err).NotTo(HaveOccurred())
		e2, err := bernus.Nernst(2, 2, 0.0004, 26.7)
		Expect(err).NotTo(HaveOccurred())
		Expect(e2).To(BeNumerically("~", e1/2, 1e-12))
	})
})
