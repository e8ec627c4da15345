package bernus

import "github.com/san-kum/cardiosim/internal/ionic"

// Current indices into the breakdown returned by Currents.
const (
	INa = iota
	ICa
	ITo
	IK
	IK1
	ICaB
	INaB
	INaK
	INaCa
	NumCurrents
)

var currentNames = [NumCurrents]string{
	INa:   "i_na",
	ICa:   "i_ca",
	ITo:   "i_to",
	IK:    "i_k",
	IK1:   "i_k1",
	ICaB:  "i_b_ca",
	INaB:  "i_b_na",
	INaK:  "i_nak",
	INaCa: "i_naca",
}

// CurrentSet is the per-current breakdown of the total ionic current.
type CurrentSet [NumCurrents]float64

// Total sums the currents in a fixed order.
func (c CurrentSet) Total() float64 {
	var sum float64
	for _, v := range c {
		sum += v
	}
	return sum
}

// Map returns the currents keyed by name.
func (c CurrentSet) Map() map[string]float64 {
	out := make(map[string]float64, NumCurrents)
	for i, v := range c {
		out[currentNames[i]] = v
	}
	return out
}

func (m *Model) CurrentNames() []string {
	return append([]string(nil), currentNames[:]...)
}

// Breakdown evaluates all nine currents at (v, gates).
func (m *Model) Breakdown(v float64, gates ionic.Gates) CurrentSet {
	g := m.params.Conductances
	c := m.params.Concentrations
	e := m.potentials

	mg, vg := gates[GateM], gates[GateV]
	xg := gates[GateX]

	var out CurrentSet
	out[INa] = g.Na * mg * mg * mg * vg * vg * (v - e.Na)
	out[ICa] = g.Ca * DInf(v) * gates[GateF] * m.fCa * (v - e.Ca)
	out[ITo] = g.To * RInf(v) * gates[GateTo] * (v - e.To)
	out[IK] = g.K * xg * xg * (v - e.K)
	out[IK1] = g.K1 * K1Inf(v, e.K) * (v - e.K)
	out[ICaB] = g.CaB * (v - e.Ca)
	out[INaB] = g.NaB * (v - e.Na)
	out[INaK] = g.NaK * FNaK(v, c.NaE) * m.fNaKA
	out[INaCa] = g.NaCa * FNaCa(v, c)
	return out
}

// Currents implements ionic.CurrentReporter.
func (m *Model) Currents(v float64, gates ionic.Gates, out []float64) {
	cs := m.Breakdown(v, gates)
	copy(out, cs[:])
}
