package metrics

import "github.com/san-kum/cardiosim/internal/ionic"

// GateBand is the fraction of observed states whose gates all lie in
// [lo, hi]. A value below 1 flags overshoot from the integration scheme.
type GateBand struct {
	name     string
	lo, hi   float64
	inside   int
	observed int
}

func NewGateBand(lo, hi float64) *GateBand {
	return &GateBand{name: "gate_band", lo: lo, hi: hi}
}

// NewDefaultGateBand uses the tolerance band of the ionic package.
func NewDefaultGateBand() *GateBand {
	return NewGateBand(ionic.BandLow, ionic.BandHigh)
}

func (g *GateBand) Name() string { return g.name }

func (g *GateBand) Observe(t, v float64, gates ionic.Gates) {
	g.observed++
	if gates.InBand(g.lo, g.hi) {
		g.inside++
	}
}

func (g *GateBand) Value() float64 {
	if g.observed == 0 {
		return 1.0
	}
	return float64(g.inside) / float64(g.observed)
}

func (g *GateBand) Reset() {
	g.inside = 0
	g.observed = 0
}
