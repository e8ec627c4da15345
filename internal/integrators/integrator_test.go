package integrators

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/cardiosim/internal/bernus"
	"github.com/san-kum/cardiosim/internal/ionic"
)

type reference struct {
	v     float64
	gates [bernus.NumGates]float64
}

// Values at t = 5 ms from V0 = -60 mV with gates at steady state.
var (
	eulerFine   = reference{-64.12519099658648, [5]float64{0.04298368510523391, 0.2622150077077022, 0.9209191021371298, 0.9864771391186775, 0.05324463283710185}}
	eulerCoarse = reference{-64.11965500422778, [5]float64{0.04301826920579264, 0.26211264090722836, 0.9209189161767447, 0.986467163691044, 0.053248234511418566}}
	rlFine      = reference{-64.12517600259794, [5]float64{0.04298525297371378, 0.2622149302224598, 0.9209191020389288, 0.9864771157056013, 0.053244635091862696}}
	rlCoarse    = reference{-64.11788530370777, [5]float64{0.0432099554206474, 0.2621043094443453, 0.9209189053920876, 0.9864647695658821, 0.05324847995047751}}
)

func run(integ ionic.Integrator, v0, dt float64, steps int) *ionic.Cell {
	cell := ionic.NewCellAt(bernus.New(), v0)
	for i := 0; i < steps; i++ {
		cell.Step(integ, 0, dt)
	}
	return cell
}

func relErr(got, want float64) float64 {
	return math.Abs(got-want) / math.Abs(want)
}

func TestReferenceTrajectories(t *testing.T) {
	tests := []struct {
		name  string
		integ ionic.Integrator
		dt    float64
		steps int
		want  reference
	}{
		{"euler dt=0.0005", NewEuler(), 0.0005, 10000, eulerFine},
		{"euler dt=0.05", NewEuler(), 0.05, 100, eulerCoarse},
		{"rush_larsen dt=0.0005", NewRushLarsen(), 0.0005, 10000, rlFine},
		{"rush_larsen dt=0.05", NewRushLarsen(), 0.05, 100, rlCoarse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cell := run(tt.integ, -60, tt.dt, tt.steps)

			if e := relErr(cell.V, tt.want.v); e > 0.01 {
				t.Errorf("V = %.10g, want %.10g (rel err %.3g)", cell.V, tt.want.v, e)
			}
			names := cell.Model.GateNames()
			for i, want := range tt.want.gates {
				if e := relErr(cell.Gates[i], want); e > 0.01 {
					t.Errorf("gate %s = %.10g, want %.10g (rel err %.3g)", names[i], cell.Gates[i], want, e)
				}
			}
		})
	}
}

func TestSchemesAgreeForSmallDt(t *testing.T) {
	e := run(NewEuler(), -60, 0.0005, 10000)
	r := run(NewRushLarsen(), -60, 0.0005, 10000)

	if math.Abs(e.V-r.V) > 1e-3 {
		t.Errorf("Euler V=%g, Rush-Larsen V=%g", e.V, r.V)
	}
	for i := range e.Gates {
		if math.Abs(e.Gates[i]-r.Gates[i]) > 1e-4 {
			t.Errorf("gate %d: Euler %g, Rush-Larsen %g", i, e.Gates[i], r.Gates[i])
		}
	}
}

func TestDeterminism(t *testing.T) {
	for _, s := range ionic.Schemes() {
		integ, err := New(s)
		if err != nil {
			t.Fatal(err)
		}
		a := run(integ, -60, 0.01, 2000)
		b := run(integ, -60, 0.01, 2000)

		if math.Float64bits(a.V) != math.Float64bits(b.V) {
			t.Errorf("%v: V differs between runs: %v vs %v", s, a.V, b.V)
		}
		for i := range a.Gates {
			if math.Float64bits(a.Gates[i]) != math.Float64bits(b.Gates[i]) {
				t.Errorf("%v: gate %d differs between runs", s, i)
			}
		}
	}
}

func TestVoltageUsesPreStepGates(t *testing.T) {
	m := bernus.New()
	cell := ionic.NewCellAt(m, -60)
	iion := cell.IonicCurrent()
	v0 := cell.V

	cell.Step(NewRushLarsen(), 0, 0.05)
	if cell.V != v0-0.05*iion {
		t.Errorf("V = %.17g, want %.17g", cell.V, v0-0.05*iion)
	}

	cell.Reset(-60)
	cell.Step(NewEuler(), 2.5, 0.05)
	if want := v0 + 0.05*(2.5-iion); math.Abs(cell.V-want) > 1e-12 {
		t.Errorf("stimulated V = %.17g, want %.17g", cell.V, want)
	}
}

func TestCapacitanceScalesVoltageStep(t *testing.T) {
	m := bernus.New()
	g1 := ionic.NewGates(m)
	g2 := ionic.NewGates(m)
	m.InitializeSteadyState(-60, g1)
	m.InitializeSteadyState(-60, g2)

	unit := NewEuler().Step(m, -60, g1, 0, 0.01)
	integ, err := WithCapacitance(ionic.Euler, 2)
	if err != nil {
		t.Fatal(err)
	}
	double := integ.Step(m, -60, g2, 0, 0.01)

	if math.Abs((double+60)-(unit+60)/2) > 1e-12 {
		t.Errorf("dV with C=2 is %g, want half of %g", double+60, unit+60)
	}

	if _, err := WithCapacitance(ionic.Euler, 0); !errors.Is(err, ionic.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter for zero capacitance, got %v", err)
	}
}

func TestEulerDivergesWhereRushLarsenIsStable(t *testing.T) {
	const dt = 0.05

	cell := ionic.NewCellAt(bernus.New(), -60)
	euler := NewEuler()
	diverged := false
	for i := 0; i < 400; i++ {
		cell.Step(euler, 0, dt)
		if !cell.IsValid() || !cell.Gates.InBand(ionic.BandLow, ionic.BandHigh) {
			diverged = true
			break
		}
	}
	if !diverged {
		t.Errorf("expected Euler to leave the gate band at dt=%g, V=%g gates=%v", dt, cell.V, cell.Gates)
	}

	cell = ionic.NewCellAt(bernus.New(), -60)
	rl := NewRushLarsen()
	for i := 0; i < 10000; i++ {
		cell.Step(rl, 0, dt)
		if !cell.IsValid() || !cell.Gates.InBand(0, 1) {
			t.Fatalf("Rush-Larsen left [0,1] at step %d: V=%g gates=%v", i, cell.V, cell.Gates)
		}
	}
	if math.Abs(cell.V-(-92.1878)) > 1e-3 {
		t.Errorf("expected relaxation to the zero-current potential, V=%g", cell.V)
	}
}

func TestNew_UnknownScheme(t *testing.T) {
	if _, err := New(ionic.Scheme(7)); !errors.Is(err, ionic.ErrUnknownScheme) {
		t.Errorf("expected ErrUnknownScheme, got %v", err)
	}
	for _, s := range ionic.Schemes() {
		integ, err := New(s)
		if err != nil {
			t.Fatalf("New(%v): %v", s, err)
		}
		if integ.Scheme() != s {
			t.Errorf("New(%v).Scheme() = %v", s, integ.Scheme())
		}
	}
}
