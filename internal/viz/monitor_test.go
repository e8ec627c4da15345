package viz

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/cardiosim/internal/bernus"
	"github.com/san-kum/cardiosim/internal/ionic"
	"github.com/san-kum/cardiosim/internal/sim"
)

func key(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func newTestMonitor(t *testing.T, v0 float64, cfg MonitorConfig) *Monitor {
	t.Helper()
	m, err := NewMonitor(ionic.NewCellAt(bernus.New(), v0), cfg)
	if err != nil {
		t.Fatalf("NewMonitor: %v", err)
	}
	return m
}

func TestMonitorInvalidStep(t *testing.T) {
	_, err := NewMonitor(ionic.NewCell(bernus.New()), MonitorConfig{Dt: 0})
	if !errors.Is(err, ionic.ErrInvalidStep) {
		t.Errorf("got %v, want ErrInvalidStep", err)
	}
}

func TestMonitorTickAdvances(t *testing.T) {
	m := newTestMonitor(t, bernus.RestingPotential, MonitorConfig{
		Scheme:       ionic.RushLarsen,
		Dt:           0.05,
		StepsPerTick: 20,
	})

	_, cmd := m.Update(TickMsg{})
	if cmd == nil {
		t.Error("expected next tick to be scheduled")
	}
	if got := m.Time(); got < 0.999 || got > 1.001 {
		t.Errorf("time after one tick: got %v, want 1", got)
	}
}

func TestMonitorPauseAndReset(t *testing.T) {
	m := newTestMonitor(t, -60, MonitorConfig{Scheme: ionic.RushLarsen, Dt: 0.05, StepsPerTick: 10})
	v0 := m.cell.V

	m.Update(tea.KeyMsg{Type: tea.KeySpace})
	if m.Running() {
		t.Fatal("expected paused after space")
	}
	m.Update(TickMsg{})
	if m.Time() != 0 {
		t.Errorf("paused monitor advanced to %v", m.Time())
	}

	m.Update(tea.KeyMsg{Type: tea.KeySpace})
	m.Update(TickMsg{})
	if m.cell.V == v0 {
		t.Error("voltage did not change")
	}

	m.Update(key('r'))
	if m.Time() != 0 || m.cell.V != v0 || !m.Running() {
		t.Errorf("reset: t=%v V=%v running=%v", m.Time(), m.cell.V, m.Running())
	}
}

func TestMonitorToggleScheme(t *testing.T) {
	m := newTestMonitor(t, bernus.RestingPotential, MonitorConfig{Scheme: ionic.Euler, Dt: 0.001})

	m.Update(key('s'))
	if m.Scheme() != ionic.RushLarsen {
		t.Errorf("got %v, want rush_larsen", m.Scheme())
	}
	m.Update(key('s'))
	if m.Scheme() != ionic.Euler {
		t.Errorf("got %v, want euler", m.Scheme())
	}
}

func TestMonitorStopsAtDuration(t *testing.T) {
	m := newTestMonitor(t, bernus.RestingPotential, MonitorConfig{
		Scheme:       ionic.RushLarsen,
		Dt:           0.1,
		Duration:     1,
		StepsPerTick: 7,
	})

	for i := 0; i < 5; i++ {
		m.Update(TickMsg{})
	}
	if m.step != 10 {
		t.Errorf("steps: got %d, want 10", m.step)
	}
	if m.Running() {
		t.Error("expected monitor to stop at the end of the run")
	}
	if !strings.Contains(m.View(), "DONE") {
		t.Error("view does not report completion")
	}
}

func TestMonitorDivergence(t *testing.T) {
	m := newTestMonitor(t, -60, MonitorConfig{Scheme: ionic.Euler, Dt: 0.05})

	m.advance(1000)
	if !m.diverged {
		t.Fatal("expected forward Euler at dt=0.05 to diverge")
	}
	if !errors.Is(m.Err(), ionic.ErrUnstable) {
		t.Errorf("got %v, want ErrUnstable", m.Err())
	}
	if m.Running() {
		t.Error("diverged monitor still running")
	}

	m.Update(tea.KeyMsg{Type: tea.KeySpace})
	if m.Running() {
		t.Error("space resumed a diverged run")
	}
	if !strings.Contains(m.View(), "DIVERGED") {
		t.Error("view does not report divergence")
	}
}

func TestMonitorViewListsGates(t *testing.T) {
	m := newTestMonitor(t, bernus.RestingPotential, MonitorConfig{
		Scheme:   ionic.RushLarsen,
		Dt:       0.01,
		Stimulus: sim.PulseTrain{Amplitude: 60, Duration: 1},
	})

	view := m.View()
	for _, want := range []string{"BERNUS", "rush_larsen", "Iion", "to", "space pause"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestGateBar(t *testing.T) {
	if got := GateBar(2, 10); !strings.Contains(got, "!") {
		t.Errorf("out of range gate not flagged: %q", got)
	}
	if got := GateBar(0.5, 10); strings.Contains(got, "!") {
		t.Errorf("in range gate flagged: %q", got)
	}
}
