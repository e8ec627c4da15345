package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/cardiosim/internal/integrators"
	"github.com/san-kum/cardiosim/internal/ionic"
	"github.com/san-kum/cardiosim/internal/sim"
)

const (
	frameRate   = time.Second / 30
	barWidth    = 20
	progressLen = 40
)

type TickMsg time.Time

// MonitorConfig describes the run shown by a Monitor.
type MonitorConfig struct {
	Scheme       ionic.Scheme
	Capacitance  float64
	Dt           float64 // ms
	Duration     float64 // ms; zero runs until quit
	StepsPerTick int
	Stimulus     sim.Stimulus
}

// Monitor is a Bubble Tea model driving one cell.
type Monitor struct {
	cell    *ionic.Cell
	integ   ionic.Integrator
	cfg     MonitorConfig
	initial ionic.Cell

	step     int
	t        float64
	running  bool
	diverged bool
	err      error
}

// NewMonitor returns a monitor for cell. The cell's current state is what
// reset restores.
func NewMonitor(cell *ionic.Cell, cfg MonitorConfig) (*Monitor, error) {
	if err := ionic.ValidateStep(cfg.Dt); err != nil {
		return nil, fmt.Errorf("dt=%g: %w", cfg.Dt, err)
	}
	if cfg.Capacitance == 0 {
		cfg.Capacitance = integrators.DefaultCapacitance
	}
	if cfg.StepsPerTick <= 0 {
		cfg.StepsPerTick = 1
	}
	if cfg.Stimulus == nil {
		cfg.Stimulus = sim.NoStimulus{}
	}

	integ, err := integrators.WithCapacitance(cfg.Scheme, cfg.Capacitance)
	if err != nil {
		return nil, err
	}

	return &Monitor{
		cell:    cell,
		integ:   integ,
		cfg:     cfg,
		initial: ionic.Cell{Model: cell.Model, V: cell.V, Gates: cell.Gates.Clone()},
		running: true,
	}, nil
}

func tick() tea.Cmd {
	return tea.Tick(frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m *Monitor) Init() tea.Cmd {
	return tick()
}

func (m *Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if !m.diverged && !m.finished() {
				m.running = !m.running
			}
		case "r":
			m.reset()
		case "s":
			m.toggleScheme()
		}
	case TickMsg:
		if m.running {
			m.advance(m.cfg.StepsPerTick)
		}
		return m, tick()
	}
	return m, nil
}

// advance takes up to n steps, stopping at the end of the run or on
// divergence.
func (m *Monitor) advance(n int) {
	for i := 0; i < n; i++ {
		if m.finished() {
			m.running = false
			return
		}
		stim := m.cfg.Stimulus.Current(m.t)
		m.cell.Step(m.integ, stim, m.cfg.Dt)
		m.step++
		m.t = float64(m.step) * m.cfg.Dt

		if !m.cell.IsValid() {
			m.diverged = true
			m.running = false
			m.err = &ionic.SimulationError{Step: m.step, Time: m.t, Voltage: m.cell.V, Wrapped: ionic.ErrUnstable}
			return
		}
	}
}

func (m *Monitor) finished() bool {
	return m.cfg.Duration > 0 && m.t >= m.cfg.Duration-1e-9*m.cfg.Dt
}

func (m *Monitor) reset() {
	m.cell.V = m.initial.V
	copy(m.cell.Gates, m.initial.Gates)
	m.step = 0
	m.t = 0
	m.diverged = false
	m.err = nil
	m.running = true
}

func (m *Monitor) toggleScheme() {
	next := ionic.RushLarsen
	if m.cfg.Scheme == ionic.RushLarsen {
		next = ionic.Euler
	}
	integ, err := integrators.WithCapacitance(next, m.cfg.Capacitance)
	if err != nil {
		m.err = err
		return
	}
	m.cfg.Scheme = next
	m.integ = integ
}

// Time returns the simulated time in ms.
func (m *Monitor) Time() float64 { return m.t }

func (m *Monitor) Scheme() ionic.Scheme { return m.cfg.Scheme }
func (m *Monitor) Running() bool        { return m.running }

// Err reports why the monitor stopped, if it stopped on an error.
func (m *Monitor) Err() error { return m.err }

func (m *Monitor) View() string {
	var s strings.Builder

	s.WriteString(Title.Render(fmt.Sprintf("%s  %s", strings.ToUpper(m.cell.Model.Name()), m.cfg.Scheme)) + "\n")
	s.WriteString(m.status() + "\n\n")

	row := func(label, value string) {
		s.WriteString(MetricLabel.Render(label) + MetricValue.Render(value) + "\n")
	}

	row("t", fmt.Sprintf("%10.3f ms", m.t))
	row("V", fmt.Sprintf("%10.4f mV", m.cell.V))
	if !m.diverged {
		row("Iion", fmt.Sprintf("%10.5f uA/uF", m.cell.IonicCurrent()))
	}
	row("stim", fmt.Sprintf("%10.3f uA/uF", m.cfg.Stimulus.Current(m.t)))
	s.WriteString("\n")

	for i, name := range m.cell.Model.GateNames() {
		g := m.cell.Gates[i]
		s.WriteString(MetricLabel.Render(name) + GateBar(g, barWidth) + " " + MetricValue.Render(fmt.Sprintf("%.6f", g)) + "\n")
	}

	if m.cfg.Duration > 0 {
		s.WriteString("\n" + ProgressBar(m.t/m.cfg.Duration, progressLen) + "\n")
	}

	s.WriteString("\n" + KeyHint.Render("space pause · r reset · s scheme · q quit"))
	return Panel.Render(s.String())
}

func (m *Monitor) status() string {
	switch {
	case m.diverged:
		return StatusFailed.Render(fmt.Sprintf("DIVERGED at step %d", m.step))
	case m.finished():
		return StatusPaused.Render("DONE")
	case m.running:
		return StatusRunning.Render("RUNNING")
	default:
		return StatusPaused.Render("PAUSED")
	}
}
