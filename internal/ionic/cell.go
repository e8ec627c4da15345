package ionic

// Cell is the mutable (V, gates) pair of one membrane patch. It is owned by
// whoever drives the simulation; the model itself is shared and read-only.
type Cell struct {
	Model Model
	V     float64
	Gates Gates
}

// NewCell returns a cell at the model's resting potential with gates in
// steady state.
func NewCell(m Model) *Cell {
	return NewCellAt(m, m.RestingPotential())
}

// NewCellAt returns a cell at voltage v0 with gates in steady state at v0.
func NewCellAt(m Model, v0 float64) *Cell {
	c := &Cell{Model: m, Gates: NewGates(m)}
	c.Reset(v0)
	return c
}

// Reset clamps the cell to v and reinitialises its gates to steady state.
func (c *Cell) Reset(v float64) {
	c.V = v
	c.Model.InitializeSteadyState(v, c.Gates)
}

// IonicCurrent returns the total ionic current of the cell's current state.
func (c *Cell) IonicCurrent() float64 {
	return c.Model.IonicCurrent(c.V, c.Gates)
}

// Step advances the cell by dt with integ.
func (c *Cell) Step(integ Integrator, stim, dt float64) {
	c.V = integ.Step(c.Model, c.V, c.Gates, stim, dt)
}

// Gate returns the value of the named gate.
func (c *Cell) Gate(name string) (float64, error) {
	i, err := c.Model.GateIndex(name)
	if err != nil {
		return 0, err
	}
	return c.Gates[i], nil
}

func (c *Cell) IsValid() bool {
	return c.Gates.IsValid() && !isNonFinite(c.V)
}
