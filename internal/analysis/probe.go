package analysis

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/cardiosim/internal/ionic"
)

// KineticsRow holds every gate's kinetics at one voltage together with the
// steady-state current there.
type KineticsRow struct {
	V        float64
	Kinetics []ionic.Kinetics
	Iion     float64
}

// ProbeKinetics tabulates m's kinetics at n evenly spaced voltages in
// [vmin, vmax].
func ProbeKinetics(m ionic.Model, vmin, vmax float64, n int) ([]KineticsRow, error) {
	if n < 2 {
		return nil, fmt.Errorf("%w: need at least 2 points, got %d", ErrShortSeries, n)
	}
	if !(vmax > vmin) {
		return nil, fmt.Errorf("analysis: empty voltage range [%g, %g]", vmin, vmax)
	}

	step := (vmax - vmin) / float64(n-1)
	rows := make([]KineticsRow, n)
	gates := ionic.NewGates(m)
	for i := range rows {
		v := vmin + float64(i)*step
		ks := make([]ionic.Kinetics, m.GateCount())
		m.Kinetics(v, ks)
		ionic.SteadyStates(ks, gates)
		rows[i] = KineticsRow{V: v, Kinetics: ks, Iion: m.IonicCurrent(v, gates)}
	}
	return rows, nil
}

// WriteKineticsCSV writes rows with columns V, then alpha, beta, inf and tau
// for every gate, then the steady-state current.
func WriteKineticsCSV(w io.Writer, gateNames []string, rows []KineticsRow) error {
	cw := csv.NewWriter(w)

	header := []string{"V"}
	for _, g := range gateNames {
		header = append(header, "alpha_"+g, "beta_"+g, g+"_inf", "tau_"+g)
	}
	header = append(header, "Iion_inf")
	if err := cw.Write(header); err != nil {
		return err
	}

	format := func(v float64) string { return strconv.FormatFloat(v, 'g', 10, 64) }
	for _, r := range rows {
		record := []string{format(r.V)}
		for _, k := range r.Kinetics {
			record = append(record, format(k.Alpha), format(k.Beta), format(k.Inf), format(k.Tau))
		}
		record = append(record, format(r.Iion))
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
