package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/cardiosim/internal/sim"
)

type ExportData struct {
	Metadata RunMetadata          `json:"metadata"`
	Times    []float64            `json:"times"`
	V        []float64            `json:"V"`
	Gates    map[string][]float64 `json:"gates"`
	Iion     []float64            `json:"Iion"`
}

func NewExportData(meta RunMetadata, res *sim.Result) ExportData {
	names := meta.GateNames
	if names == nil {
		names = res.GateNames
	}

	data := ExportData{
		Metadata: meta,
		Times:    res.Times(),
		V:        res.Voltages(),
		Gates:    make(map[string][]float64, len(names)),
		Iion:     make([]float64, len(res.Samples)),
	}
	for i, name := range names {
		data.Gates[name] = res.Gate(i)
	}
	for i, s := range res.Samples {
		data.Iion[i] = s.Iion
	}
	return data
}

// ExportJSON writes the run as one indented JSON document.
func ExportJSON(w io.Writer, meta RunMetadata, res *sim.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExportData(meta, res))
}
