package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/san-kum/cardiosim/internal/config"
	"github.com/san-kum/cardiosim/internal/ionic"
	"github.com/san-kum/cardiosim/internal/sim"
)

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
)

var ErrRunNotFound = errors.New("storage: run not found")

// Store keeps one directory per run holding metadata.json and
// trajectory.csv.
type Store struct {
	baseDir string
	logger  *zap.Logger
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, logger: zap.NewNop()}
}

func (s *Store) SetLogger(l *zap.Logger) {
	if l != nil {
		s.logger = l
	}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID             string                `json:"id"`
	Model          string                `json:"model"`
	Scheme         string                `json:"scheme"`
	Timestamp      time.Time             `json:"timestamp"`
	Dt             float64               `json:"dt"`
	Duration       float64               `json:"duration"`
	InitialVoltage float64               `json:"initial_voltage"`
	Capacitance    float64               `json:"capacitance"`
	SampleEvery    int                   `json:"sample_every"`
	Steps          int                   `json:"steps"`
	GateNames      []string              `json:"gate_names"`
	Stimulus       config.StimulusConfig `json:"stimulus"`
	Params         map[string]float64    `json:"params,omitempty"`
	Metrics        map[string]float64    `json:"metrics"`
	Elapsed        string                `json:"elapsed"`
}

// Metadata describes a finished run of cell under cfg.
func Metadata(cfg *config.Config, cell *ionic.Cell, res *sim.Result) RunMetadata {
	meta := RunMetadata{
		Model:          res.Model,
		Scheme:         res.Scheme,
		Dt:             cfg.Dt,
		Duration:       cfg.Duration,
		InitialVoltage: res.Samples[0].V,
		Capacitance:    cfg.Capacitance,
		SampleEvery:    cfg.SampleEvery,
		Steps:          res.StepsTaken,
		GateNames:      res.GateNames,
		Stimulus:       cfg.Stimulus,
		Metrics:        res.Metrics,
		Elapsed:        res.Elapsed.String(),
	}
	if c, ok := cell.Model.(ionic.Configurable); ok {
		meta.Params = c.Params()
	}
	return meta
}

// Save writes meta and the samples of res under a new run ID.
func (s *Store) Save(meta RunMetadata, res *sim.Result) (string, error) {
	runID := fmt.Sprintf("%s_%s", meta.Model, uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now().UTC()
	}
	if meta.GateNames == nil {
		meta.GateNames = res.GateNames
	}

	if err := writeMetadata(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeTrajectory(filepath.Join(runDir, trajectoryFile), meta.GateNames, res); err != nil {
		return "", err
	}

	s.logger.Info("run saved", zap.String("run_id", runID), zap.Int("samples", len(res.Samples)))
	return runID, nil
}

func writeMetadata(path string, meta RunMetadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func writeTrajectory(path string, gateNames []string, res *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := append([]string{"time", "V"}, gateNames...)
	header = append(header, "Iion")
	if err := w.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for _, sample := range res.Samples {
		row = row[:0]
		row = append(row, formatFloat(sample.Time), formatFloat(sample.V))
		for _, g := range sample.Gates {
			row = append(row, formatFloat(g))
		}
		row = append(row, formatFloat(sample.Iion))
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// List returns the metadata of every stored run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			s.logger.Debug("skipping run directory", zap.String("dir", entry.Name()), zap.Error(err))
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%s: %w", metadataFile, err)
	}
	return &meta, nil
}

// LoadTrajectory reads the samples of a run back into a result.
func (s *Store) LoadTrajectory(runID string) (*sim.Result, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, trajectoryFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", trajectoryFile, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: missing header", trajectoryFile)
	}

	header := records[0]
	if len(header) < 3 || header[0] != "time" || header[1] != "V" || header[len(header)-1] != "Iion" {
		return nil, fmt.Errorf("%s: unexpected header %v", trajectoryFile, header)
	}
	nGates := len(header) - 3

	res := &sim.Result{
		GateNames: append([]string(nil), header[2:2+nGates]...),
		Samples:   make([]sim.Sample, 0, len(records)-1),
	}
	for line, record := range records[1:] {
		values := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", trajectoryFile, line+2, err)
			}
			values[j] = v
		}
		res.Samples = append(res.Samples, sim.Sample{
			Time:  values[0],
			V:     values[1],
			Gates: ionic.Gates(values[2 : 2+nGates]),
			Iion:  values[2+nGates],
		})
	}
	if n := len(res.Samples); n > 0 {
		res.StepsTaken = n - 1
	}

	if meta, err := s.Load(runID); err == nil {
		res.Model = meta.Model
		res.Scheme = meta.Scheme
		res.Metrics = meta.Metrics
		res.StepsTaken = meta.Steps
	}
	return res, nil
}
