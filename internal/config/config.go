package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	DefaultModel       = "bernus"
	DefaultScheme      = "rush_larsen"
	DefaultDt          = 0.01
	DefaultDuration    = 400.0
	DefaultCapacitance = 1.0
	DefaultSampleEvery = 10
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config describes one single-cell run.
type Config struct {
	Model    string  `yaml:"model" json:"model" validate:"required"`
	Scheme   string  `yaml:"scheme" json:"scheme" validate:"oneof=euler rush_larsen"`
	Dt       float64 `yaml:"dt" json:"dt" validate:"gt=0"`
	Duration float64 `yaml:"duration" json:"duration" validate:"gt=0,gtefield=Dt"`

	// InitialVoltage defaults to the model's resting potential. GateVoltage
	// is the voltage the gates start in steady state at and defaults to
	// InitialVoltage.
	InitialVoltage *float64 `yaml:"initial_voltage,omitempty" json:"initial_voltage,omitempty"`
	GateVoltage    *float64 `yaml:"gate_voltage,omitempty" json:"gate_voltage,omitempty"`

	Capacitance   float64        `yaml:"capacitance" json:"capacitance" validate:"gt=0"`
	SampleEvery   int            `yaml:"sample_every" json:"sample_every" validate:"gte=0"`
	ValidateState bool           `yaml:"validate_state" json:"validate_state"`
	Stimulus      StimulusConfig `yaml:"stimulus" json:"stimulus"`

	// Params overrides named model parameters.
	Params map[string]float64 `yaml:"params,omitempty" json:"params,omitempty"`
}

// StimulusConfig is a rectangular pulse train. Zero amplitude disables it.
type StimulusConfig struct {
	Amplitude float64 `yaml:"amplitude" json:"amplitude"`
	Start     float64 `yaml:"start" json:"start" validate:"gte=0"`
	Duration  float64 `yaml:"duration" json:"duration" validate:"gte=0"`
	Period    float64 `yaml:"period" json:"period" validate:"gte=0"`
}

func (s StimulusConfig) Enabled() bool {
	return s.Amplitude != 0 && s.Duration > 0
}

func DefaultConfig() *Config {
	return &Config{
		Model:         DefaultModel,
		Scheme:        DefaultScheme,
		Dt:            DefaultDt,
		Duration:      DefaultDuration,
		Capacitance:   DefaultCapacitance,
		SampleEvery:   DefaultSampleEvery,
		ValidateState: true,
	}
}

// Float returns a pointer to v, for the optional voltage fields.
func Float(v float64) *float64 {
	return &v
}

func (c *Config) Clone() *Config {
	out := *c
	if c.InitialVoltage != nil {
		out.InitialVoltage = Float(*c.InitialVoltage)
	}
	if c.GateVoltage != nil {
		out.GateVoltage = Float(*c.GateVoltage)
	}
	if c.Params != nil {
		out.Params = make(map[string]float64, len(c.Params))
		for k, v := range c.Params {
			out.Params[k] = v
		}
	}
	return &out
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, formatFieldError(fe))
			}
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func formatFieldError(e validator.FieldError) string {
	field := e.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, e.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "gtefield":
		return fmt.Sprintf("%s must be at least %s", field, "dt")
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
