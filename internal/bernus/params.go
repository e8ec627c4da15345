package bernus

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/san-kum/cardiosim/internal/ionic"
)

// Conductances are the maximal conductances (mS/uF) of the nine currents.
// NaCa and NaK scale the pump fluxes rather than a driving force.
type Conductances struct {
	Na   float64 `yaml:"g_na" json:"g_na" validate:"gte=0"`
	Ca   float64 `yaml:"g_ca" json:"g_ca" validate:"gte=0"`
	To   float64 `yaml:"g_to" json:"g_to" validate:"gte=0"`
	K    float64 `yaml:"g_k" json:"g_k" validate:"gte=0"`
	K1   float64 `yaml:"g_k1" json:"g_k1" validate:"gte=0"`
	NaB  float64 `yaml:"g_nab" json:"g_nab" validate:"gte=0"`
	CaB  float64 `yaml:"g_cab" json:"g_cab" validate:"gte=0"`
	NaK  float64 `yaml:"g_nak" json:"g_nak" validate:"gte=0"`
	NaCa float64 `yaml:"g_naca" json:"g_naca" validate:"gte=0"`
}

// Concentrations are intra- (I) and extracellular (E) ion concentrations in mM.
type Concentrations struct {
	CaI float64 `yaml:"ca_i" json:"ca_i" validate:"gt=0"`
	CaE float64 `yaml:"ca_e" json:"ca_e" validate:"gt=0"`
	NaI float64 `yaml:"na_i" json:"na_i" validate:"gt=0"`
	NaE float64 `yaml:"na_e" json:"na_e" validate:"gt=0"`
	KI  float64 `yaml:"k_i" json:"k_i" validate:"gt=0"`
	KE  float64 `yaml:"k_e" json:"k_e" validate:"gt=0"`
}

// Params is the physical identity of a model instance.
type Params struct {
	Conductances   `yaml:",inline" json:"conductances"`
	Concentrations `yaml:",inline" json:"concentrations"`

	GasConstant float64 `yaml:"gas_constant" json:"gas_constant" validate:"gt=0"` // J/(mol K)
	Temperature float64 `yaml:"temperature" json:"temperature" validate:"gt=0"`   // K
	Faraday     float64 `yaml:"faraday" json:"faraday" validate:"gt=0"`           // C/mmol

	// P scales the rates of the to gate; VShift shifts its voltage
	// dependence (mV). Both describe cell-type variants.
	P      float64 `yaml:"p" json:"p" validate:"gt=0"`
	VShift float64 `yaml:"v_shift" json:"v_shift"`
}

// DefaultParams returns the standard ventricular parameter set at 37 C.
func DefaultParams() Params {
	return Params{
		Conductances: Conductances{
			Na:   16.0,
			Ca:   0.064,
			To:   0.4,
			K:    0.019,
			K1:   3.9,
			NaB:  0.001,
			CaB:  0.00085,
			NaK:  1.3,
			NaCa: 1000.0,
		},
		Concentrations: Concentrations{
			CaI: 0.0004,
			CaE: 2.0,
			NaI: 10.0,
			NaE: 138.0,
			KI:  140.0,
			KE:  4.0,
		},
		GasConstant: 8.3144621,
		Temperature: 37.0 + 273.15,
		Faraday:     96.4867,
		P:           1.0,
		VShift:      0.0,
	}
}

// RTF returns RT/F in mV.
func (p Params) RTF() float64 {
	return p.GasConstant * p.Temperature / p.Faraday
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

// Validate checks every parameter against its physical domain. The first
// violation is returned as an *ionic.InvalidParameterError.
func (p Params) Validate() error {
	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fieldError(verrs[0])
		}
		return fmt.Errorf("%w: %v", ionic.ErrInvalidParameter, err)
	}

	fields := p.fields()
	for _, name := range sortedKeys(fields) {
		if v := *fields[name]; math.IsNaN(v) || math.IsInf(v, 0) {
			return &ionic.InvalidParameterError{Param: name, Value: v, Reason: "must be finite"}
		}
	}
	return nil
}

func fieldError(fe validator.FieldError) error {
	value, _ := fe.Value().(float64)

	var reason string
	switch fe.Tag() {
	case "gt":
		reason = "must be greater than " + fe.Param()
	case "gte":
		reason = "must be at least " + fe.Param()
	default:
		reason = "is invalid"
	}
	return &ionic.InvalidParameterError{Param: fe.Field(), Value: value, Reason: reason}
}

// fields maps parameter names to their storage in p.
func (p *Params) fields() map[string]*float64 {
	return map[string]*float64{
		"g_na":         &p.Conductances.Na,
		"g_ca":         &p.Conductances.Ca,
		"g_to":         &p.Conductances.To,
		"g_k":          &p.Conductances.K,
		"g_k1":         &p.Conductances.K1,
		"g_nab":        &p.Conductances.NaB,
		"g_cab":        &p.Conductances.CaB,
		"g_nak":        &p.Conductances.NaK,
		"g_naca":       &p.Conductances.NaCa,
		"ca_i":         &p.Concentrations.CaI,
		"ca_e":         &p.Concentrations.CaE,
		"na_i":         &p.Concentrations.NaI,
		"na_e":         &p.Concentrations.NaE,
		"k_i":          &p.Concentrations.KI,
		"k_e":          &p.Concentrations.KE,
		"gas_constant": &p.GasConstant,
		"temperature":  &p.Temperature,
		"faraday":      &p.Faraday,
		"p":            &p.P,
		"v_shift":      &p.VShift,
	}
}

// Map returns all parameters keyed by name.
func (p Params) Map() map[string]float64 {
	fields := p.fields()
	out := make(map[string]float64, len(fields))
	for name, ptr := range fields {
		out[name] = *ptr
	}
	return out
}

// Names lists the parameter names accepted by With, sorted.
func Names() []string {
	var p Params
	return sortedKeys(p.fields())
}

// With returns a copy of p with the named values replaced. Unknown names and
// invalid results are rejected; p itself is never modified.
func (p Params) With(overrides map[string]float64) (Params, error) {
	q := p
	fields := q.fields()
	for _, name := range sortedKeys(overrides) {
		ptr, ok := fields[name]
		if !ok {
			return p, &ionic.InvalidParameterError{
				Param:  name,
				Value:  overrides[name],
				Reason: "unknown parameter",
			}
		}
		*ptr = overrides[name]
	}
	if err := q.Validate(); err != nil {
		return p, err
	}
	return q, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
