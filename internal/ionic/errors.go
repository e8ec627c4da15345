package ionic

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors for model construction and integration.
var (
	// ErrInvalidParameter indicates a model parameter outside its physical domain.
	ErrInvalidParameter = errors.New("ionic: invalid model parameter")

	// ErrUnknownModel indicates a model identifier that is not registered.
	ErrUnknownModel = errors.New("ionic: unknown model identifier")

	// ErrUnknownScheme indicates a gating scheme name that cannot be parsed.
	ErrUnknownScheme = errors.New("ionic: unknown gating scheme")

	// ErrUnstable indicates the integration diverged (NaN or Inf in V or gates).
	ErrUnstable = errors.New("ionic: integration unstable (state diverged)")

	// ErrInvalidStep indicates a non-positive or non-finite time step.
	ErrInvalidStep = errors.New("ionic: time step must be positive and finite")

	// ErrDimensionMismatch indicates a gate vector of the wrong length.
	ErrDimensionMismatch = errors.New("ionic: gate vector length does not match model")
)

// InvalidParameterError reports the parameter that made construction fail.
type InvalidParameterError struct {
	Param  string
	Value  float64
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("ionic: invalid parameter %s=%g: %s", e.Param, e.Value, e.Reason)
}

func (e *InvalidParameterError) Unwrap() error {
	return ErrInvalidParameter
}

// UnknownModelError carries the requested identifier and the registered ones.
type UnknownModelError struct {
	Kind  string
	Known []string
}

func (e *UnknownModelError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("ionic: unknown model %q", e.Kind)
	}
	return fmt.Sprintf("ionic: unknown model %q (available: %s)", e.Kind, strings.Join(e.Known, ", "))
}

func (e *UnknownModelError) Unwrap() error {
	return ErrUnknownModel
}

// SimulationError wraps an error with the step at which it was detected.
type SimulationError struct {
	Step    int
	Time    float64
	Voltage float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f ms, V=%g mV): %v", e.Step, e.Time, e.Voltage, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
