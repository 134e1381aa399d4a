package sim

import (
	"errors"
	"fmt"
	"math"

	"github.com/inference-sim/charge-lab/sim/trace"
)

// ErrInvalidParams is returned when experiment parameters fail validation.
var ErrInvalidParams = errors.New("invalid experiment parameters")

// Default bench parameters: a 10 µF capacitor charged to 10 V, discharging
// through a 5 MΩ resistor (RC = 50 s).
const (
	DefaultCapacitance    = 10e-6
	DefaultResistance     = 5e6
	DefaultInitialVoltage = 10.0

	// DefaultSampleInterval is the recording cadence in seconds.
	DefaultSampleInterval = 0.5
)

// Params groups the fixed physical parameters of one experiment.
type Params struct {
	Capacitance    float64 // farads (must be > 0)
	Resistance     float64 // ohms (must be > 0)
	InitialVoltage float64 // source voltage used when charging (must be >= 0)
}

// DefaultParams returns the bench parameters.
func DefaultParams() Params {
	return Params{
		Capacitance:    DefaultCapacitance,
		Resistance:     DefaultResistance,
		InitialVoltage: DefaultInitialVoltage,
	}
}

// TimeConstant returns R*C in seconds.
func (p Params) TimeConstant() float64 {
	return p.Resistance * p.Capacitance
}

// Validate rejects parameters the integrator cannot run with.
func (p Params) Validate() error {
	if !(p.Capacitance > 0) || math.IsInf(p.Capacitance, 0) {
		return fmt.Errorf("%w: capacitance must be > 0, got %v", ErrInvalidParams, p.Capacitance)
	}
	if !(p.Resistance > 0) || math.IsInf(p.Resistance, 0) {
		return fmt.Errorf("%w: resistance must be > 0, got %v", ErrInvalidParams, p.Resistance)
	}
	if !(p.InitialVoltage >= 0) || math.IsInf(p.InitialVoltage, 0) {
		return fmt.Errorf("%w: initial voltage must be >= 0, got %v", ErrInvalidParams, p.InitialVoltage)
	}
	return nil
}

// Config groups everything NewSession needs.
type Config struct {
	Params         Params
	Method         Method      // integration method (default MethodEuler)
	MaxDelta       float64     // per-tick dt cap in seconds; 0 disables capping
	SampleInterval float64     // recording cadence in seconds (0 = DefaultSampleInterval)
	TraceLevel     trace.Level // "none" (default) or "events"
}

// DefaultConfig returns the bench parameters with the default method, a 0.25 s
// dt cap and the default sample cadence.
func DefaultConfig() Config {
	return Config{
		Params:         DefaultParams(),
		Method:         MethodEuler,
		MaxDelta:       0.25,
		SampleInterval: DefaultSampleInterval,
		TraceLevel:     trace.LevelNone,
	}
}

// Validate checks the full session configuration.
func (c Config) Validate() error {
	if err := c.Params.Validate(); err != nil {
		return err
	}
	if c.Method != "" && !c.Method.IsValid() {
		return fmt.Errorf("unknown integration method %q", c.Method)
	}
	if c.MaxDelta < 0 || math.IsNaN(c.MaxDelta) {
		return fmt.Errorf("max delta must be >= 0, got %v", c.MaxDelta)
	}
	if c.SampleInterval < 0 || math.IsNaN(c.SampleInterval) {
		return fmt.Errorf("sample interval must be >= 0, got %v", c.SampleInterval)
	}
	if !trace.IsValidLevel(string(c.TraceLevel)) {
		return fmt.Errorf("unknown trace level %q", c.TraceLevel)
	}
	return nil
}
