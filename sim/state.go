package sim

import (
	"fmt"
)

// SwitchPosition is the position of the three-way lab switch.
type SwitchPosition string

const (
	SwitchOpen      SwitchPosition = "open"
	SwitchCharge    SwitchPosition = "charge"
	SwitchDischarge SwitchPosition = "discharge"
)

// State is one consistent snapshot of the experiment. It is a plain value:
// every transition returns a new State and never mutates its input.
type State struct {
	Voltage float64        // capacitor terminal voltage (V), in [0, Params.InitialVoltage]
	Time    float64        // elapsed simulation time (s), non-decreasing
	Switch  SwitchPosition // control input, changed only by Toggle
	Params  Params         // fixed for the lifetime of a session
}

// NewState returns the state a session starts from: discharged, t=0, switch open.
func NewState(p Params) State {
	return State{
		Voltage: 0,
		Time:    0,
		Switch:  SwitchOpen,
		Params:  p,
	}
}

// TimeConstant returns R*C for the state's parameters.
func (s State) TimeConstant() float64 {
	return s.Params.TimeConstant()
}

// String renders the readout shown above the lab bench.
func (s State) String() string {
	return fmt.Sprintf("V=%.3f V t=%.1f s switch=%s", s.Voltage, s.Time, s.Switch)
}

// DataPoint is one recorded (time, voltage) sample.
type DataPoint struct {
	Time    float64 `json:"time"`
	Voltage float64 `json:"voltage"`
}
