package sim

import "math"

// Method selects how the discharge leg is integrated.
type Method string

const (
	// MethodEuler is the explicit Euler step V -= V*dt/RC.
	MethodEuler Method = "euler"
	// MethodExact applies the closed-form per-step factor exp(-dt/RC).
	MethodExact Method = "exact"
)

// IsValid returns true if m names a known method.
func (m Method) IsValid() bool {
	return m == MethodEuler || m == MethodExact
}

// Advance integrates one tick of length dt seconds with explicit Euler.
func Advance(s State, dt float64) State {
	return AdvanceWith(MethodEuler, s, dt)
}

// AdvanceWith integrates one tick of length dt seconds.
//
//   - charge: voltage jumps to InitialVoltage (charging is instantaneous)
//   - discharge: exponential decay, clamped at zero
//   - open: voltage held (ideal capacitor, no leakage)
//
// Time always advances by dt. Negative or NaN dt is treated as 0.
// Params must have passed Validate.
func AdvanceWith(m Method, s State, dt float64) State {
	if !(dt > 0) {
		dt = 0
	}
	next := s
	next.Time = s.Time + dt

	switch s.Switch {
	case SwitchCharge:
		next.Voltage = s.Params.InitialVoltage
	case SwitchDischarge:
		rc := s.Params.TimeConstant()
		var v float64
		if m == MethodExact {
			v = s.Voltage * math.Exp(-dt/rc)
		} else {
			v = s.Voltage - s.Voltage*dt/rc
		}
		if !(v > 0) {
			v = 0
		}
		next.Voltage = v
	}
	return next
}
