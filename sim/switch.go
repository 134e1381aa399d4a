package sim

import "fmt"

// switchCycle lists the positions in toggle order.
var switchCycle = []SwitchPosition{SwitchOpen, SwitchCharge, SwitchDischarge}

// IsValid returns true if p is one of the three switch positions.
func (p SwitchPosition) IsValid() bool {
	for _, q := range switchCycle {
		if p == q {
			return true
		}
	}
	return false
}

// Next returns the position one toggle away: open → charge → discharge → open.
// An unrecognized position restarts the cycle at open.
func (p SwitchPosition) Next() SwitchPosition {
	for i, q := range switchCycle {
		if p == q {
			return switchCycle[(i+1)%len(switchCycle)]
		}
	}
	return SwitchOpen
}

// ParseSwitchPosition converts a config or wire string into a SwitchPosition.
func ParseSwitchPosition(s string) (SwitchPosition, error) {
	p := SwitchPosition(s)
	if !p.IsValid() {
		return "", fmt.Errorf("unknown switch position %q (want open, charge or discharge)", s)
	}
	return p, nil
}

// Toggle advances the switch by one step. Voltage is untouched; the integrator
// reacts to the new position on the next tick.
func Toggle(s State) State {
	s.Switch = s.Switch.Next()
	return s
}
