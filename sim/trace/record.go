// Package trace provides event recording for a lab session: switch toggles,
// resets, recording changes and clears.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// ToggleRecord captures a single switch toggle.
type ToggleRecord struct {
	Time    float64 // simulation time of the toggle (s)
	Voltage float64 // capacitor voltage when the switch moved
	From    string
	To      string
}

// ResetRecord captures an explicit session reset and what it discarded.
type ResetRecord struct {
	Time            float64 // simulation time just before the reset
	Voltage         float64
	DiscardedPoints int
}

// RecordingRecord captures recording being switched on or off.
type RecordingRecord struct {
	Time    float64
	Enabled bool
}

// ClearRecord captures an explicit clear of the recorded series.
type ClearRecord struct {
	Time            float64
	DiscardedPoints int
}
